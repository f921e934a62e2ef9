package api

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var plPostcodeRegexp = regexp.MustCompile(`^\d{2}-\d{3}$`)

// nipWeights are the checksum weights for the first nine digits of a
// Polish tax identification number (NIP).
var nipWeights = [9]int{6, 5, 7, 2, 3, 4, 5, 6, 7}

// RegisterValidators installs the custom binding validators (nip,
// plpostcode) on gin's validator engine. Must run once before any request
// binding that uses these tags.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := v.RegisterValidation("nip", validateNIP); err != nil {
		return err
	}
	return v.RegisterValidation("plpostcode", validatePLPostcode)
}

// validateNIP checks a Polish NIP: ten digits (separators tolerated) with a
// valid mod-11 checksum.
func validateNIP(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	nip := strings.NewReplacer("-", "", " ", "").Replace(raw)
	if len(nip) != 10 {
		return false
	}

	sum := 0
	for i := 0; i < 9; i++ {
		d := nip[i]
		if d < '0' || d > '9' {
			return false
		}
		sum += int(d-'0') * nipWeights[i]
	}
	last := nip[9]
	if last < '0' || last > '9' {
		return false
	}

	check := sum % 11
	// A checksum of 10 is not a valid NIP; no control digit can match it.
	if check == 10 {
		return false
	}
	return check == int(last-'0')
}

// validatePLPostcode checks the Polish "NN-NNN" postal code format.
func validatePLPostcode(fl validator.FieldLevel) bool {
	return plPostcodeRegexp.MatchString(fl.Field().String())
}

package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"pedro-backend-go/internal/core"
	"pedro-backend-go/internal/middleware"
)

// identityOrAbort returns the authenticated identity or aborts with 401.
// A missing identity on an auth-guarded route means the middleware chain is
// misconfigured, so this doubles as a setup check.
func identityOrAbort(c *gin.Context) (core.Identity, bool) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok || identity.UID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Wymagane uwierzytelnienie"})
		return core.Identity{}, false
	}
	return identity, true
}

// bindingErrorResponse maps a gin binding error to a 400 payload. Field
// validation failures get a per-field hint; malformed JSON gets a generic
// message.
func bindingErrorResponse(err error) ErrorResponse {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return ErrorResponse{
			Error:   "Nieprawidłowe dane formularza",
			Details: fieldErrorDetail(verrs[0]),
		}
	}
	return ErrorResponse{Error: "Nieprawidłowe żądanie", Details: err.Error()}
}

func fieldErrorDetail(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "pole '" + fe.Field() + "' jest wymagane"
	case "email":
		return "pole '" + fe.Field() + "' musi być poprawnym adresem e-mail"
	case "nip":
		return "nieprawidłowy numer NIP"
	case "plpostcode":
		return "kod pocztowy musi mieć format 00-000"
	case "oneof":
		return "pole '" + fe.Field() + "' ma niedozwoloną wartość"
	case "min":
		return "pole '" + fe.Field() + "' jest za krótkie"
	case "max":
		return "pole '" + fe.Field() + "' jest za długie"
	case "url":
		return "pole '" + fe.Field() + "' musi być poprawnym adresem URL"
	default:
		return "pole '" + fe.Field() + "' nie przeszło walidacji"
	}
}

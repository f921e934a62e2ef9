package models

// Confirmation markers required for destructive operations. The client must
// echo these exact strings; anything else fails validation before any
// document or Stripe mutation happens.
const (
	DeleteBusinessConfirmation = "USUŃ BIZNES"
	DeleteAccountConfirmation  = "USUŃ"
)

// AddressForm mirrors Address for request binding.
type AddressForm struct {
	Line1      string `json:"line1" binding:"required,min=5"`
	Line2      string `json:"line2"`
	City       string `json:"city" binding:"required,min=2"`
	PostalCode string `json:"postalCode" binding:"required,plpostcode"`
	Country    string `json:"country"`
}

// BusinessForm is the validated payload for registering or editing a
// business. The nip and plpostcode validators are registered in the api
// package on the gin binding engine.
type BusinessForm struct {
	CompanyName       string      `json:"companyName" binding:"required,min=2"`
	NIP               string      `json:"nip" binding:"required,nip"`
	BusinessType      string      `json:"businessType" binding:"required,oneof=restaurant retail service other"`
	Address           AddressForm `json:"address" binding:"required"`
	Email             string      `json:"email" binding:"required,email"`
	Phone             string      `json:"phone" binding:"required,min=9,max=16"`
	ContactPersonName string      `json:"contactPersonName" binding:"required,min=2"`
	Website           string      `json:"website" binding:"omitempty,url"`
	Description       string      `json:"description" binding:"required,min=10"`
}

// UpdateBusinessRequest carries a full business form plus the target id.
type UpdateBusinessRequest struct {
	PartnerID string `json:"partnerId" binding:"required"`
	BusinessForm
}

// DeleteBusinessRequest requires the exact confirmation marker.
type DeleteBusinessRequest struct {
	PartnerID    string `json:"partnerId" binding:"required"`
	Confirmation string `json:"confirmation" binding:"required"`
}

// DeleteAccountRequest requires the exact confirmation marker.
type DeleteAccountRequest struct {
	Confirmation string `json:"confirmation" binding:"required"`
}

// ChangePasswordRequest carries the new credentials. CurrentPassword is
// required by the contract but verified client-side through Firebase
// reauthentication; the Admin SDK has no way to check it.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

// UpdateEmailRequest carries the new address. Password is required by the
// contract and verified client-side, like in ChangePasswordRequest.
type UpdateEmailRequest struct {
	NewEmail string `json:"newEmail" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// CheckoutSessionRequest starts a PPU subscription checkout for a partner.
type CheckoutSessionRequest struct {
	PartnerID string `json:"partnerId" binding:"required"`
}

// PortalSessionRequest opens the Stripe customer portal for a partner.
type PortalSessionRequest struct {
	PartnerID string `json:"partnerId" binding:"required"`
}

// ContactRequest is the public contact-form payload.
type ContactRequest struct {
	Name    string `json:"name" binding:"required,min=2"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required,min=10"`
}

package models

import "time"

// User types. A user starts as a plain consumer account and becomes a
// partner owner once a business is registered for them.
const (
	UserTypeCustomer     = "customer"
	UserTypePartnerOwner = "partner_owner"
)

// User represents an application account backed by a Firebase Auth identity.
type User struct {
	ID            string    `json:"id" firestore:"-"` // Firebase Auth UID, used as the document ID
	Email         string    `json:"email" firestore:"email"`
	DisplayName   string    `json:"displayName,omitempty" firestore:"displayName,omitempty"`
	UserType      string    `json:"userType" firestore:"userType"`
	EmailVerified bool      `json:"emailVerified" firestore:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt" firestore:"updatedAt"`
}

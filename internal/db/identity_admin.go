package db

import (
	"context"
	"fmt"
	"strings"

	"firebase.google.com/go/v4/auth"
)

// FirebaseIdentityAdmin adapts the Firebase Auth admin client to the
// domain-level identity operations the services need. User lookups that
// miss are reported as ErrNotFound so callers do not depend on SDK error
// helpers.
type FirebaseIdentityAdmin struct {
	client     *auth.Client
	appBaseURL string
}

// NewFirebaseIdentityAdmin creates a new FirebaseIdentityAdmin. appBaseURL
// is the client application origin used as the continue URL in generated
// action links.
func NewFirebaseIdentityAdmin(client *auth.Client, appBaseURL string) *FirebaseIdentityAdmin {
	if client == nil {
		panic("Firebase Auth client is not initialized for IdentityAdmin")
	}
	return &FirebaseIdentityAdmin{
		client:     client,
		appBaseURL: strings.TrimRight(appBaseURL, "/"),
	}
}

// DeleteUser removes the Firebase Auth identity.
func (a *FirebaseIdentityAdmin) DeleteUser(ctx context.Context, uid string) error {
	if err := a.client.DeleteUser(ctx, uid); err != nil {
		if auth.IsUserNotFound(err) {
			return fmt.Errorf("identity '%s': %w", uid, ErrNotFound)
		}
		return fmt.Errorf("failed to delete identity '%s': %w", uid, err)
	}
	return nil
}

// GetEmail returns the email address on the identity record, empty when
// the account has none.
func (a *FirebaseIdentityAdmin) GetEmail(ctx context.Context, uid string) (string, error) {
	record, err := a.client.GetUser(ctx, uid)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return "", fmt.Errorf("identity '%s': %w", uid, ErrNotFound)
		}
		return "", fmt.Errorf("failed to get identity '%s': %w", uid, err)
	}
	return record.Email, nil
}

// EmailInUse reports whether any identity already owns the address.
func (a *FirebaseIdentityAdmin) EmailInUse(ctx context.Context, email string) (bool, error) {
	_, err := a.client.GetUserByEmail(ctx, email)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up email '%s': %w", email, err)
	}
	return true, nil
}

// SetPassword updates the identity's password.
func (a *FirebaseIdentityAdmin) SetPassword(ctx context.Context, uid, newPassword string) error {
	update := (&auth.UserToUpdate{}).Password(newPassword)
	if _, err := a.client.UpdateUser(ctx, uid, update); err != nil {
		if auth.IsUserNotFound(err) {
			return fmt.Errorf("identity '%s': %w", uid, ErrNotFound)
		}
		return fmt.Errorf("failed to update password for identity '%s': %w", uid, err)
	}
	return nil
}

// SetEmail updates the identity's email address and resets the verified
// flag, so the new address must be confirmed again.
func (a *FirebaseIdentityAdmin) SetEmail(ctx context.Context, uid, newEmail string) error {
	update := (&auth.UserToUpdate{}).Email(newEmail).EmailVerified(false)
	if _, err := a.client.UpdateUser(ctx, uid, update); err != nil {
		if auth.IsUserNotFound(err) {
			return fmt.Errorf("identity '%s': %w", uid, ErrNotFound)
		}
		return fmt.Errorf("failed to update email for identity '%s': %w", uid, err)
	}
	return nil
}

// RevokeRefreshTokens invalidates all refresh tokens issued before now.
func (a *FirebaseIdentityAdmin) RevokeRefreshTokens(ctx context.Context, uid string) error {
	if err := a.client.RevokeRefreshTokens(ctx, uid); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens for identity '%s': %w", uid, err)
	}
	return nil
}

// EmailVerificationLink generates a verification link that lands back on
// the client application's auth page.
func (a *FirebaseIdentityAdmin) EmailVerificationLink(ctx context.Context, email string) (string, error) {
	settings := &auth.ActionCodeSettings{
		URL:             a.appBaseURL + "/auth",
		HandleCodeInApp: false,
	}
	link, err := a.client.EmailVerificationLinkWithSettings(ctx, email, settings)
	if err != nil {
		return "", fmt.Errorf("failed to generate verification link for '%s': %w", email, err)
	}
	return link, nil
}

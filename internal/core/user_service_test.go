package core

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pedro-backend-go/internal/db"
	"pedro-backend-go/internal/models"
)

func newUserFixture(t *testing.T) (UserService, *fakeUserRepo, *fakePartnerRepo, *fakeGateway, *fakeIdentityAdmin) {
	t.Helper()
	userRepo := newFakeUserRepo()
	partnerRepo := newFakePartnerRepo()
	gateway := &fakeGateway{}
	identityAdmin := &fakeIdentityAdmin{}
	auditService := NewAuditService(&fakeAuditRepo{})
	partnerService := NewPartnerService(partnerRepo, userRepo, gateway, auditService, zap.NewNop())
	svc := NewUserService(userRepo, partnerService, identityAdmin, auditService, zap.NewNop())
	return svc, userRepo, partnerRepo, gateway, identityAdmin
}

func TestGetOrCreate_ReturnsExistingWithoutWrite(t *testing.T) {
	svc, userRepo, _, _, _ := newUserFixture(t)
	userRepo.users["uid_1"] = &models.User{ID: "uid_1", Email: "a@b.pl", UserType: models.UserTypePartnerOwner}

	user, created, err := svc.GetOrCreate(context.Background(), Identity{UID: "uid_1", Email: "other@b.pl"})
	require.NoError(t, err)
	assert.False(t, created)
	// Existing document wins over token claims.
	assert.Equal(t, "a@b.pl", user.Email)
	assert.Equal(t, models.UserTypePartnerOwner, user.UserType)
}

func TestGetOrCreate_CreatesCustomerFromIdentity(t *testing.T) {
	svc, userRepo, _, _, _ := newUserFixture(t)

	identity := Identity{UID: "uid_1", Email: "a@b.pl", DisplayName: "Anna", EmailVerified: true}
	user, created, err := svc.GetOrCreate(context.Background(), identity)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.UserTypeCustomer, user.UserType)
	assert.True(t, user.EmailVerified)
	assert.Contains(t, userRepo.users, "uid_1")
}

func TestGetOrCreate_LookupErrorIsNotMaskedAsCreate(t *testing.T) {
	svc, userRepo, _, _, _ := newUserFixture(t)
	userRepo.getErr = errBackendDown

	_, created, err := svc.GetOrCreate(context.Background(), Identity{UID: "uid_1"})
	assert.Error(t, err)
	assert.False(t, created)
}

func TestDeleteAccount_WrongConfirmation(t *testing.T) {
	svc, userRepo, _, _, identityAdmin := newUserFixture(t)
	userRepo.users["uid_1"] = &models.User{ID: "uid_1"}

	_, err := svc.DeleteAccount(context.Background(), "uid_1", "usuń")
	assert.ErrorIs(t, err, ErrInvalidConfirmation)
	assert.Contains(t, userRepo.users, "uid_1")
	assert.Empty(t, identityAdmin.deleted)
}

func TestDeleteAccount_ComposedDeletion(t *testing.T) {
	svc, userRepo, partnerRepo, gateway, identityAdmin := newUserFixture(t)
	userRepo.users["uid_1"] = &models.User{ID: "uid_1", UserType: models.UserTypePartnerOwner}
	partnerRepo.partners["partner_1"] = &models.Partner{
		ID:      "partner_1",
		UserID:  "uid_1",
		Billing: models.BillingState{StripeCustomerID: "cus_1"},
	}
	gateway.activeSubs = []string{"sub_1"}

	summary, err := svc.DeleteAccount(context.Background(), "uid_1", models.DeleteAccountConfirmation)
	require.NoError(t, err)

	assert.True(t, summary.AccountDeleted)
	assert.True(t, summary.PartnerDeleted)
	assert.True(t, summary.StripeCleanup)

	assert.Empty(t, partnerRepo.partners)
	assert.NotContains(t, userRepo.users, "uid_1")
	assert.Equal(t, []string{"uid_1"}, identityAdmin.deleted)
	assert.Equal(t, []string{"sub_1"}, gateway.cancelled)
}

func TestDeleteAccount_NoBusinessStillDeletesAccount(t *testing.T) {
	svc, userRepo, _, _, identityAdmin := newUserFixture(t)
	userRepo.users["uid_1"] = &models.User{ID: "uid_1"}

	summary, err := svc.DeleteAccount(context.Background(), "uid_1", models.DeleteAccountConfirmation)
	require.NoError(t, err)
	assert.True(t, summary.AccountDeleted)
	assert.False(t, summary.PartnerDeleted)
	assert.Equal(t, []string{"uid_1"}, identityAdmin.deleted)
}

func TestDeleteAccount_BusinessDeletionFailureDoesNotBlockAccount(t *testing.T) {
	svc, userRepo, partnerRepo, _, identityAdmin := newUserFixture(t)
	userRepo.users["uid_1"] = &models.User{ID: "uid_1"}
	partnerRepo.partners["partner_1"] = &models.Partner{ID: "partner_1", UserID: "uid_1"}
	partnerRepo.deleteErr = errBackendDown

	summary, err := svc.DeleteAccount(context.Background(), "uid_1", models.DeleteAccountConfirmation)
	require.NoError(t, err)
	assert.True(t, summary.AccountDeleted)
	assert.False(t, summary.PartnerDeleted)
	assert.Equal(t, []string{"uid_1"}, identityAdmin.deleted)
}

func TestDeleteAccount_IdentityDeletionFailureSurfaces(t *testing.T) {
	svc, userRepo, _, _, identityAdmin := newUserFixture(t)
	userRepo.users["uid_1"] = &models.User{ID: "uid_1"}
	identityAdmin.deleteErr = errBackendDown

	_, err := svc.DeleteAccount(context.Background(), "uid_1", models.DeleteAccountConfirmation)
	assert.Error(t, err)
	// The document is already gone; the error reports the inconsistency.
	assert.NotContains(t, userRepo.users, "uid_1")
}

func TestDeleteAccount_UnknownUser(t *testing.T) {
	svc, _, _, _, _ := newUserFixture(t)

	_, err := svc.DeleteAccount(context.Background(), "uid_ghost", models.DeleteAccountConfirmation)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestChangePassword_SetsPasswordAndRevokesTokens(t *testing.T) {
	svc, _, _, _, identityAdmin := newUserFixture(t)
	identityAdmin.email = "a@b.pl"

	summary, err := svc.ChangePassword(context.Background(), "uid_1", "nowe-haslo-123")
	require.NoError(t, err)
	assert.True(t, summary.PasswordChanged)
	assert.True(t, summary.TokensRevoked)
	assert.Equal(t, []string{"nowe-haslo-123"}, identityAdmin.passwords)
	assert.Equal(t, []string{"uid_1"}, identityAdmin.revoked)
}

func TestChangePassword_IdentityWithoutEmail(t *testing.T) {
	svc, _, _, _, identityAdmin := newUserFixture(t)
	identityAdmin.email = ""

	_, err := svc.ChangePassword(context.Background(), "uid_1", "nowe-haslo-123")
	assert.ErrorIs(t, err, ErrNoIdentityEmail)
	assert.Empty(t, identityAdmin.passwords)
}

func TestChangePassword_UnknownIdentity(t *testing.T) {
	svc, _, _, _, identityAdmin := newUserFixture(t)
	identityAdmin.getEmailErr = fmt.Errorf("identity 'uid_ghost': %w", db.ErrNotFound)

	_, err := svc.ChangePassword(context.Background(), "uid_ghost", "nowe-haslo-123")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestChangePassword_RevocationFailureDoesNotUndoChange(t *testing.T) {
	svc, _, _, _, identityAdmin := newUserFixture(t)
	identityAdmin.email = "a@b.pl"
	identityAdmin.revokeErr = errBackendDown

	summary, err := svc.ChangePassword(context.Background(), "uid_1", "nowe-haslo-123")
	require.NoError(t, err)
	assert.True(t, summary.PasswordChanged)
	assert.False(t, summary.TokensRevoked)
}

func TestUpdateEmail_MovesIdentityAndDocument(t *testing.T) {
	svc, userRepo, _, _, identityAdmin := newUserFixture(t)
	userRepo.users["uid_1"] = &models.User{ID: "uid_1", Email: "a@b.pl", EmailVerified: true}

	summary, err := svc.UpdateEmail(context.Background(), "uid_1", "nowy@b.pl")
	require.NoError(t, err)
	assert.Equal(t, "nowy@b.pl", summary.NewEmail)
	assert.True(t, summary.VerificationRequired)
	assert.Equal(t, []string{"nowy@b.pl"}, identityAdmin.emails)
	// The user document follows the identity and drops the verified flag.
	assert.Equal(t, "nowy@b.pl", userRepo.users["uid_1"].Email)
	assert.False(t, userRepo.users["uid_1"].EmailVerified)
	assert.Equal(t, []string{"nowy@b.pl"}, identityAdmin.links)
}

func TestUpdateEmail_AddressAlreadyTaken(t *testing.T) {
	svc, _, _, _, identityAdmin := newUserFixture(t)
	identityAdmin.emailTaken = true

	_, err := svc.UpdateEmail(context.Background(), "uid_1", "zajety@b.pl")
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Empty(t, identityAdmin.emails)
}

func TestUpdateEmail_UnknownIdentity(t *testing.T) {
	svc, _, _, _, identityAdmin := newUserFixture(t)
	identityAdmin.setEmailErr = fmt.Errorf("identity 'uid_ghost': %w", db.ErrNotFound)

	_, err := svc.UpdateEmail(context.Background(), "uid_ghost", "nowy@b.pl")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateEmail_DocumentWriteFailureDoesNotSurface(t *testing.T) {
	svc, userRepo, _, _, identityAdmin := newUserFixture(t)
	userRepo.users["uid_1"] = &models.User{ID: "uid_1", Email: "a@b.pl"}
	userRepo.updateErr = errBackendDown

	summary, err := svc.UpdateEmail(context.Background(), "uid_1", "nowy@b.pl")
	require.NoError(t, err)
	assert.True(t, summary.VerificationRequired)
	assert.Equal(t, []string{"nowy@b.pl"}, identityAdmin.emails)
}

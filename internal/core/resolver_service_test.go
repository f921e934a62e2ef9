package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pedro-backend-go/internal/models"
)

func newResolverFixture(t *testing.T) (*resolverService, *fakeUserRepo, *fakePartnerRepo) {
	t.Helper()
	userRepo := newFakeUserRepo()
	partnerRepo := newFakePartnerRepo()
	userService := NewUserService(userRepo, nil, &fakeIdentityAdmin{}, NewAuditService(&fakeAuditRepo{}), zap.NewNop())
	svc := NewResolverService(userService, partnerRepo, zap.NewNop()).(*resolverService)
	svc.fallbackDelay = 0 // no reason to wait in tests
	return svc, userRepo, partnerRepo
}

func TestResolve_FirstLoginCreatesUser(t *testing.T) {
	svc, userRepo, _ := newResolverFixture(t)

	identity := Identity{UID: "uid_1", Email: "nowy@example.pl", DisplayName: "Nowy"}
	resolution, err := svc.Resolve(context.Background(), identity)
	require.NoError(t, err)

	assert.Equal(t, OutcomeNoBusiness, resolution.Outcome)
	assert.True(t, resolution.UserCreated)
	assert.False(t, resolution.Degraded)

	user, ok := userRepo.users["uid_1"]
	require.True(t, ok)
	assert.Equal(t, models.UserTypeCustomer, user.UserType)
	assert.Equal(t, "nowy@example.pl", user.Email)
}

func TestResolve_ExistingUserWithBusiness(t *testing.T) {
	svc, userRepo, partnerRepo := newResolverFixture(t)
	userRepo.users["uid_1"] = &models.User{ID: "uid_1", UserType: models.UserTypePartnerOwner}
	partnerRepo.partners["partner_1"] = &models.Partner{ID: "partner_1", UserID: "uid_1"}

	resolution, err := svc.Resolve(context.Background(), Identity{UID: "uid_1"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeHasBusiness, resolution.Outcome)
	assert.Equal(t, "partner_1", resolution.PartnerID)
	assert.False(t, resolution.UserCreated)
}

func TestResolve_UserCreationFailureIsFatal(t *testing.T) {
	svc, userRepo, _ := newResolverFixture(t)
	userRepo.createErr = errBackendDown

	_, err := svc.Resolve(context.Background(), Identity{UID: "uid_1"})
	assert.Error(t, err)
}

func TestResolve_BusinessLookupFailureDegrades(t *testing.T) {
	svc, userRepo, partnerRepo := newResolverFixture(t)
	userRepo.users["uid_1"] = &models.User{ID: "uid_1"}
	partnerRepo.ownerErr = errBackendDown

	resolution, err := svc.Resolve(context.Background(), Identity{UID: "uid_1"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeNoBusiness, resolution.Outcome)
	assert.True(t, resolution.Degraded)
}

func TestResolve_DegradedPathHonorsContextCancellation(t *testing.T) {
	svc, userRepo, partnerRepo := newResolverFixture(t)
	svc.fallbackDelay = time.Minute
	userRepo.users["uid_1"] = &models.User{ID: "uid_1"}
	partnerRepo.ownerErr = errBackendDown

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Resolve(ctx, Identity{UID: "uid_1"})
	assert.ErrorIs(t, err, context.Canceled)
}

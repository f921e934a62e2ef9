package core

import (
	"context"
	"time"

	"go.uber.org/zap"

	"pedro-backend-go/internal/db"
)

// resolverFallbackDelay is how long a degraded resolve pass waits before
// falling back to the no-business outcome, giving the upstream a moment to
// recover and the user a visible pause instead of a flash of wrong state.
const resolverFallbackDelay = 2 * time.Second

// resolverService implements the ResolverService interface.
type resolverService struct {
	userService   UserService
	partnerRepo   db.PartnerRepository
	logger        *zap.Logger
	fallbackDelay time.Duration
}

// NewResolverService creates a new ResolverService instance.
func NewResolverService(userService UserService, partnerRepo db.PartnerRepository, logger *zap.Logger) ResolverService {
	return &resolverService{
		userService:   userService,
		partnerRepo:   partnerRepo,
		logger:        logger,
		fallbackDelay: resolverFallbackDelay,
	}
}

// Resolve ensures the user document exists and decides the next screen.
// Each page load re-resolves; nothing is cached between calls.
func (s *resolverService) Resolve(ctx context.Context, identity Identity) (*Resolution, error) {
	_, created, err := s.userService.GetOrCreate(ctx, identity)
	if err != nil {
		// No retry: the caller sends the user back to sign-in.
		return nil, err
	}

	partners, err := s.partnerRepo.GetByOwnerID(ctx, identity.UID)
	if err != nil {
		// Availability over precision: no-business is the lower-privilege
		// state, so fall back to it after a fixed delay instead of leaving
		// the user stuck on an error screen.
		s.logger.Error("Business lookup failed, falling back to no-business",
			zap.String("userID", identity.UID), zap.Error(err))
		select {
		case <-time.After(s.fallbackDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return &Resolution{Outcome: OutcomeNoBusiness, UserCreated: created, Degraded: true}, nil
	}

	if len(partners) == 0 {
		return &Resolution{Outcome: OutcomeNoBusiness, UserCreated: created}, nil
	}

	// First match wins; creation-time enforcement keeps this unambiguous.
	return &Resolution{
		Outcome:     OutcomeHasBusiness,
		PartnerID:   partners[0].ID,
		UserCreated: created,
	}, nil
}

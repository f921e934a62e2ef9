package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"pedro-backend-go/internal/db"
	"pedro-backend-go/internal/models"
)

// ErrUserNotFound is returned when a user is not found.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailTaken is returned when the requested address already belongs to
// another account.
var ErrEmailTaken = errors.New("email already in use")

// ErrNoIdentityEmail is returned when the Firebase identity has no email
// address to operate on.
var ErrNoIdentityEmail = errors.New("identity has no email address")

// userService implements the UserService interface.
type userService struct {
	userRepo       db.UserRepository
	partnerService PartnerService
	identityAdmin  IdentityAdmin
	auditService   AuditService
	logger         *zap.Logger
}

// NewUserService creates a new UserService instance.
func NewUserService(
	userRepo db.UserRepository,
	partnerService PartnerService,
	identityAdmin IdentityAdmin,
	auditService AuditService,
	logger *zap.Logger,
) UserService {
	return &userService{
		userRepo:       userRepo,
		partnerService: partnerService,
		identityAdmin:  identityAdmin,
		auditService:   auditService,
		logger:         logger,
	}
}

// GetOrCreate retrieves a user by UID, creating one lazily from the
// verified identity when missing. Newly created users are plain customers.
func (s *userService) GetOrCreate(ctx context.Context, identity Identity) (*models.User, bool, error) {
	user, err := s.userRepo.GetByID(ctx, identity.UID)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to get user '%s' from repository: %w", identity.UID, err)
	}

	now := time.Now().UTC()
	newUser := &models.User{
		ID:            identity.UID,
		Email:         identity.Email,
		DisplayName:   identity.DisplayName,
		UserType:      models.UserTypeCustomer,
		EmailVerified: identity.EmailVerified,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if createErr := s.userRepo.Create(ctx, newUser); createErr != nil {
		return nil, false, fmt.Errorf("failed to create user '%s' after not found: %w", identity.UID, createErr)
	}
	s.logger.Info("User document created", zap.String("userID", identity.UID))
	return newUser, true, nil
}

// GetByID retrieves a user by their UID.
func (s *userService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: user '%s'", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get user '%s' from repository: %w", userID, err)
	}
	return user, nil
}

// ChangePassword sets a new password on the Firebase Auth identity and
// revokes the user's refresh tokens. The Admin SDK cannot verify the
// current password; the client reauthenticates before calling this.
func (s *userService) ChangePassword(ctx context.Context, userID, newPassword string) (*PasswordChangeSummary, error) {
	email, err := s.identityAdmin.GetEmail(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: user '%s'", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to load identity for user '%s': %w", userID, err)
	}
	if email == "" {
		return nil, fmt.Errorf("%w: user '%s'", ErrNoIdentityEmail, userID)
	}

	if err := s.identityAdmin.SetPassword(ctx, userID, newPassword); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: user '%s'", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to update password for user '%s': %w", userID, err)
	}

	summary := &PasswordChangeSummary{PasswordChanged: true}
	// The password write already succeeded; a failed revocation only means
	// other sessions stay signed in until their tokens expire.
	if err := s.identityAdmin.RevokeRefreshTokens(ctx, userID); err != nil {
		s.logger.Warn("Password changed but refresh-token revocation failed",
			zap.String("userID", userID), zap.Error(err))
	} else {
		summary.TokensRevoked = true
	}

	s.logger.Info("Password changed", zap.String("userID", userID),
		zap.Bool("tokensRevoked", summary.TokensRevoked))
	return summary, nil
}

// UpdateEmail moves the Firebase Auth identity to a new address after a
// duplicate check, mirrors the change onto the user document and issues a
// fresh verification link. The identity is the source of truth; a failed
// document write is logged, not surfaced.
func (s *userService) UpdateEmail(ctx context.Context, userID, newEmail string) (*EmailChangeSummary, error) {
	taken, err := s.identityAdmin.EmailInUse(ctx, newEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to check email availability: %w", err)
	}
	if taken {
		return nil, fmt.Errorf("%w: %s", ErrEmailTaken, newEmail)
	}

	if err := s.identityAdmin.SetEmail(ctx, userID, newEmail); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: user '%s'", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to update email for user '%s': %w", userID, err)
	}

	if user, getErr := s.userRepo.GetByID(ctx, userID); getErr == nil {
		user.Email = newEmail
		user.EmailVerified = false
		user.UpdatedAt = time.Now().UTC()
		if updateErr := s.userRepo.Update(ctx, user); updateErr != nil {
			s.logger.Warn("Email updated in Auth but user document write failed",
				zap.String("userID", userID), zap.Error(updateErr))
		}
	} else if !errors.Is(getErr, db.ErrNotFound) {
		s.logger.Warn("Email updated in Auth but user document lookup failed",
			zap.String("userID", userID), zap.Error(getErr))
	}

	if link, linkErr := s.identityAdmin.EmailVerificationLink(ctx, newEmail); linkErr != nil {
		s.logger.Warn("Failed to generate email verification link",
			zap.String("userID", userID), zap.Error(linkErr))
	} else {
		s.logger.Info("Email verification link generated",
			zap.String("userID", userID), zap.String("link", link))
	}

	s.logger.Info("Email updated", zap.String("userID", userID))
	return &EmailChangeSummary{NewEmail: newEmail, VerificationRequired: true}, nil
}

// DeleteAccount performs the composed full-account deletion: owned business
// first (best-effort Stripe cleanup included), then the user document, then
// the Firebase Auth identity. There is no transaction across the document
// store and the identity provider; a failed step after the business is gone
// is logged and the flow continues where the contract allows.
func (s *userService) DeleteAccount(ctx context.Context, userID, confirmation string) (*AccountDeletionSummary, error) {
	if confirmation != models.DeleteAccountConfirmation {
		return nil, fmt.Errorf("%w: wpisz dokładnie %q aby potwierdzić", ErrInvalidConfirmation, models.DeleteAccountConfirmation)
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: user '%s'", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to load user '%s' for deletion: %w", userID, err)
	}

	summary := &AccountDeletionSummary{}

	partnerSummary, err := s.partnerService.DeleteForOwner(ctx, userID)
	if err != nil {
		// Partner cleanup failure does not block account deletion.
		s.logger.Error("Failed to delete owned business during account deletion",
			zap.String("userID", userID), zap.Error(err))
	} else if partnerSummary != nil {
		summary.PartnerDeleted = partnerSummary.BusinessDeleted
		summary.StripeCleanup = partnerSummary.StripeCleanup
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to delete user document '%s': %w", userID, err)
	}

	if err := s.identityAdmin.DeleteUser(ctx, userID); err != nil {
		// The document is already gone; surface the inconsistency in logs
		// rather than failing the request the user cannot retry meaningfully.
		s.logger.Error("User document deleted but identity deletion failed",
			zap.String("userID", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to delete identity for user '%s': %w", userID, err)
	}
	summary.AccountDeleted = true

	auditEntry := models.AuditLog{
		UserID:     userID,
		Action:     models.AuditAccountDelete,
		TargetType: "USER",
		TargetID:   userID,
		Timestamp:  time.Now().UTC(),
		Details: map[string]interface{}{
			"partnerDeleted": summary.PartnerDeleted,
			"stripeCleanup":  summary.StripeCleanup,
		},
	}
	if auditErr := s.auditService.CreateAuditLog(ctx, auditEntry); auditErr != nil {
		s.logger.Warn("Failed to write audit log for account deletion",
			zap.String("userID", userID), zap.Error(auditErr))
	}

	s.logger.Info("Account deleted", zap.String("userID", userID),
		zap.Bool("partnerDeleted", summary.PartnerDeleted))
	return summary, nil
}

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

// Custom errors for the PartnerService.
var (
	ErrPartnerNotFound       = errors.New("business not found")
	ErrForbiddenAccess       = errors.New("user does not own this business")
	ErrBusinessAlreadyExists = errors.New("user already has a registered business")
	ErrInvalidConfirmation   = errors.New("confirmation text does not match")
)

// partnerService implements the PartnerService interface.
type partnerService struct {
	partnerRepo  db.PartnerRepository
	userRepo     db.UserRepository
	gateway      PaymentGateway
	auditService AuditService
	logger       *zap.Logger
	now          func() time.Time
}

// NewPartnerService creates a new PartnerService instance.
func NewPartnerService(
	partnerRepo db.PartnerRepository,
	userRepo db.UserRepository,
	gateway PaymentGateway,
	auditService AuditService,
	logger *zap.Logger,
) PartnerService {
	return &partnerService{
		partnerRepo:  partnerRepo,
		userRepo:     userRepo,
		gateway:      gateway,
		auditService: auditService,
		logger:       logger,
		now:          time.Now,
	}
}

// Register creates a new business for the owner. At most one business per
// owner is allowed and enforced here, at the only write path that can
// introduce a second one.
func (s *partnerService) Register(ctx context.Context, ownerID string, form models.BusinessForm) (*models.Partner, error) {
	existing, err := s.partnerRepo.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing businesses for '%s': %w", ownerID, err)
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("%w: owner '%s' already has business '%s'", ErrBusinessAlreadyExists, ownerID, existing[0].ID)
	}

	now := s.now().UTC()
	country := form.Address.Country
	if country == "" {
		country = "Polska"
	}

	partner := &models.Partner{
		ID:           fmt.Sprintf("partner_%s_%d", ownerID, now.UnixMilli()),
		UserID:       ownerID,
		CompanyName:  form.CompanyName,
		NIP:          form.NIP,
		BusinessType: form.BusinessType,
		Address: models.Address{
			Line1:      form.Address.Line1,
			Line2:      form.Address.Line2,
			City:       form.Address.City,
			PostalCode: form.Address.PostalCode,
			Country:    country,
		},
		Email:             form.Email,
		Phone:             form.Phone,
		ContactPersonName: form.ContactPersonName,
		Website:           form.Website,
		Description:       form.Description,
		Billing:           models.BillingState{},
		BusinessModel: models.BusinessModelState{
			CurrentPhase: models.PhaseBetaFree,
			PPUEnabled:   false,
		},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.partnerRepo.Create(ctx, partner); err != nil {
		return nil, fmt.Errorf("failed to create business for '%s': %w", ownerID, err)
	}

	// The owner graduates from a plain customer account. Best effort: the
	// business exists either way.
	if user, err := s.userRepo.GetByID(ctx, ownerID); err == nil && user.UserType != models.UserTypePartnerOwner {
		user.UserType = models.UserTypePartnerOwner
		user.UpdatedAt = now
		if err := s.userRepo.Update(ctx, user); err != nil {
			s.logger.Warn("Failed to promote user to partner owner",
				zap.String("userID", ownerID), zap.Error(err))
		}
	}

	s.audit(ctx, models.AuditLog{
		UserID:     ownerID,
		Action:     models.AuditBusinessCreate,
		TargetType: "PARTNER",
		TargetID:   partner.ID,
		Timestamp:  now,
		Details:    map[string]interface{}{"companyName": partner.CompanyName},
	})

	s.logger.Info("Business registered",
		zap.String("partnerID", partner.ID), zap.String("userID", ownerID))
	return partner, nil
}

// GetOwn returns the caller's business, or ErrPartnerNotFound.
func (s *partnerService) GetOwn(ctx context.Context, ownerID string) (*models.Partner, error) {
	partners, err := s.partnerRepo.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up business for '%s': %w", ownerID, err)
	}
	if len(partners) == 0 {
		return nil, fmt.Errorf("%w: owner '%s'", ErrPartnerNotFound, ownerID)
	}
	return partners[0], nil
}

// Update overwrites the editable form fields after the ownership check.
// Billing, business-model and usage blocks are never touched here.
func (s *partnerService) Update(ctx context.Context, callerID string, req models.UpdateBusinessRequest) (*models.Partner, error) {
	partner, err := s.loadOwned(ctx, callerID, req.PartnerID)
	if err != nil {
		return nil, err
	}

	country := req.Address.Country
	if country == "" {
		country = "Polska"
	}

	partner.CompanyName = req.CompanyName
	partner.NIP = req.NIP
	partner.BusinessType = req.BusinessType
	partner.Address = models.Address{
		Line1:      req.Address.Line1,
		Line2:      req.Address.Line2,
		City:       req.Address.City,
		PostalCode: req.Address.PostalCode,
		Country:    country,
	}
	partner.Email = req.Email
	partner.Phone = req.Phone
	partner.ContactPersonName = req.ContactPersonName
	partner.Website = req.Website
	partner.Description = req.Description
	partner.UpdatedAt = s.now().UTC()

	if err := s.partnerRepo.Update(ctx, partner); err != nil {
		return nil, fmt.Errorf("failed to update business '%s': %w", partner.ID, err)
	}

	s.audit(ctx, models.AuditLog{
		UserID:     callerID,
		Action:     models.AuditBusinessUpdate,
		TargetType: "PARTNER",
		TargetID:   partner.ID,
		Timestamp:  partner.UpdatedAt,
	})

	s.logger.Info("Business updated", zap.String("partnerID", partner.ID))
	return partner, nil
}

// Delete removes the business after the exact confirmation marker and the
// ownership check, cleaning up Stripe data on a best-effort basis first.
// The owning user account is preserved.
func (s *partnerService) Delete(ctx context.Context, callerID string, req models.DeleteBusinessRequest) (*DeletionSummary, error) {
	// Checked before any document or Stripe access.
	if req.Confirmation != models.DeleteBusinessConfirmation {
		return nil, fmt.Errorf("%w: wpisz dokładnie %q aby potwierdzić", ErrInvalidConfirmation, models.DeleteBusinessConfirmation)
	}

	partner, err := s.loadOwned(ctx, callerID, req.PartnerID)
	if err != nil {
		return nil, err
	}

	return s.deletePartner(ctx, callerID, partner)
}

// DeleteForOwner removes the caller's business as part of full account
// deletion. No confirmation check (the account-level marker was already
// verified) and no error when there is nothing to delete.
func (s *partnerService) DeleteForOwner(ctx context.Context, ownerID string) (*DeletionSummary, error) {
	partners, err := s.partnerRepo.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up business for '%s': %w", ownerID, err)
	}
	if len(partners) == 0 {
		return &DeletionSummary{UserAccountPreserved: true}, nil
	}
	return s.deletePartner(ctx, ownerID, partners[0])
}

func (s *partnerService) deletePartner(ctx context.Context, callerID string, partner *models.Partner) (*DeletionSummary, error) {
	summary := &DeletionSummary{UserAccountPreserved: true}

	if customerID := partner.Billing.StripeCustomerID; customerID != "" {
		s.cleanupStripe(ctx, partner.ID, customerID)
		summary.StripeCleanup = true
	}

	if err := s.partnerRepo.Delete(ctx, partner.ID); err != nil {
		return nil, fmt.Errorf("failed to delete business '%s': %w", partner.ID, err)
	}
	summary.BusinessDeleted = true

	s.audit(ctx, models.AuditLog{
		UserID:     callerID,
		Action:     models.AuditBusinessDelete,
		TargetType: "PARTNER",
		TargetID:   partner.ID,
		Timestamp:  s.now().UTC(),
		Details:    map[string]interface{}{"stripeCleanup": summary.StripeCleanup},
	})

	s.logger.Info("Business deleted",
		zap.String("partnerID", partner.ID), zap.Bool("stripeCleanup", summary.StripeCleanup))
	return summary, nil
}

// cleanupStripe cancels active subscriptions and deletes the customer.
// Every failure is logged and swallowed: Stripe cleanup must never block
// the deletion the user asked for.
func (s *partnerService) cleanupStripe(ctx context.Context, partnerID, customerID string) {
	subscriptionIDs, err := s.gateway.ListActiveSubscriptions(ctx, customerID)
	if err != nil {
		s.logger.Error("Failed to list subscriptions during cleanup",
			zap.String("partnerID", partnerID), zap.String("customerID", customerID), zap.Error(err))
	}
	for _, subID := range subscriptionIDs {
		if err := s.gateway.CancelSubscription(ctx, subID); err != nil {
			s.logger.Error("Failed to cancel subscription during cleanup",
				zap.String("partnerID", partnerID), zap.String("subscriptionID", subID), zap.Error(err))
			continue
		}
		s.logger.Info("Cancelled subscription", zap.String("subscriptionID", subID))
	}

	if err := s.gateway.DeleteCustomer(ctx, customerID); err != nil {
		s.logger.Error("Failed to delete Stripe customer during cleanup",
			zap.String("partnerID", partnerID), zap.String("customerID", customerID), zap.Error(err))
		return
	}
	s.logger.Info("Deleted Stripe customer", zap.String("customerID", customerID))
}

func (s *partnerService) loadOwned(ctx context.Context, callerID, partnerID string) (*models.Partner, error) {
	partner, err := s.partnerRepo.GetByID(ctx, partnerID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrPartnerNotFound, partnerID)
		}
		return nil, fmt.Errorf("failed to load business '%s': %w", partnerID, err)
	}
	if partner.UserID != callerID {
		return nil, fmt.Errorf("%w: business '%s'", ErrForbiddenAccess, partnerID)
	}
	return partner, nil
}

func (s *partnerService) audit(ctx context.Context, entry models.AuditLog) {
	if err := s.auditService.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("Failed to write audit log",
			zap.String("action", entry.Action), zap.String("targetID", entry.TargetID), zap.Error(err))
	}
}

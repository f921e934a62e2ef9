package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"pedro-backend-go/internal/models"
)

const partnersCollection = "partners"

// firestorePartnerRepository implements PartnerRepository using Firestore.
type firestorePartnerRepository struct {
	client *firestore.Client
}

// NewFirestorePartnerRepository creates a new instance of firestorePartnerRepository.
func NewFirestorePartnerRepository(client *firestore.Client) PartnerRepository {
	if client == nil {
		panic("Firestore client is not initialized for PartnerRepository")
	}
	return &firestorePartnerRepository{client: client}
}

// Create adds a new partner document. The caller assigns partner.ID
// (partner_<uid>_<unixmilli>); Create fails if the document already exists.
func (r *firestorePartnerRepository) Create(ctx context.Context, partner *models.Partner) error {
	if partner.ID == "" {
		return errors.New("partner ID cannot be empty for Create operation")
	}
	_, err := r.client.Collection(partnersCollection).Doc(partner.ID).Create(ctx, partner)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("partner with ID '%s' already exists: %w", partner.ID, err)
		}
		return fmt.Errorf("failed to create partner with ID '%s': %w", partner.ID, err)
	}
	return nil
}

// GetByID retrieves a partner document by its ID.
func (r *firestorePartnerRepository) GetByID(ctx context.Context, partnerID string) (*models.Partner, error) {
	if partnerID == "" {
		return nil, errors.New("partnerID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(partnersCollection).Doc(partnerID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("partner with ID '%s' not found: %w", partnerID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get partner with ID '%s': %w", partnerID, err)
	}

	var partner models.Partner
	if err := docSnap.DataTo(&partner); err != nil {
		return nil, fmt.Errorf("failed to decode partner data for ID '%s': %w", partnerID, err)
	}
	partner.ID = docSnap.Ref.ID

	return &partner, nil
}

// GetByOwnerID retrieves all partners owned by a user, newest first.
func (r *firestorePartnerRepository) GetByOwnerID(ctx context.Context, ownerID string) ([]*models.Partner, error) {
	if ownerID == "" {
		return nil, errors.New("ownerID cannot be empty for GetByOwnerID operation")
	}

	iter := r.client.Collection(partnersCollection).
		Where("userId", "==", ownerID).
		Documents(ctx)
	defer iter.Stop()

	var partners []*models.Partner
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate partners for owner '%s': %w", ownerID, err)
		}

		var partner models.Partner
		if err := doc.DataTo(&partner); err != nil {
			return nil, fmt.Errorf("failed to decode partner data (ID: %s) for owner '%s': %w", doc.Ref.ID, ownerID, err)
		}
		partner.ID = doc.Ref.ID
		partners = append(partners, &partner)
	}

	return partners, nil
}

// GetByStripeCustomerID finds the partner whose billing record references the
// given Stripe customer. Returns ErrNotFound when no partner matches; with
// more than one match the first is used.
func (r *firestorePartnerRepository) GetByStripeCustomerID(ctx context.Context, customerID string) (*models.Partner, error) {
	if customerID == "" {
		return nil, errors.New("customerID cannot be empty for GetByStripeCustomerID operation")
	}

	iter := r.client.Collection(partnersCollection).
		Where("billing.stripeCustomerId", "==", customerID).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("partner for Stripe customer '%s' not found: %w", customerID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query partner for Stripe customer '%s': %w", customerID, err)
	}

	var partner models.Partner
	if err := doc.DataTo(&partner); err != nil {
		return nil, fmt.Errorf("failed to decode partner data (ID: %s): %w", doc.Ref.ID, err)
	}
	partner.ID = doc.Ref.ID

	return &partner, nil
}

// Update overwrites an existing partner document.
func (r *firestorePartnerRepository) Update(ctx context.Context, partner *models.Partner) error {
	if partner.ID == "" {
		return errors.New("partner ID cannot be empty for Update operation")
	}
	_, err := r.client.Collection(partnersCollection).Doc(partner.ID).Set(ctx, partner)
	if err != nil {
		return fmt.Errorf("failed to update partner with ID '%s': %w", partner.ID, err)
	}
	return nil
}

// SetStripeCustomerID sets billing.stripeCustomerId without touching the
// rest of the document.
func (r *firestorePartnerRepository) SetStripeCustomerID(ctx context.Context, partnerID, customerID string) error {
	if partnerID == "" {
		return errors.New("partnerID cannot be empty for SetStripeCustomerID operation")
	}
	_, err := r.client.Collection(partnersCollection).Doc(partnerID).Update(ctx, []firestore.Update{
		{Path: "billing.stripeCustomerId", Value: customerID},
		{Path: "updatedAt", Value: time.Now().UTC()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("partner with ID '%s' not found: %w", partnerID, ErrNotFound)
		}
		return fmt.Errorf("failed to set Stripe customer on partner '%s': %w", partnerID, err)
	}
	return nil
}

// SetBillingState writes the billing and businessModel blocks via dotted
// field paths. Each field is an unconditional assignment, so applying the
// same state twice leaves the document unchanged.
func (r *firestorePartnerRepository) SetBillingState(ctx context.Context, partnerID string, billing models.BillingState, businessModel models.BusinessModelState) error {
	if partnerID == "" {
		return errors.New("partnerID cannot be empty for SetBillingState operation")
	}

	var subscriptionID interface{}
	if billing.SubscriptionID != "" {
		subscriptionID = billing.SubscriptionID
	}
	var ppuActivatedAt interface{}
	if businessModel.PPUActivatedAt != nil {
		ppuActivatedAt = *businessModel.PPUActivatedAt
	}

	updates := []firestore.Update{
		{Path: "businessModel.ppuEnabled", Value: businessModel.PPUEnabled},
		{Path: "businessModel.ppuActivatedAt", Value: ppuActivatedAt},
		{Path: "businessModel.currentPhase", Value: businessModel.CurrentPhase},
		{Path: "billing.subscriptionId", Value: subscriptionID},
		{Path: "billing.subscriptionStatus", Value: billing.SubscriptionStatus},
		{Path: "updatedAt", Value: time.Now().UTC()},
	}
	if billing.CurrentPeriodStart != nil {
		updates = append(updates, firestore.Update{Path: "billing.currentPeriodStart", Value: *billing.CurrentPeriodStart})
	}
	if billing.CurrentPeriodEnd != nil {
		updates = append(updates, firestore.Update{Path: "billing.currentPeriodEnd", Value: *billing.CurrentPeriodEnd})
	}

	_, err := r.client.Collection(partnersCollection).Doc(partnerID).Update(ctx, updates)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("partner with ID '%s' not found: %w", partnerID, ErrNotFound)
		}
		return fmt.Errorf("failed to set billing state on partner '%s': %w", partnerID, err)
	}
	return nil
}

// Delete removes a partner document. Subcollections (payments) are left in
// place; Firestore does not cascade and the history is intentionally kept.
func (r *firestorePartnerRepository) Delete(ctx context.Context, partnerID string) error {
	if partnerID == "" {
		return errors.New("partnerID cannot be empty for Delete operation")
	}
	_, err := r.client.Collection(partnersCollection).Doc(partnerID).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete partner with ID '%s': %w", partnerID, err)
	}
	return nil
}

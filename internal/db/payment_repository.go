package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"

	"pedro-backend-go/internal/models"
)

const paymentsSubcollection = "payments"

// firestorePaymentRepository implements PaymentRepository using the
// partners/{partnerId}/payments subcollection.
type firestorePaymentRepository struct {
	client *firestore.Client
}

// NewFirestorePaymentRepository creates a new instance of firestorePaymentRepository.
func NewFirestorePaymentRepository(client *firestore.Client) PaymentRepository {
	if client == nil {
		panic("Firestore client is not initialized for PaymentRepository")
	}
	return &firestorePaymentRepository{client: client}
}

// Create appends a payment record with an auto-generated ID and returns it.
func (r *firestorePaymentRepository) Create(ctx context.Context, partnerID string, record *models.PaymentRecord) (string, error) {
	if partnerID == "" {
		return "", errors.New("partnerID cannot be empty for payment Create operation")
	}
	docRef := r.client.Collection(partnersCollection).Doc(partnerID).Collection(paymentsSubcollection).NewDoc()
	record.ID = docRef.ID
	if _, err := docRef.Create(ctx, record); err != nil {
		return "", fmt.Errorf("failed to record payment for partner '%s': %w", partnerID, err)
	}
	return docRef.ID, nil
}

package db

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"pedro-backend-go/internal/models"
)

const (
	systemConfigCollection = "system_config"
	systemConfigDoc        = "main"
)

// firestoreSystemConfigRepository reads system_config/main.
type firestoreSystemConfigRepository struct {
	client *firestore.Client
}

// NewFirestoreSystemConfigRepository creates a new instance of firestoreSystemConfigRepository.
func NewFirestoreSystemConfigRepository(client *firestore.Client) SystemConfigRepository {
	if client == nil {
		panic("Firestore client is not initialized for SystemConfigRepository")
	}
	return &firestoreSystemConfigRepository{client: client}
}

// Get retrieves the reference-data document.
func (r *firestoreSystemConfigRepository) Get(ctx context.Context) (*models.SystemConfig, error) {
	docSnap, err := r.client.Collection(systemConfigCollection).Doc(systemConfigDoc).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("system config document not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get system config: %w", err)
	}

	var cfg models.SystemConfig
	if err := docSnap.DataTo(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode system config: %w", err)
	}
	return &cfg, nil
}

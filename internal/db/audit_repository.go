package db

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"storefront-backend-go/internal/models"
)

const auditLogsCollection = "audit_logs"

type firestoreAuditRepository struct {
	client *firestore.Client
}

// NewFirestoreAuditRepository creates a new AuditRepository backed by Firestore.
func NewFirestoreAuditRepository(client *firestore.Client) AuditRepository {
	return &firestoreAuditRepository{client: client}
}

func (r *firestoreAuditRepository) Create(ctx context.Context, logEntry models.AuditLog) error {
	if _, _, err := r.client.Collection(auditLogsCollection).Add(ctx, logEntry); err != nil {
		return fmt.Errorf("failed to write audit log '%s': %w", logEntry.Action, err)
	}
	return nil
}

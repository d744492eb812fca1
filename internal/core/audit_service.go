package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"storefront-backend-go/internal/db"
	"storefront-backend-go/internal/models"
)

// auditService implements the AuditService interface.
type auditService struct {
	auditRepo db.AuditRepository
}

// NewAuditService creates a new AuditService instance.
func NewAuditService(auditRepo db.AuditRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

// CreateAuditLog creates a new audit log entry.
func (s *auditService) CreateAuditLog(ctx context.Context, logEntry models.AuditLog) error {
	if s.auditRepo == nil {
		return fmt.Errorf("AuditRepository not initialized in AuditService")
	}
	if err := s.auditRepo.Create(ctx, logEntry); err != nil {
		return fmt.Errorf("failed to create audit log via repository: %w", err)
	}
	return nil
}

// recordAudit writes an audit entry and only logs a failure; the audited operation already happened.
func recordAudit(ctx context.Context, audit AuditService, logger *zap.Logger, userID, action, targetType, targetID string, details map[string]interface{}) {
	if audit == nil {
		return
	}
	entry := models.AuditLog{
		UserID:     userID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Timestamp:  time.Now().UTC(),
		Details:    details,
	}
	if err := audit.CreateAuditLog(ctx, entry); err != nil {
		logger.Warn("failed to create audit log",
			zap.String("action", action),
			zap.String("targetID", targetID),
			zap.Error(err))
	}
}

package service

import (
	"context"
	"time"

	"github.com/kettlegourmet/hrm/internal/models"
)

type AuditService struct {
	repository AuditStore
}

func NewAuditService(repo AuditStore) *AuditService {
	return &AuditService{repository: repo}
}

// Retrieves audit entries with pagination and an optional action filter
func (s *AuditService) List(ctx context.Context, action string, limit, offset int) ([]models.AuditEntry, error) {
	return s.repository.List(ctx, action, limit, offset)
}

// Deletes entries older than the retention period
func (s *AuditService) Prune(ctx context.Context, retentionDays int) (int64, error) {
	cutOffDate := time.Now().AddDate(0, 0, -retentionDays)
	return s.repository.DeleteOlderThan(ctx, cutOffDate)
}

package repository

import (
	"context"
	"time"

	"github.com/kettlegourmet/hrm/internal/models"
	"github.com/kettlegourmet/hrm/internal/storage"
)

type AuditRepository struct {
	db *storage.Postgres
}

func NewAuditRepository(db *storage.Postgres) *AuditRepository {
	return &AuditRepository{db: db}
}

// Inserts multiple audit entries (for batch insertion)
func (r *AuditRepository) CreateBatch(ctx context.Context, entries []models.AuditEntry) error {
	if len(entries) == 0 {
		return nil
	}

	return r.db.DB.WithContext(ctx).Create(&entries).Error
}

// Retrieves the most recent entries, optionally filtered by action
func (r *AuditRepository) List(ctx context.Context, action string, limit, offset int) ([]models.AuditEntry, error) {
	var entries []models.AuditEntry

	query := r.db.DB.WithContext(ctx)
	if action != "" {
		query = query.Where("action = ?", action)
	}

	err := query.
		Order("timestamp DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error

	return entries, err
}

// Deletes entries older than before
func (r *AuditRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.DB.WithContext(ctx).
		Where("timestamp < ?", before).
		Delete(&models.AuditEntry{})

	return result.RowsAffected, result.Error
}

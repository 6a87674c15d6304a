package repository

import (
	"context"
	"errors"

	"github.com/kettlegourmet/hrm/internal/models"
	"github.com/kettlegourmet/hrm/internal/storage"
	"gorm.io/gorm"
)

type EmployeeLeaveQuotaRepository struct {
	db *storage.Postgres
}

func NewEmployeeLeaveQuotaRepository(db *storage.Postgres) *EmployeeLeaveQuotaRepository {
	return &EmployeeLeaveQuotaRepository{db: db}
}

// Retrieves every quota record with its employee
func (r *EmployeeLeaveQuotaRepository) List(ctx context.Context) ([]models.EmployeeLeaveQuota, error) {
	var records []models.EmployeeLeaveQuota
	err := r.db.DB.WithContext(ctx).
		Preload("Employee").
		Order("employee_id ASC").
		Find(&records).Error

	return records, err
}

func (r *EmployeeLeaveQuotaRepository) FindByEmployeeID(ctx context.Context, employeeID uint) (*models.EmployeeLeaveQuota, error) {
	var record models.EmployeeLeaveQuota
	err := r.db.DB.WithContext(ctx).
		Preload("Employee").
		Where("employee_id = ?", employeeID).
		First(&record).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	return &record, err
}

// Save writes quotas and balances and sets the employee's tier label
func (r *EmployeeLeaveQuotaRepository) Save(ctx context.Context, record *models.EmployeeLeaveQuota, tier string) error {
	return r.db.Transaction(ctx, func(tx *gorm.DB) error {
		if err := saveEmployeeQuota(tx, record); err != nil {
			return err
		}

		return tx.Model(&models.User{}).
			Where("id = ?", record.EmployeeID).
			Update("tier", tier).Error
	})
}

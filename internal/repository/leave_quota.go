package repository

import (
	"context"
	"errors"

	"github.com/kettlegourmet/hrm/internal/leave"
	"github.com/kettlegourmet/hrm/internal/models"
	"github.com/kettlegourmet/hrm/internal/storage"
	"gorm.io/gorm"
)

// Columns written when an employee's quotas or balances change
var employeeQuotaColumns = []string{
	"annual_quota", "childcare_quota", "compassionate_quota",
	"parental_quota", "sick_quota", "unpaid_quota",
	"annual_balance", "childcare_balance", "compassionate_balance",
	"parental_balance", "sick_balance", "unpaid_balance",
	"updated_at",
}

type LeaveQuotaRepository struct {
	db *storage.Postgres
}

func NewLeaveQuotaRepository(db *storage.Postgres) *LeaveQuotaRepository {
	return &LeaveQuotaRepository{db: db}
}

// Retrieves all tiers ordered by name
func (r *LeaveQuotaRepository) List(ctx context.Context) ([]models.LeaveQuota, error) {
	var tiers []models.LeaveQuota
	err := r.db.DB.WithContext(ctx).
		Order("tier ASC").
		Find(&tiers).Error

	return tiers, err
}

func (r *LeaveQuotaRepository) FindByID(ctx context.Context, id uint) (*models.LeaveQuota, error) {
	var tier models.LeaveQuota
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", id).
		First(&tier).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	return &tier, err
}

func (r *LeaveQuotaRepository) FindByTier(ctx context.Context, name string) (*models.LeaveQuota, error) {
	var tier models.LeaveQuota
	err := r.db.DB.WithContext(ctx).
		Where("tier = ?", name).
		First(&tier).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	return &tier, err
}

func (r *LeaveQuotaRepository) Create(ctx context.Context, tier *models.LeaveQuota) error {
	return r.db.DB.WithContext(ctx).Create(tier).Error
}

// Update saves a tier and carries the change over to its employees in one
// transaction. A renamed tier is renamed on every assigned employee. For each
// category, employees still holding the old tier default move to the new
// default with their balance reconciled; hand-adjusted quotas are kept.
func (r *LeaveQuotaRepository) Update(ctx context.Context, tier *models.LeaveQuota) (int, error) {
	affected := 0

	err := r.db.Transaction(ctx, func(tx *gorm.DB) error {
		var current models.LeaveQuota
		if err := tx.Where("id = ?", tier.ID).First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return leave.ErrNotFound
			}
			return err
		}

		records, err := employeeQuotasOnTier(tx, current.Tier)
		if err != nil {
			return err
		}

		oldDefaults := current.Quotas()
		newDefaults := tier.Quotas()
		for i := range records {
			target := records[i].Quotas()
			changed := false
			for _, c := range leave.Categories() {
				if target.Get(c) == oldDefaults.Get(c) && oldDefaults.Get(c) != newDefaults.Get(c) {
					target.Set(c, newDefaults.Get(c))
					changed = true
				}
			}
			if !changed {
				continue
			}

			records[i].Reassign(target)
			if err := saveEmployeeQuota(tx, &records[i]); err != nil {
				return err
			}
			affected++
		}

		if current.Tier != tier.Tier {
			if err := tx.Model(&models.User{}).
				Where("tier = ?", current.Tier).
				Update("tier", tier.Tier).Error; err != nil {
				return err
			}
		}

		return tx.Model(&current).
			Select("tier", "annual", "childcare", "compassionate", "parental", "sick", "unpaid", "updated_at").
			Updates(tier).Error
	})

	return affected, err
}

// Delete removes a tier that has no assigned employees
func (r *LeaveQuotaRepository) Delete(ctx context.Context, id uint) (*models.LeaveQuota, error) {
	var deleted models.LeaveQuota

	err := r.db.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&deleted).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return leave.ErrNotFound
			}
			return err
		}

		count, err := countAssigned(tx, deleted.Tier)
		if err != nil {
			return err
		}
		if count > 0 {
			return leave.ErrTierInUse
		}

		return tx.Delete(&models.LeaveQuota{}, id).Error
	})

	if err != nil {
		return nil, err
	}

	return &deleted, nil
}

// Counts employees currently assigned to a tier
func (r *LeaveQuotaRepository) CountAssigned(ctx context.Context, tier string) (int64, error) {
	return countAssigned(r.db.DB.WithContext(ctx), tier)
}

// Replace deletes deletedTier and moves its employees to newTier, applying the
// new tier's quotas with reconciled balances. Returns the number of employees moved.
func (r *LeaveQuotaRepository) Replace(ctx context.Context, deletedTier, newTier string) (int, error) {
	moved := 0

	err := r.db.Transaction(ctx, func(tx *gorm.DB) error {
		var from, to models.LeaveQuota
		if err := tx.Where("tier = ?", deletedTier).First(&from).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return leave.ErrNotFound
			}
			return err
		}
		if err := tx.Where("tier = ?", newTier).First(&to).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return leave.ErrInvalidReplacement
			}
			return err
		}

		records, err := employeeQuotasOnTier(tx, from.Tier)
		if err != nil {
			return err
		}

		for i := range records {
			records[i].Reassign(to.Quotas())
			if err := saveEmployeeQuota(tx, &records[i]); err != nil {
				return err
			}
		}
		moved = len(records)

		if err := tx.Model(&models.User{}).
			Where("tier = ?", from.Tier).
			Update("tier", to.Tier).Error; err != nil {
			return err
		}

		return tx.Delete(&models.LeaveQuota{}, from.ID).Error
	})

	return moved, err
}

func countAssigned(db *gorm.DB, tier string) (int64, error) {
	var count int64
	err := db.Model(&models.User{}).
		Where("tier = ?", tier).
		Count(&count).Error

	return count, err
}

func employeeQuotasOnTier(tx *gorm.DB, tier string) ([]models.EmployeeLeaveQuota, error) {
	var records []models.EmployeeLeaveQuota
	err := tx.
		Where("employee_id IN (?)", tx.Model(&models.User{}).Select("id").Where("tier = ?", tier)).
		Find(&records).Error

	return records, err
}

func saveEmployeeQuota(tx *gorm.DB, record *models.EmployeeLeaveQuota) error {
	return tx.Model(record).
		Select(employeeQuotaColumns).
		Updates(record).Error
}

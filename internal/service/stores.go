package service

import (
	"context"
	"time"

	"github.com/kettlegourmet/hrm/internal/models"
)

// Actor identifies who triggered a mutation, for the audit trail
type Actor struct {
	UserID    uint
	RequestID string
}

type TierStore interface {
	List(ctx context.Context) ([]models.LeaveQuota, error)
	FindByID(ctx context.Context, id uint) (*models.LeaveQuota, error)
	FindByTier(ctx context.Context, name string) (*models.LeaveQuota, error)
	Create(ctx context.Context, tier *models.LeaveQuota) error
	Update(ctx context.Context, tier *models.LeaveQuota) (int, error)
	Delete(ctx context.Context, id uint) (*models.LeaveQuota, error)
	CountAssigned(ctx context.Context, tier string) (int64, error)
	Replace(ctx context.Context, deletedTier, newTier string) (int, error)
}

type EmployeeQuotaStore interface {
	List(ctx context.Context) ([]models.EmployeeLeaveQuota, error)
	FindByEmployeeID(ctx context.Context, employeeID uint) (*models.EmployeeLeaveQuota, error)
	Save(ctx context.Context, record *models.EmployeeLeaveQuota, tier string) error
}

type UserStore interface {
	CreateWithQuota(ctx context.Context, user *models.User, quota *models.EmployeeLeaveQuota) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateStatus(ctx context.Context, id uint, status string) error
}

type AuditStore interface {
	List(ctx context.Context, action string, limit, offset int) ([]models.AuditEntry, error)
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}

// Cache is satisfied by *storage.RedisClient
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// AuditRecorder is satisfied by *audit.Recorder
type AuditRecorder interface {
	Record(entry models.AuditEntry)
}

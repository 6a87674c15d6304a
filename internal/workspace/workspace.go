// Package workspace is an admin's editing session over leave tiers and
// employee quotas. It keeps the working copy of both collections, validates
// edits locally before any backend call, rolls back on failure and reloads
// server state after every successful write.
package workspace

import (
	"context"
	"errors"

	"github.com/kettlegourmet/hrm/internal/leave"
	"github.com/kettlegourmet/hrm/internal/models"
)

// ErrNoEdit is returned when saving without a row in edit mode
var ErrNoEdit = errors.New("no row is being edited")

// Session identifies the signed in user. It is passed explicitly to every
// table rather than read from shared state.
type Session struct {
	UserID uint
	Role   string
}

func (s Session) authorize() error {
	if s.Role != models.RoleAdmin {
		return leave.ErrForbidden
	}
	return nil
}

// Backend is the durable source of truth, implemented by client.Client
type Backend interface {
	ListTiers(ctx context.Context) ([]models.LeaveQuota, error)
	CreateTier(ctx context.Context, req models.TierRequest) (*models.LeaveQuota, error)
	EditTier(ctx context.Context, req models.TierRequest) (*models.LeaveQuota, error)
	DeleteTier(ctx context.Context, id uint) error
	TierSize(ctx context.Context, tier string) (int64, error)
	DeleteAndReplaceTier(ctx context.Context, req models.ReplaceTierRequest) (int, error)
	ListEmployeeQuotas(ctx context.Context) ([]models.EmployeeLeaveQuota, error)
	EditEmployeeQuota(ctx context.Context, req models.EmployeeQuotaRequest) (*models.EmployeeLeaveQuota, error)
}

type Level int

const (
	LevelNone Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return ""
	}
}

// Notice is the last message a table wants shown to the admin
type Notice struct {
	Level     Level
	Message   string
	Retryable bool
}

func failure(err error) Notice {
	var persistence *leave.PersistenceError
	return Notice{
		Level:     LevelError,
		Message:   err.Error(),
		Retryable: errors.As(err, &persistence),
	}
}

// Backend errors are always surfaced as retryable persistence failures
func persistenceError(op string, err error) error {
	var validation *leave.ValidationError
	if errors.As(err, &validation) {
		return err
	}
	return &leave.PersistenceError{Op: op, Err: err}
}

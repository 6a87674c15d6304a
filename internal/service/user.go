package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/kettlegourmet/hrm/internal/leave"
	"github.com/kettlegourmet/hrm/internal/models"
	"go.uber.org/zap"
)

type UserService struct {
	users    UserStore
	tiers    TierStore
	recorder AuditRecorder
	logger   *zap.Logger
}

func NewUserService(users UserStore, tiers TierStore, recorder AuditRecorder, logger *zap.Logger) *UserService {
	return &UserService{
		users:    users,
		tiers:    tiers,
		recorder: recorder,
		logger:   logger,
	}
}

// CreateEmployee onboards a user. The leave quota record starts from the
// tier's defaults with every balance equal to its quota.
func (s *UserService) CreateEmployee(ctx context.Context, actor Actor, req models.CreateUserRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	role := strings.ToUpper(strings.TrimSpace(req.Role))
	switch role {
	case "":
		role = models.RoleEmployee
	case models.RoleAdmin, models.RoleManager, models.RoleEmployee:
	default:
		return nil, &leave.ValidationError{Field: "role", Message: fmt.Sprintf("unknown role %q", req.Role)}
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &leave.ValidationError{Field: "email", Message: "user with this email already exists"}
	}

	var defaults leave.Quotas
	tierName := strings.TrimSpace(req.Tier)
	if tierName != "" {
		tier, err := s.tiers.FindByTier(ctx, tierName)
		if err != nil {
			return nil, fmt.Errorf("failed to load leave tier: %w", err)
		}
		if tier == nil {
			return nil, &leave.ValidationError{Field: "tier", Message: fmt.Sprintf("unknown tier %q", tierName)}
		}
		defaults = tier.Quotas()
	}

	hashed, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		PasswordHash: hashed,
		Role:         role,
		Status:       models.StatusActive,
		Tier:         tierName,
	}

	quota := &models.EmployeeLeaveQuota{}
	quota.Apply(defaults, defaults)

	if err := s.users.CreateWithQuota(ctx, user, quota); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if s.recorder != nil {
		s.recorder.Record(models.AuditEntry{
			ActorID:   actor.UserID,
			Action:    models.AuditEmployeeOnboarded,
			Subject:   fmt.Sprintf("employee:%d", user.ID),
			Detail:    tierName,
			RequestID: actor.RequestID,
		})
	}

	s.logger.Info("Employee onboarded", zap.Uint("user_id", user.ID), zap.String("tier", tierName))

	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) SetStatus(ctx context.Context, id uint, status string) error {
	if status != models.StatusActive && status != models.StatusDisabled {
		return &leave.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", status)}
	}

	if err := s.users.UpdateStatus(ctx, id, status); err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}

	return nil
}

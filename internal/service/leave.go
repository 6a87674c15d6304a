package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kettlegourmet/hrm/internal/leave"
	"github.com/kettlegourmet/hrm/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const tierCacheKey = "leave:tiers"

type LeaveService struct {
	tiers    TierStore
	quotas   EmployeeQuotaStore
	cache    Cache
	recorder AuditRecorder
	logger   *zap.Logger
	cacheTTL time.Duration
}

func NewLeaveService(tiers TierStore, quotas EmployeeQuotaStore, cache Cache, recorder AuditRecorder, logger *zap.Logger, cacheTTL time.Duration) *LeaveService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}

	return &LeaveService{
		tiers:    tiers,
		quotas:   quotas,
		cache:    cache,
		recorder: recorder,
		logger:   logger,
		cacheTTL: cacheTTL,
	}
}

// Retrieves all tiers ordered by name, served from redis when cached
func (s *LeaveService) ListTiers(ctx context.Context) ([]models.LeaveQuota, error) {
	cached, err := s.cache.Get(ctx, tierCacheKey)
	if err == nil && cached != "" {
		var tiers []models.LeaveQuota
		if err := json.Unmarshal([]byte(cached), &tiers); err == nil {
			return tiers, nil
		}
	}

	tiers, err := s.tiers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave tiers: %w", err)
	}

	leave.SortTiers(tiers, func(t models.LeaveQuota) string { return t.Tier })

	payload, _ := json.Marshal(tiers)
	if err := s.cache.Set(ctx, tierCacheKey, payload, s.cacheTTL); err != nil {
		s.logger.Warn("Failed to cache leave tiers", zap.Error(err))
	}

	return tiers, nil
}

func (s *LeaveService) CreateTier(ctx context.Context, actor Actor, req models.TierRequest) (*models.LeaveQuota, error) {
	name := strings.TrimSpace(req.Tier)
	if err := validateTier(name, req.Quotas()); err != nil {
		return nil, err
	}

	if err := s.ensureTierNameFree(ctx, name, 0); err != nil {
		return nil, err
	}

	tier := &models.LeaveQuota{Tier: name}
	tier.SetQuotas(req.Quotas())

	if err := s.tiers.Create(ctx, tier); err != nil {
		return nil, fmt.Errorf("failed to create leave tier: %w", translateUnique(err))
	}

	s.invalidateTiers(ctx)
	s.record(actor, models.AuditTierCreated, tier.Tier, tier.Quotas())

	return tier, nil
}

// EditTier saves new values for an existing tier. Employees on the tier are
// reconciled by the store in the same transaction.
func (s *LeaveService) EditTier(ctx context.Context, actor Actor, req models.TierRequest) (*models.LeaveQuota, error) {
	if req.ID == 0 {
		return nil, &leave.ValidationError{Field: "id", Message: "tier id is required"}
	}

	name := strings.TrimSpace(req.Tier)
	if err := validateTier(name, req.Quotas()); err != nil {
		return nil, err
	}

	current, err := s.tiers.FindByID(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load leave tier: %w", err)
	}
	if current == nil {
		return nil, fmt.Errorf("leave tier %d: %w", req.ID, leave.ErrNotFound)
	}

	if name != current.Tier {
		if err := s.ensureTierNameFree(ctx, name, current.ID); err != nil {
			return nil, err
		}
	}

	updated := *current
	updated.Tier = name
	updated.SetQuotas(req.Quotas())

	reconciled, err := s.tiers.Update(ctx, &updated)
	if err != nil {
		return nil, fmt.Errorf("failed to update leave tier: %w", translateUnique(err))
	}

	s.invalidateTiers(ctx)
	s.record(actor, models.AuditTierUpdated, updated.Tier, map[string]interface{}{
		"previousTier": current.Tier,
		"quotas":       updated.Quotas(),
		"reconciled":   reconciled,
	})

	s.logger.Info("Leave tier updated",
		zap.String("tier", updated.Tier),
		zap.Int("reconciled_employees", reconciled),
	)

	return &updated, nil
}

// DeleteTier removes a tier with no assigned employees. Assigned tiers fail
// with leave.ErrTierInUse and must go through DeleteAndReplaceTier.
func (s *LeaveService) DeleteTier(ctx context.Context, actor Actor, id uint) error {
	deleted, err := s.tiers.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete leave tier: %w", err)
	}

	s.invalidateTiers(ctx)
	s.record(actor, models.AuditTierDeleted, deleted.Tier, nil)

	return nil
}

// Counts employees assigned to a tier
func (s *LeaveService) TierSize(ctx context.Context, tier string) (int64, error) {
	count, err := s.tiers.CountAssigned(ctx, tier)
	if err != nil {
		return 0, fmt.Errorf("failed to count tier assignments: %w", err)
	}

	return count, nil
}

// DeleteAndReplaceTier moves every employee of deletedTier to newTier and
// deletes deletedTier as a single operation
func (s *LeaveService) DeleteAndReplaceTier(ctx context.Context, actor Actor, req models.ReplaceTierRequest) (int, error) {
	deletedTier := strings.TrimSpace(req.DeletedTier)
	newTier := strings.TrimSpace(req.NewTier)

	if deletedTier == "" || newTier == "" || deletedTier == newTier {
		return 0, leave.ErrInvalidReplacement
	}

	moved, err := s.tiers.Replace(ctx, deletedTier, newTier)
	if err != nil {
		return 0, fmt.Errorf("failed to replace leave tier: %w", err)
	}

	s.invalidateTiers(ctx)
	s.record(actor, models.AuditTierReplaced, deletedTier, map[string]interface{}{
		"newTier": newTier,
		"moved":   moved,
	})

	s.logger.Info("Leave tier replaced",
		zap.String("deleted_tier", deletedTier),
		zap.String("new_tier", newTier),
		zap.Int("employees_moved", moved),
	)

	return moved, nil
}

func (s *LeaveService) ListEmployeeQuotas(ctx context.Context) ([]models.EmployeeLeaveQuota, error) {
	records, err := s.quotas.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employee leave quotas: %w", err)
	}

	return records, nil
}

// EditEmployeeQuota applies new quotas to one employee. Balances are always
// derived from the stored quotas and balances, never taken from the request.
func (s *LeaveService) EditEmployeeQuota(ctx context.Context, actor Actor, req models.EmployeeQuotaRequest) (*models.EmployeeLeaveQuota, error) {
	if err := leave.ValidateQuotas(req.Quotas()); err != nil {
		return nil, err
	}

	record, err := s.quotas.FindByEmployeeID(ctx, req.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load employee leave quota: %w", err)
	}
	if record == nil {
		return nil, fmt.Errorf("employee %d: %w", req.EmployeeID, leave.ErrNotFound)
	}

	tier := strings.TrimSpace(req.Tier)
	if tier == "" {
		tier = record.Tier()
	} else if tier != record.Tier() {
		existing, err := s.tiers.FindByTier(ctx, tier)
		if err != nil {
			return nil, fmt.Errorf("failed to load leave tier: %w", err)
		}
		if existing == nil {
			return nil, &leave.ValidationError{Field: "tier", Message: fmt.Sprintf("unknown tier %q", tier)}
		}
	}

	previous := record.Quotas()
	record.Reassign(req.Quotas())

	if err := s.quotas.Save(ctx, record, tier); err != nil {
		return nil, fmt.Errorf("failed to save employee leave quota: %w", err)
	}
	record.Employee.Tier = tier

	s.record(actor, models.AuditEmployeeQuotaUpdated, fmt.Sprintf("employee:%d", record.EmployeeID), map[string]interface{}{
		"tier":           tier,
		"previousQuotas": previous,
		"quotas":         record.Quotas(),
		"balances":       record.Balances(),
	})

	return record, nil
}

func (s *LeaveService) ensureTierNameFree(ctx context.Context, name string, selfID uint) error {
	existing, err := s.tiers.FindByTier(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to check tier name: %w", err)
	}
	if existing != nil && existing.ID != selfID {
		return &leave.ValidationError{Field: "tier", Message: "Tier names must be unique!"}
	}

	return nil
}

func (s *LeaveService) invalidateTiers(ctx context.Context) {
	if err := s.cache.Del(ctx, tierCacheKey); err != nil {
		s.logger.Warn("Failed to invalidate tier cache", zap.Error(err))
	}
}

func (s *LeaveService) record(actor Actor, action, subject string, detail interface{}) {
	if s.recorder == nil {
		return
	}

	entry := models.AuditEntry{
		ActorID:   actor.UserID,
		Action:    action,
		Subject:   subject,
		RequestID: actor.RequestID,
	}
	if detail != nil {
		if payload, err := json.Marshal(detail); err == nil {
			entry.Detail = string(payload)
		}
	}

	s.recorder.Record(entry)
}

func validateTier(name string, quotas leave.Quotas) error {
	if err := leave.ValidateTierName(name); err != nil {
		return err
	}
	return leave.ValidateQuotas(quotas)
}

// Unique index violations surface as the same validation failure as the
// pre-insert name check
func translateUnique(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &leave.ValidationError{Field: "tier", Message: "Tier names must be unique!"}
	}
	return err
}

package workspace

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/kettlegourmet/hrm/internal/leave"
	"github.com/kettlegourmet/hrm/internal/models"
	"go.uber.org/zap"
)

// TierTable holds the tier list for one session. At most one row is in edit
// mode, and at most one provisional (unsaved) row exists.
type TierTable struct {
	backend Backend
	session Session
	logger  *zap.Logger

	mu          sync.Mutex
	rows        []models.LeaveQuota
	provisional *models.LeaveQuota
	editing     uint
	inEdit      bool
	notice      Notice
	stale       bool
}

func NewTierTable(backend Backend, session Session, logger *zap.Logger) *TierTable {
	return &TierTable{
		backend: backend,
		session: session,
		logger:  logger,
	}
}

// Load replaces the working copy with the backend's tiers
func (t *TierTable) Load(ctx context.Context) error {
	if err := t.session.authorize(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.reload(ctx); err != nil {
		err = persistenceError("load tiers", err)
		t.notice = failure(err)
		return err
	}

	return nil
}

// Must hold t.mu
func (t *TierTable) reload(ctx context.Context) error {
	tiers, err := t.backend.ListTiers(ctx)
	if err != nil {
		return err
	}

	leave.SortTiers(tiers, func(q models.LeaveQuota) string { return q.Tier })
	t.rows = tiers
	t.stale = false

	return nil
}

// Rows returns the confirmed rows followed by the provisional row, if any
func (t *TierTable) Rows() []models.LeaveQuota {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.view()
}

func (t *TierTable) view() []models.LeaveQuota {
	out := slices.Clone(t.rows)
	if t.provisional != nil {
		out = append(out, *t.provisional)
	}
	return out
}

// Names returns every confirmed tier name in display order
func (t *TierTable) Names() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	names := make([]string, 0, len(t.rows))
	for _, r := range t.rows {
		names = append(names, r.Tier)
	}
	return names
}

// Find returns the confirmed tier with the given name
func (t *TierTable) Find(name string) (models.LeaveQuota, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, r := range t.rows {
		if r.Tier == name {
			return r, true
		}
	}
	return models.LeaveQuota{}, false
}

// BeginAdd appends a provisional row with zero quotas and puts it in edit
// mode. Calling it again returns the existing provisional row.
func (t *TierTable) BeginAdd() models.LeaveQuota {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.provisional == nil {
		t.provisional = &models.LeaveQuota{}
	}
	t.editing, t.inEdit = 0, true

	return *t.provisional
}

// BeginEdit puts an existing row in edit mode. A row already in edit mode is
// left without saving.
func (t *TierTable) BeginEdit(id uint) (models.LeaveQuota, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, r := range t.rows {
		if r.ID == id {
			t.editing, t.inEdit = id, true
			return r, nil
		}
	}

	return models.LeaveQuota{}, fmt.Errorf("tier %d: %w", id, leave.ErrNotFound)
}

// Editing reports the id of the row in edit mode, zero for the provisional row
func (t *TierTable) Editing() (uint, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.editing, t.inEdit
}

// Cancel leaves edit mode and discards the provisional row
func (t *TierTable) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.provisional = nil
	t.editing, t.inEdit = 0, false
}

// Save merges the edited row into the working copy, checks it, persists it
// and reloads. A rejected row never reaches the backend. A failed write
// restores the table exactly as it was before Save.
func (t *TierTable) Save(ctx context.Context, req models.TierRequest) error {
	if err := t.session.authorize(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.inEdit || t.editing != req.ID {
		return ErrNoEdit
	}

	req.Tier = strings.TrimSpace(req.Tier)
	merged, err := t.merge(req)
	if err != nil {
		t.notice = failure(err)
		return err
	}

	snapshot := t.rows
	provisional := t.provisional

	// Optimistic
	t.rows = merged
	t.provisional = nil

	op := "update tier"
	var saved *models.LeaveQuota
	if req.ID == 0 {
		op = "create tier"
		saved, err = t.backend.CreateTier(ctx, req)
	} else {
		saved, err = t.backend.EditTier(ctx, req)
	}

	if err != nil {
		t.rows = snapshot
		t.provisional = provisional

		err = persistenceError(op, err)
		t.notice = failure(err)
		t.logger.Warn("Tier save failed", zap.String("tier", req.Tier), zap.Error(err))
		return err
	}

	t.editing, t.inEdit = 0, false

	if saved != nil && req.ID == 0 {
		// Give the optimistic row its server id
		for i := range t.rows {
			if t.rows[i].ID == 0 && t.rows[i].Tier == saved.Tier {
				t.rows[i] = *saved
			}
		}
	}

	t.notice = Notice{Level: LevelSuccess, Message: fmt.Sprintf("Tier %s saved", req.Tier)}
	t.refresh(ctx)

	return nil
}

// Returns the working copy with req applied, or a validation error
func (t *TierTable) merge(req models.TierRequest) ([]models.LeaveQuota, error) {
	if err := leave.ValidateTierName(req.Tier); err != nil {
		return nil, err
	}
	if err := leave.ValidateQuotas(req.Quotas()); err != nil {
		return nil, err
	}

	merged := slices.Clone(t.rows)
	row := models.LeaveQuota{ID: req.ID, Tier: req.Tier}
	row.SetQuotas(req.Quotas())

	if req.ID == 0 {
		merged = append(merged, row)
	} else {
		idx := slices.IndexFunc(merged, func(q models.LeaveQuota) bool { return q.ID == req.ID })
		if idx < 0 {
			return nil, fmt.Errorf("tier %d: %w", req.ID, leave.ErrNotFound)
		}
		row.CreatedAt = merged[idx].CreatedAt
		merged[idx] = row
	}

	names := make([]string, 0, len(merged))
	for _, r := range merged {
		names = append(names, r.Tier)
	}
	if err := leave.CheckUniqueTiers(names); err != nil {
		return nil, err
	}

	return merged, nil
}

// Reloads after a successful write. A failed reload keeps the optimistic
// rows and marks the table stale. Must hold t.mu.
func (t *TierTable) refresh(ctx context.Context) {
	if err := t.reload(ctx); err != nil {
		t.stale = true
		t.notice = Notice{
			Level:     LevelWarning,
			Message:   t.notice.Message + ", but reloading tiers failed: " + err.Error(),
			Retryable: true,
		}
		t.logger.Warn("Tier reload after write failed", zap.Error(err))
	}
}

// Notice returns the last message for the admin
func (t *TierTable) Notice() Notice {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.notice
}

// Stale reports whether the rows may differ from the backend
func (t *TierTable) Stale() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.stale
}

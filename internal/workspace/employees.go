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
	"golang.org/x/sync/errgroup"
)

// Draft is the edit form for one employee. Balances are not part of it, they
// are always derived on save.
type Draft struct {
	EmployeeID uint
	Tier       string
	Quotas     leave.Quotas
}

// EmployeeQuotaTable holds every employee's quota record except the signed
// in admin's own
type EmployeeQuotaTable struct {
	backend Backend
	session Session
	logger  *zap.Logger

	mu      sync.Mutex
	records []models.EmployeeLeaveQuota
	tiers   []models.LeaveQuota
	draft   *Draft
	notice  Notice
	stale   bool
}

func NewEmployeeQuotaTable(backend Backend, session Session, logger *zap.Logger) *EmployeeQuotaTable {
	return &EmployeeQuotaTable{
		backend: backend,
		session: session,
		logger:  logger,
	}
}

// Load fetches tiers and employee quotas concurrently
func (e *EmployeeQuotaTable) Load(ctx context.Context) error {
	if err := e.session.authorize(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.reload(ctx); err != nil {
		err = persistenceError("load employee quotas", err)
		e.notice = failure(err)
		return err
	}

	return nil
}

// Must hold e.mu
func (e *EmployeeQuotaTable) reload(ctx context.Context) error {
	var tiers []models.LeaveQuota
	var records []models.EmployeeLeaveQuota

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tiers, err = e.backend.ListTiers(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		records, err = e.backend.ListEmployeeQuotas(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}

	records = slices.DeleteFunc(records, func(r models.EmployeeLeaveQuota) bool {
		return r.EmployeeID == e.session.UserID
	})
	sortRecords(records)
	leave.SortTiers(tiers, func(q models.LeaveQuota) string { return q.Tier })

	e.records = records
	e.tiers = tiers
	e.stale = false

	return nil
}

// Orders by tier, then by employee name
func sortRecords(records []models.EmployeeLeaveQuota) {
	slices.SortStableFunc(records, func(a, b models.EmployeeLeaveQuota) int {
		if c := strings.Compare(a.Tier(), b.Tier()); c != 0 {
			return c
		}
		return strings.Compare(a.Employee.FullName(), b.Employee.FullName())
	})
}

func (e *EmployeeQuotaTable) Records() []models.EmployeeLeaveQuota {
	e.mu.Lock()
	defer e.mu.Unlock()

	return slices.Clone(e.records)
}

// Filter matches the search text against tier and full name, ignoring case.
// An empty search returns every record.
func (e *EmployeeQuotaTable) Filter(search string) []models.EmployeeLeaveQuota {
	e.mu.Lock()
	defer e.mu.Unlock()

	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return slices.Clone(e.records)
	}

	var out []models.EmployeeLeaveQuota
	for _, r := range e.records {
		if strings.Contains(strings.ToLower(r.Tier()), needle) ||
			strings.Contains(strings.ToLower(r.Employee.FullName()), needle) {
			out = append(out, r)
		}
	}
	return out
}

// BeginEdit opens the draft for one employee with their stored values
func (e *EmployeeQuotaTable) BeginEdit(employeeID uint) (Draft, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.indexOf(employeeID)
	if idx < 0 {
		return Draft{}, fmt.Errorf("employee %d: %w", employeeID, leave.ErrNotFound)
	}

	r := e.records[idx]
	e.draft = &Draft{EmployeeID: employeeID, Tier: r.Tier(), Quotas: r.Quotas()}

	return *e.draft, nil
}

// SelectTier switches the draft to a tier and fills in that tier's defaults.
// Nothing is saved.
func (e *EmployeeQuotaTable) SelectTier(name string) (Draft, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.draft == nil {
		return Draft{}, ErrNoEdit
	}

	for _, t := range e.tiers {
		if t.Tier == name {
			e.draft.Tier = t.Tier
			e.draft.Quotas = t.Quotas()
			return *e.draft, nil
		}
	}

	return Draft{}, &leave.ValidationError{Field: "tier", Message: fmt.Sprintf("unknown tier %q", name)}
}

// SetQuota hand-adjusts one category in the draft
func (e *EmployeeQuotaTable) SetQuota(category leave.Category, days int) (Draft, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.draft == nil {
		return Draft{}, ErrNoEdit
	}

	e.draft.Quotas.Set(category, days)
	return *e.draft, nil
}

func (e *EmployeeQuotaTable) Draft() (Draft, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.draft == nil {
		return Draft{}, false
	}
	return *e.draft, true
}

func (e *EmployeeQuotaTable) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.draft = nil
}

// Save reconciles every balance against the employee's stored quotas, applies
// the result optimistically and persists the six quotas and the tier label.
// On failure the records are restored and the draft kept for a retry.
func (e *EmployeeQuotaTable) Save(ctx context.Context) error {
	if err := e.session.authorize(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.draft == nil {
		return ErrNoEdit
	}
	draft := *e.draft

	if err := leave.ValidateQuotas(draft.Quotas); err != nil {
		e.notice = failure(err)
		return err
	}

	idx := e.indexOf(draft.EmployeeID)
	if idx < 0 {
		return fmt.Errorf("employee %d: %w", draft.EmployeeID, leave.ErrNotFound)
	}

	snapshot := slices.Clone(e.records)

	// Optimistic
	updated := e.records[idx]
	updated.Reassign(draft.Quotas)
	updated.Employee.Tier = draft.Tier
	e.records[idx] = updated

	req := models.NewEmployeeQuotaRequest(draft.EmployeeID, draft.Quotas, draft.Tier)
	if _, err := e.backend.EditEmployeeQuota(ctx, req); err != nil {
		e.records = snapshot

		err = persistenceError("update employee quota", err)
		e.notice = failure(err)
		e.logger.Warn("Employee quota save failed", zap.Uint("employee_id", draft.EmployeeID), zap.Error(err))
		return err
	}

	e.draft = nil
	e.notice = Notice{
		Level:   LevelSuccess,
		Message: fmt.Sprintf("Leave quota for %s saved", updated.Employee.FullName()),
	}

	if err := e.reload(ctx); err != nil {
		e.stale = true
		e.notice = Notice{
			Level:     LevelWarning,
			Message:   e.notice.Message + ", but reloading employee quotas failed: " + err.Error(),
			Retryable: true,
		}
		e.logger.Warn("Employee quota reload after write failed", zap.Error(err))
	}

	return nil
}

// Must hold e.mu
func (e *EmployeeQuotaTable) indexOf(employeeID uint) int {
	return slices.IndexFunc(e.records, func(r models.EmployeeLeaveQuota) bool {
		return r.EmployeeID == employeeID
	})
}

func (e *EmployeeQuotaTable) Notice() Notice {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.notice
}

func (e *EmployeeQuotaTable) Stale() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.stale
}

package workspace

import (
	"context"
	"fmt"
	"sync"

	"github.com/kettlegourmet/hrm/internal/leave"
	"github.com/kettlegourmet/hrm/internal/models"
	"go.uber.org/zap"
)

type DeletionState int

const (
	DeletionIdle DeletionState = iota
	DeletionSizeChecked
	DeletionConfirmDelete
	DeletionConfirmReplace
	DeletionResolved
)

func (s DeletionState) String() string {
	switch s {
	case DeletionIdle:
		return "idle"
	case DeletionSizeChecked:
		return "size-checked"
	case DeletionConfirmDelete:
		return "confirm-delete"
	case DeletionConfirmReplace:
		return "confirm-replace"
	case DeletionResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Deletion walks one tier through delete or delete-and-replace. An assigned
// tier can only be removed together with a replacement, in one backend call.
type Deletion struct {
	table *TierTable

	mu          sync.Mutex
	state       DeletionState
	target      models.LeaveQuota
	assigned    int64
	replacement string
	err         error
}

// RequestDelete checks how many employees hold the tier and moves to the
// matching confirmation state
func (t *TierTable) RequestDelete(ctx context.Context, id uint) (*Deletion, error) {
	if err := t.session.authorize(); err != nil {
		return nil, err
	}

	t.mu.Lock()
	var target *models.LeaveQuota
	for i := range t.rows {
		if t.rows[i].ID == id {
			row := t.rows[i]
			target = &row
		}
	}
	t.mu.Unlock()

	if target == nil {
		return nil, fmt.Errorf("tier %d: %w", id, leave.ErrNotFound)
	}

	d := &Deletion{table: t, state: DeletionIdle, target: *target}

	count, err := t.backend.TierSize(ctx, target.Tier)
	if err != nil {
		err = persistenceError("check tier size", err)
		t.setNotice(failure(err))
		return nil, err
	}

	// SizeChecked resolves straight into a confirmation state
	d.assigned = count
	if count == 0 {
		d.state = DeletionConfirmDelete
	} else {
		d.state = DeletionConfirmReplace
	}

	return d, nil
}

func (d *Deletion) State() DeletionState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Deletion) Target() models.LeaveQuota {
	return d.target
}

// Assigned is the number of employees on the target tier
func (d *Deletion) Assigned() int64 {
	return d.assigned
}

// Candidates lists the tiers a replacement may be chosen from. The tier being
// deleted is never offered.
func (d *Deletion) Candidates() []string {
	names := d.table.Names()

	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != d.target.Tier {
			out = append(out, n)
		}
	}
	return out
}

func (d *Deletion) SelectReplacement(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != DeletionConfirmReplace {
		return fmt.Errorf("no replacement needed in state %s", d.state)
	}

	if name == d.target.Tier {
		return leave.ErrInvalidReplacement
	}
	if _, ok := d.table.Find(name); !ok {
		return leave.ErrInvalidReplacement
	}

	d.replacement = name
	return nil
}

func (d *Deletion) Replacement() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.replacement
}

// CanConfirm is false until a tier with assignments has a distinct
// replacement selected
func (d *Deletion) CanConfirm() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.canConfirm()
}

func (d *Deletion) canConfirm() bool {
	switch d.state {
	case DeletionConfirmDelete:
		return true
	case DeletionConfirmReplace:
		return d.replacement != "" && d.replacement != d.target.Tier
	default:
		return false
	}
}

// Confirm issues exactly one backend call: a plain delete for an unassigned
// tier, delete-and-replace otherwise
func (d *Deletion) Confirm(ctx context.Context) error {
	if err := d.table.session.authorize(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.canConfirm() {
		if d.state == DeletionConfirmReplace {
			return leave.ErrInvalidReplacement
		}
		return fmt.Errorf("cannot confirm deletion in state %s", d.state)
	}

	backend := d.table.backend
	var err error
	var message string

	if d.state == DeletionConfirmDelete {
		err = backend.DeleteTier(ctx, d.target.ID)
		message = fmt.Sprintf("Tier %s deleted", d.target.Tier)
	} else {
		_, err = backend.DeleteAndReplaceTier(ctx, models.ReplaceTierRequest{
			DeletedTier: d.target.Tier,
			NewTier:     d.replacement,
		})
		message = fmt.Sprintf("Tier %s deleted, employees moved to %s", d.target.Tier, d.replacement)
	}

	d.state = DeletionResolved

	if err != nil {
		d.err = persistenceError("delete tier", err)
		d.table.setNotice(failure(d.err))
		d.table.logger.Warn("Tier deletion failed", zap.String("tier", d.target.Tier), zap.Error(err))
		return d.err
	}

	d.table.removed(ctx, d.target.ID, message)
	return nil
}

// Cancel abandons the deletion without calling the backend
func (d *Deletion) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != DeletionResolved {
		d.state = DeletionIdle
		d.replacement = ""
	}
}

// Err is the failure of a resolved deletion, nil on success
func (d *Deletion) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

func (t *TierTable) setNotice(n Notice) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.notice = n
}

// Drops a deleted row locally, then reloads
func (t *TierTable) removed(ctx context.Context, id uint, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	kept := t.rows[:0:0]
	for _, r := range t.rows {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	t.rows = kept
	if t.inEdit && t.editing == id {
		t.editing, t.inEdit = 0, false
	}

	t.notice = Notice{Level: LevelSuccess, Message: message}
	t.refresh(ctx)
}

package workspace

import (
	"context"
	"errors"
	"sync"

	"github.com/kettlegourmet/hrm/internal/leave"
	"github.com/kettlegourmet/hrm/internal/models"
)

var errUnavailable = errors.New("503 service unavailable")

// fakeBackend behaves like the HTTP service over in-memory data
type fakeBackend struct {
	mu       sync.Mutex
	tiers    []models.LeaveQuota
	records  []models.EmployeeLeaveQuota
	assigned map[string]int64
	nextID   uint

	calls map[string]int
	fail  map[string]error

	lastReplace models.ReplaceTierRequest
	lastEdit    models.EmployeeQuotaRequest
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		tiers: []models.LeaveQuota{
			{ID: 1, Tier: "Silver", Annual: 14, Sick: 10},
			{ID: 2, Tier: "Gold", Annual: 21, Sick: 14},
			{ID: 3, Tier: "Bronze", Annual: 7, Sick: 7},
		},
		assigned: map[string]int64{},
		nextID:   10,
		calls:    map[string]int{},
		fail:     map[string]error{},
	}
}

func (f *fakeBackend) call(op string) error {
	f.calls[op]++
	return f.fail[op]
}

func (f *fakeBackend) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeBackend) ListTiers(ctx context.Context) ([]models.LeaveQuota, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.call("ListTiers"); err != nil {
		return nil, err
	}
	return append([]models.LeaveQuota(nil), f.tiers...), nil
}

func (f *fakeBackend) CreateTier(ctx context.Context, req models.TierRequest) (*models.LeaveQuota, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.call("CreateTier"); err != nil {
		return nil, err
	}
	f.nextID++
	tier := models.LeaveQuota{ID: f.nextID, Tier: req.Tier}
	tier.SetQuotas(req.Quotas())
	f.tiers = append(f.tiers, tier)
	return &tier, nil
}

func (f *fakeBackend) EditTier(ctx context.Context, req models.TierRequest) (*models.LeaveQuota, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.call("EditTier"); err != nil {
		return nil, err
	}
	for i := range f.tiers {
		if f.tiers[i].ID == req.ID {
			f.tiers[i].Tier = req.Tier
			f.tiers[i].SetQuotas(req.Quotas())
			out := f.tiers[i]
			return &out, nil
		}
	}
	return nil, leave.ErrNotFound
}

func (f *fakeBackend) DeleteTier(ctx context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.call("DeleteTier"); err != nil {
		return err
	}
	for i, t := range f.tiers {
		if t.ID == id {
			if f.assigned[t.Tier] > 0 {
				return leave.ErrTierInUse
			}
			f.tiers = append(f.tiers[:i], f.tiers[i+1:]...)
			return nil
		}
	}
	return leave.ErrNotFound
}

func (f *fakeBackend) TierSize(ctx context.Context, tier string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.call("TierSize"); err != nil {
		return 0, err
	}
	return f.assigned[tier], nil
}

func (f *fakeBackend) DeleteAndReplaceTier(ctx context.Context, req models.ReplaceTierRequest) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.call("DeleteAndReplaceTier"); err != nil {
		return 0, err
	}
	f.lastReplace = req
	for i, t := range f.tiers {
		if t.Tier == req.DeletedTier {
			f.tiers = append(f.tiers[:i], f.tiers[i+1:]...)
			moved := f.assigned[req.DeletedTier]
			f.assigned[req.NewTier] += moved
			delete(f.assigned, req.DeletedTier)
			return int(moved), nil
		}
	}
	return 0, leave.ErrNotFound
}

func (f *fakeBackend) ListEmployeeQuotas(ctx context.Context) ([]models.EmployeeLeaveQuota, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.call("ListEmployeeQuotas"); err != nil {
		return nil, err
	}
	return append([]models.EmployeeLeaveQuota(nil), f.records...), nil
}

func (f *fakeBackend) EditEmployeeQuota(ctx context.Context, req models.EmployeeQuotaRequest) (*models.EmployeeLeaveQuota, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.call("EditEmployeeQuota"); err != nil {
		return nil, err
	}
	f.lastEdit = req
	for i := range f.records {
		if f.records[i].EmployeeID == req.EmployeeID {
			f.records[i].Reassign(req.Quotas())
			f.records[i].Employee.Tier = req.Tier
			out := f.records[i]
			return &out, nil
		}
	}
	return nil, leave.ErrNotFound
}

func employee(id uint, first, last, tier string, quotas, balances leave.Quotas) models.EmployeeLeaveQuota {
	r := models.EmployeeLeaveQuota{
		ID:         id,
		EmployeeID: id,
		Employee:   models.User{ID: id, FirstName: first, LastName: last, Tier: tier},
	}
	r.Apply(quotas, balances)
	return r
}

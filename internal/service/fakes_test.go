package service

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/kettlegourmet/hrm/internal/leave"
	"github.com/kettlegourmet/hrm/internal/models"
	"github.com/kettlegourmet/hrm/internal/storage"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*storage.RedisClient, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := storage.NewRedis(mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

type fakeTierStore struct {
	mu       sync.Mutex
	tiers    map[uint]models.LeaveQuota
	assigned map[string]int64
	nextID   uint
	listHits int
	replaced [][2]string
}

func newFakeTierStore(tiers ...models.LeaveQuota) *fakeTierStore {
	f := &fakeTierStore{tiers: map[uint]models.LeaveQuota{}, assigned: map[string]int64{}, nextID: 100}
	for _, t := range tiers {
		f.tiers[t.ID] = t
	}
	return f
}

func (f *fakeTierStore) List(ctx context.Context) ([]models.LeaveQuota, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.listHits++
	out := make([]models.LeaveQuota, 0, len(f.tiers))
	for _, t := range f.tiers {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTierStore) FindByID(ctx context.Context, id uint) (*models.LeaveQuota, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.tiers[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (f *fakeTierStore) FindByTier(ctx context.Context, name string) (*models.LeaveQuota, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, t := range f.tiers {
		if t.Tier == name {
			t := t
			return &t, nil
		}
	}
	return nil, nil
}

func (f *fakeTierStore) Create(ctx context.Context, tier *models.LeaveQuota) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	tier.ID = f.nextID
	f.tiers[tier.ID] = *tier
	return nil
}

func (f *fakeTierStore) Update(ctx context.Context, tier *models.LeaveQuota) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.tiers[tier.ID]; !ok {
		return 0, leave.ErrNotFound
	}
	f.tiers[tier.ID] = *tier
	return int(f.assigned[tier.Tier]), nil
}

func (f *fakeTierStore) Delete(ctx context.Context, id uint) (*models.LeaveQuota, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.tiers[id]
	if !ok {
		return nil, leave.ErrNotFound
	}
	if f.assigned[t.Tier] > 0 {
		return nil, leave.ErrTierInUse
	}
	delete(f.tiers, id)
	return &t, nil
}

func (f *fakeTierStore) CountAssigned(ctx context.Context, tier string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.assigned[tier], nil
}

func (f *fakeTierStore) Replace(ctx context.Context, deletedTier, newTier string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var fromID uint
	found := false
	for id, t := range f.tiers {
		if t.Tier == deletedTier {
			fromID, found = id, true
		}
	}
	if !found {
		return 0, leave.ErrNotFound
	}

	moved := f.assigned[deletedTier]
	f.assigned[newTier] += moved
	delete(f.assigned, deletedTier)
	delete(f.tiers, fromID)
	f.replaced = append(f.replaced, [2]string{deletedTier, newTier})
	return int(moved), nil
}

type fakeQuotaStore struct {
	mu      sync.Mutex
	records map[uint]models.EmployeeLeaveQuota
	saveErr error
}

func newFakeQuotaStore(records ...models.EmployeeLeaveQuota) *fakeQuotaStore {
	f := &fakeQuotaStore{records: map[uint]models.EmployeeLeaveQuota{}}
	for _, r := range records {
		f.records[r.EmployeeID] = r
	}
	return f
}

func (f *fakeQuotaStore) List(ctx context.Context) ([]models.EmployeeLeaveQuota, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]models.EmployeeLeaveQuota, 0, len(f.records))
	for _, r := range f.records {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeQuotaStore) FindByEmployeeID(ctx context.Context, employeeID uint) (*models.EmployeeLeaveQuota, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.records[employeeID]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (f *fakeQuotaStore) Save(ctx context.Context, record *models.EmployeeLeaveQuota, tier string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.saveErr != nil {
		return f.saveErr
	}
	saved := *record
	saved.Employee.Tier = tier
	f.records[record.EmployeeID] = saved
	return nil
}

type fakeUserStore struct {
	mu     sync.Mutex
	users  map[uint]models.User
	quotas map[uint]models.EmployeeLeaveQuota
	nextID uint
}

func newFakeUserStore(users ...models.User) *fakeUserStore {
	f := &fakeUserStore{users: map[uint]models.User{}, quotas: map[uint]models.EmployeeLeaveQuota{}}
	for _, u := range users {
		f.users[u.ID] = u
		if u.ID > f.nextID {
			f.nextID = u.ID
		}
	}
	return f
}

func (f *fakeUserStore) CreateWithQuota(ctx context.Context, user *models.User, quota *models.EmployeeLeaveQuota) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	user.ID = f.nextID
	quota.EmployeeID = user.ID
	f.users[user.ID] = *user
	f.quotas[user.ID] = *quota
	return nil
}

func (f *fakeUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) FindByID(ctx context.Context, id uint) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (f *fakeUserStore) List(ctx context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]models.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUserStore) UpdateStatus(ctx context.Context, id uint, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return leave.ErrNotFound
	}
	u.Status = status
	f.users[id] = u
	return nil
}

type captureRecorder struct {
	mu      sync.Mutex
	entries []models.AuditEntry
}

func (c *captureRecorder) Record(entry models.AuditEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = append(c.entries, entry)
}

func (c *captureRecorder) actions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e.Action)
	}
	return out
}

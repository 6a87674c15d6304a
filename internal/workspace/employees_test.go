package workspace

import (
	"context"
	"testing"

	"github.com/kettlegourmet/hrm/internal/leave"
	"github.com/kettlegourmet/hrm/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func full(n int) leave.Quotas {
	return leave.Quotas{Annual: n, Childcare: n, Compassionate: n, Parental: n, Sick: n, Unpaid: n}
}

func employeeBackend() *fakeBackend {
	backend := newFakeBackend()
	backend.records = []models.EmployeeLeaveQuota{
		employee(1, "Ada", "Admin", "Gold", full(10), full(10)),
		employee(4, "Zoe", "Brown", "Silver", full(10), full(10)),
		employee(5, "Carl", "Diaz", "Gold", full(10),
			leave.Quotas{Annual: 10, Childcare: 3, Compassionate: 8, Parental: 2, Sick: 10, Unpaid: 0}),
		employee(6, "Amy", "Stone", "Silver", full(5), full(5)),
	}
	return backend
}

func loadedEmployees(t *testing.T, backend *fakeBackend) *EmployeeQuotaTable {
	t.Helper()

	table := NewEmployeeQuotaTable(backend, adminSession, zap.NewNop())
	require.NoError(t, table.Load(context.Background()))
	return table
}

func employeeIDs(records []models.EmployeeLeaveQuota) []uint {
	out := make([]uint, 0, len(records))
	for _, r := range records {
		out = append(out, r.EmployeeID)
	}
	return out
}

func TestEmployeeQuotaTable_LoadExcludesSelfAndSorts(t *testing.T) {
	backend := employeeBackend()
	table := loadedEmployees(t, backend)

	assert.Equal(t, []uint{5, 6, 4}, employeeIDs(table.Records()))
	assert.Equal(t, 1, backend.count("ListTiers"))
	assert.Equal(t, 1, backend.count("ListEmployeeQuotas"))
}

func TestEmployeeQuotaTable_LoadFailure(t *testing.T) {
	backend := employeeBackend()
	backend.fail["ListTiers"] = errUnavailable

	table := NewEmployeeQuotaTable(backend, adminSession, zap.NewNop())
	assert.ErrorIs(t, table.Load(context.Background()), errUnavailable)
	assert.Empty(t, table.Records())
}

func TestEmployeeQuotaTable_RequiresAdmin(t *testing.T) {
	table := NewEmployeeQuotaTable(employeeBackend(), Session{UserID: 4, Role: models.RoleManager}, zap.NewNop())
	assert.ErrorIs(t, table.Load(context.Background()), leave.ErrForbidden)
	assert.ErrorIs(t, table.Save(context.Background()), leave.ErrForbidden)
}

func TestEmployeeQuotaTable_Filter(t *testing.T) {
	table := loadedEmployees(t, employeeBackend())

	assert.Equal(t, []uint{6, 4}, employeeIDs(table.Filter("silver")))
	assert.Equal(t, []uint{5}, employeeIDs(table.Filter("  DIAZ ")))
	assert.Len(t, table.Filter(""), 3)
	assert.Empty(t, table.Filter("platinum"))
}

func TestEmployeeQuotaTable_SelectTierPrefillsWithoutSaving(t *testing.T) {
	backend := employeeBackend()
	table := loadedEmployees(t, backend)

	_, err := table.SelectTier("Gold")
	assert.ErrorIs(t, err, ErrNoEdit)

	draft, err := table.BeginEdit(6)
	require.NoError(t, err)
	assert.Equal(t, "Silver", draft.Tier)
	assert.Equal(t, full(5), draft.Quotas)

	draft, err = table.SelectTier("Gold")
	require.NoError(t, err)
	assert.Equal(t, "Gold", draft.Tier)
	assert.Equal(t, leave.Quotas{Annual: 21, Sick: 14}, draft.Quotas)
	assert.Zero(t, backend.count("EditEmployeeQuota"))

	_, err = table.SelectTier("Platinum")
	assert.True(t, leave.IsValidation(err))
}

func TestEmployeeQuotaTable_SaveReconcilesAgainstStoredQuotas(t *testing.T) {
	backend := employeeBackend()
	table := loadedEmployees(t, backend)
	ctx := context.Background()

	_, err := table.BeginEdit(5)
	require.NoError(t, err)
	_, _ = table.SetQuota(leave.Annual, 15)
	_, _ = table.SetQuota(leave.Childcare, 15)
	_, _ = table.SetQuota(leave.Compassionate, 5)
	_, err = table.SetQuota(leave.Parental, 5)
	require.NoError(t, err)

	require.NoError(t, table.Save(ctx))

	assert.Equal(t, models.NewEmployeeQuotaRequest(5,
		leave.Quotas{Annual: 15, Childcare: 15, Compassionate: 5, Parental: 5, Sick: 10, Unpaid: 10}, "Gold"),
		backend.lastEdit)

	records := table.Records()
	require.Equal(t, uint(5), records[0].EmployeeID)
	assert.Equal(t,
		leave.Quotas{Annual: 15, Childcare: 8, Compassionate: 5, Parental: 2, Sick: 10, Unpaid: 0},
		records[0].Balances())

	_, editing := table.Draft()
	assert.False(t, editing)
	assert.Equal(t, LevelSuccess, table.Notice().Level)
	assert.Equal(t, 2, backend.count("ListEmployeeQuotas"), "reloaded after the write")
}

func TestEmployeeQuotaTable_BalancesStayWithinQuota(t *testing.T) {
	backend := employeeBackend()
	table := loadedEmployees(t, backend)
	ctx := context.Background()

	for _, quota := range []int{12, 3, 0, 7, 7, 20} {
		_, err := table.BeginEdit(5)
		require.NoError(t, err)
		for _, c := range leave.Categories() {
			_, _ = table.SetQuota(c, quota)
		}
		require.NoError(t, table.Save(ctx))

		for _, r := range table.Records() {
			for _, c := range leave.Categories() {
				assert.GreaterOrEqual(t, r.Balances().Get(c), 0)
				assert.LessOrEqual(t, r.Balances().Get(c), r.Quotas().Get(c))
			}
		}
	}
}

func TestEmployeeQuotaTable_TierChangeIsSaved(t *testing.T) {
	backend := employeeBackend()
	table := loadedEmployees(t, backend)

	_, err := table.BeginEdit(4)
	require.NoError(t, err)
	_, err = table.SelectTier("Bronze")
	require.NoError(t, err)
	require.NoError(t, table.Save(context.Background()))

	assert.Equal(t, "Bronze", backend.lastEdit.Tier)
	assert.Equal(t, []uint{4, 5, 6}, employeeIDs(table.Records()))
}

func TestEmployeeQuotaTable_FailedSaveRestoresRecords(t *testing.T) {
	backend := employeeBackend()
	table := loadedEmployees(t, backend)
	ctx := context.Background()
	before := table.Records()

	_, err := table.BeginEdit(5)
	require.NoError(t, err)
	_, _ = table.SetQuota(leave.Annual, 2)

	backend.fail["EditEmployeeQuota"] = errUnavailable
	err = table.Save(ctx)
	assert.ErrorIs(t, err, errUnavailable)
	assert.Equal(t, before, table.Records())
	assert.True(t, table.Notice().Retryable)

	draft, editing := table.Draft()
	assert.True(t, editing, "draft kept for a retry")
	assert.Equal(t, 2, draft.Quotas.Annual)
}

func TestEmployeeQuotaTable_NegativeQuotaNeverReachesBackend(t *testing.T) {
	backend := employeeBackend()
	table := loadedEmployees(t, backend)
	before := table.Records()

	_, err := table.BeginEdit(4)
	require.NoError(t, err)
	_, _ = table.SetQuota(leave.Sick, -3)

	assert.True(t, leave.IsValidation(table.Save(context.Background())))
	assert.Zero(t, backend.count("EditEmployeeQuota"))
	assert.Equal(t, before, table.Records())
}

func TestEmployeeQuotaTable_ReloadFailureMarksStale(t *testing.T) {
	backend := employeeBackend()
	table := loadedEmployees(t, backend)

	_, err := table.BeginEdit(4)
	require.NoError(t, err)
	_, _ = table.SetQuota(leave.Annual, 12)

	backend.fail["ListEmployeeQuotas"] = errUnavailable
	require.NoError(t, table.Save(context.Background()))

	assert.True(t, table.Stale())
	assert.Equal(t, LevelWarning, table.Notice().Level)

	records := table.Records()
	for _, r := range records {
		if r.EmployeeID == 4 {
			assert.Equal(t, 12, r.AnnualQuota)
			assert.Equal(t, 12, r.AnnualBalance)
		}
	}
}

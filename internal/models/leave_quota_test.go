package models

import (
	"testing"

	"github.com/kettlegourmet/hrm/internal/leave"
	"github.com/stretchr/testify/assert"
)

func TestEmployeeLeaveQuota_Reassign(t *testing.T) {
	record := EmployeeLeaveQuota{Employee: User{Tier: "Tier 1"}}
	record.Apply(
		leave.Quotas{Annual: 10, Sick: 10, Unpaid: 5},
		leave.Quotas{Annual: 3, Sick: 10, Unpaid: 5},
	)

	record.Reassign(leave.Quotas{Annual: 15, Sick: 5, Unpaid: 5})

	assert.Equal(t, leave.Quotas{Annual: 15, Sick: 5, Unpaid: 5}, record.Quotas())
	assert.Equal(t, leave.Quotas{Annual: 8, Sick: 5, Unpaid: 5}, record.Balances())
	assert.Equal(t, "Tier 1", record.Tier())
}

func TestTierRequest_RoundTripsQuotas(t *testing.T) {
	tier := LeaveQuota{ID: 7, Tier: "Gold", Annual: 21, Childcare: 6, Sick: 14}
	req := NewTierRequest(tier)

	assert.Equal(t, uint(7), req.ID)
	assert.Equal(t, tier.Quotas(), req.Quotas())
}

func TestUser_FullName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", User{FirstName: "Ada", LastName: "Lovelace"}.FullName())
	assert.Equal(t, "Ada", User{FirstName: "Ada"}.FullName())
}

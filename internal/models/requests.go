package models

import "github.com/kettlegourmet/hrm/internal/leave"

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

// TierRequest is the create/edit payload for a tier. ID is omitted on create.
type TierRequest struct {
	ID            uint   `json:"id,omitempty"`
	Tier          string `json:"tier"`
	Annual        int    `json:"annual"`
	Childcare     int    `json:"childcare"`
	Compassionate int    `json:"compassionate"`
	Parental      int    `json:"parental"`
	Sick          int    `json:"sick"`
	Unpaid        int    `json:"unpaid"`
}

func NewTierRequest(q LeaveQuota) TierRequest {
	return TierRequest{
		ID:            q.ID,
		Tier:          q.Tier,
		Annual:        q.Annual,
		Childcare:     q.Childcare,
		Compassionate: q.Compassionate,
		Parental:      q.Parental,
		Sick:          q.Sick,
		Unpaid:        q.Unpaid,
	}
}

func (r TierRequest) Quotas() leave.Quotas {
	return leave.Quotas{
		Annual:        r.Annual,
		Childcare:     r.Childcare,
		Compassionate: r.Compassionate,
		Parental:      r.Parental,
		Sick:          r.Sick,
		Unpaid:        r.Unpaid,
	}
}

type ReplaceTierRequest struct {
	DeletedTier string `json:"deletedTier" binding:"required"`
	NewTier     string `json:"newTier" binding:"required"`
}

type TierSizeResponse struct {
	Tier  string `json:"tier"`
	Count int64  `json:"count"`
}

// EmployeeQuotaRequest carries the six quotas and the tier label only.
// Balances are always recomputed by the server.
type EmployeeQuotaRequest struct {
	EmployeeID         uint   `json:"employeeId" binding:"required"`
	AnnualQuota        int    `json:"annualQuota"`
	ChildcareQuota     int    `json:"childcareQuota"`
	CompassionateQuota int    `json:"compassionateQuota"`
	ParentalQuota      int    `json:"parentalQuota"`
	SickQuota          int    `json:"sickQuota"`
	UnpaidQuota        int    `json:"unpaidQuota"`
	Tier               string `json:"tier"`
}

func NewEmployeeQuotaRequest(employeeID uint, quotas leave.Quotas, tier string) EmployeeQuotaRequest {
	return EmployeeQuotaRequest{
		EmployeeID:         employeeID,
		AnnualQuota:        quotas.Annual,
		ChildcareQuota:     quotas.Childcare,
		CompassionateQuota: quotas.Compassionate,
		ParentalQuota:      quotas.Parental,
		SickQuota:          quotas.Sick,
		UnpaidQuota:        quotas.Unpaid,
		Tier:               tier,
	}
}

func (r EmployeeQuotaRequest) Quotas() leave.Quotas {
	return leave.Quotas{
		Annual:        r.AnnualQuota,
		Childcare:     r.ChildcareQuota,
		Compassionate: r.CompassionateQuota,
		Parental:      r.ParentalQuota,
		Sick:          r.SickQuota,
		Unpaid:        r.UnpaidQuota,
	}
}

type CreateUserRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Role      string `json:"role"`
	Tier      string `json:"tier"`
}

type UserStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=ACTIVE DISABLED"`
}

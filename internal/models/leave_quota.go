package models

import (
	"time"

	"github.com/kettlegourmet/hrm/internal/leave"
)

// LeaveQuota is a leave tier: a named bundle of default quotas per category
type LeaveQuota struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Tier          string    `gorm:"uniqueIndex;not null" json:"tier"`
	Annual        int       `gorm:"not null;default:0" json:"annual"`
	Childcare     int       `gorm:"not null;default:0" json:"childcare"`
	Compassionate int       `gorm:"not null;default:0" json:"compassionate"`
	Parental      int       `gorm:"not null;default:0" json:"parental"`
	Sick          int       `gorm:"not null;default:0" json:"sick"`
	Unpaid        int       `gorm:"not null;default:0" json:"unpaid"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (q LeaveQuota) Quotas() leave.Quotas {
	return leave.Quotas{
		Annual:        q.Annual,
		Childcare:     q.Childcare,
		Compassionate: q.Compassionate,
		Parental:      q.Parental,
		Sick:          q.Sick,
		Unpaid:        q.Unpaid,
	}
}

func (q *LeaveQuota) SetQuotas(v leave.Quotas) {
	q.Annual = v.Annual
	q.Childcare = v.Childcare
	q.Compassionate = v.Compassionate
	q.Parental = v.Parental
	q.Sick = v.Sick
	q.Unpaid = v.Unpaid
}

func (LeaveQuota) TableName() string {
	return "leave_quotas"
}

// EmployeeLeaveQuota is one employee's current entitlement and remaining days
type EmployeeLeaveQuota struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	EmployeeID uint `gorm:"uniqueIndex;not null" json:"employeeId"`
	Employee   User `gorm:"foreignKey:EmployeeID" json:"employee"`

	AnnualQuota        int `gorm:"not null;default:0" json:"annualQuota"`
	ChildcareQuota     int `gorm:"not null;default:0" json:"childcareQuota"`
	CompassionateQuota int `gorm:"not null;default:0" json:"compassionateQuota"`
	ParentalQuota      int `gorm:"not null;default:0" json:"parentalQuota"`
	SickQuota          int `gorm:"not null;default:0" json:"sickQuota"`
	UnpaidQuota        int `gorm:"not null;default:0" json:"unpaidQuota"`

	AnnualBalance        int `gorm:"not null;default:0" json:"annualBalance"`
	ChildcareBalance     int `gorm:"not null;default:0" json:"childcareBalance"`
	CompassionateBalance int `gorm:"not null;default:0" json:"compassionateBalance"`
	ParentalBalance      int `gorm:"not null;default:0" json:"parentalBalance"`
	SickBalance          int `gorm:"not null;default:0" json:"sickBalance"`
	UnpaidBalance        int `gorm:"not null;default:0" json:"unpaidBalance"`

	UpdatedAt time.Time `json:"updatedAt"`
}

func (e EmployeeLeaveQuota) Quotas() leave.Quotas {
	return leave.Quotas{
		Annual:        e.AnnualQuota,
		Childcare:     e.ChildcareQuota,
		Compassionate: e.CompassionateQuota,
		Parental:      e.ParentalQuota,
		Sick:          e.SickQuota,
		Unpaid:        e.UnpaidQuota,
	}
}

func (e EmployeeLeaveQuota) Balances() leave.Quotas {
	return leave.Quotas{
		Annual:        e.AnnualBalance,
		Childcare:     e.ChildcareBalance,
		Compassionate: e.CompassionateBalance,
		Parental:      e.ParentalBalance,
		Sick:          e.SickBalance,
		Unpaid:        e.UnpaidBalance,
	}
}

// Apply overwrites quotas and balances in one go
func (e *EmployeeLeaveQuota) Apply(quotas, balances leave.Quotas) {
	e.AnnualQuota = quotas.Annual
	e.ChildcareQuota = quotas.Childcare
	e.CompassionateQuota = quotas.Compassionate
	e.ParentalQuota = quotas.Parental
	e.SickQuota = quotas.Sick
	e.UnpaidQuota = quotas.Unpaid

	e.AnnualBalance = balances.Annual
	e.ChildcareBalance = balances.Childcare
	e.CompassionateBalance = balances.Compassionate
	e.ParentalBalance = balances.Parental
	e.SickBalance = balances.Sick
	e.UnpaidBalance = balances.Unpaid
}

// Reassign moves the record to newQuotas, reconciling every balance against
// the quotas it held before
func (e *EmployeeLeaveQuota) Reassign(newQuotas leave.Quotas) {
	balances := leave.ReconcileAll(e.Balances(), e.Quotas(), newQuotas)
	e.Apply(newQuotas, balances)
}

// The tier label comes from the employee record
func (e EmployeeLeaveQuota) Tier() string {
	return e.Employee.Tier
}

func (EmployeeLeaveQuota) TableName() string {
	return "employee_leave_quotas"
}

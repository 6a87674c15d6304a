// Package leave holds the leave-quota rules shared by the HTTP service and the
// admin workspace: the six leave categories, balance reconciliation and tier
// validation.
package leave

import "fmt"

type Category int

const (
	Annual Category = iota
	Childcare
	Compassionate
	Parental
	Sick
	Unpaid
)

var categoryNames = [...]string{"annual", "childcare", "compassionate", "parental", "sick", "unpaid"}

// Returns every category in display order
func Categories() []Category {
	return []Category{Annual, Childcare, Compassionate, Parental, Sick, Unpaid}
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "unknown"
	}
	return categoryNames[c]
}

// Parses a category name such as "annual" or "sick"
func ParseCategory(name string) (Category, error) {
	for i, n := range categoryNames {
		if n == name {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("unknown leave category: %s", name)
}

// Quotas carries one integer per leave category. It is used both for quota
// (maximum days) and balance (remaining days) values.
type Quotas struct {
	Annual        int `json:"annual"`
	Childcare     int `json:"childcare"`
	Compassionate int `json:"compassionate"`
	Parental      int `json:"parental"`
	Sick          int `json:"sick"`
	Unpaid        int `json:"unpaid"`
}

func (q Quotas) Get(c Category) int {
	switch c {
	case Annual:
		return q.Annual
	case Childcare:
		return q.Childcare
	case Compassionate:
		return q.Compassionate
	case Parental:
		return q.Parental
	case Sick:
		return q.Sick
	case Unpaid:
		return q.Unpaid
	default:
		return 0
	}
}

func (q *Quotas) Set(c Category, days int) {
	switch c {
	case Annual:
		q.Annual = days
	case Childcare:
		q.Childcare = days
	case Compassionate:
		q.Compassionate = days
	case Parental:
		q.Parental = days
	case Sick:
		q.Sick = days
	case Unpaid:
		q.Unpaid = days
	}
}

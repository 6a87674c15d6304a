package leave

import (
	"fmt"
	"sort"
	"strings"
)

func ValidateTierName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "tier", Message: "tier name is required"}
	}
	return nil
}

// Rejects negative quota values
func ValidateQuotas(q Quotas) error {
	for _, c := range Categories() {
		if q.Get(c) < 0 {
			return &ValidationError{
				Field:   c.String(),
				Message: fmt.Sprintf("quota must be a non-negative integer, got %d", q.Get(c)),
			}
		}
	}
	return nil
}

// CheckUniqueTiers compares names case-sensitively, as provided. It fails when
// the number of distinct names is lower than the number of rows.
func CheckUniqueTiers(names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		seen[n] = struct{}{}
	}

	if len(seen) < len(names) {
		return &ValidationError{Field: "tier", Message: "Tier names must be unique!"}
	}
	return nil
}

// SortTiers orders items by the tier name returned by key. The sort is stable
// so rows sharing a tier keep their relative order.
func SortTiers[T any](items []T, key func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		return key(items[i]) < key(items[j])
	})
}

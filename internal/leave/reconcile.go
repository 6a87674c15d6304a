package leave

// Reconcile computes the remaining balance for one category after its quota
// changes from oldQuota to newQuota. The result never exceeds newQuota and
// days already taken stay taken.
func Reconcile(currentBalance, newQuota, oldQuota int) int {
	if currentBalance >= newQuota {
		return newQuota
	}

	if newQuota >= oldQuota {
		return currentBalance + (newQuota - oldQuota)
	}

	return min(currentBalance, newQuota)
}

// Applies Reconcile to every category independently
func ReconcileAll(balances, oldQuotas, newQuotas Quotas) Quotas {
	var out Quotas
	for _, c := range Categories() {
		out.Set(c, Reconcile(balances.Get(c), newQuotas.Get(c), oldQuotas.Get(c)))
	}
	return out
}

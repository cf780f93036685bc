package ledger

import (
	"math"
	"slices"
	"strings"

	"ricemill/backend/internal/domain"
)

// CenterTotals groups intake by center and district, sorted by center name.
func CenterTotals(intakes []domain.PaddyIntake) []domain.CenterTotal {
	byKey := make(map[string]*domain.CenterTotal)
	order := make([]string, 0)
	for _, intake := range intakes {
		key := domain.CenterKey(intake.Center, intake.District)
		total, ok := byKey[key]
		if !ok {
			total = &domain.CenterTotal{CenterKey: key, Center: intake.Center, District: intake.District}
			byKey[key] = total
			order = append(order, key)
		}
		total.Trucks++
		total.TotalBags += intake.TotalBags
		total.TotalQuintals += intake.Quintals
	}

	out := make([]domain.CenterTotal, 0, len(order))
	for _, key := range order {
		out = append(out, *byKey[key])
	}
	slices.SortStableFunc(out, func(a, b domain.CenterTotal) int {
		if c := strings.Compare(a.Center, b.Center); c != 0 {
			return c
		}
		return strings.Compare(a.District, b.District)
	})
	return out
}

func FindCenter(totals []domain.CenterTotal, key string) (domain.CenterTotal, bool) {
	for _, total := range totals {
		if total.CenterKey == key {
			return total, true
		}
	}
	return domain.CenterTotal{}, false
}

// Reconcile adds amount to the center's reconciled quantity, clamped to the
// outstanding balance. It returns the new state and the quantity applied.
func Reconcile(state domain.ReconciliationState, totalQuintals float64, amount float64) (domain.ReconciliationState, float64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return state, 0, domain.Invalid("reconcile amount must be a positive number")
	}
	balance := totalQuintals - state.ReconciledQuintals
	if balance <= 0 {
		return state, 0, nil
	}
	if amount >= balance {
		state.ReconciledQuintals = totalQuintals
		return state, balance, nil
	}
	state.ReconciledQuintals += amount
	return state, amount, nil
}

// ReconciliationView derives balance and status from the live center total.
func ReconciliationView(total domain.CenterTotal, state *domain.ReconciliationState) domain.Reconciliation {
	view := domain.Reconciliation{
		CenterKey:       total.CenterKey,
		Center:          total.Center,
		District:        total.District,
		TotalQuintals:   total.TotalQuintals,
		BalanceQuintals: total.TotalQuintals,
		Status:          domain.ReconPending,
	}
	if state == nil {
		return view
	}
	updated := state.UpdatedAt
	view.ReconciledQuintals = state.ReconciledQuintals
	view.BalanceQuintals = total.TotalQuintals - state.ReconciledQuintals
	view.DocumentRef = state.DocumentRef
	view.Notes = state.Notes
	view.UpdatedAt = &updated
	switch {
	case view.BalanceQuintals <= 0:
		view.Status = domain.ReconCompleted
	case state.ReconciledQuintals > 0:
		view.Status = domain.ReconInProgress
	}
	return view
}

func GunnyStatus(acknowledged bool) domain.GunnyDispatchStatus {
	if acknowledged {
		return domain.GunnyAcknowledged
	}
	return domain.GunnyDispatched
}

package ledger

import (
	"strings"

	"ricemill/backend/internal/domain"
)

var hamaliRates = []domain.HamaliRate{
	{WorkType: "Paddy Unloading", Rate: 3.00, Unit: domain.UnitBags},
	{WorkType: "Paddy Stacking", Rate: 2.00, Unit: domain.UnitBags},
	{WorkType: "Paddy Destacking", Rate: 2.00, Unit: domain.UnitBags},
	{WorkType: "Paddy Hopper Feeding", Rate: 2.50, Unit: domain.UnitBags},
	{WorkType: "Paddy Drying (Batti)", Rate: 12.00, Unit: domain.UnitQtl},
	{WorkType: "Parboiling Tank Loading", Rate: 8.00, Unit: domain.UnitQtl},
	{WorkType: "Rice Bagging", Rate: 3.50, Unit: domain.UnitBags},
	{WorkType: "Rice Stitching", Rate: 1.00, Unit: domain.UnitBags},
	{WorkType: "Rice Stacking", Rate: 2.00, Unit: domain.UnitBags},
	{WorkType: "Rice Loading (FCI Truck)", Rate: 4.00, Unit: domain.UnitBags},
	{WorkType: "ACK Dispatch Loading", Rate: 2300.00, Unit: domain.UnitAck},
	{WorkType: "FRK Blending", Rate: 0.75, Unit: domain.UnitQtl},
	{WorkType: "Sticker Pasting", Rate: 0.30, Unit: domain.UnitBags},
	{WorkType: "Husk Loading", Rate: 450.00, Unit: domain.UnitTon},
	{WorkType: "Husk Boiler Feeding", Rate: 300.00, Unit: domain.UnitTon},
	{WorkType: "Ash Removal", Rate: 350.00, Unit: domain.UnitTon},
	{WorkType: "Bran Bagging", Rate: 3.00, Unit: domain.UnitBags},
	{WorkType: "Bran Loading", Rate: 2.50, Unit: domain.UnitBags},
	{WorkType: "Broken Rice Bagging", Rate: 3.00, Unit: domain.UnitBags},
	{WorkType: "Broken Rice Loading", Rate: 2.50, Unit: domain.UnitBags},
	{WorkType: "Gunny Bale Unloading", Rate: 25.00, Unit: domain.UnitBale},
	{WorkType: "Gunny Counting & Sorting", Rate: 0.50, Unit: domain.UnitBags},
	{WorkType: "Old Gunny Loading", Rate: 0.40, Unit: domain.UnitBags},
	{WorkType: "Shed Cleaning", Rate: 500.00, Unit: domain.UnitDays},
	{WorkType: "Godown Cleaning", Rate: 600.00, Unit: domain.UnitDays},
	{WorkType: "Night Watch", Rate: 700.00, Unit: domain.UnitDays},
	{WorkType: "Weighbridge Helper", Rate: 80.00, Unit: domain.UnitHours},
	{WorkType: "Machine Maintenance Helper", Rate: 100.00, Unit: domain.UnitHours},
}

func HamaliRates() []domain.HamaliRate {
	out := make([]domain.HamaliRate, len(hamaliRates))
	copy(out, hamaliRates)
	return out
}

func LookupHamaliRate(workType string) (domain.HamaliRate, bool) {
	needle := strings.TrimSpace(workType)
	for _, rate := range hamaliRates {
		if strings.EqualFold(rate.WorkType, needle) {
			return rate, true
		}
	}
	return domain.HamaliRate{}, false
}

// AllocateHamaliPayment walks pending entries in collection order and settles
// each one the remaining amount fully covers. An entry that does not fit is
// skipped and stays pending, even if a later smaller one would fit the gap
// left by it. Entries are never part-paid.
func AllocateHamaliPayment(entries []domain.HamaliWorkEntry, amount float64) (settled []string, remaining float64) {
	remaining = amount
	settled = make([]string, 0)
	for _, entry := range entries {
		if entry.PaymentStatus != domain.WorkPending {
			continue
		}
		if remaining >= entry.TotalAmount {
			settled = append(settled, entry.ID)
			remaining -= entry.TotalAmount
		}
	}
	return settled, remaining
}

func SummarizeHamali(entries []domain.HamaliWorkEntry, payments []domain.HamaliPayment) domain.HamaliSummary {
	var summary domain.HamaliSummary
	for _, entry := range entries {
		summary.TotalWorkAmount += entry.TotalAmount
		if entry.PaymentStatus == domain.WorkPaid {
			summary.PaidWorkAmount += entry.TotalAmount
			continue
		}
		summary.PendingWorkAmount += entry.TotalAmount
		summary.PendingEntries++
	}
	for _, payment := range payments {
		summary.TotalPaymentAmount += payment.Amount
	}
	return summary
}

func SalaryStatus(monthlySalary float64, paid float64) domain.PaymentStatus {
	if paid >= monthlySalary {
		return domain.PaymentPaid
	}
	return domain.PaymentPending
}

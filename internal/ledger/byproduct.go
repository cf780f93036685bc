package ledger

import (
	"time"

	"ricemill/backend/internal/domain"
)

func PriceLineItem(category domain.ByProductCategory, quantity float64, rate float64, gstRate float64) domain.SaleLineItem {
	amount := quantity * rate
	gst := amount * gstRate / 100
	return domain.SaleLineItem{
		Category:  category,
		Quantity:  quantity,
		Rate:      rate,
		GSTRate:   gstRate,
		Amount:    amount,
		GSTAmount: gst,
		Total:     amount + gst,
	}
}

// PriceSale fills the sale-level totals, due date and an unpaid balance.
func PriceSale(sale domain.ByProductSale) domain.ByProductSale {
	sale.Subtotal, sale.GSTAmount = 0, 0
	for _, item := range sale.Items {
		sale.Subtotal += item.Amount
		sale.GSTAmount += item.GSTAmount
	}
	sale.TotalAmount = sale.Subtotal + sale.GSTAmount
	sale.DueDate = sale.SaleDate.AddDate(0, 0, sale.PaymentTermsDays)
	sale.PaidAmount = 0
	sale.BalanceAmount = sale.TotalAmount
	sale.PaymentStatus = SaleStatus(sale.PaidAmount, sale.BalanceAmount)
	return sale
}

func SaleStatus(paid float64, balance float64) domain.PaymentStatus {
	switch {
	case balance <= 0:
		return domain.PaymentPaid
	case paid > 0:
		return domain.PaymentPartial
	default:
		return domain.PaymentPending
	}
}

// ApplySalePayment returns the sale after receiving amount. The input is not
// modified, so a rejected payment leaves the caller's copy untouched.
func ApplySalePayment(sale domain.ByProductSale, amount float64) (domain.ByProductSale, error) {
	if amount <= 0 {
		return sale, domain.Invalid("payment amount must be greater than zero")
	}
	if amount > sale.BalanceAmount {
		return sale, domain.NewBalanceShortfall("sale "+sale.InvoiceNo, sale.BalanceAmount, amount)
	}
	if amount == sale.BalanceAmount {
		sale.PaidAmount = sale.TotalAmount
	} else {
		sale.PaidAmount += amount
	}
	sale.BalanceAmount = sale.TotalAmount - sale.PaidAmount
	sale.PaymentStatus = SaleStatus(sale.PaidAmount, sale.BalanceAmount)
	return sale, nil
}

// DeriveStock builds the per-category stock table in display order.
func DeriveStock(productions []domain.ByProductProduction, sales []domain.ByProductSale) []domain.ByProductStock {
	index := make(map[domain.ByProductCategory]*domain.ByProductStock, len(domain.ByProductCategories))
	table := make([]domain.ByProductStock, len(domain.ByProductCategories))
	for i, category := range domain.ByProductCategories {
		table[i].Category = category
		index[category] = &table[i]
	}

	for _, production := range productions {
		for category, qty := range production.Quantities {
			if row, ok := index[category]; ok {
				row.TotalProduced += qty
			}
		}
	}
	for _, sale := range sales {
		for _, item := range sale.Items {
			if row, ok := index[item.Category]; ok {
				row.TotalSold += item.Quantity
				row.TotalRevenue += item.Amount
			}
		}
	}

	for i := range table {
		table[i].CurrentStock = table[i].TotalProduced - table[i].TotalSold
		if table[i].TotalSold > 0 {
			table[i].AverageRate = table[i].TotalRevenue / table[i].TotalSold
		}
	}
	return table
}

// OverdueSales lists sales with an open balance whose due date is before asOf.
func OverdueSales(sales []domain.ByProductSale, asOf time.Time) []domain.OverdueSale {
	day := truncateDay(asOf)
	overdue := make([]domain.OverdueSale, 0)
	for _, sale := range sales {
		if sale.BalanceAmount <= 0 {
			continue
		}
		due := truncateDay(sale.DueDate)
		if !due.Before(day) {
			continue
		}
		overdue = append(overdue, domain.OverdueSale{
			SaleID:      sale.ID,
			InvoiceNo:   sale.InvoiceNo,
			PartyName:   sale.PartyName,
			Balance:     sale.BalanceAmount,
			DaysOverdue: int(day.Sub(due).Hours() / 24),
		})
	}
	return overdue
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

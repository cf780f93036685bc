package service

import (
	"context"
	"slices"
	"strings"

	"ricemill/backend/internal/domain"
	"ricemill/backend/internal/export"
	"ricemill/backend/internal/ledger"
)

// ExportNames lists the exportable collections in workbook order.
var ExportNames = []string{
	"paddy-intakes",
	"rice-production",
	"byproduct-production",
	"byproduct-stock",
	"byproduct-sales",
	"byproduct-payments",
	"electricity-readings",
	"hamali-work",
	"hamali-payments",
	"supervisor-salaries",
	"reconciliations",
	"gunny-dispatches",
	"fci-consignments",
	"packaging-movements",
}

func (s *Service) ExportTable(ctx context.Context, name string) (export.Table, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if !slices.Contains(ExportNames, name) {
		return export.Table{}, domain.ErrNotFound
	}
	switch name {
	case "paddy-intakes":
		intakes, err := s.repo.ListPaddyIntakes(ctx)
		if err != nil {
			return export.Table{}, err
		}
		table := export.Table{Name: name, Headers: []string{"serial_no", "date", "vehicle_no", "slip_no", "chit_no", "center", "district", "new_bags", "old_bags", "total_bags", "quintals", "moisture_pct", "unloading_point"}}
		for _, r := range intakes {
			table.Rows = append(table.Rows, []any{r.SerialNo, r.Date, r.VehicleNo, r.SlipNo, r.ChitNo, r.Center, r.District, r.NewBags, r.OldBags, r.TotalBags, r.Quintals, r.MoisturePct, string(r.UnloadingPoint)})
		}
		return table, nil

	case "rice-production":
		batches, err := s.repo.ListRiceBatches(ctx)
		if err != nil {
			return export.Table{}, err
		}
		table := export.Table{Name: name, Headers: []string{"id", "production_date", "ack_label", "ack_count", "rice_type", "rice_produced", "paddy_used", "mill_name", "notes"}}
		for _, b := range batches {
			table.Rows = append(table.Rows, []any{b.ID, b.ProductionDate, b.AckLabel, b.AckCount, string(b.RiceType), b.RiceProduced, b.PaddyUsed, b.MillName, b.Notes})
		}
		return table, nil

	case "byproduct-production":
		productions, err := s.repo.ListByProductProductions(ctx)
		if err != nil {
			return export.Table{}, err
		}
		headers := []string{"id", "rice_batch_id", "ack_label", "production_date", "paddy_used"}
		for _, category := range domain.ByProductCategories {
			headers = append(headers, string(category))
		}
		for _, category := range domain.ByProductCategories {
			headers = append(headers, string(category)+"_yield_pct")
		}
		table := export.Table{Name: name, Headers: append(headers, "notes")}
		for _, p := range productions {
			row := []any{p.ID, p.RiceBatchID, p.AckLabel, p.ProductionDate, p.PaddyUsed}
			for _, category := range domain.ByProductCategories {
				row = append(row, p.Quantities[category])
			}
			for _, category := range domain.ByProductCategories {
				row = append(row, p.Yields[category])
			}
			table.Rows = append(table.Rows, append(row, p.Notes))
		}
		return table, nil

	case "byproduct-stock":
		stock, err := s.ByProductStock(ctx)
		if err != nil {
			return export.Table{}, err
		}
		table := export.Table{Name: name, Headers: []string{"category", "total_produced", "total_sold", "current_stock", "total_revenue", "average_rate"}}
		for _, row := range stock {
			table.Rows = append(table.Rows, []any{string(row.Category), row.TotalProduced, row.TotalSold, row.CurrentStock, row.TotalRevenue, row.AverageRate})
		}
		return table, nil

	case "byproduct-sales":
		sales, err := s.repo.ListByProductSales(ctx)
		if err != nil {
			return export.Table{}, err
		}
		table := export.Table{Name: name, Headers: []string{"invoice_no", "sale_date", "party_name", "party_gstin", "items", "subtotal", "gst_amount", "total_amount", "paid_amount", "balance_amount", "due_date", "payment_status"}}
		for _, sale := range sales {
			items := make([]string, 0, len(sale.Items))
			for _, item := range sale.Items {
				items = append(items, string(item.Category)+" x "+export.FormatCell(item.Quantity))
			}
			table.Rows = append(table.Rows, []any{sale.InvoiceNo, sale.SaleDate, sale.PartyName, sale.PartyGSTIN, strings.Join(items, "; "), sale.Subtotal, sale.GSTAmount, sale.TotalAmount, sale.PaidAmount, sale.BalanceAmount, sale.DueDate, string(sale.PaymentStatus)})
		}
		return table, nil

	case "byproduct-payments":
		payments, err := s.repo.ListByProductPayments(ctx, "")
		if err != nil {
			return export.Table{}, err
		}
		table := export.Table{Name: name, Headers: []string{"id", "invoice_no", "payment_date", "amount", "method", "reference_no", "notes"}}
		for _, p := range payments {
			table.Rows = append(table.Rows, []any{p.ID, p.InvoiceNo, p.PaymentDate, p.Amount, p.Method, p.ReferenceNo, p.Notes})
		}
		return table, nil

	case "electricity-readings":
		readings, err := s.ListReadings(ctx)
		if err != nil {
			return export.Table{}, err
		}
		table := export.Table{Name: name, Headers: []string{"reading_date", "bill_period", "kwh", "kvah", "rmd", "bill_amount", "power_factor", "cost_per_unit", "notes"}}
		for _, r := range readings {
			table.Rows = append(table.Rows, []any{r.ReadingDate, r.BillPeriod, r.KWh, r.KVAh, r.RMD, r.BillAmount, r.PowerFactor, r.CostPerUnit, r.Notes})
		}
		return table, nil

	case "hamali-work":
		entries, err := s.repo.ListHamaliWork(ctx)
		if err != nil {
			return export.Table{}, err
		}
		table := export.Table{Name: name, Headers: []string{"work_date", "work_type", "description", "quantity", "unit", "rate", "total_amount", "payment_status"}}
		for _, e := range entries {
			table.Rows = append(table.Rows, []any{e.WorkDate, e.WorkType, e.Description, e.Quantity, e.Unit, e.Rate, e.TotalAmount, string(e.PaymentStatus)})
		}
		return table, nil

	case "hamali-payments":
		payments, err := s.repo.ListHamaliPayments(ctx)
		if err != nil {
			return export.Table{}, err
		}
		table := export.Table{Name: name, Headers: []string{"payment_date", "amount", "method", "work_period", "settled_entries", "unallocated_amount", "notes"}}
		for _, p := range payments {
			table.Rows = append(table.Rows, []any{p.PaymentDate, p.Amount, p.Method, p.WorkPeriod, len(p.SettledEntryIDs), p.UnallocatedAmount, p.Notes})
		}
		return table, nil

	case "supervisor-salaries":
		salaries, err := s.repo.ListSupervisorSalaries(ctx)
		if err != nil {
			return export.Table{}, err
		}
		table := export.Table{Name: name, Headers: []string{"month", "name", "designation", "monthly_salary", "paid_amount", "payment_date", "payment_status"}}
		for _, sal := range salaries {
			table.Rows = append(table.Rows, []any{sal.Month, sal.Name, sal.Designation, sal.MonthlySalary, sal.PaidAmount, sal.PaymentDate, string(sal.PaymentStatus)})
		}
		return table, nil

	case "reconciliations":
		views, err := s.ListReconciliations(ctx)
		if err != nil {
			return export.Table{}, err
		}
		table := export.Table{Name: name, Headers: []string{"center", "district", "total_quintals", "reconciled_quintals", "balance_quintals", "status", "document_ref", "notes"}}
		for _, v := range views {
			table.Rows = append(table.Rows, []any{v.Center, v.District, v.TotalQuintals, v.ReconciledQuintals, v.BalanceQuintals, string(v.Status), v.DocumentRef, v.Notes})
		}
		return table, nil

	case "gunny-dispatches":
		dispatches, err := s.repo.ListGunnyDispatches(ctx)
		if err != nil {
			return export.Table{}, err
		}
		table := export.Table{Name: name, Headers: []string{"dispatch_date", "center", "district", "quantity", "status", "ack_date", "ack_photo_ref", "comments"}}
		for _, d := range dispatches {
			table.Rows = append(table.Rows, []any{d.DispatchDate, d.Center, d.District, d.Quantity, string(ledger.GunnyStatus(d.Acknowledged)), d.AckDate, d.AckPhotoRef, d.Comments})
		}
		return table, nil

	case "fci-consignments":
		consignments, err := s.repo.ListConsignments(ctx)
		if err != nil {
			return export.Table{}, err
		}
		table := export.Table{Name: name, Headers: []string{"dispatch_date", "ack_count", "rice_type", "vehicle_no", "depot", "notes"}}
		for _, c := range consignments {
			table.Rows = append(table.Rows, []any{c.DispatchDate, c.AckCount, string(c.RiceType), c.VehicleNo, c.Depot, c.Notes})
		}
		return table, nil

	default:
		movements, err := s.repo.ListPackagingMovements(ctx)
		if err != nil {
			return export.Table{}, err
		}
		table := export.Table{Name: name, Headers: []string{"date", "item", "quantity", "reference", "notes"}}
		for _, m := range movements {
			table.Rows = append(table.Rows, []any{m.Date, string(m.Item), m.Quantity, m.Reference, m.Notes})
		}
		return table, nil
	}
}

func (s *Service) ExportAll(ctx context.Context) ([]export.Table, error) {
	tables := make([]export.Table, 0, len(ExportNames))
	for _, name := range ExportNames {
		table, err := s.ExportTable(ctx, name)
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}
	return tables, nil
}

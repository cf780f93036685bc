package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"ricemill/backend/internal/domain"
	"ricemill/backend/internal/ledger"
)

func newIntegrationStore(t *testing.T) *Store {
	t.Helper()
	databaseURL := os.Getenv("RICEMILL_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set RICEMILL_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := s.db.ExecContext(ctx, `
		TRUNCATE paddy_intakes, rice_productions, byproduct_productions, byproduct_sales,
			byproduct_payments, electricity_readings, electricity_live_reading, hamali_work,
			hamali_payments, supervisor_salaries, reconciliations, old_gunny_dispatches,
			fci_consignments, packaging_movements
	`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	seeded, err := s.Seed(ctx)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if seeded != 12 {
		t.Fatalf("expected 12 seeded intakes, got %d", seeded)
	}
	return s
}

func TestCreateRiceBatchEnforcesPaddyAvailability(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()

	if again, err := s.Seed(ctx); err != nil || again != 0 {
		t.Fatalf("second seed should be a no-op, got %d %v", again, err)
	}

	rice, paddy, err := ledger.BatchQuantities(1000, domain.RiceRaw)
	if err != nil {
		t.Fatalf("batch quantities: %v", err)
	}
	_, err = s.CreateRiceBatch(ctx, domain.RiceBatch{ID: "batch-too-big", AckCount: 1000, RiceType: domain.RiceRaw, RiceProduced: rice, PaddyUsed: paddy})
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	batches, err := s.ListRiceBatches(ctx)
	if err != nil {
		t.Fatalf("list batches: %v", err)
	}
	if len(batches) != 0 {
		t.Fatalf("rejected batch must not be stored, got %d", len(batches))
	}

	rice, paddy, err = ledger.BatchQuantities(1, domain.RiceBoiled)
	if err != nil {
		t.Fatalf("batch quantities: %v", err)
	}
	if _, err := s.CreateRiceBatch(ctx, domain.RiceBatch{ID: "batch-1", AckCount: 1, RiceType: domain.RiceBoiled, RiceProduced: rice, PaddyUsed: paddy}); err != nil {
		t.Fatalf("create batch: %v", err)
	}

	production := domain.ByProductProduction{ID: "bp-1", RiceBatchID: "batch-1", Quantities: map[domain.ByProductCategory]float64{domain.ByProductHusk: 90}}
	if _, err := s.CreateByProductProduction(ctx, production); err != nil {
		t.Fatalf("create production: %v", err)
	}
	production.ID = "bp-2"
	if _, err := s.CreateByProductProduction(ctx, production); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict for second production, got %v", err)
	}
}

func TestApplyByProductPaymentGuardsBalance(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()

	sale := domain.ByProductSale{
		ID:            "sale-1",
		InvoiceNo:     "BP-20241125-001",
		PartyName:     "Lakshmi Traders",
		Items:         []domain.SaleLineItem{{Category: domain.ByProductHusk, Quantity: 10, Rate: 100, Amount: 1000, GSTRate: 5, GSTAmount: 50, Total: 1050}},
		Subtotal:      1000,
		GSTAmount:     50,
		TotalAmount:   1050,
		BalanceAmount: 1050,
		PaymentStatus: domain.PaymentPending,
	}
	if _, err := s.CreateByProductSale(ctx, sale); err != nil {
		t.Fatalf("create sale: %v", err)
	}

	_, err := s.ApplyByProductPayment(ctx, domain.ByProductPayment{ID: "pay-1", SaleID: "sale-1", Amount: 2000})
	if !errors.Is(err, domain.ErrExceedsBalance) {
		t.Fatalf("expected exceeds balance, got %v", err)
	}

	updated, err := s.ApplyByProductPayment(ctx, domain.ByProductPayment{ID: "pay-2", SaleID: "sale-1", Amount: 1050, PaymentDate: time.Now().UTC()})
	if err != nil {
		t.Fatalf("apply payment: %v", err)
	}
	if updated.PaymentStatus != domain.PaymentPaid || updated.BalanceAmount != 0 {
		t.Fatalf("expected paid sale, got %+v", updated)
	}

	payments, err := s.ListByProductPayments(ctx, "sale-1")
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if len(payments) != 1 || payments[0].InvoiceNo != sale.InvoiceNo {
		t.Fatalf("expected one recorded payment, got %+v", payments)
	}
}

func TestReconcileClampsToBalance(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()

	intakes, err := s.ListPaddyIntakes(ctx)
	if err != nil {
		t.Fatalf("list intakes: %v", err)
	}
	total := ledger.CenterTotals(intakes)[0]

	state, applied, err := s.Reconcile(ctx, total.CenterKey, total.TotalQuintals+50, "", time.Now().UTC())
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if applied != total.TotalQuintals || state.ReconciledQuintals != total.TotalQuintals {
		t.Fatalf("expected clamp to %v, got applied=%v state=%+v", total.TotalQuintals, applied, state)
	}

	_, applied, err = s.Reconcile(ctx, total.CenterKey, 10, "", time.Now().UTC())
	if err != nil || applied != 0 {
		t.Fatalf("expected no-op on completed center, got applied=%v err=%v", applied, err)
	}

	if _, _, err := s.Reconcile(ctx, "nowhere--none", 10, "", time.Now().UTC()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdatesKeepStateOwnedByOtherOperations(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()

	work, err := s.CreateHamaliWork(ctx, domain.HamaliWorkEntry{ID: "w-1", WorkType: "Paddy Unloading", Quantity: 100, Rate: 3, TotalAmount: 300, PaymentStatus: domain.WorkPending})
	if err != nil {
		t.Fatalf("create work: %v", err)
	}
	stale := *work
	if _, err := s.CreateHamaliPayment(ctx, domain.HamaliPayment{ID: "hp-1", Amount: 300}); err != nil {
		t.Fatalf("pay work: %v", err)
	}
	updated, err := s.UpdateHamaliWork(ctx, stale)
	if err != nil || updated.PaymentStatus != domain.WorkPaid {
		t.Fatalf("expected paid status to survive edit, got %+v %v", updated, err)
	}

	if _, err := s.CreateGunnyDispatch(ctx, domain.GunnyDispatch{ID: "g-1", Center: "Tanuku", Quantity: 500, Status: domain.GunnyDispatched}); err != nil {
		t.Fatalf("create dispatch: %v", err)
	}
	if _, err := s.UpdateGunnyDispatch(ctx, "g-1", func(d *domain.GunnyDispatch) error {
		d.AckPhotoRef = "gunny/g-1/photo.jpg"
		return nil
	}); err != nil {
		t.Fatalf("attach photo: %v", err)
	}
	acked, err := s.UpdateGunnyDispatch(ctx, "g-1", func(d *domain.GunnyDispatch) error {
		d.Acknowledged = true
		d.Status = domain.GunnyAcknowledged
		return nil
	})
	if err != nil || acked.AckPhotoRef == "" || !acked.Acknowledged {
		t.Fatalf("expected photo and acknowledgement together, got %+v %v", acked, err)
	}

	rice, paddy, _ := ledger.BatchQuantities(1, domain.RiceBoiled)
	batch := domain.RiceBatch{ID: "batch-1", AckCount: 1, RiceType: domain.RiceBoiled, RiceProduced: rice, PaddyUsed: paddy, CreatedAt: time.Now().UTC()}
	if _, err := s.CreateRiceBatch(ctx, batch); err != nil {
		t.Fatalf("create batch: %v", err)
	}
	if _, err := s.CreateByProductProduction(ctx, domain.ByProductProduction{ID: "bp-1", RiceBatchID: "batch-1", PaddyUsed: paddy}); err != nil {
		t.Fatalf("create production: %v", err)
	}
	bigger := batch
	bigger.AckCount = 2
	bigger.PaddyUsed = paddy * 2
	if _, err := s.UpdateRiceBatch(ctx, bigger); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

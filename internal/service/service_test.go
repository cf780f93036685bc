package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"
	"testing"
	"time"

	"ricemill/backend/internal/attachments"
	"ricemill/backend/internal/domain"
	"ricemill/backend/internal/export"
	"ricemill/backend/internal/snapshot"
	"ricemill/backend/internal/store/memory"
)

var fixedNow = time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) *Service {
	t.Helper()
	repo, err := memory.NewSeeded(context.Background(), snapshot.NoopBackend{}, nil)
	if err != nil {
		t.Fatalf("seed store: %v", err)
	}
	files, err := attachments.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("attachment store: %v", err)
	}
	return New(repo, Options{
		MillName:    "Sri Venkateswara Rice Mill",
		AckTarget:   40,
		Attachments: files,
		Now:         func() time.Time { return fixedNow },
	})
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestListIntakesFiltersAndPaginates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	all, err := svc.ListIntakes(ctx, domain.PaddyIntakeQuery{})
	if err != nil {
		t.Fatalf("list intakes: %v", err)
	}
	if all.Total != 12 || len(all.Items) != 12 || all.PageSize != domain.DefaultIntakePageSz {
		t.Fatalf("unexpected unfiltered page: total=%d items=%d size=%d", all.Total, len(all.Items), all.PageSize)
	}

	tanuku, err := svc.ListIntakes(ctx, domain.PaddyIntakeQuery{Center: "tanuku"})
	if err != nil {
		t.Fatalf("filter by center: %v", err)
	}
	if tanuku.Total != 3 || !almostEqual(tanuku.TotalQuintals, 236.2+232.4+238.3) {
		t.Fatalf("unexpected tanuku page: %+v", tanuku)
	}

	search, _ := svc.ListIntakes(ctx, domain.PaddyIntakeQuery{Search: "ap16"})
	if search.Total != 3 {
		t.Fatalf("expected 3 vehicles matching ap16, got %d", search.Total)
	}

	ranged, _ := svc.ListIntakes(ctx, domain.PaddyIntakeQuery{From: "2024-11-06", To: "2024-11-08"})
	if ranged.Total != 4 {
		t.Fatalf("expected 4 intakes in range, got %d", ranged.Total)
	}

	page, _ := svc.ListIntakes(ctx, domain.PaddyIntakeQuery{Page: 3, PageSize: 5})
	if page.Total != 12 || len(page.Items) != 2 || page.Items[0].SerialNo != 11 {
		t.Fatalf("unexpected third page: %+v", page)
	}

	if _, err := svc.ListIntakes(ctx, domain.PaddyIntakeQuery{From: "06/11/2024"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid date error, got %v", err)
	}
}

func TestCreateIntakeComputesTotalBagsAndSerial(t *testing.T) {
	svc := newTestService(t)
	intake, err := svc.CreateIntake(context.Background(), domain.PaddyIntakeCreateRequest{
		Date:           "2024-11-30",
		VehicleNo:      "ap37tb4521",
		Center:         "Kovvur",
		District:       "East Godavari",
		NewBags:        400,
		OldBags:        180,
		Quintals:       232,
		MoisturePct:    16,
		UnloadingPoint: "batti",
	})
	if err != nil {
		t.Fatalf("create intake: %v", err)
	}
	if intake.TotalBags != 580 || intake.SerialNo != 13 || intake.UnloadingPoint != domain.UnloadingBatti || intake.VehicleNo != "AP37TB4521" {
		t.Fatalf("unexpected intake: %+v", intake)
	}

	_, err = svc.CreateIntake(context.Background(), domain.PaddyIntakeCreateRequest{Date: "2024-11-30", VehicleNo: "X", Center: "A", District: "B", Quintals: 0})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateBatchConsumesPaddyAndRejectsShortfall(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	before, _ := svc.PaddyAvailability(ctx)
	batch, err := svc.CreateBatch(ctx, domain.RiceBatchRequest{AckCount: 2, RiceType: "Boiled", ProductionDate: "2024-11-20"})
	if err != nil {
		t.Fatalf("create batch: %v", err)
	}
	if batch.AckLabel != "2 ACK Boiled" || !almostEqual(batch.RiceProduced, 574.2) || !almostEqual(batch.PaddyUsed, 574.2/0.68) {
		t.Fatalf("unexpected batch: %+v", batch)
	}
	if batch.MillName != "Sri Venkateswara Rice Mill" {
		t.Fatalf("expected configured mill name, got %q", batch.MillName)
	}

	after, _ := svc.PaddyAvailability(ctx)
	if !almostEqual(before.Available-after.Available, batch.PaddyUsed) {
		t.Fatalf("expected availability to drop by %.4f", batch.PaddyUsed)
	}

	_, err = svc.CreateBatch(ctx, domain.RiceBatchRequest{AckCount: 50, RiceType: "raw"})
	var shortfall *domain.ShortfallError
	if !errors.Is(err, domain.ErrInsufficientStock) || !errors.As(err, &shortfall) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if !almostEqual(shortfall.Available, after.Available) {
		t.Fatalf("expected shortfall to carry %.4f available, got %.4f", after.Available, shortfall.Available)
	}
	batches, _ := svc.ListBatches(ctx)
	if len(batches) != 1 {
		t.Fatalf("rejected batch must not be stored, got %d batches", len(batches))
	}
}

func TestEditBatchRecomputesWithoutAvailabilityCheck(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	batch, err := svc.CreateBatch(ctx, domain.RiceBatchRequest{AckCount: 1, RiceType: "raw"})
	if err != nil {
		t.Fatalf("create batch: %v", err)
	}
	edited, err := svc.EditBatch(ctx, batch.ID, domain.RiceBatchRequest{AckCount: 20, RiceType: "raw", Notes: "recount"})
	if err != nil {
		t.Fatalf("edit batch: %v", err)
	}
	if edited.AckCount != 20 || !almostEqual(edited.RiceProduced, 20*287.1) || edited.UpdatedAt == nil {
		t.Fatalf("unexpected edit: %+v", edited)
	}
	avail, _ := svc.PaddyAvailability(ctx)
	if avail.Available >= 0 {
		t.Fatalf("expected edit to be able to overdraw paddy, available=%.2f", avail.Available)
	}
}

func TestRecordProductionComputesYieldsOncePerBatch(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	batch, _ := svc.CreateBatch(ctx, domain.RiceBatchRequest{AckCount: 1, RiceType: "boiled"})
	production, err := svc.RecordProduction(ctx, domain.ByProductProductionRequest{
		RiceBatchID: batch.ID,
		Quantities:  map[string]float64{"husk": 90, "bran_boiled": 25, "broken_rice": 10},
	})
	if err != nil {
		t.Fatalf("record production: %v", err)
	}
	if !almostEqual(production.Yields[domain.ByProductHusk], 90/batch.PaddyUsed*100) {
		t.Fatalf("unexpected husk yield %.4f", production.Yields[domain.ByProductHusk])
	}
	if production.Quantities[domain.ByProductAsh] != 0 || len(production.Quantities) != len(domain.ByProductCategories) {
		t.Fatalf("expected every category present, got %v", production.Quantities)
	}

	pending, _ := svc.UnprocessedBatches(ctx)
	if len(pending) != 0 {
		t.Fatalf("expected no unprocessed batches, got %d", len(pending))
	}
	_, err = svc.RecordProduction(ctx, domain.ByProductProductionRequest{RiceBatchID: batch.ID, Quantities: map[string]float64{"husk": 1}})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict on second production, got %v", err)
	}
	_, err = svc.RecordProduction(ctx, domain.ByProductProductionRequest{RiceBatchID: batch.ID, Quantities: map[string]float64{"straw": 1}})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected unknown category rejection, got %v", err)
	}
	if _, err := svc.EditBatch(ctx, batch.ID, domain.RiceBatchRequest{AckCount: 2, RiceType: "boiled"}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict editing quantities of a processed batch, got %v", err)
	}
	noted, err := svc.EditBatch(ctx, batch.ID, domain.RiceBatchRequest{AckCount: 1, RiceType: "boiled", Notes: "dryer delay"})
	if err != nil || noted.Notes != "dryer delay" || !almostEqual(noted.PaddyUsed, batch.PaddyUsed) {
		t.Fatalf("expected notes edit on processed batch, got %+v %v", noted, err)
	}
}

func TestSalePaymentsMoveStatusAndRejectOverpayment(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	sale, err := svc.CreateSale(ctx, domain.ByProductSaleRequest{
		SaleDate:         "2024-11-10",
		PartyName:        "Sri Lakshmi Traders",
		PaymentTermsDays: 15,
		Items: []domain.SaleLineItemRequest{
			{Category: "husk", Quantity: 100, Rate: 50, GSTRate: 5},
			{Category: "bran_boiled", Quantity: 20, Rate: 100},
		},
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if !almostEqual(sale.TotalAmount, 7250) || sale.PaymentStatus != domain.PaymentPending || sale.InvoiceNo != "BP-20241110-001" {
		t.Fatalf("unexpected sale: total=%.2f status=%s invoice=%s", sale.TotalAmount, sale.PaymentStatus, sale.InvoiceNo)
	}
	if !sale.DueDate.Equal(time.Date(2024, 11, 25, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected due date %v", sale.DueDate)
	}

	resp, err := svc.ApplySalePayment(ctx, sale.ID, domain.ByProductPaymentRequest{Amount: 3000, Method: "upi"})
	if err != nil {
		t.Fatalf("partial payment: %v", err)
	}
	if resp.Sale.PaymentStatus != domain.PaymentPartial || !almostEqual(resp.Sale.BalanceAmount, 4250) {
		t.Fatalf("unexpected partial state: %+v", resp.Sale)
	}

	_, err = svc.ApplySalePayment(ctx, sale.ID, domain.ByProductPaymentRequest{Amount: 5000, Method: "cash"})
	var shortfall *domain.ShortfallError
	if !errors.Is(err, domain.ErrExceedsBalance) || !errors.As(err, &shortfall) || !almostEqual(shortfall.Available, 4250) {
		t.Fatalf("expected exceeds balance with 4250 available, got %v", err)
	}
	if _, err := svc.ApplySalePayment(ctx, sale.ID, domain.ByProductPaymentRequest{Amount: 0, Method: "cash"}); !errors.Is(err, domain.ErrInvalidInput) || !strings.Contains(err.Error(), "amount failed gt=0") {
		t.Fatalf("expected zero amount rejection, got %v", err)
	}

	resp, err = svc.ApplySalePayment(ctx, sale.ID, domain.ByProductPaymentRequest{Amount: 4250, Method: "cheque", ReferenceNo: "CHQ-22"})
	if err != nil {
		t.Fatalf("final payment: %v", err)
	}
	if resp.Sale.PaymentStatus != domain.PaymentPaid || resp.Sale.BalanceAmount != 0 {
		t.Fatalf("expected paid sale, got %+v", resp.Sale)
	}
	payments, _ := svc.ListSalePayments(ctx, sale.ID)
	if len(payments) != 2 || payments[1].InvoiceNo != sale.InvoiceNo {
		t.Fatalf("expected 2 recorded payments, got %+v", payments)
	}

	stock, _ := svc.ByProductStock(ctx)
	if stock[0].Category != domain.ByProductHusk || stock[0].CurrentStock != -100 || stock[0].AverageRate != 50 {
		t.Fatalf("unexpected husk stock: %+v", stock[0])
	}
}

func TestHamaliWorkUsesRateTableAndGreedyPayment(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.RecordHamaliWork(ctx, domain.HamaliWorkRequest{WorkType: "paddy unloading", Quantity: 200, WorkDate: "2024-11-20"})
	if err != nil {
		t.Fatalf("record work: %v", err)
	}
	if first.WorkType != "Paddy Unloading" || first.Rate != 3 || first.Unit != domain.UnitBags || first.TotalAmount != 600 {
		t.Fatalf("unexpected rate table fill: %+v", first)
	}
	if _, err := svc.RecordHamaliWork(ctx, domain.HamaliWorkRequest{WorkType: "Roof repair", Quantity: 1, WorkDate: "2024-11-20"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected free-text work without rate to fail, got %v", err)
	}
	second, err := svc.RecordHamaliWork(ctx, domain.HamaliWorkRequest{WorkType: "Roof repair", Quantity: 1, Unit: "days", Rate: 500, WorkDate: "2024-11-21"})
	if err != nil {
		t.Fatalf("record free-text work: %v", err)
	}

	payment, err := svc.RecordHamaliPayment(ctx, domain.HamaliPaymentRequest{Amount: 1000, PaymentDate: "2024-11-30", Method: "cash"})
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}
	if len(payment.SettledEntryIDs) != 1 || payment.SettledEntryIDs[0] != first.ID || payment.UnallocatedAmount != 400 {
		t.Fatalf("unexpected allocation: %+v", payment)
	}

	summary, _ := svc.HamaliSummary(ctx)
	if summary.TotalWorkAmount != 1100 || summary.PaidWorkAmount != 600 || summary.PendingWorkAmount != 500 || summary.TotalPaymentAmount != 1000 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	edited, err := svc.EditHamaliWork(ctx, second.ID, domain.HamaliWorkRequest{WorkType: "Roof repair", Quantity: 2, Unit: "days", Rate: 450, WorkDate: "2024-11-21"})
	if err != nil || edited.TotalAmount != 900 || edited.PaymentStatus != domain.WorkPending {
		t.Fatalf("unexpected edit: %+v %v", edited, err)
	}
	editedPaid, err := svc.EditHamaliWork(ctx, first.ID, domain.HamaliWorkRequest{WorkType: "Paddy Unloading", Quantity: 210, WorkDate: "2024-11-20"})
	if err != nil || editedPaid.PaymentStatus != domain.WorkPaid || editedPaid.TotalAmount != 630 {
		t.Fatalf("expected paid work to stay paid after edit, got %+v %v", editedPaid, err)
	}
}

func TestSalaryStatusFollowsPayments(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	salary, err := svc.CreateSalary(ctx, domain.SupervisorSalaryRequest{Name: "Ramesh", Designation: "Shift supervisor", Month: "2024-11", MonthlySalary: 18000, PaidAmount: 8000})
	if err != nil {
		t.Fatalf("create salary: %v", err)
	}
	if salary.PaymentStatus != domain.PaymentPending {
		t.Fatalf("expected pending, got %s", salary.PaymentStatus)
	}
	paid, err := svc.PaySalary(ctx, salary.ID, domain.SalaryPaymentRequest{Amount: 10000, PaymentDate: "2024-12-01"})
	if err != nil {
		t.Fatalf("pay salary: %v", err)
	}
	if paid.PaymentStatus != domain.PaymentPaid || paid.PaidAmount != 18000 || paid.PaymentDate == nil {
		t.Fatalf("unexpected salary after payment: %+v", paid)
	}
	if _, err := svc.CreateSalary(ctx, domain.SupervisorSalaryRequest{Name: "X", Designation: "Y", Month: "November", MonthlySalary: 1}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected bad month rejection, got %v", err)
	}
}

func TestReconcileClampsToBalance(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	views, err := svc.ListReconciliations(ctx)
	if err != nil {
		t.Fatalf("list reconciliations: %v", err)
	}
	if len(views) != 5 {
		t.Fatalf("expected 5 center/district groups, got %d", len(views))
	}
	var tanuku domain.Reconciliation
	for _, v := range views {
		if v.Center == "Tanuku" {
			tanuku = v
		}
		if v.Status != domain.ReconPending {
			t.Fatalf("expected untouched centers to be pending, got %s", v.Status)
		}
	}

	if _, err := svc.Reconcile(ctx, tanuku.CenterKey, domain.ReconcileRequest{Amount: -5}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected negative amount rejection, got %v", err)
	}
	resp, err := svc.Reconcile(ctx, tanuku.CenterKey, domain.ReconcileRequest{Amount: 500})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if resp.Reconciliation.Status != domain.ReconInProgress || resp.Applied != 500 {
		t.Fatalf("unexpected first reconcile: %+v", resp)
	}
	resp, err = svc.Reconcile(ctx, tanuku.CenterKey, domain.ReconcileRequest{Amount: 10_000})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if resp.Reconciliation.Status != domain.ReconCompleted || !almostEqual(resp.Applied, tanuku.TotalQuintals-500) || resp.Reconciliation.BalanceQuintals != 0 {
		t.Fatalf("expected clamp to completion, got %+v", resp)
	}
	resp, err = svc.Reconcile(ctx, tanuku.CenterKey, domain.ReconcileRequest{Amount: 1})
	if err != nil || resp.Applied != 0 || resp.Reconciliation.Status != domain.ReconCompleted {
		t.Fatalf("expected no-op on completed center, got %+v %v", resp, err)
	}
}

func TestReconciliationDocumentRoundTrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	key := domain.CenterKey("Kovvur", "East Godavari")

	view, err := svc.AttachReconciliationDocument(ctx, key, "kovvur-ack.pdf", []byte("%PDF-1.4 ack"), "signed by CSDT")
	if err != nil {
		t.Fatalf("attach document: %v", err)
	}
	if view.DocumentRef == "" || view.Notes != "signed by CSDT" || view.Status != domain.ReconPending {
		t.Fatalf("unexpected view: %+v", view)
	}
	data, ref, err := svc.ReconciliationDocument(ctx, key)
	if err != nil || string(data) != "%PDF-1.4 ack" || ref != view.DocumentRef {
		t.Fatalf("unexpected document: %q %q %v", data, ref, err)
	}
	if _, err := svc.AttachReconciliationDocument(ctx, "nowhere--none", "a.pdf", []byte("x"), ""); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected unknown center, got %v", err)
	}
}

func TestGunnyAcknowledgementAndPhoto(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	dispatch, err := svc.CreateGunnyDispatch(ctx, domain.GunnyDispatchRequest{Center: "Kovvur", District: "East Godavari", Quantity: 5000, DispatchDate: "2024-11-25"})
	if err != nil {
		t.Fatalf("create dispatch: %v", err)
	}
	if dispatch.Status != domain.GunnyDispatched {
		t.Fatalf("expected dispatched status, got %s", dispatch.Status)
	}

	acked, err := svc.SetGunnyAcknowledgement(ctx, dispatch.ID, domain.GunnyAckRequest{Acknowledged: true})
	if err != nil {
		t.Fatalf("acknowledge: %v", err)
	}
	if acked.Status != domain.GunnyAcknowledged || acked.AckDate == nil || !acked.AckDate.Equal(time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected ack date to default to today, got %+v", acked)
	}
	cleared, err := svc.SetGunnyAcknowledgement(ctx, dispatch.ID, domain.GunnyAckRequest{Acknowledged: false, AckDate: "2024-11-30"})
	if err != nil || cleared.AckDate != nil || cleared.Status != domain.GunnyDispatched {
		t.Fatalf("expected ack cleared, got %+v %v", cleared, err)
	}

	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	img.Set(1, 1, color.White)
	var raw bytes.Buffer
	if err := png.Encode(&raw, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	withPhoto, err := svc.AttachGunnyPhoto(ctx, dispatch.ID, "ack.png", raw.Bytes())
	if err != nil {
		t.Fatalf("attach photo: %v", err)
	}
	if !strings.HasSuffix(withPhoto.AckPhotoRef, "-ack.jpg") {
		t.Fatalf("unexpected photo ref %q", withPhoto.AckPhotoRef)
	}
	if _, err := svc.AttachGunnyPhoto(ctx, dispatch.ID, "ack.png", []byte("not an image")); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected bad image rejection, got %v", err)
	}
	reacked, err := svc.SetGunnyAcknowledgement(ctx, dispatch.ID, domain.GunnyAckRequest{Acknowledged: true, AckDate: "2024-11-30"})
	if err != nil || !reacked.Acknowledged || reacked.AckPhotoRef != withPhoto.AckPhotoRef {
		t.Fatalf("expected acknowledgement to keep the photo, got %+v %v", reacked, err)
	}
	if _, err := svc.SetGunnyAcknowledgement(ctx, "missing", domain.GunnyAckRequest{Acknowledged: true}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestImportBillBuildsDrafts(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	page := `<table><tr><td data-field="kwh">10000</td><td data-field="kvah">12500</td><td data-field="rmd">150</td><td class="bill-amount">1,02,000</td><td class="bill-period">Nov 2024</td></tr></table>`

	result, err := svc.ImportBill(ctx, strings.NewReader(page), true)
	if err != nil {
		t.Fatalf("import bill: %v", err)
	}
	if result.Draft.KWh != 10000 || result.Draft.BillAmount != 102000 || result.Draft.ReadingDate != "2024-12-01" || result.Draft.BillPeriod != "Nov 2024" {
		t.Fatalf("unexpected draft: %+v", result.Draft)
	}
	if !result.Applied || result.LiveState == nil {
		t.Fatalf("expected live draft applied")
	}

	estimate, err := svc.EstimateCurrentBill(ctx)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	wantTotal := 150*400.0 + 10000*6.5 + 1500 + 10000*0.5 + (10000*6.5+150*400)*0.16 + 200
	if !estimate.Available || !almostEqual(estimate.Total, wantTotal) {
		t.Fatalf("unexpected estimate: %+v want %.2f", estimate, wantTotal)
	}

	if _, err := svc.ImportBill(ctx, strings.NewReader("<p>nothing here</p>"), false); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected parse failure as invalid input, got %v", err)
	}
}

func TestEstimateUnavailableWithoutLiveReading(t *testing.T) {
	svc := newTestService(t)
	estimate, err := svc.EstimateCurrentBill(context.Background())
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if estimate.Available || estimate.Total != 0 {
		t.Fatalf("expected unavailable estimate, got %+v", estimate)
	}
}

func TestSummaryAndBottleneck(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateBatch(ctx, domain.RiceBatchRequest{AckCount: 2, RiceType: "boiled"}); err != nil {
		t.Fatalf("create batch: %v", err)
	}
	if _, err := svc.CreateConsignment(ctx, domain.ConsignmentRequest{AckCount: 2, RiceType: "boiled", DispatchDate: "2024-11-28", VehicleNo: "ap05tk3302", Depot: "FCI Kakinada"}); err != nil {
		t.Fatalf("create consignment: %v", err)
	}
	for _, movement := range []domain.PackagingMovementRequest{
		{Item: "gunny_bags", Quantity: 5800, Date: "2024-11-01"},
		{Item: "frk_kg", Quantity: 900, Date: "2024-11-01"},
		{Item: "stickers", Quantity: 5800, Date: "2024-11-01"},
		{Item: "gunny_bags", Quantity: -580, Date: "2024-11-20"},
	} {
		if _, err := svc.RecordPackagingMovement(ctx, movement); err != nil {
			t.Fatalf("record packaging: %v", err)
		}
	}
	if _, err := svc.RecordPackagingMovement(ctx, domain.PackagingMovementRequest{Item: "frk_kg", Quantity: 0, Date: "2024-11-01"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected zero movement rejection, got %v", err)
	}

	summary, err := svc.Summary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.IntakeTrucks != 12 || summary.Acks.Produced != 2 || summary.Acks.Delivered != 2 || summary.Acks.Remaining != 38 {
		t.Fatalf("unexpected ack progress: %+v", summary.Acks)
	}
	if summary.CentersTotal != 5 || summary.CentersCompleted != 0 {
		t.Fatalf("unexpected reconciliation counts: %+v", summary)
	}
	if summary.Bottleneck.Binding != "frk" || summary.Bottleneck.AcksPossible != 3 {
		t.Fatalf("expected frk to bind at 3 ACKs, got %+v", summary.Bottleneck)
	}
}

func TestDailyDigestListsOverdueSales(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateSale(ctx, domain.ByProductSaleRequest{SaleDate: "2024-11-01", PartyName: "Late Payer", PaymentTermsDays: 10, Items: []domain.SaleLineItemRequest{{Category: "husk", Quantity: 10, Rate: 100}}}); err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if _, err := svc.CreateSale(ctx, domain.ByProductSaleRequest{SaleDate: "2024-11-28", PartyName: "On Time", PaymentTermsDays: 30, Items: []domain.SaleLineItemRequest{{Category: "ash", Quantity: 1, Rate: 100}}}); err != nil {
		t.Fatalf("create sale: %v", err)
	}

	digest, err := svc.DailyDigest(ctx)
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	if len(digest.OverdueSales) != 1 || digest.OverdueSales[0].PartyName != "Late Payer" || digest.OverdueSales[0].DaysOverdue != 20 {
		t.Fatalf("unexpected overdue list: %+v", digest.OverdueSales)
	}
	if digest.OpenCenters != 5 || digest.Date != "2024-12-01" {
		t.Fatalf("unexpected digest: %+v", digest)
	}
}

func TestExportTablesCoverEveryCollection(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tables, err := svc.ExportAll(ctx)
	if err != nil {
		t.Fatalf("export all: %v", err)
	}
	if len(tables) != len(ExportNames) {
		t.Fatalf("expected %d tables, got %d", len(ExportNames), len(tables))
	}
	for _, table := range tables {
		if err := export.WriteCSV(&bytes.Buffer{}, table); err != nil {
			t.Fatalf("table %s does not serialize: %v", table.Name, err)
		}
	}

	intakes, _ := svc.ExportTable(ctx, "paddy-intakes")
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, intakes); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 13 {
		t.Fatalf("expected header plus 12 rows, got %d", len(lines))
	}
	if fields := strings.Split(lines[1], ","); fields[0] != "1" || fields[2] != "AP37TB4521" || fields[12] != "OLD_GODOWN" {
		t.Fatalf("unexpected first row: %v", fields)
	}
	if _, err := svc.ExportTable(ctx, "unknown"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected unknown export to be not found, got %v", err)
	}
}

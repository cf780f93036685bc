package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"ricemill/backend/internal/domain"
	"ricemill/backend/internal/ledger"
	"ricemill/backend/internal/xid"
)

func (s *Service) ListConsignments(ctx context.Context) ([]domain.Consignment, error) {
	return s.repo.ListConsignments(ctx)
}

func (s *Service) CreateConsignment(ctx context.Context, req domain.ConsignmentRequest) (domain.Consignment, error) {
	req.RiceType = strings.ToLower(strings.TrimSpace(req.RiceType))
	if err := s.check(req); err != nil {
		return domain.Consignment{}, err
	}
	date, err := s.parseDay("dispatch_date", req.DispatchDate)
	if err != nil {
		return domain.Consignment{}, err
	}

	consignment := domain.Consignment{
		ID:           xid.New("consignment"),
		AckCount:     req.AckCount,
		RiceType:     domain.RiceType(req.RiceType),
		DispatchDate: date,
		VehicleNo:    strings.ToUpper(strings.TrimSpace(req.VehicleNo)),
		Depot:        strings.TrimSpace(req.Depot),
		Notes:        strings.TrimSpace(req.Notes),
		CreatedAt:    s.now().UTC(),
	}
	created, err := s.repo.CreateConsignment(ctx, consignment)
	if err != nil {
		return domain.Consignment{}, err
	}
	s.logger.Info("fci consignment recorded", zap.String("id", created.ID), zap.Int("ack_count", created.AckCount), zap.String("depot", created.Depot))
	return *created, nil
}

func (s *Service) ListPackagingMovements(ctx context.Context) ([]domain.PackagingMovement, error) {
	return s.repo.ListPackagingMovements(ctx)
}

func (s *Service) PackagingLevels(ctx context.Context) ([]domain.PackagingLevel, error) {
	movements, err := s.repo.ListPackagingMovements(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.PackagingLevels(movements), nil
}

func (s *Service) RecordPackagingMovement(ctx context.Context, req domain.PackagingMovementRequest) (domain.PackagingMovement, error) {
	req.Item = strings.ToLower(strings.TrimSpace(req.Item))
	if err := s.check(req); err != nil {
		return domain.PackagingMovement{}, err
	}
	date, err := s.parseDay("date", req.Date)
	if err != nil {
		return domain.PackagingMovement{}, err
	}

	movement := domain.PackagingMovement{
		ID:        xid.New("packaging"),
		Item:      domain.PackagingItem(req.Item),
		Quantity:  req.Quantity,
		Date:      date,
		Reference: strings.TrimSpace(req.Reference),
		Notes:     strings.TrimSpace(req.Notes),
		CreatedAt: s.now().UTC(),
	}
	created, err := s.repo.CreatePackagingMovement(ctx, movement)
	if err != nil {
		return domain.PackagingMovement{}, err
	}
	s.logger.Info("packaging movement recorded", zap.String("id", created.ID), zap.String("item", string(created.Item)), zap.Float64("quantity", created.Quantity))
	return *created, nil
}

type snapshotView struct {
	intakes      []domain.PaddyIntake
	batches      []domain.RiceBatch
	productions  []domain.ByProductProduction
	sales        []domain.ByProductSale
	hamaliWork   []domain.HamaliWorkEntry
	states       []domain.ReconciliationState
	gunny        []domain.GunnyDispatch
	consignments []domain.Consignment
	packaging    []domain.PackagingMovement
}

func (s *Service) loadSnapshotView(ctx context.Context) (snapshotView, error) {
	var (
		view snapshotView
		err  error
	)
	if view.intakes, err = s.repo.ListPaddyIntakes(ctx); err != nil {
		return view, err
	}
	if view.batches, err = s.repo.ListRiceBatches(ctx); err != nil {
		return view, err
	}
	if view.productions, err = s.repo.ListByProductProductions(ctx); err != nil {
		return view, err
	}
	if view.sales, err = s.repo.ListByProductSales(ctx); err != nil {
		return view, err
	}
	if view.hamaliWork, err = s.repo.ListHamaliWork(ctx); err != nil {
		return view, err
	}
	if view.states, err = s.repo.ListReconciliationStates(ctx); err != nil {
		return view, err
	}
	if view.gunny, err = s.repo.ListGunnyDispatches(ctx); err != nil {
		return view, err
	}
	if view.consignments, err = s.repo.ListConsignments(ctx); err != nil {
		return view, err
	}
	if view.packaging, err = s.repo.ListPackagingMovements(ctx); err != nil {
		return view, err
	}
	return view, nil
}

// Summary recomputes every KPI from the stored collections.
func (s *Service) Summary(ctx context.Context) (domain.OperationsSummary, error) {
	view, err := s.loadSnapshotView(ctx)
	if err != nil {
		return domain.OperationsSummary{}, err
	}
	now := s.now().UTC()

	summary := domain.OperationsSummary{
		GeneratedAt:    now.Format(time.RFC3339),
		IntakeTrucks:   len(view.intakes),
		Paddy:          ledger.PaddyAvailability(view.intakes, view.batches),
		Acks:           ledger.AckProgress(s.ackTarget, view.batches, view.consignments),
		ByProductStock: ledger.DeriveStock(view.productions, view.sales),
		Packaging:      ledger.PackagingLevels(view.packaging),
	}
	for _, intake := range view.intakes {
		summary.IntakeBags += intake.TotalBags
	}
	for _, batch := range view.batches {
		summary.RiceProduced += batch.RiceProduced
	}
	for _, sale := range view.sales {
		summary.ReceivablesTotal += max(sale.BalanceAmount, 0)
	}
	for _, overdue := range ledger.OverdueSales(view.sales, now) {
		summary.ReceivablesOverdue += overdue.Balance
	}
	summary.HamaliPending = ledger.SummarizeHamali(view.hamaliWork, nil).PendingWorkAmount

	for _, recon := range reconciliationViews(view.intakes, view.states) {
		summary.CentersTotal++
		summary.ReconciledQuintals += recon.ReconciledQuintals
		summary.UnreconciledQuintals += max(recon.BalanceQuintals, 0)
		if recon.Status == domain.ReconCompleted {
			summary.CentersCompleted++
		}
	}
	for _, dispatch := range view.gunny {
		summary.GunnyDispatched += dispatch.Quantity
		if dispatch.Acknowledged {
			summary.GunnyAcknowledged += dispatch.Quantity
		}
	}

	summary.Bottleneck = ledger.Bottleneck(summary.Paddy.Available, summary.Packaging)
	return summary, nil
}

func (s *Service) Bottleneck(ctx context.Context) (domain.BottleneckAnalysis, error) {
	summary, err := s.Summary(ctx)
	if err != nil {
		return domain.BottleneckAnalysis{}, err
	}
	return summary.Bottleneck, nil
}

// DailyDigest lists what needs chasing today: overdue receivables, unpaid
// hamali work and centers with an open reconciliation balance.
func (s *Service) DailyDigest(ctx context.Context) (domain.DailyDigest, error) {
	view, err := s.loadSnapshotView(ctx)
	if err != nil {
		return domain.DailyDigest{}, err
	}
	today := s.today()

	digest := domain.DailyDigest{
		Date:          today.Format(domain.DateLayout),
		OverdueSales:  ledger.OverdueSales(view.sales, today),
		HamaliPending: ledger.SummarizeHamali(view.hamaliWork, nil).PendingWorkAmount,
	}
	for _, overdue := range digest.OverdueSales {
		digest.OverdueTotal += overdue.Balance
	}
	for _, recon := range reconciliationViews(view.intakes, view.states) {
		if recon.BalanceQuintals > 0 {
			digest.OpenCenters++
			digest.UnreconciledTotal += recon.BalanceQuintals
		}
	}
	return digest, nil
}

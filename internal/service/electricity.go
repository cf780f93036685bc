package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"ricemill/backend/internal/billimport"
	"ricemill/backend/internal/domain"
	"ricemill/backend/internal/ledger"
	"ricemill/backend/internal/xid"
)

func (s *Service) ListReadings(ctx context.Context) ([]domain.ElectricityReadingView, error) {
	readings, err := s.repo.ListElectricityReadings(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]domain.ElectricityReadingView, 0, len(readings))
	for _, reading := range readings {
		views = append(views, ledger.ReadingView(reading, s.tariff))
	}
	return views, nil
}

func (s *Service) CreateReading(ctx context.Context, req domain.ElectricityReadingRequest) (domain.ElectricityReadingView, error) {
	if err := s.check(req); err != nil {
		return domain.ElectricityReadingView{}, err
	}
	date, err := s.parseDay("reading_date", req.ReadingDate)
	if err != nil {
		return domain.ElectricityReadingView{}, err
	}

	reading := domain.ElectricityReading{
		ID:          xid.New("reading"),
		ReadingDate: date,
		KWh:         req.KWh,
		KVAh:        req.KVAh,
		RMD:         req.RMD,
		BillAmount:  req.BillAmount,
		BillPeriod:  strings.TrimSpace(req.BillPeriod),
		Notes:       strings.TrimSpace(req.Notes),
		CreatedAt:   s.now().UTC(),
	}
	created, err := s.repo.CreateElectricityReading(ctx, reading)
	if err != nil {
		return domain.ElectricityReadingView{}, err
	}
	s.logger.Info("electricity reading recorded", zap.String("id", created.ID), zap.String("bill_period", created.BillPeriod))
	return ledger.ReadingView(*created, s.tariff), nil
}

// LiveReading returns the saved live reading, or an empty one if none was saved.
func (s *Service) LiveReading(ctx context.Context) (domain.LiveReading, error) {
	live, err := s.repo.GetLiveReading(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.LiveReading{}, nil
	}
	if err != nil {
		return domain.LiveReading{}, err
	}
	return *live, nil
}

func (s *Service) UpdateLiveReading(ctx context.Context, req domain.LiveReadingRequest) (domain.LiveReading, error) {
	if err := s.check(req); err != nil {
		return domain.LiveReading{}, err
	}
	live := domain.LiveReading{
		KWh:       req.KWh,
		KVAh:      req.KVAh,
		RMD:       req.RMD,
		UpdatedAt: s.now().UTC(),
	}
	if err := s.repo.SaveLiveReading(ctx, live); err != nil {
		return domain.LiveReading{}, err
	}
	return live, nil
}

func (s *Service) EstimateCurrentBill(ctx context.Context) (domain.BillEstimate, error) {
	live, err := s.LiveReading(ctx)
	if err != nil {
		return domain.BillEstimate{}, err
	}
	return ledger.EstimateBill(live, s.tariff), nil
}

// ImportBill scrapes an HTML bill into a live-reading draft and a new-bill
// draft. With apply set, the live draft replaces the saved live reading.
func (s *Service) ImportBill(ctx context.Context, r io.Reader, apply bool) (domain.BillImportResult, error) {
	bill, err := billimport.Parse(r)
	if err != nil {
		return domain.BillImportResult{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	result := domain.BillImportResult{
		Live: domain.LiveReadingRequest{KWh: bill.KWh, KVAh: bill.KVAh, RMD: bill.RMD},
		Draft: domain.ElectricityReadingRequest{
			ReadingDate: defaultString(bill.ReadingDate, s.today().Format(domain.DateLayout)),
			BillPeriod:  bill.BillPeriod,
		},
		Matched: bill.Matched,
	}
	if bill.KWh != nil {
		result.Draft.KWh = *bill.KWh
	}
	if bill.KVAh != nil {
		result.Draft.KVAh = *bill.KVAh
	}
	if bill.RMD != nil {
		result.Draft.RMD = *bill.RMD
	}
	if bill.BillAmount != nil {
		result.Draft.BillAmount = *bill.BillAmount
	}

	if apply {
		live, err := s.UpdateLiveReading(ctx, result.Live)
		if err != nil {
			return domain.BillImportResult{}, err
		}
		result.Applied = true
		result.LiveState = &live
	}
	s.logger.Info("electricity bill imported", zap.Strings("matched", bill.Matched), zap.Bool("applied", result.Applied))
	return result, nil
}

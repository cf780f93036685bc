package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"ricemill/backend/internal/domain"
	"ricemill/backend/internal/ledger"
	"ricemill/backend/internal/xid"
)

func (s *Service) ListBatches(ctx context.Context) ([]domain.RiceBatch, error) {
	return s.repo.ListRiceBatches(ctx)
}

func (s *Service) PaddyAvailability(ctx context.Context) (domain.PaddyAvailability, error) {
	intakes, err := s.repo.ListPaddyIntakes(ctx)
	if err != nil {
		return domain.PaddyAvailability{}, err
	}
	batches, err := s.repo.ListRiceBatches(ctx)
	if err != nil {
		return domain.PaddyAvailability{}, err
	}
	return ledger.PaddyAvailability(intakes, batches), nil
}

func (s *Service) CreateBatch(ctx context.Context, req domain.RiceBatchRequest) (domain.RiceBatch, error) {
	batch, err := s.buildBatch(req)
	if err != nil {
		return domain.RiceBatch{}, err
	}
	batch.ID = xid.New("batch")
	batch.CreatedAt = s.now().UTC()

	created, err := s.repo.CreateRiceBatch(ctx, batch)
	if err != nil {
		return domain.RiceBatch{}, err
	}
	s.logger.Info("rice batch recorded",
		zap.String("id", created.ID),
		zap.String("ack_label", created.AckLabel),
		zap.Float64("paddy_used", created.PaddyUsed),
		zap.String("by", s.actorName(ctx)))
	return *created, nil
}

// EditBatch recomputes the batch quantities. Paddy availability is checked
// only when a batch is created. Once by-products are recorded for the batch,
// only its date and comments can change.
func (s *Service) EditBatch(ctx context.Context, id string, req domain.RiceBatchRequest) (domain.RiceBatch, error) {
	existing, err := s.repo.GetRiceBatch(ctx, strings.TrimSpace(id))
	if err != nil {
		return domain.RiceBatch{}, err
	}
	batch, err := s.buildBatch(req)
	if err != nil {
		return domain.RiceBatch{}, err
	}
	updatedAt := s.now().UTC()
	batch.ID = existing.ID
	batch.CreatedAt = existing.CreatedAt
	batch.UpdatedAt = &updatedAt

	updated, err := s.repo.UpdateRiceBatch(ctx, batch)
	if err != nil {
		return domain.RiceBatch{}, err
	}
	s.logger.Info("rice batch edited", zap.String("id", updated.ID), zap.String("ack_label", updated.AckLabel))
	return *updated, nil
}

func (s *Service) buildBatch(req domain.RiceBatchRequest) (domain.RiceBatch, error) {
	req.RiceType = strings.ToLower(strings.TrimSpace(req.RiceType))
	if err := s.check(req); err != nil {
		return domain.RiceBatch{}, err
	}
	riceType := domain.RiceType(req.RiceType)
	riceProduced, paddyUsed, err := ledger.BatchQuantities(req.AckCount, riceType)
	if err != nil {
		return domain.RiceBatch{}, err
	}
	date, err := s.parseDay("production_date", req.ProductionDate)
	if err != nil {
		return domain.RiceBatch{}, err
	}
	return domain.RiceBatch{
		AckLabel:       ledger.AckLabel(req.AckCount, riceType),
		AckCount:       req.AckCount,
		RiceType:       riceType,
		PaddyUsed:      paddyUsed,
		RiceProduced:   riceProduced,
		ProductionDate: date,
		MillName:       s.millName,
		Notes:          strings.TrimSpace(req.Notes),
	}, nil
}

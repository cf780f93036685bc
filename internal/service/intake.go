package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"ricemill/backend/internal/domain"
	"ricemill/backend/internal/xid"
)

var unloadingPoints = map[string]domain.UnloadingPoint{
	string(domain.UnloadingOldGodown): domain.UnloadingOldGodown,
	string(domain.UnloadingNewGodown): domain.UnloadingNewGodown,
	string(domain.UnloadingPlantShed): domain.UnloadingPlantShed,
	string(domain.UnloadingBatti):     domain.UnloadingBatti,
	string(domain.UnloadingOther):     domain.UnloadingOther,
}

func (s *Service) ListIntakes(ctx context.Context, query domain.PaddyIntakeQuery) (domain.PaddyIntakePage, error) {
	intakes, err := s.repo.ListPaddyIntakes(ctx)
	if err != nil {
		return domain.PaddyIntakePage{}, err
	}

	var from, to string
	if query.From != "" {
		day, err := s.parseDay("from", query.From)
		if err != nil {
			return domain.PaddyIntakePage{}, err
		}
		from = day.Format(domain.DateLayout)
	}
	if query.To != "" {
		day, err := s.parseDay("to", query.To)
		if err != nil {
			return domain.PaddyIntakePage{}, err
		}
		to = day.Format(domain.DateLayout)
	}

	search := strings.ToLower(strings.TrimSpace(query.Search))
	point := strings.ToUpper(strings.TrimSpace(query.UnloadingPoint))

	matched := make([]domain.PaddyIntake, 0, len(intakes))
	var quintals float64
	for _, intake := range intakes {
		if query.Center != "" && !strings.EqualFold(intake.Center, strings.TrimSpace(query.Center)) {
			continue
		}
		if query.District != "" && !strings.EqualFold(intake.District, strings.TrimSpace(query.District)) {
			continue
		}
		if point != "" && string(intake.UnloadingPoint) != point {
			continue
		}
		day := intake.Date.Format(domain.DateLayout)
		if from != "" && day < from {
			continue
		}
		if to != "" && day > to {
			continue
		}
		if search != "" && !intakeMatches(intake, search) {
			continue
		}
		matched = append(matched, intake)
		quintals += intake.Quintals
	}

	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = domain.DefaultIntakePageSz
	}
	pageSize = min(pageSize, domain.MaxIntakePageSz)
	page := max(query.Page, 1)

	start := min((page-1)*pageSize, len(matched))
	end := min(start+pageSize, len(matched))

	return domain.PaddyIntakePage{
		Items:         matched[start:end],
		Total:         len(matched),
		Page:          page,
		PageSize:      pageSize,
		TotalQuintals: quintals,
	}, nil
}

func intakeMatches(intake domain.PaddyIntake, needle string) bool {
	for _, field := range []string{intake.VehicleNo, intake.SlipNo, intake.ChitNo, intake.Center, intake.District} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func (s *Service) CreateIntake(ctx context.Context, req domain.PaddyIntakeCreateRequest) (domain.PaddyIntake, error) {
	if err := s.check(req); err != nil {
		return domain.PaddyIntake{}, err
	}
	date, err := s.parseDay("date", req.Date)
	if err != nil {
		return domain.PaddyIntake{}, err
	}

	point := domain.UnloadingOther
	if raw := strings.ToUpper(strings.TrimSpace(req.UnloadingPoint)); raw != "" {
		known, ok := unloadingPoints[raw]
		if !ok {
			return domain.PaddyIntake{}, domain.Invalid("unknown unloading point %q", req.UnloadingPoint)
		}
		point = known
	}

	intake := domain.PaddyIntake{
		ID:             xid.New("intake"),
		Date:           date,
		VehicleNo:      strings.ToUpper(strings.TrimSpace(req.VehicleNo)),
		SlipNo:         strings.TrimSpace(req.SlipNo),
		ChitNo:         strings.TrimSpace(req.ChitNo),
		Center:         strings.TrimSpace(req.Center),
		District:       strings.TrimSpace(req.District),
		NewBags:        req.NewBags,
		OldBags:        req.OldBags,
		TotalBags:      req.NewBags + req.OldBags,
		Quintals:       req.Quintals,
		MoisturePct:    req.MoisturePct,
		UnloadingPoint: point,
		CreatedAt:      s.now().UTC(),
	}

	created, err := s.repo.CreatePaddyIntake(ctx, intake)
	if err != nil {
		return domain.PaddyIntake{}, err
	}
	s.logger.Info("paddy intake recorded",
		zap.String("id", created.ID),
		zap.Int("serial_no", created.SerialNo),
		zap.String("center", created.Center),
		zap.Float64("quintals", created.Quintals),
		zap.String("by", s.actorName(ctx)))
	return *created, nil
}

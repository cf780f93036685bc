package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"ricemill/backend/internal/domain"
	"ricemill/backend/internal/ledger"
	"ricemill/backend/internal/xid"
)

func (s *Service) HamaliRates() []domain.HamaliRate {
	return ledger.HamaliRates()
}

func (s *Service) ListHamaliWork(ctx context.Context) ([]domain.HamaliWorkEntry, error) {
	return s.repo.ListHamaliWork(ctx)
}

func (s *Service) RecordHamaliWork(ctx context.Context, req domain.HamaliWorkRequest) (domain.HamaliWorkEntry, error) {
	entry, err := s.buildHamaliWork(req)
	if err != nil {
		return domain.HamaliWorkEntry{}, err
	}
	entry.ID = xid.New("hamali")
	entry.PaymentStatus = domain.WorkPending
	entry.CreatedAt = s.now().UTC()

	created, err := s.repo.CreateHamaliWork(ctx, entry)
	if err != nil {
		return domain.HamaliWorkEntry{}, err
	}
	s.logger.Info("hamali work recorded",
		zap.String("id", created.ID),
		zap.String("work_type", created.WorkType),
		zap.Float64("total", created.TotalAmount))
	return *created, nil
}

func (s *Service) EditHamaliWork(ctx context.Context, id string, req domain.HamaliWorkRequest) (domain.HamaliWorkEntry, error) {
	existing, err := s.repo.GetHamaliWork(ctx, strings.TrimSpace(id))
	if err != nil {
		return domain.HamaliWorkEntry{}, err
	}
	entry, err := s.buildHamaliWork(req)
	if err != nil {
		return domain.HamaliWorkEntry{}, err
	}
	updatedAt := s.now().UTC()
	entry.ID = existing.ID
	entry.CreatedAt = existing.CreatedAt
	entry.UpdatedAt = &updatedAt

	updated, err := s.repo.UpdateHamaliWork(ctx, entry)
	if err != nil {
		return domain.HamaliWorkEntry{}, err
	}
	s.logger.Info("hamali work edited", zap.String("id", updated.ID), zap.Float64("total", updated.TotalAmount))
	return *updated, nil
}

// buildHamaliWork fills rate and unit from the rate table for known work
// types. Free-text work types must carry both.
func (s *Service) buildHamaliWork(req domain.HamaliWorkRequest) (domain.HamaliWorkEntry, error) {
	req.WorkType = strings.TrimSpace(req.WorkType)
	req.Unit = strings.ToLower(strings.TrimSpace(req.Unit))
	if err := s.check(req); err != nil {
		return domain.HamaliWorkEntry{}, err
	}
	date, err := s.parseDay("work_date", req.WorkDate)
	if err != nil {
		return domain.HamaliWorkEntry{}, err
	}

	rate, unit := req.Rate, req.Unit
	if known, ok := ledger.LookupHamaliRate(req.WorkType); ok {
		req.WorkType = known.WorkType
		if rate == 0 {
			rate = known.Rate
		}
		if unit == "" {
			unit = known.Unit
		}
	} else if rate <= 0 || unit == "" {
		return domain.HamaliWorkEntry{}, domain.Invalid("work type %q is not in the rate table; rate and unit are required", req.WorkType)
	}

	return domain.HamaliWorkEntry{
		WorkType:    req.WorkType,
		Description: strings.TrimSpace(req.Description),
		Quantity:    req.Quantity,
		Unit:        unit,
		Rate:        rate,
		TotalAmount: req.Quantity * rate,
		WorkDate:    date,
		Notes:       strings.TrimSpace(req.Notes),
	}, nil
}

func (s *Service) ListHamaliPayments(ctx context.Context) ([]domain.HamaliPayment, error) {
	return s.repo.ListHamaliPayments(ctx)
}

func (s *Service) RecordHamaliPayment(ctx context.Context, req domain.HamaliPaymentRequest) (domain.HamaliPayment, error) {
	req.Method = strings.ToLower(strings.TrimSpace(req.Method))
	if err := s.check(req); err != nil {
		return domain.HamaliPayment{}, err
	}
	date, err := s.parseDay("payment_date", req.PaymentDate)
	if err != nil {
		return domain.HamaliPayment{}, err
	}

	payment := domain.HamaliPayment{
		ID:          xid.New("hamali-payment"),
		Amount:      req.Amount,
		PaymentDate: date,
		Method:      req.Method,
		WorkPeriod:  strings.TrimSpace(req.WorkPeriod),
		Notes:       strings.TrimSpace(req.Notes),
		CreatedAt:   s.now().UTC(),
	}
	created, err := s.repo.CreateHamaliPayment(ctx, payment)
	if err != nil {
		return domain.HamaliPayment{}, err
	}
	s.logger.Info("hamali payment recorded",
		zap.String("id", created.ID),
		zap.Float64("amount", created.Amount),
		zap.Int("settled_entries", len(created.SettledEntryIDs)),
		zap.Float64("unallocated", created.UnallocatedAmount))
	return *created, nil
}

func (s *Service) HamaliSummary(ctx context.Context) (domain.HamaliSummary, error) {
	entries, err := s.repo.ListHamaliWork(ctx)
	if err != nil {
		return domain.HamaliSummary{}, err
	}
	payments, err := s.repo.ListHamaliPayments(ctx)
	if err != nil {
		return domain.HamaliSummary{}, err
	}
	return ledger.SummarizeHamali(entries, payments), nil
}

func (s *Service) ListSalaries(ctx context.Context) ([]domain.SupervisorSalary, error) {
	return s.repo.ListSupervisorSalaries(ctx)
}

func (s *Service) CreateSalary(ctx context.Context, req domain.SupervisorSalaryRequest) (domain.SupervisorSalary, error) {
	if err := s.check(req); err != nil {
		return domain.SupervisorSalary{}, err
	}

	salary := domain.SupervisorSalary{
		ID:            xid.New("salary"),
		Name:          strings.TrimSpace(req.Name),
		Designation:   strings.TrimSpace(req.Designation),
		Month:         req.Month,
		MonthlySalary: req.MonthlySalary,
		PaidAmount:    req.PaidAmount,
		PaymentStatus: ledger.SalaryStatus(req.MonthlySalary, req.PaidAmount),
		Notes:         strings.TrimSpace(req.Notes),
		CreatedAt:     s.now().UTC(),
	}
	if req.PaymentDate != "" {
		date, err := s.parseDay("payment_date", req.PaymentDate)
		if err != nil {
			return domain.SupervisorSalary{}, err
		}
		salary.PaymentDate = &date
	}

	created, err := s.repo.CreateSupervisorSalary(ctx, salary)
	if err != nil {
		return domain.SupervisorSalary{}, err
	}
	s.logger.Info("supervisor salary recorded", zap.String("id", created.ID), zap.String("month", created.Month))
	return *created, nil
}

func (s *Service) PaySalary(ctx context.Context, id string, req domain.SalaryPaymentRequest) (domain.SupervisorSalary, error) {
	if err := s.check(req); err != nil {
		return domain.SupervisorSalary{}, err
	}
	date, err := s.parseDay("payment_date", req.PaymentDate)
	if err != nil {
		return domain.SupervisorSalary{}, err
	}
	updated, err := s.repo.AddSalaryPayment(ctx, strings.TrimSpace(id), req.Amount, date)
	if err != nil {
		return domain.SupervisorSalary{}, err
	}
	s.logger.Info("salary payment recorded", zap.String("id", updated.ID), zap.Float64("paid", updated.PaidAmount))
	return *updated, nil
}

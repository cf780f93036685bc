package service

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"go.uber.org/zap"

	"ricemill/backend/internal/domain"
	"ricemill/backend/internal/ledger"
	"ricemill/backend/internal/xid"
)

func (s *Service) ListProductions(ctx context.Context) ([]domain.ByProductProduction, error) {
	return s.repo.ListByProductProductions(ctx)
}

// UnprocessedBatches lists rice batches that have no by-product record yet.
func (s *Service) UnprocessedBatches(ctx context.Context) ([]domain.RiceBatch, error) {
	batches, err := s.repo.ListRiceBatches(ctx)
	if err != nil {
		return nil, err
	}
	productions, err := s.repo.ListByProductProductions(ctx)
	if err != nil {
		return nil, err
	}
	done := make(map[string]struct{}, len(productions))
	for _, production := range productions {
		done[production.RiceBatchID] = struct{}{}
	}
	out := make([]domain.RiceBatch, 0, len(batches))
	for _, batch := range batches {
		if _, ok := done[batch.ID]; !ok {
			out = append(out, batch)
		}
	}
	return out, nil
}

func (s *Service) RecordProduction(ctx context.Context, req domain.ByProductProductionRequest) (domain.ByProductProduction, error) {
	if err := s.check(req); err != nil {
		return domain.ByProductProduction{}, err
	}
	batch, err := s.repo.GetRiceBatch(ctx, strings.TrimSpace(req.RiceBatchID))
	if err != nil {
		return domain.ByProductProduction{}, err
	}

	quantities := make(map[domain.ByProductCategory]float64, len(domain.ByProductCategories))
	for _, category := range domain.ByProductCategories {
		quantities[category] = 0
	}
	for key, qty := range req.Quantities {
		if !domain.IsByProductCategory(key) {
			return domain.ByProductProduction{}, domain.Invalid("unknown by-product category %q", key)
		}
		if math.IsNaN(qty) || math.IsInf(qty, 0) {
			return domain.ByProductProduction{}, domain.Invalid("quantity for %s must be a number", key)
		}
		quantities[domain.ByProductCategory(key)] = qty
	}

	date := batch.ProductionDate
	if req.ProductionDate != "" {
		if date, err = s.parseDay("production_date", req.ProductionDate); err != nil {
			return domain.ByProductProduction{}, err
		}
	}

	production := domain.ByProductProduction{
		ID:             xid.New("byproduct"),
		RiceBatchID:    batch.ID,
		AckLabel:       batch.AckLabel,
		PaddyUsed:      batch.PaddyUsed,
		Quantities:     quantities,
		Yields:         ledger.ByProductYields(quantities, batch.PaddyUsed),
		ProductionDate: date,
		Notes:          strings.TrimSpace(req.Notes),
		CreatedAt:      s.now().UTC(),
	}

	created, err := s.repo.CreateByProductProduction(ctx, production)
	if err != nil {
		return domain.ByProductProduction{}, err
	}
	s.logger.Info("by-product production recorded",
		zap.String("id", created.ID),
		zap.String("rice_batch_id", created.RiceBatchID),
		zap.String("by", s.actorName(ctx)))
	return *created, nil
}

func (s *Service) ByProductStock(ctx context.Context) ([]domain.ByProductStock, error) {
	productions, err := s.repo.ListByProductProductions(ctx)
	if err != nil {
		return nil, err
	}
	sales, err := s.repo.ListByProductSales(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.DeriveStock(productions, sales), nil
}

func (s *Service) ListSales(ctx context.Context) ([]domain.ByProductSale, error) {
	return s.repo.ListByProductSales(ctx)
}

func (s *Service) GetSale(ctx context.Context, id string) (domain.ByProductSale, error) {
	sale, err := s.repo.GetByProductSale(ctx, strings.TrimSpace(id))
	if err != nil {
		return domain.ByProductSale{}, err
	}
	return *sale, nil
}

func (s *Service) CreateSale(ctx context.Context, req domain.ByProductSaleRequest) (domain.ByProductSale, error) {
	if err := s.check(req); err != nil {
		return domain.ByProductSale{}, err
	}
	saleDate, err := s.parseDay("sale_date", req.SaleDate)
	if err != nil {
		return domain.ByProductSale{}, err
	}

	items := make([]domain.SaleLineItem, 0, len(req.Items))
	for i, item := range req.Items {
		category := strings.ToLower(strings.TrimSpace(item.Category))
		if !domain.IsByProductCategory(category) {
			return domain.ByProductSale{}, domain.Invalid("items[%d]: unknown by-product category %q", i, item.Category)
		}
		items = append(items, ledger.PriceLineItem(domain.ByProductCategory(category), item.Quantity, item.Rate, item.GSTRate))
	}

	invoiceNo := strings.TrimSpace(req.InvoiceNo)
	if invoiceNo == "" {
		existing, err := s.repo.ListByProductSales(ctx)
		if err != nil {
			return domain.ByProductSale{}, err
		}
		invoiceNo = nextInvoiceNo(existing, saleDate.Format("20060102"))
	}

	sale := ledger.PriceSale(domain.ByProductSale{
		ID:               xid.New("sale"),
		InvoiceNo:        invoiceNo,
		SaleDate:         saleDate,
		PartyName:        strings.TrimSpace(req.PartyName),
		PartyPhone:       strings.TrimSpace(req.PartyPhone),
		PartyGSTIN:       strings.ToUpper(strings.TrimSpace(req.PartyGSTIN)),
		PartyAddress:     strings.TrimSpace(req.PartyAddress),
		PaymentTermsDays: req.PaymentTermsDays,
		Items:            items,
		Notes:            strings.TrimSpace(req.Notes),
		CreatedAt:        s.now().UTC(),
	})

	created, err := s.repo.CreateByProductSale(ctx, sale)
	if err != nil {
		return domain.ByProductSale{}, err
	}
	s.logger.Info("by-product sale recorded",
		zap.String("id", created.ID),
		zap.String("invoice_no", created.InvoiceNo),
		zap.Float64("total", created.TotalAmount),
		zap.String("by", s.actorName(ctx)))
	return *created, nil
}

func nextInvoiceNo(existing []domain.ByProductSale, day string) string {
	prefix := "BP-" + day + "-"
	seq := 1
	for {
		candidate := fmt.Sprintf("%s%03d", prefix, seq)
		if !slices.ContainsFunc(existing, func(sale domain.ByProductSale) bool { return sale.InvoiceNo == candidate }) {
			return candidate
		}
		seq++
	}
}

func (s *Service) ListSalePayments(ctx context.Context, saleID string) ([]domain.ByProductPayment, error) {
	saleID = strings.TrimSpace(saleID)
	if saleID != "" {
		if _, err := s.repo.GetByProductSale(ctx, saleID); err != nil {
			return nil, err
		}
	}
	return s.repo.ListByProductPayments(ctx, saleID)
}

func (s *Service) ApplySalePayment(ctx context.Context, saleID string, req domain.ByProductPaymentRequest) (domain.ByProductPaymentResponse, error) {
	req.Method = strings.ToLower(strings.TrimSpace(req.Method))
	if err := s.check(req); err != nil {
		return domain.ByProductPaymentResponse{}, err
	}
	if math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) {
		return domain.ByProductPaymentResponse{}, domain.Invalid("payment amount must be a number")
	}
	paidOn, err := s.parseDay("payment_date", req.PaymentDate)
	if err != nil {
		return domain.ByProductPaymentResponse{}, err
	}

	payment := domain.ByProductPayment{
		ID:          xid.New("payment"),
		SaleID:      strings.TrimSpace(saleID),
		Amount:      req.Amount,
		PaymentDate: paidOn,
		Method:      req.Method,
		ReferenceNo: strings.TrimSpace(req.ReferenceNo),
		Notes:       strings.TrimSpace(req.Notes),
		CreatedAt:   s.now().UTC(),
	}
	sale, err := s.repo.ApplyByProductPayment(ctx, payment)
	if err != nil {
		return domain.ByProductPaymentResponse{}, err
	}
	payment.InvoiceNo = sale.InvoiceNo

	s.logger.Info("sale payment applied",
		zap.String("sale_id", sale.ID),
		zap.Float64("amount", payment.Amount),
		zap.Float64("balance", sale.BalanceAmount),
		zap.String("status", string(sale.PaymentStatus)))
	return domain.ByProductPaymentResponse{Payment: payment, Sale: *sale}, nil
}

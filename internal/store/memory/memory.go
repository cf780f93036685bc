package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"ricemill/backend/internal/domain"
	"ricemill/backend/internal/ledger"
	"ricemill/backend/internal/snapshot"
	"ricemill/backend/internal/store"
)

const (
	keyPaddyIntakes         = "paddy_intakes"
	keyRiceProductions      = "rice_productions"
	keyByProductProductions = "byproduct_productions"
	keyByProductSales       = "byproduct_sales"
	keyByProductPayments    = "byproduct_payments"
	keyElectricityReadings  = "electricity_readings"
	keyLiveReading          = "electricity_live_reading"
	keyHamaliWork           = "hamali_work"
	keyHamaliPayments       = "hamali_payments"
	keySupervisorSalaries   = "supervisor_salaries"
	keyReconciliations      = "reconciliations"
	keyGunnyDispatches      = "old_gunny_dispatches"
	keyConsignments         = "fci_consignments"
	keyPackaging            = "packaging_movements"
)

// Store keeps every collection in memory and re-serializes a whole collection
// to the snapshot backend after each mutation. If a save fails the mutation
// is undone in memory and the error is returned.
type Store struct {
	mu      sync.RWMutex
	backend snapshot.Backend
	logger  *zap.Logger

	intakes         []domain.PaddyIntake
	batches         []domain.RiceBatch
	productions     []domain.ByProductProduction
	sales           []domain.ByProductSale
	salePayments    []domain.ByProductPayment
	readings        []domain.ElectricityReading
	live            *domain.LiveReading
	hamaliWork      []domain.HamaliWorkEntry
	hamaliPayments  []domain.HamaliPayment
	salaries        []domain.SupervisorSalary
	reconciliations []domain.ReconciliationState
	gunnyDispatches []domain.GunnyDispatch
	consignments    []domain.Consignment
	packaging       []domain.PackagingMovement
}

var _ store.Repository = (*Store)(nil)

// New loads every collection from backend. Absent keys start empty.
func New(ctx context.Context, backend snapshot.Backend, logger *zap.Logger) (*Store, error) {
	if backend == nil {
		backend = snapshot.NoopBackend{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{backend: backend, logger: logger}

	for _, key := range []string{
		keyPaddyIntakes, keyRiceProductions, keyByProductProductions, keyByProductSales,
		keyByProductPayments, keyElectricityReadings, keyLiveReading, keyHamaliWork,
		keyHamaliPayments, keySupervisorSalaries, keyReconciliations, keyGunnyDispatches,
		keyConsignments, keyPackaging,
	} {
		if _, err := s.load(ctx, key); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// NewSeeded is New plus the static intake registry when no intake collection
// has been saved yet.
func NewSeeded(ctx context.Context, backend snapshot.Backend, logger *zap.Logger) (*Store, error) {
	s, err := New(ctx, backend, logger)
	if err != nil {
		return nil, err
	}
	if _, ok, err := s.backend.Load(ctx, keyPaddyIntakes); err != nil {
		return nil, err
	} else if ok {
		return s, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.intakes = store.SeedIntakes()
	if err := s.save(ctx, keyPaddyIntakes); err != nil {
		return nil, err
	}
	s.logger.Info("seeded paddy intake registry", zap.Int("records", len(s.intakes)))
	return s, nil
}

func (s *Store) load(ctx context.Context, key string) (bool, error) {
	payload, ok, err := s.backend.Load(ctx, key)
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok || len(payload) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(payload, s.target(key)); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) target(key string) any {
	switch key {
	case keyPaddyIntakes:
		return &s.intakes
	case keyRiceProductions:
		return &s.batches
	case keyByProductProductions:
		return &s.productions
	case keyByProductSales:
		return &s.sales
	case keyByProductPayments:
		return &s.salePayments
	case keyElectricityReadings:
		return &s.readings
	case keyLiveReading:
		return &s.live
	case keyHamaliWork:
		return &s.hamaliWork
	case keyHamaliPayments:
		return &s.hamaliPayments
	case keySupervisorSalaries:
		return &s.salaries
	case keyReconciliations:
		return &s.reconciliations
	case keyGunnyDispatches:
		return &s.gunnyDispatches
	case keyConsignments:
		return &s.consignments
	case keyPackaging:
		return &s.packaging
	default:
		panic("memory: unknown collection key " + key)
	}
}

func (s *Store) save(ctx context.Context, key string) error {
	payload, err := json.Marshal(s.target(key))
	if err != nil {
		return err
	}
	return s.backend.Save(ctx, key, payload)
}

// commit saves keys in order. On the first failure it runs rollback, re-saves
// the keys already written so the backend matches memory again, and reports
// ErrPersistence.
func (s *Store) commit(ctx context.Context, rollback func(), keys ...string) error {
	for i, key := range keys {
		if err := s.save(ctx, key); err != nil {
			rollback()
			for _, written := range keys[:i] {
				if restoreErr := s.save(ctx, written); restoreErr != nil {
					s.logger.Error("snapshot restore failed", zap.String("key", written), zap.Error(restoreErr))
				}
			}
			s.logger.Error("snapshot save failed", zap.String("key", key), zap.Error(err))
			return fmt.Errorf("%w: save %s: %v", domain.ErrPersistence, key, err)
		}
	}
	return nil
}

func (s *Store) ListPaddyIntakes(_ context.Context) ([]domain.PaddyIntake, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.intakes), nil
}

func (s *Store) CreatePaddyIntake(ctx context.Context, intake domain.PaddyIntake) (*domain.PaddyIntake, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if intake.ID == "" || intake.Quintals <= 0 {
		return nil, domain.ErrInvalidInput
	}
	serial := 0
	for _, existing := range s.intakes {
		serial = max(serial, existing.SerialNo)
	}
	intake.SerialNo = serial + 1

	prev := s.intakes
	s.intakes = append(slices.Clone(prev), intake)
	if err := s.commit(ctx, func() { s.intakes = prev }, keyPaddyIntakes); err != nil {
		return nil, err
	}
	created := intake
	return &created, nil
}

func (s *Store) ListRiceBatches(_ context.Context) ([]domain.RiceBatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.batches), nil
}

func (s *Store) GetRiceBatch(_ context.Context, id string) (*domain.RiceBatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := slices.IndexFunc(s.batches, func(b domain.RiceBatch) bool { return b.ID == id })
	if idx < 0 {
		return nil, domain.ErrNotFound
	}
	batch := s.batches[idx]
	return &batch, nil
}

func (s *Store) CreateRiceBatch(ctx context.Context, batch domain.RiceBatch) (*domain.RiceBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if batch.ID == "" {
		return nil, domain.ErrInvalidInput
	}
	availability := ledger.PaddyAvailability(s.intakes, s.batches)
	if err := ledger.CheckPaddy(availability, batch.PaddyUsed); err != nil {
		return nil, err
	}

	prev := s.batches
	s.batches = append(slices.Clone(prev), batch)
	if err := s.commit(ctx, func() { s.batches = prev }, keyRiceProductions); err != nil {
		return nil, err
	}
	created := batch
	return &created, nil
}

func (s *Store) UpdateRiceBatch(ctx context.Context, batch domain.RiceBatch) (*domain.RiceBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.batches, func(b domain.RiceBatch) bool { return b.ID == batch.ID })
	if idx < 0 {
		return nil, domain.ErrNotFound
	}
	if err := ledger.CheckBatchEdit(s.batches[idx], batch, s.hasProduction(batch.ID)); err != nil {
		return nil, err
	}
	batch.CreatedAt = s.batches[idx].CreatedAt

	prev := s.batches
	s.batches = slices.Clone(prev)
	s.batches[idx] = batch
	if err := s.commit(ctx, func() { s.batches = prev }, keyRiceProductions); err != nil {
		return nil, err
	}
	updated := batch
	return &updated, nil
}

func (s *Store) ListByProductProductions(_ context.Context) ([]domain.ByProductProduction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ByProductProduction, 0, len(s.productions))
	for _, production := range s.productions {
		out = append(out, cloneProduction(production))
	}
	return out, nil
}

func (s *Store) CreateByProductProduction(ctx context.Context, production domain.ByProductProduction) (*domain.ByProductProduction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !slices.ContainsFunc(s.batches, func(b domain.RiceBatch) bool { return b.ID == production.RiceBatchID }) {
		return nil, domain.ErrNotFound
	}
	if s.hasProduction(production.RiceBatchID) {
		return nil, fmt.Errorf("%w: rice batch %s already has by-product production", domain.ErrConflict, production.RiceBatchID)
	}

	prev := s.productions
	s.productions = append(slices.Clone(prev), cloneProduction(production))
	if err := s.commit(ctx, func() { s.productions = prev }, keyByProductProductions); err != nil {
		return nil, err
	}
	created := cloneProduction(production)
	return &created, nil
}

func (s *Store) ListByProductSales(_ context.Context) ([]domain.ByProductSale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ByProductSale, 0, len(s.sales))
	for _, sale := range s.sales {
		out = append(out, cloneSale(sale))
	}
	return out, nil
}

func (s *Store) GetByProductSale(_ context.Context, id string) (*domain.ByProductSale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := slices.IndexFunc(s.sales, func(sale domain.ByProductSale) bool { return sale.ID == id })
	if idx < 0 {
		return nil, domain.ErrNotFound
	}
	sale := cloneSale(s.sales[idx])
	return &sale, nil
}

func (s *Store) CreateByProductSale(ctx context.Context, sale domain.ByProductSale) (*domain.ByProductSale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sale.ID == "" || len(sale.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if slices.ContainsFunc(s.sales, func(existing domain.ByProductSale) bool { return existing.InvoiceNo == sale.InvoiceNo }) {
		return nil, fmt.Errorf("%w: invoice %s already exists", domain.ErrConflict, sale.InvoiceNo)
	}

	prev := s.sales
	s.sales = append(slices.Clone(prev), cloneSale(sale))
	if err := s.commit(ctx, func() { s.sales = prev }, keyByProductSales); err != nil {
		return nil, err
	}
	created := cloneSale(sale)
	return &created, nil
}

func (s *Store) ListByProductPayments(_ context.Context, saleID string) ([]domain.ByProductPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ByProductPayment, 0, len(s.salePayments))
	for _, payment := range s.salePayments {
		if saleID != "" && payment.SaleID != saleID {
			continue
		}
		out = append(out, payment)
	}
	return out, nil
}

func (s *Store) ApplyByProductPayment(ctx context.Context, payment domain.ByProductPayment) (*domain.ByProductSale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.sales, func(sale domain.ByProductSale) bool { return sale.ID == payment.SaleID })
	if idx < 0 {
		return nil, domain.ErrNotFound
	}
	updated, err := ledger.ApplySalePayment(cloneSale(s.sales[idx]), payment.Amount)
	if err != nil {
		return nil, err
	}
	payment.InvoiceNo = updated.InvoiceNo

	prevSales, prevPayments := s.sales, s.salePayments
	s.sales = slices.Clone(prevSales)
	s.sales[idx] = updated
	s.salePayments = append(slices.Clone(prevPayments), payment)
	rollback := func() {
		s.sales = prevSales
		s.salePayments = prevPayments
	}
	if err := s.commit(ctx, rollback, keyByProductSales, keyByProductPayments); err != nil {
		return nil, err
	}
	out := cloneSale(updated)
	return &out, nil
}

func (s *Store) ListElectricityReadings(_ context.Context) ([]domain.ElectricityReading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.readings), nil
}

func (s *Store) CreateElectricityReading(ctx context.Context, reading domain.ElectricityReading) (*domain.ElectricityReading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.readings
	s.readings = append(slices.Clone(prev), reading)
	if err := s.commit(ctx, func() { s.readings = prev }, keyElectricityReadings); err != nil {
		return nil, err
	}
	created := reading
	return &created, nil
}

func (s *Store) GetLiveReading(_ context.Context) (*domain.LiveReading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.live == nil {
		return nil, domain.ErrNotFound
	}
	live := *s.live
	return &live, nil
}

func (s *Store) SaveLiveReading(ctx context.Context, live domain.LiveReading) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.live
	s.live = &live
	return s.commit(ctx, func() { s.live = prev }, keyLiveReading)
}

func (s *Store) ListHamaliWork(_ context.Context) ([]domain.HamaliWorkEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.hamaliWork), nil
}

func (s *Store) GetHamaliWork(_ context.Context, id string) (*domain.HamaliWorkEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := slices.IndexFunc(s.hamaliWork, func(e domain.HamaliWorkEntry) bool { return e.ID == id })
	if idx < 0 {
		return nil, domain.ErrNotFound
	}
	entry := s.hamaliWork[idx]
	return &entry, nil
}

func (s *Store) CreateHamaliWork(ctx context.Context, entry domain.HamaliWorkEntry) (*domain.HamaliWorkEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.hamaliWork
	s.hamaliWork = append(slices.Clone(prev), entry)
	if err := s.commit(ctx, func() { s.hamaliWork = prev }, keyHamaliWork); err != nil {
		return nil, err
	}
	created := entry
	return &created, nil
}

func (s *Store) UpdateHamaliWork(ctx context.Context, entry domain.HamaliWorkEntry) (*domain.HamaliWorkEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.hamaliWork, func(e domain.HamaliWorkEntry) bool { return e.ID == entry.ID })
	if idx < 0 {
		return nil, domain.ErrNotFound
	}
	// Payment status belongs to CreateHamaliPayment.
	entry.PaymentStatus = s.hamaliWork[idx].PaymentStatus
	entry.CreatedAt = s.hamaliWork[idx].CreatedAt

	prev := s.hamaliWork
	s.hamaliWork = slices.Clone(prev)
	s.hamaliWork[idx] = entry
	if err := s.commit(ctx, func() { s.hamaliWork = prev }, keyHamaliWork); err != nil {
		return nil, err
	}
	updated := entry
	return &updated, nil
}

func (s *Store) ListHamaliPayments(_ context.Context) ([]domain.HamaliPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.HamaliPayment, 0, len(s.hamaliPayments))
	for _, payment := range s.hamaliPayments {
		payment.SettledEntryIDs = slices.Clone(payment.SettledEntryIDs)
		out = append(out, payment)
	}
	return out, nil
}

func (s *Store) CreateHamaliPayment(ctx context.Context, payment domain.HamaliPayment) (*domain.HamaliPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if payment.Amount <= 0 {
		return nil, domain.ErrInvalidInput
	}
	settled, remaining := ledger.AllocateHamaliPayment(s.hamaliWork, payment.Amount)
	payment.SettledEntryIDs = settled
	payment.UnallocatedAmount = remaining

	prevWork, prevPayments := s.hamaliWork, s.hamaliPayments
	s.hamaliWork = slices.Clone(prevWork)
	paidAt := payment.CreatedAt
	for i := range s.hamaliWork {
		if slices.Contains(settled, s.hamaliWork[i].ID) {
			s.hamaliWork[i].PaymentStatus = domain.WorkPaid
			s.hamaliWork[i].UpdatedAt = &paidAt
		}
	}
	s.hamaliPayments = append(slices.Clone(prevPayments), payment)
	rollback := func() {
		s.hamaliWork = prevWork
		s.hamaliPayments = prevPayments
	}
	if err := s.commit(ctx, rollback, keyHamaliWork, keyHamaliPayments); err != nil {
		return nil, err
	}
	created := payment
	created.SettledEntryIDs = slices.Clone(settled)
	return &created, nil
}

func (s *Store) ListSupervisorSalaries(_ context.Context) ([]domain.SupervisorSalary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.salaries), nil
}

func (s *Store) CreateSupervisorSalary(ctx context.Context, salary domain.SupervisorSalary) (*domain.SupervisorSalary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.salaries
	s.salaries = append(slices.Clone(prev), salary)
	if err := s.commit(ctx, func() { s.salaries = prev }, keySupervisorSalaries); err != nil {
		return nil, err
	}
	created := salary
	return &created, nil
}

func (s *Store) AddSalaryPayment(ctx context.Context, id string, amount float64, paidAt time.Time) (*domain.SupervisorSalary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.salaries, func(sal domain.SupervisorSalary) bool { return sal.ID == id })
	if idx < 0 {
		return nil, domain.ErrNotFound
	}
	if amount <= 0 {
		return nil, domain.ErrInvalidInput
	}

	updated := s.salaries[idx]
	updated.PaidAmount += amount
	updated.PaymentDate = &paidAt
	updated.PaymentStatus = ledger.SalaryStatus(updated.MonthlySalary, updated.PaidAmount)

	prev := s.salaries
	s.salaries = slices.Clone(prev)
	s.salaries[idx] = updated
	if err := s.commit(ctx, func() { s.salaries = prev }, keySupervisorSalaries); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Store) ListReconciliationStates(_ context.Context) ([]domain.ReconciliationState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.reconciliations), nil
}

func (s *Store) reconciliationState(centerKey string) (domain.ReconciliationState, int, error) {
	total, ok := ledger.FindCenter(ledger.CenterTotals(s.intakes), centerKey)
	if !ok {
		return domain.ReconciliationState{}, -1, domain.ErrNotFound
	}
	idx := slices.IndexFunc(s.reconciliations, func(r domain.ReconciliationState) bool { return r.CenterKey == centerKey })
	if idx >= 0 {
		return s.reconciliations[idx], idx, nil
	}
	return domain.ReconciliationState{
		CenterKey: total.CenterKey,
		Center:    total.Center,
		District:  total.District,
	}, -1, nil
}

func (s *Store) putReconciliation(ctx context.Context, state domain.ReconciliationState, idx int) error {
	prev := s.reconciliations
	s.reconciliations = slices.Clone(prev)
	if idx >= 0 {
		s.reconciliations[idx] = state
	} else {
		s.reconciliations = append(s.reconciliations, state)
	}
	return s.commit(ctx, func() { s.reconciliations = prev }, keyReconciliations)
}

func (s *Store) Reconcile(ctx context.Context, centerKey string, amount float64, notes string, at time.Time) (*domain.ReconciliationState, float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, idx, err := s.reconciliationState(centerKey)
	if err != nil {
		return nil, 0, err
	}
	total, _ := ledger.FindCenter(ledger.CenterTotals(s.intakes), centerKey)
	next, applied, err := ledger.Reconcile(state, total.TotalQuintals, amount)
	if err != nil {
		return nil, 0, err
	}
	if applied == 0 {
		return &state, 0, nil
	}

	next.UpdatedAt = at
	if notes != "" {
		next.Notes = notes
	}
	if err := s.putReconciliation(ctx, next, idx); err != nil {
		return nil, 0, err
	}
	return &next, applied, nil
}

func (s *Store) AttachReconciliationDocument(ctx context.Context, centerKey string, documentRef string, notes string, at time.Time) (*domain.ReconciliationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, idx, err := s.reconciliationState(centerKey)
	if err != nil {
		return nil, err
	}
	state.DocumentRef = documentRef
	if notes != "" {
		state.Notes = notes
	}
	state.UpdatedAt = at
	if err := s.putReconciliation(ctx, state, idx); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *Store) ListGunnyDispatches(_ context.Context) ([]domain.GunnyDispatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.gunnyDispatches), nil
}

func (s *Store) GetGunnyDispatch(_ context.Context, id string) (*domain.GunnyDispatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := slices.IndexFunc(s.gunnyDispatches, func(d domain.GunnyDispatch) bool { return d.ID == id })
	if idx < 0 {
		return nil, domain.ErrNotFound
	}
	dispatch := s.gunnyDispatches[idx]
	return &dispatch, nil
}

func (s *Store) CreateGunnyDispatch(ctx context.Context, dispatch domain.GunnyDispatch) (*domain.GunnyDispatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.gunnyDispatches
	s.gunnyDispatches = append(slices.Clone(prev), dispatch)
	if err := s.commit(ctx, func() { s.gunnyDispatches = prev }, keyGunnyDispatches); err != nil {
		return nil, err
	}
	created := dispatch
	return &created, nil
}

// UpdateGunnyDispatch applies mutate to the stored dispatch while holding the
// lock, so concurrent acknowledgement and photo updates keep each other's fields.
func (s *Store) UpdateGunnyDispatch(ctx context.Context, id string, mutate func(*domain.GunnyDispatch) error) (*domain.GunnyDispatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.gunnyDispatches, func(d domain.GunnyDispatch) bool { return d.ID == id })
	if idx < 0 {
		return nil, domain.ErrNotFound
	}
	dispatch := s.gunnyDispatches[idx]
	if err := mutate(&dispatch); err != nil {
		return nil, err
	}
	dispatch.ID = id

	prev := s.gunnyDispatches
	s.gunnyDispatches = slices.Clone(prev)
	s.gunnyDispatches[idx] = dispatch
	if err := s.commit(ctx, func() { s.gunnyDispatches = prev }, keyGunnyDispatches); err != nil {
		return nil, err
	}
	updated := dispatch
	return &updated, nil
}

func (s *Store) hasProduction(batchID string) bool {
	return slices.ContainsFunc(s.productions, func(p domain.ByProductProduction) bool { return p.RiceBatchID == batchID })
}

func (s *Store) ListConsignments(_ context.Context) ([]domain.Consignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.consignments), nil
}

func (s *Store) CreateConsignment(ctx context.Context, consignment domain.Consignment) (*domain.Consignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.consignments
	s.consignments = append(slices.Clone(prev), consignment)
	if err := s.commit(ctx, func() { s.consignments = prev }, keyConsignments); err != nil {
		return nil, err
	}
	created := consignment
	return &created, nil
}

func (s *Store) ListPackagingMovements(_ context.Context) ([]domain.PackagingMovement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.packaging), nil
}

func (s *Store) CreatePackagingMovement(ctx context.Context, movement domain.PackagingMovement) (*domain.PackagingMovement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if movement.Quantity == 0 {
		return nil, domain.ErrInvalidInput
	}
	prev := s.packaging
	s.packaging = append(slices.Clone(prev), movement)
	if err := s.commit(ctx, func() { s.packaging = prev }, keyPackaging); err != nil {
		return nil, err
	}
	created := movement
	return &created, nil
}

func cloneProduction(p domain.ByProductProduction) domain.ByProductProduction {
	p.Quantities = maps.Clone(p.Quantities)
	p.Yields = maps.Clone(p.Yields)
	return p
}

func cloneSale(sale domain.ByProductSale) domain.ByProductSale {
	sale.Items = slices.Clone(sale.Items)
	return sale
}

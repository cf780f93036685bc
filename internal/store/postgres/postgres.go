package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"ricemill/backend/internal/domain"
	"ricemill/backend/internal/ledger"
	"ricemill/backend/internal/store"
)

const (
	tablePaddyIntakes         = "paddy_intakes"
	tableRiceProductions      = "rice_productions"
	tableByProductProductions = "byproduct_productions"
	tableByProductSales       = "byproduct_sales"
	tableByProductPayments    = "byproduct_payments"
	tableElectricityReadings  = "electricity_readings"
	tableLiveReading          = "electricity_live_reading"
	tableHamaliWork           = "hamali_work"
	tableHamaliPayments       = "hamali_payments"
	tableSupervisorSalaries   = "supervisor_salaries"
	tableReconciliations      = "reconciliations"
	tableGunnyDispatches      = "old_gunny_dispatches"
	tableConsignments         = "fci_consignments"
	tablePackaging            = "packaging_movements"

	liveReadingID = "live"
)

//go:embed schema.sql
var schema string

type Store struct {
	db *sql.DB
}

var _ store.Repository = (*Store)(nil)

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(4)
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the collection tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Seed loads the static intake registry into an empty intake table.
func (s *Store) Seed(ctx context.Context) (int, error) {
	seeded := 0
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := lockTables(ctx, tx, tablePaddyIntakes); err != nil {
			return err
		}
		var count int
		if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM paddy_intakes`).Scan(&count); err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		for _, intake := range store.SeedIntakes() {
			if err := insertDoc(ctx, tx, tablePaddyIntakes, intake.ID, intake); err != nil {
				return err
			}
			seeded++
		}
		return nil
	})
	return seeded, err
}

func (s *Store) ListPaddyIntakes(ctx context.Context) ([]domain.PaddyIntake, error) {
	return listDocs[domain.PaddyIntake](ctx, s.db, tablePaddyIntakes)
}

func (s *Store) CreatePaddyIntake(ctx context.Context, intake domain.PaddyIntake) (*domain.PaddyIntake, error) {
	if intake.ID == "" || intake.Quintals <= 0 {
		return nil, domain.ErrInvalidInput
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := lockTables(ctx, tx, tablePaddyIntakes); err != nil {
			return err
		}
		intakes, err := listDocs[domain.PaddyIntake](ctx, tx, tablePaddyIntakes)
		if err != nil {
			return err
		}
		serial := 0
		for _, existing := range intakes {
			serial = max(serial, existing.SerialNo)
		}
		intake.SerialNo = serial + 1
		return insertDoc(ctx, tx, tablePaddyIntakes, intake.ID, intake)
	})
	if err != nil {
		return nil, err
	}
	return &intake, nil
}

func (s *Store) ListRiceBatches(ctx context.Context) ([]domain.RiceBatch, error) {
	return listDocs[domain.RiceBatch](ctx, s.db, tableRiceProductions)
}

func (s *Store) GetRiceBatch(ctx context.Context, id string) (*domain.RiceBatch, error) {
	return getDoc[domain.RiceBatch](ctx, s.db, tableRiceProductions, id, false)
}

// CreateRiceBatch checks paddy availability and inserts under one table lock so
// two batches cannot both pass the check against the same balance.
func (s *Store) CreateRiceBatch(ctx context.Context, batch domain.RiceBatch) (*domain.RiceBatch, error) {
	if batch.ID == "" {
		return nil, domain.ErrInvalidInput
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := lockTables(ctx, tx, tablePaddyIntakes, tableRiceProductions); err != nil {
			return err
		}
		intakes, err := listDocs[domain.PaddyIntake](ctx, tx, tablePaddyIntakes)
		if err != nil {
			return err
		}
		batches, err := listDocs[domain.RiceBatch](ctx, tx, tableRiceProductions)
		if err != nil {
			return err
		}
		if err := ledger.CheckPaddy(ledger.PaddyAvailability(intakes, batches), batch.PaddyUsed); err != nil {
			return err
		}
		return insertDoc(ctx, tx, tableRiceProductions, batch.ID, batch)
	})
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

func (s *Store) UpdateRiceBatch(ctx context.Context, batch domain.RiceBatch) (*domain.RiceBatch, error) {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		current, err := getDoc[domain.RiceBatch](ctx, tx, tableRiceProductions, batch.ID, true)
		if err != nil {
			return err
		}
		productions, err := listDocs[domain.ByProductProduction](ctx, tx, tableByProductProductions)
		if err != nil {
			return err
		}
		hasProduction := slices.ContainsFunc(productions, func(p domain.ByProductProduction) bool { return p.RiceBatchID == batch.ID })
		if err := ledger.CheckBatchEdit(*current, batch, hasProduction); err != nil {
			return err
		}
		batch.CreatedAt = current.CreatedAt
		return updateDoc(ctx, tx, tableRiceProductions, batch.ID, batch)
	})
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

func (s *Store) ListByProductProductions(ctx context.Context) ([]domain.ByProductProduction, error) {
	return listDocs[domain.ByProductProduction](ctx, s.db, tableByProductProductions)
}

func (s *Store) CreateByProductProduction(ctx context.Context, production domain.ByProductProduction) (*domain.ByProductProduction, error) {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := getDoc[domain.RiceBatch](ctx, tx, tableRiceProductions, production.RiceBatchID, true); err != nil {
			return err
		}
		err := insertDoc(ctx, tx, tableByProductProductions, production.ID, production)
		if errors.Is(err, domain.ErrConflict) {
			return fmt.Errorf("%w: rice batch %s already has by-product production", domain.ErrConflict, production.RiceBatchID)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &production, nil
}

func (s *Store) ListByProductSales(ctx context.Context) ([]domain.ByProductSale, error) {
	return listDocs[domain.ByProductSale](ctx, s.db, tableByProductSales)
}

func (s *Store) GetByProductSale(ctx context.Context, id string) (*domain.ByProductSale, error) {
	return getDoc[domain.ByProductSale](ctx, s.db, tableByProductSales, id, false)
}

func (s *Store) CreateByProductSale(ctx context.Context, sale domain.ByProductSale) (*domain.ByProductSale, error) {
	if sale.ID == "" || len(sale.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	err := insertDoc(ctx, s.db, tableByProductSales, sale.ID, sale)
	if errors.Is(err, domain.ErrConflict) {
		return nil, fmt.Errorf("%w: invoice %s already exists", domain.ErrConflict, sale.InvoiceNo)
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (s *Store) ListByProductPayments(ctx context.Context, saleID string) ([]domain.ByProductPayment, error) {
	payments, err := listDocs[domain.ByProductPayment](ctx, s.db, tableByProductPayments)
	if err != nil || saleID == "" {
		return payments, err
	}
	return slices.DeleteFunc(payments, func(p domain.ByProductPayment) bool { return p.SaleID != saleID }), nil
}

// ApplyByProductPayment locks the sale row, applies the payment against its
// balance and records the payment in the same transaction.
func (s *Store) ApplyByProductPayment(ctx context.Context, payment domain.ByProductPayment) (*domain.ByProductSale, error) {
	var updated domain.ByProductSale
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		sale, err := getDoc[domain.ByProductSale](ctx, tx, tableByProductSales, payment.SaleID, true)
		if err != nil {
			return err
		}
		updated, err = ledger.ApplySalePayment(*sale, payment.Amount)
		if err != nil {
			return err
		}
		payment.InvoiceNo = updated.InvoiceNo
		if err := updateDoc(ctx, tx, tableByProductSales, updated.ID, updated); err != nil {
			return err
		}
		return insertDoc(ctx, tx, tableByProductPayments, payment.ID, payment)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Store) ListElectricityReadings(ctx context.Context) ([]domain.ElectricityReading, error) {
	return listDocs[domain.ElectricityReading](ctx, s.db, tableElectricityReadings)
}

func (s *Store) CreateElectricityReading(ctx context.Context, reading domain.ElectricityReading) (*domain.ElectricityReading, error) {
	if err := insertDoc(ctx, s.db, tableElectricityReadings, reading.ID, reading); err != nil {
		return nil, err
	}
	return &reading, nil
}

func (s *Store) GetLiveReading(ctx context.Context) (*domain.LiveReading, error) {
	return getDoc[domain.LiveReading](ctx, s.db, tableLiveReading, liveReadingID, false)
}

func (s *Store) SaveLiveReading(ctx context.Context, live domain.LiveReading) error {
	return upsertDoc(ctx, s.db, tableLiveReading, liveReadingID, live)
}

func (s *Store) ListHamaliWork(ctx context.Context) ([]domain.HamaliWorkEntry, error) {
	return listDocs[domain.HamaliWorkEntry](ctx, s.db, tableHamaliWork)
}

func (s *Store) GetHamaliWork(ctx context.Context, id string) (*domain.HamaliWorkEntry, error) {
	return getDoc[domain.HamaliWorkEntry](ctx, s.db, tableHamaliWork, id, false)
}

func (s *Store) CreateHamaliWork(ctx context.Context, entry domain.HamaliWorkEntry) (*domain.HamaliWorkEntry, error) {
	if err := insertDoc(ctx, s.db, tableHamaliWork, entry.ID, entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *Store) UpdateHamaliWork(ctx context.Context, entry domain.HamaliWorkEntry) (*domain.HamaliWorkEntry, error) {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		current, err := getDoc[domain.HamaliWorkEntry](ctx, tx, tableHamaliWork, entry.ID, true)
		if err != nil {
			return err
		}
		// Payment status belongs to CreateHamaliPayment.
		entry.PaymentStatus = current.PaymentStatus
		entry.CreatedAt = current.CreatedAt
		return updateDoc(ctx, tx, tableHamaliWork, entry.ID, entry)
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *Store) ListHamaliPayments(ctx context.Context) ([]domain.HamaliPayment, error) {
	return listDocs[domain.HamaliPayment](ctx, s.db, tableHamaliPayments)
}

// CreateHamaliPayment walks pending work in insertion order under a table lock
// and marks every entry the payment settles.
func (s *Store) CreateHamaliPayment(ctx context.Context, payment domain.HamaliPayment) (*domain.HamaliPayment, error) {
	if payment.Amount <= 0 {
		return nil, domain.ErrInvalidInput
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := lockTables(ctx, tx, tableHamaliWork); err != nil {
			return err
		}
		work, err := listDocs[domain.HamaliWorkEntry](ctx, tx, tableHamaliWork)
		if err != nil {
			return err
		}
		settled, remaining := ledger.AllocateHamaliPayment(work, payment.Amount)
		payment.SettledEntryIDs = settled
		payment.UnallocatedAmount = remaining

		paidAt := payment.CreatedAt
		for _, entry := range work {
			if !slices.Contains(settled, entry.ID) {
				continue
			}
			entry.PaymentStatus = domain.WorkPaid
			entry.UpdatedAt = &paidAt
			if err := updateDoc(ctx, tx, tableHamaliWork, entry.ID, entry); err != nil {
				return err
			}
		}
		return insertDoc(ctx, tx, tableHamaliPayments, payment.ID, payment)
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (s *Store) ListSupervisorSalaries(ctx context.Context) ([]domain.SupervisorSalary, error) {
	return listDocs[domain.SupervisorSalary](ctx, s.db, tableSupervisorSalaries)
}

func (s *Store) CreateSupervisorSalary(ctx context.Context, salary domain.SupervisorSalary) (*domain.SupervisorSalary, error) {
	if err := insertDoc(ctx, s.db, tableSupervisorSalaries, salary.ID, salary); err != nil {
		return nil, err
	}
	return &salary, nil
}

func (s *Store) AddSalaryPayment(ctx context.Context, id string, amount float64, paidAt time.Time) (*domain.SupervisorSalary, error) {
	var updated domain.SupervisorSalary
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		salary, err := getDoc[domain.SupervisorSalary](ctx, tx, tableSupervisorSalaries, id, true)
		if err != nil {
			return err
		}
		if amount <= 0 {
			return domain.ErrInvalidInput
		}
		updated = *salary
		updated.PaidAmount += amount
		updated.PaymentDate = &paidAt
		updated.PaymentStatus = ledger.SalaryStatus(updated.MonthlySalary, updated.PaidAmount)
		return updateDoc(ctx, tx, tableSupervisorSalaries, updated.ID, updated)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Store) ListReconciliationStates(ctx context.Context) ([]domain.ReconciliationState, error) {
	return listDocs[domain.ReconciliationState](ctx, s.db, tableReconciliations)
}

// reconciliationState returns the stored state for centerKey, or a fresh one
// when the center exists in the intake registry but was never reconciled.
func reconciliationState(ctx context.Context, tx *sql.Tx, centerKey string) (domain.ReconciliationState, domain.CenterTotal, error) {
	if err := lockTables(ctx, tx, tablePaddyIntakes, tableReconciliations); err != nil {
		return domain.ReconciliationState{}, domain.CenterTotal{}, err
	}
	intakes, err := listDocs[domain.PaddyIntake](ctx, tx, tablePaddyIntakes)
	if err != nil {
		return domain.ReconciliationState{}, domain.CenterTotal{}, err
	}
	total, ok := ledger.FindCenter(ledger.CenterTotals(intakes), centerKey)
	if !ok {
		return domain.ReconciliationState{}, domain.CenterTotal{}, domain.ErrNotFound
	}

	state, err := getDoc[domain.ReconciliationState](ctx, tx, tableReconciliations, centerKey, false)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ReconciliationState{CenterKey: total.CenterKey, Center: total.Center, District: total.District}, total, nil
	}
	if err != nil {
		return domain.ReconciliationState{}, domain.CenterTotal{}, err
	}
	return *state, total, nil
}

func (s *Store) Reconcile(ctx context.Context, centerKey string, amount float64, notes string, at time.Time) (*domain.ReconciliationState, float64, error) {
	var (
		result  domain.ReconciliationState
		applied float64
	)
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		state, total, err := reconciliationState(ctx, tx, centerKey)
		if err != nil {
			return err
		}
		next, actual, err := ledger.Reconcile(state, total.TotalQuintals, amount)
		if err != nil {
			return err
		}
		if actual == 0 {
			result = state
			return nil
		}

		next.UpdatedAt = at
		if notes != "" {
			next.Notes = notes
		}
		result, applied = next, actual
		return upsertDoc(ctx, tx, tableReconciliations, next.CenterKey, next)
	})
	if err != nil {
		return nil, 0, err
	}
	return &result, applied, nil
}

func (s *Store) AttachReconciliationDocument(ctx context.Context, centerKey string, documentRef string, notes string, at time.Time) (*domain.ReconciliationState, error) {
	var result domain.ReconciliationState
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		state, _, err := reconciliationState(ctx, tx, centerKey)
		if err != nil {
			return err
		}
		state.DocumentRef = documentRef
		if notes != "" {
			state.Notes = notes
		}
		state.UpdatedAt = at
		result = state
		return upsertDoc(ctx, tx, tableReconciliations, state.CenterKey, state)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *Store) ListGunnyDispatches(ctx context.Context) ([]domain.GunnyDispatch, error) {
	return listDocs[domain.GunnyDispatch](ctx, s.db, tableGunnyDispatches)
}

func (s *Store) GetGunnyDispatch(ctx context.Context, id string) (*domain.GunnyDispatch, error) {
	return getDoc[domain.GunnyDispatch](ctx, s.db, tableGunnyDispatches, id, false)
}

func (s *Store) CreateGunnyDispatch(ctx context.Context, dispatch domain.GunnyDispatch) (*domain.GunnyDispatch, error) {
	if err := insertDoc(ctx, s.db, tableGunnyDispatches, dispatch.ID, dispatch); err != nil {
		return nil, err
	}
	return &dispatch, nil
}

func (s *Store) UpdateGunnyDispatch(ctx context.Context, id string, mutate func(*domain.GunnyDispatch) error) (*domain.GunnyDispatch, error) {
	var updated domain.GunnyDispatch
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		current, err := getDoc[domain.GunnyDispatch](ctx, tx, tableGunnyDispatches, id, true)
		if err != nil {
			return err
		}
		updated = *current
		if err := mutate(&updated); err != nil {
			return err
		}
		updated.ID = id
		return updateDoc(ctx, tx, tableGunnyDispatches, id, updated)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Store) ListConsignments(ctx context.Context) ([]domain.Consignment, error) {
	return listDocs[domain.Consignment](ctx, s.db, tableConsignments)
}

func (s *Store) CreateConsignment(ctx context.Context, consignment domain.Consignment) (*domain.Consignment, error) {
	if err := insertDoc(ctx, s.db, tableConsignments, consignment.ID, consignment); err != nil {
		return nil, err
	}
	return &consignment, nil
}

func (s *Store) ListPackagingMovements(ctx context.Context) ([]domain.PackagingMovement, error) {
	return listDocs[domain.PackagingMovement](ctx, s.db, tablePackaging)
}

func (s *Store) CreatePackagingMovement(ctx context.Context, movement domain.PackagingMovement) (*domain.PackagingMovement, error) {
	if movement.Quantity == 0 {
		return nil, domain.ErrInvalidInput
	}
	if err := insertDoc(ctx, s.db, tablePackaging, movement.ID, movement); err != nil {
		return nil, err
	}
	return &movement, nil
}

// inTx runs fn in a serializable transaction. Domain errors from fn pass
// through unchanged; driver failures surface as ErrPersistence.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return persistenceError("begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return persistenceError("commit", err)
	}
	return nil
}

func lockTables(ctx context.Context, tx *sql.Tx, tables ...string) error {
	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, `LOCK TABLE `+table+` IN SHARE ROW EXCLUSIVE MODE`); err != nil {
			return persistenceError("lock "+table, err)
		}
	}
	return nil
}

func listDocs[T any](ctx context.Context, q queryer, table string) ([]T, error) {
	rows, err := q.QueryContext(ctx, `SELECT doc FROM `+table+` ORDER BY seq`)
	if err != nil {
		return nil, persistenceError("list "+table, err)
	}
	defer rows.Close()

	out := make([]T, 0, 64)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, persistenceError("scan "+table, err)
		}
		var doc T
		if err := json.Unmarshal(payload, &doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", table, err)
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError("list "+table, err)
	}
	return out, nil
}

func getDoc[T any](ctx context.Context, q queryer, table string, id string, forUpdate bool) (*T, error) {
	query := `SELECT doc FROM ` + table + ` WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var payload []byte
	if err := q.QueryRowContext(ctx, query, id).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, persistenceError("get "+table, err)
	}
	var doc T
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", table, err)
	}
	return &doc, nil
}

func insertDoc(ctx context.Context, q queryer, table string, id string, doc any) error {
	if id == "" {
		return domain.ErrInvalidInput
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `INSERT INTO `+table+` (id, doc, updated_at) VALUES ($1, $2::jsonb, now())`, id, string(payload))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s %s already exists", domain.ErrConflict, table, id)
		}
		return persistenceError("insert "+table, err)
	}
	return nil
}

func updateDoc(ctx context.Context, q queryer, table string, id string, doc any) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	res, err := q.ExecContext(ctx, `UPDATE `+table+` SET doc = $2::jsonb, updated_at = now() WHERE id = $1`, id, string(payload))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s %s", domain.ErrConflict, table, id)
		}
		return persistenceError("update "+table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return persistenceError("update "+table, err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func upsertDoc(ctx context.Context, q queryer, table string, id string, doc any) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO `+table+` (id, doc, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (id)
		DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()
	`, id, string(payload))
	if err != nil {
		return persistenceError("upsert "+table, err)
	}
	return nil
}

func persistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrPersistence, op, err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

package store

import (
	"context"
	"time"

	"ricemill/backend/internal/domain"
)

// Repository is the mill's persistent state. Implementations enforce the
// invariants that need a consistent view of several collections at once:
// paddy availability on batch creation, one by-product record per batch,
// sale balance on payment, hamali allocation and reconciliation clamping.
type Repository interface {
	ListPaddyIntakes(ctx context.Context) ([]domain.PaddyIntake, error)
	CreatePaddyIntake(ctx context.Context, intake domain.PaddyIntake) (*domain.PaddyIntake, error)

	ListRiceBatches(ctx context.Context) ([]domain.RiceBatch, error)
	GetRiceBatch(ctx context.Context, id string) (*domain.RiceBatch, error)
	CreateRiceBatch(ctx context.Context, batch domain.RiceBatch) (*domain.RiceBatch, error)
	UpdateRiceBatch(ctx context.Context, batch domain.RiceBatch) (*domain.RiceBatch, error)

	ListByProductProductions(ctx context.Context) ([]domain.ByProductProduction, error)
	CreateByProductProduction(ctx context.Context, production domain.ByProductProduction) (*domain.ByProductProduction, error)
	ListByProductSales(ctx context.Context) ([]domain.ByProductSale, error)
	GetByProductSale(ctx context.Context, id string) (*domain.ByProductSale, error)
	CreateByProductSale(ctx context.Context, sale domain.ByProductSale) (*domain.ByProductSale, error)
	ListByProductPayments(ctx context.Context, saleID string) ([]domain.ByProductPayment, error)
	ApplyByProductPayment(ctx context.Context, payment domain.ByProductPayment) (*domain.ByProductSale, error)

	ListElectricityReadings(ctx context.Context) ([]domain.ElectricityReading, error)
	CreateElectricityReading(ctx context.Context, reading domain.ElectricityReading) (*domain.ElectricityReading, error)
	GetLiveReading(ctx context.Context) (*domain.LiveReading, error)
	SaveLiveReading(ctx context.Context, live domain.LiveReading) error

	ListHamaliWork(ctx context.Context) ([]domain.HamaliWorkEntry, error)
	GetHamaliWork(ctx context.Context, id string) (*domain.HamaliWorkEntry, error)
	CreateHamaliWork(ctx context.Context, entry domain.HamaliWorkEntry) (*domain.HamaliWorkEntry, error)
	UpdateHamaliWork(ctx context.Context, entry domain.HamaliWorkEntry) (*domain.HamaliWorkEntry, error)
	ListHamaliPayments(ctx context.Context) ([]domain.HamaliPayment, error)
	CreateHamaliPayment(ctx context.Context, payment domain.HamaliPayment) (*domain.HamaliPayment, error)

	ListSupervisorSalaries(ctx context.Context) ([]domain.SupervisorSalary, error)
	CreateSupervisorSalary(ctx context.Context, salary domain.SupervisorSalary) (*domain.SupervisorSalary, error)
	AddSalaryPayment(ctx context.Context, id string, amount float64, paidAt time.Time) (*domain.SupervisorSalary, error)

	ListReconciliationStates(ctx context.Context) ([]domain.ReconciliationState, error)
	Reconcile(ctx context.Context, centerKey string, amount float64, notes string, at time.Time) (*domain.ReconciliationState, float64, error)
	AttachReconciliationDocument(ctx context.Context, centerKey string, documentRef string, notes string, at time.Time) (*domain.ReconciliationState, error)

	ListGunnyDispatches(ctx context.Context) ([]domain.GunnyDispatch, error)
	GetGunnyDispatch(ctx context.Context, id string) (*domain.GunnyDispatch, error)
	CreateGunnyDispatch(ctx context.Context, dispatch domain.GunnyDispatch) (*domain.GunnyDispatch, error)
	UpdateGunnyDispatch(ctx context.Context, id string, mutate func(*domain.GunnyDispatch) error) (*domain.GunnyDispatch, error)

	ListConsignments(ctx context.Context) ([]domain.Consignment, error)
	CreateConsignment(ctx context.Context, consignment domain.Consignment) (*domain.Consignment, error)

	ListPackagingMovements(ctx context.Context) ([]domain.PackagingMovement, error)
	CreatePackagingMovement(ctx context.Context, movement domain.PackagingMovement) (*domain.PackagingMovement, error)
}

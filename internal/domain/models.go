package domain

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

const (
	QuintalsPerACK      = 287.1
	BoiledOutturnRate   = 0.68
	RawOutturnRate      = 0.67
	BlendedRiceYield    = 0.675
	GunnyBagsPerACK     = 580
	FRKKgPerACK         = 290
	StickersPerACK      = 580
	DefaultIntakePageSz = 25
	MaxIntakePageSz     = 200
)

type UnloadingPoint string

const (
	UnloadingOldGodown UnloadingPoint = "OLD_GODOWN"
	UnloadingNewGodown UnloadingPoint = "NEW_GODOWN"
	UnloadingPlantShed UnloadingPoint = "PLANT_SHED"
	UnloadingBatti     UnloadingPoint = "BATTI"
	UnloadingOther     UnloadingPoint = "OTHER"
)

type PaddyIntake struct {
	ID             string         `json:"id"`
	SerialNo       int            `json:"serial_no"`
	Date           time.Time      `json:"date"`
	VehicleNo      string         `json:"vehicle_no"`
	SlipNo         string         `json:"slip_no"`
	ChitNo         string         `json:"chit_no"`
	Center         string         `json:"center"`
	District       string         `json:"district"`
	NewBags        int            `json:"new_bags"`
	OldBags        int            `json:"old_bags"`
	TotalBags      int            `json:"total_bags"`
	Quintals       float64        `json:"quintals"`
	MoisturePct    float64        `json:"moisture_pct"`
	UnloadingPoint UnloadingPoint `json:"unloading_point"`
	CreatedAt      time.Time      `json:"created_at"`
}

type PaddyIntakeCreateRequest struct {
	Date           string  `json:"date" validate:"required,datetime=2006-01-02"`
	VehicleNo      string  `json:"vehicle_no" validate:"required"`
	SlipNo         string  `json:"slip_no"`
	ChitNo         string  `json:"chit_no"`
	Center         string  `json:"center" validate:"required"`
	District       string  `json:"district" validate:"required"`
	NewBags        int     `json:"new_bags" validate:"gte=0"`
	OldBags        int     `json:"old_bags" validate:"gte=0"`
	Quintals       float64 `json:"quintals" validate:"gt=0"`
	MoisturePct    float64 `json:"moisture_pct" validate:"gte=0,lte=100"`
	UnloadingPoint string  `json:"unloading_point"`
}

type PaddyIntakeQuery struct {
	Search         string
	Center         string
	District       string
	UnloadingPoint string
	From           string
	To             string
	Page           int
	PageSize       int
}

type PaddyIntakePage struct {
	Items         []PaddyIntake `json:"items"`
	Total         int           `json:"total"`
	Page          int           `json:"page"`
	PageSize      int           `json:"page_size"`
	TotalQuintals float64       `json:"total_quintals"`
}

type RiceType string

const (
	RiceBoiled RiceType = "boiled"
	RiceRaw    RiceType = "raw"
)

type RiceBatch struct {
	ID             string     `json:"id"`
	AckLabel       string     `json:"ack_label"`
	AckCount       int        `json:"ack_count"`
	RiceType       RiceType   `json:"rice_type"`
	PaddyUsed      float64    `json:"paddy_used"`
	RiceProduced   float64    `json:"rice_produced"`
	ProductionDate time.Time  `json:"production_date"`
	MillName       string     `json:"mill_name"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

type RiceBatchRequest struct {
	AckCount       int    `json:"ack_count" validate:"gte=1"`
	RiceType       string `json:"rice_type" validate:"required,oneof=boiled raw"`
	ProductionDate string `json:"production_date" validate:"omitempty,datetime=2006-01-02"`
	Notes          string `json:"notes"`
}

type PaddyAvailability struct {
	TotalIntake float64 `json:"total_intake"`
	TotalUsed   float64 `json:"total_used"`
	Available   float64 `json:"available"`
}

type ByProductCategory string

const (
	ByProductHusk          ByProductCategory = "husk"
	ByProductBranBoiled    ByProductCategory = "bran_boiled"
	ByProductBranRaw       ByProductCategory = "bran_raw"
	ByProductBrokenRice    ByProductCategory = "broken_rice"
	ByProductParam         ByProductCategory = "param"
	ByProductRejectionRice ByProductCategory = "rejection_rice"
	ByProductResortedRice  ByProductCategory = "resorted_rice"
	ByProductAsh           ByProductCategory = "ash"
)

// ByProductCategories is the display order used by stock tables and exports.
var ByProductCategories = []ByProductCategory{
	ByProductHusk,
	ByProductBranBoiled,
	ByProductBranRaw,
	ByProductBrokenRice,
	ByProductParam,
	ByProductRejectionRice,
	ByProductResortedRice,
	ByProductAsh,
}

func IsByProductCategory(value string) bool {
	for _, category := range ByProductCategories {
		if string(category) == value {
			return true
		}
	}
	return false
}

type ByProductProduction struct {
	ID             string                        `json:"id"`
	RiceBatchID    string                        `json:"rice_batch_id"`
	AckLabel       string                        `json:"ack_label"`
	PaddyUsed      float64                       `json:"paddy_used"`
	Quantities     map[ByProductCategory]float64 `json:"quantities"`
	Yields         map[ByProductCategory]float64 `json:"yields"`
	ProductionDate time.Time                     `json:"production_date"`
	Notes          string                        `json:"notes,omitempty"`
	CreatedAt      time.Time                     `json:"created_at"`
}

type ByProductProductionRequest struct {
	RiceBatchID    string             `json:"rice_batch_id" validate:"required"`
	Quantities     map[string]float64 `json:"quantities" validate:"required,min=1,dive,gte=0"`
	ProductionDate string             `json:"production_date" validate:"omitempty,datetime=2006-01-02"`
	Notes          string             `json:"notes"`
}

type ByProductStock struct {
	Category      ByProductCategory `json:"category"`
	TotalProduced float64           `json:"total_produced"`
	TotalSold     float64           `json:"total_sold"`
	CurrentStock  float64           `json:"current_stock"`
	TotalRevenue  float64           `json:"total_revenue"`
	AverageRate   float64           `json:"average_rate"`
}

type SaleLineItem struct {
	Category  ByProductCategory `json:"category"`
	Quantity  float64           `json:"quantity"`
	Rate      float64           `json:"rate"`
	GSTRate   float64           `json:"gst_rate"`
	Amount    float64           `json:"amount"`
	GSTAmount float64           `json:"gst_amount"`
	Total     float64           `json:"total"`
}

type SaleLineItemRequest struct {
	Category string  `json:"category" validate:"required"`
	Quantity float64 `json:"quantity" validate:"gt=0"`
	Rate     float64 `json:"rate" validate:"gte=0"`
	GSTRate  float64 `json:"gst_rate" validate:"gte=0,lte=100"`
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

type ByProductSale struct {
	ID               string         `json:"id"`
	InvoiceNo        string         `json:"invoice_no"`
	SaleDate         time.Time      `json:"sale_date"`
	PartyName        string         `json:"party_name"`
	PartyPhone       string         `json:"party_phone,omitempty"`
	PartyGSTIN       string         `json:"party_gstin,omitempty"`
	PartyAddress     string         `json:"party_address,omitempty"`
	PaymentTermsDays int            `json:"payment_terms_days"`
	DueDate          time.Time      `json:"due_date"`
	Items            []SaleLineItem `json:"items"`
	Subtotal         float64        `json:"subtotal"`
	GSTAmount        float64        `json:"gst_amount"`
	TotalAmount      float64        `json:"total_amount"`
	PaidAmount       float64        `json:"paid_amount"`
	BalanceAmount    float64        `json:"balance_amount"`
	PaymentStatus    PaymentStatus  `json:"payment_status"`
	Notes            string         `json:"notes,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}

type ByProductSaleRequest struct {
	InvoiceNo        string                `json:"invoice_no"`
	SaleDate         string                `json:"sale_date" validate:"required,datetime=2006-01-02"`
	PartyName        string                `json:"party_name" validate:"required"`
	PartyPhone       string                `json:"party_phone"`
	PartyGSTIN       string                `json:"party_gstin"`
	PartyAddress     string                `json:"party_address"`
	PaymentTermsDays int                   `json:"payment_terms_days" validate:"gte=0,lte=365"`
	Items            []SaleLineItemRequest `json:"items" validate:"required,min=1,dive"`
	Notes            string                `json:"notes"`
}

const (
	MethodCash         = "cash"
	MethodCheque       = "cheque"
	MethodBankTransfer = "bank-transfer"
	MethodUPI          = "upi"
	MethodOther        = "other"
)

type ByProductPayment struct {
	ID          string    `json:"id"`
	SaleID      string    `json:"sale_id"`
	InvoiceNo   string    `json:"invoice_no"`
	Amount      float64   `json:"amount"`
	PaymentDate time.Time `json:"payment_date"`
	Method      string    `json:"method"`
	ReferenceNo string    `json:"reference_no,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type ByProductPaymentRequest struct {
	Amount      float64 `json:"amount" validate:"gt=0"`
	PaymentDate string  `json:"payment_date" validate:"omitempty,datetime=2006-01-02"`
	Method      string  `json:"method" validate:"required,oneof=cash cheque bank-transfer upi other"`
	ReferenceNo string  `json:"reference_no"`
	Notes       string  `json:"notes"`
}

type ByProductPaymentResponse struct {
	Payment ByProductPayment `json:"payment"`
	Sale    ByProductSale    `json:"sale"`
}

type ElectricityReading struct {
	ID          string    `json:"id"`
	ReadingDate time.Time `json:"reading_date"`
	KWh         float64   `json:"kwh"`
	KVAh        float64   `json:"kvah"`
	RMD         float64   `json:"rmd"`
	BillAmount  float64   `json:"bill_amount"`
	BillPeriod  string    `json:"bill_period"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type ElectricityReadingRequest struct {
	ReadingDate string  `json:"reading_date" validate:"required,datetime=2006-01-02"`
	KWh         float64 `json:"kwh" validate:"gte=0"`
	KVAh        float64 `json:"kvah" validate:"gte=0"`
	RMD         float64 `json:"rmd" validate:"gte=0"`
	BillAmount  float64 `json:"bill_amount" validate:"gte=0"`
	BillPeriod  string  `json:"bill_period" validate:"required"`
	Notes       string  `json:"notes"`
}

// ElectricityReadingView adds the render-time metrics; none of them are stored.
type ElectricityReadingView struct {
	ElectricityReading
	PowerFactor    *float64 `json:"power_factor,omitempty"`
	CostPerUnit    *float64 `json:"cost_per_unit,omitempty"`
	LowPowerFactor bool     `json:"low_power_factor"`
}

type LiveReading struct {
	KWh       *float64  `json:"kwh,omitempty"`
	KVAh      *float64  `json:"kvah,omitempty"`
	RMD       *float64  `json:"rmd,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

type LiveReadingRequest struct {
	KWh  *float64 `json:"kwh" validate:"omitempty,gte=0"`
	KVAh *float64 `json:"kvah" validate:"omitempty,gte=0"`
	RMD  *float64 `json:"rmd" validate:"omitempty,gte=0"`
}

type Tariff struct {
	FixedCharge       float64 `json:"fixed_charge"`
	EnergyRate        float64 `json:"energy_rate"`
	DemandRate        float64 `json:"demand_rate"`
	FuelSurchargeRate float64 `json:"fuel_surcharge_rate"`
	DutyRate          float64 `json:"duty_rate"`
	AdditionalCharge  float64 `json:"additional_charge"`
	MinPowerFactor    float64 `json:"min_power_factor"`
}

func DefaultTariff() Tariff {
	return Tariff{
		FixedCharge:       1500,
		EnergyRate:        6.5,
		DemandRate:        400,
		FuelSurchargeRate: 0.5,
		DutyRate:          0.16,
		AdditionalCharge:  200,
		MinPowerFactor:    0.9,
	}
}

type BillEstimate struct {
	Available         bool     `json:"available"`
	DemandCharge      float64  `json:"demand_charge"`
	EnergyCharge      float64  `json:"energy_charge"`
	FixedCharge       float64  `json:"fixed_charge"`
	FuelSurcharge     float64  `json:"fuel_surcharge"`
	ElectricityDuty   float64  `json:"electricity_duty"`
	AdditionalCharges float64  `json:"additional_charges"`
	Total             float64  `json:"total"`
	PowerFactor       *float64 `json:"power_factor,omitempty"`
}

type BillImportResult struct {
	Live      LiveReadingRequest        `json:"live"`
	Draft     ElectricityReadingRequest `json:"draft"`
	Matched   []string                  `json:"matched"`
	Applied   bool                      `json:"applied"`
	LiveState *LiveReading              `json:"live_state,omitempty"`
}

const (
	UnitBags  = "bags"
	UnitQtl   = "qtl"
	UnitTon   = "ton"
	UnitAck   = "ack"
	UnitBale  = "bale"
	UnitHours = "hours"
	UnitDays  = "days"
)

type HamaliRate struct {
	WorkType string  `json:"work_type"`
	Rate     float64 `json:"rate"`
	Unit     string  `json:"unit"`
}

type WorkStatus string

const (
	WorkPending WorkStatus = "pending"
	WorkPaid    WorkStatus = "paid"
)

type HamaliWorkEntry struct {
	ID            string     `json:"id"`
	WorkType      string     `json:"work_type"`
	Description   string     `json:"description,omitempty"`
	Quantity      float64    `json:"quantity"`
	Unit          string     `json:"unit"`
	Rate          float64    `json:"rate"`
	TotalAmount   float64    `json:"total_amount"`
	WorkDate      time.Time  `json:"work_date"`
	PaymentStatus WorkStatus `json:"payment_status"`
	Notes         string     `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

type HamaliWorkRequest struct {
	WorkType    string  `json:"work_type" validate:"required"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity" validate:"gt=0"`
	Unit        string  `json:"unit" validate:"omitempty,oneof=bags qtl ton ack bale hours days"`
	Rate        float64 `json:"rate" validate:"gte=0"`
	WorkDate    string  `json:"work_date" validate:"required,datetime=2006-01-02"`
	Notes       string  `json:"notes"`
}

type HamaliPayment struct {
	ID                string    `json:"id"`
	Amount            float64   `json:"amount"`
	PaymentDate       time.Time `json:"payment_date"`
	Method            string    `json:"method"`
	WorkPeriod        string    `json:"work_period,omitempty"`
	Notes             string    `json:"notes,omitempty"`
	SettledEntryIDs   []string  `json:"settled_entry_ids"`
	UnallocatedAmount float64   `json:"unallocated_amount"`
	CreatedAt         time.Time `json:"created_at"`
}

type HamaliPaymentRequest struct {
	Amount      float64 `json:"amount" validate:"gt=0"`
	PaymentDate string  `json:"payment_date" validate:"required,datetime=2006-01-02"`
	Method      string  `json:"method" validate:"required,oneof=cash bank-transfer upi"`
	WorkPeriod  string  `json:"work_period"`
	Notes       string  `json:"notes"`
}

type HamaliSummary struct {
	TotalWorkAmount    float64 `json:"total_work_amount"`
	PaidWorkAmount     float64 `json:"paid_work_amount"`
	PendingWorkAmount  float64 `json:"pending_work_amount"`
	PendingEntries     int     `json:"pending_entries"`
	TotalPaymentAmount float64 `json:"total_payment_amount"`
}

type SupervisorSalary struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Designation   string        `json:"designation"`
	Month         string        `json:"month"`
	MonthlySalary float64       `json:"monthly_salary"`
	PaidAmount    float64       `json:"paid_amount"`
	PaymentDate   *time.Time    `json:"payment_date,omitempty"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Notes         string        `json:"notes,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

type SupervisorSalaryRequest struct {
	Name          string  `json:"name" validate:"required"`
	Designation   string  `json:"designation" validate:"required"`
	Month         string  `json:"month" validate:"required,datetime=2006-01"`
	MonthlySalary float64 `json:"monthly_salary" validate:"gt=0"`
	PaidAmount    float64 `json:"paid_amount" validate:"gte=0"`
	PaymentDate   string  `json:"payment_date" validate:"omitempty,datetime=2006-01-02"`
	Notes         string  `json:"notes"`
}

type SalaryPaymentRequest struct {
	Amount      float64 `json:"amount" validate:"gt=0"`
	PaymentDate string  `json:"payment_date" validate:"omitempty,datetime=2006-01-02"`
}

type CenterTotal struct {
	CenterKey     string  `json:"center_key"`
	Center        string  `json:"center"`
	District      string  `json:"district"`
	Trucks        int     `json:"trucks"`
	TotalBags     int     `json:"total_bags"`
	TotalQuintals float64 `json:"total_quintals"`
}

type ReconciliationStatus string

const (
	ReconPending    ReconciliationStatus = "pending"
	ReconInProgress ReconciliationStatus = "in-progress"
	ReconCompleted  ReconciliationStatus = "completed"
)

// ReconciliationState is the sparse stored part of a center's reconciliation;
// totals and balance are always derived from the intake registry.
type ReconciliationState struct {
	CenterKey          string    `json:"center_key"`
	Center             string    `json:"center"`
	District           string    `json:"district"`
	ReconciledQuintals float64   `json:"reconciled_quintals"`
	DocumentRef        string    `json:"document_ref,omitempty"`
	Notes              string    `json:"notes,omitempty"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type Reconciliation struct {
	CenterKey          string               `json:"center_key"`
	Center             string               `json:"center"`
	District           string               `json:"district"`
	TotalQuintals      float64              `json:"total_quintals"`
	ReconciledQuintals float64              `json:"reconciled_quintals"`
	BalanceQuintals    float64              `json:"balance_quintals"`
	Status             ReconciliationStatus `json:"status"`
	DocumentRef        string               `json:"document_ref,omitempty"`
	Notes              string               `json:"notes,omitempty"`
	UpdatedAt          *time.Time           `json:"updated_at,omitempty"`
}

type ReconcileRequest struct {
	Amount float64 `json:"amount"`
	Notes  string  `json:"notes"`
}

type ReconcileResponse struct {
	Reconciliation Reconciliation `json:"reconciliation"`
	Applied        float64        `json:"applied"`
}

type GunnyDispatchStatus string

const (
	GunnyDispatched   GunnyDispatchStatus = "dispatched"
	GunnyAcknowledged GunnyDispatchStatus = "acknowledged"
)

type GunnyDispatch struct {
	ID           string              `json:"id"`
	Center       string              `json:"center"`
	District     string              `json:"district"`
	Quantity     int                 `json:"quantity"`
	DispatchDate time.Time           `json:"dispatch_date"`
	Acknowledged bool                `json:"acknowledged"`
	AckDate      *time.Time          `json:"ack_date,omitempty"`
	AckPhotoRef  string              `json:"ack_photo_ref,omitempty"`
	Status       GunnyDispatchStatus `json:"status"`
	Comments     string              `json:"comments,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    *time.Time          `json:"updated_at,omitempty"`
}

type GunnyDispatchRequest struct {
	Center       string `json:"center" validate:"required"`
	District     string `json:"district" validate:"required"`
	Quantity     int    `json:"quantity" validate:"gt=0"`
	DispatchDate string `json:"dispatch_date" validate:"required,datetime=2006-01-02"`
	Comments     string `json:"comments"`
}

type GunnyAckRequest struct {
	Acknowledged bool   `json:"acknowledged"`
	AckDate      string `json:"ack_date" validate:"omitempty,datetime=2006-01-02"`
}

type Consignment struct {
	ID           string    `json:"id"`
	AckCount     int       `json:"ack_count"`
	RiceType     RiceType  `json:"rice_type"`
	DispatchDate time.Time `json:"dispatch_date"`
	VehicleNo    string    `json:"vehicle_no"`
	Depot        string    `json:"depot"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type ConsignmentRequest struct {
	AckCount     int    `json:"ack_count" validate:"gte=1"`
	RiceType     string `json:"rice_type" validate:"required,oneof=boiled raw"`
	DispatchDate string `json:"dispatch_date" validate:"required,datetime=2006-01-02"`
	VehicleNo    string `json:"vehicle_no" validate:"required"`
	Depot        string `json:"depot" validate:"required"`
	Notes        string `json:"notes"`
}

type PackagingItem string

const (
	PackagingGunnyBags PackagingItem = "gunny_bags"
	PackagingFRKKg     PackagingItem = "frk_kg"
	PackagingStickers  PackagingItem = "stickers"
	PackagingRexin     PackagingItem = "rexin"
)

var PackagingItems = []PackagingItem{PackagingGunnyBags, PackagingFRKKg, PackagingStickers, PackagingRexin}

type PackagingMovement struct {
	ID        string        `json:"id"`
	Item      PackagingItem `json:"item"`
	Quantity  float64       `json:"quantity"`
	Date      time.Time     `json:"date"`
	Reference string        `json:"reference,omitempty"`
	Notes     string        `json:"notes,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

type PackagingMovementRequest struct {
	Item      string  `json:"item" validate:"required,oneof=gunny_bags frk_kg stickers rexin"`
	Quantity  float64 `json:"quantity" validate:"ne=0"`
	Date      string  `json:"date" validate:"required,datetime=2006-01-02"`
	Reference string  `json:"reference"`
	Notes     string  `json:"notes"`
}

type PackagingLevel struct {
	Item     PackagingItem `json:"item"`
	Quantity float64       `json:"quantity"`
}

type Capacity struct {
	Constraint   string  `json:"constraint"`
	Available    float64 `json:"available"`
	PerACK       float64 `json:"per_ack"`
	AcksPossible float64 `json:"acks_possible"`
}

type BottleneckAnalysis struct {
	Capacities   []Capacity `json:"capacities"`
	Binding      string     `json:"binding"`
	AcksPossible float64    `json:"acks_possible"`
}

type AckDelivery struct {
	Target          int     `json:"target"`
	Produced        int     `json:"produced"`
	ProducedBoiled  int     `json:"produced_boiled"`
	ProducedRaw     int     `json:"produced_raw"`
	Delivered       int     `json:"delivered"`
	Remaining       int     `json:"remaining"`
	ProgressPercent float64 `json:"progress_percent"`
}

type OperationsSummary struct {
	GeneratedAt          string             `json:"generated_at"`
	IntakeTrucks         int                `json:"intake_trucks"`
	IntakeBags           int                `json:"intake_bags"`
	Paddy                PaddyAvailability  `json:"paddy"`
	RiceProduced         float64            `json:"rice_produced"`
	Acks                 AckDelivery        `json:"acks"`
	ByProductStock       []ByProductStock   `json:"byproduct_stock"`
	ReceivablesTotal     float64            `json:"receivables_total"`
	ReceivablesOverdue   float64            `json:"receivables_overdue"`
	HamaliPending        float64            `json:"hamali_pending"`
	ReconciledQuintals   float64            `json:"reconciled_quintals"`
	UnreconciledQuintals float64            `json:"unreconciled_quintals"`
	CentersCompleted     int                `json:"centers_completed"`
	CentersTotal         int                `json:"centers_total"`
	GunnyDispatched      int                `json:"gunny_dispatched"`
	GunnyAcknowledged    int                `json:"gunny_acknowledged"`
	Packaging            []PackagingLevel   `json:"packaging"`
	Bottleneck           BottleneckAnalysis `json:"bottleneck"`
}

type OverdueSale struct {
	SaleID      string  `json:"sale_id"`
	InvoiceNo   string  `json:"invoice_no"`
	PartyName   string  `json:"party_name"`
	Balance     float64 `json:"balance"`
	DaysOverdue int     `json:"days_overdue"`
}

type DailyDigest struct {
	Date              string        `json:"date"`
	OverdueSales      []OverdueSale `json:"overdue_sales"`
	OverdueTotal      float64       `json:"overdue_total"`
	HamaliPending     float64       `json:"hamali_pending"`
	OpenCenters       int           `json:"open_centers"`
	UnreconciledTotal float64       `json:"unreconciled_total"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
	Role     string
}

// CenterKey builds the composite center+district id used by reconciliation.
func CenterKey(center string, district string) string {
	return slug(center) + "--" + slug(district)
}

func slug(value string) string {
	fields := strings.FieldsFunc(strings.ToLower(strings.TrimSpace(value)), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	return strings.Join(fields, "-")
}

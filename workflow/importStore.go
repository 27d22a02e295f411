package workflow

import (
	"context"
	"time"

	"github.com/collisionworks/bodyshop_backend/models"
)

// ImportStore is the storage surface the importer materializes through.
// The production implementation delegates to the models package; tests swap
// in an in-memory store so pipeline semantics can be exercised without a
// database.
type ImportStore interface {
	CreateImport(ctx context.Context, entry *models.BmsImport) error
	FinalizeImport(ctx context.Context, entry *models.BmsImport, status models.BmsImportStatus, errs []string, warnings []string, duration time.Duration) error

	CreateDocument(ctx context.Context, doc *models.BmsDocument) error

	FindCustomerByName(ctx context.Context, shopId string, displayName string) (*models.Customer, error)
	CreateCustomer(ctx context.Context, customer *models.Customer) error

	FindVehicleByVin(ctx context.Context, vin string) (*models.Vehicle, error)
	CreateVehicle(ctx context.Context, vehicle *models.Vehicle) error

	FindInsurerByName(ctx context.Context, shopId string, name string) (*models.Insurer, error)

	FindClaimByNumber(ctx context.Context, shopId string, claimNumber string) (*models.Claim, error)
	CreateClaim(ctx context.Context, claim *models.Claim) error

	NextOrderNumber(ctx context.Context, shopId string) (string, error)
	CreateRepairOrder(ctx context.Context, order *models.RepairOrder) error
	CreatePartLine(ctx context.Context, part *models.RepairOrderPart) error
}

type dbImportStore struct{}

// NewImportStore returns the database-backed store.
func NewImportStore() ImportStore {
	return dbImportStore{}
}

func (dbImportStore) CreateImport(ctx context.Context, entry *models.BmsImport) error {
	return models.CreateBmsImport(ctx, entry)
}

func (dbImportStore) FinalizeImport(ctx context.Context, entry *models.BmsImport, status models.BmsImportStatus, errs []string, warnings []string, duration time.Duration) error {
	return entry.Finalize(ctx, status, errs, warnings, duration)
}

func (dbImportStore) CreateDocument(ctx context.Context, doc *models.BmsDocument) error {
	return models.CreateBmsDocument(ctx, doc)
}

func (dbImportStore) FindCustomerByName(ctx context.Context, shopId string, displayName string) (*models.Customer, error) {
	return models.FindCustomerByName(ctx, shopId, displayName)
}

func (dbImportStore) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	return models.CreateCustomer(ctx, customer)
}

func (dbImportStore) FindVehicleByVin(ctx context.Context, vin string) (*models.Vehicle, error) {
	return models.FindVehicleByVin(ctx, vin)
}

func (dbImportStore) CreateVehicle(ctx context.Context, vehicle *models.Vehicle) error {
	return models.CreateVehicle(ctx, vehicle)
}

func (dbImportStore) FindInsurerByName(ctx context.Context, shopId string, name string) (*models.Insurer, error) {
	return models.FindInsurerByName(ctx, shopId, name)
}

func (dbImportStore) FindClaimByNumber(ctx context.Context, shopId string, claimNumber string) (*models.Claim, error) {
	return models.FindClaimByNumber(ctx, shopId, claimNumber)
}

func (dbImportStore) CreateClaim(ctx context.Context, claim *models.Claim) error {
	return models.CreateClaim(ctx, claim)
}

func (dbImportStore) NextOrderNumber(ctx context.Context, shopId string) (string, error) {
	return models.NextOrderNumber(ctx, shopId)
}

func (dbImportStore) CreateRepairOrder(ctx context.Context, order *models.RepairOrder) error {
	return models.CreateRepairOrder(ctx, order)
}

func (dbImportStore) CreatePartLine(ctx context.Context, part *models.RepairOrderPart) error {
	return models.CreateRepairOrderPart(ctx, part)
}

package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Modifier and discount types stored in the catalog.
const (
	TypePercentage = "PERCENTAGE"
	TypeFixed      = "FIXED"
)

// Vehicle is a rentable fleet vehicle. DailyRate is nil when no public
// rate has been set.
type Vehicle struct {
	ID          uuid.UUID        `json:"id"`
	DisplayName string           `json:"displayName"`
	Plate       string           `json:"plate"`
	DailyRate   *decimal.Decimal `json:"dailyRate,omitempty"`
}

// Offering is a selectable add-on.
type Offering struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Mandatory   bool            `json:"mandatory"`
	MaxQuantity *int            `json:"maxQuantity,omitempty"`
}

// Package is a rental bundle that modifies the vehicle rate.
type Package struct {
	ID                      uuid.UUID       `json:"id"`
	Name                    string          `json:"name"`
	ModifierType            string          `json:"modifierType"`
	ModifierValue           decimal.Decimal `json:"modifierValue"`
	AllowDiscountOnModifier *bool           `json:"allowDiscountOnModifier,omitempty"`
	IncludedOfferingIDs     []uuid.UUID     `json:"includedOfferingIds"`
}

// PackageRate overrides a package's modifier for one vehicle.
type PackageRate struct {
	PackageID uuid.UUID       `json:"packageId"`
	VehicleID uuid.UUID       `json:"vehicleId"`
	DailyRate decimal.Decimal `json:"dailyRate"`
}

// Discount is a redeemable discount code.
type Discount struct {
	ID    uuid.UUID       `json:"id"`
	Code  string          `json:"code"`
	Type  string          `json:"type"`
	Value decimal.Decimal `json:"value"`
}

// Repository defines catalog read operations. Only active rows are returned.
type Repository interface {
	ListVehicles(ctx context.Context) ([]Vehicle, error)
	GetVehicleByID(ctx context.Context, id uuid.UUID) (Vehicle, error)

	ListOfferings(ctx context.Context) ([]Offering, error)
	ListMandatoryOfferingIDs(ctx context.Context) ([]uuid.UUID, error)

	ListPackages(ctx context.Context) ([]Package, error)
	GetPackageByID(ctx context.Context, id uuid.UUID) (Package, error)
	ListPackageRates(ctx context.Context) ([]PackageRate, error)

	GetDiscountByID(ctx context.Context, id uuid.UUID) (Discount, error)
	GetDiscountByCode(ctx context.Context, code string) (Discount, error)
}

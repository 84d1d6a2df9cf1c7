package form

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fleet_console_backend/internal/booking/offerings"
	"fleet_console_backend/internal/booking/pricing"
)

// Vehicle is the catalog view of a rentable vehicle.
type Vehicle struct {
	ID        uuid.UUID
	Name      string
	Plate     string
	DailyRate *decimal.Decimal
}

type rateKey struct {
	packageID uuid.UUID
	vehicleID uuid.UUID
}

// Catalog is the immutable reference data of one session.
type Catalog struct {
	vehicles     map[uuid.UUID]Vehicle
	offerings    []offerings.Offering
	mandatoryIDs []uuid.UUID
	packages     map[uuid.UUID]pricing.Package
	rates        map[rateKey]decimal.Decimal
}

// PackageRate is a per-vehicle daily rate for a package.
type PackageRate struct {
	PackageID uuid.UUID
	VehicleID uuid.UUID
	DailyRate decimal.Decimal
}

// NewCatalog indexes the reference data.
func NewCatalog(vehicles []Vehicle, offers []offerings.Offering, mandatoryIDs []uuid.UUID, packages []pricing.Package, rates []PackageRate) *Catalog {
	c := &Catalog{
		vehicles:     make(map[uuid.UUID]Vehicle, len(vehicles)),
		offerings:    offers,
		mandatoryIDs: mandatoryIDs,
		packages:     make(map[uuid.UUID]pricing.Package, len(packages)),
		rates:        make(map[rateKey]decimal.Decimal, len(rates)),
	}
	for _, v := range vehicles {
		c.vehicles[v.ID] = v
	}
	for _, p := range packages {
		p.DailyRate = nil
		c.packages[p.ID] = p
	}
	for _, r := range rates {
		c.rates[rateKey{packageID: r.PackageID, vehicleID: r.VehicleID}] = r.DailyRate
	}
	return c
}

// Vehicle looks up a vehicle.
func (c *Catalog) Vehicle(id uuid.UUID) (Vehicle, bool) {
	v, ok := c.vehicles[id]
	return v, ok
}

// Package looks up a package and attaches the rate record for vehicleID
// when one exists.
func (c *Catalog) Package(id uuid.UUID, vehicleID *uuid.UUID) (pricing.Package, bool) {
	p, ok := c.packages[id]
	if !ok {
		return pricing.Package{}, false
	}
	if vehicleID != nil {
		if rate, ok := c.rates[rateKey{packageID: id, vehicleID: *vehicleID}]; ok {
			p.DailyRate = &rate
		}
	}
	return p, true
}

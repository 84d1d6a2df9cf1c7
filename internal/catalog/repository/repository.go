package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"fleet_console_backend/platform/apperr"
)

const (
	vehicleNotFoundMessage  = "vehicle not found"
	packageNotFoundMessage  = "package not found"
	discountNotFoundMessage = "discount not found"
)

// Repo implements the catalog repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new catalog repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// ListVehicles lists active vehicles ordered by name.
func (r *Repo) ListVehicles(ctx context.Context) ([]Vehicle, error) {
	query := `
		SELECT id, display_name, plate, daily_rate
		FROM fleet_vehicles
		WHERE is_active
		ORDER BY display_name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()

	items := make([]Vehicle, 0)
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		items = append(items, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vehicles: %w", err)
	}
	return items, nil
}

// GetVehicleByID retrieves an active vehicle.
func (r *Repo) GetVehicleByID(ctx context.Context, id uuid.UUID) (Vehicle, error) {
	query := `
		SELECT id, display_name, plate, daily_rate
		FROM fleet_vehicles
		WHERE id = $1 AND is_active`

	v, err := scanVehicle(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Vehicle{}, apperr.NotFound(vehicleNotFoundMessage)
		}
		return Vehicle{}, fmt.Errorf("get vehicle by id: %w", err)
	}
	return v, nil
}

// ListOfferings lists active offerings ordered by name.
func (r *Repo) ListOfferings(ctx context.Context) ([]Offering, error) {
	query := `
		SELECT id, name, unit_price, is_mandatory, max_quantity
		FROM catalog_offerings
		WHERE is_active
		ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list offerings: %w", err)
	}
	defer rows.Close()

	items := make([]Offering, 0)
	for rows.Next() {
		var o Offering
		if err := rows.Scan(&o.ID, &o.Name, &o.UnitPrice, &o.Mandatory, &o.MaxQuantity); err != nil {
			return nil, fmt.Errorf("scan offering: %w", err)
		}
		items = append(items, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate offerings: %w", err)
	}
	return items, nil
}

// ListMandatoryOfferingIDs returns the ids of active mandatory offerings.
func (r *Repo) ListMandatoryOfferingIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM catalog_offerings WHERE is_active AND is_mandatory ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list mandatory offerings: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("collect mandatory offerings: %w", err)
	}
	return ids, nil
}

const packageColumns = `
		p.id, p.name, p.modifier_type, p.modifier_value, p.allow_discount_on_modifier,
		COALESCE(array_agg(po.offering_id) FILTER (WHERE po.offering_id IS NOT NULL), '{}')`

// ListPackages lists active packages with their included offerings.
func (r *Repo) ListPackages(ctx context.Context) ([]Package, error) {
	query := `
		SELECT` + packageColumns + `
		FROM catalog_packages p
		LEFT JOIN catalog_package_offerings po ON po.package_id = p.id
		WHERE p.is_active
		GROUP BY p.id
		ORDER BY p.name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	defer rows.Close()

	items := make([]Package, 0)
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan package: %w", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate packages: %w", err)
	}
	return items, nil
}

// GetPackageByID retrieves an active package.
func (r *Repo) GetPackageByID(ctx context.Context, id uuid.UUID) (Package, error) {
	query := `
		SELECT` + packageColumns + `
		FROM catalog_packages p
		LEFT JOIN catalog_package_offerings po ON po.package_id = p.id
		WHERE p.id = $1 AND p.is_active
		GROUP BY p.id`

	p, err := scanPackage(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Package{}, apperr.NotFound(packageNotFoundMessage)
		}
		return Package{}, fmt.Errorf("get package by id: %w", err)
	}
	return p, nil
}

// ListPackageRates lists every per-vehicle package rate.
func (r *Repo) ListPackageRates(ctx context.Context) ([]PackageRate, error) {
	rows, err := r.pool.Query(ctx, `SELECT package_id, vehicle_id, daily_rate FROM catalog_package_rates`)
	if err != nil {
		return nil, fmt.Errorf("list package rates: %w", err)
	}
	rates, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (PackageRate, error) {
		var pr PackageRate
		err := row.Scan(&pr.PackageID, &pr.VehicleID, &pr.DailyRate)
		return pr, err
	})
	if err != nil {
		return nil, fmt.Errorf("collect package rates: %w", err)
	}
	return rates, nil
}

// GetDiscountByID retrieves an active discount.
func (r *Repo) GetDiscountByID(ctx context.Context, id uuid.UUID) (Discount, error) {
	query := `
		SELECT id, code, discount_type, value
		FROM catalog_discounts
		WHERE id = $1 AND is_active`

	var d Discount
	if err := r.pool.QueryRow(ctx, query, id).Scan(&d.ID, &d.Code, &d.Type, &d.Value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Discount{}, apperr.NotFound(discountNotFoundMessage)
		}
		return Discount{}, fmt.Errorf("get discount by id: %w", err)
	}
	return d, nil
}

// GetDiscountByCode retrieves an active discount by its code, case-insensitively.
func (r *Repo) GetDiscountByCode(ctx context.Context, code string) (Discount, error) {
	query := `
		SELECT id, code, discount_type, value
		FROM catalog_discounts
		WHERE upper(code) = $1 AND is_active`

	var d Discount
	if err := r.pool.QueryRow(ctx, query, strings.ToUpper(strings.TrimSpace(code))).Scan(&d.ID, &d.Code, &d.Type, &d.Value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Discount{}, apperr.NotFound(discountNotFoundMessage)
		}
		return Discount{}, fmt.Errorf("get discount by code: %w", err)
	}
	return d, nil
}

func scanVehicle(row pgx.Row) (Vehicle, error) {
	var v Vehicle
	var rate decimal.NullDecimal
	if err := row.Scan(&v.ID, &v.DisplayName, &v.Plate, &rate); err != nil {
		return Vehicle{}, err
	}
	if rate.Valid {
		v.DailyRate = &rate.Decimal
	}
	return v, nil
}

func scanPackage(row pgx.Row) (Package, error) {
	var p Package
	if err := row.Scan(&p.ID, &p.Name, &p.ModifierType, &p.ModifierValue, &p.AllowDiscountOnModifier, &p.IncludedOfferingIDs); err != nil {
		return Package{}, err
	}
	return p, nil
}

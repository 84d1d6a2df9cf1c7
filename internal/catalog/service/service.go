package service

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"fleet_console_backend/internal/catalog/repository"
	"fleet_console_backend/internal/catalog/transport"
	"fleet_console_backend/platform/logger"
	"fleet_console_backend/platform/money"
)

// Service provides read access to the rental catalog.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a new catalog service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Snapshot is the immutable reference data a booking form session works
// against. It is loaded once per session.
type Snapshot struct {
	Vehicles     []repository.Vehicle
	Offerings    []repository.Offering
	MandatoryIDs []uuid.UUID
	Packages     []repository.Package
	PackageRates []repository.PackageRate
}

// LoadSnapshot reads all catalog collections concurrently.
func (s *Service) LoadSnapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		snap.Vehicles, err = s.repo.ListVehicles(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Offerings, err = s.repo.ListOfferings(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.MandatoryIDs, err = s.repo.ListMandatoryOfferingIDs(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Packages, err = s.repo.ListPackages(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.PackageRates, err = s.repo.ListPackageRates(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		s.log.Error("catalog snapshot failed", "error", err)
		return Snapshot{}, err
	}
	return snap, nil
}

// GetDiscountByCode looks up a redeemable discount.
func (s *Service) GetDiscountByCode(ctx context.Context, code string) (repository.Discount, error) {
	return s.repo.GetDiscountByCode(ctx, code)
}

// GetDiscountByID looks up a discount by id. Bookings reference their
// discount by id so a renamed code still resolves.
func (s *Service) GetDiscountByID(ctx context.Context, id uuid.UUID) (repository.Discount, error) {
	return s.repo.GetDiscountByID(ctx, id)
}

func (s *Service) ListVehicles(ctx context.Context) (transport.ListResponse[transport.VehicleResponse], error) {
	items, err := s.repo.ListVehicles(ctx)
	if err != nil {
		return transport.ListResponse[transport.VehicleResponse]{}, err
	}
	out := make([]transport.VehicleResponse, 0, len(items))
	for _, v := range items {
		out = append(out, toVehicleResponse(v))
	}
	return transport.ListResponse[transport.VehicleResponse]{Items: out, Total: len(out)}, nil
}

// GetVehicle returns one active vehicle.
func (s *Service) GetVehicle(ctx context.Context, id uuid.UUID) (transport.VehicleResponse, error) {
	v, err := s.repo.GetVehicleByID(ctx, id)
	if err != nil {
		return transport.VehicleResponse{}, err
	}
	return toVehicleResponse(v), nil
}

func (s *Service) ListOfferings(ctx context.Context) (transport.ListResponse[transport.OfferingResponse], error) {
	items, err := s.repo.ListOfferings(ctx)
	if err != nil {
		return transport.ListResponse[transport.OfferingResponse]{}, err
	}
	out := make([]transport.OfferingResponse, 0, len(items))
	for _, o := range items {
		out = append(out, transport.OfferingResponse{
			ID:          o.ID,
			Name:        o.Name,
			UnitPrice:   money.Round2(o.UnitPrice).StringFixed(2),
			Mandatory:   o.Mandatory,
			MaxQuantity: o.MaxQuantity,
		})
	}
	return transport.ListResponse[transport.OfferingResponse]{Items: out, Total: len(out)}, nil
}

func (s *Service) ListPackages(ctx context.Context) (transport.ListResponse[transport.PackageResponse], error) {
	items, err := s.repo.ListPackages(ctx)
	if err != nil {
		return transport.ListResponse[transport.PackageResponse]{}, err
	}
	out := make([]transport.PackageResponse, 0, len(items))
	for _, p := range items {
		out = append(out, toPackageResponse(p))
	}
	return transport.ListResponse[transport.PackageResponse]{Items: out, Total: len(out)}, nil
}

// GetPackage returns one active package with its included offerings.
func (s *Service) GetPackage(ctx context.Context, id uuid.UUID) (transport.PackageResponse, error) {
	p, err := s.repo.GetPackageByID(ctx, id)
	if err != nil {
		return transport.PackageResponse{}, err
	}
	return toPackageResponse(p), nil
}

func (s *Service) LookupDiscount(ctx context.Context, code string) (transport.DiscountResponse, error) {
	d, err := s.repo.GetDiscountByCode(ctx, code)
	if err != nil {
		return transport.DiscountResponse{}, err
	}
	return transport.DiscountResponse{ID: d.ID, Code: d.Code, Type: d.Type, Value: d.Value.String()}, nil
}

func toVehicleResponse(v repository.Vehicle) transport.VehicleResponse {
	resp := transport.VehicleResponse{ID: v.ID, DisplayName: v.DisplayName, Plate: v.Plate}
	if v.DailyRate != nil {
		rate := money.Round2(*v.DailyRate).StringFixed(2)
		resp.DailyRate = &rate
	}
	return resp
}

func toPackageResponse(p repository.Package) transport.PackageResponse {
	return transport.PackageResponse{
		ID:                      p.ID,
		Name:                    p.Name,
		ModifierType:            p.ModifierType,
		ModifierValue:           p.ModifierValue.String(),
		AllowDiscountOnModifier: p.AllowDiscountOnModifier == nil || *p.AllowDiscountOnModifier,
		IncludedOfferingIDs:     p.IncludedOfferingIDs,
	}
}

package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fleet_console_backend/internal/catalog/repository"
	"fleet_console_backend/internal/catalog/service"
	"fleet_console_backend/platform/apperr"
	"fleet_console_backend/platform/logger"
	"fleet_console_backend/platform/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubRepo struct {
	repository.Repository
	vehicle repository.Vehicle
	pkg     repository.Package
}

func (s *stubRepo) GetVehicleByID(_ context.Context, id uuid.UUID) (repository.Vehicle, error) {
	if id != s.vehicle.ID {
		return repository.Vehicle{}, apperr.NotFound("vehicle not found")
	}
	return s.vehicle, nil
}

func (s *stubRepo) GetPackageByID(_ context.Context, id uuid.UUID) (repository.Package, error) {
	if id != s.pkg.ID {
		return repository.Package{}, apperr.NotFound("package not found")
	}
	return s.pkg, nil
}

func newTestEngine(repo repository.Repository) *gin.Engine {
	h := New(service.New(repo, logger.Discard()), validator.New("NL"))
	engine := gin.New()
	engine.GET("/vehicles/:id", h.GetVehicle)
	engine.GET("/packages/:id", h.GetPackage)
	return engine
}

func serve(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestGetVehicleAndPackageByID(t *testing.T) {
	rate := decimal.RequireFromString("64.5")
	repo := &stubRepo{
		vehicle: repository.Vehicle{ID: uuid.New(), DisplayName: "Transit", Plate: "VX-123-B", DailyRate: &rate},
		pkg:     repository.Package{ID: uuid.New(), Name: "Comfort", ModifierType: repository.TypeFixed, ModifierValue: decimal.NewFromInt(15)},
	}
	engine := newTestEngine(repo)

	rec := serve(engine, "/vehicles/"+repo.vehicle.ID.String())
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"dailyRate":"64.50"`) {
		t.Fatalf("unexpected vehicle response %d %s", rec.Code, rec.Body.String())
	}

	rec = serve(engine, "/packages/"+repo.pkg.ID.String())
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"allowDiscountOnModifier":true`) {
		t.Fatalf("unexpected package response %d %s", rec.Code, rec.Body.String())
	}
}

func TestGetByIDErrors(t *testing.T) {
	engine := newTestEngine(&stubRepo{})

	if rec := serve(engine, "/vehicles/not-a-uuid"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a malformed id, got %d", rec.Code)
	}
	if rec := serve(engine, "/packages/"+uuid.NewString()); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for an unknown package, got %d", rec.Code)
	}
}

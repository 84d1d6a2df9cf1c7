// Package catalog provides the catalog bounded context module.
package catalog

import (
	"context"

	"fleet_console_backend/internal/catalog/handler"
	"fleet_console_backend/internal/catalog/repository"
	"fleet_console_backend/internal/catalog/service"
	apphttp "fleet_console_backend/internal/http"
	"fleet_console_backend/platform/config"
	"fleet_console_backend/platform/logger"
	"fleet_console_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Module is the catalog bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	cache   *repository.CachedRepository
}

// NewModule creates the catalog module. A nil redis client or a disabled
// cache config reads straight from Postgres.
func NewModule(pool *pgxpool.Pool, rdb *redis.Client, val *validator.Validator, cfg config.CatalogCacheConfig, log *logger.Logger) *Module {
	var repo repository.Repository = repository.New(pool)
	var cached *repository.CachedRepository
	if rdb != nil && cfg.IsCatalogCacheEnabled() {
		cached = repository.NewCached(repo, rdb, cfg.GetCatalogCacheTTL(), log)
		repo = cached
		log.Info("catalog cache enabled", "ttl", cfg.GetCatalogCacheTTL())
	}

	svc := service.New(repo, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		cache:   cached,
	}
}

// FlushCache drops cached catalog entries so rows changed by migrations
// are read fresh. It is a no-op without a cache.
func (m *Module) FlushCache(ctx context.Context) error {
	if m.cache == nil {
		return nil
	}
	return m.cache.Invalidate(ctx)
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "catalog"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts catalog routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/catalog")
	group.GET("/vehicles", m.handler.ListVehicles)
	group.GET("/vehicles/:id", m.handler.GetVehicle)
	group.GET("/offerings", m.handler.ListOfferings)
	group.GET("/packages", m.handler.ListPackages)
	group.GET("/packages/:id", m.handler.GetPackage)
	group.GET("/discounts/:code", m.handler.LookupDiscount)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)

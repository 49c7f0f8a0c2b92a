// Package toilets is the bounded context for toilet records: ingestion,
// viewport queries, user submissions and aggregate stats.
package toilets

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"loolook_backend/internal/geo"
	apphttp "loolook_backend/internal/http"
	"loolook_backend/internal/toilets/handler"
	"loolook_backend/internal/toilets/repository"
	"loolook_backend/internal/toilets/service"
	"loolook_backend/platform/logger"
)

// Module wires the toilets repository, service and HTTP handlers.
type Module struct {
	repo    repository.Repository
	service *service.Service
	handler *handler.Handler
}

func NewModule(pool *pgxpool.Pool, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	return &Module{
		repo:    repo,
		service: svc,
		handler: handler.New(svc, log),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "toilets"
}

// Repository exposes the persistence layer for the batch tools and the
// backfill worker.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// Service exposes the use cases for the CLIs.
func (m *Module) Service() *service.Service {
	return m.service
}

// AreaCentroid satisfies the geocode centroid port: the average position
// of already-geocoded rows matching the area patterns.
func (m *Module) AreaCentroid(ctx context.Context, patterns []string) (*geo.Point, error) {
	return m.repo.AreaCentroid(ctx, patterns)
}

// RegisterRoutes mounts the toilets endpoints.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.API.GET("/toilets", m.handler.List)
	ctx.API.POST("/toilets", m.handler.Submit)
	ctx.API.GET("/stats", m.handler.Stats)
}

var _ apphttp.Module = (*Module)(nil)

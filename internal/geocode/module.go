package geocode

import (
	apphttp "loolook_backend/internal/http"
	"loolook_backend/platform/config"
	"loolook_backend/platform/logger"

	"github.com/redis/go-redis/v9"
)

// Module wires the geocode lookup endpoint and exposes the resolver chain
// for the marker synchronizer and the batch tools.
type Module struct {
	handler  *Handler
	service  *Service
	resolver *Resolver
}

// NewModule creates the geocode module. redisClient and centroids may be
// nil; the module degrades to uncached, centroid-less resolution.
func NewModule(cfg config.GeocodeConfig, redisClient *redis.Client, centroids CentroidSource, log *logger.Logger) *Module {
	kakao := NewKakaoClient(cfg.GetKakaoRESTKey(), log)
	vworld := NewVWorldClient(cfg.GetVWorldKey(), log)

	var cache *RedisCache
	if redisClient != nil {
		cache = NewRedisCache(redisClient)
	}

	svc := NewService(kakao, cache, log)
	resolver := NewResolver([]AddressProvider{vworld, kakao}, kakao, centroids, log)

	return &Module{
		handler:  NewHandler(svc),
		service:  svc,
		resolver: resolver,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "geocode"
}

// Resolver returns the provider fallback chain for batch callers.
func (m *Module) Resolver() *Resolver {
	return m.resolver
}

// RegisterRoutes mounts the geocode endpoint.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.API.GET("/geocode", m.handler.Lookup)
}

var _ apphttp.Module = (*Module)(nil)

package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"triptracks-service/internal/adapters/cache"
	"triptracks-service/internal/adapters/repositories"
	"triptracks-service/internal/adapters/routing"
	"triptracks-service/internal/config"
	"triptracks-service/internal/domain"
	"triptracks-service/internal/platform/db"
	"triptracks-service/internal/platform/metrics"
	"triptracks-service/internal/ports"
	"triptracks-service/internal/services"
	"triptracks-service/internal/session"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// App holds the wired service graph shared by the server and the CLI.
type App struct {
	Config      config.Config
	Metrics     *metrics.Metrics
	Cache       *cache.MemoryCache
	Resolver    *services.DistanceResolver
	Planner     *services.Planner
	Broadcaster *session.Broadcaster
	Chats       ports.ChatRepository
	Travelers   ports.TravelerRepository

	DB    *sql.DB
	Redis *redis.Client
}

// New connects optional backends and wires the services.
// reg may be nil, in which case no metrics are recorded.
func New(ctx context.Context, cfg config.Config, reg prometheus.Registerer) (*App, error) {
	a := &App{Config: cfg}
	if reg != nil {
		a.Metrics = metrics.New(reg)
	}

	if cfg.DatabaseURL != "" {
		conn, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
		a.DB = conn
	}

	if cfg.RedisURL != "" && cfg.RouteStore != config.RouteStorePostgres && cfg.RouteStore != config.RouteStoreNone {
		client, err := db.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("app: %w", err)
		}
		a.Redis = client
	}

	routeStore, placeStore, err := a.stores()
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("app: %w", err)
	}

	var provider ports.RoutingProvider = ports.UnconfiguredProvider{}
	if cfg.ORSAPIKey != "" {
		ors, err := routing.NewORSProvider(cfg.ORSAPIKey, cfg.ORSBaseURL, cfg.RoutingTimeout, routeStore, placeStore)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("app: %w", err)
		}
		provider = ors
	} else {
		zap.L().Info("ORS_API_KEY not set; distances use great-circle estimates")
	}

	if a.DB != nil {
		a.Chats = repositories.NewPostgresChatRepository(a.DB)
		a.Travelers = repositories.NewPostgresTravelerRepository(a.DB)
	} else {
		a.Chats = repositories.NewMemoryChatRepository(0)
		a.Travelers = repositories.NewMemoryTravelerRepository(loadSeeds(cfg.SeedPath))
	}

	a.Cache = cache.NewMemoryCache(cfg.CacheMaxEntries, cfg.CacheDefaultTTL)
	a.Resolver = services.NewDistanceResolver(a.Cache, provider, cfg.RoutingTimeout, a.Metrics)
	a.Planner = services.NewPlanner(a.Resolver, a.Travelers, cfg.DefaultDailyDistanceKm, cfg.DefaultFuelPrice)
	a.Broadcaster = session.NewBroadcaster(a.Chats, cfg.SessionSendTimeout, a.Metrics)

	return a, nil
}

// stores picks the persistent route and place stores behind the provider.
// Interfaces are left nil when no backend applies.
func (a *App) stores() (ports.RouteStore, ports.PlaceStore, error) {
	var routeStore ports.RouteStore
	var placeStore ports.PlaceStore

	if a.DB != nil {
		placeStore = cache.NewSQLPlaceCache(a.DB)
	}

	switch a.Config.RouteStore {
	case config.RouteStoreNone:
		return nil, placeStore, nil
	case config.RouteStoreRedis:
		if a.Redis == nil {
			return nil, nil, errors.New("ROUTE_STORE=redis requires REDIS_URL")
		}
		routeStore = cache.NewRedisRouteCache(a.Redis, a.Config.CacheDefaultTTL)
	case config.RouteStorePostgres:
		if a.DB == nil {
			return nil, nil, errors.New("ROUTE_STORE=postgres requires DATABASE_URL")
		}
		routeStore = cache.NewSQLRouteCache(a.DB)
	default:
		switch {
		case a.Redis != nil:
			routeStore = cache.NewRedisRouteCache(a.Redis, a.Config.CacheDefaultTTL)
		case a.DB != nil:
			routeStore = cache.NewSQLRouteCache(a.DB)
		}
	}

	return routeStore, placeStore, nil
}

// loadSeeds returns the seeded travelers for the in-memory repository.
// A missing file is not an error.
func loadSeeds(path string) []*domain.Traveler {
	if path == "" {
		return nil
	}

	travelers, err := repositories.LoadTravelerSeeds(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		zap.L().Warn("traveler seeds not loaded", zap.String("path", path), zap.Error(err))
		return nil
	}

	zap.L().Info("traveler seeds loaded", zap.String("path", path), zap.Int("count", len(travelers)))
	return travelers
}

// Close releases backend connections.
func (a *App) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}

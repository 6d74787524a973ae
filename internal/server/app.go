package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/morezero/typed-rpc/internal/config"
	"github.com/morezero/typed-rpc/internal/users"
	"github.com/morezero/typed-rpc/pkg/db"
	"github.com/morezero/typed-rpc/pkg/inject"
	"github.com/morezero/typed-rpc/pkg/rpc"
)

const appLogPrefix = "server:app"

// Resources holds what BuildApp opened. Close releases it.
type Resources struct {
	pool   *pgxpool.Pool
	Checks map[string]HealthCheck
}

// Close releases the database pool, if any.
func (r *Resources) Close() {
	if r.pool != nil {
		r.pool.Close()
		r.pool = nil
	}
}

// AppInfo maps the app metadata from cfg.
func AppInfo(cfg *config.Config) rpc.AppInfo {
	return rpc.AppInfo{Name: cfg.AppName, Version: cfg.AppVersion, Description: cfg.AppDescription}
}

// Routers returns a fresh router tree for cfg. Procedures carry their id once
// assigned, so every app needs its own tree.
func Routers(cfg *config.Config) []*rpc.Router {
	routers := []*rpc.Router{users.Router()}
	if cfg.ExposeAppInfo {
		routers = append(routers, rpc.InfoRouter())
	}
	return routers
}

// BuildApp opens the users store (Postgres when DATABASE_URL is set, memory
// otherwise), registers it with the container and builds the app.
func BuildApp(ctx context.Context, cfg *config.Config) (*rpc.App, *Resources, error) {
	res := &Resources{Checks: make(map[string]HealthCheck)}

	var store users.Store
	if cfg.DatabaseURL == "" {
		slog.Info(fmt.Sprintf("%s - DATABASE_URL not set, using in-memory users store", appLogPrefix))
		store = users.NewMemoryStore()
	} else {
		if cfg.EnsureDatabase {
			if err := db.EnsureDatabase(ctx, cfg.DatabaseURL); err != nil {
				return nil, nil, fmt.Errorf("%s - failed to ensure database: %w", appLogPrefix, err)
			}
		}
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
		if err != nil {
			return nil, nil, fmt.Errorf("%s - failed to connect to database: %w", appLogPrefix, err)
		}
		res.pool = pool

		pg := users.NewPGStore(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			res.Close()
			return nil, nil, fmt.Errorf("%s - failed to prepare users schema: %w", appLogPrefix, err)
		}
		res.Checks["database"] = pg.Ping
		store = pg
	}

	container := inject.New()
	inject.Set[users.Store](container, store)

	app, err := rpc.NewApp(AppInfo(cfg), Routers(cfg), rpc.WithProvider(container))
	if err != nil {
		res.Close()
		return nil, nil, fmt.Errorf("%s - failed to build app: %w", appLogPrefix, err)
	}
	slog.Info(fmt.Sprintf("%s - registered %d procedures", appLogPrefix, app.Registry().Len()))
	return app, res, nil
}

// BuildSchemaApp builds the app without opening any store. Its schema is the
// same as the serving app's; calls that need the store fail with
// RPC_CORE_INJECTOR_NOT_FOUND.
func BuildSchemaApp(cfg *config.Config) (*rpc.App, error) {
	app, err := rpc.NewApp(AppInfo(cfg), Routers(cfg))
	if err != nil {
		return nil, fmt.Errorf("%s - failed to build app: %w", appLogPrefix, err)
	}
	return app, nil
}

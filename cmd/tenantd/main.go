// Command tenantd runs the multi-tenant backend: tenant resolution on
// path-based routes, the admin API for tenant administration, and health
// reporting for the central registry and Redis.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/amrshah/tenantengine/pkg/centraldb"
	"github.com/amrshah/tenantengine/pkg/config"
	"github.com/amrshah/tenantengine/pkg/httpserver"
	"github.com/amrshah/tenantengine/pkg/logger"
	"github.com/amrshah/tenantengine/pkg/plan"
	"github.com/amrshah/tenantengine/pkg/redis"
	"github.com/amrshah/tenantengine/pkg/registry"
	"github.com/amrshah/tenantengine/pkg/requestid"
	"github.com/amrshah/tenantengine/pkg/scope"
	"github.com/amrshah/tenantengine/pkg/storage"
	"github.com/amrshah/tenantengine/pkg/tenant"
	"github.com/amrshah/tenantengine/pkg/tenantdb"
	tenantsvc "github.com/amrshah/tenantengine/svc/tenant"
)

type appConfig struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
	ServiceName string `env:"APP_NAME" envDefault:"tenantd"`

	PlansFile      string `env:"PLANS_FILE" envDefault:"configs/plans.yaml"`
	StorageEnabled bool   `env:"STORAGE_ENABLED" envDefault:"false"`
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "tenantd: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var appCfg appConfig
	if err := config.Load(&appCfg); err != nil {
		return fmt.Errorf("load app config: %w", err)
	}

	log := logger.New(
		logger.WithEnvironment(appCfg.Environment, appCfg.ServiceName),
		logger.WithContextExtractors(
			requestid.LoggerExtractor(),
			tenant.LoggerExtractor(),
		),
	)
	logger.SetAsDefault(log)

	var dbCfg centraldb.Config
	if err := config.Load(&dbCfg); err != nil {
		return fmt.Errorf("load central db config: %w", err)
	}
	pool, err := centraldb.Connect(ctx, dbCfg)
	if err != nil {
		return fmt.Errorf("connect central registry: %w", err)
	}
	defer pool.Close()

	if err := centraldb.Migrate(ctx, pool, dbCfg, log); err != nil {
		return fmt.Errorf("migrate central registry: %w", err)
	}

	var redisCfg redis.Config
	if err := config.Load(&redisCfg); err != nil {
		return fmt.Errorf("load redis config: %w", err)
	}
	redisClient, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisClient.Close()

	var tdbCfg tenantdb.Config
	if err := config.Load(&tdbCfg); err != nil {
		return fmt.Errorf("load tenant db config: %w", err)
	}
	manager, err := tenantdb.NewManager(tdbCfg, tenantdb.WithLogger(log))
	if err != nil {
		return fmt.Errorf("create tenant db manager: %w", err)
	}
	defer manager.Close()

	plans, err := plan.LoadFile(appCfg.PlansFile)
	if err != nil {
		return fmt.Errorf("load plan catalog: %w", err)
	}

	scopes := []scope.Scope{
		scope.Database(manager),
		scope.Cache(redisClient),
	}

	var objects *storage.Storage
	if appCfg.StorageEnabled {
		var storageCfg storage.Config
		if err := config.Load(&storageCfg); err != nil {
			return fmt.Errorf("load storage config: %w", err)
		}
		objects, err = storage.New(ctx, storageCfg)
		if err != nil {
			return fmt.Errorf("create object storage: %w", err)
		}
		scopes = append(scopes, scope.Storage(objects))
	}

	store := registry.NewStore(pool)
	cache := tenant.NewRedisCache(redisClient)

	svcOpts := []tenantsvc.ServiceOption{
		tenantsvc.WithCache(cache),
		tenantsvc.WithPlanCatalog(plans),
		tenantsvc.WithPoolCloser(manager),
		tenantsvc.WithLogger(log),
	}
	if objects != nil {
		svcOpts = append(svcOpts, tenantsvc.WithObjectStorage(objects))
	}
	svc := tenantsvc.NewService(store, svcOpts...)

	r := chi.NewRouter()
	r.Use(requestid.Middleware)

	r.Get("/health", healthHandler(
		centraldb.Healthcheck(pool),
		redis.Healthcheck(redisClient),
	))

	r.Mount("/admin/tenants", tenantsvc.NewHandler(svc, log).Routes())

	// Tenant-scoped routes: /{tenant}/... resolves the slug from the first
	// path segment and binds the database, cache, and storage scopes for
	// the lifetime of the request.
	r.Route("/{tenant}", func(r chi.Router) {
		r.Use(tenant.Middleware(
			tenant.NewPathResolver(1),
			store,
			tenant.WithCache(cache),
			tenant.WithBinder(scope.Combined(scopes...)),
			tenant.WithLogger(log),
		))
		r.Use(tenant.RequireTenant(tenant.DefaultErrorHandler))

		r.Get("/me", currentTenantHandler)
	})

	var httpCfg httpserver.Config
	if err := config.Load(&httpCfg); err != nil {
		return fmt.Errorf("load http config: %w", err)
	}

	log.InfoContext(ctx, "starting server",
		"addr", httpCfg.Addr, "environment", appCfg.Environment)

	return httpserver.Run(ctx, httpCfg, r, log)
}

// healthHandler reports readiness of the central registry and Redis.
func healthHandler(checks ...func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var failed error
		for _, check := range checks {
			if err := check(r.Context()); err != nil {
				failed = errors.Join(failed, err)
			}
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if failed != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "unhealthy"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

// currentTenantHandler returns the resolved tenant for the request. It
// doubles as a smoke test that resolution and scope binding worked.
func currentTenantHandler(w http.ResponseWriter, r *http.Request) {
	t := tenant.MustFromContext(r.Context())

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(map[string]any{"data": t})
}

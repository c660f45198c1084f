package routes

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/movesmart/transit/internal/auth"
	"github.com/movesmart/transit/internal/bus"
	"github.com/movesmart/transit/internal/config"
	"github.com/movesmart/transit/internal/geo"
	"github.com/movesmart/transit/internal/identity"
	"github.com/movesmart/transit/internal/location"
	"github.com/movesmart/transit/internal/metrics"
	"github.com/movesmart/transit/internal/middleware"
	"github.com/movesmart/transit/internal/notification"
	"github.com/movesmart/transit/internal/organization"
	"github.com/movesmart/transit/internal/route"
	"github.com/movesmart/transit/internal/trip"
	"github.com/movesmart/transit/internal/user"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// publicPrefixes are skipped by the authenticator entirely; AccessPolicy
// marks them public as well so the two layers stay consistent.
var publicPrefixes = []string{"/api/auth/", "/healthz", "/metrics", "/api/geocode"}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	codec, err := auth.NewCodec(d.Cfg.JWTSecret, d.Cfg.TokenTTL)
	if err != nil {
		return err
	}

	// Repositories: Postgres when a pool is present, in-memory otherwise.
	var (
		userRepo         user.Repository
		busRepo          bus.Repository
		orgRepo          organization.Repository
		routeRepo        route.Repository
		tripRepo         trip.Repository
		notificationRepo notification.Repository
		locationRepo     location.Repository
	)
	if d.DB != nil {
		userRepo = user.NewPostgresRepository(d.DB)
		busRepo = bus.NewPostgresRepository(d.DB)
		orgRepo = organization.NewPostgresRepository(d.DB)
		routeRepo = route.NewPostgresRepository(d.DB)
		tripRepo = trip.NewPostgresRepository(d.DB)
		notificationRepo = notification.NewPostgresRepository(d.DB)
		locationRepo = location.NewPostgresRepository(d.DB)
	} else {
		userRepo = user.NewMemoryRepository()
		busRepo = bus.NewMemoryRepository()
		orgRepo = organization.NewMemoryRepository()
		routeRepo = route.NewMemoryRepository()
		tripRepo = trip.NewMemoryRepository()
		notificationRepo = notification.NewMemoryRepository()
		locationRepo = location.NewMemoryRepository()
	}

	// Services. Cross-domain needs go through the narrow interfaces each
	// service declares, so the wiring here is the only place that sees the
	// whole graph.
	userSvc := user.NewService(userRepo, busRepo)
	busSvc := bus.NewService(busRepo, userRepo)
	orgSvc := organization.NewService(orgRepo)
	routeSvc := route.NewService(routeRepo, busSvc)
	notificationSvc := notification.NewService(notificationRepo, d.Logger)
	tripSvc := trip.NewService(tripRepo, userSvc, routeSvc, busSvc, notificationSvc)
	locationSvc := location.NewService(locationRepo, busSvc, location.NewCache(d.Cache), d.Logger)
	authSvc := auth.NewService(userSvc, busSvc, codec)
	geoClient := geo.NewClient(d.Cfg.GoogleMapsAPIKey, d.Cfg.GeocodeRPS, d.Logger)

	// Middlewares, in order: panic recovery, request ID, logging and
	// metrics, authentication, authorization.
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Observe(d.Logger))
	app.Use(middleware.Authenticate(codec, userSvc, publicPrefixes))
	app.Use(middleware.Authorize(accessPolicy()))

	RegisterHealthRoutes(app, d)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	api := app.Group("/api")

	RegisterAuthRoutes(api, auth.NewHandler(authSvc), middleware.LoginRateLimit(d.Cache, 5))
	RegisterUserRoutes(api, user.NewHandler(userSvc))
	RegisterBusRoutes(api, bus.NewHandler(busSvc))
	RegisterOrganizationRoutes(api, organization.NewHandler(orgSvc))
	RegisterRouteRoutes(api, route.NewHandler(routeSvc))
	RegisterTripRoutes(api, trip.NewHandler(tripSvc))
	RegisterNotificationRoutes(api, notification.NewHandler(notificationSvc))
	RegisterLocationRoutes(api, location.NewHandler(locationSvc, busSvc))
	RegisterGeoRoutes(api, geo.NewHandler(geoClient))
	RegisterDashboardRoute(api, userSvc, busSvc, routeSvc, tripSvc)

	return nil
}

// accessPolicy is the ordered role table, evaluated first-match-wins.
// Requests matching no rule require some authenticated principal; handlers
// add finer ownership checks where a role alone is not enough.
func accessPolicy() *middleware.Policy {
	admin := []identity.Role{identity.RoleAdmin}
	adminOrDriver := []identity.Role{identity.RoleAdmin, identity.RoleDriver}
	driver := []identity.Role{identity.RoleDriver}
	passengerOrAdmin := []identity.Role{identity.RolePassenger, identity.RoleAdmin}

	return middleware.NewPolicy(
		middleware.Rule{Path: "/api/auth/*", Public: true},
		middleware.Rule{Path: "/healthz", Public: true},
		middleware.Rule{Path: "/metrics", Public: true},
		middleware.Rule{Path: "/api/geocode", Public: true},

		middleware.Rule{Path: "/api/users/me"},
		middleware.Rule{Path: "/api/users/me/*"},
		middleware.Rule{Path: "/api/users/*", Roles: admin},

		middleware.Rule{Method: fiber.MethodGet, Path: "/api/buses/my-bus", Roles: driver},
		middleware.Rule{Method: fiber.MethodGet, Path: "/api/buses/*", Roles: adminOrDriver},
		middleware.Rule{Path: "/api/buses/*", Roles: admin},

		middleware.Rule{Path: "/api/organizations/*", Roles: admin},

		middleware.Rule{Method: fiber.MethodGet, Path: "/api/routes/*"},
		middleware.Rule{Path: "/api/routes/*", Roles: admin},

		middleware.Rule{Method: fiber.MethodPost, Path: "/api/trips", Roles: passengerOrAdmin},
		middleware.Rule{Method: fiber.MethodGet, Path: "/api/trips", Roles: admin},
		middleware.Rule{Method: fiber.MethodGet, Path: "/api/trips/my"},
		middleware.Rule{Method: fiber.MethodPost, Path: "/api/trips/*"},
		middleware.Rule{Method: fiber.MethodGet, Path: "/api/trips/*"},
		middleware.Rule{Path: "/api/trips/*", Roles: admin},

		middleware.Rule{Method: fiber.MethodPost, Path: "/api/notifications", Roles: admin},

		middleware.Rule{Method: fiber.MethodPost, Path: "/api/locations/bus", Roles: adminOrDriver},
		middleware.Rule{Method: fiber.MethodPost, Path: "/api/locations/passenger", Roles: []identity.Role{identity.RolePassenger}},
	)
}

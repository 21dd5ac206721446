package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"relief-grid-go/internal/config"
	"relief-grid-go/internal/db"
	announcementdomain "relief-grid-go/internal/domain/announcement"
	areadomain "relief-grid-go/internal/domain/area"
	discussiondomain "relief-grid-go/internal/domain/discussion"
	donationdomain "relief-grid-go/internal/domain/donation"
	griddomain "relief-grid-go/internal/domain/grid"
	gridiodomain "relief-grid-go/internal/domain/gridio"
	volunteerdomain "relief-grid-go/internal/domain/volunteer"
	"relief-grid-go/internal/gridlock"
	"relief-grid-go/internal/ratelimit"
	"relief-grid-go/internal/repository/inmemory"
	announcementrepo "relief-grid-go/internal/repository/postgres/announcement"
	arearepo "relief-grid-go/internal/repository/postgres/area"
	discussionrepo "relief-grid-go/internal/repository/postgres/discussion"
	donationrepo "relief-grid-go/internal/repository/postgres/donation"
	gridrepo "relief-grid-go/internal/repository/postgres/grid"
	volunteerrepo "relief-grid-go/internal/repository/postgres/volunteer"
	"relief-grid-go/internal/seed"
	"relief-grid-go/internal/transport/httpserver"
	"relief-grid-go/internal/transport/httpserver/handler"
	"relief-grid-go/pkg/logger"
)

const rateLimitPrefix = "relief-grid:grids:create:"

type App struct {
	cfg        config.Config
	log        logger.Logger
	db         *gorm.DB
	redis      *redis.Client
	services   handler.Services
	httpServer *http.Server
}

// New opens the database and builds every service. The HTTP server is
// created lazily by HTTPServer.
func New(cfg config.Config, log logger.Logger) (*App, error) {
	log.Info("app: initializing database", "driver", cfg.DB.Driver)
	dbConn, err := db.Open(cfg.DB, log)
	if err != nil {
		return nil, err
	}
	return NewWithDB(cfg, dbConn, log)
}

// NewWithDB builds the services on an already opened connection.
func NewWithDB(cfg config.Config, dbConn *gorm.DB, log logger.Logger) (*App, error) {
	policy, ok := donationdomain.ParsePolicy(cfg.Donations.ApplyPolicy)
	if !ok {
		return nil, fmt.Errorf("unsupported donation apply policy %q", cfg.Donations.ApplyPolicy)
	}

	locks := gridlock.New()

	areas := areadomain.NewService(arearepo.NewPostgres(dbConn))
	grids := griddomain.NewService(
		gridrepo.NewPostgres(dbConn),
		locks,
		griddomain.WithAreas(areas),
		griddomain.WithFeedCache(inmemory.NewFeedCache(), cfg.Feeds.CacheTTL),
	)

	services := handler.Services{
		Grids:         grids,
		GridIO:        gridiodomain.NewService(grids),
		Areas:         areas,
		Volunteers:    volunteerdomain.NewService(volunteerrepo.NewPostgres(dbConn), grids, locks),
		Donations:     donationdomain.NewService(donationrepo.NewPostgres(dbConn), grids, locks, policy),
		Discussions:   discussiondomain.NewService(discussionrepo.NewPostgres(dbConn), grids),
		Announcements: announcementdomain.NewService(announcementrepo.NewPostgres(dbConn)),
	}
	log.Info("app: services ready", "donation_policy", policy)

	return &App{
		cfg:      cfg,
		log:      log,
		db:       dbConn,
		services: services,
	}, nil
}

func (a *App) Migrate() error {
	a.log.Info("app: running migrations")
	return db.Migrate(a.db)
}

func (a *App) Services() handler.Services {
	return a.services
}

func (a *App) Seeder() *seed.Seeder {
	return seed.New(a.services.Areas, a.services.Announcements, a.log)
}

func (a *App) HTTPServer() (*http.Server, error) {
	if a.httpServer != nil {
		return a.httpServer, nil
	}

	limiter, err := a.newLimiter()
	if err != nil {
		return nil, err
	}

	a.log.Info("app: initializing router")
	router := httpserver.NewRouter(a.cfg, handler.New(a.services, a.log), limiter, a.log)

	a.log.Info("app: initializing http server", "port", a.cfg.HTTPPort)
	a.httpServer = httpserver.New(a.cfg, router)
	return a.httpServer, nil
}

func (a *App) newLimiter() (*ratelimit.Limiter, error) {
	if !a.cfg.RateLimit.Enabled {
		a.log.Info("ratelimit: disabled")
		return nil, nil
	}

	var store ratelimit.Store
	if a.cfg.RateLimit.RedisAddr != "" {
		a.redis = ratelimit.NewRedisClient(a.cfg.RateLimit.RedisAddr, a.cfg.RateLimit.RedisDB)
		if err := a.redis.Ping(context.Background()).Err(); err != nil {
			a.log.Warn("ratelimit: redis unreachable, requests pass until it recovers", "addr", a.cfg.RateLimit.RedisAddr, "err", err)
		}
		store = ratelimit.NewRedisStore(a.redis)
		a.log.Info("ratelimit: using redis", "addr", a.cfg.RateLimit.RedisAddr)
	} else {
		store = ratelimit.NewMemoryStore()
		a.log.Info("ratelimit: using in-memory store")
	}
	return ratelimit.New(store, a.cfg.RateLimit.Limit, a.cfg.RateLimit.Window, rateLimitPrefix)
}

func (a *App) Close() error {
	var errs []error
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if a.db != nil {
		sqlDB, err := a.db.DB()
		if err != nil {
			errs = append(errs, err)
		} else if err := sqlDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close db: %w", err))
		}
	}
	return errors.Join(errs...)
}

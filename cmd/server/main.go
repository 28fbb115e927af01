package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/experience-booking/internal/config"
	"github.com/iliyamo/experience-booking/internal/database"
	"github.com/iliyamo/experience-booking/internal/handler"
	"github.com/iliyamo/experience-booking/internal/logger"
	"github.com/iliyamo/experience-booking/internal/middleware"
	"github.com/iliyamo/experience-booking/internal/queue"
	"github.com/iliyamo/experience-booking/internal/repository"
	"github.com/iliyamo/experience-booking/internal/router"
	"github.com/iliyamo/experience-booking/internal/seed"
	"github.com/iliyamo/experience-booking/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("open store")
	}
	defer closeStore()

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		log.Info("redis disabled or unreachable; rate limiting and caching are off")
	} else {
		defer func() { _ = rdb.Close() }()
	}

	qcfg := config.LoadQueueConfig()
	var events service.EventPublisher = service.NoopPublisher{}
	if qcfg.Enabled {
		pub := service.NewAMQPPublisher(qcfg.URL, qcfg.Queue, log)
		defer func() { _ = pub.Close() }()
		events = pub
	}

	catalog := service.NewCatalogService(store)
	reservations := service.NewReservationService(store, cfg.ReservationTimeout, log)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))

	router.RegisterRoutes(e)
	router.RegisterCatalog(e,
		handler.NewCatalogHandler(catalog, log),
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb, log))
	router.RegisterBookings(e,
		handler.NewBookingHandler(reservations, catalog, events, log),
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.Port
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env, "store": cfg.StoreDriver}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if qcfg.Enabled {
		consumer := &queue.BookingConsumer{URL: qcfg.URL, Queue: qcfg.Queue, LogDir: qcfg.LogDir, Log: log}
		g.Go(func() error {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

// openStore returns the configured store and a function that releases it.
// The memory store is seeded on startup since it has no other source of
// data.
func openStore(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (repository.Store, func(), error) {
	if cfg.StoreDriver == config.DriverMemory {
		store := repository.NewMemoryStore()
		res, err := seed.Run(ctx, store, time.Now(), cfg.SeedDays)
		if err != nil {
			return nil, nil, err
		}
		log.WithFields(logrus.Fields{"experiences": res.Experiences, "timeslots": res.Timeslots}).Info("memory store seeded")
		return store, func() {}, nil
	}

	db, err := database.Open(ctx, database.FromConfig(cfg))
	if err != nil {
		return nil, nil, err
	}
	if cfg.DBAutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		log.Info("schema migrated")
	}
	return repository.NewSQLStore(db), func() { _ = db.Close() }, nil
}

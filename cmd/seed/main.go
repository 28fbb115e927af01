package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/iliyamo/experience-booking/internal/config"
	"github.com/iliyamo/experience-booking/internal/database"
	"github.com/iliyamo/experience-booking/internal/logger"
	"github.com/iliyamo/experience-booking/internal/model"
	"github.com/iliyamo/experience-booking/internal/repository"
	"github.com/iliyamo/experience-booking/internal/seed"
)

func openDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if cfg.StoreDriver != config.DriverMySQL {
		return nil, fmt.Errorf("STORE_DRIVER=%s: migrate and seed need mysql", cfg.StoreDriver)
	}
	return database.Open(ctx, database.FromConfig(cfg))
}

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env, cfg.LogLevel)

	app := &cli.App{
		Name:  "seed",
		Usage: "Create the schema and load the experience catalog",
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "create missing tables",
				Action: func(c *cli.Context) error {
					db, err := openDB(c.Context, cfg)
					if err != nil {
						return err
					}
					defer db.Close()

					if err := database.Migrate(c.Context, db); err != nil {
						return err
					}
					log.Info("schema up to date")
					return nil
				},
			},
			{
				Name:  "seed",
				Usage: "insert experiences and a rolling window of timeslots",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "days", Value: cfg.SeedDays, Usage: "number of dates to generate"},
					&cli.StringFlag{Name: "from", Usage: "first date (YYYY-MM-DD), defaults to today"},
					&cli.BoolFlag{Name: "migrate", Usage: "run migrate first"},
				},
				Action: func(c *cli.Context) error {
					from := time.Now().UTC()
					if s := c.String("from"); s != "" {
						d, err := time.Parse(model.DateLayout, s)
						if err != nil {
							return fmt.Errorf("--from: %w", err)
						}
						from = d
					}
					days := c.Int("days")
					if days < 1 {
						return fmt.Errorf("--days must be at least 1")
					}

					db, err := openDB(c.Context, cfg)
					if err != nil {
						return err
					}
					defer db.Close()

					if c.Bool("migrate") {
						if err := database.Migrate(c.Context, db); err != nil {
							return err
						}
					}
					res, err := seed.Run(c.Context, repository.NewSQLStore(db), from, days)
					if err != nil {
						return err
					}
					log.WithFields(logrus.Fields{
						"experiences": res.Experiences,
						"timeslots":   res.Timeslots,
						"from":        from.Format(model.DateLayout),
						"days":        days,
					}).Info("seed complete")
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("seed failed")
	}
}

// Package database opens the gorm connection the repositories share and
// classifies driver errors.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	// registers the "postgres" database/sql driver used when Config.Driver is "postgres"
	_ "github.com/lib/pq"
)

// Drivers accepted by Config.Driver.
const (
	DriverPGX = "pgx"
	DriverPQ  = "postgres"
)

type Config struct {
	DSN          string
	Driver       string
	MaxOpenConns int
	MaxIdleConns int
	MaxRetries   int
	RetryDelay   time.Duration
}

// Open connects to Postgres, retrying until the server answers a ping or
// MaxRetries attempts have been made.
func Open(ctx context.Context, cfg Config, log zerolog.Logger) (*gorm.DB, error) {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 10
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}

	pgCfg := postgres.Config{DSN: cfg.DSN}
	switch cfg.Driver {
	case "", DriverPGX:
	case DriverPQ:
		pgCfg.DriverName = DriverPQ
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	var (
		db  *gorm.DB
		err error
	)
	for attempt := 1; attempt <= cfg.MaxRetries; attempt++ {
		db, err = gorm.Open(postgres.New(pgCfg), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		})
		if err == nil {
			err = ping(ctx, db, cfg)
			if err == nil {
				log.Info().Str("driver", cfg.Driver).Int("attempt", attempt).Msg("database_connected")
				return db, nil
			}
		}
		log.Warn().Err(err).Int("attempt", attempt).Msg("database_unreachable")

		select {
		case <-time.After(cfg.RetryDelay):
		case <-ctx.Done():
			return nil, fmt.Errorf("database connect canceled: %w", ctx.Err())
		}
	}
	return nil, fmt.Errorf("database unreachable after %d attempts: %w", cfg.MaxRetries, err)
}

func ping(ctx context.Context, db *gorm.DB, cfg Config) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pctx); err != nil {
		_ = sqlDB.Close()
		return err
	}
	return nil
}

// Close releases the pool behind db.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

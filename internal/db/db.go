package db

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nurpe/freelancehub/internal/config"
)

const (
	connectAttempts = 5
	connectDelay    = 500 * time.Millisecond
	connectMaxDelay = 5 * time.Second
)

// New opens the postgres pool, retrying while the database comes up, and applies
// migrations when DB_AUTO_MIGRATE is set.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	level := gormlogger.Warn
	if cfg.Environment == "development" {
		level = gormlogger.Info
	}

	var (
		database *gorm.DB
		err      error
	)
	for attempt := 0; ; attempt++ {
		database, err = gorm.Open(postgres.Open(cfg.DB.DSN), &gorm.Config{
			Logger: newGormLogger(log, level),
		})
		if err == nil {
			break
		}
		if attempt >= connectAttempts {
			return nil, fmt.Errorf("open postgres after %d attempts: %w", attempt+1, err)
		}
		delay := backoff(attempt)
		log.Warn().Err(err).Int("attempt", attempt+1).Dur("retry_in", delay).Msg("database not ready")
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("open postgres canceled: %w", ctx.Err())
		case <-time.After(delay):
		}
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if cfg.DB.AutoMigrate {
		if err := runMigrations(database.WithContext(ctx)); err != nil {
			return nil, err
		}
		log.Info().Int("statements", len(migrationStatements)).Msg("migrations applied")
	}
	return database, nil
}

func backoff(attempt int) time.Duration {
	d := connectDelay << attempt
	if d > connectMaxDelay {
		return connectMaxDelay
	}
	return d
}

// Package warehouse owns the Postgres side of the pipeline: schema creation
// and conflict-aware batched upserts into the four destination tables.
package warehouse

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"call-analytics-exporter/internal/config"
)

const (
	maxOpenConns    = 10
	maxIdleConns    = 5
	connMaxLifetime = 30 * time.Minute
)

type Sink struct {
	db    *gorm.DB
	log   zerolog.Logger
	ready map[string]bool
}

// Open connects to the warehouse and verifies the connection.
func Open(cfg config.PostgresConfig, log zerolog.Logger) (*Sink, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	log.Info().Str("host", cfg.Host).Str("database", cfg.Database).Msg("connected to warehouse")

	return &Sink{db: db, log: log, ready: make(map[string]bool)}, nil
}

func (s *Sink) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// TableReady reports whether a table's schema init succeeded this run.
// Stages writing to a table that failed init are skipped, not aborted.
func (s *Sink) TableReady(table string) bool {
	return s.ready[table]
}

package config

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
	"gorm.io/plugin/opentelemetry/tracing"
)

// InitDB opens the primary database, registers read replicas and the tracing
// plugin. Feed reads are routed to replicas by dbresolver; writes stay on the primary.
func InitDB(cfg *Config, logger *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(dialector(cfg.DBDriver, cfg.DBDSN), &gorm.Config{
		Logger:         NewGormLogger(logger),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("raw database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(40)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if len(cfg.DBReplicaDSNs) > 0 {
		replicas := make([]gorm.Dialector, 0, len(cfg.DBReplicaDSNs))
		for _, dsn := range cfg.DBReplicaDSNs {
			replicas = append(replicas, dialector(cfg.DBDriver, dsn))
		}
		if err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		})); err != nil {
			return nil, fmt.Errorf("register replicas: %w", err)
		}
		logger.Info("Database replicas registered", zap.Int("count", len(replicas)))
	}

	if err := db.Use(tracing.NewPlugin()); err != nil {
		return nil, fmt.Errorf("register tracing plugin: %w", err)
	}

	logger.Info("Database connected", zap.String("driver", cfg.DBDriver))
	return db, nil
}

func dialector(driver, dsn string) gorm.Dialector {
	if driver == "postgres" {
		return postgres.Open(dsn)
	}
	return mysql.Open(dsn)
}

// CloseDB closes the pool behind db.
func CloseDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

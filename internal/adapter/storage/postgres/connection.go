package postgres

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PoolConfig sizes the connection pool.
type PoolConfig struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	Debug           bool
}

// NewConnection initializes a new PostgreSQL connection using GORM
func NewConnection(url string, pool PoolConfig, log *zap.Logger) (*gorm.DB, error) {
	level := logger.Warn
	if pool.Debug {
		level = logger.Info
	}
	db, err := gorm.Open(postgres.Open(url), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if pool.MaxIdleConns <= 0 {
		pool.MaxIdleConns = 5
	}
	if pool.MaxOpenConns <= 0 {
		pool.MaxOpenConns = 20
	}
	sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	if pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}

	log.Info("Successfully connected to PostgreSQL",
		zap.Int("max_open_conns", pool.MaxOpenConns),
	)
	return db, nil
}

// RunMigrations creates or updates the intent and review tables.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(&intentModel{}, &reviewModel{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Close releases the underlying sql.DB.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks the database connection.
func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Package database provides database connection management for the
// qrmenu-reco recommendation service.
//
// This package includes:
//   - Database connection management using GORM and PostgreSQL
//   - Schema initialization via AutoMigrate
//   - A raw database/sql connection for Postgres advisory locks
//
// Data Models:
//
//	All data models (MenuItem, Order, ItemPairFrequency, etc.) are defined
//	in the models_pkg package to avoid circular import dependencies.
package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	models "qrmenu-reco/database/models_pkg"
)

// Database holds the GORM database connection and provides access to the
// underlying DB instance. It serves as the central connection point for all
// database operations in the application.
type Database struct {
	db *gorm.DB
}

// DB returns the underlying GORM database instance for direct access when needed.
func (d *Database) DB() *gorm.DB {
	return d.db
}

// Connect establishes database connection using GORM
func Connect(host string, port int, dbname, user, password string) (*Database, error) {
	dsn := fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=disable",
		host, port, dbname, user, password)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Silent logging for production
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Database{db: db}, nil
}

// InitSchema creates or migrates all tables
func (d *Database) InitSchema() error {
	return d.db.AutoMigrate(
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.ProcessedOrder{},
		&models.ItemPairFrequency{},
		&models.RecommendationEvent{},
		&models.PerformanceSummary{},
		&models.ABTestConfig{},
		&models.TenantConfig{},
	)
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ============================================================================
// Backward Compatibility Type Aliases
// ============================================================================

// These type aliases let callers import types from the database package
// directly instead of reaching into models_pkg.

type MenuItem = models.MenuItem
type Order = models.Order
type OrderItem = models.OrderItem
type ProcessedOrder = models.ProcessedOrder
type ItemPairFrequency = models.ItemPairFrequency
type RecommendationEvent = models.RecommendationEvent
type PerformanceSummary = models.PerformanceSummary
type ABTestConfig = models.ABTestConfig
type TenantConfig = models.TenantConfig

// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/insurance-solutions/vims-backend/internal/config"
	"github.com/insurance-solutions/vims-backend/internal/models"
)

var DB *gorm.DB

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var err error
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	// Connect to database
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established successfully")
	return DB, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	// Run auto-migrations
	err := db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Vehicle{},
		&models.InsurancePlan{},
		&models.PlanCoverage{},
		&models.PlanAddon{},
		&models.DepreciationSlab{},
		&models.Proposal{},
		&models.Policy{},
		&models.CoverageSnapshot{},
		&models.PaymentReceipt{},
		&models.PolicyEndorsement{},
		&models.Claim{},
		&models.ClaimSurvey{},
		&models.ClaimVerification{},
		&models.SettlementEntry{},
		&models.SeriesCounter{},
		&models.AuditLog{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create indexes
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// Vehicle lookups by owner and registration
		"CREATE INDEX IF NOT EXISTS idx_vehicles_customer ON vehicles(customer_id)",

		// Proposal pipeline views
		"CREATE INDEX IF NOT EXISTS idx_proposals_status_plan ON proposals(status, plan_id)",
		"CREATE INDEX IF NOT EXISTS idx_proposals_customer ON proposals(customer_id, status)",

		// Policy expiry and renewal sweeps scan by end date and status
		"CREATE INDEX IF NOT EXISTS idx_policies_status_end ON policies(status, policy_end_date)",

		// Claim limit checks count non-rejected claims per policy
		"CREATE INDEX IF NOT EXISTS idx_claims_policy_status ON claims(policy_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_claims_registration ON claims(registration_date)",
	}

	for _, idx := range indexes {
		if err := db.Exec(idx).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

package db

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/BruksfildServices01/studio-scheduler/internal/config"
	"github.com/BruksfildServices01/studio-scheduler/internal/models"
)

// Models é a lista migrada no start quando AUTO_MIGRATE está ligado.
func Models() []any {
	return []any{
		&models.Studio{},
		&models.User{},
		&models.Service{},
		&models.Product{},
		&models.WorkingHours{},
		&models.Client{},
		&models.Appointment{},
		&models.Command{},
		&models.CommandItem{},
		&models.PaymentMethod{},
		&models.PaymentEntry{},
		&models.FinancialTransaction{},
		&models.AuditLog{},
	}
}

func NewDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
		Logger:      logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("db: connect: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db: sql handle: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxOpenConns / 2)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if cfg.AutoMigrate {
		if err := db.AutoMigrate(Models()...); err != nil {
			return nil, fmt.Errorf("db: migrate: %w", err)
		}

		if err := db.Exec(`
			UPDATE studios
			SET timezone = 'America/Sao_Paulo'
			WHERE timezone IS NULL OR timezone = ''
		`).Error; err != nil {
			return nil, fmt.Errorf("db: backfill timezone: %w", err)
		}
	}

	return db, nil
}

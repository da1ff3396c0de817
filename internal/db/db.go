package db

import (
	"fmt"

	"github.com/kipsang/customer-orders-api/internal/config"
	"github.com/kipsang/customer-orders-api/internal/models"
	"github.com/kipsang/customer-orders-api/pkg/logger"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the application database and migrates the schema. When no
// DATABASE_URL is configured the database itself is created first if it does
// not exist yet (local development; hosted deployments provision their own).
func Connect(cfg *config.Config) (*gorm.DB, error) {
	if cfg.DatabaseURL == "" {
		if err := ensureDatabase(cfg); err != nil {
			return nil, err
		}
	} else {
		logger.Info("DATABASE_URL detected, skipping database creation")
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate keeps the schema in sync with the models. The FK from orders to
// customers carries ON DELETE CASCADE, so customer deletion removes orders
// at the persistence layer.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Customer{}, &models.Order{}); err != nil {
		return errors.Wrap(err, "failed to migrate database")
	}
	return nil
}

func ensureDatabase(cfg *config.Config) error {
	admin, err := gorm.Open(postgres.Open(cfg.AdminDSN()), &gorm.Config{})
	if err != nil {
		return errors.Wrap(err, "failed to connect to postgres server")
	}
	defer func() {
		if sqlDB, err := admin.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	var count int64
	if err := admin.Raw("SELECT count(*) FROM pg_database WHERE datname = ?", cfg.DBName).Scan(&count).Error; err != nil {
		return errors.Wrap(err, "failed to check database existence")
	}
	if count > 0 {
		return nil
	}

	if err := admin.Exec(fmt.Sprintf("CREATE DATABASE %q", cfg.DBName)).Error; err != nil {
		return errors.Wrapf(err, "failed to create database %s", cfg.DBName)
	}
	logger.Info("database created", "name", cfg.DBName)
	return nil
}

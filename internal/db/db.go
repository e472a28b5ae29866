package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"pinst/internal/models"
)

func NewDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("auto migrate failed: %w", err)
	}

	return db, nil
}

// AutoMigrate накатывает схему всех моделей приложения.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Token{},
		&models.Product{},
		&models.PromoCode{},
		&models.Order{},
		&models.CustomOrder{},
		&models.ChatMessage{},
		&models.PaymentRequest{},
		&models.License{},
		&models.Transaction{},
		&models.Notification{},
	)
}

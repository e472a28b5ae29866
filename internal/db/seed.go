package db

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"pinst/internal/models"
)

// SeedAdmin создаёт учётку администратора, если администраторов ещё нет.
func SeedAdmin(db *gorm.DB, email, username, password string) error {
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.UserRoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := models.User{
		Email:    email,
		Username: username,
		Password: string(hash),
		Role:     models.UserRoleAdmin,
	}
	return db.Create(&admin).Error
}

// SeedProducts добавляет базовый каталог, если таблица пуста.
func SeedProducts(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	stock := 100
	dl := "https://cdn.example.com/downloads/netguard-pro.zip"
	products := []models.Product{
		{
			Name:        "NetGuard Pro License",
			Description: "Network monitoring suite, 1 year of updates.",
			Price:       decimal.RequireFromString("49.99"),
			Type:        models.ProductTypeLicense,
			Category:    "networking",
			InStock:     true,
			StockCount:  &stock,
			DownloadURL: &dl,
			Features:    datatypes.JSON([]byte(`["Real-time traffic analysis","Alert rules","3 activations"]`)),
		},
		{
			Name:        "NetGuard Lifetime License",
			Description: "Network monitoring suite, lifetime updates.",
			Price:       decimal.RequireFromString("149.99"),
			Type:        models.ProductTypeLicense,
			Category:    "networking",
			InStock:     true,
			DownloadURL: &dl,
			Features:    datatypes.JSON([]byte(`["Lifetime updates","Priority support"]`)),
		},
		{
			Name:        "Custom Trading Bot",
			Description: "Bespoke trading automation built to your requirements.",
			Price:       decimal.RequireFromString("500"),
			Type:        models.ProductTypeCustom,
			Category:    "automation",
			InStock:     true,
			Features:    datatypes.JSON([]byte(`["Requirements chat","Milestone delivery"]`)),
		},
	}
	return db.Create(&products).Error
}

// SeedPromoCodes добавляет демонстрационные промокоды, если таблица пуста.
func SeedPromoCodes(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.PromoCode{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	codes := []models.PromoCode{
		{
			Code:      "WELCOME10",
			Type:      models.PromoCodeTypePercentage,
			Value:     decimal.RequireFromString("10"),
			MaxUses:   1000,
			ExpiresAt: time.Now().Add(365 * 24 * time.Hour),
			IsActive:  true,
		},
		{
			Code:      "FLAT5",
			Type:      models.PromoCodeTypeFixed,
			Value:     decimal.RequireFromString("5"),
			MaxUses:   500,
			ExpiresAt: time.Now().Add(90 * 24 * time.Hour),
			IsActive:  true,
		},
	}
	return db.Create(&codes).Error
}

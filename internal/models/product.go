package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"pinst/internal/utils"
)

type ProductType string

const (
	ProductTypeLicense ProductType = "license"
	ProductTypeCustom  ProductType = "custom"
)

type Product struct {
	ID          string          `gorm:"primaryKey;size:21" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(32,8);not null" json:"price"`
	Type        ProductType     `gorm:"type:varchar(10);not null" json:"type"`
	Category    string          `gorm:"type:varchar(255);index" json:"category"`
	Image       string          `gorm:"type:varchar(512)" json:"image"`
	InStock     bool            `gorm:"not null;default:true" json:"inStock"`
	StockCount  *int            `json:"stockCount,omitempty"`
	DownloadURL *string         `gorm:"type:varchar(512)" json:"downloadUrl,omitempty"`
	Features    datatypes.JSON  `gorm:"type:json" json:"features" swaggertype:"array,string"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID, err = utils.GenerateNanoID()
	}
	return
}

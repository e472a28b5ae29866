package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"pinst/internal/utils"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// OrderItem — снимок позиции корзины на момент оформления заказа.
type OrderItem struct {
	ProductID   string          `json:"productId"`
	Name        string          `json:"name"`
	Type        ProductType     `json:"type"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	CustomSpecs string          `json:"customSpecs,omitempty"`
}

// DeliveryInfo — данные мгновенной доставки для лицензионных товаров.
type DeliveryInfo struct {
	LicenseKey  string  `json:"licenseKey"`
	DownloadURL string  `json:"downloadUrl"`
	ExpiresAt   *string `json:"expiresAt,omitempty"`
}

type Order struct {
	ID            string          `gorm:"primaryKey;size:21" json:"id"`
	UserID        string          `gorm:"size:21;not null;index" json:"userID"`
	User          User            `gorm:"foreignKey:UserID" json:"-"`
	Items         datatypes.JSON  `gorm:"type:json;not null" json:"items" swaggertype:"array,object"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(32,8);not null" json:"totalAmount"`
	Discount      decimal.Decimal `gorm:"type:decimal(32,8);not null;default:0" json:"discount"`
	PromoCode     *string         `gorm:"type:varchar(64)" json:"promoCode,omitempty"`
	Status        OrderStatus     `gorm:"type:varchar(20);not null" json:"status"`
	PaymentMethod string          `gorm:"type:varchar(20);not null;default:balance" json:"paymentMethod"`
	DeliveryInfo  datatypes.JSON  `gorm:"type:json" json:"deliveryInfo,omitempty" swaggertype:"object"`
	CreatedAt     time.Time       `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
	CompletedAt   *time.Time      `json:"completedAt,omitempty"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) (err error) {
	if o.ID == "" {
		o.ID, err = utils.GenerateNanoID()
	}
	return
}

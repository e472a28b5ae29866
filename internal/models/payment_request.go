package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"pinst/internal/utils"
)

type PaymentRequestStatus string

const (
	PaymentRequestStatusPending   PaymentRequestStatus = "pending"
	PaymentRequestStatusPaid      PaymentRequestStatus = "paid"
	PaymentRequestStatusCancelled PaymentRequestStatus = "cancelled"
)

// PaymentRequest — дополнительный счёт, выставленный администратором
// в рамках кастомного заказа, сверх исходной суммы покупки.
type PaymentRequest struct {
	ID            string               `gorm:"primaryKey;size:21" json:"id"`
	CustomOrderID string               `gorm:"size:21;not null;index" json:"customOrderID"`
	CustomOrder   CustomOrder          `gorm:"foreignKey:CustomOrderID" json:"-"`
	Amount        decimal.Decimal      `gorm:"type:decimal(32,8);not null" json:"amount"`
	Description   string               `gorm:"type:text;not null" json:"description"`
	Status        PaymentRequestStatus `gorm:"type:varchar(20);not null" json:"status"`
	PaidAt        *time.Time           `json:"paidAt,omitempty"`
	CreatedAt     time.Time            `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time            `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (p *PaymentRequest) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID, err = utils.GenerateNanoID()
	}
	return
}

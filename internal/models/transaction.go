package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"pinst/internal/utils"
)

type TransactionType string

const (
	TransactionTypeTopup    TransactionType = "topup"
	TransactionTypePurchase TransactionType = "purchase"
	TransactionTypeRefund   TransactionType = "refund"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

type Transaction struct {
	ID          string            `gorm:"primaryKey;size:21" json:"id"`
	UserID      string            `gorm:"size:21;not null;index" json:"userID"`
	User        User              `gorm:"foreignKey:UserID" json:"-"`
	Type        TransactionType   `gorm:"type:varchar(10);not null" json:"type"`
	Amount      decimal.Decimal   `gorm:"type:decimal(32,8);not null" json:"amount"`
	Description string            `gorm:"type:text" json:"description"`
	OrderID     *string           `gorm:"size:21;index" json:"orderID,omitempty"`
	Status      TransactionStatus `gorm:"type:varchar(10);not null" json:"status"`
	CreatedAt   time.Time         `gorm:"autoCreateTime;index" json:"createdAt"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == "" {
		t.ID, err = utils.GenerateNanoID()
	}
	return
}

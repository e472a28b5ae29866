package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"pinst/internal/utils"
)

type PromoCodeType string

const (
	PromoCodeTypePercentage PromoCodeType = "percentage"
	PromoCodeTypeFixed      PromoCodeType = "fixed"
)

type PromoCode struct {
	ID        string          `gorm:"primaryKey;size:21" json:"id"`
	Code      string          `gorm:"type:varchar(64);not null;unique" json:"code"`
	Type      PromoCodeType   `gorm:"type:varchar(10);not null" json:"type"`
	Value     decimal.Decimal `gorm:"type:decimal(32,8);not null" json:"value"`
	MaxUses   int             `gorm:"not null" json:"maxUses"`
	UsedCount int             `gorm:"not null;default:0" json:"usedCount"`
	ExpiresAt time.Time       `gorm:"not null" json:"expiresAt"`
	IsActive  bool            `gorm:"not null;default:true" json:"isActive"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"createdAt"`
}

func (p *PromoCode) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID, err = utils.GenerateNanoID()
	}
	return
}

// Usable сообщает, применим ли промокод в момент t.
func (p *PromoCode) Usable(t time.Time) bool {
	return p.IsActive && p.UsedCount < p.MaxUses && p.ExpiresAt.After(t)
}

// DiscountFor считает скидку для суммы subtotal. Скидка не превышает сумму.
func (p *PromoCode) DiscountFor(subtotal decimal.Decimal) decimal.Decimal {
	var d decimal.Decimal
	switch p.Type {
	case PromoCodeTypePercentage:
		d = subtotal.Mul(p.Value).Div(decimal.NewFromInt(100))
	case PromoCodeTypeFixed:
		d = p.Value
	}
	if d.GreaterThan(subtotal) {
		return subtotal
	}
	return d
}

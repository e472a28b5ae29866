package models

import (
	"time"

	"gorm.io/gorm"
	"pinst/internal/utils"
)

type CustomOrderStatus string

const (
	CustomOrderStatusChat          CustomOrderStatus = "chat"
	CustomOrderStatusSpecsApproved CustomOrderStatus = "specs_approved"
	CustomOrderStatusInDevelopment CustomOrderStatus = "in_development"
	CustomOrderStatusCompleted     CustomOrderStatus = "completed"
)

// customOrderTransitions — таблица разрешённых переходов статуса.
// Статус движется только вперёд по одному шагу, "completed" — терминальный.
var customOrderTransitions = map[CustomOrderStatus]CustomOrderStatus{
	CustomOrderStatusChat:          CustomOrderStatusSpecsApproved,
	CustomOrderStatusSpecsApproved: CustomOrderStatusInDevelopment,
	CustomOrderStatusInDevelopment: CustomOrderStatusCompleted,
}

// CanTransitionTo сообщает, разрешён ли переход из статуса s в next.
func (s CustomOrderStatus) CanTransitionTo(next CustomOrderStatus) bool {
	return customOrderTransitions[s] == next
}

// IsValid проверяет, что значение входит в перечень статусов.
func (s CustomOrderStatus) IsValid() bool {
	switch s {
	case CustomOrderStatusChat, CustomOrderStatusSpecsApproved,
		CustomOrderStatusInDevelopment, CustomOrderStatusCompleted:
		return true
	}
	return false
}

type CustomOrder struct {
	ID             string            `gorm:"primaryKey;size:21" json:"id"`
	OrderID        string            `gorm:"size:21;not null;index" json:"orderID"`
	Order          Order             `gorm:"foreignKey:OrderID" json:"-"`
	UserID         string            `gorm:"size:21;not null;index" json:"userID"`
	User           User              `gorm:"foreignKey:UserID" json:"-"`
	ProductID      string            `gorm:"size:21;not null" json:"productID"`
	Product        Product           `gorm:"foreignKey:ProductID" json:"-"`
	Status         CustomOrderStatus `gorm:"type:varchar(20);not null" json:"status"`
	Specifications string            `gorm:"type:text;not null" json:"specifications"`
	CompletionInfo *string           `gorm:"type:text" json:"completionInfo,omitempty"`
	CreatedAt      time.Time         `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time         `gorm:"autoUpdateTime" json:"updatedAt"`
	CompletedAt    *time.Time        `json:"completedAt,omitempty"`
}

func (o *CustomOrder) BeforeCreate(tx *gorm.DB) (err error) {
	if o.ID == "" {
		o.ID, err = utils.GenerateNanoID()
	}
	return
}

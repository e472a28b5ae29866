package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
	"pinst/internal/utils"
)

// Notification представляет уведомление
// swagger:model
type Notification struct {
	ID        string          `gorm:"primaryKey;size:21" json:"id"`
	UserID    string          `gorm:"size:21;not null;index" json:"userID"`
	Type      string          `gorm:"type:varchar(255);not null" json:"type"`
	Payload   json.RawMessage `gorm:"type:jsonb" json:"payload" swaggertype:"object"`
	LinkTo    string          `gorm:"type:varchar(512)" json:"linkTo"`
	SentAt    *time.Time      `gorm:"index" json:"sentAt"`
	ReadAt    *time.Time      `gorm:"index" json:"readAt"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == "" {
		n.ID, err = utils.GenerateNanoID()
	}
	return
}

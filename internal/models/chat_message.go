package models

import (
	"time"

	"gorm.io/gorm"
	"pinst/internal/utils"
)

type MessageType string

const (
	MessageTypeMessage        MessageType = "message"
	MessageTypePaymentRequest MessageType = "payment_request"
	MessageTypeSystem         MessageType = "system"
)

// SystemSenderID — отправитель автоматически созданных сообщений.
const SystemSenderID = "system"

// ChatMessage — запись в переписке кастомного заказа.
// Сообщения никогда не редактируются и не удаляются.
type ChatMessage struct {
	ID            string      `gorm:"primaryKey;size:21" json:"id"`
	CustomOrderID string      `gorm:"size:21;not null;index" json:"customOrderID"`
	CustomOrder   CustomOrder `gorm:"foreignKey:CustomOrderID" json:"-"`
	SenderID      string      `gorm:"size:21;not null" json:"senderID"`
	SenderRole    UserRole    `gorm:"type:varchar(10);not null" json:"senderRole"`
	SenderName    string      `gorm:"-" json:"senderName,omitempty"`
	Message       string      `gorm:"type:text;not null" json:"message"`
	Type          MessageType `gorm:"type:varchar(20);not null" json:"type"`
	CreatedAt     time.Time   `gorm:"autoCreateTime;index" json:"createdAt"`
}

func (m *ChatMessage) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID, err = utils.GenerateNanoID()
	}
	return
}

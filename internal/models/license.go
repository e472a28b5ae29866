package models

import (
	"time"

	"gorm.io/gorm"
	"pinst/internal/utils"
)

type License struct {
	ID                 string     `gorm:"primaryKey;size:21" json:"id"`
	OrderID            string     `gorm:"size:21;not null;index" json:"orderID"`
	Order              Order      `gorm:"foreignKey:OrderID" json:"-"`
	UserID             string     `gorm:"size:21;not null;index" json:"userID"`
	User               User       `gorm:"foreignKey:UserID" json:"-"`
	ProductID          string     `gorm:"size:21;not null" json:"productID"`
	Product            Product    `gorm:"foreignKey:ProductID" json:"-"`
	LicenseKey         string     `gorm:"type:varchar(255);not null;unique" json:"licenseKey"`
	DownloadURL        string     `gorm:"type:varchar(512);not null" json:"downloadUrl"`
	ExpiresAt          *time.Time `json:"expiresAt,omitempty"`
	IsActive           bool       `gorm:"not null;default:true" json:"isActive"`
	MaxActivations     int        `gorm:"not null;default:3" json:"maxActivations"`
	CurrentActivations int        `gorm:"not null;default:0" json:"currentActivations"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"createdAt"`
}

func (l *License) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == "" {
		l.ID, err = utils.GenerateNanoID()
	}
	return
}

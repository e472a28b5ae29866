package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"pinst/internal/utils"
)

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

type User struct {
	ID        string          `gorm:"primaryKey;size:21" json:"id"`
	Email     string          `gorm:"type:varchar(255);not null;unique" json:"email"`
	Username  string          `gorm:"type:varchar(255);not null;unique" json:"username"`
	Password  string          `gorm:"type:varchar(255);not null" json:"-"`
	Role      UserRole        `gorm:"type:varchar(10);not null;default:user" json:"role"`
	Balance   decimal.Decimal `gorm:"type:decimal(32,8);not null;default:0" json:"balance"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID, err = utils.GenerateNanoID()
	}
	return
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

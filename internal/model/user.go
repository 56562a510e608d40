package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	UserRoleAdmin   UserRole = "admin"
	UserRoleManager UserRole = "manager"
	UserRoleUser    UserRole = "user"
)

func (r UserRole) Valid() bool {
	switch r {
	case UserRoleAdmin, UserRoleManager, UserRoleUser:
		return true
	}
	return false
}

// users: операторы дашборда.
type User struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	Username string   `gorm:"type:varchar(255);not null;uniqueIndex:ux_users_username,where:deleted_at IS NULL" json:"username"`
	Password string   `gorm:"type:varchar(255);not null" json:"-"` // bcrypt-хэш
	Role     UserRole `gorm:"type:varchar(32);not null" json:"role"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(*gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID, err = NewID()
	}
	return err
}

// customers
type Customer struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	Name  string `gorm:"type:varchar(255);not null;index" json:"name"`
	Phone string `gorm:"type:varchar(32)" json:"phone"`
	Notes string `gorm:"type:text" json:"notes"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Customer) BeforeCreate(*gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = NewID()
	}
	return err
}

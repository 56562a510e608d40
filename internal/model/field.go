package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Field: игровое поле/корт площадки.
type Field struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	// Имя уникально только среди неудалённых полей.
	Name        string `gorm:"type:varchar(255);not null;uniqueIndex:ux_fields_name,where:deleted_at IS NULL" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	IsActive    bool   `gorm:"not null" json:"is_active"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Schedules []Schedule `gorm:"foreignKey:FieldID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"schedules,omitempty"`
	Packages  []Package  `gorm:"foreignKey:FieldID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"packages,omitempty"`
}

func (f *Field) BeforeCreate(*gorm.DB) (err error) {
	if f.ID == uuid.Nil {
		f.ID, err = NewID()
	}
	return err
}

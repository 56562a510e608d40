package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// packages: справочные пакеты цен (например, 10 слотов со скидкой).
type Package struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	FieldID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:ux_packages_field_name,where:deleted_at IS NULL" json:"field_id"`
	Name    string    `gorm:"type:varchar(255);not null;uniqueIndex:ux_packages_field_name,where:deleted_at IS NULL" json:"name"`

	// Сколько слотов покрывает пакет.
	DurationSlots int    `gorm:"not null" json:"duration_slots"`
	Price         int64  `gorm:"type:bigint;not null" json:"price"`
	Description   string `gorm:"type:text" json:"description"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Field *Field `gorm:"foreignKey:FieldID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"field,omitempty"`
}

func (p *Package) BeforeCreate(*gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = NewID()
	}
	return err
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// memberships: еженедельная бронь одного слота на диапазон дат.
// Занимает каждую дату из [StartDate, EndDate], чей ISO-день недели равен BookingDay.
type Membership struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	Name  string `gorm:"type:varchar(255);not null" json:"name"`
	Phone string `gorm:"type:varchar(32);not null" json:"phone"`

	FieldID    uuid.UUID `gorm:"type:uuid;not null;index" json:"field_id"`
	ScheduleID uuid.UUID `gorm:"type:uuid;not null;index:ix_memberships_schedule_day" json:"schedule_id"`

	// 1 = понедельник, 7 = воскресенье.
	BookingDay int `gorm:"type:smallint;not null;index:ix_memberships_schedule_day" json:"booking_day"`

	StartDate datatypes.Date `gorm:"type:date;not null" json:"start_date"`
	EndDate   datatypes.Date `gorm:"type:date;not null" json:"end_date"`

	Total int64  `gorm:"type:bigint;not null" json:"total"`
	Notes string `gorm:"type:text" json:"notes"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Field    *Field    `gorm:"foreignKey:FieldID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"field,omitempty"`
	Schedule *Schedule `gorm:"foreignKey:ScheduleID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"schedule,omitempty"`
}

func (m *Membership) BeforeCreate(*gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID, err = NewID()
	}
	return err
}

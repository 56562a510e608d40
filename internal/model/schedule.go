package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Статус шаблона слота на уровне каталога (не зависит от даты).
type ScheduleStatus string

const (
	ScheduleStatusAvailable   ScheduleStatus = "available"
	ScheduleStatusBooked      ScheduleStatus = "booked"
	ScheduleStatusMaintenance ScheduleStatus = "maintenance"
)

func (s ScheduleStatus) Valid() bool {
	switch s {
	case ScheduleStatusAvailable, ScheduleStatusBooked, ScheduleStatusMaintenance:
		return true
	}
	return false
}

// schedules: ежедневный шаблон слота поля, повторяется каждый календарный день.
type Schedule struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	FieldID uuid.UUID `gorm:"type:uuid;not null;index" json:"field_id"`

	StartTime TimeOfDay `gorm:"not null;index" json:"start_time"`
	EndTime   TimeOfDay `gorm:"not null" json:"end_time"`

	Status ScheduleStatus `gorm:"type:varchar(32);not null;default:'available'" json:"status"`
	Price  int64          `gorm:"type:bigint;not null" json:"price"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Field *Field `gorm:"foreignKey:FieldID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"field,omitempty"`
}

func (s *Schedule) BeforeCreate(*gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID, err = NewID()
	}
	return err
}

// TimeSlot: подпись слота в матрицах, например "08:00 - 09:00".
func (s *Schedule) TimeSlot() string {
	return s.StartTime.Short() + " - " + s.EndTime.Short()
}

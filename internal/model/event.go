package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Тип события аудита.
type EventType string

const (
	EventTypeBookingCreated    EventType = "booking_created"
	EventTypeBookingUpdated    EventType = "booking_updated"
	EventTypeBookingDeleted    EventType = "booking_deleted"
	EventTypeMembershipCreated EventType = "membership_created"
	EventTypeMembershipUpdated EventType = "membership_updated"
	EventTypeMembershipDeleted EventType = "membership_deleted"
	EventTypeSchedulesReplaced EventType = "schedules_replaced"
)

// events: события аудита
type Event struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	EventType EventType `gorm:"type:varchar(64);not null;index" json:"event_type"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`

	// Кто совершил действие (если запрос аутентифицирован).
	UserID *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`

	BookingID    *uuid.UUID `gorm:"type:uuid;index" json:"booking_id,omitempty"`
	MembershipID *uuid.UUID `gorm:"type:uuid;index" json:"membership_id,omitempty"`
	FieldID      *uuid.UUID `gorm:"type:uuid;index" json:"field_id,omitempty"`

	Details string `gorm:"type:text" json:"details"`
}

func (e *Event) BeforeCreate(*gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID, err = NewID()
	}
	return err
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusDP    BookingStatus = "dp"    // внесена предоплата
	BookingStatusLunas BookingStatus = "lunas" // оплачено полностью
)

func (s BookingStatus) Valid() bool {
	return s == BookingStatusDP || s == BookingStatusLunas
}

// booking_headers: одна транзакция клиента, покрывает один или несколько слотов.
type BookingHeader struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	CustomerID uuid.UUID `gorm:"type:uuid;not null;index" json:"customer_id"`

	// Самая ранняя дата среди деталей.
	BookingDate datatypes.Date `gorm:"type:date;not null;index" json:"booking_date"`

	Subtotal int64         `gorm:"type:bigint;not null" json:"subtotal"`
	Discount int64         `gorm:"type:bigint;not null;default:0" json:"discount"`
	Total    int64         `gorm:"type:bigint;not null" json:"total"`
	Status   BookingStatus `gorm:"type:varchar(16);not null;index" json:"status"`
	Notes    string        `gorm:"type:text" json:"notes"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Customer *Customer      `gorm:"foreignKey:CustomerID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"customer,omitempty"`
	Details  []BookingDetail `gorm:"foreignKey:BookingHeaderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"details,omitempty"`
}

func (h *BookingHeader) BeforeCreate(*gorm.DB) (err error) {
	if h.ID == uuid.Nil {
		h.ID, err = NewID()
	}
	return err
}

// booking_details: занятость одного слота (schedule, дата).
// Пара (schedule_id, booking_date) уникальна среди неудалённых строк.
type BookingDetail struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	BookingHeaderID uuid.UUID      `gorm:"type:uuid;not null;index" json:"booking_header_id"`
	ScheduleID      uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:ux_booking_details_slot,where:deleted_at IS NULL" json:"schedule_id"`
	BookingDate     datatypes.Date `gorm:"type:date;not null;index;uniqueIndex:ux_booking_details_slot,where:deleted_at IS NULL" json:"booking_date"`

	// Цена расписания на момент бронирования, дальше не меняется.
	Price int64 `gorm:"type:bigint;not null" json:"price"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Header   *BookingHeader `gorm:"foreignKey:BookingHeaderID" json:"-"`
	Schedule *Schedule      `gorm:"foreignKey:ScheduleID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"schedule,omitempty"`
}

func (d *BookingDetail) BeforeCreate(*gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID, err = NewID()
	}
	return err
}

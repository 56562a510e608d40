package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Leganyst/field-booking/internal/model"
)

// Фильтр деталей для матриц и повестки дня. Даты включительно.
type DetailFilter struct {
	ScheduleIDs []uuid.UUID
	From, To    time.Time
}

type BookingFilter struct {
	CustomerID *uuid.UUID
	Status     model.BookingStatus
	DateFrom   *time.Time
	DateTo     *time.Time
	// Поиск по имени клиента.
	Search string
}

type BookingRepository interface {
	WithTx(tx *gorm.DB) BookingRepository

	CreateHeader(ctx context.Context, h *model.BookingHeader) error
	CreateDetails(ctx context.Context, details []model.BookingDetail) error
	// Заголовок с клиентом и деталями (детали вместе с расписанием и полем).
	GetHeader(ctx context.Context, id uuid.UUID) (*model.BookingHeader, error)
	UpdateHeader(ctx context.Context, h *model.BookingHeader) error
	DeleteHeader(ctx context.Context, id uuid.UUID) error
	// Мягко удаляет все детали заголовка, освобождая слоты.
	DeleteDetails(ctx context.Context, headerID uuid.UUID) error

	// Занят ли слот (schedule, дата) неудалённой деталью другого заголовка.
	SlotTaken(ctx context.Context, scheduleID uuid.UUID, date time.Time, excludeHeader *uuid.UUID) (bool, error)
	// Сумма снапшотов цен по деталям заголовка.
	SumDetailPrices(ctx context.Context, headerID uuid.UUID) (int64, error)

	ListDetails(ctx context.Context, filter DetailFilter) ([]model.BookingDetail, error)
	ListHeaders(ctx context.Context, filter BookingFilter, limit, offset int) ([]model.BookingHeader, int64, error)
}

type GormBookingRepository struct {
	db *gorm.DB
}

func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

func (r *GormBookingRepository) WithTx(tx *gorm.DB) BookingRepository {
	return &GormBookingRepository{db: tx}
}

func unscoped(db *gorm.DB) *gorm.DB { return db.Unscoped() }

// Расписание и клиент могли быть удалены позже брони, история от этого не пропадает.
func preloadDetailRefs(q *gorm.DB, prefix string) *gorm.DB {
	return q.
		Preload(prefix+"Schedule", unscoped).
		Preload(prefix+"Schedule.Field", unscoped)
}

func (r *GormBookingRepository) CreateHeader(ctx context.Context, h *model.BookingHeader) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(h).Error
}

func (r *GormBookingRepository) CreateDetails(ctx context.Context, details []model.BookingDetail) error {
	if len(details) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(&details).Error
}

func (r *GormBookingRepository) GetHeader(ctx context.Context, id uuid.UUID) (*model.BookingHeader, error) {
	var h model.BookingHeader
	q := r.db.WithContext(ctx).
		Preload("Customer", unscoped).
		Preload("Details", func(db *gorm.DB) *gorm.DB {
			return db.Order("booking_date ASC")
		})
	if err := preloadDetailRefs(q, "Details.").First(&h, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *GormBookingRepository) UpdateHeader(ctx context.Context, h *model.BookingHeader) error {
	return r.db.WithContext(ctx).
		Model(&model.BookingHeader{ID: h.ID}).
		Select("customer_id", "booking_date", "subtotal", "discount", "total", "status", "notes").
		Updates(h).Error
}

func (r *GormBookingRepository) DeleteHeader(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.BookingHeader{}, "id = ?", id).Error
}

func (r *GormBookingRepository) DeleteDetails(ctx context.Context, headerID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("booking_header_id = ?", headerID).
		Delete(&model.BookingDetail{}).Error
}

func (r *GormBookingRepository) SlotTaken(ctx context.Context, scheduleID uuid.UUID, date time.Time, excludeHeader *uuid.UUID) (bool, error) {
	var n int64
	q := r.db.WithContext(ctx).
		Model(&model.BookingDetail{}).
		Where("schedule_id = ? AND booking_date = ?", scheduleID, datatypes.Date(date))
	if err := excludeID(q, "booking_header_id", excludeHeader).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormBookingRepository) SumDetailPrices(ctx context.Context, headerID uuid.UUID) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).
		Model(&model.BookingDetail{}).
		Where("booking_header_id = ?", headerID).
		Select("COALESCE(SUM(price), 0)").
		Scan(&sum).Error
	return sum, err
}

func (r *GormBookingRepository) ListDetails(ctx context.Context, filter DetailFilter) ([]model.BookingDetail, error) {
	q := r.db.WithContext(ctx).
		Model(&model.BookingDetail{}).
		Where("booking_date BETWEEN ? AND ?", datatypes.Date(filter.From), datatypes.Date(filter.To))
	if len(filter.ScheduleIDs) > 0 {
		q = q.Where("schedule_id IN ?", filter.ScheduleIDs)
	}
	q = q.Preload("Header").Preload("Header.Customer", unscoped)

	var details []model.BookingDetail
	if err := preloadDetailRefs(q, "").Order("booking_date ASC").Find(&details).Error; err != nil {
		return nil, err
	}
	return details, nil
}

func (r *GormBookingRepository) ListHeaders(ctx context.Context, filter BookingFilter, limit, offset int) ([]model.BookingHeader, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.BookingHeader{})
	if filter.CustomerID != nil {
		q = q.Where("booking_headers.customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != "" {
		q = q.Where("booking_headers.status = ?", filter.Status)
	}
	if filter.DateFrom != nil {
		q = q.Where("booking_headers.booking_date >= ?", datatypes.Date(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		q = q.Where("booking_headers.booking_date <= ?", datatypes.Date(*filter.DateTo))
	}
	if filter.Search != "" {
		q = q.Joins("JOIN customers ON customers.id = booking_headers.customer_id").
			Where("LOWER(customers.name) LIKE ?", likePattern(filter.Search))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	q = q.Preload("Customer", unscoped).Preload("Details")
	var headers []model.BookingHeader
	err := preloadDetailRefs(q, "Details.").
		Order("booking_headers.booking_date DESC, booking_headers.created_at DESC").
		Find(&headers).Error
	if err != nil {
		return nil, 0, err
	}
	return headers, total, nil
}

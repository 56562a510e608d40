package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Leganyst/field-booking/internal/calendar"
	"github.com/Leganyst/field-booking/internal/model"
)

type MembershipFilter struct {
	FieldID    *uuid.UUID
	BookingDay int
	// Диапазон пересекается с [DateFrom, DateTo].
	DateFrom *time.Time
	DateTo   *time.Time
	// Поиск по имени и телефону.
	Search string
}

type MembershipRepository interface {
	WithTx(tx *gorm.DB) MembershipRepository

	CreateBatch(ctx context.Context, ms []model.Membership) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Membership, error)
	Update(ctx context.Context, m *model.Membership) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Есть ли неудалённое членство на тот же слот и день недели с пересекающимся диапазоном.
	HasOverlap(ctx context.Context, scheduleID uuid.UUID, bookingDay int, start, end time.Time, exclude *uuid.UUID) (bool, error)

	// Членства, занимающие конкретную дату.
	ListActiveOn(ctx context.Context, date time.Time, scheduleIDs []uuid.UUID) ([]model.Membership, error)
	// Членства, диапазон которых пересекается с [from, to]; день недели проверяет вызывающий.
	ListInRange(ctx context.Context, from, to time.Time, scheduleIDs []uuid.UUID) ([]model.Membership, error)
	// Членства на день недели, действующие на дату ref.
	ListByDay(ctx context.Context, bookingDay int, ref time.Time) ([]model.Membership, error)

	List(ctx context.Context, filter MembershipFilter, limit, offset int) ([]model.Membership, int64, error)
}

type GormMembershipRepository struct {
	db *gorm.DB
}

func NewGormMembershipRepository(db *gorm.DB) *GormMembershipRepository {
	return &GormMembershipRepository{db: db}
}

func (r *GormMembershipRepository) WithTx(tx *gorm.DB) MembershipRepository {
	return &GormMembershipRepository{db: tx}
}

func (r *GormMembershipRepository) CreateBatch(ctx context.Context, ms []model.Membership) error {
	if len(ms) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(&ms).Error
}

func (r *GormMembershipRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Membership, error) {
	var m model.Membership
	err := r.db.WithContext(ctx).
		Preload("Field", unscoped).
		Preload("Schedule", unscoped).
		First(&m, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *GormMembershipRepository) Update(ctx context.Context, m *model.Membership) error {
	return r.db.WithContext(ctx).
		Model(&model.Membership{ID: m.ID}).
		Select("name", "phone", "field_id", "schedule_id", "booking_day", "start_date", "end_date", "total", "notes").
		Updates(m).Error
}

func (r *GormMembershipRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Membership{}, "id = ?", id).Error
}

func (r *GormMembershipRepository) HasOverlap(ctx context.Context, scheduleID uuid.UUID, bookingDay int, start, end time.Time, exclude *uuid.UUID) (bool, error) {
	var n int64
	q := r.db.WithContext(ctx).
		Model(&model.Membership{}).
		Where("schedule_id = ? AND booking_day = ?", scheduleID, bookingDay).
		Where("start_date <= ? AND end_date >= ?", datatypes.Date(end), datatypes.Date(start))
	if err := excludeID(q, "id", exclude).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormMembershipRepository) withRefs(q *gorm.DB) *gorm.DB {
	return q.Preload("Schedule", unscoped).Preload("Schedule.Field", unscoped)
}

func (r *GormMembershipRepository) ListActiveOn(ctx context.Context, date time.Time, scheduleIDs []uuid.UUID) ([]model.Membership, error) {
	d := datatypes.Date(date)
	q := r.db.WithContext(ctx).
		Where("booking_day = ? AND start_date <= ? AND end_date >= ?", calendar.ISOWeekday(date), d, d)
	if len(scheduleIDs) > 0 {
		q = q.Where("schedule_id IN ?", scheduleIDs)
	}

	var ms []model.Membership
	if err := r.withRefs(q).Find(&ms).Error; err != nil {
		return nil, err
	}
	return ms, nil
}

func (r *GormMembershipRepository) ListInRange(ctx context.Context, from, to time.Time, scheduleIDs []uuid.UUID) ([]model.Membership, error) {
	q := r.db.WithContext(ctx).
		Where("start_date <= ? AND end_date >= ?", datatypes.Date(to), datatypes.Date(from))
	if len(scheduleIDs) > 0 {
		q = q.Where("schedule_id IN ?", scheduleIDs)
	}

	var ms []model.Membership
	if err := q.Order("start_date ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	return ms, nil
}

func (r *GormMembershipRepository) ListByDay(ctx context.Context, bookingDay int, ref time.Time) ([]model.Membership, error) {
	var ms []model.Membership
	err := r.db.WithContext(ctx).
		Where("booking_day = ? AND start_date <= ? AND end_date >= ?", bookingDay, datatypes.Date(ref), datatypes.Date(ref)).
		Order("start_date ASC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	return ms, nil
}

func (r *GormMembershipRepository) List(ctx context.Context, filter MembershipFilter, limit, offset int) ([]model.Membership, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Membership{})
	if filter.FieldID != nil {
		q = q.Where("field_id = ?", *filter.FieldID)
	}
	if filter.BookingDay != 0 {
		q = q.Where("booking_day = ?", filter.BookingDay)
	}
	if filter.DateFrom != nil {
		q = q.Where("end_date >= ?", datatypes.Date(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		q = q.Where("start_date <= ?", datatypes.Date(*filter.DateTo))
	}
	if filter.Search != "" {
		p := likePattern(filter.Search)
		q = q.Where("LOWER(name) LIKE ? OR phone LIKE ?", p, p)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	var ms []model.Membership
	err := r.withRefs(q).
		Order("start_date DESC, created_at DESC").
		Find(&ms).Error
	if err != nil {
		return nil, 0, err
	}
	return ms, total, nil
}

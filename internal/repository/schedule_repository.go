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

type ScheduleFilter struct {
	FieldID *uuid.UUID
	Status  model.ScheduleStatus
}

type ScheduleRepository interface {
	// Копия репозитория, работающая внутри транзакции tx.
	WithTx(tx *gorm.DB) ScheduleRepository

	GetByID(ctx context.Context, id uuid.UUID) (*model.Schedule, error)
	// Расписания по ID вместе с полем; отсутствующие/удалённые просто не попадут в результат.
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Schedule, error)
	// То же, но с блокировкой строк (SELECT ... FOR UPDATE) до конца транзакции.
	LockByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Schedule, error)
	// Расписания для матриц: только с живым полем, по возрастанию start_time.
	ListWithField(ctx context.Context, fieldID *uuid.UUID) ([]model.Schedule, error)
	List(ctx context.Context, filter ScheduleFilter, limit, offset int) ([]model.Schedule, int64, error)

	CreateBatch(ctx context.Context, schedules []model.Schedule) error
	Update(ctx context.Context, s *model.Schedule) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Мягко удаляет все расписания поля, возвращает количество.
	DeleteByField(ctx context.Context, fieldID uuid.UUID) (int64, error)
	// Есть ли неудалённые брони на расписание начиная с даты from.
	HasBookingsFrom(ctx context.Context, id uuid.UUID, from time.Time) (bool, error)
}

type GormScheduleRepository struct {
	db *gorm.DB
}

func NewGormScheduleRepository(db *gorm.DB) *GormScheduleRepository {
	return &GormScheduleRepository{db: db}
}

func (r *GormScheduleRepository) WithTx(tx *gorm.DB) ScheduleRepository {
	return &GormScheduleRepository{db: tx}
}

func (r *GormScheduleRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Schedule, error) {
	var s model.Schedule
	if err := r.db.WithContext(ctx).Preload("Field").First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormScheduleRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Schedule, error) {
	if len(ids) == 0 {
		return []model.Schedule{}, nil
	}
	var schedules []model.Schedule
	err := r.db.WithContext(ctx).
		Preload("Field").
		Where("id IN ?", ids).
		Find(&schedules).Error
	if err != nil {
		return nil, err
	}
	return schedules, nil
}

func (r *GormScheduleRepository) LockByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Schedule, error) {
	if len(ids) == 0 {
		return []model.Schedule{}, nil
	}
	var schedules []model.Schedule
	// Порядок по id: чтобы конкурентные транзакции брали блокировки одинаково.
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&schedules).Error
	if err != nil {
		return nil, err
	}
	return schedules, nil
}

func (r *GormScheduleRepository) ListWithField(ctx context.Context, fieldID *uuid.UUID) ([]model.Schedule, error) {
	q := r.db.WithContext(ctx).
		Model(&model.Schedule{}).
		Joins("JOIN fields ON fields.id = schedules.field_id AND fields.deleted_at IS NULL").
		Preload("Field")
	if fieldID != nil {
		q = q.Where("schedules.field_id = ?", *fieldID)
	}

	var schedules []model.Schedule
	if err := q.Order("schedules.start_time ASC").Find(&schedules).Error; err != nil {
		return nil, err
	}
	return schedules, nil
}

func (r *GormScheduleRepository) List(ctx context.Context, filter ScheduleFilter, limit, offset int) ([]model.Schedule, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Schedule{})
	if filter.FieldID != nil {
		q = q.Where("field_id = ?", *filter.FieldID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	var schedules []model.Schedule
	if err := q.Preload("Field").Order("start_time ASC").Find(&schedules).Error; err != nil {
		return nil, 0, err
	}
	return schedules, total, nil
}

func (r *GormScheduleRepository) CreateBatch(ctx context.Context, schedules []model.Schedule) error {
	if len(schedules) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit("Field").Create(&schedules).Error
}

func (r *GormScheduleRepository) Update(ctx context.Context, s *model.Schedule) error {
	return r.db.WithContext(ctx).
		Model(&model.Schedule{ID: s.ID}).
		Select("start_time", "end_time", "status", "price").
		Updates(s).Error
}

func (r *GormScheduleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Schedule{}, "id = ?", id).Error
}

func (r *GormScheduleRepository) DeleteByField(ctx context.Context, fieldID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("field_id = ?", fieldID).Delete(&model.Schedule{})
	return res.RowsAffected, res.Error
}

func (r *GormScheduleRepository) HasBookingsFrom(ctx context.Context, id uuid.UUID, from time.Time) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.BookingDetail{}).
		Where("schedule_id = ? AND booking_date >= ?", id, datatypes.Date(from)).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/field-booking/internal/model"
)

type FieldFilter struct {
	Search     string
	ActiveOnly bool
}

type FieldRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Field, error)
	Create(ctx context.Context, field *model.Field) error
	Update(ctx context.Context, field *model.Field) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Занято ли имя среди неудалённых полей (кроме exclude).
	NameTaken(ctx context.Context, name string, exclude *uuid.UUID) (bool, error)
	List(ctx context.Context, filter FieldFilter, limit, offset int) ([]model.Field, int64, error)
}

type GormFieldRepository struct {
	db *gorm.DB
}

func NewGormFieldRepository(db *gorm.DB) *GormFieldRepository {
	return &GormFieldRepository{db: db}
}

func (r *GormFieldRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Field, error) {
	var f model.Field
	if err := r.db.WithContext(ctx).First(&f, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *GormFieldRepository) Create(ctx context.Context, field *model.Field) error {
	return r.db.WithContext(ctx).Create(field).Error
}

func (r *GormFieldRepository) Update(ctx context.Context, field *model.Field) error {
	// Select нужен, чтобы is_active=false тоже записался.
	return r.db.WithContext(ctx).
		Model(&model.Field{ID: field.ID}).
		Select("name", "description", "is_active").
		Updates(field).Error
}

func (r *GormFieldRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Field{}, "id = ?", id).Error
}

func (r *GormFieldRepository) NameTaken(ctx context.Context, name string, exclude *uuid.UUID) (bool, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&model.Field{}).Where("name = ?", name)
	if err := excludeID(q, "id", exclude).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormFieldRepository) List(ctx context.Context, filter FieldFilter, limit, offset int) ([]model.Field, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Field{})
	if filter.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	if filter.Search != "" {
		q = q.Where("LOWER(name) LIKE ?", likePattern(filter.Search))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	var fields []model.Field
	if err := q.Order("name ASC").Find(&fields).Error; err != nil {
		return nil, 0, err
	}
	return fields, total, nil
}

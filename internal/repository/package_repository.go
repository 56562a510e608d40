package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/field-booking/internal/model"
)

type PackageFilter struct {
	FieldID *uuid.UUID
	Search  string
}

type PackageRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Package, error)
	Create(ctx context.Context, pkg *model.Package) error
	Update(ctx context.Context, pkg *model.Package) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Имя пакета уникально в пределах поля.
	NameTaken(ctx context.Context, fieldID uuid.UUID, name string, exclude *uuid.UUID) (bool, error)
	List(ctx context.Context, filter PackageFilter, limit, offset int) ([]model.Package, int64, error)
}

type GormPackageRepository struct {
	db *gorm.DB
}

func NewGormPackageRepository(db *gorm.DB) *GormPackageRepository {
	return &GormPackageRepository{db: db}
}

func (r *GormPackageRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Package, error) {
	var p model.Package
	if err := r.db.WithContext(ctx).Preload("Field").First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormPackageRepository) Create(ctx context.Context, pkg *model.Package) error {
	return r.db.WithContext(ctx).Omit("Field").Create(pkg).Error
}

func (r *GormPackageRepository) Update(ctx context.Context, pkg *model.Package) error {
	return r.db.WithContext(ctx).
		Model(&model.Package{ID: pkg.ID}).
		Select("field_id", "name", "duration_slots", "price", "description").
		Updates(pkg).Error
}

func (r *GormPackageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Package{}, "id = ?", id).Error
}

func (r *GormPackageRepository) NameTaken(ctx context.Context, fieldID uuid.UUID, name string, exclude *uuid.UUID) (bool, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&model.Package{}).
		Where("field_id = ? AND name = ?", fieldID, name)
	if err := excludeID(q, "id", exclude).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormPackageRepository) List(ctx context.Context, filter PackageFilter, limit, offset int) ([]model.Package, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Package{})
	if filter.FieldID != nil {
		q = q.Where("field_id = ?", *filter.FieldID)
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

	var pkgs []model.Package
	if err := q.Preload("Field").Order("name ASC").Find(&pkgs).Error; err != nil {
		return nil, 0, err
	}
	return pkgs, total, nil
}

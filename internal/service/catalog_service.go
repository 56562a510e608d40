package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Leganyst/field-booking/internal/calendar"
	"github.com/Leganyst/field-booking/internal/model"
	"github.com/Leganyst/field-booking/internal/repository"
)

type FieldInput struct {
	Name        string
	Description string
	IsActive    bool
}

type CustomerInput struct {
	Name  string
	Phone string
	Notes string
}

type PackageInput struct {
	FieldID       uuid.UUID
	Name          string
	DurationSlots int
	Price         int64
	Description   string
}

// CatalogService ведёт справочники полей, клиентов и пакетов.
type CatalogService struct {
	fieldRepo    repository.FieldRepository
	customerRepo repository.CustomerRepository
	packageRepo  repository.PackageRepository
	logger       *zap.Logger
}

func NewCatalogService(
	fieldRepo repository.FieldRepository,
	customerRepo repository.CustomerRepository,
	packageRepo repository.PackageRepository,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{
		fieldRepo:    fieldRepo,
		customerRepo: customerRepo,
		packageRepo:  packageRepo,
		logger:       logger,
	}
}

// uniqueRace: проверка имени прошла, но индекс сработал при записи.
func uniqueRace(err error, field, msg string) error {
	if isConstraintRace(err) {
		return invalid(field, "%s", msg)
	}
	return err
}

// ---- fields ----

func (in *FieldInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return invalid("name", "is required")
	}
	if len(in.Name) > 255 {
		return invalid("name", "must be at most 255 characters")
	}
	return nil
}

func (s *CatalogService) CreateField(ctx context.Context, in FieldInput) (*model.Field, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	taken, err := s.fieldRepo.NameTaken(ctx, in.Name, nil)
	if err != nil {
		return nil, fmt.Errorf("check field name: %w", err)
	}
	if taken {
		return nil, invalid("name", "has already been taken")
	}

	f := &model.Field{Name: in.Name, Description: in.Description, IsActive: in.IsActive}
	if err := s.fieldRepo.Create(ctx, f); err != nil {
		return nil, uniqueRace(err, "name", "has already been taken")
	}
	s.logger.Info("field created", zap.String("field_id", f.ID.String()), zap.String("name", f.Name))
	return f, nil
}

func (s *CatalogService) GetField(ctx context.Context, id uuid.UUID) (*model.Field, error) {
	f, err := s.fieldRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "field", id)
	}
	return f, nil
}

func (s *CatalogService) UpdateField(ctx context.Context, id uuid.UUID, in FieldInput) (*model.Field, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	f, err := s.GetField(ctx, id)
	if err != nil {
		return nil, err
	}
	taken, err := s.fieldRepo.NameTaken(ctx, in.Name, &id)
	if err != nil {
		return nil, fmt.Errorf("check field name: %w", err)
	}
	if taken {
		return nil, invalid("name", "has already been taken")
	}

	f.Name, f.Description, f.IsActive = in.Name, in.Description, in.IsActive
	if err := s.fieldRepo.Update(ctx, f); err != nil {
		return nil, uniqueRace(err, "name", "has already been taken")
	}
	return f, nil
}

// DeleteField мягко удаляет поле; его расписания пропадают из матриц вместе с ним.
func (s *CatalogService) DeleteField(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetField(ctx, id); err != nil {
		return err
	}
	if err := s.fieldRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete field: %w", err)
	}
	s.logger.Info("field deleted", zap.String("field_id", id.String()))
	return nil
}

func (s *CatalogService) ListFields(ctx context.Context, filter repository.FieldFilter, page calendar.PageRequest) (calendar.Page[model.Field], error) {
	page = page.Normalize()
	items, total, err := s.fieldRepo.List(ctx, filter, page.Limit(), page.Offset())
	if err != nil {
		return calendar.Page[model.Field]{}, fmt.Errorf("list fields: %w", err)
	}
	return calendar.NewPage(items, total, page), nil
}

// ---- customers ----

func (in *CustomerInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Name == "" {
		return invalid("name", "is required")
	}
	if len(in.Phone) > 32 {
		return invalid("phone", "must be at most 32 characters")
	}
	return nil
}

func (s *CatalogService) CreateCustomer(ctx context.Context, in CustomerInput) (*model.Customer, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	c := &model.Customer{Name: in.Name, Phone: in.Phone, Notes: in.Notes}
	if err := s.customerRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return c, nil
}

func (s *CatalogService) GetCustomer(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	c, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "customer", id)
	}
	return c, nil
}

func (s *CatalogService) UpdateCustomer(ctx context.Context, id uuid.UUID, in CustomerInput) (*model.Customer, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	c, err := s.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name, c.Phone, c.Notes = in.Name, in.Phone, in.Notes
	if err := s.customerRepo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	return c, nil
}

// DeleteCustomer запрещён, пока на клиента ссылаются неудалённые брони.
func (s *CatalogService) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetCustomer(ctx, id); err != nil {
		return err
	}
	has, err := s.customerRepo.HasBookings(ctx, id)
	if err != nil {
		return fmt.Errorf("check customer bookings: %w", err)
	}
	if has {
		return &ConflictError{Message: "customer has bookings and cannot be deleted"}
	}
	if err := s.customerRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	return nil
}

func (s *CatalogService) ListCustomers(ctx context.Context, search string, page calendar.PageRequest) (calendar.Page[model.Customer], error) {
	page = page.Normalize()
	items, total, err := s.customerRepo.List(ctx, search, page.Limit(), page.Offset())
	if err != nil {
		return calendar.Page[model.Customer]{}, fmt.Errorf("list customers: %w", err)
	}
	return calendar.NewPage(items, total, page), nil
}

// ---- packages ----

func (in *PackageInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.FieldID == uuid.Nil {
		return invalid("field_id", "is required")
	}
	if in.Name == "" {
		return invalid("name", "is required")
	}
	if in.DurationSlots < 1 {
		return invalid("duration_slots", "must be at least 1")
	}
	if in.Price < 0 {
		return invalid("price", "must not be negative")
	}
	return nil
}

func (s *CatalogService) checkPackage(ctx context.Context, in PackageInput, exclude *uuid.UUID) error {
	if _, err := s.fieldRepo.GetByID(ctx, in.FieldID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invalid("field_id", "field %s not found", in.FieldID)
		}
		return fmt.Errorf("get field: %w", err)
	}
	taken, err := s.packageRepo.NameTaken(ctx, in.FieldID, in.Name, exclude)
	if err != nil {
		return fmt.Errorf("check package name: %w", err)
	}
	if taken {
		return invalid("name", "has already been taken for this field")
	}
	return nil
}

func (s *CatalogService) CreatePackage(ctx context.Context, in PackageInput) (*model.Package, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.checkPackage(ctx, in, nil); err != nil {
		return nil, err
	}
	p := &model.Package{
		FieldID:       in.FieldID,
		Name:          in.Name,
		DurationSlots: in.DurationSlots,
		Price:         in.Price,
		Description:   in.Description,
	}
	if err := s.packageRepo.Create(ctx, p); err != nil {
		return nil, uniqueRace(err, "name", "has already been taken for this field")
	}
	return s.GetPackage(ctx, p.ID)
}

func (s *CatalogService) GetPackage(ctx context.Context, id uuid.UUID) (*model.Package, error) {
	p, err := s.packageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "package", id)
	}
	return p, nil
}

func (s *CatalogService) UpdatePackage(ctx context.Context, id uuid.UUID, in PackageInput) (*model.Package, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	p, err := s.GetPackage(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkPackage(ctx, in, &id); err != nil {
		return nil, err
	}

	p.FieldID, p.Name, p.DurationSlots, p.Price, p.Description =
		in.FieldID, in.Name, in.DurationSlots, in.Price, in.Description
	if err := s.packageRepo.Update(ctx, p); err != nil {
		return nil, uniqueRace(err, "name", "has already been taken for this field")
	}
	return s.GetPackage(ctx, id)
}

func (s *CatalogService) DeletePackage(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetPackage(ctx, id); err != nil {
		return err
	}
	if err := s.packageRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete package: %w", err)
	}
	return nil
}

func (s *CatalogService) ListPackages(ctx context.Context, filter repository.PackageFilter, page calendar.PageRequest) (calendar.Page[model.Package], error) {
	page = page.Normalize()
	items, total, err := s.packageRepo.List(ctx, filter, page.Limit(), page.Offset())
	if err != nil {
		return calendar.Page[model.Package]{}, fmt.Errorf("list packages: %w", err)
	}
	return calendar.NewPage(items, total, page), nil
}

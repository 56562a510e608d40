package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Leganyst/field-booking/internal/calendar"
	"github.com/Leganyst/field-booking/internal/model"
	"github.com/Leganyst/field-booking/internal/repository"
)

type testEnv struct {
	db *gorm.DB

	fields      *repository.GormFieldRepository
	schedules   *repository.GormScheduleRepository
	customers   *repository.GormCustomerRepository
	packages    *repository.GormPackageRepository
	bookings    *repository.GormBookingRepository
	memberships *repository.GormMembershipRepository
	users       *repository.GormUserRepository
	events      *repository.GormEventRepository

	availability *AvailabilityService
	booking      *BookingService
	membership   *MembershipService
	schedule     *ScheduleService
	catalog      *CatalogService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// одна in-memory база живёт ровно в одном соединении
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := model.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	logger := zap.NewNop()
	e := &testEnv{
		db:          db,
		fields:      repository.NewGormFieldRepository(db),
		schedules:   repository.NewGormScheduleRepository(db),
		customers:   repository.NewGormCustomerRepository(db),
		packages:    repository.NewGormPackageRepository(db),
		bookings:    repository.NewGormBookingRepository(db),
		memberships: repository.NewGormMembershipRepository(db),
		users:       repository.NewGormUserRepository(db),
		events:      repository.NewGormEventRepository(db),
	}
	e.availability = NewAvailabilityService(e.fields, e.schedules, e.bookings, e.memberships, logger)
	e.booking = NewBookingService(db, e.customers, e.schedules, e.bookings, e.events, logger)
	e.membership = NewMembershipService(db, e.schedules, e.memberships, e.events, logger)
	e.schedule = NewScheduleService(db, e.fields, e.schedules, e.events, logger)
	e.catalog = NewCatalogService(e.fields, e.customers, e.packages, logger)
	return e
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func (e *testEnv) field(t *testing.T, name string) *model.Field {
	t.Helper()
	f := &model.Field{Name: name, IsActive: true}
	if err := e.db.Create(f).Error; err != nil {
		t.Fatalf("create field: %v", err)
	}
	return f
}

func (e *testEnv) slot(t *testing.T, fieldID uuid.UUID, start, end string, price int64) *model.Schedule {
	t.Helper()
	st, err := model.ParseTimeOfDay(start)
	if err != nil {
		t.Fatalf("parse start: %v", err)
	}
	en, err := model.ParseTimeOfDay(end)
	if err != nil {
		t.Fatalf("parse end: %v", err)
	}
	s := &model.Schedule{
		FieldID:   fieldID,
		StartTime: st,
		EndTime:   en,
		Status:    model.ScheduleStatusAvailable,
		Price:     price,
	}
	if err := e.db.Create(s).Error; err != nil {
		t.Fatalf("create schedule: %v", err)
	}
	return s
}

func (e *testEnv) customer(t *testing.T, name string) *model.Customer {
	t.Helper()
	c := &model.Customer{Name: name, Phone: "0812"}
	if err := e.db.Create(c).Error; err != nil {
		t.Fatalf("create customer: %v", err)
	}
	return c
}

func (e *testEnv) count(t *testing.T, m any) int64 {
	t.Helper()
	var n int64
	if err := e.db.Model(m).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

var bg = context.Background()

func calendarPage(page, perPage int) calendar.PageRequest {
	return calendar.PageRequest{Page: page, PerPage: perPage}
}

package service

import (
	"errors"
	"testing"

	"github.com/Leganyst/field-booking/internal/model"
	"github.com/Leganyst/field-booking/internal/repository"
)

func TestCatalogService_FieldNameReusableAfterDelete(t *testing.T) {
	e := newTestEnv(t)

	f, err := e.catalog.CreateField(bg, FieldInput{Name: "Lapangan A", IsActive: true})
	if err != nil {
		t.Fatalf("CreateField: %v", err)
	}
	_, err = e.catalog.CreateField(bg, FieldInput{Name: "Lapangan A"})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "name" {
		t.Fatalf("err = %v, want ValidationError on name", err)
	}

	if err := e.catalog.DeleteField(bg, f.ID); err != nil {
		t.Fatalf("DeleteField: %v", err)
	}
	if _, err := e.catalog.CreateField(bg, FieldInput{Name: "Lapangan A"}); err != nil {
		t.Fatalf("CreateField after delete: %v", err)
	}
}

func TestCatalogService_UpdateFieldDeactivates(t *testing.T) {
	e := newTestEnv(t)
	f, err := e.catalog.CreateField(bg, FieldInput{Name: "Lapangan A", IsActive: true})
	if err != nil {
		t.Fatalf("CreateField: %v", err)
	}

	if _, err := e.catalog.UpdateField(bg, f.ID, FieldInput{Name: "Lapangan A", IsActive: false}); err != nil {
		t.Fatalf("UpdateField: %v", err)
	}
	got, err := e.catalog.GetField(bg, f.ID)
	if err != nil {
		t.Fatalf("GetField: %v", err)
	}
	if got.IsActive {
		t.Fatalf("is_active = true, want false")
	}

	page, err := e.catalog.ListFields(bg, repository.FieldFilter{ActiveOnly: true}, calendarPage(1, 10))
	if err != nil {
		t.Fatalf("ListFields: %v", err)
	}
	if page.Total != 0 {
		t.Fatalf("active fields = %d, want 0", page.Total)
	}
}

func TestCatalogService_CustomerDeleteBlockedByBooking(t *testing.T) {
	e := newTestEnv(t)
	f := e.field(t, "Lapangan A")
	s := e.slot(t, f.ID, "08:00", "09:00", 100000)

	c, err := e.catalog.CreateCustomer(bg, CustomerInput{Name: "  Budi ", Phone: "0812"})
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}
	if c.Name != "Budi" {
		t.Fatalf("name = %q, want trimmed", c.Name)
	}
	h, err := e.booking.CreateBooking(bg, CreateBookingInput{
		CustomerID: c.ID,
		Status:     model.BookingStatusDP,
		Slots:      []SlotInput{{ScheduleID: s.ID, Date: date(t, "2025-12-10")}},
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	var conflict *ConflictError
	if err := e.catalog.DeleteCustomer(bg, c.ID); !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want ConflictError", err)
	}

	if err := e.booking.DeleteBooking(bg, h.ID); err != nil {
		t.Fatalf("DeleteBooking: %v", err)
	}
	if err := e.catalog.DeleteCustomer(bg, c.ID); err != nil {
		t.Fatalf("DeleteCustomer: %v", err)
	}
}

func TestCatalogService_PackageNameUniquePerField(t *testing.T) {
	e := newTestEnv(t)
	fa := e.field(t, "Lapangan A")
	fb := e.field(t, "Lapangan B")

	in := PackageInput{FieldID: fa.ID, Name: "Paket 10 Jam", DurationSlots: 10, Price: 900000}
	p, err := e.catalog.CreatePackage(bg, in)
	if err != nil {
		t.Fatalf("CreatePackage: %v", err)
	}
	if p.Field == nil || p.Field.Name != "Lapangan A" {
		t.Fatalf("field not loaded: %+v", p.Field)
	}

	_, err = e.catalog.CreatePackage(bg, in)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "name" {
		t.Fatalf("err = %v, want ValidationError on name", err)
	}

	in.FieldID = fb.ID
	if _, err := e.catalog.CreatePackage(bg, in); err != nil {
		t.Fatalf("CreatePackage on other field: %v", err)
	}

	in.DurationSlots = 0
	if _, err := e.catalog.CreatePackage(bg, in); !errors.As(err, &verr) || verr.Field != "duration_slots" {
		t.Fatalf("err = %v, want ValidationError on duration_slots", err)
	}

	page, err := e.catalog.ListPackages(bg, repository.PackageFilter{FieldID: &fa.ID}, calendarPage(1, 10))
	if err != nil {
		t.Fatalf("ListPackages: %v", err)
	}
	if page.Total != 1 {
		t.Fatalf("packages = %d, want 1", page.Total)
	}
}

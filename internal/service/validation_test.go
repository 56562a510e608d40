package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/Leganyst/field-booking/internal/model"
)

func TestNormalizeSlots_TruncatesDates(t *testing.T) {
	id := uuid.New()
	loc := time.FixedZone("WIB", 7*3600)

	got, err := normalizeSlots([]SlotInput{{ScheduleID: id, Date: time.Date(2025, 12, 10, 23, 30, 0, 0, loc)}})
	if err != nil {
		t.Fatalf("normalizeSlots: %v", err)
	}
	want := time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC)
	if !got[0].Date.Equal(want) {
		t.Fatalf("date = %s, want %s", got[0].Date, want)
	}
}

func TestNormalizeSlots_SameScheduleDifferentDates(t *testing.T) {
	id := uuid.New()
	_, err := normalizeSlots([]SlotInput{
		{ScheduleID: id, Date: time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC)},
		{ScheduleID: id, Date: time.Date(2025, 12, 11, 0, 0, 0, 0, time.UTC)},
	})
	if err != nil {
		t.Fatalf("normalizeSlots: %v", err)
	}
}

func TestTotalAfterDiscount(t *testing.T) {
	total, err := totalAfterDiscount(150000, 20000)
	if err != nil {
		t.Fatalf("totalAfterDiscount: %v", err)
	}
	if total != 130000 {
		t.Fatalf("total = %d, want %d", total, 130000)
	}

	if total, err := totalAfterDiscount(100, 100); err != nil || total != 0 {
		t.Fatalf("total = %d, err = %v, want 0", total, err)
	}

	_, err = totalAfterDiscount(100, 101)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestBuildSchedule_InvalidRange(t *testing.T) {
	_, err := buildSchedule("", ScheduleInput{StartTime: "10:00", EndTime: "10:00"})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "end_time" {
		t.Fatalf("err = %v, want ValidationError on end_time", err)
	}

	_, err = buildSchedule("", ScheduleInput{StartTime: "25:00", EndTime: "26:00"})
	if !errors.As(err, &verr) || verr.Field != "start_time" {
		t.Fatalf("err = %v, want ValidationError on start_time", err)
	}

	_, err = buildSchedule("", ScheduleInput{StartTime: "08:00", EndTime: "09:00", Status: "closed"})
	if !errors.As(err, &verr) || verr.Field != "status" {
		t.Fatalf("err = %v, want ValidationError on status", err)
	}
}

func TestResolveCell_Order(t *testing.T) {
	s := &model.Schedule{ID: uuid.New(), Status: model.ScheduleStatusMaintenance, StartTime: model.NewTimeOfDay(8, 0, 0), EndTime: model.NewTimeOfDay(9, 0, 0)}
	header := &model.BookingHeader{ID: uuid.New(), Status: model.BookingStatusDP, Customer: &model.Customer{Name: "Budi"}}
	d := &model.BookingDetail{BookingHeaderID: header.ID, Header: header}
	m := &model.Membership{ID: uuid.New(), Name: "Andi"}

	if c := resolveCell(s, d, m); c.Status != SlotBooked || c.BookingHeaderID == nil || c.CustomerInfo.Name != "Budi" {
		t.Fatalf("detail+membership = %+v", c)
	}
	if c := resolveCell(s, nil, m); c.Status != SlotBooked || c.MembershipID == nil || c.CustomerInfo.Name != "Member Andi" {
		t.Fatalf("membership = %+v", c)
	}
	if c := resolveCell(s, nil, nil); c.Status != SlotMaintenance {
		t.Fatalf("maintenance = %s", c.Status)
	}
	s.Status = model.ScheduleStatusBooked
	if c := resolveCell(s, nil, nil); c.Status != SlotUnavailable {
		t.Fatalf("catalog booked = %s", c.Status)
	}
	s.Status = model.ScheduleStatusAvailable
	if c := resolveCell(s, nil, nil); c.Status != SlotAvailable || c.TimeSlot != "08:00 - 09:00" {
		t.Fatalf("available = %+v", c)
	}
}

func TestIsConstraintRace(t *testing.T) {
	if isConstraintRace(errors.New("boom")) {
		t.Fatalf("plain error treated as race")
	}
	if !isConstraintRace(&pgconn.PgError{Code: "23P01"}) {
		t.Fatalf("exclusion violation not treated as race")
	}
	if isConstraintRace(&pgconn.PgError{Code: "23503"}) {
		t.Fatalf("foreign key violation treated as race")
	}

	err := raceConflict(fmt.Errorf("create details: %w", gorm.ErrDuplicatedKey), slotTakenMsg)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want ConflictError", err)
	}
	if !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("conflict does not wrap ErrInvariantViolation")
	}
}

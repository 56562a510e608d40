package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Leganyst/field-booking/internal/model"
	"github.com/Leganyst/field-booking/internal/repository"
)

func TestBookingService_Create_SingleSlot(t *testing.T) {
	e := newTestEnv(t)
	f := e.field(t, "Lapangan A")
	s := e.slot(t, f.ID, "08:00", "09:00", 100000)
	c := e.customer(t, "Budi")

	h, err := e.booking.CreateBooking(bg, CreateBookingInput{
		CustomerID: c.ID,
		Status:     model.BookingStatusDP,
		Slots:      []SlotInput{{ScheduleID: s.ID, Date: date(t, "2025-12-10")}},
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if h.Total != 100000 {
		t.Fatalf("total = %d, want %d", h.Total, 100000)
	}
	if len(h.Details) != 1 {
		t.Fatalf("details = %d, want 1", len(h.Details))
	}
	if h.Details[0].Price != 100000 {
		t.Fatalf("detail price = %d, want %d", h.Details[0].Price, 100000)
	}
	if h.Customer == nil || h.Customer.Name != "Budi" {
		t.Fatalf("customer not loaded: %+v", h.Customer)
	}

	events, err := e.events.ListByBooking(bg, h.ID)
	if err != nil {
		t.Fatalf("ListByBooking: %v", err)
	}
	if len(events) != 1 || events[0].EventType != model.EventTypeBookingCreated {
		t.Fatalf("events = %+v, want one booking_created", events)
	}
}

func TestBookingService_Create_PriceAggregation(t *testing.T) {
	e := newTestEnv(t)
	f := e.field(t, "Lapangan A")
	s1 := e.slot(t, f.ID, "08:00", "09:00", 50000)
	s2 := e.slot(t, f.ID, "09:00", "10:00", 70000)
	s3 := e.slot(t, f.ID, "10:00", "11:00", 30000)
	c := e.customer(t, "Budi")

	h, err := e.booking.CreateBooking(bg, CreateBookingInput{
		CustomerID: c.ID,
		Discount:   20000,
		Status:     model.BookingStatusLunas,
		Slots: []SlotInput{
			{ScheduleID: s1.ID, Date: date(t, "2025-12-11")},
			{ScheduleID: s2.ID, Date: date(t, "2025-12-10")},
			{ScheduleID: s3.ID, Date: date(t, "2025-12-12")},
		},
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if h.Subtotal != 150000 {
		t.Fatalf("subtotal = %d, want %d", h.Subtotal, 150000)
	}
	if h.Total != 130000 {
		t.Fatalf("total = %d, want %d", h.Total, 130000)
	}
	if got := dateOf(h.BookingDate); !got.Equal(date(t, "2025-12-10")) {
		t.Fatalf("booking_date = %s, want 2025-12-10", got)
	}
}

func TestBookingService_Create_UsesCurrentSchedulePrice(t *testing.T) {
	e := newTestEnv(t)
	f := e.field(t, "Lapangan A")
	s := e.slot(t, f.ID, "08:00", "09:00", 100000)
	c := e.customer(t, "Budi")

	if err := e.db.Model(&model.Schedule{}).Where("id = ?", s.ID).Update("price", 120000).Error; err != nil {
		t.Fatalf("update price: %v", err)
	}

	h, err := e.booking.CreateBooking(bg, CreateBookingInput{
		CustomerID: c.ID,
		Status:     model.BookingStatusDP,
		Slots:      []SlotInput{{ScheduleID: s.ID, Date: date(t, "2025-12-10")}},
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if h.Subtotal != 120000 {
		t.Fatalf("subtotal = %d, want %d", h.Subtotal, 120000)
	}

	// снапшот не меняется вслед за расписанием
	if err := e.db.Model(&model.Schedule{}).Where("id = ?", s.ID).Update("price", 1).Error; err != nil {
		t.Fatalf("update price: %v", err)
	}
	got, err := e.booking.GetBooking(bg, h.ID)
	if err != nil {
		t.Fatalf("GetBooking: %v", err)
	}
	if got.Details[0].Price != 120000 {
		t.Fatalf("snapshot price = %d, want %d", got.Details[0].Price, 120000)
	}
}

func TestBookingService_Create_SlotTaken(t *testing.T) {
	e := newTestEnv(t)
	f := e.field(t, "Lapangan A")
	s := e.slot(t, f.ID, "08:00", "09:00", 100000)
	c := e.customer(t, "Budi")
	in := CreateBookingInput{
		CustomerID: c.ID,
		Status:     model.BookingStatusDP,
		Slots:      []SlotInput{{ScheduleID: s.ID, Date: date(t, "2025-12-10")}},
	}

	if _, err := e.booking.CreateBooking(bg, in); err != nil {
		t.Fatalf("first CreateBooking: %v", err)
	}
	_, err := e.booking.CreateBooking(bg, in)

	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want ConflictError", err)
	}
	if conflict.Date == nil || conflict.Date.Format("2006-01-02") != "2025-12-10" {
		t.Fatalf("conflict date = %v, want 2025-12-10", conflict.Date)
	}
	if n := e.count(t, &model.BookingHeader{}); n != 1 {
		t.Fatalf("headers = %d, want 1", n)
	}
	if n := e.count(t, &model.BookingDetail{}); n != 1 {
		t.Fatalf("details = %d, want 1", n)
	}
}

// racyBookings: внутри транзакции SlotTaken не видит чужих деталей, как будто
// конкурирующая бронь записалась между проверкой и вставкой.
type racyBookings struct{ repository.BookingRepository }

func (r racyBookings) WithTx(tx *gorm.DB) repository.BookingRepository {
	return staleSlotCheck{r.BookingRepository.WithTx(tx)}
}

type staleSlotCheck struct{ repository.BookingRepository }

func (staleSlotCheck) SlotTaken(context.Context, uuid.UUID, time.Time, *uuid.UUID) (bool, error) {
	return false, nil
}

func (e *testEnv) racyBookingService() *BookingService {
	return NewBookingService(e.db, e.customers, e.schedules, racyBookings{e.bookings}, e.events, zap.NewNop())
}

func TestBookingService_Create_RaceOnUniqueIndex(t *testing.T) {
	e := newTestEnv(t)
	f := e.field(t, "Lapangan A")
	s1 := e.slot(t, f.ID, "08:00", "09:00", 100000)
	s2 := e.slot(t, f.ID, "09:00", "10:00", 100000)
	c := e.customer(t, "Budi")
	d := date(t, "2025-12-10")

	if _, err := e.booking.CreateBooking(bg, CreateBookingInput{
		CustomerID: c.ID,
		Status:     model.BookingStatusDP,
		Slots:      []SlotInput{{ScheduleID: s2.ID, Date: d}},
	}); err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	_, err := e.racyBookingService().CreateBooking(bg, CreateBookingInput{
		CustomerID: c.ID,
		Status:     model.BookingStatusLunas,
		Slots:      []SlotInput{{ScheduleID: s1.ID, Date: d}, {ScheduleID: s2.ID, Date: d}},
	})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want ConflictError", err)
	}
	if !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("err = %v, want ErrInvariantViolation", err)
	}
	if conflict.ScheduleID == nil || *conflict.ScheduleID != s2.ID {
		t.Fatalf("conflict schedule = %v, want %s", conflict.ScheduleID, s2.ID)
	}
	if conflict.Date == nil || !conflict.Date.Equal(d) {
		t.Fatalf("conflict date = %v, want %s", conflict.Date, d.Format("2006-01-02"))
	}

	// откат целиком: ни заголовка, ни детали на s1
	if n := e.count(t, &model.BookingHeader{}); n != 1 {
		t.Fatalf("headers = %d, want 1", n)
	}
	if n := e.count(t, &model.BookingDetail{}); n != 1 {
		t.Fatalf("details = %d, want 1", n)
	}
}

func TestBookingService_Update_RaceOnUniqueIndex(t *testing.T) {
	e := newTestEnv(t)
	f := e.field(t, "Lapangan A")
	s1 := e.slot(t, f.ID, "08:00", "09:00", 100000)
	s2 := e.slot(t, f.ID, "09:00", "10:00", 120000)
	c := e.customer(t, "Budi")
	d := date(t, "2025-12-10")

	if _, err := e.booking.CreateBooking(bg, CreateBookingInput{CustomerID: c.ID, Status: model.BookingStatusDP, Slots: []SlotInput{{ScheduleID: s1.ID, Date: d}}}); err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	h2, err := e.booking.CreateBooking(bg, CreateBookingInput{CustomerID: c.ID, Status: model.BookingStatusDP, Slots: []SlotInput{{ScheduleID: s2.ID, Date: d}}})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	_, err = e.racyBookingService().UpdateBooking(bg, UpdateBookingInput{
		HeaderID:   h2.ID,
		CustomerID: c.ID,
		Status:     model.BookingStatusLunas,
		Slots:      []SlotInput{{ScheduleID: s1.ID, Date: d}},
	})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want ConflictError", err)
	}
	if !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("err = %v, want ErrInvariantViolation", err)
	}
	if conflict.ScheduleID == nil || *conflict.ScheduleID != s1.ID {
		t.Fatalf("conflict schedule = %v, want %s", conflict.ScheduleID, s1.ID)
	}
	if conflict.Date == nil || !conflict.Date.Equal(d) {
		t.Fatalf("conflict date = %v, want %s", conflict.Date, d.Format("2006-01-02"))
	}

	// удаление старых деталей тоже откатилось
	got, err := e.booking.GetBooking(bg, h2.ID)
	if err != nil {
		t.Fatalf("GetBooking: %v", err)
	}
	if len(got.Details) != 1 || got.Details[0].ScheduleID != s2.ID {
		t.Fatalf("details after failed update = %+v", got.Details)
	}
	if got.Status != model.BookingStatusDP || got.Total != 120000 {
		t.Fatalf("header after failed update: status = %s, total = %d", got.Status, got.Total)
	}
	if n := e.count(t, &model.BookingDetail{}); n != 2 {
		t.Fatalf("details = %d, want 2", n)
	}
}

func TestBookingService_Create_AllOrNothing(t *testing.T) {
	e := newTestEnv(t)
	f := e.field(t, "Lapangan A")
	var slots []*model.Schedule
	for _, tm := range [][2]string{{"08:00", "09:00"}, {"09:00", "10:00"}, {"10:00", "11:00"}, {"11:00", "12:00"}, {"12:00", "13:00"}} {
		slots = append(slots, e.slot(t, f.ID, tm[0], tm[1], 50000))
	}
	c := e.customer(t, "Budi")
	d := date(t, "2025-12-10")

	if _, err := e.booking.CreateBooking(bg, CreateBookingInput{
		CustomerID: c.ID,
		Status:     model.BookingStatusDP,
		Slots:      []SlotInput{{ScheduleID: slots[2].ID, Date: d}},
	}); err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	in := CreateBookingInput{CustomerID: c.ID, Status: model.BookingStatusDP}
	for _, s := range slots {
		in.Slots = append(in.Slots, SlotInput{ScheduleID: s.ID, Date: d})
	}
	_, err := e.booking.CreateBooking(bg, in)

	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want ConflictError", err)
	}
	if conflict.ScheduleID == nil || *conflict.ScheduleID != slots[2].ID {
		t.Fatalf("conflict schedule = %v, want %s", conflict.ScheduleID, slots[2].ID)
	}
	if n := e.count(t, &model.BookingHeader{}); n != 1 {
		t.Fatalf("headers = %d, want 1", n)
	}
	if n := e.count(t, &model.BookingDetail{}); n != 1 {
		t.Fatalf("details = %d, want 1", n)
	}
}

func TestBookingService_Create_DiscountExceedsSubtotal(t *testing.T) {
	e := newTestEnv(t)
	f := e.field(t, "Lapangan A")
	s := e.slot(t, f.ID, "08:00", "09:00", 100000)
	c := e.customer(t, "Budi")

	_, err := e.booking.CreateBooking(bg, CreateBookingInput{
		CustomerID: c.ID,
		Discount:   100001,
		Status:     model.BookingStatusDP,
		Slots:      []SlotInput{{ScheduleID: s.ID, Date: date(t, "2025-12-10")}},
	})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if verr.Field != "discount" {
		t.Fatalf("field = %q, want discount", verr.Field)
	}
	if n := e.count(t, &model.BookingHeader{}); n != 0 {
		t.Fatalf("headers = %d, want 0", n)
	}
}

func TestBookingService_Create_Validation(t *testing.T) {
	e := newTestEnv(t)
	f := e.field(t, "Lapangan A")
	s := e.slot(t, f.ID, "08:00", "09:00", 100000)
	c := e.customer(t, "Budi")
	d := date(t, "2025-12-10")

	cases := map[string]CreateBookingInput{
		"status": {CustomerID: c.ID, Status: "paid", Slots: []SlotInput{{ScheduleID: s.ID, Date: d}}},
		"slots":  {CustomerID: c.ID, Status: model.BookingStatusDP},
		"slots.1": {CustomerID: c.ID, Status: model.BookingStatusDP, Slots: []SlotInput{
			{ScheduleID: s.ID, Date: d}, {ScheduleID: s.ID, Date: d},
		}},
		"slots.0.schedule_id": {CustomerID: c.ID, Status: model.BookingStatusDP, Slots: []SlotInput{{ScheduleID: uuid.New(), Date: d}}},
		"customer_id":         {CustomerID: uuid.New(), Status: model.BookingStatusDP, Slots: []SlotInput{{ScheduleID: s.ID, Date: d}}},
	}
	for field, in := range cases {
		_, err := e.booking.CreateBooking(bg, in)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%s: err = %v, want ValidationError", field, err)
		}
		if verr.Field != field {
			t.Fatalf("%s: field = %q", field, verr.Field)
		}
	}
	if n := e.count(t, &model.BookingHeader{}); n != 0 {
		t.Fatalf("headers = %d, want 0", n)
	}
}

func TestBookingService_Create_MaintenanceRejected(t *testing.T) {
	e := newTestEnv(t)
	f := e.field(t, "Lapangan A")
	s := e.slot(t, f.ID, "08:00", "09:00", 100000)
	c := e.customer(t, "Budi")
	if err := e.db.Model(&model.Schedule{}).Where("id = ?", s.ID).Update("status", model.ScheduleStatusMaintenance).Error; err != nil {
		t.Fatalf("set maintenance: %v", err)
	}

	_, err := e.booking.CreateBooking(bg, CreateBookingInput{
		CustomerID: c.ID,
		Status:     model.BookingStatusDP,
		Slots:      []SlotInput{{ScheduleID: s.ID, Date: date(t, "2025-12-10")}},
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestBookingService_Update_KeepsOwnSlots(t *testing.T) {
	e := newTestEnv(t)
	f := e.field(t, "Lapangan A")
	s1 := e.slot(t, f.ID, "08:00", "09:00", 100000)
	c := e.customer(t, "Budi")
	slots := []SlotInput{{ScheduleID: s1.ID, Date: date(t, "2025-12-10")}}

	h, err := e.booking.CreateBooking(bg, CreateBookingInput{CustomerID: c.ID, Status: model.BookingStatusDP, Slots: slots})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	upd, err := e.booking.UpdateBooking(bg, UpdateBookingInput{
		HeaderID:   h.ID,
		CustomerID: c.ID,
		Discount:   10000,
		Status:     model.BookingStatusLunas,
		Notes:      "lunas di kasir",
		Slots:      slots,
	})
	if err != nil {
		t.Fatalf("UpdateBooking: %v", err)
	}
	if upd.Status != model.BookingStatusLunas {
		t.Fatalf("status = %s, want lunas", upd.Status)
	}
	if upd.Total != 90000 {
		t.Fatalf("total = %d, want %d", upd.Total, 90000)
	}
	if len(upd.Details) != 1 {
		t.Fatalf("details = %d, want 1", len(upd.Details))
	}
	// старая деталь мягко удалена, новая создана
	var all int64
	if err := e.db.Unscoped().Model(&model.BookingDetail{}).Count(&all).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if all != 2 {
		t.Fatalf("details incl. deleted = %d, want 2", all)
	}
}

func TestBookingService_Update_ReplacesSlots(t *testing.T) {
	e := newTestEnv(t)
	f := e.field(t, "Lapangan A")
	s1 := e.slot(t, f.ID, "08:00", "09:00", 100000)
	s2 := e.slot(t, f.ID, "09:00", "10:00", 80000)
	c := e.customer(t, "Budi")
	d := date(t, "2025-12-10")

	h, err := e.booking.CreateBooking(bg, CreateBookingInput{
		CustomerID: c.ID,
		Status:     model.BookingStatusDP,
		Slots:      []SlotInput{{ScheduleID: s1.ID, Date: d}},
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	upd, err := e.booking.UpdateBooking(bg, UpdateBookingInput{
		HeaderID:   h.ID,
		CustomerID: c.ID,
		Status:     model.BookingStatusDP,
		Slots:      []SlotInput{{ScheduleID: s2.ID, Date: d}},
	})
	if err != nil {
		t.Fatalf("UpdateBooking: %v", err)
	}
	if upd.Subtotal != 80000 {
		t.Fatalf("subtotal = %d, want %d", upd.Subtotal, 80000)
	}

	// s1 освобождён и доступен другому клиенту
	other := e.customer(t, "Sari")
	if _, err := e.booking.CreateBooking(bg, CreateBookingInput{
		CustomerID: other.ID,
		Status:     model.BookingStatusDP,
		Slots:      []SlotInput{{ScheduleID: s1.ID, Date: d}},
	}); err != nil {
		t.Fatalf("CreateBooking on freed slot: %v", err)
	}
}

func TestBookingService_Update_WithoutSlots(t *testing.T) {
	e := newTestEnv(t)
	f := e.field(t, "Lapangan A")
	s1 := e.slot(t, f.ID, "08:00", "09:00", 100000)
	c := e.customer(t, "Budi")

	h, err := e.booking.CreateBooking(bg, CreateBookingInput{
		CustomerID: c.ID,
		Status:     model.BookingStatusDP,
		Slots:      []SlotInput{{ScheduleID: s1.ID, Date: date(t, "2025-12-10")}},
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	if _, err := e.booking.UpdateBooking(bg, UpdateBookingInput{
		HeaderID:   h.ID,
		CustomerID: c.ID,
		Discount:   200000,
		Status:     model.BookingStatusDP,
	}); err == nil {
		t.Fatalf("expected ValidationError for discount above subtotal")
	}

	upd, err := e.booking.UpdateBooking(bg, UpdateBookingInput{
		HeaderID:   h.ID,
		CustomerID: c.ID,
		Discount:   25000,
		Status:     model.BookingStatusLunas,
	})
	if err != nil {
		t.Fatalf("UpdateBooking: %v", err)
	}
	if upd.Subtotal != 100000 || upd.Total != 75000 {
		t.Fatalf("subtotal/total = %d/%d, want 100000/75000", upd.Subtotal, upd.Total)
	}
	if len(upd.Details) != 1 {
		t.Fatalf("details = %d, want 1", len(upd.Details))
	}
}

func TestBookingService_Update_ConflictWithOtherHeader(t *testing.T) {
	e := newTestEnv(t)
	f := e.field(t, "Lapangan A")
	s1 := e.slot(t, f.ID, "08:00", "09:00", 100000)
	s2 := e.slot(t, f.ID, "09:00", "10:00", 100000)
	c := e.customer(t, "Budi")
	d := date(t, "2025-12-10")

	h1, err := e.booking.CreateBooking(bg, CreateBookingInput{CustomerID: c.ID, Status: model.BookingStatusDP, Slots: []SlotInput{{ScheduleID: s1.ID, Date: d}}})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if _, err := e.booking.CreateBooking(bg, CreateBookingInput{CustomerID: c.ID, Status: model.BookingStatusDP, Slots: []SlotInput{{ScheduleID: s2.ID, Date: d}}}); err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	_, err = e.booking.UpdateBooking(bg, UpdateBookingInput{
		HeaderID:   h1.ID,
		CustomerID: c.ID,
		Status:     model.BookingStatusDP,
		Slots:      []SlotInput{{ScheduleID: s1.ID, Date: d}, {ScheduleID: s2.ID, Date: d}},
	})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want ConflictError", err)
	}

	// откат: у h1 осталась исходная деталь
	got, err := e.booking.GetBooking(bg, h1.ID)
	if err != nil {
		t.Fatalf("GetBooking: %v", err)
	}
	if len(got.Details) != 1 || got.Details[0].ScheduleID != s1.ID {
		t.Fatalf("details after failed update = %+v", got.Details)
	}
}

func TestBookingService_Update_NotFound(t *testing.T) {
	e := newTestEnv(t)
	c := e.customer(t, "Budi")

	_, err := e.booking.UpdateBooking(bg, UpdateBookingInput{HeaderID: uuid.New(), CustomerID: c.ID, Status: model.BookingStatusDP})
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
}

func TestBookingService_DeleteFreesSlot(t *testing.T) {
	e := newTestEnv(t)
	f := e.field(t, "Lapangan A")
	s := e.slot(t, f.ID, "08:00", "09:00", 100000)
	c := e.customer(t, "Budi")
	in := CreateBookingInput{CustomerID: c.ID, Status: model.BookingStatusDP, Slots: []SlotInput{{ScheduleID: s.ID, Date: date(t, "2025-12-10")}}}

	h, err := e.booking.CreateBooking(bg, in)
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if err := e.booking.DeleteBooking(bg, h.ID); err != nil {
		t.Fatalf("DeleteBooking: %v", err)
	}
	if _, err := e.booking.GetBooking(bg, h.ID); err == nil {
		t.Fatalf("deleted booking still visible")
	}
	if _, err := e.booking.CreateBooking(bg, in); err != nil {
		t.Fatalf("CreateBooking after delete: %v", err)
	}
}

func TestBookingService_List(t *testing.T) {
	e := newTestEnv(t)
	f := e.field(t, "Lapangan A")
	s := e.slot(t, f.ID, "08:00", "09:00", 100000)
	budi := e.customer(t, "Budi")
	sari := e.customer(t, "Sari")

	for i, d := range []string{"2025-12-10", "2025-12-11", "2025-12-12"} {
		c := budi
		if i == 2 {
			c = sari
		}
		if _, err := e.booking.CreateBooking(bg, CreateBookingInput{
			CustomerID: c.ID,
			Status:     model.BookingStatusDP,
			Slots:      []SlotInput{{ScheduleID: s.ID, Date: date(t, d)}},
		}); err != nil {
			t.Fatalf("CreateBooking %s: %v", d, err)
		}
	}

	page, err := e.booking.ListBookings(bg, repository.BookingFilter{Search: "bud"}, calendarPage(1, 10))
	if err != nil {
		t.Fatalf("ListBookings: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("total = %d, want 2", page.Total)
	}
	if got := dateOf(page.Items[0].BookingDate).Format("2006-01-02"); got != "2025-12-11" {
		t.Fatalf("first = %s, want newest 2025-12-11", got)
	}

	page, err = e.booking.ListBookings(bg, repository.BookingFilter{}, calendarPage(2, 2))
	if err != nil {
		t.Fatalf("ListBookings: %v", err)
	}
	if page.Total != 3 || len(page.Items) != 1 || !page.HasPrev || page.HasNext {
		t.Fatalf("page 2 = %+v", page)
	}
}

package httpapi

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Leganyst/field-booking/internal/calendar"
	"github.com/Leganyst/field-booking/internal/service"
)

// newValidator: validator с именами полей из json-тегов.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bind разбирает тело запроса и прогоняет его через validator.
func (h *Handler) bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return h.validate.StructCtx(c.UserContext(), dst)
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, &service.ValidationError{Field: name, Message: "must be a valid id"}
	}
	return id, nil
}

// queryID: необязательный uuid из query-строки.
func queryID(c *fiber.Ctx, name string) (*uuid.UUID, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, &service.ValidationError{Field: name, Message: "must be a valid id"}
	}
	return &id, nil
}

// queryDate: дата из query-строки или def, если параметр пустой.
func queryDate(c *fiber.Ctx, name string, def time.Time) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	return parseDate(name, raw)
}

func queryOptionalDate(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	d, err := parseDate(name, raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func parseDate(field, raw string) (time.Time, error) {
	d, err := calendar.ParseDate(raw)
	if err != nil {
		return time.Time{}, &service.ValidationError{Field: field, Message: err.Error()}
	}
	return d, nil
}

func pageRequest(c *fiber.Ctx) calendar.PageRequest {
	return calendar.PageRequest{
		Page:    c.QueryInt("page", 1),
		PerPage: c.QueryInt("per_page", calendar.DefaultPerPage),
	}.Normalize()
}

// Тела запросов.

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userRequest struct {
	Username string `json:"username" validate:"required,max=255"`
	Password string `json:"password" validate:"omitempty,min=6,max=72"`
	Role     string `json:"role" validate:"required,oneof=admin manager user"`
}

type fieldRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=2000"`
	IsActive    *bool  `json:"is_active"`
}

type customerRequest struct {
	Name  string `json:"name" validate:"required,max=255"`
	Phone string `json:"phone" validate:"required,max=32"`
	Notes string `json:"notes" validate:"max=2000"`
}

type packageRequest struct {
	FieldID       string `json:"field_id" validate:"required,uuid"`
	Name          string `json:"name" validate:"required,max=255"`
	DurationSlots int    `json:"duration_slots" validate:"required,min=1"`
	Price         int64  `json:"price" validate:"gte=0"`
	Description   string `json:"description" validate:"max=2000"`
}

type scheduleRequest struct {
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
	Status    string `json:"status" validate:"required,oneof=available booked maintenance"`
	Price     int64  `json:"price" validate:"gte=0"`
}

type replaceSchedulesRequest struct {
	Schedules []scheduleRequest `json:"schedules" validate:"dive"`
}

type slotRequest struct {
	ScheduleID  string `json:"schedule_id" validate:"required,uuid"`
	BookingDate string `json:"booking_date" validate:"required,datetime=2006-01-02"`
}

type createBookingRequest struct {
	CustomerID string        `json:"customer_id" validate:"required,uuid"`
	Discount   int64         `json:"discount" validate:"gte=0"`
	Status     string        `json:"status" validate:"required,oneof=dp lunas"`
	Notes      string        `json:"notes" validate:"max=2000"`
	Slots      []slotRequest `json:"slots" validate:"required,min=1,dive"`
}

// Отсутствующий slots означает "слоты не меняются".
type updateBookingRequest struct {
	CustomerID string        `json:"customer_id" validate:"required,uuid"`
	Discount   int64         `json:"discount" validate:"gte=0"`
	Status     string        `json:"status" validate:"required,oneof=dp lunas"`
	Notes      string        `json:"notes" validate:"max=2000"`
	Slots      []slotRequest `json:"slots" validate:"omitempty,dive"`
}

// Одиночное создание принимает schedule_id, пакетное schedule_ids,
// обновление только schedule_id.
type membershipRequest struct {
	Name        string   `json:"name" validate:"required,max=255"`
	Phone       string   `json:"phone" validate:"required,max=32"`
	ScheduleID  string   `json:"schedule_id" validate:"omitempty,uuid"`
	ScheduleIDs []string `json:"schedule_ids" validate:"omitempty,dive,uuid"`
	BookingDay  int      `json:"booking_day" validate:"required,min=1,max=7"`
	StartDate   string   `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string   `json:"end_date" validate:"required,datetime=2006-01-02"`
	Total       int64    `json:"total" validate:"gte=0"`
	Notes       string   `json:"notes" validate:"max=2000"`
}

func (r slotRequest) input() (service.SlotInput, error) {
	d, err := parseDate("booking_date", r.BookingDate)
	if err != nil {
		return service.SlotInput{}, err
	}
	return service.SlotInput{ScheduleID: uuid.MustParse(r.ScheduleID), Date: d}, nil
}

func slotInputs(items []slotRequest) ([]service.SlotInput, error) {
	if items == nil {
		return nil, nil
	}
	out := make([]service.SlotInput, 0, len(items))
	for _, it := range items {
		in, err := it.input()
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, nil
}

func (r membershipRequest) input() (service.MembershipInput, error) {
	start, err := parseDate("start_date", r.StartDate)
	if err != nil {
		return service.MembershipInput{}, err
	}
	end, err := parseDate("end_date", r.EndDate)
	if err != nil {
		return service.MembershipInput{}, err
	}
	return service.MembershipInput{
		Name:       r.Name,
		Phone:      r.Phone,
		BookingDay: r.BookingDay,
		StartDate:  start,
		EndDate:    end,
		Total:      r.Total,
		Notes:      r.Notes,
	}, nil
}

// scheduleIDs собирает расписания из schedule_id и schedule_ids.
// Строки уже проверены тегом uuid.
func (r membershipRequest) scheduleIDs() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(r.ScheduleIDs)+1)
	if r.ScheduleID != "" {
		out = append(out, uuid.MustParse(r.ScheduleID))
	}
	for _, s := range r.ScheduleIDs {
		out = append(out, uuid.MustParse(s))
	}
	return out
}

package httpapi

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Leganyst/field-booking/internal/calendar"
	"github.com/Leganyst/field-booking/internal/service"
)

// GET /api/availability/daily?field_id&date
func (h *Handler) dailyAvailability(c *fiber.Ctx) error {
	fieldID, err := queryID(c, "field_id")
	if err != nil {
		return err
	}
	date, err := queryDate(c, "date", h.today())
	if err != nil {
		return err
	}

	m, err := h.availability.ResolveAvailability(c.UserContext(), fieldID, date)
	if err != nil {
		return err
	}
	return ok(c, "availability resolved", m)
}

// GET /api/availability/weekly?field_id
func (h *Handler) weeklyAvailability(c *fiber.Ctx) error {
	fieldID, err := queryID(c, "field_id")
	if err != nil {
		return err
	}
	if fieldID == nil {
		return &service.ValidationError{Field: "field_id", Message: "is required"}
	}

	m, err := h.availability.ResolveAvailability7Day(c.UserContext(), *fieldID, h.today())
	if err != nil {
		return err
	}
	return ok(c, "availability resolved", m)
}

// GET /api/availability/memberships?day
// Публичная выдача: только статусы слотов.
func (h *Handler) membershipAvailability(c *fiber.Ctx) error {
	m, err := h.resolveMemberships(c)
	if err != nil {
		return err
	}
	return ok(c, "availability resolved", m.StatusOnly())
}

// GET /api/dashboard/availability/memberships?day
func (h *Handler) memberAvailability(c *fiber.Ctx) error {
	m, err := h.resolveMemberships(c)
	if err != nil {
		return err
	}
	return ok(c, "availability resolved", m)
}

func (h *Handler) resolveMemberships(c *fiber.Ctx) (*service.MembershipMatrix, error) {
	day, err := strconv.Atoi(c.Query("day"))
	if err != nil || !calendar.ValidWeekday(day) {
		return nil, &service.ValidationError{Field: "day", Message: calendar.ErrInvalidWeekday.Error()}
	}
	return h.availability.ResolveMembershipAvailability(c.UserContext(), day, h.today())
}

// GET /api/dashboard/agenda?date
func (h *Handler) agenda(c *fiber.Ctx) error {
	date, err := queryDate(c, "date", h.today())
	if err != nil {
		return err
	}

	a, err := h.availability.DailyAgenda(c.UserContext(), date)
	if err != nil {
		return err
	}
	return ok(c, "agenda", a)
}

package httpapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Leganyst/field-booking/internal/model"
	"github.com/Leganyst/field-booking/internal/repository"
	"github.com/Leganyst/field-booking/internal/service"
)

// Поля.

func (h *Handler) listFields(c *fiber.Ctx) error {
	filter := repository.FieldFilter{
		Search:     c.Query("search"),
		ActiveOnly: c.QueryBool("active", false),
	}
	page, err := h.catalog.ListFields(c.UserContext(), filter, pageRequest(c))
	if err != nil {
		return err
	}
	return ok(c, "fields", page)
}

func (h *Handler) getField(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	f, err := h.catalog.GetField(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, "field", f)
}

func (r fieldRequest) input() service.FieldInput {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return service.FieldInput{Name: r.Name, Description: r.Description, IsActive: active}
}

func (h *Handler) createField(c *fiber.Ctx) error {
	var req fieldRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	f, err := h.catalog.CreateField(c.UserContext(), req.input())
	if err != nil {
		return err
	}
	return created(c, "field created", f)
}

func (h *Handler) updateField(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req fieldRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	f, err := h.catalog.UpdateField(c.UserContext(), id, req.input())
	if err != nil {
		return err
	}
	return ok(c, "field updated", f)
}

func (h *Handler) deleteField(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.catalog.DeleteField(c.UserContext(), id); err != nil {
		return err
	}
	return ok(c, "field deleted", nil)
}

// Расписание поля.

func (r scheduleRequest) input() service.ScheduleInput {
	return service.ScheduleInput{
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Status:    model.ScheduleStatus(r.Status),
		Price:     r.Price,
	}
}

// PUT /fields/:id/schedules заменяет расписание поля целиком.
func (h *Handler) replaceSchedules(c *fiber.Ctx) error {
	fieldID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req replaceSchedulesRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	items := make([]service.ScheduleInput, 0, len(req.Schedules))
	for _, s := range req.Schedules {
		items = append(items, s.input())
	}
	out, err := h.schedules.ReplaceSchedules(c.UserContext(), fieldID, items)
	if err != nil {
		return err
	}
	return ok(c, "schedules replaced", out)
}

func (h *Handler) listSchedules(c *fiber.Ctx) error {
	fieldID, err := queryID(c, "field_id")
	if err != nil {
		return err
	}
	filter := repository.ScheduleFilter{
		FieldID: fieldID,
		Status:  model.ScheduleStatus(c.Query("status")),
	}
	page, err := h.schedules.ListSchedules(c.UserContext(), filter, pageRequest(c))
	if err != nil {
		return err
	}
	return ok(c, "schedules", page)
}

func (h *Handler) getSchedule(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	s, err := h.schedules.GetSchedule(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, "schedule", s)
}

func (h *Handler) updateSchedule(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req scheduleRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	s, err := h.schedules.UpdateSchedule(c.UserContext(), id, req.input())
	if err != nil {
		return err
	}
	return ok(c, "schedule updated", s)
}

func (h *Handler) deleteSchedule(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.schedules.DeleteSchedule(c.UserContext(), id, h.today()); err != nil {
		return err
	}
	return ok(c, "schedule deleted", nil)
}

// Пакеты.

func (r packageRequest) input() service.PackageInput {
	return service.PackageInput{
		FieldID:       uuid.MustParse(r.FieldID),
		Name:          r.Name,
		DurationSlots: r.DurationSlots,
		Price:         r.Price,
		Description:   r.Description,
	}
}

func (h *Handler) listPackages(c *fiber.Ctx) error {
	fieldID, err := queryID(c, "field_id")
	if err != nil {
		return err
	}
	filter := repository.PackageFilter{FieldID: fieldID, Search: c.Query("search")}
	page, err := h.catalog.ListPackages(c.UserContext(), filter, pageRequest(c))
	if err != nil {
		return err
	}
	return ok(c, "packages", page)
}

func (h *Handler) getPackage(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.catalog.GetPackage(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, "package", p)
}

func (h *Handler) createPackage(c *fiber.Ctx) error {
	var req packageRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	p, err := h.catalog.CreatePackage(c.UserContext(), req.input())
	if err != nil {
		return err
	}
	return created(c, "package created", p)
}

func (h *Handler) updatePackage(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req packageRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	p, err := h.catalog.UpdatePackage(c.UserContext(), id, req.input())
	if err != nil {
		return err
	}
	return ok(c, "package updated", p)
}

func (h *Handler) deletePackage(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.catalog.DeletePackage(c.UserContext(), id); err != nil {
		return err
	}
	return ok(c, "package deleted", nil)
}

// Клиенты.

func (r customerRequest) input() service.CustomerInput {
	return service.CustomerInput{Name: r.Name, Phone: r.Phone, Notes: r.Notes}
}

func (h *Handler) listCustomers(c *fiber.Ctx) error {
	page, err := h.catalog.ListCustomers(c.UserContext(), c.Query("search"), pageRequest(c))
	if err != nil {
		return err
	}
	return ok(c, "customers", page)
}

func (h *Handler) getCustomer(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	cu, err := h.catalog.GetCustomer(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, "customer", cu)
}

func (h *Handler) createCustomer(c *fiber.Ctx) error {
	var req customerRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	cu, err := h.catalog.CreateCustomer(c.UserContext(), req.input())
	if err != nil {
		return err
	}
	return created(c, "customer created", cu)
}

func (h *Handler) updateCustomer(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req customerRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	cu, err := h.catalog.UpdateCustomer(c.UserContext(), id, req.input())
	if err != nil {
		return err
	}
	return ok(c, "customer updated", cu)
}

func (h *Handler) deleteCustomer(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.catalog.DeleteCustomer(c.UserContext(), id); err != nil {
		return err
	}
	return ok(c, "customer deleted", nil)
}

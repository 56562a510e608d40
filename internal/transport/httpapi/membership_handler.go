package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Leganyst/field-booking/internal/repository"
	"github.com/Leganyst/field-booking/internal/service"
)

func (h *Handler) listMemberships(c *fiber.Ctx) error {
	fieldID, err := queryID(c, "field_id")
	if err != nil {
		return err
	}
	from, err := queryOptionalDate(c, "date_from")
	if err != nil {
		return err
	}
	to, err := queryOptionalDate(c, "date_to")
	if err != nil {
		return err
	}

	filter := repository.MembershipFilter{
		FieldID:    fieldID,
		BookingDay: c.QueryInt("day", 0),
		DateFrom:   from,
		DateTo:     to,
		Search:     c.Query("search"),
	}
	page, err := h.memberships.ListMemberships(c.UserContext(), filter, pageRequest(c))
	if err != nil {
		return err
	}
	return ok(c, "memberships", page)
}

func (h *Handler) getMembership(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	m, err := h.memberships.GetMembership(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, "membership", m)
}

// POST /memberships: schedule_id или schedule_ids.
func (h *Handler) createMembership(c *fiber.Ctx) error {
	var req membershipRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	if req.ScheduleID == "" && len(req.ScheduleIDs) == 0 {
		return &service.ValidationError{Field: "schedule_id", Message: "is required"}
	}
	return h.createMemberships(c, req)
}

// POST /memberships/batch: одна и та же бронь на несколько расписаний.
func (h *Handler) createMembershipBatch(c *fiber.Ctx) error {
	var req membershipRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	if len(req.ScheduleIDs) == 0 {
		return &service.ValidationError{Field: "schedule_ids", Message: "must contain at least one schedule"}
	}
	return h.createMemberships(c, req)
}

func (h *Handler) createMemberships(c *fiber.Ctx, req membershipRequest) error {
	in, err := req.input()
	if err != nil {
		return err
	}

	items, err := h.memberships.CreateMemberships(c.UserContext(), service.CreateMembershipInput{
		MembershipInput: in,
		ScheduleIDs:     req.scheduleIDs(),
	})
	if err != nil {
		return err
	}
	return created(c, "memberships created", items)
}

func (h *Handler) updateMembership(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req membershipRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	if req.ScheduleID == "" {
		return &service.ValidationError{Field: "schedule_id", Message: "is required"}
	}
	in, err := req.input()
	if err != nil {
		return err
	}

	m, err := h.memberships.UpdateMembership(c.UserContext(), service.UpdateMembershipInput{
		MembershipInput: in,
		ID:              id,
		ScheduleID:      req.scheduleIDs()[0],
	})
	if err != nil {
		return err
	}
	return ok(c, "membership updated", m)
}

func (h *Handler) deleteMembership(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.memberships.DeleteMembership(c.UserContext(), id); err != nil {
		return err
	}
	return ok(c, "membership deleted", nil)
}

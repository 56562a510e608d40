package httpapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Leganyst/field-booking/internal/model"
	"github.com/Leganyst/field-booking/internal/repository"
	"github.com/Leganyst/field-booking/internal/service"
)

func (h *Handler) listBookings(c *fiber.Ctx) error {
	customerID, err := queryID(c, "customer_id")
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

	filter := repository.BookingFilter{
		CustomerID: customerID,
		Status:     model.BookingStatus(c.Query("status")),
		DateFrom:   from,
		DateTo:     to,
		Search:     c.Query("search"),
	}
	page, err := h.bookings.ListBookings(c.UserContext(), filter, pageRequest(c))
	if err != nil {
		return err
	}
	return ok(c, "bookings", page)
}

func (h *Handler) getBooking(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	b, err := h.bookings.GetBooking(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, "booking", b)
}

func (h *Handler) createBooking(c *fiber.Ctx) error {
	var req createBookingRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	slots, err := slotInputs(req.Slots)
	if err != nil {
		return err
	}

	b, err := h.bookings.CreateBooking(c.UserContext(), service.CreateBookingInput{
		CustomerID: uuid.MustParse(req.CustomerID),
		Discount:   req.Discount,
		Status:     model.BookingStatus(req.Status),
		Notes:      req.Notes,
		Slots:      slots,
	})
	if err != nil {
		return err
	}
	return created(c, "booking created", b)
}

func (h *Handler) updateBooking(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req updateBookingRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	slots, err := slotInputs(req.Slots)
	if err != nil {
		return err
	}

	b, err := h.bookings.UpdateBooking(c.UserContext(), service.UpdateBookingInput{
		HeaderID:   id,
		CustomerID: uuid.MustParse(req.CustomerID),
		Discount:   req.Discount,
		Status:     model.BookingStatus(req.Status),
		Notes:      req.Notes,
		Slots:      slots,
	})
	if err != nil {
		return err
	}
	return ok(c, "booking updated", b)
}

func (h *Handler) deleteBooking(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.bookings.DeleteBooking(c.UserContext(), id); err != nil {
		return err
	}
	return ok(c, "booking deleted", nil)
}

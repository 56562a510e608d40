package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Leganyst/field-booking/internal/model"
	"github.com/Leganyst/field-booking/internal/service"
)

func (h *Handler) login(c *fiber.Ctx) error {
	var req loginRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	res, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.logger.Warn("login failed", zap.String("username", req.Username), zap.String("ip", c.IP()))
		}
		return err
	}
	return ok(c, "login successful", res)
}

func (h *Handler) me(c *fiber.Ctx) error {
	v, err := h.auth.Me(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, "current user", v)
}

// Пользователи дашборда, только для admin.

func (r userRequest) input() service.UserInput {
	return service.UserInput{Username: r.Username, Password: r.Password, Role: model.UserRole(r.Role)}
}

func (h *Handler) listUsers(c *fiber.Ctx) error {
	page, err := h.auth.ListUsers(c.UserContext(), c.Query("search"), pageRequest(c))
	if err != nil {
		return err
	}
	return ok(c, "users", page)
}

func (h *Handler) getUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	u, err := h.auth.GetUser(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, "user", u)
}

func (h *Handler) createUser(c *fiber.Ctx) error {
	var req userRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	u, err := h.auth.CreateUser(c.UserContext(), req.input())
	if err != nil {
		return err
	}
	return created(c, "user created", u)
}

func (h *Handler) updateUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req userRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	u, err := h.auth.UpdateUser(c.UserContext(), id, req.input())
	if err != nil {
		return err
	}
	return ok(c, "user updated", u)
}

func (h *Handler) deleteUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.auth.DeleteUser(c.UserContext(), id); err != nil {
		return err
	}
	return ok(c, "user deleted", nil)
}

package httpapi

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Leganyst/field-booking/internal/auth"
	"github.com/Leganyst/field-booking/internal/calendar"
	"github.com/Leganyst/field-booking/internal/service"
)

// Единый конверт ответа: {code, status, message, data | errors}.
type envelope struct {
	Code    int    `json:"code"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

func ok(c *fiber.Ctx, message string, data any) error {
	return okWithCode(c, fiber.StatusOK, message, data)
}

func created(c *fiber.Ctx, message string, data any) error {
	return okWithCode(c, fiber.StatusCreated, message, data)
}

func okWithCode(c *fiber.Ctx, code int, message string, data any) error {
	return c.Status(code).JSON(envelope{Code: code, Status: "success", Message: message, Data: data})
}

func fail(c *fiber.Ctx, code int, message string, details any) error {
	return c.Status(code).JSON(envelope{Code: code, Status: "error", Message: message, Errors: details})
}

var errForbidden = errors.New("forbidden")

// conflictDetails: что именно занято, для подсветки на фронте.
type conflictDetails struct {
	ScheduleID string `json:"schedule_id,omitempty"`
	Date       string `json:"date,omitempty"`
}

// errorHandler переводит ошибки сервисов в HTTP-ответы. Используется как
// fiber.Config.ErrorHandler, поэтому хендлеры просто возвращают ошибку.
func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var (
			ve  *service.ValidationError
			vce validator.ValidationErrors
			ce  *service.ConflictError
			nf  *service.NotFoundError
			fe  *fiber.Error
		)

		switch {
		case errors.As(err, &ve):
			return fail(c, fiber.StatusUnprocessableEntity, "validation failed", map[string]string{ve.Field: ve.Message})
		case errors.As(err, &vce):
			out := make(map[string]string, len(vce))
			for _, e := range vce {
				out[fieldKey(e)] = validationMessage(e)
			}
			return fail(c, fiber.StatusUnprocessableEntity, "validation failed", out)
		case errors.As(err, &ce):
			var d *conflictDetails
			if ce.ScheduleID != nil || ce.Date != nil {
				d = &conflictDetails{}
				if ce.ScheduleID != nil {
					d.ScheduleID = ce.ScheduleID.String()
				}
				if ce.Date != nil {
					d.Date = calendar.FormatDate(*ce.Date)
				}
			}
			if d == nil {
				return fail(c, fiber.StatusConflict, ce.Message, nil)
			}
			return fail(c, fiber.StatusConflict, ce.Message, d)
		case errors.As(err, &nf):
			return fail(c, fiber.StatusNotFound, nf.Error(), nil)
		case errors.Is(err, service.ErrInvalidCredentials):
			return fail(c, fiber.StatusUnauthorized, "invalid username or password", nil)
		case errors.Is(err, auth.ErrInvalidToken),
			errors.Is(err, auth.ErrInvalidUserID),
			errors.Is(err, auth.ErrUserNotFound),
			errors.Is(err, auth.ErrRoleChanged):
			return fail(c, fiber.StatusUnauthorized, err.Error(), nil)
		case errors.Is(err, errForbidden):
			return fail(c, fiber.StatusForbidden, "forbidden", nil)
		case errors.As(err, &fe):
			return fail(c, fe.Code, fe.Message, nil)
		}

		logger.Error("unhandled error",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("request_id", requestID(c)),
			zap.Error(err),
		)
		return fail(c, fiber.StatusInternalServerError, "internal server error", nil)
	}
}

var indexReplacer = strings.NewReplacer("[", ".", "]", "")

// fieldKey: путь поля без имени корневой структуры, в том же виде,
// что и у сервисных ошибок: "slots.0.schedule_id".
func fieldKey(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return indexReplacer.Replace(ns[i+1:])
	}
	return e.Field()
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "uuid":
		return "must be a valid id"
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "oneof":
		return "must be one of: " + e.Param()
	case "min", "gte":
		return "must be at least " + e.Param()
	case "max", "lte":
		return "must be at most " + e.Param()
	}
	return "is invalid (" + e.Tag() + ")"
}

package httpapi

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Leganyst/field-booking/internal/auth"
	"github.com/Leganyst/field-booking/internal/model"
)

const localsUser = "user"

func requestID(c *fiber.Ctx) string {
	return c.GetRespHeader(fiber.HeaderXRequestID)
}

// requestLogger пишет одну строку на запрос.
func requestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// ErrorHandler выставит статус, иначе в логе окажется 200
			if herr := c.App().Config().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", requestID(c)),
		}
		switch {
		case status >= fiber.StatusInternalServerError:
			logger.Error("http request", fields...)
		case status >= fiber.StatusBadRequest:
			logger.Warn("http request", fields...)
		default:
			logger.Info("http request", fields...)
		}
		return nil
	}
}

// requireAuth проверяет bearer-токен и кладёт claims в контекст запроса.
func (h *Handler) requireAuth(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || strings.TrimSpace(token) == "" {
		return auth.ErrInvalidToken
	}

	claims, user, err := h.auth.Authenticate(c.UserContext(), strings.TrimSpace(token))
	if err != nil {
		return err
	}

	c.SetUserContext(auth.WithClaims(c.UserContext(), claims))
	c.Locals(localsUser, user)
	return c.Next()
}

// requireRoles пропускает только перечисленные роли. Ставится после requireAuth.
func requireRoles(roles ...model.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := auth.ClaimsFromContext(c.UserContext())
		if !ok {
			return auth.ErrInvalidToken
		}
		for _, r := range roles {
			if claims.Role == r {
				return c.Next()
			}
		}
		return errForbidden
	}
}

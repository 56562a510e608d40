package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Leganyst/field-booking/internal/model"
)

// Ошибки валидации пользователя из токена.
var (
	ErrInvalidUserID = errors.New("invalid user id")
	ErrUserNotFound  = errors.New("user not found")
	ErrRoleChanged   = errors.New("user role has changed")
)

// Источник данных о пользователях.
// В реале это репозиторий на GORM, в тестах: мок.
type UserStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// ValidateUser:
//   - проверяет корректность идентификатора;
//   - вытаскивает пользователя из хранилища (удалённые не находятся);
//   - сверяет роль из токена с текущей ролью;
//   - возвращает актуального пользователя или ошибку.
func ValidateUser(ctx context.Context, store UserStore, claims *Claims) (*model.User, error) {
	if claims == nil || claims.UserID == uuid.Nil {
		return nil, ErrInvalidUserID
	}

	u, err := store.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	if u.Role != claims.Role {
		return nil, ErrRoleChanged
	}

	return u, nil
}

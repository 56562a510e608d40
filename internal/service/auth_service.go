package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Leganyst/field-booking/internal/auth"
	"github.com/Leganyst/field-booking/internal/calendar"
	"github.com/Leganyst/field-booking/internal/model"
	"github.com/Leganyst/field-booking/internal/repository"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Права, которые отдаются фронту вместе с пользователем.
const (
	PermManageUsers       = "users.manage"
	PermManageCatalog     = "catalog.manage"
	PermManageBookings    = "bookings.manage"
	PermManageMemberships = "memberships.manage"
)

var rolePermissions = map[model.UserRole][]string{
	model.UserRoleAdmin:   {PermManageUsers, PermManageCatalog, PermManageBookings, PermManageMemberships},
	model.UserRoleManager: {PermManageCatalog, PermManageBookings, PermManageMemberships},
	model.UserRoleUser:    {PermManageBookings, PermManageMemberships},
}

// UserView: пользователь в ответах API, без пароля, с правами роли.
type UserView struct {
	ID          uuid.UUID      `json:"id"`
	Username    string         `json:"username"`
	Role        model.UserRole `json:"role"`
	Permissions []string       `json:"permissions"`
	CreatedAt   time.Time      `json:"created_at"`
}

func NewUserView(u *model.User) UserView {
	perms := append([]string(nil), rolePermissions[u.Role]...)
	if perms == nil {
		perms = []string{}
	}
	return UserView{ID: u.ID, Username: u.Username, Role: u.Role, Permissions: perms, CreatedAt: u.CreatedAt}
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserView  `json:"user"`
}

type UserInput struct {
	Username string
	// Пустой пароль при обновлении означает "не менять".
	Password string
	Role     model.UserRole
}

type AuthService struct {
	userRepo repository.UserRepository
	issuer   *auth.Issuer
	logger   *zap.Logger
}

func NewAuthService(userRepo repository.UserRepository, issuer *auth.Issuer, logger *zap.Logger) *AuthService {
	return &AuthService{userRepo: userRepo, issuer: issuer, logger: logger}
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	u, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := auth.CheckPassword(password, u.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.issuer.Generate(u.ID, u.Role)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	s.logger.Info("user logged in", zap.String("user_id", u.ID.String()))
	return &LoginResult{
		Token:     token,
		ExpiresAt: time.Now().Add(s.issuer.TTL()),
		User:      NewUserView(u),
	}, nil
}

// Authenticate разбирает токен и сверяет его с актуальным пользователем.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.Claims, *model.User, error) {
	claims, err := s.issuer.Parse(token)
	if err != nil {
		return nil, nil, err
	}
	u, err := auth.ValidateUser(ctx, s.userRepo, claims)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, auth.ErrUserNotFound
		}
		return nil, nil, err
	}
	return claims, u, nil
}

func (s *AuthService) Me(ctx context.Context) (*UserView, error) {
	actor := auth.ActorID(ctx)
	if actor == nil {
		return nil, auth.ErrInvalidToken
	}
	u, err := s.userRepo.FindByID(ctx, *actor)
	if err != nil {
		return nil, mapNotFound(err, "user", *actor)
	}
	v := NewUserView(u)
	return &v, nil
}

// SeedAdmin создаёт первого администратора, если пользователей ещё нет.
func (s *AuthService) SeedAdmin(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}
	n, err := s.userRepo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	if _, err := s.CreateUser(ctx, UserInput{Username: username, Password: password, Role: model.UserRoleAdmin}); err != nil {
		return false, err
	}
	s.logger.Info("initial admin created", zap.String("username", username))
	return true, nil
}

func (in *UserInput) validate(create bool) error {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" {
		return invalid("username", "is required")
	}
	if len(in.Username) > 255 {
		return invalid("username", "must be at most 255 characters")
	}
	if create && in.Password == "" {
		return invalid("password", "is required")
	}
	if in.Password != "" && len(in.Password) < 6 {
		return invalid("password", "must be at least 6 characters")
	}
	if !in.Role.Valid() {
		return invalid("role", "must be one of admin, manager, user")
	}
	return nil
}

func (s *AuthService) CreateUser(ctx context.Context, in UserInput) (*UserView, error) {
	if err := in.validate(true); err != nil {
		return nil, err
	}
	taken, err := s.userRepo.UsernameTaken(ctx, in.Username, nil)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return nil, invalid("username", "has already been taken")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &model.User{Username: in.Username, Password: hash, Role: in.Role}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, uniqueRace(err, "username", "has already been taken")
	}
	v := NewUserView(u)
	return &v, nil
}

func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*UserView, error) {
	u, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "user", id)
	}
	v := NewUserView(u)
	return &v, nil
}

func (s *AuthService) UpdateUser(ctx context.Context, id uuid.UUID, in UserInput) (*UserView, error) {
	if err := in.validate(false); err != nil {
		return nil, err
	}
	u, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "user", id)
	}
	taken, err := s.userRepo.UsernameTaken(ctx, in.Username, &id)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return nil, invalid("username", "has already been taken")
	}

	u.Username, u.Role, u.Password = in.Username, in.Role, ""
	if in.Password != "" {
		if u.Password, err = auth.HashPassword(in.Password); err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
	}
	if err := s.userRepo.Update(ctx, u); err != nil {
		return nil, uniqueRace(err, "username", "has already been taken")
	}
	v := NewUserView(u)
	return &v, nil
}

// DeleteUser не даёт удалить самого себя.
func (s *AuthService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if actor := auth.ActorID(ctx); actor != nil && *actor == id {
		return &ConflictError{Message: "cannot delete the current user"}
	}
	if _, err := s.userRepo.FindByID(ctx, id); err != nil {
		return mapNotFound(err, "user", id)
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (s *AuthService) ListUsers(ctx context.Context, search string, page calendar.PageRequest) (calendar.Page[UserView], error) {
	page = page.Normalize()
	users, total, err := s.userRepo.List(ctx, search, page.Limit(), page.Offset())
	if err != nil {
		return calendar.Page[UserView]{}, fmt.Errorf("list users: %w", err)
	}
	views := make([]UserView, 0, len(users))
	for i := range users {
		views = append(views, NewUserView(&users[i]))
	}
	return calendar.NewPage(views, total, page), nil
}

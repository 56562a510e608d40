package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Leganyst/field-booking/internal/model"
)

func TestIssuer_GenerateParse(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	id := uuid.New()

	token, err := iss.Generate(id, model.UserRoleManager)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	claims, err := iss.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.UserID != id {
		t.Fatalf("user id = %s, want %s", claims.UserID, id)
	}
	if claims.Role != model.UserRoleManager {
		t.Fatalf("role = %q, want %q", claims.Role, model.UserRoleManager)
	}
}

func TestIssuer_Expired(t *testing.T) {
	iss := NewIssuer("secret", time.Minute)
	issued := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	iss.now = func() time.Time { return issued }

	token, err := iss.Generate(uuid.New(), model.UserRoleUser)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	iss.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := iss.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Parse expired: err = %v, want ErrInvalidToken", err)
	}
}

func TestIssuer_WrongSecret(t *testing.T) {
	token, err := NewIssuer("one", time.Hour).Generate(uuid.New(), model.UserRoleAdmin)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := NewIssuer("two", time.Hour).Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Parse: err = %v, want ErrInvalidToken", err)
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("rahasia")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "rahasia" {
		t.Fatalf("password stored in plain text")
	}
	if err := CheckPassword("rahasia", hash); err != nil {
		t.Fatalf("CheckPassword(correct): %v", err)
	}
	if err := CheckPassword("salah", hash); err == nil {
		t.Fatalf("CheckPassword(wrong) = nil, want error")
	}
}

func TestContextClaims(t *testing.T) {
	if ActorID(context.Background()) != nil {
		t.Fatalf("ActorID on empty context must be nil")
	}

	id := uuid.New()
	ctx := WithClaims(context.Background(), &Claims{UserID: id, Role: model.UserRoleAdmin})
	got := ActorID(ctx)
	if got == nil || *got != id {
		t.Fatalf("ActorID = %v, want %s", got, id)
	}
}

type mapStore map[uuid.UUID]*model.User

func (m mapStore) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	return m[id], nil
}

func TestValidateUser(t *testing.T) {
	u := &model.User{ID: uuid.New(), Username: "kasir", Role: model.UserRoleManager}
	store := mapStore{u.ID: u}
	ctx := context.Background()

	if _, err := ValidateUser(ctx, store, &Claims{}); !errors.Is(err, ErrInvalidUserID) {
		t.Fatalf("nil id: err = %v, want ErrInvalidUserID", err)
	}
	if _, err := ValidateUser(ctx, store, &Claims{UserID: uuid.New(), Role: model.UserRoleManager}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("unknown user: err = %v, want ErrUserNotFound", err)
	}
	if _, err := ValidateUser(ctx, store, &Claims{UserID: u.ID, Role: model.UserRoleAdmin}); !errors.Is(err, ErrRoleChanged) {
		t.Fatalf("role mismatch: err = %v, want ErrRoleChanged", err)
	}

	got, err := ValidateUser(ctx, store, &Claims{UserID: u.ID, Role: model.UserRoleManager})
	if err != nil {
		t.Fatalf("ValidateUser: %v", err)
	}
	if got.Username != "kasir" {
		t.Fatalf("username = %q, want kasir", got.Username)
	}
}

package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/Leganyst/field-booking/internal/calendar"
)

// ErrInvariantViolation: проверка прошла, но база отвергла запись (гонка за слот).
var ErrInvariantViolation = errors.New("invariant violation")

// ValidationError: некорректный ввод, ничего не записано.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ConflictError: слот занят, диапазоны членств пересекаются и т.п.
type ConflictError struct {
	Message    string
	ScheduleID *uuid.UUID
	Date       *time.Time
	Err        error
}

func (e *ConflictError) Error() string {
	msg := e.Message
	if e.Date != nil {
		msg += " (date " + calendar.FormatDate(*e.Date) + ")"
	}
	if e.ScheduleID != nil {
		msg += " (schedule " + e.ScheduleID.String() + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConflictError) Unwrap() error { return e.Err }

type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Entity + " not found"
	}
	return e.Entity + " " + e.ID + " not found"
}

func notFound(entity string, id uuid.UUID) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id.String()}
}

// mapNotFound превращает gorm.ErrRecordNotFound в NotFoundError, остальное оборачивает.
func mapNotFound(err error, entity string, id uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(entity, id)
	}
	return fmt.Errorf("get %s: %w", entity, err)
}

// isConstraintRace: нарушение уникального индекса или exclusion constraint.
func isConstraintRace(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505", "23P01": // unique_violation, exclusion_violation
			return true
		}
	}
	return false
}

func (e *ConflictError) setSlot(sl SlotInput) {
	scheduleID, date := sl.ScheduleID, sl.Date
	e.ScheduleID, e.Date = &scheduleID, &date
}

// raceConflict оборачивает ошибку гонки в ConflictError, прочие ошибки возвращает как есть.
func raceConflict(err error, msg string) error {
	if err == nil || !isConstraintRace(err) {
		return err
	}
	return &ConflictError{
		Message: msg,
		Err:     fmt.Errorf("%w: %v", ErrInvariantViolation, err),
	}
}

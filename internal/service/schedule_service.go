package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Leganyst/field-booking/internal/auth"
	"github.com/Leganyst/field-booking/internal/calendar"
	"github.com/Leganyst/field-booking/internal/model"
	"github.com/Leganyst/field-booking/internal/repository"
)

// ScheduleInput: один шаблон слота. Время в формате HH:MM или HH:MM:SS.
type ScheduleInput struct {
	StartTime string
	EndTime   string
	Status    model.ScheduleStatus
	Price     int64
}

type ScheduleService struct {
	db           *gorm.DB
	fieldRepo    repository.FieldRepository
	scheduleRepo repository.ScheduleRepository
	eventRepo    repository.EventRepository
	logger       *zap.Logger
}

func NewScheduleService(
	db *gorm.DB,
	fieldRepo repository.FieldRepository,
	scheduleRepo repository.ScheduleRepository,
	eventRepo repository.EventRepository,
	logger *zap.Logger,
) *ScheduleService {
	return &ScheduleService{
		db:           db,
		fieldRepo:    fieldRepo,
		scheduleRepo: scheduleRepo,
		eventRepo:    eventRepo,
		logger:       logger,
	}
}

func buildSchedule(prefix string, in ScheduleInput) (model.Schedule, error) {
	start, err := model.ParseTimeOfDay(in.StartTime)
	if err != nil {
		return model.Schedule{}, invalid(prefix+"start_time", "%s", err.Error())
	}
	end, err := model.ParseTimeOfDay(in.EndTime)
	if err != nil {
		return model.Schedule{}, invalid(prefix+"end_time", "%s", err.Error())
	}
	if !start.Before(end) {
		return model.Schedule{}, invalid(prefix+"end_time", "must be after start_time")
	}
	status := in.Status
	if status == "" {
		status = model.ScheduleStatusAvailable
	}
	if !status.Valid() {
		return model.Schedule{}, invalid(prefix+"status", "must be one of available, booked, maintenance")
	}
	if in.Price < 0 {
		return model.Schedule{}, invalid(prefix+"price", "must not be negative")
	}
	return model.Schedule{StartTime: start, EndTime: end, Status: status, Price: in.Price}, nil
}

// ReplaceSchedules заменяет весь дневной шаблон поля одной транзакцией.
func (s *ScheduleService) ReplaceSchedules(ctx context.Context, fieldID uuid.UUID, items []ScheduleInput) (_ []model.Schedule, err error) {
	ctx, span := startSpan(ctx, "schedule.Replace",
		attribute.String("field_id", fieldID.String()),
		attribute.Int("items", len(items)),
	)
	defer func() { finishSpan(span, err) }()

	if len(items) == 0 {
		return nil, invalid("schedules", "at least one schedule is required")
	}
	schedules := make([]model.Schedule, 0, len(items))
	for i, in := range items {
		sc, err := buildSchedule(fmt.Sprintf("schedules.%d.", i), in)
		if err != nil {
			return nil, err
		}
		sc.FieldID = fieldID
		schedules = append(schedules, sc)
	}

	field, err := s.fieldRepo.GetByID(ctx, fieldID)
	if err != nil {
		return nil, mapNotFound(err, "field", fieldID)
	}

	var removed int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.scheduleRepo.WithTx(tx)
		var err error
		if removed, err = repo.DeleteByField(ctx, fieldID); err != nil {
			return fmt.Errorf("delete schedules: %w", err)
		}
		if err := repo.CreateBatch(ctx, schedules); err != nil {
			return fmt.Errorf("create schedules: %w", err)
		}
		fid := fieldID
		return s.eventRepo.WithTx(tx).Create(ctx, &model.Event{
			EventType: model.EventTypeSchedulesReplaced,
			UserID:    auth.ActorID(ctx),
			FieldID:   &fid,
			Details:   fmt.Sprintf("removed=%d created=%d", removed, len(schedules)),
		})
	})
	if err != nil {
		return nil, err
	}

	for i := range schedules {
		schedules[i].Field = field
	}
	sort.SliceStable(schedules, func(i, j int) bool {
		return schedules[i].StartTime.Before(schedules[j].StartTime)
	})

	s.logger.Info("schedules replaced",
		zap.String("field_id", fieldID.String()),
		zap.Int64("removed", removed),
		zap.Int("created", len(schedules)),
	)
	return schedules, nil
}

func (s *ScheduleService) ListSchedules(ctx context.Context, filter repository.ScheduleFilter, page calendar.PageRequest) (calendar.Page[model.Schedule], error) {
	page = page.Normalize()
	items, total, err := s.scheduleRepo.List(ctx, filter, page.Limit(), page.Offset())
	if err != nil {
		return calendar.Page[model.Schedule]{}, fmt.Errorf("list schedules: %w", err)
	}
	return calendar.NewPage(items, total, page), nil
}

func (s *ScheduleService) GetSchedule(ctx context.Context, id uuid.UUID) (*model.Schedule, error) {
	sc, err := s.scheduleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "schedule", id)
	}
	return sc, nil
}

// UpdateSchedule: правка одного шаблона. Цены уже созданных деталей не меняются.
func (s *ScheduleService) UpdateSchedule(ctx context.Context, id uuid.UUID, in ScheduleInput) (*model.Schedule, error) {
	sc, err := s.GetSchedule(ctx, id)
	if err != nil {
		return nil, err
	}
	upd, err := buildSchedule("", in)
	if err != nil {
		return nil, err
	}

	sc.StartTime, sc.EndTime, sc.Status, sc.Price = upd.StartTime, upd.EndTime, upd.Status, upd.Price
	if err := s.scheduleRepo.Update(ctx, sc); err != nil {
		return nil, fmt.Errorf("update schedule: %w", err)
	}
	s.logger.Info("schedule updated", zap.String("schedule_id", id.String()))
	return sc, nil
}

// DeleteSchedule отказывает, пока на расписание есть брони с today и позже.
func (s *ScheduleService) DeleteSchedule(ctx context.Context, id uuid.UUID, today time.Time) error {
	if _, err := s.GetSchedule(ctx, id); err != nil {
		return err
	}
	busy, err := s.scheduleRepo.HasBookingsFrom(ctx, id, calendar.DateOnly(today))
	if err != nil {
		return fmt.Errorf("check bookings: %w", err)
	}
	if busy {
		scheduleID := id
		return &ConflictError{Message: "schedule has upcoming bookings", ScheduleID: &scheduleID}
	}
	if err := s.scheduleRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("schedule", id)
		}
		return fmt.Errorf("delete schedule: %w", err)
	}
	s.logger.Info("schedule deleted", zap.String("schedule_id", id.String()))
	return nil
}

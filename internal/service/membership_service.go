package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Leganyst/field-booking/internal/auth"
	"github.com/Leganyst/field-booking/internal/calendar"
	"github.com/Leganyst/field-booking/internal/model"
	"github.com/Leganyst/field-booking/internal/repository"
)

// MembershipInput: общие поля членства (в пакете одинаковы для всех расписаний).
type MembershipInput struct {
	Name       string
	Phone      string
	BookingDay int
	StartDate  time.Time
	EndDate    time.Time
	Total      int64
	Notes      string
}

type CreateMembershipInput struct {
	MembershipInput
	ScheduleIDs []uuid.UUID
}

type UpdateMembershipInput struct {
	MembershipInput
	ID         uuid.UUID
	ScheduleID uuid.UUID
}

type MembershipService struct {
	db             *gorm.DB
	scheduleRepo   repository.ScheduleRepository
	membershipRepo repository.MembershipRepository
	eventRepo      repository.EventRepository
	logger         *zap.Logger
}

func NewMembershipService(
	db *gorm.DB,
	scheduleRepo repository.ScheduleRepository,
	membershipRepo repository.MembershipRepository,
	eventRepo repository.EventRepository,
	logger *zap.Logger,
) *MembershipService {
	return &MembershipService{
		db:             db,
		scheduleRepo:   scheduleRepo,
		membershipRepo: membershipRepo,
		eventRepo:      eventRepo,
		logger:         logger,
	}
}

const overlapMsg = "membership overlaps an existing one for this schedule and day"

func (in *MembershipInput) normalize() (calendar.DateRange, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Name == "" {
		return calendar.DateRange{}, invalid("name", "is required")
	}
	if in.Phone == "" {
		return calendar.DateRange{}, invalid("phone", "is required")
	}
	if !calendar.ValidWeekday(in.BookingDay) {
		return calendar.DateRange{}, invalid("booking_day", "%s", calendar.ErrInvalidWeekday.Error())
	}
	if in.StartDate.IsZero() {
		return calendar.DateRange{}, invalid("start_date", "is required")
	}
	if in.EndDate.IsZero() {
		return calendar.DateRange{}, invalid("end_date", "is required")
	}
	r, err := calendar.NewDateRange(in.StartDate, in.EndDate)
	if err != nil {
		return calendar.DateRange{}, invalid("end_date", "must not be before start_date")
	}
	if in.Total < 0 {
		return calendar.DateRange{}, invalid("total", "must not be negative")
	}
	return r, nil
}

func dedupIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// lockSchedules блокирует строки расписаний до конца транзакции и возвращает их с полями.
// Пока блокировка держится, второе членство на те же расписания ждёт.
func lockSchedules(ctx context.Context, repo repository.ScheduleRepository, ids []uuid.UUID) (map[uuid.UUID]*model.Schedule, error) {
	if _, err := repo.LockByIDs(ctx, ids); err != nil {
		return nil, fmt.Errorf("lock schedules: %w", err)
	}
	found, err := repo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load schedules: %w", err)
	}
	byID := make(map[uuid.UUID]*model.Schedule, len(found))
	for i := range found {
		if found[i].Field != nil {
			byID[found[i].ID] = &found[i]
		}
	}
	return byID, nil
}

func (s *MembershipService) record(ctx context.Context, events repository.EventRepository, typ model.EventType, m *model.Membership) error {
	id, fieldID := m.ID, m.FieldID
	return events.Create(ctx, &model.Event{
		EventType:    typ,
		UserID:       auth.ActorID(ctx),
		MembershipID: &id,
		FieldID:      &fieldID,
		Details:      fmt.Sprintf("schedule=%s day=%d", m.ScheduleID, m.BookingDay),
	})
}

// CreateMemberships создаёт по членству на каждое расписание; при любом конфликте не создаётся ни одно.
func (s *MembershipService) CreateMemberships(ctx context.Context, in CreateMembershipInput) (_ []model.Membership, err error) {
	ctx, span := startSpan(ctx, "membership.Create", attribute.Int("schedules", len(in.ScheduleIDs)))
	defer func() { finishSpan(span, err) }()

	r, err := in.normalize()
	if err != nil {
		return nil, err
	}
	ids := dedupIDs(in.ScheduleIDs)
	if len(ids) == 0 {
		return nil, invalid("schedule_ids", "at least one schedule is required")
	}

	var created []model.Membership
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		schedules, err := lockSchedules(ctx, s.scheduleRepo.WithTx(tx), ids)
		if err != nil {
			return err
		}
		memberships := s.membershipRepo.WithTx(tx)

		batch := make([]model.Membership, 0, len(ids))
		for i, id := range ids {
			sc, ok := schedules[id]
			if !ok {
				return invalid(fmt.Sprintf("schedule_ids.%d", i), "schedule %s not found", id)
			}
			overlap, err := memberships.HasOverlap(ctx, id, in.BookingDay, r.Start, r.End, nil)
			if err != nil {
				return fmt.Errorf("check overlap: %w", err)
			}
			if overlap {
				scheduleID := id
				return &ConflictError{Message: overlapMsg, ScheduleID: &scheduleID}
			}
			batch = append(batch, model.Membership{
				Name:       in.Name,
				Phone:      in.Phone,
				FieldID:    sc.FieldID,
				ScheduleID: sc.ID,
				BookingDay: in.BookingDay,
				StartDate:  datatypes.Date(r.Start),
				EndDate:    datatypes.Date(r.End),
				Total:      in.Total,
				Notes:      in.Notes,
			})
		}

		if err := memberships.CreateBatch(ctx, batch); err != nil {
			if isConstraintRace(err) {
				return raceConflict(err, overlapMsg)
			}
			return fmt.Errorf("create memberships: %w", err)
		}

		events := s.eventRepo.WithTx(tx)
		for i := range batch {
			if err := s.record(ctx, events, model.EventTypeMembershipCreated, &batch[i]); err != nil {
				return err
			}
			batch[i].Schedule = schedules[batch[i].ScheduleID]
			batch[i].Field = batch[i].Schedule.Field
		}
		created = batch
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("memberships created",
		zap.Int("count", len(created)),
		zap.Int("booking_day", in.BookingDay),
		zap.String("name", in.Name),
	)
	return created, nil
}

// UpdateMembership: правка одной записи; пересечение проверяется без учёта её самой.
func (s *MembershipService) UpdateMembership(ctx context.Context, in UpdateMembershipInput) (_ *model.Membership, err error) {
	ctx, span := startSpan(ctx, "membership.Update", attribute.String("membership_id", in.ID.String()))
	defer func() { finishSpan(span, err) }()

	r, err := in.normalize()
	if err != nil {
		return nil, err
	}
	if in.ScheduleID == uuid.Nil {
		return nil, invalid("schedule_id", "is required")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		memberships := s.membershipRepo.WithTx(tx)
		m, err := memberships.GetByID(ctx, in.ID)
		if err != nil {
			return mapNotFound(err, "membership", in.ID)
		}

		schedules, err := lockSchedules(ctx, s.scheduleRepo.WithTx(tx), []uuid.UUID{in.ScheduleID})
		if err != nil {
			return err
		}
		sc, ok := schedules[in.ScheduleID]
		if !ok {
			return invalid("schedule_id", "schedule %s not found", in.ScheduleID)
		}

		overlap, err := memberships.HasOverlap(ctx, sc.ID, in.BookingDay, r.Start, r.End, &m.ID)
		if err != nil {
			return fmt.Errorf("check overlap: %w", err)
		}
		if overlap {
			scheduleID := sc.ID
			return &ConflictError{Message: overlapMsg, ScheduleID: &scheduleID}
		}

		m.Name = in.Name
		m.Phone = in.Phone
		m.FieldID = sc.FieldID
		m.ScheduleID = sc.ID
		m.BookingDay = in.BookingDay
		m.StartDate = datatypes.Date(r.Start)
		m.EndDate = datatypes.Date(r.End)
		m.Total = in.Total
		m.Notes = in.Notes
		if err := memberships.Update(ctx, m); err != nil {
			if isConstraintRace(err) {
				return raceConflict(err, overlapMsg)
			}
			return fmt.Errorf("update membership: %w", err)
		}
		return s.record(ctx, s.eventRepo.WithTx(tx), model.EventTypeMembershipUpdated, m)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("membership updated", zap.String("membership_id", in.ID.String()))
	return s.GetMembership(ctx, in.ID)
}

func (s *MembershipService) GetMembership(ctx context.Context, id uuid.UUID) (*model.Membership, error) {
	m, err := s.membershipRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "membership", id)
	}
	return m, nil
}

func (s *MembershipService) ListMemberships(ctx context.Context, filter repository.MembershipFilter, page calendar.PageRequest) (calendar.Page[model.Membership], error) {
	page = page.Normalize()
	ms, total, err := s.membershipRepo.List(ctx, filter, page.Limit(), page.Offset())
	if err != nil {
		return calendar.Page[model.Membership]{}, fmt.Errorf("list memberships: %w", err)
	}
	return calendar.NewPage(ms, total, page), nil
}

func (s *MembershipService) DeleteMembership(ctx context.Context, id uuid.UUID) (err error) {
	ctx, span := startSpan(ctx, "membership.Delete", attribute.String("membership_id", id.String()))
	defer func() { finishSpan(span, err) }()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		memberships := s.membershipRepo.WithTx(tx)
		m, err := memberships.GetByID(ctx, id)
		if err != nil {
			return mapNotFound(err, "membership", id)
		}
		if err := memberships.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete membership: %w", err)
		}
		return s.record(ctx, s.eventRepo.WithTx(tx), model.EventTypeMembershipDeleted, m)
	})
	if err != nil {
		return err
	}
	s.logger.Info("membership deleted", zap.String("membership_id", id.String()))
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
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

// SlotInput: расписание на конкретную дату.
type SlotInput struct {
	ScheduleID uuid.UUID
	Date       time.Time
}

type CreateBookingInput struct {
	CustomerID uuid.UUID
	Discount   int64
	Status     model.BookingStatus
	Notes      string
	Slots      []SlotInput
}

type UpdateBookingInput struct {
	HeaderID   uuid.UUID
	CustomerID uuid.UUID
	Discount   int64
	Status     model.BookingStatus
	Notes      string
	// nil: детали не трогаем.
	Slots []SlotInput
}

type BookingService struct {
	db           *gorm.DB
	customerRepo repository.CustomerRepository
	scheduleRepo repository.ScheduleRepository
	bookingRepo  repository.BookingRepository
	eventRepo    repository.EventRepository
	logger       *zap.Logger
}

func NewBookingService(
	db *gorm.DB,
	customerRepo repository.CustomerRepository,
	scheduleRepo repository.ScheduleRepository,
	bookingRepo repository.BookingRepository,
	eventRepo repository.EventRepository,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		db:           db,
		customerRepo: customerRepo,
		scheduleRepo: scheduleRepo,
		bookingRepo:  bookingRepo,
		eventRepo:    eventRepo,
		logger:       logger,
	}
}

const slotTakenMsg = "slot already booked"

func validateBookingFields(status model.BookingStatus, discount int64) error {
	if !status.Valid() {
		return invalid("status", "must be one of dp, lunas")
	}
	if discount < 0 {
		return invalid("discount", "must not be negative")
	}
	return nil
}

// normalizeSlots приводит даты к полуночи UTC и отклоняет повторы внутри запроса.
func normalizeSlots(slots []SlotInput) ([]SlotInput, error) {
	if len(slots) == 0 {
		return nil, invalid("slots", "at least one slot is required")
	}
	seen := make(map[slotKey]struct{}, len(slots))
	out := make([]SlotInput, 0, len(slots))
	for i, sl := range slots {
		if sl.ScheduleID == uuid.Nil {
			return nil, invalid(fmt.Sprintf("slots.%d.schedule_id", i), "is required")
		}
		if sl.Date.IsZero() {
			return nil, invalid(fmt.Sprintf("slots.%d.booking_date", i), "is required")
		}
		sl.Date = calendar.DateOnly(sl.Date)
		k := slotKey{calendar.FormatDate(sl.Date), sl.ScheduleID}
		if _, dup := seen[k]; dup {
			return nil, invalid(fmt.Sprintf("slots.%d", i), "slot %s on %s is selected twice", sl.ScheduleID, k.date)
		}
		seen[k] = struct{}{}
		out = append(out, sl)
	}
	return out, nil
}

func (s *BookingService) ensureCustomer(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return invalid("customer_id", "is required")
	}
	if _, err := s.customerRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invalid("customer_id", "customer %s not found", id)
		}
		return fmt.Errorf("get customer: %w", err)
	}
	return nil
}

// pricedSlots проверяет слоты по порядку и возвращает детали с текущей ценой расписания.
func pricedSlots(
	ctx context.Context,
	schedules repository.ScheduleRepository,
	bookings repository.BookingRepository,
	slots []SlotInput,
	excludeHeader *uuid.UUID,
) ([]model.BookingDetail, int64, error) {
	ids := make([]uuid.UUID, 0, len(slots))
	for _, sl := range slots {
		ids = append(ids, sl.ScheduleID)
	}
	found, err := schedules.ListByIDs(ctx, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("load schedules: %w", err)
	}
	byID := make(map[uuid.UUID]*model.Schedule, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}

	details := make([]model.BookingDetail, 0, len(slots))
	var subtotal int64
	for i, sl := range slots {
		sc, ok := byID[sl.ScheduleID]
		if !ok || sc.Field == nil {
			return nil, 0, invalid(fmt.Sprintf("slots.%d.schedule_id", i), "schedule %s not found", sl.ScheduleID)
		}
		if sc.Status == model.ScheduleStatusMaintenance {
			return nil, 0, invalid(fmt.Sprintf("slots.%d.schedule_id", i), "schedule %s is under maintenance", sl.ScheduleID)
		}

		taken, err := bookings.SlotTaken(ctx, sl.ScheduleID, sl.Date, excludeHeader)
		if err != nil {
			return nil, 0, fmt.Errorf("check slot: %w", err)
		}
		if taken {
			ce := &ConflictError{Message: slotTakenMsg}
			ce.setSlot(sl)
			return nil, 0, ce
		}

		subtotal += sc.Price
		details = append(details, model.BookingDetail{
			ScheduleID:  sl.ScheduleID,
			BookingDate: datatypes.Date(sl.Date),
			Price:       sc.Price,
		})
	}
	return details, subtotal, nil
}

// locateRace дописывает в конфликт гонки слот, который перехватила другая бронь.
// Транзакция к этому моменту уже откатилась, поэтому проверка идёт без неё.
func (s *BookingService) locateRace(ctx context.Context, err error, slots []SlotInput, excludeHeader *uuid.UUID) error {
	var ce *ConflictError
	if !errors.As(err, &ce) || !errors.Is(err, ErrInvariantViolation) || ce.ScheduleID != nil {
		return err
	}
	if len(slots) == 1 {
		ce.setSlot(slots[0])
		return err
	}
	for _, sl := range slots {
		taken, lerr := s.bookingRepo.SlotTaken(ctx, sl.ScheduleID, sl.Date, excludeHeader)
		if lerr != nil {
			s.logger.Warn("locate raced slot", zap.Error(lerr))
			return err
		}
		if taken {
			ce.setSlot(sl)
			return err
		}
	}
	return err
}

func earliestDate(slots []SlotInput) time.Time {
	earliest := slots[0].Date
	for _, sl := range slots[1:] {
		if sl.Date.Before(earliest) {
			earliest = sl.Date
		}
	}
	return earliest
}

func totalAfterDiscount(subtotal, discount int64) (int64, error) {
	total := subtotal - discount
	if total < 0 {
		return 0, invalid("discount", "discount %d exceeds subtotal %d", discount, subtotal)
	}
	return total, nil
}

func (s *BookingService) record(ctx context.Context, events repository.EventRepository, typ model.EventType, bookingID uuid.UUID, details string) error {
	id := bookingID
	return events.Create(ctx, &model.Event{
		EventType: typ,
		UserID:    auth.ActorID(ctx),
		BookingID: &id,
		Details:   details,
	})
}

// CreateBooking создаёт заголовок и детали одной транзакцией: либо все слоты, либо ничего.
func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (_ *model.BookingHeader, err error) {
	ctx, span := startSpan(ctx, "booking.Create", attribute.Int("slots", len(in.Slots)))
	defer func() { finishSpan(span, err) }()

	if err := validateBookingFields(in.Status, in.Discount); err != nil {
		return nil, err
	}
	slots, err := normalizeSlots(in.Slots)
	if err != nil {
		return nil, err
	}
	if err := s.ensureCustomer(ctx, in.CustomerID); err != nil {
		return nil, err
	}

	header := &model.BookingHeader{
		CustomerID:  in.CustomerID,
		BookingDate: datatypes.Date(earliestDate(slots)),
		Discount:    in.Discount,
		Status:      in.Status,
		Notes:       in.Notes,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bookings := s.bookingRepo.WithTx(tx)

		details, subtotal, err := pricedSlots(ctx, s.scheduleRepo.WithTx(tx), bookings, slots, nil)
		if err != nil {
			return err
		}
		total, err := totalAfterDiscount(subtotal, in.Discount)
		if err != nil {
			return err
		}
		header.Subtotal, header.Total = subtotal, total

		if err := bookings.CreateHeader(ctx, header); err != nil {
			return fmt.Errorf("create header: %w", err)
		}
		for i := range details {
			details[i].BookingHeaderID = header.ID
		}
		if err := bookings.CreateDetails(ctx, details); err != nil {
			if isConstraintRace(err) {
				return raceConflict(err, slotTakenMsg)
			}
			return fmt.Errorf("create details: %w", err)
		}

		return s.record(ctx, s.eventRepo.WithTx(tx), model.EventTypeBookingCreated, header.ID,
			fmt.Sprintf("slots=%d total=%d", len(details), total))
	})
	if err != nil {
		return nil, s.locateRace(ctx, err, slots, nil)
	}

	s.logger.Info("booking created",
		zap.String("booking_id", header.ID.String()),
		zap.Int("slots", len(slots)),
		zap.Int64("total", header.Total),
	)
	return s.GetBooking(ctx, header.ID)
}

// UpdateBooking обновляет заголовок. Новый список слотов полностью заменяет старые детали.
func (s *BookingService) UpdateBooking(ctx context.Context, in UpdateBookingInput) (_ *model.BookingHeader, err error) {
	ctx, span := startSpan(ctx, "booking.Update", attribute.String("booking_id", in.HeaderID.String()))
	defer func() { finishSpan(span, err) }()

	if err := validateBookingFields(in.Status, in.Discount); err != nil {
		return nil, err
	}
	var slots []SlotInput
	if in.Slots != nil {
		if slots, err = normalizeSlots(in.Slots); err != nil {
			return nil, err
		}
	}
	if err := s.ensureCustomer(ctx, in.CustomerID); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bookings := s.bookingRepo.WithTx(tx)

		header, err := bookings.GetHeader(ctx, in.HeaderID)
		if err != nil {
			return mapNotFound(err, "booking", in.HeaderID)
		}

		var (
			details  []model.BookingDetail
			subtotal int64
		)
		if slots != nil {
			details, subtotal, err = pricedSlots(ctx, s.scheduleRepo.WithTx(tx), bookings, slots, &header.ID)
			if err != nil {
				return err
			}
			header.BookingDate = datatypes.Date(earliestDate(slots))
		} else {
			if subtotal, err = bookings.SumDetailPrices(ctx, header.ID); err != nil {
				return fmt.Errorf("sum details: %w", err)
			}
		}

		total, err := totalAfterDiscount(subtotal, in.Discount)
		if err != nil {
			return err
		}

		if slots != nil {
			if err := bookings.DeleteDetails(ctx, header.ID); err != nil {
				return fmt.Errorf("delete details: %w", err)
			}
			for i := range details {
				details[i].BookingHeaderID = header.ID
			}
			if err := bookings.CreateDetails(ctx, details); err != nil {
				if isConstraintRace(err) {
					return raceConflict(err, slotTakenMsg)
				}
				return fmt.Errorf("create details: %w", err)
			}
		}

		header.CustomerID = in.CustomerID
		header.Discount = in.Discount
		header.Subtotal = subtotal
		header.Total = total
		header.Status = in.Status
		header.Notes = in.Notes
		if err := bookings.UpdateHeader(ctx, header); err != nil {
			return fmt.Errorf("update header: %w", err)
		}

		return s.record(ctx, s.eventRepo.WithTx(tx), model.EventTypeBookingUpdated, header.ID,
			fmt.Sprintf("slots_replaced=%t total=%d", slots != nil, total))
	})
	if err != nil {
		id := in.HeaderID
		return nil, s.locateRace(ctx, err, slots, &id)
	}

	s.logger.Info("booking updated", zap.String("booking_id", in.HeaderID.String()), zap.Bool("slots_replaced", slots != nil))
	return s.GetBooking(ctx, in.HeaderID)
}

func (s *BookingService) GetBooking(ctx context.Context, id uuid.UUID) (*model.BookingHeader, error) {
	h, err := s.bookingRepo.GetHeader(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "booking", id)
	}
	return h, nil
}

func (s *BookingService) ListBookings(ctx context.Context, filter repository.BookingFilter, page calendar.PageRequest) (calendar.Page[model.BookingHeader], error) {
	page = page.Normalize()
	headers, total, err := s.bookingRepo.ListHeaders(ctx, filter, page.Limit(), page.Offset())
	if err != nil {
		return calendar.Page[model.BookingHeader]{}, fmt.Errorf("list bookings: %w", err)
	}
	return calendar.NewPage(headers, total, page), nil
}

// DeleteBooking мягко удаляет заголовок и детали, слоты освобождаются.
func (s *BookingService) DeleteBooking(ctx context.Context, id uuid.UUID) (err error) {
	ctx, span := startSpan(ctx, "booking.Delete", attribute.String("booking_id", id.String()))
	defer func() { finishSpan(span, err) }()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bookings := s.bookingRepo.WithTx(tx)
		if _, err := bookings.GetHeader(ctx, id); err != nil {
			return mapNotFound(err, "booking", id)
		}
		if err := bookings.DeleteDetails(ctx, id); err != nil {
			return fmt.Errorf("delete details: %w", err)
		}
		if err := bookings.DeleteHeader(ctx, id); err != nil {
			return fmt.Errorf("delete header: %w", err)
		}
		return s.record(ctx, s.eventRepo.WithTx(tx), model.EventTypeBookingDeleted, id, "")
	})
	if err != nil {
		return err
	}
	s.logger.Info("booking deleted", zap.String("booking_id", id.String()))
	return nil
}

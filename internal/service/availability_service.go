package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Leganyst/field-booking/internal/calendar"
	"github.com/Leganyst/field-booking/internal/model"
	"github.com/Leganyst/field-booking/internal/repository"
)

// Статус ячейки матрицы на конкретную дату.
type SlotStatus string

const (
	SlotAvailable   SlotStatus = "available"
	SlotBooked      SlotStatus = "booked"
	SlotUnavailable SlotStatus = "unavailable"
	SlotMaintenance SlotStatus = "maintenance"
)

// booking_status для ячеек, занятых членством.
const MembershipBookingStatus = "membership"

type CustomerInfo struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type SlotCell struct {
	ScheduleID uuid.UUID  `json:"schedule_id"`
	TimeSlot   string     `json:"time_slot"`
	Price      int64      `json:"price"`
	Status     SlotStatus `json:"status"`

	BookingHeaderID *uuid.UUID    `json:"booking_header_id,omitempty"`
	MembershipID    *uuid.UUID    `json:"membership_id,omitempty"`
	BookingStatus   string        `json:"booking_status,omitempty"`
	CustomerInfo    *CustomerInfo `json:"customer_info,omitempty"`
}

type FieldMatrix struct {
	FieldID   uuid.UUID  `json:"field_id"`
	FieldName string     `json:"field_name"`
	Slots     []SlotCell `json:"slots"`
}

type DailyMatrix struct {
	Date   string        `json:"date"`
	Fields []FieldMatrix `json:"fields"`
}

type DayColumn struct {
	Date    string `json:"date"`
	Day     int    `json:"day"`
	DayName string `json:"day_name"`
}

// WeeklyRow: одно расписание, по ячейке на каждую колонку Days.
type WeeklyRow struct {
	ScheduleID uuid.UUID  `json:"schedule_id"`
	TimeSlot   string     `json:"time_slot"`
	Price      int64      `json:"price"`
	Cells      []SlotCell `json:"cells"`
}

type WeeklyMatrix struct {
	FieldID   uuid.UUID   `json:"field_id"`
	FieldName string      `json:"field_name"`
	Days      []DayColumn `json:"days"`
	Rows      []WeeklyRow `json:"rows"`
}

type MembershipMatrix struct {
	Day     int           `json:"day"`
	DayName string        `json:"day_name"`
	Fields  []FieldMatrix `json:"fields"`
}

// StatusOnly возвращает копию без данных участников: только статус ячеек.
func (m *MembershipMatrix) StatusOnly() *MembershipMatrix {
	out := &MembershipMatrix{Day: m.Day, DayName: m.DayName, Fields: make([]FieldMatrix, 0, len(m.Fields))}
	for _, f := range m.Fields {
		slots := make([]SlotCell, 0, len(f.Slots))
		for _, c := range f.Slots {
			slots = append(slots, SlotCell{ScheduleID: c.ScheduleID, TimeSlot: c.TimeSlot, Price: c.Price, Status: c.Status})
		}
		out.Fields = append(out.Fields, FieldMatrix{FieldID: f.FieldID, FieldName: f.FieldName, Slots: slots})
	}
	return out
}

type AgendaEntry struct {
	FieldID    uuid.UUID `json:"field_id"`
	FieldName  string    `json:"field_name"`
	ScheduleID uuid.UUID `json:"schedule_id"`
	TimeSlot   string    `json:"time_slot"`

	BookingHeaderID *uuid.UUID   `json:"booking_header_id,omitempty"`
	MembershipID    *uuid.UUID   `json:"membership_id,omitempty"`
	Status          string       `json:"status"`
	CustomerInfo    CustomerInfo `json:"customer_info"`
	Notes           string       `json:"notes,omitempty"`

	start model.TimeOfDay
}

type DailyAgenda struct {
	Date    string        `json:"date"`
	Entries []AgendaEntry `json:"entries"`
}

// AvailabilityService строит матрицы занятости. Ничего не пишет.
type AvailabilityService struct {
	fieldRepo      repository.FieldRepository
	scheduleRepo   repository.ScheduleRepository
	bookingRepo    repository.BookingRepository
	membershipRepo repository.MembershipRepository
	logger         *zap.Logger
}

func NewAvailabilityService(
	fieldRepo repository.FieldRepository,
	scheduleRepo repository.ScheduleRepository,
	bookingRepo repository.BookingRepository,
	membershipRepo repository.MembershipRepository,
	logger *zap.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		fieldRepo:      fieldRepo,
		scheduleRepo:   scheduleRepo,
		bookingRepo:    bookingRepo,
		membershipRepo: membershipRepo,
		logger:         logger,
	}
}

func memberName(name string) string { return "Member " + name }

// resolveCell: деталь брони > членство > maintenance > booked в каталоге > свободно.
func resolveCell(s *model.Schedule, d *model.BookingDetail, m *model.Membership) SlotCell {
	cell := SlotCell{
		ScheduleID: s.ID,
		TimeSlot:   s.TimeSlot(),
		Price:      s.Price,
	}

	switch {
	case d != nil:
		cell.Status = SlotBooked
		headerID := d.BookingHeaderID
		cell.BookingHeaderID = &headerID
		if d.Header != nil {
			cell.BookingStatus = string(d.Header.Status)
			info := CustomerInfo{ID: d.Header.CustomerID}
			if d.Header.Customer != nil {
				info.Name = d.Header.Customer.Name
			}
			cell.CustomerInfo = &info
		}
	case m != nil:
		cell.Status = SlotBooked
		id := m.ID
		cell.MembershipID = &id
		cell.BookingStatus = MembershipBookingStatus
		cell.CustomerInfo = &CustomerInfo{ID: m.ID, Name: memberName(m.Name)}
	case s.Status == model.ScheduleStatusMaintenance:
		cell.Status = SlotMaintenance
	case s.Status == model.ScheduleStatusBooked:
		cell.Status = SlotUnavailable
	default:
		cell.Status = SlotAvailable
	}
	return cell
}

// groupByField раскладывает ячейки по полям: поля по имени, слоты по time_slot.
func groupByField(schedules []model.Schedule, cell func(*model.Schedule) SlotCell) []FieldMatrix {
	byField := make(map[uuid.UUID]*FieldMatrix)
	for i := range schedules {
		s := &schedules[i]
		if s.Field == nil {
			continue
		}
		fm, ok := byField[s.FieldID]
		if !ok {
			fm = &FieldMatrix{FieldID: s.FieldID, FieldName: s.Field.Name, Slots: []SlotCell{}}
			byField[s.FieldID] = fm
		}
		fm.Slots = append(fm.Slots, cell(s))
	}

	out := make([]FieldMatrix, 0, len(byField))
	for _, fm := range byField {
		sort.SliceStable(fm.Slots, func(i, j int) bool {
			return fm.Slots[i].TimeSlot < fm.Slots[j].TimeSlot
		})
		out = append(out, *fm)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FieldName != out[j].FieldName {
			return out[i].FieldName < out[j].FieldName
		}
		return out[i].FieldID.String() < out[j].FieldID.String()
	})
	return out
}

func scheduleIDs(schedules []model.Schedule) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(schedules))
	for _, s := range schedules {
		ids = append(ids, s.ID)
	}
	return ids
}

func (s *AvailabilityService) ensureField(ctx context.Context, fieldID uuid.UUID) (*model.Field, error) {
	f, err := s.fieldRepo.GetByID(ctx, fieldID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("field", fieldID)
		}
		return nil, err
	}
	return f, nil
}

// ResolveAvailability: матрица на одну дату, сгруппированная по полям.
func (s *AvailabilityService) ResolveAvailability(ctx context.Context, fieldID *uuid.UUID, date time.Time) (_ *DailyMatrix, err error) {
	date = calendar.DateOnly(date)
	ctx, span := startSpan(ctx, "availability.ResolveAvailability", attribute.String("date", calendar.FormatDate(date)))
	defer func() { finishSpan(span, err) }()

	if fieldID != nil {
		if _, err := s.ensureField(ctx, *fieldID); err != nil {
			return nil, err
		}
	}

	schedules, err := s.scheduleRepo.ListWithField(ctx, fieldID)
	if err != nil {
		return nil, err
	}
	out := &DailyMatrix{Date: calendar.FormatDate(date), Fields: []FieldMatrix{}}
	if len(schedules) == 0 {
		return out, nil
	}
	ids := scheduleIDs(schedules)

	details, err := s.bookingRepo.ListDetails(ctx, repository.DetailFilter{ScheduleIDs: ids, From: date, To: date})
	if err != nil {
		return nil, err
	}
	memberships, err := s.membershipRepo.ListActiveOn(ctx, date, ids)
	if err != nil {
		return nil, err
	}

	detailBySchedule := make(map[uuid.UUID]*model.BookingDetail, len(details))
	for i := range details {
		if _, ok := detailBySchedule[details[i].ScheduleID]; !ok {
			detailBySchedule[details[i].ScheduleID] = &details[i]
		}
	}
	memberBySchedule := make(map[uuid.UUID]*model.Membership, len(memberships))
	for i := range memberships {
		if _, ok := memberBySchedule[memberships[i].ScheduleID]; !ok {
			memberBySchedule[memberships[i].ScheduleID] = &memberships[i]
		}
	}

	out.Fields = groupByField(schedules, func(sc *model.Schedule) SlotCell {
		return resolveCell(sc, detailBySchedule[sc.ID], memberBySchedule[sc.ID])
	})
	return out, nil
}

type slotKey struct {
	date       string
	scheduleID uuid.UUID
}

// ResolveAvailability7Day: 7 колонок начиная с today для одного поля.
func (s *AvailabilityService) ResolveAvailability7Day(ctx context.Context, fieldID uuid.UUID, today time.Time) (_ *WeeklyMatrix, err error) {
	ctx, span := startSpan(ctx, "availability.ResolveAvailability7Day", attribute.String("field_id", fieldID.String()))
	defer func() { finishSpan(span, err) }()

	field, err := s.ensureField(ctx, fieldID)
	if err != nil {
		return nil, err
	}

	days := calendar.UpcomingDays(today, 7)
	out := &WeeklyMatrix{
		FieldID:   field.ID,
		FieldName: field.Name,
		Days:      make([]DayColumn, 0, len(days)),
		Rows:      []WeeklyRow{},
	}
	for i, d := range days {
		col := DayColumn{Date: calendar.FormatDate(d), Day: calendar.ISOWeekday(d), DayName: calendar.DayName(calendar.ISOWeekday(d))}
		if i == 0 {
			col.DayName = calendar.TodayLabel
		}
		out.Days = append(out.Days, col)
	}

	schedules, err := s.scheduleRepo.ListWithField(ctx, &fieldID)
	if err != nil {
		return nil, err
	}
	if len(schedules) == 0 {
		return out, nil
	}
	ids := scheduleIDs(schedules)
	from, to := days[0], days[len(days)-1]

	details, err := s.bookingRepo.ListDetails(ctx, repository.DetailFilter{ScheduleIDs: ids, From: from, To: to})
	if err != nil {
		return nil, err
	}
	memberships, err := s.membershipRepo.ListInRange(ctx, from, to, ids)
	if err != nil {
		return nil, err
	}

	detailAt := make(map[slotKey]*model.BookingDetail, len(details))
	for i := range details {
		k := slotKey{calendar.FormatDate(dateOf(details[i].BookingDate)), details[i].ScheduleID}
		if _, ok := detailAt[k]; !ok {
			detailAt[k] = &details[i]
		}
	}
	memberAt := make(map[slotKey]*model.Membership)
	for i := range memberships {
		m := &memberships[i]
		r := calendar.DateRange{Start: dateOf(m.StartDate), End: dateOf(m.EndDate)}
		for _, d := range days {
			if !calendar.OccursOn(r, m.BookingDay, d) {
				continue
			}
			k := slotKey{calendar.FormatDate(d), m.ScheduleID}
			if _, ok := memberAt[k]; !ok {
				memberAt[k] = m
			}
		}
	}

	sort.SliceStable(schedules, func(i, j int) bool {
		return schedules[i].TimeSlot() < schedules[j].TimeSlot()
	})
	for i := range schedules {
		sc := &schedules[i]
		row := WeeklyRow{ScheduleID: sc.ID, TimeSlot: sc.TimeSlot(), Price: sc.Price, Cells: make([]SlotCell, 0, len(days))}
		for _, col := range out.Days {
			k := slotKey{col.Date, sc.ID}
			row.Cells = append(row.Cells, resolveCell(sc, detailAt[k], memberAt[k]))
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// ResolveMembershipAvailability: матрица по дню недели только по членствам.
// Слот занят, если членство действует на today (start_date <= today <= end_date).
// Ячейки несут данные участника; для публичной выдачи есть StatusOnly.
func (s *AvailabilityService) ResolveMembershipAvailability(ctx context.Context, weekday int, today time.Time) (_ *MembershipMatrix, err error) {
	ctx, span := startSpan(ctx, "availability.ResolveMembershipAvailability", attribute.Int("day", weekday))
	defer func() { finishSpan(span, err) }()

	if !calendar.ValidWeekday(weekday) {
		return nil, invalid("day", "%s", calendar.ErrInvalidWeekday.Error())
	}

	schedules, err := s.scheduleRepo.ListWithField(ctx, nil)
	if err != nil {
		return nil, err
	}
	memberships, err := s.membershipRepo.ListByDay(ctx, weekday, calendar.DateOnly(today))
	if err != nil {
		return nil, err
	}

	memberBySchedule := make(map[uuid.UUID]*model.Membership, len(memberships))
	for i := range memberships {
		if _, ok := memberBySchedule[memberships[i].ScheduleID]; !ok {
			memberBySchedule[memberships[i].ScheduleID] = &memberships[i]
		}
	}

	out := &MembershipMatrix{Day: weekday, DayName: calendar.DayName(weekday)}
	out.Fields = groupByField(schedules, func(sc *model.Schedule) SlotCell {
		cell := SlotCell{ScheduleID: sc.ID, TimeSlot: sc.TimeSlot(), Price: sc.Price, Status: SlotAvailable}
		if m, ok := memberBySchedule[sc.ID]; ok {
			id := m.ID
			cell.Status = SlotBooked
			cell.MembershipID = &id
			cell.BookingStatus = MembershipBookingStatus
			cell.CustomerInfo = &CustomerInfo{ID: m.ID, Name: memberName(m.Name)}
		}
		return cell
	})
	return out, nil
}

// DailyAgenda: брони и членства на дату одним списком, по полю и времени.
func (s *AvailabilityService) DailyAgenda(ctx context.Context, date time.Time) (_ *DailyAgenda, err error) {
	date = calendar.DateOnly(date)
	ctx, span := startSpan(ctx, "availability.DailyAgenda", attribute.String("date", calendar.FormatDate(date)))
	defer func() { finishSpan(span, err) }()

	details, err := s.bookingRepo.ListDetails(ctx, repository.DetailFilter{From: date, To: date})
	if err != nil {
		return nil, err
	}
	memberships, err := s.membershipRepo.ListActiveOn(ctx, date, nil)
	if err != nil {
		return nil, err
	}

	entries := make([]AgendaEntry, 0, len(details)+len(memberships))
	for i := range details {
		d := &details[i]
		if d.Schedule == nil || d.Schedule.Field == nil || d.Header == nil {
			s.logger.Warn("agenda: booking detail without schedule or header", zap.String("detail_id", d.ID.String()))
			continue
		}
		headerID := d.BookingHeaderID
		e := AgendaEntry{
			FieldID:         d.Schedule.FieldID,
			FieldName:       d.Schedule.Field.Name,
			ScheduleID:      d.ScheduleID,
			TimeSlot:        d.Schedule.TimeSlot(),
			BookingHeaderID: &headerID,
			Status:          string(d.Header.Status),
			CustomerInfo:    CustomerInfo{ID: d.Header.CustomerID},
			Notes:           d.Header.Notes,
			start:           d.Schedule.StartTime,
		}
		if d.Header.Customer != nil {
			e.CustomerInfo.Name = d.Header.Customer.Name
		}
		entries = append(entries, e)
	}
	for i := range memberships {
		m := &memberships[i]
		if m.Schedule == nil || m.Schedule.Field == nil {
			continue
		}
		id := m.ID
		entries = append(entries, AgendaEntry{
			FieldID:      m.Schedule.FieldID,
			FieldName:    m.Schedule.Field.Name,
			ScheduleID:   m.ScheduleID,
			TimeSlot:     m.Schedule.TimeSlot(),
			MembershipID: &id,
			Status:       MembershipBookingStatus,
			CustomerInfo: CustomerInfo{ID: m.ID, Name: memberName(m.Name)},
			Notes:        m.Notes,
			start:        m.Schedule.StartTime,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].FieldName != entries[j].FieldName {
			return entries[i].FieldName < entries[j].FieldName
		}
		return entries[i].start.Before(entries[j].start)
	})
	return &DailyAgenda{Date: calendar.FormatDate(date), Entries: entries}, nil
}

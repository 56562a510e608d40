package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// NewID выдаёт сортируемый по времени идентификатор (UUIDv7).
func NewID() (uuid.UUID, error) {
	return uuid.NewV7()
}

// TimeOfDay: время суток без даты и зоны, хранится как "HH:MM:SS".
type TimeOfDay struct {
	sec int
}

func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	return TimeOfDay{sec: hour*3600 + minute*60 + second}
}

// ParseTimeOfDay принимает "HH:MM" или "HH:MM:SS".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var t TimeOfDay
	return t, t.parse(s)
}

func (t *TimeOfDay) parse(s string) error {
	s = strings.TrimSpace(s)
	if len(s) == 5 { // "HH:MM"
		s += ":00"
	}
	tt, err := time.Parse("15:04:05", s)
	if err != nil {
		return fmt.Errorf("time of day %q: expected HH:MM or HH:MM:SS", s)
	}
	t.sec = tt.Hour()*3600 + tt.Minute()*60 + tt.Second()
	return nil
}

func (t TimeOfDay) Before(o TimeOfDay) bool { return t.sec < o.sec }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.sec/3600, t.sec%3600/60, t.sec%60)
}

// Short: "HH:MM".
func (t TimeOfDay) Short() string {
	return t.String()[:5]
}

// GormDBDataType: в sqlite тип time превратился бы в datetime, и драйвер не смог бы разобрать "08:00:00".
func (TimeOfDay) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "time"
	}
	return "varchar(8)"
}

func (t *TimeOfDay) Scan(v any) error {
	switch x := v.(type) {
	case time.Time:
		t.sec = x.Hour()*3600 + x.Minute()*60 + x.Second()
		return nil
	case []byte:
		return t.Scan(string(x))
	case string:
		// postgres может вернуть "08:00:00.000000"
		if i := strings.IndexByte(x, '.'); i > 0 {
			x = x[:i]
		}
		return t.parse(x)
	case nil:
		t.sec = 0
		return nil
	default:
		return fmt.Errorf("time of day: unsupported Scan type %T", v)
	}
}

func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String(), nil
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return t.parse(s)
}

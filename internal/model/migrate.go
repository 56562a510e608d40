package model

import "gorm.io/gorm"

// AutoMigrate выполняет миграцию всех сущностей (sqlite и тесты).
// Для Postgres схема ведётся SQL-миграциями в internal/db.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Customer{},
		&Field{},
		&Schedule{},
		&Package{},
		&BookingHeader{},
		&BookingDetail{},
		&Membership{},
		&Event{},
	)
}

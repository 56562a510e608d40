package repository

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// likePattern готовит шаблон для регистронезависимого поиска через LOWER(...) LIKE ?.
func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}

// excludeID добавляет условие "id <> ?" если id задан.
func excludeID(q *gorm.DB, column string, id *uuid.UUID) *gorm.DB {
	if id == nil || *id == uuid.Nil {
		return q
	}
	return q.Where(column+" <> ?", *id)
}

package database

import (
	"gorm.io/gorm"
)

// OwnedBy restricts a query to rows belonging to userID. Every task and
// activity query goes through it.
func OwnedBy(userID uint64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

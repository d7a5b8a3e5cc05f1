package database

import (
	"gorm.io/gorm"

	"github.com/ldaehi0205/go-board-backend/internal/domain"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.RefreshToken{},
	)
}

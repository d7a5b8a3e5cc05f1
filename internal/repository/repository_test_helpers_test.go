package repository

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ldaehi0205/go-board-backend/internal/domain"
)

func newRepositoryDBForTest(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.RefreshToken{},
	); err != nil {
		t.Fatalf("migrate db: %v", err)
	}
	return db
}

func createUserForTest(t *testing.T, db *gorm.DB, loginName string) *domain.User {
	t.Helper()
	u := &domain.User{LoginName: loginName, PasswordHash: "x", DisplayName: "Test " + loginName}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", loginName, err)
	}
	return u
}

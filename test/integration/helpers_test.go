package integration

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ldaehi0205/go-board-backend/internal/domain"
	"github.com/ldaehi0205/go-board-backend/internal/http/handler"
	"github.com/ldaehi0205/go-board-backend/internal/http/middleware"
	"github.com/ldaehi0205/go-board-backend/internal/http/router"
	"github.com/ldaehi0205/go-board-backend/internal/repository"
	"github.com/ldaehi0205/go-board-backend/internal/security"
	"github.com/ldaehi0205/go-board-backend/internal/service"
)

const (
	testSecret         = "integration-secret-integration-secret"
	testIssuer         = "go-board"
	testIdleWindow     = 14 * 24 * time.Hour
	testAbsoluteWindow = 30 * 24 * time.Hour
)

type testStack struct {
	srv *httptest.Server
	db  *gorm.DB
}

func newAuthTestStack(t *testing.T, accessTTL time.Duration) *testStack {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.RefreshToken{}); err != nil {
		t.Fatalf("migrate db: %v", err)
	}

	codec := security.NewTokenCodec(testSecret, testIssuer, accessTTL)
	svc := service.NewAuthService(
		repository.NewUserRepository(db),
		repository.NewRefreshTokenRepository(db),
		codec,
		testIdleWindow,
		testAbsoluteWindow,
	)
	authHandler := handler.NewAuthHandler(svc, security.NewCookieManager(false, "lax"))

	mux := router.New(router.Dependencies{
		AuthHandler:      authHandler,
		TokenCodec:       codec,
		AuthLimiter:      middleware.NewLocalFixedWindowLimiter(),
		AuthRateLimitRPM: 1000,
		LimiterMode:      middleware.FailClosed,
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return &testStack{srv: srv, db: db}
}

// ageRefreshToken backdates a stored token's timestamps to simulate the
// passage of time without an injectable clock in the wired stack.
func (s *testStack) ageRefreshToken(t *testing.T, value string, lastSeen, expires time.Time) {
	t.Helper()
	res := s.db.Model(&domain.RefreshToken{}).
		Where("token = ?", value).
		Updates(map[string]any{"last_seen_at": lastSeen, "expires_at": expires})
	if res.Error != nil {
		t.Fatalf("age token: %v", res.Error)
	}
	if res.RowsAffected != 1 {
		t.Fatalf("expected to age 1 row, got %d", res.RowsAffected)
	}
}

func (s *testStack) countLiveFamilyTokens(t *testing.T, familyID string) int64 {
	t.Helper()
	var n int64
	if err := s.db.Model(&domain.RefreshToken{}).
		Where("family_id = ? AND revoked = ?", familyID, false).
		Count(&n).Error; err != nil {
		t.Fatalf("count family tokens: %v", err)
	}
	return n
}

func (s *testStack) familyOf(t *testing.T, value string) string {
	t.Helper()
	var token domain.RefreshToken
	if err := s.db.Where("token = ?", value).First(&token).Error; err != nil {
		t.Fatalf("load token: %v", err)
	}
	return token.FamilyID
}

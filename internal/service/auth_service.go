package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ldaehi0205/go-board-backend/internal/domain"
	"github.com/ldaehi0205/go-board-backend/internal/observability"
	"github.com/ldaehi0205/go-board-backend/internal/repository"
	"github.com/ldaehi0205/go-board-backend/internal/security"
)

var (
	// ErrInvalidCredentials covers both unknown login names and wrong
	// passwords so the two are indistinguishable to a caller.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateUser      = errors.New("login name already taken")
	ErrInvalidToken       = errors.New("invalid refresh token")
	ErrExpiredToken       = errors.New("expired refresh token")
)

// AuthResult carries everything a successful register, login or refresh
// hands back to the transport layer.
type AuthResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken *domain.RefreshToken
}

type AuthService struct {
	users          repository.UserRepository
	tokens         repository.RefreshTokenRepository
	codec          *security.TokenCodec
	idleWindow     time.Duration
	absoluteWindow time.Duration

	// injectable for expiry tests
	now func() time.Time
}

func NewAuthService(
	users repository.UserRepository,
	tokens repository.RefreshTokenRepository,
	codec *security.TokenCodec,
	idleWindow, absoluteWindow time.Duration,
) *AuthService {
	return &AuthService{
		users:          users,
		tokens:         tokens,
		codec:          codec,
		idleWindow:     idleWindow,
		absoluteWindow: absoluteWindow,
		now:            time.Now,
	}
}

// RefreshTTL is the absolute lifetime of a refresh token, exposed so the
// transport layer can align the cookie Max-Age with the stored expiry.
func (s *AuthService) RefreshTTL() time.Duration { return s.absoluteWindow }

func (s *AuthService) Register(ctx context.Context, loginName, password, displayName string) (*AuthResult, error) {
	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{LoginName: loginName, PasswordHash: hash, DisplayName: displayName}
	if err := s.users.Create(user); err != nil {
		if errors.Is(err, repository.ErrDuplicateLoginName) {
			observability.RecordAuthEvent(ctx, "register", "duplicate")
			return nil, ErrDuplicateUser
		}
		observability.RecordAuthEvent(ctx, "register", "error")
		return nil, err
	}
	res, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	observability.RecordAuthEvent(ctx, "register", "success")
	return res, nil
}

func (s *AuthService) Login(ctx context.Context, loginName, password string) (*AuthResult, error) {
	user, err := s.users.FindByLoginName(loginName)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// burn a bcrypt comparison so unknown users cost the same
			// as wrong passwords
			security.BurnPasswordCheck(password)
			observability.RecordAuthEvent(ctx, "login", "unknown_user")
			return nil, ErrInvalidCredentials
		}
		observability.RecordAuthEvent(ctx, "login", "error")
		return nil, err
	}
	if !security.CheckPassword(user.PasswordHash, password) {
		observability.RecordAuthEvent(ctx, "login", "bad_password")
		return nil, ErrInvalidCredentials
	}
	res, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	observability.RecordAuthEvent(ctx, "login", "success")
	return res, nil
}

// Refresh validates the presented refresh token and, when it is live,
// rotates it: the old token is revoked and a successor in the same family
// is minted together with a fresh access token.
//
// A replayed (already revoked) token is treated as evidence the chain
// leaked, so the whole family is revoked before the caller is rejected.
func (s *AuthService) Refresh(ctx context.Context, tokenValue string) (*AuthResult, error) {
	token, err := s.tokens.FindByToken(tokenValue)
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			observability.RecordTokenRotation(ctx, "unknown")
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	now := s.now().UTC()
	switch {
	case token.Revoked:
		if n, ferr := s.tokens.RevokeFamily(token.FamilyID); ferr == nil && n > 0 {
			observability.RecordTokenRotation(ctx, "family_revoked")
		}
		observability.RecordTokenRotation(ctx, "replayed")
		return nil, ErrInvalidToken
	case now.After(token.ExpiresAt):
		observability.RecordTokenRotation(ctx, "expired")
		return nil, ErrExpiredToken
	case now.Sub(token.LastSeenAt) >= s.idleWindow:
		observability.RecordTokenRotation(ctx, "idle")
		return nil, ErrExpiredToken
	}

	user, err := s.users.FindByID(token.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			observability.RecordTokenRotation(ctx, "orphaned")
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	next, err := s.tokens.Rotate(token.ID, token.UserID, token.FamilyID, now.Add(s.absoluteWindow))
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenRevoked) {
			observability.RecordTokenRotation(ctx, "lost_race")
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	access, err := s.codec.SignAccessToken(user.ID, user.LoginName)
	if err != nil {
		return nil, err
	}
	observability.RecordTokenRotation(ctx, "success")
	return &AuthResult{User: user, AccessToken: access, RefreshToken: next}, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID uint) (*domain.User, error) {
	return s.users.FindByID(userID)
}

func (s *AuthService) issue(ctx context.Context, user *domain.User) (*AuthResult, error) {
	access, err := s.codec.SignAccessToken(user.ID, user.LoginName)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.Create(user.ID, uuid.NewString(), s.now().UTC().Add(s.absoluteWindow))
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ldaehi0205/go-board-backend/internal/domain"
	"github.com/ldaehi0205/go-board-backend/internal/http/middleware"
	"github.com/ldaehi0205/go-board-backend/internal/http/response"
	"github.com/ldaehi0205/go-board-backend/internal/observability"
	"github.com/ldaehi0205/go-board-backend/internal/repository"
	"github.com/ldaehi0205/go-board-backend/internal/security"
	"github.com/ldaehi0205/go-board-backend/internal/service"
)

const (
	maxLoginNameLen = 64
	minPasswordLen  = 8
)

type AuthHandler struct {
	authSvc *service.AuthService
	cookies *security.CookieManager
}

func NewAuthHandler(authSvc *service.AuthService, cookies *security.CookieManager) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, cookies: cookies}
}

type registerRequest struct {
	LoginName   string `json:"loginName"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type loginRequest struct {
	LoginName string `json:"loginName"`
	Password  string `json:"password"`
}

type sessionResponse struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"accessToken"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeBadRequest, "invalid request body")
		return
	}
	req.LoginName = strings.TrimSpace(req.LoginName)
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if msg := validateRegistration(req); msg != "" {
		response.Error(w, http.StatusBadRequest, response.CodeBadRequest, msg)
		return
	}

	res, err := h.authSvc.Register(r.Context(), req.LoginName, req.Password, req.DisplayName)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateUser) {
			response.Error(w, http.StatusBadRequest, response.CodeDuplicateUser, "login name already taken")
			return
		}
		response.Error(w, http.StatusInternalServerError, response.CodeInternal, "failed to register")
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "auth.register",
		ActorUserID: observability.ActorUserID(res.User.ID),
		TargetType:  "user",
		TargetID:    res.User.LoginName,
		Action:      "register",
		Outcome:     "success",
	})
	h.cookies.SetRefreshTokenCookie(w, res.RefreshToken.Token, h.authSvc.RefreshTTL())
	response.JSON(w, http.StatusCreated, sessionResponse{User: res.User, AccessToken: res.AccessToken})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeBadRequest, "invalid request body")
		return
	}
	if req.LoginName == "" || req.Password == "" {
		response.Error(w, http.StatusBadRequest, response.CodeBadRequest, "loginName and password are required")
		return
	}

	res, err := h.authSvc.Login(r.Context(), req.LoginName, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Error(w, http.StatusUnauthorized, response.CodeInvalidCredentials, "invalid login name or password")
			return
		}
		response.Error(w, http.StatusInternalServerError, response.CodeInternal, "failed to log in")
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "auth.login",
		ActorUserID: observability.ActorUserID(res.User.ID),
		TargetType:  "user",
		TargetID:    res.User.LoginName,
		Action:      "login",
		Outcome:     "success",
	})
	h.cookies.SetRefreshTokenCookie(w, res.RefreshToken.Token, h.authSvc.RefreshTTL())
	response.JSON(w, http.StatusOK, sessionResponse{User: res.User, AccessToken: res.AccessToken})
}

// Refresh exchanges the refresh cookie for a new access token. The cookie
// is rotated on every success; a rejected token clears it so the browser
// stops replaying a dead credential.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	raw := security.GetCookie(r, security.RefreshTokenCookie)
	if raw == "" {
		response.Error(w, http.StatusUnauthorized, response.CodeAuthorization, "refresh token required")
		return
	}

	res, err := h.authSvc.Refresh(r.Context(), raw)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExpiredToken):
			h.cookies.ClearRefreshTokenCookie(w)
			response.Error(w, http.StatusUnauthorized, response.CodeExpiredToken, "refresh token expired")
		case errors.Is(err, service.ErrInvalidToken):
			h.cookies.ClearRefreshTokenCookie(w)
			response.Error(w, http.StatusUnauthorized, response.CodeInvalidToken, "invalid refresh token")
		default:
			response.Error(w, http.StatusInternalServerError, response.CodeInternal, "failed to refresh session")
		}
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "auth.refresh",
		ActorUserID: observability.ActorUserID(res.User.ID),
		TargetType:  "refresh_token",
		TargetID:    res.RefreshToken.FamilyID,
		Action:      "rotate",
		Outcome:     "success",
	})
	h.cookies.SetRefreshTokenCookie(w, res.RefreshToken.Token, h.authSvc.RefreshTTL())
	response.JSON(w, http.StatusOK, sessionResponse{User: res.User, AccessToken: res.AccessToken})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, response.CodeAuthorization, "authorization required")
		return
	}
	userID, err := claims.UserID()
	if err != nil {
		response.Error(w, http.StatusUnauthorized, response.CodeInvalidToken, "invalid access token")
		return
	}
	user, err := h.authSvc.CurrentUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.Error(w, http.StatusNotFound, response.CodeNotFound, "user not found")
			return
		}
		response.Error(w, http.StatusInternalServerError, response.CodeInternal, "failed to load user")
		return
	}
	response.JSON(w, http.StatusOK, user)
}

func validateRegistration(req registerRequest) string {
	switch {
	case req.LoginName == "":
		return "loginName is required"
	case len(req.LoginName) > maxLoginNameLen:
		return "loginName is too long"
	case len(req.Password) < minPasswordLen:
		return "password must be at least 8 characters"
	case req.DisplayName == "":
		return "displayName is required"
	}
	return ""
}

package security

import (
	"net/http"
	"strings"
	"time"
)

// RefreshTokenCookie is the only cookie this service owns. It is scoped to
// the whole origin so the refresh endpoint sees it regardless of mount path.
const RefreshTokenCookie = "refreshToken"

type CookieManager struct {
	Secure   bool
	SameSite http.SameSite
}

func NewCookieManager(secure bool, sameSite string) *CookieManager {
	ss := http.SameSiteLaxMode
	switch strings.ToLower(sameSite) {
	case "none":
		ss = http.SameSiteNoneMode
	case "strict":
		ss = http.SameSiteStrictMode
	}
	return &CookieManager{Secure: secure, SameSite: ss}
}

func (c *CookieManager) SetRefreshTokenCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: c.SameSite,
		MaxAge:   int(ttl.Seconds()),
	})
}

func (c *CookieManager) ClearRefreshTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: c.SameSite,
		MaxAge:   -1,
	})
}

func GetCookie(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

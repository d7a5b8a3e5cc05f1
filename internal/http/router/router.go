package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ldaehi0205/go-board-backend/internal/http/handler"
	"github.com/ldaehi0205/go-board-backend/internal/http/middleware"
	"github.com/ldaehi0205/go-board-backend/internal/http/response"
	"github.com/ldaehi0205/go-board-backend/internal/security"
)

type Dependencies struct {
	AuthHandler      *handler.AuthHandler
	TokenCodec       *security.TokenCodec
	AuthLimiter      middleware.Limiter
	AuthRateLimitRPM int
	LimiterMode      middleware.FailureMode
}

func New(dep Dependencies) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	authRL := middleware.NewRateLimiter(dep.AuthLimiter, dep.AuthRateLimitRPM, time.Minute, dep.LimiterMode, "auth")

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(auth chi.Router) {
			auth.With(authRL.Middleware()).Post("/register", dep.AuthHandler.Register)
			auth.With(authRL.Middleware()).Post("/login", dep.AuthHandler.Login)
			auth.With(authRL.Middleware()).Post("/refresh", dep.AuthHandler.Refresh)
			auth.With(middleware.RequireAuth(dep.TokenCodec)).Get("/me", dep.AuthHandler.Me)
		})
	})

	return r
}

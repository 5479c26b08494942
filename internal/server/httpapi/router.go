package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes builds the full handler tree.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))
	r.Use(metricsMiddleware)

	r.Get("/health", s.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(chimw.AllowContentType("application/json"))
		r.Use(chimw.SetHeader("Content-Type", "application/json"))

		r.Route("/auth", func(r chi.Router) {
			r.Use(rateLimit(s.authRateLimit, httprate.KeyByIP))
			r.Post("/register", s.register)
			r.Get("/verify-email/{token}", s.verifyEmail)
			r.Post("/resend-verification", s.resendVerification)
			r.Post("/login", s.login)
			r.Post("/refresh", s.refresh)
			r.Post("/forgot-password", s.forgotPassword)
			r.Post("/reset-password/{token}", s.resetPassword)
		})

		r.With(rateLimit(s.unlockRateLimit, httprate.KeyByIP, keyByLetterID)).
			Post("/letters/{id}/unlock", s.unlockLetter)

		r.Group(func(r chi.Router) {
			r.Use(s.accessTokenMiddleware)

			r.Get("/users/me", s.me)
			r.Post("/users/me/checkin", s.checkIn)

			r.Get("/letters", s.listLetters)
			r.Post("/letters", s.createLetter)
			r.Get("/letters/{id}", s.getLetter)
			r.Put("/letters/{id}", s.updateLetter)
			r.Delete("/letters/{id}", s.deleteLetter)
			r.Post("/letters/{id}/finalize", s.finalizeLetter)
			r.Post("/letters/{id}/attachment", s.attachmentUploadURL)
		})
	})

	return r
}

// rateLimit allows limit requests per minute for each key. A non-positive
// limit disables it.
func rateLimit(limit int, keys ...httprate.KeyFunc) func(http.Handler) http.Handler {
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(limit, time.Minute,
		httprate.WithKeyFuncs(keys...),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeErr(w, http.StatusTooManyRequests, ErrCodeRateLimited, "too many requests, please try again later")
		}),
	)
}

func keyByLetterID(r *http.Request) (string, error) {
	return chi.URLParam(r, "id"), nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

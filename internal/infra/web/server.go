package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"scenario-quiz/internal/config"
	"scenario-quiz/internal/infra/metrics"
	"scenario-quiz/internal/usecase"
)

type Server struct {
	ledgerUC     usecase.LedgerUseCase
	sessionUC    usecase.SessionUseCase
	generationUC usecase.GenerationUseCase
	exportUC     usecase.ExportUseCase
	auth         *AuthManager
	adminPass    string
	httpCfg      config.HTTPConfig
	sessCfg      config.SessionConfig
	dev          bool
	log          *zerolog.Logger
}

func NewServer(
	ledgerUC usecase.LedgerUseCase,
	sessionUC usecase.SessionUseCase,
	generationUC usecase.GenerationUseCase,
	exportUC usecase.ExportUseCase,
	auth *AuthManager,
	cfg *config.Config,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		ledgerUC:     ledgerUC,
		sessionUC:    sessionUC,
		generationUC: generationUC,
		exportUC:     exportUC,
		auth:         auth,
		adminPass:    cfg.Admin.Password,
		httpCfg:      cfg.HTTP,
		sessCfg:      cfg.Session,
		dev:          cfg.Runtime.Dev,
		log:          logger,
	}
}

// Routes builds the full HTTP surface.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(TraceID(s.log), RequestLog(s.log), Recover(s.log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/subjects", s.handleSubjects)

		r.Group(func(r chi.Router) {
			r.Use(Session(s.sessCfg.CookieName, s.sessCfg.TTL, s.httpCfg.SecureCookies))

			r.Group(func(r chi.Router) {
				r.Use(Timeout(s.httpCfg.RequestTimeout))
				r.Post("/session/redeem", s.handleRedeem)
				r.Get("/session", s.handleActive)
				r.Delete("/session", s.handleExit)
				r.Post("/questions", s.handleGenerate)
				r.Get("/questions/current", s.handleCurrent)
			})
			r.With(Timeout(s.httpCfg.ExportTimeout)).Get("/questions/current/pdf", s.handleExport)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(Timeout(s.httpCfg.RequestTimeout))
			r.Post("/login", s.handleAdminLogin)
			r.Post("/logout", s.handleAdminLogout)
			r.Group(func(r chi.Router) {
				r.Use(s.requireAdmin)
				r.Get("/tokens", s.handleListTokens)
				r.Post("/tokens", s.handleIssueToken)
			})
		})
	})
	return r
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.auth.ParseFromRequest(r); err != nil {
			metrics.IncAdminAction("tokens", "unauthorized")
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// NewHTTPServer wraps the routes with the server-level timeouts.
func NewHTTPServer(cfg config.HTTPConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}

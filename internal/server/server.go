package server

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
	"moul.io/chizap"

	"github.com/wecare-dev/wecare/internal/admin"
	"github.com/wecare-dev/wecare/internal/auth"
	"github.com/wecare-dev/wecare/internal/authz"
	"github.com/wecare-dev/wecare/internal/config"
	"github.com/wecare-dev/wecare/internal/httpx"
	"github.com/wecare-dev/wecare/internal/middleware"
	"github.com/wecare-dev/wecare/internal/patient"
	"github.com/wecare-dev/wecare/internal/request"
	"github.com/wecare-dev/wecare/internal/ride"
	"github.com/wecare-dev/wecare/internal/session"
	"github.com/wecare-dev/wecare/internal/token"
	"github.com/wecare-dev/wecare/internal/user"
)

type Server struct {
	cfg    *config.Config
	logger *zap.Logger
	http   *http.Server
}

func New(cfg *config.Config, db *sql.DB, logger *zap.Logger) (*Server, error) {
	codec, err := token.NewCodec(cfg.JWTConfig.Secret, cfg.JWTConfig.Issuer, cfg.JWTConfig.Audience)
	if err != nil {
		return nil, err
	}

	users := user.NewRepo(db, logger)
	grants := authz.NewGrantRepo(db, logger)
	resolver := session.NewResolver(codec, users, logger)
	gate := authz.NewGate(grants, logger)
	guarded := middleware.NewGuarded(resolver, gate, logger)

	cookies := httpx.CookieSettings{
		Domain:   cfg.CookieConfig.Domain,
		Secure:   cfg.AppConfig.IsProduction(),
		SameSite: httpx.ParseSameSite(cfg.CookieConfig.SameSite),
	}

	authHandler := auth.NewHandler(
		auth.NewService(users, codec, cfg.JWTConfig.SessionTTL, logger),
		resolver, cookies, logger,
	)
	requestHandler := request.NewHandler(request.NewRepo(db, logger), logger)
	patientHandler := patient.NewHandler(patient.NewRepo(db, logger), logger)
	rideHandler := ride.NewHandler(ride.NewRepo(db, logger), logger)
	adminHandler := admin.NewHandler(users, grants, resolver, logger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chizap.New(logger, &chizap.Opts{WithReferer: false, WithUserAgent: false}))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		// credential endpoints carry a per-IP, per-path limit; the counters
		// are best-effort in-process state
		r.With(httprate.Limit(
			10, time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
		)).Mount("/auth", authHandler.Routes())

		browser := session.SourceCookie
		r.With(guarded.Protect(browser,
			user.RoleCommunity, user.RoleOfficer, user.RoleHealthOfficer,
			user.RoleAdmin, user.RoleDeveloper,
		)).Mount("/requests", requestHandler.Routes())

		r.With(guarded.Protect(browser,
			user.RoleHealthOfficer, user.RoleOfficer, user.RoleExecutive,
			user.RoleAdmin, user.RoleDeveloper,
		)).Mount("/patients", patientHandler.Routes())

		r.With(guarded.Protect(browser,
			user.RoleHealthOfficer, user.RoleOfficer, user.RoleExecutive,
			user.RoleAdmin, user.RoleDeveloper,
		)).Mount("/appointments", patientHandler.AppointmentRoutes())

		r.With(guarded.Protect(browser,
			user.RoleDriver, user.RoleOfficer, user.RoleAdmin, user.RoleDeveloper,
		)).Mount("/rides", rideHandler.Routes())

		r.With(guarded.Protect(browser,
			user.RoleAdmin, user.RoleDeveloper,
		)).Mount("/admin", adminHandler.Routes())
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return &Server{
		cfg:    cfg,
		logger: logger,
		http: &http.Server{
			Addr:         ":" + cfg.AppConfig.Port,
			Handler:      r,
			ReadTimeout:  cfg.AppConfig.ReadTimeout,
			WriteTimeout: cfg.AppConfig.WriteTimeout,
			IdleTimeout:  cfg.AppConfig.IdleTimeout,
		},
	}, nil
}

func (s *Server) Run() error {
	s.logger.Info("http server listening", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

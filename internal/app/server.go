package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/Udhayakumar116/ai-question-gen/internal/api/handlers"
	appMiddleware "github.com/Udhayakumar116/ai-question-gen/internal/api/middlewares"
	"github.com/Udhayakumar116/ai-question-gen/internal/config"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// Handlers groups everything the router serves.
type Handlers struct {
	Auth     *handlers.AuthHandler
	Docs     *handlers.DocumentHandler
	Analyses *handlers.AnalysisHandler
	Chat     *handlers.ChatHandler
}

// NewRouter builds and wires all routes.
func NewRouter(cfg *config.Config, h Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api", func(api chi.Router) {
		// public endpoints
		api.Post("/signup", h.Auth.Signup)
		api.Post("/login", h.Auth.Login)

		// protected endpoints
		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.JWTMiddleware(cfg.JWTSecret))

			protected.Route("/workspace", func(ws chi.Router) {
				ws.With(middleware.Timeout(5*time.Minute)).Post("/files", h.Docs.UploadDocuments)
				ws.Get("/files", h.Docs.ListDocuments)
				ws.Delete("/files/{index}", h.Docs.RemoveDocument)
				ws.Delete("/", h.Docs.ClearDocuments)
			})

			protected.Route("/analyses", func(an chi.Router) {
				an.With(middleware.Timeout(3*time.Minute)).Post("/", h.Analyses.CreateAnalysis)
				an.Get("/", h.Analyses.ListAnalyses)
				an.Get("/{id}", h.Analyses.GetAnalysis)
				an.Delete("/{id}", h.Analyses.DeleteAnalysis)
				an.Get("/{id}/export", h.Analyses.ExportAnalysis)
				an.Post("/{id}/export", h.Analyses.PublishAnalysis)
				an.Post("/{id}/chat", h.Chat.ChatAnalysis)
			})
		})
	})

	return r
}

func NewServer(cfg *config.Config, handler http.Handler, logger *zap.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

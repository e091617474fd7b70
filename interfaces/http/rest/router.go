// Package rest wires the HTTP surface: router, middleware chain and the
// per-resource handlers.
package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"mysre-backend/infrastructure/config"
	"mysre-backend/infrastructure/persistence"
	"mysre-backend/interfaces/http/rest/handlers"
	"mysre-backend/interfaces/http/rest/middleware"
)

// Handlers groups every REST handler the router mounts.
type Handlers struct {
	Articles      *handlers.ArticleHandler
	Graph         *handlers.GraphHandler
	Drafts        *handlers.DraftHandler
	Brainstorming *handlers.SessionHandler
	Writer        *handlers.SessionHandler
	Profile       *handlers.ProfileHandler
	Telemetry     *handlers.TelemetryHandler
	Assistant     *handlers.AssistantHandler
	Uploads       *handlers.UploadProgressHandler
}

// Setup configures all routes and middleware.
func Setup(cfg *config.Config, dynamic *config.DynamicProvider, db *gorm.DB, authenticate func(http.Handler) http.Handler, h Handlers, logger *zap.Logger) http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Metrics)

	// Origins are evaluated per request so extraOrigins edits in the
	// overrides file apply without a restart.
	router.Use(cors.Handler(cors.Options{
		AllowOriginFunc: func(r *http.Request, origin string) bool {
			return originAllowed(cfg.AllowedOrigins, dynamic.Current().ExtraOrigins, origin)
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/health", healthCheck)
	router.Get("/ready", readinessCheck(db))
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api", func(r chi.Router) {
		r.Use(authenticate)

		r.Route("/articles", func(r chi.Router) {
			r.Post("/", h.Articles.Create)
			r.Get("/", h.Articles.List)
			r.Get("/{articleID}", h.Articles.Get)
			r.Put("/{articleID}", h.Articles.Update)
			r.Delete("/{articleID}", h.Articles.Delete)
			r.Get("/{articleID}/graph", h.Articles.GetGraph)
		})

		r.Route("/nodes", func(r chi.Router) {
			r.Post("/", h.Graph.CreateNode)
			r.Get("/{nodeID}", h.Graph.GetNode)
			r.Put("/{nodeID}", h.Graph.UpdateNode)
			r.Delete("/{nodeID}", h.Graph.DeleteNode)
		})

		r.Route("/edges", func(r chi.Router) {
			r.Post("/", h.Graph.CreateEdge)
			r.Get("/{edgeID}", h.Graph.GetEdge)
			r.Delete("/{edgeID}", h.Graph.DeleteEdge)
		})

		r.Route("/drafts", func(r chi.Router) {
			r.Post("/", h.Drafts.Create)
			r.Get("/", h.Drafts.List)
			r.Get("/{draftID}", h.Drafts.Get)
			r.Put("/{draftID}", h.Drafts.Update)
			r.Delete("/{draftID}", h.Drafts.Delete)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", h.Brainstorming.Create)
			r.Get("/", h.Brainstorming.List)
			r.Get("/{sessionID}", h.Brainstorming.Get)
			r.Put("/{sessionID}", h.Brainstorming.Update)
			r.Delete("/{sessionID}", h.Brainstorming.Delete)
		})

		r.Route("/writer-sessions", func(r chi.Router) {
			r.Post("/", h.Writer.Create)
			r.Get("/", h.Writer.List)
			r.Get("/{sessionID}", h.Writer.Get)
			r.Put("/{sessionID}", h.Writer.Update)
			r.Delete("/{sessionID}", h.Writer.Delete)
		})

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", h.Profile.Get)
			r.Put("/", h.Profile.Update)
			r.Post("/avatar", h.Profile.UploadAvatar)
		})
		r.Get("/settings", h.Profile.GetSettings)
		r.Put("/settings", h.Profile.UpdateSettings)
		r.With(middleware.RequireAdmin).Put("/users/{userID}/verification", h.Profile.SetVerification)

		r.Route("/annotations", func(r chi.Router) {
			r.Post("/", h.Telemetry.CreateAnnotation)
			r.Get("/", h.Telemetry.ListAnnotations)
			r.Delete("/{annotationID}", h.Telemetry.DeleteAnnotation)
		})

		r.Route("/assignments", func(r chi.Router) {
			r.Post("/", h.Telemetry.CreateAssignment)
			r.Get("/", h.Telemetry.ListAssignments)
			r.Put("/{assignmentID}", h.Telemetry.UpdateAssignment)
		})

		r.Post("/analytics", h.Telemetry.CreateAnalytics)
		r.With(middleware.RequireAdmin).Get("/analytics", h.Telemetry.ListAnalytics)
		r.Post("/gaze-events", h.Telemetry.CreateGazeEvents)

		r.Route("/assistant", func(r chi.Router) {
			r.Post("/chat", h.Assistant.Chat)
			r.Post("/suggestions", h.Assistant.Suggestions)
			r.Post("/summarize", h.Assistant.Summarize)
		})

		r.Get("/upload-progress", h.Uploads.Stream)
		r.Post("/upload-progress", h.Uploads.Publish)
	})

	return router
}

func originAllowed(static, extra []string, origin string) bool {
	for _, allowed := range static {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	for _, allowed := range extra {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

func readinessCheck(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		w.Header().Set("Content-Type", "application/json")
		if err := persistence.Ping(ctx, db); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}
}

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/twokhq/realtime-core/internal/api/handler"
	apimw "github.com/twokhq/realtime-core/internal/api/middleware"
	"github.com/twokhq/realtime-core/internal/registry"
	"github.com/twokhq/realtime-core/internal/service"
)

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the HTTP surface area.
func NewRouter(
	ws http.Handler,
	reg *registry.Registry,
	notifications *service.NotificationService,
	comments *service.CommentService,
	scores *service.ScoreService,
	mail *service.MailService,
	prom prometheus.Gatherer,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- global middleware (applied to every route) ---
	r.Use(chimw.Recoverer)          // recover panics, return 500
	r.Use(chimw.RealIP)             // trust X-Forwarded-For / X-Real-IP
	r.Use(chimw.RequestSize(1<<20)) // 1 MB max request body
	r.Use(apimw.CorrelationID)      // X-Correlation-ID inject / echo
	r.Use(apimw.RequestLogger(logger))

	// --- handler instances ---
	nh := handler.NewNotificationHandler(notifications, logger)
	eh := handler.NewEventHandler(comments, scores, logger)
	mh := handler.NewMailHandler(mail, logger)
	ph := handler.NewPresenceHandler(reg)
	qh := handler.NewQueueHandler(notifications, comments, scores, mail)
	hh := handler.NewHealthHandler()

	// --- routes ---
	r.Get("/health", hh.Health)

	// Raw Prometheus scrape endpoint (for Prometheus server / Grafana)
	r.Handle("/metrics", promhttp.HandlerFor(prom, promhttp.HandlerOpts{}))

	// Realtime websocket endpoint
	r.Get("/ws", ws.ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		// Ingest endpoints for the main application
		r.Post("/notifications", nh.Create)
		r.Post("/events/post", nh.CreatePost)
		r.Post("/events/comment", eh.CreateComment)
		r.Post("/events/score", eh.CreateScore)
		r.Post("/mail", mh.Create)

		// Presence lookups
		r.Get("/presence", ph.List)
		r.Get("/presence/{userID}", ph.Get)

		// JSON queue depth snapshot
		r.Get("/queues", qh.GetDepths)
	})

	return r
}

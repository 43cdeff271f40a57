package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dtroode/gophchat-server/internal/api/http/handler"
	"github.com/dtroode/gophchat-server/internal/api/http/middleware"
	"github.com/dtroode/gophchat-server/internal/logger"
)

// Router wires the public HTTP surface.
type Router struct {
	authService    handler.AuthService
	uploadService  handler.UploadService
	realtime       http.Handler
	gatherer       prometheus.Gatherer
	allowedOrigins []string
	maxUploadBytes int64
	logger         *logger.Logger
}

// New creates new HTTP Router instance. realtime serves WebSocket upgrades on /ws.
func New(
	authService handler.AuthService,
	uploadService handler.UploadService,
	realtime http.Handler,
	gatherer prometheus.Gatherer,
	allowedOrigins []string,
	maxUploadBytes int64,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		uploadService:  uploadService,
		realtime:       realtime,
		gatherer:       gatherer,
		allowedOrigins: allowedOrigins,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Register builds the handler with middleware and all routes.
func (r *Router) Register() http.Handler {
	mux := chi.NewRouter()

	logging := middleware.NewLogging(r.logger)
	mux.Use(logging.Handle)
	mux.Use(chimw.Recoverer)
	mux.Use(chimw.RealIP)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: r.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         86400,
	}))

	mux.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("gophchat relay is running"))
	})
	mux.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})
	mux.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{}))

	r.registerAuthRoutes(mux)
	r.registerUploadRoutes(mux)
	mux.Method(http.MethodGet, "/ws", r.realtime)

	return mux
}

func (r *Router) registerAuthRoutes(mux chi.Router) {
	authHandler := handler.NewAuth(r.authService, r.logger)
	mux.Post("/signup", authHandler.Signup)
	mux.Post("/login", authHandler.Login)
}

func (r *Router) registerUploadRoutes(mux chi.Router) {
	uploadHandler := handler.NewUpload(r.uploadService, r.maxUploadBytes, r.logger)
	mux.Post("/uploadimage", uploadHandler.UploadImage)
}

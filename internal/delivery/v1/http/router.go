package http

import (
	"net/http"

	_ "github.com/DRSN-tech/feedconv/docs" // спецификация swagger
	"github.com/DRSN-tech/feedconv/internal/usecase"
	"github.com/DRSN-tech/feedconv/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// HealthFunc проверяет зависимость. nil — все в порядке.
type HealthFunc func(r *http.Request) error

type Router struct {
	router  *chi.Mux
	logger  logger.Logger
	metrics *Metrics
}

func NewRouter(router *chi.Mux, metrics *Metrics, logger logger.Logger) *Router {
	return &Router{router: router, metrics: metrics, logger: logger}
}

// Deps — usecase'ы и настройки, нужные маршрутам.
type Deps struct {
	Converter      usecase.ConverterUC
	Commands       usecase.CommandUC
	Auth           usecase.AuthUC
	UploadMaxBytes int64
	CORSOrigins    []string
	Health         map[string]HealthFunc
}

func (r *Router) Init(deps Deps) {
	r.router.Use(
		middleware.RequestID,
		middleware.RealIP,
		requestLogger(r.logger),
		middleware.Recoverer,
		r.metrics.Middleware,
	)
	if len(deps.CORSOrigins) > 0 {
		r.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   deps.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.router.Get("/health", healthHandler(deps.Health))
	r.router.Handle("/metrics", r.metrics.Handler())
	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.router.Route("/api/v1", func(v1 chi.Router) {
		authHandler := NewAuthHandler(deps.Auth, r.logger)
		v1.Post("/auth/login", authHandler.login)

		v1.Group(func(protected chi.Router) {
			protected.Use(requireSession(deps.Auth))

			feedHandler := NewFeedHandler(deps.Converter, r.metrics, deps.UploadMaxBytes, r.logger)
			registerFeedRoutes(protected, feedHandler)

			runHandler := NewRunHandler(deps.Converter, r.logger)
			registerRunRoutes(protected, runHandler)

			commandHandler := NewCommandHandler(deps.Commands, r.logger)
			registerCommandRoutes(protected, commandHandler)
		})
	})
}

func registerFeedRoutes(router chi.Router, h *FeedHandler) {
	router.Get("/suppliers", h.listSuppliers)
	router.Route("/feeds", func(fr chi.Router) {
		fr.Post("/convert", h.convert)
		fr.Post("/upload", h.upload)
	})
}

func registerRunRoutes(router chi.Router, h *RunHandler) {
	router.Route("/runs", func(rr chi.Router) {
		rr.Get("/", h.listRuns)
		rr.Get("/{id}/export", h.getExport)
	})
}

func registerCommandRoutes(router chi.Router, h *CommandHandler) {
	router.Route("/baselinker", func(br chi.Router) {
		br.Post("/commands", h.execute)
		br.Get("/quick-actions", h.quickActions)
	})
}

// healthHandler
//
//	@Summary	Проверка готовности
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Failure	503	{object}	map[string]string
//	@Router		/health [get]
func healthHandler(checks map[string]HealthFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]string{"status": "ok"}

		for name, check := range checks {
			if err := check(r); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body[name] = err.Error()
				continue
			}
			body[name] = "ok"
		}

		WriteSuccess(w, status, body)
	}
}

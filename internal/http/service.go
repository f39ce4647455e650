package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/huynhvq/inventory-tracker/internal/apperr"
	"github.com/huynhvq/inventory-tracker/internal/config"
	"github.com/huynhvq/inventory-tracker/internal/http/apierr"
	"github.com/huynhvq/inventory-tracker/internal/http/metric"
	"github.com/huynhvq/inventory-tracker/internal/http/middleware"
	"github.com/huynhvq/inventory-tracker/internal/http/swagger"
	"github.com/huynhvq/inventory-tracker/internal/http/web"
	"github.com/huynhvq/inventory-tracker/internal/service"
	"github.com/huynhvq/inventory-tracker/internal/storage/db"
)

var tracer = otel.Tracer("internal/http")

// Service represents the HTTP service.
type Service struct {
	cfg     config.HTTP
	logger  *slog.Logger
	metrics *metric.Metrics

	productSvc    service.ProductService
	healthChecker db.HealthChecker
}

type CleanupFunc func(ctx context.Context) error

func New(
	cfg config.HTTP,
	log *slog.Logger,
	productSvc service.ProductService,
	healthChecker db.HealthChecker,
) *Service {
	return &Service{
		cfg:           cfg,
		logger:        log.With(slog.String("service", "http")),
		metrics:       metric.New(prometheus.DefaultRegisterer),
		productSvc:    productSvc,
		healthChecker: healthChecker,
	}
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)

	if s.cfg.Swagger {
		swagger.Register(r)
	}

	s.RegisterHandlers(r)
	web.Register(r)

	return s.RunWithServer(ctx, r)
}

func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(err)
		}
	}()

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.CorrelationID(),
		middleware.Cors(),
		middleware.Logging(s.logger),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) {
	h := newProductHandler(s.productSvc)

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.listProducts(s))
		r.Post("/", h.createProduct(s))
		r.Get("/{id}", h.getProduct(s))
		r.Put("/{id}", h.updateProduct(s))
		r.Delete("/{id}", h.deleteProduct(s))
	})

	r.Get("/healthz", s.handleHealth)

	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.healthChecker != nil {
		if healthy, err := s.healthChecker.IsHealthy(r.Context()); err != nil || !healthy {
			s.handleResponseError(w, r, apperr.StorageUnavailableErr.WrapParent(err))
			return
		}
	}

	s.respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) respondJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.ErrorContext(r.Context(), "error encoding response",
			slog.Any("error", err))
	}
}

func (s *Service) handleResponseError(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.StatusCode)

	logLevel := slog.LevelInfo
	if res.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if res.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	s.logger.Log(r.Context(), logLevel, "http response error", slog.Any("error", err))

	if err := json.NewEncoder(w).Encode(res); err != nil {
		s.logger.ErrorContext(r.Context(), "error encoding error response",
			slog.Any("error", err))
	}
}

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"example.com/reactivities/internal/mediator"
)

// Options configures NewRouter.
type Options struct {
	Mediator    *mediator.Mediator
	Logger      log.FieldLogger
	Production  bool
	CORSOrigins []string
	// Auth guards the API when set; /healthz and /metrics stay open.
	Auth func(http.Handler) http.Handler
}

// NewRouter builds the full HTTP handler. Panics below the request logger
// become the 500 exception body.
func NewRouter(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	errs := errorWriter{logger: logger, production: opts.Production}
	handler := &Handler{mediator: opts.Mediator, errors: errs}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(errs.recoverer)
	r.Use(cors(opts.CORSOrigins))
	if opts.Auth != nil {
		r.Use(opts.Auth)
	}

	r.Get("/healthz", healthz)
	r.Handle("/metrics", promhttp.Handler())
	handler.RegisterRoutes(r)
	return r
}

// Package api serves the dashboard over HTTP.
package api

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/sells-group/influencer-os/internal/dashboard"
)

// BrandHeader carries the brand scope of a request. The brand_id query
// parameter is used when the header is absent.
const BrandHeader = "X-Brand-ID"

// Config tunes the HTTP surface.
type Config struct {
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
	MetricsEnabled bool
	MetricsPath    string
	// Registry collects request metrics. A fresh registry is created when nil.
	Registry *prometheus.Registry
}

// Server routes dashboard requests.
type Server struct {
	svc      *dashboard.Service
	cfg      Config
	validate *validator.Validate
	limiter  *rate.Limiter
	registry *prometheus.Registry
	metrics  *metrics
}

// New creates a Server over svc.
func New(svc *dashboard.Service, cfg Config) *Server {
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}
	reg := cfg.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	s := &Server{
		svc:      svc,
		cfg:      cfg,
		validate: newValidator(),
		registry: reg,
		metrics:  newMetrics(reg),
	}
	if cfg.RateLimitRPS > 0 {
		burst := cfg.RateLimitBurst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), burst)
	}
	return s
}

// newValidator reports field errors by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)
	r.Use(cors.Handler(s.corsOptions()))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeData(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.cfg.MetricsEnabled {
		r.Method(http.MethodGet, s.cfg.MetricsPath, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.rateLimit)

		r.Get("/brands", s.listBrands)
		r.Get("/dashboard", s.overview)

		r.Route("/campaigns", func(r chi.Router) {
			r.Get("/", s.listCampaigns)
			r.Post("/", s.createCampaign)
			r.Get("/{id}/board", s.campaignBoard)
			r.Post("/{id}/board/move", s.moveCard)
			r.Post("/{id}/influencers", s.addToCampaign)
		})

		r.Route("/assignments/{id}", func(r chi.Router) {
			r.Patch("/", s.updateAssignment)
			r.Post("/request-invoice", s.requestInvoice)
			r.Post("/payments", s.recordPayment)
		})

		r.Get("/chase", s.chaseList)
		r.Get("/payments/queue", s.paymentQueue)
		r.Get("/reports", s.reports)
		r.Get("/reports/export", s.exportReports)

		r.Route("/influencers", func(r chi.Router) {
			r.Get("/", s.rolodex)
			r.Post("/", s.createInfluencer)
			r.Get("/{id}", s.profile)
			r.Patch("/{id}", s.updateProfile)
		})
	})
	return r
}

func (s *Server) corsOptions() cors.Options {
	opts := cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Content-Type", BrandHeader, "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	return opts
}

// session reads the brand scope of a request.
func session(r *http.Request) dashboard.Session {
	brand := strings.TrimSpace(r.Header.Get(BrandHeader))
	if brand == "" {
		brand = strings.TrimSpace(r.URL.Query().Get("brand_id"))
	}
	return dashboard.Session{BrandID: brand}
}

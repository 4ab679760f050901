// Package http exposes the record service as a JSON REST API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"fintrack/internal/core"
	"fintrack/internal/insights"
	applog "fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
)

// RecordService is the behaviour the handlers need from the service layer.
type RecordService interface {
	CreateTransaction(ctx context.Context, f core.TransactionFields) (core.Transaction, error)
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, f core.TransactionFields) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) (core.Transaction, error)

	CreateBudget(ctx context.Context, f core.BudgetFields) (core.Budget, error)
	GetBudget(ctx context.Context, id string) (core.Budget, error)
	ListBudgets(ctx context.Context) ([]core.Budget, error)
	UpdateBudget(ctx context.Context, id string, f core.BudgetFields) (core.Budget, error)
	DeleteBudget(ctx context.Context, id string) (core.Budget, error)

	Insights(ctx context.Context, period core.Period) ([]insights.Insight, error)
	MonthlyTotals(ctx context.Context) ([]core.MonthTotal, error)
	CategoryBreakdown(ctx context.Context) ([]core.CategoryAmount, error)
	Ready(ctx context.Context) error
}

// Options tunes a Server. The zero value is usable.
type Options struct {
	Logger             *applog.Logger
	RateLimitPerMinute int
	// TrustedProxies are CIDRs whose forwarded headers are believed.
	TrustedProxies []string
	// Now is the clock used for default periods; time.Now when nil.
	Now func() time.Time
}

type Server struct {
	http.Server
	service RecordService
	logger  *applog.Logger
	now     func() time.Time
	started time.Time

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server. Call Shutdown to release background goroutines.
func NewServer(addr string, svc RecordService, opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	detector := security.NewDetector()
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			return nil, err
		}
	}

	s := &Server{
		service:          svc,
		logger:           logger.WithComponent(applog.ComponentHTTP),
		now:              now,
		started:          time.Now(),
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		securityDetector: detector,
	}
	s.traceMiddleware = trace.NewMiddleware(detector.ExtractClientIP, s.logger)

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(s.handleMethodNotAllowed)

	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	router.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(s.rateLimiter.Middleware(detector.ExtractClientIP, s.handleRateLimited,
		http.MethodPost, http.MethodPut, http.MethodDelete))

	api.HandleFunc("/transactions", s.handleListTransactions).Methods(http.MethodGet)
	api.HandleFunc("/transactions", s.handleCreateTransaction).Methods(http.MethodPost)
	api.HandleFunc("/transactions/{id}", s.handleGetTransaction).Methods(http.MethodGet)
	api.HandleFunc("/transactions/{id}", s.handleUpdateTransaction).Methods(http.MethodPut)
	api.HandleFunc("/transactions/{id}", s.handleDeleteTransaction).Methods(http.MethodDelete)

	api.HandleFunc("/budgets", s.handleListBudgets).Methods(http.MethodGet)
	api.HandleFunc("/budgets", s.handleCreateBudget).Methods(http.MethodPost)
	api.HandleFunc("/budgets/{id}", s.handleGetBudget).Methods(http.MethodGet)
	api.HandleFunc("/budgets/{id}", s.handleUpdateBudget).Methods(http.MethodPut)
	api.HandleFunc("/budgets/{id}", s.handleDeleteBudget).Methods(http.MethodDelete)

	api.HandleFunc("/insights", s.handleInsights).Methods(http.MethodGet)
	api.HandleFunc("/summary/monthly", s.handleMonthlySummary).Methods(http.MethodGet)
	api.HandleFunc("/summary/categories", s.handleCategorySummary).Methods(http.MethodGet)
	api.HandleFunc("/categories", s.handleCategories).Methods(http.MethodGet)

	// Outermost first: tracing sees every request, including 404s.
	var handler http.Handler = router
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = detector.Middleware(handler)
	handler = s.traceMiddleware.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}
	return s, nil
}

// Shutdown gracefully shuts down the server and its cleanup goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

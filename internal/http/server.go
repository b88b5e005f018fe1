package http

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"finorg/internal/api"
	"finorg/internal/core"
	"finorg/internal/events"
	"finorg/internal/log"
	"finorg/internal/middleware/ratelimit"
	"finorg/internal/middleware/security"
	"finorg/internal/middleware/trace"
	"finorg/internal/query"
	"finorg/internal/session"
	appweb "finorg/web"
)

// Config carries the collaborators the server needs. Everything except
// Events is required.
type Config struct {
	Addr           string
	BackendBaseURL string

	API      *api.Client
	Queries  *query.Store
	Sessions *session.Manager
	Events   *events.Publisher

	RateLimit ratelimit.Config
}

// Server renders the dashboard pages and partials, delegating all
// business data to the backend API through the query cache.
type Server struct {
	http.Server
	templates      *template.Template
	apiClient      *api.Client
	queries        *query.Store
	sessions       *session.Manager
	events         *events.Publisher
	limiter        *ratelimit.Limiter
	backendBaseURL string

	creates         map[string]*query.Mutation[map[string]any]
	generateInsight *query.Mutation[struct{}]

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(cfg Config) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:         cfg.Addr,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		apiClient:      cfg.API,
		queries:        cfg.Queries,
		sessions:       cfg.Sessions,
		events:         cfg.Events,
		limiter:        ratelimit.NewLimiter(cfg.RateLimit),
		backendBaseURL: cfg.BackendBaseURL,
	}
	s.creates = map[string]*query.Mutation[map[string]any]{
		"cards":        s.newCreateMutation("cards", "/cards", s.refetchCards),
		"transactions": s.newCreateMutation("transactions", "/transactions", s.refetchTransactions),
		"incomes":      s.newCreateMutation("incomes", "/incomes", s.refetchIncomes),
		"loans":        s.newCreateMutation("loans", "/loans", s.refetchLoans),
	}
	s.generateInsight = query.NewMutation(func(ctx context.Context, _ struct{}) error {
		_, err := s.apiClient.Post(ctx, "/dashboard/insights/generate", nil)
		return err
	}).OnSuccess(func(ctx context.Context, _ struct{}) {
		// Targeted refresh of the two affected keys, never a page reload.
		s.queries.Invalidate(s.userKey(ctx, "summary"), s.userKey(ctx, "insights"))
		if _, err := query.RefetchAs(ctx, s.queries, s.userKey(ctx, "summary"), s.fetchSummary); err != nil {
			slog.WarnContext(ctx, "Summary refetch failed", log.FieldError, err)
		}
		if _, err := query.RefetchAs(ctx, s.queries, s.userKey(ctx, "insights"), s.fetchInsights); err != nil {
			slog.WarnContext(ctx, "Insights refetch failed", log.FieldError, err)
		}
	})

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", log.FieldError, err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		slog.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	// Public routes
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/auth/login", s.handleLogin)
	mux.HandleFunc("/auth/callback", s.handleCallback)

	// Authenticated routes
	auth := s.sessions.RequireAuth
	limited := s.limiter.Middleware(trace.ClientIP)

	mux.Handle("/logout", auth(http.HandlerFunc(s.handleLogout)))
	mux.Handle("/dashboard", auth(http.HandlerFunc(s.handleDashboard)))
	mux.Handle("/dashboard/cards", auth(http.HandlerFunc(s.handleCardsPage)))
	mux.Handle("/dashboard/transactions", auth(http.HandlerFunc(s.handleTransactionsPage)))
	mux.Handle("/dashboard/incomes", auth(http.HandlerFunc(s.handleIncomesPage)))
	mux.Handle("/dashboard/loans", auth(http.HandlerFunc(s.handleLoansPage)))
	mux.Handle("/dashboard/insights/generate", auth(limited(http.HandlerFunc(s.handleGenerateInsights))))

	// UI partials
	mux.Handle("/ui/summary", auth(http.HandlerFunc(s.handleSummaryPartial)))
	mux.Handle("/ui/insights", auth(http.HandlerFunc(s.handleInsightsPartial)))
	mux.Handle("/ui/cards", auth(http.HandlerFunc(s.handleCardsPartial)))
	mux.Handle("/ui/transactions", auth(http.HandlerFunc(s.handleTransactionsPartial)))
	mux.Handle("/ui/incomes", auth(http.HandlerFunc(s.handleIncomesPartial)))
	mux.Handle("/ui/loans", auth(http.HandlerFunc(s.handleLoansPartial)))

	// Create endpoints (rate limited)
	mux.Handle("/cards", auth(limited(http.HandlerFunc(s.handleCreateCard))))
	mux.Handle("/transactions", auth(limited(http.HandlerFunc(s.handleCreateTransaction))))
	mux.Handle("/incomes", auth(limited(http.HandlerFunc(s.handleCreateIncome))))
	mux.Handle("/loans", auth(limited(http.HandlerFunc(s.handleCreateLoan))))

	// Outer middleware chain
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(trace.ClientIP)
	withLogger := log.Middleware(log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP))
	s.Handler = headers.Middleware(tracer.Middleware(withLogger(mux)))

	return s
}

// newCreateMutation builds the create pipeline for one resource:
// POST the payload, publish the activity event, then invalidate and
// refetch the user's list key so the next partial render is fresh.
func (s *Server) newCreateMutation(resource, path string, refetch func(ctx context.Context) error) *query.Mutation[map[string]any] {
	return query.NewMutation(func(ctx context.Context, payload map[string]any) error {
		body, err := s.apiClient.Post(ctx, path, payload)
		if err != nil {
			return err
		}
		var created struct {
			ID string `json:"id"`
		}
		_ = json.Unmarshal(body, &created)
		sess, _ := session.FromContext(ctx)
		if err := s.events.PublishCreated(ctx, resource, created.ID, sess.User.ID); err != nil {
			slog.WarnContext(ctx, "Activity event publish failed", log.FieldResource, resource, log.FieldError, err)
		}
		return nil
	}).OnSuccess(func(ctx context.Context, _ map[string]any) {
		s.queries.Invalidate(s.userKey(ctx, resource))
		if err := refetch(ctx); err != nil {
			slog.WarnContext(ctx, "List refetch failed", log.FieldResource, resource, log.FieldError, err)
		}
	}).OnError(func(ctx context.Context, _ map[string]any, err error) {
		slog.ErrorContext(ctx, "Create failed", log.FieldResource, resource, log.FieldError, err)
	})
}

// userKey scopes a cache key to the authenticated user.
func (s *Server) userKey(ctx context.Context, resource string) string {
	sess, _ := session.FromContext(ctx)
	return fmt.Sprintf("user:%s:%s", sess.User.ID, resource)
}

func (s *Server) fetchSummary(ctx context.Context) (core.FinancialSummary, error) {
	var out core.FinancialSummary
	err := s.apiClient.GetJSON(ctx, "/dashboard/summary", &out)
	return out, err
}

func (s *Server) fetchInsights(ctx context.Context) ([]core.Insight, error) {
	var out []core.Insight
	err := s.apiClient.GetJSON(ctx, "/dashboard/insights", &out)
	return out, err
}

func (s *Server) refetchCards(ctx context.Context) error {
	_, err := query.RefetchAs(ctx, s.queries, s.userKey(ctx, "cards"), listFetcher[core.Card](s, "/cards", false))
	return err
}

func (s *Server) refetchTransactions(ctx context.Context) error {
	_, err := query.RefetchAs(ctx, s.queries, s.userKey(ctx, "transactions"), listFetcher[core.Transaction](s, "/transactions", false))
	return err
}

func (s *Server) refetchIncomes(ctx context.Context) error {
	_, err := query.RefetchAs(ctx, s.queries, s.userKey(ctx, "incomes"), listFetcher[core.Income](s, "/incomes", true))
	return err
}

func (s *Server) refetchLoans(ctx context.Context) error {
	_, err := query.RefetchAs(ctx, s.queries, s.userKey(ctx, "loans"), listFetcher[core.Loan](s, "/loans", true))
	return err
}

// listFetcher builds a cacheable fetcher for a list endpoint. When
// tolerate404 is set a missing endpoint yields an empty list instead of
// an error; some backends only expose create for incomes and loans.
func listFetcher[T any](s *Server, path string, tolerate404 bool) func(ctx context.Context) ([]T, error) {
	return func(ctx context.Context) ([]T, error) {
		var out []T
		if err := s.apiClient.GetJSON(ctx, path, &out); err != nil {
			if tolerate404 && api.IsStatus(err, http.StatusNotFound) {
				return []T{}, nil
			}
			return nil, err
		}
		return out, nil
	}
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]string)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}
	if s.sessions == nil {
		checks["sessions"] = "failed: session manager not configured"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["sessions"] = "ok"
	}

	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": status,
		"checks": checks,
	})
}

package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"finorg/internal/api"
	"finorg/internal/core"
	"finorg/internal/query"
	"finorg/internal/session"
)

// fakeBackend stands in for the finance API.
type fakeBackend struct {
	mu            sync.Mutex
	cards         []core.Card
	cardPayloads  []map[string]any
	summary       core.FinancialSummary
	insights      []core.Insight
	generateCalls int
	listCalls     int
	failCreates   bool

	srv *httptest.Server
}

func newFakeBackend() *fakeBackend {
	b := &fakeBackend{
		summary: core.FinancialSummary{
			TotalIncome:   1000,
			TotalExpenses: 400,
			Balance:       600,
			SavingsRate:   60,
			TopExpenseCategories: []core.CategoryAmount{
				{Category: "Alimentação", Amount: 250},
				{Category: "Transporte", Amount: 150},
			},
		},
		insights: []core.Insight{
			{ID: "i1", Type: core.InsightSuccess, Title: "Ótimo mês", Description: "Você poupou 60% da renda"},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/cards", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		switch r.Method {
		case http.MethodGet:
			b.listCalls++
			_ = json.NewEncoder(w).Encode(b.cards)
		case http.MethodPost:
			if b.failCreates {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			var payload map[string]any
			_ = json.NewDecoder(r.Body).Decode(&payload)
			b.cardPayloads = append(b.cardPayloads, payload)
			name, _ := payload["name"].(string)
			b.cards = append(b.cards, core.Card{ID: "c1", Name: name, ClosingDay: 5, DueDay: 12, Color: "#0ea5e9"})
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "c1"})
		}
	})
	mux.HandleFunc("/dashboard/summary", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		_ = json.NewEncoder(w).Encode(b.summary)
	})
	mux.HandleFunc("/dashboard/insights", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		_ = json.NewEncoder(w).Encode(b.insights)
	})
	mux.HandleFunc("/dashboard/insights/generate", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.generateCalls++
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	})
	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer backend-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(session.User{ID: "u1", Name: "Maria", Email: "maria@example.com"})
	})

	b.srv = httptest.NewServer(mux)
	return b
}

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestServer(t *testing.T, backend *fakeBackend) (*Server, *session.Manager) {
	t.Helper()

	store, err := session.NewStore(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("session store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	sessions := session.NewManager(store, testSecret, "finorg_session", time.Hour)
	client := api.NewClient(backend.srv.URL, sessions)
	queries := query.NewStore(50, time.Minute)
	t.Cleanup(queries.Stop)

	srv := NewServer(Config{
		Addr:           ":0",
		BackendBaseURL: backend.srv.URL,
		API:            client,
		Queries:        queries,
		Sessions:       sessions,
		Events:         nil,
	})
	t.Cleanup(func() { srv.limiter.Stop() })
	return srv, sessions
}

// loginAs establishes a session directly and returns the cookie.
func loginAs(t *testing.T, sessions *session.Manager) *http.Cookie {
	t.Helper()
	rr := httptest.NewRecorder()
	_, err := sessions.Establish(
		httptest.NewRequest(http.MethodGet, "/", nil).Context(),
		rr,
		session.User{ID: "u1", Name: "Maria", Email: "maria@example.com"},
		"backend-token",
	)
	if err != nil {
		t.Fatalf("establish session: %v", err)
	}
	cookies := rr.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("no session cookie set")
	}
	return cookies[0]
}

func TestHealthEndpoints(t *testing.T) {
	backend := newFakeBackend()
	defer backend.srv.Close()
	srv, _ := newTestServer(t, backend)

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestUnauthenticatedDashboardRedirects(t *testing.T) {
	backend := newFakeBackend()
	defer backend.srv.Close()
	srv, _ := newTestServer(t, backend)

	for _, path := range []string{"/dashboard", "/dashboard/cards", "/ui/summary", "/cards"} {
		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusFound {
			t.Fatalf("%s: expected 302, got %d", path, rr.Code)
		}
		if loc := rr.Header().Get("Location"); loc != "/" {
			t.Fatalf("%s: expected redirect to /, got %q", path, loc)
		}
	}
}

func TestLoginPageRedirectsAuthenticatedUser(t *testing.T) {
	backend := newFakeBackend()
	defer backend.srv.Close()
	srv, sessions := newTestServer(t, backend)
	cookie := loginAs(t, sessions)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/dashboard" {
		t.Fatalf("expected 302 to /dashboard, got %d %q", rr.Code, rr.Header().Get("Location"))
	}
}

func TestLoginRedirectsToBackendGoogleFlow(t *testing.T) {
	backend := newFakeBackend()
	defer backend.srv.Close()
	srv, _ := newTestServer(t, backend)

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	if rr.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != backend.srv.URL+"/auth/google" {
		t.Fatalf("unexpected redirect target %q", loc)
	}
}

func TestCallbackEstablishesSession(t *testing.T) {
	backend := newFakeBackend()
	defer backend.srv.Close()
	srv, _ := newTestServer(t, backend)

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/auth/callback?token=backend-token", nil))

	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/dashboard" {
		t.Fatalf("expected 302 to /dashboard, got %d %q", rr.Code, rr.Header().Get("Location"))
	}
	if len(rr.Result().Cookies()) == 0 {
		t.Fatal("expected session cookie after callback")
	}
}

func TestCallbackWithoutTokenRedirectsToLogin(t *testing.T) {
	backend := newFakeBackend()
	defer backend.srv.Close()
	srv, _ := newTestServer(t, backend)

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/auth/callback", nil))
	if rr.Code != http.StatusFound || !strings.HasPrefix(rr.Header().Get("Location"), "/?error=") {
		t.Fatalf("expected redirect back to login, got %d %q", rr.Code, rr.Header().Get("Location"))
	}
}

func TestLogoutClearsSession(t *testing.T) {
	backend := newFakeBackend()
	defer backend.srv.Close()
	srv, sessions := newTestServer(t, backend)
	cookie := loginAs(t, sessions)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/" {
		t.Fatalf("expected 302 to /, got %d %q", rr.Code, rr.Header().Get("Location"))
	}

	// The session row is gone: the same cookie no longer authenticates.
	req = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookie)
	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/" {
		t.Fatalf("expected stale cookie to redirect to /, got %d %q", rr.Code, rr.Header().Get("Location"))
	}
}

func TestSummaryPartialRendersFormattedFigures(t *testing.T) {
	backend := newFakeBackend()
	defer backend.srv.Close()
	srv, sessions := newTestServer(t, backend)
	cookie := loginAs(t, sessions)

	req := httptest.NewRequest(http.MethodGet, "/ui/summary", nil)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"R$ 1000.00", "R$ 400.00", "R$ 600.00", "60.0%"} {
		if !strings.Contains(body, want) {
			t.Errorf("summary body missing %q", want)
		}
	}
}

func TestInsightsPartial(t *testing.T) {
	backend := newFakeBackend()
	defer backend.srv.Close()
	srv, sessions := newTestServer(t, backend)
	cookie := loginAs(t, sessions)

	req := httptest.NewRequest(http.MethodGet, "/ui/insights", nil)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Ótimo mês") {
		t.Fatalf("insights body missing title: %s", rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "insight-success") {
		t.Fatal("insights body missing icon class")
	}
}

func TestCreateCardValidationSkipsBackend(t *testing.T) {
	backend := newFakeBackend()
	defer backend.srv.Close()
	srv, sessions := newTestServer(t, backend)
	cookie := loginAs(t, sessions)

	// Missing required name: no mutation, no backend call.
	form := "name=&closingDay=5&dueDay=12&color=%230ea5e9"
	req := httptest.NewRequest(http.MethodPost, "/cards", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
	backend.mu.Lock()
	posts := len(backend.cardPayloads)
	backend.mu.Unlock()
	if posts != 0 {
		t.Fatalf("backend received %d create calls, want 0", posts)
	}
}

func TestCreateCardSuccessAndListRefresh(t *testing.T) {
	backend := newFakeBackend()
	defer backend.srv.Close()
	srv, sessions := newTestServer(t, backend)
	cookie := loginAs(t, sessions)

	form := "name=Nubank&lastFourDigits=1234&closingDay=5&dueDay=12&color=%230ea5e9"
	req := httptest.NewRequest(http.MethodPost, "/cards", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	trigger := rr.Header().Get("HX-Trigger")
	if !strings.Contains(trigger, "cards:created") {
		t.Fatalf("HX-Trigger missing cards:created: %q", trigger)
	}
	// The create response carries a fresh form with defaults.
	if !strings.Contains(rr.Body.String(), `value="#0ea5e9"`) {
		t.Fatal("expected reset draft with default color")
	}

	// The list partial now serves the refetched cache entry.
	req = httptest.NewRequest(http.MethodGet, "/ui/cards", nil)
	req.AddCookie(cookie)
	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	if !strings.Contains(rr.Body.String(), "Nubank") {
		t.Fatalf("list missing created card: %s", rr.Body.String())
	}

	backend.mu.Lock()
	listCalls := backend.listCalls
	backend.mu.Unlock()
	if listCalls != 1 {
		t.Fatalf("expected exactly one backend list call (post-create refetch), got %d", listCalls)
	}
}

func TestCreateCardOmitsEmptyOptionalNumeric(t *testing.T) {
	backend := newFakeBackend()
	defer backend.srv.Close()
	srv, sessions := newTestServer(t, backend)
	cookie := loginAs(t, sessions)

	form := "name=Inter&limit=&closingDay=1&dueDay=10&color=%23ff6b00"
	req := httptest.NewRequest(http.MethodPost, "/cards", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	backend.mu.Lock()
	defer backend.mu.Unlock()
	if len(backend.cardPayloads) != 1 {
		t.Fatalf("expected one payload, got %d", len(backend.cardPayloads))
	}
	if _, present := backend.cardPayloads[0]["limit"]; present {
		t.Fatalf("empty limit must be omitted, payload: %v", backend.cardPayloads[0])
	}
	if backend.cardPayloads[0]["closingDay"] != float64(1) {
		t.Fatalf("closingDay not coerced to number: %v", backend.cardPayloads[0]["closingDay"])
	}
}

func TestCreateCardUpstreamFailureKeepsDraft(t *testing.T) {
	backend := newFakeBackend()
	defer backend.srv.Close()
	backend.failCreates = true
	srv, sessions := newTestServer(t, backend)
	cookie := loginAs(t, sessions)

	form := "name=Nubank&closingDay=5&dueDay=12&color=%230ea5e9"
	req := httptest.NewRequest(http.MethodPost, "/cards", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `value="Nubank"`) {
		t.Fatal("draft not preserved after upstream failure")
	}
	if !strings.Contains(rr.Body.String(), "Tente novamente") {
		t.Fatal("expected inline error message")
	}
}

func TestGenerateInsightsRefetchesTargetedKeys(t *testing.T) {
	backend := newFakeBackend()
	defer backend.srv.Close()
	srv, sessions := newTestServer(t, backend)
	cookie := loginAs(t, sessions)

	req := httptest.NewRequest(http.MethodPost, "/dashboard/insights/generate", nil)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Header().Get("HX-Trigger"), "insights:generated") {
		t.Fatalf("HX-Trigger missing insights:generated: %q", rr.Header().Get("HX-Trigger"))
	}
	backend.mu.Lock()
	calls := backend.generateCalls
	backend.mu.Unlock()
	if calls != 1 {
		t.Fatalf("expected one generate call, got %d", calls)
	}
}

func TestResourcePagesRender(t *testing.T) {
	backend := newFakeBackend()
	defer backend.srv.Close()
	srv, sessions := newTestServer(t, backend)
	cookie := loginAs(t, sessions)

	pages := map[string]string{
		"/dashboard":              "Dashboard",
		"/dashboard/cards":        "Novo Cartão",
		"/dashboard/transactions": "Nova Transação",
		"/dashboard/incomes":      "Nova Receita",
		"/dashboard/loans":        "Novo Empréstimo",
	}
	for path, want := range pages {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.AddCookie(cookie)
		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Errorf("%s: status=%d", path, rr.Code)
			continue
		}
		if !strings.Contains(rr.Body.String(), want) {
			t.Errorf("%s: body missing %q", path, want)
		}
	}
}

func TestCreateRequiresPost(t *testing.T) {
	backend := newFakeBackend()
	defer backend.srv.Close()
	srv, sessions := newTestServer(t, backend)
	cookie := loginAs(t, sessions)

	req := httptest.NewRequest(http.MethodPut, "/cards", nil)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

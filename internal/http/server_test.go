package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"masarif/internal/auth"
	"masarif/internal/core"
	"masarif/internal/log"
	"masarif/internal/services"
	"masarif/internal/store/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := log.New(log.Config{
		Component: log.ComponentHTTP,
		Handler:   slog.NewTextHandler(io.Discard, nil),
	})

	mem := memory.New()
	authSvc := auth.NewService(mem, mem, time.Hour)
	budgets := services.NewBudgetService(mem, nil, logger)
	dashboards := services.NewDashboardService(mem, budgets, 6, time.Minute, logger)
	expenses := services.NewExpenseService(mem, nil, dashboards, logger)

	s := NewServer(Options{Addr: ":0", RequestsPerMinute: 10000},
		authSvc, expenses, budgets, dashboards, logger)
	t.Cleanup(func() { s.limiter.Stop() })
	return s
}

func doJSON(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "192.0.2.1:1234"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func register(t *testing.T, s *Server, email string) string {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":        email,
		"password":     "secret1",
		"display_name": "Test User",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body.String())
	}
	return decodeBody[sessionResponse](t, rec).Token
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":        "User@Example.com",
		"password":     "secret1",
		"display_name": "مستخدم",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body.String())
	}
	session := decodeBody[sessionResponse](t, rec)
	if session.Token == "" {
		t.Fatal("expected session token")
	}
	if session.User.Email != "user@example.com" {
		t.Errorf("email = %q, want normalized lowercase", session.User.Email)
	}

	// Duplicate email.
	rec = doJSON(t, s, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "user@example.com",
		"password": "secret1",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate register status = %d, want 409", rec.Code)
	}

	// Weak password.
	rec = doJSON(t, s, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "other@example.com",
		"password": "short",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("weak password status = %d, want 422", rec.Code)
	}

	// Wrong password.
	rec = doJSON(t, s, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "user@example.com",
		"password": "wrong-password",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad login status = %d, want 401", rec.Code)
	}

	// Correct login.
	rec = doJSON(t, s, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "user@example.com",
		"password": "secret1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}

	// Session cookie is set on login.
	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookie && c.Value != "" && c.HttpOnly {
			found = true
		}
	}
	if !found {
		t.Error("expected HttpOnly session cookie on login")
	}
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/expenses", "/api/budget", "/api/dashboard", "/api/categories"} {
		rec := doJSON(t, s, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s status = %d, want 401", path, rec.Code)
		}
	}

	rec := doJSON(t, s, http.MethodGet, "/api/expenses", "not-a-real-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bogus token status = %d, want 401", rec.Code)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	s := newTestServer(t)
	token := register(t, s, "user@example.com")

	rec := doJSON(t, s, http.MethodGet, "/api/auth/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me status = %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/auth/logout", token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("logout status = %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/auth/me", token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("me after logout status = %d, want 401", rec.Code)
	}

	// Logging out again is harmless.
	rec = doJSON(t, s, http.MethodPost, "/api/auth/logout", token, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("second logout status = %d, want 204", rec.Code)
	}
}

func TestChangePassword(t *testing.T) {
	s := newTestServer(t)
	token := register(t, s, "user@example.com")

	rec := doJSON(t, s, http.MethodPost, "/api/auth/password", token, map[string]string{
		"current_password": "wrong",
		"new_password":     "newsecret",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong current password status = %d, want 401", rec.Code)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/auth/password", token, map[string]string{
		"current_password": "secret1",
		"new_password":     "newsecret",
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("change password status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "user@example.com",
		"password": "newsecret",
	})
	if rec.Code != http.StatusOK {
		t.Errorf("login with new password status = %d, want 200", rec.Code)
	}
}

func TestResetPassword(t *testing.T) {
	s := newTestServer(t)
	register(t, s, "user@example.com")

	rec := doJSON(t, s, http.MethodPost, "/api/auth/reset", "", map[string]string{
		"email": "user@example.com",
	})
	if rec.Code != http.StatusAccepted {
		t.Errorf("reset status = %d, want 202", rec.Code)
	}

	// Unknown accounts get the same answer.
	rec = doJSON(t, s, http.MethodPost, "/api/auth/reset", "", map[string]string{
		"email": "nobody@example.com",
	})
	if rec.Code != http.StatusAccepted {
		t.Errorf("reset for unknown email status = %d, want 202", rec.Code)
	}
}

func TestExpenseLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := register(t, s, "user@example.com")

	rec := doJSON(t, s, http.MethodPost, "/api/expenses", token, map[string]string{
		"amount":      "149.50",
		"category":    "food",
		"description": "غداء العائلة",
		"date":        "2026-03-10",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	created := decodeBody[expenseResponse](t, rec)
	if created.AmountCents != 14950 {
		t.Errorf("amount_cents = %d, want 14950", created.AmountCents)
	}
	if created.CategoryLabel != "طعام" || created.CategoryIcon != "🍽️" {
		t.Errorf("category display = %q %q", created.CategoryLabel, created.CategoryIcon)
	}

	// Second expense, later date, lists first.
	rec = doJSON(t, s, http.MethodPost, "/api/expenses", token, map[string]string{
		"amount":   "30",
		"category": "transport",
		"date":     "2026-03-15",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/expenses", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	list := decodeBody[[]expenseResponse](t, rec)
	if len(list) != 2 {
		t.Fatalf("listed %d expenses, want 2", len(list))
	}
	if list[0].Date != "2026-03-15" {
		t.Errorf("list[0].Date = %s, newest should come first", list[0].Date)
	}

	// Range filter is inclusive.
	rec = doJSON(t, s, http.MethodGet, "/api/expenses?from=2026-03-10&to=2026-03-10", token, nil)
	list = decodeBody[[]expenseResponse](t, rec)
	if len(list) != 1 || list[0].ID != created.ID {
		t.Errorf("range filter returned %+v", list)
	}

	// Update.
	rec = doJSON(t, s, http.MethodPut, "/api/expenses/1", token, map[string]string{
		"amount":   "200",
		"category": "bills",
		"date":     "2026-03-11",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}
	updated := decodeBody[expenseResponse](t, rec)
	if updated.AmountCents != 20000 || updated.Category != "bills" {
		t.Errorf("updated = %+v", updated)
	}

	// Delete, then 404.
	rec = doJSON(t, s, http.MethodDelete, "/api/expenses/1", token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = doJSON(t, s, http.MethodGet, "/api/expenses/1", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}
}

func TestExpenseValidation(t *testing.T) {
	s := newTestServer(t)
	token := register(t, s, "user@example.com")

	tests := []struct {
		name string
		body map[string]string
	}{
		{"zero amount", map[string]string{"amount": "0", "category": "food", "date": "2026-03-10"}},
		{"negative amount", map[string]string{"amount": "-5", "category": "food", "date": "2026-03-10"}},
		{"bad amount", map[string]string{"amount": "abc", "category": "food", "date": "2026-03-10"}},
		{"bad date", map[string]string{"amount": "10", "category": "food", "date": "10/03/2026"}},
		{"unknown category", map[string]string{"amount": "10", "category": "nonsense", "date": "2026-03-10"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s, http.MethodPost, "/api/expenses", token, tt.body)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Errorf("status = %d, want 422, body %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestExpensesScopedToUser(t *testing.T) {
	s := newTestServer(t)
	alice := register(t, s, "alice@example.com")
	bob := register(t, s, "bob@example.com")

	rec := doJSON(t, s, http.MethodPost, "/api/expenses", alice, map[string]string{
		"amount": "10", "category": "food", "date": "2026-03-10",
	})
	created := decodeBody[expenseResponse](t, rec)

	rec = doJSON(t, s, http.MethodGet, "/api/expenses/1", bob, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("cross-user get status = %d, want 404", rec.Code)
	}
	rec = doJSON(t, s, http.MethodDelete, "/api/expenses/1", bob, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("cross-user delete status = %d, want 404", rec.Code)
	}

	// Alice still sees her expense.
	rec = doJSON(t, s, http.MethodGet, "/api/expenses", alice, nil)
	list := decodeBody[[]expenseResponse](t, rec)
	if len(list) != 1 || list[0].ID != created.ID {
		t.Errorf("alice's list = %+v", list)
	}
}

func TestBudgetEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := register(t, s, "user@example.com")

	// Defaults before any save.
	rec := doJSON(t, s, http.MethodGet, "/api/budget", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get budget status = %d", rec.Code)
	}
	b := decodeBody[budgetResponse](t, rec)
	if b.MonthlyBudgetCents != core.DefaultMonthlyBudget || b.Currency != "ج.م" {
		t.Errorf("default budget = %+v", b)
	}

	rec = doJSON(t, s, http.MethodPut, "/api/budget", token, map[string]any{
		"monthly_budget":  "8000",
		"alerts_enabled":  true,
		"alert_threshold": 90,
		"currency":        "USD",
		"category_budgets": map[string]string{
			"food": "2000",
		},
		"custom_categories": []map[string]string{
			{"label": "قهوة"},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("save budget status = %d, body %s", rec.Code, rec.Body.String())
	}
	saved := decodeBody[budgetResponse](t, rec)
	if saved.MonthlyBudgetCents != 8000_00 || saved.AlertThreshold != 90 || saved.Currency != "USD" {
		t.Errorf("saved budget = %+v", saved)
	}
	if len(saved.CustomCategories) != 1 || saved.CustomCategories[0].Value == "" {
		t.Errorf("custom categories = %+v, want generated value", saved.CustomCategories)
	}

	// Replace-all: saving without customs drops them.
	rec = doJSON(t, s, http.MethodPut, "/api/budget", token, map[string]any{
		"monthly_budget":  "8000",
		"alerts_enabled":  true,
		"alert_threshold": 90,
		"currency":        "USD",
	})
	saved = decodeBody[budgetResponse](t, rec)
	if len(saved.CustomCategories) != 0 {
		t.Errorf("custom categories after replace = %+v, want none", saved.CustomCategories)
	}

	// Invalid payloads.
	rec = doJSON(t, s, http.MethodPut, "/api/budget", token, map[string]any{
		"monthly_budget": "8000", "alerts_enabled": true, "alert_threshold": 150, "currency": "USD",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad threshold status = %d, want 422", rec.Code)
	}
	rec = doJSON(t, s, http.MethodPut, "/api/budget", token, map[string]any{
		"monthly_budget": "8000", "alerts_enabled": true, "alert_threshold": 80, "currency": "XYZ",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad currency status = %d, want 422", rec.Code)
	}
}

func TestCategoriesEndpoint(t *testing.T) {
	s := newTestServer(t)
	token := register(t, s, "user@example.com")

	rec := doJSON(t, s, http.MethodGet, "/api/categories", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("categories status = %d", rec.Code)
	}
	categories := decodeBody[[]categoryResponse](t, rec)
	if len(categories) != 6 {
		t.Fatalf("got %d categories, want 6 built-ins", len(categories))
	}
	if categories[0].Value != "food" || categories[0].Label != "طعام" {
		t.Errorf("first category = %+v", categories[0])
	}

	doJSON(t, s, http.MethodPut, "/api/budget", token, map[string]any{
		"monthly_budget": "5000", "alerts_enabled": true, "alert_threshold": 80, "currency": "ج.م",
		"custom_categories": []map[string]string{{"label": "قهوة"}},
	})

	rec = doJSON(t, s, http.MethodGet, "/api/categories", token, nil)
	categories = decodeBody[[]categoryResponse](t, rec)
	if len(categories) != 7 {
		t.Fatalf("got %d categories after custom save, want 7", len(categories))
	}
	last := categories[6]
	if last.Label != "قهوة" || last.Icon != "📌" {
		t.Errorf("custom category = %+v", last)
	}
}

func TestCurrenciesEndpoint(t *testing.T) {
	s := newTestServer(t)

	// Public: no session needed.
	rec := doJSON(t, s, http.MethodGet, "/api/currencies", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("currencies status = %d", rec.Code)
	}
	currencies := decodeBody[[]currencyResponse](t, rec)
	if len(currencies) != len(core.Currencies) {
		t.Fatalf("got %d currencies, want %d", len(currencies), len(core.Currencies))
	}
	if currencies[0].Value != "ج.م" {
		t.Errorf("first currency = %+v, want Egyptian pound", currencies[0])
	}
}

func TestDashboardEndpoint(t *testing.T) {
	s := newTestServer(t)
	token := register(t, s, "user@example.com")

	doJSON(t, s, http.MethodPut, "/api/budget", token, map[string]any{
		"monthly_budget": "200", "alerts_enabled": true, "alert_threshold": 80, "currency": "ج.م",
	})
	doJSON(t, s, http.MethodPost, "/api/expenses", token, map[string]string{
		"amount": "50", "category": "food", "date": "2026-03-05",
	})
	doJSON(t, s, http.MethodPost, "/api/expenses", token, map[string]string{
		"amount": "100", "category": "food", "date": "2026-03-20",
	})
	doJSON(t, s, http.MethodPost, "/api/expenses", token, map[string]string{
		"amount": "30", "category": "transport", "date": "2026-02-10",
	})

	rec := doJSON(t, s, http.MethodGet, "/api/dashboard?year=2026&month=3", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d, body %s", rec.Code, rec.Body.String())
	}
	d := decodeBody[dashboardResponse](t, rec)

	if d.TotalCents != 150_00 {
		t.Errorf("total_cents = %d, want 15000", d.TotalCents)
	}
	if d.MonthLabel != "مارس" {
		t.Errorf("month_label = %q, want Arabic March", d.MonthLabel)
	}
	if d.TotalFormatted != "150 ج.م" {
		t.Errorf("total_formatted = %q", d.TotalFormatted)
	}
	if d.Status.PercentUsed != 75 || d.Status.State != "none" {
		t.Errorf("status = %+v, want 75%% none", d.Status)
	}
	if len(d.ByCategory) != 1 || d.ByCategory[0].Category.Value != "food" {
		t.Errorf("by_category = %+v", d.ByCategory)
	}
	if len(d.Trend) != 6 {
		t.Fatalf("trend has %d entries, want 6", len(d.Trend))
	}
	if d.Trend[5].TotalCents != 150_00 || d.Trend[4].TotalCents != 30_00 {
		t.Errorf("trend = %+v", d.Trend)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/dashboard?year=2026&month=13", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad month status = %d, want 400", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doJSON(t, s, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, rec.Code)
		}
	}
}

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/healthz", "", nil)
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
}

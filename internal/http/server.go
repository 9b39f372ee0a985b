// Package http exposes the JSON API: authentication, expenses, budget
// settings, categories and the dashboard.
package http

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"masarif/internal/auth"
	"masarif/internal/log"
	"masarif/internal/middleware/ratelimit"
	"masarif/internal/middleware/security"
	"masarif/internal/middleware/trace"
	"masarif/internal/services"
	"masarif/internal/store"
)

// SessionCookie is the session token cookie name.
const SessionCookie = "masarif_session"

// Options configures the server explicitly; nothing is read from the
// environment here.
type Options struct {
	Addr              string
	SessionTTL        time.Duration
	RequestsPerMinute int
}

// Server serves the API and owns its middleware lifecycles.
type Server struct {
	http.Server

	auth       *auth.Service
	expenses   *services.ExpenseService
	budgets    *services.BudgetService
	dashboards *services.DashboardService

	sessionTTL   time.Duration
	limiter      *ratelimit.Limiter
	logger       *log.Logger
	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(opts Options, authSvc *auth.Service, expenses *services.ExpenseService, budgets *services.BudgetService, dashboards *services.DashboardService, logger *log.Logger) *Server {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = auth.DefaultSessionTTL
	}

	s := &Server{
		auth:       authSvc,
		expenses:   expenses,
		budgets:    budgets,
		dashboards: dashboards,
		sessionTTL: opts.SessionTTL,
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RequestsPerMinute,
		}),
		logger: logger,
	}

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", s.handleLogout)
	mux.HandleFunc("POST /api/auth/reset", s.handleResetPassword)
	mux.HandleFunc("POST /api/auth/password", s.requireUser(s.handleChangePassword))
	mux.HandleFunc("GET /api/auth/me", s.requireUser(s.handleMe))

	mux.HandleFunc("POST /api/expenses", s.requireUser(s.handleCreateExpense))
	mux.HandleFunc("GET /api/expenses", s.requireUser(s.handleListExpenses))
	mux.HandleFunc("GET /api/expenses/{id}", s.requireUser(s.handleGetExpense))
	mux.HandleFunc("PUT /api/expenses/{id}", s.requireUser(s.handleUpdateExpense))
	mux.HandleFunc("DELETE /api/expenses/{id}", s.requireUser(s.handleDeleteExpense))

	mux.HandleFunc("GET /api/budget", s.requireUser(s.handleGetBudget))
	mux.HandleFunc("PUT /api/budget", s.requireUser(s.handleSaveBudget))
	mux.HandleFunc("GET /api/categories", s.requireUser(s.handleCategories))
	mux.HandleFunc("GET /api/currencies", s.handleCurrencies)

	mux.HandleFunc("GET /api/dashboard", s.requireUser(s.handleDashboard))

	traceMW := trace.NewMiddleware(s.logger.WithComponent(log.ComponentHTTP), extractClientIP)
	limitMW := s.limiter.Middleware(extractClientIP)
	headersMW := security.Middleware(security.DefaultHeadersConfig())

	return headersMW(limitMW(traceMW.Middleware(mux)))
}

// requireUser resolves the session before running next, rejecting
// unauthenticated requests.
func (s *Server) requireUser(next func(http.ResponseWriter, *http.Request, store.User)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		user, err := s.auth.UserFromToken(r.Context(), token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "session expired or invalid")
			return
		}

		next(w, r, user)
	}
}

// sessionToken pulls the token from the cookie or a bearer header.
func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Shutdown stops the server and its middleware goroutines once.
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

// trustedProxies are networks allowed to set forwarding headers.
var trustedProxies = []*net.IPNet{
	parseCIDR("127.0.0.0/8"),
	parseCIDR("10.0.0.0/8"),
	parseCIDR("172.16.0.0/12"),
	parseCIDR("192.168.0.0/16"),
}

func parseCIDR(cidr string) *net.IPNet {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		panic(fmt.Sprintf("parse trusted proxy CIDR %s: %v", cidr, err))
	}
	return network
}

func isTrustedProxy(ip net.IP) bool {
	for _, network := range trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// extractClientIP returns the real client IP, honoring forwarding
// headers only from trusted proxies.
func extractClientIP(r *http.Request) string {
	directIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		directIP = r.RemoteAddr
	}

	parsedDirectIP := net.ParseIP(directIP)
	if parsedDirectIP == nil {
		return directIP
	}

	if isTrustedProxy(parsedDirectIP) {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			clientIP := strings.TrimSpace(strings.Split(xff, ",")[0])
			if net.ParseIP(clientIP) != nil {
				return clientIP
			}
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			if net.ParseIP(xri) != nil {
				return xri
			}
		}
	}

	return directIP
}

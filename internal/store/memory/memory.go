// Package memory implements the store ports on in-process maps. It backs
// the development DATA_BACKEND=memory mode and the service-layer tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"masarif/internal/core"
	"masarif/internal/store"
)

type Store struct {
	mu       sync.Mutex
	nextID   int64
	expenses map[int64]core.Expense
	budgets  map[int64]core.Budget
	users    map[int64]store.User
	sessions map[string]store.Session
	alerts   map[alertKey]int
}

type alertKey struct {
	userID int64
	year   int
	month  int
	state  core.AlertState
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		nextID:   1,
		expenses: make(map[int64]core.Expense),
		budgets:  make(map[int64]core.Budget),
		users:    make(map[int64]store.User),
		sessions: make(map[string]store.Session),
		alerts:   make(map[alertKey]int),
	}
}

func (s *Store) id() int64 {
	id := s.nextID
	s.nextID++
	return id
}

// --- expenses ---

func (s *Store) CreateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.id()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	s.expenses[e.ID] = e
	return e, nil
}

func (s *Store) GetExpense(_ context.Context, userID, id int64) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[id]
	if !ok || e.UserID != userID {
		return core.Expense{}, store.ErrNotFound
	}
	return e, nil
}

func (s *Store) UpdateExpense(_ context.Context, e core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.expenses[e.ID]
	if !ok || old.UserID != e.UserID {
		return store.ErrNotFound
	}
	e.CreatedAt = old.CreatedAt
	s.expenses[e.ID] = e
	return nil
}

func (s *Store) DeleteExpense(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[id]
	if !ok || e.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.expenses, id)
	return nil
}

func (s *Store) ListExpenses(_ context.Context, userID int64, from, to core.Date) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Expense
	for _, e := range s.expenses {
		if e.UserID == userID && e.Date.In(from, to) {
			out = append(out, e)
		}
	}
	// newest first, ties broken by insertion order
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// --- budget ---

func (s *Store) GetBudget(_ context.Context, userID int64) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[userID]
	if !ok {
		return core.Budget{}, store.ErrNotFound
	}
	return cloneBudget(b), nil
}

func (s *Store) SetBudget(_ context.Context, b core.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets[b.UserID] = cloneBudget(b)
	return nil
}

func cloneBudget(b core.Budget) core.Budget {
	out := b
	if b.CategoryBudgets != nil {
		out.CategoryBudgets = make(map[string]core.Money, len(b.CategoryBudgets))
		for k, v := range b.CategoryBudgets {
			out.CategoryBudgets[k] = v
		}
	}
	out.CustomCategories = append([]core.CustomCategory(nil), b.CustomCategories...)
	return out
}

// --- users ---

func (s *Store) CreateUser(_ context.Context, u store.User) (store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = s.id()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return store.User{}, store.ErrNotFound
}

func (s *Store) GetUserByID(_ context.Context, id int64) (store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return store.User{}, store.ErrNotFound
	}
	return u, nil
}

func (s *Store) UpdatePassword(_ context.Context, userID int64, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	u.PasswordHash = passwordHash
	s.users[userID] = u
	return nil
}

// --- sessions ---

func (s *Store) CreateSession(_ context.Context, sess store.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now().UTC()
	}
	s.sessions[sess.Token] = sess
	return nil
}

func (s *Store) GetSession(_ context.Context, token string) (store.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return store.Session{}, store.ErrNotFound
	}
	return sess, nil
}

func (s *Store) DeleteSession(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *Store) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for token, sess := range s.sessions {
		if sess.ExpiresAt.Before(now) {
			delete(s.sessions, token)
			n++
		}
	}
	return n, nil
}

// --- alerts ---

func (s *Store) RecordAlert(_ context.Context, userID int64, year int, month int, state core.AlertState, percentUsed int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := alertKey{userID: userID, year: year, month: month, state: state}
	if _, exists := s.alerts[key]; exists {
		return false, nil
	}
	s.alerts[key] = percentUsed
	return true, nil
}

package http

import (
	"errors"
	"net/http"

	"masarif/internal/core"
	"masarif/internal/log"
	"masarif/internal/store"
)

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request, user store.User) {
	e, ok := s.expenseFromRequest(w, r, user.ID)
	if !ok {
		return
	}

	saved, err := s.expenses.Create(r.Context(), e)
	if err != nil {
		s.writeExpenseError(w, r, err)
		return
	}

	registry, err := s.budgets.Registry(r.Context(), user.ID)
	if err != nil {
		s.writeInternalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseResponse(saved, registry))
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request, user store.User) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	e, err := s.expenses.Get(r.Context(), user.ID, id)
	if err != nil {
		s.writeExpenseError(w, r, err)
		return
	}

	registry, err := s.budgets.Registry(r.Context(), user.ID)
	if err != nil {
		s.writeInternalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(e, registry))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request, user store.User) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	e, ok := s.expenseFromRequest(w, r, user.ID)
	if !ok {
		return
	}
	e.ID = id

	updated, err := s.expenses.Update(r.Context(), e)
	if err != nil {
		s.writeExpenseError(w, r, err)
		return
	}

	registry, err := s.budgets.Registry(r.Context(), user.ID)
	if err != nil {
		s.writeInternalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(updated, registry))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request, user store.User) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.expenses.Delete(r.Context(), user.ID, id); err != nil {
		s.writeExpenseError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request, user store.User) {
	from, err := parseDateParam(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := parseDateParam(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		writeError(w, http.StatusBadRequest, "to date precedes from date")
		return
	}

	list, err := s.expenses.List(r.Context(), user.ID, from, to)
	if err != nil {
		s.writeInternalError(w, r, err)
		return
	}

	registry, err := s.budgets.Registry(r.Context(), user.ID)
	if err != nil {
		s.writeInternalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponses(list, registry))
}

// expenseFromRequest decodes and validates the expense payload,
// writing the error response itself on failure.
func (s *Server) expenseFromRequest(w http.ResponseWriter, r *http.Request, userID int64) (core.Expense, bool) {
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return core.Expense{}, false
	}

	amount, err := parseAmount(req.Amount, false)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "amount must be a positive decimal number")
		return core.Expense{}, false
	}

	date, err := core.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "date must be YYYY-MM-DD")
		return core.Expense{}, false
	}

	return core.Expense{
		UserID:      userID,
		Amount:      amount,
		Category:    sanitizeInput(req.Category),
		Description: sanitizeInput(req.Description),
		Date:        date,
	}, true
}

func (s *Server) writeExpenseError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "expense not found")
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidCategory),
		errors.Is(err, core.ErrDescriptionTooLong):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.writeInternalError(w, r, err)
	}
}

func (s *Server) writeInternalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.ErrorContext(r.Context(), "request failed",
		log.FieldError, err,
		log.FieldPath, r.URL.Path)
	writeError(w, http.StatusInternalServerError, "internal error")
}

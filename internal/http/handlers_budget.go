package http

import (
	"errors"
	"net/http"

	"masarif/internal/core"
	"masarif/internal/store"
)

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request, user store.User) {
	b, err := s.budgets.Get(r.Context(), user.ID)
	if err != nil {
		s.writeInternalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetResponse(b))
}

func (s *Server) handleSaveBudget(w http.ResponseWriter, r *http.Request, user store.User) {
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	monthlyBudget, err := parseAmount(req.MonthlyBudget, true)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "monthly_budget must be a non-negative decimal number")
		return
	}

	categoryBudgets := make(map[string]core.Money, len(req.CategoryBudgets))
	for category, raw := range req.CategoryBudgets {
		amount, err := parseAmount(raw, true)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "category budget for "+category+" must be a non-negative decimal number")
			return
		}
		if amount.Cents > 0 {
			categoryBudgets[sanitizeInput(category)] = amount
		}
	}

	customs := make([]core.CustomCategory, len(req.CustomCategories))
	for i, c := range req.CustomCategories {
		customs[i] = core.CustomCategory{
			Value: sanitizeInput(c.Value),
			Label: sanitizeInput(c.Label),
		}
	}

	saved, err := s.budgets.Save(r.Context(), core.Budget{
		UserID:           user.ID,
		MonthlyBudget:    monthlyBudget,
		CategoryBudgets:  categoryBudgets,
		AlertsEnabled:    req.AlertsEnabled,
		AlertThreshold:   req.AlertThreshold,
		Currency:         sanitizeInput(req.Currency),
		CustomCategories: customs,
	})
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidThreshold),
			errors.Is(err, core.ErrNegativeBudget),
			errors.Is(err, core.ErrInvalidCurrency),
			errors.Is(err, core.ErrInvalidCategory):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			s.writeInternalError(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, toBudgetResponse(saved))
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request, user store.User) {
	categories, err := s.budgets.Categories(r.Context(), user.ID)
	if err != nil {
		s.writeInternalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponses(categories))
}

func (s *Server) handleCurrencies(w http.ResponseWriter, r *http.Request) {
	out := make([]currencyResponse, len(core.Currencies))
	for i, c := range core.Currencies {
		out[i] = currencyResponse{Value: c.Value, Label: c.Label}
	}
	writeJSON(w, http.StatusOK, out)
}

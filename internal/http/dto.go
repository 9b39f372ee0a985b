package http

import (
	"time"

	"masarif/internal/core"
	"masarif/internal/services"
	"masarif/internal/store"
)

// arabicMonths maps month numbers to their Arabic display names, used
// for dashboard and trend labels.
var arabicMonths = [13]string{
	"",
	"يناير",
	"فبراير",
	"مارس",
	"أبريل",
	"مايو",
	"يونيو",
	"يوليو",
	"أغسطس",
	"سبتمبر",
	"أكتوبر",
	"نوفمبر",
	"ديسمبر",
}

func monthLabel(m time.Month) string {
	if m < 1 || m > 12 {
		return ""
	}
	return arabicMonths[m]
}


type userResponse struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

func toUserResponse(u store.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, DisplayName: u.DisplayName}
}

type sessionResponse struct {
	User      userResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetPasswordRequest struct {
	Email string `json:"email"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type expenseRequest struct {
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

type expenseResponse struct {
	ID            int64     `json:"id"`
	Amount        string    `json:"amount"`
	AmountCents   int64     `json:"amount_cents"`
	Category      string    `json:"category"`
	CategoryLabel string    `json:"category_label"`
	CategoryIcon  string    `json:"category_icon"`
	Description   string    `json:"description"`
	Date          string    `json:"date"`
	CreatedAt     time.Time `json:"created_at"`
}

func toExpenseResponse(e core.Expense, registry *core.Registry) expenseResponse {
	c := registry.Resolve(e.Category)
	return expenseResponse{
		ID:            e.ID,
		Amount:        e.Amount.Decimal(),
		AmountCents:   e.Amount.Cents,
		Category:      e.Category,
		CategoryLabel: c.Label,
		CategoryIcon:  c.Icon,
		Description:   e.Description,
		Date:          e.Date.String(),
		CreatedAt:     e.CreatedAt,
	}
}

func toExpenseResponses(expenses []core.Expense, registry *core.Registry) []expenseResponse {
	out := make([]expenseResponse, len(expenses))
	for i, e := range expenses {
		out[i] = toExpenseResponse(e, registry)
	}
	return out
}

type customCategoryPayload struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type budgetRequest struct {
	MonthlyBudget    string                  `json:"monthly_budget"`
	CategoryBudgets  map[string]string       `json:"category_budgets"`
	AlertsEnabled    bool                    `json:"alerts_enabled"`
	AlertThreshold   int                     `json:"alert_threshold"`
	Currency         string                  `json:"currency"`
	CustomCategories []customCategoryPayload `json:"custom_categories"`
}

type budgetResponse struct {
	MonthlyBudget      string                  `json:"monthly_budget"`
	MonthlyBudgetCents int64                   `json:"monthly_budget_cents"`
	CategoryBudgets    map[string]string       `json:"category_budgets"`
	AlertsEnabled      bool                    `json:"alerts_enabled"`
	AlertThreshold     int                     `json:"alert_threshold"`
	Currency           string                  `json:"currency"`
	CustomCategories   []customCategoryPayload `json:"custom_categories"`
}

func toBudgetResponse(b core.Budget) budgetResponse {
	categoryBudgets := make(map[string]string, len(b.CategoryBudgets))
	for k, v := range b.CategoryBudgets {
		categoryBudgets[k] = v.Decimal()
	}
	customs := make([]customCategoryPayload, len(b.CustomCategories))
	for i, c := range b.CustomCategories {
		customs[i] = customCategoryPayload{Value: c.Value, Label: c.Label}
	}
	return budgetResponse{
		MonthlyBudget:      b.MonthlyBudget.Decimal(),
		MonthlyBudgetCents: b.MonthlyBudget.Cents,
		CategoryBudgets:    categoryBudgets,
		AlertsEnabled:      b.AlertsEnabled,
		AlertThreshold:     b.AlertThreshold,
		Currency:           b.Currency,
		CustomCategories:   customs,
	}
}

type categoryResponse struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

func toCategoryResponses(categories []core.Category) []categoryResponse {
	out := make([]categoryResponse, len(categories))
	for i, c := range categories {
		out[i] = categoryResponse{Value: c.Value, Label: c.Label, Icon: c.Icon}
	}
	return out
}

type categoryAmountResponse struct {
	Category categoryResponse `json:"category"`
	Amount   string           `json:"amount"`
	Cents    int64            `json:"amount_cents"`
}

type trendEntryResponse struct {
	Year       int    `json:"year"`
	Month      int    `json:"month"`
	MonthLabel string `json:"month_label"`
	Total      string `json:"total"`
	TotalCents int64  `json:"total_cents"`
}

type statusResponse struct {
	PercentUsed int    `json:"percent_used"`
	State       string `json:"state"`
}

type dashboardResponse struct {
	Year           int                      `json:"year"`
	Month          int                      `json:"month"`
	MonthLabel     string                   `json:"month_label"`
	Total          string                   `json:"total"`
	TotalCents     int64                    `json:"total_cents"`
	TotalFormatted string                   `json:"total_formatted"`
	ByCategory     []categoryAmountResponse `json:"by_category"`
	Trend          []trendEntryResponse     `json:"trend"`
	Status         statusResponse           `json:"status"`
	Budget         budgetResponse           `json:"budget"`
}

func toDashboardResponse(d services.Dashboard) dashboardResponse {
	byCategory := make([]categoryAmountResponse, len(d.ByCategory))
	for i, ca := range d.ByCategory {
		byCategory[i] = categoryAmountResponse{
			Category: categoryResponse{Value: ca.Category.Value, Label: ca.Category.Label, Icon: ca.Category.Icon},
			Amount:   ca.Amount.Decimal(),
			Cents:    ca.Amount.Cents,
		}
	}
	trend := make([]trendEntryResponse, len(d.Trend))
	for i, mt := range d.Trend {
		trend[i] = trendEntryResponse{
			Year:       mt.Year,
			Month:      int(mt.Month),
			MonthLabel: monthLabel(mt.Month),
			Total:      mt.Total.Decimal(),
			TotalCents: mt.Total.Cents,
		}
	}
	return dashboardResponse{
		Year:           d.Year,
		Month:          int(d.Month),
		MonthLabel:     monthLabel(d.Month),
		Total:          d.Total.Decimal(),
		TotalCents:     d.Total.Cents,
		TotalFormatted: d.Total.Format(d.Budget.Currency),
		ByCategory:     byCategory,
		Trend:          trend,
		Status: statusResponse{
			PercentUsed: d.Status.PercentUsed,
			State:       string(d.Status.State),
		},
		Budget: toBudgetResponse(d.Budget),
	}
}

type currencyResponse struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

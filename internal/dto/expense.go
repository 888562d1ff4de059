package dto

import (
	"github.com/shopspring/decimal"

	"github.com/silvioiatech/umbra-accountant/internal/core/domain"
)

// CreateExpenseRequest defines the data needed to record a new expense.
type CreateExpenseRequest struct {
	MerchantText string          `json:"merchantText" binding:"required"`
	AmountCHF    decimal.Decimal `json:"amountCHF" binding:"required"`
	Date         string          `json:"date" binding:"required,datetime=2006-01-02"`
	// CategoryCode is optional; when empty the categorizer assigns one.
	CategoryCode       string `json:"categoryCode" binding:"omitempty,deduction_category"`
	BusinessPercentage *int   `json:"businessPercentage" binding:"omitempty,min=0,max=100"`
	Reference          string `json:"reference"`
	Notes              string `json:"notes"`
}

// UpdateCategoryRequest defines a user category override on an expense.
type UpdateCategoryRequest struct {
	CategoryCode       string `json:"categoryCode" binding:"required,deduction_category"`
	BusinessPercentage *int   `json:"businessPercentage" binding:"omitempty,min=0,max=100"`
	// ApplyToMerchant also records the override as a mapping so future
	// expenses from the same merchant pick it up.
	ApplyToMerchant bool `json:"applyToMerchant"`
}

// ExpenseResponse defines the data returned for an expense.
type ExpenseResponse struct {
	ExpenseID           string             `json:"expenseID"`
	MerchantText        string             `json:"merchantText"`
	CanonicalMerchantID string             `json:"canonicalMerchantID,omitempty"`
	AmountCHF           decimal.Decimal    `json:"amountCHF"`
	Date                string             `json:"date"`
	CategoryCode        string             `json:"categoryCode"`
	CategoryConfidence  float64            `json:"categoryConfidence"`
	BusinessPercentage  int                `json:"businessPercentage"`
	Reference           string             `json:"reference,omitempty"`
	Notes               string             `json:"notes,omitempty"`
	MatchStatus         domain.MatchStatus `json:"matchStatus"`
}

// ToExpenseResponse converts a domain.Expense to ExpenseResponse DTO
func ToExpenseResponse(e *domain.Expense) ExpenseResponse {
	return ExpenseResponse{
		ExpenseID:           e.ExpenseID,
		MerchantText:        e.MerchantText,
		CanonicalMerchantID: e.CanonicalMerchantID,
		AmountCHF:           e.AmountCHF,
		Date:                e.Date.Format("2006-01-02"),
		CategoryCode:        e.CategoryCode,
		CategoryConfidence:  e.CategoryConfidence,
		BusinessPercentage:  e.BusinessPercentage,
		Reference:           e.Reference,
		Notes:               e.Notes,
		MatchStatus:         e.MatchStatus,
	}
}

// ToListExpenseResponse converts a slice of domain.Expense to DTOs
func ToListExpenseResponse(expenses []domain.Expense) []ExpenseResponse {
	res := make([]ExpenseResponse, len(expenses))
	for i := range expenses {
		res[i] = ToExpenseResponse(&expenses[i])
	}
	return res
}

// ListExpensesParams defines query parameters for listing expenses.
type ListExpensesParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

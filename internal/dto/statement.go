package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/silvioiatech/umbra-accountant/internal/core/domain"
)

// ImportRowWarning reports one statement row that could not be imported.
type ImportRowWarning struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
	Raw    string `json:"raw,omitempty"`
}

// ImportStatementResponse summarizes one statement import.
type ImportStatementResponse struct {
	StatementID    string                 `json:"statementID"`
	Format         domain.StatementFormat `json:"format"`
	AccountRef     string                 `json:"accountRef,omitempty"`
	ImportedCount  int                    `json:"importedCount"`
	DuplicateCount int                    `json:"duplicateCount"`
	SkippedRows    int                    `json:"skippedRows"`
	Warnings       []ImportRowWarning     `json:"warnings,omitempty"`
}

// StatementResponse defines the data returned for a statement.
type StatementResponse struct {
	StatementID      string                 `json:"statementID"`
	SourceFormat     domain.StatementFormat `json:"sourceFormat"`
	AccountRef       string                 `json:"accountRef"`
	FileName         string                 `json:"fileName"`
	ImportedAt       time.Time              `json:"importedAt"`
	TransactionCount int                    `json:"transactionCount"`
}

// ToStatementResponse converts a domain.Statement to StatementResponse DTO
func ToStatementResponse(s *domain.Statement) StatementResponse {
	return StatementResponse{
		StatementID:      s.StatementID,
		SourceFormat:     s.SourceFormat,
		AccountRef:       s.AccountRef,
		FileName:         s.FileName,
		ImportedAt:       s.ImportedAt,
		TransactionCount: s.TransactionCount,
	}
}

// ToListStatementResponse converts a slice of domain.Statement to DTOs
func ToListStatementResponse(statements []domain.Statement) []StatementResponse {
	res := make([]StatementResponse, len(statements))
	for i := range statements {
		res[i] = ToStatementResponse(&statements[i])
	}
	return res
}

// TransactionResponse defines the data returned for a bank transaction.
type TransactionResponse struct {
	TransactionID   string          `json:"transactionID"`
	StatementID     string          `json:"statementID"`
	AccountRef      string          `json:"accountRef"`
	BookingDate     string          `json:"bookingDate"`
	ValueDate       string          `json:"valueDate,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	CounterpartyRaw string          `json:"counterpartyRaw,omitempty"`
	Description     string          `json:"description,omitempty"`
	Reference       string          `json:"reference,omitempty"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	res := TransactionResponse{
		TransactionID:   t.TransactionID,
		StatementID:     t.StatementID,
		AccountRef:      t.AccountRef,
		BookingDate:     t.BookingDate.Format("2006-01-02"),
		Amount:          t.Amount,
		Currency:        t.Currency,
		CounterpartyRaw: t.CounterpartyRaw,
		Description:     t.Description,
		Reference:       t.Reference,
	}
	if t.ValueDate != nil {
		res.ValueDate = t.ValueDate.Format("2006-01-02")
	}
	return res
}

// ToListTransactionResponse converts a slice of domain.Transaction to DTOs
func ToListTransactionResponse(transactions []domain.Transaction) []TransactionResponse {
	res := make([]TransactionResponse, len(transactions))
	for i := range transactions {
		res[i] = ToTransactionResponse(&transactions[i])
	}
	return res
}

// ListStatementsParams defines query parameters for listing statements.
type ListStatementsParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// ListTransactionsParams defines query parameters for listing transactions.
type ListTransactionsParams struct {
	From string `form:"from" binding:"required,datetime=2006-01-02"`
	To   string `form:"to" binding:"required,datetime=2006-01-02"`
}

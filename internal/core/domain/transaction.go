package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// StatementFormat identifies a supported bank statement format.
type StatementFormat string

const (
	FormatCAMT053        StatementFormat = "camt053"
	FormatCSVUBS         StatementFormat = "csv_ubs"
	FormatCSVPostFinance StatementFormat = "csv_postfinance"
	FormatCSVRevolut     StatementFormat = "csv_revolut"
	FormatCSVSwisscard   StatementFormat = "csv_swisscard"
	FormatCSVGeneric     StatementFormat = "csv_generic"
)

// Transaction represents a single bank-ledger line imported from a statement.
// Transactions are immutable once stored; re-imports of the same line are
// deduplicated by ContentHash and the (account_ref, booking_date, amount,
// reference) uniqueness constraint.
type Transaction struct {
	TransactionID   string          `json:"transactionID"`
	StatementID     string          `json:"statementID"`
	AccountRef      string          `json:"accountRef"`
	BookingDate     time.Time       `json:"bookingDate"`
	ValueDate       *time.Time      `json:"valueDate,omitempty"`
	Amount          decimal.Decimal `json:"amount"` // signed; debits negative
	Currency        string          `json:"currency"`
	CounterpartyRaw string          `json:"counterpartyRaw"`
	Description     string          `json:"description"`
	Reference       string          `json:"reference"`
	ContentHash     string          `json:"contentHash"`
	AuditFields
}

// DedupKey returns the logical identity of the transaction used for
// statement re-import deduplication.
func (t Transaction) DedupKey() string {
	return fmt.Sprintf("%s|%s|%s|%s",
		t.AccountRef, t.BookingDate.Format("2006-01-02"), t.Amount.String(), t.Reference)
}

// ComputeContentHash derives the transaction's content hash from its dedup key.
func (t Transaction) ComputeContentHash() string {
	sum := sha256.Sum256([]byte(t.DedupKey()))
	return hex.EncodeToString(sum[:])
}

// Statement represents one imported statement file.
type Statement struct {
	StatementID      string          `json:"statementID"`
	UserID           string          `json:"userID"`
	SourceFormat     StatementFormat `json:"sourceFormat"`
	AccountRef       string          `json:"accountRef"`
	FileName         string          `json:"fileName"`
	ImportedAt       time.Time       `json:"importedAt"`
	TransactionCount int             `json:"transactionCount"`
	AuditFields
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Statement represents one imported statement file.
type Statement struct {
	StatementID      string    `db:"statement_id"`
	UserID           string    `db:"user_id"`
	SourceFormat     string    `db:"source_format"`
	AccountRef       string    `db:"account_ref"`
	FileName         string    `db:"file_name"`
	ImportedAt       time.Time `db:"imported_at"`
	TransactionCount int       `db:"transaction_count"`
	AuditFields
}

// Transaction represents one imported bank-ledger line.
// The (account_ref, booking_date, amount, reference) tuple is unique per user;
// content_hash is the precomputed digest of that tuple.
type Transaction struct {
	TransactionID   string          `db:"transaction_id"`
	StatementID     string          `db:"statement_id"`
	AccountRef      string          `db:"account_ref"`
	BookingDate     time.Time       `db:"booking_date"`
	ValueDate       *time.Time      `db:"value_date"` // Nullable
	Amount          decimal.Decimal `db:"amount"`
	Currency        string          `db:"currency"`
	CounterpartyRaw string          `db:"counterparty_raw"`
	Description     string          `db:"description"`
	Reference       string          `db:"reference"`
	ContentHash     string          `db:"content_hash"`
	AuditFields
}

// Package ingest detects and parses bank statement formats into normalized
// transaction rows. Parsers are registered in priority order; each inspects
// the content (header tokens, delimiters, XML root) and reports a detection
// confidence. Adding a bank means registering a new Parser, not branching in
// the import path.
package ingest

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/silvioiatech/umbra-accountant/internal/apperrors"
	"github.com/silvioiatech/umbra-accountant/internal/core/domain"
)

// RawTransaction is one parsed statement row, normalized across formats.
// Amounts are signed: debits negative.
type RawTransaction struct {
	BookingDate  time.Time
	ValueDate    *time.Time
	Amount       decimal.Decimal
	Currency     string
	Counterparty string
	Description  string
	Reference    string
}

// RowWarning records a row that could not be parsed. Row indexes are
// 1-based over data rows (header excluded).
type RowWarning struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
	Raw    string `json:"raw"`
}

// Result is the outcome of parsing one statement file.
type Result struct {
	Format       domain.StatementFormat
	AccountRef   string // filled when the format carries it (e.g. CAMT IBAN)
	Transactions []RawTransaction
	Warnings     []RowWarning
	SkippedRows  int
}

// Parser detects and parses one statement format.
type Parser interface {
	Format() domain.StatementFormat
	// Detect returns a confidence in [0,1] that content is in this format.
	Detect(content, filenameHint string) float64
	Parse(content string) (*Result, error)
}

// Registry holds parsers in priority order and routes content to the
// highest-confidence one.
type Registry struct {
	parsers       []Parser
	minConfidence float64
}

// NewRegistry returns a registry preloaded with all supported formats.
// Specific bank formats are registered ahead of the generic CSV fallback so
// ties resolve toward the more precise parser.
func NewRegistry(minConfidence float64) *Registry {
	r := &Registry{minConfidence: minConfidence}
	r.Register(&camtParser{})
	r.Register(&ubsCSVParser{})
	r.Register(&postFinanceCSVParser{})
	r.Register(&revolutCSVParser{})
	r.Register(&swisscardCSVParser{})
	r.Register(&genericCSVParser{})
	return r
}

// Register appends a parser at the lowest priority.
func (r *Registry) Register(p Parser) {
	r.parsers = append(r.parsers, p)
}

// Detect selects the parser with the highest confidence above the minimum
// threshold. Earlier-registered parsers win ties.
func (r *Registry) Detect(content, filenameHint string) (Parser, float64, error) {
	var best Parser
	var bestScore float64
	for _, p := range r.parsers {
		if score := p.Detect(content, filenameHint); score > bestScore {
			best = p
			bestScore = score
		}
	}
	if best == nil || bestScore < r.minConfidence {
		return nil, 0, fmt.Errorf("no detector above confidence %.2f: %w", r.minConfidence, apperrors.ErrFormatUnrecognized)
	}
	return best, bestScore, nil
}

// ParseStatement decodes raw bytes through the fallback encoding chain,
// detects the format, and parses. Malformed rows are returned as warnings;
// only a wholly unparsable file fails.
func (r *Registry) ParseStatement(raw []byte, filenameHint string) (*Result, error) {
	content, err := DecodeContent(raw)
	if err != nil {
		return nil, err
	}

	parser, _, err := r.Detect(content, filenameHint)
	if err != nil {
		return nil, err
	}

	res, err := parser.Parse(content)
	if err != nil {
		return nil, err
	}
	res.Format = parser.Format()
	res.SkippedRows = len(res.Warnings)
	if len(res.Transactions) == 0 && res.SkippedRows > 0 {
		return nil, fmt.Errorf("%s: every row failed to parse: %w", parser.Format(), apperrors.ErrParse)
	}
	return res, nil
}

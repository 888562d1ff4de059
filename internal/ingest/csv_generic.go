package ingest

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/silvioiatech/umbra-accountant/internal/core/domain"
)

// genericCSVParser is the lowest-priority fallback for CSV files that no bank
// specific parser claims. Column names are matched across German, French,
// Italian and English headers.
type genericCSVParser struct{}

func (p *genericCSVParser) Format() domain.StatementFormat { return domain.FormatCSVGeneric }

func (p *genericCSVParser) Detect(content, filenameHint string) float64 {
	sample := sampleOf(content)
	if !strings.ContainsAny(sample, ";,\t") {
		return 0
	}
	lower := strings.ToLower(sample)
	hasDate := containsAny(lower, "date", "datum", "data")
	hasAmount := containsAny(lower, "amount", "betrag", "montant", "importo", "debit", "credit", "belastung", "gutschrift")
	if hasDate && hasAmount {
		return 0.6
	}
	return 0
}

func (p *genericCSVParser) Parse(content string) (*Result, error) {
	records := readRecords(content, sniffDelimiter(content))
	res := &Result{}
	if len(records) < 2 {
		return res, nil
	}

	idx := headerIndex(records[0])
	for i, record := range records[1:] {
		row := i + 1
		txn := RawTransaction{
			Counterparty: field(record, idx, "counterparty", "merchant", "payee", "empfänger", "bénéficiaire"),
			Description:  field(record, idx, "description", "beschreibung", "text", "libellé", "descrizione"),
			Reference:    field(record, idx, "reference", "referenz", "référence"),
			Currency:     orDefault(field(record, idx, "currency", "währung", "monnaie", "valuta"), "CHF"),
		}

		booking, err := parseDate(field(record, idx, "date", "datum", "data", "booking date", "buchungsdatum"))
		if err != nil {
			res.Warnings = append(res.Warnings, RowWarning{Row: row, Reason: err.Error(), Raw: rawLine(record)})
			continue
		}
		txn.BookingDate = booking

		amount, err := p.amount(record, idx)
		if err != nil {
			res.Warnings = append(res.Warnings, RowWarning{Row: row, Reason: err.Error(), Raw: rawLine(record)})
			continue
		}
		if amount.IsZero() {
			res.Warnings = append(res.Warnings, RowWarning{Row: row, Reason: "zero amount", Raw: rawLine(record)})
			continue
		}
		txn.Amount = amount

		res.Transactions = append(res.Transactions, txn)
	}
	return res, nil
}

func (p *genericCSVParser) amount(record []string, idx map[string]int) (decimal.Decimal, error) {
	if single := field(record, idx, "amount", "betrag", "montant", "importo"); single != "" {
		return parseAmount(single)
	}
	debit := field(record, idx, "debit", "belastung", "débit")
	credit := field(record, idx, "credit", "gutschrift", "crédit")
	return signedAmount(debit, credit)
}

func containsAny(s string, tokens ...string) bool {
	for _, tok := range tokens {
		if strings.Contains(s, tok) {
			return true
		}
	}
	return false
}

package ingest

import (
	"strings"

	"github.com/silvioiatech/umbra-accountant/internal/core/domain"
)

// ubsCSVParser handles UBS account exports, which ship with English
// ("Trade Date;...;Debit;Credit") or German ("Buchungsdatum;...;Belastung;
// Gutschrift") headers and separate debit/credit columns.
type ubsCSVParser struct{}

func (p *ubsCSVParser) Format() domain.StatementFormat { return domain.FormatCSVUBS }

func (p *ubsCSVParser) Detect(content, filenameHint string) float64 {
	if headerMatches(content, "Trade Date", "Valuta Date", "Debit", "Credit") ||
		headerMatches(content, "Buchungsdatum", "Valuta", "Belastung", "Gutschrift") {
		return 0.9
	}
	if strings.Contains(strings.ToLower(filenameHint), "ubs") && strings.HasSuffix(strings.ToLower(filenameHint), ".csv") {
		return 0.8
	}
	return 0
}

func (p *ubsCSVParser) Parse(content string) (*Result, error) {
	records := readRecords(content, sniffDelimiter(content))
	res := &Result{}
	if len(records) < 2 {
		return res, nil
	}

	idx := headerIndex(records[0])
	for i, record := range records[1:] {
		row := i + 1
		txn := RawTransaction{
			Counterparty: field(record, idx, "counterparty", "auftraggeber"),
			Description:  field(record, idx, "description", "beschreibung"),
			Reference:    field(record, idx, "reference", "referenz"),
			Currency:     orDefault(field(record, idx, "currency", "währung"), "CHF"),
		}

		booking, err := parseDate(field(record, idx, "trade date", "buchungsdatum"))
		if err != nil {
			res.Warnings = append(res.Warnings, RowWarning{Row: row, Reason: err.Error(), Raw: rawLine(record)})
			continue
		}
		txn.BookingDate = booking

		if valuta, err := parseDate(field(record, idx, "valuta date", "valuta")); err == nil {
			txn.ValueDate = &valuta
		}

		amount, err := signedAmount(
			field(record, idx, "debit", "belastung"),
			field(record, idx, "credit", "gutschrift"),
		)
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

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

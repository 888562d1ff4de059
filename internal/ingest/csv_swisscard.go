package ingest

import (
	"strings"

	"github.com/silvioiatech/umbra-accountant/internal/core/domain"
)

// swisscardCSVParser handles Swisscard credit card exports. Card statements
// book expenses as negative amounts; the merchant column doubles as
// counterparty.
type swisscardCSVParser struct{}

func (p *swisscardCSVParser) Format() domain.StatementFormat { return domain.FormatCSVSwisscard }

func (p *swisscardCSVParser) Detect(content, filenameHint string) float64 {
	if headerMatches(content, "Card", "Transaction Date", "Posting Date", "Amount") ||
		headerMatches(content, "Karte", "Transaktionsdatum", "Buchungsdatum", "Betrag") {
		return 0.9
	}
	lower := strings.ToLower(filenameHint)
	if strings.Contains(lower, "swisscard") && strings.HasSuffix(lower, ".csv") {
		return 0.8
	}
	return 0
}

func (p *swisscardCSVParser) Parse(content string) (*Result, error) {
	records := readRecords(content, sniffDelimiter(content))
	res := &Result{}
	if len(records) < 2 {
		return res, nil
	}

	idx := headerIndex(records[0])
	for i, record := range records[1:] {
		row := i + 1
		txn := RawTransaction{
			Counterparty: field(record, idx, "merchant", "händler"),
			Description:  field(record, idx, "description", "beschreibung"),
			Reference:    field(record, idx, "reference"),
			Currency:     orDefault(field(record, idx, "currency", "währung"), "CHF"),
		}

		booking, err := parseDate(field(record, idx, "posting date", "buchungsdatum"))
		if err != nil {
			res.Warnings = append(res.Warnings, RowWarning{Row: row, Reason: err.Error(), Raw: rawLine(record)})
			continue
		}
		txn.BookingDate = booking

		if txnDate, err := parseDate(field(record, idx, "transaction date", "transaktionsdatum")); err == nil {
			txn.ValueDate = &txnDate
		}

		amount, err := parseAmount(field(record, idx, "amount", "betrag"))
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

package ingest

import (
	"strings"

	"github.com/silvioiatech/umbra-accountant/internal/core/domain"
)

// revolutCSVParser handles Revolut exports: comma delimited, English headers,
// one signed Amount column, a State column that marks pending rows.
type revolutCSVParser struct{}

func (p *revolutCSVParser) Format() domain.StatementFormat { return domain.FormatCSVRevolut }

func (p *revolutCSVParser) Detect(content, filenameHint string) float64 {
	if headerMatches(content, "Type", "Product", "Started Date", "Completed Date", "State", "Balance") {
		return 0.9
	}
	lower := strings.ToLower(filenameHint)
	if strings.Contains(lower, "revolut") && strings.HasSuffix(lower, ".csv") {
		return 0.8
	}
	return 0
}

func (p *revolutCSVParser) Parse(content string) (*Result, error) {
	records := readRecords(content, ',')
	res := &Result{}
	if len(records) < 2 {
		return res, nil
	}

	idx := headerIndex(records[0])
	for i, record := range records[1:] {
		row := i + 1

		// Pending rows will reappear as COMPLETED in a later export.
		if !strings.EqualFold(field(record, idx, "state"), "COMPLETED") {
			continue
		}

		txn := RawTransaction{
			Description: field(record, idx, "description"),
			Reference:   field(record, idx, "reference"),
			Currency:    orDefault(field(record, idx, "currency"), "CHF"),
		}

		booking, err := parseDate(field(record, idx, "completed date", "started date"))
		if err != nil {
			res.Warnings = append(res.Warnings, RowWarning{Row: row, Reason: err.Error(), Raw: rawLine(record)})
			continue
		}
		txn.BookingDate = booking

		amount, err := parseAmount(field(record, idx, "amount"))
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

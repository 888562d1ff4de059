package ingest

import (
	"strings"

	"github.com/silvioiatech/umbra-accountant/internal/core/domain"
)

// postFinanceCSVParser handles PostFinance account exports: semicolon
// delimited, German or French headers, separate Gutschrift/Belastung columns,
// CHF only.
type postFinanceCSVParser struct{}

func (p *postFinanceCSVParser) Format() domain.StatementFormat { return domain.FormatCSVPostFinance }

func (p *postFinanceCSVParser) Detect(content, filenameHint string) float64 {
	if headerMatches(content, "Datum", "Gutschrift", "Belastung", "Saldo") ||
		headerMatches(content, "Date", "Crédit", "Débit", "Solde") {
		return 0.9
	}
	lower := strings.ToLower(filenameHint)
	if strings.Contains(lower, "postfinance") && strings.HasSuffix(lower, ".csv") {
		return 0.8
	}
	return 0
}

func (p *postFinanceCSVParser) Parse(content string) (*Result, error) {
	records := readRecords(content, ';')
	res := &Result{}
	if len(records) < 2 {
		return res, nil
	}

	idx := headerIndex(records[0])
	for i, record := range records[1:] {
		row := i + 1
		txn := RawTransaction{
			Counterparty: field(record, idx, "auftraggeber/zahlungsempfänger", "donneur d'ordre/bénéficiaire"),
			Description:  field(record, idx, "beschreibung", "libellé", "description"),
			Reference:    field(record, idx, "referenz", "référence", "reference"),
			Currency:     "CHF",
		}

		booking, err := parseDate(field(record, idx, "datum", "date"))
		if err != nil {
			res.Warnings = append(res.Warnings, RowWarning{Row: row, Reason: err.Error(), Raw: rawLine(record)})
			continue
		}
		txn.BookingDate = booking

		if valuta, err := parseDate(field(record, idx, "valuta", "valeur")); err == nil {
			txn.ValueDate = &valuta
		}

		amount, err := signedAmount(
			field(record, idx, "belastung", "débit", "debit"),
			field(record, idx, "gutschrift", "crédit", "credit"),
		)
		if err != nil {
			res.Warnings = append(res.Warnings, RowWarning{Row: row, Reason: err.Error(), Raw: rawLine(record)})
			continue
		}
		txn.Amount = amount

		res.Transactions = append(res.Transactions, txn)
	}
	return res, nil
}

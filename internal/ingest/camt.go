package ingest

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/silvioiatech/umbra-accountant/internal/core/domain"
)

// camtParser handles ISO 20022 camt.053 bank-to-customer statements, the
// standard export format of Swiss banks. camt.052 reports share the entry
// structure and parse the same way.
type camtParser struct{}

func (p *camtParser) Format() domain.StatementFormat { return domain.FormatCAMT053 }

func (p *camtParser) Detect(content, filenameHint string) float64 {
	sample := sampleOf(content)
	if !strings.Contains(sample, "<?xml") && !strings.Contains(sample, "<Document") {
		return 0
	}
	if strings.Contains(sample, "camt.053") || strings.Contains(sample, "camt.052") {
		return 0.95
	}
	if strings.Contains(sample, "<BkToCstmrStmt") || strings.Contains(sample, "<BkToCstmrAcctRpt") {
		return 0.9
	}
	return 0
}

type camtDocument struct {
	XMLName   xml.Name      `xml:"Document"`
	Statement camtStatement `xml:"BkToCstmrStmt>Stmt"`
	Report    camtStatement `xml:"BkToCstmrAcctRpt>Rpt"`
}

type camtStatement struct {
	Account camtAccount `xml:"Acct"`
	Entries []camtEntry `xml:"Ntry"`
}

type camtAccount struct {
	IBAN  string `xml:"Id>IBAN"`
	Other string `xml:"Id>Othr>Id"`
}

type camtEntry struct {
	Amount      camtAmount  `xml:"Amt"`
	CdtDbtInd   string      `xml:"CdtDbtInd"`
	BookingDate string      `xml:"BookgDt>Dt"`
	ValueDate   string      `xml:"ValDt>Dt"`
	ServicerRef string      `xml:"AcctSvcrRef"`
	Details     camtDetails `xml:"NtryDtls>TxDtls"`
	Info        string      `xml:"AddtlNtryInf"`
}

type camtAmount struct {
	Currency string `xml:"Ccy,attr"`
	Value    string `xml:",chardata"`
}

type camtDetails struct {
	Debtor     string   `xml:"RltdPties>Dbtr>Nm"`
	Creditor   string   `xml:"RltdPties>Cdtr>Nm"`
	References string   `xml:"Refs>EndToEndId"`
	Remittance []string `xml:"RmtInf>Ustrd"`
}

func (p *camtParser) Parse(content string) (*Result, error) {
	var doc camtDocument
	if err := xml.Unmarshal([]byte(content), &doc); err != nil {
		return nil, fmt.Errorf("camt document: %w", err)
	}

	stmt := doc.Statement
	if len(stmt.Entries) == 0 && len(doc.Report.Entries) > 0 {
		stmt = doc.Report
	}

	res := &Result{AccountRef: stmt.Account.IBAN}
	if res.AccountRef == "" {
		res.AccountRef = stmt.Account.Other
	}

	for i, entry := range stmt.Entries {
		row := i + 1
		txn := RawTransaction{
			Currency:    orDefault(entry.Amount.Currency, "CHF"),
			Description: strings.TrimSpace(strings.Join(entry.Details.Remittance, " ")),
			Reference:   orDefault(entry.Details.References, entry.ServicerRef),
		}
		if txn.Description == "" {
			txn.Description = strings.TrimSpace(entry.Info)
		}

		booking, err := parseDate(entry.BookingDate)
		if err != nil {
			res.Warnings = append(res.Warnings, RowWarning{Row: row, Reason: err.Error(), Raw: entry.ServicerRef})
			continue
		}
		txn.BookingDate = booking

		if valueDate, err := parseDate(entry.ValueDate); err == nil {
			txn.ValueDate = &valueDate
		}

		amount, err := decimal.NewFromString(strings.TrimSpace(entry.Amount.Value))
		if err != nil {
			res.Warnings = append(res.Warnings, RowWarning{Row: row, Reason: "bad amount: " + err.Error(), Raw: entry.ServicerRef})
			continue
		}
		if amount.IsZero() {
			res.Warnings = append(res.Warnings, RowWarning{Row: row, Reason: "zero amount", Raw: entry.ServicerRef})
			continue
		}
		// DBIT entries are money leaving the account.
		if strings.EqualFold(entry.CdtDbtInd, "DBIT") {
			amount = amount.Neg()
		}
		txn.Amount = amount

		// The relevant counterparty depends on direction: creditor for
		// outgoing payments, debtor for incoming ones.
		if amount.IsNegative() {
			txn.Counterparty = orDefault(entry.Details.Creditor, entry.Details.Debtor)
		} else {
			txn.Counterparty = orDefault(entry.Details.Debtor, entry.Details.Creditor)
		}

		res.Transactions = append(res.Transactions, txn)
	}
	return res, nil
}

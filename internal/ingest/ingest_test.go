package ingest_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/silvioiatech/umbra-accountant/internal/apperrors"
	"github.com/silvioiatech/umbra-accountant/internal/core/domain"
	"github.com/silvioiatech/umbra-accountant/internal/ingest"
)

type IngestTestSuite struct {
	suite.Suite
	registry *ingest.Registry
}

func (s *IngestTestSuite) SetupTest() {
	s.registry = ingest.NewRegistry(0.5)
}

func (s *IngestTestSuite) TestParseCamt053() {
	content := `<?xml version="1.0" encoding="UTF-8"?>
<Document xmlns="urn:iso:std:iso:20022:tech:xsd:camt.053.001.08">
  <BkToCstmrStmt>
    <Stmt>
      <Acct><Id><IBAN>CH9300762011623852957</IBAN></Id></Acct>
      <Ntry>
        <Amt Ccy="CHF">120.50</Amt>
        <CdtDbtInd>DBIT</CdtDbtInd>
        <BookgDt><Dt>2024-03-15</Dt></BookgDt>
        <ValDt><Dt>2024-03-16</Dt></ValDt>
        <AcctSvcrRef>REF-001</AcctSvcrRef>
        <NtryDtls>
          <TxDtls>
            <RltdPties><Cdtr><Nm>SBB CFF FFS</Nm></Cdtr></RltdPties>
            <RmtInf><Ustrd>GA Travelcard renewal</Ustrd></RmtInf>
          </TxDtls>
        </NtryDtls>
      </Ntry>
      <Ntry>
        <Amt Ccy="CHF">2500.00</Amt>
        <CdtDbtInd>CRDT</CdtDbtInd>
        <BookgDt><Dt>2024-03-25</Dt></BookgDt>
        <NtryDtls>
          <TxDtls>
            <RltdPties><Dbtr><Nm>ACME AG</Nm></Dbtr></RltdPties>
          </TxDtls>
        </NtryDtls>
      </Ntry>
    </Stmt>
  </BkToCstmrStmt>
</Document>`

	res, err := s.registry.ParseStatement([]byte(content), "statement.xml")
	s.Require().NoError(err)
	s.Equal(domain.FormatCAMT053, res.Format)
	s.Equal("CH9300762011623852957", res.AccountRef)
	s.Require().Len(res.Transactions, 2)

	debit := res.Transactions[0]
	s.True(debit.Amount.Equal(decimal.RequireFromString("-120.50")))
	s.Equal("SBB CFF FFS", debit.Counterparty)
	s.Equal("GA Travelcard renewal", debit.Description)
	s.Equal("2024-03-15", debit.BookingDate.Format("2006-01-02"))
	s.Require().NotNil(debit.ValueDate)
	s.Equal("2024-03-16", debit.ValueDate.Format("2006-01-02"))

	credit := res.Transactions[1]
	s.True(credit.Amount.Equal(decimal.RequireFromString("2500.00")))
	s.Equal("ACME AG", credit.Counterparty)
}

func (s *IngestTestSuite) TestParseUBSGermanHeaders() {
	content := "Buchungsdatum;Valuta;Beschreibung;Belastung;Gutschrift;Währung\n" +
		"15.03.2024;16.03.2024;MIGROS ZUERICH;45.80;;CHF\n" +
		"20.03.2024;20.03.2024;Gehalt;;5000.00;CHF\n"

	res, err := s.registry.ParseStatement([]byte(content), "ubs_export.csv")
	s.Require().NoError(err)
	s.Equal(domain.FormatCSVUBS, res.Format)
	s.Require().Len(res.Transactions, 2)
	s.True(res.Transactions[0].Amount.Equal(decimal.RequireFromString("-45.80")))
	s.True(res.Transactions[1].Amount.Equal(decimal.RequireFromString("5000.00")))
}

func (s *IngestTestSuite) TestParsePostFinance() {
	content := "Datum;Avisierungstext;Gutschrift;Belastung;Saldo\n" +
		"2024-04-02;COOP PRONTO BERN;;-23.50;1200.00\n" +
		"2024-04-05;Einzahlung;150.00;;1350.00\n"

	res, err := s.registry.ParseStatement([]byte(content), "postfinance.csv")
	s.Require().NoError(err)
	s.Equal(domain.FormatCSVPostFinance, res.Format)
	s.Require().Len(res.Transactions, 2)
	s.True(res.Transactions[0].Amount.IsNegative())
	s.True(res.Transactions[1].Amount.IsPositive())
	s.Equal("CHF", res.Transactions[0].Currency)
}

func (s *IngestTestSuite) TestParseRevolutSkipsIncomplete() {
	content := "Type,Product,Started Date,Completed Date,Description,Amount,Currency,State,Balance\n" +
		"CARD_PAYMENT,Current,2024-05-01 10:00:00,2024-05-02 08:00:00,Galaxus,-199.00,CHF,COMPLETED,800.00\n" +
		"CARD_PAYMENT,Current,2024-05-03 12:00:00,,Pending shop,-50.00,CHF,PENDING,750.00\n"

	res, err := s.registry.ParseStatement([]byte(content), "revolut.csv")
	s.Require().NoError(err)
	s.Equal(domain.FormatCSVRevolut, res.Format)
	s.Require().Len(res.Transactions, 1)
	s.Equal("Galaxus", res.Transactions[0].Description)
}

func (s *IngestTestSuite) TestParseSwisscard() {
	content := "Card;Transaction Date;Posting Date;Merchant;Description;Amount;Currency\n" +
		"XXXX-1234;14.06.2024;15.06.2024;DIGITEC GALAXUS AG;Online purchase;-349.00;CHF\n"

	res, err := s.registry.ParseStatement([]byte(content), "swisscard_2024.csv")
	s.Require().NoError(err)
	s.Equal(domain.FormatCSVSwisscard, res.Format)
	s.Require().Len(res.Transactions, 1)
	txn := res.Transactions[0]
	s.Equal("DIGITEC GALAXUS AG", txn.Counterparty)
	s.Equal("2024-06-15", txn.BookingDate.Format("2006-01-02"))
	s.Require().NotNil(txn.ValueDate)
	s.Equal("2024-06-14", txn.ValueDate.Format("2006-01-02"))
}

func (s *IngestTestSuite) TestParseGenericFallback() {
	content := "Date,Description,Amount\n" +
		"2024-07-01,Taxi fare,-35.00\n" +
		"2024-07-02,Refund,12.00\n"

	res, err := s.registry.ParseStatement([]byte(content), "export.csv")
	s.Require().NoError(err)
	s.Equal(domain.FormatCSVGeneric, res.Format)
	s.Len(res.Transactions, 2)
}

func (s *IngestTestSuite) TestMalformedRowsBecomeWarnings() {
	content := "Date,Description,Amount\n" +
		"2024-07-01,Valid row,-35.00\n" +
		"not-a-date,Broken row,-10.00\n" +
		"2024-07-03,Zero row,0.00\n"

	res, err := s.registry.ParseStatement([]byte(content), "export.csv")
	s.Require().NoError(err)
	s.Len(res.Transactions, 1)
	s.Len(res.Warnings, 2)
	s.Equal(2, res.SkippedRows)
	s.Equal(2, res.Warnings[0].Row)
}

func (s *IngestTestSuite) TestWhollyUnparsableFileFails() {
	content := "Date,Description,Amount\n" +
		"garbage,Broken,not-a-number\n"

	_, err := s.registry.ParseStatement([]byte(content), "export.csv")
	s.Require().ErrorIs(err, apperrors.ErrParse)
}

func (s *IngestTestSuite) TestUnrecognizedFormat() {
	_, err := s.registry.ParseStatement([]byte("just some prose without structure"), "notes.txt")
	s.Require().ErrorIs(err, apperrors.ErrFormatUnrecognized)
}

func (s *IngestTestSuite) TestLatin1Fallback() {
	// "Zürich" encoded as ISO-8859-1: 0xFC is invalid UTF-8 on its own.
	content := []byte("Date,Description,Amount\n2024-07-01,Caf\xe9 Z\xfcrich,-15.00\n")

	res, err := s.registry.ParseStatement(content, "export.csv")
	s.Require().NoError(err)
	s.Require().Len(res.Transactions, 1)
	s.Equal("Café Zürich", res.Transactions[0].Description)
}

func (s *IngestTestSuite) TestBinaryContentRejected() {
	_, err := s.registry.ParseStatement([]byte{0x00, 0x01, 0x02, 0xFF}, "blob.bin")
	s.Require().ErrorIs(err, apperrors.ErrEncoding)
}

func TestIngestTestSuite(t *testing.T) {
	suite.Run(t, new(IngestTestSuite))
}

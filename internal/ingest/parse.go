package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// dateLayouts are the date formats seen across Swiss bank exports.
var dateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"02.01.06",
	"2006-01-02 15:04:05",
	"02/01/2006",
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// parseAmount handles Swiss-style thousands separators ("1'234.56") and
// comma decimal separators ("1234,56").
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, " ", "")
	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") {
			// comma as thousands separator
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ",", ".")
		}
	}
	return decimal.NewFromString(s)
}

// sniffDelimiter picks the delimiter producing the most columns in the first
// line; semicolon wins ties, matching the dominant Swiss export convention.
func sniffDelimiter(content string) rune {
	firstLine := content
	if idx := strings.IndexByte(content, '\n'); idx >= 0 {
		firstLine = content[:idx]
	}
	best := ';'
	bestCount := strings.Count(firstLine, ";")
	for _, d := range []rune{',', '\t'} {
		if c := strings.Count(firstLine, string(d)); c > bestCount {
			best = d
			bestCount = c
		}
	}
	return best
}

// readRecords parses CSV content leniently: variable field counts are allowed
// and quoting errors fall back to a plain split so one bad row cannot abort
// the whole file.
func readRecords(content string, delimiter rune) [][]string {
	reader := csv.NewReader(strings.NewReader(content))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Resynchronize on the next line; the malformed line surfaces
			// later as a short/unparsable row warning.
			continue
		}
		records = append(records, record)
	}
	return records
}

// headerIndex builds a lowercase header name -> column index map.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

// field returns the trimmed cell for the first matching header name.
func field(record []string, idx map[string]int, names ...string) string {
	for _, n := range names {
		if i, ok := idx[n]; ok && i < len(record) {
			return strings.TrimSpace(record[i])
		}
	}
	return ""
}

// headerMatches reports whether every token appears in the first content
// lines, case-insensitively. Used by detectors on localized headers.
func headerMatches(content string, tokens ...string) bool {
	sample := strings.ToLower(sampleOf(content))
	for _, tok := range tokens {
		if !strings.Contains(sample, strings.ToLower(tok)) {
			return false
		}
	}
	return true
}

// sampleOf returns the first 2KB used for format detection.
func sampleOf(content string) string {
	if len(content) > 2048 {
		return content[:2048]
	}
	return content
}

// signedAmount resolves separate debit/credit columns into one signed amount.
func signedAmount(debit, credit string) (decimal.Decimal, error) {
	if credit != "" {
		return parseAmount(credit)
	}
	if debit != "" {
		amt, err := parseAmount(debit)
		if err != nil {
			return decimal.Zero, err
		}
		return amt.Abs().Neg(), nil
	}
	return decimal.Zero, fmt.Errorf("no amount")
}

func rawLine(record []string) string {
	return strings.Join(record, ";")
}

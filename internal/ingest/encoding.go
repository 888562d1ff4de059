package ingest

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/silvioiatech/umbra-accountant/internal/apperrors"
)

// DecodeContent decodes statement bytes through the fallback chain
// UTF-8 -> Latin-1 -> Windows-1252. Binary content (NUL bytes) is rejected
// before legacy decoding, since every byte sequence is valid Latin-1.
func DecodeContent(raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("empty content: %w", apperrors.ErrEncoding)
	}
	if bytes.IndexByte(raw, 0x00) >= 0 {
		return "", fmt.Errorf("binary content: %w", apperrors.ErrEncoding)
	}

	// Strip a UTF-8 BOM if present; PostFinance exports carry one.
	raw = bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})

	if utf8.Valid(raw) {
		return string(raw), nil
	}

	for _, cm := range []*charmap.Charmap{charmap.ISO8859_1, charmap.Windows1252} {
		decoded, err := cm.NewDecoder().Bytes(raw)
		if err == nil && utf8.Valid(decoded) {
			return string(decoded), nil
		}
	}

	return "", fmt.Errorf("no fallback encoding decoded the content: %w", apperrors.ErrEncoding)
}

package textsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		min  float64
		max  float64
	}{
		{"identical", "Migros", "Migros", 1.0, 1.0},
		{"case insensitive", "MIGROS", "migros", 1.0, 1.0},
		{"token reorder", "Migros ZH Oerlikon", "Oerlikon Migros ZH", 1.0, 1.0},
		{"shared token", "Migros", "MIGROS ZH", 0.45, 0.95},
		{"small typo", "Swisscom", "Swisscomm", 0.85, 0.99},
		{"unrelated", "Coop Pronto", "Galaxus", 0.0, 0.3},
		{"empty left", "", "Migros", 0.0, 0.0},
		{"empty right", "Migros", "", 0.0, 0.0},
		{"punctuation ignored", "H&M Hennes & Mauritz", "H & M HENNES MAURITZ", 0.9, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			assert.GreaterOrEqual(t, got, tt.min, "score below expected range")
			assert.LessOrEqual(t, got, tt.max, "score above expected range")
		})
	}
}

func TestSimilarityIsSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"Migros", "MIGROS ZH"},
		{"SBB CFF FFS", "SBB"},
		{"PostFinance AG", "postfinance"},
	}
	for _, p := range pairs {
		assert.InDelta(t, Similarity(p[0], p[1]), Similarity(p[1], p[0]), 1e-9)
	}
}

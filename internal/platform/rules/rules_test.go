package rules

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silvioiatech/umbra-accountant/internal/core/domain"
)

func TestCantonTableIsComplete(t *testing.T) {
	assert.Len(t, Cantons, 26)
	assert.True(t, ValidCanton("ZH"))
	assert.True(t, ValidCanton("GE"))
	assert.False(t, ValidCanton("XX"))
	assert.False(t, ValidCanton(""))
}

func TestDefaultLimits(t *testing.T) {
	rs := Default()

	limit, capped := rs.Limit(domain.CategoryHomeOffice, "GE", 2024)
	require.True(t, capped)
	assert.True(t, limit.Equal(decimal.NewFromInt(1500)), "federal 1000 + GE supplement 500")

	limit, capped = rs.Limit(domain.CategoryPillar3a, "ZH", 2024)
	require.True(t, capped)
	assert.True(t, limit.Equal(decimal.NewFromInt(7056)), "no canton supplement for pillar 3a")

	_, capped = rs.Limit(domain.CategoryMedicalExpenses, "ZH", 2024)
	assert.False(t, capped, "medical expenses carry no fixed CHF cap")

	_, capped = rs.Limit(domain.CategoryNonDeductible, "ZH", 2024)
	assert.False(t, capped, "unknown category has no rule")
}

func TestRuleYearFallsBackToNearestKnownYear(t *testing.T) {
	rs := Default()

	assert.Equal(t, 2024, rs.RuleYear(2024))
	assert.Equal(t, 2024, rs.RuleYear(2026), "later years reuse the newest table")
	assert.Equal(t, 2024, rs.RuleYear(2020), "earlier years reuse the oldest table")
}

func TestCantonSupplementsCoverAllCantons(t *testing.T) {
	rs := Default()
	for canton := range Cantons {
		_, ok := rs.CantonSupplement(domain.CategoryHomeOffice, canton, 2024)
		assert.True(t, ok, "home office supplement missing for %s", canton)
		_, ok = rs.CantonSupplement(domain.CategoryChildcare, canton, 2024)
		assert.True(t, ok, "childcare supplement missing for %s", canton)
	}
}

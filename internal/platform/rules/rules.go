// Package rules holds the static Swiss deduction rule table: federal limits
// per category and year, plus per-canton supplements. The table is loaded
// once at startup and never mutated at runtime.
package rules

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/silvioiatech/umbra-accountant/internal/core/domain"
)

// Cantons maps the 26 canton codes to their names.
var Cantons = map[string]string{
	"AG": "Aargau", "AI": "Appenzell Innerrhoden", "AR": "Appenzell Ausserrhoden",
	"BE": "Bern", "BL": "Basel-Landschaft", "BS": "Basel-Stadt",
	"FR": "Fribourg", "GE": "Geneva", "GL": "Glarus", "GR": "Graubünden",
	"JU": "Jura", "LU": "Luzern", "NE": "Neuchâtel", "NW": "Nidwalden",
	"OW": "Obwalden", "SG": "St. Gallen", "SH": "Schaffhausen", "SO": "Solothurn",
	"SZ": "Schwyz", "TG": "Thurgau", "TI": "Ticino", "UR": "Uri",
	"VD": "Vaud", "VS": "Valais", "ZG": "Zug", "ZH": "Zürich",
}

// ValidCanton reports whether code is one of the 26 canton codes.
func ValidCanton(code string) bool {
	_, ok := Cantons[code]
	return ok
}

// RuleSet provides limit lookups over the loaded rule table.
type RuleSet struct {
	rules map[ruleKey]domain.CategoryRule
	years []int // distinct rule years, ascending
}

type ruleKey struct {
	category     string
	jurisdiction string
	year         int
}

// NewRuleSet builds a RuleSet from explicit rules. Use Default for the
// built-in table.
func NewRuleSet(rules []domain.CategoryRule) *RuleSet {
	rs := &RuleSet{rules: make(map[ruleKey]domain.CategoryRule, len(rules))}
	seen := map[int]bool{}
	for _, r := range rules {
		rs.rules[ruleKey{r.CategoryCode, r.Jurisdiction, r.Year}] = r
		if !seen[r.Year] {
			seen[r.Year] = true
			rs.years = append(rs.years, r.Year)
		}
	}
	sort.Ints(rs.years)
	return rs
}

// RuleYear maps a tax year onto the rule table: the most recent rule year at
// or before it, or the earliest known year for years predating the table.
func (rs *RuleSet) RuleYear(year int) int {
	if len(rs.years) == 0 {
		return year
	}
	applicable := rs.years[0]
	for _, y := range rs.years {
		if y > year {
			break
		}
		applicable = y
	}
	return applicable
}

// Federal returns the federal rule for a category and year, if any.
func (rs *RuleSet) Federal(category string, year int) (domain.CategoryRule, bool) {
	r, ok := rs.rules[ruleKey{category, domain.JurisdictionFederal, year}]
	return r, ok
}

// BusinessOnly reports whether the federal rule restricts the category to
// business use, meaning purely private expenses claim nothing from it.
func (rs *RuleSet) BusinessOnly(category string, year int) bool {
	r, ok := rs.Federal(category, year)
	return ok && r.BusinessOnly
}

// CantonSupplement returns the canton-specific rule for a category and year,
// if any. Its LimitAmount is a supplement added on top of the federal limit.
func (rs *RuleSet) CantonSupplement(category, canton string, year int) (domain.CategoryRule, bool) {
	r, ok := rs.rules[ruleKey{category, canton, year}]
	return r, ok
}

// Limit returns the applicable deduction limit for (category, canton, year):
// federal limit plus any canton supplement. The second return is false when
// the category is unlimited (no federal rule, or a rule with nil limit).
func (rs *RuleSet) Limit(category, canton string, year int) (decimal.Decimal, bool) {
	fed, ok := rs.Federal(category, year)
	if !ok || fed.LimitAmount == nil {
		return decimal.Zero, false
	}
	limit := *fed.LimitAmount
	if sup, ok := rs.CantonSupplement(category, canton, year); ok && sup.LimitAmount != nil {
		limit = limit.Add(*sup.LimitAmount)
	}
	return limit, true
}

func chf(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// Default returns the built-in rule table. Figures follow the 2024 federal
// deduction caps; canton supplements cover all 26 cantons (zero where the
// canton grants nothing beyond the federal limit).
func Default() *RuleSet {
	rules := []domain.CategoryRule{
		// Federal limits, tax year 2024.
		{CategoryCode: domain.CategoryProfessionalExpenses, Jurisdiction: domain.JurisdictionFederal, Year: 2024, LimitAmount: chf(4000)},
		{CategoryCode: domain.CategoryCommutePublic, Jurisdiction: domain.JurisdictionFederal, Year: 2024, LimitAmount: chf(3000)},
		{CategoryCode: domain.CategoryCommuteCar, Jurisdiction: domain.JurisdictionFederal, Year: 2024, LimitAmount: chf(3000)},
		{CategoryCode: domain.CategoryMealsWork, Jurisdiction: domain.JurisdictionFederal, Year: 2024, LimitAmount: chf(3200)},
		{CategoryCode: domain.CategoryEducation, Jurisdiction: domain.JurisdictionFederal, Year: 2024, LimitAmount: chf(12000)},
		{CategoryCode: domain.CategoryPillar3a, Jurisdiction: domain.JurisdictionFederal, Year: 2024, LimitAmount: chf(7056)},
		{CategoryCode: domain.CategoryInsuranceHealth, Jurisdiction: domain.JurisdictionFederal, Year: 2024, LimitAmount: chf(1800)},
		{CategoryCode: domain.CategoryChildcare, Jurisdiction: domain.JurisdictionFederal, Year: 2024, LimitAmount: chf(25000)},
		{CategoryCode: domain.CategoryDonations, Jurisdiction: domain.JurisdictionFederal, Year: 2024, LimitAmount: nil}, // capped by income share, not CHF
		{CategoryCode: domain.CategoryHomeOffice, Jurisdiction: domain.JurisdictionFederal, Year: 2024, LimitAmount: chf(1000), BusinessOnly: true},
		{CategoryCode: domain.CategoryMedicalExpenses, Jurisdiction: domain.JurisdictionFederal, Year: 2024, LimitAmount: nil},
		{CategoryCode: domain.CategoryOtherDeductions, Jurisdiction: domain.JurisdictionFederal, Year: 2024, LimitAmount: chf(2000)},
	}

	// Canton supplements on top of the federal limit.
	homeOffice := map[string]int64{
		"ZH": 500, "GE": 500, "BS": 800, "VD": 200, "BE": 0, "AG": 0, "AI": 0,
		"AR": 0, "BL": 300, "FR": 0, "GL": 0, "GR": 0, "JU": 0, "LU": 0,
		"NE": 0, "NW": 0, "OW": 0, "SG": 0, "SH": 0, "SO": 0, "SZ": 0,
		"TG": 0, "TI": 0, "UR": 0, "VS": 0, "ZG": 400,
	}
	commutePublic := map[string]int64{
		"ZH": 500, "GE": 1000, "BS": 800, "VD": 600, "BE": 400, "AG": 0, "AI": 0,
		"AR": 0, "BL": 0, "FR": 0, "GL": 0, "GR": 200, "JU": 0, "LU": 0,
		"NE": 0, "NW": 0, "OW": 0, "SG": 0, "SH": 0, "SO": 0, "SZ": 0,
		"TG": 0, "TI": 300, "UR": 0, "VS": 0, "ZG": 0,
	}
	childcare := map[string]int64{
		"ZH": 2000, "GE": 3000, "BS": 2500, "VD": 1800, "BE": 1500, "AG": 0, "AI": 0,
		"AR": 0, "BL": 1000, "FR": 1200, "GL": 0, "GR": 0, "JU": 0, "LU": 800,
		"NE": 1500, "NW": 0, "OW": 0, "SG": 0, "SH": 0, "SO": 0, "SZ": 0,
		"TG": 0, "TI": 1000, "UR": 0, "VS": 600, "ZG": 1600,
	}
	for canton, v := range homeOffice {
		rules = append(rules, domain.CategoryRule{
			CategoryCode: domain.CategoryHomeOffice, Jurisdiction: canton, Year: 2024, LimitAmount: chf(v), BusinessOnly: true,
		})
	}
	for canton, v := range commutePublic {
		rules = append(rules, domain.CategoryRule{
			CategoryCode: domain.CategoryCommutePublic, Jurisdiction: canton, Year: 2024, LimitAmount: chf(v),
		})
	}
	for canton, v := range childcare {
		rules = append(rules, domain.CategoryRule{
			CategoryCode: domain.CategoryChildcare, Jurisdiction: canton, Year: 2024, LimitAmount: chf(v),
		})
	}

	return NewRuleSet(rules)
}

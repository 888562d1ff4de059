package domain

import "github.com/shopspring/decimal"

// DeductionCategory codes follow the Swiss federal deduction buckets.
const (
	CategoryProfessionalExpenses = "professional_expenses"
	CategoryCommutePublic        = "commute_public_transport"
	CategoryCommuteCar           = "commute_car"
	CategoryMealsWork            = "meals_work"
	CategoryEducation            = "education_professional"
	CategoryPillar3a             = "insurance_pillar3a"
	CategoryInsuranceHealth      = "insurance_health"
	CategoryChildcare            = "childcare"
	CategoryDonations            = "donations_charitable"
	CategoryHomeOffice           = "home_office"
	CategoryMedicalExpenses      = "medical_expenses"
	CategoryOtherDeductions      = "other_deductions"
	CategoryNonDeductible        = "non_deductible"
)

// JurisdictionFederal is the jurisdiction code for Switzerland-wide rules;
// canton rules use the two-letter canton code (ZH, GE, ...).
const JurisdictionFederal = "CH"

// CategoryRule is one deduction rule for a (category, jurisdiction, year)
// triple. Rules are static configuration and never mutated at runtime.
type CategoryRule struct {
	CategoryCode string `json:"categoryCode"`
	Jurisdiction string `json:"jurisdiction"` // "CH" or canton code
	Year         int    `json:"year"`
	// LimitAmount is the maximum deductible CHF amount; nil means unlimited.
	// Canton rules express a supplement on top of the federal limit.
	LimitAmount  *decimal.Decimal `json:"limitAmount,omitempty"`
	BusinessOnly bool             `json:"businessOnly"`
}

// CategoryMapping links a merchant category (or merchant identity) to a
// deduction category. User-supplied overrides take precedence over learned
// mappings, which take precedence over keyword heuristics.
type CategoryMapping struct {
	MappingID         string  `json:"mappingID"`
	UserID            string  `json:"userID"`
	MerchantCategory  string  `json:"merchantCategory"`
	DeductionCategory string  `json:"deductionCategory"`
	Confidence        float64 `json:"confidence"`
	UserOverride      bool    `json:"userOverride"`
	AuditFields
}

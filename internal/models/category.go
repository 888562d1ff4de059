package models

// CategoryMapping links a merchant category to a deduction category for one
// user. (user_id, merchant_category) is unique; user overrides replace
// learned rows on conflict.
type CategoryMapping struct {
	MappingID         string  `db:"mapping_id"`
	UserID            string  `db:"user_id"`
	MerchantCategory  string  `db:"merchant_category"`
	DeductionCategory string  `db:"deduction_category"`
	Confidence        float64 `db:"confidence"`
	UserOverride      bool    `db:"user_override"`
	AuditFields
}

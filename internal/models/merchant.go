package models

// Merchant represents one canonical merchant identity.
// Aliases live in the merchant_aliases table keyed by normalized form.
type Merchant struct {
	MerchantID  string `db:"merchant_id"`
	DisplayName string `db:"display_name"`
	VATNumber   string `db:"vat_number"` // Nullable
	AuditFields
}

// MerchantAlias links one raw alias spelling to a merchant. The normalized
// form is unique across all merchants.
type MerchantAlias struct {
	MerchantID string `db:"merchant_id"`
	Alias      string `db:"alias"`
	Normalized string `db:"normalized"`
	AuditFields
}

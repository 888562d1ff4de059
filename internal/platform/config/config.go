package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration. Matching thresholds and weights are
// policy parameters, not correctness constants; they are tunable per
// deployment through the environment.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	// Statement ingestion.
	MinDetectionConfidence float64

	// Merchant resolution.
	SimilarityThreshold float64 // minimum fuzzy score to resolve to an existing merchant
	AliasLearnThreshold float64 // minimum fuzzy score to learn the raw text as a new alias

	// Reconciliation.
	DateWindowDays     int
	AmountTolerancePct float64 // relative amount tolerance for candidate generation
	AutoAcceptScore    float64 // high band: auto-accept (or pending when autoAccept off)
	ReviewScore        float64 // low band: below this, candidates are discarded

	// Tax estimation.
	AssumedMarginalRate float64 // estimate only, not derived from tax brackets

	RateLimit string // ulule/limiter format, e.g. "100-M"
}

// LoadConfig loads configuration from environment variables and a .env file
// if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("MIN_DETECTION_CONFIDENCE", 0.5)
	viper.SetDefault("MERCHANT_SIMILARITY_THRESHOLD", 0.80)
	viper.SetDefault("MERCHANT_ALIAS_LEARN_THRESHOLD", 0.90)
	viper.SetDefault("RECON_DATE_WINDOW_DAYS", 3)
	viper.SetDefault("RECON_AMOUNT_TOLERANCE_PCT", 0.01)
	viper.SetDefault("RECON_AUTO_ACCEPT_SCORE", 0.85)
	viper.SetDefault("RECON_REVIEW_SCORE", 0.5)
	viper.SetDefault("TAX_ASSUMED_MARGINAL_RATE", 0.25)
	viper.SetDefault("RATE_LIMIT", "100-M")

	viper.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:            viper.GetString("PGSQL_URL"),
		Port:                   viper.GetString("PORT"),
		IsProduction:           viper.GetBool("IS_PRODUCTION"),
		MinDetectionConfidence: viper.GetFloat64("MIN_DETECTION_CONFIDENCE"),
		SimilarityThreshold:    viper.GetFloat64("MERCHANT_SIMILARITY_THRESHOLD"),
		AliasLearnThreshold:    viper.GetFloat64("MERCHANT_ALIAS_LEARN_THRESHOLD"),
		DateWindowDays:         viper.GetInt("RECON_DATE_WINDOW_DAYS"),
		AmountTolerancePct:     viper.GetFloat64("RECON_AMOUNT_TOLERANCE_PCT"),
		AutoAcceptScore:        viper.GetFloat64("RECON_AUTO_ACCEPT_SCORE"),
		ReviewScore:            viper.GetFloat64("RECON_REVIEW_SCORE"),
		AssumedMarginalRate:    viper.GetFloat64("TAX_ASSUMED_MARGINAL_RATE"),
		RateLimit:              viper.GetString("RATE_LIMIT"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	if cfg.ReviewScore > cfg.AutoAcceptScore {
		log.Printf("Warning: RECON_REVIEW_SCORE (%.2f) above RECON_AUTO_ACCEPT_SCORE (%.2f); no pending band will exist.\n",
			cfg.ReviewScore, cfg.AutoAcceptScore)
	}

	return cfg, nil
}

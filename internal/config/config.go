package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"billextract/internal/domain"
	"billextract/internal/extraction"
	"billextract/internal/reconcile"
)

const envPrefix = "BILLEXTRACT"

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Log        LogConfig
	CORS       CORSConfig
	RateLimit  RateLimitConfig
	OCR        OCRConfig
	S3         S3Config
	Fetch      FetchConfig
	Extraction ExtractionConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Environment     string        `mapstructure:"environment"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RateLimitConfig holds the per-client request limiter settings.
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// OCRProviderConfig holds settings for a single OCR provider.
type OCRProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// OCRConfig holds OCR provider settings with primary/secondary fallback.
type OCRConfig struct {
	// Legacy flat fields
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`

	Primary   OCRProviderConfig `mapstructure:"primary"`
	Secondary OCRProviderConfig `mapstructure:"secondary"`
}

// PrimaryConfig returns the primary provider config, falling back to legacy flat fields.
func (o *OCRConfig) PrimaryConfig() *OCRProviderConfig {
	if o.Primary.Provider != "" {
		return &o.Primary
	}
	return &OCRProviderConfig{
		Provider:     o.Provider,
		APIKey:       o.APIKey,
		DefaultModel: o.DefaultModel,
		MaxRetries:   o.MaxRetries,
		TimeoutSecs:  o.TimeoutSecs,
	}
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (o *OCRConfig) SecondaryConfig() *OCRProviderConfig {
	if o.Secondary.Provider != "" {
		return &o.Secondary
	}
	return nil
}

// S3Config holds AWS S3 settings for s3:// document URLs.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// FetchConfig bounds document downloads.
type FetchConfig struct {
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxFileSizeMB int64         `mapstructure:"max_file_size_mb"`
	UserAgent     string        `mapstructure:"user_agent"`
}

// MaxBytes returns the download cap in bytes.
func (f *FetchConfig) MaxBytes() int64 {
	return f.MaxFileSizeMB * 1024 * 1024
}

// LimitsConfig holds the accepted ranges for a line item.
type LimitsConfig struct {
	QuantityMin   float64 `mapstructure:"quantity_min"`
	QuantityMax   float64 `mapstructure:"quantity_max"`
	RateMin       float64 `mapstructure:"rate_min"`
	RateMax       float64 `mapstructure:"rate_max"`
	AmountMin     float64 `mapstructure:"amount_min"`
	AmountMax     float64 `mapstructure:"amount_max"`
	MinNameLength int     `mapstructure:"min_name_length"`
	ToleranceAbs  float64 `mapstructure:"tolerance_abs"`
	ToleranceRel  float64 `mapstructure:"tolerance_rel"`
}

// ExtractionConfig holds the tunable pipeline heuristics.
type ExtractionConfig struct {
	DedupMode       string                    `mapstructure:"dedup_mode"`
	DedupThreshold  float64                   `mapstructure:"dedup_threshold"`
	ReconcilePolicy string                    `mapstructure:"reconcile_policy"`
	AbsTolerance    float64                   `mapstructure:"abs_tolerance"`
	RelTolerance    float64                   `mapstructure:"rel_tolerance"`
	MinLineLength   int                       `mapstructure:"min_line_length"`
	UnicodeFold     bool                      `mapstructure:"unicode_fold"`
	RepairDigits    bool                      `mapstructure:"repair_digits"`
	ExtraExclusions []string                  `mapstructure:"extra_exclusions"`
	Abbreviations   []string                  `mapstructure:"abbreviations"`
	Substitutions   []extraction.Substitution `mapstructure:"substitutions"`
	Limits          LimitsConfig              `mapstructure:"limits"`
	Confidence      ConfidenceConfig          `mapstructure:"confidence"`
	StrictSchema    bool                      `mapstructure:"strict_schema"`
}

// ConfidenceConfig holds the confidence score weights. Zero keeps the default.
type ConfidenceConfig struct {
	CompletenessWeight  float64 `mapstructure:"completeness_weight"`
	ConsistencyWeight   float64 `mapstructure:"consistency_weight"`
	StructuralBonus     float64 `mapstructure:"structural_bonus"`
	TotalAgreementBonus float64 `mapstructure:"total_agreement_bonus"`
	Cap                 float64 `mapstructure:"cap"`
}

// Heuristics converts the configuration into pipeline heuristics. Values that
// were not set keep the built-in defaults.
func (e *ExtractionConfig) Heuristics() extraction.Heuristics {
	h := extraction.DefaultHeuristics()

	h.UnicodeFold = e.UnicodeFold
	h.RepairDigitConfusions = e.RepairDigits
	if e.MinLineLength > 0 {
		h.MinLineLength = e.MinLineLength
	}
	h.ExtraExclusions = e.ExtraExclusions
	if len(e.Abbreviations) > 0 {
		h.Abbreviations = e.Abbreviations
	}
	if len(e.Substitutions) > 0 {
		h.Substitutions = e.Substitutions
	}

	l := e.Limits
	setPositive(&h.Limits.QuantityMin, l.QuantityMin)
	setPositive(&h.Limits.QuantityMax, l.QuantityMax)
	setPositive(&h.Limits.RateMin, l.RateMin)
	setPositive(&h.Limits.RateMax, l.RateMax)
	setPositive(&h.Limits.AmountMin, l.AmountMin)
	setPositive(&h.Limits.AmountMax, l.AmountMax)
	setPositive(&h.Limits.Tolerance.Abs, l.ToleranceAbs)
	setPositive(&h.Limits.Tolerance.Rel, l.ToleranceRel)
	if l.MinNameLength > 0 {
		h.Limits.MinNameLength = l.MinNameLength
	}

	h.Dedup.Mode = domain.DedupMode(e.DedupMode)
	setPositive(&h.Dedup.Threshold, e.DedupThreshold)

	h.Reconcile.Policy = domain.ReconcilePolicy(e.ReconcilePolicy)
	setPositive(&h.Reconcile.AbsTolerance, e.AbsTolerance)
	setPositive(&h.Reconcile.RelTolerance, e.RelTolerance)
	h.Reconcile.ConsistencyTolerance = h.Limits.Tolerance

	c := e.Confidence
	setPositive(&h.Reconcile.Weights.Completeness, c.CompletenessWeight)
	setPositive(&h.Reconcile.Weights.Consistency, c.ConsistencyWeight)
	setPositive(&h.Reconcile.Weights.StructuralBonus, c.StructuralBonus)
	setPositive(&h.Reconcile.Weights.TotalAgreementBonus, c.TotalAgreementBonus)
	setPositive(&h.Reconcile.Weights.Cap, c.Cap)

	return h
}

func setPositive(dst *float64, v float64) {
	if v > 0 {
		*dst = v
	}
}

// Load reads configuration from environment variables with the BILLEXTRACT_ prefix.
// A .env file in the working directory is loaded first when present, and
// BILLEXTRACT_CONFIG_FILE may point at a YAML file for the heuristics tables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.environment", "development")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("cors.allowed_origins", "*")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 5)
	v.SetDefault("rate_limit.burst", 10)

	// OCR defaults (legacy flat)
	v.SetDefault("ocr.provider", "gemini")
	v.SetDefault("ocr.api_key", "")
	v.SetDefault("ocr.default_model", "gemini-2.0-flash")
	v.SetDefault("ocr.max_retries", 2)
	v.SetDefault("ocr.timeout_secs", 120)

	// OCR primary/secondary defaults
	v.SetDefault("ocr.primary.provider", "")
	v.SetDefault("ocr.primary.api_key", "")
	v.SetDefault("ocr.primary.default_model", "")
	v.SetDefault("ocr.primary.max_retries", 2)
	v.SetDefault("ocr.primary.timeout_secs", 120)
	v.SetDefault("ocr.secondary.provider", "")
	v.SetDefault("ocr.secondary.api_key", "")
	v.SetDefault("ocr.secondary.default_model", "")
	v.SetDefault("ocr.secondary.max_retries", 2)
	v.SetDefault("ocr.secondary.timeout_secs", 120)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")

	// Fetch defaults
	v.SetDefault("fetch.timeout", "30s")
	v.SetDefault("fetch.max_file_size_mb", 20)
	v.SetDefault("fetch.user_agent", "billextract/1.0")

	// Extraction defaults
	v.SetDefault("extraction.dedup_mode", string(domain.DedupFuzzy))
	v.SetDefault("extraction.dedup_threshold", 0.85)
	v.SetDefault("extraction.reconcile_policy", string(domain.PolicyPreferDetected))
	v.SetDefault("extraction.abs_tolerance", 1.0)
	v.SetDefault("extraction.rel_tolerance", 0.01)
	v.SetDefault("extraction.min_line_length", 3)
	v.SetDefault("extraction.unicode_fold", true)
	v.SetDefault("extraction.repair_digits", true)
	v.SetDefault("extraction.extra_exclusions", "")
	v.SetDefault("extraction.abbreviations", strings.Join(extraction.DefaultAbbreviations, ","))
	v.SetDefault("extraction.strict_schema", false)
	v.SetDefault("extraction.confidence.completeness_weight", reconcile.DefaultWeights.Completeness)
	v.SetDefault("extraction.confidence.consistency_weight", reconcile.DefaultWeights.Consistency)
	v.SetDefault("extraction.confidence.structural_bonus", reconcile.DefaultWeights.StructuralBonus)
	v.SetDefault("extraction.confidence.total_agreement_bonus", reconcile.DefaultWeights.TotalAgreementBonus)
	v.SetDefault("extraction.confidence.cap", reconcile.DefaultWeights.Cap)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                                 "BILLEXTRACT_SERVER_PORT",
		"server.read_timeout":                         "BILLEXTRACT_SERVER_READ_TIMEOUT",
		"server.write_timeout":                        "BILLEXTRACT_SERVER_WRITE_TIMEOUT",
		"server.shutdown_timeout":                     "BILLEXTRACT_SERVER_SHUTDOWN_TIMEOUT",
		"server.environment":                          "BILLEXTRACT_SERVER_ENVIRONMENT",
		"log.level":                                   "BILLEXTRACT_LOG_LEVEL",
		"log.format":                                  "BILLEXTRACT_LOG_FORMAT",
		"cors.allowed_origins":                        "BILLEXTRACT_CORS_ALLOWED_ORIGINS",
		"rate_limit.enabled":                          "BILLEXTRACT_RATE_LIMIT_ENABLED",
		"rate_limit.requests_per_second":              "BILLEXTRACT_RATE_LIMIT_REQUESTS_PER_SECOND",
		"rate_limit.burst":                            "BILLEXTRACT_RATE_LIMIT_BURST",
		"ocr.provider":                                "BILLEXTRACT_OCR_PROVIDER",
		"ocr.api_key":                                 "BILLEXTRACT_OCR_API_KEY",
		"ocr.default_model":                           "BILLEXTRACT_OCR_DEFAULT_MODEL",
		"ocr.max_retries":                             "BILLEXTRACT_OCR_MAX_RETRIES",
		"ocr.timeout_secs":                            "BILLEXTRACT_OCR_TIMEOUT_SECS",
		"ocr.primary.provider":                        "BILLEXTRACT_OCR_PRIMARY_PROVIDER",
		"ocr.primary.api_key":                         "BILLEXTRACT_OCR_PRIMARY_API_KEY",
		"ocr.primary.default_model":                   "BILLEXTRACT_OCR_PRIMARY_DEFAULT_MODEL",
		"ocr.primary.max_retries":                     "BILLEXTRACT_OCR_PRIMARY_MAX_RETRIES",
		"ocr.primary.timeout_secs":                    "BILLEXTRACT_OCR_PRIMARY_TIMEOUT_SECS",
		"ocr.secondary.provider":                      "BILLEXTRACT_OCR_SECONDARY_PROVIDER",
		"ocr.secondary.api_key":                       "BILLEXTRACT_OCR_SECONDARY_API_KEY",
		"ocr.secondary.default_model":                 "BILLEXTRACT_OCR_SECONDARY_DEFAULT_MODEL",
		"ocr.secondary.max_retries":                   "BILLEXTRACT_OCR_SECONDARY_MAX_RETRIES",
		"ocr.secondary.timeout_secs":                  "BILLEXTRACT_OCR_SECONDARY_TIMEOUT_SECS",
		"s3.region":                                   "BILLEXTRACT_S3_REGION",
		"s3.bucket":                                   "BILLEXTRACT_S3_BUCKET",
		"s3.endpoint":                                 "BILLEXTRACT_S3_ENDPOINT",
		"s3.access_key":                               "BILLEXTRACT_S3_ACCESS_KEY",
		"s3.secret_key":                               "BILLEXTRACT_S3_SECRET_KEY",
		"fetch.timeout":                               "BILLEXTRACT_FETCH_TIMEOUT",
		"fetch.max_file_size_mb":                      "BILLEXTRACT_FETCH_MAX_FILE_SIZE_MB",
		"fetch.user_agent":                            "BILLEXTRACT_FETCH_USER_AGENT",
		"extraction.dedup_mode":                       "BILLEXTRACT_EXTRACTION_DEDUP_MODE",
		"extraction.dedup_threshold":                  "BILLEXTRACT_EXTRACTION_DEDUP_THRESHOLD",
		"extraction.reconcile_policy":                 "BILLEXTRACT_EXTRACTION_RECONCILE_POLICY",
		"extraction.abs_tolerance":                    "BILLEXTRACT_EXTRACTION_ABS_TOLERANCE",
		"extraction.rel_tolerance":                    "BILLEXTRACT_EXTRACTION_REL_TOLERANCE",
		"extraction.min_line_length":                  "BILLEXTRACT_EXTRACTION_MIN_LINE_LENGTH",
		"extraction.unicode_fold":                     "BILLEXTRACT_EXTRACTION_UNICODE_FOLD",
		"extraction.repair_digits":                    "BILLEXTRACT_EXTRACTION_REPAIR_DIGITS",
		"extraction.extra_exclusions":                 "BILLEXTRACT_EXTRACTION_EXTRA_EXCLUSIONS",
		"extraction.abbreviations":                    "BILLEXTRACT_EXTRACTION_ABBREVIATIONS",
		"extraction.strict_schema":                    "BILLEXTRACT_EXTRACTION_STRICT_SCHEMA",
		"extraction.confidence.completeness_weight":   "BILLEXTRACT_EXTRACTION_CONFIDENCE_COMPLETENESS_WEIGHT",
		"extraction.confidence.consistency_weight":    "BILLEXTRACT_EXTRACTION_CONFIDENCE_CONSISTENCY_WEIGHT",
		"extraction.confidence.structural_bonus":      "BILLEXTRACT_EXTRACTION_CONFIDENCE_STRUCTURAL_BONUS",
		"extraction.confidence.total_agreement_bonus": "BILLEXTRACT_EXTRACTION_CONFIDENCE_TOTAL_AGREEMENT_BONUS",
		"extraction.confidence.cap":                   "BILLEXTRACT_EXTRACTION_CONFIDENCE_CAP",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	if path := os.Getenv(envPrefix + "_CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if BILLEXTRACT_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("BILLEXTRACT_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:            serverPort,
		ReadTimeout:     v.GetDuration("server.read_timeout"),
		WriteTimeout:    v.GetDuration("server.write_timeout"),
		ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		Environment:     v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}
	cfg.RateLimit = RateLimitConfig{
		Enabled:           v.GetBool("rate_limit.enabled"),
		RequestsPerSecond: v.GetFloat64("rate_limit.requests_per_second"),
		Burst:             v.GetInt("rate_limit.burst"),
	}

	cfg.OCR = OCRConfig{
		Provider:     v.GetString("ocr.provider"),
		APIKey:       v.GetString("ocr.api_key"),
		DefaultModel: v.GetString("ocr.default_model"),
		MaxRetries:   v.GetInt("ocr.max_retries"),
		TimeoutSecs:  v.GetInt("ocr.timeout_secs"),
		Primary: OCRProviderConfig{
			Provider:     v.GetString("ocr.primary.provider"),
			APIKey:       v.GetString("ocr.primary.api_key"),
			DefaultModel: v.GetString("ocr.primary.default_model"),
			MaxRetries:   v.GetInt("ocr.primary.max_retries"),
			TimeoutSecs:  v.GetInt("ocr.primary.timeout_secs"),
		},
		Secondary: OCRProviderConfig{
			Provider:     v.GetString("ocr.secondary.provider"),
			APIKey:       v.GetString("ocr.secondary.api_key"),
			DefaultModel: v.GetString("ocr.secondary.default_model"),
			MaxRetries:   v.GetInt("ocr.secondary.max_retries"),
			TimeoutSecs:  v.GetInt("ocr.secondary.timeout_secs"),
		},
	}

	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.Fetch = FetchConfig{
		Timeout:       v.GetDuration("fetch.timeout"),
		MaxFileSizeMB: v.GetInt64("fetch.max_file_size_mb"),
		UserAgent:     v.GetString("fetch.user_agent"),
	}

	cfg.Extraction = ExtractionConfig{
		DedupMode:       v.GetString("extraction.dedup_mode"),
		DedupThreshold:  v.GetFloat64("extraction.dedup_threshold"),
		ReconcilePolicy: v.GetString("extraction.reconcile_policy"),
		AbsTolerance:    v.GetFloat64("extraction.abs_tolerance"),
		RelTolerance:    v.GetFloat64("extraction.rel_tolerance"),
		MinLineLength:   v.GetInt("extraction.min_line_length"),
		UnicodeFold:     v.GetBool("extraction.unicode_fold"),
		RepairDigits:    v.GetBool("extraction.repair_digits"),
		ExtraExclusions: stringList(v, "extraction.extra_exclusions"),
		Abbreviations:   stringList(v, "extraction.abbreviations"),
		Confidence: ConfidenceConfig{
			CompletenessWeight:  v.GetFloat64("extraction.confidence.completeness_weight"),
			ConsistencyWeight:   v.GetFloat64("extraction.confidence.consistency_weight"),
			StructuralBonus:     v.GetFloat64("extraction.confidence.structural_bonus"),
			TotalAgreementBonus: v.GetFloat64("extraction.confidence.total_agreement_bonus"),
			Cap:                 v.GetFloat64("extraction.confidence.cap"),
		},
		StrictSchema: v.GetBool("extraction.strict_schema"),
	}
	// Tables and limits only come from the config file.
	if err := v.UnmarshalKey("extraction.substitutions", &cfg.Extraction.Substitutions); err != nil {
		return nil, fmt.Errorf("parsing extraction.substitutions: %w", err)
	}
	if err := v.UnmarshalKey("extraction.limits", &cfg.Extraction.Limits); err != nil {
		return nil, fmt.Errorf("parsing extraction.limits: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if m := c.Extraction.DedupMode; m != "" && !domain.ValidDedupModes[domain.DedupMode(m)] {
		return fmt.Errorf("invalid extraction.dedup_mode %q", m)
	}
	if p := c.Extraction.ReconcilePolicy; p != "" && !domain.ValidReconcilePolicies[domain.ReconcilePolicy(p)] {
		return fmt.Errorf("invalid extraction.reconcile_policy %q", p)
	}
	if c.Fetch.MaxFileSizeMB <= 0 {
		return fmt.Errorf("fetch.max_file_size_mb must be positive, got %d", c.Fetch.MaxFileSizeMB)
	}
	return nil
}

// stringList reads a list that may be given as a YAML sequence or a comma-separated string.
func stringList(v *viper.Viper, key string) []string {
	if raw, ok := v.Get(key).([]any); ok {
		out := make([]string, 0, len(raw))
		for _, r := range raw {
			if s := strings.TrimSpace(fmt.Sprint(r)); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return splitList(v.GetString(key))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Package core provides shared configuration, error types, and HTTP client
// construction for the garden visualization pipeline.
package core

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the visualization pipeline.
type Config struct {
	// Provider credentials (each optional; a provider without a key is
	// rejected at construction time, not at call time)
	OpenAIAPIKey    string
	StabilityAPIKey string
	LeonardoAPIKey  string

	// Provider endpoints and models
	OpenAIBaseURL     string // Default: https://api.openai.com/v1
	OpenAIImageModel  string // Default: dall-e-3
	StabilityEndpoint string // Default: https://api.stability.ai
	LeonardoEndpoint  string // Default: https://cloud.leonardo.ai/api/rest/v1

	// ProviderChain is the ordered list of providers tried in sequence.
	ProviderChain []string

	// Retry and timeout behavior
	MaxAttemptsPerProvider int           // Attempts per provider before falling to the next
	ProviderTimeout        time.Duration // Per-call HTTP timeout for provider requests
	GenerationTimeout      time.Duration // Upper bound on one async generation attempt (create+poll+download)
	AllowSelfSignedCerts   bool

	// Pipeline behavior
	MaxConcurrent     int           // Bounded worker pool size for per-day chains
	CacheTTL          time.Duration // TTL for the composite cache
	ReferenceStrength float64       // How strongly enhanced output follows the composite, 0..1

	// Paths
	CatalogPath    string // YAML plant catalog + sprite manifest
	SpritesDir     string // Root directory for sprite assets
	OutputDir      string // Flat asset directory for generated images
	DatabasePath   string // SQLite job store (empty disables persistence)
	MigrationsPath string // golang-migrate source URL (e.g., file://jobstore/migrations)
	LogFile        string

	// Development enables debug-level, human-readable console logging.
	Development bool
}

// LoadConfig loads configuration from a .env file (when present) and the
// process environment, applying sensible defaults.
//
// A missing .env file is not an error: deployment environments commonly
// inject variables directly. Validation of provider credentials happens
// when providers are constructed, so a composite-only run needs no keys.
func LoadConfig(envPath string) (*Config, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
	}

	cfg := &Config{
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		StabilityAPIKey: os.Getenv("STABILITY_API_KEY"),
		LeonardoAPIKey:  os.Getenv("LEONARDO_API_KEY"),

		OpenAIBaseURL:     GetEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIImageModel:  GetEnvOrDefault("OPENAI_IMAGE_MODEL", "dall-e-3"),
		StabilityEndpoint: GetEnvOrDefault("STABILITY_ENDPOINT", "https://api.stability.ai"),
		LeonardoEndpoint:  GetEnvOrDefault("LEONARDO_ENDPOINT", "https://cloud.leonardo.ai/api/rest/v1"),

		ProviderChain: ParseListEnv("PROVIDER_CHAIN", []string{"openai", "stability"}),

		MaxAttemptsPerProvider: ParseIntEnv("MAX_ATTEMPTS_PER_PROVIDER", 3),
		ProviderTimeout:        ParseDurationEnv("PROVIDER_TIMEOUT_SECONDS", 45),
		GenerationTimeout:      ParseDurationEnv("GENERATION_TIMEOUT_SECONDS", 180),
		AllowSelfSignedCerts:   ParseBoolEnv("ALLOW_SELF_SIGNED_CERTS", false),

		MaxConcurrent:     ParseIntEnv("MAX_CONCURRENT", 3),
		CacheTTL:          ParseDurationEnv("CACHE_TTL_SECONDS", 300),
		ReferenceStrength: ParseFloat64Env("REFERENCE_STRENGTH", 0.65),

		CatalogPath:    GetEnvOrDefault("CATALOG_PATH", "catalog.yaml"),
		SpritesDir:     GetEnvOrDefault("SPRITES_DIR", "sprites"),
		OutputDir:      GetEnvOrDefault("OUTPUT_DIR", "generated"),
		DatabasePath:   os.Getenv("DATABASE_PATH"),
		MigrationsPath: GetEnvOrDefault("MIGRATIONS_PATH", "file://jobstore/migrations"),
		LogFile:        GetEnvOrDefault("LOG_FILE", "garden.log"),

		Development: ParseBoolEnv("DEVELOPMENT", false),
	}

	if cfg.MaxAttemptsPerProvider < 1 {
		cfg.MaxAttemptsPerProvider = 1
	}
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	if cfg.GenerationTimeout <= 0 {
		cfg.GenerationTimeout = 180 * time.Second
	}
	if cfg.ReferenceStrength <= 0 || cfg.ReferenceStrength > 1 {
		cfg.ReferenceStrength = 0.65
	}

	return cfg, nil
}

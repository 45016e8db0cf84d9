package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Execution endpoint (Alpaca paper API)
	Alpaca AlpacaConfig

	// Strategy
	Strategy StrategyConfig

	// Risk guardrails
	Risk RiskConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// AlpacaConfig holds Alpaca trading API configuration
type AlpacaConfig struct {
	APIKey    string
	SecretKey string
	BaseURL   string
	Paper     bool // paper trading endpoint
}

// StrategyConfig holds ranking parameters
type StrategyConfig struct {
	PriceWeight         float64
	SentimentWeight     float64
	TopN                int
	MinHeadlines        int
	NormalizationMethod string // minmax or zscore
	Tickers             []string
}

// RiskConfig holds risk management parameters
type RiskConfig struct {
	MaxRiskPerPositionPct float64
	MaxAllocationPct      float64
	StopLossPct           float64
	TakeProfitPct         float64
	MaxTradesPerDay       int
	DryRun                bool
	PortfolioValue        float64 // fallback when the broker account is unavailable
}

// defaultTickers is the analysis universe used when TICKERS is not set.
var defaultTickers = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "META", "TSLA", "NVDA",
	"JPM", "BAC", "WFC", "GS",
	"SPY", "QQQ", "IWM", "VTI", "VOO",
	"KO", "PEP", "WMT", "HD",
	"JNJ", "PFE", "UNH",
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8090"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		// Execution endpoint
		Alpaca: AlpacaConfig{
			APIKey:    getEnv("ALPACA_API_KEY", ""),
			SecretKey: getEnv("ALPACA_SECRET_KEY", ""),
			BaseURL:   getEnv("ALPACA_BASE_URL", ""),
			Paper:     getEnvAsBool("ALPACA_PAPER", true),
		},

		// Strategy
		Strategy: StrategyConfig{
			PriceWeight:         getEnvAsFloat("PRICE_WEIGHT", 0.6),
			SentimentWeight:     getEnvAsFloat("SENTIMENT_WEIGHT", 0.4),
			TopN:                getEnvAsInt("TOP_N", 5),
			MinHeadlines:        getEnvAsInt("MIN_HEADLINES", 3),
			NormalizationMethod: getEnv("NORMALIZATION_METHOD", "minmax"),
			Tickers:             getEnvAsList("TICKERS", defaultTickers),
		},

		// Risk guardrails
		Risk: RiskConfig{
			MaxRiskPerPositionPct: getEnvAsFloat("MAX_RISK_PER_POSITION_PCT", 0.02),
			MaxAllocationPct:      getEnvAsFloat("MAX_ALLOCATION_PCT", 0.10),
			StopLossPct:           getEnvAsFloat("STOP_LOSS_PCT", 0.05),
			TakeProfitPct:         getEnvAsFloat("TAKE_PROFIT_PCT", 0.15),
			MaxTradesPerDay:       getEnvAsInt("MAX_TRADES_PER_DAY", 10),
			DryRun:                getEnvAsBool("DRY_RUN", true),
			PortfolioValue:        getEnvAsFloat("PORTFOLIO_VALUE", 100_000),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks configuration values that no component could repair.
// Weight-sum and risk-bound invariants are enforced by the typed
// constructors in internal/ranking and internal/risk at setup time.
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Strategy.TopN <= 0 {
		return fmt.Errorf("TOP_N must be positive")
	}

	if m := c.Strategy.NormalizationMethod; m != "minmax" && m != "zscore" {
		return fmt.Errorf("NORMALIZATION_METHOD must be one of: minmax, zscore")
	}

	if len(c.Strategy.Tickers) == 0 {
		return fmt.Errorf("TICKERS must not be empty")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, strings.ToUpper(trimmed))
		}
	}

	if len(values) == 0 {
		return defaultValue
	}

	return values
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Browser    BrowserConfig
	Pipeline   PipelineConfig
	Input      InputConfig
	Amazon     AmazonConfig
	Flipkart   FlipkartConfig
	Normalizer NormalizerConfig
}

type ServerConfig struct {
	Port int
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	MaxConns int32
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type BrowserConfig struct {
	Headless bool
	Timeout  time.Duration
}

type PipelineConfig struct {
	Workers        int
	AttemptTimeout time.Duration
	CacheSize      int
}

type InputConfig struct {
	CSVPath string
}

type AmazonConfig struct {
	BaseURL       string
	WaitTimeout   time.Duration
	AssumedRating float64
	AssumeRating  bool
}

type FlipkartConfig struct {
	BaseURL     string
	WaitTimeout time.Duration
	OverlayWait time.Duration
}

type NormalizerConfig struct {
	AmazonCurrency        string
	FlipkartCurrency      string
	TitleFallbackToTarget bool
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnvInt("PORT", 8085),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "price_radar"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 20)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Browser: BrowserConfig{
			Headless: getEnvBool("BROWSER_HEADLESS", true),
			Timeout:  getEnvDuration("BROWSER_TIMEOUT", 15*time.Second),
		},
		Pipeline: PipelineConfig{
			Workers:        getEnvInt("PIPELINE_WORKERS", 2),
			AttemptTimeout: getEnvDuration("PIPELINE_ATTEMPT_TIMEOUT", 45*time.Second),
			CacheSize:      getEnvInt("PIPELINE_CACHE_SIZE", 256),
		},
		Input: InputConfig{
			CSVPath: getEnv("INPUT_CSV", "products.csv"),
		},
		Amazon: AmazonConfig{
			BaseURL:       getEnv("AMAZON_BASE_URL", "https://www.amazon.in"),
			WaitTimeout:   getEnvDuration("AMAZON_WAIT_TIMEOUT", 15*time.Second),
			AssumedRating: getEnvFloat("AMAZON_ASSUMED_RATING", 4.5),
			AssumeRating:  getEnvBool("AMAZON_ASSUME_RATING", false),
		},
		Flipkart: FlipkartConfig{
			BaseURL:     getEnv("FLIPKART_BASE_URL", "https://www.flipkart.com"),
			WaitTimeout: getEnvDuration("FLIPKART_WAIT_TIMEOUT", 15*time.Second),
			OverlayWait: getEnvDuration("FLIPKART_OVERLAY_WAIT", 3*time.Second),
		},
		Normalizer: NormalizerConfig{
			AmazonCurrency:        getEnv("AMAZON_CURRENCY", "INR"),
			FlipkartCurrency:      getEnv("FLIPKART_CURRENCY", "INR"),
			TitleFallbackToTarget: getEnvBool("NORMALIZER_TITLE_FALLBACK", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Name == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Pipeline.Workers < 1 {
		return fmt.Errorf("at least 1 pipeline worker is required")
	}

	if c.Input.CSVPath == "" {
		return fmt.Errorf("input CSV path is required")
	}

	if c.Amazon.AssumeRating && (c.Amazon.AssumedRating < 0 || c.Amazon.AssumedRating > 5) {
		return fmt.Errorf("assumed rating must be within [0, 5]: %v", c.Amazon.AssumedRating)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if dur, err := time.ParseDuration(value); err == nil {
			return dur
		}
	}
	return defaultValue
}

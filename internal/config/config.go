// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment  string
	Server       ServerConfig
	Database     DatabaseConfig
	JWT          JWTConfig
	AWS          AWSConfig
	Payment      PaymentConfig
	Email        EmailConfig
	Underwriting UnderwritingConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
	RateLimit    RateLimitConfig
}

// RateLimitConfig sets the per-client burst sizes for the router's token
// buckets: the general bucket refills once a second, the auth and upload
// buckets once a minute.
type RateLimitConfig struct {
	GeneralBurst    int
	AuthPerMinute   int
	UploadPerMinute int
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

type JWTConfig struct {
	SecretKey       string
	AccessTokenTTL  int // in hours
	RefreshTokenTTL int // in hours
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
}

type PaymentConfig struct {
	StripeSecretKey      string
	StripePublishableKey string
	Currency             string
}

type EmailConfig struct {
	SMTPHost           string
	SMTPPort           string
	SMTPUsername       string
	SMTPPassword       string
	FromEmail          string
	FromName           string
	NotifyOnActivation bool
	NotifyOnSettlement bool
}

// CoverageCheckMode decides what happens when a claim's declared coverage
// type is missing from the policy's frozen snapshot.
type CoverageCheckMode string

const (
	CoverageCheckEnforce CoverageCheckMode = "enforce"
	CoverageCheckWarn    CoverageCheckMode = "warn"
)

// UnderwritingConfig holds the rule-engine limits. It is loaded once and
// passed into services at construction; nothing reads it globally.
type UnderwritingConfig struct {
	GSTRate              float64
	ClaimWaitingDays     int
	MaxClaimsPerPolicy   int
	MaxClaimPctOfIDV     float64
	IDVVariancePct       float64
	MinDurationMonths    int
	RenewalLeadDays      int
	CoverageCheck        CoverageCheckMode
	ProposalSeriesPrefix string
	PolicySeriesPrefix   string
	ClaimSeriesPrefix    string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
			RateLimit: RateLimitConfig{
				GeneralBurst:    getEnvAsInt("RATE_LIMIT_GENERAL_BURST", 10),
				AuthPerMinute:   getEnvAsInt("RATE_LIMIT_AUTH_PER_MINUTE", 5),
				UploadPerMinute: getEnvAsInt("RATE_LIMIT_UPLOAD_PER_MINUTE", 10),
			},
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "vims"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),
		},
		JWT: JWTConfig{
			SecretKey:       getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenTTL:  getEnvAsInt("JWT_ACCESS_TTL", 24),   // 24 hours
			RefreshTokenTTL: getEnvAsInt("JWT_REFRESH_TTL", 168), // 7 days
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "ap-south-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			S3Bucket:        getEnv("AWS_S3_BUCKET", "vims-documents"),
		},
		Payment: PaymentConfig{
			StripeSecretKey:      getEnv("STRIPE_SECRET_KEY", ""),
			StripePublishableKey: getEnv("STRIPE_PUBLISHABLE_KEY", ""),
			Currency:             getEnv("PAYMENT_CURRENCY", "inr"),
		},
		Email: EmailConfig{
			SMTPHost:           getEnv("SMTP_HOST", "smtp.gmail.com"),
			SMTPPort:           getEnv("SMTP_PORT", "587"),
			SMTPUsername:       getEnv("SMTP_USERNAME", ""),
			SMTPPassword:       getEnv("SMTP_PASSWORD", ""),
			FromEmail:          getEnv("FROM_EMAIL", "noreply@vims.example.com"),
			FromName:           getEnv("FROM_NAME", "VIMS"),
			NotifyOnActivation: getEnvAsBool("NOTIFY_ON_POLICY_ACTIVATION", true),
			NotifyOnSettlement: getEnvAsBool("NOTIFY_ON_CLAIM_SETTLEMENT", true),
		},
		Underwriting: UnderwritingConfig{
			GSTRate:              getEnvAsFloat("GST_RATE", 18.0),
			ClaimWaitingDays:     getEnvAsInt("CLAIM_WAITING_DAYS", 15),
			MaxClaimsPerPolicy:   getEnvAsInt("MAX_CLAIMS_PER_POLICY", 3),
			MaxClaimPctOfIDV:     getEnvAsFloat("MAX_CLAIM_PCT_OF_IDV", 100.0),
			IDVVariancePct:       getEnvAsFloat("IDV_VARIANCE_PCT", 10.0),
			MinDurationMonths:    getEnvAsInt("MIN_POLICY_DURATION_MONTHS", 12),
			RenewalLeadDays:      getEnvAsInt("RENEWAL_LEAD_DAYS", 30),
			CoverageCheck:        coverageCheckMode(getEnv("CLAIM_COVERAGE_CHECK", "enforce")),
			ProposalSeriesPrefix: getEnv("PROPOSAL_SERIES_PREFIX", "PRP"),
			PolicySeriesPrefix:   getEnv("POLICY_SERIES_PREFIX", "POL"),
			ClaimSeriesPrefix:    getEnv("CLAIM_SERIES_PREFIX", "CLM"),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.JWT.SecretKey == "your-secret-key-change-in-production" && c.Environment == "production" {
		return fmt.Errorf("JWT secret key must be changed in production")
	}

	if c.Database.Password == "" && c.Environment == "production" {
		return fmt.Errorf("database password is required in production")
	}

	if c.Underwriting.MaxClaimPctOfIDV <= 0 || c.Underwriting.MaxClaimPctOfIDV > 100 {
		return fmt.Errorf("MAX_CLAIM_PCT_OF_IDV must be within (0, 100]")
	}

	return nil
}

func coverageCheckMode(v string) CoverageCheckMode {
	if strings.EqualFold(v, string(CoverageCheckWarn)) {
		return CoverageCheckWarn
	}
	return CoverageCheckEnforce
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Module wires configuration loading for the application.
var Module = fx.Module("config",
	fx.Provide(Load),
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	HTTPAddr    string
	AdminSecret string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	Directory    DirectoryConfig
	BankTransfer BankTransferConfig

	SettlementInterval time.Duration
}

// DirectoryConfig configures the member directory client. An empty BaseURL
// selects the noop client.
type DirectoryConfig struct {
	BaseURL   string
	APIKey    string
	FeeName   string
	FeePlanID string
	Timeout   time.Duration
}

// BankTransferConfig configures the bank transfer client. An empty BaseURL
// selects the noop client.
type BankTransferConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "perks"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),

		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		AdminSecret: strings.TrimSpace(getenv("ADMIN_SECRET", "")),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "perks"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 3600),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 600),

		Directory: DirectoryConfig{
			BaseURL:   strings.TrimSpace(getenv("DIRECTORY_BASE_URL", "")),
			APIKey:    strings.TrimSpace(getenv("DIRECTORY_API_KEY", "")),
			FeeName:   getenv("DIRECTORY_FEE_NAME", "Referral reward credit"),
			FeePlanID: strings.TrimSpace(getenv("DIRECTORY_FEE_PLAN_ID", "")),
			Timeout:   getenvDuration("DIRECTORY_TIMEOUT", 15*time.Second),
		},
		BankTransfer: BankTransferConfig{
			BaseURL: strings.TrimSpace(getenv("BANK_TRANSFER_BASE_URL", "")),
			APIKey:  strings.TrimSpace(getenv("BANK_TRANSFER_API_KEY", "")),
			Timeout: getenvDuration("BANK_TRANSFER_TIMEOUT", 15*time.Second),
		},

		SettlementInterval: getenvDuration("SETTLEMENT_INTERVAL", 24*time.Hour),
	}
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration for our application
type Config struct {
	Port                      string
	Origin                    string
	Environment               string
	JWTSecret                 string
	JWTRefreshSecret          string
	Database                  DatabaseConfig
	Ledger                    LedgerConfig
	Storage                   StorageConfig
	Mailer                    MailerConfig
	LogLevel                  string
	LogFormat                 string
	JWTExpirationMinutes      int
	JWTRefreshExpirationHours int
	AppURL                    string
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	DSN      string
}

// LedgerConfig holds distributed-ledger client configuration.
// Network selects the environment (testnet, mainnet, previewnet); BaseURL
// can be set explicitly to point at a self-hosted bridge.
type LedgerConfig struct {
	Network        string
	BaseURL        string
	OperatorID     string
	OperatorKey    string
	AuditTopicID   string
	RecordTopicID  string
	MaxAttempts    int
	NodeWaitSecs   int
	InitialBalance int64
}

// StorageConfig holds content-addressed storage (IPFS pinning) configuration.
type StorageConfig struct {
	PinURL      string
	APIKey      string
	APISecret   string
	Gateways    []string
	TimeoutSecs int
}

// MailerConfig holds email service configuration
type MailerConfig struct {
	Host        string
	Port        string
	Username    string
	Password    string
	DefaultFrom string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load database configuration
	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "3306"),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "medichain"),
	}

	// Build DSN (Data Source Name) for MySQL connection
	dbConfig.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		dbConfig.Username, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name)

	maxAttempts, err := strconv.Atoi(getEnv("LEDGER_MAX_ATTEMPTS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEDGER_MAX_ATTEMPTS: %w", err)
	}

	nodeWait, err := strconv.Atoi(getEnv("LEDGER_NODE_WAIT_SECONDS", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEDGER_NODE_WAIT_SECONDS: %w", err)
	}

	initialBalance, err := strconv.ParseInt(getEnv("LEDGER_INITIAL_BALANCE", "100"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid LEDGER_INITIAL_BALANCE: %w", err)
	}

	ledgerConfig := LedgerConfig{
		Network:        getEnv("LEDGER_NETWORK", "testnet"),
		BaseURL:        getEnv("LEDGER_BASE_URL", ""),
		OperatorID:     getEnv("LEDGER_OPERATOR_ID", ""),
		OperatorKey:    getEnv("LEDGER_OPERATOR_KEY", ""),
		AuditTopicID:   getEnv("LEDGER_AUDIT_TOPIC", ""),
		RecordTopicID:  getEnv("LEDGER_RECORD_TOPIC", ""),
		MaxAttempts:    maxAttempts,
		NodeWaitSecs:   nodeWait,
		InitialBalance: initialBalance,
	}

	storageTimeout, err := strconv.Atoi(getEnv("STORAGE_TIMEOUT_SECONDS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid STORAGE_TIMEOUT_SECONDS: %w", err)
	}

	storageConfig := StorageConfig{
		PinURL:      getEnv("STORAGE_PIN_URL", "https://api.pinata.cloud"),
		APIKey:      getEnv("STORAGE_API_KEY", ""),
		APISecret:   getEnv("STORAGE_API_SECRET", ""),
		Gateways:    splitList(getEnv("STORAGE_GATEWAYS", "https://gateway.pinata.cloud,https://ipfs.io,https://cloudflare-ipfs.com,https://dweb.link")),
		TimeoutSecs: storageTimeout,
	}

	// Load mailer configuration
	mailerConfig := MailerConfig{
		Host:        getEnv("SMTP_HOST", ""),
		Port:        getEnv("SMTP_PORT", "587"),
		Username:    getEnv("SMTP_USER", ""),
		Password:    getEnv("SMTP_PASS", ""),
		DefaultFrom: getEnv("SMTP_FROM", "noreply@medichain.example"),
	}

	jwtExpMinutes, err := strconv.Atoi(getEnv("JWT_EXPIRATION_MINUTES", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_MINUTES: %w", err)
	}

	jwtRefreshExpHours, err := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168")) // 7 days
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_REFRESH_EXPIRATION_HOURS: %w", err)
	}

	// Return complete configuration
	return &Config{
		Port:                      getEnv("PORT", "3001"),
		Origin:                    getEnv("ORIGIN", "http://localhost:4200"),
		Environment:               getEnv("APP_ENV", "development"),
		JWTSecret:                 getEnv("JWT_SECRET", "default_jwt_secret"),
		JWTRefreshSecret:          getEnv("JWT_REFRESH_SECRET", "default_refresh_secret"),
		Database:                  dbConfig,
		Ledger:                    ledgerConfig,
		Storage:                   storageConfig,
		Mailer:                    mailerConfig,
		LogLevel:                  getEnv("LOG_LEVEL", "info"),
		LogFormat:                 getEnv("LOG_FORMAT", "json"),
		JWTExpirationMinutes:      jwtExpMinutes,
		JWTRefreshExpirationHours: jwtRefreshExpHours,
		AppURL:                    getEnv("APP_URL", "http://localhost:3001"),
	}, nil
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

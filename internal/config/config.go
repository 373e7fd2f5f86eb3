package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	HTTPAddr string

	// Provider is the third-party NFS-e issuing backend.
	ProviderBaseURL string
	ProviderAPIKey  string
	ProviderTimeout int // seconds

	// CNPJLookupMode selects the registry lookup implementation:
	// "provider" calls the real registry through the provider,
	// "mock" answers locally with deterministic records.
	CNPJLookupMode string

	// DocumentDir is the root of the local document object store.
	DocumentDir string
	// DocumentMaxBytes caps a single upload.
	DocumentMaxBytes int64

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
}

// Module provides configuration to the fx graph.
var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Provide(NewSuggestionRuleHolder),
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "nfse-backoffice"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),

		HTTPAddr: getenv("HTTP_ADDR", ":8080"),

		ProviderBaseURL: strings.TrimRight(getenv("PROVIDER_BASE_URL", "http://localhost:9090"), "/"),
		ProviderAPIKey:  strings.TrimSpace(getenv("PROVIDER_API_KEY", "")),
		ProviderTimeout: getenvInt("PROVIDER_TIMEOUT_SECONDS", 12),

		CNPJLookupMode: strings.ToLower(getenv("CNPJ_LOOKUP_MODE", "mock")),

		DocumentDir:      getenv("DOCUMENT_DIR", "./data/documents"),
		DocumentMaxBytes: getenvInt64("DOCUMENT_MAX_BYTES", 10<<20),

		DBType:            getenv("DATABASE_TYPE", "sqlite"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "nfse"),
		DBUser:            getenv("DATABASE_USER", "nfse"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 3600),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 600),
	}
}

func getenv(key, def string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
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

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

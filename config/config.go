package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port     string
	Timezone string

	DBType     string // sqlite|postgres|mysql|sqlserver
	DBPath     string
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	DBMaxConns int

	LogLevel  string
	LogFormat string // json|console

	TablesPath    string
	LimeTableCSV  string
	LimeTableXLSX string
	HorizonYears  int

	LLMEndpoint string
	LLMAPIKey   string
	LLMModel    string
	EnableLIFF  bool
}

var defaultPorts = map[string]int{"postgres": 5432, "mysql": 3306, "sqlserver": 1433}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvAsInt(k string, def int) (int, error) {
	v := getEnv(k, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return n, nil
}

func getEnvAsBool(k string, def bool) bool {
	v := getEnv(k, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// Load reads .env (when present) and the environment.
func Load() (AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[cfg] .env not loaded: %v", err)
	}

	cfg := AppConfig{
		Port:          getEnv("PORT", "8080"),
		Timezone:      getEnv("TZ", "Europe/Warsaw"),
		DBType:        strings.ToLower(getEnv("DB_TYPE", "sqlite")),
		DBPath:        getEnv("DB_PATH", "limeplan.db"),
		DBHost:        getEnv("DB_HOST", ""),
		DBName:        getEnv("DB_NAME", ""),
		DBUser:        getEnv("DB_USER", ""),
		DBPassword:    getEnv("DB_PASSWORD", ""),
		LogLevel:      strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:     strings.ToLower(getEnv("LOG_FORMAT", "json")),
		TablesPath:    getEnv("TABLES_PATH", ""),
		LimeTableCSV:  getEnv("LIME_TABLE_CSV", ""),
		LimeTableXLSX: getEnv("LIME_TABLE_XLSX", ""),
		LLMEndpoint:   getEnv("LLM_ENDPOINT", ""),
		LLMAPIKey:     getEnv("LLM_API_KEY", ""),
		LLMModel:      getEnv("LLM_MODEL", "gpt-4o-mini"),
		EnableLIFF:    getEnvAsBool("ENABLE_LIFF", false),
	}

	var err error
	if cfg.DBPort, err = getEnvAsInt("DB_PORT", defaultPorts[cfg.DBType]); err != nil {
		return AppConfig{}, err
	}
	if cfg.DBMaxConns, err = getEnvAsInt("DB_MAX_CONNS", 10); err != nil {
		return AppConfig{}, err
	}
	if cfg.HorizonYears, err = getEnvAsInt("PLAN_HORIZON_YEARS", 6); err != nil {
		return AppConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

func (c AppConfig) Validate() error {
	switch c.DBType {
	case "sqlite":
		if c.DBPath == "" {
			return errors.New("DB_PATH is required for sqlite")
		}
	case "postgres", "mysql", "sqlserver":
		if c.DBHost == "" || c.DBName == "" {
			return fmt.Errorf("DB_HOST and DB_NAME are required for %s", c.DBType)
		}
	default:
		return fmt.Errorf("unsupported DB_TYPE %q", c.DBType)
	}
	if c.HorizonYears < 1 {
		return fmt.Errorf("PLAN_HORIZON_YEARS must be at least 1, got %d", c.HorizonYears)
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("DB_MAX_CONNS must be at least 1, got %d", c.DBMaxConns)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("unsupported LOG_FORMAT %q", c.LogFormat)
	}
	return nil
}

// Redacted is safe to log.
func (c AppConfig) Redacted() AppConfig {
	if c.DBPassword != "" {
		c.DBPassword = "***"
	}
	if c.LLMAPIKey != "" {
		c.LLMAPIKey = "***"
	}
	return c
}

package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers accepted in STORE_DRIVER.
const (
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env                string        // application environment (e.g. "dev", "prod")
	Port               string        // HTTP port to listen on
	LogLevel           string        // logrus level name
	StoreDriver        string        // "mysql" or "memory"
	DBUser             string        // database username
	DBPass             string        // database password (optional)
	DBHost             string        // database host address
	DBPort             string        // database port number
	DBName             string        // database name
	DBAutoMigrate      bool          // create missing tables on startup
	ReservationTimeout time.Duration // upper bound on one reservation transaction
	SeedDays           int           // rolling window of seeded dates for the memory store
}

// Load reads a .env file when present, then builds a Config from the
// environment.  Database variables are required only for the mysql driver;
// missing required values cause the program to exit with a fatal log
// message.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: ignoring unreadable .env: %v", err)
	}
	cfg := Config{
		Env:                envStr("APP_ENV", "dev"),
		Port:               envStr("APP_PORT", "3000"),
		LogLevel:           envStr("LOG_LEVEL", "info"),
		StoreDriver:        strings.ToLower(envStr("STORE_DRIVER", DriverMySQL)),
		DBPass:             os.Getenv("DB_PASS"),
		DBAutoMigrate:      envBool("DB_AUTO_MIGRATE", false),
		ReservationTimeout: envDur("RESERVATION_TIMEOUT", 5*time.Second),
		SeedDays:           envInt("SEED_DAYS", 7),
	}
	switch cfg.StoreDriver {
	case DriverMySQL:
		cfg.DBUser = must("DB_USER")
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = must("DB_PORT")
		cfg.DBName = must("DB_NAME")
	case DriverMemory:
	default:
		log.Fatalf("invalid STORE_DRIVER %q (want %s or %s)", cfg.StoreDriver, DriverMySQL, DriverMemory)
	}
	if cfg.ReservationTimeout <= 0 {
		cfg.ReservationTimeout = 5 * time.Second
	}
	if cfg.SeedDays < 1 {
		cfg.SeedDays = 1
	}
	return cfg
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}

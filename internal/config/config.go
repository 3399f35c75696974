package config // package config loads application configuration from environment variables

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store kinds accepted in APP_STORE.
const (
	StoreMemory = "memory"
	StoreMySQL  = "mysql"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable; cmd/server loads an optional .env file first.
type Config struct {
	Env   string // APP_ENV: dev, test, prod
	Port  string // APP_PORT: HTTP port to listen on
	Store string // APP_STORE: memory or mysql

	DBUser string // DB_USER
	DBPass string // DB_PASS (empty allowed)
	DBHost string // DB_HOST
	DBPort string // DB_PORT
	DBName string // DB_NAME
	DBSeed bool   // DB_SEED: insert the initial rooms into an empty table

	SessionTTL       time.Duration // SESSION_TTL: lifetime of a login session
	SessionRetention time.Duration // SESSION_RETENTION: how long expired sessions are kept
	SessionPurgeCron string        // SESSION_PURGE_CRON: schedule of the purge job (empty disables)
	BcryptCost       int           // BCRYPT_COST: bcrypt cost for password hashing

	ReceiptSecret string        // RECEIPT_SECRET: HS256 key for payment receipts (empty disables)
	ReceiptTTL    time.Duration // RECEIPT_TTL: receipt lifetime, 0 for no expiry

	RabbitURL     string // RABBITMQ_URL (or AMQP_URL); empty disables booking events
	BookingLogDir string // BOOKING_LOG_DIR: where the consumer writes booking.log
	RunConsumer   bool   // BOOKING_CONSUMER: run the booking.confirmed consumer in-process
}

// Load reads the configuration.  Every missing or malformed required
// variable is reported in the returned error.
func Load() (Config, error) {
	var errs []error
	cfg := Config{
		Env:   envStr("APP_ENV", "dev"),
		Port:  envStr("APP_PORT", "8080"),
		Store: strings.ToLower(envStr("APP_STORE", StoreMySQL)),

		SessionTTL:       envDur("SESSION_TTL", 7*24*time.Hour),
		SessionRetention: envDur("SESSION_RETENTION", 24*time.Hour),
		SessionPurgeCron: envStr("SESSION_PURGE_CRON", "0 0 * * * *"),
		BcryptCost:       envInt("BCRYPT_COST", 10),

		ReceiptSecret: os.Getenv("RECEIPT_SECRET"),
		ReceiptTTL:    envDur("RECEIPT_TTL", 0),

		RabbitURL:     envStr("RABBITMQ_URL", os.Getenv("AMQP_URL")),
		BookingLogDir: envStr("BOOKING_LOG_DIR", "logs"),
		RunConsumer:   envBool("BOOKING_CONSUMER", true),
	}

	switch cfg.Store {
	case StoreMemory:
	case StoreMySQL:
		cfg.DBUser = must("DB_USER", &errs)
		cfg.DBPass = os.Getenv("DB_PASS")
		cfg.DBHost = must("DB_HOST", &errs)
		cfg.DBPort = must("DB_PORT", &errs)
		cfg.DBName = must("DB_NAME", &errs)
		cfg.DBSeed = envBool("DB_SEED", true)
	default:
		errs = append(errs, fmt.Errorf("APP_STORE must be %q or %q, got %q", StoreMemory, StoreMySQL, cfg.Store))
	}

	if cfg.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be within 4..31, got %d", cfg.BcryptCost))
	}
	return cfg, errors.Join(errs...)
}

// must retrieves the value of a required environment variable and records
// an error when it is unset or empty.
func must(key string, errs *[]error) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		*errs = append(*errs, fmt.Errorf("missing required env var: %s", key))
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
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
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

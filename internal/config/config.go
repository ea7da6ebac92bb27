package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time expresses connection lifetimes
)

// Config holds all runtime configuration values. Each field
// corresponds to an environment variable. The types reflect how the
// values are used: strings for identifiers and secrets, ints for
// durations and costs, bools for mode switches.
type Config struct {
	Env            string        // application environment (e.g. "dev", "prod")
	Port           string        // HTTP port to listen on
	DBUser         string        // database username
	DBPass         string        // database password (optional)
	DBHost         string        // database host address
	DBPort         string        // database port number
	DBName         string        // database name
	DBMaxOpen      int           // max open connections in the pool
	DBMaxIdle      int           // max idle connections kept in the pool
	DBConnLifetime time.Duration // max lifetime of a pooled connection
	JWTSecret      string        // secret used to sign JWTs
	AccessTTLMin   int           // access token time-to-live in minutes
	RefreshTTLDays int           // refresh token time-to-live in days
	BcryptCost     int           // bcrypt cost for password hashing
	DemoMode       bool          // when true, media routes skip auth and use DemoUserID
	DemoUserID     string        // fixed user id for demo mode
}

// Load reads configuration values from environment variables and
// returns a Config. Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
// Demo mode and token lifetimes fall back to sensible defaults so a
// bare .env with DB and JWT settings is enough for development.
func Load() Config {
	return Config{
		Env:            getenv("APP_ENV", "dev"),
		Port:           getenv("APP_PORT", "8080"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		DBMaxOpen:      envInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdle:      envInt("DB_MAX_IDLE_CONNS", 25),
		DBConnLifetime: envDur("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   envInt("ACCESS_TOKEN_TTL_MIN", 60),
		RefreshTTLDays: envInt("REFRESH_TOKEN_TTL_DAYS", 30),
		BcryptCost:     envInt("BCRYPT_COST", 10),
		DemoMode:       envBool("APP_DEMO", false),
		DemoUserID:     getenv("DEMO_USER_ID", "demo-user-001"),
	}
}

// must retrieves the value of a required environment variable. If
// the variable is unset or empty, the application logs a fatal error
// and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return def
}

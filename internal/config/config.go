package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. Required values are enforced with must(); the
// rest fall back to sensible defaults so a local setup only needs the
// database and JWT settings.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign session tokens
	TokenTTLDays   int    // session token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing
	GoogleClientID string // OAuth client id accepted when verifying Google ID tokens
	AirtimeURL     string // base URL of the Airtime instance whose public API we proxy
	UploadDir      string // directory for uploaded cover images
	EpisodeDir     string // directory for uploaded episode audio
	PublicBaseURL  string // external base URL used when building upload URLs
}

// Load reads configuration from the environment. Missing required variables
// abort startup with a fatal log message.
func Load() Config {
	return Config{
		Env:            getenv("APP_ENV", "dev"),
		Port:           getenv("APP_PORT", "3000"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         getenv("DB_PORT", "3306"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		TokenTTLDays:   getint("TOKEN_TTL_DAYS", 7),
		BcryptCost:     getint("BCRYPT_COST", 10),
		GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"), // empty disables Google sign-in
		AirtimeURL:     getenv("AIRTIME_URL", "http://localhost"),
		UploadDir:      getenv("UPLOAD_DIR", "uploads"),
		EpisodeDir:     getenv("EPISODE_UPLOAD_DIR", "uploads/episodes"),
		PublicBaseURL:  getenv("PUBLIC_BASE_URL", "http://localhost:3000"),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
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

func getint(key string, def int) int {
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

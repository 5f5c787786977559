package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by WACHPLAN_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("WACHPLAN_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

// PlatformDomain is the root domain tenants hang off as subdomains. It is
// also the reserved suffix that marks a login identifier as a
// pseudo-credential.
// Defaults to "wachplan.app" if not set.
func PlatformDomain() string {
	d := os.Getenv("PLATFORM_DOMAIN")
	if d == "" {
		return "wachplan.app"
	}
	return d
}

// GatewaySecret is the shared secret the authentication gateway sends with
// forwarded subject headers.
func GatewaySecret() string {
	return os.Getenv("GATEWAY_SECRET")
}

// AdminAPIKey authorizes the platform-admin endpoints (tenant creation,
// module overrides, employee administration).
func AdminAPIKey() string {
	return os.Getenv("ADMIN_API_KEY")
}

// StoreTimeout is the deadline applied to each lookup-strategy read.
// Defaults to 3s if not set.
func StoreTimeout() time.Duration {
	ms, err := strconv.Atoi(os.Getenv("STORE_TIMEOUT_MS"))
	if err != nil || ms <= 0 {
		return 3 * time.Second
	}
	return time.Duration(ms) * time.Millisecond
}

// CatalogTTL is how long the module catalog may be served from cache.
// Defaults to 60s if not set.
func CatalogTTL() time.Duration {
	s, err := strconv.Atoi(os.Getenv("CATALOG_TTL_S"))
	if err != nil || s <= 0 {
		return 60 * time.Second
	}
	return time.Duration(s) * time.Second
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}

package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

var (
	AppEnv       string
	IsStaging    bool
	IsProduction bool

	// widget client
	BackendWSURL string
	// CityGate makes selecting a city mandatory before the first message
	// and switches the outbound frames to {message, city} objects.
	CityGate             bool
	BannerSeconds        int
	TypingTimeoutSeconds int

	// dev scheduler backend
	Port                   string
	AllowedOrigins         []string
	ReplyCacheTTLSeconds   int
	RateLimitWindowSeconds int
	RateLimitCapacity      int
)

// loadAppEnv loads .env for local runs only; production reads the host env.
func loadAppEnv() {
	AppEnv = os.Getenv("APP_ENV")
	if AppEnv == "production" {
		return
	}
	// best effort: running without a .env file is fine
	_ = godotenv.Load()
}

func init() {
	loadAppEnv()

	AppEnv = os.Getenv("APP_ENV")
	if AppEnv == "" {
		AppEnv = "staging"
	}
	IsStaging = AppEnv == "staging"
	IsProduction = AppEnv == "production"

	BackendWSURL = os.Getenv("BACKEND_WS_URL")
	if BackendWSURL == "" {
		BackendWSURL = "ws://localhost:8000/ws"
	}
	// CITY_GATE: "1" enables the city selection gate
	CityGate = os.Getenv("CITY_GATE") == "1"
	BannerSeconds = atoiOr(os.Getenv("BANNER_SECONDS"), 3)
	TypingTimeoutSeconds = atoiOr(os.Getenv("TYPING_TIMEOUT_SECONDS"), 0)

	Port = os.Getenv("PORT")
	if Port == "" {
		Port = "8000"
	}
	AllowedOrigins = splitCSV(os.Getenv("ALLOWED_ORIGINS"))
	ReplyCacheTTLSeconds = atoiOr(os.Getenv("REPLY_CACHE_TTL_SECONDS"), 600)
	RateLimitWindowSeconds = atoiOr(os.Getenv("RATE_LIMIT_WINDOW_SECONDS"), 10)
	RateLimitCapacity = atoiOr(os.Getenv("RATE_LIMIT_CAPACITY"), 5)

	log.Printf("[config] AppEnv=%s BackendWSURL=%s CityGate=%v", AppEnv, BackendWSURL, CityGate)
	log.Printf("[config] banner=%ds typingTimeout=%ds replyCacheTTL=%ds rateLimit window=%ds capacity=%d",
		BannerSeconds, TypingTimeoutSeconds, ReplyCacheTTLSeconds, RateLimitWindowSeconds, RateLimitCapacity)
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

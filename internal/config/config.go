package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port   string
	Env    string // "production" enables secure cookies
	Mongo  MongoConfig
	Auth   AuthConfig
	Google GoogleConfig
	CORS   CORSConfig

	RedisAddr       string
	RateLimitPerMin int

	RabbitURL      string
	EventsExchange string
}

type MongoConfig struct {
	URI string
	DB  string
}

type AuthConfig struct {
	JWTSecret  string
	TokenTTL   int // minutes
	CookieName string
	CSRFCookie string
}

type GoogleConfig struct {
	ClientID        string
	ClientSecret    string
	RedirectURI     string
	StateSecret     string
	SuccessRedirect string
}

type CORSConfig struct {
	Origins []string
}

func Load() Config {
	return Config{
		Port: getenv("APP_PORT", "5555"),
		Env:  getenv("APP_ENV", "development"),
		Mongo: MongoConfig{
			URI: getenv("MONGO_URI", "mongodb://localhost:27017"),
			DB:  getenv("MONGO_DB", "elemahana"),
		},
		Auth: AuthConfig{
			JWTSecret:  getenv("JWT_SECRET", "default_secret_key"),
			TokenTTL:   atoi(getenv("JWT_TTL_MIN", "1440")),
			CookieName: getenv("JWT_COOKIE_NAME", "elema_jwt"),
			CSRFCookie: getenv("CSRF_COOKIE_NAME", "_csrf"),
		},
		Google: GoogleConfig{
			ClientID:        getenv("GOOGLE_CLIENT_ID", ""),
			ClientSecret:    getenv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURI:     getenv("GOOGLE_REDIRECT_URI", ""),
			StateSecret:     getenv("OAUTH_STATE_SECRET", "default_state_secret"),
			SuccessRedirect: getenv("OAUTH_SUCCESS_REDIRECT", "http://localhost:3000"),
		},
		CORS: CORSConfig{
			Origins: split(getenv("CORS_ORIGINS", "http://localhost:3000")),
		},
		RedisAddr:       getenv("REDIS_ADDR", ""),
		RateLimitPerMin: atoi(getenv("RATE_LIMIT_PER_MIN", "100")),
		RabbitURL:       getenv("RABBIT_URL", ""),
		EventsExchange:  getenv("EVENTS_EXCHANGE", "farm.events"),
	}
}

func (c Config) IsProd() bool { return c.Env == "production" }

func atoi(s string) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return 0
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func split(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

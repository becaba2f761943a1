package config

import (
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Config struct {
	AppPort string

	StoreBackend  string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SessionTTL   time.Duration
	MaxWait      time.Duration
	PollInterval time.Duration
	EndMarker    string

	ChatbotBaseURL     string
	ChatbotAPIKey      string
	ChatbotDestination string
	ChatbotTimeout     time.Duration

	AdminUser         string
	AdminPasswordHash string

	LogLevel string
}

// Load reads .env (if present) and the process environment once.
// Values already set in the environment take precedence over .env.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from an arbitrary lookup, applying defaults.
func FromEnv(getenv func(string) string) Config {

	cfg := Config{

		AppPort: orDefault(getenv("SERVER_PORT"), "3000"),

		StoreBackend:  storeBackend(getenv),
		RedisAddr:     redisAddr(getenv),
		RedisPassword: redisPassword(getenv("REDIS_PASSWORD")),
		RedisDB:       intOr(getenv("REDIS_DB"), 0),

		SessionTTL:   durationOr(getenv("SESSION_TTL"), time.Second, 10*time.Minute),
		MaxWait:      durationOr(getenv("USSD_MAX_WAIT_TIME"), time.Millisecond, 3000*time.Millisecond),
		PollInterval: durationOr(getenv("USSD_POLL_INTERVAL"), time.Millisecond, 200*time.Millisecond),
		EndMarker:    orDefault(getenv("USSD_END_MARKER"), "[END]"),

		ChatbotBaseURL:     strings.TrimRight(orDefault(getenv("CHATBOT_BASE_URL"), "https://api.infobip.com"), "/"),
		ChatbotAPIKey:      strings.TrimSpace(getenv("CHATBOT_API_KEY")),
		ChatbotDestination: strings.TrimSpace(getenv("CHATBOT_DESTINATION")),
		ChatbotTimeout:     durationOr(getenv("CHATBOT_TIMEOUT"), time.Millisecond, 5000*time.Millisecond),

		AdminUser:         orDefault(getenv("ADMIN_USER"), "admin"),
		AdminPasswordHash: strings.TrimSpace(getenv("ADMIN_PASSWORD_HASH")),

		LogLevel: orDefault(getenv("LOGGING_LEVEL"), "info"),
	}

	return cfg

}

// Issue is a configuration problem reported at startup. Issues are
// warnings: the service still starts and the affected path fails per call.
type Issue struct {
	Name    string `json:"name" yaml:"name"`
	Message string `json:"message" yaml:"message"`
}

func (c Config) Validate() []Issue {
	var issues []Issue

	if c.ChatbotAPIKey == "" {
		issues = append(issues, Issue{Name: "CHATBOT_API_KEY", Message: "Missing"})
	}
	if c.ChatbotDestination == "" {
		issues = append(issues, Issue{Name: "CHATBOT_DESTINATION", Message: "Missing"})
	}

	if c.StoreBackend == BackendRedis {
		if _, port, err := net.SplitHostPort(c.RedisAddr); err != nil {
			issues = append(issues, Issue{Name: "REDIS_ADDR", Message: "Invalid"})
		} else if p, err := strconv.Atoi(port); err != nil || p <= 0 || p > 65535 {
			issues = append(issues, Issue{Name: "REDIS_PORT", Message: "Invalid"})
		}
	}

	if c.PollInterval <= 0 {
		issues = append(issues, Issue{Name: "USSD_POLL_INTERVAL", Message: "must be positive"})
	} else if c.PollInterval > c.MaxWait {
		issues = append(issues, Issue{Name: "USSD_POLL_INTERVAL", Message: "larger than USSD_MAX_WAIT_TIME"})
	}

	return issues
}

// Mask hides all but the first and last four characters of a secret.
func Mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

func storeBackend(getenv func(string) string) string {
	switch strings.ToLower(strings.TrimSpace(getenv("STORE_BACKEND"))) {
	case BackendMemory:
		return BackendMemory
	case BackendRedis:
		return BackendRedis
	}
	if strings.EqualFold(getenv("USE_REDIS"), "false") {
		return BackendMemory
	}
	return BackendRedis
}

func redisAddr(getenv func(string) string) string {
	if addr := getenv("REDIS_ADDR"); addr != "" {
		return addr
	}
	host := orDefault(getenv("REDIS_HOST"), "localhost")
	port := orDefault(getenv("REDIS_PORT"), "6379")
	return net.JoinHostPort(host, port)
}

func redisPassword(v string) string {
	if v == "null" || v == "undefined" {
		return ""
	}
	return v
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func intOr(v string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

// durationOr accepts either a Go duration ("750ms") or a bare integer
// interpreted in unit.
func durationOr(v string, unit, def time.Duration) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * unit
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return def
}

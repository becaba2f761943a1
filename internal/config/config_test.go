package config

import (
	"testing"
	"time"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv(env(nil))

	if cfg.AppPort != "3000" {
		t.Errorf("AppPort = %q, want %q", cfg.AppPort, "3000")
	}
	if cfg.StoreBackend != BackendRedis {
		t.Errorf("StoreBackend = %q, want %q", cfg.StoreBackend, BackendRedis)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %q, want %q", cfg.RedisAddr, "localhost:6379")
	}
	if cfg.SessionTTL != 10*time.Minute {
		t.Errorf("SessionTTL = %v, want 10m", cfg.SessionTTL)
	}
	if cfg.MaxWait != 3*time.Second {
		t.Errorf("MaxWait = %v, want 3s", cfg.MaxWait)
	}
	if cfg.PollInterval != 200*time.Millisecond {
		t.Errorf("PollInterval = %v, want 200ms", cfg.PollInterval)
	}
	if cfg.EndMarker != "[END]" {
		t.Errorf("EndMarker = %q, want %q", cfg.EndMarker, "[END]")
	}
	if cfg.ChatbotBaseURL != "https://api.infobip.com" {
		t.Errorf("ChatbotBaseURL = %q", cfg.ChatbotBaseURL)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	cfg := FromEnv(env(map[string]string{
		"SERVER_PORT":         "8080",
		"REDIS_HOST":          "cache",
		"REDIS_PORT":          "6380",
		"REDIS_PASSWORD":      "null",
		"SESSION_TTL":         "90",
		"USSD_MAX_WAIT_TIME":  "1500",
		"USSD_POLL_INTERVAL":  "50ms",
		"CHATBOT_BASE_URL":    "http://bot.local/",
		"CHATBOT_API_KEY":     "  App secret  ",
		"CHATBOT_DESTINATION": "dest-1",
		"USE_REDIS":           "false",
	}))

	if cfg.AppPort != "8080" {
		t.Errorf("AppPort = %q, want 8080", cfg.AppPort)
	}
	if cfg.RedisAddr != "cache:6380" {
		t.Errorf("RedisAddr = %q, want cache:6380", cfg.RedisAddr)
	}
	if cfg.RedisPassword != "" {
		t.Errorf("RedisPassword = %q, want empty", cfg.RedisPassword)
	}
	if cfg.SessionTTL != 90*time.Second {
		t.Errorf("SessionTTL = %v, want 90s", cfg.SessionTTL)
	}
	if cfg.MaxWait != 1500*time.Millisecond {
		t.Errorf("MaxWait = %v, want 1.5s", cfg.MaxWait)
	}
	if cfg.PollInterval != 50*time.Millisecond {
		t.Errorf("PollInterval = %v, want 50ms", cfg.PollInterval)
	}
	if cfg.ChatbotBaseURL != "http://bot.local" {
		t.Errorf("ChatbotBaseURL = %q, want trailing slash trimmed", cfg.ChatbotBaseURL)
	}
	if cfg.ChatbotAPIKey != "App secret" {
		t.Errorf("ChatbotAPIKey = %q, want trimmed", cfg.ChatbotAPIKey)
	}
	if cfg.StoreBackend != BackendMemory {
		t.Errorf("StoreBackend = %q, want memory", cfg.StoreBackend)
	}
}

func TestStoreBackendExplicitWins(t *testing.T) {
	cfg := FromEnv(env(map[string]string{
		"STORE_BACKEND": "redis",
		"USE_REDIS":     "false",
	}))
	if cfg.StoreBackend != BackendRedis {
		t.Errorf("StoreBackend = %q, want redis", cfg.StoreBackend)
	}
}

func TestValidate(t *testing.T) {
	cfg := FromEnv(env(map[string]string{
		"REDIS_PORT":         "99999",
		"USSD_MAX_WAIT_TIME": "100",
		"USSD_POLL_INTERVAL": "500",
	}))

	issues := cfg.Validate()
	names := map[string]bool{}
	for _, i := range issues {
		names[i.Name] = true
	}

	for _, want := range []string{"CHATBOT_API_KEY", "CHATBOT_DESTINATION", "REDIS_PORT", "USSD_POLL_INTERVAL"} {
		if !names[want] {
			t.Errorf("Validate() missing issue %s; got %+v", want, issues)
		}
	}
}

func TestValidateClean(t *testing.T) {
	cfg := FromEnv(env(map[string]string{
		"CHATBOT_API_KEY":     "key",
		"CHATBOT_DESTINATION": "dest",
	}))
	if issues := cfg.Validate(); len(issues) != 0 {
		t.Errorf("Validate() = %+v, want none", issues)
	}
}

func TestMask(t *testing.T) {
	cases := map[string]string{
		"":                 "",
		"short":            "********",
		"App 0123456789ab": "App ...89ab",
	}
	for in, want := range cases {
		if got := Mask(in); got != want {
			t.Errorf("Mask(%q) = %q, want %q", in, got, want)
		}
	}
}

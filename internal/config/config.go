package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr      string // API bind address, e.g., "127.0.0.1:8080" or ":8080" (Docker)
	LogDir    string // logs directory
	LogLevel  string // debug | info | warn | error
	LogStderr bool   // also log to stderr
	Lang      string // UI language for check messages, e.g. "en", "ru"

	ClashAPIURL    string        // external controller, e.g. http://127.0.0.1:9090
	ClashAPISecret string        // bearer secret of the controller, may be empty
	ProbeURL       string        // URL the controller fetches to measure delay
	ProbeTimeout   time.Duration // per probe call
	RetryAttempts  int           // attempts per probe call
	RetryBackoff   time.Duration // backoff between attempts
	MaxConcurrency int           // concurrent section probes per run, 0 = all
	CheckInterval  time.Duration // periodic runs, 0 disables
	SectionsFile   string        // YAML sections file; empty derives sections from the controller
	Sections       []string      // controller groups to check when SectionsFile is empty

	PublicAPIKeys  []string
	AdminAPIKeys   []string
	PublicRPM      int
	PublicBurst    int
	AdminRPM       int
	AdminBurst     int
	AllowedOrigins []string

	SlackWebhook    string
	AlertOnRecovery bool
	AlertCooldown   time.Duration
}

func FromEnv() Config {
	// Bind address
	addr := os.Getenv("API_ADDR")
	if addr == "" {
		addr = os.Getenv("ADDR")
	}
	if addr == "" {
		addr = "127.0.0.1:8080"
	}

	// Logs
	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	lang := os.Getenv("LANG_CODE")
	if lang == "" {
		lang = "en"
	}

	clashURL := os.Getenv("CLASH_API_URL")
	if clashURL == "" {
		clashURL = "http://127.0.0.1:9090"
	}
	probeURL := os.Getenv("PROBE_URL")
	if probeURL == "" {
		probeURL = "https://www.gstatic.com/generate_204"
	}

	return Config{
		Addr:      addr,
		LogDir:    logDir,
		LogLevel:  logLevel,
		LogStderr: envBool("LOG_STDERR", false),
		Lang:      lang,

		ClashAPIURL:    clashURL,
		ClashAPISecret: os.Getenv("CLASH_API_SECRET"),
		ProbeURL:       probeURL,
		ProbeTimeout:   envMillis("PROBE_TIMEOUT_MS", 5*time.Second, false),
		RetryAttempts:  envInt("RETRY_ATTEMPTS", 1, 1),
		RetryBackoff:   envMillis("RETRY_BACKOFF_MS", 300*time.Millisecond, true),
		MaxConcurrency: envInt("MAX_CONCURRENT_PROBES", 0, 0),
		CheckInterval:  envMillis("CHECK_INTERVAL_MS", 0, true),
		SectionsFile:   os.Getenv("SECTIONS_FILE"),
		Sections:       splitList(os.Getenv("SECTIONS")),

		PublicAPIKeys:  splitList(os.Getenv("PUBLIC_API_KEYS")),
		AdminAPIKeys:   splitList(os.Getenv("ADMIN_API_KEYS")),
		PublicRPM:      envInt("PUBLIC_RPM", 120, 0),
		PublicBurst:    envInt("PUBLIC_BURST", 60, 1),
		AdminRPM:       envInt("ADMIN_RPM", 30, 0),
		AdminBurst:     envInt("ADMIN_BURST", 10, 1),
		AllowedOrigins: splitList(os.Getenv("ALLOWED_ORIGINS")),

		SlackWebhook:    os.Getenv("SLACK_WEBHOOK_URL"),
		AlertOnRecovery: envBool("ALERT_ON_RECOVERY", true),
		AlertCooldown:   envMillis("ALERT_COOLDOWN_MS", 15*time.Minute, true),
	}
}

// envInt returns def when the variable is unset, unparsable or below min.
func envInt(key string, def, min int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= min {
			return n
		}
	}
	return def
}

func envMillis(key string, def time.Duration, allowZero bool) time.Duration {
	if v := os.Getenv(key); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && (ms > 0 || (allowZero && ms == 0)) {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// splitList parses "a,b , c" into [a b c], dropping empty entries.
func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

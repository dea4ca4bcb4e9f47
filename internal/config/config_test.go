package config

import (
	"testing"
	"time"
)

func TestFromEnv_ParsesAndDefaults(t *testing.T) {
	t.Setenv("API_ADDR", ":9090")
	t.Setenv("LOG_DIR", "./_testlogs")
	t.Setenv("LOG_STDERR", "true")
	t.Setenv("LANG_CODE", "ru")
	t.Setenv("CLASH_API_URL", "http://192.168.1.1:9090")
	t.Setenv("CLASH_API_SECRET", "s")
	t.Setenv("PROBE_TIMEOUT_MS", "1234")
	t.Setenv("RETRY_ATTEMPTS", "5")
	t.Setenv("RETRY_BACKOFF_MS", "250")
	t.Setenv("CHECK_INTERVAL_MS", "0")
	t.Setenv("MAX_CONCURRENT_PROBES", "7")
	t.Setenv("SECTIONS", "main, youtube ,")
	t.Setenv("PUBLIC_API_KEYS", "pub_a,pub_b")
	t.Setenv("ADMIN_API_KEYS", "adm_x")
	t.Setenv("PUBLIC_RPM", "111")
	t.Setenv("PUBLIC_BURST", "22")
	t.Setenv("ADMIN_RPM", "33")
	t.Setenv("ADMIN_BURST", "44")
	t.Setenv("ALERT_ON_RECOVERY", "false")

	cfg := FromEnv()

	if cfg.Addr != ":9090" || cfg.LogDir != "./_testlogs" || !cfg.LogStderr {
		t.Fatalf("addr/logdir wrong: %+v", cfg)
	}
	if cfg.Lang != "ru" || cfg.ClashAPIURL != "http://192.168.1.1:9090" || cfg.ClashAPISecret != "s" {
		t.Fatalf("controller settings wrong: %+v", cfg)
	}
	if cfg.ProbeTimeout != 1234*time.Millisecond || cfg.RetryAttempts != 5 || cfg.RetryBackoff != 250*time.Millisecond {
		t.Fatalf("probe tuning wrong: %+v", cfg)
	}
	if cfg.CheckInterval != 0 || cfg.MaxConcurrency != 7 {
		t.Fatalf("run tuning wrong: %+v", cfg)
	}
	if len(cfg.Sections) != 2 || cfg.Sections[1] != "youtube" {
		t.Fatalf("sections wrong: %+v", cfg.Sections)
	}
	if len(cfg.PublicAPIKeys) != 2 || cfg.PublicAPIKeys[0] != "pub_a" {
		t.Fatalf("public keys wrong: %+v", cfg.PublicAPIKeys)
	}
	if len(cfg.AdminAPIKeys) != 1 || cfg.AdminAPIKeys[0] != "adm_x" {
		t.Fatalf("admin keys wrong: %+v", cfg.AdminAPIKeys)
	}
	if cfg.PublicRPM != 111 || cfg.PublicBurst != 22 || cfg.AdminRPM != 33 || cfg.AdminBurst != 44 {
		t.Fatalf("rate limits wrong: %+v", cfg)
	}
	if cfg.AlertOnRecovery {
		t.Fatalf("ALERT_ON_RECOVERY=false ignored")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"API_ADDR", "ADDR", "LOG_DIR", "PROBE_TIMEOUT_MS", "RETRY_ATTEMPTS", "CLASH_API_URL", "SECTIONS"} {
		t.Setenv(k, "")
	}
	t.Setenv("RETRY_ATTEMPTS", "-3")
	t.Setenv("PROBE_TIMEOUT_MS", "0")

	cfg := FromEnv()

	if cfg.Addr != "127.0.0.1:8080" || cfg.LogDir != "logs" {
		t.Fatalf("defaults wrong: %+v", cfg)
	}
	if cfg.ProbeTimeout != 5*time.Second {
		t.Fatalf("zero probe timeout should fall back to default, got %v", cfg.ProbeTimeout)
	}
	if cfg.RetryAttempts != 1 {
		t.Fatalf("negative attempts should fall back to 1, got %d", cfg.RetryAttempts)
	}
	if cfg.ClashAPIURL != "http://127.0.0.1:9090" || cfg.Sections != nil {
		t.Fatalf("controller defaults wrong: %+v", cfg)
	}
}

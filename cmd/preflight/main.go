// cmd/preflight/main.go
package main

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/hamed0406/outboundcheck/internal/config"
	"github.com/hamed0406/outboundcheck/internal/sections"
)

func main() {
	_ = godotenv.Load()

	red, yellow, green := color.New(color.FgRed), color.New(color.FgYellow), color.New(color.FgGreen)
	fail := func(msg string) {
		red.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { yellow.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { green.Println("✔", msg) }

	cfg := config.FromEnv()

	if len(cfg.AdminAPIKeys) == 0 {
		warn("ADMIN_API_KEYS is empty; anyone can trigger runs.")
	}
	if len(cfg.PublicAPIKeys) == 0 && len(cfg.AdminAPIKeys) == 0 {
		warn("no API keys configured; read routes are open.")
	}

	// Normalize and sanity-check lists (no spaces around commas).
	for _, name := range []string{"ADMIN_API_KEYS", "PUBLIC_API_KEYS"} {
		if strings.Contains(strings.TrimSpace(os.Getenv(name)), " ") {
			warn(name + " contains spaces; use comma-separated with no spaces, e.g. key1,key2")
		}
	}

	u, err := url.Parse(cfg.ClashAPIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		fail("CLASH_API_URL is not an http(s) URL: " + cfg.ClashAPIURL)
	}
	ok("CLASH_API_URL=" + cfg.ClashAPIURL)

	if cfg.SectionsFile != "" {
		b, err := os.ReadFile(cfg.SectionsFile)
		if err != nil {
			fail("SECTIONS_FILE unreadable: " + err.Error())
		}
		secs, err := sections.Parse(b)
		if err != nil {
			fail("SECTIONS_FILE invalid: " + err.Error())
		}
		ok(fmt.Sprintf("SECTIONS_FILE=%s (%d sections)", cfg.SectionsFile, len(secs)))
	} else if len(cfg.Sections) == 0 {
		warn("SECTIONS empty; every selector group except GLOBAL will be checked.")
	}

	if cfg.CheckInterval == 0 {
		warn("CHECK_INTERVAL_MS is 0; checks only run on demand.")
	}

	if len(cfg.AllowedOrigins) == 0 {
		warn("ALLOWED_ORIGINS empty; any origin may call the API from a browser.")
	} else {
		ok("ALLOWED_ORIGINS=" + strings.Join(cfg.AllowedOrigins, ","))
	}

	ok("preflight passed")
}

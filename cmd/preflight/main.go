// cmd/preflight/main.go
package main

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"go.uber.org/multierr"

	"github.com/hamed0406/statusnotifier/internal/config"
)

func main() {
	failed := false
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		failed = true
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	cfg := config.FromEnv()

	for _, err := range multierr.Errors(cfg.Validate()) {
		fail(err.Error())
	}

	for name, raw := range map[string]string{"WEB_URL": cfg.WebURL, "APP_STATUS_URL": cfg.AppStatusURL} {
		if raw == "" {
			continue
		}
		if u, err := url.ParseRequestURI(raw); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			fail(name + " is not an http(s) URL: " + raw)
		} else {
			ok(name + "=" + raw)
		}
	}

	if cfg.DatabaseURL == "" {
		if err := writable(cfg.UptimeFile); err != nil {
			fail("UPTIME_FILE not writable: " + err.Error())
		} else {
			ok("UPTIME_FILE=" + cfg.UptimeFile)
		}
	} else {
		ok("DATABASE_URL present (uptime kept in Postgres)")
	}

	if _, err := config.LoadDisplay(cfg.DisplayFile); err != nil {
		fail(err.Error())
	} else if cfg.DisplayFile == "" {
		warn("DISPLAY_FILE empty; default titles and emoji will be used.")
	} else {
		ok("DISPLAY_FILE=" + cfg.DisplayFile)
	}

	if cfg.APIAddr == "" {
		warn("API_ADDR empty; status API disabled.")
	} else {
		ok("API_ADDR=" + cfg.APIAddr)
		if len(cfg.APIKeys) == 0 {
			warn("API_KEYS empty; status API is open to anyone who can reach it.")
		}
	}

	if cfg.SlackWebhook == "" {
		warn("SLACK_WEBHOOK_URL empty; health transitions are only logged.")
	}

	if failed {
		os.Exit(1)
	}
	ok("preflight passed")
}

// writable checks that the uptime file's directory accepts new files.
func writable(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".preflight-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}

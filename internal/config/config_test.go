//go:build !integration

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults applied", func(t *testing.T) {
		path := writeConfig(t, strings.Join([]string{
			"bot:",
			"  token: \"123:abc\"",
			"  admin_ids: [42]",
		}, "\n"))

		cfg, err := LoadConfig(path, true)
		if err != nil {
			t.Fatalf("LoadConfig: %v", err)
		}
		if cfg.Store.Path != "messages.yaml" {
			t.Errorf("store path default: %q", cfg.Store.Path)
		}
		if cfg.Media.Dir != "media" {
			t.Errorf("media dir default: %q", cfg.Media.Dir)
		}
		if cfg.Scheduler.Interval.Std() != time.Minute {
			t.Errorf("scheduler interval default: %v", cfg.Scheduler.Interval)
		}
		if cfg.Ops.Port != 8085 {
			t.Errorf("ops port default: %d", cfg.Ops.Port)
		}
		if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
			t.Errorf("log defaults: %+v", cfg.Log)
		}
		if !cfg.Runtime.Dev {
			t.Error("dev flag lost")
		}
	})

	t.Run("full document", func(t *testing.T) {
		path := writeConfig(t, strings.Join([]string{
			"bot:",
			"  token: \"123:abc\"",
			"  admin_ids: [1, 2]",
			"sender:",
			"  token: \"456:def\"",
			"store:",
			"  path: /var/lib/poster/messages.yaml",
			"scheduler:",
			"  interval: 30s",
			"redis:",
			"  url: localhost:6379",
			"  ttl: 1h",
			"ops:",
			"  port: 9090",
			"  api_key: sekrit",
		}, "\n"))

		cfg, err := LoadConfig(path, false)
		if err != nil {
			t.Fatalf("LoadConfig: %v", err)
		}
		if len(cfg.Bot.AdminIDs) != 2 {
			t.Errorf("admin ids: %v", cfg.Bot.AdminIDs)
		}
		if cfg.Sender.Token != "456:def" {
			t.Errorf("sender token: %q", cfg.Sender.Token)
		}
		if cfg.Scheduler.Interval.Std() != 30*time.Second {
			t.Errorf("interval: %v", cfg.Scheduler.Interval)
		}
		if cfg.Redis.TTL.Std() != time.Hour {
			t.Errorf("redis ttl: %v", cfg.Redis.TTL)
		}
		if cfg.Ops.Port != 9090 || cfg.Ops.APIKey != "sekrit" {
			t.Errorf("ops: %+v", cfg.Ops)
		}
	})

	t.Run("missing bot token", func(t *testing.T) {
		path := writeConfig(t, "bot:\n  admin_ids: [1]\n")
		if _, err := LoadConfig(path, false); err == nil {
			t.Fatal("expected error for missing token")
		}
	})

	t.Run("missing admin ids", func(t *testing.T) {
		path := writeConfig(t, "bot:\n  token: \"123:abc\"\n")
		if _, err := LoadConfig(path, false); err == nil {
			t.Fatal("expected error for missing admin ids")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"), false); err == nil {
			t.Fatal("expected error for missing file")
		}
	})
}

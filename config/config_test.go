package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

//nolint:gocyclo
func TestLoad(t *testing.T) {
	path := writeConfig(t, "config.yaml", `dispatch:
  generation_operations: ["generate", "image"]
  cooldown_seconds: 45
  servers:
    - name: gpu-a
      base_url: "https://gpu-a.example.com"
      cooldown_seconds: 90
  fallback_policy:
    type: list
    conf:
      tokens: ["t1", "t2"]
allocator:
  type: rpc
  conf:
    base_url: "https://db.example.com"
    api_key: "anon"
identity:
  source: file
  path: "/tmp/user.json"
logging:
  backend: rotating
  path: "/tmp/dispatch.log"
metrics:
  sinks:
    - type: "nop"
mqtt:
  enabled: true
  broker: "tcp://localhost:1883"
  qos: 1
api:
  address: ":9000"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"generation", len(cfg.Dispatch.GenerationOperations), 2},
		{"cooldown", cfg.Dispatch.CooldownSeconds, 45},
		{"retry default", cfg.Dispatch.RetryDelayMS, 2000},
		{"server", cfg.Dispatch.Servers[0].BaseURL, "https://gpu-a.example.com"},
		{"server cooldown", cfg.Dispatch.Servers[0].CooldownSeconds, 90},
		{"fallback policy", cfg.Dispatch.FallbackPolicy.Type, "list"},
		{"allocator", cfg.Allocator.Type, "rpc"},
		{"allocator conf", cfg.Allocator.Conf["base_url"], "https://db.example.com"},
		{"identity", cfg.Identity.Path, "/tmp/user.json"},
		{"logging", cfg.Logging.Backend, "rotating"},
		{"rotation default", cfg.Logging.MaxSizeMB, 10},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"mqtt", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"mqtt topic default", cfg.MQTT.TopicPrefix, "slotgate"},
		{"api", cfg.API.Address, ":9000"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadJSONWithEnvOverride(t *testing.T) {
	path := writeConfig(t, "config.json", `{"allocator":{"type":"sql","conf":{"dsn":"postgres://x"}},"identity":{"source":"env"}}`)
	t.Setenv("K_DISPATCH__COOLDOWN_SECONDS", "30")
	t.Setenv("K_LOGGING__BACKEND", "sqlite")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Dispatch.CooldownSeconds != 30 {
		t.Fatalf("env override not applied: %d", cfg.Dispatch.CooldownSeconds)
	}
	if cfg.Logging.Backend != "sqlite" || cfg.Logging.Path != "dispatch.db" {
		t.Fatalf("unexpected logging %+v", cfg.Logging)
	}
	if cfg.API.Address != ":8080" {
		t.Fatalf("api default not applied: %s", cfg.API.Address)
	}
}

func TestLoadErrors(t *testing.T) {
	cases := map[string]string{
		"missing allocator": `{"identity":{"source":"none"}}`,
		"bad server":        `{"allocator":{"type":"rpc"},"identity":{"source":"none"},"dispatch":{"servers":[{"base_url":"ftp://x"}]}}`,
		"bad backend":       `{"allocator":{"type":"rpc"},"identity":{"source":"none"},"logging":{"backend":"csv"}}`,
		"mqtt broker":       `{"allocator":{"type":"rpc"},"identity":{"source":"none"},"mqtt":{"enabled":true}}`,
		"identity source":   `{"allocator":{"type":"rpc"},"identity":{"source":"ldap"}}`,
	}
	for name, data := range cases {
		if _, err := Load(writeConfig(t, "c.json", data)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
	if _, err := Load(writeConfig(t, "c.toml", "")); err == nil {
		t.Errorf("expected unsupported format error")
	}
}

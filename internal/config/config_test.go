package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Server.Addr != ":8090" {
		t.Fatalf("addr = %q", c.Server.Addr)
	}
	if c.Log.Level != "info" {
		t.Fatalf("level = %q", c.Log.Level)
	}
	if c.Gateway.Kind != "memory" || c.Store.Driver != "memory" {
		t.Fatalf("kind=%q driver=%q", c.Gateway.Kind, c.Store.Driver)
	}
	if c.Store.Redis.Prefix != "wg:profile:" {
		t.Fatalf("prefix = %q", c.Store.Redis.Prefix)
	}
	if c.SessionTick() != time.Second {
		t.Fatalf("tick = %v", c.SessionTick())
	}
	if c.GatewayTimeout() != 10*time.Second {
		t.Fatalf("timeout = %v", c.GatewayTimeout())
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
app:
  app_env: dev
log:
  level: debug
server:
  addr: ":9999"
gateway:
  kind: rest
  base_url: https://id.example.com
  timeout: 3s
store:
  driver: redis
  redis:
    addr: localhost:6379
    db: 2
session:
  tick: 250ms
`
	if err := os.WriteFile(path, []byte(yaml), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.App.Env != "dev" || c.Log.Level != "debug" || c.Server.Addr != ":9999" {
		t.Fatalf("basic fields: %+v", c)
	}
	if c.Gateway.Kind != "rest" || c.Gateway.BaseURL != "https://id.example.com" {
		t.Fatalf("gateway: %+v", c.Gateway)
	}
	if c.GatewayTimeout() != 3*time.Second {
		t.Fatalf("timeout = %v", c.GatewayTimeout())
	}
	if c.Store.Driver != "redis" || c.Store.Redis.Addr != "localhost:6379" || c.Store.Redis.DB != 2 {
		t.Fatalf("store: %+v", c.Store)
	}
	if c.SessionTick() != 250*time.Millisecond {
		t.Fatalf("tick = %v", c.SessionTick())
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "PROD")
	t.Setenv("SERVER_ADDR", ":7070")
	t.Setenv("GATEWAY_KIND", " REST ")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("POSTGRES_DSN", "postgres://wg:wg@localhost/wg")
	t.Setenv("REDIS_DB", "5")
	t.Setenv("SESSION_TICK", "2s")

	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.App.Env != "prod" {
		t.Fatalf("env = %q, want lowercased", c.App.Env)
	}
	if c.Server.Addr != ":7070" {
		t.Fatalf("addr = %q", c.Server.Addr)
	}
	if c.Gateway.Kind != "rest" {
		t.Fatalf("kind = %q, want trimmed+lowercased", c.Gateway.Kind)
	}
	if c.Store.Driver != "postgres" || c.Store.Postgres.DSN != "postgres://wg:wg@localhost/wg" {
		t.Fatalf("store: %+v", c.Store)
	}
	if c.Store.Redis.DB != 5 {
		t.Fatalf("redis db = %d", c.Store.Redis.DB)
	}
	if c.SessionTick() != 2*time.Second {
		t.Fatalf("tick = %v", c.SessionTick())
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("SESSION_TICK", "not-a-duration")
	if _, err := Load(""); err == nil {
		t.Fatal("invalid tick should fail load")
	}
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Server.Addr != ":8090" {
		t.Fatalf("addr = %q", c.Server.Addr)
	}
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Bloque app (opcional en YAML). Si no está, queda vacío.
	App struct {
		// dev | staging | prod
		Env string `yaml:"app_env"`
	} `yaml:"app"`

	Log struct {
		Level string `yaml:"level"` // debug | info | warn | error
	} `yaml:"log"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Gateway struct {
		Kind    string `yaml:"kind"` // memory | rest
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"gateway"`

	Store struct {
		Driver string `yaml:"driver"` // memory | fs | redis | postgres
		FS     struct {
			Root string `yaml:"root"`
		} `yaml:"fs"`
		Redis struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
		Postgres struct {
			DSN string `yaml:"dsn"`
		} `yaml:"postgres"`
	} `yaml:"store"`

	Session struct {
		// Cadencia del tick del reloj de sesión. Solo frescura de UI,
		// no afecta correctitud de expiración.
		Tick string `yaml:"tick"`
	} `yaml:"session"`
}

// Load lee el YAML en path, aplica defaults, overrides por env y valida.
// Si path es vacío o el archivo no existe, parte de un config vacío
// (defaults + env), útil para el binario de desarrollo.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
		} else if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, err
		}
	}

	// sane defaults
	if c.Server.Addr == "" {
		c.Server.Addr = ":8090"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Gateway.Kind == "" {
		c.Gateway.Kind = "memory"
	}
	if c.Gateway.Timeout == "" {
		c.Gateway.Timeout = "10s"
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "memory"
	}
	if c.Store.FS.Root == "" {
		c.Store.FS.Root = "./data/walletgate/profiles"
	}
	if c.Store.Redis.Prefix == "" {
		c.Store.Redis.Prefix = "wg:profile:"
	}
	if c.Session.Tick == "" {
		c.Session.Tick = "1s"
	}

	// Overrides por env
	c.applyEnvOverrides()

	// validate string durations
	if _, err := time.ParseDuration(c.Gateway.Timeout); err != nil {
		return nil, err
	}
	if _, err := time.ParseDuration(c.Session.Tick); err != nil {
		return nil, err
	}

	return &c, nil
}

// GatewayTimeout retorna el timeout del gateway ya parseado.
func (c *Config) GatewayTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Gateway.Timeout)
	return d
}

// SessionTick retorna la cadencia del tick ya parseada.
func (c *Config) SessionTick() time.Duration {
	d, _ := time.ParseDuration(c.Session.Tick)
	return d
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

// applyEnvOverrides: pisa config.yaml con variables de entorno.
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = strings.ToLower(v)
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}

	// GATEWAY
	if v, ok := getEnvStr("GATEWAY_KIND"); ok {
		c.Gateway.Kind = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := getEnvStr("GATEWAY_BASE_URL"); ok {
		c.Gateway.BaseURL = v
	}
	if v, ok := getEnvStr("GATEWAY_TIMEOUT"); ok {
		c.Gateway.Timeout = v
	}
	if v, ok := getEnvStr("GATEWAY_API_KEY"); ok {
		c.Gateway.APIKey = v
	}

	// STORE
	if v, ok := getEnvStr("STORE_DRIVER"); ok {
		c.Store.Driver = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := getEnvStr("STORE_FS_ROOT"); ok {
		c.Store.FS.Root = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Store.Redis.Addr = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Store.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PREFIX"); ok {
		c.Store.Redis.Prefix = v
	}
	if v, ok := getEnvStr("POSTGRES_DSN"); ok {
		c.Store.Postgres.DSN = v
	}

	// SESSION
	if v, ok := getEnvStr("SESSION_TICK"); ok {
		c.Session.Tick = v
	}
}

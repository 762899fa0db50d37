// Package config resolves gateway configuration from defaults,
// AUTOGEN_MCP_* environment variables, and CLI flags, in increasing
// precedence. A .env file in the working directory is loaded when
// present.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Transport kinds.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
	TransportHTTP  = "http"
)

// Config is the resolved gateway configuration.
type Config struct {
	Transport string
	Host      string
	Port      int

	// Python is the backend interpreter; BackendScript is the entry
	// point invoked per tool call.
	Python        string
	BackendScript string

	LogLevel  string
	LogFormat string
}

// Addr returns the HTTP listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SetDefaults registers defaults and environment binding on v. Flag
// binding is done by the caller so flags override the environment.
func SetDefaults(v *viper.Viper) {
	// Missing .env is the normal case, not an error.
	_ = godotenv.Load()

	v.SetEnvPrefix("autogen_mcp")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("transport", TransportStdio)
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("port", 8080)
	v.SetDefault("python", "python3")
	v.SetDefault("backend", "src/autogen_mcp/server.py")
	v.SetDefault("log-level", "info")
	v.SetDefault("log-format", "text")
}

// Load resolves and validates the configuration from v.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Transport:     v.GetString("transport"),
		Host:          v.GetString("host"),
		Port:          v.GetInt("port"),
		Python:        v.GetString("python"),
		BackendScript: v.GetString("backend"),
		LogLevel:      v.GetString("log-level"),
		LogFormat:     v.GetString("log-format"),
	}

	switch cfg.Transport {
	case TransportStdio, TransportSSE, TransportHTTP:
	default:
		return Config{}, fmt.Errorf("invalid transport %q (want stdio, sse, or http)", cfg.Transport)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.Python == "" {
		return Config{}, fmt.Errorf("backend interpreter must not be empty")
	}
	if cfg.BackendScript == "" {
		return Config{}, fmt.Errorf("backend script must not be empty")
	}
	return cfg, nil
}

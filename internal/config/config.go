// Package config loads, defaults, and validates zomatooo configuration.
package config

import (
	"os"
	"strconv"
	"strings"
)

// ConfigError wraps configuration problems.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return "config: " + e.Message
}

// Defaults returns the baseline configuration.
func Defaults() Config {
	temp := 0.7
	return Config{
		Server: ServerConfig{
			Port:      8080,
			Bind:      "loopback",
			StaticDir: "static",
		},
		Ordering: OrderingConfig{
			Endpoint:       "https://mcp-server.zomato.com/mcp",
			TimeoutSeconds: 20,
		},
		LLM: LLMConfig{
			Provider:        "gemini",
			Model:           "gemini-2.0-flash-exp",
			Temperature:     &temp,
			MaxOutputTokens: 1024,
			TimeoutSeconds:  60,
		},
		Session: SessionConfig{
			Store:       "memory",
			IdleMinutes: 60,
		},
		Speech: SpeechConfig{
			Voice: "en-IN-NeerjaNeural",
		},
		Logging: LoggingConfig{
			Level:        "info",
			ConsoleStyle: "pretty",
		},
	}
}

// applyDefaults fills zero values left after unmarshaling a partial file.
func applyDefaults(cfg *Config) {
	def := Defaults()

	if cfg.Server.Port == 0 {
		cfg.Server.Port = def.Server.Port
	}
	if cfg.Server.Bind == "" {
		cfg.Server.Bind = def.Server.Bind
	}
	if cfg.Server.StaticDir == "" {
		cfg.Server.StaticDir = def.Server.StaticDir
	}
	if cfg.Ordering.Endpoint == "" {
		cfg.Ordering.Endpoint = def.Ordering.Endpoint
	}
	if cfg.Ordering.TimeoutSeconds == 0 {
		cfg.Ordering.TimeoutSeconds = def.Ordering.TimeoutSeconds
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = def.LLM.Provider
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = def.LLM.Model
	}
	if cfg.LLM.Temperature == nil {
		cfg.LLM.Temperature = def.LLM.Temperature
	}
	if cfg.LLM.MaxOutputTokens == 0 {
		cfg.LLM.MaxOutputTokens = def.LLM.MaxOutputTokens
	}
	if cfg.LLM.TimeoutSeconds == 0 {
		cfg.LLM.TimeoutSeconds = def.LLM.TimeoutSeconds
	}
	if cfg.Session.Store == "" {
		cfg.Session.Store = def.Session.Store
	}
	if cfg.Session.IdleMinutes == 0 {
		cfg.Session.IdleMinutes = def.Session.IdleMinutes
	}
	if cfg.Speech.Voice == "" {
		cfg.Speech.Voice = def.Speech.Voice
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
	if cfg.Logging.ConsoleStyle == "" {
		cfg.Logging.ConsoleStyle = def.Logging.ConsoleStyle
	}
}

// applyEnvOverrides maps well-known environment variables onto config
// fields. Environment wins over the file for credentials so keys never
// have to live on disk.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("ZOMATO_MCP_URL"); v != "" {
		cfg.Ordering.Endpoint = v
	}
	if v := os.Getenv("MCP_CLIENT_ID"); v != "" {
		cfg.OAuth.ClientID = v
	}
	if v := os.Getenv("MCP_CLIENT_SECRET"); v != "" {
		cfg.OAuth.ClientSecret = v
	}
	if v := os.Getenv("ZOMATOOO_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("ZOMATOOO_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
}

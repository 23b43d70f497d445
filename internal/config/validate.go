package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	// Server validation
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		issues = append(issues, ValidationIssue{
			Path:    "server.port",
			Message: fmt.Sprintf("port must be 0-65535, got %d", cfg.Server.Port),
		})
	}

	validBinds := []string{"auto", "lan", "loopback", "custom"}
	if cfg.Server.Bind != "" && !slices.Contains(validBinds, cfg.Server.Bind) {
		issues = append(issues, ValidationIssue{
			Path:    "server.bind",
			Message: fmt.Sprintf("must be one of %v, got %q", validBinds, cfg.Server.Bind),
		})
	}
	if cfg.Server.Bind == "custom" && cfg.Server.BindHost == "" {
		issues = append(issues, ValidationIssue{
			Path:    "server.bindHost",
			Message: "required when bind: custom",
		})
	}

	// Ordering service validation
	if cfg.Ordering.Endpoint == "" {
		issues = append(issues, ValidationIssue{
			Path:    "ordering.endpoint",
			Message: "endpoint is required",
		})
	} else if !strings.HasPrefix(cfg.Ordering.Endpoint, "http://") && !strings.HasPrefix(cfg.Ordering.Endpoint, "https://") {
		issues = append(issues, ValidationIssue{
			Path:    "ordering.endpoint",
			Message: fmt.Sprintf("must be an http(s) URL, got %q", cfg.Ordering.Endpoint),
		})
	}
	if cfg.Ordering.TimeoutSeconds < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "ordering.timeoutSeconds",
			Message: fmt.Sprintf("must be non-negative, got %d", cfg.Ordering.TimeoutSeconds),
		})
	}

	// LLM validation
	validProviders := []string{"gemini"}
	if cfg.LLM.Provider != "" && !slices.Contains(validProviders, cfg.LLM.Provider) {
		issues = append(issues, ValidationIssue{
			Path:    "llm.provider",
			Message: fmt.Sprintf("must be one of %v, got %q", validProviders, cfg.LLM.Provider),
		})
	}
	if cfg.LLM.Model == "" {
		issues = append(issues, ValidationIssue{
			Path:    "llm.model",
			Message: "model is required",
		})
	}
	if cfg.LLM.Temperature != nil && (*cfg.LLM.Temperature < 0 || *cfg.LLM.Temperature > 2) {
		issues = append(issues, ValidationIssue{
			Path:    "llm.temperature",
			Message: fmt.Sprintf("must be 0-2, got %v", *cfg.LLM.Temperature),
		})
	}
	if cfg.LLM.MaxOutputTokens < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "llm.maxOutputTokens",
			Message: fmt.Sprintf("must be non-negative, got %d", cfg.LLM.MaxOutputTokens),
		})
	}

	// Session validation
	validStores := []string{"memory", "sqlite"}
	if cfg.Session.Store != "" && !slices.Contains(validStores, cfg.Session.Store) {
		issues = append(issues, ValidationIssue{
			Path:    "session.store",
			Message: fmt.Sprintf("must be one of %v, got %q", validStores, cfg.Session.Store),
		})
	}
	if cfg.Session.IdleMinutes < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "session.idleMinutes",
			Message: fmt.Sprintf("must be non-negative, got %d", cfg.Session.IdleMinutes),
		})
	}

	// Speech validation (only if enabled)
	if cfg.Speech.Enabled {
		if cfg.Speech.Endpoint == "" {
			issues = append(issues, ValidationIssue{
				Path:    "speech.endpoint",
				Message: "required when speech is enabled",
			})
		}
		if cfg.Speech.Voice == "" {
			issues = append(issues, ValidationIssue{
				Path:    "speech.voice",
				Message: "required when speech is enabled",
			})
		}
	}

	// Logging validation
	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}

	validConsoleStyles := []string{"pretty", "compact", "json"}
	if cfg.Logging.ConsoleStyle != "" && !slices.Contains(validConsoleStyles, cfg.Logging.ConsoleStyle) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.consoleStyle",
			Message: fmt.Sprintf("must be one of %v, got %q", validConsoleStyles, cfg.Logging.ConsoleStyle),
		})
	}

	return issues
}

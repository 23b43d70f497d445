package config

// Config is the root configuration for zomatooo.
type Config struct {
	Server   ServerConfig   `yaml:"server,omitempty"`
	Ordering OrderingConfig `yaml:"ordering,omitempty"`
	LLM      LLMConfig      `yaml:"llm,omitempty"`
	OAuth    OAuthConfig    `yaml:"oauth,omitempty"`
	Session  SessionConfig  `yaml:"session,omitempty"`
	Speech   SpeechConfig   `yaml:"speech,omitempty"`
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
}

// ServerConfig controls the HTTP chat server.
type ServerConfig struct {
	Port      int    `yaml:"port,omitempty"`
	Bind      string `yaml:"bind,omitempty"` // "loopback" | "lan" | "custom"
	BindHost  string `yaml:"bindHost,omitempty"`
	StaticDir string `yaml:"staticDir,omitempty"` // rendered voice files live here
}

// OrderingConfig points at the remote ordering service's MCP endpoint.
type OrderingConfig struct {
	Endpoint       string `yaml:"endpoint"`
	TimeoutSeconds int    `yaml:"timeoutSeconds,omitempty"` // per tool invocation
}

// LLMConfig selects and configures the model provider.
type LLMConfig struct {
	Provider        string   `yaml:"provider,omitempty"` // "gemini"
	APIKey          string   `yaml:"apiKey,omitempty"`
	Model           string   `yaml:"model,omitempty"`
	Fallbacks       []string `yaml:"fallbacks,omitempty"`
	Temperature     *float64 `yaml:"temperature,omitempty"`
	MaxOutputTokens int      `yaml:"maxOutputTokens,omitempty"`
	TimeoutSeconds  int      `yaml:"timeoutSeconds,omitempty"` // per generation call
}

// OAuthConfig configures token exchange with the ordering service.
type OAuthConfig struct {
	ClientID     string `yaml:"clientId,omitempty"`
	ClientSecret string `yaml:"clientSecret,omitempty"`
	AuthURL      string `yaml:"authUrl,omitempty"`
	TokenURL     string `yaml:"tokenUrl,omitempty"`
	RedirectURL  string `yaml:"redirectUrl,omitempty"`
}

// SessionConfig defines session storage and expiry behavior.
type SessionConfig struct {
	Store       string `yaml:"store,omitempty"` // "memory" | "sqlite"
	IdleMinutes int    `yaml:"idleMinutes,omitempty"`
}

// SpeechConfig controls text-to-speech rendering of replies.
type SpeechConfig struct {
	Enabled  bool   `yaml:"enabled,omitempty"`
	Endpoint string `yaml:"endpoint,omitempty"`
	Voice    string `yaml:"voice,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level,omitempty"`        // "silent".."trace"
	ConsoleStyle string `yaml:"consoleStyle,omitempty"` // "pretty" | "json"
}

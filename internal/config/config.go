package config

import "time"

// Config is the root configuration for pal.
type Config struct {
	Gateway GatewayConfig `json:"gateway" yaml:"gateway"`
	Model   ModelConfig   `json:"model" yaml:"model"`
	Memory  MemoryConfig  `json:"memory" yaml:"memory"`
	Storage StorageConfig `json:"storage" yaml:"storage"`
	Events  EventsConfig  `json:"events" yaml:"events"`
}

// GatewayConfig holds the web server settings.
type GatewayConfig struct {
	Host string `json:"host" yaml:"host"`
	Port int    `json:"port" yaml:"port"`
}

// ModelConfig configures the hosted model gateway.
type ModelConfig struct {
	Name        string     `json:"name" yaml:"name"`
	Auth        AuthConfig `json:"auth" yaml:"auth"`
	Temperature *float32   `json:"temperature,omitempty" yaml:"temperature,omitempty"` // nil means default; 0 is honoured
	MaxTokens   int32      `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	Timeout     Duration   `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// AuthConfig configures API key resolution.
type AuthConfig struct {
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"` // direct key, ${VAR} or ${{ .Env.VAR }} template
}

// MemoryConfig bounds the conversation buffer.
type MemoryConfig struct {
	MaxMessages int `json:"max_messages" yaml:"max_messages"`
}

// StorageConfig locates the SQLite database.
type StorageConfig struct {
	Path string `json:"path" yaml:"path"` // default: $PAL_PATH/pal.db
}

// EventsConfig holds event bus settings.
type EventsConfig struct {
	BufferSize int    `json:"buffer_size" yaml:"buffer_size"`
	LogDir     string `json:"log_dir,omitempty" yaml:"log_dir,omitempty"` // default: $PAL_PATH/logs
}

// Duration wraps time.Duration for JSON and YAML unmarshaling.
type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	// Remove quotes
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	dur, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

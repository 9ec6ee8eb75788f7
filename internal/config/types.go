package config

import "time"

// Config represents the main configuration structure. The engine document
// (filters and profiles) sits at the top level of the file next to the
// application settings
type Config struct {
	Document  `yaml:",inline" mapstructure:",squash"`
	Logging   LoggingConfig   `yaml:"logging" mapstructure:"logging"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	WebSocket WebSocketConfig `yaml:"websocket" mapstructure:"websocket"`
}

// Document is the transformation configuration: named filters for reuse by
// reference, the ordered profile list and the optional profile selections
type Document struct {
	Filters               map[string]CharacterFilter `yaml:"filters" mapstructure:"filters"`
	Profiles              []Profile                  `yaml:"profiles" mapstructure:"profiles" validate:"unique=Name,dive"`
	DefaultProfile        string                     `yaml:"default_profile" mapstructure:"default_profile"`
	GUIReplacementProfile string                     `yaml:"gui_replacement_profile" mapstructure:"gui_replacement_profile"`
}

// CharacterFilter is a list of single characters and inclusive ranges
type CharacterFilter struct {
	Ranges []CharacterRange `yaml:"ranges" mapstructure:"ranges"`
}

// CharacterRange holds either Single or both Start and End, as codepoints
type CharacterRange struct {
	Single *uint32 `yaml:"single,omitempty" mapstructure:"single"`
	Start  *uint32 `yaml:"start,omitempty" mapstructure:"start"`
	End    *uint32 `yaml:"end,omitempty" mapstructure:"end"`
}

// SingleChar returns a range entry matching exactly one codepoint
func SingleChar(codepoint uint32) CharacterRange {
	return CharacterRange{Single: &codepoint}
}

// CharRange returns a range entry matching start..end inclusive
func CharRange(start, end uint32) CharacterRange {
	return CharacterRange{Start: &start, End: &end}
}

// Profile is a named, ordered list of transformations
type Profile struct {
	Name            string           `yaml:"name" mapstructure:"name" validate:"required"`
	DisplayName     string           `yaml:"display_name,omitempty" mapstructure:"display_name"`
	Description     string           `yaml:"description,omitempty" mapstructure:"description"`
	Transformations []Transformation `yaml:"transformations" mapstructure:"transformations" validate:"dive"`
}

// Transformation pairs filter references with one action
type Transformation struct {
	Filters []FilterRef `yaml:"filters" mapstructure:"filters" validate:"dive"`
	Action  Action      `yaml:"action" mapstructure:"action"`
}

// FilterRef points at a named filter or carries an inline one
type FilterRef struct {
	Ref    string           `yaml:"ref,omitempty" mapstructure:"ref" validate:"required_without=Filter,excluded_with=Filter"`
	Filter *CharacterFilter `yaml:"filter,omitempty" mapstructure:"filter" validate:"required_without=Ref"`
}

// ActionKind names the action variant
type ActionKind string

const (
	ActionRemove  ActionKind = "remove"
	ActionReplace ActionKind = "replace"
)

// Action is the config-level action descriptor. In files it is written as
// the bare string "remove" or as a map {replace: <template>}
type Action struct {
	Kind     ActionKind `mapstructure:"kind" validate:"oneof=remove replace"`
	Template string     `mapstructure:"template"`
}

// RemoveAction returns the remove descriptor
func RemoveAction() Action {
	return Action{Kind: ActionRemove}
}

// ReplaceAction returns a replace descriptor for the given template
func ReplaceAction(template string) Action {
	return Action{Kind: ActionReplace, Template: template}
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" mapstructure:"format" validate:"oneof=json console"` // json or console
	File   struct {
		Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
		Path    string `yaml:"path" mapstructure:"path" validate:"required_if=Enabled true"`
	} `yaml:"file" mapstructure:"file"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port         int           `yaml:"port" mapstructure:"port" validate:"min=1,max=65535"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes" validate:"min=1"`
	// CORSOrigins lists browser origins allowed to call the API. Empty
	// disables CORS headers
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	// TrustProxyHeaders keys clients on X-Forwarded-For / X-Real-IP. Only
	// enable it behind a proxy that overwrites those headers
	TrustProxyHeaders bool `yaml:"trust_proxy_headers" mapstructure:"trust_proxy_headers"`
	RateLimit         struct {
		Enabled           bool    `yaml:"enabled" mapstructure:"enabled"`
		RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second" validate:"gte=0"`
		Burst             int     `yaml:"burst" mapstructure:"burst" validate:"gte=0"`
	} `yaml:"rate_limit" mapstructure:"rate_limit"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
		Path    string `yaml:"path" mapstructure:"path" validate:"required_if=Enabled true"`
	} `yaml:"metrics" mapstructure:"metrics"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Path     string `yaml:"path" mapstructure:"path" validate:"required_if=Enabled true"`
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
	Events   struct {
		BroadcastClean       bool `yaml:"broadcast_clean" mapstructure:"broadcast_clean"`
		BroadcastDecode      bool `yaml:"broadcast_decode" mapstructure:"broadcast_decode"`
		BroadcastSystem      bool `yaml:"broadcast_system" mapstructure:"broadcast_system"`
		BroadcastConnections bool `yaml:"broadcast_connections" mapstructure:"broadcast_connections"`
	} `yaml:"events" mapstructure:"events"`
}

// GetDefaults returns a configuration with sensible defaults
func GetDefaults() *Config {
	cfg := &Config{}

	cfg.Logging.Level = "warn"
	cfg.Logging.Format = "console"
	cfg.Logging.File.Path = "logs/clipboard-cleaner.log"

	cfg.Server.Port = 8765
	cfg.Server.ReadTimeout = 15 * time.Second
	cfg.Server.WriteTimeout = 15 * time.Second
	cfg.Server.IdleTimeout = 60 * time.Second
	cfg.Server.MaxBodyBytes = 4 << 20
	cfg.Server.RateLimit.Enabled = true
	cfg.Server.RateLimit.RequestsPerSecond = 50
	cfg.Server.RateLimit.Burst = 100
	cfg.Server.Metrics.Enabled = true
	cfg.Server.Metrics.Path = "/metrics"

	cfg.WebSocket.Enabled = true
	cfg.WebSocket.Path = "/ws"
	cfg.WebSocket.Events.BroadcastClean = true
	cfg.WebSocket.Events.BroadcastDecode = true
	cfg.WebSocket.Events.BroadcastSystem = true
	cfg.WebSocket.Events.BroadcastConnections = true

	return cfg
}

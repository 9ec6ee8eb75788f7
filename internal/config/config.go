package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// AppName is the base name of configuration files and directories
const AppName = "clipboard-cleaner"

//go:embed default-config.yaml
var defaultDocument []byte

// DefaultDocument returns the raw YAML of the built-in configuration
func DefaultDocument() []byte {
	return bytes.Clone(defaultDocument)
}

// Loader reads configuration through its own viper instance so several
// loaders can coexist (tests, reloads)
type Loader struct {
	v    *viper.Viper
	path string

	mu       sync.Mutex
	embedded bool
}

// NewLoader prepares a loader. An empty path searches the default locations
func NewLoader(configPath string) *Loader {
	v := viper.New()

	v.SetConfigName(AppName)
	for _, dir := range SearchPaths() {
		v.AddConfigPath(dir)
	}

	// Environment variable overrides
	v.SetEnvPrefix("CLIPCLEANER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	registerDefaults(v, GetDefaults())

	if configPath != "" {
		v.SetConfigFile(configPath)
	}

	return &Loader{v: v, path: configPath}
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	return NewLoader(configPath).Load()
}

// SearchPaths lists the directories searched for a configuration file
func SearchPaths() []string {
	paths := []string{".", "etc", "conf"}

	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, AppName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, "."+AppName))
	}

	return append(paths, filepath.Join("/etc", AppName))
}

// Load reads the configuration file, falling back to the embedded default
// document when no file is found in the search paths
func (l *Loader) Load() (*Config, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		l.v.SetConfigType("yaml")
		if err := l.v.ReadConfig(bytes.NewReader(defaultDocument)); err != nil {
			return nil, fmt.Errorf("failed to read default config: %w", err)
		}
		l.embedded = true
	}

	return l.decode()
}

// UsedFile returns the file the configuration came from, or "" when the
// embedded default document is in use
func (l *Loader) UsedFile() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.embedded {
		return ""
	}
	return l.v.ConfigFileUsed()
}

func (l *Loader) decode() (*Config, error) {
	config := GetDefaults()

	if err := l.v.Unmarshal(config, viper.DecodeHook(decodeHook())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Watch starts watching the configuration file for changes. Invalid
// revisions are passed to onError and the previous configuration stays
// in effect
func (l *Loader) Watch(callback func(*Config), onError func(error)) error {
	if l.UsedFile() == "" {
		return errors.New("no configuration file to watch")
	}

	l.v.OnConfigChange(func(e fsnotify.Event) {
		l.mu.Lock()
		newConfig, err := l.decode()
		l.mu.Unlock()

		if err != nil {
			if onError != nil {
				onError(fmt.Errorf("reload %s: %w", e.Name, err))
			}
			return
		}

		callback(newConfig)
	})
	l.v.WatchConfig()

	return nil
}

func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		actionHook(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

var validate = validator.New()

// validateConfig validates the loaded configuration
func validateConfig(config *Config) error {
	if err := validate.Struct(config); err != nil {
		return err
	}

	for _, p := range config.Profiles {
		for i, t := range p.Transformations {
			if t.Action.Kind == ActionReplace && t.Action.Template == "" {
				return fmt.Errorf("profile %q: transformation %d: replace action without template", p.Name, i)
			}
		}
	}

	return nil
}

func registerDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.file.enabled", d.Logging.File.Enabled)
	v.SetDefault("logging.file.path", d.Logging.File.Path)

	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.idle_timeout", d.Server.IdleTimeout)
	v.SetDefault("server.max_body_bytes", d.Server.MaxBodyBytes)
	v.SetDefault("server.rate_limit.enabled", d.Server.RateLimit.Enabled)
	v.SetDefault("server.rate_limit.requests_per_second", d.Server.RateLimit.RequestsPerSecond)
	v.SetDefault("server.rate_limit.burst", d.Server.RateLimit.Burst)
	v.SetDefault("server.cors_origins", d.Server.CORSOrigins)
	v.SetDefault("server.trust_proxy_headers", d.Server.TrustProxyHeaders)
	v.SetDefault("server.metrics.enabled", d.Server.Metrics.Enabled)
	v.SetDefault("server.metrics.path", d.Server.Metrics.Path)

	v.SetDefault("websocket.enabled", d.WebSocket.Enabled)
	v.SetDefault("websocket.path", d.WebSocket.Path)
	v.SetDefault("websocket.username", d.WebSocket.Username)
	v.SetDefault("websocket.password", d.WebSocket.Password)
	v.SetDefault("websocket.events.broadcast_clean", d.WebSocket.Events.BroadcastClean)
	v.SetDefault("websocket.events.broadcast_decode", d.WebSocket.Events.BroadcastDecode)
	v.SetDefault("websocket.events.broadcast_system", d.WebSocket.Events.BroadcastSystem)
	v.SetDefault("websocket.events.broadcast_connections", d.WebSocket.Events.BroadcastConnections)
}

// Package config loads npctl settings with viper: a YAML file, NPCTL_*
// environment variables and command line flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"simplenp/npos/kbd"
	"simplenp/npos/proto"
)

const (
	appName  = "npctl"
	envPref  = "NPCTL"
	dirPerm  = 0o755
	filePerm = 0o644
)

// Config is the npctl configuration file.
type Config struct {
	Device  DeviceConfig  `mapstructure:"device" yaml:"device" json:"device"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging" json:"logging"`
	Store   StoreConfig   `mapstructure:"store" yaml:"store" json:"store"`
	// Keymap programs the user function keys on apply.
	Keymap []UFNConfig `mapstructure:"keymap" yaml:"keymap" json:"keymap,omitempty"`
}

// DeviceConfig locates the keypad.
type DeviceConfig struct {
	// Port is a serial device path or tcp://host:port for the simulator.
	Port    string        `mapstructure:"port" yaml:"port" json:"port" jsonschema:"example=/dev/ttyACM0,example=tcp://127.0.0.1:7878"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" json:"timeout" jsonschema:"type=string,example=2s"`
}

// LoggingConfig configures the zerolog output.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level" jsonschema:"enum=trace,enum=debug,enum=info,enum=warn,enum=error"`
	Format string `mapstructure:"format" yaml:"format" json:"format" jsonschema:"enum=console,enum=json"`
}

// StoreConfig locates the key event log.
type StoreConfig struct {
	Path string `mapstructure:"path" yaml:"path" json:"path"`
}

// UFNConfig programs one user function key.
type UFNConfig struct {
	UFN  int      `mapstructure:"ufn" yaml:"ufn" json:"ufn" jsonschema:"minimum=1,maximum=5"`
	Key  string   `mapstructure:"key" yaml:"key" json:"key" jsonschema:"example=F13,example=0x68"`
	Mods []string `mapstructure:"mods" yaml:"mods" json:"mods,omitempty"`
	Mode string   `mapstructure:"mode" yaml:"mode" json:"mode,omitempty" jsonschema:"enum=none,enum=toggle,enum=oneshot"`
}

// Request converts the entry to a SET_UFN request. UFN numbers are 1-based
// in the file and 0-based on the wire.
func (u UFNConfig) Request() (proto.SetUFN, error) {
	if u.UFN < 1 || u.UFN > len(kbd.UserFnKeys) {
		return proto.SetUFN{}, fmt.Errorf("ufn %d: out of range 1-%d", u.UFN, len(kbd.UserFnKeys))
	}
	code, err := ParseKey(u.Key)
	if err != nil {
		return proto.SetUFN{}, fmt.Errorf("ufn %d: %w", u.UFN, err)
	}
	mods, err := ParseMods(u.Mods)
	if err != nil {
		return proto.SetUFN{}, fmt.Errorf("ufn %d: %w", u.UFN, err)
	}
	mode, err := ParseMode(u.Mode)
	if err != nil {
		return proto.SetUFN{}, fmt.Errorf("ufn %d: %w", u.UFN, err)
	}
	return proto.SetUFN{UFN: uint8(u.UFN - 1), Code: code, Mod: mods, Toggle: uint8(mode)}, nil
}

// Validate checks every keymap entry.
func (c *Config) Validate() error {
	var errs []error
	seen := make(map[int]bool)
	for _, u := range c.Keymap {
		if _, err := u.Request(); err != nil {
			errs = append(errs, err)
			continue
		}
		if seen[u.UFN] {
			errs = append(errs, fmt.Errorf("ufn %d: listed twice", u.UFN))
		}
		seen[u.UFN] = true
	}
	return errors.Join(errs...)
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Device:  DeviceConfig{Port: "/dev/ttyACM0", Timeout: 2 * time.Second},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Manager loads and watches the configuration.
type Manager struct {
	mu        sync.RWMutex
	viper     *viper.Viper
	config    *Config
	callbacks []func(*Config)
	watching  bool
}

// NewManager returns a manager reading path, or npctl.yaml from the config
// directory when path is empty.
func NewManager(path string) (*Manager, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		dir, err := GetConfigDir()
		if err != nil {
			return nil, err
		}
		v.SetConfigName(appName)
		v.AddConfigPath(dir)
	}

	v.SetEnvPrefix(envPref)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := DefaultConfig()
	v.SetDefault("device.port", def.Device.Port)
	v.SetDefault("device.timeout", def.Device.Timeout)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)
	v.SetDefault("store.path", "")

	return &Manager{viper: v}, nil
}

// Viper exposes the underlying instance so commands can bind flags.
func (m *Manager) Viper() *viper.Viper { return m.viper }

// Load reads the file if there is one. A missing file leaves the defaults.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadLocked()
}

func (m *Manager) loadLocked() error {
	if err := m.viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := m.viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Store.Path == "" {
		p, err := GetDatabaseFile()
		if err != nil {
			return err
		}
		cfg.Store.Path = p
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	m.config = cfg
	return nil
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.config == nil {
		return DefaultConfig()
	}
	c := *m.config
	c.Keymap = append([]UFNConfig(nil), m.config.Keymap...)
	return &c
}

// File returns the config file in use, if any.
func (m *Manager) File() string { return m.viper.ConfigFileUsed() }

// Watch reloads the file whenever it changes and passes each valid result
// to the OnConfigChange callbacks. Invalid edits are reported to onErr and
// keep the previous configuration.
func (m *Manager) Watch(onErr func(error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.watching {
		return
	}

	m.viper.OnConfigChange(func(_ fsnotify.Event) {
		m.mu.Lock()
		prev := m.config
		err := m.loadLocked()
		if err != nil {
			m.config = prev
		}
		cfg := m.config
		callbacks := slices.Clone(m.callbacks)
		m.mu.Unlock()

		if err != nil {
			if onErr != nil {
				onErr(err)
			}
			return
		}
		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	m.viper.WatchConfig()
	m.watching = true
}

// OnConfigChange registers fn for Watch.
func (m *Manager) OnConfigChange(fn func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, fn)
}

// GetConfigDir returns $XDG_CONFIG_HOME/npctl.
func GetConfigDir() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("home dir: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, appName), nil
}

// GetDatabaseFile returns $XDG_DATA_HOME/npctl/events.db.
func GetDatabaseFile() (string, error) {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("home dir: %w", err)
		}
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, appName, "events.db"), nil
}

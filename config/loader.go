package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// ZENCLI_PLAYER_BACKEND for player.backend.
const EnvPrefix = "ZENCLI"

// Loader reads config.toml through its own viper instance so tests can
// point it at an in-memory filesystem.
type Loader struct {
	v        *viper.Viper
	explicit bool
}

// NewLoader creates a loader over fs. An empty file searches
// $HOME/.config/zencli/config.toml and ./config.toml.
func NewLoader(fs afero.Fs, file string) *Loader {
	v := viper.New()
	v.SetFs(fs)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath("$HOME/.config/zencli/")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultConfig()
	v.SetDefault("player.backend", defaults.Player.Backend)
	v.SetDefault("player.load_timeout", defaults.Player.LoadTimeout)
	v.SetDefault("player.teardown_timeout", defaults.Player.TeardownTimeout)
	v.SetDefault("player.http_timeout", defaults.Player.HTTPTimeout)
	v.SetDefault("ui.table_name_width", defaults.UI.TableNameWidth)
	v.SetDefault("ui.show_artwork", defaults.UI.ShowArtwork)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.dir", defaults.Log.Dir)
	v.SetDefault("guard.enabled", defaults.Guard.Enabled)
	v.SetDefault("guard.interval", defaults.Guard.Interval)

	return &Loader{v: v, explicit: file != ""}
}

// Load reads the configuration from the default locations
func Load(file string) (*Config, error) {
	return NewLoader(afero.NewOsFs(), file).Load()
}

// Set overrides a key, typically from a command line flag
func (l *Loader) Set(key string, value any) {
	l.v.Set(key, value)
}

// ConfigFile returns the file that was read, empty when running on defaults
func (l *Loader) ConfigFile() string {
	return l.v.ConfigFileUsed()
}

// Load reads the config file, if any, and returns the merged Config
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if l.explicit || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return l.decode()
}

// Watch reloads the config whenever the file changes on disk and hands the
// result to onChange. It only works with the OS filesystem.
func (l *Loader) Watch(onChange func(*Config, error)) {
	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		onChange(l.decode())
	})
	l.v.WatchConfig()
}

func (l *Loader) decode() (*Config, error) {
	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := l.v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

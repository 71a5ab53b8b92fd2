package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/samber/lo"

	"github.com/llehouerou/lumen/internal/playback"
)

type Config struct {
	// StatePath overrides the session database location.
	StatePath string `koanf:"state_path"`

	Playback PlaybackConfig `koanf:"playback"`

	Logs LogsConfig `koanf:"logs"`

	// Last.fm scrobbling of audio items (enabled when configured)
	Lastfm LastfmConfig `koanf:"lastfm"`

	MPRIS         ToggleConfig   `koanf:"mpris"`
	Notifications ToggleConfig   `koanf:"notifications"`
	Channels      ChannelsConfig `koanf:"channels"`
}

// PlaybackConfig holds the user's playback preferences.
type PlaybackConfig struct {
	AudioLanguage    string `koanf:"audio_language"`     // ISO 639-2 code, e.g. "eng"
	NextUp           string `koanf:"next_up"`            // "extended", "minimal" or "disabled" (default: "extended")
	StartDelayMS     int    `koanf:"start_delay_ms"`     // delay before starting the engine (default: 0)
	LiveDirectPlay   *bool  `koanf:"live_direct_play"`   // allow direct streaming of live TV (default: true)
	SkipForwardMS    int    `koanf:"skip_forward_ms"`    // default: 30000
	SkipBackMS       int    `koanf:"skip_back_ms"`       // default: 10000
	MaxAudioChannels int    `koanf:"max_audio_channels"` // 0 lets the server decide
}

// LogsConfig controls log output.
type LogsConfig struct {
	Level string `koanf:"level"` // logrus level name (default: "info")
	JSON  bool   `koanf:"json"`
	Write bool   `koanf:"write"` // also write to a dated file under the state dir
	Dir   string `koanf:"dir"`   // overrides the log directory
}

// LastfmConfig holds Last.fm scrobbling configuration.
type LastfmConfig struct {
	APIKey     string `koanf:"api_key"`
	APISecret  string `koanf:"api_secret"`
	SessionKey string `koanf:"session_key"`
}

// ToggleConfig is an integration that is on unless disabled.
type ToggleConfig struct {
	Enabled *bool `koanf:"enabled"` // default: true
}

// ChannelsConfig holds live TV channel cache settings.
type ChannelsConfig struct {
	CacheTTLMinutes int `koanf:"cache_ttl_minutes"` // default: 5
}

// Load reads the config files from their default locations.
func Load() (*Config, error) {
	return LoadFrom(getConfigPaths()...)
}

// LoadFrom reads the given config files in order (last wins). Missing files
// are skipped.
func LoadFrom(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if cfg.StatePath != "" {
		cfg.StatePath = expandPath(cfg.StatePath)
	}
	if cfg.Logs.Dir != "" {
		cfg.Logs.Dir = expandPath(cfg.Logs.Dir)
	}
	cfg.Playback.NextUp = strings.ToLower(strings.TrimSpace(cfg.Playback.NextUp))
	cfg.Playback.AudioLanguage = strings.TrimSpace(cfg.Playback.AudioLanguage)

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/lumen/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "lumen", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// HasLastfmConfig returns true if Last.fm scrobbling is configured.
func (c *Config) HasLastfmConfig() bool {
	return c.Lastfm.APIKey != "" && c.Lastfm.APISecret != "" && c.Lastfm.SessionKey != ""
}

// MPRISEnabled reports whether the media player D-Bus interface is exported.
func (c *Config) MPRISEnabled() bool {
	return lo.FromPtrOr(c.MPRIS.Enabled, true)
}

// NotificationsEnabled reports whether desktop notifications are shown.
func (c *Config) NotificationsEnabled() bool {
	return lo.FromPtrOr(c.Notifications.Enabled, true)
}

// ChannelCacheTTL returns how long channel lookups are cached.
func (c *Config) ChannelCacheTTL() time.Duration {
	if c.Channels.CacheTTLMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Channels.CacheTTLMinutes) * time.Minute
}

// GetPlaybackConfig returns the playback configuration with defaults applied.
func (c *Config) GetPlaybackConfig() PlaybackConfig {
	cfg := c.Playback

	// Apply defaults
	switch cfg.NextUp {
	case "extended", "minimal", "disabled":
	default:
		cfg.NextUp = "extended"
	}
	if cfg.StartDelayMS < 0 {
		cfg.StartDelayMS = 0
	}
	if cfg.LiveDirectPlay == nil {
		cfg.LiveDirectPlay = lo.ToPtr(true)
	}
	if cfg.SkipForwardMS <= 0 {
		cfg.SkipForwardMS = int(playback.DefaultSkipForward / time.Millisecond)
	}
	if cfg.SkipBackMS <= 0 {
		cfg.SkipBackMS = int(playback.DefaultSkipBack / time.Millisecond)
	}
	if cfg.MaxAudioChannels < 0 {
		cfg.MaxAudioChannels = 0
	}

	return cfg
}

// Preferences exposes the playback configuration to the controller.
func (c *Config) Preferences() playback.Preferences {
	return preferences{c.GetPlaybackConfig()}
}

type preferences struct {
	cfg PlaybackConfig
}

func (p preferences) AudioLanguage() string { return p.cfg.AudioLanguage }

func (p preferences) NextUpBehavior() playback.NextUpBehavior {
	switch p.cfg.NextUp {
	case "minimal":
		return playback.NextUpMinimal
	case "disabled":
		return playback.NextUpDisabled
	default:
		return playback.NextUpExtended
	}
}

func (p preferences) StartDelay() time.Duration {
	return time.Duration(p.cfg.StartDelayMS) * time.Millisecond
}

func (p preferences) LiveDirectPlay() bool { return lo.FromPtrOr(p.cfg.LiveDirectPlay, true) }

func (p preferences) SkipForward() time.Duration {
	return time.Duration(p.cfg.SkipForwardMS) * time.Millisecond
}

func (p preferences) SkipBack() time.Duration {
	return time.Duration(p.cfg.SkipBackMS) * time.Millisecond
}

func (p preferences) MaxAudioChannels() int { return p.cfg.MaxAudioChannels }

// Package config loads CLI settings from an optional reportfmt.yaml.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/ukaji3/reportfmt-go/pkg/reportfmt/models"
	"github.com/ukaji3/reportfmt-go/pkg/reportfmt/style"
)

// ChartDefaults fill chart spec fields the spec file leaves unset.
type ChartDefaults struct {
	UpColor     string `mapstructure:"up_color"`
	DownColor   string `mapstructure:"down_color"`
	LabelStride int    `mapstructure:"label_stride"`
	Width       uint   `mapstructure:"width"`
	Height      uint   `mapstructure:"height"`
}

// Config is the CLI configuration.
type Config struct {
	OutputDir string `mapstructure:"output_dir"`
	// StyleProfile is a YAML style profile; the built-in profile when empty.
	StyleProfile string        `mapstructure:"style_profile"`
	DataSource   string        `mapstructure:"data_source"`
	Chart        ChartDefaults `mapstructure:"chart"`

	// dir is the directory of the config file, used to resolve relative paths.
	dir string
}

// Manager handles loading and reloading configuration.
type Manager struct {
	v         *viper.Viper
	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewManager loads cfgFile, or ./reportfmt.yaml when cfgFile is empty.
// A missing default file is not an error.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{v: viper.New()}
	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}
	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg
	return cm, nil
}

func (cm *Manager) initViper(cfgFile string) error {
	defaults := DefaultConfig()
	cm.v.SetDefault("output_dir", defaults.OutputDir)
	cm.v.SetDefault("data_source", defaults.DataSource)
	cm.v.SetDefault("chart.up_color", defaults.Chart.UpColor)
	cm.v.SetDefault("chart.down_color", defaults.Chart.DownColor)
	cm.v.SetDefault("chart.label_stride", defaults.Chart.LabelStride)
	cm.v.SetDefault("chart.width", defaults.Chart.Width)
	cm.v.SetDefault("chart.height", defaults.Chart.Height)

	if cfgFile != "" {
		cm.v.SetConfigFile(cfgFile)
	} else {
		cm.v.SetConfigName("reportfmt")
		cm.v.SetConfigType("yaml")
		cm.v.AddConfigPath(".")
	}

	if err := cm.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := cm.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if used := cm.v.ConfigFileUsed(); used != "" {
		cfg.dir = filepath.Dir(used)
	}
	return &cfg, nil
}

// Get returns the current configuration.
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// File returns the config file in use, or "" when running on defaults.
func (cm *Manager) File() string {
	return cm.v.ConfigFileUsed()
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig reloads the configuration when the file changes.
func (cm *Manager) WatchConfig() {
	cm.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	cm.v.WatchConfig()
}

// Path resolves p against the config file's directory.
func (c *Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}

// Profile loads the configured style profile.
func (c *Config) Profile() (style.Profile, error) {
	if c.StyleProfile == "" {
		return style.Default(), nil
	}
	return style.Load(c.Path(c.StyleProfile))
}

// ApplyChart fills unset chart fields from the configuration.
func (c *Config) ApplyChart(s *models.ChartSpec) {
	if s.UpColor == "" {
		s.UpColor = c.Chart.UpColor
	}
	if s.DownColor == "" {
		s.DownColor = c.Chart.DownColor
	}
	if s.LabelStride == 0 {
		s.LabelStride = c.Chart.LabelStride
	}
	if s.Width == 0 {
		s.Width = c.Chart.Width
	}
	if s.Height == 0 {
		s.Height = c.Chart.Height
	}
	if s.DataSource == "" {
		s.DataSource = c.DataSource
	}
}

// ApplyPriceVolume fills unset price-volume fields from the configuration.
func (c *Config) ApplyPriceVolume(s *models.PriceVolumeSpec) {
	if s.Width == 0 {
		s.Width = c.Chart.Width
	}
	if s.Height == 0 {
		s.Height = c.Chart.Height
	}
	if s.DataSource == "" {
		s.DataSource = c.DataSource
	}
}

// ApplyDocument fills unset document fields from the configuration.
func (c *Config) ApplyDocument(d *models.DocumentSpec) {
	if d.DataSource == "" {
		d.DataSource = c.DataSource
	}
}

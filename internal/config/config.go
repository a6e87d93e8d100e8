package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  Server  `yaml:"server" json:"server"`
	Storage Storage `yaml:"storage" json:"storage"`
	Stats   Stats   `yaml:"stats" json:"stats"`
	UI      UI      `yaml:"ui" json:"ui"`
}

type Server struct {
	Addr string `yaml:"addr" json:"addr"`
	CORS CORS   `yaml:"cors" json:"cors"`
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`
}

type Storage struct {
	DataDir string `yaml:"data_dir" json:"data_dir"`
}

type Stats struct {
	CompletionWindowDays int `yaml:"completion_window_days" json:"completion_window_days"`
}

type UI struct {
	StaticDir   string `yaml:"static_dir" json:"static_dir"`
	DefaultSort string `yaml:"default_sort" json:"default_sort"`
}

func (c *Config) ApplyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "data"
	}
	if c.Stats.CompletionWindowDays <= 0 {
		c.Stats.CompletionWindowDays = 7
	}
	if c.UI.StaticDir == "" {
		c.UI.StaticDir = "static"
	}
	if c.UI.DefaultSort == "" {
		c.UI.DefaultSort = "createdAt-desc"
	}
}

// Load reads the yaml config. A missing file is not an error; the
// defaults (plus env overrides) carry a fresh checkout.
func Load(path string) (*Config, error) {
	var c Config
	b, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	c.ApplyDefaults()
	c.applyEnv()
	return &c, nil
}

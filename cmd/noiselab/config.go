package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the noiselab configuration file
// (~/.config/noiselab/config.yaml). Flags set on the command line always
// win over file values.
type Config struct {
	Model     string   `yaml:"model"`
	Tokenizer string   `yaml:"tokenizer"`
	Template  string   `yaml:"conv_template"`
	Engine    string   `yaml:"engine"`
	Precision string   `yaml:"precision"`
	Devices   []string `yaml:"devices"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	ServerAddress string `yaml:"server_address"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "noiselab", "config.yaml")
}

// LoadConfig reads the config file. Returns a zero Config if the file
// doesn't exist or doesn't parse.
func LoadConfig() Config {
	path := configPath()
	if path == "" {
		return Config{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}
	}
	return cfg
}

// applyConfig fills model and logging variables from the config file when
// the corresponding flag was not explicitly set.
func applyConfig(c *cli.Command, cfg Config) {
	if cfg.Model != "" && !c.IsSet("model") {
		modelPath = cfg.Model
	}
	if cfg.Tokenizer != "" && !c.IsSet("tokenizer") {
		tokenizerPath = cfg.Tokenizer
	}
	if cfg.Template != "" && !c.IsSet("conv-template") {
		templateName = cfg.Template
	}
	if cfg.Engine != "" && !c.IsSet("engine") {
		engineName = cfg.Engine
	}
	if cfg.Precision != "" && !c.IsSet("precision") {
		precision = cfg.Precision
	}
	if len(cfg.Devices) > 0 && !c.IsSet("device") {
		devices = cfg.Devices
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applyServeConfig additionally fills the listen address.
func applyServeConfig(c *cli.Command, cfg Config, addr *string) {
	applyConfig(c, cfg)
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
}

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/go-homedir"
	log "github.com/vine-io/vine/lib/logger"
	"gopkg.in/yaml.v2"

	"github.com/vine-io/fpdaml/parser"
)

// DefaultPath is the configuration file read when none is given.
const DefaultPath = "~/.fpdaml.yaml"

type Server struct {
	Address      string        `yaml:"address"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	MaxBodyBytes int64         `yaml:"maxBodyBytes"`
	MaxConns     int           `yaml:"maxConns"`
}

type Convert struct {
	TargetNamespace string `yaml:"targetNamespace"`
	MaxDepth        int    `yaml:"maxDepth"`
}

type Batch struct {
	Workers int `yaml:"workers"`
}

type Log struct {
	Level string `yaml:"level"`
}

type Config struct {
	Server  Server  `yaml:"server"`
	Convert Convert `yaml:"convert"`
	Batch   Batch   `yaml:"batch"`
	Log     Log     `yaml:"log"`
}

func Default() *Config {
	return &Config{
		Server: Server{
			Address:      "127.0.0.1:8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			MaxBodyBytes: 32 << 20,
		},
		Convert: Convert{
			TargetNamespace: parser.DefaultTargetNamespace,
			MaxDepth:        parser.DefaultMaxDepth,
		},
		Batch: Batch{Workers: 4},
		Log:   Log{Level: "info"},
	}
}

// Load reads the YAML file at path over the defaults. An empty path means
// DefaultPath. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expand %s: %w", path, err)
	}

	cfg := Default()
	data, err := os.ReadFile(expanded)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debugf("config %s not found, using defaults", expanded)
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", expanded, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", expanded, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address is empty")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.maxBodyBytes must be positive")
	}
	if c.Convert.MaxDepth <= 0 {
		return fmt.Errorf("convert.maxDepth must be positive")
	}
	if c.Batch.Workers <= 0 {
		return fmt.Errorf("batch.workers must be positive")
	}
	if _, err := log.GetLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// ApplyLogging sets the level of the default logger.
func (c *Config) ApplyLogging() error {
	level, err := log.GetLevel(c.Log.Level)
	if err != nil {
		return err
	}
	return log.Init(log.WithLevel(level))
}

/*
Package config loads server configuration from YAML with environment
overrides.

PURPOSE:
  One file, a few knobs. Defaults are usable for local development so
  the binary runs with no config at all; the OpenAI key comes from the
  environment in every sane deployment and the AI features simply stay
  off when it is absent.
*/
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	OpenAI struct {
		APIKey         string `yaml:"api_key"`
		Model          string `yaml:"model"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"openai"`
}

// Default returns the local-development configuration.
func Default() *Config {
	c := &Config{}
	c.Server.Port = 8080
	c.Database.Path = "taxguard.db"
	c.OpenAI.TimeoutSeconds = 30
	return c
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults as is. OPENAI_API_KEY in the environment always wins over
// the file, so the key never has to live on disk.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.OpenAI.APIKey = key
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return nil, fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.OpenAI.TimeoutSeconds <= 0 {
		c.OpenAI.TimeoutSeconds = 30
	}
	return c, nil
}

// AIEnabled reports whether the AI extractor and advisor should be
// wired at all.
func (c *Config) AIEnabled() bool { return c.OpenAI.APIKey != "" }

// AITimeout returns the per-request deadline for AI calls.
func (c *Config) AITimeout() time.Duration {
	return time.Duration(c.OpenAI.TimeoutSeconds) * time.Second
}

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Messages are the user-facing notices sent around the question loop.  The
// invalid and failed templates receive the error as a %v verb.
type Messages struct {
	Welcome   string `yaml:"welcome"`
	Invalid   string `yaml:"invalid"`
	Complete  string `yaml:"complete"`
	Cancelled string `yaml:"cancelled"`
	Failed    string `yaml:"failed"`
}

// Config carries everything the transport layer needs: where the form lives,
// who is filling it, and how the HTTP client behaves.
type Config struct {
	URL       string   `yaml:"url"`
	User      string   `yaml:"user"`
	Prefix    string   `yaml:"prefix"`
	Timeout   int      `yaml:"timeout"`
	Rate      int      `yaml:"rate"`
	UserAgent string   `yaml:"user_agent"`
	Messages  Messages `yaml:"messages"`
}

func DefaultConfig() Config {
	return Config{
		User:      "local",
		Prefix:    "!",
		Timeout:   10,
		Rate:      5,
		UserAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		Messages: Messages{
			Welcome:   "Let's fill out this form. Answer each question in turn.",
			Invalid:   "That answer was not accepted: %v",
			Complete:  "All done, the form has been submitted.",
			Cancelled: "Form discarded.",
			Failed:    "The form could not be submitted: %v",
		},
	}
}

// LoadConfig reads a YAML file over the defaults.  An empty path keeps the
// defaults as they are.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.User == "" {
		return fmt.Errorf("user must not be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.Rate <= 0 {
		return fmt.Errorf("rate must be positive")
	}
	return nil
}

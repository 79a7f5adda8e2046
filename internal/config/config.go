// Package config loads the broker/identity configuration file.
// Timing knobs live on flags; this file only carries what connects the rig
// to the outside world.
package config

import (
	"bytes"
	"fmt"
	"os"

	yaml "go.yaml.in/yaml/v3"
)

// Defaults for optional keys.
const (
	DefaultClientID    = "wine-macerator"
	DefaultTopicPrefix = "wine/macerator"
)

// Config is the parsed configuration file.
type Config struct {
	// Broker is the MQTT broker address, e.g. "tcp://192.168.1.200:1883".
	Broker string `yaml:"broker"`

	// Device identifies this rig in topic names, e.g. "cellar-01".
	Device string `yaml:"device"`

	// ClientID is the MQTT client identifier.
	ClientID string `yaml:"client_id"`

	// TopicPrefix is the root of all published topics.
	TopicPrefix string `yaml:"topic_prefix"`
}

// Load reads and validates the configuration file. A missing file, malformed
// YAML, an unknown key, or a missing required key is an error; callers treat
// these as fatal at startup.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return parse(path, data)
}

func parse(path string, data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if cfg.Broker == "" {
		return nil, fmt.Errorf("%s: missing required key \"broker\"", path)
	}
	if cfg.Device == "" {
		return nil, fmt.Errorf("%s: missing required key \"device\"", path)
	}

	if cfg.ClientID == "" {
		cfg.ClientID = DefaultClientID
	}
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = DefaultTopicPrefix
	}
	return &cfg, nil
}

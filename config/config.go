// Package config loads and validates SynthDB's on-disk server
// configuration (SPEC_FULL.md's "config" ambient component):
// config/server.conf is YAML, decoded with strict unknown-field
// rejection the way the teacher's closest config loader does.
//
// Grounded on MrWong99-glyphoxa/internal/config/loader.go's
// Load/LoadFromReader/Validate split and its KnownFields(true) decoder
// option; field names follow SPEC_FULL.md §ambient-stack directly.
package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is SynthDB's server.conf shape.
type Config struct {
	// Secure requires an Api-Key header on every wire request when true.
	Secure bool `yaml:"secure"`
	// Free caps nodes/links per graph at catalog.FreeModeMaxNodes/Links.
	Free bool `yaml:"free"`
	// DataDir is the Badger-backed document store's on-disk location.
	DataDir string `yaml:"data_dir"`
	// APIKeyFile names a file holding a bcrypt hash of the accepted key,
	// consulted only when Secure is set.
	APIKeyFile string `yaml:"api_key_file"`
	// ListenAddr is the transport's bind address (e.g. "0.0.0.0:8080").
	ListenAddr string `yaml:"listen_addr"`
}

// defaults mirror a single-node, unauthenticated development setup: no
// free-mode caps, no Api-Key enforcement.
func defaults() Config {
	return Config{
		Secure:     false,
		Free:       false,
		DataDir:    "./data",
		APIKeyFile: "",
		ListenAddr: "0.0.0.0:8080",
	}
}

// Load reads and validates the YAML configuration file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r over top of the defaults
// and validates the result. Exposed separately from Load so tests can
// build a Config from a string literal.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := defaults()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that cfg is coherent enough to boot a server from.
func Validate(cfg *Config) error {
	if cfg.DataDir == "" {
		return fmt.Errorf("config: data_dir is required")
	}
	if cfg.ListenAddr == "" {
		return fmt.Errorf("config: listen_addr is required")
	}
	if cfg.Secure && cfg.APIKeyFile == "" {
		return fmt.Errorf("config: secure requires api_key_file")
	}
	return nil
}

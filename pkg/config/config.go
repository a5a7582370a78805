// Package config loads the site configuration file (deep.yaml).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alexmglover/Deep/pkg/core"
	"github.com/alexmglover/Deep/pkg/render"
)

// FileName is the configuration file looked up at the vault root.
const FileName = "deep.yaml"

// Config is the on-disk site configuration.
type Config struct {
	SiteURL   string `yaml:"site_url"`
	IndexPage string `yaml:"index_page"`
	// Vault is the record vault directory, relative to the config file.
	Vault   string         `yaml:"vault"`
	Strict  bool           `yaml:"strict"`
	Routing Routing        `yaml:"routing"`
	Disable []string       `yaml:"disable"`
	Uploads Uploads        `yaml:"uploads"`
	Fields  map[string]int `yaml:"fields"`

	// dir is the directory the file was loaded from.
	dir string
}

// Routing holds the path-routing flags.
type Routing struct {
	UseCategoryName       bool   `yaml:"use_category_name"`
	ReservedCategoryWord  string `yaml:"reserved_category_word"`
	RelatedCategoriesMode bool   `yaml:"related_categories_mode"`
}

// Uploads holds the base URLs of member media.
type Uploads struct {
	AvatarURL    string `yaml:"avatar_url"`
	PhotoURL     string `yaml:"photo_url"`
	SignatureURL string `yaml:"signature_url"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Vault: ".",
		Routing: Routing{
			ReservedCategoryWord: "category",
		},
	}
}

// Load reads a config file. A missing file yields Default rooted at the
// file's directory.
func Load(path string) (*Config, error) {
	cfg := Default()
	cfg.dir = filepath.Dir(path)

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values a render cannot run under.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Routing.ReservedCategoryWord) == "" {
		c.Routing.ReservedCategoryWord = "category"
	}
	if strings.Contains(c.Routing.ReservedCategoryWord, "/") {
		return fmt.Errorf("reserved_category_word %q must be a single path segment", c.Routing.ReservedCategoryWord)
	}
	for name, id := range c.Fields {
		if id <= 0 {
			return fmt.Errorf("field %q: id must be positive", name)
		}
	}
	return nil
}

// VaultPath returns the vault directory, resolved against the config file.
func (c *Config) VaultPath() string {
	v := c.Vault
	if v == "" {
		v = "."
	}
	if filepath.IsAbs(v) || c.dir == "" {
		return v
	}
	return filepath.Join(c.dir, v)
}

// Settings converts the file into the settings a render runs under.
func (c *Config) Settings() core.Settings {
	return core.Settings{
		UseCategoryName:       c.Routing.UseCategoryName,
		ReservedCategoryWord:  c.Routing.ReservedCategoryWord,
		RelatedCategoriesMode: c.Routing.RelatedCategoriesMode,
		Features:              render.ApplyDisable(core.AllFeatures(), strings.Join(c.Disable, "|")),
		Uploads: core.Uploads{
			AvatarURL:    c.Uploads.AvatarURL,
			PhotoURL:     c.Uploads.PhotoURL,
			SignatureURL: c.Uploads.SignatureURL,
		},
	}
}

// FieldMap returns the configured field ids.
func (c *Config) FieldMap() core.FieldMap {
	m := make(core.FieldMap, len(c.Fields))
	for name, id := range c.Fields {
		m[name] = id
	}
	return m
}

package matex

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// ConfigFile is the optional per-repository configuration file name.
const ConfigFile = ".matex.yml"

// Config controls where snippets are found and how branches are named.
// Every field has a default; a missing config file is not an error.
type Config struct {
	// Content is the directory scanned for *.md documents.
	Content string `yaml:"content"`

	// Namespace is the first segment of every materialized branch.
	Namespace string `yaml:"namespace"`

	// Remote names the git remote used by the URL resolver and the reaper.
	Remote string `yaml:"remote"`

	// Timeout is the default snippet execution timeout in seconds, used
	// when a snippet declares no timeout pragma of its own.
	Timeout int `yaml:"timeout"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Content:   filepath.Join("content", "examples"),
		Namespace: DefaultNamespace,
		Remote:    "origin",
		Timeout:   60,
	}
}

// LoadConfig reads .matex.yml from dir. Missing file yields the defaults;
// fields absent from the file keep their default values.
func LoadConfig(fs afero.Fs, dir string) (Config, error) {
	cfg := DefaultConfig()

	data, err := afero.ReadFile(fs, filepath.Join(dir, ConfigFile))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read %s: %w", ConfigFile, err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", ConfigFile, err)
	}

	if file.Content != "" {
		cfg.Content = file.Content
	}
	if file.Namespace != "" {
		cfg.Namespace = file.Namespace
	}
	if file.Remote != "" {
		cfg.Remote = file.Remote
	}
	if file.Timeout > 0 {
		cfg.Timeout = file.Timeout
	}
	return cfg, nil
}

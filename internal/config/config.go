package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/tempomap/internal/config/loader"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "TEMPOMAP_"

// FileName is the preferences file name inside the config directory.
const FileName = "prefs.toml"

// DefaultPath returns the per-user preferences file path.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config directory: %w", err)
	}
	return filepath.Join(dir, "tempomap", FileName), nil
}

// Load reads settings from the TOML file at path, then applies environment
// overrides. A missing file yields the defaults.
func Load(path string) (Settings, error) {
	return LoadFrom(loader.NewTOMLLoader(path), loader.NewEnvLoader(EnvPrefix))
}

// LoadFrom layers the given sources over the defaults. Later sources take
// precedence; nil sources are skipped.
func LoadFrom(sources ...loader.Loader) (Settings, error) {
	merged := make(map[string]any)
	for _, src := range sources {
		if src == nil {
			continue
		}
		m, err := src.Load()
		if err != nil {
			return Settings{}, err
		}
		merged = loader.DeepMerge(merged, m)
	}

	s := Default()
	if len(merged) > 0 {
		data, err := toml.Marshal(merged)
		if err != nil {
			return Settings{}, fmt.Errorf("encoding settings: %w", err)
		}
		if err := toml.Unmarshal(data, &s); err != nil {
			return Settings{}, fmt.Errorf("%w: %v", ErrInvalidSetting, err)
		}
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Save writes s to path as TOML, creating the directory if needed.
func Save(path string, s Settings) error {
	data, err := s.Encode()
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

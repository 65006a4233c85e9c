package loader

import (
	"os"
	"strconv"
	"strings"
)

// EnvLoader loads configuration from environment variables.
type EnvLoader struct {
	prefix  string            // Environment variable prefix (e.g., "TEMPOMAP_")
	mapping map[string]string // Env var -> config path
	lookup  func(string) (string, bool)
	environ func() []string
}

// NewEnvLoader creates a new environment variable loader.
// The prefix should include the trailing underscore (e.g., "TEMPOMAP_").
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: defaultEnvMapping(prefix),
		lookup:  os.LookupEnv,
		environ: os.Environ,
	}
}

// NewEnvLoaderFrom creates a loader that reads variables from env instead
// of the process environment.
func NewEnvLoaderFrom(prefix string, env map[string]string) *EnvLoader {
	l := NewEnvLoader(prefix)
	l.lookup = func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	l.environ = func() []string {
		out := make([]string, 0, len(env))
		for k, v := range env {
			out = append(out, k+"="+v)
		}
		return out
	}
	return l
}

// defaultEnvMapping returns the short aliases for common settings.
func defaultEnvMapping(prefix string) map[string]string {
	return map[string]string{
		prefix + "LOG_LEVEL":    "logging.level",
		prefix + "GRID_DIVISOR": "editor.grid_divisor",
		prefix + "SNAP":         "editor.snap_to_grid",
		prefix + "ROUND_BPM":    "editor.round_bpm",
		prefix + "MAX_UNDO":     "history.max_entries",
	}
}

// Load reads environment variables and returns a configuration map.
// Note: Empty string values are treated as valid values, not as unset.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)

	// First, load explicitly mapped variables
	for env, path := range l.mapping {
		if val, ok := l.lookup(env); ok {
			setByPath(config, path, parseValue(val))
		}
	}

	// Then, scan for additional prefixed variables not in mapping
	for _, env := range l.environ() {
		if !strings.HasPrefix(env, l.prefix) {
			continue
		}

		name, value, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}

		// Skip if already mapped
		if _, ok := l.mapping[name]; ok {
			continue
		}

		if path := l.envToPath(name); path != "" {
			setByPath(config, path, parseValue(value))
		}
	}

	return config, nil
}

// AddMapping adds a custom environment variable mapping.
func (l *EnvLoader) AddMapping(envVar, configPath string) {
	if l.mapping == nil {
		l.mapping = make(map[string]string)
	}
	l.mapping[envVar] = configPath
}

// envToPath converts TEMPOMAP_EDITOR_GRID_DIVISOR to editor.grid_divisor.
// Names without a section part yield "".
func (l *EnvLoader) envToPath(env string) string {
	name := strings.ToLower(strings.TrimPrefix(env, l.prefix))
	section, key, ok := strings.Cut(name, "_")
	if !ok || section == "" || key == "" {
		return ""
	}
	return section + "." + key
}

// parseValue attempts to parse the string value into an appropriate type.
func parseValue(s string) any {
	if s == "" {
		return s
	}

	lower := strings.ToLower(s)
	if lower == "true" || lower == "yes" || lower == "on" {
		return true
	}
	if lower == "false" || lower == "no" || lower == "off" {
		return false
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}

	// Only values with a decimal point or exponent are floats.
	if strings.ContainsAny(s, ".eE") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}

	return s
}

// setByPath sets a value in a nested map using a dot-separated path.
func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data

	// Navigate/create intermediate maps
	for i := 0; i < len(parts)-1; i++ {
		part := parts[i]
		if next, ok := current[part].(map[string]any); ok {
			current = next
		} else {
			next := make(map[string]any)
			current[part] = next
			current = next
		}
	}

	current[parts[len(parts)-1]] = value
}

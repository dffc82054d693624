// Package env loads environment variables from the process and .env files.
package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Vars represents a simple string-to-string map of variables.
type Vars map[string]string

// FromOS builds a Vars map from the current process environment.
func FromOS() Vars {
	out := make(Vars)
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		out[key] = value
	}
	return out
}

// Merge merges several Vars maps into one, later maps overriding earlier keys.
func Merge(sets ...Vars) Vars {
	out := make(Vars)
	for _, s := range sets {
		for k, v := range s {
			out[k] = v
		}
	}
	return out
}

// LoadEnvFile loads a single .env-style file into Vars.
func LoadEnvFile(path string) (Vars, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	envMap, err := godotenv.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse env file %q: %w", path, err)
	}
	return Vars(envMap), nil
}

// Load returns the process environment layered over the .env file at path.
// Process variables win, matching godotenv.Load. A missing file is ignored
// unless required is set.
func Load(path string, required bool) (Vars, error) {
	osVars := FromOS()
	if strings.TrimSpace(path) == "" {
		return osVars, nil
	}
	fileVars, err := LoadEnvFile(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return osVars, nil
		}
		return nil, err
	}
	return Merge(fileVars, osVars), nil
}

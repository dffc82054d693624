package cli

import (
	envparse "github.com/caarlos0/env/v11"
)

// baseEnv defines root CLI defaults sourced from RPND_* env vars. These are
// read before the config file, since they locate it.
type baseEnv struct {
	// ConfigPath is the rpnd.yaml path from RPND_CONFIG.
	ConfigPath string `env:"RPND_CONFIG"`
	// EnvFile is the .env path from RPND_ENV_FILE.
	EnvFile string `env:"RPND_ENV_FILE"`
}

// parseEnv fills target from RPND_* env vars via caarlos0/env.
func parseEnv(target interface{}) error {
	return envparse.Parse(target)
}

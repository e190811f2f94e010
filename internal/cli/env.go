package cli

import (
	"time"

	env "github.com/caarlos0/env/v11"
)

// envPrefix namespaces every environment variable the CLI reads, so
// PROXMOX_OPENAPI_NODE_BIN selects the Node.js binary and so on.
const envPrefix = "PROXMOX_OPENAPI_"

// envDefaults holds the settings that can be seeded from the environment.
// Flags take precedence when set explicitly.
type envDefaults struct {
	Input       string        `env:"INPUT" envDefault:""`
	Out         string        `env:"OUT" envDefault:""`
	Name        string        `env:"NAME" envDefault:""`
	NodeBinary  string        `env:"NODE_BIN" envDefault:"node"`
	Timeout     time.Duration `env:"TIMEOUT" envDefault:"30s"`
	DisableExec bool          `env:"NO_EXEC" envDefault:"false"`
}

func loadEnvDefaults() (envDefaults, error) {
	var d envDefaults
	err := env.ParseWithOptions(&d, env.Options{Prefix: envPrefix})
	return d, err
}

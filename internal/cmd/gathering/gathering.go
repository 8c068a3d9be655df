// Package gathering parses gathering service flags and launches the service.
package gathering

import (
	"context"
	"flag"

	entrypoint "github.com/mirefield/gatherspace/internal/platform/cmd"
	server "github.com/mirefield/gatherspace/internal/services/gathering/server"
)

// Config holds gathering command configuration.
type Config struct {
	Port int `env:"GATHERSPACE_GATHERING_PORT" envDefault:"8094"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The gathering HTTP server port")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the gathering HTTP API service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceGathering, func(context.Context) error {
		return server.Run(ctx, cfg.Port)
	})
}

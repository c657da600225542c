package cli

import (
	"flag"
	"os"
)

// Config holds operator-client settings.
type Config struct {
	ServerEndpointAddr string
}

// LoadConfig applies defaults, an environment override, and finally flags.
// Remaining positional arguments (the command and its args) are returned.
func LoadConfig(args []string) (*Config, []string, error) {
	cfg := &Config{ServerEndpointAddr: "http://localhost:8080"}

	if v := os.Getenv("MARKETAUTH_ADDR"); v != "" {
		cfg.ServerEndpointAddr = v
	}

	fs := flag.NewFlagSet("marketauth", flag.ContinueOnError)
	fs.StringVar(&cfg.ServerEndpointAddr, "s", cfg.ServerEndpointAddr, "server endpoint address")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return cfg, fs.Args(), nil
}

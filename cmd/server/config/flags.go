package config

import (
	"flag"
	"os"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   database DSN
//	-t int      default token lifetime, hours (0 = never expires)
//	-r int      remember-me token lifetime, hours
//	-c string   path to a JSON config file (handled before flags)
//	-debug      enable debug logging and response dumps
func parseFlags(cfg *Config) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	// Registered so the overlay flag is accepted here too; the value was
	// already consumed by parseJSON.
	fs.String("c", "", "path to JSON config file")
	fs.String("config", "", "path to JSON config file")

	fs.StringVar(&cfg.HTTPAddr, "a", cfg.HTTPAddr, "address and port to run server")
	fs.StringVar(&cfg.Persistence.Server, "d", cfg.Persistence.Server, "database DSN")
	fs.IntVar(&cfg.Auth.TokenExpiration, "t", cfg.Auth.TokenExpiration, "token lifetime in hours, 0 for no expiry")
	fs.IntVar(&cfg.Auth.ExtendedTokenDuration, "r", cfg.Auth.ExtendedTokenDuration, "remember-me token lifetime in hours")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "enable debug output")

	return fs.Parse(os.Args[1:])
}

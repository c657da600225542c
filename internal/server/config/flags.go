package config

import (
	"flag"
	"os"
	"time"

	"github.com/mbortnikov/marketauth/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   token signing secret key
//	-t int      identity token TTL, minutes
//	-w int      verification code window, minutes
//	-n string   SMS provider name ("log", "sns", "twilio")
//
// Provider credentials are intentionally JSON-only; they do not belong on a
// process command line.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-w", "-n"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	tokenTTL := fs.Int("t", int(config.TokenTTL.Minutes()), "token TTL (in minutes)")
	codeWindow := fs.Int("w", int(config.VerificationCodeWindow.Minutes()), "verification code window (in minutes)")

	fs.StringVar(&config.SMSProvider, "n", config.SMSProvider, "SMS provider (log, sns, twilio)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenTTL = time.Duration(*tokenTTL) * time.Minute
	config.VerificationCodeWindow = time.Duration(*codeWindow) * time.Minute
}

// Package config loads server settings from defaults, an optional config
// file, NAJDENO_* environment variables and command-line flags, in rising
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the server settings.
type Config struct {
	DBPath      string
	Addr        string
	StaffUser   string
	LogPath     string
	LogFormat   string
	RedisURL    string
	JWTSecret   string
	TokenExpiry time.Duration
}

const usage = `Usage: najdeno [flags]

Flags:
  -c, --config <path>       config file (default: ./najdeno.yml if present)
  -d, --db <path>           SQLite database path (default: najdeno.sqlite3)
  -a, --addr <host:port>    listen address (default: :8080)
  -u, --user <name>         staff username on first run (default: Staff)
  -l, --log <path>          log file path (default: stdout/stderr only)
      --log-format <fmt>    text or json (default: text)
      --redis-url <url>     Redis address for the public listing cache (default: none)
      --jwt-secret <s>      token signing secret (default: generated and stored in the database)
      --token-expiry <d>    token lifetime, e.g. 24h (default: 168h)
  -h, --help                show this help and exit

Every flag can also be set as NAJDENO_<NAME> in the environment or a .env file,
for example NAJDENO_REDIS_URL.
`

// Load parses args on top of the environment and the config file. It
// returns pflag.ErrHelp when help was requested.
func Load(args []string) (*Config, error) {
	// A missing .env is fine.
	_ = godotenv.Load()

	fs := pflag.NewFlagSet("najdeno", pflag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stdout, usage) }

	fs.StringP("config", "c", "", "")
	fs.StringP("db", "d", "najdeno.sqlite3", "")
	fs.StringP("addr", "a", ":8080", "")
	fs.StringP("user", "u", "Staff", "")
	fs.StringP("log", "l", "", "")
	fs.String("log-format", "text", "")
	fs.String("redis-url", "", "")
	fs.String("jwt-secret", "", "")
	fs.Duration("token-expiry", 7*24*time.Hour, "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}

	v := viper.New()
	v.SetEnvPrefix("najdeno")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("binding flags: %w", err)
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else {
		v.SetConfigName("najdeno")
		v.SetConfigType("yml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	cfg := &Config{
		DBPath:      v.GetString("db"),
		Addr:        v.GetString("addr"),
		StaffUser:   v.GetString("user"),
		LogPath:     v.GetString("log"),
		LogFormat:   strings.ToLower(strings.TrimSpace(v.GetString("log-format"))),
		RedisURL:    v.GetString("redis-url"),
		JWTSecret:   v.GetString("jwt-secret"),
		TokenExpiry: v.GetDuration("token-expiry"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	switch {
	case c.DBPath == "":
		return errors.New("db path is required")
	case c.Addr == "":
		return errors.New("listen address is required")
	case strings.TrimSpace(c.StaffUser) == "":
		return errors.New("staff username is required")
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	case c.TokenExpiry <= 0:
		return errors.New("token expiry must be positive")
	case c.JWTSecret != "" && len(c.JWTSecret) < 32:
		return errors.New("jwt secret must be at least 32 characters")
	}
	return nil
}

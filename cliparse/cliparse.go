package cliparse

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

const (
	DefaultPort            = 3318
	DefaultDatabaseType    = "postgres"
	DefaultTurnoutSchedule = "@every 5m"
)

type Config struct {
	Port            int
	DatabaseURL     string
	DatabaseType    string
	VoterHMACKey    string
	AdminKeySalt    string
	AllowedOrigins  []string
	TurnoutSchedule string
	EnvFile         string
}

// RegisterFlags binds the config fields to fs. Values left empty are filled
// from the environment by Resolve.
func RegisterFlags(fs *pflag.FlagSet, cfg *Config) {
	// Network config (can be CLI args or env)
	fs.IntVarP(&cfg.Port, "port", "p", 0, "Server port")
	fs.StringVarP(&cfg.DatabaseURL, "database-url", "d", "", "Database URL")
	fs.StringVarP(&cfg.DatabaseType, "database-type", "t", "", "Database type (postgres or sqlite)")
	fs.StringSliceVar(&cfg.AllowedOrigins, "allowed-origins", nil, "CORS origins (comma separated)")
	fs.StringVar(&cfg.TurnoutSchedule, "turnout-schedule", "", "Cron spec for turnout reports (\"off\" disables)")
	fs.StringVar(&cfg.EnvFile, "env-file", "", "Load environment from this file (default .env if present)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.VoterHMACKey, "voter-key", "", "Voter token HMAC key (prefer env)")
	fs.StringVar(&cfg.AdminKeySalt, "admin-salt", "", "Admin key salt (prefer env)")
}

// ParseFlags parses args on a fresh flag set and resolves the result.
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := pflag.NewFlagSet("campus-vote", pflag.ContinueOnError)
	RegisterFlags(fs, &cfg)

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := Resolve(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Resolve loads the env file, falls back to environment variables for unset
// fields and checks that required settings are present.
func Resolve(cfg *Config) error {
	if err := loadEnvFile(cfg.EnvFile); err != nil {
		return err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = DefaultDatabaseType
		}
	}

	if len(cfg.AllowedOrigins) == 0 {
		if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
			for _, o := range strings.Split(origins, ",") {
				if o = strings.TrimSpace(o); o != "" {
					cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
				}
			}
		}
	}

	if cfg.TurnoutSchedule == "" {
		cfg.TurnoutSchedule = os.Getenv("TURNOUT_SCHEDULE")
		if cfg.TurnoutSchedule == "" {
			cfg.TurnoutSchedule = DefaultTurnoutSchedule
		}
	}

	// Secrets - MUST be provided
	if cfg.VoterHMACKey == "" {
		cfg.VoterHMACKey = os.Getenv("VOTER_HMAC_KEY")
	}
	if cfg.VoterHMACKey == "" {
		return errors.New("VOTER_HMAC_KEY required")
	}

	if cfg.AdminKeySalt == "" {
		cfg.AdminKeySalt = os.Getenv("ADMIN_KEY_SALT")
	}
	if cfg.AdminKeySalt == "" {
		return errors.New("ADMIN_KEY_SALT required")
	}

	return nil
}

// loadEnvFile loads path, or .env when path is empty. A missing default
// file is fine; a missing explicit one is not. Existing variables win.
func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}

	err := godotenv.Load(path)
	if err != nil && !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

package authstate

import (
	"errors"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-ini/ini"
)

// Config carries process-level settings, parsed from the environment.
type Config struct {
	StateDir string        `env:"AUTHSTATE_STATE_DIR" envDefault:"auth_states"`
	LogFile  string        `env:"AUTHSTATE_LOG_FILE" envDefault:"authstate.log"`
	Validity time.Duration `env:"AUTHSTATE_VALIDITY" envDefault:"24h"`
	EnvFile  string        `env:"AUTHSTATE_ENVIRONMENTS" envDefault:"environments.ini"`
}

// LoadConfig parses configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadBaseURLs reads per-environment base URLs from an INI file with one
// section per environment:
//
//	[test]
//	base_url = https://app.test.example.com/
//
// A missing file is not an error; it just yields an empty map and the
// operator must pass --url explicitly.
func LoadBaseURLs(path string) (map[Environment]string, error) {
	out := make(map[Environment]string)
	cfg, err := ini.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return out, nil
		}
		return nil, err
	}
	for _, e := range Environments() {
		sec, err := cfg.GetSection(string(e))
		if err != nil {
			continue
		}
		if u := sec.Key("base_url").String(); u != "" {
			out[e] = u
		}
	}
	return out, nil
}

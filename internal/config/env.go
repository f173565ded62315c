package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/mstoykov/envconfig"

	"github.com/frherrer/pagecheck/internal/domain"
)

// envOverrides lists the settings that can come from the environment. Secrets
// such as the backend password usually live here rather than in pagecheck.yaml.
type envOverrides struct {
	BaseURL  string `envconfig:"PAGECHECK_BASE_URL"`
	Username string `envconfig:"PAGECHECK_USERNAME"`
	Password string `envconfig:"PAGECHECK_PASSWORD"`
	Timeout  string `envconfig:"PAGECHECK_TIMEOUT"`
	PagesDir string `envconfig:"PAGECHECK_PAGES_DIR"`
	LogLevel string `envconfig:"PAGECHECK_LOG_LEVEL"`
}

// LoadEnvFile loads KEY=value pairs from path into the process environment
// without overriding variables that are already set. A missing file is not an
// error unless required is true.
func LoadEnvFile(path string, required bool) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return domain.NewError("config", path, 0, "failed to load env file", err)
	}
	return nil
}

// ApplyEnv overlays the PAGECHECK_* variables found by lookup onto cfg.
// A nil lookup reads the process environment.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	var env envOverrides
	if err := envconfig.Process("", &env, lookup); err != nil {
		return domain.NewError("config", "", 0, "failed to read environment", err)
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Backend.BaseURL, env.BaseURL)
	set(&cfg.Backend.Username, env.Username)
	set(&cfg.Backend.Password, env.Password)
	set(&cfg.Run.Timeout, env.Timeout)
	set(&cfg.Backend.PagesDir, env.PagesDir)
	set(&cfg.Logging.Level, env.LogLevel)
	return nil
}

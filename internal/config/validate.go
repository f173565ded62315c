package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/frherrer/pagecheck/internal/domain"
)

// Validate checks the Config for required fields and valid values.
func Validate(cfg *Config) error {
	var errs []string

	// Input validation
	if len(cfg.Input.Directories) == 0 {
		errs = append(errs, "input.directories must not be empty")
	}
	if len(cfg.Input.Include) == 0 {
		errs = append(errs, "input.include must not be empty")
	}

	// Tags validation
	if len(cfg.Tags.StepTags) == 0 {
		errs = append(errs, "tags.step_tags must not be empty")
	}

	// Validate plaintext patterns are valid regex (if set)
	if cfg.PlaintextPatterns.BlockStart != "" {
		if _, err := regexp.Compile(cfg.PlaintextPatterns.BlockStart); err != nil {
			errs = append(errs, fmt.Sprintf("plaintext_patterns.block_start is not a valid regex: %v", err))
		}
	}
	if cfg.PlaintextPatterns.BlockEnd != "" {
		if _, err := regexp.Compile(cfg.PlaintextPatterns.BlockEnd); err != nil {
			errs = append(errs, fmt.Sprintf("plaintext_patterns.block_end is not a valid regex: %v", err))
		}
	}

	// Backend validation: a pages directory replaces the live site.
	if cfg.Backend.PagesDir == "" {
		u, err := url.Parse(cfg.Backend.BaseURL)
		switch {
		case cfg.Backend.BaseURL == "":
			errs = append(errs, "backend.base_url must not be empty unless backend.pages_dir is set")
		case err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "":
			errs = append(errs, fmt.Sprintf("backend.base_url must be an absolute http(s) URL (got %q)", cfg.Backend.BaseURL))
		}
	}

	// Run validation
	if d, err := time.ParseDuration(cfg.Run.Timeout); err != nil || d <= 0 {
		errs = append(errs, fmt.Sprintf("run.timeout must be a positive duration such as 10s (got %q)", cfg.Run.Timeout))
	}
	switch cfg.Run.OnAssertionFailure {
	case "continue", "abort":
	default:
		errs = append(errs, fmt.Sprintf("run.on_assertion_failure must be one of: continue, abort (got %q)", cfg.Run.OnAssertionFailure))
	}
	if cfg.Run.Parallelism < 1 {
		errs = append(errs, fmt.Sprintf("run.parallelism must be at least 1 (got %d)", cfg.Run.Parallelism))
	}
	for _, scheme := range cfg.Run.BlockedURLSchemes {
		if !strings.HasSuffix(scheme, ":") {
			errs = append(errs, fmt.Sprintf("run.blocked_url_schemes entries must end with ':' (got %q)", scheme))
		}
	}

	// Report validation
	if cfg.Report.TemplateDir == "" {
		switch cfg.Report.Format {
		case "text", "markdown":
		default:
			errs = append(errs, fmt.Sprintf("report.format must be one of: text, markdown (got %q)", cfg.Report.Format))
		}
	}
	switch cfg.Report.Color {
	case "auto", "always", "never":
	default:
		errs = append(errs, fmt.Sprintf("report.color must be one of: auto, always, never (got %q)", cfg.Report.Color))
	}

	// Validate logging level
	if cfg.Logging.Level != "" {
		validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
		if !validLevels[cfg.Logging.Level] {
			errs = append(errs, fmt.Sprintf("logging.level must be one of: debug, info, warn, error (got %q)", cfg.Logging.Level))
		}
	}

	if len(errs) > 0 {
		return domain.NewError("config", "", 0, fmt.Sprintf("validation failed: %s", strings.Join(errs, "; ")), nil)
	}

	return nil
}

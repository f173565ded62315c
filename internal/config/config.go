package config

import (
	"maps"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/frherrer/pagecheck/internal/domain"
)

// Config is the top-level configuration struct.
type Config struct {
	Input             InputConfig             `yaml:"input"`
	Tags              TagConfig               `yaml:"tags"`
	PlaintextPatterns PlaintextPatternsConfig `yaml:"plaintext_patterns"`
	Backend           BackendConfig           `yaml:"backend"`
	Run               RunConfig               `yaml:"run"`
	Report            ReportConfig            `yaml:"report"`
	Logging           LoggingConfig           `yaml:"logging"`
}

type InputConfig struct {
	Directories []string `yaml:"directories"`
	Include     []string `yaml:"include"`
	Exclude     []string `yaml:"exclude"`
	Recursive   *bool    `yaml:"recursive"` // pointer to distinguish unset from false
}

// TagConfig selects the code blocks that hold suites in documentation files.
// Attributes maps a logical attribute to the block attribute names that set it.
type TagConfig struct {
	StepTags   []string            `yaml:"step_tags"`
	Attributes map[string][]string `yaml:"attributes"`
}

type PlaintextPatternsConfig struct {
	BlockStart string `yaml:"block_start"`
	BlockEnd   string `yaml:"block_end"`
}

// BackendConfig describes where pages come from: a live site at BaseURL or a
// directory of pre-rendered HTML at PagesDir.
type BackendConfig struct {
	BaseURL       string            `yaml:"base_url"`
	Username      string            `yaml:"username"`
	Password      string            `yaml:"password"`
	PagesDir      string            `yaml:"pages_dir"`
	Headers       map[string]string `yaml:"headers"`
	UserAgent     string            `yaml:"user_agent"`
	HiddenClasses []string          `yaml:"hidden_classes"`
}

type RunConfig struct {
	Timeout            string   `yaml:"timeout"`
	OnAssertionFailure string   `yaml:"on_assertion_failure"` // "continue" or "abort"
	Parallelism        int      `yaml:"parallelism"`
	FailFast           bool     `yaml:"fail_fast"`
	BlockedURLSchemes  []string `yaml:"blocked_url_schemes"`
}

// TimeoutDuration returns the per-operation timeout. Validate guarantees it parses.
func (r RunConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(r.Timeout)
	if err != nil || d <= 0 {
		return DefaultTimeout
	}
	return d
}

const redacted = "****"

// Redacted returns a copy of c safe to log: the password, the password in
// base_url and every header value are masked. c is not modified.
func (c *Config) Redacted() Config {
	out := *c
	b := &out.Backend
	if b.Password != "" {
		b.Password = redacted
	}
	if u, err := url.Parse(b.BaseURL); err == nil && u.User != nil {
		b.BaseURL = u.Redacted()
	}
	if b.Headers != nil {
		b.Headers = maps.Clone(b.Headers)
		for k := range b.Headers {
			b.Headers[k] = redacted
		}
	}
	return out
}

type ReportConfig struct {
	Format      string `yaml:"format"`       // "text" or "markdown"
	TemplateDir string `yaml:"template_dir"` // overrides the embedded templates
	ResultsFile string `yaml:"results_file"` // JSON results, empty to skip
	Progress    bool   `yaml:"progress"`
	Color       string `yaml:"color"` // "auto", "always" or "never"
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Load reads a YAML configuration file and returns a Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewError("config", path, 0, "failed to read config file", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, domain.NewError("config", path, 0, "failed to parse config file", err)
	}

	return cfg, nil
}

package config

import "time"

// DefaultTimeout bounds every backend operation unless run.timeout says otherwise.
const DefaultTimeout = 10 * time.Second

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	recursive := true
	return &Config{
		Input: InputConfig{
			Directories: []string{"suites"},
			Include:     []string{"*.yaml", "*.yml", "*.json", "*.md", "*.adoc", "*.txt"},
			Exclude:     []string{"vendor/**", "node_modules/**"},
			Recursive:   &recursive,
		},
		Tags: TagConfig{
			StepTags: []string{"pagecheck"},
			Attributes: map[string][]string{
				"case_name":  {"case", "name"},
				"suite_name": {"suite"},
				"suite_path": {"suite-path", "path"},
				"register":   {"register"},
			},
		},
		PlaintextPatterns: PlaintextPatternsConfig{
			BlockStart: `^\s*@begin\((\S+)(?:\s+(.*))?\)\s*$`,
			BlockEnd:   `^\s*@end\s*$`,
		},
		Backend: BackendConfig{
			BaseURL:       "http://localhost:4502",
			UserAgent:     "pagecheck",
			HiddenClasses: []string{"is-hidden", "cq-hidden"},
		},
		Run: RunConfig{
			Timeout:            DefaultTimeout.String(),
			OnAssertionFailure: "continue",
			Parallelism:        1,
			BlockedURLSchemes:  []string{"javascript:", "data:", "file:"},
		},
		Report: ReportConfig{
			Format:   "text",
			Progress: false,
			Color:    "auto",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

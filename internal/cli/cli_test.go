package cli_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frherrer/pagecheck/internal/cli"
	"github.com/frherrer/pagecheck/internal/domain"
)

const brokenSuite = `name: Broken
path: /apps/broken/tests/BrokenTests.js
testCases:
  - name: wrong page
    steps:
      - type: navigate
        url: /content/sample/en.html
      - type: assertLocation
        url: /content/sample/fr.html
`

const draftSuite = `name: Draft
register: false
testCases:
  - name: not ready
    steps:
      - type: navigate
        url: /content/sample/en.html
`

// suiteDir writes content as a single suite file in a fresh directory.
func suiteDir(content string) string {
	dir := GinkgoT().TempDir()
	Expect(os.WriteFile(filepath.Join(dir, "extra.yaml"), []byte(content), 0o644)).To(Succeed())
	return dir
}

var _ = Describe("run", func() {
	var cfgPath string

	BeforeEach(func() {
		cfgPath = writeConfig(sampleConfig())
	})

	It("should run every registered suite and exit cleanly", func() {
		stdout, _, err := execute("run", "--all", "-c", cfgPath)
		Expect(err).ToNot(HaveOccurred())
		Expect(stdout).To(ContainSubstring("PASS Sample Tests /apps/sample/tests/SampleTests.js"))
		Expect(stdout).To(ContainSubstring("PASS Plaintext Tests /apps/sample/tests/PlaintextTests.js"))
		Expect(stdout).To(ContainSubstring("Suites: 5  Cases: 9  passed: 9  failed: 0"))
		Expect(stdout).To(ContainSubstring("failed: 0  skipped: 0"))
		Expect(stdout).To(ContainSubstring(": PASSED"))
	})

	It("should fail when no suite is registered", func() {
		cfg := sampleConfig()
		cfg.Input.Directories = []string{GinkgoT().TempDir()}
		_, _, err := execute("run", "--all", "-c", writeConfig(cfg))
		Expect(err).To(MatchError(ContainSubstring("no suites to run")))
		Expect(errors.Is(err, cli.ErrRunFailed)).To(BeFalse())
	})

	It("should run only the suites named on the command line", func() {
		stdout, _, err := execute("run", "-c", cfgPath, "/apps/sample/tests/MarkdownTests.js")
		Expect(err).ToNot(HaveOccurred())
		Expect(stdout).To(ContainSubstring("Markdown Tests"))
		Expect(stdout).ToNot(ContainSubstring("Sample Tests"))
		Expect(stdout).To(ContainSubstring("Suites: 1  Cases: 2"))
	})

	It("should reject an unknown suite path", func() {
		_, _, err := execute("run", "-c", cfgPath, "/apps/missing.js")
		Expect(errors.Is(err, domain.ErrNotFound)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("pagecheck list"))
	})

	It("should reject --all together with paths", func() {
		_, _, err := execute("run", "--all", "-c", cfgPath, "/apps/sample/tests/SampleTests.js")
		Expect(err).To(MatchError(ContainSubstring("--all")))
	})

	It("should return ErrRunFailed when a suite fails", func() {
		cfgPath = writeConfig(sampleConfig(suiteDir(brokenSuite)))
		stdout, _, err := execute("run", "-c", cfgPath)
		Expect(err).To(MatchError(cli.ErrRunFailed))
		Expect(stdout).To(ContainSubstring("FAIL Broken /apps/broken/tests/BrokenTests.js"))
		Expect(stdout).To(ContainSubstring("expected: /content/sample/fr.html"))
		Expect(stdout).To(ContainSubstring(": FAILED"))
	})

	It("should write the JSON results file", func() {
		results := filepath.Join(GinkgoT().TempDir(), "results.json")
		_, _, err := execute("run", "-c", cfgPath, "--results", results, "--parallel", "3")
		Expect(err).ToNot(HaveOccurred())

		data, err := os.ReadFile(results)
		Expect(err).ToNot(HaveOccurred())
		var decoded struct {
			RunID  string `json:"run_id"`
			Passed bool   `json:"passed"`
			Totals struct {
				Cases int `json:"cases"`
			} `json:"totals"`
			Suites []domain.SuiteResult `json:"suites"`
		}
		Expect(json.Unmarshal(data, &decoded)).To(Succeed())
		Expect(decoded.RunID).ToNot(BeEmpty())
		Expect(decoded.Passed).To(BeTrue())
		Expect(decoded.Totals.Cases).To(Equal(9))
		Expect(decoded.Suites).To(HaveLen(5))
		for _, s := range decoded.Suites {
			Expect(s.Status).To(Equal(domain.StatusPassed), s.Name)
		}
	})

	It("should render the markdown report", func() {
		stdout, _, err := execute("run", "-c", cfgPath, "--format", "markdown")
		Expect(err).ToNot(HaveOccurred())
		Expect(stdout).To(HavePrefix("# pagecheck report"))
	})

	It("should draw progress on stderr", func() {
		_, stderr, err := execute("run", "-c", cfgPath, "--progress")
		Expect(err).ToNot(HaveOccurred())
		Expect(stderr).To(ContainSubstring("Running cases"))
	})

	It("should take the pages directory from the environment", func() {
		cfg := sampleConfig()
		cfg.Backend.PagesDir = ""
		cfgPath = writeConfig(cfg)
		Expect(os.Setenv("PAGECHECK_PAGES_DIR", fixture("pages"))).To(Succeed())
		DeferCleanup(os.Unsetenv, "PAGECHECK_PAGES_DIR")

		_, _, err := execute("run", "-c", cfgPath, "/apps/sample/tests/SampleTests.js")
		Expect(err).ToNot(HaveOccurred())
	})

	It("should fail on a config file that does not exist", func() {
		_, _, err := execute("run", "-c", filepath.Join(GinkgoT().TempDir(), "missing.yaml"))
		var derr *domain.Error
		Expect(errors.As(err, &derr)).To(BeTrue())
		Expect(derr.Phase).To(Equal("config"))
	})
})

var _ = Describe("list", func() {
	It("should print registered suites with their case counts", func() {
		stdout, _, err := execute("list", "-c", writeConfig(sampleConfig()))
		Expect(err).ToNot(HaveOccurred())
		Expect(stdout).To(HavePrefix("PATH"))
		Expect(stdout).To(MatchRegexp(`/apps/sample/tests/SampleTests.js\s+Sample Tests\s+2\s+6\s`))
		Expect(stdout).To(MatchRegexp(`/apps/sample/tests/HiddenTests.js\s+Hidden Content Tests\s+1\s+4\s`))
		Expect(stdout).ToNot(ContainSubstring("Not registered"))
	})

	It("should print suites defined with register=false separately", func() {
		stdout, _, err := execute("list", "-c", writeConfig(sampleConfig(suiteDir(draftSuite))))
		Expect(err).ToNot(HaveOccurred())
		Expect(stdout).To(ContainSubstring("Not registered:"))
		Expect(stdout).To(ContainSubstring("  Draft (1 cases, 1 steps, "))
	})
})

var _ = Describe("validate", func() {
	It("should report what was loaded", func() {
		cfgPath := writeConfig(sampleConfig())
		stdout, _, err := execute("validate", "-c", cfgPath)
		Expect(err).ToNot(HaveOccurred())
		Expect(stdout).To(ContainSubstring("is valid"))
		Expect(stdout).To(ContainSubstring("5 suite(s) defined in 4 file(s), 5 registered."))
	})

	It("should reject invalid configuration values", func() {
		cfg := sampleConfig()
		cfg.Run.Parallelism = 0
		_, _, err := execute("validate", "-c", writeConfig(cfg))
		Expect(err).To(MatchError(ContainSubstring("parallelism")))
	})

	It("should reject an invalid suite definition", func() {
		cfg := sampleConfig()
		cfg.Input.Directories = []string{fixture("invalid")}
		_, _, err := execute("validate", "-c", writeConfig(cfg))
		Expect(err).To(MatchError(ContainSubstring("validation failed")))
	})

	It("should not log credentials", func() {
		cfg := sampleConfig()
		cfg.Backend.Password = "s3cret-value"
		cfg.Backend.Headers = map[string]string{"X-Api-Key": "key-value"}
		_, stderr, err := execute("validate", "-v", "-c", writeConfig(cfg))
		Expect(err).ToNot(HaveOccurred())
		Expect(stderr).To(ContainSubstring("Loaded config"))
		Expect(stderr).ToNot(ContainSubstring("s3cret-value"))
		Expect(stderr).ToNot(ContainSubstring("key-value"))
	})

	It("should reject a report format with no template", func() {
		_, _, err := execute("validate", "-c", writeConfig(sampleConfig()), "--format", "html")
		Expect(err).To(HaveOccurred())
	})
})

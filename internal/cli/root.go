package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/frherrer/pagecheck/internal/config"
	"github.com/frherrer/pagecheck/internal/domain"
)

// ErrRunFailed is returned by the run command when a suite did not pass.
// The report already describes the failures.
var ErrRunFailed = errors.New("one or more suites did not pass")

// options holds the persistent flags.
type options struct {
	cfgFile  string
	verbose  bool
	envFile  string
	baseURL  string
	pagesDir string
	timeout  string
	format   string
	results  string
	progress bool
	parallel int
	failFast bool
	noColor  bool
}

// app is the state shared by the subcommands of one invocation.
type app struct {
	opts    options
	cfg     *config.Config
	log     *logrus.Logger
	logFile io.Closer
}

// NewRootCommand builds the pagecheck command tree.
func NewRootCommand() *cobra.Command {
	a := &app{log: logrus.New()}

	rootCmd := &cobra.Command{
		Use:   "pagecheck",
		Short: "Run declarative page tests against AEM sites",
		Long: `pagecheck loads test suites written as YAML or as tagged blocks in
documentation (Markdown, AsciiDoc, plain text), registers them by path and runs
their navigate / location / visibility steps against a live site or a
directory of rendered pages.

Everything is driven by a YAML configuration file (pagecheck.yaml).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadConfig(cmd); err != nil {
				return err
			}
			return a.setupLogger(cmd.ErrOrStderr())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logFile != nil {
				_ = a.logFile.Close()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.opts.cfgFile, "config", "c", "pagecheck.yaml", "config file path")
	flags.BoolVarP(&a.opts.verbose, "verbose", "v", false, "enable verbose output")
	flags.StringVar(&a.opts.envFile, "env-file", ".env", "file with PAGECHECK_* variables")
	flags.StringVar(&a.opts.baseURL, "base-url", "", "site to test, overrides backend.base_url")
	flags.StringVar(&a.opts.pagesDir, "pages-dir", "", "serve pages from this directory instead of a live site")
	flags.StringVar(&a.opts.timeout, "timeout", "", "timeout of each backend operation, e.g. 10s")
	flags.StringVar(&a.opts.format, "format", "", "report template: text, markdown or a custom one")
	flags.StringVar(&a.opts.results, "results", "", "write JSON results to this file")
	flags.BoolVar(&a.opts.progress, "progress", false, "show a progress bar on stderr")
	flags.IntVar(&a.opts.parallel, "parallel", 0, "number of suites to run at once")
	flags.BoolVar(&a.opts.failFast, "fail-fast", false, "stop starting suites after the first failure")
	flags.BoolVar(&a.opts.noColor, "no-color", false, "disable coloured output")

	rootCmd.AddCommand(newRunCmd(a), newListCmd(a), newValidateCmd(a))
	return rootCmd
}

// loadConfig builds the effective configuration: defaults, the config file,
// the env file, PAGECHECK_* variables, then flags.
func (a *app) loadConfig(cmd *cobra.Command) error {
	flags := cmd.Flags()

	cfg := config.DefaultConfig()
	if _, err := os.Stat(a.opts.cfgFile); err == nil || flags.Changed("config") {
		loaded, err := config.Load(a.opts.cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	if err := config.LoadEnvFile(a.opts.envFile, flags.Changed("env-file")); err != nil {
		return err
	}
	if err := config.ApplyEnv(cfg, nil); err != nil {
		return err
	}

	if flags.Changed("base-url") {
		cfg.Backend.BaseURL = a.opts.baseURL
	}
	if flags.Changed("pages-dir") {
		cfg.Backend.PagesDir = a.opts.pagesDir
	}
	if flags.Changed("timeout") {
		cfg.Run.Timeout = a.opts.timeout
	}
	if flags.Changed("format") {
		cfg.Report.Format = a.opts.format
	}
	if flags.Changed("results") {
		cfg.Report.ResultsFile = a.opts.results
	}
	if flags.Changed("progress") {
		cfg.Report.Progress = a.opts.progress
	}
	if flags.Changed("parallel") {
		cfg.Run.Parallelism = a.opts.parallel
	}
	if flags.Changed("fail-fast") {
		cfg.Run.FailFast = a.opts.failFast
	}
	if a.opts.noColor {
		cfg.Report.Color = "never"
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// setupLogger configures the logger from logging.level and --verbose. Logs go
// to logging.file when set, stderr otherwise.
func (a *app) setupLogger(stderr io.Writer) error {
	name := a.cfg.Logging.Level
	if name == "" {
		name = "info"
	}
	level, err := logrus.ParseLevel(name)
	if err != nil {
		return domain.NewError("config", a.opts.cfgFile, 0, "invalid logging.level", err)
	}
	if a.opts.verbose {
		level = logrus.DebugLevel
	}
	a.log.SetLevel(level)
	a.log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	a.log.SetOutput(stderr)

	if path := a.cfg.Logging.File; path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return domain.NewError("config", path, 0, "failed to open log file", err)
		}
		a.log.SetOutput(f)
		a.log.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
		a.logFile = f
	}

	a.log.WithFields(logrus.Fields{
		"config": a.opts.cfgFile,
		"level":  level.String(),
	}).Debug("configuration loaded")
	return nil
}

// printf writes to the command's standard output.
func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}

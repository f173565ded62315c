package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/frherrer/pagecheck/internal/domain"
	"github.com/frherrer/pagecheck/internal/report"
	"github.com/frherrer/pagecheck/internal/runner"
	"github.com/frherrer/pagecheck/internal/suite"
	tmpl "github.com/frherrer/pagecheck/internal/template"
)

func newRunCmd(a *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "run [suite-path...]",
		Short: "Run registered suites",
		Long: `Runs the suites registered under the given paths, in the order given.
With no path, or with --all, every registered suite runs in registration order.

The exit code is 0 only when every suite that ran passed.`,
		Example: `  pagecheck run /apps/sample/tests/SampleTests.js
  pagecheck run --all --pages-dir ./rendered --format markdown`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all && len(args) > 0 {
				return fmt.Errorf("--all cannot be combined with suite paths")
			}
			return a.run(cmd, args)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "run every registered suite")
	return cmd
}

func (a *app) run(cmd *cobra.Command, paths []string) error {
	registry, _, err := a.loadSuites()
	if err != nil {
		return err
	}
	suites, err := selectSuites(registry, paths)
	if err != nil {
		return err
	}
	if len(suites) == 0 {
		return domain.NewErrorWithSuggestion("run", a.opts.cfgFile, 0,
			"no suites to run",
			"check input.directories and input.include, then run 'pagecheck list'",
			nil)
	}

	policy, err := runner.ParsePolicy(a.cfg.Run.OnAssertionFailure)
	if err != nil {
		return err
	}
	engine, err := tmpl.NewEngine(a.cfg.Report.TemplateDir, tmpl.CustomFuncMap(a.colorize(cmd.OutOrStdout())))
	if err != nil {
		return err
	}
	b, err := a.newBackend()
	if err != nil {
		return err
	}

	r := runner.New(registry, b, runner.Options{
		Timeout:            a.cfg.Run.TimeoutDuration(),
		OnAssertionFailure: policy,
		Parallelism:        a.cfg.Run.Parallelism,
		FailFast:           a.cfg.Run.FailFast,
	}, a.log)

	var progress *report.Progress
	if a.cfg.Report.Progress {
		if a.cfg.Report.Color == "never" {
			color.NoColor = true
		}
		progress = report.NewProgress(cmd.ErrOrStderr(), caseCount(suites))
		r.WithObserver(progress)
	}

	res := r.RunSuites(cmd.Context(), suites)
	if progress != nil {
		progress.Finish()
	}

	if err := report.NewReporter(engine, a.cfg.Report.Format).Render(cmd.OutOrStdout(), res); err != nil {
		return err
	}
	if path := a.cfg.Report.ResultsFile; path != "" {
		if err := report.WriteResults(path, res); err != nil {
			return err
		}
		a.log.WithField("file", path).Info("results written")
	}

	if !res.Passed() {
		return ErrRunFailed
	}
	return nil
}

// selectSuites looks up paths, or returns every registered suite when paths is empty.
func selectSuites(registry *suite.Registry, paths []string) ([]domain.Suite, error) {
	if len(paths) == 0 {
		return registry.All(), nil
	}
	suites := make([]domain.Suite, 0, len(paths))
	for _, p := range paths {
		s, err := registry.Lookup(p)
		if err != nil {
			return nil, domain.NewErrorWithSuggestion("run", "", 0,
				"unknown suite path",
				"run 'pagecheck list' to see the registered paths",
				err)
		}
		suites = append(suites, s)
	}
	return suites, nil
}

func caseCount(suites []domain.Suite) int {
	n := 0
	for _, s := range suites {
		n += len(s.TestCases)
	}
	return n
}

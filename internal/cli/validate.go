package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	tmpl "github.com/frherrer/pagecheck/internal/template"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and suite definitions",
		Long: `Loads the configuration file and every suite definition, checking for
invalid values, unknown steps, blocked URLs and duplicate suite paths.
Nothing is run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := tmpl.NewEngine(a.cfg.Report.TemplateDir, tmpl.CustomFuncMap(false))
			if err != nil {
				return fmt.Errorf("failed to load templates: %w", err)
			}
			if !slices.Contains(engine.ListTemplates(), a.cfg.Report.Format) {
				return fmt.Errorf("report.format %q: no template with that name, have %v",
					a.cfg.Report.Format, engine.ListTemplates())
			}

			registry, summary, err := a.loadSuites()
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}

			printf(cmd, "Configuration %q is valid.\n", a.opts.cfgFile)
			printf(cmd, "%d suite(s) defined in %d file(s), %d registered.\n",
				len(summary.Suites), len(summary.Files), registry.Len())
			a.log.Debugf("Loaded config: %+v", a.cfg.Redacted())
			return nil
		},
	}
}

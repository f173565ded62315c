package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered suites",
		Long:  `Loads the suite definitions and prints every registered suite with its number of test cases and steps, followed by the suites defined with register=false.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, summary, err := a.loadSuites()
			if err != nil {
				return err
			}

			if registry.Len() == 0 {
				printf(cmd, "No suites registered.\n")
			} else {
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "PATH\tNAME\tCASES\tSTEPS\tSOURCE")
				for _, s := range registry.All() {
					fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", s.Path, s.Name, len(s.TestCases), s.StepCount(), s.SourceFile)
				}
				if err := w.Flush(); err != nil {
					return err
				}
			}

			if unregistered := summary.Unregistered(); len(unregistered) > 0 {
				printf(cmd, "\nNot registered:\n")
				for _, s := range unregistered {
					printf(cmd, "  %s (%d cases, %d steps, %s)\n", s.Name, len(s.TestCases), s.StepCount(), s.SourceFile)
				}
			}
			return nil
		},
	}
}

package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/phrazzld/ankigen/internal/examples"
	"github.com/phrazzld/ankigen/internal/packager"
	"github.com/spf13/cobra"
)

// The listing commands need no credential: templates are embedded assets
// and domains are plain files on disk.

var domainsFlags struct {
	examplesDir string
}

var domainsCmd = &cobra.Command{
	Use:   "domains",
	Short: "List available few-shot example domains",
	RunE: func(cmd *cobra.Command, args []string) error {
		loader, err := examples.NewLoader(
			slog.New(slog.NewTextHandler(io.Discard, nil)),
			domainsFlags.examplesDir)
		if err != nil {
			return err
		}

		domains := loader.ListDomains()
		if len(domains) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No example domains found under %s/domains\n", domainsFlags.examplesDir)
			return nil
		}
		for _, name := range domains {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List available card template sets",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range packager.ListTemplates() {
			if name == packager.DefaultTemplate {
				fmt.Fprintf(cmd.OutOrStdout(), "%s (default)\n", name)
				continue
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	domainsCmd.Flags().StringVar(&domainsFlags.examplesDir, "examples-dir", "examples",
		"directory holding domain example files")
	rootCmd.AddCommand(domainsCmd)
	rootCmd.AddCommand(templatesCmd)
}

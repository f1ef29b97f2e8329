package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-maker/internal/batch"
)

func newManifestCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "manifest [DIR]",
		Short: "Show how an output directory was generated",
		Long: `Reads manifest.json from DIR (default: the configured output directory) and
prints the run id, seed and per-class totals needed to repeat the run.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			} else {
				cfg, err := root.loadConfig()
				if err != nil {
					return err
				}
				dir = cfg.OutDir
			}

			m, err := batch.ReadManifest(filepath.Join(dir, batch.ManifestName))
			if err != nil {
				return err
			}
			if m.Summary == nil {
				m.Summary = &batch.Summary{PerClass: make([]int, len(m.Counts))}
			}
			printRunSummary(cmd.OutOrStdout(), dir, m)
			return nil
		},
	}
}

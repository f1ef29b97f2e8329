package cli

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/image-maker/internal/catalog"
)

func newCatalogCmd(root *rootOptions) *cobra.Command {
	var objDir, bkgDir string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Show the class index of each object image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("obj-dir") {
				cfg.ObjDir = objDir
			}
			if cmd.Flags().Changed("bkg-dir") {
				cfg.BkgDir = bkgDir
			}

			cat, err := catalog.Load(cfg.ObjDir, cfg.BkgDir)
			if err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Debug("catalog loaded", "classes", cat.NumClasses(), "backgrounds", len(cat.Backgrounds))
			printCatalog(cmd.OutOrStdout(), cat)
			return nil
		},
	}

	cmd.Flags().StringVar(&objDir, "obj-dir", "obj", "directory of object images")
	cmd.Flags().StringVar(&bkgDir, "bkg-dir", "bkg", "directory of background images")
	return cmd
}

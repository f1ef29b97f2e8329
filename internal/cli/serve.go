package cli

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/image-maker/internal/server"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve dataset generation as MCP tools over stdin/stdout",
		Long: `serve speaks JSON-RPC 2.0 (the Model Context Protocol) on stdin/stdout and
exposes the dataset_catalog, dataset_generate, image_load and image_dimensions
tools. Logs go to stderr; stdout is reserved for the protocol.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			logger := loggerFromContext(cmd.Context())
			logger.Debug("image-maker MCP server", "version", version, "commit", commit, "built", date)
			return server.New(cfg, logger, version).Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

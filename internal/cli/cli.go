// Package cli implements the image-maker command-line interface.
//
// # Commands
//
//   - generate: composite objects onto backgrounds and write labeled samples
//   - catalog: show the class index assigned to each object image
//   - manifest: show how an output directory was generated
//   - serve: run the MCP server on stdin/stdout
//
// # Configuration
//
// Every command starts from config.Load(--config), so defaults, the TOML
// file and IMAGE_MAKER_* variables apply everywhere. Command flags override
// them when given explicitly.
//
// # Logging
//
// Logs go to stderr at info level; --verbose (-v) or
// IMAGE_MAKER_LOG_LEVEL=debug switches to debug. The logger travels in the
// command context.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-maker/internal/config"
)

var (
	version = "dev"     // semantic version
	commit  = "unknown" // git commit SHA
	date    = "unknown" // build timestamp
)

// SetVersion sets the version information displayed by --version.
// The main package calls it with values injected via ldflags.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	verbose    bool
	configPath string
	getenv     func(string) string
}

// loadConfig reads the configuration named by --config.
func (o *rootOptions) loadConfig() (config.Config, error) {
	return config.Load(o.configPath, o.getenv)
}

// Execute runs the image-maker CLI.
func Execute(ctx context.Context, getenv func(string) string) error {
	return NewRootCommand(getenv).ExecuteContext(ctx)
}

// NewRootCommand builds the command tree. getenv is consulted for the log
// level and for IMAGE_MAKER_* configuration overrides.
func NewRootCommand(getenv func(string) string) *cobra.Command {
	opts := &rootOptions{getenv: getenv}

	root := &cobra.Command{
		Use:   "image-maker",
		Short: "image-maker synthesizes labeled object-detection training images",
		Long: `image-maker composites object cutouts onto random backgrounds, applies random
resize, flip, affine distortion, blur, tint and gamma darkening, and writes each
sample as a JPEG with a normalized bounding-box label file.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			level := logLevel(opts.verbose, opts.getenv(EnvLogLevel))
			cmd.SetContext(withLogger(ctx, newLogger(cmd.ErrOrStderr(), level)))
		},
	}

	root.SetVersionTemplate(versionTemplate())
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "TOML configuration file")

	root.AddCommand(newGenerateCmd(opts))
	root.AddCommand(newCatalogCmd(opts))
	root.AddCommand(newManifestCmd(opts))
	root.AddCommand(newServeCmd(opts))

	return root
}

func versionTemplate() string {
	return fmt.Sprintf("image-maker %s\ncommit: %s\nbuilt: %s\n", version, commit, date)
}

package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-maker/internal/batch"
	"github.com/ironsheep/image-maker/internal/composer"
	"github.com/ironsheep/image-maker/internal/config"
	"github.com/ironsheep/image-maker/internal/errors"
)

type generateOptions struct {
	objDir string
	bkgDir string
	outDir string
	seed   uint64

	noResize  bool
	noFlip    bool
	noDistort bool
	noBlur    bool
	noTint    bool
	noDarken  bool
	noop      bool

	transparent    bool
	transparentKey string
	workers        int
	jpegQuality    int
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate [flags] COUNT...",
		Short: "Generate labeled training images",
		Long: `Generate writes COUNT samples per object class followed by a final COUNT of
negative samples (backgrounds with an empty label). With N object images exactly
N+1 counts are required, for example "generate 100 100 20" for two classes.

Each sample is written as <class>_<n>.jpg with a <class>_<n>.txt label holding
"<class> <cx> <cy> <w> <h>" normalized to the image size.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, root, opts, args)
		},
	}

	bindGenerateFlags(cmd, opts)
	return cmd
}

func bindGenerateFlags(cmd *cobra.Command, opts *generateOptions) {
	defaults := config.Default()
	f := cmd.Flags()
	f.StringVar(&opts.objDir, "obj-dir", defaults.ObjDir, "directory of object images")
	f.StringVar(&opts.bkgDir, "bkg-dir", defaults.BkgDir, "directory of background images")
	f.StringVarP(&opts.outDir, "out", "o", defaults.OutDir, "output directory")
	f.Uint64Var(&opts.seed, "seed", 0, "random seed (0 seeds from the clock)")
	f.BoolVar(&opts.noResize, "no-resize", false, "disable random resizing")
	f.BoolVar(&opts.noFlip, "no-flip", false, "disable random horizontal flips")
	f.BoolVar(&opts.noDistort, "no-distort", false, "disable random affine distortion")
	f.BoolVar(&opts.noBlur, "no-blur", false, "disable random blur")
	f.BoolVar(&opts.noTint, "no-tint", false, "disable random water tint")
	f.BoolVar(&opts.noDarken, "no-darken", false, "disable random gamma darkening")
	f.BoolVar(&opts.noop, "noop", false, "disable every transform")
	f.BoolVar(&opts.transparent, "transparent", false, "show the background through key-coloured object pixels")
	f.StringVar(&opts.transparentKey, "transparent-key", defaults.Compose.TransparentKey, "transparency key colour as #rrggbb")
	f.IntVar(&opts.workers, "workers", defaults.Workers, "concurrent image writers")
	f.IntVar(&opts.jpegQuality, "jpeg-quality", defaults.JPEGQuality, "JPEG quality (1-100)")
}

func runGenerate(cmd *cobra.Command, root *rootOptions, opts *generateOptions, args []string) error {
	counts, err := parseCounts(args)
	if err != nil {
		return err
	}
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	applyGenerateFlags(cmd, opts, &cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	m, err := batch.Run(ctx, batch.Job{Config: cfg, Counts: counts}, loggerFromContext(ctx))
	if err != nil {
		return err
	}
	printRunSummary(cmd.OutOrStdout(), cfg.OutDir, m)
	return nil
}

// parseCounts converts the positional COUNT arguments.
func parseCounts(args []string) ([]int, error) {
	counts := make([]int, len(args))
	for i, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "count %q is not an integer", arg)
		}
		counts[i] = n
	}
	return counts, nil
}

// applyGenerateFlags copies explicitly set flags over cfg. Flags left at
// their defaults do not override the config file or environment.
func applyGenerateFlags(cmd *cobra.Command, opts *generateOptions, cfg *config.Config) {
	changed := cmd.Flags().Changed

	if changed("obj-dir") {
		cfg.ObjDir = opts.objDir
	}
	if changed("bkg-dir") {
		cfg.BkgDir = opts.bkgDir
	}
	if changed("out") {
		cfg.OutDir = opts.outDir
	}
	if changed("seed") {
		cfg.Seed = opts.seed
	}
	if changed("workers") {
		cfg.Workers = opts.workers
	}
	if changed("jpeg-quality") {
		cfg.JPEGQuality = opts.jpegQuality
	}
	if changed("transparent") {
		cfg.Compose.Transparent = opts.transparent
	}
	if changed("transparent-key") {
		cfg.Compose.TransparentKey = opts.transparentKey
	}

	if opts.noop {
		cfg.Compose.Enabled = composer.Toggles{}
		return
	}
	for name, off := range map[string]bool{
		"resize":  opts.noResize,
		"flip":    opts.noFlip,
		"distort": opts.noDistort,
		"blur":    opts.noBlur,
		"tint":    opts.noTint,
		"darken":  opts.noDarken,
	} {
		if off {
			// names are fixed above, Disable cannot fail
			_ = cfg.Compose.Enabled.Disable(name)
		}
	}
}

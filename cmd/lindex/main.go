package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/common-nighthawk/go-figure"
	bannercolor "github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/forest-guardian/lindex/internal/config"
	"github.com/forest-guardian/lindex/internal/log"
	"github.com/forest-guardian/lindex/internal/notification"
	"github.com/forest-guardian/lindex/internal/pipeline"
	"github.com/forest-guardian/lindex/internal/raster"
	"github.com/forest-guardian/lindex/internal/scene"
	"github.com/forest-guardian/lindex/internal/spectral"
	"github.com/forest-guardian/lindex/output"
)

func printBanner() {
	banner := figure.NewFigure("LINDEX", "isometric1", true)
	bannercolor.Cyan("%s", banner.String())
	fmt.Println()
}

func newRootCommand(env config.Environment) *cobra.Command {
	opts := env.Options()

	cmd := &cobra.Command{
		Use:   "lindex <indir>",
		Short: "Build a spectral index time series from Landsat scenes",
		Long: "Extracts Landsat archives found in <indir>, crops every band to the bounding box,\n" +
			"drops cloudy scenes and writes the chosen index for each clear scene, then\n" +
			"assembles the visualizations into a time-lapse.",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.InputDir = args[0]
			return run(opts)
		},
	}

	flags := cmd.Flags()
	flags.Float64SliceVarP(&opts.BoundingBox, "bounding-box", "b", nil, "window in the scene CRS as xmin,ymin,xmax,ymax")
	flags.Float64VarP(&opts.HowStrict, "how-strict", "c", opts.HowStrict, "share of pixels brighter than the mode that marks a scene cloudy, in (0,1]; 999 disables screening")
	flags.StringVarP(&opts.Index, "index", "i", opts.Index, "index to compute: "+strings.Join(spectral.Names(), ", "))
	flags.BoolVar(&opts.Video, "video", opts.Video, "also write the time-lapse as an AVI")
	flags.IntVar(&opts.VisMinSize, "vis-min-size", opts.VisMinSize, "shortest edge in pixels visualizations are scaled up to")
	flags.BoolVar(&opts.Debug, "debug", opts.Debug, "development logging")
	flags.BoolVarP(&opts.Quiet, "quiet", "q", opts.Quiet, "no banner or progress bars")
	_ = cmd.MarkFlagRequired("bounding-box")

	return cmd
}

func run(opts config.Options) error {
	cfg, err := config.Build(opts)
	if err != nil {
		bannercolor.Red("Invalid configuration: %v", err)
		return err
	}

	if err := log.Init(cfg.Debug); err != nil {
		return err
	}
	defer log.Sync()

	if !cfg.Quiet {
		printBanner()
	}

	notifier := notification.NewDiscord(cfg.DiscordWebhookURL)
	p := pipeline.New(cfg, scene.TarArchiveSource{}, raster.NewGDALStore(), output.NewVisualizer(cfg.VisMinSize))

	summary, err := p.Run()
	if err != nil {
		log.Errorw("Run failed", "run_id", p.RunID(), "error", err)
		bannercolor.Red("Run failed: %v", err)
		if nerr := notifier.SendError(fmt.Sprintf("Run %s on %s failed: %v", p.RunID(), cfg.InputDir, err)); nerr != nil {
			log.Warnw("Failed to send notification", "error", nerr)
		}
		return err
	}

	message := fmt.Sprintf("%d scenes written, %d cloudy, %d missing bands.", summary.Written, summary.Cloudy, summary.BandMissing)
	bannercolor.Green("Done! %s", message)
	if summary.Animation != "" {
		bannercolor.Green("Time-lapse: %s", summary.Animation)
	}
	bannercolor.Green("Outputs are in %s", summary.OutputDir)

	if nerr := notifier.SendSuccess(fmt.Sprintf("Run %s on %s: %s", p.RunID(), cfg.InputDir, message)); nerr != nil {
		log.Warnw("Failed to send notification", "error", nerr)
	}
	return nil
}

func main() {
	env, err := config.LoadEnvironment()
	if err != nil {
		bannercolor.Red("%v", err)
		os.Exit(1)
	}

	if err := newRootCommand(env).Execute(); err != nil {
		os.Exit(1)
	}
}

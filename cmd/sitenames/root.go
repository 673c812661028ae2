package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/psdplots/plot-catalog-service/internal/adapter/fdsn"
	"github.com/psdplots/plot-catalog-service/internal/archive"
	"github.com/psdplots/plot-catalog-service/internal/config"
	"github.com/psdplots/plot-catalog-service/internal/metadata"
	"github.com/psdplots/plot-catalog-service/internal/observability"
	"github.com/spf13/cobra"
)

type options struct {
	plotsDir  string
	namesOut  string
	metaOut   string
	fdsnURL   string
	timeout   time.Duration
	skipNames bool
	skipMeta  bool
}

func newRootCommand() *cobra.Command {
	var opts options

	rootCmd := &cobra.Command{
		Use:           "sitenames",
		Short:         "Fetch station names and coordinates for every station in the plot archive",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			applyDefaults(cmd, &opts, cfg)
			return run(cmd, opts, cfg)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVar(&opts.plotsDir, "plots-dir", "", "Archive root (default $PLOTS_DIR)")
	flags.StringVar(&opts.namesOut, "names-out", "", "Site-name document to write (default $SITE_NAMES_FILE)")
	flags.StringVar(&opts.metaOut, "meta-out", "", "Station-metadata document to write (default $STATION_META_FILE)")
	flags.StringVar(&opts.fdsnURL, "fdsn-url", "", "FDSN station service base URL (default $FDSN_URL)")
	flags.DurationVar(&opts.timeout, "timeout", 0, "Per-request timeout (default $FDSN_TIMEOUT)")
	flags.BoolVar(&opts.skipNames, "skip-names", false, "Do not write the site-name document")
	flags.BoolVar(&opts.skipMeta, "skip-meta", false, "Do not write the station-metadata document")

	return rootCmd
}

// applyDefaults fills unset flags from the service configuration.
func applyDefaults(cmd *cobra.Command, opts *options, cfg *config.Config) {
	if !cmd.Flags().Changed("plots-dir") {
		opts.plotsDir = cfg.PlotsDir
	}
	if !cmd.Flags().Changed("names-out") {
		opts.namesOut = cfg.SiteNamesFile
	}
	if !cmd.Flags().Changed("meta-out") {
		opts.metaOut = cfg.StationMetaFile
	}
	if !cmd.Flags().Changed("fdsn-url") {
		opts.fdsnURL = cfg.FDSNURL
	}
	if !cmd.Flags().Changed("timeout") {
		opts.timeout = cfg.FDSNTimeout
	}
	if opts.skipNames {
		opts.namesOut = ""
	}
	if opts.skipMeta {
		opts.metaOut = ""
	}
}

func run(cmd *cobra.Command, opts options, cfg *config.Config) error {
	logger := observability.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := fdsn.NewClient(opts.fdsnURL, opts.timeout, logger)
	docs, err := metadata.Build(ctx, archive.New(opts.plotsDir), client, logger)
	if err != nil {
		return err
	}
	if err := docs.Write(opts.namesOut, opts.metaOut); err != nil {
		return err
	}

	logger.Info("station documents written",
		"site_names", opts.namesOut,
		"station_meta", opts.metaOut,
		"fdsn_url", opts.fdsnURL,
	)
	return nil
}

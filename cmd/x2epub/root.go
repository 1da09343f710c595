package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/x2epub/internal/api"
	"github.com/jackzampolin/x2epub/internal/config"
	"github.com/jackzampolin/x2epub/internal/home"
	"github.com/jackzampolin/x2epub/internal/svcctx"
	"github.com/jackzampolin/x2epub/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "x2epub",
	Short: "Convert TEI-style XML documents into ePub 2/3 books",
	Long: `x2epub converts a TEI-style XML document into an ePub publication.

A conversion job is described by a YAML file:
  - the source xml, stylesheet, cover and license page template
  - the ePub version (2 or 3) and output path
  - text replacements and line break handling
  - an optional epubcheck validator (local java or docker)

Any job key can be overridden from the environment, e.g. X2EPUB_EPUB_VER=2.`,
	Version:      version.GitRelease,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := api.SetOutputFormat(outputFormat); err != nil {
			return err
		}

		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		h, err := home.New(homeDir)
		if err != nil {
			return err
		}

		cmd.SetContext(svcctx.WithServices(cmd.Context(), &svcctx.Services{
			Logger:     logger,
			Home:       h,
			ConfigFile: cfgFile,
		}))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "job file (default: ./x2epub.yaml or ~/.x2epub/x2epub.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "x2epub home directory (default: ~/.x2epub)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "enable debug logging",
	)

	rootCmd.AddCommand(versionCmd)
}

// loadJob reads the job configuration for the running command.
func loadJob(cmd *cobra.Command) (*config.Manager, error) {
	ctx := cmd.Context()
	var search []string
	if h := svcctx.HomeFrom(ctx); h != nil {
		search = append(search, h.Path())
	}
	return config.NewManager(svcctx.ConfigFileFrom(ctx), svcctx.LoggerFrom(ctx), search...)
}

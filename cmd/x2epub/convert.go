package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/x2epub/internal/api"
	"github.com/jackzampolin/x2epub/internal/convert"
	"github.com/jackzampolin/x2epub/internal/svcctx"
)

// errInvalidEpub makes the command exit non-zero when epubcheck rejects the book.
var errInvalidEpub = errors.New("epub failed validation")

var watchMode bool

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert the job's xml into an epub",
	Long: `Convert the source document named by the job file into an ePub archive.

The package tree is staged in temp_folder (default: ~/.x2epub/work/<name>),
which is cleared first, then zipped to epub_path. When a validator is
configured the archive is checked with epubcheck.

With --watch the conversion reruns whenever the xml, stylesheet, cover,
license template or the job file itself changes.

Examples:
  x2epub convert --config book.yaml
  X2EPUB_EPUB_VER=2 x2epub convert --config book.yaml
  x2epub convert --config book.yaml --watch`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := svcctx.LoggerFrom(ctx)

		h := svcctx.HomeFrom(ctx)
		if err := h.EnsureExists(); err != nil {
			return err
		}

		mgr, err := loadJob(cmd)
		if err != nil {
			return err
		}
		conv := convert.New(h, logger)

		if watchMode {
			w := convert.NewWatcher(conv, mgr, logger)
			w.OnResult = func(r *convert.Result, err error) {
				if err == nil {
					_ = api.Output(r)
				}
			}
			return w.Run(ctx)
		}

		result, err := conv.Convert(ctx, mgr.Get())
		if err != nil {
			return err
		}
		if err := api.Output(result); err != nil {
			return err
		}
		if result.Report != nil && !result.Report.Valid {
			return errInvalidEpub
		}
		return nil
	},
}

func init() {
	convertCmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "reconvert when inputs change")

	rootCmd.AddCommand(convertCmd)
}

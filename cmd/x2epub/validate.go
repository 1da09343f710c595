package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/x2epub/internal/api"
	"github.com/jackzampolin/x2epub/internal/config"
	"github.com/jackzampolin/x2epub/internal/svcctx"
	"github.com/jackzampolin/x2epub/internal/validator"
)

var (
	validatorType string
	validatorJar  string
)

var validateCmd = &cobra.Command{
	Use:   "validate <epub>",
	Short: "Check an epub with epubcheck",
	Long: `Run epubcheck against an existing archive.

The validator comes from the job file's validator section unless
overridden with --type and --jar.

Examples:
  x2epub validate book.epub --type docker
  x2epub validate book.epub --type java --jar /opt/epubcheck/epubcheck.jar`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		mgr, err := loadJob(cmd)
		if err != nil {
			return err
		}
		vc := mgr.Get().Validator
		if validatorType != "" {
			vc.Type = validatorType
		}
		if validatorJar != "" {
			vc.Path = validatorJar
		}

		v, err := validator.New(vc, svcctx.LoggerFrom(ctx))
		if err != nil {
			return err
		}
		if v == nil {
			return errors.New("no validator configured: set validator.type or pass --type")
		}
		if d, ok := v.(*validator.Docker); ok {
			defer d.Close()
		}

		report, err := v.Validate(ctx, args[0])
		if err != nil {
			return err
		}
		if err := api.Output(report); err != nil {
			return err
		}
		if !report.Valid {
			return errInvalidEpub
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validatorType, "type", "",
		"validator: "+config.ValidatorJava+" or "+config.ValidatorDocker)
	validateCmd.Flags().StringVar(&validatorJar, "jar", "", "epubcheck jar for the java validator")

	rootCmd.AddCommand(validateCmd)
}

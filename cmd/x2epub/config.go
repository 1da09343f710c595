package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/x2epub/internal/api"
	"github.com/jackzampolin/x2epub/internal/config"
	"github.com/jackzampolin/x2epub/internal/svcctx"
)

var forceInit bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Job file commands",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default job file",
	Long: `Write a job file with default values.

Without a path the file is written to the home directory
(~/.x2epub/x2epub.yaml), where every command finds it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := svcctx.HomeFrom(cmd.Context()).ConfigPath()
		if len(args) == 1 {
			path = args[0]
		}
		if _, err := os.Stat(path); err == nil && !forceInit {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		svcctx.LoggerFrom(cmd.Context()).Info("wrote default job file", "path", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved job configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := loadJob(cmd)
		if err != nil {
			return err
		}
		return api.Output(mgr.Get())
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "overwrite an existing file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

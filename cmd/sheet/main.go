// Package main provides the sheet CLI: create stored sheets, apply command
// scripts to them, and move them in and out of CSV, XLSX and workbook JSON.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vogtb/go-spreadsheet/packages/config"
	"github.com/vogtb/go-spreadsheet/packages/store"
)

// app is the state shared by every subcommand once flags are parsed.
type app struct {
	configPath string
	dataDir    string
	logLevel   string

	cfg   config.Config
	store store.Store
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:          "sheet",
		Short:        "Formula spreadsheet engine driven by structured commands",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML config file")
	flags.StringVar(&a.dataDir, "data-dir", "", "Directory holding stored sheets (overrides config)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warning, error (overrides config)")

	rootCmd.AddCommand(
		a.newCmd(),
		a.applyCmd(),
		a.setCmd(),
		a.calcCmd(),
		a.showCmd(),
		a.listCmd(),
		a.renameCmd(),
		a.duplicateCmd(),
		a.deleteCmd(),
		a.exportCmd(),
		a.importCmd(),
		a.workbookCmd(),
	)
	return rootCmd
}

// setup loads configuration, applies flag overrides and opens the store.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = a.dataDir
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.ApplyLogLevel(); err != nil {
		return err
	}

	st, err := store.NewFileStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	a.cfg = cfg
	a.store = st
	return nil
}

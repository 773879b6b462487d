package main

import (
	"fmt"

	"pos-fiscal-ledger/config"
	"pos-fiscal-ledger/pkg/logger"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app carries what every subcommand needs once configuration is loaded.
type app struct {
	configPath string
	cfg        *config.Config
	log        zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "ledgerd",
		Short:         "Tamper-evident POS sales ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			a.cfg = cfg
			a.log = logger.New(cfg.Log.Level, cfg.Log.Pretty)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ./config.yaml or ./config/config.yaml)")

	root.AddCommand(
		newServeCmd(a),
		newMigrateCmd(a),
		newVerifyCmd(a),
		newTokenCmd(a),
	)
	return root
}

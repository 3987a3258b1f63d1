package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/complyhub/internal/config"
	"github.com/bryanwahyu/complyhub/internal/logging"
)

var version = "dev"

type rootOptions struct {
	configPath string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "complyhub",
		Short:         "Compliance assessment analysis and vendor marketplace API",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultPath := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", defaultPath, "path to the YAML config file")

	cmd.AddCommand(newServeCommand(opts), newMigrateCommand(opts))
	return cmd
}

// load reads the config and builds the logger every subcommand uses.
func (o *rootOptions) load() (*config.Config, logging.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

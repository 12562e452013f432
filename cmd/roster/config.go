package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/roster"
)

func newConfigCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "dump or validate configuration",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "dump [config_file]",
			Short: "write the default configuration",
			Long:  "dump writes the default configuration to config_file, or to stdout when omitted.",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg := roster.DefaultConfig()
				if len(args) == 0 {
					return writeYAML(cmd.OutOrStdout(), cfg)
				}

				data, err := yaml.Marshal(cfg)
				if err != nil {
					return fmt.Errorf("failed to encode config: %w", err)
				}

				return os.WriteFile(args[0], data, 0o644) //nolint:gosec // config files are not secret
			},
		},
		&cobra.Command{
			Use:   "validate",
			Short: "check the file given by --config",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := opts.loadConfig()
				if err != nil {
					return err
				}

				logger, err := opts.newLogger(cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				cfg.ValidateWithWarnings(logger)

				fmt.Fprintln(cmd.OutOrStdout(), "configuration is valid")

				return nil
			},
		},
	)

	return cmd
}

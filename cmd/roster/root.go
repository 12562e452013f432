package main

import (
	"fmt"
	"io"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/roster"
)

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	natsURL    string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "roster",
		Short:         "deterministic sticky worker scheduler",
		Long:          "roster assigns workers to a priority pool and to partitions, keeping placements stable across epochs.",
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "roster YAML config file (defaults apply when empty)")
	flags.StringVar(&opts.natsURL, "nats-url", nats.DefaultURL, "NATS server URL")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")

	cmd.AddCommand(
		newPlanCmd(opts),
		newShowCmd(opts),
		newRunCmd(opts),
		newHeartbeatCmd(opts),
		newConfigCmd(opts),
	)

	return cmd
}

// loadConfig reads --config, or returns DefaultConfig when unset.
func (o *globalOptions) loadConfig() (roster.Config, error) {
	if o.configPath == "" {
		return roster.DefaultConfig(), nil
	}

	return roster.LoadConfig(o.configPath)
}

// newLogger writes to w so that command output and logs can be separated.
func (o *globalOptions) newLogger(w io.Writer) (roster.Logger, error) {
	return roster.NewSlogWriterLogger(w, o.logLevel, o.logFormat)
}

func (o *globalOptions) connect() (*nats.Conn, error) {
	nc, err := nats.Connect(o.natsURL,
		nats.Name("roster-cli"),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", o.natsURL, err)
	}

	return nc, nil
}

// writeYAML encodes v as one YAML document with two-space indentation.
func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}

	return enc.Close()
}

package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/msalah0e/notegraph/internal/config"
	"github.com/msalah0e/notegraph/internal/ui"
	"github.com/spf13/cobra"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file location",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), config.Path())
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				var buf bytes.Buffer
				if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
					fatal("Failed to encode config: %v", err)
				}
				if _, err := os.Stat(config.Path()); err != nil {
					fmt.Fprintln(cmd.OutOrStdout(), ui.Subtle.Sprint("# defaults; run `notegraph config init` to write them"))
				}
				fmt.Fprint(cmd.OutOrStdout(), buf.String())
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Write the default config file if none exists",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				if err := config.EnsureExists(); err != nil {
					fatal("Failed to write config: %v", err)
				}
				ui.Good.Printf("  %s Config at %s\n", ui.StatusIcon(true), config.Path())
			},
		},
	)
	return cmd
}

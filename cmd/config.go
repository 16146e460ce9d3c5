package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/fxpick/internal/config"
	"github.com/oakwood-commons/fxpick/internal/filter"
	"github.com/oakwood-commons/fxpick/pkg/settings"
)

func newConfigCmd(params *settings.Run) *cobra.Command {
	var defaults bool
	c := &cobra.Command{
		Use:   "config",
		Short: "Print the merged configuration",
		Long: `Print the configuration fxpick runs with: the built-in defaults with the
config file (--config-file, else $XDG_CONFIG_HOME/fxpick/config.yaml, else
~/.config/fxpick/config.yaml) layered on top.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if defaults {
				_, err := out.Write(config.DefaultYAML())
				return err
			}
			reg, err := filter.DefaultRegistry()
			if err != nil {
				return err
			}
			cfg, err := loadConfig(params, reg)
			if err != nil {
				return err
			}
			data, err := cfg.Marshal()
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		},
	}
	c.Flags().BoolVar(&defaults, "defaults", false, "print the built-in defaults instead")

	c.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := config.ResolvePath(params.ConfigFile, settings.CliBinaryName)
			if path == "" {
				path = "(built-in defaults)"
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	})
	return c
}

package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/fxpick/pkg/settings"
)

// cliVersionString builds the one-line version used by `version`.
func cliVersionString() string {
	v := settings.VersionInformation
	return fmt.Sprintf("%s %s (commit %s, built %s, %s)", settings.CliBinaryName, v.BuildVersion, v.Commit, v.BuildTime, runtime.Version())
}

func newVersionCmd() *cobra.Command {
	var output string
	c := &cobra.Command{
		Use:   "version",
		Short: "Print fxpick version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			switch output {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(settings.VersionInformation)
			case "yaml":
				return yaml.NewEncoder(out).Encode(settings.VersionInformation)
			case "":
				_, err := fmt.Fprintln(out, cliVersionString())
				return err
			default:
				return fmt.Errorf("unknown output format %q (want json or yaml)", output)
			}
		},
	}
	c.Flags().StringVarP(&output, "output", "o", "", "output format: json|yaml (default: one line)")
	return c
}

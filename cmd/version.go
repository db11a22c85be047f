package cmd

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/conneroisu/smallgears/internal/version"
)

func newVersionCommand() *cobra.Command {
	var (
		format   string
		short    bool
		detailed bool
	)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display version information for smallgears.

Examples:
  smallgears version              # Show version and platform
  smallgears version --detailed   # Show every build detail
  smallgears version --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Current()
			out := cmd.OutOrStdout()

			switch format {
			case "json":
				encoder := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(info)
			case "text":
			default:
				return fmt.Errorf("unsupported format: %s (supported: text, json)", format)
			}

			switch {
			case short:
				fmt.Fprintln(out, info.Short())
			case detailed:
				fmt.Fprintln(out, info.Detailed())
			default:
				fmt.Fprintf(out, "smallgears %s\n", info.Short())
				fmt.Fprintf(out, "Go: %s\nPlatform: %s\n", info.GoVersion, info.Platform)
			}
			return nil
		},
	}

	versionCmd.Flags().StringVarP(&format, "format", "f", "text", "output format (text, json)")
	versionCmd.Flags().BoolVar(&short, "short", false, "show the version only")
	versionCmd.Flags().BoolVar(&detailed, "detailed", false, "show detailed build information")

	return versionCmd
}

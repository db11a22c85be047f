package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newLocateCommand(settings *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "locate",
		Short: "Print the configuration file path",
		Long: `Print the path of the configuration file, whether it exists or not.

Examples:
  smallgears locate
  smallgears locate --location /etc/smallgears
  SMALLGEARS_HOME=/etc/smallgears smallgears locate`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := newSession(cmd, settings)
			if err != nil {
				return err
			}

			path, err := s.path()
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

// Package cmd provides the smallgears command-line interface, a thin shell
// over the configuration and properties packages.
//
// Configuration file resolution (highest to lowest priority):
//
//  1. --config: an explicit file path, bypassing the locator
//  2. --location: the directory holding the file, overriding the location
//     property
//  3. the location property (--location-property, default SMALLGEARS_HOME)
//     read from the environment
//  4. the working directory, if the file (--file, default smallgears.yml)
//     exists there
//  5. the home directory
//
// Every persistent flag can also be set through a SMALLGEARS_ environment
// variable, e.g. SMALLGEARS_LOG_LEVEL=debug or SMALLGEARS_FILE=app.yml.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/conneroisu/smallgears/pkg/configuration"
	"github.com/conneroisu/smallgears/pkg/logging"
	"github.com/conneroisu/smallgears/pkg/properties"
)

const (
	// DefaultLocationProperty names the environment variable holding the
	// configuration directory.
	DefaultLocationProperty = "SMALLGEARS_HOME"

	// DefaultFilename is the configuration file looked up by default.
	DefaultFilename = "smallgears.yml"

	envPrefix = "SMALLGEARS"
)

// NewRootCommand builds the smallgears command tree. Each call has its own
// settings, so commands can be executed repeatedly in one process.
func NewRootCommand() *cobra.Command {
	settings := viper.New()

	rootCmd := &cobra.Command{
		Use:   "smallgears",
		Short: "Locate, inspect and edit configuration property files",
		Long: `smallgears resolves a configuration file the same way the library does
and exposes its contents as a flat set of named properties.

Quick Start:
  smallgears locate                      Show which file would be used
  smallgears props list                  List every property
  smallgears props set server.port 8080 --type int
  smallgears props watch                 Print properties as the file changes`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "configuration file (default: located through --location-property and --file)")
	flags.StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	flags.String("location-property", DefaultLocationProperty, "environment variable naming the configuration directory")
	flags.String("file", DefaultFilename, "configuration file name")
	flags.String("location", "", "configuration directory, overriding the location property")

	if err := bindFlags(settings, flags); err != nil {
		cobra.CheckErr(err)
	}

	rootCmd.AddCommand(
		newLocateCommand(settings),
		newPropsCommand(settings),
		newVersionCommand(),
	)

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

// bindFlags lets SMALLGEARS_<FLAG> environment variables stand in for
// flags that are not given on the command line.
func bindFlags(settings *viper.Viper, flags *pflag.FlagSet) error {
	settings.SetEnvPrefix(envPrefix)
	settings.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	settings.AutomaticEnv()

	return settings.BindPFlags(flags)
}

// session carries what a single command invocation needs.
type session struct {
	settings *viper.Viper
	logger   logging.Logger
}

func newSession(cmd *cobra.Command, settings *viper.Viper) (*session, error) {
	level, err := logging.ParseLevel(settings.GetString("log-level"))
	if err != nil {
		return nil, err
	}

	logger := logging.NewLogger(&logging.Config{
		Level:     level,
		Format:    "text",
		Output:    cmd.ErrOrStderr(),
		Component: "cli",
	})

	return &session{settings: settings, logger: logger}, nil
}

func (s *session) provider() *configuration.Provider {
	property := s.settings.GetString("location-property")

	overrides := viper.New()
	if location := s.settings.GetString("location"); location != "" {
		overrides.Set(property, location)
	}

	return configuration.NewProvider(property, s.settings.GetString("file"),
		configuration.WithLocatorOptions(configuration.WithViper(overrides)),
		configuration.WithLogger(s.logger))
}

// path returns the configuration file the command operates on.
func (s *session) path() (string, error) {
	if explicit := s.settings.GetString("config"); explicit != "" {
		return filepath.Clean(explicit), nil
	}
	return s.provider().Locate()
}

// load reads the configuration into a bag. A missing file yields an empty
// bag.
func (s *session) load(ctx context.Context) (*properties.Properties, string, error) {
	path, err := s.path()
	if err != nil {
		return nil, "", err
	}

	if s.settings.GetString("config") != "" {
		ps, err := configuration.LoadPropertiesFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			return properties.New(), path, nil
		}
		return ps, path, err
	}

	rc, found, err := s.provider().Provide(ctx, false)
	if err != nil {
		return nil, "", err
	}
	if !found {
		s.logger.Debug(ctx, "no configuration found", "location", path)
		return properties.New(), path, nil
	}
	defer rc.Close()

	ps, err := configuration.LoadProperties(rc, filepath.Ext(path))
	return ps, path, err
}

func (s *session) save(ctx context.Context, ps *properties.Properties, path string) error {
	if err := configuration.SaveProperties(ps, path); err != nil {
		return err
	}
	s.logger.Info(ctx, "configuration saved", "location", path, "properties", ps.Size())
	return nil
}

func printProperties(cmd *cobra.Command, ps *properties.Properties) {
	for _, p := range ps.Elements() {
		fmt.Fprintf(cmd.OutOrStdout(), "%s=%v\n", p.Name(), p.Value())
	}
}

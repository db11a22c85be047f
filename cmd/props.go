package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/smallgears/pkg/configuration"
	"github.com/conneroisu/smallgears/pkg/properties"
)

// Value types accepted by --type.
const (
	typeString = "string"
	typeInt    = "int"
	typeBool   = "bool"
	typeFloat  = "float"
)

func newPropsCommand(settings *viper.Viper) *cobra.Command {
	propsCmd := &cobra.Command{
		Use:     "props",
		Aliases: []string{"p"},
		Short:   "Inspect and edit configuration properties",
		Long: `Work with the configuration file as a flat set of properties. Nested keys
are joined with dots: "port" under "server" is the property server.port.
Names are case-insensitive and stored in lower case.`,
	}

	propsCmd.AddCommand(
		newPropsListCommand(settings),
		newPropsGetCommand(settings),
		newPropsSetCommand(settings),
		newPropsRemoveCommand(settings),
		newPropsWatchCommand(settings),
	)

	return propsCmd
}

func newPropsListCommand(settings *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List every property, sorted by name",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := newSession(cmd, settings)
			if err != nil {
				return err
			}

			ps, _, err := s.load(cmd.Context())
			if err != nil {
				return err
			}

			printProperties(cmd, ps)
			return nil
		},
	}
}

func newPropsGetCommand(settings *viper.Viper) *cobra.Command {
	var valueType string

	getCmd := &cobra.Command{
		Use:   "get NAME",
		Short: "Print the value of a property",
		Long: `Print the value of a property. With --type the value must already have that
type; no conversion is attempted.

Examples:
  smallgears props get server.host
  smallgears props get server.port --type int`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, settings)
			if err != nil {
				return err
			}

			ps, _, err := s.load(cmd.Context())
			if err != nil {
				return err
			}

			p, err := ps.Lookup(propertyName(args[0]))
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			if err := checkType(p, valueType); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), p.Value())
			return nil
		},
	}

	getCmd.Flags().StringVarP(&valueType, "type", "t", "", "required value type (string, int, bool, float)")
	return getCmd
}

func newPropsSetCommand(settings *viper.Viper) *cobra.Command {
	var valueType string

	setCmd := &cobra.Command{
		Use:   "set NAME VALUE",
		Short: "Set a property and save the configuration",
		Long: `Set a property and write the configuration back. The file is created when it
does not exist yet, and its format follows its extension.

Examples:
  smallgears props set server.host localhost
  smallgears props set server.port 8080 --type int
  smallgears props set debug true --type bool`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := convertValue(args[1], valueType)
			if err != nil {
				return err
			}

			s, err := newSession(cmd, settings)
			if err != nil {
				return err
			}

			ps, path, err := s.load(cmd.Context())
			if err != nil {
				return err
			}

			ps.Add(properties.Prop(propertyName(args[0]), value))
			return s.save(cmd.Context(), ps, path)
		},
	}

	setCmd.Flags().StringVarP(&valueType, "type", "t", typeString, "value type (string, int, bool, float)")
	return setCmd
}

func newPropsRemoveCommand(settings *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:     "rm NAME...",
		Aliases: []string{"remove"},
		Short:   "Remove properties and save the configuration",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, settings)
			if err != nil {
				return err
			}

			ps, path, err := s.load(cmd.Context())
			if err != nil {
				return err
			}

			names := make([]string, 0, len(args))
			for _, arg := range args {
				name := propertyName(arg)
				if !ps.Has(name) {
					s.logger.Warn(cmd.Context(), nil, "no such property", "property", name)
				}
				names = append(names, name)
			}

			ps.RemoveNames(names...)
			return s.save(cmd.Context(), ps, path)
		},
	}
}

func newPropsWatchCommand(settings *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print the properties every time the configuration changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := newSession(cmd, settings)
			if err != nil {
				return err
			}

			path, err := s.path()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := configuration.NewWatcher(path, func(ps *properties.Properties) {
				fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", path)
				printProperties(cmd, ps)
			}, configuration.WithWatcherLogger(s.logger))

			return w.Run(ctx)
		},
	}
}

// propertyName folds a command-line name to the lower-cased key under which
// configuration files store it.
func propertyName(arg string) string {
	return strings.ToLower(arg)
}

// convertValue turns a command-line argument into a typed property value.
func convertValue(raw, valueType string) (any, error) {
	switch valueType {
	case typeString, "":
		return raw, nil
	case typeInt:
		return cast.ToIntE(raw)
	case typeBool:
		return cast.ToBoolE(raw)
	case typeFloat:
		return cast.ToFloat64E(raw)
	default:
		return nil, unsupportedType(valueType)
	}
}

// checkType verifies that a property already holds a value of the named
// type.
func checkType(p *properties.Property, valueType string) error {
	var err error
	switch valueType {
	case "":
	case typeString:
		_, err = properties.As[string](p)
	case typeInt:
		_, err = properties.As[int](p)
	case typeBool:
		_, err = properties.As[bool](p)
	case typeFloat:
		_, err = properties.As[float64](p)
	default:
		err = unsupportedType(valueType)
	}
	return err
}

func unsupportedType(valueType string) error {
	return fmt.Errorf("unsupported type: %s (supported: %s, %s, %s, %s)",
		valueType, typeString, typeInt, typeBool, typeFloat)
}

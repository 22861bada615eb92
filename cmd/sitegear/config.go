package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/sitegear/sitegear"
)

func newConfigCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the merged site configuration",
	}
	cmd.PersistentFlags().String("format", "yaml", "output format for maps and lists (yaml, json)")

	get := &cobra.Command{
		Use:   "get KEY",
		Short: "Print the processed value at a dot-separated key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openConfig(v)
			if err != nil {
				return err
			}
			if !s.config.Has(args[0]) {
				return fmt.Errorf("key %q not found", args[0])
			}
			return printValue(cmd.OutOrStdout(), s.config.Get(args[0]), v.GetString("format"))
		},
	}

	dump := &cobra.Command{
		Use:   "dump",
		Short: "Print the whole processed configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openConfig(v)
			if err != nil {
				return err
			}
			return printValue(cmd.OutOrStdout(), s.config.All(), v.GetString("format"))
		},
	}

	cmd.AddCommand(get, dump)
	return cmd
}

// openConfig opens the site with {{ engine:... }} tokens resolved as the
// engine would resolve them.
func openConfig(v *viper.Viper) (*site, error) {
	s, err := openSite(v)
	if err != nil {
		return nil, err
	}
	s.config.AddProcessor(sitegear.TokenProcessor(s.root, s.env))
	return s, nil
}

// printValue prints scalars as text and maps or lists in format.
func printValue(w io.Writer, value any, format string) error {
	switch value.(type) {
	case map[string]any, []any:
	default:
		_, err := fmt.Fprintln(w, cast.ToString(value))
		return err
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(value)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(value); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

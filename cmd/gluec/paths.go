package main

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"gluec/internal/plugin"
)

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Print resolved plugin and search paths",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, m := resolvePaths()
		fmt.Fprintf(cmd.OutOrStdout(), "base:    %s\n", p.Base)
		fmt.Fprintf(cmd.OutOrStdout(), "modules: %s\n", p.Modules)
		fmt.Fprintf(cmd.OutOrStdout(), "scripts: %s\n", p.Scripts)
		fmt.Fprintf(cmd.OutOrStdout(), "prefix:  %s\n", p.Prefix)
		fmt.Fprintf(cmd.OutOrStdout(), "search:  %s\n", strings.Join(p.SearchPaths(m.Search.Paths), ":"))
		return nil
	},
}

func init() {
	pathsCmd.AddCommand(
		printPathCmd("module-path", "Print the bundled module directory", func(p plugin.Paths, _ plugin.Manifest) string {
			return p.Modules
		}),
		printPathCmd("plugin-path", "Print the plugin base directory", func(p plugin.Paths, _ plugin.Manifest) string {
			return p.Base
		}),
		printPathCmd("prefix", "Print the installation prefix", func(p plugin.Paths, _ plugin.Manifest) string {
			return p.Prefix
		}),
		printPathCmd("scripts-path", "Print the host scripts directory", func(p plugin.Paths, _ plugin.Manifest) string {
			return p.Scripts
		}),
	)
}

func printPathCmd(use, short string, pick func(plugin.Paths, plugin.Manifest) string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, m := resolvePaths()
			fmt.Fprintln(cmd.OutOrStdout(), pick(p, m))
			return nil
		},
	}
}

func resolvePaths() (plugin.Paths, plugin.Manifest) {
	manifest, _, err := plugin.LoadNearest(".")
	if err != nil {
		manifest = plugin.Manifest{}
	}
	return plugin.Discover(manifest.Plugin.Base, zerolog.Nop()), manifest
}

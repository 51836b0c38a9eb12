package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gluec/internal/pipeline"
	"gluec/internal/plugin"
	"gluec/internal/spicy"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] <inputs...>",
	Short: "Compile parser modules and binding declarations into an artifact",
	Long: "Compile *.spicy parser modules, *.evt binding declarations, and\n" +
		"precompiled inputs into a single loadable artifact.",
	Args: cobra.ArbitraryArgs,
	RunE: buildExecution,
}

func init() {
	buildCmd.Flags().StringP("output", "o", "", "output artifact path")
	buildCmd.Flags().BoolP("debug", "d", false, "include debug instrumentation")
	buildCmd.Flags().BoolP("optimize", "O", false, "build optimized code")
	buildCmd.Flags().BoolP("disable-optimizations", "g", false, "disable optimizations")
	buildCmd.Flags().StringArrayP("library-path", "L", nil, "additional module search path (repeatable)")
	buildCmd.Flags().StringP("output-source", "c", "", "write generated glue source under this prefix instead of linking")
	buildCmd.Flags().Bool("skip-validation", false, "demote validation errors to warnings")
	buildCmd.Flags().StringP("compiler-debug", "D", "", "comma-separated compiler debug streams")
	buildCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
}

func buildExecution(cmd *cobra.Command, args []string) error {
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	debug, err := cmd.Flags().GetBool("debug")
	if err != nil {
		return err
	}
	optimize, err := cmd.Flags().GetBool("optimize")
	if err != nil {
		return err
	}
	disableOpt, err := cmd.Flags().GetBool("disable-optimizations")
	if err != nil {
		return err
	}
	libraryPaths, err := cmd.Flags().GetStringArray("library-path")
	if err != nil {
		return err
	}
	sourcePrefix, err := cmd.Flags().GetString("output-source")
	if err != nil {
		return err
	}
	skipValidation, err := cmd.Flags().GetBool("skip-validation")
	if err != nil {
		return err
	}
	debugStreams, err := cmd.Flags().GetString("compiler-debug")
	if err != nil {
		return err
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}

	if len(args) == 0 {
		return errors.New("no input files")
	}
	if output == "" && sourcePrefix == "" {
		return errors.New("no output file; use -o <path> or -c <prefix>")
	}
	if optimize && disableOpt {
		return errors.New("--optimize and --disable-optimizations are mutually exclusive")
	}
	uiModeValue, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	log := debugLogger(debugStreams)

	manifest, _, err := plugin.LoadNearest(".")
	if err != nil {
		return err
	}
	paths := plugin.Discover(manifest.Plugin.Base, log)

	searchPaths := append([]string{}, libraryPaths...)
	searchPaths = append(searchPaths, paths.SearchPaths(manifest.Search.Paths)...)

	req := &pipeline.Request{
		Inputs:       args,
		Output:       output,
		SourcePrefix: sourcePrefix,
		Options: spicy.Options{
			LibraryPaths:   searchPaths,
			Debug:          debug || manifest.Build.Debug,
			Optimize:       (optimize || manifest.Build.Optimize) && !disableOpt,
			SkipValidation: skipValidation || manifest.Build.SkipValidation,
		},
		Log:     log,
		DiagOut: os.Stderr,
		Color:   useColor(cmd),
	}

	ctx := cmd.Context()
	var result pipeline.Result
	if shouldUseTUI(uiModeValue) {
		result, err = runBuildWithUI(ctx, "gluec build", req)
	} else {
		result, err = pipeline.Run(ctx, req)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", result.OutputPath)
	return nil
}

// Command kryonc compiles a UIDL source file into a UIB binary container.
// It owns no pipeline logic of its own: every flag here maps onto one
// internal/kryon/compiler.Option or a direct compiler.Options field
// assignment, and the actual work happens in compiler.CompileFile.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/waozixyz/kryonc/internal/kryon/compiler"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		output       string
		target       string
		optLevel     uint8
		embedScripts bool
		defines      []string
		includeDirs  []string
		compress     bool
		maxFileSize  uint64
		debugInfo    bool
		debug        bool
	)

	cmd := &cobra.Command{
		Use:   "kryonc <input.kry>",
		Short: "Compile a UIDL source file into a UIB binary container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			out := output
			if out == "" {
				out = defaultOutputPath(input)
			}

			platform, ok := compiler.ParseTargetPlatform(target)
			if !ok {
				return fmt.Errorf("unknown --target %q", target)
			}
			vars, err := parseDefines(defines)
			if err != nil {
				return err
			}

			opts := compiler.NewOptions(
				compiler.WithTargetPlatform(platform),
				compiler.WithOptimizationLevel(optLevel),
				compiler.WithEmbedScripts(embedScripts),
				compiler.WithCompressOutput(compress),
				compiler.WithMaxFileSize(maxFileSize),
				compiler.WithIncludeDirectories(includeDirs),
				compiler.WithGenerateDebugInfo(debugInfo),
				compiler.WithCustomVariables(vars),
				compiler.WithDebugMode(debug),
			)

			stats, err := compiler.CompileFile(input, out, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes, %d elements, %dms)\n",
				out, stats.OutputSize, stats.ElementCount, stats.CompileTimeMS)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output .krb path (default: input path with .krb extension)")
	cmd.Flags().StringVar(&target, "target", "universal", "target platform: universal, desktop, mobile, web, embedded")
	cmd.Flags().Uint8Var(&optLevel, "opt-level", 1, "optimization level (0-2)")
	cmd.Flags().BoolVar(&embedScripts, "embed-scripts", false, "accepted for compatibility; has no effect on the output")
	cmd.Flags().StringArrayVar(&defines, "define", nil, "define a variable as name=value (repeatable)")
	cmd.Flags().StringArrayVar(&includeDirs, "include-dir", nil, "add a directory to the @include search path (repeatable)")
	cmd.Flags().BoolVar(&compress, "compress", false, "set the compressed flag in the output header")
	cmd.Flags().Uint64Var(&maxFileSize, "max-file-size", 0, "fail if output exceeds this many bytes (0 = unbounded)")
	cmd.Flags().BoolVar(&debugInfo, "debug-info", false, "request debug info generation")
	cmd.Flags().BoolVar(&debug, "debug", false, "log phase-by-phase progress to stderr")

	return cmd
}

func defaultOutputPath(input string) string {
	if ext := strings.LastIndex(input, "."); ext > strings.LastIndex(input, "/") {
		return input[:ext] + ".krb"
	}
	return input + ".krb"
}

// parseDefines turns repeated --define name=value flags into the map
// compiler.Options.CustomVariables expects.
func parseDefines(defines []string) (map[string]string, error) {
	if len(defines) == 0 {
		return nil, nil
	}
	vars := make(map[string]string, len(defines))
	for _, d := range defines {
		name, value, ok := strings.Cut(d, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --define %q: expected name=value", d)
		}
		vars[name] = value
	}
	return vars, nil
}

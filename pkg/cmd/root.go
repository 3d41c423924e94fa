package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/consol-monitoring/checkplugins"
	"github.com/consol-monitoring/checkplugins/pkg/plugin"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Execute runs the multi-call binary and returns the exit code.
// If the binary is called by a plugin name, ex.: through a symlink named
// check_load, the plugin is run directly.
func Execute(ctx context.Context, args []string, output io.Writer) int {
	if len(args) > 0 {
		if entry, ok := checkplugins.Lookup(args[0]); ok {
			return entry.Check(ctx, output, args[1:])
		}
	}

	exitCode := plugin.ExitCodeOK
	rootCmd := NewRootCmd(ctx, output, &exitCode)
	if len(args) > 0 {
		rootCmd.SetArgs(sanitizeArgs(rootCmd, args[1:]))
	}
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(output, "UNKNOWN: %s\n", err.Error())

		return plugin.ExitCodeUsage
	}

	return exitCode
}

// NewRootCmd creates the root command with one sub command per plugin.
// The exit code of the plugin run is stored in exitCode.
func NewRootCmd(ctx context.Context, output io.Writer, exitCode *int) *cobra.Command {
	showVersion := false
	rootCmd := &cobra.Command{
		Use:   "checkplugins [command]",
		Short: "Nagios compatible check plugins.",
		Long: `checkplugins contains a set of Nagios compatible check plugins.
Every plugin prints a single status line and exits with the
Nagios state (0 OK, 1 WARNING, 2 CRITICAL, 3 UNKNOWN).

The binary can be symlinked to a plugin name, ex.: check_load.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if showVersion {
				fmt.Fprintf(output, "checkplugins v%s\n", plugin.Version)
				*exitCode = plugin.ExitCodeUnknown

				return nil
			}
			*exitCode = plugin.ExitCodeUnknown

			return cmd.Help()
		},
	}
	rootCmd.SetOut(output)
	rootCmd.SetErr(output)
	rootCmd.Flags().BoolVarP(&showVersion, "version", "V", false, "print version and exit")
	rootCmd.DisableAutoGenTag = true
	rootCmd.DisableSuggestions = true
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddGroup(&cobra.Group{ID: "checks", Title: "Checks:"})
	for _, name := range checkplugins.Names() {
		entry := checkplugins.AvailableChecks[name]
		rootCmd.AddCommand(&cobra.Command{
			Use:                entry.Name + " [plugin args]",
			Short:              entry.Description,
			GroupID:            "checks",
			DisableFlagParsing: true,
			Run: func(_ *cobra.Command, args []string) {
				*exitCode = entry.Check(ctx, output, args)
			},
		})
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List available checks",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			for _, name := range checkplugins.Names() {
				fmt.Fprintf(output, "%-20s %s\n", name, checkplugins.AvailableChecks[name].Description)
			}
		},
	})

	return rootCmd
}

// sanitizeArgs replaces single dash long flags of the root command, ex.:
// -version becomes --version. Arguments after the sub command belong to the
// plugin and are passed through unchanged.
func sanitizeArgs(rootCmd *cobra.Command, args []string) []string {
	replace := map[string]string{}
	rootCmd.LocalFlags().VisitAll(func(f *pflag.Flag) {
		if f.Name != "" {
			replace["-"+f.Name] = "--" + f.Name
		}
	})

	sanitized := make([]string, 0, len(args))
	for i, arg := range args {
		if !strings.HasPrefix(arg, "-") {
			sanitized = append(sanitized, args[i:]...)

			break
		}
		if r, ok := replace[arg]; ok {
			arg = r
		}
		sanitized = append(sanitized, arg)
	}

	return sanitized
}

// Main is the entry point of the binary.
func Main() {
	os.Exit(Execute(context.Background(), os.Args, os.Stdout))
}

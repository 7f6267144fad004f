// Command shellvm loads and runs SnailVM bytecode files: the reference
// front end for internal/bcio, internal/loader, internal/interp, and
// internal/jitbridge.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var rootCmd = &cobra.Command{
	Use:   "shellvm [file]",
	Short: "SnailVM bytecode interpreter",
	Long: `shellvm loads a SnailVM bytecode file and runs it.

Running "shellvm <file>" is shorthand for "shellvm run <file>": a bare
positional argument is handed straight to the run command, so
"shellvm -d prog.svm" and "shellvm run -d prog.svm" behave identically.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runFile(cmd, args[0])
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("color", "", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "trace every dispatched instruction")
	rootCmd.PersistentFlags().Int("jit-threshold", 0, "call-count threshold before a function is JIT-compiled (0 = use config/default)")
	rootCmd.PersistentFlags().Int("buffer-size", 0, "Reader buffer size in bytes (0 = use config/default)")
	rootCmd.PersistentFlags().Bool("no-jit-cache", false, "disable the disk-backed JIT warm cache")
	rootCmd.PersistentFlags().String("cache-dir", "", "override the JIT warm-cache directory")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(debugCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	rootCmd.Version = cliVersionString()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to an interactive terminal,
// gating color output and the live dashboard's fallback to plain
// tracing.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func colorEnabled(cmd *cobra.Command, cfg config) bool {
	mode := cfg.Color
	if v, _ := cmd.Flags().GetString("color"); cmd.Flags().Changed("color") {
		mode = v
	}
	switch mode {
	case "on":
		return true
	case "off":
		return false
	default:
		return isTerminal(os.Stdout)
	}
}

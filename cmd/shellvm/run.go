package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"shellvm/internal/bcio"
	"shellvm/internal/interp"
	"shellvm/internal/jitbridge"
	"shellvm/internal/loader"
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Run a SnailVM bytecode file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFile(cmd, args[0])
	},
}

// runFile implements the "shellvm run <file>" surface, and also backs
// the root command's bare "shellvm <file>" shorthand. Exit codes follow
// §7: 0 only on an entry block that ran off its own length without a
// HALT; non-zero on file-not-found, load failure, HALT, or any
// interpreter error.
func runFile(cmd *cobra.Command, path string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	vm, programBytes, err := buildVM(cmd, cfg, path)
	if err != nil {
		return fail(cmd, cfg, err)
	}
	defer vm.R.Close()

	bridge, err := buildBridge(cmd, cfg, programBytes)
	if err != nil {
		return fail(cmd, cfg, err)
	}
	vm.Bridge = bridge
	if bridge != nil {
		bridge.WarmStart(vm)
	}

	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		vm.Trace = interp.NewTracer(cmd.ErrOrStderr())
	}

	runErr := vm.RunEntry()
	if interp.IsHalt(runErr) {
		return fail(cmd, cfg, runErr)
	}
	if runErr != nil {
		return fail(cmd, cfg, runErr)
	}
	return nil
}

// buildVM opens the bytecode file, loads its Environment, and returns a
// ready-to-run VM plus the raw file bytes (needed by the JIT warm
// cache's content hash).
func buildVM(cmd *cobra.Command, cfg config, path string) (*interp.VM, []byte, error) {
	bufferSize := cfg.BufferSize
	if v, _ := cmd.Flags().GetInt("buffer-size"); v > 0 {
		bufferSize = v
	}

	programBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}

	r, err := bcio.Open(path, bufferSize)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	env, err := loader.Load(r)
	if err != nil {
		r.Close()
		return nil, nil, fmt.Errorf("load %s: %w", path, err)
	}

	vm := interp.New(env, r)
	vm.Out = cmd.OutOrStdout()
	return vm, programBytes, nil
}

// buildBridge assembles the JIT bridge per the resolved jit-threshold
// and cache-dir configuration. A nil bridge (never returned as an
// error) is valid: VM.Bridge == nil just means every CALL interprets.
func buildBridge(cmd *cobra.Command, cfg config, programBytes []byte) (*jitbridge.Bridge, error) {
	threshold := cfg.JITThreshold
	if v, _ := cmd.Flags().GetInt("jit-threshold"); v > 0 {
		threshold = v
	}
	bridge := &jitbridge.Bridge{Threshold: threshold}

	noCache, _ := cmd.Flags().GetBool("no-jit-cache")
	if noCache {
		return bridge, nil
	}
	flagDir, _ := cmd.Flags().GetString("cache-dir")
	dir, enabled := resolvedCacheDir(cfg, flagDir, cmd.Flags().Changed("cache-dir"))
	if !enabled {
		return bridge, nil
	}
	cache, err := jitbridge.OpenDiskCache(dir, programBytes)
	if err != nil {
		return bridge, nil // a cache we can't open just means no warm start, not a failure
	}
	bridge.Cache = cache
	return bridge, nil
}

// fail prints err (colorized if enabled) to stderr and returns it so
// cobra's own error path exits 1, matching §7: every non-clean
// termination — load failure or HALT alike — is a non-zero exit.
func fail(cmd *cobra.Command, cfg config, err error) error {
	if err == nil {
		return nil
	}
	if colorEnabled(cmd, cfg) {
		color.New(color.FgRed).Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
	} else {
		fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
	}
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return err
}

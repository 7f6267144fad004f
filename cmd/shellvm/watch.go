package main

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"shellvm/internal/debugui"
	"shellvm/internal/interp"
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Run a SnailVM bytecode file with a live instruction/heap dashboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		vm, programBytes, err := buildVM(cmd, cfg, args[0])
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

		if !isTerminal(os.Stdout) {
			// No TTY to paint a dashboard on: fall back to the plain
			// per-instruction tracer, same as -d/--debug.
			vm.Trace = interp.NewTracer(cmd.OutOrStdout())
			runErr := vm.RunEntry()
			if runErr != nil && !interp.IsHalt(runErr) {
				return fail(cmd, cfg, runErr)
			}
			return nil
		}

		events := debugui.Attach(vm)
		program := tea.NewProgram(debugui.NewDashboard(args[0], events))

		// The interpreter owns the Environment exclusively and stays
		// single-threaded (§5); the dashboard goroutine only observes
		// the StepEvent stream. errgroup waits for both goroutines and
		// returns the first error. When the VM returns (normally or with
		// an error) it quits the dashboard; quitting the dashboard does
		// not stop the VM, which runs on until its own end.
		var g errgroup.Group
		g.Go(func() error {
			defer program.Quit()
			return vm.RunEntry()
		})
		g.Go(func() error {
			_, err := program.Run()
			return err
		})

		runErr := g.Wait()
		if runErr != nil && !interp.IsHalt(runErr) {
			return fail(cmd, cfg, runErr)
		}
		return nil
	},
}

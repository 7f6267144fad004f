package main

import (
	"github.com/spf13/cobra"

	"shellvm/internal/debugger"
	"shellvm/internal/interp"
)

var debugCmd = &cobra.Command{
	Use:   "debug <file>",
	Short: "Step through a SnailVM bytecode file interactively",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		vm, _, err := buildVM(cmd, cfg, args[0])
		if err != nil {
			return fail(cmd, cfg, err)
		}
		defer vm.R.Close()

		dbg := debugger.New(vm, cmd.InOrStdin(), cmd.OutOrStdout())
		runErr := dbg.Run()
		if runErr != nil && !interp.IsHalt(runErr) {
			return fail(cmd, cfg, runErr)
		}
		return nil
	},
}

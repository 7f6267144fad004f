package jitbridge

import "shellvm/internal/interp"

// DefaultThreshold matches §4.5's "exceeds 100" call-count trigger. The
// value is a tunable — correctness does not depend on it.
const DefaultThreshold = 100

// Bridge implements interp.Bridge: on each CALL, compile the target
// function once its call count crosses Threshold, then prefer the
// compiled executor over interpreting for every subsequent invocation.
type Bridge struct {
	Threshold int
	Cache     *DiskCache // optional warm-start cache; nil disables it
}

// New returns a Bridge using DefaultThreshold and no warm cache.
func New() *Bridge {
	return &Bridge{Threshold: DefaultThreshold}
}

// WarmStart pre-seeds the call counts of functions a previous run
// recorded as promoted, so they compile on their very first CALL this
// run instead of waiting to cross Threshold again. Purely an
// enrichment: skipping it only costs a slower warm-up, never changes
// which answer the program produces.
func (b *Bridge) WarmStart(vm *interp.VM) {
	if b.Cache == nil {
		return
	}
	for _, idx := range b.Cache.WarmFunctions() {
		if idx >= 0 && idx < len(vm.Env.Functions) {
			vm.Env.Functions[idx].CallCount = b.Threshold + 1
		}
	}
}

// Call implements interp.Bridge (§4.5 steps 2-4).
func (b *Bridge) Call(vm *interp.VM, fnIndex int) error {
	fn := vm.Env.Functions[fnIndex]

	if fn.Compiled == nil && fn.CallCount > b.Threshold {
		compiled, err := Compile(vm.R, fn)
		if err != nil {
			return err
		}
		vm.Env.Functions[fnIndex].Compiled = compiled
		if b.Cache != nil {
			b.Cache.MarkPromoted(fnIndex)
		}
		return compiled.Run(vm)
	}

	if fn.Compiled != nil {
		compiled, ok := fn.Compiled.(*CompiledExecutor)
		if !ok {
			return vm.InterpretCall(fnIndex)
		}
		return compiled.Run(vm)
	}

	return vm.InterpretCall(fnIndex)
}

package interp

// PerformCall implements the CALL opcode per §4.5's five-step protocol:
// resolve the function, bump its call count, hand off to the Bridge (if
// one is wired) to decide interpret-vs-compiled, then restore the
// caller's Reader offset regardless of outcome.
func (vm *VM) PerformCall(fnIndex int) error {
	if fnIndex < 0 || fnIndex >= len(vm.Env.Functions) {
		return invalidOp("CALL: function index %d out of range", fnIndex)
	}
	callerOffset := vm.R.GetOffset()
	vm.Env.Functions[fnIndex].CallCount++

	var err error
	if vm.Bridge != nil {
		err = vm.Bridge.Call(vm, fnIndex)
	} else {
		err = vm.InterpretCall(fnIndex)
	}

	if seekErr := vm.R.SetOffset(callerOffset); err == nil {
		err = seekErr
	}
	return err
}

// InterpretCall seeks to fn's body, builds a fresh scratch Frame, and
// recursively Executes the body. This is the always-available fallback
// path (§4.5 step 4): a Bridge implementation calls it directly for any
// invocation it declines to run through a compiled executor, and VM
// uses it unconditionally when no Bridge is configured at all.
func (vm *VM) InterpretCall(fnIndex int) error {
	fn := vm.Env.Functions[fnIndex]
	if err := vm.R.SetOffset(fn.Offset); err != nil {
		return err
	}
	frame := NewFrame(fn.ArgCount, fn.LocalCount)
	return vm.Execute(frame, fn.Length)
}

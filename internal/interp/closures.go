package interp

import "shellvm/internal/objmodel"

// Push and Pop are the two operand-stack primitives §4.5 names
// explicitly among the closures a compiled executor is handed, alongside
// Arith/Compare/LogicalBinary/IntrinsicCall/GetArray/SetArray/InitArray.
// They exist as VM methods (rather than requiring callers to reach
// through Env.Stack directly) so a Bridge implementation has one
// surface to depend on.
func (vm *VM) Push(obj *objmodel.Object) { vm.Env.Stack.Push(obj) }

func (vm *VM) Pop() *objmodel.Object { return vm.Env.Stack.Pop() }

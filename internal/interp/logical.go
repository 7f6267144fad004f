package interp

import "shellvm/internal/objmodel"

// LogicalBinary implements AND/OR (§4.4.1, §4.4.2): operands are
// coerced to boolean ("true" iff any payload byte is non-zero, with the
// ARRAY/STRING special cases handled by objmodel.Truthy) and the result
// is a fresh I32 0/1.
func (vm *VM) LogicalBinary(op byte) error {
	right := vm.Env.Stack.Pop()
	left := vm.Env.Stack.Pop()

	l, r := objmodel.Truthy(left), objmodel.Truthy(right)
	var result bool
	if op == OpAnd {
		result = l && r
	} else {
		result = l || r
	}
	vm.Env.Stack.Push(vm.Env.Allocator.Create(objmodel.TagI32, boolBytes(result)))
	return nil
}

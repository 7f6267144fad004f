package interp

import "shellvm/internal/objmodel"

// Compare implements EQ/NEQ/LT/LE/GT/GTE (§4.4.1). EQ/NEQ are
// defined for any tag pair via byte-exact payload equality and tag
// equality (objmodel.Object.Equal); the ordering comparisons are only
// defined over I32/USIZE, dispatched through the same max-tag rule as
// arithmetic.
func (vm *VM) Compare(op byte) error {
	right := vm.Env.Stack.Pop()
	left := vm.Env.Stack.Pop()

	var result bool
	switch op {
	case OpEq:
		result = left.Equal(right)
	case OpNeq:
		result = !left.Equal(right)
	default:
		tag := objmodel.MaxTag(left.Tag, right.Tag)
		if tag != objmodel.TagI32 && tag != objmodel.TagUSize {
			return invalidOp("%s is not defined for %s operands", opcodeName(op), tag)
		}
		var cmp int
		if tag == objmodel.TagUSize {
			l, r := objmodel.DecodeU32(left.Bytes), objmodel.DecodeU32(right.Bytes)
			cmp = compareU32(l, r)
		} else {
			l, r := objmodel.DecodeI32(left.Bytes), objmodel.DecodeI32(right.Bytes)
			cmp = compareI32(l, r)
		}
		switch op {
		case OpLt:
			result = cmp < 0
		case OpLe:
			result = cmp <= 0
		case OpGt:
			result = cmp > 0
		case OpGte:
			result = cmp >= 0
		}
	}

	vm.Env.Stack.Push(vm.Env.Allocator.Create(objmodel.TagI32, boolBytes(result)))
	return nil
}

func compareI32(l, r int32) int {
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	default:
		return 0
	}
}

func compareU32(l, r uint32) int {
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	default:
		return 0
	}
}

package interp

import "shellvm/internal/objmodel"

// Arith implements ADD/SUB/MUL/DIV/MOD (§4.4.1). Operands are popped
// right-then-left, and the operation dispatches on max(left.Tag,
// right.Tag): I32 is signed 32-bit, USIZE unsigned 32-bit, STRING is
// concatenation and only defined for ADD. Per the resolved "mixed-type
// arithmetic" design note, an operand whose own tag differs from the
// winning tag is reinterpreted through that tag's accessor rather than
// converted — a lossless bit-reinterpretation, safe because every
// non-STRING payload is 4 bytes.
func (vm *VM) Arith(op byte) error {
	right := vm.Env.Stack.Pop()
	left := vm.Env.Stack.Pop()
	tag := objmodel.MaxTag(left.Tag, right.Tag)

	switch tag {
	case objmodel.TagString:
		if op != OpAdd {
			return invalidOp("%s is not defined for STRING operands", opcodeName(op))
		}
		result := make([]byte, 0, len(left.Bytes)+len(right.Bytes))
		result = append(result, left.Bytes...)
		result = append(result, right.Bytes...)
		vm.Env.Stack.Push(vm.Env.Allocator.Create(objmodel.TagString, result))
		return nil

	case objmodel.TagUSize:
		l, r := objmodel.DecodeU32(left.Bytes), objmodel.DecodeU32(right.Bytes)
		v, err := applyU32(op, l, r)
		if err != nil {
			return err
		}
		vm.Env.Stack.Push(vm.Env.Allocator.Create(objmodel.TagUSize, objmodel.EncodeU32(v)))
		return nil

	default: // I32
		l, r := objmodel.DecodeI32(left.Bytes), objmodel.DecodeI32(right.Bytes)
		v, err := applyI32(op, l, r)
		if err != nil {
			return err
		}
		vm.Env.Stack.Push(vm.Env.Allocator.Create(objmodel.TagI32, objmodel.EncodeI32(v)))
		return nil
	}
}

func applyI32(op byte, l, r int32) (int32, error) {
	switch op {
	case OpAdd:
		return l + r, nil
	case OpSub:
		return l - r, nil
	case OpMul:
		return l * r, nil
	case OpDiv:
		if r == 0 {
			return 0, invalidOp("integer division by zero")
		}
		return l / r, nil
	case OpMod:
		if r == 0 {
			return 0, invalidOp("integer division by zero")
		}
		return l % r, nil
	default:
		return 0, invalidOp("unreachable arithmetic opcode 0x%02X", op)
	}
}

func applyU32(op byte, l, r uint32) (uint32, error) {
	switch op {
	case OpAdd:
		return l + r, nil
	case OpSub:
		return l - r, nil
	case OpMul:
		return l * r, nil
	case OpDiv:
		if r == 0 {
			return 0, invalidOp("integer division by zero")
		}
		return l / r, nil
	case OpMod:
		if r == 0 {
			return 0, invalidOp("integer division by zero")
		}
		return l % r, nil
	default:
		return 0, invalidOp("unreachable arithmetic opcode 0x%02X", op)
	}
}

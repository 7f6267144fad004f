package interp

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"shellvm/internal/loader"
	"shellvm/internal/objmodel"
)

// IntrinsicCall implements INTRINSIC_CALL (§4.4.1, §6): resolve the
// intrinsic by table index and dispatch by its textual name. A Host, if
// configured, handles every intrinsic call (there is no fallback to the
// built-in routines); otherwise the built-in println routine is the
// only recognized name.
func (vm *VM) IntrinsicCall(idx int) error {
	if idx < 0 || idx >= len(vm.Env.Intrinsics) {
		return invalidOp("INTRINSIC_CALL: intrinsic index %d out of range", idx)
	}
	desc := vm.Env.Intrinsics[idx]
	if vm.Host != nil {
		return vm.Host.Invoke(vm, desc.Name, desc)
	}
	return defaultInvoke(vm, desc.Name, desc)
}

func defaultInvoke(vm *VM, name string, desc loader.IntrinsicDescriptor) error {
	switch name {
	case "println":
		obj := vm.Env.Stack.Pop()
		fmt.Fprintln(vm.Stdout(), stringify(obj))
		return nil
	default:
		return invalidOp("Unsupported intrinsic function")
	}
}

// Stdout returns the writer println and friends write to. Tests and the
// CLI both set this via VM.Out; when unset, os.Stdout is the default.
func (vm *VM) Stdout() io.Writer {
	if vm.Out != nil {
		return vm.Out
	}
	return os.Stdout
}

// stringify implements the §6 "STRING coercion for printing" rules:
// I32 decimal signed, USIZE decimal unsigned, STRING raw bytes, ARRAY
// recursively bracketed with "..." marking a null slot.
func stringify(obj *objmodel.Object) string {
	if obj == nil {
		return "..."
	}
	switch obj.Tag {
	case objmodel.TagI32:
		return strconv.FormatInt(int64(objmodel.DecodeI32(obj.Bytes)), 10)
	case objmodel.TagUSize:
		return strconv.FormatUint(uint64(objmodel.DecodeU32(obj.Bytes)), 10)
	case objmodel.TagString:
		return string(obj.Bytes)
	case objmodel.TagArray:
		parts := make([]string, len(obj.Elems))
		for i := range obj.Elems {
			parts[i] = stringify(obj.Elems[i].Get())
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return ""
	}
}

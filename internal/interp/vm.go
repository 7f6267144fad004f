// Package interp executes SnailVM bytecode against an Environment and a
// caller-provided frame, implementing §4.4's instruction set and call
// discipline.
package interp

import (
	"io"

	"shellvm/internal/bcio"
	"shellvm/internal/loader"
	"shellvm/internal/objmodel"
)

// Bridge is consulted at every CALL site (§4.5). It is an interface, not
// a concrete type, so that the jitbridge package (which implements the
// call-count/compile-trigger/compiled-executor contract) can depend on
// interp without interp depending on it back. When VM.Bridge is nil, CALL
// falls back to always interpreting — a minimal conformant
// implementation per §4.5's last paragraph.
type Bridge interface {
	Call(vm *VM, fnIndex int) error
}

// IntrinsicHost resolves and invokes a named intrinsic routine (§6). The
// only required intrinsic is "println"; anything else not recognized
// fails with VMError.
type IntrinsicHost interface {
	Invoke(vm *VM, name string, desc loader.IntrinsicDescriptor) error
}

// VM holds everything needed to execute bytecode against an Environment:
// the instruction cursor, the environment itself, and the optional
// collaborators (JIT bridge, intrinsic host, tracer).
type VM struct {
	Env    *loader.Environment
	R      *bcio.Reader
	Bridge Bridge
	Host   IntrinsicHost
	Trace  *Tracer
	Debug  bool
	Out    io.Writer

	// StepHook, when set, is invoked after every instruction dispatch
	// with the offset and opcode just executed. It exists so
	// internal/debugger can drive an interactive session: a hook that
	// blocks on a channel turns this otherwise free-running loop into
	// one that pauses after each instruction until told to resume.
	// Never consulted by core semantics.
	StepHook func(frame *Frame, offset int64, op byte)
}

// New builds a VM ready to Execute against env, reading instructions
// through r.
func New(env *loader.Environment, r *bcio.Reader) *VM {
	return &VM{Env: env, R: r}
}

// RunEntry executes the top-level instruction block recorded by the
// loader at Environment.EntryOffset/EntryLength.
func (vm *VM) RunEntry() error {
	if err := vm.R.SetOffset(vm.Env.EntryOffset); err != nil {
		return err
	}
	frame := NewFrame(0, 0)
	return vm.Execute(frame, vm.Env.EntryLength)
}

// Execute runs the length-byte instruction block starting at the
// Reader's current offset against frame, per §4.4's execution loop and
// §4.4.1's instruction set. It returns nil on normal completion (either
// the full length was consumed, or a RET was executed), a *HaltError if
// HALT was reached, or a *VMError for any structural/semantic violation.
func (vm *VM) Execute(frame *Frame, length int64) error {
	start := vm.R.GetOffset()
	for vm.R.GetOffset()-start < length {
		offset := vm.R.GetOffset()
		op, err := vm.R.ReadByte()
		if err != nil {
			return err
		}
		done, err := vm.dispatch(frame, offset, op)
		if err != nil {
			return err
		}
		if vm.Trace != nil {
			vm.Trace.stackDepth(vm.Env.Stack.Len())
		}
		if vm.StepHook != nil {
			vm.StepHook(frame, offset, op)
		}
		if done {
			return nil
		}
	}
	return nil
}

// dispatch executes a single opcode. done is true when a RET instruction
// was just executed and the enclosing Execute should stop immediately.
func (vm *VM) dispatch(frame *Frame, offset int64, op byte) (done bool, err error) {
	switch op {
	case OpPushConst:
		idx, err := vm.R.ReadU16()
		if err != nil {
			return false, err
		}
		vm.Trace.instr(offset, "PUSH_CONST", idx)
		if int(idx) >= len(vm.Env.Pool) {
			return false, invalidOp("PUSH_CONST: constant pool index %d out of range", idx)
		}
		vm.Env.Stack.Push(vm.Env.Pool[idx])
		return false, nil

	case OpPushLocal:
		idx, err := vm.R.ReadU16()
		if err != nil {
			return false, err
		}
		vm.Trace.instr(offset, "PUSH_LOCAL", idx)
		if int(idx) >= len(frame.Locals) {
			return false, invalidOp("PUSH_LOCAL: local index %d out of range", idx)
		}
		obj := frame.Locals[idx].Get()
		if obj == nil {
			return false, invalidOp("PUSH_LOCAL: local %d is null", idx)
		}
		vm.Env.Stack.Push(obj)
		return false, nil

	case OpPushGlobal:
		idx, err := vm.R.ReadU16()
		if err != nil {
			return false, err
		}
		vm.Trace.instr(offset, "PUSH_GLOBAL", idx)
		if int(idx) >= len(vm.Env.Globals) {
			return false, invalidOp("PUSH_GLOBAL: global index %d out of range", idx)
		}
		obj := vm.Env.Globals[idx].Get()
		if obj == nil {
			return false, invalidOp("PUSH_GLOBAL: global %d is null", idx)
		}
		vm.Env.Stack.Push(obj)
		return false, nil

	case OpStoreLocal:
		idx, err := vm.R.ReadU16()
		if err != nil {
			return false, err
		}
		vm.Trace.instr(offset, "STORE_LOCAL", idx)
		if int(idx) >= len(frame.Locals) {
			return false, invalidOp("STORE_LOCAL: local index %d out of range", idx)
		}
		frame.Locals[idx].Set(vm.Env.Stack.Pop())
		return false, nil

	case OpStoreGlobal:
		idx, err := vm.R.ReadU16()
		if err != nil {
			return false, err
		}
		vm.Trace.instr(offset, "STORE_GLOBAL", idx)
		if int(idx) >= len(vm.Env.Globals) {
			return false, invalidOp("STORE_GLOBAL: global index %d out of range", idx)
		}
		vm.Env.Globals[idx].Set(vm.Env.Stack.Pop())
		return false, nil

	case OpPop:
		vm.Trace.instr(offset, "POP")
		vm.Env.Stack.Pop()
		return false, nil

	case OpDup:
		vm.Trace.instr(offset, "DUP")
		vm.Env.Stack.Push(vm.Env.Stack.Top())
		return false, nil

	case OpAdd, OpSub, OpMul, OpDiv, OpMod:
		vm.Trace.instr(offset, opcodeName(op))
		return false, vm.Arith(op)

	case OpEq, OpNeq, OpLt, OpLe, OpGt, OpGte:
		vm.Trace.instr(offset, opcodeName(op))
		return false, vm.Compare(op)

	case OpAnd, OpOr:
		vm.Trace.instr(offset, opcodeName(op))
		return false, vm.LogicalBinary(op)

	case OpNot:
		vm.Trace.instr(offset, "NOT")
		operand := vm.Env.Stack.Pop()
		vm.Env.Stack.Push(vm.Env.Allocator.Create(objmodel.TagI32, boolBytes(!objmodel.Truthy(operand))))
		return false, nil

	case OpJmp:
		delta, err := vm.R.ReadI16()
		if err != nil {
			return false, err
		}
		vm.Trace.instr(offset, "JMP", delta)
		return false, vm.jump(delta)

	case OpJmpIfFalse:
		delta, err := vm.R.ReadI16()
		if err != nil {
			return false, err
		}
		vm.Trace.instr(offset, "JMP_IF_FALSE", delta)
		cond := vm.Env.Stack.Pop()
		if !objmodel.Truthy(cond) {
			return false, vm.jump(delta)
		}
		return false, nil

	case OpJmpIfTrue:
		delta, err := vm.R.ReadI16()
		if err != nil {
			return false, err
		}
		vm.Trace.instr(offset, "JMP_IF_TRUE", delta)
		cond := vm.Env.Stack.Pop()
		if objmodel.Truthy(cond) {
			return false, vm.jump(delta)
		}
		return false, nil

	case OpCall:
		idx, err := vm.R.ReadU16()
		if err != nil {
			return false, err
		}
		vm.Trace.instr(offset, "CALL", idx)
		return false, vm.PerformCall(int(idx))

	case OpRet:
		vm.Trace.instr(offset, "RET")
		return true, nil

	case OpHalt:
		vm.Trace.instr(offset, "HALT")
		return false, &HaltError{}

	case OpNewArray:
		size, err := vm.R.ReadU32()
		if err != nil {
			return false, err
		}
		if _, err := vm.R.ReadByte(); err != nil { // element type tag, unused for validation
			return false, err
		}
		vm.Trace.instr(offset, "NEW_ARRAY", size)
		n, err := bcio.AsInt(size)
		if err != nil {
			return false, invalidOp("NEW_ARRAY: %s", err)
		}
		vm.Env.Stack.Push(vm.Env.Allocator.CreateArray(n))
		return false, nil

	case OpGetArray:
		vm.Trace.instr(offset, "GET_ARRAY")
		return false, vm.GetArray()

	case OpSetArray:
		vm.Trace.instr(offset, "SET_ARRAY")
		return false, vm.SetArray()

	case OpInitArray:
		count, err := vm.R.ReadU16()
		if err != nil {
			return false, err
		}
		vm.Trace.instr(offset, "INIT_ARRAY", count)
		return false, vm.InitArray(int(count))

	case OpIntrinsicCall:
		idx, err := vm.R.ReadU16()
		if err != nil {
			return false, err
		}
		vm.Trace.instr(offset, "INTRINSIC_CALL", idx)
		return false, vm.IntrinsicCall(int(idx))

	default:
		return false, invalidOp("unknown opcode 0x%02X at offset %d", op, offset)
	}
}

// jump applies a relative i16 jump delta measured from the Reader's
// position immediately after the delta itself was read (§4.4.1 JMP).
func (vm *VM) jump(delta int16) error {
	return vm.R.SetOffset(vm.R.GetOffset() + int64(delta))
}

// boolBytes encodes a Go bool as the little-endian I32 payload that
// comparison, logical, and NOT result objects share (§4.4.1): 1 for
// true, 0 for false.
func boolBytes(v bool) []byte {
	if v {
		return objmodel.EncodeI32(1)
	}
	return objmodel.EncodeI32(0)
}

// Package jitbridge implements the §4.5 call hot-path: a call-count
// threshold that triggers, at most once per function, a "compilation"
// step producing an opaque executor handle stored on
// loader.FunctionDescriptor.Compiled.
//
// There is no native code generation here — SnailVM's JIT contract only
// requires that the compiled executor preserve the interpreter's
// observable behavior for the function body it was built from (§4.5
// step 3), and the design note on cycles/allocator policy explicitly
// invites substituting any implementation that satisfies the contract.
// CompiledExecutor specializes a hot function by decoding its bytecode
// into a flat slice of pre-resolved steps exactly once, so repeat
// invocations skip the big-endian field parsing and jump-target
// resolution the interpreter redoes on every pass.
package jitbridge

import (
	"shellvm/internal/bcio"
	"shellvm/internal/interp"
	"shellvm/internal/loader"
	"shellvm/internal/objmodel"
)

// step is one decoded instruction, its operands resolved to native Go
// values, and (for branches) its target pre-resolved to a step index
// rather than a byte delta.
type step struct {
	op     byte
	idx    uint16
	delta  int16
	size   uint32
	target int
}

// CompiledExecutor is the opaque handle stored in
// loader.FunctionDescriptor.Compiled once a function crosses the call
// threshold.
type CompiledExecutor struct {
	argCount   int
	localCount int
	steps      []step
}

// Compile decodes fn's body, starting at fn.Offset in r, into a
// CompiledExecutor. It consumes exactly fn.Length bytes from r, exactly
// as interp.VM.Execute would (§4.5 step 2: "Compilation consumes the
// instruction bytes of fn from the cursor").
func Compile(r *bcio.Reader, fn loader.FunctionDescriptor) (*CompiledExecutor, error) {
	if err := r.SetOffset(fn.Offset); err != nil {
		return nil, err
	}

	var steps []step
	var relOffsets []int64 // byte offset (relative to fn.Offset) of each step
	targets := make([]int64, 0, 8)
	pendingBranch := make([]int, 0, 8)

	start := r.GetOffset()
	for r.GetOffset()-start < fn.Length {
		rel := r.GetOffset() - start
		op, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		s := step{op: op}
		switch op {
		case interp.OpPushConst, interp.OpPushLocal, interp.OpPushGlobal,
			interp.OpStoreLocal, interp.OpStoreGlobal,
			interp.OpCall, interp.OpIntrinsicCall, interp.OpInitArray:
			v, err := r.ReadU16()
			if err != nil {
				return nil, err
			}
			s.idx = v

		case interp.OpJmp, interp.OpJmpIfFalse, interp.OpJmpIfTrue:
			v, err := r.ReadI16()
			if err != nil {
				return nil, err
			}
			s.delta = v
			pendingBranch = append(pendingBranch, len(steps))
			targets = append(targets, r.GetOffset()+int64(v)-start)

		case interp.OpNewArray:
			sz, err := r.ReadU32()
			if err != nil {
				return nil, err
			}
			if _, err := r.ReadByte(); err != nil {
				return nil, err
			}
			s.size = sz
		}
		steps = append(steps, s)
		relOffsets = append(relOffsets, rel)
	}

	// Sentinel: a jump landing exactly at the end of the block falls off
	// like reaching the length bound does in interp.VM.Execute.
	relOffsets = append(relOffsets, fn.Length)
	offsetIndex := make(map[int64]int, len(relOffsets))
	for i, off := range relOffsets {
		offsetIndex[off] = i
	}

	for bi, target := range targets {
		idx, ok := offsetIndex[target]
		if !ok {
			return nil, &interp.VMError{Reason: "jump target does not land on an instruction boundary"}
		}
		steps[pendingBranch[bi]].target = idx
	}

	return &CompiledExecutor{argCount: fn.ArgCount, localCount: fn.LocalCount, steps: steps}, nil
}

// Run executes the decoded steps against vm, using only the exported
// operation primitives interp.VM exposes for exactly this purpose
// (Push/Pop/Arith/Compare/LogicalBinary/GetArray/SetArray/InitArray/
// IntrinsicCall) — the Go equivalent of the push/pop/arithmetic/
// compare/logical closures §4.5 step 3 hands to the compiled tier.
func (c *CompiledExecutor) Run(vm *interp.VM) error {
	frame := interp.NewFrame(c.argCount, c.localCount)
	pc := 0
	for pc < len(c.steps) {
		s := c.steps[pc]
		switch s.op {
		case interp.OpPushConst:
			vm.Push(vm.Env.Pool[s.idx])
		case interp.OpPushLocal:
			vm.Push(frame.Locals[s.idx].Get())
		case interp.OpPushGlobal:
			vm.Push(vm.Env.Globals[s.idx].Get())
		case interp.OpStoreLocal:
			frame.Locals[s.idx].Set(vm.Pop())
		case interp.OpStoreGlobal:
			vm.Env.Globals[s.idx].Set(vm.Pop())
		case interp.OpPop:
			vm.Pop()
		case interp.OpDup:
			vm.Push(vm.Env.Stack.Top())

		case interp.OpAdd, interp.OpSub, interp.OpMul, interp.OpDiv, interp.OpMod:
			if err := vm.Arith(s.op); err != nil {
				return err
			}
		case interp.OpEq, interp.OpNeq, interp.OpLt, interp.OpLe, interp.OpGt, interp.OpGte:
			if err := vm.Compare(s.op); err != nil {
				return err
			}
		case interp.OpAnd, interp.OpOr:
			if err := vm.LogicalBinary(s.op); err != nil {
				return err
			}
		case interp.OpNot:
			operand := vm.Pop()
			vm.Push(vm.Env.Allocator.Create(objmodel.TagI32, notBytes(operand)))

		case interp.OpJmp:
			pc = s.target
			continue
		case interp.OpJmpIfFalse:
			cond := vm.Pop()
			if !objmodel.Truthy(cond) {
				pc = s.target
				continue
			}
		case interp.OpJmpIfTrue:
			cond := vm.Pop()
			if objmodel.Truthy(cond) {
				pc = s.target
				continue
			}

		case interp.OpCall:
			if err := vm.PerformCall(int(s.idx)); err != nil {
				return err
			}
		case interp.OpRet:
			return nil
		case interp.OpHalt:
			return &interp.HaltError{}

		case interp.OpNewArray:
			n, err := bcio.AsInt(s.size)
			if err != nil {
				return err
			}
			vm.Push(vm.Env.Allocator.CreateArray(n))
		case interp.OpGetArray:
			if err := vm.GetArray(); err != nil {
				return err
			}
		case interp.OpSetArray:
			if err := vm.SetArray(); err != nil {
				return err
			}
		case interp.OpInitArray:
			if err := vm.InitArray(int(s.idx)); err != nil {
				return err
			}
		case interp.OpIntrinsicCall:
			if err := vm.IntrinsicCall(int(s.idx)); err != nil {
				return err
			}
		}
		pc++
	}
	return nil
}

func notBytes(o *objmodel.Object) []byte {
	if objmodel.Truthy(o) {
		return objmodel.EncodeI32(0)
	}
	return objmodel.EncodeI32(1)
}

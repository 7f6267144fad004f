package loader

import (
	"shellvm/internal/heapalloc"
	"shellvm/internal/objmodel"
)

// Header is the 8-byte file header (§4.2).
type Header struct {
	Magic             uint32
	Version           uint16
	MainFunctionIndex uint16
}

// RequiredMagic is the mandatory magic constant; a mismatch fails the
// load with InvalidBytecode.
const RequiredMagic uint32 = 0x534E4131

// FunctionDescriptor describes one function table entry (§3 "Function
// descriptor"). CallCount is bumped by the interpreter at every CALL (and
// pre-seeded by the JIT bridge's warm start); Compiled is set by the JIT
// bridge and is an opaque handle (any compiled-executor
// representation the JIT bridge chooses) so this package has no
// dependency on the bridge's internals.
type FunctionDescriptor struct {
	Offset     int64
	ReturnType objmodel.Tag
	ArgCount   int
	LocalCount int
	Length     int64

	CallCount int
	Compiled  any
}

// IntrinsicDescriptor describes one intrinsic table entry (§3 "Intrinsic
// descriptor").
type IntrinsicDescriptor struct {
	ReturnType objmodel.Tag
	ArgCount   int
	Name       string
}

// Environment is the aggregate produced by the Loader and consumed by
// the interpreter for the lifetime of the program run (§3 "Lifecycle
// summary", GLOSSARY "Environment").
type Environment struct {
	Header    Header
	Pool      []*objmodel.Object
	Globals   []objmodel.Link
	Functions []FunctionDescriptor
	Intrinsics []IntrinsicDescriptor

	Allocator *heapalloc.Allocator
	Stack     objmodel.Stack

	// EntryOffset/EntryLength locate the top-level instruction block
	// that follows the intrinsic table (§4.2's trailing entry_length).
	EntryOffset int64
	EntryLength int64
}

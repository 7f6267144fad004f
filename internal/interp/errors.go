package interp

import (
	"errors"
	"fmt"
)

// VMError is InvalidBytecode raised during execution (§7): an unknown
// opcode, a type-illegal operation, or an unsupported intrinsic name.
// Fatal to the current run. A short read is not a VMError: it surfaces
// as the Reader's own *bcio.ErrUnexpectedEOF.
type VMError struct {
	Reason string
}

func (e *VMError) Error() string {
	return fmt.Sprintf("invalid bytecode: %s", e.Reason)
}

func invalidOp(format string, args ...any) error {
	return &VMError{Reason: fmt.Sprintf(format, args...)}
}

// HaltError is raised by the HALT opcode (§4.4.1, §7). It unwinds
// through every pending Execute call (interpreted and JIT-compiled
// alike) exactly like any other Go error return.
type HaltError struct{}

func (e *HaltError) Error() string {
	return "HALT command reached"
}

// IsHalt reports whether err is (or wraps) a HaltError.
func IsHalt(err error) bool {
	var h *HaltError
	return errors.As(err, &h)
}

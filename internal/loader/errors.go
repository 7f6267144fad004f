package loader

import "fmt"

// BytecodeError reports a structural or semantic defect in the input
// file: bad magic, an unknown constant-pool tag, or any other violation
// of the fixed section order (§4.2, §7 "InvalidBytecode").
type BytecodeError struct {
	Reason string
}

func (e *BytecodeError) Error() string {
	return fmt.Sprintf("invalid bytecode: %s", e.Reason)
}

func invalid(format string, args ...any) error {
	return &BytecodeError{Reason: fmt.Sprintf(format, args...)}
}

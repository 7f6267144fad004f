package interp

import (
	"fmt"
	"io"
)

// Tracer prints one line per executed instruction plus the operand
// stack depth afterward, activated by the CLI's -d/--debug flag (§9
// "Debug tracing"). It must never change observable program state; it
// only observes.
type Tracer struct {
	w io.Writer
}

// NewTracer returns a Tracer writing to w.
func NewTracer(w io.Writer) *Tracer {
	return &Tracer{w: w}
}

func (t *Tracer) instr(offset int64, name string, args ...any) {
	if t == nil || t.w == nil {
		return
	}
	if len(args) == 0 {
		fmt.Fprintf(t.w, "[%06d] %s\n", offset, name)
		return
	}
	fmt.Fprintf(t.w, "[%06d] %s %v\n", offset, name, args)
}

func (t *Tracer) stackDepth(depth int) {
	if t == nil || t.w == nil {
		return
	}
	fmt.Fprintf(t.w, "         stack=%d\n", depth)
}

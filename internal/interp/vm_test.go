package interp

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"shellvm/internal/bcio"
	"shellvm/internal/loader"
	"shellvm/internal/objmodel"
)

// program assembles a complete SnailVM bytecode file for tests, matching
// the wire format of §4.2/§6 bit-exactly.
type program struct {
	buf        bytes.Buffer
	intrinsics int
}

func newProgram() *program {
	p := &program{}
	p.u32(loader.RequiredMagic)
	p.u16(1) // version
	p.u16(0) // main_index, unused by RunEntry
	return p
}

func (p *program) u8(v byte)     { p.buf.WriteByte(v) }
func (p *program) u16(v uint16)  { binary.Write(&p.buf, binary.BigEndian, v) }
func (p *program) i16(v int16)   { binary.Write(&p.buf, binary.BigEndian, v) }
func (p *program) u32(v uint32)  { binary.Write(&p.buf, binary.BigEndian, v) }
func (p *program) raw(b []byte)  { p.buf.Write(b) }

func (p *program) constPool(entries ...func(*program)) {
	p.u16(uint16(len(entries)))
	for _, e := range entries {
		e(p)
	}
}

func constI32(v int32) func(*program) {
	return func(p *program) {
		p.u8(byte(objmodel.TagI32))
		p.u32(uint32(v))
	}
}

func constString(s string) func(*program) {
	return func(p *program) {
		p.u8(byte(objmodel.TagString))
		p.u16(uint16(len(s)))
		p.raw([]byte(s))
	}
}

func (p *program) noGlobals()    { p.u16(0) }
func (p *program) noFunctions()  { p.u16(0) }

func (p *program) functions(fns ...func(*program)) {
	p.u16(uint16(len(fns)))
	for _, f := range fns {
		f(p)
	}
}

// fn declares one function: no name, argCount args, localCount locals
// beyond argCount, the given body bytes, retTag I32.
func fn(argCount int, localCount int, body []byte) func(*program) {
	return func(p *program) {
		p.u8(0) // name length
		p.u8(byte(argCount))
		p.u8(byte(objmodel.TagI32))
		p.u16(uint16(localCount))
		p.u32(uint32(len(body)))
		p.raw(body)
	}
}

func (p *program) intrinsicTable(names ...string) {
	p.u16(uint16(len(names)))
	for _, n := range names {
		p.u8(byte(len(n)))
		p.raw([]byte(n))
		p.u8(0) // arg_count, informational
		p.u8(byte(objmodel.TagVoid))
	}
}

func (p *program) entry(body []byte) {
	p.u32(uint32(len(body)))
	p.raw(body)
}

func (p *program) writeToTemp(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.svm")
	if err := os.WriteFile(path, p.buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// --- instruction assembly helpers ---

type instrs struct{ b bytes.Buffer }

func (i *instrs) op(b byte)          { i.b.WriteByte(b) }
func (i *instrs) u16(v uint16)       { binary.Write(&i.b, binary.BigEndian, v) }
func (i *instrs) i16(v int16)        { binary.Write(&i.b, binary.BigEndian, v) }
func (i *instrs) u32(v uint32)       { binary.Write(&i.b, binary.BigEndian, v) }
func (i *instrs) u8(v byte)          { i.b.WriteByte(v) }
func (i *instrs) bytes() []byte      { return i.b.Bytes() }

func (i *instrs) pushConst(idx uint16)   { i.op(OpPushConst); i.u16(idx) }
func (i *instrs) pushLocal(idx uint16)   { i.op(OpPushLocal); i.u16(idx) }
func (i *instrs) pushGlobal(idx uint16)  { i.op(OpPushGlobal); i.u16(idx) }
func (i *instrs) storeLocal(idx uint16)  { i.op(OpStoreLocal); i.u16(idx) }
func (i *instrs) storeGlobal(idx uint16) { i.op(OpStoreGlobal); i.u16(idx) }
func (i *instrs) pop()                  { i.op(OpPop) }
func (i *instrs) dup()                  { i.op(OpDup) }
func (i *instrs) add()                  { i.op(OpAdd) }
func (i *instrs) lt()                   { i.op(OpLt) }
func (i *instrs) jmp(delta int16)       { i.op(OpJmp); i.i16(delta) }
func (i *instrs) jmpIfFalse(delta int16) { i.op(OpJmpIfFalse); i.i16(delta) }
func (i *instrs) call(idx uint16)       { i.op(OpCall); i.u16(idx) }
func (i *instrs) ret()                  { i.op(OpRet) }
func (i *instrs) halt()                 { i.op(OpHalt) }
func (i *instrs) newArray(size uint32)  { i.op(OpNewArray); i.u32(size); i.u8(byte(objmodel.TagI32)) }
func (i *instrs) getArray()             { i.op(OpGetArray) }
func (i *instrs) initArray(count uint16) { i.op(OpInitArray); i.u16(count) }
func (i *instrs) intrinsicCall(idx uint16) { i.op(OpIntrinsicCall); i.u16(idx) }

func loadAndRun(t *testing.T, p *program) (*VM, *bytes.Buffer, error) {
	t.Helper()
	r, err := bcio.Open(p.writeToTemp(t), 0)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	env, err := loader.Load(r)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var out bytes.Buffer
	vm := New(env, r)
	vm.Out = &out
	runErr := vm.RunEntry()
	return vm, &out, runErr
}

func TestPushConstAndPrintln(t *testing.T) { // S1
	p := newProgram()
	p.constPool(constString("hi"))
	p.noGlobals()
	p.noFunctions()
	p.intrinsicTable("println")

	var body instrs
	body.pushConst(0)
	body.intrinsicCall(0)
	body.halt()
	p.entry(body.bytes())

	_, out, err := loadAndRun(t, p)
	if !IsHalt(err) {
		t.Fatalf("expected HaltError, got %v", err)
	}
	if out.String() != "hi\n" {
		t.Fatalf("stdout = %q, want %q", out.String(), "hi\n")
	}
}

func TestArithmeticAdd(t *testing.T) { // S2
	p := newProgram()
	p.constPool(constI32(2), constI32(3))
	p.noGlobals()
	p.noFunctions()
	p.intrinsicTable("println")

	var body instrs
	body.pushConst(0)
	body.pushConst(1)
	body.add()
	body.intrinsicCall(0)
	body.halt()
	p.entry(body.bytes())

	_, out, _ := loadAndRun(t, p)
	if out.String() != "5\n" {
		t.Fatalf("stdout = %q, want %q", out.String(), "5\n")
	}
}

func TestFunctionCall(t *testing.T) { // S4
	p := newProgram()
	p.constPool(constI32(21))
	p.noGlobals()

	var doubleBody instrs
	doubleBody.storeLocal(0)
	doubleBody.pushLocal(0)
	doubleBody.pushLocal(0)
	doubleBody.add()
	doubleBody.ret()
	p.functions(fn(1, 0, doubleBody.bytes()))

	p.intrinsicTable("println")

	var entry instrs
	entry.pushConst(0)
	entry.call(0)
	entry.intrinsicCall(0)
	entry.halt()
	p.entry(entry.bytes())

	_, out, _ := loadAndRun(t, p)
	if out.String() != "42\n" {
		t.Fatalf("stdout = %q, want %q", out.String(), "42\n")
	}
}

func TestArrayInitAndGet(t *testing.T) { // S5
	p := newProgram()
	p.constPool(constI32(10), constI32(20), constI32(30), constI32(1))
	p.noGlobals()
	p.noFunctions()
	p.intrinsicTable("println")

	var body instrs
	body.newArray(3)
	body.pushConst(2) // 30, bottom of the three values pushed
	body.pushConst(1) // 20
	body.pushConst(0) // 10, pushed last -> popped first -> slot 0
	body.initArray(3)
	body.pushConst(3) // index 1
	body.getArray()
	body.intrinsicCall(0)
	body.halt()
	p.entry(body.bytes())

	_, out, _ := loadAndRun(t, p)
	if out.String() != "20\n" {
		t.Fatalf("stdout = %q, want %q", out.String(), "20\n")
	}
}

func TestLoopOverGlobal(t *testing.T) { // S3
	p := newProgram()
	p.constPool(constI32(0), constI32(10), constI32(1))
	p.u16(1) // one global
	p.u8(0)  // name length
	p.u8(byte(objmodel.TagI32))
	p.noFunctions()
	p.intrinsicTable("println")

	var body instrs
	body.pushConst(0)
	body.storeGlobal(0)
	loopStart := body.b.Len()
	body.pushGlobal(0)
	body.pushConst(1)
	body.lt()
	// placeholder for JMP_IF_FALSE, patched below
	jifOffset := body.b.Len()
	body.jmpIfFalse(0)
	body.pushGlobal(0)
	body.intrinsicCall(0)
	body.pushGlobal(0)
	body.pushConst(2)
	body.add()
	body.storeGlobal(0)
	jmpBackOffset := body.b.Len()
	body.jmp(0)
	endOffset := body.b.Len()
	body.halt()

	raw := body.bytes()
	// JMP delta is measured from the offset right after the i16 operand.
	jifDeltaPos := jifOffset + 1
	jifDelta := int16(endOffset - (jifOffset + 3))
	binary.BigEndian.PutUint16(raw[jifDeltaPos:], uint16(jifDelta))
	jmpDeltaPos := jmpBackOffset + 1
	jmpDelta := int16(loopStart - (jmpBackOffset + 3))
	binary.BigEndian.PutUint16(raw[jmpDeltaPos:], uint16(jmpDelta))

	p.entry(raw)

	_, out, _ := loadAndRun(t, p)
	want := "0\n1\n2\n3\n4\n5\n6\n7\n8\n9\n"
	if out.String() != want {
		t.Fatalf("stdout = %q, want %q", out.String(), want)
	}
}

func TestGCBoundedUnderChurn(t *testing.T) { // S6
	p := newProgram()
	p.constPool(constI32(0), constI32(1000), constI32(1))
	p.u16(1)
	p.u8(0)
	p.u8(byte(objmodel.TagI32))
	p.noFunctions()
	p.intrinsicTable()

	var body instrs
	body.pushConst(0)
	body.storeGlobal(0)
	loopStart := body.b.Len()
	body.pushGlobal(0)
	body.pushConst(1)
	body.lt()
	jifOffset := body.b.Len()
	body.jmpIfFalse(0)
	body.pushGlobal(0)
	body.pushConst(0) // I32 0 — ADD below allocates a fresh transient object
	body.add()
	body.pop()
	body.pushGlobal(0)
	body.pushConst(2)
	body.add()
	body.storeGlobal(0)
	jmpBackOffset := body.b.Len()
	body.jmp(0)
	endOffset := body.b.Len()
	body.halt()

	raw := body.bytes()
	jifDeltaPos := jifOffset + 1
	jifDelta := int16(endOffset - (jifOffset + 3))
	binary.BigEndian.PutUint16(raw[jifDeltaPos:], uint16(jifDelta))
	jmpDeltaPos := jmpBackOffset + 1
	jmpDelta := int16(loopStart - (jmpBackOffset + 3))
	binary.BigEndian.PutUint16(raw[jmpDeltaPos:], uint16(jmpDelta))
	p.entry(raw)

	vm, _, _ := loadAndRun(t, p)
	if live := vm.Env.Allocator.Size(); live > 64 {
		t.Fatalf("allocator live size = %d, want bounded by a small constant", live)
	}
}

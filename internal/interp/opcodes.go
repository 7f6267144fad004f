package interp

// Opcode values per §4.4.1. These are bit-exact wire values (§6) and
// must not be renumbered.
const (
	OpPushConst     byte = 0x01
	OpPushLocal     byte = 0x02
	OpPushGlobal    byte = 0x03
	OpStoreLocal    byte = 0x04
	OpStoreGlobal   byte = 0x05
	OpPop           byte = 0x06
	OpDup           byte = 0x07
	OpAdd           byte = 0x10
	OpSub           byte = 0x11
	OpMul           byte = 0x12
	OpDiv           byte = 0x13
	OpMod           byte = 0x14
	OpEq            byte = 0x20
	OpNeq           byte = 0x21
	OpLt            byte = 0x22
	OpLe            byte = 0x23
	OpGt            byte = 0x24
	OpGte           byte = 0x25
	OpAnd           byte = 0x26
	OpOr            byte = 0x27
	OpNot           byte = 0x28
	OpJmp           byte = 0x30
	OpJmpIfFalse    byte = 0x31
	OpCall          byte = 0x32
	OpRet           byte = 0x33
	OpHalt          byte = 0x34
	OpJmpIfTrue     byte = 0x35
	OpNewArray      byte = 0x40
	OpGetArray      byte = 0x41
	OpSetArray      byte = 0x42
	OpInitArray     byte = 0x43
	OpIntrinsicCall byte = 0x50
)

var opcodeNames = map[byte]string{
	OpPushConst:     "PUSH_CONST",
	OpPushLocal:     "PUSH_LOCAL",
	OpPushGlobal:    "PUSH_GLOBAL",
	OpStoreLocal:    "STORE_LOCAL",
	OpStoreGlobal:   "STORE_GLOBAL",
	OpPop:           "POP",
	OpDup:           "DUP",
	OpAdd:           "ADD",
	OpSub:           "SUB",
	OpMul:           "MUL",
	OpDiv:           "DIV",
	OpMod:           "MOD",
	OpEq:            "EQ",
	OpNeq:           "NEQ",
	OpLt:            "LT",
	OpLe:            "LE",
	OpGt:            "GT",
	OpGte:           "GTE",
	OpAnd:           "AND",
	OpOr:            "OR",
	OpNot:           "NOT",
	OpJmp:           "JMP",
	OpJmpIfFalse:    "JMP_IF_FALSE",
	OpJmpIfTrue:     "JMP_IF_TRUE",
	OpCall:          "CALL",
	OpRet:           "RET",
	OpHalt:          "HALT",
	OpNewArray:      "NEW_ARRAY",
	OpGetArray:      "GET_ARRAY",
	OpSetArray:      "SET_ARRAY",
	OpInitArray:     "INIT_ARRAY",
	OpIntrinsicCall: "INTRINSIC_CALL",
}

func opcodeName(op byte) string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return "UNKNOWN"
}

// OpcodeName exposes opcodeName to other packages (internal/debugger,
// internal/debugui) that render instruction traces without duplicating
// the name table.
func OpcodeName(op byte) string {
	return opcodeName(op)
}

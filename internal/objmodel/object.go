package objmodel

// Object is a heap value: a type tag plus payload, kept alive by
// LinkCount. For TagArray the payload is a sequence of Link slots
// (Elems); for every other tag it is a private copy of the constructing
// bytes (Bytes).
type Object struct {
	Tag       Tag
	Bytes     []byte
	Elems     []Link
	LinkCount int
}

// NewScalar builds a fresh Object holding a copy of data, with
// LinkCount 0. Used for VOID/I32/USIZE/STRING.
func NewScalar(tag Tag, data []byte) *Object {
	cp := make([]byte, len(data))
	copy(cp, data)
	return &Object{Tag: tag, Bytes: cp}
}

// NewArray builds a fresh ARRAY Object of size null link slots.
func NewArray(size int) *Object {
	return &Object{Tag: TagArray, Elems: make([]Link, size)}
}

// DataSize returns the object's element/byte count, matching the wire
// semantics of §3 ("data_size").
func (o *Object) DataSize() int {
	if o == nil {
		return 0
	}
	if o.Tag == TagArray {
		return len(o.Elems)
	}
	return len(o.Bytes)
}

// Equal implements the byte-exact, tag-exact equality required by the EQ
// opcode (§4.4.1): same tag and identical payload bytes. ARRAY equality
// is defined only by identity (arrays never reach EQ/NEQ in valid
// programs since those opcodes are specified over I32/USIZE/STRING).
func (o *Object) Equal(other *Object) bool {
	if o == nil || other == nil {
		return o == other
	}
	if o.Tag != other.Tag {
		return false
	}
	if o.Tag == TagArray {
		return o == other
	}
	if len(o.Bytes) != len(other.Bytes) {
		return false
	}
	for i := range o.Bytes {
		if o.Bytes[i] != other.Bytes[i] {
			return false
		}
	}
	return true
}

// Package loader parses a SnailVM bytecode file into an Environment
// (§4.2). Sections are parsed in a fixed order; any deviation fails with
// a BytecodeError.
package loader

import (
	"shellvm/internal/bcio"
	"shellvm/internal/heapalloc"
	"shellvm/internal/objmodel"
)

// Load consumes r (positioned at file start) and returns the initial
// Environment, ready for the interpreter to run the entry block.
func Load(r *bcio.Reader) (*Environment, error) {
	header, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	pool, err := readConstantPool(r)
	if err != nil {
		return nil, err
	}

	globals, err := readGlobals(r)
	if err != nil {
		return nil, err
	}

	functions, err := readFunctionTable(r)
	if err != nil {
		return nil, err
	}

	intrinsics, err := readIntrinsicTable(r)
	if err != nil {
		return nil, err
	}

	entryLength, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	entryLen, err := bcio.AsInt(entryLength)
	if err != nil {
		return nil, invalid("entry block length overflows int: %s", err)
	}

	env := &Environment{
		Header:      header,
		Pool:        pool,
		Globals:     globals,
		Functions:   functions,
		Intrinsics:  intrinsics,
		Allocator:   heapalloc.New(),
		EntryOffset: r.GetOffset(),
		EntryLength: int64(entryLen),
	}
	return env, nil
}

func readHeader(r *bcio.Reader) (Header, error) {
	magic, err := r.ReadU32()
	if err != nil {
		return Header{}, err
	}
	if magic != RequiredMagic {
		return Header{}, invalid("magic constant is invalid (got 0x%08X)", magic)
	}
	version, err := r.ReadU16()
	if err != nil {
		return Header{}, err
	}
	mainIdx, err := r.ReadU16()
	if err != nil {
		return Header{}, err
	}
	return Header{Magic: magic, Version: version, MainFunctionIndex: mainIdx}, nil
}

// readConstantPool parses the fixed-length vector of Object references
// (§4.2 "Constant Pool"). Each entry is allocated with LinkCount 0;
// constant-pool membership itself is the ownership relation — entries
// are never reclaimed by the Allocator-on-growth policy because the
// pool's Objects are not created through an Allocator at all (§3
// "kept alive by being referenced directly, not via Links").
func readConstantPool(r *bcio.Reader) ([]*objmodel.Object, error) {
	count, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	pool := make([]*objmodel.Object, count)
	for i := range pool {
		tagByte, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		switch tagByte {
		case byte(objmodel.TagI32), byte(objmodel.TagUSize):
			raw, err := r.ReadBytes(4)
			if err != nil {
				return nil, err
			}
			// Wire bytes are big-endian; stored little-endian for
			// native access (§4.2).
			le := []byte{raw[3], raw[2], raw[1], raw[0]}
			pool[i] = objmodel.NewScalar(objmodel.Tag(tagByte), le)
		case byte(objmodel.TagString):
			length, err := r.ReadU16()
			if err != nil {
				return nil, err
			}
			data, err := r.ReadBytes(int(length))
			if err != nil {
				return nil, err
			}
			pool[i] = objmodel.NewScalar(objmodel.TagString, data)
		default:
			return nil, invalid("unexpected type in constant pool (0x%02X)", tagByte)
		}
	}
	return pool, nil
}

// readGlobals parses the fixed-length vector of Links (§4.2 "Globals").
// Array-typed globals are NOT pre-allocated: the loader reads past the
// extra size/type bytes and leaves the slot null until the program's
// own STORE_GLOBAL runs, matching the documented behavior in §9
// ("Global initialization for arrays") and
// _examples/original_source/src/reader.cpp::read_globals.
func readGlobals(r *bcio.Reader) ([]objmodel.Link, error) {
	count, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	globals := make([]objmodel.Link, count)
	for i := uint16(0); i < count; i++ {
		nameLen, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		if err := r.Skip(int(nameLen)); err != nil {
			return nil, err
		}
		tagByte, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		if tagByte == byte(objmodel.TagArray) {
			if err := r.Skip(5); err != nil { // u32 size + 1 type byte
				return nil, err
			}
		}
	}
	return globals, nil
}

// readFunctionTable parses the fixed-length function table (§4.2
// "Function Table"). Function bodies are located, not decoded: the
// loader records the body's start offset and skips over its bytes, so
// decoding happens lazily during interpretation (and, later, possibly
// a second time by the JIT bridge).
func readFunctionTable(r *bcio.Reader) ([]FunctionDescriptor, error) {
	count, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	functions := make([]FunctionDescriptor, count)
	for i := range functions {
		nameLen, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		if err := r.Skip(int(nameLen)); err != nil {
			return nil, err
		}
		argCount, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		retTagByte, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		retTag, err := objmodel.ParseTag(retTagByte)
		if err != nil {
			return nil, invalid("function %d: %s", i, err)
		}
		localCount, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		length, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		bodyLen, err := bcio.AsInt(length)
		if err != nil {
			return nil, invalid("function %d: body length overflows int: %s", i, err)
		}
		functions[i] = FunctionDescriptor{
			Offset:     r.GetOffset(),
			ReturnType: retTag,
			ArgCount:   int(argCount),
			LocalCount: int(localCount),
			Length:     int64(bodyLen),
		}
		if err := r.Skip(bodyLen); err != nil {
			return nil, err
		}
	}
	return functions, nil
}

// readIntrinsicTable parses the fixed-length intrinsic table (§4.2
// "Intrinsic Table"). Unlike function/global names, intrinsic names are
// kept: they identify which host routine INTRINSIC_CALL invokes.
func readIntrinsicTable(r *bcio.Reader) ([]IntrinsicDescriptor, error) {
	count, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	intrinsics := make([]IntrinsicDescriptor, count)
	for i := range intrinsics {
		nameLen, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		nameBytes, err := r.ReadBytes(int(nameLen))
		if err != nil {
			return nil, err
		}
		argCount, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		retTagByte, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		retTag, err := objmodel.ParseTag(retTagByte)
		if err != nil {
			return nil, invalid("intrinsic %d: %s", i, err)
		}
		intrinsics[i] = IntrinsicDescriptor{
			ReturnType: retTag,
			ArgCount:   int(argCount),
			Name:       string(nameBytes),
		}
	}
	return intrinsics, nil
}

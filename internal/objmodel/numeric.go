package objmodel

// I32/USIZE payloads are 4 bytes, little-endian in memory for native
// access (§4.2 "Constant Pool": wire bytes are big-endian, the loader
// re-encodes them little-endian on construction).

// EncodeI32 renders a signed 32-bit value as a 4-byte little-endian
// payload.
func EncodeI32(v int32) []byte {
	u := uint32(v)
	return []byte{byte(u), byte(u >> 8), byte(u >> 16), byte(u >> 24)}
}

// EncodeU32 renders an unsigned 32-bit value as a 4-byte little-endian
// payload.
func EncodeU32(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

// DecodeI32 reads a 4-byte little-endian payload as a signed 32-bit
// value. Payloads shorter than 4 bytes are zero-extended; this only
// happens for malformed input and callers should validate DataSize
// first where it matters.
func DecodeI32(b []byte) int32 {
	return int32(decodeU32(b))
}

// DecodeU32 reads a 4-byte little-endian payload as an unsigned 32-bit
// value.
func DecodeU32(b []byte) uint32 {
	return decodeU32(b)
}

func decodeU32(b []byte) uint32 {
	var u uint32
	for i := 0; i < 4 && i < len(b); i++ {
		u |= uint32(b[i]) << (8 * uint(i))
	}
	return u
}

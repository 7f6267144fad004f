package objmodel

// Truthy implements the boolean coercion of §4.4.2: an Object is true iff
// any byte of its payload is non-zero. For ARRAY the payload is the
// element-slot sequence, so a zero-length array (no slots) is false and
// any non-empty array is true, regardless of what its slots hold.
func Truthy(o *Object) bool {
	if o == nil {
		return false
	}
	if o.Tag == TagArray {
		return len(o.Elems) > 0
	}
	for _, b := range o.Bytes {
		if b != 0 {
			return true
		}
	}
	return false
}

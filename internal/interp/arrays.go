package interp

import "shellvm/internal/objmodel"

// GetArray implements GET_ARRAY (§4.4.1): pop index, pop array, push
// the link at array[index] (its target Object, possibly null).
func (vm *VM) GetArray() error {
	idxObj := vm.Env.Stack.Pop()
	arr := vm.Env.Stack.Pop()
	idx, err := vm.arrayIndex(arr, idxObj)
	if err != nil {
		return err
	}
	vm.Env.Stack.Push(arr.Elems[idx].Get())
	return nil
}

// SetArray implements SET_ARRAY (§4.4.1): pop index, pop value, pop
// array, assign value into array[index] via the Link protocol.
func (vm *VM) SetArray() error {
	idxObj := vm.Env.Stack.Pop()
	value := vm.Env.Stack.Pop()
	arr := vm.Env.Stack.Pop()
	idx, err := vm.arrayIndex(arr, idxObj)
	if err != nil {
		return err
	}
	arr.Elems[idx].Set(value)
	return nil
}

// InitArray implements INIT_ARRAY count (§4.4.1, §5 ordering
// guarantees): pop count values in the order they come off the stack —
// the first popped becomes slot 0's source — before popping the target
// array itself, then store each into its slot via the Link protocol and
// push the array back.
func (vm *VM) InitArray(count int) error {
	vals := make([]*objmodel.Object, count)
	for i := 0; i < count; i++ {
		vals[i] = vm.Env.Stack.Pop()
	}
	arr := vm.Env.Stack.Pop()
	if arr == nil || arr.Tag != objmodel.TagArray {
		return invalidOp("INIT_ARRAY: target is not an ARRAY")
	}
	if count > len(arr.Elems) {
		return invalidOp("INIT_ARRAY: count %d exceeds array size %d", count, len(arr.Elems))
	}
	for i := 0; i < count; i++ {
		arr.Elems[i].Set(vals[i])
	}
	vm.Env.Stack.Push(arr)
	return nil
}

// arrayIndex validates arr is an ARRAY Object and idxObj decodes to an
// in-bounds element index.
func (vm *VM) arrayIndex(arr, idxObj *objmodel.Object) (int, error) {
	if arr == nil || arr.Tag != objmodel.TagArray {
		return 0, invalidOp("array operation on a non-ARRAY operand")
	}
	if idxObj == nil {
		return 0, invalidOp("array index operand is null")
	}
	var idx int
	switch idxObj.Tag {
	case objmodel.TagUSize:
		idx = int(objmodel.DecodeU32(idxObj.Bytes))
	case objmodel.TagI32:
		idx = int(objmodel.DecodeI32(idxObj.Bytes))
	default:
		return 0, invalidOp("array index must be I32 or USIZE, got %s", idxObj.Tag)
	}
	if idx < 0 || idx >= len(arr.Elems) {
		return 0, invalidOp("array index %d out of range (size %d)", idx, len(arr.Elems))
	}
	return idx, nil
}

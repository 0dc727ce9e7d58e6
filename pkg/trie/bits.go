package trie

// ExtractBits returns the numBits wide field found startBit bits below the most
// significant bit of value. The prefix is left aligned in its 32-bit container,
// so the high order bits are consumed first.
//
// startBit+numBits must not exceed 32.
func ExtractBits(value uint32, startBit, numBits int) uint32 {
	mask := uint32((uint64(1) << uint(numBits)) - 1)
	return (value >> uint(MaxLength-startBit-numBits)) & mask
}

// Mask returns the network mask of a prefix of the given length.
func Mask(length int) uint32 {
	if length <= 0 {
		return 0
	}
	return ^uint32(0) << uint(MaxLength-length)
}

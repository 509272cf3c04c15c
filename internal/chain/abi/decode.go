package abi

import (
	"fmt"
	"math/big"
)

// Reader decodes ABI-encoded return data word by word.
type Reader struct {
	data []byte
}

// NewReader wraps raw return data for decoding.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Words returns how many complete words the data holds.
func (r *Reader) Words() int {
	return len(r.data) / WordSize
}

// word returns the i-th 32-byte word.
func (r *Reader) word(i int) ([]byte, error) {
	off := i * WordSize
	if off < 0 || off+WordSize > len(r.data) {
		return nil, fmt.Errorf("word %d out of range (%d bytes)", i, len(r.data))
	}
	return r.data[off : off+WordSize], nil
}

// Uint decodes word i as an unsigned big integer.
func (r *Reader) Uint(i int) (*big.Int, error) {
	w, err := r.word(i)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(w), nil
}

// Uint64 decodes word i as a uint64, failing on overflow.
func (r *Reader) Uint64(i int) (uint64, error) {
	v, err := r.Uint(i)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, fmt.Errorf("word %d overflows uint64: %s", i, v)
	}
	return v.Uint64(), nil
}

// Address decodes word i as an address (right-aligned 20 bytes).
func (r *Reader) Address(i int) (Address, error) {
	var a Address
	w, err := r.word(i)
	if err != nil {
		return a, err
	}
	copy(a[:], w[WordSize-len(a):])
	return a, nil
}

// Bool decodes word i as a boolean.
func (r *Reader) Bool(i int) (bool, error) {
	w, err := r.word(i)
	if err != nil {
		return false, err
	}
	return w[WordSize-1] != 0, nil
}

// Bytes32String decodes word i as a fixed bytes32 holding a short
// NUL-padded string, the layout contracts use for display names.
func (r *Reader) Bytes32String(i int) (string, error) {
	w, err := r.word(i)
	if err != nil {
		return "", err
	}
	end := len(w)
	for end > 0 && w[end-1] == 0 {
		end--
	}
	return string(w[:end]), nil
}

// String decodes word i as an offset to a dynamic string.
func (r *Reader) String(i int) (string, error) {
	b, err := r.bytesAtOffsetWord(i)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// bytesAtOffsetWord follows the offset stored in word i to a length-
// prefixed byte payload.
func (r *Reader) bytesAtOffsetWord(i int) ([]byte, error) {
	offBig, err := r.Uint(i)
	if err != nil {
		return nil, err
	}
	if !offBig.IsInt64() {
		return nil, fmt.Errorf("word %d: offset overflows", i)
	}
	// len-WordSize keeps the comparisons overflow-free for hostile
	// offset words near the integer ceiling.
	off := int(offBig.Int64())
	if off < 0 || off > len(r.data)-WordSize {
		return nil, fmt.Errorf("word %d: offset %d out of range", i, off)
	}
	length := new(big.Int).SetBytes(r.data[off : off+WordSize])
	if !length.IsInt64() {
		return nil, fmt.Errorf("word %d: length overflows", i)
	}
	n := int(length.Int64())
	start := off + WordSize
	if n < 0 || n > len(r.data)-start {
		return nil, fmt.Errorf("word %d: payload of %d bytes out of range", i, n)
	}
	return r.data[start : start+n], nil
}

// Tuples decodes word i as an offset to a dynamic array whose elements
// are static tuples of wordsPerElem words each. It returns one Reader
// per element, positioned at the element's first word.
func (r *Reader) Tuples(i, wordsPerElem int) ([]*Reader, error) {
	offBig, err := r.Uint(i)
	if err != nil {
		return nil, err
	}
	if !offBig.IsInt64() {
		return nil, fmt.Errorf("word %d: offset overflows", i)
	}
	off := int(offBig.Int64())
	if off < 0 || off > len(r.data)-WordSize {
		return nil, fmt.Errorf("word %d: array offset %d out of range", i, off)
	}

	count := new(big.Int).SetBytes(r.data[off : off+WordSize])
	if !count.IsInt64() {
		return nil, fmt.Errorf("word %d: array length overflows", i)
	}
	// Cap the count by the room actually left in the data before any
	// arithmetic that could wrap, or a hostile count word reaches make.
	n := int(count.Int64())
	start := off + WordSize
	elemSize := wordsPerElem * WordSize
	if wordsPerElem <= 0 || n < 0 || n > (len(r.data)-start)/elemSize {
		return nil, fmt.Errorf("word %d: array of %d elements out of range", i, n)
	}

	out := make([]*Reader, n)
	for e := range out {
		base := start + e*elemSize
		out[e] = NewReader(r.data[base : base+elemSize])
	}
	return out, nil
}

package abi

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"golang.org/x/crypto/sha3"
)

// WordSize is the length of one ABI word in bytes.
const WordSize = 32

// Selector returns the 4-byte method selector for a canonical signature
// like "transfer(address,uint256)".
func Selector(signature string) [4]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(signature))
	var sel [4]byte
	copy(sel[:], h.Sum(nil)[:4])
	return sel
}

// Pack encodes a contract call: the method selector followed by the
// ABI-encoded arguments. Supported argument types: *big.Int (uint256),
// uint64, Address, bool, [32]byte / Hash (bytes32), string, and []byte
// (dynamic bytes).
func Pack(signature string, args ...any) ([]byte, error) {
	sel := Selector(signature)

	// Head/tail layout: static values go in the head, dynamic values put
	// an offset in the head and their payload in the tail.
	head := make([]byte, 0, len(args)*WordSize)
	var tail []byte

	type deferred struct {
		headOffset int
		payload    []byte
	}
	var dynamics []deferred

	for i, arg := range args {
		switch v := arg.(type) {
		case *big.Int:
			w, err := uintWord(v)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i, err)
			}
			head = append(head, w[:]...)
		case uint64:
			var w [WordSize]byte
			binary.BigEndian.PutUint64(w[WordSize-8:], v)
			head = append(head, w[:]...)
		case Address:
			var w [WordSize]byte
			copy(w[WordSize-len(v):], v[:])
			head = append(head, w[:]...)
		case [WordSize]byte:
			head = append(head, v[:]...)
		case Hash:
			head = append(head, v[:]...)
		case bool:
			var w [WordSize]byte
			if v {
				w[WordSize-1] = 1
			}
			head = append(head, w[:]...)
		case string:
			dynamics = append(dynamics, deferred{headOffset: len(head), payload: packBytes([]byte(v))})
			head = append(head, make([]byte, WordSize)...) // offset placeholder
		case []byte:
			dynamics = append(dynamics, deferred{headOffset: len(head), payload: packBytes(v)})
			head = append(head, make([]byte, WordSize)...)
		default:
			return nil, fmt.Errorf("argument %d: unsupported type %T", i, arg)
		}
	}

	for _, d := range dynamics {
		offset := uint64(len(head) + len(tail))
		binary.BigEndian.PutUint64(head[d.headOffset+WordSize-8:d.headOffset+WordSize], offset)
		tail = append(tail, d.payload...)
	}

	out := make([]byte, 0, 4+len(head)+len(tail))
	out = append(out, sel[:]...)
	out = append(out, head...)
	out = append(out, tail...)
	return out, nil
}

// packBytes encodes a dynamic byte string: length word plus the data
// padded to a word boundary.
func packBytes(b []byte) []byte {
	padded := (len(b) + WordSize - 1) / WordSize * WordSize
	out := make([]byte, WordSize+padded)
	binary.BigEndian.PutUint64(out[WordSize-8:WordSize], uint64(len(b)))
	copy(out[WordSize:], b)
	return out
}

// uintWord encodes a non-negative big.Int into one ABI word.
func uintWord(v *big.Int) ([WordSize]byte, error) {
	var w [WordSize]byte
	if v == nil {
		return w, fmt.Errorf("nil big.Int")
	}
	if v.Sign() < 0 {
		return w, fmt.Errorf("negative value %s for uint256", v)
	}
	if v.BitLen() > 256 {
		return w, fmt.Errorf("value %s overflows uint256", v)
	}
	v.FillBytes(w[:])
	return w, nil
}

// StringToBytes32 packs a short string into a NUL-padded fixed word,
// the layout contracts use for display names.
func StringToBytes32(s string) ([WordSize]byte, error) {
	var w [WordSize]byte
	if len(s) > WordSize {
		return w, fmt.Errorf("string %q longer than 32 bytes", s)
	}
	copy(w[:], s)
	return w, nil
}

// MaxUint256 is 2^256 - 1, the conventional unlimited token allowance.
func MaxUint256() *big.Int {
	max := new(big.Int).Lsh(big.NewInt(1), 256)
	return max.Sub(max, big.NewInt(1))
}

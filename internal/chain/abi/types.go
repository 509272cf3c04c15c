// Package abi encodes and decodes Ethereum contract call data: 4-byte
// keccak selectors plus 32-byte-word argument encoding. It covers the
// types the platform's contracts actually use (uint256, address, bool,
// string, and dynamic arrays of static tuples) rather than the full ABI
// grammar.
package abi

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Address is a 20-byte Ethereum account or contract address.
type Address [20]byte

// ZeroAddress is the all-zero address.
var ZeroAddress Address

// ParseAddress parses a 0x-prefixed 40-hex-digit address.
func ParseAddress(s string) (Address, error) {
	var a Address
	raw := strings.TrimPrefix(s, "0x")
	if len(raw) != 40 {
		return a, fmt.Errorf("invalid address length %d: %q", len(raw), s)
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return a, fmt.Errorf("invalid address %q: %w", s, err)
	}
	copy(a[:], b)
	return a, nil
}

// MustAddress parses an address or panics. For constants and tests.
func MustAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Hex returns the 0x-prefixed lowercase hex form.
func (a Address) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

// IsZero reports whether the address is all zeroes.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

func (a Address) String() string {
	return a.Hex()
}

// Short returns an abbreviated form like 0x1234…abcd for display.
func (a Address) Short() string {
	h := hex.EncodeToString(a[:])
	return "0x" + h[:4] + "…" + h[36:]
}

// Hash is a 32-byte value: transaction hashes, topics, storage words.
type Hash [32]byte

// ParseHash parses a 0x-prefixed 64-hex-digit hash.
func ParseHash(s string) (Hash, error) {
	var h Hash
	raw := strings.TrimPrefix(s, "0x")
	if len(raw) != 64 {
		return h, fmt.Errorf("invalid hash length %d: %q", len(raw), s)
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return h, fmt.Errorf("invalid hash %q: %w", s, err)
	}
	copy(h[:], b)
	return h, nil
}

// Hex returns the 0x-prefixed lowercase hex form.
func (h Hash) Hex() string {
	return "0x" + hex.EncodeToString(h[:])
}

// IsZero reports whether the hash is all zeroes.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

func (h Hash) String() string {
	return h.Hex()
}

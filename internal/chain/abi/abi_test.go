package abi

import (
	"bytes"
	"encoding/hex"
	"math/big"
	"testing"
)

func TestSelectorKnownVectors(t *testing.T) {
	tests := []struct {
		signature string
		want      string
	}{
		{"transfer(address,uint256)", "a9059cbb"},
		{"balanceOf(address)", "70a08231"},
		{"approve(address,uint256)", "095ea7b3"},
		{"allowance(address,address)", "dd62ed3e"},
	}

	for _, tt := range tests {
		t.Run(tt.signature, func(t *testing.T) {
			sel := Selector(tt.signature)
			if got := hex.EncodeToString(sel[:]); got != tt.want {
				t.Errorf("Selector(%q) = %s, want %s", tt.signature, got, tt.want)
			}
		})
	}
}

func TestPackStaticArgs(t *testing.T) {
	addr := MustAddress("0x1111111111111111111111111111111111111111")
	data, err := Pack("balanceOf(address)", addr)
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}

	if len(data) != 4+WordSize {
		t.Fatalf("Encoded length = %d, want %d", len(data), 4+WordSize)
	}
	if got := hex.EncodeToString(data[:4]); got != "70a08231" {
		t.Errorf("Selector = %s, want 70a08231", got)
	}
	// Address is right-aligned in its word
	if !bytes.Equal(data[4+12:4+32], addr[:]) {
		t.Errorf("Address word = %x", data[4:])
	}
	if !bytes.Equal(data[4:4+12], make([]byte, 12)) {
		t.Errorf("Address padding not zero: %x", data[4:4+12])
	}
}

func TestPackUint256(t *testing.T) {
	v, _ := new(big.Int).SetString("1000000000000000000", 10) // 1 ether
	data, err := Pack("deposit(uint256)", v)
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}

	r := NewReader(data[4:])
	got, err := r.Uint(0)
	if err != nil {
		t.Fatalf("Uint failed: %v", err)
	}
	if got.Cmp(v) != 0 {
		t.Errorf("Round trip = %s, want %s", got, v)
	}
}

func TestPackRejectsBadUints(t *testing.T) {
	if _, err := Pack("f(uint256)", big.NewInt(-1)); err == nil {
		t.Error("Negative value should be rejected")
	}
	over := new(big.Int).Lsh(big.NewInt(1), 256)
	if _, err := Pack("f(uint256)", over); err == nil {
		t.Error("Value over 2^256-1 should be rejected")
	}
	if _, err := Pack("f(uint256)", (*big.Int)(nil)); err == nil {
		t.Error("Nil big.Int should be rejected")
	}
}

func TestPackDynamicString(t *testing.T) {
	data, err := Pack("setName(string)", "castle")
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}

	// Head word holds offset 32, tail holds length 6 plus padded payload
	r := NewReader(data[4:])
	off, err := r.Uint64(0)
	if err != nil {
		t.Fatalf("Offset failed: %v", err)
	}
	if off != 32 {
		t.Errorf("Offset = %d, want 32", off)
	}

	got, err := r.String(0)
	if err != nil {
		t.Fatalf("String decode failed: %v", err)
	}
	if got != "castle" {
		t.Errorf("String = %q, want castle", got)
	}

	// Payload is padded to a full word
	if len(data) != 4+3*WordSize {
		t.Errorf("Encoded length = %d, want %d", len(data), 4+3*WordSize)
	}
}

func TestPackMixedStaticAndDynamic(t *testing.T) {
	addr := MustAddress("0x2222222222222222222222222222222222222222")
	data, err := Pack("register(address,string,uint256)", addr, "player one", big.NewInt(42))
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}

	r := NewReader(data[4:])

	gotAddr, err := r.Address(0)
	if err != nil || gotAddr != addr {
		t.Errorf("Address = %v (err %v), want %v", gotAddr, err, addr)
	}

	gotStr, err := r.String(1)
	if err != nil || gotStr != "player one" {
		t.Errorf("String = %q (err %v)", gotStr, err)
	}

	gotUint, err := r.Uint(2)
	if err != nil || gotUint.Int64() != 42 {
		t.Errorf("Uint = %v (err %v)", gotUint, err)
	}

	// Dynamic payload starts after the 3-word head
	off, _ := r.Uint64(1)
	if off != 96 {
		t.Errorf("String offset = %d, want 96", off)
	}
}

func TestBytes32StringRoundTrip(t *testing.T) {
	w, err := StringToBytes32("defender")
	if err != nil {
		t.Fatalf("StringToBytes32 failed: %v", err)
	}

	data, err := Pack("submit(bytes32)", w)
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}

	r := NewReader(data[4:])
	got, err := r.Bytes32String(0)
	if err != nil {
		t.Fatalf("Bytes32String failed: %v", err)
	}
	if got != "defender" {
		t.Errorf("Round trip = %q, want defender", got)
	}

	if _, err := StringToBytes32("this display name is far too long for one word"); err == nil {
		t.Error("Oversized string should be rejected")
	}
}

func TestReaderBoolAndBounds(t *testing.T) {
	data, err := Pack("f(bool,bool)", true, false)
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}

	r := NewReader(data[4:])
	v0, err := r.Bool(0)
	if err != nil || !v0 {
		t.Errorf("Bool(0) = %v (err %v), want true", v0, err)
	}
	v1, err := r.Bool(1)
	if err != nil || v1 {
		t.Errorf("Bool(1) = %v (err %v), want false", v1, err)
	}

	if _, err := r.Bool(2); err == nil {
		t.Error("Out-of-range word should fail")
	}
	if _, err := r.Uint(-1); err == nil {
		t.Error("Negative index should fail")
	}
}

func TestReaderTuples(t *testing.T) {
	// Hand-build a return payload: one offset word, then a 2-element
	// array of 3-word tuples (address, uint256, bool)
	addr1 := MustAddress("0x3333333333333333333333333333333333333333")
	addr2 := MustAddress("0x4444444444444444444444444444444444444444")

	var buf []byte
	appendWord := func(fill func(w []byte)) {
		w := make([]byte, WordSize)
		fill(w)
		buf = append(buf, w...)
	}

	appendWord(func(w []byte) { w[WordSize-1] = 32 }) // offset to array
	appendWord(func(w []byte) { w[WordSize-1] = 2 })  // element count
	appendWord(func(w []byte) { copy(w[12:], addr1[:]) })
	appendWord(func(w []byte) { big.NewInt(150).FillBytes(w) })
	appendWord(func(w []byte) { w[WordSize-1] = 1 })
	appendWord(func(w []byte) { copy(w[12:], addr2[:]) })
	appendWord(func(w []byte) { big.NewInt(90).FillBytes(w) })
	appendWord(func(w []byte) {})

	elems, err := NewReader(buf).Tuples(0, 3)
	if err != nil {
		t.Fatalf("Tuples failed: %v", err)
	}
	if len(elems) != 2 {
		t.Fatalf("Elements = %d, want 2", len(elems))
	}

	a, _ := elems[0].Address(0)
	score, _ := elems[0].Uint(1)
	flag, _ := elems[0].Bool(2)
	if a != addr1 || score.Int64() != 150 || !flag {
		t.Errorf("Element 0 = (%v, %v, %v)", a, score, flag)
	}

	a, _ = elems[1].Address(0)
	score, _ = elems[1].Uint(1)
	flag, _ = elems[1].Bool(2)
	if a != addr2 || score.Int64() != 90 || flag {
		t.Errorf("Element 1 = (%v, %v, %v)", a, score, flag)
	}
}

func TestReaderRejectsHostileOffsetWords(t *testing.T) {
	// A node under someone else's control can return arbitrary bytes;
	// offset words near the integer ceiling must come back as errors,
	// never index panics.
	appendWord := func(buf []byte, fill func(w []byte)) []byte {
		w := make([]byte, WordSize)
		fill(w)
		return append(buf, w...)
	}

	hugeOffsets := []*big.Int{
		new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 63), big.NewInt(1)), // 2^63-1
		new(big.Int).Lsh(big.NewInt(1), 63),                                  // overflows int64
		new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 63), big.NewInt(32)),
	}
	for _, off := range hugeOffsets {
		var buf []byte
		buf = appendWord(buf, func(w []byte) { off.FillBytes(w) })
		buf = appendWord(buf, func(w []byte) {})

		if _, err := NewReader(buf).String(0); err == nil {
			t.Errorf("String with offset %s should fail", off)
		}
		if _, err := NewReader(buf).Tuples(0, 5); err == nil {
			t.Errorf("Tuples with offset %s should fail", off)
		}
	}
}

func TestTuplesRejectsHostileCountWord(t *testing.T) {
	// Count word chosen so count*elemSize wraps around the integer range
	// and lands small: the reader must reject it before allocating.
	count := new(big.Int).Div(new(big.Int).Lsh(big.NewInt(1), 64), big.NewInt(160))
	count.Add(count, big.NewInt(1))

	appendWord := func(buf []byte, fill func(w []byte)) []byte {
		w := make([]byte, WordSize)
		fill(w)
		return append(buf, w...)
	}

	var buf []byte
	buf = appendWord(buf, func(w []byte) { w[WordSize-1] = 32 }) // offset to array
	buf = appendWord(buf, func(w []byte) { count.FillBytes(w) }) // hostile count
	buf = appendWord(buf, func(w []byte) {})

	if _, err := NewReader(buf).Tuples(0, 5); err == nil {
		t.Error("Oversized element count should fail")
	}

	// A merely-too-large honest count must fail the same way
	var buf2 []byte
	buf2 = appendWord(buf2, func(w []byte) { w[WordSize-1] = 32 })
	buf2 = appendWord(buf2, func(w []byte) { w[WordSize-1] = 3 }) // claims 3 elements
	buf2 = appendWord(buf2, func(w []byte) {})                   // room for none

	if _, err := NewReader(buf2).Tuples(0, 5); err == nil {
		t.Error("Count past the end of data should fail")
	}
}

func TestAddressParsing(t *testing.T) {
	addr, err := ParseAddress("0xAbCd000000000000000000000000000000001234")
	if err != nil {
		t.Fatalf("ParseAddress failed: %v", err)
	}
	if addr.Hex() != "0xabcd000000000000000000000000000000001234" {
		t.Errorf("Hex = %s", addr.Hex())
	}
	if addr.IsZero() {
		t.Error("Parsed address should not be zero")
	}
	if ZeroAddress.Hex() != "0x0000000000000000000000000000000000000000" {
		t.Errorf("Zero hex = %s", ZeroAddress.Hex())
	}

	if _, err := ParseAddress("0x1234"); err == nil {
		t.Error("Short address should fail")
	}
	if _, err := ParseAddress("0xzz34000000000000000000000000000000001234"); err == nil {
		t.Error("Non-hex address should fail")
	}
}

func TestMaxUint256(t *testing.T) {
	max := MaxUint256()
	if max.BitLen() != 256 {
		t.Errorf("BitLen = %d, want 256", max.BitLen())
	}
	if new(big.Int).Add(max, big.NewInt(1)).BitLen() != 257 {
		t.Error("MaxUint256 + 1 should need 257 bits")
	}
	// Must round-trip through the encoder
	if _, err := Pack("approve(address,uint256)", ZeroAddress, max); err != nil {
		t.Errorf("Pack with max allowance failed: %v", err)
	}
}

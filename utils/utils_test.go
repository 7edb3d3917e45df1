package utils

import (
	"bytes"
	"testing"
)

func TestConstantTime(t *testing.T) {
	a := []byte{1, 2, 3}
	b := []byte{1, 2, 3}
	c := []byte{1, 2, 4}

	if !ConstantTimeEqual(a, b) {
		t.Error("ConstantTimeEqual failed for equal slices")
	}
	if ConstantTimeEqual(a, c) {
		t.Error("ConstantTimeEqual passed for unequal slices")
	}
	if ConstantTimeEqual(a, a[:2]) {
		t.Error("ConstantTimeEqual passed for slices of different length")
	}

	res := ConstantTimeSelect(1, a, c)
	if !bytes.Equal(res, a) {
		t.Error("ConstantTimeSelect(1) failed")
	}
	res = ConstantTimeSelect(0, a, c)
	if !bytes.Equal(res, c) {
		t.Error("ConstantTimeSelect(0) failed")
	}
}

func TestSecureRandomBytes(t *testing.T) {
	b, err := SecureRandomBytes(32)
	if err != nil {
		t.Fatalf("SecureRandomBytes failed: %v", err)
	}
	if len(b) != 32 {
		t.Errorf("Expected 32 bytes, got %d", len(b))
	}

	b2, _ := SecureRandomBytes(32)
	if bytes.Equal(b, b2) {
		t.Error("SecureRandomBytes returned duplicate values")
	}
}

func TestZeroize(t *testing.T) {
	b := []byte{1, 2, 3}
	Zeroize(b)
	for _, v := range b {
		if v != 0 {
			t.Error("Zeroize failed")
		}
	}

	i := []int8{1, -1, 1}
	ZeroizeInt8(i)
	for _, v := range i {
		if v != 0 {
			t.Error("ZeroizeInt8 failed")
		}
	}

	u := []uint16{7, 8, 9}
	ZeroizeUint16(u)
	for _, v := range u {
		if v != 0 {
			t.Error("ZeroizeUint16 failed")
		}
	}
}

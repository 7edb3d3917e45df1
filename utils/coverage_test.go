package utils

import (
	"errors"
	"testing"
)

func TestSecureRandomBytes_Coverage(t *testing.T) {
	bytes, err := SecureRandomBytes(32)
	if err != nil {
		t.Fatal(err)
	}
	if len(bytes) != 32 {
		t.Errorf("expected 32 bytes, got %d", len(bytes))
	}
}

func TestSecureRandomBytes_Zero(t *testing.T) {
	bytes, err := SecureRandomBytes(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(bytes) != 0 {
		t.Error("expected empty slice")
	}
}

func TestSecureRandomBytes_RandError(t *testing.T) {
	old := RandReader
	RandReader = &errorReader{}
	defer func() { RandReader = old }()

	_, err := SecureRandomBytes(32)
	if err == nil {
		t.Error("expected error from rand failure")
	}
}

func TestConstantTimeSelect_LengthMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for mismatched lengths")
		}
	}()
	ConstantTimeSelect(1, []byte{1}, []byte{1, 2})
}

func TestLogger_Default(t *testing.T) {
	if Logger() == nil {
		t.Fatal("default logger should not be nil")
	}
}

type errorReader struct{}

func (e *errorReader) Read(p []byte) (n int, err error) {
	return 0, errors.New("simulated rand error")
}

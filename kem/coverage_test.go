package kem

import (
	"errors"
	"testing"

	round5 "github.com/BackendStack21/round5-go"
	"github.com/BackendStack21/round5-go/utils"
)

type errorReader struct{}

func (e *errorReader) Read(p []byte) (n int, err error) {
	return 0, errors.New("simulated rand error")
}

func withFailingRand(t *testing.T) {
	t.Helper()
	old := utils.RandReader
	utils.RandReader = &errorReader{}
	t.Cleanup(func() { utils.RandReader = old })
}

func TestGenerateKeyPair_RandError(t *testing.T) {
	k := newKEM(t, round5.R5ND1KEM0)
	withFailingRand(t)

	if _, err := k.GenerateKeyPair(); err == nil {
		t.Error("expected error from rand failure")
	}
}

func TestEncapsulate_RandError(t *testing.T) {
	k := newKEM(t, round5.R5ND1KEM0)
	kp, err := k.GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}
	withFailingRand(t)

	if _, err := k.Encapsulate(kp.PublicKey); err == nil {
		t.Error("expected error from rand failure")
	}
	if _, err := k.Encrypt(kp.PublicKey, []byte("msg")); err == nil {
		t.Error("expected error from rand failure")
	}
}

func TestAccessors_Coverage(t *testing.T) {
	k := newKEM(t, round5.R5ND3KEM0)
	if k.Params().Name != string(round5.R5ND3KEM0) {
		t.Errorf("unexpected params %s", k.Params().Name)
	}
	if k.SharedSecretSize() != 24 {
		t.Errorf("SharedSecretSize = %d", k.SharedSecretSize())
	}
}

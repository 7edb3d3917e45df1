package kem

import (
	"bytes"
	"errors"
	"testing"

	round5 "github.com/BackendStack21/round5-go"
	"github.com/BackendStack21/round5-go/core"
	"github.com/BackendStack21/round5-go/matrix"
	"github.com/BackendStack21/round5-go/utils"
)

func newKEM(t testing.TB, level round5.SecurityLevel) *KEM {
	t.Helper()
	k, err := NewDefault(level)
	if err != nil {
		t.Fatalf("NewDefault(%s) failed: %v", level, err)
	}
	return k
}

func TestKEM_RoundTrip(t *testing.T) {
	for _, level := range core.Levels() {
		level := level
		t.Run(string(level), func(t *testing.T) {
			k := newKEM(t, level)

			kp, err := k.GenerateKeyPair()
			if err != nil {
				t.Fatalf("GenerateKeyPair failed: %v", err)
			}
			if len(kp.PublicKey) != k.PublicKeySize() || len(kp.SecretKey) != k.SecretKeySize() {
				t.Fatalf("unexpected key sizes %d/%d", len(kp.PublicKey), len(kp.SecretKey))
			}

			for i := 0; i < 3; i++ {
				enc, err := k.Encapsulate(kp.PublicKey)
				if err != nil {
					t.Fatalf("Encapsulate failed: %v", err)
				}
				if len(enc.Ciphertext) != k.CiphertextSize() {
					t.Fatalf("ciphertext is %d bytes, want %d", len(enc.Ciphertext), k.CiphertextSize())
				}
				if len(enc.SharedSecret) != k.SharedSecretSize() {
					t.Fatalf("shared secret is %d bytes", len(enc.SharedSecret))
				}

				ss, err := k.Decapsulate(kp.SecretKey, enc.Ciphertext)
				if err != nil {
					t.Fatalf("Decapsulate failed: %v", err)
				}
				if !bytes.Equal(ss, enc.SharedSecret) {
					t.Fatal("shared secrets do not match")
				}
			}
		})
	}
}

func TestKEM_SecretKeyLayout(t *testing.T) {
	k := newKEM(t, round5.R5ND1KEM0)
	seed := make([]byte, 48)
	for i := range seed {
		seed[i] = byte(i)
	}
	kp, err := k.GenerateKeyPairFromSeed(seed)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(kp.SecretKey[:16], seed[16:32]) {
		t.Error("secret key must start with the secret seed")
	}
	if !bytes.Equal(kp.SecretKey[16:32], seed[32:48]) {
		t.Error("z must follow the secret seed")
	}
	if !bytes.Equal(kp.SecretKey[32:], kp.PublicKey) {
		t.Error("public key must end the secret key")
	}
	if !bytes.Equal(kp.PublicKey[:16], seed[:16]) {
		t.Error("public key must start with sigma")
	}

	again, _ := k.GenerateKeyPairFromSeed(seed)
	if !bytes.Equal(kp.PublicKey, again.PublicKey) || !bytes.Equal(kp.SecretKey, again.SecretKey) {
		t.Error("GenerateKeyPairFromSeed is not deterministic")
	}

	if _, err := k.GenerateKeyPairFromSeed(seed[:47]); !errors.Is(err, round5.ErrSizeMismatch) {
		t.Errorf("expected ErrSizeMismatch, got %v", err)
	}
}

func TestKEM_Deterministic(t *testing.T) {
	k := newKEM(t, round5.R5N1KEM1)
	kp, _ := k.GenerateKeyPair()
	m := bytes.Repeat([]byte{0x42}, 16)

	a, err := k.EncapsulateDeterministic(kp.PublicKey, m)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := k.EncapsulateDeterministic(kp.PublicKey, m)
	if !bytes.Equal(a.Ciphertext, b.Ciphertext) || !bytes.Equal(a.SharedSecret, b.SharedSecret) {
		t.Error("EncapsulateDeterministic is not deterministic")
	}

	kappa := 16
	c := a.Ciphertext[:len(a.Ciphertext)-kappa]
	if want := utils.HashWithTag(kappa, DomainConfirm, kappa, m, c); !bytes.Equal(want, a.Ciphertext[len(c):]) {
		t.Error("confirmation tag must be H_confirm(m || c)")
	}
	if want := utils.HashWithTag(kappa, DomainDerive, kappa, m, a.Ciphertext); !bytes.Equal(want, a.SharedSecret) {
		t.Error("shared secret must be H_derive(m || ct)")
	}

	if _, err := k.EncapsulateDeterministic(kp.PublicKey, m[:15]); !errors.Is(err, round5.ErrSizeMismatch) {
		t.Errorf("expected ErrSizeMismatch, got %v", err)
	}
}

func TestKEM_TamperedCiphertext(t *testing.T) {
	for _, level := range []round5.SecurityLevel{round5.R5ND1KEM0, round5.R5N1KEM2} {
		k := newKEM(t, level)
		kp, _ := k.GenerateKeyPair()
		enc, _ := k.Encapsulate(kp.PublicKey)
		kappa := k.Params().KappaBytes
		z := kp.SecretKey[kappa : 2*kappa]

		positions := []int{0, len(enc.Ciphertext) / 2, len(enc.Ciphertext) - kappa - 1, len(enc.Ciphertext) - 1}
		seen := map[string]bool{}
		for _, pos := range positions {
			tampered := append([]byte(nil), enc.Ciphertext...)
			tampered[pos] ^= 0x01

			ss, err := k.Decapsulate(kp.SecretKey, tampered)
			if err != nil {
				t.Fatalf("%s: Decapsulate must not fail on tampered ciphertext: %v", level, err)
			}
			if bytes.Equal(ss, enc.SharedSecret) {
				t.Fatalf("%s: tampered ciphertext at %d yielded the real secret", level, pos)
			}
			want := utils.HashWithTag(kappa, DomainDerive, kappa, z, tampered)
			if !bytes.Equal(ss, want) {
				t.Fatalf("%s: rejection must derive from z", level)
			}
			seen[string(ss)] = true
		}
		if len(seen) != len(positions) {
			t.Errorf("%s: rejection secrets are not distinct", level)
		}
	}
}

func TestKEM_WrongSecretKey(t *testing.T) {
	k := newKEM(t, round5.R5ND1KEM0)
	kp1, _ := k.GenerateKeyPair()
	kp2, _ := k.GenerateKeyPair()

	enc, _ := k.Encapsulate(kp1.PublicKey)
	ss, err := k.Decapsulate(kp2.SecretKey, enc.Ciphertext)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(ss, enc.SharedSecret) {
		t.Error("wrong key recovered the shared secret")
	}
}

func TestKEM_SizeErrors(t *testing.T) {
	k := newKEM(t, round5.R5ND1KEM0)
	kp, _ := k.GenerateKeyPair()
	enc, _ := k.Encapsulate(kp.PublicKey)

	cases := []struct {
		name string
		err  error
	}{
		{"short public key", func() error { _, err := k.Encapsulate(kp.PublicKey[1:]); return err }()},
		{"long public key", func() error { _, err := k.Encapsulate(append(kp.PublicKey, 0)); return err }()},
		{"short secret key", func() error { _, err := k.Decapsulate(kp.SecretKey[1:], enc.Ciphertext); return err }()},
		{"short ciphertext", func() error { _, err := k.Decapsulate(kp.SecretKey, enc.Ciphertext[1:]); return err }()},
		{"empty ciphertext", func() error { _, err := k.Decapsulate(kp.SecretKey, nil); return err }()},
	}
	for _, tc := range cases {
		if !errors.Is(tc.err, round5.ErrSizeMismatch) {
			t.Errorf("%s: expected ErrSizeMismatch, got %v", tc.name, tc.err)
		}
		if !errors.Is(tc.err, round5.ErrInvalidParameter) {
			t.Errorf("%s: expected ErrInvalidParameter, got %v", tc.name, tc.err)
		}
	}
}

func TestKEM_UninitializedFixedMatrix(t *testing.T) {
	params, _ := core.GetParams(round5.R5N1KEM1)
	k, err := New(params)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := k.GenerateKeyPair(); !errors.Is(err, round5.ErrUninitializedFixedMatrix) {
		t.Errorf("GenerateKeyPair: expected ErrUninitializedFixedMatrix, got %v", err)
	}
	if _, err := k.Encapsulate(make([]byte, k.PublicKeySize())); !errors.Is(err, round5.ErrUninitializedFixedMatrix) {
		t.Errorf("Encapsulate: expected ErrUninitializedFixedMatrix, got %v", err)
	}
	if _, err := k.Decapsulate(make([]byte, k.SecretKeySize()), make([]byte, k.CiphertextSize())); !errors.Is(err, round5.ErrUninitializedFixedMatrix) {
		t.Errorf("Decapsulate: expected ErrUninitializedFixedMatrix, got %v", err)
	}
	if _, err := k.FixedMatrix(); !errors.Is(err, round5.ErrUninitializedFixedMatrix) {
		t.Errorf("FixedMatrix: expected ErrUninitializedFixedMatrix, got %v", err)
	}
}

func TestKEM_GenerateFixedMatrix(t *testing.T) {
	params, _ := core.GetParams(round5.R5N1KEM1)
	k, _ := New(params)

	seed := bytes.Repeat([]byte{9}, 16)
	if err := k.GenerateFixedMatrix(seed); err != nil {
		t.Fatal(err)
	}
	if err := k.GenerateFixedMatrix(seed); err != nil {
		t.Errorf("repeated GenerateFixedMatrix must be a no-op: %v", err)
	}
	if err := k.GenerateFixedMatrix(make([]byte, 16)); !errors.Is(err, round5.ErrFixedMatrixConflict) {
		t.Errorf("expected ErrFixedMatrixConflict, got %v", err)
	}

	a, err := k.FixedMatrix()
	if err != nil {
		t.Fatal(err)
	}
	want, _ := matrix.GenerateRandom(seed, params)
	if len(a) != len(want) {
		t.Fatalf("fixed matrix has %d elements, want %d", len(a), len(want))
	}

	kp, err := k.GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}
	enc, _ := k.Encapsulate(kp.PublicKey)
	ss, _ := k.Decapsulate(kp.SecretKey, enc.Ciphertext)
	if !bytes.Equal(ss, enc.SharedSecret) {
		t.Error("round trip with custom fixed matrix failed")
	}

	// A context with a different fixed matrix cannot decapsulate.
	other := newKEM(t, round5.R5N1KEM1)
	ss2, err := other.Decapsulate(kp.SecretKey, enc.Ciphertext)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(ss2, enc.SharedSecret) {
		t.Error("decapsulation under a different fixed matrix must not succeed")
	}
}

func TestKEM_GenerateFixedMatrixWrongTau(t *testing.T) {
	k := newKEM(t, round5.R5ND1KEM0)
	if err := k.GenerateFixedMatrix(make([]byte, 16)); !errors.Is(err, round5.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestKEM_DefaultContextsInteroperate(t *testing.T) {
	a := newKEM(t, round5.R5N5KEM1)
	b := newKEM(t, round5.R5N5KEM1)

	kp, _ := a.GenerateKeyPair()
	enc, err := b.Encapsulate(kp.PublicKey)
	if err != nil {
		t.Fatal(err)
	}
	ss, _ := a.Decapsulate(kp.SecretKey, enc.Ciphertext)
	if !bytes.Equal(ss, enc.SharedSecret) {
		t.Error("default contexts must share the canonical fixed matrix")
	}
}

func TestNew_Invalid(t *testing.T) {
	params := core.R5ND1KEM0Params
	params.Tau = 4
	if _, err := New(params); !errors.Is(err, round5.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
	if _, err := NewDefault("nope"); !errors.Is(err, round5.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestKEM_ConcurrentUse(t *testing.T) {
	k := newKEM(t, round5.R5N1KEM1)
	kp, _ := k.GenerateKeyPair()

	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			enc, err := k.Encapsulate(kp.PublicKey)
			if err != nil {
				errs <- err
				return
			}
			ss, err := k.Decapsulate(kp.SecretKey, enc.Ciphertext)
			if err == nil && !bytes.Equal(ss, enc.SharedSecret) {
				err = errors.New("shared secret mismatch")
			}
			errs <- err
		}()
	}
	for i := 0; i < 8; i++ {
		if err := <-errs; err != nil {
			t.Error(err)
		}
	}
}

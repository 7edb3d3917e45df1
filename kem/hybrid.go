package kem

import (
	"crypto/cipher"
	"io"

	round5 "github.com/BackendStack21/round5-go"
	"github.com/BackendStack21/round5-go/utils"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/sha3"
)

// Encrypt encrypts plaintext to pk using KEM+DEM: a fresh encapsulation
// keys ChaCha20-Poly1305 through HKDF-SHA3-256, and the KEM ciphertext is
// bound to the AEAD as additional data.
func (k *KEM) Encrypt(pk, plaintext []byte) (*round5.EncryptedMessage, error) {
	if len(plaintext) > utils.MaxMessageSize {
		return nil, round5.Errorf("Encrypt", round5.ErrInvalidParameter, "plaintext exceeds %d bytes", utils.MaxMessageSize)
	}

	result, err := k.Encapsulate(pk)
	if err != nil {
		return nil, err
	}
	defer utils.Zeroize(result.SharedSecret)

	aead, err := newAEAD(result.SharedSecret)
	if err != nil {
		return nil, err
	}
	nonce, err := utils.SecureRandomBytes(aead.NonceSize())
	if err != nil {
		return nil, err
	}

	return &round5.EncryptedMessage{
		Ciphertext: result.Ciphertext,
		Encrypted:  aead.Seal(nil, nonce, plaintext, result.Ciphertext),
		Nonce:      nonce,
	}, nil
}

// Decrypt decrypts a message produced by Encrypt. A tampered KEM ciphertext
// decapsulates to an unrelated key, so every modification surfaces as
// round5.ErrAuthentication.
func (k *KEM) Decrypt(sk []byte, em *round5.EncryptedMessage) ([]byte, error) {
	if len(em.Nonce) != chacha20poly1305.NonceSize {
		return nil, round5.Errorf("Decrypt", round5.ErrSizeMismatch, "nonce must be %d bytes", chacha20poly1305.NonceSize)
	}
	if len(em.Encrypted) < chacha20poly1305.Overhead {
		return nil, round5.Errorf("Decrypt", round5.ErrSizeMismatch, "ciphertext too short")
	}

	sharedSecret, err := k.Decapsulate(sk, em.Ciphertext)
	if err != nil {
		return nil, err
	}
	defer utils.Zeroize(sharedSecret)

	aead, err := newAEAD(sharedSecret)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, em.Nonce, em.Encrypted, em.Ciphertext)
	if err != nil {
		return nil, &round5.Error{Op: "Decrypt", Err: round5.ErrAuthentication}
	}
	return plaintext, nil
}

func newAEAD(sharedSecret []byte) (cipher.AEAD, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	defer utils.Zeroize(key)
	if _, err := io.ReadFull(hkdf.New(sha3.New256, sharedSecret, nil, []byte(DomainEncKey)), key); err != nil {
		return nil, err
	}
	return chacha20poly1305.New(key)
}

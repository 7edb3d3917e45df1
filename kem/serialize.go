package kem

import (
	round5 "github.com/BackendStack21/round5-go"
	"github.com/BackendStack21/round5-go/utils"
	"golang.org/x/crypto/chacha20poly1305"
)

// SerializeEncryptedMessage encodes em as three little-endian u32
// length-prefixed fields: KEM ciphertext, nonce, AEAD output.
func SerializeEncryptedMessage(em *round5.EncryptedMessage) []byte {
	out := make([]byte, 12+len(em.Ciphertext)+len(em.Nonce)+len(em.Encrypted))
	offset := 0
	for _, field := range [][]byte{em.Ciphertext, em.Nonce, em.Encrypted} {
		utils.U32ToLE(out[offset:], uint32(len(field)))
		offset += 4
		offset += copy(out[offset:], field)
	}
	return out
}

// DeserializeEncryptedMessage decodes the output of
// SerializeEncryptedMessage. Field lengths are bounded before allocation
// and trailing bytes are rejected.
func DeserializeEncryptedMessage(data []byte) (*round5.EncryptedMessage, error) {
	limits := []int{
		utils.MaxPayloadLength,
		chacha20poly1305.NonceSizeX,
		utils.MaxMessageSize + chacha20poly1305.Overhead,
	}
	fields := make([][]byte, len(limits))

	offset := 0
	for i, limit := range limits {
		length, next, err := utils.SafeReadLength(data, offset, limit)
		if err != nil {
			return nil, round5.Errorf("DeserializeEncryptedMessage", round5.ErrInvalidParameter, "field %d: %v", i, err)
		}
		if err := utils.ValidateSliceAccess(data, next, length); err != nil {
			return nil, round5.Errorf("DeserializeEncryptedMessage", round5.ErrInvalidParameter, "field %d: %v", i, err)
		}
		fields[i] = append([]byte(nil), data[next:next+length]...)
		offset = next + length
	}
	if offset != len(data) {
		return nil, round5.Errorf("DeserializeEncryptedMessage", round5.ErrInvalidParameter, "%d trailing bytes", len(data)-offset)
	}

	return &round5.EncryptedMessage{
		Ciphertext: fields[0],
		Nonce:      fields[1],
		Encrypted:  fields[2],
	}, nil
}

// Package round5 implements a Round5-style post-quantum key encapsulation
// mechanism built on a learning-with-rounding public-key encryption primitive.
// This package holds the types shared by the sub-packages.
package round5

// Version of the round5 Go implementation.
const Version = "0.3.0"

// API summary:
//
// Key Encapsulation (KEM):
//   - kem.NewDefault(level) - Context for a shipped parameter set
//   - kem.New(params) - Context for custom parameters
//   - (*kem.KEM).GenerateFixedMatrix(seed) - One-time fixed matrix for tau = 1
//   - (*kem.KEM).GenerateKeyPair() - Generate a key pair
//   - (*kem.KEM).Encapsulate(pk) - Generate shared secret and ciphertext
//   - (*kem.KEM).Decapsulate(sk, ct) - Recover shared secret from ciphertext
//   - (*kem.KEM).Encrypt(pk, plaintext) - Hybrid encryption of a message
//   - (*kem.KEM).Decrypt(sk, encrypted) - Hybrid decryption
//   - (*kem.KEM).Scheme() - circl kem.Scheme view of the context
//
// Matrix generation:
//   - matrix.GenerateRandom(seed, params) - Fresh public matrix from a seed
//   - matrix.Fixed - One-time fixed matrix cell
//
// Parameters:
//   - core.GetParams(level) - Get parameters for a named set
//   - core.LoadParamsFile(path) - Load parameters from YAML

package round5

// SecurityLevel names a shipped parameter set.
type SecurityLevel string

const (
	// R5ND1KEM0 is the 128-bit ring variant (tau = 0).
	R5ND1KEM0 SecurityLevel = "R5ND_1KEM_0d"
	// R5ND3KEM0 is the 192-bit ring variant (tau = 0).
	R5ND3KEM0 SecurityLevel = "R5ND_3KEM_0d"
	// R5ND5KEM0 is the 256-bit ring variant (tau = 0).
	R5ND5KEM0 SecurityLevel = "R5ND_5KEM_0d"
	// R5N1KEM1 is the 128-bit non-ring variant using the fixed matrix (tau = 1).
	R5N1KEM1 SecurityLevel = "R5N1_1KEM_1d"
	// R5N1KEM2 is the 128-bit non-ring variant using a length-q table (tau = 2).
	R5N1KEM2 SecurityLevel = "R5N1_1KEM_2d"
	// R5N5KEM1 is the 256-bit non-ring variant using the fixed matrix (tau = 1).
	R5N5KEM1 SecurityLevel = "R5N1_5KEM_1d"
)

// Matrix generation modes.
const (
	TauRandom    = 0 // fresh d*k matrix per key
	TauFixed     = 1 // process-lifetime fixed matrix, rows permuted per key
	TauPermTable = 2 // fresh length-q table, rows are windows into it
)

// =============================================================================
// Parameter Types
// =============================================================================

// Parameters is the immutable description of one instantiation.
// D = K*N; N = 1 selects the non-ring variant.
type Parameters struct {
	Name       string `json:"name" yaml:"name"`
	D          int    `json:"d" yaml:"d"`                     // Total dimension
	N          int    `json:"n" yaml:"n"`                     // Ring degree
	K          int    `json:"k" yaml:"k"`                     // Rank, D/N
	H          int    `json:"h" yaml:"h"`                     // Secret Hamming weight
	Q          int    `json:"q" yaml:"q"`                     // Matrix modulus
	P          int    `json:"p" yaml:"p"`                     // Rounding modulus
	T          int    `json:"t" yaml:"t"`                     // Ciphertext compression modulus
	B          int    `json:"b" yaml:"b"`                     // Bits per message symbol
	NBar       int    `json:"n_bar" yaml:"n_bar"`             // Secret columns in keygen
	MBar       int    `json:"m_bar" yaml:"m_bar"`             // Secret columns in encryption
	KappaBytes int    `json:"kappa_bytes" yaml:"kappa_bytes"` // Seed / secret length
	Tau        int    `json:"tau" yaml:"tau"`                 // Matrix generation mode
}

// =============================================================================
// KEM Types
// =============================================================================

// KeyPair holds the encoded KEM keys.
// SecretKey is the CPA secret key, the implicit-rejection value z and a copy
// of PublicKey, in that order.
type KeyPair struct {
	PublicKey []byte
	SecretKey []byte
}

// EncapsulationResult contains the result of KEM encapsulation.
type EncapsulationResult struct {
	SharedSecret []byte
	Ciphertext   []byte // CPA ciphertext followed by kappa_bytes of confirmation
}

// EncryptedMessage contains a hybrid-encrypted message.
type EncryptedMessage struct {
	Ciphertext []byte // KEM ciphertext
	Encrypted  []byte // AEAD ciphertext and tag
	Nonce      []byte
}

package round5

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter indicates an unsupported parameter, mode or size.
	ErrInvalidParameter = errors.New("round5: invalid parameter")

	// ErrSizeMismatch indicates a key or ciphertext of the wrong length.
	ErrSizeMismatch = fmt.Errorf("%w: size mismatch", ErrInvalidParameter)

	// ErrUninitializedFixedMatrix indicates a tau = 1 operation ran before
	// the fixed matrix was generated.
	ErrUninitializedFixedMatrix = errors.New("round5: fixed matrix not initialized")

	// ErrFixedMatrixConflict indicates an attempt to re-initialize the fixed
	// matrix with a different seed or shape.
	ErrFixedMatrixConflict = errors.New("round5: fixed matrix already initialized with a different seed")

	// ErrAuthentication indicates hybrid decryption failed authentication.
	ErrAuthentication = errors.New("round5: authentication failed")
)

// Error wraps an underlying error with the operation that failed.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("round5.%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf builds an *Error for op, wrapping err with extra context.
func Errorf(op string, err error, format string, args ...interface{}) error {
	return &Error{
		Op:  op,
		Err: fmt.Errorf("%w: %s", err, fmt.Sprintf(format, args...)),
	}
}

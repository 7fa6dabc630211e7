package encryption

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrDecryption  = errors.New("decryption failed")
	ErrEmptySecret = errors.New("secret must not be empty")
)

// DecryptionError is returned for a wrong secret or a corrupted ciphertext.
// It matches ErrDecryption with errors.Is.
type DecryptionError struct {
	Reason string
	Err    error
}

func (e *DecryptionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v: %s: %v", ErrDecryption, e.Reason, e.Err)
	}
	return fmt.Sprintf("%v: %s", ErrDecryption, e.Reason)
}

func (e *DecryptionError) Is(target error) bool {
	return target == ErrDecryption
}

func (e *DecryptionError) Unwrap() error { return e.Err }

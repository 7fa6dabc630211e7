package offchainconfig

import (
	"encoding/hex"
	"fmt"

	"github.com/pkg/errors"
)

var ErrMalformed = errors.New("malformed offchain config bytes")

// EncodingError reports a single invariant violation of the config model.
// Validation aggregates them with multierr; use multierr.Errors to list them.
type EncodingError struct {
	Field  string
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("invalid offchain config: %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...interface{}) error {
	return &EncodingError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func hexString(b []byte) string {
	return hex.EncodeToString(b)
}

package message

import (
	"fmt"

	"github.com/c360/msgbridge/errors"
)

// TypeMismatchError reports an extraction or navigation against the wrong arm.
type TypeMismatchError struct {
	Want string
	Have Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: want %s, have %s", e.Want, e.Have)
}

// Unwrap returns errors.ErrTypeMismatch.
func (e *TypeMismatchError) Unwrap() error {
	return errors.ErrTypeMismatch
}

// KeyNotFoundError reports a Get on a Map lacking the key.
type KeyNotFoundError struct {
	Key Key
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("key not found: %s", e.Key)
}

// Unwrap returns errors.ErrKeyNotFound.
func (e *KeyNotFoundError) Unwrap() error {
	return errors.ErrKeyNotFound
}

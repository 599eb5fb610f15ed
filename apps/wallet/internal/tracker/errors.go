package tracker

import (
	"errors"
	"fmt"
)

// ErrNotFound reports a wallet or transfer that does not exist. It is a
// non-fatal condition, not a failure.
var ErrNotFound = errors.New("not found")

// ValidationError reports a malformed request rejected before any external call
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// GatewayError reports a chain RPC failure: broadcast rejected, node
// unreachable, or an undecodable transfer payload.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("chain gateway %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// StoreError reports a record store failure
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("record store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

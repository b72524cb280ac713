// Package repository is the adapter over the hosted document store. Every
// operation either succeeds or fails with a *RemoteError carrying a
// provider-style code, so callers can tell connectivity failures apart from
// data errors without inspecting driver internals.
package repository

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"gorm.io/gorm"
)

// Code is the provider-style error class.
type Code string

const (
	// CodeUnavailable — the store is unreachable. Connectivity class.
	CodeUnavailable Code = "unavailable"
	// CodeFailedPrecondition — the store refused the operation in a way the
	// caller must treat as connectivity (e.g. a required index is missing).
	CodeFailedPrecondition Code = "failed-precondition"
	// CodeNotFound — the addressed document does not exist.
	CodeNotFound Code = "not-found"
	// CodeInternal — anything else.
	CodeInternal Code = "internal"
)

// RemoteError wraps a store failure with its class and originating operation.
type RemoteError struct {
	Code Code
	Op   string
	Err  error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remoto: %s: %s: %v", e.Op, e.Code, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// ErrRolInvalido is returned before any store call when a role outside the
// enumerated set is submitted. Data error, never connectivity.
var ErrRolInvalido = errors.New("rol inválido")

// EsConectividad reports whether err belongs to the connectivity class —
// the class that triggers local-cache fallbacks and compensation instead of
// plain failure.
func EsConectividad(err error) bool {
	var re *RemoteError
	if !errors.As(err, &re) {
		return false
	}
	return re.Code == CodeUnavailable || re.Code == CodeFailedPrecondition
}

// EsNoEncontrado reports the not-found class, which is distinct from error
// for profile reads.
func EsNoEncontrado(err error) bool {
	var re *RemoteError
	if !errors.As(err, &re) {
		return false
	}
	return re.Code == CodeNotFound
}

// envolver classifies a raw gorm/driver error. nil passes through.
func envolver(op string, err error) error {
	if err == nil {
		return nil
	}
	return &RemoteError{Code: clasificar(err), Op: op, Err: err}
}

func clasificar(err error) Code {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return CodeNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return CodeUnavailable
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return CodeUnavailable
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "broken pipe"),
		strings.Contains(msg, "bad connection"):
		return CodeUnavailable
	case esFaltaIndice(err):
		return CodeFailedPrecondition
	}
	return CodeInternal
}

// esFaltaIndice detects the missing-index signature that the ordered queries
// degrade on. Postgres reports SQLSTATE 42704 (undefined object) or 42P01
// when the backing index/relation is absent.
func esFaltaIndice(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE 42704") ||
		strings.Contains(msg, "SQLSTATE 42P01") ||
		strings.Contains(msg, "requires an index")
}

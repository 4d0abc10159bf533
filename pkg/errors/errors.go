// Package errors provides structured error handling for the virtualization
// engine.
//
// Two classes of failure exist. Contract violations (non-contiguous
// placement, double focus, removing an index that does not resolve) are
// programmer errors: they are reported through the global handler and then
// panic with a *ContractError. Expected conditions, such as an index that no
// longer resolves after the data source mutated, are returned as ok=false or
// as a package-level sentinel error and handled by the caller.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindContract indicates a violated invariant.
	KindContract
	// KindStale indicates an index or handle that no longer resolves.
	KindStale
	// KindHost indicates a failure inside the generator host.
	KindHost
	// KindConfig indicates an invalid configuration or scenario file.
	KindConfig
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindContract:
		return "contract"
	case KindStale:
		return "stale"
	case KindHost:
		return "host"
	case KindConfig:
		return "config"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// VirtualizationError represents a structured error raised by the engine.
type VirtualizationError struct {
	// Op is the operation that failed (e.g., "registry.PlaceInValidElements").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Index is the data index involved, or -1.
	Index int
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *VirtualizationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s [%s] index=%d: %v", e.Op, e.Kind, e.Index, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *VirtualizationError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "generation.Measure").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ContractError is the panic value used when an invariant is violated.
type ContractError struct {
	// Op is the operation whose precondition failed.
	Op string
	// Message describes the violation.
	Message string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("contract violation in %s: %s", e.Op, e.Message)
}

// HostError wraps a failure returned by the generator host.
type HostError struct {
	// Call is the host method that failed.
	Call string
	// Index is the data index the call was made for.
	Index int
	// Err is the error returned by the host.
	Err error
}

func (e *HostError) Error() string {
	return fmt.Sprintf("host %s(%d): %v", e.Call, e.Index, e.Err)
}

func (e *HostError) Unwrap() error {
	return e.Err
}

// ErrorHandler receives errors reported by the engine.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *VirtualizationError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}

// Package errors provides structured error handling for the Veld runtime.
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
	// KindBuild indicates a failure while constructing a component tree.
	KindBuild
	// KindBinding indicates a failure while evaluating a binding expression.
	KindBinding
	// KindDispatch indicates an event dispatch failure.
	KindDispatch
	// KindConfig indicates a configuration error.
	KindConfig
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindBuild:
		return "build"
	case KindBinding:
		return "binding"
	case KindDispatch:
		return "dispatch"
	case KindConfig:
		return "config"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// VeldError represents a structured error in the Veld runtime.
type VeldError struct {
	// Op is the operation that failed (e.g., "runtime.BuildSession").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Node identifies the offending description node, if applicable.
	Node string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *VeldError) Error() string {
	if e.Node != "" {
		return fmt.Sprintf("%s [%s] node=%s: %v", e.Op, e.Kind, e.Node, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *VeldError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "property.Graph.Read").
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

// BuildError represents a fatal failure during component tree construction.
// No partial tree is returned alongside a BuildError.
type BuildError struct {
	// Component is the name of the component definition being instantiated.
	Component string
	// Node identifies the offending node within the description.
	Node string
	// Property is the offending property name, if the failure is
	// attributable to a single property.
	Property string
	// Err is the underlying error.
	Err error
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *BuildError) Error() string {
	switch {
	case e.Property != "":
		return fmt.Sprintf("build of %s failed at node %s, property %q: %v", e.Component, e.Node, e.Property, e.Err)
	case e.Node != "":
		return fmt.Sprintf("build of %s failed at node %s: %v", e.Component, e.Node, e.Err)
	default:
		return fmt.Sprintf("build of %s failed: %v", e.Component, e.Err)
	}
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// BindingError represents a recoverable failure while evaluating a binding.
// The runtime substitutes the cell's fallback value and continues.
type BindingError struct {
	// Cell is the debug name of the cell whose binding failed.
	Cell string
	// Recovered is the panic value (nil for regular errors).
	Recovered any
	// Err is the underlying error (nil for panics).
	Err error
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *BindingError) Error() string {
	if e.Recovered != nil {
		return fmt.Sprintf("panic evaluating binding of %s: %v", e.Cell, e.Recovered)
	}
	if e.Err != nil {
		return fmt.Sprintf("error evaluating binding of %s: %v", e.Cell, e.Err)
	}
	return fmt.Sprintf("unknown error evaluating binding of %s", e.Cell)
}

func (e *BindingError) Unwrap() error {
	return e.Err
}

// ErrorHandler receives errors reported by the Veld runtime.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *VeldError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
	// HandleBindingError is called when a binding evaluation fails and the
	// runtime substitutes the fallback value.
	HandleBindingError(err *BindingError)
}

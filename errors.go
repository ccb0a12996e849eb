package grove

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInjectorContextMissing is returned when a required dependency is read
	// on an object that was not constructed by any container.
	ErrInjectorContextMissing = errors.New("injector not found")

	// ErrServiceUnresolved is returned when a required dependency resolves to
	// nothing after walking the full ancestor chain.
	ErrServiceUnresolved = errors.New("service not resolved")

	// ErrBindingChainExhausted is returned by [Get] when no container in the
	// chain binds the identifier and the identifier has no default.
	ErrBindingChainExhausted = errors.New("cannot resolve service")

	// ErrCyclicResolution is returned when an identifier is requested again
	// from the same container while its instance is still being constructed.
	// The error message includes the construction chain.
	ErrCyclicResolution = errors.New("cyclic dependency detected")

	// ErrUseAfterDispose is returned by any operation on a disposed container.
	ErrUseAfterDispose = errors.New("container already disposed")

	// ErrConstructorFailed wraps an error returned by a [Constructor].
	ErrConstructorFailed = errors.New("constructor failed")

	// ErrNilConstructor is returned when [Provide] is given a nil constructor.
	ErrNilConstructor = errors.New("constructor cannot be nil")

	// ErrNilIdentifier is returned when an operation is given a nil identifier.
	ErrNilIdentifier = errors.New("identifier cannot be nil")

	errNilInstance = errors.New("constructor returned nil")
)

// Code is a machine-readable classification of a [ResolutionError].
type Code string

const (
	CodeInjectorContextMissing Code = "INJECTOR_CONTEXT_MISSING"
	CodeServiceUnresolved      Code = "SERVICE_UNRESOLVED"
	CodeBindingChainExhausted  Code = "BINDING_CHAIN_EXHAUSTED"
	CodeCyclicResolution       Code = "CYCLIC_RESOLUTION"
	CodeUseAfterDispose        Code = "USE_AFTER_DISPOSE"
	CodeConstructorFailed      Code = "CONSTRUCTOR_FAILED"
)

var sentinels = map[Code]error{
	CodeInjectorContextMissing: ErrInjectorContextMissing,
	CodeServiceUnresolved:      ErrServiceUnresolved,
	CodeBindingChainExhausted:  ErrBindingChainExhausted,
	CodeCyclicResolution:       ErrCyclicResolution,
	CodeUseAfterDispose:        ErrUseAfterDispose,
	CodeConstructorFailed:      ErrConstructorFailed,
}

// ResolutionError describes a failed registration or resolution. It matches
// the sentinel error for its Code with [errors.Is], so callers can write
//
//	if errors.Is(err, grove.ErrServiceUnresolved) { ... }
//
// and still recover the service name with [errors.As].
type ResolutionError struct {
	Code Code
	// Service is the identifier name, echoed verbatim.
	Service string
	// Scope is the ID of the container the operation ran against.
	Scope string
	// Chain lists the identifiers under construction, outermost first. Only
	// set for CodeCyclicResolution.
	Chain []string
	Cause error
}

func (e *ResolutionError) Error() string {
	var b strings.Builder
	if s, ok := sentinels[e.Code]; ok {
		b.WriteString(s.Error())
	} else {
		b.WriteString(string(e.Code))
	}
	switch {
	case len(e.Chain) > 0:
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Chain, " -> "))
	case e.Service != "":
		fmt.Fprintf(&b, ": %s", e.Service)
	}
	if e.Scope != "" {
		fmt.Fprintf(&b, " (scope %s)", e.Scope)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Is reports whether target is the sentinel error for e.Code.
func (e *ResolutionError) Is(target error) bool {
	return sentinels[e.Code] == target
}

func (e *ResolutionError) Unwrap() error { return e.Cause }

func newError(code Code, service ServiceID, c *Container) *ResolutionError {
	e := &ResolutionError{Code: code}
	if service != nil {
		e.Service = service.Name()
	}
	if c != nil {
		e.Scope = c.id
	}
	return e
}

package dynamo

import "errors"

// Domain errors for scene configuration.
var (
	// ErrInvalidState indicates a body with NaN or Inf components.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrUnknownParam indicates a parameter name the scene does not expose.
	ErrUnknownParam = errors.New("dynamo: unknown parameter")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrUnknownKind indicates an animation kind with no registered scene.
	ErrUnknownKind = errors.New("dynamo: unknown animation kind")
)

// ParamError wraps an error with the parameter that caused it.
type ParamError struct {
	Kind    Kind
	Name    string
	Value   float64
	Wrapped error
}

func (e *ParamError) Error() string {
	return e.Kind.String() + " " + e.Name + ": " + e.Wrapped.Error()
}

func (e *ParamError) Unwrap() error {
	return e.Wrapped
}

// UnknownParam builds the error every SetParam returns for a bad name.
func UnknownParam(k Kind, name string) error {
	return &ParamError{Kind: k, Name: name, Wrapped: ErrUnknownParam}
}

// OutOfBounds builds the error for a rejected value.
func OutOfBounds(k Kind, name string, v float64) error {
	return &ParamError{Kind: k, Name: name, Value: v, Wrapped: ErrParameterBounds}
}

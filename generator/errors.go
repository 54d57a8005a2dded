package generator

import (
	"errors"
	"fmt"

	"seo_strategist/usage"
)

// ErrUsageLimitReached is returned when a client has used all free generations for an operation.
var ErrUsageLimitReached = usage.ErrLimitReached

// ConfigurationError reports a missing or invalid startup setting.
type ConfigurationError struct {
	Setting string
	Msg     string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Setting, e.Msg)
}

// RemoteCallError wraps a transport failure talking to the model (network, auth, quota).
type RemoteCallError struct {
	Op  Operation
	Err error
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("%s: model call failed: %v", e.Op, e.Err)
}

func (e *RemoteCallError) Unwrap() error {
	return e.Err
}

// ParseError means the model output could not be read as JSON. Raw is the text exactly as
// the model returned it, before any fence stripping.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("The AI returned a response that could not be parsed as JSON. Content: \"%s\"", e.Raw)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError is a contract violation: an empty required input before dispatch, or model
// output that parsed but breaks a shape contract (cardinality, enum, range).
type ValidationError struct {
	Entity string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid %s: %s", e.Entity, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s %s", e.Entity, e.Field, e.Reason)
}

func invalid(entity, field, format string, args ...any) error {
	return &ValidationError{Entity: entity, Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ContextError is returned when a brief is requested before any strategy run established a region.
type ContextError struct {
	Msg string
}

func (e *ContextError) Error() string {
	return e.Msg
}

func IsRemoteCall(err error) bool {
	var target *RemoteCallError
	return errors.As(err, &target)
}

func IsParse(err error) bool {
	var target *ParseError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsContext(err error) bool {
	var target *ContextError
	return errors.As(err, &target)
}

func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// UserMessage turns a run failure into the single banner string shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var remote *RemoteCallError
	if errors.As(err, &remote) && remote.Err != nil {
		return remote.Err.Error()
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "An unknown error occurred."
}

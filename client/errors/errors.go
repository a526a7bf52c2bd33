// Package errors defines the error kinds returned by the hello-near client.
package errors

import (
	"context"
	"errors"
	"fmt"

	sdkerrors "cosmossdk.io/errors"
)

// Codespace is the cosmossdk.io/errors codespace all client kinds are registered under.
const Codespace = "near_client"

// Error codes for the client. Codes are stable and may be used by callers
// that serialize errors across process boundaries.
const (
	CodeConfig uint32 = 1001 + iota
	CodeInvalidRequest
)

const (
	CodeCredential uint32 = 2001 + iota
	CodeSigning
	CodeSerialization
)

const (
	CodeTransport uint32 = 3001 + iota
	CodeRPCProtocol
)

const (
	CodeRejectedBeforeExecution uint32 = 4001 + iota
	CodeExecutionFailure
)

var (
	// ErrConfig is returned when the embedded network document is malformed or lacks a network.
	ErrConfig = sdkerrors.Register(Codespace, CodeConfig, "invalid network configuration")
	// ErrInvalidRequest is returned for caller input that fails validation before any stage runs.
	ErrInvalidRequest = sdkerrors.Register(Codespace, CodeInvalidRequest, "invalid request parameters")

	// ErrCredential covers missing or invalid key material and keys the node does not know.
	ErrCredential = sdkerrors.Register(Codespace, CodeCredential, "invalid credential")
	// ErrSigning is returned when a signature cannot be produced or fails self-verification.
	ErrSigning = sdkerrors.Register(Codespace, CodeSigning, "transaction signing failed")
	// ErrSerialization is returned when a record cannot be canonically encoded.
	ErrSerialization = sdkerrors.Register(Codespace, CodeSerialization, "transaction serialization failed")

	// ErrTransport covers connection failures, timeouts and cancellation.
	ErrTransport = sdkerrors.Register(Codespace, CodeTransport, "rpc transport failure")
	// ErrRPCProtocol is a structured rejection returned by the node.
	ErrRPCProtocol = sdkerrors.Register(Codespace, CodeRPCProtocol, "rpc request rejected by node")

	// ErrRejectedBeforeExecution means the node refused to apply the transaction (stale nonce,
	// insufficient balance, malformed action). The whole pipeline may be re-run.
	ErrRejectedBeforeExecution = sdkerrors.Register(Codespace, CodeRejectedBeforeExecution, "transaction rejected before execution")
	// ErrExecutionFailure means the target method ran and failed.
	ErrExecutionFailure = sdkerrors.Register(Codespace, CodeExecutionFailure, "transaction execution failed")
)

// Stage names the pipeline step that produced an error.
type Stage string

const (
	StageConfig     Stage = "config"
	StageCredential Stage = "credential"
	StageAccessKey  Stage = "access_key"
	StageBuild      Stage = "build"
	StageSign       Stage = "sign"
	StageBroadcast  Stage = "broadcast"
	StageView       Stage = "view"
	StageRPC        Stage = "rpc"
)

// StageError is the single error value a failed pipeline returns. errors.Is
// matches both its Kind and anything in the Cause chain.
type StageError struct {
	Stage Stage
	Kind  *sdkerrors.Error
	Cause error
}

// Error implements error.
func (e *StageError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Stage, e.Kind.Error())
	}
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Kind.Error(), e.Cause)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *StageError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// New returns a StageError with a formatted cause.
func New(stage Stage, kind *sdkerrors.Error, format string, args ...any) error {
	return &StageError{Stage: stage, Kind: kind, Cause: fmt.Errorf(format, args...)}
}

// Wrap returns a StageError wrapping err, or nil if err is nil.
func Wrap(stage Stage, kind *sdkerrors.Error, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Kind: kind, Cause: err}
}

// FromContext converts a context error into a transport error, keeping
// context.Canceled or context.DeadlineExceeded reachable through errors.Is.
func FromContext(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Kind: ErrTransport, Cause: err}
}

// WithStage relabels err with stage, keeping its kind and cause. Errors that
// are not a StageError are wrapped with fallback as their kind.
func WithStage(stage Stage, fallback *sdkerrors.Error, err error) error {
	if err == nil {
		return nil
	}
	var se *StageError
	if errors.As(err, &se) {
		return &StageError{Stage: stage, Kind: se.Kind, Cause: se.Cause}
	}
	return &StageError{Stage: stage, Kind: fallback, Cause: err}
}

// StageOf returns the stage of the outermost StageError in err's chain.
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) && se.Stage != "" {
		return se.Stage, true
	}
	return "", false
}

// KindOf returns the registered kind of the outermost StageError in err's chain.
func KindOf(err error) *sdkerrors.Error {
	var se *StageError
	if errors.As(err, &se) {
		return se.Kind
	}
	var sdkErr *sdkerrors.Error
	if errors.As(err, &sdkErr) {
		return sdkErr
	}
	return nil
}

// GetErrorCode extracts the registered code from err, or 0 if it carries none.
func GetErrorCode(err error) uint32 {
	if kind := KindOf(err); kind != nil {
		return kind.ABCICode()
	}
	return 0
}

// IsConfigError reports whether err is a configuration error.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfig)
}

// IsCredentialError reports whether err stems from key material or key registration.
func IsCredentialError(err error) bool {
	return errors.Is(err, ErrCredential) || errors.Is(err, ErrSigning)
}

// IsTransportError reports whether err is a connectivity, timeout or cancellation failure.
func IsTransportError(err error) bool {
	return errors.Is(err, ErrTransport) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// IsTimeout reports whether err was caused by a deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// IsTransactionError reports whether the node reached a terminal, unsuccessful status.
func IsTransactionError(err error) bool {
	return errors.Is(err, ErrRejectedBeforeExecution) || errors.Is(err, ErrExecutionFailure)
}

// IsRetryable reports whether re-running the whole pipeline with a fresh nonce may succeed.
// Only rejections before execution qualify; nothing else is retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRejectedBeforeExecution)
}

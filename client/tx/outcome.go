package tx

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/sleet-near/hello-near/client/errors"
	"github.com/sleet-near/hello-near/client/rpc"
)

// OutcomeKind classifies a terminal transaction status.
type OutcomeKind string

const (
	// OutcomeSuccess means the call executed and its effects are final.
	OutcomeSuccess OutcomeKind = "success"
	// OutcomeExecutionFailure means the method ran and failed.
	OutcomeExecutionFailure OutcomeKind = "execution_failure"
	// OutcomeRejected means the node refused the transaction before execution.
	OutcomeRejected OutcomeKind = "rejected_before_execution"
)

// Outcome is the classified result of a submitted transaction.
type Outcome struct {
	Kind          OutcomeKind `json:"kind"`
	TransactionID string      `json:"transaction_id,omitempty"`
	// Detail is the node's failure description, empty on success.
	Detail string `json:"detail,omitempty"`
	// Value is the method's decoded return value.
	Value    []byte   `json:"value,omitempty"`
	Logs     []string `json:"logs,omitempty"`
	GasBurnt uint64   `json:"gas_burnt,omitempty"`

	cause error
}

// Succeeded reports whether the outcome is a success.
func (o *Outcome) Succeeded() bool {
	return o != nil && o.Kind == OutcomeSuccess
}

// Err returns the typed error for failure outcomes and nil for success.
func (o *Outcome) Err() error {
	if o == nil {
		return nil
	}
	var kind = errors.ErrExecutionFailure
	switch o.Kind {
	case OutcomeSuccess:
		return nil
	case OutcomeRejected:
		kind = errors.ErrRejectedBeforeExecution
	}
	cause := fmt.Errorf("transaction %s: %s", o.TransactionID, o.Detail)
	if o.cause != nil {
		cause = fmt.Errorf("transaction %s: %w", o.TransactionID, o.cause)
	}
	return errors.Wrap(errors.StageBroadcast, kind, cause)
}

// Interpret classifies a status report for txID. Reports that are not final
// are transport errors, since the wait ended without an answer.
func Interpret(txID string, status *rpc.TxStatus) (*Outcome, error) {
	if status == nil {
		return nil, errors.New(errors.StageBroadcast, errors.ErrRPCProtocol, "empty status for %s", txID)
	}
	if txID == "" && status.Transaction != nil {
		txID = status.Transaction.Hash
	}
	if !status.IsFinal() {
		return nil, errors.New(errors.StageBroadcast, errors.ErrTransport,
			"transaction %s not final (status %q)", txID, status.FinalExecutionStatus)
	}
	if status.Status == nil {
		return nil, errors.New(errors.StageBroadcast, errors.ErrRPCProtocol, "final status for %s has no outcome", txID)
	}

	out := &Outcome{
		TransactionID: txID,
		Logs:          status.Logs(),
		GasBurnt:      status.GasBurnt(),
	}
	switch {
	case status.Status.IsFailure():
		failure, err := rpc.ParseFailure(status.Status.Failure)
		if err != nil {
			return nil, errors.Wrap(errors.StageBroadcast, errors.ErrRPCProtocol, err)
		}
		out.Kind = OutcomeExecutionFailure
		out.Detail = compact(status.Status.Failure)
		if len(failure.InvalidTxError) > 0 {
			out.Kind = OutcomeRejected
			out.Detail = compact(failure.InvalidTxError)
		} else if len(failure.ActionError) > 0 {
			out.Detail = compact(failure.ActionError)
		}
	case status.Status.IsSuccess():
		value, err := status.Status.DecodedValue()
		if err != nil {
			return nil, errors.Wrap(errors.StageBroadcast, errors.ErrRPCProtocol, err)
		}
		out.Kind = OutcomeSuccess
		out.Value = value
	default:
		return nil, errors.New(errors.StageBroadcast, errors.ErrTransport,
			"transaction %s not final (%s)", txID, status.Status.Pending)
	}
	return out, nil
}

// InterpretError classifies a failed broadcast call. A node that refuses the
// transaction outright yields a rejected outcome; everything else is returned
// as an error with its kind kept.
func InterpretError(txID string, err error) (*Outcome, error) {
	var rpcErr *rpc.Error
	if stderrors.As(err, &rpcErr) {
		switch rpcErr.CauseName() {
		case rpc.CauseInvalidTransaction:
			return &Outcome{
				Kind:          OutcomeRejected,
				TransactionID: txID,
				Detail:        rpcErr.Detail(),
				cause:         rpcErr,
			}, nil
		case rpc.CauseTimeout:
			return nil, errors.Wrap(errors.StageBroadcast, errors.ErrTransport,
				fmt.Errorf("transaction %s: %w", txID, rpcErr))
		}
	}
	return nil, errors.WithStage(errors.StageBroadcast, errors.ErrTransport, err)
}

func compact(raw json.RawMessage) string {
	var b bytes.Buffer
	if err := json.Compact(&b, raw); err != nil {
		return string(raw)
	}
	return b.String()
}

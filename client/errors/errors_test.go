package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type nodeDetail struct{ name string }

func (n *nodeDetail) Error() string { return n.name }

func TestStageErrorMatchesKindAndCause(t *testing.T) {
	detail := &nodeDetail{name: "UNKNOWN_ACCESS_KEY"}
	inner := Wrap(StageRPC, ErrRPCProtocol, detail)
	outer := Wrap(StageAccessKey, ErrCredential, inner)

	require.ErrorIs(t, outer, ErrCredential)
	require.ErrorIs(t, outer, ErrRPCProtocol)
	require.NotErrorIs(t, outer, ErrTransport)

	var got *nodeDetail
	require.ErrorAs(t, outer, &got)
	require.Equal(t, "UNKNOWN_ACCESS_KEY", got.name)

	stage, ok := StageOf(outer)
	require.True(t, ok)
	require.Equal(t, StageAccessKey, stage)
	require.Equal(t, CodeCredential, GetErrorCode(outer))
}

func TestWrapNil(t *testing.T) {
	require.NoError(t, Wrap(StageSign, ErrSigning, nil))
	require.NoError(t, FromContext(StageBroadcast, nil))
}

func TestFromContext(t *testing.T) {
	err := FromContext(StageBroadcast, context.DeadlineExceeded)
	require.ErrorIs(t, err, ErrTransport)
	require.True(t, IsTransportError(err))
	require.True(t, IsTimeout(err))

	err = FromContext(StageAccessKey, context.Canceled)
	require.True(t, IsTransportError(err))
	require.False(t, IsTimeout(err))
}

func TestClassifiers(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		config     bool
		credential bool
		transport  bool
		txn        bool
		retryable  bool
	}{
		{name: "config", err: New(StageConfig, ErrConfig, "missing testnet"), config: true},
		{name: "credential", err: New(StageCredential, ErrCredential, "no private key"), credential: true},
		{name: "signing", err: New(StageSign, ErrSigning, "mismatch"), credential: true},
		{name: "transport", err: New(StageRPC, ErrTransport, "dial tcp"), transport: true},
		{name: "rejected", err: New(StageBroadcast, ErrRejectedBeforeExecution, "InvalidNonce"), txn: true, retryable: true},
		{name: "execution", err: New(StageBroadcast, ErrExecutionFailure, "panicked"), txn: true},
		{name: "plain", err: fmt.Errorf("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.config, IsConfigError(tt.err))
			require.Equal(t, tt.credential, IsCredentialError(tt.err))
			require.Equal(t, tt.transport, IsTransportError(tt.err))
			require.Equal(t, tt.txn, IsTransactionError(tt.err))
			require.Equal(t, tt.retryable, IsRetryable(tt.err))
		})
	}
}

func TestErrorString(t *testing.T) {
	err := New(StageBuild, ErrSerialization, "args are not valid JSON")
	require.Contains(t, err.Error(), "build")
	require.Contains(t, err.Error(), "args are not valid JSON")

	require.Nil(t, KindOf(errors.New("plain")))
	require.Equal(t, uint32(0), GetErrorCode(errors.New("plain")))
}

func TestWithStage(t *testing.T) {
	inner := New(StageRPC, ErrRPCProtocol, "UNKNOWN_BLOCK")
	err := WithStage(StageView, ErrTransport, inner)

	stage, ok := StageOf(err)
	require.True(t, ok)
	require.Equal(t, StageView, stage)
	require.ErrorIs(t, err, ErrRPCProtocol)
	require.NotErrorIs(t, err, ErrTransport)

	plain := WithStage(StageView, ErrTransport, fmt.Errorf("dial"))
	require.ErrorIs(t, plain, ErrTransport)
	require.Nil(t, WithStage(StageView, ErrTransport, nil))
}

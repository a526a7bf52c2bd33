package tx

import (
	"context"

	"cosmossdk.io/log"

	"github.com/sleet-near/hello-near/client/errors"
	"github.com/sleet-near/hello-near/client/rpc"
)

// Broadcaster submits signed transactions and waits for their final outcome.
// It never resubmits: a rejected transaction is reported, not retried.
type Broadcaster struct {
	gateway rpc.Gateway
	logger  log.Logger
}

// NewBroadcaster returns a broadcaster submitting through gateway.
func NewBroadcaster(gateway rpc.Gateway, logger log.Logger) *Broadcaster {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Broadcaster{gateway: gateway, logger: logger.With("module", "broadcaster")}
}

// Broadcast submits signed and waits until its outcome is final. The outcome
// is returned whenever the node reached a terminal status, together with
// Outcome.Err() for the failure kinds.
func (b *Broadcaster) Broadcast(ctx context.Context, signed *SignedTransaction) (*Outcome, error) {
	if signed == nil {
		return nil, errors.New(errors.StageBroadcast, errors.ErrSerialization, "signed transaction is nil")
	}
	data, err := signed.Encode()
	if err != nil {
		return nil, err
	}

	b.logger.Debug("broadcasting", "tx", signed.ID(), "signer", signed.Transaction.SignerID,
		"nonce", signed.Transaction.Nonce, "bytes", len(data))

	status, err := b.gateway.BroadcastAndAwait(ctx, data)
	if err != nil {
		return b.finish(InterpretError(signed.ID(), err))
	}
	return b.finish(Interpret(signed.ID(), status))
}

// Status looks up a previously submitted transaction and classifies it.
func (b *Broadcaster) Status(ctx context.Context, txID, signerID string) (*Outcome, error) {
	if txID == "" || signerID == "" {
		return nil, errors.New(errors.StageBroadcast, errors.ErrInvalidRequest, "transaction id and signer are required")
	}
	if _, err := rpc.ParseCryptoHash(txID); err != nil {
		return nil, errors.Wrap(errors.StageBroadcast, errors.ErrInvalidRequest, err)
	}
	status, err := b.gateway.TxStatus(ctx, txID, signerID)
	if err != nil {
		return b.finish(InterpretError(txID, err))
	}
	return b.finish(Interpret(txID, status))
}

func (b *Broadcaster) finish(out *Outcome, err error) (*Outcome, error) {
	if err != nil {
		b.logger.Debug("no terminal outcome", "err", err)
		return nil, err
	}
	b.logger.Debug("outcome", "tx", out.TransactionID, "kind", out.Kind, "gas_burnt", out.GasBurnt)
	return out, out.Err()
}

// Package query reads chain state: access keys for signing and read-only
// contract calls.
package query

import (
	"context"
	stderrors "errors"

	"cosmossdk.io/log"

	"github.com/sleet-near/hello-near/client/errors"
	"github.com/sleet-near/hello-near/client/keys"
	"github.com/sleet-near/hello-near/client/rpc"
)

// AccessKeyState is the signing context for one access key: the nonce last
// used and the final block it was read at. The block hash doubles as the
// transaction's anchor.
type AccessKeyState struct {
	Nonce       uint64
	BlockHash   rpc.CryptoHash
	BlockHeight uint64
	Permission  rpc.AccessKeyPermission
}

// AccessKeyResolver fetches nonce and anchor for a signer.
type AccessKeyResolver struct {
	gateway rpc.Gateway
	logger  log.Logger
}

// NewAccessKeyResolver returns a resolver that queries through gateway.
func NewAccessKeyResolver(gateway rpc.Gateway, logger log.Logger) *AccessKeyResolver {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &AccessKeyResolver{gateway: gateway, logger: logger.With("module", "access-key")}
}

// Resolve returns the current state of publicKey on accountID. Nonce and
// anchor come from the same final-block query. A key or account the node does
// not know is a credential error; the node error stays in the chain.
func (r *AccessKeyResolver) Resolve(ctx context.Context, accountID string, publicKey keys.PublicKey) (AccessKeyState, error) {
	view, err := r.gateway.ViewAccessKey(ctx, accountID, publicKey)
	if err != nil {
		if isUnknownKey(err) {
			return AccessKeyState{}, errors.Wrap(errors.StageAccessKey, errors.ErrCredential, err)
		}
		return AccessKeyState{}, errors.WithStage(errors.StageAccessKey, errors.ErrTransport, err)
	}
	if view.BlockHash.IsZero() {
		return AccessKeyState{}, errors.New(errors.StageAccessKey, errors.ErrRPCProtocol, "access key view has no block hash")
	}

	r.logger.Debug("resolved access key",
		"account", accountID,
		"public_key", publicKey.String(),
		"nonce", view.Nonce,
		"block_height", view.BlockHeight,
	)
	return AccessKeyState{
		Nonce:       view.Nonce,
		BlockHash:   view.BlockHash,
		BlockHeight: view.BlockHeight,
		Permission:  view.Permission,
	}, nil
}

func isUnknownKey(err error) bool {
	var rpcErr *rpc.Error
	if !stderrors.As(err, &rpcErr) {
		return false
	}
	switch rpcErr.CauseName() {
	case rpc.CauseUnknownAccessKey, rpc.CauseUnknownAccount, rpc.CauseInvalidAccount:
		return true
	}
	return false
}

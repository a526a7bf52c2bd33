package tx

import (
	"math"
	"math/big"

	"github.com/sleet-near/hello-near/client/config"
	"github.com/sleet-near/hello-near/client/errors"
	"github.com/sleet-near/hello-near/client/keys"
	"github.com/sleet-near/hello-near/client/query"
	"github.com/sleet-near/hello-near/client/rpc"
)

// Builder assembles function-call transactions with a fixed gas and deposit policy.
type Builder struct {
	Gas     uint64
	Deposit *big.Int
}

// NewBuilder returns a builder attaching gas and deposit (yoctoNEAR) to every call.
func NewBuilder(gas uint64, deposit *big.Int) Builder {
	b := Builder{Gas: gas, Deposit: new(big.Int)}
	if deposit != nil {
		b.Deposit.Set(deposit)
	}
	return b
}

// DefaultBuilder attaches 30 TGas and no deposit.
func DefaultBuilder() Builder {
	return NewBuilder(DefaultGas, nil)
}

// Validate checks the gas and deposit policy.
func (b Builder) Validate() error {
	if err := ValidateGas(b.Gas); err != nil {
		return errors.Wrap(errors.StageBuild, errors.ErrSerialization, err)
	}
	if err := ValidateDeposit(b.Deposit); err != nil {
		return errors.Wrap(errors.StageBuild, errors.ErrSerialization, err)
	}
	return nil
}

// Build returns a transaction calling method on cfg's contract, signed by
// cred's key, with nonce one past state's and anchored at state's block. It
// performs no I/O.
func (b Builder) Build(cfg config.NetworkConfig, cred keys.Credential, state query.AccessKeyState, method string, args any) (*Transaction, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if method == "" {
		return nil, errors.New(errors.StageBuild, errors.ErrSerialization, "method name is empty")
	}
	if cfg.ContractID == "" {
		return nil, errors.New(errors.StageBuild, errors.ErrConfig, "network %s has no contract", cfg.NetworkID)
	}
	if state.Nonce == math.MaxUint64 {
		return nil, errors.New(errors.StageBuild, errors.ErrSerialization, "nonce overflow for %s", cred.AccountID)
	}
	if state.BlockHash.IsZero() {
		return nil, errors.New(errors.StageBuild, errors.ErrSerialization, "missing anchor block hash")
	}
	pub, err := cred.ParsedPublicKey()
	if err != nil {
		return nil, errors.Wrap(errors.StageBuild, errors.ErrCredential, err)
	}
	encoded, err := rpc.EncodeArgs(args)
	if err != nil {
		return nil, errors.Wrap(errors.StageBuild, errors.ErrSerialization, err)
	}

	return &Transaction{
		SignerID:   cred.AccountID,
		PublicKey:  pub,
		Nonce:      state.Nonce + 1,
		ReceiverID: cfg.ContractID,
		BlockHash:  state.BlockHash,
		Actions:    []Action{NewFunctionCallAction(method, encoded, b.Gas, b.Deposit)},
	}, nil
}

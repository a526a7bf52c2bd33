package client

import (
	"context"
	"encoding/json"

	"github.com/sleet-near/hello-near/client/config"
	"github.com/sleet-near/hello-near/client/errors"
	"github.com/sleet-near/hello-near/client/keys"
	"github.com/sleet-near/hello-near/client/query"
	"github.com/sleet-near/hello-near/client/rpc"
	"github.com/sleet-near/hello-near/client/tx"
)

// View calls a read-only method on network's contract. It needs no key and
// creates no transaction.
func (c *Client) View(ctx context.Context, network config.Network, method string, args any) (*query.ViewResult, error) {
	cfg, gw, err := c.connect(network)
	if err != nil {
		return nil, err
	}
	return c.viewer(gw).View(ctx, cfg, method, args)
}

// Greeting returns the contract's current greeting.
func (c *Client) Greeting(ctx context.Context, network config.Network) (string, error) {
	cfg, gw, err := c.connect(network)
	if err != nil {
		return "", err
	}
	return c.viewer(gw).Greeting(ctx, cfg)
}

// Preview describes the call Submit would make, without any I/O.
type Preview struct {
	Network    string          `json:"network"`
	ContractID string          `json:"contract_id"`
	SignerID   string          `json:"signer_id"`
	PublicKey  string          `json:"public_key"`
	Method     string          `json:"method"`
	Args       json.RawMessage `json:"args"`
	Gas        string          `json:"gas"`
	Deposit    string          `json:"deposit"`
	CanSign    bool            `json:"can_sign"`
	Timeout    string          `json:"timeout"`
}

// Preview validates the inputs of a submission and reports what would be sent.
// The nonce and anchor are not known until submission.
func (c *Client) Preview(network config.Network, cred keys.Credential, method string, args any) (*Preview, error) {
	cfg, err := c.Config(network)
	if err != nil {
		return nil, err
	}
	if method == "" {
		return nil, errors.New(errors.StageBuild, errors.ErrInvalidRequest, "method name is empty")
	}
	if err := cred.Validate(); err != nil {
		return nil, errors.Wrap(errors.StageCredential, errors.ErrCredential, err)
	}
	encoded, err := rpc.EncodeArgs(args)
	if err != nil {
		return nil, errors.Wrap(errors.StageBuild, errors.ErrSerialization, err)
	}
	timeout := c.timeout
	if timeout <= 0 {
		timeout = cfg.Timeout()
	}
	return &Preview{
		Network:    cfg.NetworkID,
		ContractID: cfg.ContractID,
		SignerID:   cred.AccountID,
		PublicKey:  cred.PublicKey,
		Method:     method,
		Args:       encoded,
		Gas:        tx.FormatGas(c.builder.Gas),
		Deposit:    tx.FormatDeposit(c.builder.Deposit),
		CanSign:    cred.CanSign(),
		Timeout:    timeout.String(),
	}, nil
}

// Ping fetches the latest final block from network's node.
func (c *Client) Ping(ctx context.Context, network config.Network) (*rpc.BlockAnchor, error) {
	_, gw, err := c.connect(network)
	if err != nil {
		return nil, err
	}
	block, err := gw.LatestFinalizedBlock(ctx)
	if err != nil {
		return nil, errors.WithStage(errors.StageRPC, errors.ErrTransport, err)
	}
	return block, nil
}

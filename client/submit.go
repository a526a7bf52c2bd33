package client

import (
	"context"
	"time"

	"github.com/sleet-near/hello-near/client/config"
	"github.com/sleet-near/hello-near/client/errors"
	"github.com/sleet-near/hello-near/client/keys"
	"github.com/sleet-near/hello-near/client/query"
	"github.com/sleet-near/hello-near/client/rpc"
	"github.com/sleet-near/hello-near/client/tx"
)

// SetGreetingMethod is the contract's write method.
const SetGreetingMethod = "set_greeting"

// Result is delivered by SubmitAsync.
type Result struct {
	Outcome *tx.Outcome
	Err     error
}

// Submit calls method on network's contract as cred and waits for a final
// outcome. The stages run strictly in order: resolve config, check the
// credential, fetch nonce and anchor, build, sign, broadcast, interpret.
// The first failure ends the run and is returned as a *errors.StageError.
//
// A non-nil outcome means the node reached a terminal status; err is then
// outcome.Err(). Submit never retries.
func (c *Client) Submit(ctx context.Context, network config.Network, cred keys.Credential, method string, args any) (*tx.Outcome, error) {
	start := time.Now()
	out, err := c.submit(ctx, network, cred, method, args)
	c.metrics.observe(network.Section(), out, err, time.Since(start))

	logger := c.logger.With("network", network.Section(), "signer", cred.AccountID, "method", method)
	switch {
	case out != nil:
		logger.Info("submission finished", "tx", out.TransactionID, "outcome", out.Kind, "duration", time.Since(start))
	case err != nil:
		stage, _ := errors.StageOf(err)
		logger.Info("submission failed", "stage", stage, "err", err)
	}
	return out, err
}

func (c *Client) submit(ctx context.Context, network config.Network, cred keys.Credential, method string, args any) (*tx.Outcome, error) {
	cfg, gw, err := c.connect(network)
	if err != nil {
		return nil, err
	}

	pub, err := checkCredential(cred)
	if err != nil {
		return nil, err
	}

	if err := checkContext(ctx, errors.StageAccessKey); err != nil {
		return nil, err
	}
	state, err := c.resolver(gw).Resolve(ctx, cred.AccountID, pub)
	if err != nil {
		return nil, err
	}
	if err := c.checkPermission(cfg, state, method); err != nil {
		return nil, err
	}

	unsigned, err := c.builder.Build(cfg, cred, state, method, args)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("built transaction", "signer", unsigned.SignerID, "receiver", unsigned.ReceiverID,
		"nonce", unsigned.Nonce, "anchor_height", state.BlockHeight)

	if err := checkContext(ctx, errors.StageSign); err != nil {
		return nil, err
	}
	signed, err := c.signer.Sign(unsigned, cred.PrivateKey)
	if err != nil {
		return nil, err
	}

	if err := checkContext(ctx, errors.StageBroadcast); err != nil {
		return nil, err
	}
	return c.broadcaster(gw).Broadcast(ctx, signed)
}

// checkCredential rejects credentials that cannot sign before any network call.
func checkCredential(cred keys.Credential) (keys.PublicKey, error) {
	if !cred.CanSign() {
		return keys.PublicKey{}, errors.New(errors.StageCredential, errors.ErrCredential,
			"no private key for %q", cred.AccountID)
	}
	if err := cred.Validate(); err != nil {
		return keys.PublicKey{}, errors.Wrap(errors.StageCredential, errors.ErrCredential, err)
	}
	pub, err := cred.ParsedPublicKey()
	if err != nil {
		return keys.PublicKey{}, errors.Wrap(errors.StageCredential, errors.ErrCredential, err)
	}
	return pub, nil
}

// checkPermission rejects function-call keys that may not make this call.
func (c *Client) checkPermission(cfg config.NetworkConfig, state query.AccessKeyState, method string) error {
	perm := state.Permission
	if perm.FullAccess {
		return nil
	}
	if !perm.Allows(cfg.ContractID, method) {
		return errors.New(errors.StageAccessKey, errors.ErrCredential,
			"access key may not call %s on %s", method, cfg.ContractID)
	}
	if c.builder.Deposit != nil && c.builder.Deposit.Sign() > 0 {
		return errors.New(errors.StageAccessKey, errors.ErrCredential,
			"function-call access keys cannot attach a deposit")
	}
	return nil
}

func checkContext(ctx context.Context, stage errors.Stage) error {
	return errors.FromContext(stage, ctx.Err())
}

// SubmitAsync runs Submit on its own goroutine. The channel receives exactly
// one Result and is then closed; it is buffered so the goroutine finishes even
// if nobody reads it. Cancel ctx to abandon the submission.
func (c *Client) SubmitAsync(ctx context.Context, network config.Network, cred keys.Credential, method string, args any) <-chan Result {
	results := make(chan Result, 1)
	go func() {
		defer close(results)
		out, err := c.Submit(ctx, network, cred, method, args)
		results <- Result{Outcome: out, Err: err}
	}()
	return results
}

// SetGreeting submits set_greeting with {"greeting": greeting}.
func (c *Client) SetGreeting(ctx context.Context, network config.Network, cred keys.Credential, greeting string) (*tx.Outcome, error) {
	return c.Submit(ctx, network, cred, SetGreetingMethod, map[string]string{"greeting": greeting})
}

// Status looks up a submitted transaction by id and signer. Transactions the
// regular node no longer knows are looked up on the archival node, if the
// network has one.
func (c *Client) Status(ctx context.Context, network config.Network, txID, signerID string) (*tx.Outcome, error) {
	cfg, gw, err := c.connect(network)
	if err != nil {
		return nil, err
	}
	out, err := c.broadcaster(gw).Status(ctx, txID, signerID)
	if out != nil || !rpc.HasCause(err, rpc.CauseUnknownTransaction) {
		return out, err
	}
	archive := c.archive(network, cfg)
	if archive == nil {
		return nil, err
	}
	c.logger.Debug("transaction unknown to node, trying archival node", "tx", txID, "network", network.Section())
	return c.broadcaster(archive).Status(ctx, txID, signerID)
}

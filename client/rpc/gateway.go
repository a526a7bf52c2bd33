// Package rpc talks JSON-RPC 2.0 to a NEAR node over HTTP.
package rpc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cosmossdk.io/log"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/sleet-near/hello-near/client/config"
	"github.com/sleet-near/hello-near/client/errors"
	"github.com/sleet-near/hello-near/client/keys"
)

// Gateway is the set of node calls the client needs. Implementations perform
// exactly one request per call and never retry.
type Gateway interface {
	// LatestFinalizedBlock returns the hash and height of the latest final block.
	LatestFinalizedBlock(ctx context.Context) (*BlockAnchor, error)
	// ViewAccessKey returns the nonce and permission of a key, with the final
	// block the view was read at.
	ViewAccessKey(ctx context.Context, accountID string, publicKey keys.PublicKey) (*AccessKeyView, error)
	// CallViewFunction runs a read-only contract method against final state.
	CallViewFunction(ctx context.Context, accountID, method string, args []byte) (*CallResult, error)
	// BroadcastAndAwait submits a Borsh-encoded signed transaction and waits
	// until its outcome is final.
	BroadcastAndAwait(ctx context.Context, signedTx []byte) (*TxStatus, error)
	// TxStatus looks up a previously submitted transaction, waiting until it is final.
	TxStatus(ctx context.Context, txHash, senderID string) (*TxStatus, error)
}

// Option configures an HTTPGateway.
type Option func(*HTTPGateway)

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(g *HTTPGateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithTimeout overrides the per-call timeout from the network config.
func WithTimeout(timeout time.Duration) Option {
	return func(g *HTTPGateway) {
		if timeout > 0 {
			g.timeout = timeout
		}
	}
}

// WithRestyClient replaces the underlying HTTP client.
func WithRestyClient(rc *resty.Client) Option {
	return func(g *HTTPGateway) {
		if rc != nil {
			g.client = rc
		}
	}
}

// HTTPGateway is a Gateway backed by a node's HTTP endpoint.
type HTTPGateway struct {
	client   *resty.Client
	endpoint string
	timeout  time.Duration
	logger   log.Logger
}

var _ Gateway = (*HTTPGateway)(nil)

// NewHTTPGateway returns a gateway for cfg.RPCURL.
func NewHTTPGateway(cfg config.NetworkConfig, opts ...Option) *HTTPGateway {
	g := &HTTPGateway{
		client:   resty.New(),
		endpoint: cfg.RPCURL,
		timeout:  cfg.Timeout(),
		logger:   log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.client.SetHeader("Content-Type", "application/json")
	g.logger = g.logger.With("module", "rpc", "endpoint", g.endpoint)
	return g
}

// Endpoint returns the node URL.
func (g *HTTPGateway) Endpoint() string {
	return g.endpoint
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *Error          `json:"error"`
}

// legacyError is how older nodes report query failures inside a successful result.
type legacyError struct {
	Error string `json:"error"`
}

// LatestFinalizedBlock implements Gateway.
func (g *HTTPGateway) LatestFinalizedBlock(ctx context.Context) (*BlockAnchor, error) {
	var view blockView
	if err := g.call(ctx, "block", map[string]string{"finality": FinalityFinal}, &view); err != nil {
		return nil, err
	}
	if view.Header.Hash.IsZero() {
		return nil, malformed("block", fmt.Errorf("missing block hash"))
	}
	return &BlockAnchor{Hash: view.Header.Hash, Height: view.Header.Height}, nil
}

// ViewAccessKey implements Gateway.
func (g *HTTPGateway) ViewAccessKey(ctx context.Context, accountID string, publicKey keys.PublicKey) (*AccessKeyView, error) {
	params := map[string]string{
		"request_type": "view_access_key",
		"finality":     FinalityFinal,
		"account_id":   accountID,
		"public_key":   publicKey.String(),
	}
	var view AccessKeyView
	if err := g.query(ctx, params, &view); err != nil {
		return nil, err
	}
	if view.BlockHash.IsZero() {
		return nil, malformed("query", fmt.Errorf("view_access_key result has no block hash"))
	}
	return &view, nil
}

// CallViewFunction implements Gateway.
func (g *HTTPGateway) CallViewFunction(ctx context.Context, accountID, method string, args []byte) (*CallResult, error) {
	params := map[string]string{
		"request_type": "call_function",
		"finality":     FinalityFinal,
		"account_id":   accountID,
		"method_name":  method,
		"args_base64":  base64.StdEncoding.EncodeToString(args),
	}
	var result CallResult
	if err := g.query(ctx, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// BroadcastAndAwait implements Gateway.
func (g *HTTPGateway) BroadcastAndAwait(ctx context.Context, signedTx []byte) (*TxStatus, error) {
	params := map[string]string{
		"signed_tx_base64": base64.StdEncoding.EncodeToString(signedTx),
		"wait_until":       TxStatusFinal,
	}
	var status TxStatus
	if err := g.call(ctx, "send_tx", params, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// TxStatus implements Gateway.
func (g *HTTPGateway) TxStatus(ctx context.Context, txHash, senderID string) (*TxStatus, error) {
	params := map[string]string{
		"tx_hash":           txHash,
		"sender_account_id": senderID,
		"wait_until":        TxStatusFinal,
	}
	var status TxStatus
	if err := g.call(ctx, "tx", params, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (g *HTTPGateway) query(ctx context.Context, params map[string]string, result any) error {
	var raw json.RawMessage
	if err := g.call(ctx, "query", params, &raw); err != nil {
		return err
	}
	var legacy legacyError
	if err := json.Unmarshal(raw, &legacy); err == nil && legacy.Error != "" {
		return errors.Wrap(errors.StageRPC, errors.ErrRPCProtocol, legacyQueryError(legacy.Error))
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return malformed("query", err)
	}
	return nil
}

func (g *HTTPGateway) call(ctx context.Context, method string, params, result any) error {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req := request{JSONRPC: "2.0", ID: uuid.NewString(), Method: method, Params: params}
	start := time.Now()
	resp, err := g.client.R().
		SetContext(callCtx).
		SetBody(req).
		Post(g.endpoint)
	if err != nil {
		g.logger.Debug("rpc call failed", "method", method, "id", req.ID, "err", err)
		if ctxErr := callCtx.Err(); ctxErr != nil {
			return errors.FromContext(errors.StageRPC, fmt.Errorf("%s: %w", method, ctxErr))
		}
		return errors.Wrap(errors.StageRPC, errors.ErrTransport, fmt.Errorf("%s: %w", method, err))
	}
	g.logger.Debug("rpc call", "method", method, "id", req.ID, "status", resp.StatusCode(), "duration", time.Since(start))

	var envelope response
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		if resp.StatusCode() >= http.StatusInternalServerError || resp.StatusCode() == http.StatusRequestTimeout {
			return errors.New(errors.StageRPC, errors.ErrTransport, "%s: http %d", method, resp.StatusCode())
		}
		return malformed(method, err)
	}
	if envelope.Error != nil {
		return errors.Wrap(errors.StageRPC, errors.ErrRPCProtocol, envelope.Error)
	}
	if len(envelope.Result) == 0 || string(envelope.Result) == "null" {
		if resp.StatusCode() >= http.StatusInternalServerError {
			return errors.New(errors.StageRPC, errors.ErrTransport, "%s: http %d", method, resp.StatusCode())
		}
		return malformed(method, fmt.Errorf("response has neither result nor error"))
	}
	if err := json.Unmarshal(envelope.Result, result); err != nil {
		return malformed(method, err)
	}
	return nil
}

func malformed(method string, err error) error {
	return errors.Wrap(errors.StageRPC, errors.ErrRPCProtocol, &Error{
		Code:    -32700,
		Name:    CauseMalformedResponse,
		Message: fmt.Sprintf("%s: %v", method, err),
		Cause:   &ErrorCause{Name: CauseMalformedResponse},
	})
}

// legacyQueryError maps an old-style result.error string onto a structured error.
func legacyQueryError(msg string) *Error {
	e := &Error{Name: "HANDLER_ERROR", Message: msg, Cause: &ErrorCause{}}
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "access key") && strings.Contains(lower, "does not exist"):
		e.Cause.Name = CauseUnknownAccessKey
	case strings.Contains(lower, "account") && strings.Contains(lower, "does not exist"):
		e.Cause.Name = CauseUnknownAccount
	case strings.Contains(lower, "codenotexist") || strings.Contains(lower, "contract code"):
		e.Cause.Name = CauseNoContractCode
	default:
		e.Cause.Name = CauseContractExecutionError
	}
	data, _ := json.Marshal(msg)
	e.Data = data
	return e
}

package query

import (
	"context"
	"encoding/json"
	"strings"

	"cosmossdk.io/log"

	"github.com/sleet-near/hello-near/client/config"
	"github.com/sleet-near/hello-near/client/errors"
	"github.com/sleet-near/hello-near/client/rpc"
)

// GreetingMethod is the contract's read method.
const GreetingMethod = "get_greeting"

// ViewResult is the decoded return value of a read-only call.
type ViewResult struct {
	// Raw is the exact bytes the contract returned.
	Raw []byte
	// JSON is Raw when it parses as JSON, nil otherwise.
	JSON json.RawMessage
	// Text is the value as a string: the decoded string for a JSON string,
	// otherwise Raw with surrounding quotes trimmed.
	Text        string
	Logs        []string
	BlockHeight uint64
}

// Decode unmarshals the JSON value into v.
func (r *ViewResult) Decode(v any) error {
	if r.JSON == nil {
		return errors.New(errors.StageView, errors.ErrRPCProtocol, "view result is not JSON: %q", r.Text)
	}
	return json.Unmarshal(r.JSON, v)
}

// ViewExecutor runs read-only contract calls. Views never sign.
type ViewExecutor struct {
	gateway rpc.Gateway
	logger  log.Logger
}

// NewViewExecutor returns an executor that calls through gateway.
func NewViewExecutor(gateway rpc.Gateway, logger log.Logger) *ViewExecutor {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &ViewExecutor{gateway: gateway, logger: logger.With("module", "view")}
}

// View calls method on cfg's contract with JSON-encoded args.
func (e *ViewExecutor) View(ctx context.Context, cfg config.NetworkConfig, method string, args any) (*ViewResult, error) {
	if method == "" {
		return nil, errors.New(errors.StageView, errors.ErrInvalidRequest, "method name is empty")
	}
	encoded, err := rpc.EncodeArgs(args)
	if err != nil {
		return nil, errors.Wrap(errors.StageView, errors.ErrInvalidRequest, err)
	}

	res, err := e.gateway.CallViewFunction(ctx, cfg.ContractID, method, encoded)
	if err != nil {
		return nil, errors.WithStage(errors.StageView, errors.ErrTransport, err)
	}

	e.logger.Debug("view call", "network", cfg.NetworkID, "contract", cfg.ContractID, "method", method,
		"bytes", len(res.Result), "block_height", res.BlockHeight)
	return decodeView(res), nil
}

// Greeting reads the contract's greeting. The contract may return either a
// bare string or {"greeting": "..."}.
func (e *ViewExecutor) Greeting(ctx context.Context, cfg config.NetworkConfig) (string, error) {
	res, err := e.View(ctx, cfg, GreetingMethod, nil)
	if err != nil {
		return "", err
	}
	var wrapped struct {
		Greeting *string `json:"greeting"`
	}
	if res.JSON != nil && json.Unmarshal(res.JSON, &wrapped) == nil && wrapped.Greeting != nil {
		return *wrapped.Greeting, nil
	}
	return res.Text, nil
}

func decodeView(res *rpc.CallResult) *ViewResult {
	out := &ViewResult{
		Raw:         []byte(res.Result),
		Logs:        res.Logs,
		BlockHeight: res.BlockHeight,
	}
	if len(out.Raw) > 0 && json.Valid(out.Raw) {
		out.JSON = json.RawMessage(out.Raw)
		var s string
		if json.Unmarshal(out.Raw, &s) == nil {
			out.Text = s
			return out
		}
	}
	out.Text = strings.Trim(string(out.Raw), `"`)
	return out
}

package handlers

import (
	"context"

	"github.com/sleet-near/hello-near/client"
	"github.com/sleet-near/hello-near/client/config"
	"github.com/sleet-near/hello-near/client/keys"
	"github.com/sleet-near/hello-near/client/rpc"
	"github.com/sleet-near/hello-near/client/tx"
)

// Greeter is the part of client.Client the handlers use.
type Greeter interface {
	Config(network config.Network) (config.NetworkConfig, error)
	Greeting(ctx context.Context, network config.Network) (string, error)
	SetGreeting(ctx context.Context, network config.Network, cred keys.Credential, greeting string) (*tx.Outcome, error)
	Preview(network config.Network, cred keys.Credential, method string, args any) (*client.Preview, error)
	Ping(ctx context.Context, network config.Network) (*rpc.BlockAnchor, error)
}

// CredentialStore looks up signing accounts.
type CredentialStore interface {
	List(network config.Network) ([]keys.Credential, error)
	Get(network config.Network, accountID string) (keys.Credential, error)
}

var _ Greeter = (*client.Client)(nil)

// UpdateGreetingRequest is the body of POST /api/:network/greeting and its preview.
type UpdateGreetingRequest struct {
	AccountID string `json:"account_id"`
	Greeting  string `json:"greeting"`
}

// GreetingResponse is returned by GET /api/:network/greeting.
type GreetingResponse struct {
	Network    string `json:"network"`
	ContractID string `json:"contract_id"`
	Greeting   string `json:"greeting"`
}

// AccountResponse describes one stored credential. The private key is never returned.
type AccountResponse struct {
	AccountID string `json:"account_id"`
	PublicKey string `json:"public_key"`
	CanSign   bool   `json:"can_sign"`
}

// UpdateGreetingResponse reports a terminal outcome.
type UpdateGreetingResponse struct {
	Outcome        *tx.Outcome `json:"outcome"`
	TransactionURL string      `json:"transaction_url,omitempty"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Kind    string      `json:"kind,omitempty"`
	Stage   string      `json:"stage,omitempty"`
	Code    uint32      `json:"code,omitempty"`
	Outcome *tx.Outcome `json:"outcome,omitempty"`
}

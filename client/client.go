// Package client submits function calls to the greeting contract and reads
// its state on either configured network.
package client

import (
	"sync"
	"time"

	"cosmossdk.io/log"

	"github.com/sleet-near/hello-near/client/config"
	"github.com/sleet-near/hello-near/client/errors"
	"github.com/sleet-near/hello-near/client/query"
	"github.com/sleet-near/hello-near/client/rpc"
	"github.com/sleet-near/hello-near/client/tx"
)

// GatewayFactory opens a gateway for a resolved network.
type GatewayFactory func(cfg config.NetworkConfig) rpc.Gateway

// Option customizes a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithGatewayFactory replaces how gateways are opened, e.g. with a mock.
func WithGatewayFactory(f GatewayFactory) Option {
	return func(c *Client) {
		if f != nil {
			c.newGateway = f
		}
	}
}

// WithBuilder sets the gas and deposit policy.
func WithBuilder(b tx.Builder) Option {
	return func(c *Client) {
		c.builder = b
	}
}

// WithMetrics enables submission metrics.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithTimeout overrides each network's per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// Client is safe for concurrent use. Submissions share nothing but the
// per-network gateways.
type Client struct {
	networks   *config.Networks
	newGateway GatewayFactory
	builder    tx.Builder
	signer     *tx.Signer
	metrics    *Metrics
	timeout    time.Duration
	logger     log.Logger

	mu       sync.Mutex
	gateways map[config.Network]rpc.Gateway
	archives map[config.Network]rpc.Gateway
}

// New returns a client over networks.
func New(networks *config.Networks, opts ...Option) (*Client, error) {
	if networks == nil {
		return nil, errors.New(errors.StageConfig, errors.ErrConfig, "no network configuration")
	}
	c := &Client{
		networks: networks,
		builder:  tx.DefaultBuilder(),
		logger:   log.NewNopLogger(),
		gateways: make(map[config.Network]rpc.Gateway),
		archives: make(map[config.Network]rpc.Gateway),
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.builder.Validate(); err != nil {
		return nil, err
	}
	c.logger = c.logger.With("module", "client")
	if c.newGateway == nil {
		c.newGateway = func(cfg config.NetworkConfig) rpc.Gateway {
			return rpc.NewHTTPGateway(cfg, rpc.WithLogger(c.logger), rpc.WithTimeout(c.timeout))
		}
	}
	c.signer = tx.NewSigner(c.logger)
	return c, nil
}

// Networks returns the configuration the client was built with.
func (c *Client) Networks() *config.Networks {
	return c.networks
}

// Builder returns the gas and deposit policy.
func (c *Client) Builder() tx.Builder {
	return c.builder
}

// Config resolves network.
func (c *Client) Config(network config.Network) (config.NetworkConfig, error) {
	cfg, err := c.networks.Resolve(network)
	if err != nil {
		return config.NetworkConfig{}, errors.WithStage(errors.StageConfig, errors.ErrConfig, err)
	}
	return cfg, nil
}

func (c *Client) connect(network config.Network) (config.NetworkConfig, rpc.Gateway, error) {
	cfg, err := c.Config(network)
	if err != nil {
		return config.NetworkConfig{}, nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	gw, ok := c.gateways[network]
	if !ok {
		gw = c.newGateway(cfg)
		c.gateways[network] = gw
	}
	return cfg, gw, nil
}

// archive returns the gateway of network's archival node, or nil when none is configured.
func (c *Client) archive(network config.Network, cfg config.NetworkConfig) rpc.Gateway {
	if cfg.ArchivalRPCURL == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	gw, ok := c.archives[network]
	if !ok {
		archival := cfg
		archival.RPCURL = cfg.ArchivalRPCURL
		gw = c.newGateway(archival)
		c.archives[network] = gw
	}
	return gw
}

func (c *Client) resolver(gw rpc.Gateway) *query.AccessKeyResolver {
	return query.NewAccessKeyResolver(gw, c.logger)
}

func (c *Client) viewer(gw rpc.Gateway) *query.ViewExecutor {
	return query.NewViewExecutor(gw, c.logger)
}

func (c *Client) broadcaster(gw rpc.Gateway) *tx.Broadcaster {
	return tx.NewBroadcaster(gw, c.logger)
}

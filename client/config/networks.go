// Package config provides network configuration for the hello-near client.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/sleet-near/hello-near/client/errors"
)

//go:embed networks.toml
var embeddedNetworks []byte

// DefaultRequestTimeout applies when a section sets no request_timeout.
const DefaultRequestTimeout = 30 * time.Second

// Network selects one of the two supported networks.
type Network string

const (
	// Primary is the production network (mainnet).
	Primary Network = "primary"
	// Secondary is the test network (testnet).
	Secondary Network = "secondary"
)

// ParseNetwork accepts "primary", "secondary" and their section names
// "mainnet" and "testnet", case-insensitively.
func ParseNetwork(s string) (Network, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "primary", "mainnet":
		return Primary, nil
	case "secondary", "testnet":
		return Secondary, nil
	default:
		return "", errors.New(errors.StageConfig, errors.ErrConfig, "unknown network %q (supported: primary, secondary)", s)
	}
}

// Section returns the name of the network's section in the configuration document.
func (n Network) Section() string {
	switch n {
	case Primary:
		return "mainnet"
	case Secondary:
		return "testnet"
	default:
		return string(n)
	}
}

// String implements fmt.Stringer.
func (n Network) String() string {
	return string(n)
}

// Duration is a time.Duration decoded from strings such as "30s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// NetworkConfig is the addressable identity of one network.
type NetworkConfig struct {
	// NetworkID is the section name, "mainnet" or "testnet".
	NetworkID string `toml:"-" json:"network_id"`

	RPCURL         string `toml:"rpc_url" json:"rpc_url" validate:"required,url"`
	ArchivalRPCURL string `toml:"archival_rpc_url" json:"archival_rpc_url,omitempty" validate:"omitempty,url"`
	ContractID     string `toml:"contract_id" json:"contract_id" validate:"required,account_id"`
	ExplorerURL    string `toml:"explorer_url" json:"explorer_url,omitempty" validate:"omitempty,url"`

	RequestTimeout Duration `toml:"request_timeout" json:"request_timeout"`
}

// Validate checks the configuration and fills in the request timeout default.
func (nc *NetworkConfig) Validate() error {
	if err := NewValidator().Struct(nc); err != nil {
		return fmt.Errorf("network %q: %w", nc.NetworkID, err)
	}
	if nc.RequestTimeout < 0 {
		return fmt.Errorf("network %q: request timeout must not be negative", nc.NetworkID)
	}
	if nc.RequestTimeout == 0 {
		nc.RequestTimeout = Duration(DefaultRequestTimeout)
	}
	return nil
}

// Timeout returns the per-request timeout.
func (nc NetworkConfig) Timeout() time.Duration {
	if nc.RequestTimeout <= 0 {
		return DefaultRequestTimeout
	}
	return time.Duration(nc.RequestTimeout)
}

// IsMainnet returns true if the configuration is for the production network.
func (nc NetworkConfig) IsMainnet() bool {
	return nc.NetworkID == Primary.Section()
}

// TransactionURL returns an explorer link for txID, or "" without an explorer.
func (nc NetworkConfig) TransactionURL(txID string) string {
	if nc.ExplorerURL == "" || txID == "" {
		return ""
	}
	return strings.TrimRight(nc.ExplorerURL, "/") + "/txns/" + txID
}

// Networks holds the parsed configuration of both networks. It is immutable
// once loaded and safe to share between goroutines.
type Networks struct {
	byNetwork map[Network]NetworkConfig
}

// Load parses the embedded configuration document.
func Load() (*Networks, error) {
	return Parse(embeddedNetworks)
}

// Parse parses a configuration document with one section per network.
// A malformed document or a missing or invalid section is an ErrConfig.
func Parse(data []byte) (*Networks, error) {
	var doc map[string]NetworkConfig
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.StageConfig, errors.ErrConfig, fmt.Errorf("decode network document: %w", err))
	}

	networks := &Networks{byNetwork: make(map[Network]NetworkConfig, 2)}
	for _, n := range []Network{Primary, Secondary} {
		cfg, ok := doc[n.Section()]
		if !ok {
			return nil, errors.New(errors.StageConfig, errors.ErrConfig, "missing [%s] section", n.Section())
		}
		cfg.NetworkID = n.Section()
		if err := cfg.Validate(); err != nil {
			return nil, errors.Wrap(errors.StageConfig, errors.ErrConfig, err)
		}
		networks.byNetwork[n] = cfg
	}
	return networks, nil
}

// MustLoad is like Load but panics on error. It is meant for program start-up,
// where a malformed embedded document is fatal.
func MustLoad() *Networks {
	n, err := Load()
	if err != nil {
		panic(err)
	}
	return n
}

// Resolve returns a copy of the configuration for n.
func (ns *Networks) Resolve(n Network) (NetworkConfig, error) {
	cfg, ok := ns.byNetwork[n]
	if !ok {
		return NetworkConfig{}, errors.New(errors.StageConfig, errors.ErrConfig, "no configuration for network %q", n)
	}
	return cfg, nil
}

// With returns a copy of ns with n's configuration replaced by cfg.
func (ns *Networks) With(n Network, cfg NetworkConfig) (*Networks, error) {
	cfg.NetworkID = n.Section()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(errors.StageConfig, errors.ErrConfig, err)
	}
	out := &Networks{byNetwork: make(map[Network]NetworkConfig, len(ns.byNetwork))}
	for k, v := range ns.byNetwork {
		out.byNetwork[k] = v
	}
	out.byNetwork[n] = cfg
	return out, nil
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"
	"time"

	"cosmossdk.io/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sleet-near/hello-near/client"
	"github.com/sleet-near/hello-near/client/config"
	"github.com/sleet-near/hello-near/client/errors"
	"github.com/sleet-near/hello-near/client/keys"
	"github.com/sleet-near/hello-near/client/tx"
)

const envPrefix = "GREETER"

// settings are the global flags after flags, environment and defaults are merged.
type settings struct {
	Network        string        `mapstructure:"network"`
	CredentialsDir string        `mapstructure:"credentials-dir"`
	RPCURL         string        `mapstructure:"rpc-url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	LogLevel       string        `mapstructure:"log-level"`

	// Gas and Deposit are only defined on commands that build transactions.
	Gas     string `mapstructure:"gas"`
	Deposit string `mapstructure:"deposit"`
}

// app holds what the subcommands share. It is filled in by PersistentPreRunE.
type app struct {
	v        *viper.Viper
	opts     []client.Option
	logErr   io.Writer
	settings settings

	logger   log.Logger
	network  config.Network
	registry *prometheus.Registry
	client   *client.Client
	store    *keys.Store
}

// NewRootCmd returns the greeter command tree. opts are passed to client.New.
func NewRootCmd(opts ...client.Option) *cobra.Command {
	a := &app{v: viper.New(), opts: opts, logErr: os.Stderr}

	rootCmd := &cobra.Command{
		Use:           "greeter",
		Short:         "Read and update the hello-near greeting",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("network", "n", config.Secondary.Section(), "network to use: mainnet (primary) or testnet (secondary)")
	flags.String("credentials-dir", "", "credentials directory (default ~/"+keys.DefaultDirName+")")
	flags.String("rpc-url", "", "override the selected network's RPC endpoint")
	flags.Duration("timeout", 0, "per-request timeout (default from network config)")
	flags.String("log-level", zerolog.InfoLevel.String(), "debug, info, warn, error")

	rootCmd.AddCommand(
		viewCmd(a),
		greetingCmd(a),
		callCmd(a),
		previewCmd(a),
		accountsCmd(a),
		statusCmd(a),
		serveCmd(a),
	)
	return rootCmd
}

// load merges flags with GREETER_* environment variables and builds the client.
func (a *app) load(cmd *cobra.Command) error {
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	if err := a.v.Unmarshal(&a.settings); err != nil {
		return fmt.Errorf("read settings: %w", err)
	}

	level, err := zerolog.ParseLevel(a.settings.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", a.settings.LogLevel, err)
	}
	a.logger = log.NewLogger(a.logErr, log.LevelOption(level))

	if a.network, err = config.ParseNetwork(a.settings.Network); err != nil {
		return err
	}
	networks := config.MustLoad()
	if a.settings.RPCURL != "" {
		cfg, err := networks.Resolve(a.network)
		if err != nil {
			return err
		}
		cfg.RPCURL = a.settings.RPCURL
		if networks, err = networks.With(a.network, cfg); err != nil {
			return err
		}
	}

	a.registry = prometheus.NewRegistry()
	opts := []client.Option{
		client.WithLogger(a.logger),
		client.WithTimeout(a.settings.Timeout),
		client.WithMetrics(client.NewMetrics(a.registry)),
	}
	if cmd.Flags().Lookup("gas") != nil {
		builder, err := a.builder()
		if err != nil {
			return err
		}
		opts = append(opts, client.WithBuilder(builder))
	}
	opts = append(opts, a.opts...)
	if a.client, err = client.New(networks, opts...); err != nil {
		return err
	}

	if a.settings.CredentialsDir != "" {
		a.store = keys.NewStore(a.settings.CredentialsDir, a.logger)
	} else if a.store, err = keys.DefaultStore(a.logger); err != nil {
		return err
	}
	return nil
}

// builder turns --gas and --deposit into the transaction policy; unset
// values keep 30 TGas and no deposit.
func (a *app) builder() (tx.Builder, error) {
	gas := tx.DefaultGas
	if a.settings.Gas != "" {
		parsed, err := tx.ParseGas(a.settings.Gas)
		if err != nil {
			return tx.Builder{}, errors.Wrap(errors.StageBuild, errors.ErrInvalidRequest, err)
		}
		gas = parsed
	}
	var deposit *big.Int
	if a.settings.Deposit != "" {
		parsed, err := tx.ParseDeposit(a.settings.Deposit)
		if err != nil {
			return tx.Builder{}, errors.Wrap(errors.StageBuild, errors.ErrInvalidRequest, err)
		}
		deposit = parsed
	}
	return tx.NewBuilder(gas, deposit), nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

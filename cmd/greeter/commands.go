package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sleet-near/hello-near/bridge"
	"github.com/sleet-near/hello-near/client"
	"github.com/sleet-near/hello-near/client/keys"
	"github.com/sleet-near/hello-near/client/query"
	"github.com/sleet-near/hello-near/client/tx"
)

type viewOutput struct {
	Network     string          `json:"network"`
	Method      string          `json:"method"`
	Text        string          `json:"text"`
	JSON        json.RawMessage `json:"json,omitempty"`
	Logs        []string        `json:"logs,omitempty"`
	BlockHeight uint64          `json:"block_height"`
}

type callOutput struct {
	Outcome        *tx.Outcome `json:"outcome"`
	TransactionURL string      `json:"transaction_url,omitempty"`
}

// argsFlag reads --args as raw JSON; empty means {}.
func argsFlag(cmd *cobra.Command) (any, error) {
	raw, err := cmd.Flags().GetString("args")
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}
	return json.RawMessage(raw), nil
}

// signer loads --account from the credential store.
func (a *app) signer(cmd *cobra.Command) (keys.Credential, error) {
	account, err := cmd.Flags().GetString("account")
	if err != nil {
		return keys.Credential{}, err
	}
	if account == "" {
		return keys.Credential{}, fmt.Errorf("--account is required")
	}
	return a.store.Get(a.network, account)
}

func txPolicyFlags(cmd *cobra.Command) {
	cmd.Flags().String("gas", "", `attached gas, e.g. "50 TGas" (default 30 TGas)`)
	cmd.Flags().String("deposit", "", `attached deposit, e.g. "0.1 NEAR" or "100 yocto" (default 0)`)
}

func viewCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [method]",
		Short: "Call a read-only contract method (default get_greeting)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			method := query.GreetingMethod
			if len(args) == 1 {
				method = args[0]
			}
			callArgs, err := argsFlag(cmd)
			if err != nil {
				return err
			}
			res, err := a.client.View(cmd.Context(), a.network, method, callArgs)
			if err != nil {
				return err
			}
			return printJSON(cmd, viewOutput{
				Network:     a.network.Section(),
				Method:      method,
				Text:        res.Text,
				JSON:        res.JSON,
				Logs:        res.Logs,
				BlockHeight: res.BlockHeight,
			})
		},
	}
	cmd.Flags().String("args", "", "JSON arguments")
	return cmd
}

func greetingCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "greeting",
		Short: "Print the current greeting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			greeting, err := a.client.Greeting(cmd.Context(), a.network)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), greeting)
			return err
		},
	}
}

func callCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call <method>",
		Short: "Sign and submit a function call, waiting for the final outcome",
		Long: `Sign and submit a function call to the network's contract as --account.

The command waits until the transaction is final. A transaction the node
rejects before execution is resubmitted with a fresh nonce only when
--max-attempts is greater than one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cred, err := a.signer(cmd)
			if err != nil {
				return err
			}
			callArgs, err := argsFlag(cmd)
			if err != nil {
				return err
			}
			attempts, err := cmd.Flags().GetInt("max-attempts")
			if err != nil {
				return err
			}

			policy := client.DefaultRetryPolicy()
			policy.MaxAttempts = attempts
			out, err := a.client.SubmitWithRetry(cmd.Context(), policy, a.network, cred, args[0], callArgs)
			if out != nil {
				resp := callOutput{Outcome: out}
				if cfg, cfgErr := a.client.Config(a.network); cfgErr == nil {
					resp.TransactionURL = cfg.TransactionURL(out.TransactionID)
				}
				if printErr := printJSON(cmd, resp); printErr != nil {
					return printErr
				}
			}
			return err
		},
	}
	cmd.Flags().String("account", "", "signing account")
	cmd.Flags().String("args", "", "JSON arguments")
	cmd.Flags().Int("max-attempts", 1, "attempts while the node rejects the transaction before execution")
	txPolicyFlags(cmd)
	return cmd
}

func previewCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview [method]",
		Short: "Show the transaction a call would submit, without sending it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			method := client.SetGreetingMethod
			if len(args) == 1 {
				method = args[0]
			}
			cred, err := a.signer(cmd)
			if err != nil {
				return err
			}
			callArgs, err := argsFlag(cmd)
			if err != nil {
				return err
			}
			preview, err := a.client.Preview(a.network, cred, method, callArgs)
			if err != nil {
				return err
			}
			return printJSON(cmd, preview)
		},
	}
	cmd.Flags().String("account", "", "signing account")
	cmd.Flags().String("args", "", "JSON arguments")
	txPolicyFlags(cmd)
	return cmd
}

func accountsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List accounts with stored credentials for the network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			creds, err := a.store.List(a.network)
			if err != nil {
				return err
			}
			redacted := make([]keys.Credential, 0, len(creds))
			for _, c := range creds {
				redacted = append(redacted, c.Redacted())
			}
			return printJSON(cmd, redacted)
		},
	}
}

func statusCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <tx-id>",
		Short: "Look up the final outcome of a submitted transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := cmd.Flags().GetString("account")
			if err != nil {
				return err
			}
			out, err := a.client.Status(cmd.Context(), a.network, args[0], account)
			if out != nil {
				if printErr := printJSON(cmd, callOutput{Outcome: out}); printErr != nil {
					return printErr
				}
			}
			return err
		},
	}
	cmd.Flags().String("account", "", "account that signed the transaction")
	return cmd
}

func serveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the greeting API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.v.BindPFlag("http-port", cmd.Flags().Lookup("port")); err != nil {
				return err
			}
			cfg, err := bridge.NewConfig(a.v)
			if err != nil {
				return err
			}
			return bridge.NewService(cfg, a.client, a.registry, a.logger).Run(cmd.Context())
		},
	}
	cmd.Flags().Int("port", bridge.DefaultHTTPPort, "listen port (env GREETER_HTTP_PORT)")
	return cmd
}

package main

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sleet-near/hello-near/client"
	"github.com/sleet-near/hello-near/client/config"
	"github.com/sleet-near/hello-near/client/errors"
	"github.com/sleet-near/hello-near/client/keys"
	"github.com/sleet-near/hello-near/client/rpc"
	"github.com/sleet-near/hello-near/client/rpc/rpcmocks"
	"github.com/sleet-near/hello-near/client/tx"
)

var anchor = rpc.CryptoHash{4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4}

func credentialsDir(t *testing.T) (string, keys.PublicKey) {
	t.Helper()
	dir := t.TempDir()
	priv := ed25519.NewKeyFromSeed(bytes.Repeat([]byte{9}, ed25519.SeedSize))
	pub := keys.PublicKeyFromEd25519(priv.Public().(ed25519.PublicKey))
	data, err := json.Marshal(map[string]string{
		"account_id":  "alice.testnet",
		"public_key":  pub.String(),
		"private_key": keys.EncodePrivateKey(priv),
	})
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "testnet"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "testnet", "alice.testnet.json"), data, 0o600))
	return dir, pub
}

func run(t *testing.T, gw rpc.Gateway, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd(client.WithGatewayFactory(func(config.NetworkConfig) rpc.Gateway { return gw }))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func finalStatus(t *testing.T, raw string) *rpc.TxStatus {
	var status rpc.ExecutionStatus
	require.NoError(t, json.Unmarshal([]byte(raw), &status))
	return &rpc.TxStatus{FinalExecutionStatus: rpc.TxStatusFinal, Status: &status}
}

func TestGreetingCommand(t *testing.T) {
	gw := rpcmocks.NewGateway(t)
	gw.On("CallViewFunction", mock.Anything, "hello.sleet.near", "get_greeting", []byte("{}")).
		Return(&rpc.CallResult{Result: rpc.ByteArray(`"Hello"`)}, nil).Once()

	out, err := run(t, gw, "greeting", "--network", "mainnet")
	require.NoError(t, err)
	assert.Equal(t, "Hello\n", out)
}

func TestViewCommandWithArgs(t *testing.T) {
	gw := rpcmocks.NewGateway(t)
	gw.On("CallViewFunction", mock.Anything, "hello.sleet.testnet", "get_messages", []byte(`{"limit":2}`)).
		Return(&rpc.CallResult{Result: rpc.ByteArray(`["a","b"]`), BlockHeight: 12}, nil).Once()

	out, err := run(t, gw, "view", "get_messages", "--args", `{"limit":2}`)
	require.NoError(t, err)

	var res viewOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "testnet", res.Network)
	assert.JSONEq(t, `["a","b"]`, string(res.JSON))
	assert.Equal(t, uint64(12), res.BlockHeight)
}

func TestViewCommandRejectsBadArgs(t *testing.T) {
	_, err := run(t, rpcmocks.NewGateway(t), "view", "--args", "{oops")
	require.ErrorIs(t, err, errors.ErrInvalidRequest)
}

func TestCallCommand(t *testing.T) {
	dir, pub := credentialsDir(t)
	gw := rpcmocks.NewGateway(t)
	gw.On("ViewAccessKey", mock.Anything, "alice.testnet", pub).
		Return(&rpc.AccessKeyView{Nonce: 3, Permission: rpc.AccessKeyPermission{FullAccess: true}, BlockHash: anchor}, nil).Once()
	gw.On("BroadcastAndAwait", mock.Anything, mock.Anything).Return(finalStatus(t, `{"SuccessValue":""}`), nil).Once()

	out, err := run(t, gw, "call", "set_greeting", "--credentials-dir", dir, "--account", "alice.testnet",
		"--args", `{"greeting":"cli"}`)
	require.NoError(t, err)

	var res callOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.Outcome.Succeeded())
	assert.Contains(t, res.TransactionURL, res.Outcome.TransactionID)
}

func TestCallCommandReportsExecutionFailure(t *testing.T) {
	dir, pub := credentialsDir(t)
	gw := rpcmocks.NewGateway(t)
	gw.On("ViewAccessKey", mock.Anything, "alice.testnet", pub).
		Return(&rpc.AccessKeyView{Nonce: 3, Permission: rpc.AccessKeyPermission{FullAccess: true}, BlockHash: anchor}, nil).Once()
	gw.On("BroadcastAndAwait", mock.Anything, mock.Anything).
		Return(finalStatus(t, `{"Failure":{"ActionError":{"index":0,"kind":"panic"}}}`), nil).Once()

	out, err := run(t, gw, "call", "set_greeting", "--credentials-dir", dir, "--account", "alice.testnet", "--max-attempts", "3")
	require.ErrorIs(t, err, errors.ErrExecutionFailure)
	assert.Contains(t, out, "execution_failure")
}

func TestCallCommandNeedsAccount(t *testing.T) {
	dir, _ := credentialsDir(t)
	_, err := run(t, rpcmocks.NewGateway(t), "call", "set_greeting", "--credentials-dir", dir)
	require.Error(t, err)

	_, err = run(t, rpcmocks.NewGateway(t), "call", "set_greeting", "--credentials-dir", dir, "--account", "bob.testnet")
	require.ErrorIs(t, err, errors.ErrCredential)
}

func TestPreviewCommand(t *testing.T) {
	dir, _ := credentialsDir(t)
	out, err := run(t, rpcmocks.NewGateway(t), "preview", "--credentials-dir", dir, "--account", "alice.testnet",
		"--args", `{"greeting":"hi"}`, "--timeout", "7s")
	require.NoError(t, err)

	var preview client.Preview
	require.NoError(t, json.Unmarshal([]byte(out), &preview))
	assert.Equal(t, "set_greeting", preview.Method)
	assert.Equal(t, "hello.sleet.testnet", preview.ContractID)
	assert.Equal(t, "7s", preview.Timeout)
}

func TestPreviewCommandGasAndDeposit(t *testing.T) {
	dir, _ := credentialsDir(t)
	out, err := run(t, rpcmocks.NewGateway(t), "preview", "--credentials-dir", dir, "--account", "alice.testnet",
		"--gas", "50 TGas", "--deposit", "0.5 NEAR")
	require.NoError(t, err)

	var preview client.Preview
	require.NoError(t, json.Unmarshal([]byte(out), &preview))
	assert.Equal(t, "50 TGas", preview.Gas)
	assert.Equal(t, "0.5 NEAR", preview.Deposit)

	_, err = run(t, rpcmocks.NewGateway(t), "preview", "--credentials-dir", dir, "--account", "alice.testnet", "--gas", "5 PGas")
	require.ErrorIs(t, err, errors.ErrInvalidRequest)

	_, err = run(t, rpcmocks.NewGateway(t), "preview", "--credentials-dir", dir, "--account", "alice.testnet", "--gas", "301 TGas")
	require.ErrorIs(t, err, errors.ErrSerialization)
}

func TestCallCommandAttachesGasAndDeposit(t *testing.T) {
	dir, pub := credentialsDir(t)
	gw := rpcmocks.NewGateway(t)
	gw.On("ViewAccessKey", mock.Anything, "alice.testnet", pub).
		Return(&rpc.AccessKeyView{Nonce: 3, Permission: rpc.AccessKeyPermission{FullAccess: true}, BlockHash: anchor}, nil).Once()
	gw.On("BroadcastAndAwait", mock.Anything, mock.MatchedBy(func(data []byte) bool {
		signed, err := tx.DecodeSignedTransaction(data)
		if err != nil || len(signed.Transaction.Actions) != 1 {
			return false
		}
		call := signed.Transaction.Actions[0].FunctionCall
		return call.Gas == 50*tx.TeraGas && call.Deposit.String() == "100"
	})).Return(finalStatus(t, `{"SuccessValue":""}`), nil).Once()

	_, err := run(t, gw, "call", "set_greeting", "--credentials-dir", dir, "--account", "alice.testnet",
		"--gas", "50 TGas", "--deposit", "100 yocto")
	require.NoError(t, err)
}

func TestAccountsCommandFromEnvironment(t *testing.T) {
	dir, pub := credentialsDir(t)
	t.Setenv("GREETER_CREDENTIALS_DIR", dir)

	out, err := run(t, rpcmocks.NewGateway(t), "accounts")
	require.NoError(t, err)
	assert.NotContains(t, out, "private_key")

	var creds []keys.Credential
	require.NoError(t, json.Unmarshal([]byte(out), &creds))
	require.Len(t, creds, 1)
	assert.Equal(t, pub.String(), creds[0].PublicKey)
}

func TestStatusCommand(t *testing.T) {
	gw := rpcmocks.NewGateway(t)
	gw.On("TxStatus", mock.Anything, anchor.String(), "alice.testnet").
		Return(finalStatus(t, `{"Failure":{"InvalidTxError":"Expired"}}`), nil).Once()

	out, err := run(t, gw, "status", anchor.String(), "--account", "alice.testnet")
	require.ErrorIs(t, err, errors.ErrRejectedBeforeExecution)
	assert.Contains(t, out, "rejected_before_execution")
}

func TestInvalidGlobalFlags(t *testing.T) {
	_, err := run(t, rpcmocks.NewGateway(t), "greeting", "--network", "betanet")
	require.Error(t, err)

	_, err = run(t, rpcmocks.NewGateway(t), "greeting", "--log-level", "loud")
	require.Error(t, err)

	_, err = run(t, rpcmocks.NewGateway(t), "greeting", "--rpc-url", "not a url")
	require.ErrorIs(t, err, errors.ErrConfig)
}

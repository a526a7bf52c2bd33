package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sleet-near/hello-near/client/config"
	"github.com/sleet-near/hello-near/client/errors"
	"github.com/sleet-near/hello-near/client/rpc"
	"github.com/sleet-near/hello-near/client/tx"
)

// fakeNode serves view_access_key and send_tx for a single full-access key.
// It holds access-key views until `readers` of them are pending, so that
// concurrent submissions observe the same nonce.
type fakeNode struct {
	t       *testing.T
	readers int

	mu       sync.Mutex
	nonce    uint64
	greeting string
	applied  []string

	waiting sync.WaitGroup
}

func newFakeNode(t *testing.T, nonce uint64, readers int) *fakeNode {
	n := &fakeNode{t: t, nonce: nonce, readers: readers}
	n.waiting.Add(readers)
	return n
}

type rpcRequest struct {
	ID     string            `json:"id"`
	Method string            `json:"method"`
	Params map[string]string `json:"params"`
}

func (n *fakeNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var result any
	switch {
	case req.Method == "query" && req.Params["request_type"] == "view_access_key":
		n.waiting.Done()
		done := make(chan struct{})
		go func() { n.waiting.Wait(); close(done) }()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			n.t.Error("readers never arrived")
		}
		n.mu.Lock()
		result = rpc.AccessKeyView{
			Nonce:       n.nonce,
			Permission:  rpc.AccessKeyPermission{FullAccess: true},
			BlockHash:   anchor,
			BlockHeight: 42,
		}
		n.mu.Unlock()
	case req.Method == "send_tx":
		result = n.apply(req.Params["signed_tx_base64"])
	default:
		n.t.Errorf("unexpected call %s", req.Method)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": result})
}

func (n *fakeNode) apply(encoded string) *rpc.TxStatus {
	data, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(n.t, err)
	signed, err := tx.DecodeSignedTransaction(data)
	require.NoError(n.t, err)
	require.NoError(n.t, signed.Verify())

	n.mu.Lock()
	defer n.mu.Unlock()
	status := func(raw string) *rpc.TxStatus {
		var s rpc.ExecutionStatus
		require.NoError(n.t, json.Unmarshal([]byte(raw), &s))
		return &rpc.TxStatus{
			FinalExecutionStatus: rpc.TxStatusFinal,
			Status:               &s,
			Transaction:          &rpc.TransactionView{Hash: signed.ID(), SignerID: signed.Transaction.SignerID, Nonce: signed.Transaction.Nonce},
		}
	}
	if signed.Transaction.Nonce <= n.nonce {
		return status(fmt.Sprintf(`{"Failure":{"InvalidTxError":{"InvalidNonce":{"tx_nonce":%d,"ak_nonce":%d}}}}`,
			signed.Transaction.Nonce, n.nonce))
	}
	fc, ok := signed.Transaction.Actions[0].AsFunctionCall()
	require.True(n.t, ok)
	var args struct {
		Greeting string `json:"greeting"`
	}
	require.NoError(n.t, json.Unmarshal(fc.Args, &args))
	n.nonce = signed.Transaction.Nonce
	n.greeting = args.Greeting
	n.applied = append(n.applied, signed.ID())
	return status(`{"SuccessValue":""}`)
}

func TestConcurrentSubmissionsShareANonce(t *testing.T) {
	node := newFakeNode(t, 10, 2)
	srv := httptest.NewServer(node)
	defer srv.Close()

	networks, err := config.MustLoad().With(config.Secondary, config.NetworkConfig{
		RPCURL:     srv.URL,
		ContractID: "hello.sleet.testnet",
	})
	require.NoError(t, err)
	c, err := New(networks, WithTimeout(10*time.Second))
	require.NoError(t, err)

	cred := testCredential(5)
	first := c.SubmitAsync(context.Background(), config.Secondary, cred, SetGreetingMethod, map[string]string{"greeting": "one"})
	second := c.SubmitAsync(context.Background(), config.Secondary, cred, SetGreetingMethod, map[string]string{"greeting": "two"})

	var succeeded, rejected int
	for _, ch := range []<-chan Result{first, second} {
		res := <-ch
		require.NotNil(t, res.Outcome, "err: %v", res.Err)
		switch res.Outcome.Kind {
		case tx.OutcomeSuccess:
			succeeded++
			require.NoError(t, res.Err)
		case tx.OutcomeRejected:
			rejected++
			require.ErrorIs(t, res.Err, errors.ErrRejectedBeforeExecution)
			require.Contains(t, res.Outcome.Detail, "InvalidNonce")
		default:
			t.Fatalf("unexpected outcome %s", res.Outcome.Kind)
		}
	}
	require.Equal(t, 1, succeeded)
	require.Equal(t, 1, rejected)

	node.mu.Lock()
	defer node.mu.Unlock()
	require.Equal(t, uint64(11), node.nonce)
	require.Len(t, node.applied, 1)
	require.Contains(t, []string{"one", "two"}, node.greeting)
}

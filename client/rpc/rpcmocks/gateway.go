// Package rpcmocks provides a testify mock of rpc.Gateway.
package rpcmocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sleet-near/hello-near/client/keys"
	"github.com/sleet-near/hello-near/client/rpc"
)

// Gateway is a mock rpc.Gateway.
type Gateway struct {
	mock.Mock
}

var _ rpc.Gateway = (*Gateway)(nil)

// NewGateway returns a mock that asserts its expectations when the test ends.
func NewGateway(t interface {
	mock.TestingT
	Cleanup(func())
}) *Gateway {
	m := &Gateway{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *Gateway) LatestFinalizedBlock(ctx context.Context) (*rpc.BlockAnchor, error) {
	args := m.Called(ctx)
	block, _ := args.Get(0).(*rpc.BlockAnchor)
	return block, args.Error(1)
}

func (m *Gateway) ViewAccessKey(ctx context.Context, accountID string, publicKey keys.PublicKey) (*rpc.AccessKeyView, error) {
	args := m.Called(ctx, accountID, publicKey)
	view, _ := args.Get(0).(*rpc.AccessKeyView)
	return view, args.Error(1)
}

func (m *Gateway) CallViewFunction(ctx context.Context, accountID, method string, callArgs []byte) (*rpc.CallResult, error) {
	args := m.Called(ctx, accountID, method, callArgs)
	res, _ := args.Get(0).(*rpc.CallResult)
	return res, args.Error(1)
}

func (m *Gateway) BroadcastAndAwait(ctx context.Context, signedTx []byte) (*rpc.TxStatus, error) {
	args := m.Called(ctx, signedTx)
	status, _ := args.Get(0).(*rpc.TxStatus)
	return status, args.Error(1)
}

func (m *Gateway) TxStatus(ctx context.Context, txHash, senderID string) (*rpc.TxStatus, error) {
	args := m.Called(ctx, txHash, senderID)
	status, _ := args.Get(0).(*rpc.TxStatus)
	return status, args.Error(1)
}

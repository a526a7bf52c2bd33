package tx

import (
	"bytes"
	"crypto/ed25519"

	"github.com/sleet-near/hello-near/client/config"
	"github.com/sleet-near/hello-near/client/keys"
	"github.com/sleet-near/hello-near/client/query"
	"github.com/sleet-near/hello-near/client/rpc"
)

var testnet = config.NetworkConfig{
	NetworkID:  "testnet",
	RPCURL:     "https://rpc.testnet.near.org",
	ContractID: "hello.sleet.testnet",
}

var anchor = rpc.CryptoHash{0xaa, 0xbb, 0xcc, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29}

func testCredential(seed byte) (keys.Credential, ed25519.PrivateKey) {
	priv := ed25519.NewKeyFromSeed(bytes.Repeat([]byte{seed}, ed25519.SeedSize))
	return keys.Credential{
		AccountID:  "alice.testnet",
		PublicKey:  keys.PublicKeyFromEd25519(priv.Public().(ed25519.PublicKey)).String(),
		PrivateKey: keys.EncodePrivateKey(priv),
		Network:    "testnet",
	}, priv
}

func testState(nonce uint64) query.AccessKeyState {
	return query.AccessKeyState{
		Nonce:       nonce,
		BlockHash:   anchor,
		BlockHeight: 100,
		Permission:  rpc.AccessKeyPermission{FullAccess: true},
	}
}

func greetingArgs(greeting string) map[string]string {
	return map[string]string{"greeting": greeting}
}

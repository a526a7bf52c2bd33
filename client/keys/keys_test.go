package keys

import (
	"bytes"
	"crypto/ed25519"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/require"
)

func testKey(seedByte byte) ed25519.PrivateKey {
	return ed25519.NewKeyFromSeed(bytes.Repeat([]byte{seedByte}, ed25519.SeedSize))
}

func TestParsePublicKey(t *testing.T) {
	priv := testKey(1)
	pub := priv.Public().(ed25519.PublicKey)
	encoded := "ed25519:" + base58.Encode(pub)

	pk, err := ParsePublicKey(encoded)
	require.NoError(t, err)
	require.Equal(t, ED25519, pk.KeyType)
	require.Equal(t, []byte(pub), pk.Data[:])
	require.Equal(t, encoded, pk.String())
	require.False(t, pk.IsZero())

	bare, err := ParsePublicKey(base58.Encode(pub))
	require.NoError(t, err)
	require.Equal(t, pk, bare)

	tests := []struct {
		name string
		in   string
	}{
		{name: "empty", in: ""},
		{name: "secp256k1 prefix", in: "secp256k1:" + base58.Encode(pub)},
		{name: "bad base58", in: "ed25519:0OIl"},
		{name: "short", in: "ed25519:" + base58.Encode(pub[:31])},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePublicKey(tt.in)
			require.Error(t, err)
		})
	}
}

func TestPublicKeyText(t *testing.T) {
	pk := PublicKeyFromEd25519(testKey(2).Public().(ed25519.PublicKey))

	text, err := pk.MarshalText()
	require.NoError(t, err)

	var back PublicKey
	require.NoError(t, back.UnmarshalText(text))
	require.Equal(t, pk, back)
}

func TestDecodePrivateKey(t *testing.T) {
	priv := testKey(3)

	key, err := DecodePrivateKey(EncodePrivateKey(priv))
	require.NoError(t, err)
	require.Equal(t, ed25519.PrivateKeySize, key.Size())
	require.NoError(t, key.Use(func(b []byte) error {
		require.Equal(t, []byte(priv), b)
		return nil
	}))
	key.Clear()
	require.True(t, key.IsCleared())

	seedOnly, err := DecodePrivateKey("ed25519:" + base58.Encode(priv.Seed()))
	require.NoError(t, err)
	defer seedOnly.Clear()
	require.NoError(t, seedOnly.Use(func(b []byte) error {
		require.Equal(t, []byte(priv), b)
		return nil
	}))

	_, err = DecodePrivateKey("ed25519:" + base58.Encode([]byte{1, 2, 3}))
	require.Error(t, err)
}

func TestDecodePrivateKeyRejectsSplicedKey(t *testing.T) {
	spliced := append(append([]byte{}, testKey(4).Seed()...), testKey(3).Public().(ed25519.PublicKey)...)

	_, err := DecodePrivateKey("ed25519:" + base58.Encode(spliced))
	require.ErrorContains(t, err, "does not match its seed")

	cred := Credential{
		AccountID:  "alice.testnet",
		PublicKey:  PublicKeyFromEd25519(testKey(3).Public().(ed25519.PublicKey)).String(),
		PrivateKey: "ed25519:" + base58.Encode(spliced),
	}
	require.Error(t, cred.Validate())
}

func TestPublicKeyFromPrivate(t *testing.T) {
	priv := testKey(4)

	pk, err := PublicKeyFromPrivate(EncodePrivateKey(priv))
	require.NoError(t, err)
	require.Equal(t, PublicKeyFromEd25519(priv.Public().(ed25519.PublicKey)), pk)
}

func TestVerify(t *testing.T) {
	priv := testKey(5)
	pk := PublicKeyFromEd25519(priv.Public().(ed25519.PublicKey))

	msg := []byte("hash")
	var sig Signature
	sig.KeyType = ED25519
	copy(sig.Data[:], ed25519.Sign(priv, msg))

	require.True(t, pk.Verify(msg, sig))
	require.False(t, pk.Verify([]byte("other"), sig))

	other := PublicKeyFromEd25519(testKey(6).Public().(ed25519.PublicKey))
	require.False(t, other.Verify(msg, sig))
}

func TestCredentialValidate(t *testing.T) {
	priv := testKey(7)
	pub := PublicKeyFromEd25519(priv.Public().(ed25519.PublicKey)).String()

	tests := []struct {
		name     string
		cred     Credential
		wantErr  bool
		canSign  bool
		errorMsg string
	}{
		{
			name:    "full",
			cred:    Credential{AccountID: "alice.testnet", PublicKey: pub, PrivateKey: EncodePrivateKey(priv)},
			canSign: true,
		},
		{
			name: "display only",
			cred: Credential{AccountID: "alice.testnet", PublicKey: pub},
		},
		{
			name:     "bad account",
			cred:     Credential{AccountID: "Alice", PublicKey: pub},
			wantErr:  true,
			errorMsg: "AccountID",
		},
		{
			name:     "missing public key",
			cred:     Credential{AccountID: "alice.testnet"},
			wantErr:  true,
			errorMsg: "PublicKey",
		},
		{
			name:     "mismatched private key",
			cred:     Credential{AccountID: "alice.testnet", PublicKey: pub, PrivateKey: EncodePrivateKey(testKey(8))},
			wantErr:  true,
			canSign:  true,
			errorMsg: "does not match",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.canSign, tt.cred.CanSign())
			err := tt.cred.Validate()
			if tt.wantErr {
				require.Error(t, err)
				require.Contains(t, err.Error(), tt.errorMsg)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestCredentialRedacted(t *testing.T) {
	priv := testKey(9)
	cred := Credential{
		AccountID:  "bob.near",
		PublicKey:  PublicKeyFromEd25519(priv.Public().(ed25519.PublicKey)).String(),
		PrivateKey: EncodePrivateKey(priv),
	}

	redacted := cred.Redacted()
	require.Empty(t, redacted.PrivateKey)
	require.NotEmpty(t, cred.PrivateKey)
	require.NotContains(t, cred.String(), cred.PrivateKey)
}

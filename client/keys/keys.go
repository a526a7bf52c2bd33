// Package keys handles key material and credentials for signing transactions.
package keys

import (
	"bytes"
	"crypto/ed25519"
	"fmt"
	"strings"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"

	"github.com/sleet-near/hello-near/crypto/secure"
)

// KeyType is the curve tag used in encoded keys and signatures.
type KeyType uint8

const (
	// ED25519 is the only key type this client signs with.
	ED25519 KeyType = 0
)

const ed25519Prefix = "ed25519"

// String implements fmt.Stringer.
func (kt KeyType) String() string {
	switch kt {
	case ED25519:
		return ed25519Prefix
	default:
		return fmt.Sprintf("unknown(%d)", uint8(kt))
	}
}

// PublicKey is a typed public key. Field order matches the canonical encoding.
type PublicKey struct {
	KeyType KeyType
	Data    [ed25519.PublicKeySize]byte
}

// ParsePublicKey parses "ed25519:<base58>". A missing prefix is read as ed25519.
// The key must decode to a point on the curve.
func ParsePublicKey(s string) (PublicKey, error) {
	raw, err := decodeTyped(s)
	if err != nil {
		return PublicKey{}, fmt.Errorf("public key: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return PublicKey{}, fmt.Errorf("public key: expected %d bytes, got %d", ed25519.PublicKeySize, len(raw))
	}
	if _, err := new(edwards25519.Point).SetBytes(raw); err != nil {
		return PublicKey{}, fmt.Errorf("public key: not a valid curve point: %w", err)
	}
	var pk PublicKey
	pk.KeyType = ED25519
	copy(pk.Data[:], raw)
	return pk, nil
}

// PublicKeyFromEd25519 converts a stdlib key.
func PublicKeyFromEd25519(pub ed25519.PublicKey) PublicKey {
	var pk PublicKey
	pk.KeyType = ED25519
	copy(pk.Data[:], pub)
	return pk
}

// Ed25519 returns the key as a stdlib ed25519.PublicKey.
func (pk PublicKey) Ed25519() ed25519.PublicKey {
	out := make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(out, pk.Data[:])
	return out
}

// String returns the "ed25519:<base58>" form.
func (pk PublicKey) String() string {
	return pk.KeyType.String() + ":" + base58.Encode(pk.Data[:])
}

// IsZero reports whether the key is unset.
func (pk PublicKey) IsZero() bool {
	return pk == PublicKey{}
}

// MarshalText implements encoding.TextMarshaler.
func (pk PublicKey) MarshalText() ([]byte, error) {
	return []byte(pk.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (pk *PublicKey) UnmarshalText(text []byte) error {
	parsed, err := ParsePublicKey(string(text))
	if err != nil {
		return err
	}
	*pk = parsed
	return nil
}

// Verify reports whether sig is a valid signature of msg by pk.
func (pk PublicKey) Verify(msg []byte, sig Signature) bool {
	if pk.KeyType != ED25519 || sig.KeyType != ED25519 {
		return false
	}
	return ed25519.Verify(pk.Data[:], msg, sig.Data[:])
}

// Signature is a typed signature. Field order matches the canonical encoding.
type Signature struct {
	KeyType KeyType
	Data    [ed25519.SignatureSize]byte
}

// String returns the "ed25519:<base58>" form.
func (s Signature) String() string {
	return s.KeyType.String() + ":" + base58.Encode(s.Data[:])
}

// DecodePrivateKey decodes "ed25519:<base58>" into a zeroizing buffer holding a
// 64-byte ed25519 private key. A 32-byte seed is expanded. The caller must Clear it.
func DecodePrivateKey(s string) (*secure.SecureBytes, error) {
	raw, err := decodeTyped(s)
	if err != nil {
		return nil, fmt.Errorf("private key: %w", err)
	}
	defer secure.Zeroize(raw)

	switch len(raw) {
	case ed25519.PrivateKeySize:
		// The trailing half is the public key; it must be the one the seed derives.
		priv := ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize])
		defer secure.Zeroize(priv)
		if !bytes.Equal(priv[ed25519.SeedSize:], raw[ed25519.SeedSize:]) {
			return nil, fmt.Errorf("private key: embedded public key does not match its seed")
		}
		return secure.FromBytes(priv), nil
	case ed25519.SeedSize:
		priv := ed25519.NewKeyFromSeed(raw)
		defer secure.Zeroize(priv)
		return secure.FromBytes(priv), nil
	default:
		return nil, fmt.Errorf("private key: expected %d or %d bytes, got %d", ed25519.PrivateKeySize, ed25519.SeedSize, len(raw))
	}
}

// PublicKeyFromPrivate derives the public key of an encoded private key.
func PublicKeyFromPrivate(s string) (PublicKey, error) {
	key, err := DecodePrivateKey(s)
	if err != nil {
		return PublicKey{}, err
	}
	defer key.Clear()

	var pk PublicKey
	err = key.Use(func(b []byte) error {
		pk = PublicKeyFromEd25519(ed25519.PrivateKey(b).Public().(ed25519.PublicKey))
		return nil
	})
	return pk, err
}

// EncodePrivateKey returns the "ed25519:<base58>" form of priv.
func EncodePrivateKey(priv ed25519.PrivateKey) string {
	return ed25519Prefix + ":" + base58.Encode(priv)
}

func decodeTyped(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty key")
	}
	body := s
	if prefix, rest, ok := strings.Cut(s, ":"); ok {
		if prefix != ed25519Prefix {
			return nil, fmt.Errorf("unsupported key type %q", prefix)
		}
		body = rest
	}
	raw, err := base58.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("invalid base58: %w", err)
	}
	return raw, nil
}

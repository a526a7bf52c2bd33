package tx

import (
	"crypto/ed25519"
	"crypto/sha256"

	"cosmossdk.io/log"

	"github.com/sleet-near/hello-near/client/errors"
	"github.com/sleet-near/hello-near/client/keys"
)

// Signer signs transactions with an encoded ed25519 private key.
type Signer struct {
	logger log.Logger
}

// NewSigner returns a signer.
func NewSigner(logger log.Logger) *Signer {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Signer{logger: logger.With("module", "signer")}
}

// Sign encodes tx, hashes it and signs the hash. The key must belong to
// tx.PublicKey, and the signature is verified before it is returned. The
// decoded key is wiped when Sign returns.
func (s *Signer) Sign(tx *Transaction, privateKey string) (*SignedTransaction, error) {
	if tx == nil {
		return nil, errors.New(errors.StageSign, errors.ErrSigning, "transaction is nil")
	}
	if privateKey == "" {
		return nil, errors.New(errors.StageSign, errors.ErrSigning, "no private key for %s", tx.SignerID)
	}
	key, err := keys.DecodePrivateKey(privateKey)
	if err != nil {
		return nil, errors.Wrap(errors.StageSign, errors.ErrSigning, err)
	}
	defer key.Clear()

	body, err := Encode(tx)
	if err != nil {
		return nil, err
	}
	hash := sha256.Sum256(body)

	var sig keys.Signature
	err = key.Use(func(priv []byte) error {
		pub := keys.PublicKeyFromEd25519(ed25519.PrivateKey(priv).Public().(ed25519.PublicKey))
		if pub != tx.PublicKey {
			return errors.New(errors.StageSign, errors.ErrSigning,
				"private key belongs to %s, transaction names %s", pub, tx.PublicKey)
		}
		sig.KeyType = keys.ED25519
		copy(sig.Data[:], ed25519.Sign(ed25519.PrivateKey(priv), hash[:]))
		return nil
	})
	if err != nil {
		return nil, errors.WithStage(errors.StageSign, errors.ErrSigning, err)
	}

	signed := &SignedTransaction{
		Transaction: tx.clone(),
		Signature:   sig,
		Hash:        hash,
		encoded:     body,
	}
	if !tx.PublicKey.Verify(hash[:], sig) {
		return nil, errors.New(errors.StageSign, errors.ErrSigning, "signature failed verification")
	}

	s.logger.Debug("signed transaction", "signer", tx.SignerID, "nonce", tx.Nonce, "tx", signed.ID())
	return signed, nil
}

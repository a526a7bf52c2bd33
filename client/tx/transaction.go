// Package tx builds, signs and submits function-call transactions.
package tx

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"math/big"

	"github.com/mr-tron/base58"
	"github.com/near/borsh-go"

	"github.com/sleet-near/hello-near/client/errors"
	"github.com/sleet-near/hello-near/client/keys"
	"github.com/sleet-near/hello-near/client/rpc"
)

// Action variant indexes in the canonical encoding.
const (
	ActionCreateAccount borsh.Enum = iota
	ActionDeployContract
	ActionFunctionCall
)

// Transaction is the unsigned record. Field order is the wire order.
type Transaction struct {
	SignerID   string
	PublicKey  keys.PublicKey
	Nonce      uint64
	ReceiverID string
	BlockHash  rpc.CryptoHash
	Actions    []Action
}

func (t *Transaction) clone() Transaction {
	out := *t
	out.Actions = make([]Action, len(t.Actions))
	for i, a := range t.Actions {
		a.DeployContract.Code = append([]byte(nil), a.DeployContract.Code...)
		a.FunctionCall.Args = append([]byte(nil), a.FunctionCall.Args...)
		a.FunctionCall.Deposit = *new(big.Int).Set(&t.Actions[i].FunctionCall.Deposit)
		out.Actions[i] = a
	}
	return out
}

// Action is a tagged union; only the field selected by Enum is encoded.
type Action struct {
	Enum           borsh.Enum `borsh_enum:"true"`
	CreateAccount  CreateAccount
	DeployContract DeployContract
	FunctionCall   FunctionCall
}

// CreateAccount carries no data.
type CreateAccount struct{}

// DeployContract uploads contract code.
type DeployContract struct {
	Code []byte
}

// FunctionCall invokes a contract method.
type FunctionCall struct {
	MethodName string
	Args       []byte
	Gas        uint64
	// Deposit is encoded as u128 yoctoNEAR.
	Deposit big.Int
}

// NewFunctionCallAction returns an Action invoking method.
func NewFunctionCallAction(method string, args []byte, gas uint64, deposit *big.Int) Action {
	fc := FunctionCall{MethodName: method, Args: args, Gas: gas}
	if deposit != nil {
		fc.Deposit.Set(deposit)
	}
	return Action{Enum: ActionFunctionCall, FunctionCall: fc}
}

// AsFunctionCall returns the function call if a is one.
func (a Action) AsFunctionCall() (*FunctionCall, bool) {
	if a.Enum != ActionFunctionCall {
		return nil, false
	}
	fc := a.FunctionCall
	return &fc, true
}

// Encode returns the canonical encoding of tx. Equal records always produce
// equal bytes.
func Encode(tx *Transaction) ([]byte, error) {
	if tx == nil {
		return nil, errors.New(errors.StageBuild, errors.ErrSerialization, "transaction is nil")
	}
	for i, a := range tx.Actions {
		if fc, ok := a.AsFunctionCall(); ok && fc.Deposit.Sign() < 0 {
			return nil, errors.New(errors.StageBuild, errors.ErrSerialization, "action %d: negative deposit", i)
		}
	}
	data, err := borsh.Serialize(*tx)
	if err != nil {
		return nil, errors.Wrap(errors.StageBuild, errors.ErrSerialization, err)
	}
	return data, nil
}

// Hash returns the SHA-256 digest of tx's encoding.
func Hash(tx *Transaction) (rpc.CryptoHash, error) {
	data, err := Encode(tx)
	if err != nil {
		return rpc.CryptoHash{}, err
	}
	return sha256.Sum256(data), nil
}

// SignedTransaction pairs a transaction with its signature. It keeps the exact
// bytes that were signed, so later changes to Transaction cannot alter what
// is broadcast.
type SignedTransaction struct {
	Transaction Transaction
	Signature   keys.Signature
	Hash        rpc.CryptoHash

	encoded []byte
}

type signedTransactionWire struct {
	Transaction Transaction
	Signature   keys.Signature
}

// ID is the base58 transaction hash, as shown by explorers.
func (s *SignedTransaction) ID() string {
	return base58.Encode(s.Hash[:])
}

// Encode returns the canonical encoding of the signed envelope.
func (s *SignedTransaction) Encode() ([]byte, error) {
	if len(s.encoded) == 0 {
		return nil, errors.New(errors.StageBroadcast, errors.ErrSerialization, "signed transaction has no encoded body")
	}
	sig, err := borsh.Serialize(s.Signature)
	if err != nil {
		return nil, errors.Wrap(errors.StageBroadcast, errors.ErrSerialization, err)
	}
	out := make([]byte, 0, len(s.encoded)+len(sig))
	out = append(out, s.encoded...)
	return append(out, sig...), nil
}

// Verify checks that the record still encodes to the signed bytes, that Hash
// is their digest and that Signature is valid for the record's public key.
func (s *SignedTransaction) Verify() error {
	current, err := Encode(&s.Transaction)
	if err != nil {
		return err
	}
	if !bytes.Equal(current, s.encoded) {
		return errors.New(errors.StageSign, errors.ErrSigning, "transaction was modified after signing")
	}
	if sha256.Sum256(s.encoded) != [32]byte(s.Hash) {
		return errors.New(errors.StageSign, errors.ErrSigning, "hash does not match transaction")
	}
	if !s.Transaction.PublicKey.Verify(s.Hash[:], s.Signature) {
		return errors.New(errors.StageSign, errors.ErrSigning, "signature does not verify against %s", s.Transaction.PublicKey)
	}
	return nil
}

// DecodeSignedTransaction parses a canonical signed envelope. Trailing or
// non-canonical bytes are rejected.
func DecodeSignedTransaction(data []byte) (*SignedTransaction, error) {
	var wire signedTransactionWire
	if err := deserialize(&wire, data); err != nil {
		return nil, errors.Wrap(errors.StageBroadcast, errors.ErrSerialization, err)
	}
	body, err := Encode(&wire.Transaction)
	if err != nil {
		return nil, err
	}
	signed := &SignedTransaction{
		Transaction: wire.Transaction,
		Signature:   wire.Signature,
		Hash:        sha256.Sum256(body),
		encoded:     body,
	}
	again, err := signed.Encode()
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(again, data) {
		return nil, errors.New(errors.StageBroadcast, errors.ErrSerialization,
			"signed transaction is not canonical (%d bytes, expected %d)", len(data), len(again))
	}
	return signed, nil
}

// deserialize guards against panics inside the reflective decoder on hostile input.
func deserialize(v any, data []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decode: %v", r)
		}
	}()
	return borsh.Deserialize(v, data)
}

package rpc

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// Finality values accepted by the node.
const (
	FinalityFinal      = "final"
	FinalityOptimistic = "optimistic"
)

// Execution status levels reported in final_execution_status / used as wait_until.
const (
	TxStatusNone               = "NONE"
	TxStatusIncluded           = "INCLUDED"
	TxStatusExecutedOptimistic = "EXECUTED_OPTIMISTIC"
	TxStatusIncludedFinal      = "INCLUDED_FINAL"
	TxStatusExecuted           = "EXECUTED"
	TxStatusFinal              = "FINAL"
)

// CryptoHash is a 32-byte hash, rendered in base58.
type CryptoHash [32]byte

// ParseCryptoHash decodes a base58 hash.
func ParseCryptoHash(s string) (CryptoHash, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return CryptoHash{}, fmt.Errorf("invalid base58 hash %q: %w", s, err)
	}
	if len(raw) != len(CryptoHash{}) {
		return CryptoHash{}, fmt.Errorf("hash %q: expected 32 bytes, got %d", s, len(raw))
	}
	var h CryptoHash
	copy(h[:], raw)
	return h, nil
}

// String returns the base58 form.
func (h CryptoHash) String() string {
	return base58.Encode(h[:])
}

// IsZero reports whether the hash is unset.
func (h CryptoHash) IsZero() bool {
	return h == CryptoHash{}
}

// MarshalText implements encoding.TextMarshaler.
func (h CryptoHash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *CryptoHash) UnmarshalText(text []byte) error {
	parsed, err := ParseCryptoHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// BlockAnchor identifies a recent finalized block.
type BlockAnchor struct {
	Hash   CryptoHash
	Height uint64
}

type blockView struct {
	Header struct {
		Hash   CryptoHash `json:"hash"`
		Height uint64     `json:"height"`
	} `json:"header"`
}

// FunctionCallPermission restricts an access key to one receiver and optionally some methods.
type FunctionCallPermission struct {
	Allowance   *string  `json:"allowance"`
	ReceiverID  string   `json:"receiver_id"`
	MethodNames []string `json:"method_names"`
}

// AccessKeyPermission is either full access or a function-call allowance.
type AccessKeyPermission struct {
	FullAccess   bool
	FunctionCall *FunctionCallPermission
}

// UnmarshalJSON accepts "FullAccess" or {"FunctionCall": {...}}.
func (p *AccessKeyPermission) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "FullAccess" {
			return fmt.Errorf("unknown access key permission %q", s)
		}
		*p = AccessKeyPermission{FullAccess: true}
		return nil
	}
	var obj struct {
		FunctionCall *FunctionCallPermission `json:"FunctionCall"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if obj.FunctionCall == nil {
		return fmt.Errorf("unknown access key permission %s", string(data))
	}
	*p = AccessKeyPermission{FunctionCall: obj.FunctionCall}
	return nil
}

// MarshalJSON is the inverse of UnmarshalJSON.
func (p AccessKeyPermission) MarshalJSON() ([]byte, error) {
	if p.FunctionCall != nil {
		return json.Marshal(map[string]*FunctionCallPermission{"FunctionCall": p.FunctionCall})
	}
	return json.Marshal("FullAccess")
}

// Allows reports whether a key with this permission may call method on receiver
// with no attached deposit.
func (p AccessKeyPermission) Allows(receiver, method string) bool {
	if p.FullAccess {
		return true
	}
	if p.FunctionCall == nil || p.FunctionCall.ReceiverID != receiver {
		return false
	}
	if len(p.FunctionCall.MethodNames) == 0 {
		return true
	}
	for _, m := range p.FunctionCall.MethodNames {
		if m == method {
			return true
		}
	}
	return false
}

// AccessKeyView is the node's view of one access key, together with the block
// the view was taken at.
type AccessKeyView struct {
	Nonce       uint64              `json:"nonce"`
	Permission  AccessKeyPermission `json:"permission"`
	BlockHash   CryptoHash          `json:"block_hash"`
	BlockHeight uint64              `json:"block_height"`
}

// ByteArray decodes a JSON array of numbers into bytes.
type ByteArray []byte

// UnmarshalJSON implements json.Unmarshaler.
func (b *ByteArray) UnmarshalJSON(data []byte) error {
	// []uint8 would be read as base64, so decode through a wider type.
	var wide []uint16
	if err := json.Unmarshal(data, &wide); err != nil {
		return err
	}
	nums := make([]byte, len(wide))
	for i, n := range wide {
		if n > 0xff {
			return fmt.Errorf("byte value %d out of range at index %d", n, i)
		}
		nums[i] = byte(n)
	}
	*b = nums
	return nil
}

// MarshalJSON encodes bytes as an array of numbers.
func (b ByteArray) MarshalJSON() ([]byte, error) {
	wide := make([]uint16, len(b))
	for i, v := range b {
		wide[i] = uint16(v)
	}
	return json.Marshal(wide)
}

// CallResult is the result of a read-only function call.
type CallResult struct {
	Result      ByteArray  `json:"result"`
	Logs        []string   `json:"logs"`
	BlockHeight uint64     `json:"block_height"`
	BlockHash   CryptoHash `json:"block_hash"`
}

// ExecutionStatus is the status of a transaction or receipt. Exactly one field
// is set; Pending covers "NotStarted", "Started" and "Unknown".
type ExecutionStatus struct {
	SuccessValue     *string
	SuccessReceiptID *string
	Failure          json.RawMessage
	Pending          string
}

// UnmarshalJSON accepts the string and object forms.
func (s *ExecutionStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = ExecutionStatus{Pending: str}
		return nil
	}
	var obj struct {
		SuccessValue     *string         `json:"SuccessValue"`
		SuccessReceiptID *string         `json:"SuccessReceiptId"`
		Failure          json.RawMessage `json:"Failure"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if obj.SuccessValue == nil && obj.SuccessReceiptID == nil && len(obj.Failure) == 0 {
		return fmt.Errorf("unknown execution status %s", string(data))
	}
	*s = ExecutionStatus{
		SuccessValue:     obj.SuccessValue,
		SuccessReceiptID: obj.SuccessReceiptID,
		Failure:          obj.Failure,
	}
	return nil
}

// MarshalJSON is the inverse of UnmarshalJSON.
func (s ExecutionStatus) MarshalJSON() ([]byte, error) {
	switch {
	case s.SuccessValue != nil:
		return json.Marshal(map[string]string{"SuccessValue": *s.SuccessValue})
	case s.SuccessReceiptID != nil:
		return json.Marshal(map[string]string{"SuccessReceiptId": *s.SuccessReceiptID})
	case len(s.Failure) > 0:
		return json.Marshal(map[string]json.RawMessage{"Failure": s.Failure})
	default:
		return json.Marshal(s.Pending)
	}
}

// IsSuccess reports whether the status is a success.
func (s ExecutionStatus) IsSuccess() bool {
	return s.SuccessValue != nil || s.SuccessReceiptID != nil
}

// IsFailure reports whether the status is a failure.
func (s ExecutionStatus) IsFailure() bool {
	return len(s.Failure) > 0
}

// DecodedValue returns the base64-decoded SuccessValue, or nil.
func (s ExecutionStatus) DecodedValue() ([]byte, error) {
	if s.SuccessValue == nil {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(*s.SuccessValue)
}

// TxExecutionError is the failure of a transaction. One of the fields is set.
type TxExecutionError struct {
	ActionError    json.RawMessage `json:"ActionError,omitempty"`
	InvalidTxError json.RawMessage `json:"InvalidTxError,omitempty"`
}

// ParseFailure decodes a Failure payload.
func ParseFailure(raw json.RawMessage) (TxExecutionError, error) {
	var f TxExecutionError
	if len(raw) == 0 {
		return f, nil
	}
	if err := json.Unmarshal(raw, &f); err != nil {
		return f, err
	}
	return f, nil
}

// Outcome is the execution outcome of one transaction or receipt.
type Outcome struct {
	Logs        []string        `json:"logs"`
	ReceiptIDs  []string        `json:"receipt_ids"`
	GasBurnt    uint64          `json:"gas_burnt"`
	TokensBurnt string          `json:"tokens_burnt"`
	ExecutorID  string          `json:"executor_id"`
	Status      ExecutionStatus `json:"status"`
}

// OutcomeWithID pairs an outcome with its transaction or receipt id.
type OutcomeWithID struct {
	ID        string  `json:"id"`
	BlockHash string  `json:"block_hash"`
	Outcome   Outcome `json:"outcome"`
}

// TransactionView is the echoed transaction in a status response.
type TransactionView struct {
	Hash       string `json:"hash"`
	SignerID   string `json:"signer_id"`
	ReceiverID string `json:"receiver_id"`
	Nonce      uint64 `json:"nonce"`
	PublicKey  string `json:"public_key"`
}

// TxStatus is the node's report on a submitted transaction.
type TxStatus struct {
	FinalExecutionStatus string           `json:"final_execution_status"`
	Status               *ExecutionStatus `json:"status,omitempty"`
	Transaction          *TransactionView `json:"transaction,omitempty"`
	TransactionOutcome   *OutcomeWithID   `json:"transaction_outcome,omitempty"`
	ReceiptsOutcome      []OutcomeWithID  `json:"receipts_outcome,omitempty"`
}

// IsFinal reports whether the node considers the outcome final. Responses
// from nodes that predate final_execution_status are final when a terminal
// status is present.
func (s *TxStatus) IsFinal() bool {
	switch s.FinalExecutionStatus {
	case TxStatusFinal:
		return true
	case "":
		return s.Status != nil && (s.Status.IsSuccess() || s.Status.IsFailure())
	default:
		return false
	}
}

// Logs returns the logs of the transaction and all its receipts in order.
func (s *TxStatus) Logs() []string {
	var logs []string
	if s.TransactionOutcome != nil {
		logs = append(logs, s.TransactionOutcome.Outcome.Logs...)
	}
	for _, r := range s.ReceiptsOutcome {
		logs = append(logs, r.Outcome.Logs...)
	}
	return logs
}

// GasBurnt sums gas burnt by the transaction and its receipts.
func (s *TxStatus) GasBurnt() uint64 {
	var total uint64
	if s.TransactionOutcome != nil {
		total += s.TransactionOutcome.Outcome.GasBurnt
	}
	for _, r := range s.ReceiptsOutcome {
		total += r.Outcome.GasBurnt
	}
	return total
}

// Node error cause names.
const (
	CauseUnknownAccessKey       = "UNKNOWN_ACCESS_KEY"
	CauseUnknownAccount         = "UNKNOWN_ACCOUNT"
	CauseInvalidAccount         = "INVALID_ACCOUNT"
	CauseInvalidTransaction     = "INVALID_TRANSACTION"
	CauseTimeout                = "TIMEOUT_ERROR"
	CauseUnknownBlock           = "UNKNOWN_BLOCK"
	CauseUnknownTransaction     = "UNKNOWN_TRANSACTION"
	CauseNoContractCode         = "NO_CONTRACT_CODE"
	CauseContractExecutionError = "CONTRACT_EXECUTION_ERROR"
	CauseParseError             = "PARSE_ERROR"
	CauseInternalError          = "INTERNAL_ERROR"
	CauseMalformedResponse      = "MALFORMED_RESPONSE"
)

// ErrorCause is the structured cause attached to node errors.
type ErrorCause struct {
	Name string          `json:"name"`
	Info json.RawMessage `json:"info,omitempty"`
}

// Error is a JSON-RPC error returned by the node.
type Error struct {
	Code    int64           `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
	Name    string          `json:"name,omitempty"`
	Cause   *ErrorCause     `json:"cause,omitempty"`
}

// Error implements error.
func (e *Error) Error() string {
	var b bytes.Buffer
	if e.Name != "" {
		b.WriteString(e.Name)
	} else {
		fmt.Fprintf(&b, "rpc error %d", e.Code)
	}
	if name := e.CauseName(); name != "" {
		b.WriteString(" (")
		b.WriteString(name)
		b.WriteString(")")
	}
	if detail := e.Detail(); detail != "" {
		b.WriteString(": ")
		b.WriteString(detail)
	}
	return b.String()
}

// CauseName returns the cause name, or "".
func (e *Error) CauseName() string {
	if e.Cause == nil {
		return ""
	}
	return e.Cause.Name
}

// HasCause reports whether err carries a node error with cause name.
func HasCause(err error, name string) bool {
	var rpcErr *Error
	return errors.As(err, &rpcErr) && rpcErr.CauseName() == name
}

// Detail returns the most specific human-readable text the node supplied.
func (e *Error) Detail() string {
	if e.Cause != nil && len(e.Cause.Info) > 0 && string(e.Cause.Info) != "null" && string(e.Cause.Info) != "{}" {
		return string(e.Cause.Info)
	}
	if len(e.Data) > 0 {
		var s string
		if err := json.Unmarshal(e.Data, &s); err == nil {
			return s
		}
		return string(e.Data)
	}
	return e.Message
}

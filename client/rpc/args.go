package rpc

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// EncodeArgs renders function-call arguments as UTF-8 JSON. nil becomes {};
// []byte, json.RawMessage and string are taken as an already-encoded document
// and only checked; anything else goes through encoding/json.
func EncodeArgs(args any) ([]byte, error) {
	var raw []byte
	switch v := args.(type) {
	case nil:
		return []byte("{}"), nil
	case json.RawMessage:
		raw = append([]byte(nil), v...)
	case []byte:
		raw = append([]byte(nil), v...)
	case string:
		raw = []byte(v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode args: %w", err)
		}
		return encoded, nil
	}

	if len(raw) == 0 {
		return []byte("{}"), nil
	}
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("args are not valid UTF-8")
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("args are not valid JSON")
	}
	return raw, nil
}

// Package membershipv1 defines the membership RPC surface: procedure names,
// request and response messages, and the JSON codec both ends speak.
package membershipv1

import (
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
)

// Codec encodes messages as plain JSON. It replaces the built-in "json"
// codec, which only accepts protobuf messages.
type Codec struct{}

var _ connect.Codec = Codec{}

func (Codec) Name() string { return "json" }

func (Codec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("invalid message: %w", err)
	}
	return nil
}

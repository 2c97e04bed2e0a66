package directory

import (
	"encoding/json"
	"fmt"

	"github.com/vocdoni/evoting-verifier/model"
)

// decodeJSON builds a FileGroup/single-file decode function for a JSON
// payload type T, allocating T fresh on every call.
func decodeJSON[T any]() func([]byte) (*T, error) {
	return func(raw []byte) (*T, error) {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrDecode, err)
		}
		return &v, nil
	}
}

// decodeJSONArray decodes a JSON array with exactly one element into its
// single element, the wire shape ControlComponentCodeSharesPayload files
// use (a top-level array, not an object).
func decodeJSONArray[T any]() func([]byte) (*T, error) {
	return func(raw []byte) (*T, error) {
		var arr []T
		if err := json.Unmarshal(raw, &arr); err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrDecode, err)
		}
		if len(arr) != 1 {
			return nil, fmt.Errorf("%w: expected a single-element array, got %d", model.ErrDecode, len(arr))
		}
		return &arr[0], nil
	}
}

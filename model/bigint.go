// Package model defines the typed payload records produced by the setup and
// tally components of an election event, together with the custom decoders
// for their hex/base64 big-integer encoding conventions.
package model

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// HexInt is a big.Int that decodes from a hex string (the setup-subtree
// convention: optional "0x" prefix, leading zeros immaterial).
type HexInt big.Int

// Int returns the underlying *big.Int.
func (h *HexInt) Int() *big.Int {
	return (*big.Int)(h)
}

// UnmarshalJSON implements json.Unmarshaler for a single hex-encoded string.
func (h *HexInt) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("hex int: %w", err)
	}
	v, err := parseHexInt(s)
	if err != nil {
		return err
	}
	*h = HexInt(*v)
	return nil
}

// MarshalJSON implements json.Marshaler, re-emitting the canonical hex form.
func (h *HexInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(fmt.Sprintf("0x%x", (*big.Int)(h)))
}

func parseHexInt(s string) (*big.Int, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if trimmed == "" {
		trimmed = "0"
	}
	v, ok := new(big.Int).SetString(trimmed, 16)
	if !ok {
		return nil, fmt.Errorf("%w: invalid hex integer %q", ErrDecode, s)
	}
	return v, nil
}

// HexIntSlice decodes a JSON array of hex strings into a slice of *big.Int.
type HexIntSlice []*big.Int

func (h *HexIntSlice) UnmarshalJSON(data []byte) error {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("hex int slice: %w", err)
	}
	out := make([]*big.Int, len(raw))
	for i, s := range raw {
		v, err := parseHexInt(s)
		if err != nil {
			return err
		}
		out[i] = v
	}
	*h = out
	return nil
}

func (h HexIntSlice) MarshalJSON() ([]byte, error) {
	out := make([]string, len(h))
	for i, v := range h {
		out[i] = fmt.Sprintf("0x%x", v)
	}
	return json.Marshal(out)
}

// HexIntMatrix decodes a JSON array of arrays of hex strings.
type HexIntMatrix [][]*big.Int

func (h *HexIntMatrix) UnmarshalJSON(data []byte) error {
	var raw [][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("hex int matrix: %w", err)
	}
	out := make([][]*big.Int, len(raw))
	for i, row := range raw {
		inner := make([]*big.Int, len(row))
		for j, s := range row {
			v, err := parseHexInt(s)
			if err != nil {
				return err
			}
			inner[j] = v
		}
		out[i] = inner
	}
	*h = out
	return nil
}

// Base64Int decodes from a base64-encoded byte string (the tally-subtree
// convention), interpreting the decoded bytes as a big-endian unsigned
// integer.
type Base64Int big.Int

func (b *Base64Int) Int() *big.Int {
	return (*big.Int)(b)
}

func (b *Base64Int) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("base64 int: %w", err)
	}
	v, err := parseBase64Int(s)
	if err != nil {
		return err
	}
	*b = Base64Int(*v)
	return nil
}

func parseBase64Int(s string) (*big.Int, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64 integer %q: %v", ErrDecode, s, err)
	}
	return new(big.Int).SetBytes(raw), nil
}

// Base64IntSlice decodes a JSON array of base64 strings into a slice of *big.Int.
type Base64IntSlice []*big.Int

func (b *Base64IntSlice) UnmarshalJSON(data []byte) error {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("base64 int slice: %w", err)
	}
	out := make([]*big.Int, len(raw))
	for i, s := range raw {
		v, err := parseBase64Int(s)
		if err != nil {
			return err
		}
		out[i] = v
	}
	*b = out
	return nil
}

// Base64Bytes decodes a JSON array of base64 strings into a slice of []byte,
// for fields that are opaque byte arrays rather than integers.
type Base64Bytes [][]byte

func (b *Base64Bytes) UnmarshalJSON(data []byte) error {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("base64 bytes: %w", err)
	}
	out := make([][]byte, len(raw))
	for i, s := range raw {
		v, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return fmt.Errorf("%w: invalid base64 bytes %q: %v", ErrDecode, s, err)
		}
		out[i] = v
	}
	*b = out
	return nil
}

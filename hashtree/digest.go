package hashtree

import (
	"crypto/sha256"
	"encoding/binary"
)

// Size is the fixed digest width produced by Digest.
const Size = sha256.Size

// tag domain-separates the five node kinds so that, e.g., the Text "5" and
// the Integer 5 never collide, and so that a List of one child never
// collides with that child's own digest.
type tag byte

const (
	tagBytes tag = iota
	tagText
	tagInteger
	tagList
	tagHashed
)

// Digest collapses a hash tree to a fixed-width digest by a tagged
// recursive scheme: every leaf is hashed as tag||len||content; every List
// is hashed as tag||count||digest(child_0)||digest(child_1)||..., where
// len and count are 8-byte big-endian integers.
func Digest(n Node) [Size]byte {
	h := sha256.New()
	writeNode(h, n)
	var out [Size]byte
	copy(out[:], h.Sum(nil))
	return out
}

func writeNode(h interface{ Write([]byte) (int, error) }, n Node) {
	switch v := n.(type) {
	case Bytes:
		h.Write([]byte{byte(tagBytes)})
		writeLenPrefixed(h, v)
	case Text:
		h.Write([]byte{byte(tagText)})
		writeLenPrefixed(h, []byte(v))
	case Integer:
		h.Write([]byte{byte(tagInteger)})
		if v.Int == nil {
			writeLenPrefixed(h, nil)
			return
		}
		writeLenPrefixed(h, v.Int.Bytes())
	case Hashed:
		h.Write([]byte{byte(tagHashed)})
		writeLenPrefixed(h, v)
	case List:
		h.Write([]byte{byte(tagList)})
		var countBuf [8]byte
		binary.BigEndian.PutUint64(countBuf[:], uint64(len(v)))
		h.Write(countBuf[:])
		for _, child := range v {
			d := Digest(child)
			h.Write(d[:])
		}
	default:
		panic("hashtree: unknown node kind")
	}
}

func writeLenPrefixed(h interface{ Write([]byte) (int, error) }, b []byte) {
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(b)))
	h.Write(lenBuf[:])
	h.Write(b)
}

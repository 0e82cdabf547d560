package index

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"github.com/gcbaptista/go-lsh-search/internal/minhash"
)

// BandKey locates one band of a signature: the band-slot it occupies and the
// hash of its values. Keys from different slots are never compared.
type BandKey struct {
	Slot int    `json:"slot"`
	Key  uint64 `json:"key"`
}

// HashBand hashes the band values in order, each written as an 8-byte big-endian word.
// Swapping two values produces a different key.
func HashBand(values []uint64) uint64 {
	d := xxhash.New()
	var buf [8]byte
	for _, v := range values {
		binary.BigEndian.PutUint64(buf[:], v)
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}

// BandKeys returns one key per full band of width in sig. A signature shorter
// than width yields no keys. The K%W check lives in config validation.
func BandKeys(sig minhash.Signature, width int) []BandKey {
	n := sig.Bands(width)
	keys := make([]BandKey, n)
	for slot := 0; slot < n; slot++ {
		keys[slot] = BandKey{Slot: slot, Key: HashBand(sig.Band(slot, width))}
	}
	return keys
}

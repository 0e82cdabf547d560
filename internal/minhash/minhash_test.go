package minhash

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-lsh-search/internal/errors"
	"github.com/gcbaptista/go-lsh-search/internal/shingle"
)

func TestSelector_KeepsSmallestDistinct(t *testing.T) {
	s := NewSelector(3)
	for _, h := range []uint64{50, 10, 40, 10, 30, 20, 20, 60} {
		s.Add(h)
	}

	assert.Equal(t, Signature{10, 20, 30}, s.Signature())
	assert.Equal(t, 3, s.Len())
}

func TestSelector_DuplicatesDoNotEvict(t *testing.T) {
	s := NewSelector(2)
	s.Add(5)
	s.Add(5)
	s.Add(5)
	assert.Equal(t, Signature{5}, s.Signature(), "repeated hashes count once")

	s.Add(7)
	s.Add(1)
	assert.Equal(t, Signature{1, 5}, s.Signature())

	// 7 was evicted; re-adding it must not displace anything.
	s.Add(7)
	assert.Equal(t, Signature{1, 5}, s.Signature())
}

func TestSelector_UnsignedOrdering(t *testing.T) {
	s := NewSelector(2)
	s.Add(^uint64(0))
	s.Add(1 << 63)
	s.Add(3)
	assert.Equal(t, Signature{3, 1 << 63}, s.Signature())
}

func TestCompute(t *testing.T) {
	text := "THE QUICK BROWN FOX JUMPS OVER THE LAZY DOG"

	t.Run("matches brute force selection", func(t *testing.T) {
		sig, err := Compute(text, 3, 10)
		require.NoError(t, err)

		set, err := shingle.Extract(text, 3)
		require.NoError(t, err)
		all := make([]uint64, 0, set.Len())
		for h := range set {
			all = append(all, h)
		}
		slices.Sort(all)

		assert.Equal(t, Signature(all[:10]), sig)
		assert.True(t, slices.IsSorted(sig))
		assert.Equal(t, sig, FromSet(set, 10))
	})

	t.Run("deterministic", func(t *testing.T) {
		first, err := Compute(text, 3, 10)
		require.NoError(t, err)
		second, err := Compute(text, 3, 10)
		require.NoError(t, err)
		assert.True(t, first.Equal(second))
	})

	t.Run("shorter signature when few shingles", func(t *testing.T) {
		sig, err := Compute("ABCDE", 3, 10)
		require.NoError(t, err)
		assert.Equal(t, 3, sig.Len())
		assert.Equal(t, 1, sig.Bands(2))
	})

	t.Run("repeated text collapses", func(t *testing.T) {
		sig, err := Compute("AAAAAAAAAA", 3, 10)
		require.NoError(t, err)
		assert.Equal(t, Signature{shingle.Hash("AAA")}, sig)
		assert.Equal(t, 0, sig.Bands(2))
	})

	t.Run("too short", func(t *testing.T) {
		_, err := Compute("AB", 3, 10)
		assert.ErrorIs(t, err, errors.ErrDocumentTooShort)
	})

	t.Run("invalid k", func(t *testing.T) {
		_, err := Compute(text, 3, 0)
		assert.ErrorIs(t, err, errors.ErrInvalidConfig)
	})
}

func TestSignature_PrefixAcrossK(t *testing.T) {
	text := "LOREM IPSUM DOLOR SIT AMET CONSECTETUR ADIPISCING ELIT"

	small, err := Compute(text, 3, 10)
	require.NoError(t, err)
	large, err := Compute(text, 3, 40)
	require.NoError(t, err)

	assert.Equal(t, small, large[:10], "the K=10 signature is a prefix of the K=40 one")
}

func TestSignature_Band(t *testing.T) {
	sig := Signature{1, 2, 3, 4, 5, 6}
	assert.Equal(t, 3, sig.Bands(2))
	assert.Equal(t, []uint64{3, 4}, sig.Band(1, 2))
	assert.Equal(t, 0, sig.Bands(0))
}

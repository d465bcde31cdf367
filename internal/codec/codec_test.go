package codec

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := New(4, 2)
	require.NoError(t, err)
	return c
}

func TestShardUniformity(t *testing.T) {
	c := mustCodec(t)
	for _, size := range []int{0, 1, 7, 36, 1024} {
		data := make([]byte, size)
		_, _ = rand.Read(data)
		shards, err := c.Encode(data)
		require.NoError(t, err)
		require.Len(t, shards, c.TotalShards())
		want := c.ShardSize(size)
		for i, s := range shards {
			assert.Equalf(t, want, len(s), "shard %d length mismatch for size %d", i, size)
		}
	}
}

func TestRoundtrip(t *testing.T) {
	c := mustCodec(t)
	sizes := []int{0, 1, 3, 4, 7, 36, 4096, 1 << 20}
	for _, size := range sizes {
		data := make([]byte, size)
		_, _ = rand.Read(data)
		shards, err := c.Encode(data)
		require.NoError(t, err)
		out, err := c.Decode(shards, size)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(data, out), "roundtrip mismatch at size %d", size)
	}
}

func TestOddSizeScenario(t *testing.T) {
	c := mustCodec(t)
	data := []byte("oddsize")
	shards, err := c.Encode(data)
	require.NoError(t, err)
	require.Equal(t, 2, c.ShardSize(len(data)))
	assert.Equal(t, []byte("od"), shards[0])
	assert.Equal(t, []byte("ds"), shards[1])
	assert.Equal(t, []byte("iz"), shards[2])
	assert.Equal(t, []byte("e\x00"), shards[3])

	out, err := c.Decode(shards, len(data))
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestEmptyFile(t *testing.T) {
	c := mustCodec(t)
	shards, err := c.Encode(nil)
	require.NoError(t, err)
	for _, s := range shards {
		assert.Empty(t, s)
	}
	out, err := c.Decode(shards, 0)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestErasureTolerance(t *testing.T) {
	c := mustCodec(t)
	data := []byte("abcdefabcdefabcdefabcdefabcdefabcdef")
	shards, err := c.Encode(data)
	require.NoError(t, err)

	subsets := [][]int{
		{4, 5},    // parity-only loss
		{1, 3},    // data-shard loss
		{0},       // single loss
		{2, 5},    // mixed
	}
	for _, lost := range subsets {
		slots := make([][]byte, len(shards))
		copy(slots, shards)
		for _, idx := range lost {
			slots[idx] = nil
		}
		out, err := c.Decode(slots, len(data))
		require.NoErrorf(t, err, "unexpected error with lost=%v", lost)
		assert.Equalf(t, data, out, "mismatch with lost=%v", lost)
	}
}

func TestInsufficientShards(t *testing.T) {
	c := mustCodec(t)
	data := []byte("abcdefabcdefabcdefabcdefabcdefabcdef")
	shards, err := c.Encode(data)
	require.NoError(t, err)

	slots := make([][]byte, len(shards))
	copy(slots, shards)
	for _, idx := range []int{0, 2, 4} {
		slots[idx] = nil
	}
	_, err = c.Decode(slots, len(data))
	assert.ErrorIs(t, err, ErrInsufficientShards)
}

func TestDeterminism(t *testing.T) {
	c := mustCodec(t)
	data := []byte("deterministic payload bytes for repeat encode checks")
	first, err := c.Encode(data)
	require.NoError(t, err)
	second, err := c.Encode(data)
	require.NoError(t, err)
	for i := range first {
		assert.True(t, bytes.Equal(first[i], second[i]), "shard %d differs across encode calls", i)
	}
}

func TestLowestKTieBreak(t *testing.T) {
	c := mustCodec(t)
	data := []byte("abcdefabcdefabcdefabcdefabcdefabcdef")
	shards, err := c.Encode(data)
	require.NoError(t, err)

	// All six present: decode must use the lowest-indexed four (0..3),
	// which for an MDS identity-top matrix is the unmodified data shards.
	out, err := c.Decode(shards, len(data))
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestLargeFile(t *testing.T) {
	c := mustCodec(t)
	size := 8192 * 8192
	data := make([]byte, size)
	_, _ = rand.Read(data)
	shards, err := c.Encode(data)
	require.NoError(t, err)
	for _, s := range shards {
		assert.Equal(t, size/4, len(s))
	}
	out, err := c.Decode(shards, size)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, out))
}

func TestInvalidParameters(t *testing.T) {
	_, err := New(0, 2)
	assert.ErrorIs(t, err, ErrInvalidParameters)

	c := mustCodec(t)
	_, err = c.Decode(make([][]byte, 3), 10)
	assert.ErrorIs(t, err, ErrInvalidParameters)
}

func TestInconsistentShardLength(t *testing.T) {
	c := mustCodec(t)
	data := []byte("abcdefabcdefabcdefabcdefabcdefabcdef")
	shards, err := c.Encode(data)
	require.NoError(t, err)
	slots := make([][]byte, len(shards))
	copy(slots, shards)
	slots[1] = slots[1][:1]
	_, err = c.Decode(slots, len(data))
	assert.ErrorIs(t, err, ErrInconsistentShardLength)
}

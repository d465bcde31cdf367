// Package codec implements the Reed-Solomon erasure-coding engine used to
// split a file into data and parity shards and to reconstruct it from any
// sufficient subset of surviving shards.
//
// The encoding matrix, GF(2^8) arithmetic, and reconstruction algebra are
// all delegated to github.com/klauspost/reedsolomon; this package only
// fixes the shard-sizing, padding, and decode-slot contract around it and
// keeps the codec itself stateless and reentrant.
package codec

import (
	"errors"
	"fmt"

	"github.com/klauspost/reedsolomon"
)

var (
	// ErrInsufficientShards is returned by Decode when fewer than k slots
	// are present.
	ErrInsufficientShards = errors.New("codec: insufficient shards available for reconstruction")
	// ErrInconsistentShardLength is returned when present slots disagree on length.
	ErrInconsistentShardLength = errors.New("codec: present shards disagree on length")
	// ErrInvalidParameters is returned for malformed k/m or truncated input.
	ErrInvalidParameters = errors.New("codec: invalid parameters")
)

// Codec encodes and decodes a (DataShards, ParityShards) Reed-Solomon
// scheme over GF(2^8). It holds no per-call state: ShardSize is always a
// function of the arguments passed to Encode/Decode, never a stored field,
// so one Codec value is safe for concurrent reentrant use.
type Codec struct {
	dataShards   int
	parityShards int
	enc          reedsolomon.Encoder
}

// New builds a Codec for k data shards and m parity shards.
func New(dataShards, parityShards int) (*Codec, error) {
	if dataShards <= 0 || parityShards < 0 {
		return nil, fmt.Errorf("%w: data=%d parity=%d", ErrInvalidParameters, dataShards, parityShards)
	}
	enc, err := reedsolomon.New(dataShards, parityShards)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameters, err)
	}
	return &Codec{
		dataShards:   dataShards,
		parityShards: parityShards,
		enc:          enc,
	}, nil
}

// DataShards returns k.
func (c *Codec) DataShards() int { return c.dataShards }

// ParityShards returns m.
func (c *Codec) ParityShards() int { return c.parityShards }

// TotalShards returns n = k + m.
func (c *Codec) TotalShards() int { return c.dataShards + c.parityShards }

// ShardSize returns ceil(originalSize / k), the length every shard of a
// file of the given size must have.
func (c *Codec) ShardSize(originalSize int) int {
	if originalSize == 0 {
		return 0
	}
	return (originalSize + c.dataShards - 1) / c.dataShards
}

// Encode splits data into n equal-length shards: the first k contain the
// original bytes in order (the final one zero-padded to ShardSize), and
// the trailing m are parity shards derived from them. Encoding is
// deterministic: identical input always produces byte-identical shards.
func (c *Codec) Encode(data []byte) ([][]byte, error) {
	shardSize := c.ShardSize(len(data))
	shards := make([][]byte, c.TotalShards())

	if shardSize == 0 {
		for i := range shards {
			shards[i] = []byte{}
		}
		return shards, nil
	}

	for i := 0; i < c.dataShards; i++ {
		shards[i] = make([]byte, shardSize)
		start := i * shardSize
		if start < len(data) {
			end := start + shardSize
			if end > len(data) {
				end = len(data)
			}
			copy(shards[i], data[start:end])
		}
	}
	for i := c.dataShards; i < c.TotalShards(); i++ {
		shards[i] = make([]byte, shardSize)
	}

	if err := c.enc.Encode(shards); err != nil {
		return nil, fmt.Errorf("codec: encode: %w", err)
	}
	return shards, nil
}

// Decode reconstructs the original file from a vector of n slots, each
// either a present byte slice of length ShardSize or nil for a missing or
// rejected shard. originalSize truncates the trailing pad of the last
// data shard, since padding cannot be recovered from the shards alone.
//
// Decode requires at least k present slots. When more than k are present,
// reconstruction still uses the lowest-indexed k present slots, so the
// same input always reconstructs the same way regardless of which extra
// shards happen to be present.
func (c *Codec) Decode(slots [][]byte, originalSize int) ([]byte, error) {
	if len(slots) != c.TotalShards() {
		return nil, fmt.Errorf("%w: expected %d slots, got %d", ErrInvalidParameters, c.TotalShards(), len(slots))
	}

	if originalSize == 0 {
		return []byte{}, nil
	}

	shardSize := c.ShardSize(originalSize)
	present := 0
	working := make([][]byte, c.TotalShards())
	for i, s := range slots {
		if s == nil {
			continue
		}
		if len(s) != shardSize {
			return nil, fmt.Errorf("%w: slot %d has length %d, want %d", ErrInconsistentShardLength, i, len(s), shardSize)
		}
		present++
		working[i] = s
	}
	if present < c.dataShards {
		return nil, ErrInsufficientShards
	}

	// Keep only the lowest-indexed k present slots so reconstruction is
	// deterministic even when more than k shards happen to be present;
	// the discarded extras were already verified above but aren't consumed.
	kept := 0
	for i := range working {
		if working[i] == nil {
			continue
		}
		if kept >= c.dataShards {
			working[i] = nil
			continue
		}
		kept++
	}

	if err := c.enc.Reconstruct(working); err != nil {
		return nil, fmt.Errorf("codec: reconstruct: %w", err)
	}

	out := make([]byte, 0, originalSize)
	for i := 0; i < c.dataShards && len(out) < originalSize; i++ {
		remaining := originalSize - len(out)
		if remaining >= len(working[i]) {
			out = append(out, working[i]...)
		} else {
			out = append(out, working[i][:remaining]...)
		}
	}
	return out, nil
}

// ReconstructMissing re-derives the full n-shard set from a decoded file;
// it is the same as Encode. The orchestrator's self-healing path calls
// Encode directly to obtain canonical replacement bytes for any shard that
// was absent or digest-mismatched.
func (c *Codec) ReconstructMissing(data []byte) ([][]byte, error) {
	return c.Encode(data)
}

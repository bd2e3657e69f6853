// Package params defines the compiled-in constants of the Equihash 192,7
// solver core. The values are engineering constants rather than a runtime
// configuration surface; callers that need different parameters (tests,
// benchmarks) take a copy and override it for the session.
package params

import (
	"encoding/binary"
)

// SolverConfig contains the constant parameters of one solving session.
type SolverConfig struct {
	// N is the number of digest bits participating in the collision search.
	N uint32
	// K is the number of collision stages beyond stage zero. The search
	// runs K+1 stages and a solution merges 2^K candidate indices.
	K uint32
	// DigestLength is the byte width of the hash output per candidate index.
	// Only the low N bits take part in stage windows and the zero check.
	DigestLength int
	// PersonalPrefix is the fixed prefix of the blake2b personalization tag.
	// The full tag appends little-endian encodings of N and K.
	PersonalPrefix string

	// InitialHashCount is M, the size of the initial digest population.
	// Chosen to keep the arena near the cache-residency budget; generation
	// is capped to the table capacity regardless of this value.
	InitialHashCount uint32
	// MaxPairsPerStage bounds the number of collision nodes a single stage
	// may emit. Emission stops deterministically in ascending bucket order
	// once the cap is hit.
	MaxPairsPerStage uint32
	// BucketBits is the width of the bucket key. Buckets group entries by
	// the leading BucketBits of the stage window; the remaining window bits
	// are verified exactly before a pair is merged.
	BucketBits uint32
	// MaxBucketLen caps how many entries of an oversized bucket are
	// enumerated. The prefix kept is the first MaxBucketLen entries in
	// input order, which is deterministic.
	MaxBucketLen uint32
	// AncestorPoolLen is the per-buffer capacity, in indices, of the pool
	// backing ancestor sets.
	AncestorPoolLen uint32
	// MemoryBudgetBytes is the arena footprint target. Exceeding it is a
	// diagnostic warning, not an error.
	MemoryBudgetBytes uint64

	// DigestBatchLog2 sets the coarseness of cancellation checks during
	// digest generation: cancel is polled every 1<<DigestBatchLog2 indices.
	DigestBatchLog2 uint32
}

// Stages returns the number of collision stages, K+1.
func (c *SolverConfig) Stages() uint32 {
	return c.K + 1
}

// CollisionBitLength returns the width in bits of one stage window.
func (c *SolverConfig) CollisionBitLength() uint32 {
	return c.N / (c.K + 1)
}

// CollisionByteLength returns the byte width of the meaningful digest
// region, covering all N window bits.
func (c *SolverConfig) CollisionByteLength() int {
	return int(c.N) / 8
}

// SolutionWidth returns the number of candidate indices in a full
// solution, 2^K.
func (c *SolverConfig) SolutionWidth() int {
	return 1 << c.K
}

// Personal returns the 16-byte blake2b personalization tag binding digests
// to this parameter set: the prefix followed by LE32(N) and LE32(K).
func (c *SolverConfig) Personal() []byte {
	p := make([]byte, 16)
	copy(p, c.PersonalPrefix)
	binary.LittleEndian.PutUint32(p[8:], c.N)
	binary.LittleEndian.PutUint32(p[12:], c.K)
	return p
}

// Copy returns a value copy of the config object, safe to mutate.
func (c *SolverConfig) Copy() *SolverConfig {
	cfg := *c
	return &cfg
}

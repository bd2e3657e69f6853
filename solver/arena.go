package solver

import (
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/oneidprod/solver1927/config/params"
)

// invalidWindow marks a stage entry whose window could not be extracted.
// Stage windows are at most 24 bits wide, so the value cannot collide
// with a real window.
const invalidWindow = ^uint32(0)

// stageBuffer holds the collision nodes emitted by one stage. Node
// digests live in a flat byte slice with a fixed stride and ancestor sets
// are ranges of a shared index pool, so a node is only ever referred to
// by its slot index, never by pointer.
type stageBuffer struct {
	digests  []byte   // count * stride bytes
	aoff     []uint32 // ancestor range start per node
	alen     []uint32 // ancestor range length per node
	pool     []uint32 // ancestor index pool
	stride   int
	count    int
	poolUsed int
}

func (b *stageBuffer) reset() {
	b.count = 0
	b.poolUsed = 0
}

func (b *stageBuffer) digest(i int) []byte {
	return b.digests[i*b.stride : (i+1)*b.stride]
}

func (b *stageBuffer) ancestors(i int) []uint32 {
	return b.pool[b.aoff[i] : b.aoff[i]+b.alen[i]]
}

// Arena owns all working memory for one solve session: the initial digest
// table, two ping-pong stage buffers, and the bucket index tables. It is
// allocated once, reused across stage transitions, and released at
// session end. Stage s writes only buffer s%2, so a stage never reads and
// writes the same buffer.
type Arena struct {
	cfg *params.SolverConfig

	digests []byte // initial digest table, InitialHashCount * DigestLength

	buffers [2]stageBuffer

	// Counting-sort bucket tables, rebuilt every stage.
	bucketCounts  []uint32
	bucketStarts  []uint32
	bucketEntries []uint32 // input-population indices grouped by bucket
	windows       []uint32 // full stage window per input entry

	usage uint64
}

// NewArena sizes and allocates every table from the config. A config that
// cannot produce a usable arena is fatal for the session; exceeding the
// memory budget is only logged, since cache residency is a performance
// goal rather than a correctness requirement.
func NewArena(cfg *params.SolverConfig) (*Arena, error) {
	if err := validateArenaConfig(cfg); err != nil {
		return nil, errors.Wrap(ErrAllocation, err.Error())
	}

	stride := cfg.CollisionByteLength()
	pairs := int(cfg.MaxPairsPerStage)
	entries := int(cfg.InitialHashCount)
	if pairs > entries {
		entries = pairs
	}
	buckets := 1 << cfg.BucketBits

	a := &Arena{
		cfg:           cfg,
		digests:       make([]byte, int(cfg.InitialHashCount)*cfg.DigestLength),
		bucketCounts:  make([]uint32, buckets),
		bucketStarts:  make([]uint32, buckets),
		bucketEntries: make([]uint32, entries),
		windows:       make([]uint32, entries),
	}
	for i := range a.buffers {
		a.buffers[i] = stageBuffer{
			digests: make([]byte, pairs*stride),
			aoff:    make([]uint32, pairs),
			alen:    make([]uint32, pairs),
			pool:    make([]uint32, cfg.AncestorPoolLen),
			stride:  stride,
		}
	}

	a.usage = uint64(len(a.digests)) +
		uint64(len(a.bucketCounts)+len(a.bucketStarts)+len(a.bucketEntries)+len(a.windows))*4
	for i := range a.buffers {
		b := &a.buffers[i]
		a.usage += uint64(len(b.digests)) + uint64(len(b.aoff)+len(b.alen)+len(b.pool))*4
	}

	if a.usage > cfg.MemoryBudgetBytes {
		log.WithFields(map[string]interface{}{
			"usage":  humanize.IBytes(a.usage),
			"budget": humanize.IBytes(cfg.MemoryBudgetBytes),
		}).Warn("Arena exceeds memory budget; expect reduced cache residency")
	}
	return a, nil
}

func validateArenaConfig(cfg *params.SolverConfig) error {
	if cfg.K == 0 || cfg.N == 0 || cfg.N%(cfg.K+1) != 0 {
		return errors.Errorf("N=%d not divisible into K+1=%d stage windows", cfg.N, cfg.K+1)
	}
	if cfg.N%8 != 0 {
		return errors.Errorf("N=%d is not byte aligned", cfg.N)
	}
	if cfg.CollisionBitLength() > 32 {
		return errors.Errorf("stage window of %d bits exceeds 32", cfg.CollisionBitLength())
	}
	if cfg.BucketBits == 0 || cfg.BucketBits > cfg.CollisionBitLength() {
		return errors.Errorf("bucket bits %d out of range for %d bit windows", cfg.BucketBits, cfg.CollisionBitLength())
	}
	if cfg.BucketBits > 24 {
		return errors.Errorf("bucket bits %d would need more than 16M buckets", cfg.BucketBits)
	}
	if cfg.InitialHashCount == 0 || cfg.MaxPairsPerStage == 0 || cfg.MaxBucketLen < 2 {
		return errors.New("population and cap parameters must be positive")
	}
	if cfg.AncestorPoolLen < 2 {
		return errors.New("ancestor pool cannot hold a single merge")
	}
	return nil
}

// UsageBytes reports the allocated footprint.
func (a *Arena) UsageBytes() uint64 {
	return a.usage
}

// UsageMB reports the allocated footprint in megabytes.
func (a *Arena) UsageMB() float64 {
	return float64(a.usage) / (1 << 20)
}

// Release drops every table. The arena is unusable afterwards.
func (a *Arena) Release() {
	a.digests = nil
	a.bucketCounts = nil
	a.bucketStarts = nil
	a.bucketEntries = nil
	a.windows = nil
	for i := range a.buffers {
		a.buffers[i] = stageBuffer{}
	}
	a.usage = 0
}

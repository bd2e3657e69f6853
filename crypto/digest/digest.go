// Package digest derives the N-bit candidate digests that seed the
// collision search. Each digest is a personalized blake2b hash of the
// challenge header, the nonce, and a little-endian 4-byte candidate
// index; identical inputs always produce identical digests.
package digest

import (
	"encoding/binary"

	"github.com/minio/blake2b-simd"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/oneidprod/solver1927/config/params"
	"github.com/oneidprod/solver1927/simd"
)

var digestsGeneratedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "solver_digests_generated_total",
	Help: "Total count of candidate digests generated across all sessions.",
})

// IndexLength is the byte width of the candidate index suffix.
const IndexLength = 4

// Generator produces candidate digests for one (header, nonce) challenge.
// It is deterministic and safe to rebuild cheaply; a nonce change requires
// a new Generator.
type Generator struct {
	cfg      *params.SolverConfig
	caps     *simd.Capabilities
	blakeCfg *blake2b.Config
	prefix   []byte
}

// NewGenerator builds the base keyed-hash state for a challenge. The
// blake2b parameters are validated here, so a bad configuration fails
// before any hashing begins.
func NewGenerator(cfg *params.SolverConfig, caps *simd.Capabilities, header, nonce []byte) (*Generator, error) {
	if cfg.DigestLength <= 0 || cfg.DigestLength > blake2b.Size {
		return nil, errors.Errorf("digest length %d out of range (1-%d)", cfg.DigestLength, blake2b.Size)
	}
	if cfg.CollisionByteLength() > cfg.DigestLength {
		return nil, errors.Errorf("N=%d does not fit in a %d byte digest", cfg.N, cfg.DigestLength)
	}
	bc := &blake2b.Config{
		Size:   uint8(cfg.DigestLength),
		Person: cfg.Personal(),
	}
	if _, err := blake2b.New(bc); err != nil {
		return nil, errors.Wrap(err, "invalid blake2b parameters")
	}
	prefix := make([]byte, 0, len(header)+len(nonce))
	prefix = append(prefix, header...)
	prefix = append(prefix, nonce...)
	return &Generator{
		cfg:      cfg,
		caps:     caps,
		blakeCfg: bc,
		prefix:   prefix,
	}, nil
}

// Index returns the digest of candidate index i.
func (g *Generator) Index(i uint32) []byte {
	h, err := blake2b.New(g.blakeCfg)
	if err != nil {
		// The config was validated in NewGenerator.
		panic(err)
	}
	var idx [IndexLength]byte
	binary.LittleEndian.PutUint32(idx[:], i)
	h.Write(g.prefix)
	h.Write(idx[:])
	return h.Sum(nil)
}

// Fill populates dst with consecutive digests for indices starting at 0.
// The count is the configured initial population, silently capped to what
// dst can hold; the returned n is the true number generated. The cancel
// predicate is polled between generation batches; on cancellation Fill
// stops early and reports cancelled=true.
func (g *Generator) Fill(dst []byte, cancel func() bool) (n int, cancelled bool) {
	want := int(g.cfg.InitialHashCount)
	if room := len(dst) / g.cfg.DigestLength; want > room {
		want = room
	}
	batch := 1 << g.cfg.DigestBatchLog2
	if w := g.caps.BatchWidth(); batch < w {
		batch = w
	}
	for n < want {
		if cancel != nil && cancel() {
			return n, true
		}
		end := n + batch
		if end > want {
			end = want
		}
		for i := n; i < end; i++ {
			copy(dst[i*g.cfg.DigestLength:], g.Index(uint32(i)))
		}
		digestsGeneratedTotal.Add(float64(end - n))
		n = end
	}
	return n, false
}

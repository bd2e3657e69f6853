// Package solver implements the memory-hard core of the Equihash 192,7
// proof of work: a Wagner-style generalized birthday search that collides
// candidate digests over successive 24-bit windows until 2^K-index
// candidates with an all-zero 192-bit XOR remain.
// One Solver owns one arena and is meant to be driven by a single
// worker; independent workers each construct their own Solver and share
// nothing.
package solver

import (
	"errors"

	pkgerrors "github.com/pkg/errors"

	"github.com/oneidprod/solver1927/config/params"
	"github.com/oneidprod/solver1927/crypto/digest"
	"github.com/oneidprod/solver1927/simd"
)

var (
	// ErrAllocation is returned by New when the arena cannot be built.
	// No partial state is usable after it.
	ErrAllocation = errors.New("arena allocation failed")
	// ErrInvalidCandidate is returned by Verify for a structurally
	// malformed solution candidate.
	ErrInvalidCandidate = errors.New("invalid solution candidate")
)

// Outcome classifies how a solve attempt ended. A zero-collision stage is
// an ordinary negative result, not an error; most attempts end that way.
type Outcome int

const (
	// OutcomeExhausted means some stage yielded zero collisions for this
	// nonce. The caller should retry with a different nonce.
	OutcomeExhausted Outcome = iota
	// OutcomeSolved means at least one valid solution was reported.
	OutcomeSolved
	// OutcomeCancelled means the cancellation predicate fired; zero
	// solutions were reported.
	OutcomeCancelled
	// OutcomeFailed means attempt setup failed before any stage ran.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSolved:
		return "solved"
	case OutcomeExhausted:
		return "exhausted"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// CancelFunc is polled at coarse work boundaries; returning true halts
// the attempt promptly.
type CancelFunc func() bool

// SolutionFunc receives each valid solution: the canonically sorted
// candidate indices, plus the nonce offset and nonce bytes for the
// submission layer.
type SolutionFunc func(indices []uint32, nonceOffset int, nonce []byte)

// Option customizes solver construction.
type Option func(*options)

type options struct {
	forcedTier *simd.Tier
}

// WithForcedTier pins the vector tier instead of auto-detecting. An
// unsupported tier fails New, before any hashing or XOR work.
func WithForcedTier(t simd.Tier) Option {
	return func(o *options) {
		o.forcedTier = &t
	}
}

// Solver runs solve attempts for one worker.
type Solver struct {
	cfg   *params.SolverConfig
	caps  *simd.Capabilities
	arena *Arena
	stats Stats
}

// New builds a solver: capability selection, arena allocation, and
// parameter validation all happen here, so every failure mode that is
// fatal for a session surfaces before the first attempt.
func New(cfg *params.SolverConfig, opts ...Option) (*Solver, error) {
	if cfg == nil {
		cfg = params.EquihashConfig()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	caps := simd.Detect()
	if o.forcedTier != nil {
		var err error
		caps, err = simd.ForTier(*o.forcedTier)
		if err != nil {
			return nil, err
		}
	}

	// A throwaway generator validates the digest parameters up front.
	if _, err := digest.NewGenerator(cfg, caps, nil, nil); err != nil {
		return nil, pkgerrors.Wrap(err, "digest configuration")
	}

	arena, err := NewArena(cfg)
	if err != nil {
		return nil, err
	}

	log.WithFields(map[string]interface{}{
		"n":     cfg.N,
		"k":     cfg.K,
		"tier":  caps.Tier().String(),
		"arena": arena.UsageMB(),
	}).Debug("Solver ready")

	return &Solver{cfg: cfg, caps: caps, arena: arena}, nil
}

// Solve runs one attempt against (header, nonce). onSolution is invoked
// zero or more times; onDone fires exactly once, whatever the outcome.
// The returned Outcome mirrors what the callbacks observed.
func (s *Solver) Solve(header, nonce []byte, cancel CancelFunc, onSolution SolutionFunc, onDone func()) Outcome {
	outcome := s.solve(header, nonce, cancel, onSolution)
	s.stats.Attempts++
	attemptsTotal.WithLabelValues(outcome.String()).Inc()
	if onDone != nil {
		onDone()
	}
	return outcome
}

func (s *Solver) solve(header, nonce []byte, cancel CancelFunc, onSolution SolutionFunc) Outcome {
	gen, err := digest.NewGenerator(s.cfg, s.caps, header, nonce)
	if err != nil {
		// Parameters were validated in New; this only fires if the config
		// was mutated behind our back.
		log.WithError(err).Error("Attempt setup failed")
		return OutcomeFailed
	}

	n, cancelled := gen.Fill(s.arena.digests, cancel)
	if cancelled {
		return OutcomeCancelled
	}
	if n == 0 {
		return OutcomeExhausted
	}

	at := &attempt{
		solver:     s,
		cancel:     cancel,
		onSolution: onSolution,
		nonce:      nonce,
	}
	return at.run(n)
}

// Name reports a human-readable device description.
func (s *Solver) Name() string {
	return "solver1927 (Equihash 192,7 CPU)"
}

// Capabilities reports the active acceleration tier name and its
// estimated parallel batch width.
func (s *Solver) Capabilities() (tier string, batchWidth int) {
	return s.caps.Tier().String(), s.caps.BatchWidth()
}

// UsageMB reports the arena footprint in megabytes.
func (s *Solver) UsageMB() float64 {
	return s.arena.UsageMB()
}

// Stats returns a snapshot of the diagnostic counters.
func (s *Solver) Stats() Stats {
	return s.stats
}

// Release frees the arena. The solver is unusable afterwards.
func (s *Solver) Release() {
	s.arena.Release()
}

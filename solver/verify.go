package solver

import (
	pkgerrors "github.com/pkg/errors"

	"github.com/oneidprod/solver1927/config/params"
	"github.com/oneidprod/solver1927/crypto/digest"
	"github.com/oneidprod/solver1927/simd"
)

// Verify independently checks an externally supplied solution: the
// ancestor list must hold exactly 2^K strictly ascending indices and the
// XOR of their re-derived digests must be zero over the full N bits. It
// needs no engine state and allocates nothing persistent.
func Verify(cfg *params.SolverConfig, header, nonce []byte, indices []uint32) error {
	if cfg == nil {
		cfg = params.EquihashConfig()
	}
	if len(indices) != cfg.SolutionWidth() {
		return pkgerrors.Wrapf(ErrInvalidCandidate,
			"want %d ancestor indices, got %d", cfg.SolutionWidth(), len(indices))
	}
	if !strictlyAscending(indices) {
		return pkgerrors.Wrap(ErrInvalidCandidate,
			"ancestor indices must be strictly ascending and distinct")
	}

	caps := simd.Detect()
	gen, err := digest.NewGenerator(cfg, caps, header, nonce)
	if err != nil {
		return pkgerrors.Wrap(err, "digest configuration")
	}

	cbl := cfg.CollisionByteLength()
	acc := make([]byte, cbl)
	for _, idx := range indices {
		d := gen.Index(idx)
		caps.XOR(acc, acc, d[:cbl])
	}
	if !allZero(acc) {
		return pkgerrors.Wrap(ErrInvalidCandidate, "combined digest is not zero")
	}
	return nil
}

// Package simd selects the vector acceleration tier used for batched
// digest and XOR work. The tier is detected once per solving session and
// bound into a Capabilities object that callers pass around explicitly;
// it is never re-selected mid-attempt. Every tier produces byte-identical
// results, so the choice affects throughput only.
package simd

import (
	"github.com/klauspost/cpuid/v2"
	"github.com/pkg/errors"
)

// Tier is a vector-instruction width class, ordered from weakest to
// strongest.
type Tier int

const (
	// TierScalar is plain bytewise processing, supported everywhere.
	TierScalar Tier = iota
	// Tier128 maps to SSE2-class 128-bit lanes.
	Tier128
	// Tier256 maps to AVX2-class 256-bit lanes.
	Tier256
	// Tier512 maps to AVX-512-class lanes.
	Tier512
)

// ErrUnsupportedTier is returned when a forced tier is not available on
// the host CPU. The failure happens at configuration time, before any
// hashing or XOR work begins.
var ErrUnsupportedTier = errors.New("vector tier not supported by host CPU")

func (t Tier) String() string {
	switch t {
	case TierScalar:
		return "scalar"
	case Tier128:
		return "sse2-128"
	case Tier256:
		return "avx2-256"
	case Tier512:
		return "avx512-512"
	default:
		return "unknown"
	}
}

// batchWidths gives the estimated number of independent digests a
// generation batch processes in parallel at each tier.
var batchWidths = map[Tier]int{
	TierScalar: 1,
	Tier128:    4,
	Tier256:    8,
	Tier512:    16,
}

// Capabilities binds one tier's operations for a solving session.
type Capabilities struct {
	tier  Tier
	batch int
	xor   func(dst, a, b []byte)
}

// Tier reports the bound acceleration tier.
func (c *Capabilities) Tier() Tier {
	return c.tier
}

// BatchWidth reports the estimated parallel batch width for diagnostics.
func (c *Capabilities) BatchWidth() int {
	return c.batch
}

// XOR writes a XOR b into dst. len(dst) bytes are processed; a and b must
// be at least that long. All tiers produce byte-identical output.
func (c *Capabilities) XOR(dst, a, b []byte) {
	c.xor(dst, a, b)
}

func supported(t Tier) bool {
	switch t {
	case TierScalar:
		return true
	case Tier128:
		return cpuid.CPU.Supports(cpuid.SSE2)
	case Tier256:
		return cpuid.CPU.Supports(cpuid.AVX2)
	case Tier512:
		return cpuid.CPU.Supports(cpuid.AVX512F)
	default:
		return false
	}
}

func forTier(t Tier) *Capabilities {
	c := &Capabilities{tier: t, batch: batchWidths[t]}
	switch t {
	case Tier512:
		c.xor = xor512
	case Tier256:
		c.xor = xor256
	case Tier128:
		c.xor = xor128
	default:
		c.xor = xorScalar
	}
	return c
}

// Detect returns capabilities bound to the strongest tier the host
// supports.
func Detect() *Capabilities {
	for _, t := range []Tier{Tier512, Tier256, Tier128} {
		if supported(t) {
			return forTier(t)
		}
	}
	return forTier(TierScalar)
}

// ForTier returns capabilities bound to the given tier, failing with
// ErrUnsupportedTier when the host cannot run it.
func ForTier(t Tier) (*Capabilities, error) {
	if t < TierScalar || t > Tier512 {
		return nil, errors.Wrapf(ErrUnsupportedTier, "unknown tier %d", t)
	}
	if !supported(t) {
		return nil, errors.Wrap(ErrUnsupportedTier, t.String())
	}
	return forTier(t), nil
}

// ParseTier maps a tier name, as printed by Tier.String, back to its
// value.
func ParseTier(name string) (Tier, error) {
	for _, t := range []Tier{TierScalar, Tier128, Tier256, Tier512} {
		if t.String() == name {
			return t, nil
		}
	}
	return TierScalar, errors.Errorf("unknown vector tier %q", name)
}

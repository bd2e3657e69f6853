package simd

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var kernels = map[string]func(dst, a, b []byte){
	"scalar": xorScalar,
	"128":    xor128,
	"256":    xor256,
	"512":    xor512,
}

func TestXOR_CrossTierEquivalence(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	// Lengths chosen to hit full chunks, tails and sub-chunk inputs for
	// every kernel.
	for _, n := range []int{0, 1, 7, 8, 15, 16, 24, 31, 32, 33, 48, 63, 64, 65, 100, 256} {
		a := make([]byte, n)
		b := make([]byte, n)
		_, err := rng.Read(a)
		require.NoError(t, err)
		_, err = rng.Read(b)
		require.NoError(t, err)

		want := make([]byte, n)
		xorScalar(want, a, b)

		for name, kern := range kernels {
			got := make([]byte, n)
			kern(got, a, b)
			assert.Equal(t, want, got, "kernel %s length %d", name, n)
		}
	}
}

func TestXOR_Laws(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	a := make([]byte, 32)
	b := make([]byte, 32)
	_, err := rng.Read(a)
	require.NoError(t, err)
	_, err = rng.Read(b)
	require.NoError(t, err)

	caps := Detect()

	// XOR(a,a) = 0.
	zero := make([]byte, 32)
	got := make([]byte, 32)
	caps.XOR(got, a, a)
	assert.Equal(t, zero, got)

	// XOR(a,b) = XOR(b,a).
	ab := make([]byte, 32)
	ba := make([]byte, 32)
	caps.XOR(ab, a, b)
	caps.XOR(ba, b, a)
	assert.Equal(t, ab, ba)

	// XOR(XOR(a,b),b) = a.
	back := make([]byte, 32)
	caps.XOR(back, ab, b)
	assert.Equal(t, a, back)
}

func TestDetect_ReturnsSupportedTier(t *testing.T) {
	caps := Detect()
	require.True(t, supported(caps.Tier()))
	assert.GreaterOrEqual(t, caps.BatchWidth(), 1)

	// Detect must be re-selectable without drift.
	assert.Equal(t, caps.Tier(), Detect().Tier())
}

func TestForTier_ScalarAlwaysAvailable(t *testing.T) {
	caps, err := ForTier(TierScalar)
	require.NoError(t, err)
	assert.Equal(t, TierScalar, caps.Tier())
	assert.Equal(t, 1, caps.BatchWidth())
}

func TestForTier_UnsupportedFailsBeforeUse(t *testing.T) {
	best := Detect().Tier()
	for _, tier := range []Tier{Tier128, Tier256, Tier512} {
		if tier <= best {
			continue
		}
		caps, err := ForTier(tier)
		require.Nil(t, caps)
		require.True(t, errors.Is(err, ErrUnsupportedTier))
		return
	}
	t.Skip("host supports every tier; nothing to force-fail")
}

func TestForTier_RejectsUnknownTier(t *testing.T) {
	_, err := ForTier(Tier(99))
	require.True(t, errors.Is(err, ErrUnsupportedTier))
}

func TestParseTier_RoundTrips(t *testing.T) {
	for _, tier := range []Tier{TierScalar, Tier128, Tier256, Tier512} {
		got, err := ParseTier(tier.String())
		require.NoError(t, err)
		assert.Equal(t, tier, got)
	}
	_, err := ParseTier("mmx")
	require.Error(t, err)
}

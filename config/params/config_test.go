package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMainnetConfig_DerivedValues(t *testing.T) {
	cfg := MainnetConfig()
	assert.Equal(t, uint32(8), cfg.Stages())
	assert.Equal(t, uint32(24), cfg.CollisionBitLength())
	assert.Equal(t, 24, cfg.CollisionByteLength())
	assert.Equal(t, 128, cfg.SolutionWidth())
}

func TestPersonal_EncodesParameters(t *testing.T) {
	cfg := MainnetConfig()
	p := cfg.Personal()
	require.Len(t, p, 16)
	assert.Equal(t, []byte("ZERO_PoW"), p[:8])
	// LE32(192), LE32(7).
	assert.Equal(t, []byte{192, 0, 0, 0}, p[8:12])
	assert.Equal(t, []byte{7, 0, 0, 0}, p[12:16])
}

func TestPersonal_DiffersAcrossParameters(t *testing.T) {
	a := MainnetConfig().Copy()
	b := MainnetConfig().Copy()
	b.K = 5
	require.NotEqual(t, a.Personal(), b.Personal())
}

func TestOverrideSolverConfig(t *testing.T) {
	orig := EquihashConfig()
	defer OverrideSolverConfig(orig)

	cfg := orig.Copy()
	cfg.InitialHashCount = 42
	OverrideSolverConfig(cfg)
	assert.Equal(t, uint32(42), EquihashConfig().InitialHashCount)
}

func TestCopy_DoesNotAliasActiveConfig(t *testing.T) {
	cfg := EquihashConfig().Copy()
	cfg.MaxBucketLen = 1
	require.NotEqual(t, uint32(1), EquihashConfig().MaxBucketLen)
}

package solver

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/oneidprod/solver1927/config/params"
	"github.com/oneidprod/solver1927/crypto/digest"
	"github.com/oneidprod/solver1927/simd"
)

// verifyConfig shrinks the problem to K=1, N=16 so a genuine solution (a
// pair of indices whose blake2b digests agree on the low 16 bits) can be
// found by birthday search.
func verifyConfig() *params.SolverConfig {
	cfg := params.MinimalTestConfig()
	cfg.K = 1
	cfg.N = 16
	cfg.BucketBits = 8
	return cfg
}

// findPair locates two indices whose digests collide on the meaningful
// bytes under the given challenge.
func findPair(t *testing.T, cfg *params.SolverConfig, header, nonce []byte) []uint32 {
	t.Helper()
	gen, err := digest.NewGenerator(cfg, simd.Detect(), header, nonce)
	require.NoError(t, err)

	cbl := cfg.CollisionByteLength()
	seen := map[string]uint32{}
	for i := uint32(0); i < 4096; i++ {
		key := string(gen.Index(i)[:cbl])
		if j, ok := seen[key]; ok {
			return []uint32{j, i}
		}
		seen[key] = i
	}
	t.Fatal("no 16-bit collision in 4096 digests; generator is broken")
	return nil
}

func TestVerify_AcceptsGenuineSolution(t *testing.T) {
	cfg := verifyConfig()
	header, nonce := []byte("verify-header"), []byte("7")
	pair := findPair(t, cfg, header, nonce)
	require.NoError(t, Verify(cfg, header, nonce, pair))
}

func TestVerify_RejectsMalformedCandidates(t *testing.T) {
	cfg := verifyConfig()
	header, nonce := []byte("verify-header"), []byte("7")
	pair := findPair(t, cfg, header, nonce)

	tests := []struct {
		name    string
		indices []uint32
	}{
		{name: "wrong count", indices: pair[:1]},
		{name: "empty", indices: nil},
		{name: "duplicate indices", indices: []uint32{pair[0], pair[0]}},
		{name: "descending order", indices: []uint32{pair[1], pair[0]}},
		{name: "nonzero xor", indices: []uint32{pair[0], pair[1] + 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Verify(cfg, header, nonce, tt.indices)
			require.True(t, errors.Is(err, ErrInvalidCandidate), "got %v", err)
		})
	}
}

func TestVerify_BoundToChallenge(t *testing.T) {
	cfg := verifyConfig()
	header, nonce := []byte("verify-header"), []byte("7")
	pair := findPair(t, cfg, header, nonce)

	// The same indices under a different nonce re-derive different
	// digests and all but certainly fail the zero check.
	require.Error(t, Verify(cfg, header, []byte("8"), pair))
}

func TestVerify_EngineSolutionsValidate(t *testing.T) {
	// End to end: run the real pipeline at K=1, N=16 over genuine blake2b
	// digests and validate everything it reports.
	cfg := verifyConfig()
	cfg.InitialHashCount = 2048
	s, err := New(cfg)
	require.NoError(t, err)
	defer s.Release()

	header, nonce := []byte("e2e"), []byte("0")
	var solutions [][]uint32
	outcome := s.Solve(header, nonce, nil, func(indices []uint32, _ int, _ []byte) {
		solutions = append(solutions, indices)
	}, nil)

	// 2048 digests over a 16-bit space make at least one full collision
	// overwhelmingly likely (and deterministic for this fixed challenge).
	require.Equal(t, OutcomeSolved, outcome)
	require.NotEmpty(t, solutions)
	for _, sol := range solutions {
		require.NoError(t, Verify(cfg, header, nonce, sol))
	}
}

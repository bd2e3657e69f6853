package params

import "sync"

// mainnetSolverConfig carries the production Equihash 192,7 parameters.
// The arena sizing constants target a 32-48MB working set so a session
// stays resident in a modern L3 cache.
var mainnetSolverConfig = &SolverConfig{
	N:              192,
	K:              7,
	DigestLength:   32,
	PersonalPrefix: "ZERO_PoW",

	InitialHashCount:  1 << 19,
	MaxPairsPerStage:  1 << 17,
	BucketBits:        16,
	MaxBucketLen:      1 << 12,
	AncestorPoolLen:   1 << 21,
	MemoryBudgetBytes: 48 << 20,

	DigestBatchLog2: 12,
}

var solverConfig = MainnetConfig()
var solverConfigLock sync.RWMutex

// MainnetConfig returns the production solver parameters.
func MainnetConfig() *SolverConfig {
	return mainnetSolverConfig
}

// EquihashConfig retrieves the active solver config.
func EquihashConfig() *SolverConfig {
	solverConfigLock.RLock()
	defer solverConfigLock.RUnlock()
	return solverConfig
}

// OverrideSolverConfig by replacing the config. The preferred pattern is to
// call EquihashConfig().Copy(), change the specific parameters, and then
// call OverrideSolverConfig(c). Any subsequent calls to
// params.EquihashConfig() will return this new configuration.
func OverrideSolverConfig(c *SolverConfig) {
	solverConfigLock.Lock()
	defer solverConfigLock.Unlock()
	solverConfig = c
}

// MinimalTestConfig returns a drastically shrunk parameter set for tests
// that exercise the full pipeline without the production memory footprint.
func MinimalTestConfig() *SolverConfig {
	cfg := mainnetSolverConfig.Copy()
	cfg.InitialHashCount = 1 << 10
	cfg.MaxPairsPerStage = 1 << 12
	cfg.MaxBucketLen = 1 << 8
	cfg.AncestorPoolLen = 1 << 16
	cfg.MemoryBudgetBytes = 4 << 20
	cfg.DigestBatchLog2 = 6
	return cfg
}

package solver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	attemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "solver_attempts_total",
		Help: "Solve attempts by outcome.",
	}, []string{"outcome"})
	solutionsFoundTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "solver_solutions_found_total",
		Help: "Valid solutions reported across all attempts.",
	})
	truncatedBucketsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "solver_truncated_buckets_total",
		Help: "Buckets whose pair enumeration was cut at the bucket size cap.",
	})
	cappedStagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "solver_capped_stages_total",
		Help: "Stages that stopped emitting at the per-stage pair cap.",
	})
	droppedCandidatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "solver_dropped_candidates_total",
		Help: "Terminal-stage candidates dropped for failing structural checks.",
	})
	skippedEntriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "solver_skipped_entries_total",
		Help: "Stage input entries skipped for malformed bucket keys.",
	})
)

// Stats holds per-solver diagnostic counters. They accumulate across the
// attempts run on one Solver; the prometheus counters above aggregate the
// same events process-wide.
type Stats struct {
	Attempts            uint64
	Solutions           uint64
	TruncatedBuckets    uint64
	CappedStages        uint64
	DroppedCandidates   uint64
	SkippedEntries      uint64
	SharedAncestorPairs uint64
}

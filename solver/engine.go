package solver

import (
	"github.com/oneidprod/solver1927/encoding/bitwindow"
)

// population is the input of one collision stage: the initial digest
// table at stage 0, a stage buffer afterwards. digest returns the
// meaningful (low N bits) region of entry i. buf is nil at stage 0, where
// entry i's ancestor set is implicitly {i}.
type population struct {
	count  int
	buf    *stageBuffer
	digest func(i int) []byte
}

type attempt struct {
	solver     *Solver
	cancel     CancelFunc
	onSolution SolutionFunc
	nonce      []byte
}

func (at *attempt) cancelled() bool {
	return at.cancel != nil && at.cancel()
}

// run executes the collision pipeline over the freshly generated digest
// table. Stages 0..K-1 merge pairs on their B-bit windows, doubling
// ancestor sets up to 2^K; terminal stage K evaluates the surviving
// nodes, whose zero check spans the full N bits and therefore also covers
// the one window no merge stage consumed. Cancellation is honored at
// stage boundaries.
func (at *attempt) run(initial int) Outcome {
	s := at.solver
	cfg := s.cfg
	a := s.arena
	cbl := cfg.CollisionByteLength()
	dl := cfg.DigestLength

	in := population{
		count:  initial,
		digest: func(i int) []byte { return a.digests[i*dl : i*dl+cbl] },
	}

	var out *stageBuffer
	for stage := uint32(0); stage < cfg.K; stage++ {
		if at.cancelled() {
			return OutcomeCancelled
		}
		out = &a.buffers[stage%2]
		out.reset()
		at.runStage(stage, in, out)
		log.WithFields(map[string]interface{}{
			"stage":   stage,
			"input":   in.count,
			"emitted": out.count,
		}).Debug("Collision stage complete")
		if out.count == 0 {
			return OutcomeExhausted
		}
		in = population{count: out.count, buf: out, digest: out.digest}
	}

	if at.cancelled() {
		return OutcomeCancelled
	}
	if at.extract(out) > 0 {
		return OutcomeSolved
	}
	return OutcomeExhausted
}

// runStage partitions the input population into buckets on the stage
// window, enumerates pairs bucket by bucket in ascending bucket order,
// and emits merged collision nodes into out.
func (at *attempt) runStage(stage uint32, in population, out *stageBuffer) {
	s := at.solver
	cfg := s.cfg
	a := s.arena

	windowBits := uint(cfg.CollisionBitLength())
	bitOff := uint(stage) * windowBits
	shift := windowBits - uint(cfg.BucketBits)
	numBuckets := uint32(1) << cfg.BucketBits

	// Partition: counting sort on the leading BucketBits of each window.
	// The full window is kept per entry for the exact-match check below.
	counts := a.bucketCounts
	for i := range counts {
		counts[i] = 0
	}
	for i := 0; i < in.count; i++ {
		w, ok := bitwindow.Extract(in.digest(i), bitOff, windowBits)
		key := w >> shift
		if !ok || key >= numBuckets {
			a.windows[i] = invalidWindow
			s.stats.SkippedEntries++
			skippedEntriesTotal.Inc()
			continue
		}
		a.windows[i] = w
		counts[key]++
	}
	starts := a.bucketStarts
	var sum uint32
	for k := range counts {
		starts[k] = sum
		sum += counts[k]
		counts[k] = starts[k]
	}
	for i := 0; i < in.count; i++ {
		w := a.windows[i]
		if w == invalidWindow {
			continue
		}
		key := w >> shift
		a.bucketEntries[counts[key]] = uint32(i)
		counts[key]++
	}
	// counts[k] is now the end offset of bucket k, starts[k] its start.

	// Enumerate and merge. Membership in a bucket only proves the leading
	// BucketBits match; a pair is merged only if the entire window is
	// equal, which is what makes the XOR zero out this stage's bits.
	pairCap := int(cfg.MaxPairsPerStage)
	maxBucket := int(cfg.MaxBucketLen)
	capped := false

outer:
	for k := uint32(0); k < numBuckets; k++ {
		start := int(starts[k])
		n := int(counts[k]) - start
		if n < 2 {
			continue
		}
		if n > maxBucket {
			n = maxBucket
			s.stats.TruncatedBuckets++
			truncatedBucketsTotal.Inc()
		}
		for x := 0; x < n-1; x++ {
			i := int(a.bucketEntries[start+x])
			for y := x + 1; y < n; y++ {
				j := int(a.bucketEntries[start+y])
				if a.windows[i] != a.windows[j] {
					continue
				}
				if out.count >= pairCap {
					capped = true
					break outer
				}
				if at.merge(in, i, j, out) == mergePoolFull {
					capped = true
					break outer
				}
			}
		}
	}
	if capped {
		s.stats.CappedStages++
		cappedStagesTotal.Inc()
	}
}

type mergeResult int

const (
	mergeEmitted mergeResult = iota
	mergeShared
	mergePoolFull
)

// merge emits the collision node for the pair (i, j), or rejects it when
// the parents share an ancestor. The new ancestor set is the sorted union
// of the parents' sets; the new digest is their XOR.
func (at *attempt) merge(in population, i, j int, out *stageBuffer) mergeResult {
	var ia, ja []uint32
	var ibuf, jbuf [1]uint32
	if in.buf == nil {
		ibuf[0] = uint32(i)
		jbuf[0] = uint32(j)
		ia, ja = ibuf[:], jbuf[:]
	} else {
		ia, ja = in.buf.ancestors(i), in.buf.ancestors(j)
	}

	need := len(ia) + len(ja)
	if out.poolUsed+need > len(out.pool) {
		return mergePoolFull
	}
	dst := out.pool[out.poolUsed : out.poolUsed+need]
	if !mergeDisjoint(dst, ia, ja) {
		at.solver.stats.SharedAncestorPairs++
		return mergeShared
	}

	slot := out.count
	out.aoff[slot] = uint32(out.poolUsed)
	out.alen[slot] = uint32(need)
	out.poolUsed += need
	at.solver.caps.XOR(out.digest(slot), in.digest(i), in.digest(j))
	out.count++
	return mergeEmitted
}

// mergeDisjoint merges two sorted ancestor sets into dst, returning false
// as soon as the sets share an element. Two sorted sets are disjoint iff
// their merged sequence has no adjacent duplicate, so the check falls out
// of the merge itself.
func mergeDisjoint(dst, a, b []uint32) bool {
	k := 0
	for len(a) > 0 && len(b) > 0 {
		switch {
		case a[0] < b[0]:
			dst[k] = a[0]
			a = a[1:]
		case b[0] < a[0]:
			dst[k] = b[0]
			b = b[1:]
		default:
			return false
		}
		k++
	}
	k += copy(dst[k:], a)
	copy(dst[k:], b)
	return true
}

// extract filters terminal-stage nodes for structural completeness and
// reports the survivors. Dropped candidates are counted, never fatal.
func (at *attempt) extract(out *stageBuffer) int {
	cfg := at.solver.cfg
	width := cfg.SolutionWidth()
	found := 0
	for i := 0; i < out.count; i++ {
		anc := out.ancestors(i)
		if len(anc) != width || !strictlyAscending(anc) {
			at.solver.stats.DroppedCandidates++
			droppedCandidatesTotal.Inc()
			continue
		}
		if !allZero(out.digest(i)) {
			// An ordinary near miss: the node collided on every merged
			// window but not on the trailing one.
			continue
		}
		found++
		at.solver.stats.Solutions++
		solutionsFoundTotal.Inc()
		log.WithField("indices", width).Info("Solution found")
		if at.onSolution != nil {
			sol := make([]uint32, width)
			copy(sol, anc)
			at.onSolution(sol, 0, at.nonce)
		}
	}
	return found
}

func strictlyAscending(v []uint32) bool {
	for i := 1; i < len(v); i++ {
		if v[i-1] >= v[i] {
			return false
		}
	}
	return true
}

func allZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

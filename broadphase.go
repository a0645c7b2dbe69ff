package rigid2d

import "sort"

// BodyPair is an unordered candidate pair from the broad-phase, stored in
// canonical order: A.ID() < B.ID().
type BodyPair struct {
	A, B *Body
}

func makeBodyPair(a, b *Body) BodyPair {
	if a.id > b.id {
		a, b = b, a
	}
	return BodyPair{A: a, B: b}
}

// key packs the canonical id pair into a single comparable value used for
// manifold lookups.
func (p BodyPair) key() uint64 {
	return uint64(p.A.id)<<32 | uint64(p.B.id)
}

// broadPhase shortlists candidate colliding pairs by sweeping fattened
// AABBs along the x axis (sort and prune). Output order is not part of
// the contract; callers key manifolds by the canonical pair.
type broadPhase struct {
	order []*Body // scratch, sorted by AABB lower x
	pairs []BodyPair
}

// updatePairs recomputes each body's fattened AABB and returns all pairs
// whose fattened AABBs overlap, excluding pairs where both bodies are
// static. The returned slice is reused between calls.
func (bp *broadPhase) updatePairs(bodies []*Body) []BodyPair {
	bp.pairs = bp.pairs[:0]
	bp.order = bp.order[:0]

	for _, b := range bodies {
		b.fatAABB = b.shape.ComputeAABB(b.xf).Fattened(aabbMargin)
		bp.order = append(bp.order, b)
	}

	// Sort by left edge, with the body id as a tie-break so the sweep is
	// deterministic across runs.
	sort.Slice(bp.order, func(i, j int) bool {
		bi, bj := bp.order[i], bp.order[j]
		if bi.fatAABB.Lower.X != bj.fatAABB.Lower.X {
			return bi.fatAABB.Lower.X < bj.fatAABB.Lower.X
		}
		return bi.id < bj.id
	})

	for i, a := range bp.order {
		for _, b := range bp.order[i+1:] {
			if b.fatAABB.Lower.X > a.fatAABB.Upper.X {
				// No body further right can overlap a.
				break
			}
			if a.static && b.static {
				continue
			}
			if a.fatAABB.Lower.Y > b.fatAABB.Upper.Y || b.fatAABB.Lower.Y > a.fatAABB.Upper.Y {
				continue
			}
			bp.pairs = append(bp.pairs, makeBodyPair(a, b))
		}
	}

	return bp.pairs
}

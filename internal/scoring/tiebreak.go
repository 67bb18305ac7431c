package scoring

import "sort"

// TieBreaker orders boats that finished the series on equal net points.
// Implementations never change net points and never clear the tied flag;
// they only decide display order within a tied group.
type TieBreaker interface {
	// Name is the descriptor recorded on tied standings.
	Name() string
	// Less reports whether boat a ranks ahead of boat b given each boat's
	// per-race counted scores (discards already removed). The slices are
	// in no particular order; implementations sort as needed.
	Less(a, b []float64) bool
}

// NoopTieBreaker leaves tied boats in stable input order. This is the
// default: ties are detected and flagged, not resolved.
type NoopTieBreaker struct{}

// Name implements TieBreaker.
func (NoopTieBreaker) Name() string { return "none" }

// Less implements TieBreaker; it never reorders.
func (NoopTieBreaker) Less(a, b []float64) bool { return false }

// CountBack orders tied boats by comparing their counted scores best
// first: the boat with the better best score wins, then the better second
// best, and so on. Boats that remain equal stay in stable input order.
type CountBack struct{}

// Name implements TieBreaker.
func (CountBack) Name() string { return "countback" }

// Less implements TieBreaker.
func (CountBack) Less(a, b []float64) bool {
	as := append([]float64(nil), a...)
	bs := append([]float64(nil), b...)
	sort.Float64s(as)
	sort.Float64s(bs)
	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i] != bs[i] {
			return as[i] < bs[i]
		}
	}
	return false
}

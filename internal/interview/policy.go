package interview

// Hire recommendation labels.
const (
	RecommendStrongYes = "strong yes"
	RecommendYes       = "yes"
	RecommendMaybe     = "maybe"
	RecommendNo        = "no"
)

// Policy holds the recommendation bands. Bounds are inclusive: an average of
// exactly 7.0 is a "strong yes" under the defaults.
type Policy struct {
	StrongYes float64
	Yes       float64
	Maybe     float64
}

func DefaultPolicy() Policy {
	return Policy{StrongYes: 7.0, Yes: 6.0, Maybe: 5.0}
}

// Recommend derives the hire recommendation from an average score. The label
// is computed locally so it stays deterministic and auditable, independent of
// the evaluator's free text.
func (p Policy) Recommend(averageScore float64) string {
	switch {
	case averageScore >= p.StrongYes:
		return RecommendStrongYes
	case averageScore >= p.Yes:
		return RecommendYes
	case averageScore >= p.Maybe:
		return RecommendMaybe
	default:
		return RecommendNo
	}
}

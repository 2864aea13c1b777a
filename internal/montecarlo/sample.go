package montecarlo

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/alexanderramin/tempo/internal/domain"
)

type Distribution string

const (
	Triangular Distribution = "triangular"
	PERT       Distribution = "pert"
)

// ParseDistribution accepts "triangular" or "pert"; empty means triangular.
func ParseDistribution(s string) (Distribution, error) {
	switch Distribution(s) {
	case "", Triangular:
		return Triangular, nil
	case PERT:
		return PERT, nil
	}
	return "", fmt.Errorf("unknown distribution %q (want triangular or pert)", s)
}

// sample draws one duration from e. Degenerate estimates return the
// likely value without consuming randomness.
func sample(e domain.ThreePoint, dist Distribution, src rand.Source) float64 {
	if e.Degenerate() {
		return e.Likely
	}
	switch dist {
	case PERT:
		span := e.Pessimistic - e.Optimistic
		b := distuv.Beta{
			Alpha: 1 + 4*(e.Likely-e.Optimistic)/span,
			Beta:  1 + 4*(e.Pessimistic-e.Likely)/span,
			Src:   src,
		}
		return e.Optimistic + b.Rand()*span
	default:
		return distuv.NewTriangle(e.Optimistic, e.Pessimistic, e.Likely, src).Rand()
	}
}

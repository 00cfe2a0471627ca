package opinionspace

import "math"

// Layout tunables.  The relaxation is a small fixed-iteration heuristic, not
// a converging n-body simulation: it assumes a few dozen clusters at most and
// runs O(N²) force passes per round.
const (
	// DefaultLayoutRounds is the fixed number of relaxation rounds.
	DefaultLayoutRounds = 50

	// initRadius is the radius of the initial circle in the X-Z plane.
	initRadius = 5.0

	// minIdealDistance and idealDistanceSpan map similarity to target
	// separation: near-identical clusters settle at 2, maximally dissimilar
	// ones at 10.
	minIdealDistance  = 2.0
	idealDistanceSpan = 8.0

	// springFactor scales the displacement-proportional spring force.
	springFactor = 0.5

	// repulsionRange is the distance under which the hard repulsion kicks in,
	// keeping points from collapsing onto one another regardless of
	// similarity.  repulsionStrength/d² is added inside that range.
	repulsionRange    = 2.0
	repulsionStrength = 2.0

	// zeroDistance stands in for an exactly-zero pair distance so the force
	// terms stay finite.
	zeroDistance = 0.1

	// initialDamping is the first-round force scale; it decays linearly to 0
	// across the rounds.
	initialDamping = 0.3
)

// ComputePositions lays the clusters out in 3-D space so that more-similar
// clusters end up closer together.  The Y coordinate encodes stance
// ((avgScore−50)/10) and is fixed at initialisation; only X and Z are relaxed.
// The result is mean-centred on the X-Z plane and fully deterministic.
//
// Positions are returned in cluster order; sim must be the full N×N matrix
// from SimilarityMatrix.
func ComputePositions(clusters []ClusterSummary, sim [][]float64, rounds int) []Position {
	n := len(clusters)
	switch n {
	case 0:
		return []Position{}
	case 1:
		return []Position{{X: 0, Y: 0, Z: 0}}
	}
	if rounds <= 0 {
		rounds = DefaultLayoutRounds
	}

	// Indexed coordinate arrays; no shared nodes, no identity.
	xs := make([]float64, n)
	ys := make([]float64, n)
	zs := make([]float64, n)
	for i, c := range clusters {
		angle := 2 * math.Pi * float64(i) / float64(n)
		xs[i] = initRadius * math.Cos(angle)
		zs[i] = initRadius * math.Sin(angle)
		ys[i] = (c.AvgScore - 50) / 10
	}

	fx := make([]float64, n)
	fz := make([]float64, n)
	for round := 0; round < rounds; round++ {
		for i := range fx {
			fx[i], fz[i] = 0, 0
		}

		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				dx := xs[j] - xs[i]
				dz := zs[j] - zs[i]
				d := math.Sqrt(dx*dx + dz*dz)
				if d == 0 {
					d = zeroDistance
				}
				ux, uz := dx/d, dz/d

				ideal := (1-sim[i][j])*idealDistanceSpan + minIdealDistance
				// Positive when the pair is stretched past its ideal
				// distance: pulls together.  Negative pushes apart.
				spring := (d - ideal) * springFactor
				fx[i] += ux * spring
				fz[i] += uz * spring
				fx[j] -= ux * spring
				fz[j] -= uz * spring

				if d < repulsionRange {
					rep := repulsionStrength / (d * d)
					fx[i] -= ux * rep
					fz[i] -= uz * rep
					fx[j] += ux * rep
					fz[j] += uz * rep
				}
			}
		}

		damping := initialDamping * (1 - float64(round)/float64(rounds))
		for i := 0; i < n; i++ {
			xs[i] += fx[i] * damping
			zs[i] += fz[i] * damping
		}
	}

	// Recentre so the layout's X-Z centroid sits at the origin.  Y keeps its
	// stance encoding untouched.
	meanX, meanZ := 0.0, 0.0
	for i := 0; i < n; i++ {
		meanX += xs[i]
		meanZ += zs[i]
	}
	meanX /= float64(n)
	meanZ /= float64(n)

	positions := make([]Position, n)
	for i := 0; i < n; i++ {
		positions[i] = Position{X: xs[i] - meanX, Y: ys[i], Z: zs[i] - meanZ}
	}
	return positions
}

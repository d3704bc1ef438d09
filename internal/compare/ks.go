package compare

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// KSInsufficient is returned by KS and KSPValue when either sample has
// fewer than two points.
const KSInsufficient = -1.0

// KS returns the two-sample Kolmogorov-Smirnov statistic, the largest
// distance between the empirical distribution functions of a and b.
func KS(a, b []float64) float64 {
	if len(a) < 2 || len(b) < 2 {
		return KSInsufficient
	}
	return stat.KolmogorovSmirnov(sorted(a), nil, sorted(b), nil)
}

// KSPValue returns the asymptotic p-value of the two-sample KS test.
func KSPValue(a, b []float64) float64 {
	d := KS(a, b)
	if d == KSInsufficient {
		return KSInsufficient
	}
	n, m := float64(len(a)), float64(len(b))
	en := math.Sqrt(n * m / (n + m))
	return kolmogorovQ((en + 0.12 + 0.11/en) * d)
}

// kolmogorovQ is the complementary Kolmogorov distribution
// Q(x) = 2 * sum_{j>=1} (-1)^(j-1) exp(-2 j^2 x^2).
func kolmogorovQ(x float64) float64 {
	const (
		eps1 = 1e-3
		eps2 = 1e-8
	)
	if x < 1e-6 {
		return 1
	}
	a2 := -2 * x * x
	sign := 2.0
	sum, prev := 0.0, 0.0
	for j := 1; j <= 100; j++ {
		term := sign * math.Exp(a2*float64(j*j))
		sum += term
		if math.Abs(term) <= eps1*prev || math.Abs(term) <= eps2*sum {
			return math.Min(math.Max(sum, 0), 1)
		}
		sign = -sign
		prev = math.Abs(term)
	}
	// Not converged, x is tiny.
	return 1
}

func sorted(x []float64) []float64 {
	out := slices.Clone(x)
	slices.Sort(out)
	return out
}

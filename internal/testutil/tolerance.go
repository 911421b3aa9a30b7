package testutil

import (
	"math"
	"testing"
)

// RequireSliceNearlyEqual fails t if got and want differ in length or if
// any element pair exceeds eps (absolute tolerance). Equal infinities match.
func RequireSliceNearlyEqual(t testing.TB, got, want []float64, eps float64) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}

	for i := range got {
		if got[i] == want[i] {
			continue
		}

		diff := math.Abs(got[i] - want[i])
		if !(diff <= eps) {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// RequireFinite fails t if any element is NaN or Inf.
func RequireFinite(t testing.TB, data []float64) {
	t.Helper()

	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}

// RequireStrictlyIncreasing fails t unless data[i] < data[i+1] for all i.
func RequireStrictlyIncreasing(t testing.TB, data []float64) {
	t.Helper()

	for i := 1; i < len(data); i++ {
		if !(data[i-1] < data[i]) {
			t.Fatalf("index %d: %v is not greater than previous %v", i, data[i], data[i-1])
		}
	}
}

// NearestIndex returns the index of the element of values closest to target,
// or -1 for an empty slice.
func NearestIndex(values []float64, target float64) int {
	best := -1
	bestDiff := math.Inf(1)

	for i, v := range values {
		if d := math.Abs(v - target); d < bestDiff {
			best, bestDiff = i, d
		}
	}

	return best
}

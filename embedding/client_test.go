package embedding

import (
	"math"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestCosineSimilarity(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		a, b []float32
		want float32
	}{
		{"Identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"Orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"Opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"ZeroVector", []float32{0, 0}, []float32{1, 1}, 0},
		{"DimensionMismatch", []float32{1, 0}, []float32{1, 0, 0}, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := CosineSimilarity(tc.a, tc.b)
			if math.Abs(float64(got-tc.want)) > 1e-6 {
				t.Errorf("got %f, want %f", got, tc.want)
			}
		})
	}
}

func TestTruncateKeepsRuneBoundary(t *testing.T) {
	t.Parallel()

	// The leading ASCII byte puts every two-byte rune off parity, so the
	// byte cut at MaxInputChars lands mid-rune.
	long := "a" + strings.Repeat("é", MaxInputChars/2)
	got := truncate(long, MaxInputChars)
	if !utf8.ValidString(got) {
		t.Error("truncated input is not valid UTF-8")
	}
	if len(got) != MaxInputChars-1 {
		t.Errorf("expected %d bytes after rune-safe cut, got %d", MaxInputChars-1, len(got))
	}
}

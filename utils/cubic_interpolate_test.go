// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func TestCubicInterpolate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		y0, y1, y2, y3 float32
		x, want        float32
	}{
		{"at y1", 0.1, 0.2, 0.9, 0.4, 0, 0.2},
		{"at y2", 0.1, 0.2, 0.9, 0.4, 1, 0.9},
		{"constant", 0.25, 0.25, 0.25, 0.25, 0.37, 0.25},
		{"line midpoint", 0, 1, 2, 3, 0.5, 1.5},
		{"line quarter", -3, -1, 1, 3, 0.25, -0.5},
		{"symmetric peak", 0, 1, 1, 0, 0.5, 1.125},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := CubicInterpolate(tt.y0, tt.y1, tt.y2, tt.y3, tt.x)
			if math.Abs(float64(got-tt.want)) > 1e-6 {
				t.Errorf("CubicInterpolate(%v, %v, %v, %v, %v) = %v, want %v",
					tt.y0, tt.y1, tt.y2, tt.y3, tt.x, got, tt.want)
			}
		})
	}
}

// Upsampling a sine through the spline should stay close to the true curve.
func TestCubicInterpolate_Sine(t *testing.T) {
	t.Parallel()

	const step = 0.1
	sample := func(i float64) float32 { return float32(math.Sin(i * step)) }

	for i := 1.0; i < 60; i++ {
		for _, x := range []float32{0.25, 0.5, 0.75} {
			got := CubicInterpolate(sample(i-1), sample(i), sample(i+1), sample(i+2), x)
			want := math.Sin((i + float64(x)) * step)
			if math.Abs(float64(got)-want) > 1e-3 {
				t.Fatalf("at %v+%v: got %v, want %v", i, x, got, want)
			}
		}
	}
}

func TestCubicInterpolate_ZeroAllocs(t *testing.T) {
	var sink float32
	allocs := testing.AllocsPerRun(100, func() {
		sink += CubicInterpolate(0.1, 0.2, 0.3, 0.4, 0.5)
	})
	if allocs != 0 {
		t.Errorf("CubicInterpolate allocated %v times", allocs)
	}
	_ = sink
}

func BenchmarkCubicInterpolate(b *testing.B) {
	var sink float32
	for b.Loop() {
		sink = CubicInterpolate(sink, 0.2, -0.3, 0.4, 0.6)
	}
	_ = sink
}

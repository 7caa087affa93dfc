package pricing

import "testing"

func TestChangePercent(t *testing.T) {
	cases := []struct {
		prev, next, want float64
	}{
		{100, 120, 20},
		{120, 100, -16.67},
		{100, 100, 0},
		{0, 150, 0},
		{99.99, 100, 0.01},
	}
	for _, tc := range cases {
		if got := ChangePercent(tc.prev, tc.next); !almostEqual(got, tc.want) {
			t.Errorf("ChangePercent(%v, %v) = %v, want %v", tc.prev, tc.next, got, tc.want)
		}
	}
}

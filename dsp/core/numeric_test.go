package core

import (
	"math"
	"testing"
)

func TestLinearPowerToDB(t *testing.T) {
	tests := []struct {
		name  string
		power float64
		want  float64
	}{
		{"unity", 1, 0},
		{"ten", 10, 10},
		{"half", 0.5, -3.010299956639812},
		{"zero", 0, math.Inf(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LinearPowerToDB(tt.power)
			if got != tt.want && !(math.Abs(got-tt.want) <= 1e-12) {
				t.Fatalf("LinearPowerToDB(%v) = %v, want %v", tt.power, got, tt.want)
			}
		})
	}

	if !math.IsNaN(LinearPowerToDB(-1)) {
		t.Fatal("negative power should give NaN")
	}
}

func TestPowerRatioDB(t *testing.T) {
	if got := PowerRatioDB(5, 5); got != 0 {
		t.Fatalf("equal power: got %v, want exactly 0", got)
	}

	if got := PowerRatioDB(1, 100); math.Abs(got+20) > 1e-12 {
		t.Fatalf("1/100: got %v, want -20", got)
	}

	if got := PowerRatioDB(0, 0); !math.IsInf(got, -1) {
		t.Fatalf("0/0: got %v, want -Inf", got)
	}

	if got := PowerRatioDB(0, 3); !math.IsInf(got, -1) {
		t.Fatalf("0/3: got %v, want -Inf", got)
	}

	if got := PowerRatioDB(1, 0); !math.IsNaN(got) {
		t.Fatalf("1/0: got %v, want NaN", got)
	}
}

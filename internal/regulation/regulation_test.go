package regulation

import (
	"errors"
	"math"
	"testing"

	"github.com/danielpatrickdp/holonetic/internal/cluster"
)

func TestSigmoidAtZero(t *testing.T) {
	if got := Sigmoid(0); got != -0.25 {
		t.Fatalf("Sigmoid(0) = %f, want -0.25", got)
	}
}

func TestSigmoidStrictlyInsideRange(t *testing.T) {
	for x := -30.0; x <= 30.0; x += 0.25 {
		got := Sigmoid(x)
		if !(got > Lower && got < Upper) {
			t.Fatalf("Sigmoid(%f) = %f, outside (%f, %f)", x, got, Lower, Upper)
		}
	}
}

func TestSigmoidMonotonic(t *testing.T) {
	prev := Sigmoid(-20)
	for x := -19.5; x <= 20; x += 0.5 {
		cur := Sigmoid(x)
		if cur <= prev {
			t.Fatalf("Sigmoid not increasing at %f: %f <= %f", x, cur, prev)
		}
		prev = cur
	}
}

func TestSigmoidExtremesStayFinite(t *testing.T) {
	for _, x := range []float64{-1e6, -800, 800, 1e6} {
		got := Sigmoid(x)
		if math.IsNaN(got) || math.IsInf(got, 0) {
			t.Fatalf("Sigmoid(%g) = %f", x, got)
		}
		if got < Lower || got > Upper {
			t.Fatalf("Sigmoid(%g) = %f, outside [%f, %f]", x, got, Lower, Upper)
		}
	}
	if got := Sigmoid(-1e6); got != Lower {
		t.Fatalf("Sigmoid(-1e6) = %f, want %f", got, Lower)
	}
	if got := Sigmoid(1e6); got != Upper {
		t.Fatalf("Sigmoid(1e6) = %f, want %f", got, Upper)
	}
}

func TestSigmoidKnownValue(t *testing.T) {
	// 1.5/(1+e^-1) - 1
	want := 1.5/(1+math.Exp(-1)) - 1
	if got := Sigmoid(1); math.Abs(got-want) > 1e-15 {
		t.Fatalf("Sigmoid(1) = %.17f, want %.17f", got, want)
	}
	want = 1.5/(1+math.Exp(2)) - 1
	if got := Sigmoid(-2); math.Abs(got-want) > 1e-15 {
		t.Fatalf("Sigmoid(-2) = %.17f, want %.17f", got, want)
	}
}

func TestActivation(t *testing.T) {
	got := Activation([]float64{-1, -2, -3}, []float64{0.9, 0.5, 0.3})
	if math.Abs(got-(-28)) > 1e-12 {
		t.Fatalf("Activation = %f, want -28", got)
	}
}

func TestFactorUsesPositiveRow(t *testing.T) {
	r := NewRegulator(cluster.Default())

	delta := []float64{0.01, -0.02, 0.005}
	got, err := r.Factor(delta, 2)
	if err != nil {
		t.Fatalf("Factor: %v", err)
	}
	// row 2 = [0.5, 0.3, 0.9]
	want := Sigmoid((0.01*0.5 - 0.02*0.3 + 0.005*0.9) * 10)
	if math.Abs(got-want) > 1e-15 {
		t.Fatalf("Factor = %f, want %f", got, want)
	}
}

func TestFactorZeroGap(t *testing.T) {
	r := NewRegulator(cluster.Default())
	got, err := r.Factor([]float64{0, 0, 0}, 0)
	if err != nil {
		t.Fatalf("Factor: %v", err)
	}
	if got != -0.25 {
		t.Fatalf("Factor at zero gap = %f, want -0.25", got)
	}
}

func TestFactorErrors(t *testing.T) {
	r := NewRegulator(cluster.Default())
	if _, err := r.Factor([]float64{0, 0}, 0); err == nil {
		t.Fatal("expected error on short gap vector")
	}
	if _, err := r.Factor([]float64{0, 0, 0}, 5); !errors.Is(err, cluster.ErrDimensionOutOfRange) {
		t.Fatalf("expected ErrDimensionOutOfRange, got %v", err)
	}
}

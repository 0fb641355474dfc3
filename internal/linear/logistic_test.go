package linear

import (
	"errors"
	"math"
	"testing"

	"github.com/ppiankov/truthlens/internal/text"
)

// separable builds a two-feature dataset where feature 0 marks truthful and
// feature 1 marks deceptive samples, with an imbalance of 6:2.
func separable() ([]text.Vector, []int) {
	truthful := text.Vector{Dim: 2, Indices: []int{0}, Values: []float64{1}}
	deceptive := text.Vector{Dim: 2, Indices: []int{1}, Values: []float64{1}}

	var X []text.Vector
	var y []int
	for i := 0; i < 6; i++ {
		X = append(X, truthful)
		y = append(y, 0)
	}
	for i := 0; i < 2; i++ {
		X = append(X, deceptive)
		y = append(y, 1)
	}
	return X, y
}

func TestClassWeights_Balanced(t *testing.T) {
	_, y := separable()
	cw, err := ClassWeights(y, "balanced")
	if err != nil {
		t.Fatalf("ClassWeights: %v", err)
	}
	if math.Abs(cw[0]-8.0/12.0) > 1e-12 || math.Abs(cw[1]-2.0) > 1e-12 {
		t.Errorf("unexpected balanced weights %v", cw)
	}

	uniform, err := ClassWeights(y, "")
	if err != nil {
		t.Fatalf("ClassWeights: %v", err)
	}
	if uniform != [2]float64{1, 1} {
		t.Errorf("expected uniform weights, got %v", uniform)
	}
}

func TestClassWeights_SingleClass(t *testing.T) {
	if _, err := ClassWeights([]int{1, 1, 1}, "balanced"); err == nil {
		t.Error("expected error when only one class is present")
	}
	if _, err := ClassWeights([]int{0, 2}, "balanced"); err == nil {
		t.Error("expected error for invalid class")
	}
}

func TestFit_SeparableData(t *testing.T) {
	X, y := separable()
	c := New(Options{C: 1.0, MaxIter: 1000, Tolerance: 1e-4, ClassWeight: "balanced"})

	info, err := c.Fit(X, y)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if info.Iterations == 0 {
		t.Error("expected at least one iteration")
	}

	for i, x := range X {
		class, probs, err := c.Predict(x)
		if err != nil {
			t.Fatalf("Predict: %v", err)
		}
		if class != y[i] {
			t.Errorf("sample %d: predicted %d, want %d", i, class, y[i])
		}
		if math.Abs(probs[0]+probs[1]-1) > 1e-12 {
			t.Errorf("probabilities do not sum to 1: %v", probs)
		}
	}
}

func TestFit_GradientMatchesFiniteDifference(t *testing.T) {
	X, y := separable()
	obj := &objective{X: X, dim: 2}
	for _, label := range y {
		obj.y = append(obj.y, float64(label))
		obj.s = append(obj.s, 1.5)
	}

	params := []float64{0.3, -0.7, 0.1}
	grad := make([]float64, len(params))
	obj.grad(grad, params)

	const h = 1e-6
	for k := range params {
		plus := append([]float64(nil), params...)
		minus := append([]float64(nil), params...)
		plus[k] += h
		minus[k] -= h
		numeric := (obj.loss(plus) - obj.loss(minus)) / (2 * h)
		if math.Abs(numeric-grad[k]) > 1e-5 {
			t.Errorf("param %d: analytic %v, numeric %v", k, grad[k], numeric)
		}
	}
}

func TestFit_Errors(t *testing.T) {
	c := New(Options{})
	if _, err := c.Fit(nil, nil); err == nil {
		t.Error("expected error for empty data")
	}

	X, y := separable()
	if _, err := c.Fit(X, y[:3]); err == nil {
		t.Error("expected error for label count mismatch")
	}

	X[0] = text.Vector{Dim: 3}
	if _, err := c.Fit(X, y); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestPredict_Errors(t *testing.T) {
	c := New(Options{})
	if _, _, err := c.Predict(text.Vector{Dim: 2}); !errors.Is(err, ErrNotTrained) {
		t.Errorf("expected ErrNotTrained, got %v", err)
	}

	X, y := separable()
	if _, err := c.Fit(X, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if _, _, err := c.Predict(text.Vector{Dim: 5}); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestState_RoundTrip(t *testing.T) {
	X, y := separable()
	c := New(Options{ClassWeight: "balanced"})
	if _, err := c.Fit(X, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	restored, err := FromState(c.State())
	if err != nil {
		t.Fatalf("FromState: %v", err)
	}
	for _, x := range X {
		_, a, _ := c.Predict(x)
		_, b, _ := restored.Predict(x)
		if a != b {
			t.Errorf("probabilities differ after restore: %v vs %v", a, b)
		}
	}

	if _, err := FromState(State{}); err == nil {
		t.Error("expected error for empty state")
	}
}

func TestSoftplusStable(t *testing.T) {
	if v := softplus(1000); math.IsInf(v, 0) || math.Abs(v-1000) > 1e-9 {
		t.Errorf("softplus(1000) = %v", v)
	}
	if v := softplus(-1000); v != 0 {
		t.Errorf("softplus(-1000) = %v", v)
	}
	if v := sigmoid(-1000); v != 0 {
		t.Errorf("sigmoid(-1000) = %v", v)
	}
}

package linear

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"

	"github.com/ppiankov/truthlens/internal/model"
	"github.com/ppiankov/truthlens/internal/text"
)

var (
	// ErrDimensionMismatch is returned when a vector does not match the model width
	ErrDimensionMismatch = errors.New("feature dimension mismatch")
	// ErrNotTrained is returned when predicting with an unfitted model
	ErrNotTrained = errors.New("classifier is not trained")
)

// Options configures logistic regression training
type Options struct {
	C           float64 `json:"c"`
	MaxIter     int     `json:"max_iter"`
	Tolerance   float64 `json:"tolerance"`
	ClassWeight string  `json:"class_weight"` // "balanced" or ""
}

// State is the serializable form of a trained model
type State struct {
	Options      Options    `json:"options"`
	Weights      []float64  `json:"weights"`
	Intercept    float64    `json:"intercept"`
	ClassWeights [2]float64 `json:"class_weights"`
}

// FitInfo summarises an optimisation run
type FitInfo struct {
	Iterations  int
	Evaluations int
	Loss        float64
	Status      string
	Converged   bool
}

// Classifier is a binary L2-regularised logistic regression over sparse vectors.
// Read-only after Fit.
type Classifier struct {
	opts         Options
	weights      []float64
	intercept    float64
	classWeights [2]float64
}

// New creates an untrained classifier
func New(opts Options) *Classifier {
	if opts.C <= 0 {
		opts.C = 1.0
	}
	if opts.MaxIter <= 0 {
		opts.MaxIter = 1000
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = 1e-4
	}
	return &Classifier{opts: opts}
}

// FromState restores a trained classifier
func FromState(s State) (*Classifier, error) {
	if len(s.Weights) == 0 {
		return nil, errors.New("classifier state has no weights")
	}
	c := New(s.Options)
	c.weights = append([]float64(nil), s.Weights...)
	c.intercept = s.Intercept
	c.classWeights = s.ClassWeights
	return c, nil
}

// State returns a copy of the trained parameters
func (c *Classifier) State() State {
	return State{
		Options:      c.opts,
		Weights:      append([]float64(nil), c.weights...),
		Intercept:    c.intercept,
		ClassWeights: c.classWeights,
	}
}

// Dim returns the number of features the model expects
func (c *Classifier) Dim() int {
	return len(c.weights)
}

// ClassWeights computes per-class sample weights. "balanced" gives
// n / (2 * count_c); anything else gives 1 for both classes.
func ClassWeights(y []int, mode string) ([2]float64, error) {
	var counts [2]int
	for i, label := range y {
		if label != model.ClassTruthful && label != model.ClassDeceptive {
			return [2]float64{}, fmt.Errorf("sample %d: invalid class %d", i, label)
		}
		counts[label]++
	}
	if counts[0] == 0 || counts[1] == 0 {
		return [2]float64{}, fmt.Errorf("training data needs both classes, got %d truthful and %d deceptive", counts[0], counts[1])
	}

	if mode != "balanced" {
		return [2]float64{1, 1}, nil
	}
	n := float64(len(y))
	return [2]float64{
		n / (2 * float64(counts[0])),
		n / (2 * float64(counts[1])),
	}, nil
}

// Fit minimises C * sum_i s_i * logloss_i + 0.5 * ||w||^2 with L-BFGS.
// The intercept is not penalised.
func (c *Classifier) Fit(X []text.Vector, y []int) (FitInfo, error) {
	if len(X) == 0 {
		return FitInfo{}, errors.New("fit: no samples")
	}
	if len(X) != len(y) {
		return FitInfo{}, fmt.Errorf("fit: %d samples but %d labels", len(X), len(y))
	}
	dim := X[0].Dim
	for i, x := range X {
		if x.Dim != dim {
			return FitInfo{}, fmt.Errorf("sample %d: %w: %d != %d", i, ErrDimensionMismatch, x.Dim, dim)
		}
	}

	cw, err := ClassWeights(y, c.opts.ClassWeight)
	if err != nil {
		return FitInfo{}, err
	}

	sampleWeight := make([]float64, len(y))
	target := make([]float64, len(y))
	for i, label := range y {
		sampleWeight[i] = c.opts.C * cw[label]
		target[i] = float64(label)
	}

	obj := &objective{X: X, y: target, s: sampleWeight, dim: dim}
	problem := optimize.Problem{
		Func: obj.loss,
		Grad: obj.grad,
	}
	settings := &optimize.Settings{
		MajorIterations:   c.opts.MaxIter,
		GradientThreshold: c.opts.Tolerance,
	}

	result, err := optimize.Minimize(problem, make([]float64, dim+1), settings, &optimize.LBFGS{})
	if result == nil {
		return FitInfo{}, fmt.Errorf("optimize: %w", err)
	}
	// A line search that stalls at the optimum still leaves a usable location.
	if err != nil && !allFinite(result.X) {
		return FitInfo{}, fmt.Errorf("optimize: %w", err)
	}

	c.weights = append([]float64(nil), result.X[:dim]...)
	c.intercept = result.X[dim]
	c.classWeights = cw

	info := FitInfo{
		Iterations:  result.MajorIterations,
		Evaluations: result.FuncEvaluations,
		Loss:        result.F,
		Status:      result.Status.String(),
		Converged:   err == nil && result.Status != optimize.IterationLimit,
	}
	return info, nil
}

// Decision returns w.x + b
func (c *Classifier) Decision(x text.Vector) (float64, error) {
	if len(c.weights) == 0 {
		return 0, ErrNotTrained
	}
	if x.Dim != len(c.weights) {
		return 0, fmt.Errorf("%w: vector has %d features, model expects %d", ErrDimensionMismatch, x.Dim, len(c.weights))
	}
	return x.Dot(c.weights) + c.intercept, nil
}

// Predict returns the predicted class and the probabilities [P(truthful), P(deceptive)]
func (c *Classifier) Predict(x text.Vector) (int, [2]float64, error) {
	z, err := c.Decision(x)
	if err != nil {
		return 0, [2]float64{}, err
	}
	p1 := sigmoid(z)
	probs := [2]float64{1 - p1, p1}
	if p1 > 0.5 {
		return model.ClassDeceptive, probs, nil
	}
	return model.ClassTruthful, probs, nil
}

// PredictAll predicts every vector, failing on the first error
func (c *Classifier) PredictAll(X []text.Vector) ([]int, error) {
	out := make([]int, len(X))
	for i, x := range X {
		class, _, err := c.Predict(x)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		out[i] = class
	}
	return out, nil
}

type objective struct {
	X   []text.Vector
	y   []float64
	s   []float64
	dim int
}

// params layout: weights[0:dim], intercept at dim
func (o *objective) loss(params []float64) float64 {
	w := params[:o.dim]
	b := params[o.dim]

	total := 0.5 * floats.Dot(w, w)
	for i, x := range o.X {
		z := x.Dot(w) + b
		if o.y[i] == 1 {
			total += o.s[i] * softplus(-z)
		} else {
			total += o.s[i] * softplus(z)
		}
	}
	return total
}

func (o *objective) grad(grad, params []float64) {
	w := params[:o.dim]
	b := params[o.dim]

	copy(grad[:o.dim], w)
	grad[o.dim] = 0
	for i, x := range o.X {
		z := x.Dot(w) + b
		r := o.s[i] * (sigmoid(z) - o.y[i])
		for k, idx := range x.Indices {
			grad[idx] += r * x.Values[k]
		}
		grad[o.dim] += r
	}
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// softplus computes log(1 + exp(t)) without overflow
func softplus(t float64) float64 {
	if t > 0 {
		return t + math.Log1p(math.Exp(-t))
	}
	return math.Log1p(math.Exp(t))
}

func allFinite(xs []float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

package score

import (
	"fmt"
	"strings"

	"github.com/ppiankov/truthlens/internal/model"
)

// ClassNames labels the two classes in reports and plots
var ClassNames = [2]string{"truthful", "deceptive"}

// ClassMetrics holds the per-class scores
type ClassMetrics struct {
	Name      string  `json:"name"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// ConfusionMatrix counts predictions; rows are true classes, columns predicted
type ConfusionMatrix [2][2]int

// Report is the evaluation of one set of predictions
type Report struct {
	Classes     [2]ClassMetrics `json:"classes"`
	Accuracy    float64         `json:"accuracy"`
	MacroAvg    ClassMetrics    `json:"macro_avg"`
	WeightedAvg ClassMetrics    `json:"weighted_avg"`
	Confusion   ConfusionMatrix `json:"confusion_matrix"`
	Total       int             `json:"total"`
}

// Evaluate compares predictions against true labels.
// A metric whose denominator is zero is reported as 0.
func Evaluate(yTrue, yPred []int) (*Report, error) {
	if len(yTrue) != len(yPred) {
		return nil, fmt.Errorf("evaluate: %d labels but %d predictions", len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return nil, fmt.Errorf("evaluate: no samples")
	}

	var cm ConfusionMatrix
	for i := range yTrue {
		t, p := yTrue[i], yPred[i]
		if !validClass(t) || !validClass(p) {
			return nil, fmt.Errorf("evaluate: sample %d has invalid class (true %d, predicted %d)", i, t, p)
		}
		cm[t][p]++
	}

	r := &Report{Confusion: cm, Total: len(yTrue)}
	correct := 0
	for c := 0; c < 2; c++ {
		tp := cm[c][c]
		predicted := cm[0][c] + cm[1][c]
		actual := cm[c][0] + cm[c][1]
		correct += tp

		m := ClassMetrics{
			Name:      ClassNames[c],
			Precision: ratio(tp, predicted),
			Recall:    ratio(tp, actual),
			Support:   actual,
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		r.Classes[c] = m
	}
	r.Accuracy = ratio(correct, r.Total)

	r.MacroAvg = ClassMetrics{Name: "macro avg", Support: r.Total}
	r.WeightedAvg = ClassMetrics{Name: "weighted avg", Support: r.Total}
	for _, m := range r.Classes {
		r.MacroAvg.Precision += m.Precision / 2
		r.MacroAvg.Recall += m.Recall / 2
		r.MacroAvg.F1 += m.F1 / 2

		w := float64(m.Support) / float64(r.Total)
		r.WeightedAvg.Precision += m.Precision * w
		r.WeightedAvg.Recall += m.Recall * w
		r.WeightedAvg.F1 += m.F1 * w
	}

	return r, nil
}

func validClass(c int) bool {
	return c == model.ClassTruthful || c == model.ClassDeceptive
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// String renders a plain-text classification report
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%12s %10s %10s %10s %10s\n\n", "", "precision", "recall", "f1-score", "support")
	for _, m := range r.Classes {
		writeRow(&b, m)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%12s %10s %10s %10.2f %10d\n", "accuracy", "", "", r.Accuracy, r.Total)
	writeRow(&b, r.MacroAvg)
	writeRow(&b, r.WeightedAvg)
	return b.String()
}

func writeRow(b *strings.Builder, m ClassMetrics) {
	fmt.Fprintf(b, "%12s %10.2f %10.2f %10.2f %10d\n", m.Name, m.Precision, m.Recall, m.F1, m.Support)
}

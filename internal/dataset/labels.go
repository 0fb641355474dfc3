package dataset

import "github.com/ppiankov/truthlens/internal/model"

// labelMap folds the six LIAR truthfulness ratings into two classes
var labelMap = map[string]int{
	"true":        model.ClassTruthful,
	"mostly-true": model.ClassTruthful,
	"half-true":   model.ClassTruthful,
	"barely-true": model.ClassDeceptive,
	"false":       model.ClassDeceptive,
	"pants-fire":  model.ClassDeceptive,
}

// MapLabel maps a raw LIAR label to a binary class.
// Unknown labels return false and leave the class unset; no error is raised.
func MapLabel(raw string) (int, bool) {
	class, ok := labelMap[raw]
	return class, ok
}

// ToLabel wraps MapLabel into a possibly-missing model.Label
func ToLabel(raw string) model.Label {
	class, ok := MapLabel(raw)
	if !ok {
		return model.Label{}
	}
	return model.NewLabel(class)
}

// ToStatements keeps the statement text and binary label of each record
func ToStatements(records []model.LIARRecord) []model.Statement {
	statements := make([]model.Statement, len(records))
	for i, r := range records {
		statements[i] = model.Statement{
			Text:  r.Statement,
			Label: ToLabel(r.Label),
		}
	}
	return statements
}

// Stats summarizes class balance of a statement set
type Stats struct {
	Total     int
	Truthful  int
	Deceptive int
	Missing   int
}

// ComputeStats counts statements per class
func ComputeStats(statements []model.Statement) Stats {
	s := Stats{Total: len(statements)}
	for _, st := range statements {
		switch {
		case !st.Label.Valid:
			s.Missing++
		case st.Label.Value == model.ClassTruthful:
			s.Truthful++
		default:
			s.Deceptive++
		}
	}
	return s
}

// Labeled returns the statements that carry a valid label and the number dropped
func Labeled(statements []model.Statement) ([]model.Statement, int) {
	kept := make([]model.Statement, 0, len(statements))
	for _, st := range statements {
		if st.Label.Valid {
			kept = append(kept, st)
		}
	}
	return kept, len(statements) - len(kept)
}

package model

// Binary truthfulness classes
const (
	ClassTruthful  = 0
	ClassDeceptive = 1
)

// Label is a binary truthfulness label that may be missing.
// A raw LIAR label outside the known vocabulary produces an invalid Label.
type Label struct {
	Value int  `json:"value"`
	Valid bool `json:"valid"`
}

// NewLabel returns a valid label for the given class
func NewLabel(class int) Label {
	return Label{Value: class, Valid: true}
}

// Statement is a labeled news statement ready for training
type Statement struct {
	Text  string `json:"text"`
	Label Label  `json:"label"`
}

// LIARRecord is one row of the raw LIAR TSV (14 fixed columns)
type LIARRecord struct {
	ID                string
	Label             string
	Statement         string
	Subject           string
	Speaker           string
	JobTitle          string
	StateInfo         string
	PartyAffiliation  string
	BarelyTrueCounts  string
	FalseCounts       string
	HalfTrueCounts    string
	MostlyTrueCounts  string
	PantsOnFireCounts string
	Context           string
}

// LIARColumns names the raw TSV columns in file order
var LIARColumns = []string{
	"id", "label", "statement", "subject", "speaker", "job_title",
	"state_info", "party_affiliation", "barely_true_counts",
	"false_counts", "half_true_counts", "mostly_true_counts",
	"pants_on_fire_counts", "context",
}

package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/truthlens/internal/linear"
	"github.com/ppiankov/truthlens/internal/model"
	"github.com/ppiankov/truthlens/internal/text"
)

// SchemaVersion is the artifact layout version written by this build
const SchemaVersion = 1

// ErrIncompatibleArtifacts is returned when a classifier was not trained on the
// feature space of the vectorizer it is loaded with
var ErrIncompatibleArtifacts = errors.New("incompatible artifacts")

// VectorizerArtifact is the on-disk form of a fitted vectorizer
type VectorizerArtifact struct {
	SchemaVersion int        `json:"schema_version"`
	RunID         string     `json:"run_id"`
	CreatedAt     time.Time  `json:"created_at"`
	Fingerprint   string     `json:"fingerprint"`
	Vectorizer    text.State `json:"vectorizer"`
}

// ClassifierArtifact is the on-disk form of a trained classifier
type ClassifierArtifact struct {
	SchemaVersion         int          `json:"schema_version"`
	RunID                 string       `json:"run_id"`
	CreatedAt             time.Time    `json:"created_at"`
	VectorizerFingerprint string       `json:"vectorizer_fingerprint"`
	NFeatures             int          `json:"n_features"`
	Classifier            linear.State `json:"classifier"`
}

// Pair is a validated vectorizer and classifier loaded together
type Pair struct {
	Vectorizer *text.Vectorizer
	Classifier *linear.Classifier
	Info       model.ModelInfo
}

// NewRunID returns a fresh training run identifier
func NewRunID() string {
	return uuid.NewString()
}

// SavePair writes both artifacts stamped with the same run id
func SavePair(vecPath, modelPath, runID string, createdAt time.Time, vec *text.Vectorizer, clf *linear.Classifier) error {
	if !vec.Fitted() {
		return text.ErrNotFitted
	}
	if clf.Dim() != vec.Dim() {
		return fmt.Errorf("%w: classifier has %d features, vectorizer %d", ErrIncompatibleArtifacts, clf.Dim(), vec.Dim())
	}

	fingerprint := vec.Fingerprint()
	createdAt = createdAt.UTC()

	va := VectorizerArtifact{
		SchemaVersion: SchemaVersion,
		RunID:         runID,
		CreatedAt:     createdAt,
		Fingerprint:   fingerprint,
		Vectorizer:    vec.State(),
	}
	if err := WriteJSON(vecPath, va); err != nil {
		return fmt.Errorf("save vectorizer: %w", err)
	}

	ca := ClassifierArtifact{
		SchemaVersion:         SchemaVersion,
		RunID:                 runID,
		CreatedAt:             createdAt,
		VectorizerFingerprint: fingerprint,
		NFeatures:             clf.Dim(),
		Classifier:            clf.State(),
	}
	if err := WriteJSON(modelPath, ca); err != nil {
		return fmt.Errorf("save classifier: %w", err)
	}
	return nil
}

// LoadPair reads both artifacts and checks that they belong together
func LoadPair(vecPath, modelPath string) (*Pair, error) {
	var va VectorizerArtifact
	if err := readJSON(vecPath, &va); err != nil {
		return nil, fmt.Errorf("load vectorizer: %w", err)
	}
	var ca ClassifierArtifact
	if err := readJSON(modelPath, &ca); err != nil {
		return nil, fmt.Errorf("load classifier: %w", err)
	}

	if va.SchemaVersion != SchemaVersion || ca.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("%w: schema versions %d/%d, want %d", ErrIncompatibleArtifacts, va.SchemaVersion, ca.SchemaVersion, SchemaVersion)
	}
	if ca.VectorizerFingerprint != va.Fingerprint {
		return nil, fmt.Errorf("%w: classifier was trained on vectorizer %s, found %s", ErrIncompatibleArtifacts, short(ca.VectorizerFingerprint), short(va.Fingerprint))
	}

	vec, err := text.FromState(va.Vectorizer)
	if err != nil {
		return nil, fmt.Errorf("restore vectorizer: %w", err)
	}
	if got := vec.Fingerprint(); got != va.Fingerprint {
		return nil, fmt.Errorf("%w: vectorizer content does not match its fingerprint", ErrIncompatibleArtifacts)
	}

	clf, err := linear.FromState(ca.Classifier)
	if err != nil {
		return nil, fmt.Errorf("restore classifier: %w", err)
	}
	if ca.NFeatures != vec.Dim() || clf.Dim() != vec.Dim() {
		return nil, fmt.Errorf("%w: classifier has %d features, vectorizer %d", ErrIncompatibleArtifacts, clf.Dim(), vec.Dim())
	}

	return &Pair{
		Vectorizer: vec,
		Classifier: clf,
		Info: model.ModelInfo{
			RunID:     ca.RunID,
			Features:  vec.Dim(),
			CreatedAt: ca.CreatedAt,
		},
	}, nil
}

func short(fingerprint string) string {
	if len(fingerprint) > 12 {
		return fingerprint[:12]
	}
	return fingerprint
}

// WriteJSON writes v as indented JSON via a temp file and rename
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

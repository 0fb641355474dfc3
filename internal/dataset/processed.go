package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ppiankov/truthlens/internal/model"
)

var processedHeader = []string{"text", "label"}

// WriteProcessed writes statements as a `text,label` CSV.
// Missing labels are written as an empty cell.
func WriteProcessed(path string, statements []model.Statement) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()

	return EncodeProcessed(f, statements)
}

// EncodeProcessed writes the processed CSV to w
func EncodeProcessed(w io.Writer, statements []model.Statement) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(processedHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, st := range statements {
		label := ""
		if st.Label.Valid {
			label = strconv.Itoa(st.Label.Value)
		}
		if err := cw.Write([]string{st.Text, label}); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadProcessed reads a `text,label` CSV written by WriteProcessed
func ReadProcessed(path string) ([]model.Statement, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return DecodeProcessed(f)
}

// DecodeProcessed parses the processed CSV from r
func DecodeProcessed(r io.Reader) ([]model.Statement, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(processedHeader)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty file")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if header[0] != processedHeader[0] || header[1] != processedHeader[1] {
		return nil, fmt.Errorf("unexpected header %v", header)
	}

	var statements []model.Statement
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		st := model.Statement{Text: row[0]}
		if row[1] != "" {
			class, err := parseClass(row[1])
			if err != nil {
				line, _ := cr.FieldPos(1)
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			st.Label = model.NewLabel(class)
		}
		statements = append(statements, st)
	}

	return statements, nil
}

// parseClass accepts "0"/"1" and the float form "0.0"/"1.0" that
// spreadsheet tools produce once a column contains empty cells
func parseClass(s string) (int, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid label %q", s)
	}
	switch v {
	case 0:
		return model.ClassTruthful, nil
	case 1:
		return model.ClassDeceptive, nil
	default:
		return 0, fmt.Errorf("invalid label %q", s)
	}
}

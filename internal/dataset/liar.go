package dataset

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ppiankov/truthlens/internal/model"
)

// maxLineBytes bounds a single TSV row; LIAR context fields can be long
const maxLineBytes = 1 << 20

// ReadLIAR reads a raw LIAR TSV file (no header, 14 columns)
func ReadLIAR(path string) ([]model.LIARRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return ParseLIAR(f)
}

// ParseLIAR parses LIAR rows. Quotes are not special: statements contain bare
// double quotes, so fields are split on tabs only.
func ParseLIAR(r io.Reader) ([]model.LIARRecord, error) {
	var records []model.LIARRecord

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}

		fields := strings.Split(text, "\t")
		if len(fields) != len(model.LIARColumns) {
			return nil, fmt.Errorf("line %d: expected %d columns, got %d", line, len(model.LIARColumns), len(fields))
		}

		records = append(records, model.LIARRecord{
			ID:                fields[0],
			Label:             fields[1],
			Statement:         fields[2],
			Subject:           fields[3],
			Speaker:           fields[4],
			JobTitle:          fields[5],
			StateInfo:         fields[6],
			PartyAffiliation:  fields[7],
			BarelyTrueCounts:  fields[8],
			FalseCounts:       fields[9],
			HalfTrueCounts:    fields[10],
			MostlyTrueCounts:  fields[11],
			PantsOnFireCounts: fields[12],
			Context:           fields[13],
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	return records, nil
}

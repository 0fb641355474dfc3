package dataset

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ppiankov/truthlens/internal/model"
)

func TestMapLabel_KnownLabels(t *testing.T) {
	tests := map[string]int{
		"true":        0,
		"mostly-true": 0,
		"half-true":   0,
		"barely-true": 1,
		"false":       1,
		"pants-fire":  1,
	}

	for raw, want := range tests {
		got, ok := MapLabel(raw)
		if !ok {
			t.Errorf("MapLabel(%q): expected a mapping", raw)
			continue
		}
		if got != want {
			t.Errorf("MapLabel(%q) = %d, want %d", raw, got, want)
		}
	}
}

func TestMapLabel_UnknownLabels(t *testing.T) {
	for _, raw := range []string{"", "TRUE", "pants-on-fire", "mostly true", "unknown"} {
		if _, ok := MapLabel(raw); ok {
			t.Errorf("MapLabel(%q): expected no mapping", raw)
		}
		if label := ToLabel(raw); label.Valid {
			t.Errorf("ToLabel(%q): expected missing label, got %+v", raw, label)
		}
	}
}

const sampleTSV = "2635.json\tfalse\tSays the Annies List political group supports third-trimester abortions on demand.\tabortion\tdwayne-bohac\tState representative\tTexas\trepublican\t0\t1\t0\t0\t0\ta mailer\n" +
	"10540.json\thalf-true\tWhen did the decline of coal start? It started when \"natural gas\" took off.\tenergy\tscott-surovell\tState delegate\tVirginia\tdemocrat\t0\t0\t1\t1\t0\ta floor speech.\n" +
	"324.json\tfull-flop\tHillary Clinton agrees with John McCain.\tforeign-policy\tbarack-obama\tPresident\tIllinois\tdemocrat\t70\t71\t160\t163\t9\tDenver\n"

func TestParseLIAR(t *testing.T) {
	records, err := ParseLIAR(strings.NewReader(sampleTSV))
	if err != nil {
		t.Fatalf("ParseLIAR: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	if records[0].ID != "2635.json" || records[0].Label != "false" || records[0].Context != "a mailer" {
		t.Errorf("unexpected first record: %+v", records[0])
	}
	if !strings.Contains(records[1].Statement, `"natural gas"`) {
		t.Errorf("expected bare quotes preserved, got %q", records[1].Statement)
	}
}

func TestParseLIAR_WrongColumnCount(t *testing.T) {
	_, err := ParseLIAR(strings.NewReader("1.json\ttrue\tonly three\n"))
	if err == nil || !strings.Contains(err.Error(), "line 1") {
		t.Errorf("expected column count error naming line 1, got %v", err)
	}
}

func TestToStatements_KeepsUnknownAsMissing(t *testing.T) {
	records, err := ParseLIAR(strings.NewReader(sampleTSV))
	if err != nil {
		t.Fatal(err)
	}

	statements := ToStatements(records)
	stats := ComputeStats(statements)

	if stats.Total != 3 || stats.Truthful != 1 || stats.Deceptive != 1 || stats.Missing != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	kept, dropped := Labeled(statements)
	if len(kept) != 2 || dropped != 1 {
		t.Errorf("expected 2 kept and 1 dropped, got %d and %d", len(kept), dropped)
	}
}

func TestProcessed_RoundTrip(t *testing.T) {
	statements := []model.Statement{
		{Text: "Plain statement", Label: model.NewLabel(0)},
		{Text: `Has "quotes", and a comma`, Label: model.NewLabel(1)},
		{Text: "Unknown rating", Label: model.Label{}},
	}

	var buf bytes.Buffer
	if err := EncodeProcessed(&buf, statements); err != nil {
		t.Fatalf("EncodeProcessed: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "text,label\n") {
		t.Errorf("expected text,label header, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "Unknown rating,\n") {
		t.Errorf("expected empty label cell for missing label, got %q", buf.String())
	}

	got, err := DecodeProcessed(&buf)
	if err != nil {
		t.Fatalf("DecodeProcessed: %v", err)
	}
	if len(got) != len(statements) {
		t.Fatalf("expected %d statements, got %d", len(statements), len(got))
	}
	for i := range statements {
		if got[i] != statements[i] {
			t.Errorf("statement %d: got %+v, want %+v", i, got[i], statements[i])
		}
	}
}

func TestDecodeProcessed_FloatLabels(t *testing.T) {
	got, err := DecodeProcessed(strings.NewReader("text,label\na,1.0\nb,0.0\nc,\n"))
	if err != nil {
		t.Fatalf("DecodeProcessed: %v", err)
	}
	if got[0].Label != model.NewLabel(1) || got[1].Label != model.NewLabel(0) || got[2].Label.Valid {
		t.Errorf("unexpected labels: %+v", got)
	}
}

func TestDecodeProcessed_InvalidLabel(t *testing.T) {
	if _, err := DecodeProcessed(strings.NewReader("text,label\na,2\n")); err == nil {
		t.Error("expected error for label 2")
	}
}

func TestSplit_Deterministic(t *testing.T) {
	items := make([]int, 103)
	for i := range items {
		items[i] = i
	}

	train1, test1, err := Split(items, 0.2, 42)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	train2, test2, err := Split(items, 0.2, 42)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}

	if len(test1) != 21 || len(train1) != 82 {
		t.Errorf("expected 82/21 split, got %d/%d", len(train1), len(test1))
	}
	if len(train1) != len(train2) || len(test1) != len(test2) {
		t.Fatal("split sizes differ between runs")
	}
	for i := range train1 {
		if train1[i] != train2[i] {
			t.Fatalf("train order differs at %d", i)
		}
	}
	for i := range test1 {
		if test1[i] != test2[i] {
			t.Fatalf("test order differs at %d", i)
		}
	}

	seen := make(map[int]bool)
	for _, v := range append(append([]int{}, train1...), test1...) {
		if seen[v] {
			t.Fatalf("item %d appears twice", v)
		}
		seen[v] = true
	}
	if len(seen) != len(items) {
		t.Errorf("expected every item exactly once, got %d", len(seen))
	}
}

func TestSplitSizes_Invalid(t *testing.T) {
	if _, _, err := SplitSizes(10, 0); err == nil {
		t.Error("expected error for test size 0")
	}
	if _, _, err := SplitSizes(10, 1); err == nil {
		t.Error("expected error for test size 1")
	}
	if _, _, err := SplitSizes(1, 0.2); err == nil {
		t.Error("expected error when nothing is left to train on")
	}
}

package analysis

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

const sampleCSV = "3,4\n4,3\n2,5\n1,3\n3,9\n3,3\n"

func TestParseColumns(t *testing.T) {
	cols, err := NewCSVService().ParseColumns("sample", strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ParseColumns: %v", err)
	}
	wantLeft := []uint32{3, 4, 2, 1, 3, 3}
	wantRight := []uint32{4, 3, 5, 3, 9, 3}
	if !slices.Equal(cols.Left, wantLeft) {
		t.Errorf("left = %v, want %v", cols.Left, wantLeft)
	}
	if !slices.Equal(cols.Right, wantRight) {
		t.Errorf("right = %v, want %v", cols.Right, wantRight)
	}
	if cols.Len() != 6 {
		t.Errorf("Len() = %d, want 6", cols.Len())
	}
}

func TestParseColumnsFixtures(t *testing.T) {
	for _, name := range []string{"sample.csv", "padded.csv"} {
		t.Run(name, func(t *testing.T) {
			cols, err := NewCSVService().ReadColumns(filepath.Join("testdata", name))
			if err != nil {
				t.Fatalf("ReadColumns: %v", err)
			}
			if len(cols.Left) != len(cols.Right) || len(cols.Left) != 6 {
				t.Fatalf("got %d left, %d right values; want 6 each", len(cols.Left), len(cols.Right))
			}
			if got := Distance(cols.Left, cols.Right); got != 11 {
				t.Errorf("Distance = %d, want 11", got)
			}
		})
	}
}

func TestParseColumnsHeader(t *testing.T) {
	in := "left,right\n" + sampleCSV
	s := &CSVService{Header: true}
	cols, err := s.ParseColumns("with-header", strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseColumns: %v", err)
	}
	if cols.Len() != 6 {
		t.Fatalf("Len() = %d, want 6", cols.Len())
	}

	_, err = NewCSVService().ParseColumns("with-header", strings.NewReader(in))
	if !errors.Is(err, ErrParse) {
		t.Fatalf("header parsed as data: err = %v, want parse error", err)
	}
}

func TestParseColumnsExtraFields(t *testing.T) {
	cols, err := NewCSVService().ParseColumns("extra", strings.NewReader("1,2,3\n4,5,6\n"))
	if err != nil {
		t.Fatalf("ParseColumns: %v", err)
	}
	if !slices.Equal(cols.Left, []uint32{1, 4}) || !slices.Equal(cols.Right, []uint32{2, 5}) {
		t.Errorf("got %v / %v", cols.Left, cols.Right)
	}
}

func TestParseColumnsEmpty(t *testing.T) {
	cols, err := NewCSVService().ParseColumns("empty", strings.NewReader(""))
	if err != nil {
		t.Fatalf("ParseColumns: %v", err)
	}
	if cols.Len() != 0 {
		t.Errorf("Len() = %d, want 0", cols.Len())
	}
}

func TestParseColumnsErrors(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		kind  Kind
		is    error
		row   int
		field int
	}{
		{"non numeric left", "1,2\nx,3\n", KindParse, ErrParse, 2, 1},
		{"non numeric right", "1,2\n3,abc\n", KindParse, ErrParse, 2, 2},
		{"negative", "-1,2\n", KindParse, ErrParse, 1, 1},
		{"too large", "4294967296,1\n", KindParse, ErrParse, 1, 1},
		{"blank field", "1, \n", KindParse, ErrParse, 1, 2},
		{"single field", "1,2\n3\n", KindRecordFormat, ErrRecordFormat, 2, 0},
		{"unterminated quote", "1,\"2\n", KindRecordFormat, ErrRecordFormat, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols, err := NewCSVService().ParseColumns("bad.csv", strings.NewReader(tt.in))
			if err == nil {
				t.Fatalf("expected error, got columns %v", cols)
			}
			if cols.Len() != 0 {
				t.Errorf("partial result returned: %v", cols)
			}
			if !errors.Is(err, tt.is) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.is)
			}
			if KindOf(err) != tt.kind {
				t.Errorf("KindOf = %v, want %v", KindOf(err), tt.kind)
			}
			var e *Error
			if !errors.As(err, &e) {
				t.Fatalf("not an *Error: %T", err)
			}
			if e.Row != tt.row || e.Field != tt.field {
				t.Errorf("row/field = %d/%d, want %d/%d", e.Row, e.Field, tt.row, tt.field)
			}
			if !strings.Contains(err.Error(), "bad.csv") {
				t.Errorf("message %q does not name the location", err.Error())
			}
		})
	}
}

func TestReadColumnsMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.csv")
	_, err := NewCSVService().ReadColumns(path)
	if !errors.Is(err, ErrIO) {
		t.Fatalf("err = %v, want io error", err)
	}
	if KindOf(err) != KindIO {
		t.Errorf("KindOf = %v, want io", KindOf(err))
	}
}

func TestPackageAnalyses(t *testing.T) {
	path := filepath.Join("testdata", "sample.csv")
	dist, err := TotalDistance(path)
	if err != nil {
		t.Fatalf("TotalDistance: %v", err)
	}
	if dist != 11 {
		t.Errorf("TotalDistance = %d, want 11", dist)
	}
	score, err := SimilarityScore(path)
	if err != nil {
		t.Fatalf("SimilarityScore: %v", err)
	}
	if score != 31 {
		t.Errorf("SimilarityScore = %d, want 31", score)
	}

	missing := filepath.Join(t.TempDir(), "nope.csv")
	if _, err := TotalDistance(missing); !errors.Is(err, ErrIO) {
		t.Errorf("TotalDistance(missing) err = %v", err)
	}
	if _, err := SimilarityScore(missing); !errors.Is(err, ErrIO) {
		t.Errorf("SimilarityScore(missing) err = %v", err)
	}
}

type countingLoader struct {
	cols  Columns
	calls int
}

func (l *countingLoader) Load(context.Context, string) (Columns, error) {
	l.calls++
	return l.cols, nil
}

func TestAnalyzerUsesLoader(t *testing.T) {
	loader := &countingLoader{cols: Columns{Left: []uint32{3, 4, 2, 1, 3, 3}, Right: []uint32{4, 3, 5, 3, 9, 3}}}
	a := NewAnalyzer(loader)
	ctx := context.Background()
	if d, _ := a.TotalDistance(ctx, "x"); d != 11 {
		t.Errorf("TotalDistance = %d", d)
	}
	if s, _ := a.SimilarityScore(ctx, "x"); s != 31 {
		t.Errorf("SimilarityScore = %d", s)
	}
	if loader.calls != 2 {
		t.Errorf("loader called %d times, want 2", loader.calls)
	}
	if !slices.Equal(loader.cols.Left, []uint32{3, 4, 2, 1, 3, 3}) {
		t.Errorf("loader columns mutated: %v", loader.cols.Left)
	}
}

func TestAnalyzerOverflowNamesLocation(t *testing.T) {
	big := uint32(1 << 31)
	loader := &countingLoader{cols: Columns{Left: []uint32{big, big}, Right: []uint32{big}}}
	_, err := NewAnalyzer(loader).SimilarityScore(context.Background(), "huge.csv")
	if !errors.Is(err, ErrOverflow) {
		t.Fatalf("err = %v, want overflow", err)
	}
	if !strings.Contains(err.Error(), "huge.csv") {
		t.Errorf("message %q does not name the location", err.Error())
	}
}

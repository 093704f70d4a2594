package analysis

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"
)

// DefaultInput is the location read when none is configured.
const DefaultInput = "puzzle_input.csv"

// Columns holds the left and right field of every record, in row order.
type Columns struct {
	Left  []uint32
	Right []uint32
}

// Len returns the number of records the columns were built from.
func (c Columns) Len() int {
	return len(c.Left)
}

type CSVService struct {
	// Header skips the first record.
	Header bool
}

func NewCSVService() *CSVService {
	return &CSVService{}
}

// ReadColumns opens a local CSV file and parses it into columns.
// The file is closed before ReadColumns returns.
func (s *CSVService) ReadColumns(filePath string) (Columns, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return Columns{}, IOError(filePath, err)
	}
	defer file.Close()

	return s.ParseColumns(filePath, file)
}

// ParseColumns reads every record from r. The first two fields of each
// record are trimmed and parsed as unsigned 32-bit integers. Any failure
// aborts the parse and no partial columns are returned.
func (s *CSVService) ParseColumns(location string, r io.Reader) (Columns, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	var cols Columns
	skipHeader := s.Header
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return Columns{}, &Error{Kind: KindRecordFormat, Location: location, Row: perr.StartLine, Err: perr.Err}
			}
			return Columns{}, IOError(location, err)
		}

		line, _ := reader.FieldPos(0)
		if skipHeader {
			skipHeader = false
			continue
		}
		if len(record) < 2 {
			return Columns{}, &Error{
				Kind:     KindRecordFormat,
				Location: location,
				Row:      line,
				Msg:      "expected at least 2 fields, found " + strconv.Itoa(len(record)),
			}
		}

		left, err := parseField(record[0])
		if err != nil {
			return Columns{}, ParseError(location, line, 1, err)
		}
		right, err := parseField(record[1])
		if err != nil {
			return Columns{}, ParseError(location, line, 2, err)
		}

		cols.Left = append(cols.Left, left)
		cols.Right = append(cols.Right, right)
	}

	return cols, nil
}

func parseField(s string) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

// Loader produces columns for a location. Implementations may cache.
type Loader interface {
	Load(ctx context.Context, location string) (Columns, error)
}

// FileLoader reads local files with a CSVService on every call.
type FileLoader struct {
	CSV *CSVService
}

func (l FileLoader) Load(_ context.Context, location string) (Columns, error) {
	csvService := l.CSV
	if csvService == nil {
		csvService = NewCSVService()
	}
	return csvService.ReadColumns(location)
}

// Analyzer runs both analyses against columns obtained from a Loader.
type Analyzer struct {
	Loader Loader
}

func NewAnalyzer(loader Loader) *Analyzer {
	if loader == nil {
		loader = FileLoader{}
	}
	return &Analyzer{Loader: loader}
}

// TotalDistance loads location and returns Distance over its columns.
func (a *Analyzer) TotalDistance(ctx context.Context, location string) (uint64, error) {
	cols, err := a.Loader.Load(ctx, location)
	if err != nil {
		return 0, err
	}
	return Distance(cols.Left, cols.Right), nil
}

// SimilarityScore loads location and returns Similarity over its columns.
func (a *Analyzer) SimilarityScore(ctx context.Context, location string) (uint32, error) {
	cols, err := a.Loader.Load(ctx, location)
	if err != nil {
		return 0, err
	}
	score, err := Similarity(cols.Left, cols.Right)
	if err != nil {
		var e *Error
		if errors.As(err, &e) && e.Location == "" {
			e.Location = location
		}
		return 0, err
	}
	return score, nil
}

// TotalDistance parses the CSV file at filePath and returns the sum of
// absolute differences between its independently sorted columns.
func TotalDistance(filePath string) (uint64, error) {
	return NewAnalyzer(nil).TotalDistance(context.Background(), filePath)
}

// SimilarityScore parses the CSV file at filePath and returns the sum of
// each left value weighted by its count in the right column.
func SimilarityScore(filePath string) (uint32, error) {
	return NewAnalyzer(nil).SimilarityScore(context.Background(), filePath)
}

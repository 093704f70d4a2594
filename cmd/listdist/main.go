package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"listdist/internal/analysis"
	"listdist/internal/service"
	"listdist/internal/state"
)

func main() {
	os.Exit(run(os.Args[1:], os.Getenv, os.Stdin, os.Stdout, os.Stderr))
}

type options struct {
	input   string
	header  bool
	strict  bool
	noCache bool
	verbose bool
	report  string
	dsn     string
	table   string
	left    string
	right   string
}

func parseFlags(args []string, cfg state.Config, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("listdist", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.input, "input", cfg.Input, "CSV location: a path, s3://bucket/key, or - for stdin (env LISTDIST_INPUT)")
	fs.BoolVar(&o.header, "header", cfg.Header, "Skip the first row as a header (env LISTDIST_HEADER)")
	fs.BoolVar(&o.strict, "strict", cfg.Strict, "Exit 1 when an analysis fails (env LISTDIST_STRICT)")
	fs.BoolVar(&o.noCache, "no-cache", false, "Parse the input separately for each analysis")
	fs.BoolVar(&o.verbose, "v", false, "Log input loading to stderr")
	fs.StringVar(&o.report, "report", "", "Also write a PDF report to this file")
	fs.StringVar(&o.dsn, "db", "", "Read columns from Postgres using this DSN instead of a CSV")
	fs.StringVar(&o.table, "table", "", "Table to read with -db")
	fs.StringVar(&o.left, "left", "left", "Left column name with -db")
	fs.StringVar(&o.right, "right", "right", "Right column name with -db")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: listdist [flags] [input.csv]\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	switch fs.NArg() {
	case 0:
	case 1:
		o.input = fs.Arg(0)
	default:
		fs.Usage()
		return o, fmt.Errorf("expected at most one input, got %d", fs.NArg())
	}
	if o.dsn != "" && o.table == "" {
		fs.Usage()
		return o, fmt.Errorf("-db requires -table")
	}
	return o, nil
}

// run prints both analyses and returns the exit status. A failed analysis
// still exits 0 unless strict is set.
func run(args []string, getenv func(string) string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg := state.FromEnv(getenv)
	o, err := parseFlags(args, cfg, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	logger := log.New(io.Discard, "listdist: ", 0)
	if o.verbose {
		logger.SetOutput(stderr)
	}

	ctx := context.Background()
	loader, location, cleanup, err := newLoader(ctx, o, cfg, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if o.strict {
			return 1
		}
		return 0
	}
	defer cleanup()
	logger.Printf("reading %s", location)

	a := analysis.NewAnalyzer(loader)
	failed := false

	if dist, err := a.TotalDistance(ctx, location); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		failed = true
	} else {
		fmt.Fprintf(stdout, "Total distance: %d\n", dist)
	}

	if score, err := a.SimilarityScore(ctx, location); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		failed = true
	} else {
		fmt.Fprintf(stdout, "Similarity Score: %d\n", score)
	}

	if o.report != "" {
		if err := writeReport(ctx, loader, location, o.report); err != nil {
			fmt.Fprintf(stderr, "Error: report: %v\n", err)
			failed = true
		} else {
			logger.Printf("wrote report %s", o.report)
		}
	}

	if cl, ok := loader.(*service.ColumnLoader); ok {
		hits, misses := cl.Stats()
		logger.Printf("parsed %d time(s), %d cache hit(s)", misses, hits)
	}

	if failed && o.strict {
		return 1
	}
	return 0
}

func newLoader(ctx context.Context, o options, cfg state.Config, stdin io.Reader) (analysis.Loader, string, func(), error) {
	if o.dsn != "" {
		ds := &service.PostgresDataSource{}
		if err := ds.Connect(ctx, service.DataSourceConfig{DSN: o.dsn}); err != nil {
			return nil, "", nil, analysis.SourceError("postgres:"+o.table, err.Error())
		}
		return service.TableLoader{DS: ds, Table: o.table, Left: o.left, Right: o.right},
			"postgres:" + o.table, func() { ds.Close() }, nil
	}

	router := service.NewRouter(cfg.AWSRegion)
	if o.input == service.StdinLocation {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, "", nil, analysis.IOError(o.input, err)
		}
		router.Stdin = service.BytesSource{Data: data}
	}

	size := cfg.CacheSize
	if o.noCache {
		size = 0
	}
	loader, err := service.NewColumnLoader(router, &analysis.CSVService{Header: o.header}, size)
	if err != nil {
		return nil, "", nil, err
	}
	return loader, o.input, func() {}, nil
}

func writeReport(ctx context.Context, loader analysis.Loader, location, dst string) error {
	cols, err := loader.Load(ctx, location)
	if err != nil {
		return err
	}
	resp := service.NewSummaryService().Summarize(location, cols)

	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	if err := service.NewReportService().WriteReport(f, resp); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

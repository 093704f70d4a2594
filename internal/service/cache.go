package service

import (
	"context"
	"strconv"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"listdist/internal/analysis"
)

// DefaultCacheSize is the number of parsed inputs kept in memory.
const DefaultCacheSize = 64

// ColumnLoader opens locations through a Source and parses them with a
// CSVService. Parsed columns are kept in an LRU keyed by location and
// object version, so an unchanged input is parsed once.
type ColumnLoader struct {
	Source Source
	CSV    *analysis.CSVService

	cache  *lru.Cache[string, analysis.Columns]
	hits   atomic.Int64
	misses atomic.Int64
}

// NewColumnLoader creates a loader. A size <= 0 disables caching.
func NewColumnLoader(src Source, csvService *analysis.CSVService, size int) (*ColumnLoader, error) {
	if csvService == nil {
		csvService = analysis.NewCSVService()
	}
	l := &ColumnLoader{Source: src, CSV: csvService}
	if size > 0 {
		c, err := lru.New[string, analysis.Columns](size)
		if err != nil {
			return nil, err
		}
		l.cache = c
	}
	return l, nil
}

// Load implements analysis.Loader.
func (l *ColumnLoader) Load(ctx context.Context, location string) (analysis.Columns, error) {
	obj, err := l.Source.Open(ctx, location)
	if err != nil {
		return analysis.Columns{}, err
	}
	defer obj.Close()
	return l.LoadObject(location, obj)
}

// LoadObject parses an object that is already open. The caller closes it.
func (l *ColumnLoader) LoadObject(location string, obj *Object) (analysis.Columns, error) {
	key := l.key(location, obj.Version)
	if key != "" {
		if cols, ok := l.cache.Get(key); ok {
			l.hits.Add(1)
			return cols, nil
		}
	}
	l.misses.Add(1)

	cols, err := l.CSV.ParseColumns(location, obj)
	if err != nil {
		return analysis.Columns{}, err
	}
	if key != "" {
		l.cache.Add(key, cols)
	}
	return cols, nil
}

func (l *ColumnLoader) key(location, version string) string {
	if l.cache == nil || version == "" {
		return ""
	}
	return location + "\x00" + version + "\x00" + strconv.FormatBool(l.CSV.Header)
}

// Stats returns cache hits and parses performed.
func (l *ColumnLoader) Stats() (hits, misses int64) {
	return l.hits.Load(), l.misses.Load()
}

// Purge drops every cached entry.
func (l *ColumnLoader) Purge() {
	if l.cache != nil {
		l.cache.Purge()
	}
}

package state

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"listdist/internal/analysis"
)

// Config holds settings resolved from defaults and the environment.
// Command line flags are applied on top by each command.
type Config struct {
	Input       string
	Header      bool
	Strict      bool
	CacheSize   int
	Port        string
	DataDir     string
	CORSOrigins []string
	RedisURL    string
	AWSRegion   string
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Input:     analysis.DefaultInput,
		CacheSize: 64,
		Port:      "8001",
		DataDir:   ".",
		CORSOrigins: []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
		},
	}
}

// FromEnv overlays environment variables on Defaults. getenv is usually
// os.Getenv. Malformed numeric or boolean values keep the default.
func FromEnv(getenv func(string) string) Config {
	c := Defaults()
	if v := getenv("LISTDIST_INPUT"); v != "" {
		c.Input = v
	}
	if v, err := strconv.ParseBool(getenv("LISTDIST_HEADER")); err == nil {
		c.Header = v
	}
	if v, err := strconv.ParseBool(getenv("LISTDIST_STRICT")); err == nil {
		c.Strict = v
	}
	if v, err := strconv.Atoi(getenv("LISTDIST_CACHE_SIZE")); err == nil && v >= 0 {
		c.CacheSize = v
	}
	if v := getenv("PORT"); v != "" {
		c.Port = v
	}
	if v := getenv("LISTDIST_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := getenv("LISTDIST_CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.CORSOrigins = origins
	}
	c.RedisURL = getenv("REDIS_URL")
	c.AWSRegion = getenv("AWS_REGION")
	return c
}

// Dataset is the most recently uploaded input
type Dataset struct {
	Name     string
	Columns  analysis.Columns
	LoadedAt time.Time
}

// AppState holds the server's mutable state
type AppState struct {
	mu      sync.RWMutex
	dataset *Dataset
}

// State is the global state instance used by the server
var State = &AppState{}

// SetDataset replaces the current dataset
func (s *AppState) SetDataset(ds *Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dataset = ds
}

// GetDataset returns the current dataset or nil
func (s *AppState) GetDataset() *Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset
}

// ClearDataset drops the current dataset
func (s *AppState) ClearDataset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dataset = nil
}

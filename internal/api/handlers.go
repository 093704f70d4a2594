package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"listdist/internal/analysis"
	"listdist/internal/models"
	"listdist/internal/service"
	"listdist/internal/state"
)

const MaxFileSize = 100 * 1024 * 1024 // 100MB

type Handler struct {
	Loader  *service.ColumnLoader
	Summary *service.SummaryService
	Reports *service.ReportService
	Results *service.ResultCache // optional
	State   *state.AppState
	// DataDir confines local locations requested over HTTP.
	DataDir string

	// NewDataSource opens database connections; tests replace it.
	NewDataSource func() service.DataSource

	dbMu      sync.Mutex
	CurrentDB service.DataSource // Active DB connection
}

func NewHandler(loader *service.ColumnLoader, results *service.ResultCache, dataDir string) *Handler {
	return &Handler{
		Loader:        loader,
		Summary:       service.NewSummaryService(),
		Reports:       service.NewReportService(),
		Results:       results,
		State:         state.State,
		DataDir:       dataDir,
		NewDataSource: func() service.DataSource { return &service.PostgresDataSource{} },
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.HealthCheck)

	r.Post("/api/analyze", h.AnalyzeUpload)
	r.Get("/api/analyze", h.AnalyzeLocation)
	r.Get("/api/status", h.GetStatus)
	r.Get("/api/report", h.GetReport)
	r.Delete("/api/dataset", h.ClearDataset)

	// DB Routes
	r.Post("/api/db/connect", h.ConnectDB)
	r.Get("/api/db/tables", h.ListTables)
	r.Post("/api/db/analyze", h.AnalyzeTable)
}

// ============================================================================
// Helpers
// ============================================================================

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: encode response: %v", err)
	}
}

// statusFor maps an analysis error kind to an HTTP status
func statusFor(err error) int {
	switch analysis.KindOf(err) {
	case analysis.KindParse, analysis.KindRecordFormat, analysis.KindOverflow:
		return http.StatusUnprocessableEntity
	case analysis.KindSource:
		return http.StatusBadRequest
	case analysis.KindIO:
		if errors.Is(err, fs.ErrNotExist) {
			return http.StatusNotFound
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	resp := models.ErrorResponse{Error: err.Error(), Kind: analysis.KindOf(err).String()}
	var e *analysis.Error
	if errors.As(err, &e) {
		resp.Row = e.Row
		resp.Field = e.Field
	}
	writeJSON(w, statusFor(err), resp)
}

// resolveLocation keeps local locations inside DataDir. Remote locations
// pass through unchanged.
func (h *Handler) resolveLocation(location string) (string, error) {
	if location == "" {
		return "", analysis.SourceError(location, "location is required")
	}
	if strings.HasPrefix(location, "s3://") {
		return location, nil
	}
	if location == service.StdinLocation || strings.Contains(location, "://") {
		return "", analysis.SourceError(location, "unsupported location")
	}
	clean := filepath.Clean(filepath.FromSlash(location))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", analysis.SourceError(location, "location escapes the data directory")
	}
	dir := h.DataDir
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, clean), nil
}

// ============================================================================
// Health
// ============================================================================

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

// ============================================================================
// Analysis
// ============================================================================

// AnalyzeUpload parses an uploaded CSV, stores it as the current dataset
// and returns both metrics
func (h *Handler) AnalyzeUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(MaxFileSize); err != nil {
		http.Error(w, "File too large", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "No file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	csvService := &analysis.CSVService{Header: h.Loader.CSV.Header}
	if v := r.FormValue("header"); v != "" {
		skip, err := strconv.ParseBool(v)
		if err != nil {
			http.Error(w, "header must be a boolean", http.StatusBadRequest)
			return
		}
		csvService.Header = skip
	}

	name := filepath.Base(header.Filename)
	cols, err := csvService.ParseColumns(name, file)
	if err != nil {
		writeError(w, err)
		return
	}

	h.State.SetDataset(&state.Dataset{Name: name, Columns: cols, LoadedAt: time.Now()})
	log.Printf("api: loaded %s (%d rows)", name, cols.Len())

	writeJSON(w, http.StatusOK, h.Summary.Summarize(name, cols))
}

// AnalyzeLocation analyzes a file under the data directory or an S3 object
func (h *Handler) AnalyzeLocation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	location := r.URL.Query().Get("location")
	resolved, err := h.resolveLocation(location)
	if err != nil {
		writeError(w, err)
		return
	}

	obj, err := h.Loader.Source.Open(ctx, resolved)
	if err != nil {
		writeError(w, err)
		return
	}
	defer obj.Close()

	key := ""
	if h.Results != nil && obj.Version != "" {
		key = service.ResultKey(location, obj.Version, h.Loader.CSV.Header)
		resp, found, err := h.Results.Get(ctx, key)
		if err != nil {
			log.Printf("api: result cache get: %v", err)
		} else if found {
			resp.Cached = true
			writeJSON(w, http.StatusOK, resp)
			return
		}
	}

	cols, err := h.Loader.LoadObject(resolved, obj)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := h.Summary.Summarize(location, cols)

	if key != "" {
		if err := h.Results.Set(ctx, key, resp); err != nil {
			log.Printf("api: result cache set: %v", err)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetStatus returns the status of the current dataset
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	status := models.DatasetStatus{}
	if ds := h.State.GetDataset(); ds != nil {
		status.Loaded = true
		status.Rows = ds.Columns.Len()
		status.Filename = ds.Name
		status.LoadedAt = ds.LoadedAt.UTC().Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, status)
}

// GetReport renders the current dataset as a PDF
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	ds := h.State.GetDataset()
	if ds == nil {
		http.Error(w, "No dataset loaded", http.StatusNotFound)
		return
	}

	resp := h.Summary.Summarize(ds.Name, ds.Columns)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", strings.TrimSuffix(ds.Name, filepath.Ext(ds.Name))+".pdf"))
	if err := h.Reports.WriteReport(w, resp); err != nil {
		log.Printf("api: write report: %v", err)
	}
}

// ClearDataset forgets the current dataset
func (h *Handler) ClearDataset(w http.ResponseWriter, r *http.Request) {
	h.State.ClearDataset()
	w.WriteHeader(http.StatusNoContent)
}

// ============================================================================
// Database
// ============================================================================

// ConnectDB establishes a database connection
func (h *Handler) ConnectDB(w http.ResponseWriter, r *http.Request) {
	var config service.DataSourceConfig
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	// Currently only Postgres supported
	if config.Type != "" && config.Type != "postgres" {
		http.Error(w, "Only postgres is supported currently", http.StatusBadRequest)
		return
	}

	ds := h.NewDataSource()
	if err := ds.Connect(r.Context(), config); err != nil {
		http.Error(w, fmt.Sprintf("Failed to connect: %v", err), http.StatusInternalServerError)
		return
	}

	h.dbMu.Lock()
	// Close previous if exists
	if h.CurrentDB != nil {
		h.CurrentDB.Close()
	}
	h.CurrentDB = ds
	h.dbMu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"status": "connected"})
}

func (h *Handler) currentDB() service.DataSource {
	h.dbMu.Lock()
	defer h.dbMu.Unlock()
	return h.CurrentDB
}

// ListTables returns tables from connected DB
func (h *Handler) ListTables(w http.ResponseWriter, r *http.Request) {
	db := h.currentDB()
	if db == nil {
		http.Error(w, "No database connection", http.StatusBadRequest)
		return
	}

	tables, err := db.ListTables(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Error listing tables: %v", err), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"tables": tables})
}

// AnalyzeTable reads two columns of a table and analyzes them
func (h *Handler) AnalyzeTable(w http.ResponseWriter, r *http.Request) {
	db := h.currentDB()
	if db == nil {
		http.Error(w, "No database connection", http.StatusBadRequest)
		return
	}

	var req models.TableColumnsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	cols, err := db.ReadColumns(r.Context(), req.TableName, req.LeftColumn, req.RightColumn)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.Summary.Summarize("postgres:"+req.TableName, cols))
}

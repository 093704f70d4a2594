package models

// ColumnProfile summarises one parsed column
type ColumnProfile struct {
	Name            string  `json:"name"`
	Count           int     `json:"count"`
	DistinctCount   int     `json:"distinct_count"`
	Min             uint32  `json:"min"`
	Max             uint32  `json:"max"`
	Sum             uint64  `json:"sum"`
	UniquenessRatio float64 `json:"uniqueness_ratio"`
	Entropy         float64 `json:"entropy"`
}

// AnalysisResponse is returned by the /api/analyze endpoints.
// A metric that failed is omitted and its error reported instead.
type AnalysisResponse struct {
	Location        string        `json:"location"`
	Rows            int           `json:"rows"`
	TotalDistance   *uint64       `json:"total_distance,omitempty"`
	SimilarityScore *uint32       `json:"similarity_score,omitempty"`
	DistanceError   string        `json:"distance_error,omitempty"`
	SimilarityError string        `json:"similarity_error,omitempty"`
	Left            ColumnProfile `json:"left"`
	Right           ColumnProfile `json:"right"`
	Cached          bool          `json:"cached,omitempty"`
}

// ErrorResponse carries a failed analysis
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Row   int    `json:"row,omitempty"`
	Field int    `json:"field,omitempty"`
}

// DatasetStatus represents status of the current dataset
type DatasetStatus struct {
	Loaded   bool   `json:"loaded"`
	Rows     int    `json:"rows"`
	Filename string `json:"filename,omitempty"`
	LoadedAt string `json:"loaded_at,omitempty"`
}

// TableColumnsRequest selects the two integer columns of a database table
type TableColumnsRequest struct {
	TableName   string `json:"table_name"`
	LeftColumn  string `json:"left_column"`
	RightColumn string `json:"right_column"`
}

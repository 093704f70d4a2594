package service

import (
	"listdist/internal/analysis"
	"listdist/internal/models"
)

// SummaryService runs both analyses over parsed columns and profiles them
type SummaryService struct {
	Profiler *ColumnProfiler
}

func NewSummaryService() *SummaryService {
	return &SummaryService{Profiler: NewColumnProfiler()}
}

// Summarize computes distance and similarity independently; a failing
// metric is reported in the response without hiding the other.
func (s *SummaryService) Summarize(location string, cols analysis.Columns) models.AnalysisResponse {
	resp := models.AnalysisResponse{
		Location: location,
		Rows:     cols.Len(),
		Left:     s.Profiler.ProfileColumn("left", cols.Left),
		Right:    s.Profiler.ProfileColumn("right", cols.Right),
	}

	dist := analysis.Distance(cols.Left, cols.Right)
	resp.TotalDistance = &dist

	score, err := analysis.Similarity(cols.Left, cols.Right)
	if err != nil {
		resp.SimilarityError = err.Error()
	} else {
		resp.SimilarityScore = &score
	}
	return resp
}

package service

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"listdist/internal/models"
)

// ReportService renders analysis results as PDF documents
type ReportService struct {
	// Now stamps the report; nil means time.Now.
	Now func() time.Time
}

func NewReportService() *ReportService {
	return &ReportService{}
}

// WriteReport renders resp as a single page PDF into w.
func (s *ReportService) WriteReport(w io.Writer, resp models.AnalysisResponse) error {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("List distance report", false)
	pdf.SetCreationDate(now())
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "List distance report")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	line := func(label, value string) {
		pdf.CellFormat(50, 7, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, value, "", 1, "L", false, 0, "")
	}
	line("Input", resp.Location)
	line("Rows", fmt.Sprintf("%d", resp.Rows))
	if resp.TotalDistance != nil {
		line("Total distance", fmt.Sprintf("%d", *resp.TotalDistance))
	} else {
		line("Total distance", "Error: "+resp.DistanceError)
	}
	if resp.SimilarityScore != nil {
		line("Similarity score", fmt.Sprintf("%d", *resp.SimilarityScore))
	} else {
		line("Similarity score", "Error: "+resp.SimilarityError)
	}
	line("Generated", now().UTC().Format(time.RFC3339))
	pdf.Ln(6)

	headers := []string{"Column", "Count", "Distinct", "Min", "Max", "Sum", "Entropy"}
	widths := []float64{30, 22, 22, 25, 25, 35, 25}
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, p := range []models.ColumnProfile{resp.Left, resp.Right} {
		cells := []string{
			p.Name,
			fmt.Sprintf("%d", p.Count),
			fmt.Sprintf("%d", p.DistinctCount),
			fmt.Sprintf("%d", p.Min),
			fmt.Sprintf("%d", p.Max),
			fmt.Sprintf("%d", p.Sum),
			fmt.Sprintf("%.3f", p.Entropy),
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 7, c, "1", 0, "R", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}

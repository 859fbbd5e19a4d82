// Package report renders a user's tasks and completion statistics for download.
package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

var ErrUnknownFormat = errors.New("unknown report format")

const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
)

// ContentType returns the MIME type for a supported format.
func ContentType(format string) string {
	switch strings.ToLower(format) {
	case FormatCSV:
		return "text/csv"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/json"
}

type Report struct {
	Username    string       `json:"username"`
	GeneratedAt time.Time    `json:"generated_at"`
	Stats       model.Stats  `json:"stats"`
	Tasks       []model.Task `json:"tasks"`
}

type Exporter struct{}

func NewExporter() *Exporter { return &Exporter{} }

func (e *Exporter) Export(format string, r Report) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatJSON, "":
		return json.MarshalIndent(r, "", "  ")
	case FormatCSV:
		return e.csv(r)
	case FormatPDF:
		return e.pdf(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

func (e *Exporter) csv(r Report) ([]byte, error) {
	var b bytes.Buffer
	w := csv.NewWriter(&b)
	_ = w.Write([]string{"id", "title", "due_date", "priority", "comments", "status"})
	for _, t := range r.Tasks {
		_ = w.Write([]string{strconv.FormatInt(t.ID, 10), t.Title, t.DueDate.String(), string(t.Priority), t.Comments, string(t.Status)})
	}
	w.Flush()
	return b.Bytes(), w.Error()
}

type slice struct {
	label   string
	count   int
	r, g, b int
}

// slices follow the colours of the completion chart: green, blue, coral.
func slices(s model.Stats) []slice {
	return []slice{
		{label: string(model.StatusCompleted), count: s.Completed, r: 144, g: 238, b: 144},
		{label: string(model.StatusInProgress), count: s.InProgress, r: 173, g: 216, b: 230},
		{label: string(model.StatusPending), count: s.Pending, r: 240, g: 128, b: 128},
	}
}

func (e *Exporter) pdf(r Report) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Task Completion Status")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 8, fmt.Sprintf("User: %s    Generated: %s", r.Username, r.GeneratedAt.Format("2006-01-02 15:04")))
	pdf.Ln(12)

	const (
		cx, cy, radius = 60.0, 75.0, 35.0
		legendX        = 110.0
	)
	total := r.Stats.Total()
	if total == 0 {
		pdf.SetDrawColor(160, 160, 160)
		pdf.Circle(cx, cy, radius, "D")
	}

	start := 90.0
	legendY := cy - 15
	for _, s := range slices(r.Stats) {
		share := 0.0
		if total > 0 {
			share = float64(s.count) / float64(total)
		}
		if s.count > 0 {
			pdf.SetFillColor(s.r, s.g, s.b)
			pdf.Polygon(wedge(cx, cy, radius, start, start-share*360), "F")
			start -= share * 360
		}

		pdf.SetFillColor(s.r, s.g, s.b)
		pdf.Rect(legendX, legendY, 5, 5, "F")
		pdf.SetXY(legendX+8, legendY)
		pdf.Cell(0, 5, fmt.Sprintf("%s: %d (%.1f%%)", s.label, s.count, share*100))
		legendY += 9
	}

	pdf.SetXY(10, cy+radius+12)
	pdf.SetFont("Arial", "B", 10)
	header := []struct {
		title string
		width float64
	}{{"Title", 60}, {"Due date", 25}, {"Priority", 22}, {"Status", 25}, {"Comments", 58}}
	for _, h := range header {
		pdf.CellFormat(h.width, 7, h.title, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, t := range r.Tasks {
		cells := []string{t.Title, t.DueDate.String(), string(t.Priority), string(t.Status), t.Comments}
		for i, c := range cells {
			pdf.CellFormat(header[i].width, 6, tr(truncate(pdf, c, header[i].width-2)), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// wedge approximates a pie slice between two angles (degrees, counter-clockwise
// from the positive x axis) as a polygon.
func wedge(cx, cy, radius, fromDeg, toDeg float64) []gofpdf.PointType {
	points := []gofpdf.PointType{{X: cx, Y: cy}}
	steps := int(math.Ceil(math.Abs(fromDeg-toDeg)/3)) + 1
	for i := 0; i <= steps; i++ {
		a := (fromDeg + (toDeg-fromDeg)*float64(i)/float64(steps)) * math.Pi / 180
		// page y grows downwards
		points = append(points, gofpdf.PointType{X: cx + radius*math.Cos(a), Y: cy - radius*math.Sin(a)})
	}
	return points
}

func truncate(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}

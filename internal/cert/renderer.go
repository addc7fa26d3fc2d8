// Package cert renders course completion certificates as PDF blobs.
package cert

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

type Data struct {
	UserName       string
	CourseName     string
	CompletionDate string
	InstructorName string
}

// Renderer draws a landscape A4 certificate. Render is a pure function of
// its input; callers decide what to do with the returned bytes.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

func (r *Renderer) Render(data Data) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	// Background and double border.
	pdf.SetFillColor(245, 245, 245)
	pdf.Rect(0, 0, 297, 210, "F")
	pdf.SetDrawColor(59, 130, 246)
	pdf.SetLineWidth(3)
	pdf.Rect(10, 10, 277, 190, "D")
	pdf.SetLineWidth(1)
	pdf.Rect(15, 15, 267, 180, "D")

	centered := func(y float64, text string) {
		pdf.SetXY(0, y)
		pdf.CellFormat(297, 10, text, "", 0, "C", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 32)
	pdf.SetTextColor(59, 130, 246)
	centered(45, "CERTIFICATE OF COMPLETION")

	pdf.SetFont("Helvetica", "", 16)
	pdf.SetTextColor(107, 114, 128)
	centered(65, "This is to certify that")

	pdf.SetFont("Helvetica", "B", 28)
	pdf.SetTextColor(17, 24, 39)
	centered(85, data.UserName)

	pdf.SetFont("Helvetica", "", 16)
	pdf.SetTextColor(107, 114, 128)
	centered(105, "has successfully completed the course")

	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetTextColor(59, 130, 246)
	centered(125, data.CourseName)

	pdf.SetFont("Helvetica", "", 14)
	pdf.SetTextColor(107, 114, 128)
	centered(145, fmt.Sprintf("Completed on %s", data.CompletionDate))

	if data.InstructorName != "" {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Text(200, 170, "Instructor:")
		pdf.SetFont("Helvetica", "", 12)
		pdf.Text(200, 180, data.InstructorName)
	}

	// Seal.
	pdf.SetDrawColor(59, 130, 246)
	pdf.SetFillColor(59, 130, 246)
	pdf.Circle(50, 170, 15, "FD")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(35, 167)
	pdf.CellFormat(30, 6, "EDU", "", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("generate pdf: %w", err)
	}
	return buf.Bytes(), nil
}

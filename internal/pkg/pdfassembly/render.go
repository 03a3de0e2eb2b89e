package pdfassembly

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// Row is one label/value line of the summary
type Row struct {
	Label string
	Value string
}

// Section is a titled block of rows
type Section struct {
	Title string
	Rows  []Row
}

// Summary is the rendered application form that opens the printout
type Summary struct {
	Title    string
	Subtitle string
	Sections []Section
}

const (
	pageMargin  = 15.0
	labelWidth  = 65.0
	lineHeight  = 6.0
	contentSize = 10.0
)

func newDocument() *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	return pdf
}

func output(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderSummary renders the summary as a standalone PDF
func RenderSummary(s Summary) ([]byte, error) {
	pdf := newDocument()
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(s.Title), "", 1, "C", false, 0, "")
	if s.Subtitle != "" {
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 8, tr(s.Subtitle), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	valueWidth, _ := pdf.GetPageSize()
	valueWidth -= 2*pageMargin + labelWidth

	for _, section := range s.Sections {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetFillColor(230, 230, 230)
		pdf.CellFormat(0, 8, tr(section.Title), "", 1, "L", true, 0, "")
		pdf.Ln(1)

		for _, row := range section.Rows {
			value := row.Value
			if value == "" {
				value = "-"
			}
			pdf.SetFont("Helvetica", "B", contentSize)
			x, y := pdf.GetXY()
			pdf.MultiCell(labelWidth, lineHeight, tr(row.Label), "", "L", false)
			labelEnd := pdf.GetY()

			pdf.SetXY(x+labelWidth, y)
			pdf.SetFont("Helvetica", "", contentSize)
			pdf.MultiCell(valueWidth, lineHeight, tr(value), "", "L", false)
			if pdf.GetY() < labelEnd {
				pdf.SetY(labelEnd)
			}
		}
		pdf.Ln(3)
	}

	return output(pdf)
}

// RenderPlaceholder renders the single page that stands in for a broken document
func RenderPlaceholder(docType, reason string) ([]byte, error) {
	pdf := newDocument()
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetY(60)
	pdf.MultiCell(0, 8, tr(PlaceholderText(docType, reason)), "", "C", false)
	return output(pdf)
}

// PlaceholderText is the message printed on a placeholder page
func PlaceholderText(docType, reason string) string {
	return fmt.Sprintf("Error loading %s document: %s", docType, reason)
}

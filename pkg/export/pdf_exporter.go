package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const unicodeFamily = "kiosk-unicode"

// PDFExporter renders datasets into a landscape tabular PDF.
type PDFExporter struct {
	fontPath string
	widths   map[string]float64
}

// NewPDFExporter constructs a PDF exporter. Core fonts cannot draw Hangul, so a TrueType
// font path should be provided whenever rows contain Korean text.
func NewPDFExporter(fontPath string) *PDFExporter {
	return &PDFExporter{fontPath: fontPath, widths: map[string]float64{}}
}

// WithColumnWeights assigns relative widths per header; unlisted headers weigh 1.
func (e *PDFExporter) WithColumnWeights(weights map[string]float64) *PDFExporter {
	for k, v := range weights {
		if v > 0 {
			e.widths[k] = v
		}
	}
	return e
}

// ContentType returns the MIME type of rendered documents.
func (e *PDFExporter) ContentType() string {
	return "application/pdf"
}

// Render creates a PDF document with an optional title and table body.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)

	family := "Arial"
	if e.fontPath != "" {
		pdf.AddUTF8Font(unicodeFamily, "", e.fontPath)
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("load pdf font: %w", err)
		}
		family = unicodeFamily
	}
	pdf.AddPage()

	if title != "" {
		pdf.SetFont(family, "", 14)
		pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	widths := e.columnWidths(data.Headers, 277.0)

	pdf.SetFont(family, "", 10)
	pdf.SetFillColor(235, 235, 235)
	for i, header := range data.Headers {
		pdf.CellFormat(widths[i], 8, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(family, "", 9)
	for _, row := range data.Rows {
		for i, header := range data.Headers {
			pdf.CellFormat(widths[i], 7, truncate(pdf, row[header], widths[i]-2), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) columnWidths(headers []string, total float64) []float64 {
	sum := 0.0
	weights := make([]float64, len(headers))
	for i, h := range headers {
		w, ok := e.widths[h]
		if !ok {
			w = 1
		}
		weights[i] = w
		sum += w
	}
	out := make([]float64, len(headers))
	for i, w := range weights {
		out[i] = total * w / sum
	}
	return out
}

// truncate shortens text rune by rune until it fits the cell.
func truncate(pdf *gofpdf.Fpdf, text string, width float64) string {
	if pdf.GetStringWidth(text) <= width {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "…"
		if pdf.GetStringWidth(candidate) <= width {
			return candidate
		}
	}
	return ""
}

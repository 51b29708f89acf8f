package formatter

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/pseudolawyer/negotiation-backend/internal/entity"
)

const (
	pdfContentType   = "application/pdf"
	pdfFileExtension = ".pdf"

	// pdfFontName is the internal name used by gofpdf for the UTF-8
	// capable font.
	pdfFontName = "DejaVuSans"

	// In Docker runtime fonts are copied next to the binary.
	pdfFontRuntimePath = "ttf/DejaVuSans.ttf"

	// Source-relative path (useful when running from repo root with `go run`).
	pdfFontSourcePath = "internal/pkg/formatter/ttf/DejaVuSans.ttf"
)

type PDFFormatter struct{}

func NewPDFFormatter() *PDFFormatter {
	return &PDFFormatter{}
}

func resolveFontPath() string {
	if _, err := os.Stat(pdfFontRuntimePath); err == nil {
		return pdfFontRuntimePath
	}
	if _, err := os.Stat(pdfFontSourcePath); err == nil {
		return pdfFontSourcePath
	}
	return ""
}

func (pf *PDFFormatter) Format(contract *entity.Contract) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	fontName := "Times"
	if fontPath := resolveFontPath(); fontPath != "" {
		pdf.AddUTF8Font(pdfFontName, "", fontPath)
		pdf.AddUTF8Font(pdfFontName, "B", fontPath)
		pdf.AddUTF8Font(pdfFontName, "I", fontPath)
		fontName = pdfFontName
	}

	pdf.SetFont(fontName, "B", 18)
	pdf.MultiCell(0, 9, contract.Title, "", "C", false)
	pdf.Ln(2)

	pdf.SetFont(fontName, "I", 11)
	subtitle := fmt.Sprintf("%s, generated %s",
		contract.FinalContent.TemplateName,
		contract.FinalContent.GeneratedAt.Format("January 2, 2006"),
	)
	pdf.MultiCell(0, 6, subtitle, "", "C", false)
	pdf.Ln(6)

	pdf.SetFont(fontName, "", 11)
	_, lineHeight := pdf.GetFontSize()
	for _, paragraph := range strings.Split(contract.FinalContent.GeneratedText, "\n") {
		if strings.TrimSpace(paragraph) == "" {
			pdf.Ln(lineHeight)
			continue
		}
		pdf.MultiCell(0, lineHeight*1.5, paragraph, "", "", false)
	}

	if len(contract.SignedBy) > 0 {
		pdf.Ln(8)
		pdf.SetFont(fontName, "B", 12)
		pdf.Cell(0, 8, "Signatures")
		pdf.Ln(10)
		pdf.SetFont(fontName, "", 11)
		for _, s := range contract.SignedBy {
			line := fmt.Sprintf("%s, signed %s", s.UserName, s.SignedAt.Format("January 2, 2006 15:04 MST"))
			pdf.MultiCell(0, lineHeight*1.5, line, "", "", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (pf *PDFFormatter) ContentType() string {
	return pdfContentType
}

func (pf *PDFFormatter) FileExtension() string {
	return pdfFileExtension
}

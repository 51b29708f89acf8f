package formatter

import (
	"fmt"

	"github.com/pseudolawyer/negotiation-backend/internal/entity"
)

type DocumentFormat string

const (
	FormatMarkdown DocumentFormat = "markdown"
	FormatPDF      DocumentFormat = "pdf"
	FormatDOCX     DocumentFormat = "docx"
)

// Formatter renders a finalized contract into a downloadable document.
type Formatter interface {
	Format(contract *entity.Contract) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(format DocumentFormat) (Formatter, error) {
	switch format {
	case FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case FormatPDF:
		return NewPDFFormatter(), nil
	case FormatDOCX:
		return NewDOCXFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

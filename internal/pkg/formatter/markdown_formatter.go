package formatter

import (
	"bytes"
	"fmt"

	"github.com/pseudolawyer/negotiation-backend/internal/entity"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (mf *MarkdownFormatter) Format(contract *entity.Contract) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", contract.Title)
	fmt.Fprintf(&buf, "*%s, generated %s*\n\n",
		contract.FinalContent.TemplateName,
		contract.FinalContent.GeneratedAt.Format("January 2, 2006"),
	)

	buf.WriteString(contract.FinalContent.GeneratedText)
	buf.WriteString("\n")

	if len(contract.SignedBy) > 0 {
		buf.WriteString("\n---\n\n## Signatures\n\n")
		for _, s := range contract.SignedBy {
			fmt.Fprintf(&buf, "- %s, signed %s\n", s.UserName, s.SignedAt.Format("January 2, 2006 15:04 MST"))
		}
	}

	return buf.Bytes(), nil
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}

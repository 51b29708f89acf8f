package formatter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pseudolawyer/negotiation-backend/internal/entity"
	"github.com/unidoc/unioffice/document"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"
)

type DOCXFormatter struct{}

func NewDOCXFormatter() *DOCXFormatter {
	return &DOCXFormatter{}
}

func (df *DOCXFormatter) Format(contract *entity.Contract) ([]byte, error) {
	doc := document.New()
	defer doc.Close()

	titlePar := doc.AddParagraph()
	titlePar.SetStyle("Heading1")
	titlePar.AddRun().AddText(contract.Title)

	subtitlePar := doc.AddParagraph()
	subtitlePar.AddRun().AddText(fmt.Sprintf("%s, generated %s",
		contract.FinalContent.TemplateName,
		contract.FinalContent.GeneratedAt.Format("January 2, 2006"),
	))

	doc.AddParagraph()

	for _, paragraph := range strings.Split(contract.FinalContent.GeneratedText, "\n") {
		par := doc.AddParagraph()
		if strings.TrimSpace(paragraph) != "" {
			par.AddRun().AddText(paragraph)
		}
	}

	if len(contract.SignedBy) > 0 {
		doc.AddParagraph()
		headingPar := doc.AddParagraph()
		headingPar.SetStyle("Heading2")
		headingPar.AddRun().AddText("Signatures")
		for _, s := range contract.SignedBy {
			par := doc.AddParagraph()
			par.AddRun().AddText(fmt.Sprintf("%s, signed %s", s.UserName, s.SignedAt.Format("January 2, 2006 15:04 MST")))
		}
	}

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (df *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (df *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}

package formatter

import (
	"os"
	"testing"
	"time"

	"github.com/pseudolawyer/negotiation-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleContract() *entity.Contract {
	return &entity.Contract{
		ID:            "c1",
		NegotiationID: "n1",
		Title:         "Service Agreement - Alice & Bob",
		FinalContent: entity.FinalContent{
			TemplateName:  "Service Agreement",
			GeneratedText: "1. TERM\nTwelve months.\n\n2. PAYMENT\nNet 45.",
			GeneratedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
		SignedBy: []entity.SignatureRecord{
			{UserID: "u1", UserName: "Alice Smith", SignedAt: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)},
		},
	}
}

func TestFactoryCreate(t *testing.T) {
	factory := NewFactory()

	for _, format := range []DocumentFormat{FormatMarkdown, FormatPDF, FormatDOCX} {
		f, err := factory.Create(format)
		require.NoError(t, err)
		assert.NotNil(t, f)
	}

	_, err := factory.Create(DocumentFormat("xlsx"))
	assert.Error(t, err)
}

func TestMarkdownFormatter(t *testing.T) {
	f := NewMarkdownFormatter()

	data, err := f.Format(sampleContract())
	require.NoError(t, err)

	body := string(data)
	assert.Contains(t, body, "# Service Agreement - Alice & Bob")
	assert.Contains(t, body, "Twelve months.")
	assert.Contains(t, body, "## Signatures")
	assert.Contains(t, body, "Alice Smith")
	assert.Equal(t, "text/markdown; charset=utf-8", f.ContentType())
	assert.Equal(t, ".md", f.FileExtension())
}

func TestPDFFormatter(t *testing.T) {
	f := NewPDFFormatter()

	data, err := f.Format(sampleContract())
	require.NoError(t, err)

	// PDF output starts with the format magic.
	require.True(t, len(data) > 4)
	assert.Equal(t, "%PDF", string(data[:4]))
	assert.Equal(t, "application/pdf", f.ContentType())
}

func TestDOCXFormatter(t *testing.T) {
	// unioffice refuses to save documents without a configured license key.
	if os.Getenv("UNIDOC_LICENSE_API_KEY") == "" {
		t.Skip("UNIDOC_LICENSE_API_KEY not set")
	}

	f := NewDOCXFormatter()

	data, err := f.Format(sampleContract())
	require.NoError(t, err)

	// DOCX files are zip archives.
	require.True(t, len(data) > 2)
	assert.Equal(t, "PK", string(data[:2]))
	assert.Equal(t, ".docx", f.FileExtension())
}

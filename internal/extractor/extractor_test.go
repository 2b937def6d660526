package extractor

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medassist-backend/internal/testutil"
)

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := New(DefaultChunkSize, DefaultChunkOverlap)
	require.NoError(t, err)
	return e
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func TestIsPDF(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"history.pdf", true},
		{"HISTORY.PDF", true},
		{"scan.Pdf", true},
		{"notes.txt", false},
		{"pdf", false},
		{"archive.pdf.zip", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsPDF(tt.name), tt.name)
	}
}

func TestNew_RejectsBadChunking(t *testing.T) {
	_, err := New(100, 100)
	assert.Error(t, err)
}

func TestExtract_TextPDF(t *testing.T) {
	e := newTestExtractor(t)
	data := testutil.PDF(t, "Patient has mild hypertension, no known allergies", "Previous surgery: appendectomy")

	chunks, err := e.Extract(context.Background(), Document{Name: "history.pdf", Data: data})
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	text := normalize(Merge(chunks))
	assert.Contains(t, text, "mild hypertension")
	assert.Contains(t, text, "appendectomy")
}

func TestExtract_RejectsNonPDFName(t *testing.T) {
	e := newTestExtractor(t)
	data := testutil.PDF(t, "valid content")

	_, err := e.Extract(context.Background(), Document{Name: "history.docx", Data: data})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExtract_RejectsNonPDFContent(t *testing.T) {
	e := newTestExtractor(t)

	_, err := e.Extract(context.Background(), Document{Name: "history.pdf", Data: []byte("just some text pretending")})
	assert.ErrorIs(t, err, ErrExtraction)
	assert.NotErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExtract_RejectsTruncatedPDF(t *testing.T) {
	e := newTestExtractor(t)
	data := testutil.PDF(t, "Patient has mild hypertension")

	_, err := e.Extract(context.Background(), Document{Name: "history.pdf", Data: data[:len(data)/3]})
	assert.ErrorIs(t, err, ErrExtraction)
}

func TestExtract_EmptyDocument(t *testing.T) {
	e := newTestExtractor(t)

	_, err := e.Extract(context.Background(), Document{Name: "blank.pdf", Data: testutil.BlankPDF(t)})
	assert.ErrorIs(t, err, ErrExtraction)
}

func TestExtract_CancelledContext(t *testing.T) {
	e := newTestExtractor(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Extract(ctx, Document{Name: "history.pdf", Data: testutil.PDF(t, "text")})
	assert.ErrorIs(t, err, context.Canceled)
}

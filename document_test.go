package invoicepdf

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var samplePDF = []byte("%PDF-1.4\n1 0 obj << /Type /Pages /Kids [2 0 R] >> endobj\n2 0 obj << /Type /Page >> endobj\n%%EOF")

func TestDocument_Accessors(t *testing.T) {
	d := NewDocument(samplePDF)

	assert.Equal(t, samplePDF, d.Bytes())
	assert.Equal(t, len(samplePDF), d.Len())
	assert.Equal(t, base64.StdEncoding.EncodeToString(samplePDF), d.Base64())
	assert.True(t, d.IsPDF())
}

func TestDocument_Reader(t *testing.T) {
	d := NewDocument(samplePDF)

	r1, r2 := d.Reader(), d.Reader()
	assert.Equal(t, r1.Len(), r2.Len())

	var buf bytes.Buffer
	_, err := buf.ReadFrom(r1)
	require.NoError(t, err)
	assert.Equal(t, samplePDF, buf.Bytes())
}

func TestDocument_WriteTo(t *testing.T) {
	var buf bytes.Buffer
	n, err := NewDocument(samplePDF).WriteTo(&buf)

	require.NoError(t, err)
	assert.Equal(t, int64(len(samplePDF)), n)
	assert.Equal(t, samplePDF, buf.Bytes())
}

func TestDocument_WriteToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Invoice-1.pdf")
	require.NoError(t, NewDocument(samplePDF).WriteToFile(path, 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, samplePDF, data)
}

func TestDocument_PageCount(t *testing.T) {
	tests := []struct {
		name string
		data string
		want int
	}{
		{"not a pdf", "<html></html>", 0},
		{"empty", "", 0},
		{"no page objects", "%PDF-1.7\n%%EOF", 1},
		{"one page", string(samplePDF), 1},
		{"three pages", "%PDF-1.7 /Type /Pages /Type /Page /Type /Page /Type/Page", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewDocument([]byte(tt.data)).PageCount())
		})
	}
}

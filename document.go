package invoicepdf

import (
	"bytes"
	"encoding/base64"
	"io"
	"os"
)

// Document holds a rendered PDF and provides helpers for common output
// formats such as raw bytes, base64 encoding, and streaming readers.
//
// A Document is returned by [Engine.Render]. Its content is never modified
// after creation.
type Document struct {
	data []byte
}

// NewDocument wraps already rendered PDF bytes. It is intended for
// [Engine] implementations other than the Chrome one.
func NewDocument(data []byte) *Document {
	return &Document{data: data}
}

// Bytes returns the raw PDF content.
func (d *Document) Bytes() []byte {
	return d.data
}

// Base64 returns the PDF encoded as a standard base64 string (RFC 4648),
// suitable for JSON payloads.
func (d *Document) Base64() string {
	return base64.StdEncoding.EncodeToString(d.data)
}

// Reader returns an [*bytes.Reader] over the PDF content.
func (d *Document) Reader() *bytes.Reader {
	return bytes.NewReader(d.data)
}

// WriteTo writes the full PDF content to w. It implements [io.WriterTo].
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(d.data)
	return int64(n), err
}

// WriteToFile writes the PDF to the file at path, creating it if needed.
func (d *Document) WriteToFile(path string, perm os.FileMode) error {
	return os.WriteFile(path, d.data, perm)
}

// Len returns the size of the PDF in bytes.
func (d *Document) Len() int {
	return len(d.data)
}

// IsPDF reports whether the content starts with the PDF magic number.
func (d *Document) IsPDF() bool {
	return bytes.HasPrefix(d.data, []byte("%PDF-"))
}

// PageCount estimates the number of pages by counting page objects. It
// returns 0 for content that is not a PDF and at least 1 otherwise.
func (d *Document) PageCount() int {
	if !d.IsPDF() {
		return 0
	}
	pages := bytes.Count(d.data, []byte("/Type /Page")) - bytes.Count(d.data, []byte("/Type /Pages"))
	pages += bytes.Count(d.data, []byte("/Type/Page")) - bytes.Count(d.data, []byte("/Type/Pages"))
	return max(pages, 1)
}

package invoicepdf

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is the encoding of a serialised [InvoiceRecord].
type Format int

const (
	// FormatJSON is the camelCase JSON payload.
	FormatJSON Format = iota
	// FormatYAML uses the same field names as FormatJSON.
	FormatYAML
)

func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

// FormatFromPath picks a Format from a file extension: ".yaml" and ".yml"
// are YAML, anything else is JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// DecodeRecord reads one InvoiceRecord from r.
//
// Amounts are decoded exactly in both formats. YAML scalars are read as
// their source text, so an unquoted number is accepted for a text field
// such as invoiceNumber or size.
func DecodeRecord(r io.Reader, format Format) (*InvoiceRecord, error) {
	var rec InvoiceRecord
	var err error
	if format == FormatYAML {
		err = yaml.NewDecoder(r).Decode(&rec)
	} else {
		err = json.NewDecoder(r).Decode(&rec)
	}
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invoicepdf: decoding %s record: empty input", format)
	}
	if err != nil {
		return nil, fmt.Errorf("invoicepdf: decoding %s record: %w", format, err)
	}
	return &rec, nil
}

// LoadRecord reads the record stored at path.
func LoadRecord(path string) (*InvoiceRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("invoicepdf: opening record: %w", err)
	}
	defer f.Close()
	return DecodeRecord(f, FormatFromPath(path))
}

package invoicepdf

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Destination chooses where an exported document is written.
//
// Choose is seeded with a suggested path. It returns ok == false when the
// user declined to pick a location; that is a cancellation, not an error.
type Destination interface {
	Choose(ctx context.Context, suggested string) (path string, ok bool, err error)
}

// DestinationFunc adapts a function to the [Destination] interface.
type DestinationFunc func(ctx context.Context, suggested string) (string, bool, error)

// Choose calls f(ctx, suggested).
func (f DestinationFunc) Choose(ctx context.Context, suggested string) (string, bool, error) {
	return f(ctx, suggested)
}

// maxNumberBytes bounds the invoice number inside a suggested file name,
// keeping the whole name under the 255-byte NAME_MAX of common file
// systems.
const maxNumberBytes = 200

// SuggestedFileName returns the default file name for an invoice,
// "Invoice-<invoiceNumber>.pdf".
//
// The number is NFC-normalised and any character that cannot appear in a
// portable file name (path separators, control characters and the
// characters reserved on Windows) is replaced with '_'. Numbers longer
// than 200 bytes are truncated on a character boundary.
func SuggestedFileName(invoiceNumber string) string {
	n := strings.TrimSpace(norm.NFC.String(invoiceNumber))
	n = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if unicode.IsControl(r) {
			return '_'
		}
		return r
	}, n)
	n = strings.Trim(truncateUTF8(n, maxNumberBytes), ". ")
	if n == "" {
		return "Invoice.pdf"
	}
	return "Invoice-" + n + ".pdf"
}

// truncateUTF8 returns the longest prefix of s that is at most n bytes and
// ends on a rune boundary.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// DefaultDownloadsDir returns the directory suggested paths are placed
// in: $XDG_DOWNLOAD_DIR if set, otherwise ~/Downloads, otherwise the
// working directory.
func DefaultDownloadsDir() string {
	if dir := os.Getenv("XDG_DOWNLOAD_DIR"); dir != "" {
		return dir
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, "Downloads")
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

// FixedDestination always chooses path, ignoring the suggestion.
type FixedDestination string

// Choose returns the fixed path.
func (d FixedDestination) Choose(context.Context, string) (string, bool, error) {
	return string(d), true, nil
}

// DirDestination accepts the suggested file name but places it in a fixed
// directory.
type DirDestination string

// Choose returns the base name of suggested joined under the directory.
func (d DirDestination) Choose(_ context.Context, suggested string) (string, bool, error) {
	return filepath.Join(string(d), filepath.Base(suggested)), true, nil
}

// PromptDestination asks for a path on a line-oriented terminal.
//
// An empty answer accepts the suggestion, a single "-" or end of input
// cancels. A leading "~/" is expanded to the home directory.
type PromptDestination struct {
	In  io.Reader
	Out io.Writer

	mu     sync.Mutex
	reader *bufio.Reader
}

// NewPromptDestination returns a PromptDestination reading answers from in
// and writing prompts to out.
func NewPromptDestination(in io.Reader, out io.Writer) *PromptDestination {
	return &PromptDestination{In: in, Out: out}
}

// Choose prints the prompt and reads one line. Concurrent callers are
// served one at a time.
func (d *PromptDestination) Choose(ctx context.Context, suggested string) (string, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if d.reader == nil {
		d.reader = bufio.NewReader(d.In)
	}
	if d.Out != nil {
		fmt.Fprintf(d.Out, "Save PDF as [%s] (- to cancel): ", suggested)
	}

	line, err := d.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", false, fmt.Errorf("invoicepdf: reading destination: %w", err)
	}
	answer := strings.TrimSpace(line)
	switch {
	case err == io.EOF && answer == "":
		return "", false, nil
	case answer == "-":
		return "", false, nil
	case answer == "":
		return suggested, true, nil
	}

	if rest, found := strings.CutPrefix(answer, "~/"); found {
		if home, herr := os.UserHomeDir(); herr == nil {
			answer = filepath.Join(home, rest)
		}
	}
	return answer, true, nil
}

var (
	_ Destination = FixedDestination("")
	_ Destination = DirDestination("")
	_ Destination = (*PromptDestination)(nil)
)

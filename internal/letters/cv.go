package letters

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractionError means the CV file could not be read or parsed. No letters
// can be generated without CV content, so this aborts a whole run.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to read or parse CV %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// CVReader extracts plain text from an uploaded CV document.
type CVReader interface {
	ExtractText(path string) (string, error)
}

type pdfCVReader struct{}

func NewCVReader() CVReader {
	return &pdfCVReader{}
}

func (p *pdfCVReader) ExtractText(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", &ExtractionError{Path: path, Err: err}
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", &ExtractionError{Path: path, Err: err}
	}
	defer f.Close()

	var builder strings.Builder
	for pageIndex := 1; pageIndex <= r.NumPage(); pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// a single unreadable page is not fatal
			continue
		}
		builder.WriteString(text)
		builder.WriteString("\n\n")
	}

	text := strings.TrimSpace(builder.String())
	if text == "" {
		return "", &ExtractionError{Path: path, Err: fmt.Errorf("no text content found in PDF")}
	}
	return text, nil
}

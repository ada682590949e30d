package pdf

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/playwright-community/playwright-go"
)

//go:embed letter.html
var letterTemplate string

// Letter is the content of one motivation letter: centered title, centered
// institution subtitle and justified body paragraphs.
type Letter struct {
	Title       string
	Institution string
	Paragraphs  []string
}

// NewLetter splits body text on newlines into paragraphs, dropping blanks.
func NewLetter(title, institution, body string) Letter {
	var paragraphs []string
	for _, line := range strings.Split(body, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			paragraphs = append(paragraphs, trimmed)
		}
	}
	return Letter{Title: title, Institution: institution, Paragraphs: paragraphs}
}

// Generator converts Letter values into A4 PDF files.
type Generator struct {
	tmpl *template.Template
}

func NewGenerator() (*Generator, error) {
	tmpl, err := template.New("letter").Parse(letterTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse letter template: %w", err)
	}
	return &Generator{tmpl: tmpl}, nil
}

// Generate renders the letter through the HTML template and uses a headless
// browser to produce the PDF bytes.
func (g *Generator) Generate(letter Letter) ([]byte, error) {
	var buf bytes.Buffer
	if err := g.tmpl.Execute(&buf, letter); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}
	defer pw.Stop()

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("could not launch chromium browser: %w", err)
	}
	defer browser.Close()

	page, err := browser.NewPage()
	if err != nil {
		return nil, fmt.Errorf("could not create new page: %w", err)
	}
	defer page.Close()

	if err := page.SetContent(buf.String(), playwright.PageSetContentOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
	}); err != nil {
		return nil, fmt.Errorf("could not set page content: %w", err)
	}

	pdfBytes, err := page.PDF(playwright.PagePdfOptions{
		Format:          playwright.String("A4"),
		PrintBackground: playwright.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("could not generate PDF: %w", err)
	}

	return pdfBytes, nil
}

// SaveToFile writes generated PDF bytes to disk, creating parent dirs.
func SaveToFile(pdfBytes []byte, outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("could not create directory: %w", err)
	}
	return os.WriteFile(outputPath, pdfBytes, 0644)
}

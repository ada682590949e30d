package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractEmails(t *testing.T) {
	text := `Bewerbung an bewerbung@klinikum-ka.de oder info@klinikum-ka.de.
	Rückfragen: bewerbung@klinikum-ka.de`

	emails := ExtractEmails(text)
	assert.Equal(t, []string{"bewerbung@klinikum-ka.de", "info@klinikum-ka.de"}, emails)
}

func TestExtractEmails_None(t *testing.T) {
	assert.Empty(t, ExtractEmails("keine Kontaktdaten vorhanden"))
}

func TestExtractPhoneNumbers(t *testing.T) {
	text := "Tel: +49 721 974-2120 oder 0721 974 2120"
	phones := ExtractPhoneNumbers(text)
	assert.NotEmpty(t, phones)
}

func TestCleanHTML(t *testing.T) {
	html := `<div><h1>Pflegefachmann   (m/w/d)</h1><p>ab  <b>01.09.2026</b></p></div>`
	assert.Equal(t, "Pflegefachmann (m/w/d) ab 01.09.2026", CleanHTML(html))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "abcde...", Truncate("abcdefgh", 5))
}

func TestCleanFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Klinikum Karlsruhe gGmbH", "Klinikum_Karlsruhe_gGmbH"},
		{"St. Vincentius-Kliniken!", "St_Vincentius_Kliniken"},
		{"  spaced   out  ", "spaced_out"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanFilename(tt.in))
	}
}

func TestCleanBaseFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Lebenslauf 2026.pdf", "Lebenslauf_2026.pdf"},
		{"cv.pdf", "cv.pdf"},
		{"Zeugnis (final).PDF", "Zeugnis_final.PDF"},
		{"ohne-endung", "ohne_endung"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanBaseFilename(tt.in))
	}
}

func TestIsValidURL(t *testing.T) {
	assert.True(t, IsValidURL("https://www.ausbildung.de/stellen/abc"))
	assert.False(t, IsValidURL("not a url"))
	assert.False(t, IsValidURL("/stellen/abc"))
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("Bewerbung@Firma.de"))
	assert.False(t, IsValidEmail("firma.de"))
}

package utils

import (
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	tagRegex        = regexp.MustCompile(`<[^>]*>`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
	emailRegex      = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phoneRegex      = regexp.MustCompile(`(?:\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	emailExactRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	unsafeRegex     = regexp.MustCompile(`[^\w\s-]`)
	separatorRegex  = regexp.MustCompile(`[-\s]+`)
)

// CleanHTML strips tags and collapses whitespace.
func CleanHTML(html string) string {
	if html == "" {
		return ""
	}
	text := tagRegex.ReplaceAllString(html, " ")
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(text, " "))
}

// Truncate cuts text to max runes and appends an ellipsis when it was cut.
func Truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}

// SanitizeString trims, strips tags and collapses whitespace, truncating to
// maxLen when positive.
func SanitizeString(s string, maxLen int) string {
	clean := CleanHTML(s)
	if maxLen > 0 && len([]rune(clean)) > maxLen {
		clean = strings.TrimSpace(string([]rune(clean)[:maxLen])) + "..."
	}
	return clean
}

// ExtractEmails returns the deduplicated email addresses found in text, in
// order of first occurrence.
func ExtractEmails(text string) []string {
	return dedupe(emailRegex.FindAllString(text, -1))
}

// ExtractPhoneNumbers returns the deduplicated phone numbers found in text.
func ExtractPhoneNumbers(text string) []string {
	return dedupe(phoneRegex.FindAllString(text, -1))
}

func dedupe(matches []string) []string {
	seen := make(map[string]bool, len(matches))
	var out []string
	for _, m := range matches {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

// IsValidEmail reports whether s looks like a single email address.
func IsValidEmail(s string) bool {
	return emailExactRegex.MatchString(strings.ToLower(s))
}

// IsValidURL reports whether s parses as an absolute http(s) URL.
func IsValidURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// CleanFilename makes a string safe for use in a filename: drops anything
// outside word characters, collapses separators to underscores and caps the
// length at 50.
func CleanFilename(name string) string {
	cleaned := unsafeRegex.ReplaceAllString(name, "")
	cleaned = separatorRegex.ReplaceAllString(cleaned, "_")
	cleaned = strings.Trim(cleaned, "_")
	if len(cleaned) > 50 {
		cleaned = cleaned[:50]
	}
	return cleaned
}

// CleanBaseFilename sanitizes an uploaded file's name for storage, keeping
// the extension intact: the base is cleaned separately so the extension dot
// survives.
func CleanBaseFilename(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return CleanFilename(base) + ext
}

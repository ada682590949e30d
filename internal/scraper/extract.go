package scraper

import (
	"regexp"
	"strings"

	"go-ausbildung-automation/utils"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NotAvailable is the sentinel returned when every extraction strategy on a
// field is exhausted. Extraction never fails outright; markup drift on the
// target site degrades fields to this value instead of aborting listings.
const NotAvailable = "N/A"

var (
	institutionSelectors = []string{
		`h4[data-testid="jp-customer"]`,
		".company-name",
		`[itemprop="hiringOrganization"]`,
	}
	locationSelectors = []string{
		`[data-testid="jp-branches"]`,
		".company-address",
		".job-location",
		`[class*="location"]`,
		`[class*="address"]`,
		`[class*="standort"]`,
	}
	locationLabels = []string{"Standort", "Standorte", "Ort", "Adresse"}

	startDateSelectors = []string{
		`[data-testid="jp-starting-at"]`,
		".jp-starting-at",
		".start-date",
		`[class*="start"]`,
		`[class*="begin"]`,
	}
	startDateLabels = []string{"Beginn", "Ausbildungsbeginn", "Start", "Startdatum"}

	vacanciesSelectors = []string{
		`[data-testid="jp-vacancies"]`,
		".vacancies",
		".job-vacancies",
		`[class*="platz"]`,
		`[class*="vacan"]`,
	}
	vacanciesLabels = []string{"Freie Plätze", "Plätze", "Anzahl", "Stellen"}

	// listing URLs look like /stellen/kaufmann-bei-mueller-gmbh-in-berlin-...
	institutionSlugRegex = regexp.MustCompile(`bei-(.*?)-in-`)

	startDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:beginn|start|ab)\s*:?\s*(\d{1,2}\.\d{1,2}\.(?:\d{4}|\d{2}))`),
		regexp.MustCompile(`(?i)(?:ausbildungsbeginn)\s*:?\s*(\d{1,2}\.\d{1,2}\.(?:\d{4}|\d{2}))`),
		regexp.MustCompile(`\b(\d{1,2}\.\d{1,2}\.(?:2025|2026|2027|2028))\b`),
	}
	vacanciesPattern = regexp.MustCompile(`(?i)(\d+)\s*(?:freie?\s*)?(?:plätze?|stellen?)`)

	germanTitle = cases.Title(language.German)
)

// FieldExtractor resolves a single field through an ordered fallback chain:
// structural selectors first, then label lookup. Each strategy's failure is
// swallowed and logged; only total exhaustion surfaces the sentinel.
type FieldExtractor struct {
	log *zap.SugaredLogger
}

func NewFieldExtractor(log *zap.SugaredLogger) *FieldExtractor {
	return &FieldExtractor{log: log}
}

// Extract tries each structural selector in order, then each label text,
// returning the first non-empty trimmed value. It never returns an error.
func (e *FieldExtractor) Extract(page Page, selectors []string, labels []string) string {
	for _, sel := range selectors {
		text, err := page.Text(sel)
		if err != nil {
			e.log.Debugw("selector strategy failed", "selector", sel, "error", err)
			continue
		}
		if t := utils.SanitizeString(text, 255); t != "" {
			return t
		}
	}
	for _, label := range labels {
		text, err := page.TextByLabel(label)
		if err != nil {
			e.log.Debugw("label strategy failed", "label", label, "error", err)
			continue
		}
		if t := utils.SanitizeString(text, 255); t != "" {
			return t
		}
	}
	return NotAvailable
}

// ExtractInstitution runs the selector chain and falls back to the URL slug
// (pattern bei-<name>-in-) when the page markup gives nothing usable.
func (e *FieldExtractor) ExtractInstitution(page Page, pageURL string) string {
	for _, sel := range institutionSelectors {
		text, err := page.Text(sel)
		if err != nil {
			continue
		}
		t := utils.SanitizeString(text, 255)
		if strings.HasPrefix(strings.ToLower(t), "bei ") {
			t = strings.TrimSpace(t[4:])
		}
		if len(t) >= 2 {
			return t
		}
	}
	if m := institutionSlugRegex.FindStringSubmatch(pageURL); m != nil {
		return germanTitle.String(strings.ReplaceAll(m[1], "-", " "))
	}
	return NotAvailable
}

// ExtractStartDate runs the selector/label chain and then a regex scan over
// the rendered text for German date formats.
func (e *FieldExtractor) ExtractStartDate(page Page) string {
	if v := e.Extract(page, startDateSelectors, startDateLabels); v != NotAvailable {
		return v
	}
	e.log.Debug("start date not found with selectors, trying full-text regex fallback")
	plain, err := page.PlainText()
	if err != nil {
		return NotAvailable
	}
	for _, pattern := range startDatePatterns {
		if m := pattern.FindStringSubmatch(plain); m != nil {
			return m[1]
		}
	}
	return NotAvailable
}

// ExtractVacancies runs the selector/label chain and then a regex scan for
// "<n> freie Plätze" style phrases.
func (e *FieldExtractor) ExtractVacancies(page Page) string {
	if v := e.Extract(page, vacanciesSelectors, vacanciesLabels); v != NotAvailable {
		return v
	}
	e.log.Debug("vacancies not found with selectors, trying full-text regex fallback")
	plain, err := page.PlainText()
	if err != nil {
		return NotAvailable
	}
	if m := vacanciesPattern.FindStringSubmatch(plain); m != nil {
		return m[1]
	}
	return NotAvailable
}

package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-ausbildung-automation/internal/scraper"

	"github.com/playwright-community/playwright-go"
)

// blocked subresource types; listings render fine without them and skipping
// them cuts load time and bandwidth considerably.
var blockedResourceTypes = map[string]bool{
	"image":      true,
	"stylesheet": true,
	"font":       true,
	"media":      true,
}

type Manager struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
	origin  string
}

// NewManager launches a headless chromium with request interception that
// aborts non-essential subresource loads. origin is used to resolve
// relative listing links; userAgent may be empty.
func NewManager(ctx context.Context, origin, userAgent string) (*Manager, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
		Args: []string{
			"--no-sandbox",
			"--disable-setuid-sandbox",
			"--disable-dev-shm-usage",
		},
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("could not launch chromium browser: %w", err)
	}

	ctxOpts := playwright.BrowserNewContextOptions{}
	if userAgent != "" {
		ctxOpts.UserAgent = playwright.String(userAgent)
	}
	browserCtx, err := browser.NewContext(ctxOpts)
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("could not create browser context: %w", err)
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("could not create new page: %w", err)
	}

	if err := page.Route("**/*", func(route playwright.Route) {
		if blockedResourceTypes[route.Request().ResourceType()] {
			route.Abort()
			return
		}
		route.Continue()
	}); err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("could not set request interception: %w", err)
	}

	return &Manager{pw: pw, browser: browser, page: page, origin: origin}, nil
}

// Open navigates the managed tab and returns its read surface.
func (m *Manager) Open(ctx context.Context, url string, timeout time.Duration) (scraper.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := m.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(timeout.Milliseconds())),
	}); err != nil {
		return nil, fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return &tab{page: m.page, origin: m.origin}, nil
}

func (m *Manager) Close() error {
	if m.browser != nil {
		if err := m.browser.Close(); err != nil {
			m.pw.Stop()
			return err
		}
	}
	if m.pw != nil {
		return m.pw.Stop()
	}
	return nil
}

// tab adapts a playwright page to the scraper's Page interface.
type tab struct {
	page   playwright.Page
	origin string
}

func (t *tab) URL() string {
	return t.page.URL()
}

func (t *tab) WaitFor(selector string, timeout time.Duration) error {
	_, err := t.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	return err
}

func (t *tab) Text(selector string) (string, error) {
	text, err := t.page.Locator(selector).First().TextContent(playwright.LocatorTextContentOptions{
		Timeout: playwright.Float(1500),
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (t *tab) TextByLabel(label string) (string, error) {
	// dt/dd definition lists carry the structured job facts on the detail
	// pages; match the label case-insensitively and read the sibling value.
	xpath := fmt.Sprintf(
		`xpath=//dt[contains(translate(., 'ABCDEFGHIJKLMNOPQRSTUVWXYZÄÖÜ', 'abcdefghijklmnopqrstuvwxyzäöü'), '%s')]/following-sibling::dd[1]`,
		strings.ToLower(label),
	)
	text, err := t.page.Locator(xpath).First().TextContent(playwright.LocatorTextContentOptions{
		Timeout: playwright.Float(1500),
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (t *tab) PlainText() (string, error) {
	return t.page.Locator("body").InnerText()
}

func (t *tab) HTML() (string, error) {
	return t.page.Content()
}

func (t *tab) Links(selector string) ([]string, error) {
	locators, err := t.page.Locator(selector).All()
	if err != nil {
		return nil, err
	}
	var hrefs []string
	for _, l := range locators {
		href, err := l.GetAttribute("href")
		if err != nil || href == "" {
			continue
		}
		if strings.HasPrefix(href, "/") {
			href = t.origin + href
		}
		hrefs = append(hrefs, href)
	}
	return hrefs, nil
}

package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Config holds launch parameters for Playwright-driven sessions.
type Config struct {
	Headless bool
	SlowMo   time.Duration
}

// Playwright is a Launcher backed by a Chromium instance per session.
type Playwright struct {
	cfg Config
}

// NewPlaywright creates a Playwright launcher with the given config.
func NewPlaywright(cfg Config) *Playwright {
	return &Playwright{cfg: cfg}
}

// Install ensures the Playwright driver and Chromium are available locally.
// Safe to call repeatedly; downloads are cached.
func Install() error {
	return playwright.Install(&playwright.RunOptions{
		Browsers: []string{"chromium"},
	})
}

// Launch starts an isolated Chromium instance with a fresh context and page.
func (l *Playwright) Launch(ctx context.Context) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(l.cfg.Headless),
		SlowMo:   playwright.Float(float64(l.cfg.SlowMo.Milliseconds())),
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	browserCtx, err := browser.NewContext()
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("new browser context: %w", err)
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		browserCtx.Close()
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("new page: %w", err)
	}

	return &playwrightPage{
		pw:      pw,
		browser: browser,
		ctx:     browserCtx,
		page:    page,
	}, nil
}

type playwrightPage struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	ctx     playwright.BrowserContext
	page    playwright.Page
}

func (p *playwrightPage) AddCookies(cookies []Cookie) error {
	converted := make([]playwright.OptionalCookie, 0, len(cookies))
	for _, c := range cookies {
		converted = append(converted, playwright.OptionalCookie{
			Name:  c.Name,
			Value: c.Value,
			URL:   playwright.String(c.URL),
		})
	}
	return p.ctx.AddCookies(converted)
}

func (p *playwrightPage) Cookies() (map[string]string, error) {
	cookies, err := p.ctx.Cookies()
	if err != nil {
		return nil, err
	}
	result := make(map[string]string, len(cookies))
	for _, c := range cookies {
		result[c.Name] = c.Value
	}
	return result, nil
}

func (p *playwrightPage) Navigate(url string, timeout time.Duration) error {
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(float64(timeout.Milliseconds())),
	})
	return mapTimeout(err)
}

func (p *playwrightPage) URL() string {
	return p.page.URL()
}

func (p *playwrightPage) Fill(selector, value string) error {
	return p.page.Locator(selector).First().Fill(value)
}

func (p *playwrightPage) Click(selector string, opts ClickOptions) error {
	clickOpts := playwright.LocatorClickOptions{}
	if opts.Force {
		clickOpts.Force = playwright.Bool(true)
	}
	if opts.Timeout > 0 {
		clickOpts.Timeout = playwright.Float(float64(opts.Timeout.Milliseconds()))
	}
	return p.page.Locator(selector).First().Click(clickOpts)
}

func (p *playwrightPage) WaitForSelector(selector string, timeout time.Duration) error {
	_, err := p.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	return mapTimeout(err)
}

func (p *playwrightPage) WaitForNetworkIdle(timeout time.Duration) error {
	err := p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	return mapTimeout(err)
}

func (p *playwrightPage) IsVisible(selector string) bool {
	visible, err := p.page.Locator(selector).First().IsVisible()
	return err == nil && visible
}

func (p *playwrightPage) InnerText(selector string) (string, error) {
	return p.page.Locator(selector).First().InnerText()
}

func (p *playwrightPage) AllInnerTexts(selector string) ([]string, error) {
	return p.page.Locator(selector).AllInnerTexts()
}

func (p *playwrightPage) GetAttribute(selector, name string) (string, error) {
	return p.page.Locator(selector).First().GetAttribute(name)
}

func (p *playwrightPage) Evaluate(selector, expression string) error {
	_, err := p.page.Locator(selector).First().Evaluate(expression, nil)
	return err
}

func (p *playwrightPage) ScrollIntoView(selector string) error {
	return p.page.Locator(selector).First().ScrollIntoViewIfNeeded()
}

func (p *playwrightPage) BodyText() (string, error) {
	return p.page.Locator("body").InnerText()
}

func (p *playwrightPage) Close() error {
	return errors.Join(
		p.page.Close(),
		p.ctx.Close(),
		p.browser.Close(),
		p.pw.Stop(),
	)
}

func mapTimeout(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}

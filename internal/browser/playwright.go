package browser

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/playwright-community/playwright-go"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/120.0.0.0 Safari/537.36"

const navigationTimeoutMs = 30000

// PlaywrightEngine runs a single headless Chromium instance and hands out
// isolated contexts as sessions.
type PlaywrightEngine struct {
	pw      *playwright.Playwright
	browser playwright.Browser

	// settle delay bounds after navigation; listing markup is injected by
	// client-side scripts and needs a moment to render
	settleMin time.Duration
	settleMax time.Duration
}

func NewPlaywrightEngine() (*PlaywrightEngine, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("browser: start playwright: %w", err)
	}
	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("browser: launch chromium: %w", err)
	}
	return &PlaywrightEngine{
		pw:        pw,
		browser:   b,
		settleMin: 1 * time.Second,
		settleMax: 3 * time.Second,
	}, nil
}

func (e *PlaywrightEngine) NewSession(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bc, err := e.browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(userAgent),
	})
	if err != nil {
		return nil, fmt.Errorf("browser: new context: %w", err)
	}
	return &playwrightSession{engine: e, ctx: bc}, nil
}

func (e *PlaywrightEngine) Close() error {
	if e.browser != nil {
		_ = e.browser.Close()
	}
	if e.pw != nil {
		return e.pw.Stop()
	}
	return nil
}

type playwrightSession struct {
	engine *PlaywrightEngine
	ctx    playwright.BrowserContext
}

func (s *playwrightSession) NewPage() (Page, error) {
	p, err := s.ctx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("browser: new page: %w", err)
	}
	return &playwrightPage{engine: s.engine, page: p}, nil
}

func (s *playwrightSession) Close() error {
	return s.ctx.Close()
}

type playwrightPage struct {
	engine *PlaywrightEngine
	page   playwright.Page
}

func (p *playwrightPage) Content(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(navigationTimeoutMs),
	}); err != nil {
		return "", fmt.Errorf("browser: goto %s: %w", url, err)
	}
	if err := p.settle(ctx); err != nil {
		return "", err
	}
	content, err := p.page.Content()
	if err != nil {
		return "", fmt.Errorf("browser: content of %s: %w", url, err)
	}
	return content, nil
}

func (p *playwrightPage) Close() error {
	return p.page.Close()
}

func (p *playwrightPage) settle(ctx context.Context) error {
	span := p.engine.settleMax - p.engine.settleMin
	d := p.engine.settleMin
	if span > 0 {
		d += time.Duration(rand.Int63n(int64(span)))
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

package authstate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/playwright-community/playwright-go"
)

// PlaywrightEngine is the production Engine, backed by the Playwright
// driver. Create it with NewPlaywrightEngine and Stop it when done.
type PlaywrightEngine struct {
	pw *playwright.Playwright
}

// NewPlaywrightEngine starts the Playwright driver process.
func NewPlaywrightEngine() (*PlaywrightEngine, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("authstate: start playwright driver: %w", err)
	}
	return &PlaywrightEngine{pw: pw}, nil
}

// Stop shuts the driver down.
func (e *PlaywrightEngine) Stop() error { return e.pw.Stop() }

// InstallBrowsers downloads the Playwright browser payloads. With no
// arguments all supported engines are installed.
func InstallBrowsers(kinds ...Browser) error {
	if len(kinds) == 0 {
		kinds = Browsers()
	}
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		if !k.Valid() {
			return fmt.Errorf("authstate: unsupported browser %q", k)
		}
		names = append(names, string(k))
	}
	return playwright.Install(&playwright.RunOptions{Browsers: names})
}

// Launch starts a browser of the given kind.
func (e *PlaywrightEngine) Launch(_ context.Context, kind Browser, headless bool) (Session, error) {
	var bt playwright.BrowserType
	switch kind {
	case BrowserChromium:
		bt = e.pw.Chromium
	case BrowserFirefox:
		bt = e.pw.Firefox
	case BrowserWebKit:
		bt = e.pw.WebKit
	default:
		return nil, fmt.Errorf("authstate: unsupported browser %q", kind)
	}

	opts := playwright.BrowserTypeLaunchOptions{Headless: playwright.Bool(headless)}
	if kind == BrowserChromium {
		opts.Args = []string{"--no-sandbox", "--disable-dev-shm-usage"}
	}
	browser, err := bt.Launch(opts)
	if err != nil {
		return nil, err
	}
	return &playwrightSession{browser: browser}, nil
}

type playwrightSession struct {
	browser playwright.Browser
}

func (s *playwrightSession) NewContext(_ context.Context, state *StorageState) (Page, error) {
	opts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: 1920, Height: 1080},
	}

	// The state is handed to Playwright through its own storage-state file
	// format; our wire types match it field for field.
	var tmpPath string
	if state != nil {
		data, err := json.Marshal(state)
		if err != nil {
			return nil, err
		}
		tmp, err := os.CreateTemp("", "authstate-seed-*.json")
		if err != nil {
			return nil, err
		}
		tmpPath = tmp.Name()
		if _, err := tmp.Write(data); err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
			return nil, err
		}
		if err := tmp.Close(); err != nil {
			_ = os.Remove(tmpPath)
			return nil, err
		}
		opts.StorageStatePath = playwright.String(tmpPath)
	}

	bctx, err := s.browser.NewContext(opts)
	if tmpPath != "" {
		_ = os.Remove(tmpPath)
	}
	if err != nil {
		return nil, err
	}
	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, err
	}
	return &playwrightPage{bctx: bctx, page: page}, nil
}

func (s *playwrightSession) Close() error { return s.browser.Close() }

type playwrightPage struct {
	bctx playwright.BrowserContext
	page playwright.Page
}

func (p *playwrightPage) Goto(_ context.Context, url string) error {
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(60_000),
	})
	return err
}

func (p *playwrightPage) Title() (string, error) { return p.page.Title() }

func (p *playwrightPage) URL() string { return p.page.URL() }

func (p *playwrightPage) UserAgent(_ context.Context) (string, error) {
	v, err := p.page.Evaluate("() => navigator.userAgent")
	if err != nil {
		return "", err
	}
	ua, _ := v.(string)
	return ua, nil
}

func (p *playwrightPage) StorageState(_ context.Context) (*StorageState, error) {
	// Round-trip through a file so the bytes are exactly what the engine
	// would write itself.
	tmp, err := os.CreateTemp("", "authstate-state-*.json")
	if err != nil {
		return nil, err
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := p.bctx.StorageState(tmpPath); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, err
	}
	var state StorageState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

const webStorageScript = `() => {
	const dump = (s) => {
		const out = {};
		for (let i = 0; i < s.length; i++) {
			const k = s.key(i);
			out[k] = s.getItem(k);
		}
		return out;
	};
	return { local: dump(localStorage), session: dump(sessionStorage) };
}`

func (p *playwrightPage) WebStorage(_ context.Context) (map[string]string, map[string]string, error) {
	v, err := p.page.Evaluate(webStorageScript)
	if err != nil {
		return nil, nil, err
	}
	raw, ok := v.(map[string]interface{})
	if !ok {
		return nil, nil, fmt.Errorf("authstate: unexpected web storage shape %T", v)
	}
	return toStringMap(raw["local"]), toStringMap(raw["session"]), nil
}

func toStringMap(v interface{}) map[string]string {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, val := range m {
		if s, ok := val.(string); ok {
			out[k] = s
		}
	}
	return out
}

func (p *playwrightPage) Close() error {
	if err := p.page.Close(); err != nil {
		return err
	}
	return p.bctx.Close()
}

package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Manager launches a fresh headed Chromium through Playwright with a
// project-local profile, the same way the agent-cli drives its browser.
type Manager struct {
	pw          *playwright.Playwright
	context     playwright.BrowserContext
	page        playwright.Page
	userDataDir string
}

func NewManager() (*Manager, error) {
	if err := playwright.Install(); err != nil {
		return nil, fmt.Errorf("install pw failed: %w", err)
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start pw failed: %w", err)
	}

	cwd, _ := os.Getwd()
	m := &Manager{
		pw:          pw,
		userDataDir: filepath.Join(cwd, ".browser_data"),
	}
	if err := m.launch(); err != nil {
		_ = pw.Stop()
		return nil, err
	}
	return m, nil
}

func (m *Manager) launch() error {
	context, err := m.pw.Chromium.LaunchPersistentContext(
		m.userDataDir,
		playwright.BrowserTypeLaunchPersistentContextOptions{
			Headless: playwright.Bool(false),
			Viewport: &playwright.Size{Width: 1280, Height: 720},
			Args: []string{
				"--no-sandbox",
				"--disable-dev-shm-usage",
			},
		},
	)
	if err != nil {
		return fmt.Errorf("launch browser failed: %w", err)
	}

	var page playwright.Page
	pages := context.Pages()
	if len(pages) > 0 {
		page = pages[0]
	} else {
		page, err = context.NewPage()
		if err != nil {
			_ = context.Close()
			return fmt.Errorf("failed to create page: %w", err)
		}
	}

	page.SetDefaultTimeout(60000)
	page.SetDefaultNavigationTimeout(60000)

	m.context = context
	m.page = page
	return nil
}

func (m *Manager) Page() Page {
	return &pwPage{m: m}
}

// Restart closes the browser context and launches a new one. The Playwright
// driver itself stays up.
func (m *Manager) Restart() error {
	if m.context != nil {
		_ = m.context.Close()
		m.context = nil
		m.page = nil
	}
	time.Sleep(2 * time.Second)
	return m.launch()
}

func (m *Manager) Close() {
	if m.context != nil {
		_ = m.context.Close()
	}
	if m.pw != nil {
		_ = m.pw.Stop()
	}
}

// pwPage adapts the live Playwright page to the Page interface. It reads the
// page handle through the manager so it stays valid across Restart.
type pwPage struct {
	m *Manager
}

func (p *pwPage) Navigate(url string) error {
	if p.m.page == nil {
		return fmt.Errorf("page is not initialized")
	}
	_, err := p.m.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	return err
}

func (p *pwPage) Click(x, y int) error {
	if p.m.page == nil {
		return fmt.Errorf("page is not initialized")
	}
	return p.m.page.Mouse().Click(float64(x), float64(y))
}

func (p *pwPage) Screenshot() ([]byte, error) {
	if p.m.page == nil {
		return nil, fmt.Errorf("page is not initialized")
	}
	return p.m.page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(false),
		Type:     playwright.ScreenshotTypePng,
	})
}

func (p *pwPage) Evaluate(js string) (any, error) {
	if p.m.page == nil {
		return nil, fmt.Errorf("page is not initialized")
	}
	return p.m.page.Evaluate(js)
}

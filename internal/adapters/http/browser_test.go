package web_test

import (
	"context"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	web "lawoffice/internal/adapters/http"
	"lawoffice/internal/adapters/objectstore"
	"lawoffice/internal/adapters/session"
	accountStore "lawoffice/internal/adapters/storage/account"
	appointmentStore "lawoffice/internal/adapters/storage/appointment"
	blogStore "lawoffice/internal/adapters/storage/blog"
	clientStore "lawoffice/internal/adapters/storage/client"
	documentStore "lawoffice/internal/adapters/storage/document"
	inquiryStore "lawoffice/internal/adapters/storage/inquiry"
	caseStore "lawoffice/internal/adapters/storage/legalcase"
	profileStore "lawoffice/internal/adapters/storage/profile"
	"lawoffice/internal/adapters/storage/storagetest"
	"lawoffice/internal/application/orchestrators"
	"lawoffice/internal/domain/profile"
)

const (
	browserAdminEmail    = "admin@example.com"
	browserAdminPassword = "una-clave-muy-larga"
)

// browserApp is a running server plus a headless Chromium.
type browserApp struct {
	BaseURL string
	Browser playwright.Browser
}

// newBrowserApp starts the full router on a test server. Browser tests
// only run with BROWSER_TESTS=1 and outside -short.
func newBrowserApp(t *testing.T) *browserApp {
	t.Helper()
	if testing.Short() || os.Getenv("BROWSER_TESTS") != "1" {
		t.Skip("set BROWSER_TESTS=1 to run browser tests")
	}

	db := storagetest.Open(t)
	stores := &web.Stores{
		AccountStore:     accountStore.NewSQLStore(db),
		ProfileStore:     profileStore.NewSQLStore(db),
		BlogStore:        blogStore.NewSQLStore(db),
		ClientStore:      clientStore.NewSQLStore(db),
		CaseStore:        caseStore.NewSQLStore(db),
		DocumentStore:    documentStore.NewSQLStore(db),
		InquiryStore:     inquiryStore.NewSQLStore(db),
		AppointmentStore: appointmentStore.NewSQLStore(db),
	}
	_, err := orchestrators.ExecuteCreateAccount(context.Background(), orchestrators.CreateAccountInput{
		Email:    browserAdminEmail,
		Password: browserAdminPassword,
		Role:     profile.RoleAdmin,
	}, orchestrators.CreateAccountDeps{
		AccountStore: stores.AccountStore,
		ProfileStore: stores.ProfileStore,
		GenerateID:   func() string { return "admin-001" },
		Now:          time.Now,
	})
	if err != nil {
		t.Fatalf("failed to create admin: %v", err)
	}

	objects, err := objectstore.NewLocal(t.TempDir(), "")
	if err != nil {
		t.Fatalf("object store: %v", err)
	}
	auth := session.AuthenticatorFunc(func(ctx context.Context, email, password string) (string, string, error) {
		res, err := orchestrators.ExecuteLogin(ctx, orchestrators.LoginInput{Email: email, Password: password}, orchestrators.LoginDeps{
			AccountStore: stores.AccountStore,
			Now:          time.Now,
		})
		return res.AccountID, res.Email, err
	})

	done := make(chan struct{})
	srv := httptest.NewServer(web.NewMux(stores, &web.Services{
		Sessions: session.NewProvider(session.NewMemoryBackend(), auth, stores.ProfileStore),
		Objects:  objects,
		Uploads:  objects,
	}, web.Options{
		CSRFKey:            []byte("0123456789abcdef0123456789abcdef"),
		RateLimitPerSecond: 100,
		SlowRequest:        time.Second,
		Location:           time.UTC,
		Done:               done,
	}))

	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}
	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		srv.Close()
		close(done)
	})
	return &browserApp{BaseURL: srv.URL, Browser: browser}
}

func (a *browserApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	page, err := a.Browser.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { page.Close() })
	return page
}

// login signs in through the form, starting from a gated page so the
// return destination is exercised too.
func (a *browserApp) login(t *testing.T, page playwright.Page, from string) {
	t.Helper()
	if _, err := page.Goto(a.BaseURL + from); err != nil {
		t.Fatalf("failed to navigate to %s: %v", from, err)
	}
	if err := page.Locator("input[name=email]").Fill(browserAdminEmail); err != nil {
		t.Fatalf("failed to fill email: %v", err)
	}
	if err := page.Locator("input[name=password]").Fill(browserAdminPassword); err != nil {
		t.Fatalf("failed to fill password: %v", err)
	}
	if err := page.Locator("main button[type=submit]").Click(); err != nil {
		t.Fatalf("failed to click login: %v", err)
	}
	if err := page.WaitForURL(a.BaseURL+from, playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("login did not return to %s: %v", from, err)
	}
}

func TestBrowser_AdminCrawl(t *testing.T) {
	app := newBrowserApp(t)
	page := app.newPage(t)
	app.login(t, page, "/admin/clients")

	for _, path := range []string{
		"/admin",
		"/admin/blog",
		"/admin/blog/new",
		"/admin/clients/new",
		"/admin/cases",
		"/admin/cases/new",
		"/admin/documents",
		"/admin/inquiries",
		"/admin/appointments",
	} {
		t.Run(path, func(t *testing.T) {
			resp, err := page.Goto(app.BaseURL + path)
			if err != nil {
				t.Fatalf("goto: %v", err)
			}
			if resp.Status() != 200 {
				t.Errorf("status = %d, want 200", resp.Status())
			}
		})
	}
}

func TestBrowser_ContactConfirmationHides(t *testing.T) {
	app := newBrowserApp(t)
	page := app.newPage(t)
	if _, err := page.Goto(app.BaseURL + "/contact"); err != nil {
		t.Fatalf("goto: %v", err)
	}
	page.Locator("#name").Fill("Lucía Gómez")
	page.Locator("#email").Fill("lucia@example.com")
	page.Locator("#message").Fill("Necesito asesoría laboral.")
	if err := page.Locator("main button[type=submit]").Click(); err != nil {
		t.Fatalf("submit: %v", err)
	}

	notice := page.Locator("#sent-notice")
	if err := notice.WaitFor(playwright.LocatorWaitForOptions{State: playwright.WaitForSelectorStateVisible, Timeout: playwright.Float(5000)}); err != nil {
		t.Fatalf("confirmation not shown: %v", err)
	}
	if err := notice.WaitFor(playwright.LocatorWaitForOptions{State: playwright.WaitForSelectorStateDetached, Timeout: playwright.Float(8000)}); err != nil {
		t.Errorf("confirmation did not hide: %v", err)
	}
}

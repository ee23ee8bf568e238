package browser

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/LouYuanbo1/tiktokagent/internal/config"
	"github.com/LouYuanbo1/tiktokagent/internal/infra/browser/options"
	"github.com/go-rod/rod"
	"github.com/go-rod/stealth"
	"github.com/sirupsen/logrus"
)

// HomeURL is the origin signed fetches run under, so the site's
// cookies and request hooks apply.
const HomeURL = "https://www.tiktok.com"

type rodSession struct {
	browser *rod.Browser
	timeout time.Duration
	log     *logrus.Logger

	// The signing page is shared by every iterator on this session;
	// the mutex serializes in-page fetches.
	mu       sync.Mutex
	homePage *rod.Page
}

func InitRodSession(cfg *config.Config, log *logrus.Logger) (Session, error) {
	l := options.CreateLauncher(false,
		options.WithBin(cfg.Rod.Bin),
		options.WithUserDataDir(cfg.Rod.UserDataDir),
		options.WithHeadless(cfg.Rod.Headless),
		options.WithDisableBlinkFeatures(cfg.Rod.DisableBlinkFeatures),
		options.WithIncognito(cfg.Rod.Incognito),
		options.WithDisableDevShmUsage(cfg.Rod.DisableDevShmUsage),
		options.WithNoSandbox(cfg.Rod.NoSandbox),
		options.WithUserAgent(cfg.Rod.UserAgent),
		options.WithLeakless(cfg.Rod.Leakless),
	)
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	return &rodSession{
		browser: b,
		timeout: time.Duration(cfg.Scrape.NavigationTimeoutSeconds) * time.Second,
		log:     log,
	}, nil
}

func (rs *rodSession) Close() {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.homePage != nil {
		_ = rs.homePage.Close()
		rs.homePage = nil
	}
	if err := rs.browser.Close(); err != nil {
		rs.log.Warnf("close browser: %v", err)
	}
}

func (rs *rodSession) UserAgent(ctx context.Context) (string, error) {
	page, err := stealth.Page(rs.browser)
	if err != nil {
		return "", fmt.Errorf("open page: %w", err)
	}
	defer page.Close()
	res, err := page.Context(ctx).Timeout(rs.timeout).Eval(`() => navigator.userAgent`)
	if err != nil {
		return "", fmt.Errorf("read user agent: %w", err)
	}
	return res.Value.Str(), nil
}

// ensureHomePage lazily opens (and keeps) a stealth page on the site
// origin; in-page fetches need it for cookies and signing hooks.
// Caller must hold mu.
func (rs *rodSession) ensureHomePage() (*rod.Page, error) {
	if rs.homePage != nil {
		return rs.homePage, nil
	}
	page, err := stealth.Page(rs.browser)
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	if err := page.Timeout(rs.timeout).Navigate(HomeURL); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("navigate %s: %w", HomeURL, err)
	}
	if err := page.Timeout(rs.timeout).WaitLoad(); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("wait load: %w", err)
	}
	rs.homePage = page
	return page, nil
}

func (rs *rodSession) Fetch(ctx context.Context, url string) ([]byte, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	page, err := rs.ensureHomePage()
	if err != nil {
		return nil, err
	}
	res, err := page.Context(ctx).Timeout(rs.timeout).Eval(`async (u) => {
		const resp = await fetch(u, { method: "GET", credentials: "include" });
		return await resp.text();
	}`, url)
	if err != nil {
		return nil, fmt.Errorf("in-page fetch: %w", err)
	}
	return []byte(res.Value.Str()), nil
}

func (rs *rodSession) Cookie(ctx context.Context, name string) (string, bool, error) {
	cookies, err := rs.browser.GetCookies()
	if err != nil {
		return "", false, fmt.Errorf("read cookies: %w", err)
	}
	for _, c := range cookies {
		if c.Name == name {
			return c.Value, true, nil
		}
	}
	return "", false, nil
}

func (rs *rodSession) Scrape(ctx context.Context, url string, opts ScrapeOptions) (*ScrapeResult, error) {
	page, err := stealth.Page(rs.browser)
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer page.Close()
	page = page.Context(ctx).Timeout(rs.timeout)

	var (
		capMu    sync.Mutex
		captures []Capture
	)
	if len(opts.CapturePatterns) > 0 {
		router := page.HijackRequests()
		for _, pattern := range opts.CapturePatterns {
			err := router.Add(pattern, "", func(h *rod.Hijack) {
				if err := h.LoadResponse(http.DefaultClient, true); err != nil {
					rs.log.Warnf("load hijacked response: %v", err)
					return
				}
				capMu.Lock()
				captures = append(captures, Capture{
					URL:  h.Request.URL().String(),
					Body: []byte(h.Response.Body()),
				})
				capMu.Unlock()
			})
			if err != nil {
				return nil, fmt.Errorf("add hijack pattern %q: %w", pattern, err)
			}
		}
		go router.Run()
		defer func() {
			if err := router.Stop(); err != nil {
				rs.log.Warnf("stop hijack router: %v", err)
			}
		}()
	}

	if err := page.Navigate(url); err != nil {
		return nil, fmt.Errorf("navigate %s: %w", url, err)
	}
	if opts.WaitSelector != "" {
		if _, err := page.Element(opts.WaitSelector); err != nil {
			return nil, fmt.Errorf("wait for %q: %w", opts.WaitSelector, err)
		}
	}
	if opts.ScrollTimes > 0 {
		rs.performScrolling(page, opts)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("read page html: %w", err)
	}
	capMu.Lock()
	defer capMu.Unlock()
	return &ScrapeResult{HTML: html, Captures: captures}, nil
}

func (rs *rodSession) performScrolling(page *rod.Page, opts ScrapeOptions) {
	localRand := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := range opts.ScrollTimes {
		switch localRand.Intn(2) {
		case 0:
			_, err := page.Eval(`() => window.scrollTo({top: document.body.scrollHeight, behavior: "smooth"})`)
			if err != nil {
				rs.log.Warnf("scroll %d failed: %v", i+1, err)
			}
		case 1:
			ratio := 0.7 + localRand.Float64()*0.3
			_, err := page.Eval(`(r) => window.scrollTo({top: document.body.scrollHeight * r, behavior: "smooth"})`, ratio)
			if err != nil {
				rs.log.Warnf("scroll %d failed: %v", i+1, err)
			}
		}
		randomDelay := time.Duration(localRand.Float64() * float64(opts.RandomDelaySeconds) * float64(time.Second))
		time.Sleep(time.Duration(opts.StandardSleepSeconds)*time.Second + randomDelay)
	}
}

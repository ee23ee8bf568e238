package browser

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/LouYuanbo1/tiktokagent/internal/config"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"
)

type chromedpSession struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	pageCtx     context.Context
	pageCancel  context.CancelFunc
	lifeCancel  context.CancelFunc
	timeout     time.Duration
	log         *logrus.Logger

	mu        sync.Mutex
	homeReady bool
}

func InitChromedpSession(ctx context.Context, cfg *config.Config, log *logrus.Logger) (Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Chromedp.Headless),
		chromedp.Flag("disable-blink-features", cfg.Chromedp.DisableBlinkFeatures),
		chromedp.Flag("incognito", cfg.Chromedp.Incognito),
		chromedp.Flag("disable-dev-shm-usage", cfg.Chromedp.DisableDevShmUsage),
		chromedp.Flag("no-sandbox", cfg.Chromedp.NoSandbox),
		chromedp.UserDataDir(cfg.Chromedp.UserDataDir),
		chromedp.UserAgent(cfg.Chromedp.UserAgent),
	)
	lifeCancel := context.CancelFunc(func() {})
	if cfg.Chromedp.LifeTime > 0 {
		ctx, lifeCancel = context.WithTimeout(ctx, time.Duration(cfg.Chromedp.LifeTime)*time.Second)
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	pageCtx, pageCancel := chromedp.NewContext(allocCtx)

	return &chromedpSession{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		pageCtx:     pageCtx,
		pageCancel:  pageCancel,
		lifeCancel:  lifeCancel,
		timeout:     time.Duration(cfg.Scrape.NavigationTimeoutSeconds) * time.Second,
		log:         log,
	}, nil
}

func (cs *chromedpSession) Close() {
	cs.pageCancel()
	cs.allocCancel()
	cs.lifeCancel()
}

func (cs *chromedpSession) UserAgent(ctx context.Context) (string, error) {
	tabCtx, cancel := chromedp.NewContext(cs.allocCtx)
	defer cancel()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, cs.timeout)
	defer cancelTimeout()

	var agent string
	if err := chromedp.Run(tabCtx, chromedp.Evaluate(`navigator.userAgent`, &agent)); err != nil {
		return "", fmt.Errorf("read user agent: %w", err)
	}
	return agent, nil
}

// ensureHome navigates the signing tab to the site origin once.
// Caller must hold mu.
func (cs *chromedpSession) ensureHome() error {
	if cs.homeReady {
		return nil
	}
	runCtx, cancel := context.WithTimeout(cs.pageCtx, cs.timeout)
	defer cancel()
	err := chromedp.Run(runCtx,
		network.Enable(),
		chromedp.Navigate(HomeURL),
		chromedp.WaitReady("body"),
	)
	if err != nil {
		return fmt.Errorf("navigate %s: %w", HomeURL, err)
	}
	cs.homeReady = true
	return nil
}

func (cs *chromedpSession) Fetch(ctx context.Context, url string) ([]byte, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if err := cs.ensureHome(); err != nil {
		return nil, err
	}
	runCtx, cancel := context.WithTimeout(cs.pageCtx, cs.timeout)
	defer cancel()

	js := fmt.Sprintf(`fetch(%q, {method: "GET", credentials: "include"}).then(r => r.text())`, url)
	var body string
	err := chromedp.Run(runCtx, chromedp.Evaluate(js, &body,
		func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}))
	if err != nil {
		return nil, fmt.Errorf("in-page fetch: %w", err)
	}
	return []byte(body), nil
}

func (cs *chromedpSession) Cookie(ctx context.Context, name string) (string, bool, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if err := cs.ensureHome(); err != nil {
		return "", false, err
	}
	var (
		value string
		found bool
	)
	err := chromedp.Run(cs.pageCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		cookies, err := storage.GetCookies().Do(ctx)
		if err != nil {
			return err
		}
		for _, c := range cookies {
			if c.Name == name {
				value, found = c.Value, true
				break
			}
		}
		return nil
	}))
	if err != nil {
		return "", false, fmt.Errorf("read cookies: %w", err)
	}
	return value, found, nil
}

func (cs *chromedpSession) Scrape(ctx context.Context, url string, opts ScrapeOptions) (*ScrapeResult, error) {
	tabCtx, cancel := chromedp.NewContext(cs.allocCtx)
	defer cancel()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, cs.timeout)
	defer cancelTimeout()

	var (
		capMu    sync.Mutex
		captures []Capture
	)
	if len(opts.CapturePatterns) > 0 {
		c := chromedp.FromContext(tabCtx)
		chromedp.ListenTarget(tabCtx, func(ev interface{}) {
			resp, ok := ev.(*network.EventResponseReceived)
			if !ok || !matchAny(resp.Response.URL, opts.CapturePatterns) {
				return
			}
			requestID := resp.RequestID
			respURL := resp.Response.URL
			go func() {
				body, err := network.GetResponseBody(requestID).Do(cdp.WithExecutor(tabCtx, c.Target))
				if err != nil {
					cs.log.Warnf("read captured response body: %v", err)
					return
				}
				capMu.Lock()
				captures = append(captures, Capture{URL: respURL, Body: body})
				capMu.Unlock()
			}()
		})
	}

	actions := []chromedp.Action{
		network.Enable(),
		chromedp.Navigate(url),
	}
	if opts.WaitSelector != "" {
		actions = append(actions, chromedp.WaitReady(opts.WaitSelector))
	}
	if opts.ScrollTimes > 0 {
		actions = append(actions, cs.performScrolling(opts))
	}
	var html string
	actions = append(actions, chromedp.OuterHTML("html", &html))

	if err := chromedp.Run(tabCtx, actions...); err != nil {
		return nil, fmt.Errorf("scrape %s: %w", url, err)
	}
	capMu.Lock()
	defer capMu.Unlock()
	return &ScrapeResult{HTML: html, Captures: captures}, nil
}

func (cs *chromedpSession) performScrolling(opts ScrapeOptions) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		localRand := rand.New(rand.NewSource(time.Now().UnixNano()))
		for range opts.ScrollTimes {
			js := `window.scrollTo({top: document.body.scrollHeight, behavior: "smooth"})`
			if localRand.Intn(2) == 1 {
				ratio := 0.7 + localRand.Float64()*0.3
				js = fmt.Sprintf(`window.scrollTo({top: document.body.scrollHeight * %f, behavior: "smooth"})`, ratio)
			}
			if err := chromedp.Evaluate(js, nil).Do(ctx); err != nil {
				return fmt.Errorf("scroll: %w", err)
			}
			randomDelay := time.Duration(localRand.Float64() * float64(opts.RandomDelaySeconds) * float64(time.Second))
			if err := chromedp.Sleep(time.Duration(opts.StandardSleepSeconds)*time.Second + randomDelay).Do(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}

// matchAny reports whether url matches one of the wildcard patterns
// ("*" matches any run of characters).
func matchAny(url string, patterns []string) bool {
	for _, p := range patterns {
		if matchPattern(url, p) {
			return true
		}
	}
	return false
}

func matchPattern(url, pattern string) bool {
	parts := strings.Split(pattern, "*")
	idx := 0
	for i, part := range parts {
		if part == "" {
			continue
		}
		j := strings.Index(url[idx:], part)
		if j < 0 {
			return false
		}
		if i == 0 && j != 0 {
			return false
		}
		idx += j + len(part)
	}
	if last := parts[len(parts)-1]; last != "" && idx != len(url) {
		return false
	}
	return true
}

package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"golang.org/x/time/rate"

	"github.com/baxromumarov/wordwise/internal/urlutil"
)

// Page is the raw result of a single page fetch.
type Page struct {
	// FinalURL is the URL after redirects.
	FinalURL    string
	Status      int
	ContentType string
	Body        []byte
}

// CollyFetcher fetches single pages through Colly, spacing requests to the
// same host by at least the configured minimum delay.
type CollyFetcher struct {
	userAgent   string
	timeout     time.Duration
	attempts    int
	ignoreRobot bool
	mu          sync.Mutex
	minDelay    time.Duration
	hosts       map[string]*hostPolicy
}

type hostPolicy struct {
	limiter     *rate.Limiter
	nextAllowed time.Time
	mu          sync.Mutex
}

// FetcherOptions tunes a CollyFetcher.
type FetcherOptions struct {
	UserAgent   string
	Timeout     time.Duration
	MinDelay    time.Duration
	MaxAttempts int
	// IgnoreRobots disables Colly's robots.txt check.
	IgnoreRobots bool
}

func NewCollyFetcher(opts FetcherOptions) *CollyFetcher {
	if opts.UserAgent == "" {
		opts.UserAgent = "wordwise-fetcher/1.0"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.MinDelay < 0 {
		opts.MinDelay = 0
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 3
	}
	return &CollyFetcher{
		userAgent:   opts.UserAgent,
		timeout:     opts.Timeout,
		attempts:    opts.MaxAttempts,
		ignoreRobot: opts.IgnoreRobots,
		minDelay:    opts.MinDelay,
		hosts:       make(map[string]*hostPolicy),
	}
}

// FetchPage downloads rawURL and returns its body. Failures after the last
// attempt come back as *FetchError.
func (f *CollyFetcher) FetchPage(ctx context.Context, rawURL string) (*Page, error) {
	page := &Page{}
	status, err := f.fetchWithRetry(ctx, rawURL, func(c *colly.Collector) {
		c.OnResponse(func(r *colly.Response) {
			page.Body = append([]byte(nil), r.Body...)
			page.FinalURL = r.Request.URL.String()
			if r.Headers != nil {
				page.ContentType = r.Headers.Get("Content-Type")
			}
		})
	})
	page.Status = status
	if err != nil {
		return nil, err
	}
	if page.FinalURL == "" {
		page.FinalURL = rawURL
	}
	return page, nil
}

func (f *CollyFetcher) fetchWithRetry(ctx context.Context, rawURL string, register func(*colly.Collector)) (int, error) {
	if strings.TrimSpace(rawURL) == "" {
		return 0, &FetchError{Err: errors.New("empty url")}
	}
	_, host, err := urlutil.Normalize(rawURL)
	if err != nil {
		return 0, &FetchError{Err: err}
	}
	target := rawURL

	var lastErr error
	var status int
	for attempt := 0; attempt < f.attempts; attempt++ {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		if err := f.waitForHost(ctx, host); err != nil {
			return 0, err
		}
		status, lastErr = f.fetchOnce(ctx, target, register)
		if lastErr == nil {
			return status, nil
		}
		if shouldBackoff(status) {
			f.applyBackoff(host, attempt)
			continue
		}
		return status, &FetchError{Status: status, Err: lastErr}
	}

	if lastErr == nil {
		lastErr = errors.New("colly fetch failed")
	}
	return status, &FetchError{Status: status, Err: lastErr}
}

func (f *CollyFetcher) fetchOnce(ctx context.Context, target string, register func(*colly.Collector)) (int, error) {
	c := f.newCollector()
	if register != nil {
		register(c)
	}

	status := 0
	var reqErr error
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		reqErr = err
	})

	collyCtx := colly.NewContext()
	collyCtx.Put("ctx", ctx)

	if err := c.Request(http.MethodGet, target, nil, collyCtx, nil); err != nil {
		return status, err
	}
	if reqErr != nil {
		return status, reqErr
	}
	if status >= 400 {
		return status, fmt.Errorf("status %d", status)
	}
	if status == 0 {
		status = http.StatusOK
	}
	return status, nil
}

func (f *CollyFetcher) newCollector() *colly.Collector {
	c := colly.NewCollector(colly.UserAgent(f.userAgent))
	c.IgnoreRobotsTxt = f.ignoreRobot
	c.SetRequestTimeout(f.timeout)

	c.OnRequest(func(r *colly.Request) {
		ctx := context.Background()
		if v := r.Ctx.GetAny("ctx"); v != nil {
			if reqCtx, ok := v.(context.Context); ok {
				ctx = reqCtx
			}
		}
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	return c
}

func (f *CollyFetcher) waitForHost(ctx context.Context, host string) error {
	policy := f.hostPolicy(host)
	if err := policy.waitBackoff(ctx); err != nil {
		return err
	}
	return policy.limiter.Wait(ctx)
}

func (f *CollyFetcher) hostPolicy(host string) *hostPolicy {
	if host == "" {
		host = "default"
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if policy, ok := f.hosts[host]; ok {
		return policy
	}
	limit := rate.Inf
	if f.minDelay > 0 {
		limit = rate.Every(f.minDelay)
	}
	policy := &hostPolicy{limiter: rate.NewLimiter(limit, 1)}
	f.hosts[host] = policy
	return policy
}

func (f *CollyFetcher) applyBackoff(host string, attempt int) {
	policy := f.hostPolicy(host)
	next := time.Now().Add(backoffDelay(attempt))
	policy.mu.Lock()
	if next.After(policy.nextAllowed) {
		policy.nextAllowed = next
	}
	policy.mu.Unlock()
}

func shouldBackoff(status int) bool {
	return status == http.StatusTooManyRequests || (status >= 500 && status <= 599)
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (p *hostPolicy) waitBackoff(ctx context.Context) error {
	for {
		p.mu.Lock()
		next := p.nextAllowed
		p.mu.Unlock()
		now := time.Now()
		if !now.Before(next) {
			return nil
		}
		if err := sleepWithContext(ctx, next.Sub(now)); err != nil {
			return err
		}
	}
}

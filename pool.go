package htmlpdf

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/chromedp"
	"github.com/go-rod/rod/lib/launcher"
)

// browserPool owns a single headless Chrome process and hands out
// per-request tabs. Tab checkout is bounded by a semaphore so that N
// concurrent conversions never spawn more than poolSize tabs; additional
// callers block until a slot frees or their context is cancelled.
//
// The pool is created when the Converter starts and torn down by
// [browserPool.close]; there is no other process-wide browser state.
type browserPool struct {
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	sem chan struct{}

	mu     sync.Mutex
	closed bool
}

// newBrowserPool launches the browser eagerly so startup errors surface
// at creation time rather than on the first request.
func newBrowserPool(cfg converterConfig) (*browserPool, error) {
	chromePath := cfg.chromePath
	if chromePath == "" && cfg.autoDownload {
		// Fetches a cached Chromium build (~/.cache/rod/browser on Unix)
		// when no system browser is available.
		path, err := launcher.NewBrowser().Get()
		if err != nil {
			return nil, fmt.Errorf("htmlpdf: downloading browser: %w", err)
		}
		chromePath = path
	}

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("headless", cfg.headless),
	)
	if chromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(chromePath))
	}
	if cfg.noSandbox {
		allocOpts = append(allocOpts, chromedp.Flag("no-sandbox", true))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("htmlpdf: starting browser: %w", err)
	}

	return &browserPool{
		allocCtx:      allocCtx,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		sem:           make(chan struct{}, cfg.poolSize),
	}, nil
}

// acquire checks a fresh tab out of the pool. The returned release func
// must be called on every exit path; it closes the tab and returns the
// slot. Cancelling ctx while waiting returns ctx.Err(); cancelling it
// after checkout tears the tab down mid-navigation.
func (p *browserPool) acquire(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if err := p.checkClosed(); err != nil {
		return nil, nil, err
	}

	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}

	tabCtx, tabCancel := chromedp.NewContext(p.browserCtx)

	// Tie the tab to the request context so a caller disconnect stops
	// in-flight navigation instead of letting it run to completion.
	stop := context.AfterFunc(ctx, tabCancel)

	var once sync.Once
	release := func() {
		once.Do(func() {
			stop()
			tabCancel()
			<-p.sem
		})
	}
	return tabCtx, release, nil
}

func (p *browserPool) checkClosed() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	return nil
}

// close shuts the browser process down. Idempotent.
func (p *browserPool) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.browserCancel()
	p.allocCancel()
}

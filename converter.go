package htmlpdf

import (
	"context"
	"sync"
)

// Converter runs the conversion pipeline. It manages a headless browser
// process reused across conversions and is safe for concurrent use;
// conversions beyond the pool size queue for a free tab.
//
// Call [Converter.Close] when the Converter is no longer needed to
// release browser resources.
type Converter struct {
	cfg      converterConfig
	pool     *browserPool
	fetcher  *fetcher
	renderer *renderer

	mu     sync.Mutex
	closed bool
}

// NewConverter creates a Converter with the given options.
//
// It starts a headless browser in the background. The caller must call
// [Converter.Close] when finished.
func NewConverter(opts ...Option) (*Converter, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	pool, err := newBrowserPool(cfg)
	if err != nil {
		return nil, err
	}

	return &Converter{
		cfg:  cfg,
		pool: pool,
		fetcher: &fetcher{
			pool:        pool,
			timeout:     cfg.fetchTimeout,
			settleDelay: cfg.settleDelay,
		},
		renderer: &renderer{
			pool:    pool,
			timeout: cfg.renderTimeout,
		},
	}, nil
}

// Close releases all resources held by the Converter, including the
// browser process. Close is idempotent.
func (c *Converter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.pool.close()
	return nil
}

// Closed reports whether Close has been called.
func (c *Converter) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// ConvertURL fetches rawURL in the headless browser, extracts its content
// region, and renders it to a single-page PDF. Each stage failure
// short-circuits the rest: *FetchError, then *ExtractionError, then
// *RenderError. No stage is retried.
func (c *Converter) ConvertURL(ctx context.Context, rawURL string) (*Result, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}
	doc, err := c.fetcher.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	frag, err := extract(doc.HTML)
	if err != nil {
		return nil, err
	}
	return c.renderer.render(ctx, frag)
}

// ConvertHTML extracts the content region from an HTML string and renders
// it to a single-page PDF. Extraction applies to direct submissions the
// same way it does to fetched pages: a document without a content-marked
// element fails with *ExtractionError.
func (c *Converter) ConvertHTML(ctx context.Context, html string) (*Result, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}
	frag, err := extract(html)
	if err != nil {
		return nil, err
	}
	return c.renderer.render(ctx, frag)
}

// ConvertBase64 decodes a base64-encoded HTML submission and converts it
// like [Converter.ConvertHTML]. Invalid base64 fails with *DecodeError
// before any render work happens.
func (c *Converter) ConvertBase64(ctx context.Context, encoded string) (*Result, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}
	html, err := decodeBase64HTML(encoded)
	if err != nil {
		return nil, err
	}
	return c.ConvertHTML(ctx, html)
}

func (c *Converter) checkClosed() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return nil
}

// --- Package-level convenience functions ---

// ConvertURL converts a web page to PDF using a temporary [Converter].
// For repeated use, create a [Converter] with [NewConverter] to reuse the
// browser instance.
func ConvertURL(ctx context.Context, rawURL string, opts ...Option) (*Result, error) {
	conv, err := NewConverter(opts...)
	if err != nil {
		return nil, err
	}
	defer conv.Close()
	return conv.ConvertURL(ctx, rawURL)
}

// ConvertHTML converts an HTML string to PDF using a temporary [Converter].
func ConvertHTML(ctx context.Context, html string, opts ...Option) (*Result, error) {
	conv, err := NewConverter(opts...)
	if err != nil {
		return nil, err
	}
	defer conv.Close()
	return conv.ConvertHTML(ctx, html)
}

// ConvertBase64 converts base64-encoded HTML to PDF using a temporary
// [Converter].
func ConvertBase64(ctx context.Context, encoded string, opts ...Option) (*Result, error) {
	conv, err := NewConverter(opts...)
	if err != nil {
		return nil, err
	}
	defer conv.Close()
	return conv.ConvertBase64(ctx, encoded)
}

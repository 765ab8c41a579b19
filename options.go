package htmlpdf

import "time"

// converterConfig holds internal configuration for a Converter.
type converterConfig struct {
	chromePath    string
	fetchTimeout  time.Duration
	renderTimeout time.Duration
	settleDelay   time.Duration
	poolSize      int
	noSandbox     bool
	autoDownload  bool
	headless      string
}

func defaultConfig() converterConfig {
	return converterConfig{
		fetchTimeout:  30 * time.Second,
		renderTimeout: 30 * time.Second,
		settleDelay:   2 * time.Second,
		poolSize:      4,
		headless:      "new",
	}
}

// Option configures a [Converter].
type Option func(*converterConfig)

// WithChromePath sets the path to the Chrome or Chromium executable.
// By default the library searches standard locations automatically.
func WithChromePath(path string) Option {
	return func(c *converterConfig) {
		c.chromePath = path
	}
}

// WithTimeout sets the maximum duration for fetching a URL, including
// navigation and the script-settling wait. Defaults to 30 seconds.
// A zero or negative value disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *converterConfig) {
		c.fetchTimeout = d
	}
}

// WithRenderTimeout sets the maximum duration for laying out and printing
// a document, independent of the fetch timeout. Defaults to 30 seconds.
// A zero or negative value disables the timeout.
func WithRenderTimeout(d time.Duration) Option {
	return func(c *converterConfig) {
		c.renderTimeout = d
	}
}

// WithSettleDelay sets how long the fetcher waits after the DOM is ready
// for client-side scripts to finish rendering. Defaults to 2 seconds.
func WithSettleDelay(d time.Duration) Option {
	return func(c *converterConfig) {
		if d >= 0 {
			c.settleDelay = d
		}
	}
}

// WithPoolSize caps how many browser tabs may be in flight at once.
// Additional conversions block until a tab frees up. Defaults to 4.
func WithPoolSize(n int) Option {
	return func(c *converterConfig) {
		if n > 0 {
			c.poolSize = n
		}
	}
}

// WithNoSandbox disables the Chrome sandbox. This is required when
// running as root, for example inside Docker containers.
func WithNoSandbox() Option {
	return func(c *converterConfig) {
		c.noSandbox = true
	}
}

// WithAutoDownload downloads a compatible Chromium binary when none is
// found in standard locations. The binary is cached between runs.
func WithAutoDownload() Option {
	return func(c *converterConfig) {
		c.autoDownload = true
	}
}

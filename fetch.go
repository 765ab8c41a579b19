package htmlpdf

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// FetchedDocument is the script-executed DOM snapshot of a URL, together
// with the final location after redirects and the HTTP status observed on
// the last navigation response. It is consumed once by extraction and
// then discarded.
type FetchedDocument struct {
	HTML     string
	FinalURL string
	Status   int
}

// fetcher retrieves a URL's fully rendered DOM through a pooled browser
// tab. Target pages may build their content region with client-side
// script, so the initial HTML response is never enough: the fetcher waits
// for the DOM to become ready and then a fixed settle delay before taking
// the snapshot.
type fetcher struct {
	pool        *browserPool
	timeout     time.Duration
	settleDelay time.Duration
}

// fetch navigates to rawURL and returns the rendered document, or a
// *FetchError classifying the failure. The tab is released on every exit
// path.
func (f *fetcher) fetch(ctx context.Context, rawURL string) (*FetchedDocument, error) {
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, &FetchError{URL: rawURL, Reason: FetchUnreachable, Err: err}
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	tabCtx, release, err := f.pool.acquire(ctx)
	if err != nil {
		if err == ErrClosed {
			return nil, err
		}
		return nil, classifyFetchErr(rawURL, err)
	}
	defer release()

	resp, err := chromedp.RunResponse(tabCtx, chromedp.Navigate(rawURL))
	if err != nil {
		return nil, classifyFetchErr(rawURL, err)
	}

	status := 0
	if resp != nil {
		status = int(resp.Status)
	}
	if status < 200 || status > 299 {
		return nil, &FetchError{URL: rawURL, Reason: FetchHTTPStatus, Status: status}
	}

	var html, finalURL string
	if err := chromedp.Run(tabCtx,
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(f.settleDelay),
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return nil, classifyFetchErr(rawURL, err)
	}

	return &FetchedDocument{HTML: html, FinalURL: finalURL, Status: status}, nil
}

// classifyFetchErr maps a navigation failure onto the fetch taxonomy.
// Chrome reports DNS and connection failures as net:: error strings
// (ERR_NAME_NOT_RESOLVED, ERR_CONNECTION_REFUSED, ...); anything that is
// not a deadline counts as unreachable.
func classifyFetchErr(rawURL string, err error) *FetchError {
	if errors.Is(err, context.DeadlineExceeded) ||
		strings.Contains(err.Error(), "net::ERR_TIMED_OUT") {
		return &FetchError{URL: rawURL, Reason: FetchTimeout, Err: err}
	}
	return &FetchError{URL: rawURL, Reason: FetchUnreachable, Err: err}
}

package htmlpdf

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the library.
var (
	// ErrClosed is returned when attempting to use a closed [Converter].
	ErrClosed = errors.New("htmlpdf: converter is closed")
)

// FetchReason classifies why a page fetch failed.
type FetchReason string

const (
	// FetchUnreachable covers DNS resolution and connection failures.
	FetchUnreachable FetchReason = "unreachable"
	// FetchHTTPStatus means the final response status was not 2xx.
	FetchHTTPStatus FetchReason = "http_status"
	// FetchTimeout means the page did not load within the fetch timeout.
	FetchTimeout FetchReason = "timeout"
)

// FetchError reports a failure to retrieve a URL's rendered DOM.
type FetchError struct {
	URL    string
	Reason FetchReason
	Status int // HTTP status, set when Reason is FetchHTTPStatus
	Err    error
}

func (e *FetchError) Error() string {
	switch e.Reason {
	case FetchHTTPStatus:
		return fmt.Sprintf("htmlpdf: fetching %s: HTTP status %d", e.URL, e.Status)
	case FetchTimeout:
		return fmt.Sprintf("htmlpdf: fetching %s: timed out", e.URL)
	default:
		return fmt.Sprintf("htmlpdf: fetching %s: unreachable: %v", e.URL, e.Err)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// ExtractionError reports that a document has no usable content region.
// It is terminal: the source document does not conform to the expected
// structure, so retrying cannot succeed.
type ExtractionError struct {
	Selector string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("htmlpdf: no content region matching %q", e.Selector)
}

// DecodeError reports that a base64-encoded submission could not be decoded.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("htmlpdf: invalid base64 input: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// RenderError reports a failure inside the rendering engine. Callers never
// receive a partial PDF alongside a RenderError.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("htmlpdf: rendering failed: %v", e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

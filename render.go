package htmlpdf

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/porticus-lab/htmlpdf-server/internal/pdfinspect"
)

// A4 portrait at 96 DPI. Content is laid out at the pixel width and the
// print scale is chosen so the measured height fits the printable height.
const (
	a4WidthIn  = 8.27
	a4HeightIn = 11.69
	a4WidthPx  = 794
	a4HeightPx = 1122

	// Chrome rejects print scales outside this range.
	minPrintScale = 0.1
	maxPrintScale = 2.0
)

// fitStyle pins the layout to a single sheet: zero page margins, page
// breaks suppressed everywhere, and the body forced to A4 width so the
// height measurement reflects the final print layout.
const fitStyle = `
@page { margin: 0 !important; padding: 0 !important; size: auto; }
* {
  page-break-inside: avoid !important;
  page-break-after: avoid !important;
  page-break-before: avoid !important;
  break-inside: avoid !important;
  break-after: avoid !important;
  break-before: avoid !important;
  orphans: 999 !important;
  widows: 999 !important;
}
html, body {
  margin: 0 !important;
  padding: 0 !important;
  box-sizing: border-box;
  overflow: visible !important;
  height: auto !important;
  width: 794px !important;
  max-width: 794px !important;
}
`

// contentHeightJS measures the laid-out content height in CSS pixels.
const contentHeightJS = `Math.ceil(Math.max(
  document.body.scrollHeight,
  document.body.offsetHeight,
  document.documentElement.clientHeight,
  document.documentElement.scrollHeight,
  document.documentElement.offsetHeight
))`

// renderer prints an extracted fragment to a single A4 page through a
// pooled browser tab.
type renderer struct {
	pool    *browserPool
	timeout time.Duration
}

// render lays the fragment out at A4 width, shrinks it to fit one page,
// and returns the finished artifact. Every failure, including a
// structurally invalid artifact, surfaces as a *RenderError with no
// partial output.
func (r *renderer) render(ctx context.Context, frag *Fragment) (*Result, error) {
	shell := buildShell(frag)

	f, err := os.CreateTemp("", "htmlpdf-*.html")
	if err != nil {
		return nil, &RenderError{Err: fmt.Errorf("creating temp file: %w", err)}
	}
	name := f.Name()
	defer os.Remove(name)

	if _, err := f.WriteString(shell); err != nil {
		f.Close()
		return nil, &RenderError{Err: fmt.Errorf("writing temp file: %w", err)}
	}
	if err := f.Close(); err != nil {
		return nil, &RenderError{Err: fmt.Errorf("closing temp file: %w", err)}
	}

	abs, err := filepath.Abs(name)
	if err != nil {
		return nil, &RenderError{Err: fmt.Errorf("resolving path: %w", err)}
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	tabCtx, release, err := r.pool.acquire(ctx)
	if err != nil {
		if err == ErrClosed {
			return nil, err
		}
		return nil, &RenderError{Err: err}
	}
	defer release()

	var contentHeight float64
	var buf []byte
	if err := chromedp.Run(tabCtx,
		chromedp.Navigate("file://"+abs),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(contentHeightJS, &contentHeight),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, _, err = page.PrintToPDF().
				WithPaperWidth(a4WidthIn).
				WithPaperHeight(a4HeightIn).
				WithMarginTop(0).
				WithMarginRight(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithScale(fitScale(contentHeight)).
				WithPrintBackground(true).
				WithPreferCSSPageSize(false).
				WithPageRanges("1").
				Do(ctx)
			return err
		}),
	); err != nil {
		return nil, &RenderError{Err: err}
	}

	if err := validateArtifact(buf); err != nil {
		return nil, &RenderError{Err: err}
	}
	return &Result{data: buf}, nil
}

// fitScale returns the print scale that fits contentHeight CSS pixels
// onto one A4 sheet. Content shorter than a page prints at natural size;
// taller content shrinks, down to Chrome's minimum scale. Beyond that the
// page boundary truncates rather than overflowing to a second sheet.
func fitScale(contentHeight float64) float64 {
	if contentHeight <= a4HeightPx {
		return 1.0
	}
	s := a4HeightPx / contentHeight
	return math.Max(minPrintScale, math.Min(maxPrintScale, s))
}

// buildShell wraps a fragment in a minimal printable document: collected
// author styles first, fit styles last so the page-fit rules win.
func buildShell(frag *Fragment) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"UTF-8\">\n")
	for _, css := range frag.Styles {
		b.WriteString("<style>")
		b.WriteString(css)
		b.WriteString("</style>\n")
	}
	b.WriteString("<style>")
	b.WriteString(fitStyle)
	b.WriteString("</style>\n</head>\n<body>\n")
	b.WriteString(frag.Markup)
	b.WriteString("\n</body>\n</html>\n")
	return b.String()
}

// validateArtifact rejects anything that is not a complete, single-page
// PDF. Callers must receive either a valid artifact or none at all.
func validateArtifact(data []byte) error {
	doc, err := pdfinspect.Load(data)
	if err != nil {
		return fmt.Errorf("engine produced invalid PDF: %w", err)
	}
	n, err := doc.PageCount()
	if err != nil {
		return fmt.Errorf("engine produced invalid PDF: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("engine produced %d pages, want 1", n)
	}
	return nil
}

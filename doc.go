// Package htmlpdf implements the conversion pipeline behind the htmlpdfd
// service: it turns a web page (by URL) or raw HTML into a single-page
// A4 PDF using headless Chrome (Chrome DevTools Protocol).
//
// # Pipeline
//
// Three entry points converge on a shared renderer:
//
//	URL    → fetch (headless browser) → extract content region → render
//	HTML   →                            extract content region → render
//	base64 → decode                   → extract content region → render
//
// The content region is the first element in document order whose class
// attribute contains the token "content". Its inner markup, together with
// any same-document <style> rules, is laid out at A4 width and scaled to
// fit a single page.
//
// # Usage
//
// For repeated conversions create a [Converter], which owns a headless
// browser process reused across requests:
//
//	c, err := htmlpdf.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	res, err := c.ConvertURL(ctx, "https://example.com/report")
//	res, err  = c.ConvertHTML(ctx, `<div class="content"><h1>Hi</h1></div>`)
//	res, err  = c.ConvertBase64(ctx, encoded)
//
// One-off conversions can use the package-level helpers of the same names,
// which start and stop a temporary browser.
//
// A [Result] gives flexible access to the generated PDF bytes:
//
//	res.Bytes()    // []byte
//	res.Len()      // size in bytes
//	res.Base64()   // base64 string (RFC 4648)
//	res.Reader()   // *bytes.Reader
//	res.WriteTo(w) // io.WriterTo
//
// # Errors
//
// Each pipeline stage fails with its own error type so callers can map
// failures precisely: [FetchError] (unreachable, http_status, timeout),
// [ExtractionError] (content region not found), [DecodeError] (invalid
// base64), and [RenderError] (engine failure). Conversion is fail-fast:
// the first stage error short-circuits the rest.
//
// Chrome or Chromium must be available in PATH, or use [WithAutoDownload].
package htmlpdf

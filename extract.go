package htmlpdf

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// contentSelector is the selector contract for the content region: the
// first element in document order whose class attribute contains the
// literal token "content". There is no fallback heuristic — documents
// that do not carry such an element are rejected.
const contentSelector = ".content"

// Fragment is the isolated markup handed to the renderer: the inner HTML
// of the matched content element plus the text of every same-document
// <style> element. External stylesheet references are not rewritten; the
// rendering engine resolves those natively.
type Fragment struct {
	Markup string
	Styles []string
}

// extract locates the content region inside an HTML document. It returns
// a *ExtractionError when no element matches the selector contract or
// when the matched element has no markup to render.
func extract(html string) (*Fragment, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		// net/html is lenient; a reader error here means the input is
		// unusable as a document at all.
		return nil, &ExtractionError{Selector: contentSelector}
	}

	sel := doc.Find(contentSelector).First()
	if sel.Length() == 0 {
		return nil, &ExtractionError{Selector: contentSelector}
	}

	markup, err := sel.Html()
	if err != nil || strings.TrimSpace(markup) == "" {
		return nil, &ExtractionError{Selector: contentSelector}
	}

	var styles []string
	doc.Find("style").Each(func(_ int, s *goquery.Selection) {
		if css := s.Text(); strings.TrimSpace(css) != "" {
			styles = append(styles, css)
		}
	})

	return &Fragment{Markup: markup, Styles: styles}, nil
}

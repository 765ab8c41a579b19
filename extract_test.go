package htmlpdf

import (
	"errors"
	"strings"
	"testing"
)

func TestExtract_Basic(t *testing.T) {
	frag, err := extract(`<html><body><div class="content"><h1>Hi</h1></div></body></html>`)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got := strings.TrimSpace(frag.Markup); got != "<h1>Hi</h1>" {
		t.Errorf("markup = %q, want <h1>Hi</h1>", got)
	}
}

func TestExtract_FirstInDocumentOrder(t *testing.T) {
	html := `<html><body>
		<section><div class="content"><p>first</p></div></section>
		<div class="content"><p>second</p></div>
	</body></html>`
	frag, err := extract(html)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(frag.Markup, "first") {
		t.Errorf("markup = %q, want the first matching element", frag.Markup)
	}
	if strings.Contains(frag.Markup, "second") {
		t.Errorf("markup = %q, second match must lose the tie-break", frag.Markup)
	}
}

func TestExtract_ClassTokenMatching(t *testing.T) {
	tests := []struct {
		name  string
		html  string
		match bool
	}{
		{"single class", `<div class="content">x</div>`, true},
		{"among other classes", `<div class="card content wide">x</div>`, true},
		{"any element kind", `<article class="content">x</article>`, true},
		{"substring is not a token", `<div class="contents">x</div>`, false},
		{"prefixed token", `<div class="main-content">x</div>`, false},
		{"no class", `<div>x</div>`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := extract("<html><body>" + tt.html + "</body></html>")
			if tt.match && err != nil {
				t.Errorf("extract: %v, want match", err)
			}
			if !tt.match && err == nil {
				t.Error("extract matched, want ExtractionError")
			}
		})
	}
}

func TestExtract_NotFound(t *testing.T) {
	_, err := extract(`<html><body><div class="main"><h1>Hi</h1></div></body></html>`)
	var extractErr *ExtractionError
	if !errors.As(err, &extractErr) {
		t.Fatalf("err = %v, want *ExtractionError", err)
	}
	if extractErr.Selector != ".content" {
		t.Errorf("selector = %q, want .content", extractErr.Selector)
	}
}

func TestExtract_BlankElement(t *testing.T) {
	_, err := extract(`<html><body><div class="content">   </div></body></html>`)
	var extractErr *ExtractionError
	if !errors.As(err, &extractErr) {
		t.Fatalf("err = %v, want *ExtractionError for blank content element", err)
	}
}

func TestExtract_CollectsStyles(t *testing.T) {
	html := `<html><head>
		<style>h1 { color: red; }</style>
	</head><body>
		<style>.content { padding: 1em; }</style>
		<div class="content"><h1>Hi</h1></div>
	</body></html>`
	frag, err := extract(html)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(frag.Styles) != 2 {
		t.Fatalf("got %d style blocks, want 2", len(frag.Styles))
	}
	if !strings.Contains(frag.Styles[0], "color: red") {
		t.Errorf("styles[0] = %q, want the head rule", frag.Styles[0])
	}
}

func TestExtract_PreservesInnerMarkup(t *testing.T) {
	html := `<div class="content"><p>a <b>b</b></p><img src="x.png"></div>`
	frag, err := extract(html)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	for _, want := range []string{"<p>", "<b>b</b>", "img", "x.png"} {
		if !strings.Contains(frag.Markup, want) {
			t.Errorf("markup %q missing %q", frag.Markup, want)
		}
	}
}

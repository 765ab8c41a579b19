package htmlpdf

import (
	"encoding/base64"
	"errors"
	"testing"
)

func TestDecodeBase64HTML(t *testing.T) {
	const html = `<div class="content"><h1>Hola</h1></div>`
	got, err := decodeBase64HTML(base64.StdEncoding.EncodeToString([]byte(html)))
	if err != nil {
		t.Fatalf("decodeBase64HTML: %v", err)
	}
	if got != html {
		t.Errorf("decoded = %q, want %q", got, html)
	}
}

func TestDecodeBase64HTML_Invalid(t *testing.T) {
	for _, in := range []string{"not-base64!!", "%%%", "abc"} {
		_, err := decodeBase64HTML(in)
		var decodeErr *DecodeError
		if !errors.As(err, &decodeErr) {
			t.Errorf("decodeBase64HTML(%q) err = %v, want *DecodeError", in, err)
		}
	}
}

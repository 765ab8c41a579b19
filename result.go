package htmlpdf

import (
	"bytes"
	"encoding/base64"
	"io"
)

// Result holds a finished PDF artifact. It is produced once per
// conversion, streamed to the caller, and never modified afterwards, so
// its accessors are safe to call any number of times.
type Result struct {
	data []byte
}

// NewResult wraps raw PDF bytes in a Result. Conversions build their own
// Results; this exists for callers re-serving stored artifacts and for
// tests that stub the pipeline.
func NewResult(data []byte) *Result {
	return &Result{data: data}
}

// Bytes returns the raw PDF content.
func (r *Result) Bytes() []byte {
	return r.data
}

// Len returns the size of the PDF in bytes.
func (r *Result) Len() int {
	return len(r.data)
}

// Base64 returns the PDF encoded as a standard base64 string (RFC 4648),
// for embedding in JSON payloads.
func (r *Result) Base64() string {
	return base64.StdEncoding.EncodeToString(r.data)
}

// Reader returns an [*bytes.Reader] over the PDF content, suitable for
// streaming responses or uploads.
func (r *Result) Reader() *bytes.Reader {
	return bytes.NewReader(r.data)
}

// WriteTo writes the full PDF content to w. It implements [io.WriterTo].
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.data)
	return int64(n), err
}

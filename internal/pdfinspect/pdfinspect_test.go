package pdfinspect

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"testing"
)

// pdfBuilder assembles a well-formed PDF body while tracking the byte
// offset of each indirect object, so tests can emit correct xref data.
type pdfBuilder struct {
	buf     bytes.Buffer
	offsets map[int]int
}

func newPDFBuilder() *pdfBuilder {
	b := &pdfBuilder{offsets: make(map[int]int)}
	b.buf.WriteString("%PDF-1.4\n")
	return b
}

func (b *pdfBuilder) addObject(num int, body string) {
	b.offsets[num] = b.buf.Len()
	fmt.Fprintf(&b.buf, "%d 0 obj\n%s\nendobj\n", num, body)
}

// finishClassic writes a classic xref table, trailer, and EOF.
func (b *pdfBuilder) finishClassic(size int, rootNum int) []byte {
	xrefOff := b.buf.Len()
	fmt.Fprintf(&b.buf, "xref\n0 %d\n", size)
	b.buf.WriteString("0000000000 65535 f \n")
	for i := 1; i < size; i++ {
		fmt.Fprintf(&b.buf, "%010d 00000 n \n", b.offsets[i])
	}
	fmt.Fprintf(&b.buf, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		size, rootNum, xrefOff)
	return b.buf.Bytes()
}

// classicPDF builds a valid single-generation PDF with n pages.
func classicPDF(n int) []byte {
	b := newPDFBuilder()
	kids := ""
	for i := 0; i < n; i++ {
		kids += fmt.Sprintf("%d 0 R ", 3+i)
	}
	b.addObject(1, "<< /Type /Catalog /Pages 2 0 R >>")
	b.addObject(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, n))
	for i := 0; i < n; i++ {
		b.addObject(3+i, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] >>")
	}
	return b.finishClassic(3+n, 1)
}

func TestLoad_RejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"no header", []byte("hello world, definitely not a pdf, padding padding")},
		{"header only", []byte("%PDF-1.7\n")},
		{"truncated before trailer", classicPDF(1)[:60]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(tt.data); err == nil {
				t.Error("Load accepted invalid data")
			}
		})
	}
}

func TestLoad_ClassicXref(t *testing.T) {
	doc, err := Load(classicPDF(1))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if v := doc.Version(); v != "1.4" {
		t.Errorf("Version() = %q, want 1.4", v)
	}
	n, err := doc.PageCount()
	if err != nil {
		t.Fatalf("PageCount: %v", err)
	}
	if n != 1 {
		t.Errorf("PageCount = %d, want 1", n)
	}
}

func TestPageCount_MultiPage(t *testing.T) {
	for _, want := range []int{1, 2, 5} {
		doc, err := Load(classicPDF(want))
		if err != nil {
			t.Fatalf("Load(%d pages): %v", want, err)
		}
		got, err := doc.PageCount()
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("PageCount = %d, want %d", got, want)
		}
	}
}

func TestPageCount_WalksTreeWithoutCount(t *testing.T) {
	b := newPDFBuilder()
	b.addObject(1, "<< /Type /Catalog /Pages 2 0 R >>")
	// Intermediate node and no /Count anywhere.
	b.addObject(2, "<< /Type /Pages /Kids [3 0 R 4 0 R] >>")
	b.addObject(3, "<< /Type /Pages /Kids [5 0 R] >>")
	b.addObject(4, "<< /Type /Page /Parent 2 0 R >>")
	b.addObject(5, "<< /Type /Page /Parent 3 0 R >>")
	doc, err := Load(b.finishClassic(6, 1))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	n, err := doc.PageCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("PageCount = %d, want 2", n)
	}
}

// xrefStreamPDF builds a PDF 1.5-style file whose xref is a flate-encoded
// cross-reference stream and whose Pages node lives in an object stream.
func xrefStreamPDF(t *testing.T) []byte {
	t.Helper()
	b := newPDFBuilder()
	b.addObject(1, "<< /Type /Catalog /Pages 2 0 R >>")
	b.addObject(3, "<< /Type /Page /Parent 2 0 R >>")

	// Object stream holding object 2.
	inner := "<< /Type /Pages /Kids [3 0 R] /Count 1 >>"
	payload := "2 0\n" + inner
	first := len("2 0\n")
	b.offsets[4] = b.buf.Len()
	fmt.Fprintf(&b.buf, "4 0 obj\n<< /Type /ObjStm /N 1 /First %d /Length %d >>\nstream\n%s\nendstream\nendobj\n",
		first, len(payload), payload)

	// Xref stream: W [1 4 2], entries for objects 0-5.
	xrefOff := b.buf.Len()
	var entries bytes.Buffer
	writeEntry := func(typ byte, f2 int, f3 int) {
		entries.WriteByte(typ)
		entries.Write([]byte{byte(f2 >> 24), byte(f2 >> 16), byte(f2 >> 8), byte(f2)})
		entries.Write([]byte{byte(f3 >> 8), byte(f3)})
	}
	writeEntry(0, 0, 65535)          // 0: free
	writeEntry(1, b.offsets[1], 0)   // 1: catalog
	writeEntry(2, 4, 0)              // 2: in object stream 4, index 0
	writeEntry(1, b.offsets[3], 0)   // 3: page
	writeEntry(1, b.offsets[4], 0)   // 4: object stream
	writeEntry(1, xrefOff, 0)        // 5: this xref stream

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(entries.Bytes()); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	fmt.Fprintf(&b.buf,
		"5 0 obj\n<< /Type /XRef /Size 6 /W [1 4 2] /Root 1 0 R /Filter /FlateDecode /Length %d >>\nstream\n",
		compressed.Len())
	b.buf.Write(compressed.Bytes())
	fmt.Fprintf(&b.buf, "\nendstream\nendobj\nstartxref\n%d\n%%%%EOF\n", xrefOff)
	return b.buf.Bytes()
}

func TestLoad_XrefStreamAndObjectStream(t *testing.T) {
	doc, err := Load(xrefStreamPDF(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	n, err := doc.PageCount()
	if err != nil {
		t.Fatalf("PageCount: %v", err)
	}
	if n != 1 {
		t.Errorf("PageCount = %d, want 1", n)
	}
}

func TestUnpredictPNG_UpFilter(t *testing.T) {
	// Two rows of three columns, both using the Up predictor.
	data := []byte{
		2, 1, 2, 3,
		2, 1, 1, 1,
	}
	out, err := unpredictPNG(data, 3)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{1, 2, 3, 2, 3, 4}
	if !bytes.Equal(out, want) {
		t.Errorf("unpredictPNG = %v, want %v", out, want)
	}
}

func TestUnpredictPNG_BadShape(t *testing.T) {
	if _, err := unpredictPNG([]byte{2, 1, 2}, 3); err == nil {
		t.Error("accepted data that is not a whole number of rows")
	}
}

// Package pdfinspect is a minimal pure-Go PDF structural reader. The
// renderer uses it to reject truncated or multi-page artifacts before
// they reach a caller: it validates the header and trailer, loads the
// cross-reference data (classic tables and PDF 1.5+ xref streams), and
// walks the page tree to count pages.
//
// It deliberately reads only document structure. Content streams, fonts,
// and text are out of scope.
package pdfinspect

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// maxDecompressedSize caps stream inflation (16 MB). Structural streams
// (xref and object streams) are tiny; anything larger is hostile input.
const maxDecompressedSize = 16 * 1024 * 1024

// Name is a PDF name object (/Type, /Pages, ...).
type Name string

// Ref is an indirect object reference (N G R).
type Ref struct {
	Num int
	Gen int
}

// Dict is a PDF dictionary. Values are one of: nil, bool, int64, float64,
// []byte (string), Name, []any (array), Dict, Ref, or *Stream.
type Dict map[Name]any

// Stream is a stream object: its dictionary plus the raw (still encoded)
// stream bytes.
type Stream struct {
	Dict Dict
	Raw  []byte
}

type xrefEntry struct {
	offset    int64
	inStream  bool // stored inside an object stream (PDF 1.5+)
	streamNum int
	streamIdx int
}

// Document is a loaded PDF.
type Document struct {
	data    []byte
	xref    map[int]xrefEntry
	trailer Dict
	cache   map[int]any
}

// Load parses the structure of a PDF from raw bytes.
func Load(data []byte) (*Document, error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, errors.New("pdfinspect: missing %PDF- header")
	}
	tail := data
	if len(tail) > 1024 {
		tail = tail[len(tail)-1024:]
	}
	if !bytes.Contains(tail, []byte("%%EOF")) {
		return nil, errors.New("pdfinspect: missing %%EOF marker, file truncated")
	}

	doc := &Document{
		data:  data,
		xref:  make(map[int]xrefEntry),
		cache: make(map[int]any),
	}
	offset, err := doc.findStartXRef()
	if err != nil {
		return nil, err
	}
	if err := doc.loadXRefAt(offset, 0); err != nil {
		return nil, err
	}
	if doc.trailer == nil {
		return nil, errors.New("pdfinspect: no trailer dictionary")
	}
	if _, ok := doc.trailer["Root"]; !ok {
		return nil, errors.New("pdfinspect: trailer has no /Root")
	}
	return doc, nil
}

// Version returns the header version string, e.g. "1.7".
func (doc *Document) Version() string {
	end := bytes.IndexAny(doc.data[5:min(len(doc.data), 20)], "\r\n ")
	if end < 0 {
		return "?"
	}
	return string(doc.data[5 : 5+end])
}

// PageCount returns the number of pages in the document. It prefers the
// /Count entry of the root Pages node and falls back to walking the page
// tree when /Count is absent.
func (doc *Document) PageCount() (int, error) {
	root, err := doc.resolveDict(doc.trailer["Root"])
	if err != nil {
		return 0, fmt.Errorf("pdfinspect: resolving catalog: %w", err)
	}
	pages, err := doc.resolveDict(root["Pages"])
	if err != nil {
		return 0, fmt.Errorf("pdfinspect: resolving page tree: %w", err)
	}
	if n, ok := asInt(pages["Count"]); ok {
		return int(n), nil
	}
	count := 0
	doc.countLeaves(pages, &count, 0)
	return count, nil
}

func (doc *Document) countLeaves(node Dict, count *int, depth int) {
	if depth > 32 {
		return
	}
	if t, _ := node["Type"].(Name); t == "Page" {
		*count++
		return
	}
	kids, err := doc.resolve(node["Kids"])
	if err != nil {
		return
	}
	arr, _ := kids.([]any)
	for _, k := range arr {
		kid, err := doc.resolveDict(k)
		if err != nil {
			continue
		}
		doc.countLeaves(kid, count, depth+1)
	}
}

// findStartXRef scans backward for the startxref keyword and its offset.
func (doc *Document) findStartXRef() (int64, error) {
	from := max(0, len(doc.data)-1024)
	idx := bytes.LastIndex(doc.data[from:], []byte("startxref"))
	if idx < 0 {
		return 0, errors.New("pdfinspect: startxref not found")
	}
	p := newParser(doc.data, from+idx+len("startxref"))
	p.skipSpace()
	tok := p.readToken()
	offset, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("pdfinspect: bad startxref value %q", tok)
	}
	return offset, nil
}

// loadXRefAt loads one xref section (table or stream) and follows /Prev.
func (doc *Document) loadXRefAt(offset int64, depth int) error {
	if depth > 32 {
		return errors.New("pdfinspect: xref chain too deep")
	}
	if offset < 0 || offset >= int64(len(doc.data)) {
		return fmt.Errorf("pdfinspect: xref offset %d out of bounds", offset)
	}
	p := newParser(doc.data, int(offset))
	p.skipSpace()
	if p.match("xref") {
		return doc.loadXRefTable(p, depth)
	}
	return doc.loadXRefStream(p, depth)
}

// loadXRefTable parses a classic xref table and its trailer dict.
func (doc *Document) loadXRefTable(p *parser, depth int) error {
	for {
		p.skipSpace()
		if p.match("trailer") {
			break
		}
		first, err1 := strconv.Atoi(p.readToken())
		p.skipSpace()
		count, err2 := strconv.Atoi(p.readToken())
		if err1 != nil || err2 != nil {
			return errors.New("pdfinspect: malformed xref subsection header")
		}
		p.skipSpace()
		for i := 0; i < count; i++ {
			// Entries are fixed 20-byte records: offset, generation, n/f.
			if p.pos+20 > len(p.data) {
				return errors.New("pdfinspect: xref table truncated")
			}
			rec := p.data[p.pos : p.pos+20]
			p.pos += 20
			off, err := strconv.ParseInt(string(bytes.TrimSpace(rec[:10])), 10, 64)
			if err != nil {
				return errors.New("pdfinspect: malformed xref entry")
			}
			if rec[17] != 'n' {
				continue
			}
			id := first + i
			if _, seen := doc.xref[id]; !seen {
				doc.xref[id] = xrefEntry{offset: off}
			}
		}
	}

	p.skipSpace()
	trailer, err := p.parseValue()
	if err != nil {
		return fmt.Errorf("pdfinspect: parsing trailer: %w", err)
	}
	td, ok := trailer.(Dict)
	if !ok {
		return errors.New("pdfinspect: trailer is not a dictionary")
	}
	if doc.trailer == nil {
		doc.trailer = td
	}
	if prev, ok := asInt(td["Prev"]); ok && prev > 0 {
		return doc.loadXRefAt(prev, depth+1)
	}
	return nil
}

// loadXRefStream parses a PDF 1.5+ cross-reference stream.
func (doc *Document) loadXRefStream(p *parser, depth int) error {
	obj, err := doc.parseIndirect(p)
	if err != nil {
		return fmt.Errorf("pdfinspect: parsing xref stream: %w", err)
	}
	strm, ok := obj.(*Stream)
	if !ok {
		return errors.New("pdfinspect: xref section is neither table nor stream")
	}
	if doc.trailer == nil {
		doc.trailer = strm.Dict
	}

	decoded, err := decodeStream(strm)
	if err != nil {
		return fmt.Errorf("pdfinspect: decoding xref stream: %w", err)
	}

	widths, ok := strm.Dict["W"].([]any)
	if !ok || len(widths) < 3 {
		return errors.New("pdfinspect: xref stream missing /W")
	}
	w := make([]int, 3)
	for i := range w {
		n, ok := asInt(widths[i])
		if !ok {
			return errors.New("pdfinspect: non-integer /W entry")
		}
		w[i] = int(n)
	}
	entrySize := w[0] + w[1] + w[2]
	if entrySize == 0 {
		return errors.New("pdfinspect: zero-width xref stream entries")
	}

	size, _ := asInt(strm.Dict["Size"])
	var subsections [][2]int
	if idx, ok := strm.Dict["Index"].([]any); ok {
		for i := 0; i+1 < len(idx); i += 2 {
			first, _ := asInt(idx[i])
			count, _ := asInt(idx[i+1])
			subsections = append(subsections, [2]int{int(first), int(count)})
		}
	} else {
		subsections = [][2]int{{0, int(size)}}
	}

	pos := 0
	for _, sub := range subsections {
		for i := 0; i < sub[1]; i++ {
			if pos+entrySize > len(decoded) {
				return errors.New("pdfinspect: xref stream data truncated")
			}
			typ := readBE(decoded[pos:], w[0])
			if w[0] == 0 {
				typ = 1 // a missing type field defaults to an in-use entry
			}
			f2 := readBE(decoded[pos+w[0]:], w[1])
			f3 := readBE(decoded[pos+w[0]+w[1]:], w[2])
			pos += entrySize

			id := sub[0] + i
			if _, seen := doc.xref[id]; seen {
				continue
			}
			switch typ {
			case 1:
				doc.xref[id] = xrefEntry{offset: int64(f2)}
			case 2:
				doc.xref[id] = xrefEntry{inStream: true, streamNum: f2, streamIdx: f3}
			}
		}
	}

	if prev, ok := asInt(strm.Dict["Prev"]); ok && prev > 0 {
		return doc.loadXRefAt(prev, depth+1)
	}
	return nil
}

// resolve follows indirect references until a direct value is reached.
func (doc *Document) resolve(v any) (any, error) {
	for i := 0; i < 32; i++ {
		ref, ok := v.(Ref)
		if !ok {
			return v, nil
		}
		obj, err := doc.object(ref.Num)
		if err != nil {
			return nil, err
		}
		v = obj
	}
	return nil, errors.New("reference chain too deep")
}

func (doc *Document) resolveDict(v any) (Dict, error) {
	r, err := doc.resolve(v)
	if err != nil {
		return nil, err
	}
	switch t := r.(type) {
	case Dict:
		return t, nil
	case *Stream:
		return t.Dict, nil
	}
	return nil, fmt.Errorf("expected dictionary, got %T", r)
}

// object loads indirect object number num, following object streams.
func (doc *Document) object(num int) (any, error) {
	if v, ok := doc.cache[num]; ok {
		return v, nil
	}
	entry, ok := doc.xref[num]
	if !ok {
		return nil, nil
	}

	var v any
	var err error
	if entry.inStream {
		v, err = doc.objectFromStream(entry)
	} else {
		p := newParser(doc.data, int(entry.offset))
		v, err = doc.parseIndirect(p)
	}
	if err != nil {
		return nil, err
	}
	doc.cache[num] = v
	return v, nil
}

// objectFromStream extracts one object from an object stream (PDF 1.5+).
func (doc *Document) objectFromStream(entry xrefEntry) (any, error) {
	container, err := doc.object(entry.streamNum)
	if err != nil {
		return nil, err
	}
	strm, ok := container.(*Stream)
	if !ok {
		return nil, errors.New("object stream container is not a stream")
	}
	decoded, err := decodeStream(strm)
	if err != nil {
		return nil, err
	}

	n, _ := asInt(strm.Dict["N"])
	first, _ := asInt(strm.Dict["First"])

	p := newParser(decoded, 0)
	offset := -1
	for i := 0; i < int(n); i++ {
		p.skipSpace()
		p.readToken() // object number
		p.skipSpace()
		off, err := strconv.Atoi(p.readToken())
		if err != nil {
			return nil, errors.New("malformed object stream index")
		}
		if i == entry.streamIdx {
			offset = off
		}
	}
	if offset < 0 {
		return nil, errors.New("object index not found in object stream")
	}
	p2 := newParser(decoded, int(first)+offset)
	return p2.parseValue()
}

// parseIndirect parses "N G obj <value> endobj", attaching stream bytes
// when the body is followed by a stream keyword. The stream /Length may
// itself be an indirect reference, so it is resolved through doc.
func (doc *Document) parseIndirect(p *parser) (any, error) {
	p.skipSpace()
	p.readToken() // object number
	p.skipSpace()
	p.readToken() // generation
	p.skipSpace()
	if !p.match("obj") {
		return nil, errors.New("expected obj keyword")
	}
	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	d, isDict := v.(Dict)
	p.skipSpace()
	if !isDict || !p.match("stream") {
		return v, nil
	}
	// EOL after the stream keyword: CRLF or LF.
	if p.pos < len(p.data) && p.data[p.pos] == '\r' {
		p.pos++
	}
	if p.pos < len(p.data) && p.data[p.pos] == '\n' {
		p.pos++
	}
	length, err := doc.resolve(d["Length"])
	if err != nil {
		return nil, err
	}
	n, ok := asInt(length)
	if !ok || p.pos+int(n) > len(p.data) {
		return nil, errors.New("invalid stream length")
	}
	raw := p.data[p.pos : p.pos+int(n)]
	return &Stream{Dict: d, Raw: raw}, nil
}

func asInt(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case float64:
		return int64(t), true
	}
	return 0, false
}

// readBE reads n bytes as a big-endian integer.
func readBE(data []byte, n int) int {
	v := 0
	for i := 0; i < n && i < len(data); i++ {
		v = v<<8 | int(data[i])
	}
	return v
}

// decodeStream inflates a stream's raw bytes. Only FlateDecode (with
// optional PNG predictor) and unfiltered streams appear in the
// structural objects this package reads.
func decodeStream(strm *Stream) ([]byte, error) {
	filter := strm.Dict["Filter"]
	switch f := filter.(type) {
	case nil:
		return strm.Raw, nil
	case Name:
		if f != "FlateDecode" && f != "Fl" {
			return nil, fmt.Errorf("unsupported filter %s", f)
		}
	default:
		return nil, fmt.Errorf("unsupported filter chain %v", filter)
	}

	zr, err := zlib.NewReader(bytes.NewReader(strm.Raw))
	if err != nil {
		return nil, fmt.Errorf("zlib: %w", err)
	}
	defer zr.Close()
	out, err := io.ReadAll(io.LimitReader(zr, maxDecompressedSize+1))
	if err != nil {
		return nil, fmt.Errorf("zlib read: %w", err)
	}
	if len(out) > maxDecompressedSize {
		return nil, errors.New("decompressed stream too large")
	}

	parms, _ := strm.Dict["DecodeParms"].(Dict)
	if parms == nil {
		return out, nil
	}
	predictor, _ := asInt(parms["Predictor"])
	if predictor < 10 {
		return out, nil
	}
	columns, ok := asInt(parms["Columns"])
	if !ok || columns <= 0 {
		columns = 1
	}
	return unpredictPNG(out, int(columns))
}

// unpredictPNG reverses PNG row predictors (predictor >= 10) assuming one
// byte per sample, which is what xref streams use.
func unpredictPNG(data []byte, columns int) ([]byte, error) {
	rowSize := columns + 1
	if len(data)%rowSize != 0 {
		return nil, errors.New("predictor data not a whole number of rows")
	}
	out := make([]byte, 0, len(data)/rowSize*columns)
	prev := make([]byte, columns)
	row := make([]byte, columns)
	for i := 0; i < len(data); i += rowSize {
		tag := data[i]
		copy(row, data[i+1:i+rowSize])
		switch tag {
		case 0: // None
		case 1: // Sub
			for j := 1; j < columns; j++ {
				row[j] += row[j-1]
			}
		case 2: // Up
			for j := 0; j < columns; j++ {
				row[j] += prev[j]
			}
		case 3: // Average
			for j := 0; j < columns; j++ {
				left := 0
				if j > 0 {
					left = int(row[j-1])
				}
				row[j] += byte((left + int(prev[j])) / 2)
			}
		case 4: // Paeth
			for j := 0; j < columns; j++ {
				left, upLeft := 0, 0
				if j > 0 {
					left = int(row[j-1])
					upLeft = int(prev[j-1])
				}
				row[j] += paeth(byte(left), prev[j], byte(upLeft))
			}
		default:
			return nil, fmt.Errorf("unknown PNG predictor tag %d", tag)
		}
		out = append(out, row...)
		copy(prev, row)
	}
	return out, nil
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := abs(p-int(a)), abs(p-int(b)), abs(p-int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

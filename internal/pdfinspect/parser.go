package pdfinspect

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

// parser is a cursor over raw PDF bytes with just enough of the object
// grammar to read dictionaries, arrays, and the scalar types that appear
// in document structure.
type parser struct {
	data []byte
	pos  int
}

func newParser(data []byte, pos int) *parser {
	if pos < 0 {
		pos = 0
	}
	return &parser{data: data, pos: pos}
}

func isSpace(b byte) bool {
	switch b {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isDelim(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

// skipSpace advances past whitespace and % comments.
func (p *parser) skipSpace() {
	for p.pos < len(p.data) {
		b := p.data[p.pos]
		if isSpace(b) {
			p.pos++
			continue
		}
		if b == '%' {
			for p.pos < len(p.data) && p.data[p.pos] != '\n' && p.data[p.pos] != '\r' {
				p.pos++
			}
			continue
		}
		return
	}
}

// match consumes the keyword if it appears at the cursor.
func (p *parser) match(kw string) bool {
	if bytes.HasPrefix(p.data[p.pos:], []byte(kw)) {
		p.pos += len(kw)
		return true
	}
	return false
}

// readToken reads a run of regular characters.
func (p *parser) readToken() string {
	start := p.pos
	for p.pos < len(p.data) && !isSpace(p.data[p.pos]) && !isDelim(p.data[p.pos]) {
		p.pos++
	}
	return string(p.data[start:p.pos])
}

// parseValue parses the next object value at the cursor.
func (p *parser) parseValue() (any, error) {
	p.skipSpace()
	if p.pos >= len(p.data) {
		return nil, errors.New("unexpected end of data")
	}

	switch b := p.data[p.pos]; {
	case b == '<' && p.pos+1 < len(p.data) && p.data[p.pos+1] == '<':
		return p.parseDict()
	case b == '<':
		return p.parseHexString()
	case b == '(':
		return p.parseLiteralString()
	case b == '[':
		return p.parseArray()
	case b == '/':
		return p.parseName()
	case b == '+' || b == '-' || b == '.' || (b >= '0' && b <= '9'):
		return p.parseNumberOrRef()
	default:
		tok := p.readToken()
		switch tok {
		case "true":
			return true, nil
		case "false":
			return false, nil
		case "null":
			return nil, nil
		}
		return nil, fmt.Errorf("unexpected token %q", tok)
	}
}

func (p *parser) parseDict() (Dict, error) {
	p.pos += 2 // <<
	d := make(Dict)
	for {
		p.skipSpace()
		if bytes.HasPrefix(p.data[p.pos:], []byte(">>")) {
			p.pos += 2
			return d, nil
		}
		if p.pos >= len(p.data) || p.data[p.pos] != '/' {
			return nil, errors.New("dictionary key is not a name")
		}
		key, err := p.parseName()
		if err != nil {
			return nil, err
		}
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		d[key] = val
	}
}

func (p *parser) parseArray() ([]any, error) {
	p.pos++ // [
	var arr []any
	for {
		p.skipSpace()
		if p.pos >= len(p.data) {
			return nil, errors.New("unterminated array")
		}
		if p.data[p.pos] == ']' {
			p.pos++
			return arr, nil
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}

func (p *parser) parseName() (Name, error) {
	p.pos++ // /
	start := p.pos
	for p.pos < len(p.data) && !isSpace(p.data[p.pos]) && !isDelim(p.data[p.pos]) {
		p.pos++
	}
	raw := p.data[start:p.pos]
	if !bytes.ContainsRune(raw, '#') {
		return Name(raw), nil
	}
	// #xx escapes in names.
	var out []byte
	for i := 0; i < len(raw); i++ {
		if raw[i] == '#' && i+2 < len(raw) {
			if v, err := strconv.ParseUint(string(raw[i+1:i+3]), 16, 8); err == nil {
				out = append(out, byte(v))
				i += 2
				continue
			}
		}
		out = append(out, raw[i])
	}
	return Name(out), nil
}

// parseNumberOrRef disambiguates "42", "4.2", and "4 0 R".
func (p *parser) parseNumberOrRef() (any, error) {
	tok := p.readToken()
	if bytes.ContainsRune([]byte(tok), '.') {
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", tok)
		}
		return f, nil
	}
	n, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad number %q", tok)
	}

	// Lookahead for an indirect reference: <int> <int> R.
	save := p.pos
	p.skipSpace()
	genTok := p.readToken()
	gen, genErr := strconv.Atoi(genTok)
	p.skipSpace()
	if genErr == nil && p.pos < len(p.data) && p.data[p.pos] == 'R' &&
		(p.pos+1 >= len(p.data) || isSpace(p.data[p.pos+1]) || isDelim(p.data[p.pos+1])) {
		p.pos++
		return Ref{Num: int(n), Gen: gen}, nil
	}
	p.pos = save
	return n, nil
}

func (p *parser) parseLiteralString() ([]byte, error) {
	p.pos++ // (
	var out []byte
	depth := 1
	for p.pos < len(p.data) {
		b := p.data[p.pos]
		p.pos++
		switch b {
		case '\\':
			if p.pos < len(p.data) {
				out = append(out, p.data[p.pos])
				p.pos++
			}
		case '(':
			depth++
			out = append(out, b)
		case ')':
			depth--
			if depth == 0 {
				return out, nil
			}
			out = append(out, b)
		default:
			out = append(out, b)
		}
	}
	return nil, errors.New("unterminated string")
}

func (p *parser) parseHexString() ([]byte, error) {
	p.pos++ // <
	var out []byte
	var hi byte
	half := false
	for p.pos < len(p.data) {
		b := p.data[p.pos]
		p.pos++
		if b == '>' {
			if half {
				out = append(out, hi<<4)
			}
			return out, nil
		}
		v, ok := hexVal(b)
		if !ok {
			continue
		}
		if half {
			out = append(out, hi<<4|v)
			half = false
		} else {
			hi = v
			half = true
		}
	}
	return nil, errors.New("unterminated hex string")
}

func hexVal(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}

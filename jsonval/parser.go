package jsonval

import (
	"fmt"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"
)

// ParseError reports a malformed document along with the byte offset at
// which parsing failed.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("json parse error at offset %d: %s", e.Pos, e.Msg)
}

// Parse decodes a single JSON document. Anything other than exactly one
// value surrounded by whitespace is a *ParseError: empty input, malformed
// literals, trailing commas, unterminated composites, and trailing content
// all fail rather than being silently repaired.
func Parse(data []byte) (*Value, error) {
	p := &parser{data: data}
	p.skipSpace()
	if p.pos >= len(p.data) {
		return nil, &ParseError{Pos: p.pos, Msg: "empty input"}
	}
	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.data) {
		return nil, &ParseError{Pos: p.pos, Msg: "trailing content after value"}
	}
	return v, nil
}

type parser struct {
	data []byte
	pos  int
}

func (p *parser) errf(format string, args ...any) error {
	return &ParseError{Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) skipSpace() {
	for p.pos < len(p.data) {
		switch p.data[p.pos] {
		case ' ', '\t', '\r', '\n':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) parseValue() (*Value, error) {
	p.skipSpace()
	if p.pos >= len(p.data) {
		return nil, p.errf("unexpected end of input")
	}
	switch c := p.data[p.pos]; {
	case c == '"':
		s, err := p.parseString()
		if err != nil {
			return nil, err
		}
		return String(s), nil
	case c == '{':
		return p.parseObject()
	case c == '[':
		return p.parseArray()
	case c == '-' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	case c == 't':
		if err := p.expect("true"); err != nil {
			return nil, err
		}
		return Bool(true), nil
	case c == 'f':
		if err := p.expect("false"); err != nil {
			return nil, err
		}
		return Bool(false), nil
	case c == 'n':
		if err := p.expect("null"); err != nil {
			return nil, err
		}
		return Null(), nil
	default:
		return nil, p.errf("unexpected character %q", c)
	}
}

func (p *parser) expect(lit string) error {
	if p.pos+len(lit) > len(p.data) || string(p.data[p.pos:p.pos+len(lit)]) != lit {
		return p.errf("invalid literal, expected %q", lit)
	}
	p.pos += len(lit)
	return nil
}

func (p *parser) parseString() (string, error) {
	// Caller guarantees the opening quote.
	p.pos++
	var b []byte
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		switch {
		case c == '"':
			p.pos++
			return string(b), nil
		case c == '\\':
			p.pos++
			if p.pos >= len(p.data) {
				return "", p.errf("unterminated string")
			}
			esc := p.data[p.pos]
			switch esc {
			case '"':
				b = append(b, '"')
			case '\\':
				b = append(b, '\\')
			case '/':
				b = append(b, '/')
			case 'b':
				b = append(b, '\b')
			case 'f':
				b = append(b, '\f')
			case 'n':
				b = append(b, '\n')
			case 'r':
				b = append(b, '\r')
			case 't':
				b = append(b, '\t')
			case 'u':
				r, err := p.parseUnicodeEscape()
				if err != nil {
					return "", err
				}
				b = utf8.AppendRune(b, r)
			default:
				return "", p.errf("invalid escape sequence \\%c", esc)
			}
			p.pos++
		default:
			b = append(b, c)
			p.pos++
		}
	}
	return "", p.errf("unterminated string")
}

// parseUnicodeEscape decodes the 4 hex digits after \u, combining a
// surrogate pair when one follows. Leaves pos on the last consumed digit.
func (p *parser) parseUnicodeEscape() (rune, error) {
	if p.pos+4 >= len(p.data) {
		return 0, p.errf("invalid unicode escape")
	}
	n, err := strconv.ParseUint(string(p.data[p.pos+1:p.pos+5]), 16, 32)
	if err != nil {
		return 0, p.errf("invalid unicode escape")
	}
	p.pos += 4
	r := rune(n)
	if utf16.IsSurrogate(r) && p.pos+6 < len(p.data) &&
		p.data[p.pos+1] == '\\' && p.data[p.pos+2] == 'u' {
		n2, err := strconv.ParseUint(string(p.data[p.pos+3:p.pos+7]), 16, 32)
		if err == nil {
			if combined := utf16.DecodeRune(r, rune(n2)); combined != utf8.RuneError {
				p.pos += 6
				return combined, nil
			}
		}
	}
	if utf16.IsSurrogate(r) {
		return utf8.RuneError, nil
	}
	return r, nil
}

func (p *parser) parseObject() (*Value, error) {
	p.pos++ // {
	obj := Object()
	p.skipSpace()
	if p.pos < len(p.data) && p.data[p.pos] == '}' {
		p.pos++
		return obj, nil
	}
	for {
		p.skipSpace()
		if p.pos >= len(p.data) || p.data[p.pos] != '"' {
			return nil, p.errf("expected string key in object")
		}
		key, err := p.parseString()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.pos >= len(p.data) || p.data[p.pos] != ':' {
			return nil, p.errf("expected ':' after object key")
		}
		p.pos++
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		obj.Set(key, val)
		p.skipSpace()
		if p.pos >= len(p.data) {
			return nil, p.errf("unterminated object")
		}
		switch p.data[p.pos] {
		case '}':
			p.pos++
			return obj, nil
		case ',':
			p.pos++
		default:
			return nil, p.errf("expected ',' or '}' in object")
		}
	}
}

func (p *parser) parseArray() (*Value, error) {
	p.pos++ // [
	arr := Array()
	p.skipSpace()
	if p.pos < len(p.data) && p.data[p.pos] == ']' {
		p.pos++
		return arr, nil
	}
	for {
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		arr.Append(val)
		p.skipSpace()
		if p.pos >= len(p.data) {
			return nil, p.errf("unterminated array")
		}
		switch p.data[p.pos] {
		case ']':
			p.pos++
			return arr, nil
		case ',':
			p.pos++
		default:
			return nil, p.errf("expected ',' or ']' in array")
		}
	}
}

func (p *parser) parseNumber() (*Value, error) {
	start := p.pos
	if p.data[p.pos] == '-' {
		p.pos++
	}
	if p.pos >= len(p.data) || !isDigit(p.data[p.pos]) {
		return nil, p.errf("invalid number")
	}
	if p.data[p.pos] == '0' {
		p.pos++
	} else {
		for p.pos < len(p.data) && isDigit(p.data[p.pos]) {
			p.pos++
		}
	}
	isFloat := false
	if p.pos < len(p.data) && p.data[p.pos] == '.' {
		isFloat = true
		p.pos++
		if p.pos >= len(p.data) || !isDigit(p.data[p.pos]) {
			return nil, p.errf("invalid number: missing fraction digits")
		}
		for p.pos < len(p.data) && isDigit(p.data[p.pos]) {
			p.pos++
		}
	}
	if p.pos < len(p.data) && (p.data[p.pos] == 'e' || p.data[p.pos] == 'E') {
		isFloat = true
		p.pos++
		if p.pos < len(p.data) && (p.data[p.pos] == '+' || p.data[p.pos] == '-') {
			p.pos++
		}
		if p.pos >= len(p.data) || !isDigit(p.data[p.pos]) {
			return nil, p.errf("invalid number: missing exponent digits")
		}
		for p.pos < len(p.data) && isDigit(p.data[p.pos]) {
			p.pos++
		}
	}
	lit := string(p.data[start:p.pos])
	if isFloat {
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return nil, &ParseError{Pos: start, Msg: fmt.Sprintf("invalid number %q", lit)}
		}
		return Float(f), nil
	}
	i, err := strconv.ParseInt(lit, 10, 64)
	if err != nil {
		// Integer literals beyond int64 still round-trip as floats.
		f, ferr := strconv.ParseFloat(lit, 64)
		if ferr != nil {
			return nil, &ParseError{Pos: start, Msg: fmt.Sprintf("invalid number %q", lit)}
		}
		return Float(f), nil
	}
	return Int(i), nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

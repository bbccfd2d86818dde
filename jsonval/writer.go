package jsonval

import (
	"bytes"
	"fmt"
)

// Write serializes v. With indent == 0 the output is maximally compact
// (no space after ',' or ':'). With indent > 0 composites are
// pretty-printed with that many spaces per nesting level and a newline
// before each closer. The escape set mirrors Parse, plus \u00XX for any
// other control character.
func Write(v *Value, indent int) []byte {
	var buf bytes.Buffer
	writeValue(&buf, v, 0, indent)
	return buf.Bytes()
}

func writeValue(buf *bytes.Buffer, v *Value, depth, indent int) {
	if v == nil {
		buf.WriteString("null")
		return
	}
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		if v.b {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindInt:
		buf.WriteString(formatInt(v.i))
	case KindFloat:
		buf.WriteString(formatFloat(v.f))
	case KindString:
		writeString(buf, v.s)
	case KindArray:
		writeArray(buf, v, depth, indent)
	case KindObject:
		writeObject(buf, v, depth, indent)
	}
}

func writeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(buf, `\u%04x`, r)
			} else {
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
}

func writeArray(buf *bytes.Buffer, v *Value, depth, indent int) {
	if len(v.arr) == 0 {
		buf.WriteString("[]")
		return
	}
	buf.WriteByte('[')
	for i, item := range v.arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		if indent > 0 {
			buf.WriteByte('\n')
			writeIndent(buf, depth+1, indent)
		}
		writeValue(buf, item, depth+1, indent)
	}
	if indent > 0 {
		buf.WriteByte('\n')
		writeIndent(buf, depth, indent)
	}
	buf.WriteByte(']')
}

func writeObject(buf *bytes.Buffer, v *Value, depth, indent int) {
	if v.obj.Len() == 0 {
		buf.WriteString("{}")
		return
	}
	buf.WriteByte('{')
	first := true
	for p := v.obj.Oldest(); p != nil; p = p.Next() {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		if indent > 0 {
			buf.WriteByte('\n')
			writeIndent(buf, depth+1, indent)
		}
		writeString(buf, p.Key)
		buf.WriteByte(':')
		if indent > 0 {
			buf.WriteByte(' ')
		}
		writeValue(buf, p.Value, depth+1, indent)
	}
	if indent > 0 {
		buf.WriteByte('\n')
		writeIndent(buf, depth, indent)
	}
	buf.WriteByte('}')
}

func writeIndent(buf *bytes.Buffer, depth, indent int) {
	for i := 0; i < depth*indent; i++ {
		buf.WriteByte(' ')
	}
}

package jsonval

import (
	"errors"
	"strings"
	"testing"
)

func mustParse(t *testing.T, s string) *Value {
	t.Helper()
	v, err := Parse([]byte(s))
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	return v
}

func TestParseScalars(t *testing.T) {
	cases := []struct {
		in   string
		kind Kind
	}{
		{"null", KindNull},
		{"true", KindBool},
		{"false", KindBool},
		{"0", KindInt},
		{"-12", KindInt},
		{"3.25", KindFloat},
		{"-0.5", KindFloat},
		{"1e3", KindFloat},
		{"2E-2", KindFloat},
		{`"hello"`, KindString},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			v := mustParse(t, tc.in)
			if v.Kind() != tc.kind {
				t.Errorf("kind = %v, want %v", v.Kind(), tc.kind)
			}
		})
	}
}

func TestParseNumericTypePreserved(t *testing.T) {
	if v := mustParse(t, "42"); v.Kind() != KindInt || v.IntVal() != 42 {
		t.Errorf("expected int 42, got %v %v", v.Kind(), v.IntVal())
	}
	if v := mustParse(t, "42.0"); v.Kind() != KindFloat || v.FloatVal() != 42.0 {
		t.Errorf("expected float 42.0, got %v %v", v.Kind(), v.FloatVal())
	}
	if Int(42).Equal(Float(42)) {
		t.Error("int 42 must not structurally equal float 42")
	}
}

func TestParseStringEscapes(t *testing.T) {
	v := mustParse(t, `"a\"b\\c\/d\b\f\n\r\t"`)
	want := "a\"b\\c/d\b\f\n\r\t"
	if v.StrVal() != want {
		t.Errorf("got %q, want %q", v.StrVal(), want)
	}

	v = mustParse(t, `"éA"`)
	if v.StrVal() != "éA" {
		t.Errorf("unicode escape: got %q", v.StrVal())
	}

	// Surrogate pair.
	v = mustParse(t, `"😀"`)
	if v.StrVal() != "😀" {
		t.Errorf("surrogate pair: got %q", v.StrVal())
	}
}

func TestParseComposites(t *testing.T) {
	v := mustParse(t, ` { "name" : "disk" , "specs" : { "color" : "red" } , "tags" : [ 1 , 2.5 , null , true ] } `)
	if v.Kind() != KindObject || v.Len() != 3 {
		t.Fatalf("unexpected root: %v len %d", v.Kind(), v.Len())
	}
	if got := v.Path("specs.color").StrVal(); got != "red" {
		t.Errorf("nested access: got %q", got)
	}
	tags := v.Get("tags").Items()
	if len(tags) != 4 || tags[0].Kind() != KindInt || tags[1].Kind() != KindFloat {
		t.Errorf("unexpected array contents: %v", v.Get("tags"))
	}
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		"",
		"   ",
		`{"a": 1,}`,
		`[1, 2,]`,
		`{"a" 1}`,
		`{"a": 1`,
		`[1, 2`,
		`"unterminated`,
		`tru`,
		`nul`,
		`123.456.789`,
		`1.`,
		`-`,
		`1e`,
		`01`,
		`{"a":1} extra`,
		`{1: "a"}`,
		`"bad \q escape"`,
	}
	for _, in := range cases {
		t.Run(in, func(t *testing.T) {
			_, err := Parse([]byte(in))
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want error", in)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
			if pe.Pos < 0 || pe.Pos > len(in) {
				t.Errorf("position %d out of range for %q", pe.Pos, in)
			}
		})
	}
}

func TestTrailingCommaScenario(t *testing.T) {
	if _, err := Parse([]byte(`{"a": 1,}`)); err == nil {
		t.Fatal("trailing comma must fail")
	}
	v := mustParse(t, `{"a":1}`)
	if got := string(Write(v, 0)); got != `{"a":1}` {
		t.Errorf("compact form: got %q", got)
	}
}

func TestWriteCompact(t *testing.T) {
	obj := Object()
	obj.Set("b", Int(1))
	obj.Set("a", Array(String("x"), Bool(false)))
	got := string(Write(obj, 0))
	want := `{"b":1,"a":["x",false]}`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestWriteIndented(t *testing.T) {
	obj := Object()
	obj.Set("a", Int(1))
	inner := Object()
	inner.Set("c", Null())
	obj.Set("b", inner)
	got := string(Write(obj, 2))
	want := "{\n  \"a\": 1,\n  \"b\": {\n    \"c\": null\n  }\n}"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriteControlCharacters(t *testing.T) {
	got := string(Write(String("a\x01b"), 0))
	if got != `"ab"` {
		t.Errorf("got %q", got)
	}
}

func TestRoundTrip(t *testing.T) {
	docs := []string{
		`null`,
		`true`,
		`-42`,
		`3.5`,
		`1e3`,
		`"ünïcode and \"escapes\"\n"`,
		`[]`,
		`{}`,
		`[1,2.0,"three",null,[true,{"k":"v"}]]`,
		`{"z":1,"a":2,"m":{"nested":[1,2,3]},"last":false}`,
	}
	for _, doc := range docs {
		t.Run(doc, func(t *testing.T) {
			v := mustParse(t, doc)
			for _, indent := range []int{0, 2, 4} {
				out := Write(v, indent)
				back, err := Parse(out)
				if err != nil {
					t.Fatalf("reparse (indent %d) of %q: %v", indent, out, err)
				}
				if !v.Equal(back) {
					t.Errorf("round trip (indent %d) changed value: %s vs %s", indent, Write(v, 0), Write(back, 0))
				}
			}
		})
	}
}

func TestRoundTripPreservesKeyOrder(t *testing.T) {
	v := mustParse(t, `{"zebra":1,"apple":2,"mango":3}`)
	back := mustParse(t, string(Write(v, 2)))
	want := []string{"zebra", "apple", "mango"}
	got := back.Keys()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("key order changed: %v", got)
	}
}

func TestRoundTripFloatMarker(t *testing.T) {
	// A whole-valued float must not collapse into an int on the way out.
	out := string(Write(Float(1), 0))
	if !strings.ContainsAny(out, ".eE") {
		t.Fatalf("float 1.0 serialized as %q", out)
	}
	back := mustParse(t, out)
	if back.Kind() != KindFloat {
		t.Errorf("float reparsed as %v", back.Kind())
	}
}

func TestPathAndSetPath(t *testing.T) {
	v := mustParse(t, `{"specs":{"cpu":{"cores":8}}}`)
	if got := v.Path("specs.cpu.cores").IntVal(); got != 8 {
		t.Errorf("Path: got %d", got)
	}
	if v.Path("specs.gpu.cores") != nil {
		t.Error("missing path should be nil")
	}
	if v.Path("specs.cpu.cores.deeper") != nil {
		t.Error("path through a scalar should be nil")
	}

	out := Object()
	out.SetPath("specs.color", String("red"))
	if got := string(Write(out, 0)); got != `{"specs":{"color":"red"}}` {
		t.Errorf("SetPath re-nesting: got %q", got)
	}
}

func TestClone(t *testing.T) {
	v := mustParse(t, `{"a":[1,{"b":2}]}`)
	c := v.Clone()
	if !v.Equal(c) {
		t.Fatal("clone not equal")
	}
	c.Get("a").Items()[1].Set("b", Int(99))
	if v.Path("a").Items()[1].Get("b").IntVal() != 2 {
		t.Error("clone shares structure with original")
	}
}

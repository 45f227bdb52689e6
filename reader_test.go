// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package xjson_test

import (
	"errors"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/creachadair/xjson"
)

func mustReader(t *testing.T, s string) *xjson.Reader {
	t.Helper()
	return xjson.NewReader(strings.NewReader(s))
}

func TestStructuredDecode(t *testing.T) {
	r := mustReader(t, `{"id": 1001, "name": "Ada", "tags": ["math", "logic"], "active": true, "manager": null}`)

	if err := r.BeginObject(); err != nil {
		t.Fatalf("BeginObject: %v", err)
	}

	got := map[string]any{}
	for {
		has, err := r.HasNext()
		if err != nil {
			t.Fatalf("HasNext: %v", err)
		}
		if !has {
			break
		}
		name, err := r.NextName()
		if err != nil {
			t.Fatalf("NextName: %v", err)
		}
		switch name {
		case "id":
			v, err := r.NextLong()
			if err != nil {
				t.Fatalf("NextLong: %v", err)
			}
			got[name] = v
		case "name":
			v, err := r.NextString()
			if err != nil {
				t.Fatalf("NextString: %v", err)
			}
			got[name] = v
		case "tags":
			var tags []string
			if err := r.BeginArray(); err != nil {
				t.Fatalf("BeginArray: %v", err)
			}
			for {
				has, err := r.HasNext()
				if err != nil {
					t.Fatalf("HasNext(tags): %v", err)
				}
				if !has {
					break
				}
				s, err := r.NextString()
				if err != nil {
					t.Fatalf("NextString(tag): %v", err)
				}
				tags = append(tags, s)
			}
			if err := r.EndArray(); err != nil {
				t.Fatalf("EndArray: %v", err)
			}
			got[name] = tags
		case "active":
			v, err := r.NextBoolean()
			if err != nil {
				t.Fatalf("NextBoolean: %v", err)
			}
			got[name] = v
		default:
			if err := r.SkipValue(); err != nil {
				t.Fatalf("SkipValue: %v", err)
			}
		}
	}
	if err := r.EndObject(); err != nil {
		t.Fatalf("EndObject: %v", err)
	}

	if got["id"] != int64(1001) {
		t.Errorf("id: got %v, want 1001", got["id"])
	}
	if got["name"] != "Ada" {
		t.Errorf("name: got %v, want Ada", got["name"])
	}
	if got["active"] != true {
		t.Errorf("active: got %v, want true", got["active"])
	}
	tags, _ := got["tags"].([]string)
	if len(tags) != 2 || tags[0] != "math" || tags[1] != "logic" {
		t.Errorf("tags: got %v", tags)
	}
}

func TestPathDuringTraversal(t *testing.T) {
	r := mustReader(t, `{"users": [{"name": "a"}, {"name": "b"}]}`)
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	must(r.BeginObject())
	name, err := r.NextName()
	must(err)
	if name != "users" {
		t.Fatalf("name: got %q", name)
	}
	must(r.BeginArray())
	must(r.BeginObject())
	if got, want := r.Path(), "$.users[0].null"; got != want {
		t.Errorf("path before name: got %q, want %q", got, want)
	}
	_, err = r.NextName()
	must(err)
	if got, want := r.Path(), "$.users[0].name"; got != want {
		t.Errorf("path after name: got %q, want %q", got, want)
	}
	_, err = r.NextString()
	must(err)
	if got, want := r.Path(), "$.users[0].null"; got != want {
		t.Errorf("path after value: got %q, want %q", got, want)
	}
	must(r.EndObject())
	if got, want := r.Path(), "$.users[1]"; got != want {
		t.Errorf("path after first element: got %q, want %q", got, want)
	}
	must(r.SkipValue())
	must(r.EndArray())
	must(r.EndObject())
}

func TestNumberClassification(t *testing.T) {
	tests := []struct {
		input   string
		wantI   int64
		asFloat bool
		wantF   float64
	}{
		{"0", 0, false, 0},
		{"-0", 0, false, 0},
		{"42", 42, false, 42},
		{"-42", -42, false, -42},
		{strconvI64Min, math.MinInt64, false, math.MinInt64},
		{"3.14", 0, true, 3.14},
		{"1e10", 0, true, 1e10},
		{"-1.5e-3", 0, true, -1.5e-3},
	}
	for _, test := range tests {
		r := mustReader(t, test.input)
		if test.asFloat {
			got, err := r.NextDouble()
			if err != nil {
				t.Errorf("NextDouble(%q): %v", test.input, err)
				continue
			}
			if got != test.wantF {
				t.Errorf("NextDouble(%q): got %v, want %v", test.input, got, test.wantF)
			}
		} else {
			got, err := r.NextLong()
			if err != nil {
				t.Errorf("NextLong(%q): %v", test.input, err)
				continue
			}
			if got != test.wantI {
				t.Errorf("NextLong(%q): got %v, want %v", test.input, got, test.wantI)
			}
		}
	}
}

const strconvI64Min = "-9223372036854775808"

func TestNextIntOverflow(t *testing.T) {
	r := mustReader(t, "9999999999")
	if _, err := r.NextInt(); err == nil {
		t.Error("NextInt: expected an overflow error, got nil")
	}
	var derr *xjson.DataError
	r2 := mustReader(t, "9999999999")
	_, err := r2.NextInt()
	if !errors.As(err, &derr) {
		t.Errorf("NextInt error type: got %T, want *xjson.DataError", err)
	}
}

func TestNextLongExactNearInt64Boundary(t *testing.T) {
	// This exponent-form literal denotes math.MaxInt64 exactly, but as a
	// float64 it would round up to 9223372036854775808 before any range
	// check ran, so only an arbitrary-precision fallback reads it correctly.
	r := mustReader(t, "9223372036854775807e0")
	got, err := r.NextLong()
	if err != nil {
		t.Fatalf("NextLong: %v", err)
	}
	if got != math.MaxInt64 {
		t.Errorf("NextLong: got %d, want %d", got, int64(math.MaxInt64))
	}
}

func TestNextLongRejectsOneBeyondInt64Boundary(t *testing.T) {
	// One past math.MinInt64. The fast-path int64 accumulator in peekNumber
	// hits its boundary exactly at the second-to-last digit; without also
	// checking the post-digit value, applying the final '9' wraps the
	// accumulator back to a plausible-looking positive value instead of
	// falling through to the arbitrary-precision path.
	r := mustReader(t, "-9223372036854775809")
	if _, err := r.NextLong(); err == nil {
		t.Error("NextLong(-9223372036854775809): expected an error, got nil")
	}
}

func TestNextLongRejectsNonIntegerExponentForm(t *testing.T) {
	r := mustReader(t, "1.5e0")
	if _, err := r.NextLong(); err == nil {
		t.Error("NextLong(1.5e0): expected an error, got nil")
	}
}

func TestNegativeZeroPreservesSign(t *testing.T) {
	r := mustReader(t, "-0")
	got, err := r.NextDouble()
	if err != nil {
		t.Fatalf("NextDouble(-0): %v", err)
	}
	if got != 0 || !math.Signbit(got) {
		t.Errorf("NextDouble(-0): got %v (signbit %v), want negative zero", got, math.Signbit(got))
	}
}

func TestLeadingZeroRejected(t *testing.T) {
	for _, input := range []string{"01", "007", "-01"} {
		r := mustReader(t, input)
		if err := r.SkipValue(); err == nil {
			t.Errorf("SkipValue(%q): expected a syntax error, got nil", input)
		}
	}
}

func TestLeadingZeroAllowedBeforeFractionOrExponent(t *testing.T) {
	for _, input := range []string{"0", "0.5", "0e5", "-0"} {
		r := mustReader(t, input)
		if _, err := r.NextDouble(); err != nil {
			t.Errorf("NextDouble(%q): unexpected error: %v", input, err)
		}
	}
}

func TestStructuredDecodeDoesNotCombineSurrogatePair(t *testing.T) {
	// A JSON-escaped surrogate pair for 😀 (U+1F600): the structured path
	// decodes each \u escape independently, unlike StreamDoubleQuotedStringUnescape.
	r := mustReader(t, "\"\\uD83D\\uDE00\"")
	got, err := r.NextString()
	if err != nil {
		t.Fatalf("NextString: %v", err)
	}
	if strings.Contains(got, "😀") {
		t.Errorf("NextString: got %q, want two unpaired-surrogate replacement runes, not the combined emoji", got)
	}
	if want := 2; strings.Count(got, "�") != want {
		t.Errorf("NextString: got %q, want %d replacement runes", got, want)
	}
}

func TestStringEscapes(t *testing.T) {
	r := mustReader(t, `"a\tbA😀\""`)
	got, err := r.NextString()
	if err != nil {
		t.Fatalf("NextString: %v", err)
	}
	want := "a\tbA\U0001F600\""
	if got != want {
		t.Errorf("NextString: got %q, want %q", got, want)
	}
}

func TestUnpairedSurrogate(t *testing.T) {
	r := mustReader(t, `"\uD83D!"`)
	got, err := r.NextString()
	if err != nil {
		t.Fatalf("NextString: %v", err)
	}
	if !strings.Contains(got, "�") {
		t.Errorf("NextString: got %q, want replacement rune for lone surrogate", got)
	}
}

func TestSelectNameFastPath(t *testing.T) {
	opts := xjson.NewOptions("id", "name", "age")
	r := mustReader(t, `{"name": "Ada", "id": 7}`)
	if err := r.BeginObject(); err != nil {
		t.Fatalf("BeginObject: %v", err)
	}
	i, err := r.SelectName(opts)
	if err != nil {
		t.Fatalf("SelectName: %v", err)
	}
	if i != 1 {
		t.Errorf("SelectName: got %d, want 1 (name)", i)
	}
	if _, err := r.NextString(); err != nil {
		t.Fatalf("NextString: %v", err)
	}
	i, err = r.SelectName(opts)
	if err != nil {
		t.Fatalf("SelectName: %v", err)
	}
	if i != 0 {
		t.Errorf("SelectName: got %d, want 0 (id)", i)
	}
}

func TestSelectNameNoMatch(t *testing.T) {
	opts := xjson.NewOptions("id", "name")
	r := mustReader(t, `{"other": 1}`)
	if err := r.BeginObject(); err != nil {
		t.Fatalf("BeginObject: %v", err)
	}
	i, err := r.SelectName(opts)
	if err != nil {
		t.Fatalf("SelectName: %v", err)
	}
	if i != -1 {
		t.Errorf("SelectName: got %d, want -1", i)
	}
	if err := r.SkipName(); err != nil {
		t.Fatalf("SkipName: %v", err)
	}
	if err := r.SkipValue(); err != nil {
		t.Fatalf("SkipValue: %v", err)
	}
}

func TestFailOnUnknown(t *testing.T) {
	r := mustReader(t, `{"secret": 1}`)
	r.SetFailOnUnknown(true)
	if err := r.BeginObject(); err != nil {
		t.Fatalf("BeginObject: %v", err)
	}
	if err := r.SkipName(); err == nil {
		t.Error("SkipName: expected an error with FailOnUnknown set")
	}
}

func TestPromoteNameToValue(t *testing.T) {
	r := mustReader(t, `{"a": 1, "b": 2}`)
	if err := r.BeginObject(); err != nil {
		t.Fatalf("BeginObject: %v", err)
	}
	if err := r.PromoteNameToValue(); err != nil {
		t.Fatalf("PromoteNameToValue: %v", err)
	}
	got, err := r.NextString()
	if err != nil {
		t.Fatalf("NextString: %v", err)
	}
	if got != "a" {
		t.Errorf("NextString: got %q, want %q", got, "a")
	}
	if err := r.SkipValue(); err != nil {
		t.Fatalf("SkipValue: %v", err)
	}
}

func TestNextSource(t *testing.T) {
	r := mustReader(t, `{"payload": {"a": [1,2,3]}, "next": true}`)
	if err := r.BeginObject(); err != nil {
		t.Fatalf("BeginObject: %v", err)
	}
	if _, err := r.NextName(); err != nil {
		t.Fatalf("NextName: %v", err)
	}
	src, err := r.NextSource()
	if err != nil {
		t.Fatalf("NextSource: %v", err)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if got, want := string(data), `{"a": [1,2,3]}`; got != want {
		t.Errorf("NextSource bytes: got %q, want %q", got, want)
	}
	name, err := r.NextName()
	if err != nil {
		t.Fatalf("NextName(next): %v", err)
	}
	if name != "next" {
		t.Fatalf("NextName: got %q, want %q", name, "next")
	}
	if _, err := r.NextBoolean(); err != nil {
		t.Fatalf("NextBoolean: %v", err)
	}
	if err := r.EndObject(); err != nil {
		t.Fatalf("EndObject: %v", err)
	}
}

func TestNextSourceAutoDrain(t *testing.T) {
	// Calling any other Reader method before draining the value source
	// should discard it automatically rather than corrupt the stream.
	r := mustReader(t, `[{"a": 1}, 2]`)
	if err := r.BeginArray(); err != nil {
		t.Fatalf("BeginArray: %v", err)
	}
	if _, err := r.NextSource(); err != nil {
		t.Fatalf("NextSource: %v", err)
	}
	v, err := r.NextLong()
	if err != nil {
		t.Fatalf("NextLong: %v", err)
	}
	if v != 2 {
		t.Errorf("NextLong: got %d, want 2", v)
	}
	if err := r.EndArray(); err != nil {
		t.Fatalf("EndArray: %v", err)
	}
}

func TestPeekJSONIndependence(t *testing.T) {
	r := mustReader(t, `{"kind": "a", "value": 1}`)
	fork, err := r.PeekJSON()
	if err != nil {
		t.Fatalf("PeekJSON: %v", err)
	}
	if err := fork.BeginObject(); err != nil {
		t.Fatalf("fork.BeginObject: %v", err)
	}
	fname, err := fork.NextName()
	if err != nil {
		t.Fatalf("fork.NextName: %v", err)
	}
	if fname != "kind" {
		t.Fatalf("fork name: got %q", fname)
	}

	// The original reader must be unaffected by the fork's reads.
	if err := r.BeginObject(); err != nil {
		t.Fatalf("BeginObject: %v", err)
	}
	name, err := r.NextName()
	if err != nil {
		t.Fatalf("NextName: %v", err)
	}
	if name != "kind" {
		t.Fatalf("original name: got %q, want %q", name, "kind")
	}
}

func TestSyntaxErrors(t *testing.T) {
	tests := []string{
		`{`,
		`[1, 2,`,
		`{"a" 1}`,
		`nul`,
		`{'a': 1}`, // single-quoted key requires lenient mode
	}
	for _, input := range tests {
		r := mustReader(t, input)
		var walk func() error
		walk = func() error {
			kind, err := r.Peek()
			if err != nil {
				return err
			}
			switch kind {
			case xjson.BeginObject:
				if err := r.BeginObject(); err != nil {
					return err
				}
				for {
					has, err := r.HasNext()
					if err != nil {
						return err
					}
					if !has {
						break
					}
					if _, err := r.NextName(); err != nil {
						return err
					}
					if err := walk(); err != nil {
						return err
					}
				}
				return r.EndObject()
			case xjson.BeginArray:
				if err := r.BeginArray(); err != nil {
					return err
				}
				for {
					has, err := r.HasNext()
					if err != nil {
						return err
					}
					if !has {
						break
					}
					if err := walk(); err != nil {
						return err
					}
				}
				return r.EndArray()
			default:
				return r.SkipValue()
			}
		}
		if err := walk(); err == nil {
			t.Errorf("input %q: expected an error, got nil", input)
		}
	}
}

func TestClosedReaderRejectsFurtherUse(t *testing.T) {
	r := mustReader(t, `1`)
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := r.Peek(); err == nil {
		t.Error("Peek after Close: expected an error")
	}
}

func TestPeekDryRun(t *testing.T) {
	tests := []struct {
		input string
		want  xjson.DryRunKind
	}{
		{`"hello"`, xjson.DryRunString},
		{`null`, xjson.DryRunNull},
		{`NULLIFY`, xjson.DryRunNull}, // fast hint only, doesn't validate the rest
		{`42`, xjson.DryRunOther},
		{`true`, xjson.DryRunOther},
		{`  , : "after separators"`, xjson.DryRunString},
		{``, xjson.DryRunOther},
	}
	for _, test := range tests {
		r := mustReader(t, test.input)
		got, err := r.PeekDryRun()
		if err != nil {
			t.Errorf("PeekDryRun(%q): %v", test.input, err)
			continue
		}
		if got != test.want {
			t.Errorf("PeekDryRun(%q): got %v, want %v", test.input, got, test.want)
		}
	}
}

func TestPeekDryRunSkipsColonAndCommaAfterName(t *testing.T) {
	r := mustReader(t, `{"a": null, "b": "x"}`)
	if err := r.BeginObject(); err != nil {
		t.Fatalf("BeginObject: %v", err)
	}
	if _, err := r.NextName(); err != nil {
		t.Fatalf("NextName: %v", err)
	}

	// The cursor sits right after "a"'s colon; PeekDryRun must skip it (and
	// the surrounding whitespace) to classify the value, not the colon
	// itself, without consuming the value.
	isNull, err := r.NextValueIsNullDryRun()
	if err != nil {
		t.Fatalf("NextValueIsNullDryRun: %v", err)
	}
	if !isNull {
		t.Error("NextValueIsNullDryRun: got false, want true")
	}
	if err := r.NextNull(); err != nil {
		t.Fatalf("NextNull: %v", err)
	}

	if _, err := r.NextName(); err != nil {
		t.Fatalf("NextName: %v", err)
	}
	kind, err := r.PeekDryRun()
	if err != nil {
		t.Fatalf("PeekDryRun: %v", err)
	}
	if kind != xjson.DryRunString {
		t.Errorf("PeekDryRun: got %v, want %v", kind, xjson.DryRunString)
	}
	if s, err := r.NextString(); err != nil || s != "x" {
		t.Fatalf("NextString: got %q, %v, want %q", s, err, "x")
	}
	if err := r.EndObject(); err != nil {
		t.Fatalf("EndObject: %v", err)
	}
}

func TestPeekDryRunNeverPanicsOnLenientOnlySyntax(t *testing.T) {
	// A leading '/' would panic checkLenient() through the ordinary scanner
	// in strict mode; PeekDryRun must never do that, since it is a passive
	// classification hint, not a validating scan.
	r := mustReader(t, `/* comment */ "value"`)
	kind, err := r.PeekDryRun()
	if err != nil {
		t.Fatalf("PeekDryRun: %v", err)
	}
	if kind != xjson.DryRunOther {
		t.Errorf("PeekDryRun: got %v, want %v (comments are not skipped)", kind, xjson.DryRunOther)
	}
}

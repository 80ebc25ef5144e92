package dispatch

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestRequestFields(t *testing.T) {
	cases := []struct {
		body, model, prompt string
	}{
		{`{"model":"m","prompt":"p"}`, "m", "p"},
		{`{"model":"chat","messages":[{"role":"system","content":"s"},{"role":"user","content":"last"}]}`, "chat", "last"},
		{`{}`, "", ""},
		{`garbage`, "", ""},
	}
	for _, c := range cases {
		m, p := requestFields([]byte(c.body))
		if m != c.model || p != c.prompt {
			t.Fatalf("%s: got (%q,%q) want (%q,%q)", c.body, m, p, c.model, c.prompt)
		}
	}
}

func TestResponseFields(t *testing.T) {
	out, tokens := responseFields([]byte(`{"output":"done","usage":{"total_tokens":42}}`))
	if out != "done" || tokens != 42 {
		t.Fatalf("got (%q,%d)", out, tokens)
	}
	out, tokens = responseFields([]byte(`{"data":[1,2]}`))
	if out != `{"data":[1,2]}` || tokens != 0 {
		t.Fatalf("raw fallback: got (%q,%d)", out, tokens)
	}
	long := `{"result":"` + strings.Repeat("a", maxLoggedText+10) + `"}`
	out, _ = responseFields([]byte(long))
	if len(out) != maxLoggedText+3 {
		t.Fatalf("expected truncated output, got %d chars", len(out))
	}
}

func TestTruncateKeepsRunes(t *testing.T) {
	// one ASCII byte shifts every two-byte rune across the limit
	s := "a" + strings.Repeat("é", maxLoggedText)
	out := truncate(s)
	if !utf8.ValidString(out) {
		t.Fatalf("truncated text is not valid UTF-8")
	}
	if !strings.HasSuffix(out, "...") || len(out) > maxLoggedText+3 {
		t.Fatalf("unexpected truncation, got %d bytes", len(out))
	}
	if truncate("héllo") != "héllo" {
		t.Fatalf("short text must be kept")
	}
}

func TestErrorMessage(t *testing.T) {
	if got := errorMessage([]byte(`{"error":{"message":"a"},"message":"b"}`)); got != "a" {
		t.Fatalf("got %q", got)
	}
	if got := errorMessage([]byte(`{"message":"b"}`)); got != "b" {
		t.Fatalf("got %q", got)
	}
	if got := errorMessage([]byte(`{"error":"plain"}`)); got != "" {
		t.Fatalf("got %q", got)
	}
}

package vm_test

import (
	"strings"
	"testing"

	"sforth/vm"
)

func tokens(t *testing.T, src string) []vm.Token {
	t.Helper()
	tz := vm.NewTokenizer(strings.NewReader(src))
	var out []vm.Token
	for {
		tok, ok := tz.Next()
		if !ok {
			return out
		}
		out = append(out, tok)
	}
}

func TestTokenizerCaseFolding(t *testing.T) {
	toks := tokens(t, "dup Dup DUP")
	for _, tok := range toks {
		if tok.Text != "DUP" {
			t.Fatalf("expected case-folded DUP, got %q", tok.Text)
		}
	}
}

func TestTokenizerLineComment(t *testing.T) {
	toks := tokens(t, "1 \\ this is ignored\n2")
	want := []string{"1", "2"}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, w := range want {
		if toks[i].Text != w {
			t.Fatalf("token %d = %q, want %q", i, toks[i].Text, w)
		}
	}
}

func TestTokenizerQuotedLiteral(t *testing.T) {
	toks := tokens(t, `." hello world"`)
	if len(toks) != 3 {
		t.Fatalf("got %d tokens, want 3: %v", len(toks), toks)
	}
	if toks[0].Text != `."` {
		t.Fatalf("opener = %q, want \".\"\"", toks[0].Text)
	}
	if toks[1].Text != "hello world" || !toks[1].Raw {
		t.Fatalf("body = %+v, want raw %q", toks[1], "hello world")
	}
	if toks[2].Text != "" || !toks[2].Raw {
		t.Fatalf("sentinel = %+v, want empty raw token", toks[2])
	}
}

func TestTokenizerQuotedLiteralVariants(t *testing.T) {
	for _, tc := range []struct {
		src  string
		body string
	}{
		{`.( parenthesized )`, "parenthesized "},
		{`.' apostrophe'`, "apostrophe"},
	} {
		toks := tokens(t, tc.src)
		if len(toks) != 3 || toks[1].Text != tc.body {
			t.Fatalf("%q: got %v, want body %q", tc.src, toks, tc.body)
		}
	}
}

func TestTokenizerUnterminatedQuoteAtNewline(t *testing.T) {
	toks := tokens(t, "." + `" no closer` + "\nDUP")
	if len(toks) < 3 {
		t.Fatalf("got %v", toks)
	}
	if toks[1].Text != "no closer" {
		t.Fatalf("body = %q", toks[1].Text)
	}
	last := toks[len(toks)-1]
	if last.Text != "DUP" {
		t.Fatalf("expected DUP to resume tokenizing, got %q", last.Text)
	}
}

func TestTokenizerIncludeRawCasing(t *testing.T) {
	toks := tokens(t, "INCLUDE MixedCase.fs DUP")
	if len(toks) != 3 {
		t.Fatalf("got %v", toks)
	}
	if toks[1].Text != "MixedCase.fs" || !toks[1].Raw {
		t.Fatalf("include path = %+v, want raw MixedCase.fs", toks[1])
	}
	if toks[2].Text != "DUP" {
		t.Fatalf("resumed token = %q, want case-folded DUP", toks[2].Text)
	}
}

package vm

import (
	"bufio"
	"io"
	"strings"
)

// Token is one lexical unit produced by the Tokenizer.
type Token struct {
	Text string
	// Raw is true when Text must not be case-folded: it is either the
	// verbatim body of a quoted literal, or the filename token following
	// INCLUDE.
	Raw bool
}

// quoteClosers maps a quoted-literal opener token to its closing delimiter
// rune. All three forms are normalized to `."` once recognized.
var quoteClosers = map[string]rune{
	`."`: '"',
	`.(`: ')',
	`.'`: '\'',
}

// Tokenizer splits input text into a lazy sequence of tokens, handling line
// comments (`\`), quoted literals (`."`, `.(`, `.'`) and the raw-casing
// lookback rule that exempts the filename following INCLUDE from case
// folding. It is restartable and single-pass.
type Tokenizer struct {
	r        *bufio.Reader
	prevText string // identity of the previous emitted token, for INCLUDE lookback
	pending  []Token
}

// NewTokenizer returns a Tokenizer reading from r.
func NewTokenizer(r io.Reader) *Tokenizer {
	return &Tokenizer{r: bufio.NewReader(r)}
}

// Next returns the next token and true, or a zero Token and false at end of
// input.
func (t *Tokenizer) Next() (Token, bool) {
	if len(t.pending) > 0 {
		tok := t.pending[0]
		t.pending = t.pending[1:]
		t.prevText = tok.Text
		return tok, true
	}

	var buf strings.Builder
	comment := false

	flushWord := func() (Token, bool) {
		s := buf.String()
		buf.Reset()
		if s == "" {
			return Token{}, false
		}
		if s == `\` {
			comment = true
			return Token{}, false
		}
		if closer, ok := quoteClosers[s]; ok {
			body := t.readQuotedBody(closer)
			opener := Token{Text: `."`, Raw: false}
			bodyTok := Token{Text: body, Raw: true}
			sentinel := Token{Text: "", Raw: true}
			t.pending = []Token{bodyTok, sentinel}
			t.prevText = opener.Text
			return opener, true
		}
		raw := t.prevText == "INCLUDE"
		if !raw {
			s = strings.ToUpper(s)
		}
		tok := Token{Text: s, Raw: raw}
		t.prevText = s
		return tok, true
	}

	for {
		r, _, err := t.r.ReadRune()
		if err != nil {
			if tok, ok := flushWord(); ok {
				return tok, true
			}
			return Token{}, false
		}
		switch {
		case r == '\n':
			if tok, ok := flushWord(); ok {
				return tok, true
			}
			comment = false
		case comment:
			// discard characters of a line comment
		case r == ' ' || r == '\t':
			if tok, ok := flushWord(); ok {
				return tok, true
			}
		default:
			buf.WriteRune(r)
		}
	}
}

// readQuotedBody consumes runes up to (and discarding) the closing
// delimiter, or up to a newline if the quote is left unterminated — in
// which case whatever was accumulated is returned and normal tokenizing
// resumes.
func (t *Tokenizer) readQuotedBody(closer rune) string {
	var body strings.Builder
	for {
		r, _, err := t.r.ReadRune()
		if err != nil || r == closer {
			return body.String()
		}
		if r == '\n' {
			return body.String()
		}
		body.WriteRune(r)
	}
}

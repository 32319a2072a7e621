package vm

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Driver ties the dictionary, one interpreter Instance and the compiler
// together, feeding it token by token from a Tokenizer and toggling between
// interpret and compile mode on `:` and `;`.
type Driver struct {
	Dict  *Dictionary
	Inst  *Instance
	Out   io.Writer
	Stdin io.Reader

	compiling *compiler
	pending   string // "" | ":" | "CREATE" | "INCLUDE" | "PRINTDEBUG" | "QUOTE"
	fatalErr  error  // set when Instance.Run recovers a genuine internal bug
}

// DriverOption configures a Driver at construction time.
type DriverOption func(*Driver)

// WithDriverOutput directs all program output and diagnostics to w.
func WithDriverOutput(w io.Writer) DriverOption {
	return func(d *Driver) { d.Out = w }
}

// WithDictionary supplies a pre-built Dictionary instead of a fresh default
// one (chiefly useful for tests that want to inspect it afterward).
func WithDictionary(dict *Dictionary) DriverOption {
	return func(d *Driver) { d.Dict = dict }
}

// WithStdin sets the reader the CLI's REPL mode reads lines from (default
// os.Stdin). Driver itself never reads from it directly; RunReader always
// takes an explicit reader.
func WithStdin(r io.Reader) DriverOption {
	return func(d *Driver) { d.Stdin = r }
}

// NewDriver builds a Driver ready to run source text.
func NewDriver(opts ...DriverOption) *Driver {
	d := &Driver{Out: io.Discard}
	for _, opt := range opts {
		opt(d)
	}
	if d.Dict == nil {
		d.Dict = NewDictionary()
	}
	if d.Stdin == nil {
		d.Stdin = os.Stdin
	}
	d.Inst = NewInstance(d.Dict, WithOutput(d.Out))
	return d
}

// pendingNoun names the argument each pending trigger still expects, for the
// "expect … after …" diagnostic when input ends before it arrives.
var pendingNoun = map[string]string{
	":":          "name",
	"CREATE":     "name",
	"INCLUDE":    "path",
	"PRINTDEBUG": "name",
}

// RunString runs text through the driver as one complete unit of input: a
// definition or a CREATE/INCLUDE/PRINTDEBUG still waiting for its argument
// when text ends is reported and discarded (see atEOF), while the
// dictionary, stacks and memory carry over to the next call. It returns an
// error only for a genuine internal VM bug or a failed output stream;
// ordinary Forth-level errors are reported to Out and never returned.
func (d *Driver) RunString(text string) error {
	return d.RunReader(strings.NewReader(text))
}

// RunFile opens path and runs its contents, for the CLI's single-file mode.
// Unlike INCLUDE (see doInclude), a failure to open is returned to the
// caller rather than swallowed as a diagnostic.
func (d *Driver) RunFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()
	return d.RunReader(f)
}

// outputError is satisfied by an output sink that latches a sticky write
// error, such as diagio.LatchedWriter. RunReader checks it after every token
// so a broken output stream stops a run instead of silently discarding
// every diagnostic and program output from then on.
type outputError interface {
	WriteErr() error
}

// RunReader drives r's tokens through the interpret/compile loop until EOF,
// BYE sets the quit flag, the output stream fails, or a fatal internal
// error is recovered.
func (d *Driver) RunReader(r io.Reader) error {
	t := NewTokenizer(r)
	for !d.Inst.Quit() {
		tok, ok := t.Next()
		if !ok {
			d.atEOF()
			return d.checkOutput()
		}
		d.step(tok)
		if err := d.checkOutput(); err != nil {
			return err
		}
	}
	return d.checkOutput()
}

// checkOutput returns the latched internal VM error, if any, else the
// output sink's latched write error, if any.
func (d *Driver) checkOutput() error {
	if d.fatalErr != nil {
		return d.fatalErr
	}
	if ew, ok := d.Out.(outputError); ok {
		if err := ew.WriteErr(); err != nil {
			d.fatalErr = err
		}
	}
	return d.fatalErr
}

func (d *Driver) step(tok Token) {
	if tok.Raw && tok.Text == "" {
		return // sentinel emitted after a quoted body; carries no content
	}
	if d.pending != "" {
		p := d.pending
		d.pending = ""
		switch p {
		case ":":
			d.compiling = newCompiler(tok.Text)
		case "CREATE":
			d.doCreate(tok.Text)
		case "INCLUDE":
			d.doInclude(tok.Text)
		case "PRINTDEBUG":
			d.doPrintDebug(tok.Text)
		case "QUOTE":
			fmt.Fprint(d.Out, tok.Text)
		}
		return
	}
	if d.compiling != nil {
		d.compileToken(tok)
		return
	}
	d.interpretToken(tok)
}

func (d *Driver) compileToken(tok Token) {
	if tok.Text == ";" {
		d.install()
		return
	}
	if diag := d.compiling.token(tok, d.Dict); diag != "" {
		fmt.Fprintf(d.Out, "%s\n", diag)
	}
}

func (d *Driver) interpretToken(tok Token) {
	switch tok.Text {
	case ":":
		d.pending = ":"
		return
	case "CREATE":
		d.pending = "CREATE"
		return
	case "INCLUDE":
		d.pending = "INCLUDE"
		return
	case "PRINTDEBUG":
		d.pending = "PRINTDEBUG"
		return
	case `."`:
		d.pending = "QUOTE"
		return
	}

	if n, ok := parseInt(tok.Text); ok {
		d.Inst.Push(Cell(n))
		return
	}
	if IsCompileOnly(tok.Text) {
		fmt.Fprintf(d.Out, "%s is compile only !\n", tok.Text)
		return
	}
	if idx, ok := d.Dict.Lookup(tok.Text); ok {
		if err := d.Inst.Run(d.Dict.Words[idx]); err != nil {
			d.fatalErr = err
		}
		return
	}
	fmt.Fprintf(d.Out, "%s ?\n", tok.Text)
}

// install runs the word-validity checks, in order, at `;`.
func (d *Driver) install() {
	c := d.compiling
	d.compiling = nil
	if diag := d.validateIdentifier(c.word.Identifier); diag != "" {
		fmt.Fprintf(d.Out, "%s\n", diag)
		return
	}
	if !c.balanced() {
		fmt.Fprintf(d.Out, "expect %s in %s\n", c.missingCloser(), c.word.Identifier)
		return
	}
	d.Dict.Install(c.word)
}

// validateIdentifier checks that name is not a literal, not a built-in, and
// not a compile-only reserved form. An empty result means the name is
// installable.
func (d *Driver) validateIdentifier(name string) string {
	if IsInteger(name) {
		return "identifier cannot be an integer !"
	}
	if _, ok := d.Dict.LookupBuiltin(name); ok {
		return "cannot redefine " + name
	}
	if IsCompileOnly(name) {
		return "cannot redefine " + name
	}
	return ""
}

// doCreate installs a word whose body pushes the current value of `here` —
// a compile-time snapshot, not a live reference.
func (d *Driver) doCreate(name string) {
	if diag := d.validateIdentifier(name); diag != "" {
		fmt.Fprintf(d.Out, "%s\n", diag)
		return
	}
	w := Word{Identifier: name}
	w.addOpImm(OpPush, d.Inst.Here)
	d.Dict.Install(w)
}

// doInclude opens path and runs it through this same driver, preserving
// compile/interpret state across the call. A failure to open is reported
// and execution continues.
func (d *Driver) doInclude(path string) {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(d.Out, "failed to open %s\n", path)
		return
	}
	defer f.Close()
	d.RunReader(f)
}

// doPrintDebug disassembles the first dictionary match for name, built-ins
// included, matching the original source's PRINTDEBUG loop: print the
// first match, not every match.
func (d *Driver) doPrintDebug(name string) {
	idx, ok := d.Dict.Lookup(name)
	if !ok {
		fmt.Fprintf(d.Out, "%s ?\n", name)
		return
	}
	fmt.Fprint(d.Out, Disassemble(d.Dict.Words[idx], d.Dict))
}

func (d *Driver) atEOF() {
	if d.compiling != nil {
		fmt.Fprintf(d.Out, "expect ; after : in %s\n", d.compiling.word.Identifier)
		d.compiling = nil
	}
	if d.pending != "" {
		if noun, ok := pendingNoun[d.pending]; ok {
			fmt.Fprintf(d.Out, "expect %s after %s\n", noun, d.pending)
		}
		d.pending = ""
	}
}

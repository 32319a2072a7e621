// Command sforth is the REPL and file-loading front end for the sforth
// interpreter.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"sforth/internal/diagio"
	"sforth/vm"
)

// fileList accumulates repeated -with flags in the order given.
type fileList []string

func (f *fileList) String() string { return strings.Join(*f, ",") }
func (f *fileList) Set(v string) error {
	*f = append(*f, v)
	return nil
}

func main() {
	var with fileList
	flag.Var(&with, "with", "load and run an additional file before the main run (repeatable)")
	dump := flag.Bool("dump", false, "print the final stack state after the run")
	debug := flag.Bool("debug", false, "print a stack/PC snapshot on internal VM errors")
	flag.Parse()

	args := flag.Args()
	if len(args) > 1 {
		fmt.Printf("usage: %s <file>\n", os.Args[0])
		os.Exit(0)
	}

	out := diagio.New(os.Stdout)
	driver := vm.NewDriver(vm.WithDriverOutput(out))

	for _, path := range with {
		if err := driver.RunFile(path); err != nil {
			fatal(err, *debug)
		}
	}

	switch len(args) {
	case 1:
		if err := driver.RunFile(args[0]); err != nil {
			fatal(err, *debug)
		}
	default:
		repl(driver, out, debug)
	}

	if *dump {
		dumpState(driver, out)
	}
	os.Exit(0)
}

func repl(driver *vm.Driver, out io.Writer, debug *bool) {
	fmt.Fprintln(out, "sforth ready. type bye to quit.")
	in := bufio.NewReader(driver.Stdin)
	for {
		line, ok := readLine(in)
		if !ok {
			return
		}
		if err := driver.RunString(line); err != nil {
			fatal(err, *debug)
		}
		if driver.Inst.Quit() {
			return
		}
		fmt.Fprintln(out, "    ok")
	}
}

// readLine reads one line terminated by newline, EOF, or a NUL byte.
func readLine(r *bufio.Reader) (string, bool) {
	var b strings.Builder
	for {
		c, err := r.ReadByte()
		if err != nil {
			if b.Len() == 0 {
				return "", false
			}
			return b.String(), true
		}
		if c == '\n' || c == 0 {
			return b.String(), true
		}
		b.WriteByte(c)
	}
}

func dumpState(driver *vm.Driver, out io.Writer) {
	fmt.Fprintf(out, "depth: %d data: %v here: %d\n", driver.Inst.Depth(), driver.Inst.Data(), driver.Inst.Here)
}

// fatal reports a genuine internal VM error (never triggered by an ordinary
// program, however malformed) to stderr and exits, independent of the
// always-0 exit code the REPL and file loader otherwise use.
func fatal(err error, debug bool) {
	if debug {
		fmt.Fprintf(os.Stderr, "sforth: internal error: %+v\n", err)
	} else {
		fmt.Fprintf(os.Stderr, "sforth: internal error: %v\n", err)
	}
	os.Exit(1)
}

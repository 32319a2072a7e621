package vm_test

import (
	"strings"
	"testing"

	"sforth/vm"
)

func TestDisassembleShowsCalleeIdentifier(t *testing.T) {
	d := vm.NewDictionary()
	d.Install(vm.Word{Identifier: "HELPER"})
	caller := vm.Word{Identifier: "CALLER"}
	idx, _ := d.LookupUser("HELPER")
	out := vm.Disassemble(callWord(caller, idx), d)
	if !strings.Contains(out, "HELPER") {
		t.Fatalf("disassembly does not name the callee: %q", out)
	}
}

func TestDisassembleShowsStringLiteral(t *testing.T) {
	w := vm.Word{Identifier: "GREET"}
	w = putstrWord(w, "hi there")
	out := vm.Disassemble(w, nil)
	if !strings.Contains(out, "hi there") {
		t.Fatalf("disassembly does not show the literal: %q", out)
	}
}

// callWord and putstrWord build single-instruction programs directly,
// since Word's Program/Strings fields are plain exported slices.
func callWord(w vm.Word, calleeIdx int) vm.Word {
	prog := []byte{byte(vm.OpCall)}
	prog = append(prog, encodeImm(calleeIdx)...)
	w.Program = prog
	return w
}

func putstrWord(w vm.Word, s string) vm.Word {
	w.Strings = []string{s}
	prog := []byte{byte(vm.OpPutstr)}
	prog = append(prog, encodeImm(0)...)
	w.Program = prog
	return w
}

func encodeImm(n int) []byte {
	u := uint32(n)
	return []byte{byte(u >> 24), byte(u >> 16), byte(u >> 8), byte(u)}
}

package vm_test

import (
	"testing"

	"sforth/vm"
)

func TestDictionaryBuiltinOrderAndLock(t *testing.T) {
	d := vm.NewDictionary()
	want := []string{
		"+", "-", "/", "*", "MOD", "DUP", "OVER", "ROT", "SWAP", "DROP",
		"DEPTH", ".", "CR", "<", ">", "1+", "1-", "<=", ">=", "=", "BYE",
		"@", "!", "HERE", "ALLOT", "EMIT",
	}
	if d.Lock != len(want) {
		t.Fatalf("lock index = %d, want %d", d.Lock, len(want))
	}
	for i, name := range want {
		if d.Words[i].Identifier != name {
			t.Fatalf("slot %d = %q, want %q", i, d.Words[i].Identifier, name)
		}
	}
}

func TestDictionaryInstallAppendsAfterLock(t *testing.T) {
	d := vm.NewDictionary()
	idx := d.Install(vm.Word{Identifier: "SQ"})
	if idx != d.Lock {
		t.Fatalf("first user word installed at %d, want %d", idx, d.Lock)
	}
	if _, ok := d.LookupBuiltin("SQ"); ok {
		t.Fatalf("SQ should not resolve as a built-in")
	}
	got, ok := d.LookupUser("SQ")
	if !ok || got != idx {
		t.Fatalf("LookupUser(SQ) = %d, %v, want %d, true", got, ok, idx)
	}
}

func TestDictionaryRedefinitionKeepsSlot(t *testing.T) {
	d := vm.NewDictionary()
	first := d.Install(vm.Word{Identifier: "SQ", Program: []byte{byte(vm.OpDup)}})
	second := d.Install(vm.Word{Identifier: "SQ", Program: []byte{byte(vm.OpDup), byte(vm.OpMul)}})
	if first != second {
		t.Fatalf("redefinition changed slot index: %d -> %d", first, second)
	}
	if len(d.Words[second].Program) != 2 {
		t.Fatalf("redefinition did not replace program in place")
	}
}

func TestDictionaryLookupPrefersLowestSlot(t *testing.T) {
	d := vm.NewDictionary()
	idx, ok := d.Lookup("+")
	if !ok || idx != 0 {
		t.Fatalf("Lookup(+) = %d, %v, want 0, true", idx, ok)
	}
}

func TestCompileOnlyForms(t *testing.T) {
	for _, name := range []string{"IF", "THEN", "ELSE", "DO", "LOOP", "I", "RECURSE"} {
		if !vm.IsCompileOnly(name) {
			t.Fatalf("%q should be compile-only", name)
		}
	}
	for _, name := range []string{"DUP", "BEGIN", "UNTIL", "LOOP+"} {
		if vm.IsCompileOnly(name) {
			t.Fatalf("%q should not be compile-only", name)
		}
	}
}

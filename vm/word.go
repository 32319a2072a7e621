package vm

import "encoding/binary"

// Word is a named entry in the Dictionary: an identifier, a compiled byte
// program and the word-local string literals its PUTSTR instructions index
// into.
type Word struct {
	Identifier string
	Program    []byte
	Strings    []string
}

// addOp appends a single opcode byte with no operand.
func (w *Word) addOp(op Op) {
	w.Program = append(w.Program, byte(op))
}

// addOpImm appends an opcode byte followed by its 4 byte big-endian
// immediate operand.
func (w *Word) addOpImm(op Op, n Cell) {
	w.Program = append(w.Program, byte(op))
	w.Program = appendImmediate(w.Program, n)
}

// addOpPatch appends an opcode byte followed by a 4 byte placeholder
// immediate, returning the byte offset of the placeholder so the compiler
// can record it on a patch stack and fill it in later.
func (w *Word) addOpPatch(op Op) int {
	w.Program = append(w.Program, byte(op))
	off := len(w.Program)
	w.Program = appendImmediate(w.Program, 0)
	return off
}

// addString appends s to the word's string table and returns its index.
func (w *Word) addString(s string) Cell {
	w.Strings = append(w.Strings, s)
	return Cell(len(w.Strings) - 1)
}

// concat appends other's program verbatim (built-in inlining). Built-in
// bodies never contain jumps, so no offsets need adjusting.
func (w *Word) concat(other Word) {
	w.Program = append(w.Program, other.Program...)
}

// size returns the current length of the word's byte program, used as a
// patch-stack offset by the compiler.
func (w *Word) size() int {
	return len(w.Program)
}

func appendImmediate(b []byte, n Cell) []byte {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(n))
	return append(b, buf[:]...)
}

func decodeImmediate(b []byte) Cell {
	return Cell(binary.BigEndian.Uint32(b))
}

// patchImmediate overwrites the 4 byte immediate at byte offset off.
func (w *Word) patchImmediate(off int, n Cell) {
	binary.BigEndian.PutUint32(w.Program[off:off+4], uint32(n))
}

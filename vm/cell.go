// Package vm implements the sforth language pipeline: tokenizer, dictionary,
// single-pass compiler and threaded bytecode interpreter. A Driver (see
// driver.go) ties the three together into the read-compile-or-execute loop
// that the REPL and file loader drive.
package vm

// Cell is the universal value type: a signed 32 bit integer used for stack
// slots, literals, arithmetic results and memory addresses alike.
type Cell int32

// Capacities for the bounded stacks and the linear memory region.
const (
	DataStackSize  = 256   // data stack depth
	LoopStackSize  = 128   // loop-control stack depth, in cells (2 per frame)
	MemorySize     = 65536 // flat byte-addressable memory region
	IfStackSize    = 64    // open IF/ELSE/THEN nesting depth
	DoStackSize    = 128   // open DO/LOOP nesting depth
	BeginStackSize = 128   // open BEGIN/UNTIL nesting depth
)

package vm

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// Instance is one interpreter: its data stack, loop-control stack, linear
// memory and quit flag, plus the dictionary it executes CALLs against. Each
// Instance is independent; nothing is shared across instances.
type Instance struct {
	Dict *Dictionary
	Out  io.Writer

	data [DataStackSize]Cell
	sp   int // number of cells currently on the data stack

	loop [LoopStackSize]Cell
	lsp  int // number of cells currently on the loop stack (2 per frame)

	Memory [MemorySize]byte
	Here   Cell

	quit bool
}

// Option configures an Instance at construction time.
type Option func(*Instance)

// WithOutput directs program output and diagnostics to w (default
// io.Discard if never set).
func WithOutput(w io.Writer) Option {
	return func(i *Instance) { i.Out = w }
}

// NewInstance creates a fresh Instance bound to dict.
func NewInstance(dict *Dictionary, opts ...Option) *Instance {
	i := &Instance{Dict: dict, Out: io.Discard}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Quit reports whether BYE has been executed on this instance.
func (i *Instance) Quit() bool { return i.quit }

func (i *Instance) diag(format string, args ...interface{}) {
	fmt.Fprintf(i.Out, format, args...)
}

// Push pushes v onto the data stack. On overflow it reports the condition
// and discards v.
func (i *Instance) Push(v Cell) {
	if i.sp >= DataStackSize {
		i.diag("stack overflow !\n")
		return
	}
	i.data[i.sp] = v
	i.sp++
}

// Pop pops and returns the top of the data stack. On underflow it reports
// the condition and returns 0.
func (i *Instance) Pop() Cell {
	if i.sp == 0 {
		i.diag("stack underflow !\n")
		return 0
	}
	i.sp--
	return i.data[i.sp]
}

// has reports whether the data stack holds at least n cells, reporting
// underflow if not (mirrors original_source's forth_has).
func (i *Instance) has(n int) bool {
	if i.sp >= n {
		return true
	}
	i.diag("stack underflow !\n")
	return false
}

// Depth returns the current data stack depth.
func (i *Instance) Depth() int { return i.sp }

// Data returns a snapshot of the data stack, bottom first.
func (i *Instance) Data() []Cell {
	out := make([]Cell, i.sp)
	copy(out, i.data[:i.sp])
	return out
}

// Run executes w's byte program to completion, or until BYE sets the quit
// flag, or a nested CALL/RECURSE does the same. CALL and RECURSE recurse
// through the host call stack — recursion depth is bounded only by it. A
// malformed byte program (an out-of-range jump or CALL target, which a
// correct compiler never emits) is recovered here and reported as an error
// rather than corrupting the host process.
func (i *Instance) Run(w Word) (err error) {
	if i.quit {
		return nil
	}
	pc := 0
	defer func() {
		if e := recover(); e != nil {
			err = errors.Errorf("internal error running %q at pc %d, stack depth %d: %v", w.Identifier, pc, i.sp, e)
		}
	}()

	for pc < len(w.Program) {
		op := Op(w.Program[pc])
		pc++
		switch op {
		case OpPush:
			i.Push(decodeImmediate(w.Program[pc:]))
			pc += 4
		case OpDrop:
			i.Pop()
		case OpAdd:
			rhs, lhs := i.Pop(), i.Pop()
			i.Push(lhs + rhs)
		case OpSub:
			rhs, lhs := i.Pop(), i.Pop()
			i.Push(lhs - rhs)
		case OpMul:
			rhs, lhs := i.Pop(), i.Pop()
			i.Push(lhs * rhs)
		case OpDiv:
			rhs, lhs := i.Pop(), i.Pop()
			if rhs == 0 {
				i.diag("division by zero !\n")
				i.Push(0)
				break
			}
			i.Push(lhs / rhs)
		case OpMod:
			rhs, lhs := i.Pop(), i.Pop()
			if rhs == 0 {
				i.diag("division by zero !\n")
				i.Push(0)
				break
			}
			i.Push(lhs % rhs)
		case OpDup:
			v := i.Pop()
			i.Push(v)
			i.Push(v)
		case OpOver:
			if i.has(2) {
				i.Push(i.data[i.sp-2])
			}
		case OpRot:
			if i.has(3) {
				a := i.data[i.sp-3]
				b := i.data[i.sp-2]
				c := i.data[i.sp-1]
				i.data[i.sp-3] = b
				i.data[i.sp-2] = c
				i.data[i.sp-1] = a
			}
		case OpSwap:
			if i.has(2) {
				i.data[i.sp-1], i.data[i.sp-2] = i.data[i.sp-2], i.data[i.sp-1]
			}
		case OpDepth:
			i.Push(Cell(i.sp))
		case OpDot:
			i.diag("%d ", i.Pop())
		case OpCr:
			i.diag("\n")
		case OpEmit:
			i.diag("%c", byte(i.Pop()))
		case OpPutstr:
			idx := decodeImmediate(w.Program[pc:])
			pc += 4
			i.diag("%s", w.Strings[idx])
		case OpCall:
			idx := decodeImmediate(w.Program[pc:])
			pc += 4
			if err := i.Run(i.Dict.Words[idx]); err != nil {
				return err
			}
			if i.quit {
				return nil
			}
		case OpRecurse:
			if err := i.Run(w); err != nil {
				return err
			}
			if i.quit {
				return nil
			}
		case OpJump:
			pc = int(decodeImmediate(w.Program[pc:]))
		case OpJz:
			target := int(decodeImmediate(w.Program[pc:]))
			pc += 4
			if i.Pop() == 0 {
				pc = target
			}
		case OpJnz:
			target := int(decodeImmediate(w.Program[pc:]))
			pc += 4
			if i.Pop() != 0 {
				pc = target
			}
		case OpDo:
			index := i.Pop()
			limit := i.Pop()
			i.pushLoop(index)
			i.pushLoop(limit)
		case OpLoop:
			target := int(decodeImmediate(w.Program[pc:]))
			pc += 4
			pc = i.loopBranch(target, pc)
		case OpLoopPlus:
			target := int(decodeImmediate(w.Program[pc:]))
			pc += 4
			step := i.Pop()
			if i.lsp >= 2 {
				i.loop[i.lsp-2] += step - 1
			}
			pc = i.loopBranch(target, pc)
		case OpI:
			if i.lsp >= 2 {
				i.Push(i.loop[i.lsp-2])
			}
		case OpInc:
			if i.has(1) {
				i.data[i.sp-1]++
			}
		case OpDec:
			if i.has(1) {
				i.data[i.sp-1]--
			}
		case OpLess:
			rhs, lhs := i.Pop(), i.Pop()
			i.Push(boolCell(lhs < rhs))
		case OpGreater:
			rhs, lhs := i.Pop(), i.Pop()
			i.Push(boolCell(lhs > rhs))
		case OpEqual:
			rhs, lhs := i.Pop(), i.Pop()
			i.Push(boolCell(lhs == rhs))
		case OpBye:
			i.quit = true
			return nil
		case OpHere:
			i.Push(i.Here)
		case OpAllot:
			i.Here += i.Pop()
		case OpGetMem:
			addr := i.Pop()
			i.Push(Cell(i.Memory[uint16(addr)]))
		case OpSetMem:
			addr := i.Pop()
			v := i.Pop()
			i.Memory[uint16(addr)] = byte(v)
		}
	}
	return nil
}

// pushLoop pushes v onto the loop-control stack, silently discarding it on
// overflow; no diagnostic is reported for this condition.
func (i *Instance) pushLoop(v Cell) {
	if i.lsp >= LoopStackSize {
		return
	}
	i.loop[i.lsp] = v
	i.lsp++
}

// loopBranch implements the shared LOOP/LOOP+ compare-and-branch tail: the
// lower slot of the current frame is the index, the upper slot its limit.
func (i *Instance) loopBranch(target, fallthroughPC int) int {
	if i.lsp < 2 {
		return fallthroughPC
	}
	limit := i.loop[i.lsp-1]
	i.loop[i.lsp-2]++
	index := i.loop[i.lsp-2]
	if index < limit {
		return target
	}
	i.lsp -= 2
	return fallthroughPC
}

func boolCell(b bool) Cell {
	if b {
		return 1
	}
	return 0
}

package vm

import (
	"fmt"
	"strings"
)

// Disassemble renders w's byte program as one line per instruction: the
// byte offset, the opcode's symbolic name, and — for opcodes carrying an
// immediate — the operand, resolved where that's meaningful (a CALL target
// is shown as the callee's identifier, a PUTSTR operand as its literal
// string) rather than as a bare offset or string-table index.
func Disassemble(w Word, dict *Dictionary) string {
	var b strings.Builder
	pc := 0
	for pc < len(w.Program) {
		off := pc
		op := Op(w.Program[pc])
		pc++
		fmt.Fprintf(&b, "%04d %s", off, op)
		if opHasOperand(op) {
			imm := decodeImmediate(w.Program[pc:])
			pc += 4
			switch op {
			case OpCall:
				if name, ok := calleeName(dict, int(imm)); ok {
					fmt.Fprintf(&b, " %s", name)
				} else {
					fmt.Fprintf(&b, " %d", imm)
				}
			case OpPutstr:
				if int(imm) >= 0 && int(imm) < len(w.Strings) {
					fmt.Fprintf(&b, " %q", w.Strings[imm])
				} else {
					fmt.Fprintf(&b, " %d", imm)
				}
			default:
				fmt.Fprintf(&b, " %d", imm)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func calleeName(dict *Dictionary, idx int) (string, bool) {
	if dict == nil || idx < 0 || idx >= len(dict.Words) {
		return "", false
	}
	return dict.Words[idx].Identifier, true
}

package vm

import "github.com/Gabrial-8467/falcon/internal/value"

// fuseLoops is a narrow post-pass peephole optimization: it recognizes the
// `local += 1` tail compileForStmt always emits for a step of exactly 1
// (LOAD_LOCAL s; LOAD_LOCAL t; ADD; STORE_LOCAL s; POP, where t was
// initialized from the integer constant 1) and replaces it with a single
// INC_LOCAL instruction. It is deliberately narrow — it does not attempt to
// fuse the loop's comparison or recognize FAST_COUNT-eligible bodies; both
// are left as a possible future pass.
func fuseLoops(code *value.Code) {
	ins := code.Instructions
	remove := make([]bool, len(ins))
	fused := false
	for i := 0; i+4 < len(ins); i++ {
		if ins[i].Op != value.OpLoadLocal || ins[i+1].Op != value.OpLoadLocal ||
			ins[i+2].Op != value.OpAdd || ins[i+3].Op != value.OpStoreLocal ||
			ins[i+4].Op != value.OpPop || ins[i].A != ins[i+3].A {
			continue
		}
		if remove[i] || remove[i+1] || remove[i+2] || remove[i+3] || remove[i+4] {
			continue
		}
		stepSlot := ins[i+1].A
		if !stepInitializedToOne(code, ins[:i], stepSlot) {
			continue
		}
		ins[i] = value.Instruction{Op: value.OpIncLocal, A: ins[i].A}
		remove[i+1], remove[i+2], remove[i+3], remove[i+4] = true, true, true, true
		fused = true
	}
	if !fused {
		return
	}

	newIns := make([]value.Instruction, 0, len(ins))
	oldToNew := make([]int, len(ins)+1)
	for i, instr := range ins {
		oldToNew[i] = len(newIns)
		if !remove[i] {
			newIns = append(newIns, instr)
		}
	}
	oldToNew[len(ins)] = len(newIns)

	for i := range newIns {
		switch newIns[i].Op {
		case value.OpJump, value.OpJumpIfFalse, value.OpJumpIfTrue:
			newIns[i].A = oldToNew[newIns[i].A]
		}
	}
	code.Instructions = newIns
}

// stepInitializedToOne reports whether slot was last assigned, anywhere in
// prefix, from the integer constant 1 — i.e. LOAD_CONST(1); STORE_LOCAL(slot)
// — and is written nowhere else in the code, so it still holds 1 when the
// tail runs (a loop variable that merely starts at 1 does not qualify).
func stepInitializedToOne(code *value.Code, prefix []value.Instruction, slot int) bool {
	writes := 0
	for _, in := range code.Instructions {
		if (in.Op == value.OpStoreLocal || in.Op == value.OpIncLocal) && in.A == slot {
			writes++
		}
	}
	if writes != 1 {
		return false
	}
	for i := len(prefix) - 1; i > 0; i-- {
		if prefix[i].Op == value.OpStoreLocal && prefix[i].A == slot {
			prev := prefix[i-1]
			if prev.Op != value.OpLoadConst {
				return false
			}
			iv, ok := code.Consts[prev.A].(value.Int)
			return ok && iv.Value == 1
		}
	}
	return false
}

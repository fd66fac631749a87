/*
 * librelogic - LD arena to instruction-stream lowering
 *
 * Copyright (c) 2024, Antonis Kalamaras
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package codegen lowers a ladder diagram arena (internal/ldparse) into the
// same linear instr.Instruction stream the instruction-list front end
// produces, so the VM never has to know which front end compiled a rung.
package codegen

import (
	"github.com/kalamara/librelogic-go/internal/instr"
	"github.com/kalamara/librelogic-go/internal/ldparse"
	"github.com/kalamara/librelogic-go/internal/plcerr"
	"github.com/kalamara/librelogic-go/internal/rung"
)

// Program lowers every assignment node produced by ldparse.Grid into r, one
// coil's worth of instructions at a time, in the order the grid resolved
// them.
func Program(a *ldparse.Arena, assignments []int) (*rung.Rung, error) {
	r := rung.New()
	for _, idx := range assignments {
		if err := genAssignment(r, a, idx); err != nil {
			return nil, err
		}
	}
	if err := r.Intern(); err != nil {
		return nil, err
	}
	return r, nil
}

func genAssignment(r *rung.Rung, a *ldparse.Arena, idx int) error {
	n := a.Get(idx)
	if n.Tag != ldparse.TagAssignment {
		return plcerr.New(plcerr.BadProg, "expected an assignment node")
	}
	if n.Right == ldparse.NilIndex {
		return plcerr.New(plcerr.BadProg, "coil has no driving condition")
	}
	if err := genExpr(r, a, n.Right, true, instr.Ld, instr.ModNorm); err != nil {
		return err
	}

	left := a.Get(n.Left)
	if left.Tag != ldparse.TagIdentifier {
		return plcerr.New(plcerr.BadProg, "coil target is not an identifier")
	}

	var ins instr.Instruction
	ins.Operand = left.Operand
	ins.Addr = left.Addr
	switch n.Coil {
	case ldparse.CoilNormal:
		ins.Op = instr.St
		ins.Mod = instr.ModNorm
	case ldparse.CoilDown:
		ins.Op = instr.St
		ins.Mod = instr.ModNeg
	case ldparse.CoilSet:
		ins.Op = instr.Set
		ins.Mod = instr.ModNorm
	case ldparse.CoilReset:
		ins.Op = instr.Reset
		ins.Mod = instr.ModNorm
	default:
		return plcerr.New(plcerr.BadCoil, "unknown coil shape")
	}
	return r.Append(ins)
}

// genExpr emits the instructions that leave node's boolean/arithmetic value
// in the accumulator. first marks that node sits at the very start of the
// rung's condition chain (its leftmost leaf becomes a plain LD); otherwise
// that leftmost leaf is combined into the chain with combineOp/combineMod,
// per codegen.c's gen_expr/gen_expr_left/gen_expr_right.
func genExpr(r *rung.Rung, a *ldparse.Arena, idx int, first bool, combineOp instr.Opcode, combineMod instr.Modifier) error {
	n := a.Get(idx)
	switch n.Tag {
	case ldparse.TagIdentifier:
		ins := instr.Instruction{Operand: n.Operand, Addr: n.Addr}
		if first {
			ins.Op = instr.Ld
			if n.Negate {
				ins.Mod = instr.ModNeg
			} else {
				ins.Mod = instr.ModNorm
			}
		} else {
			ins.Op = combineOp
			ins.Mod = combineMod
			if n.Negate && combineMod == instr.ModNorm {
				ins.Mod = instr.ModNeg
			}
		}
		return r.Append(ins)

	case ldparse.TagExpression:
		if n.B == ldparse.NilIndex {
			return plcerr.New(plcerr.BadProg, "expression has no left-hand chain")
		}
		if err := genExpr(r, a, n.B, first, combineOp, combineMod); err != nil {
			return err
		}
		operand := a.Get(n.A)
		if operand.Tag == ldparse.TagIdentifier {
			return genExpr(r, a, n.A, false, n.Op, instr.ModNorm)
		}
		// The new branch is itself compound: suspend the accumulated
		// chain on the push-stack under n.Op, evaluate the branch fresh,
		// then fold it back in with a POP.
		if err := genExpr(r, a, n.A, false, n.Op, instr.ModPush); err != nil {
			return err
		}
		return r.Append(instr.Instruction{Op: instr.Pop})

	default:
		return plcerr.New(plcerr.BadProg, "unexpected node in expression position")
	}
}

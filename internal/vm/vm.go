/*
 * librelogic - VM: per-rung instruction dispatch
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

// Package vm is the stack-based virtual machine: per-instruction dispatch
// against one rung's accumulator and push-stack, under a per-cycle
// microsecond timeout.
package vm

import (
	"time"

	"github.com/kalamara/librelogic-go/internal/image"
	"github.com/kalamara/librelogic-go/internal/instr"
	"github.com/kalamara/librelogic-go/internal/plcerr"
	"github.com/kalamara/librelogic-go/internal/rung"
)

// Execute runs r's instructions from the top against img, aborting with
// plcerr.Timeout if budget elapses before the next instruction starts.
// Partial effects from already-executed instructions are preserved
// (spec.md §4.4's per-cycle timeout note).
func Execute(img *image.Image, r *rung.Rung, budget time.Duration) error {
	r.Reset()
	start := time.Now()
	for int(r.PC) < len(r.Instructions) {
		if time.Since(start) >= budget {
			return plcerr.New(plcerr.Timeout, "rung exceeded cycle budget")
		}
		if err := step(img, r); err != nil {
			return err
		}
	}
	return nil
}

// step dispatches the instruction at r.PC and advances the program counter,
// mirroring plclib.c's instruct().
func step(img *image.Image, r *rung.Rung) error {
	ins := r.Instructions[r.PC]
	advance := true
	var err error

	switch {
	case ins.Op == instr.Nop || ins.Op == instr.Cal || ins.Op == instr.Ret:
		// reserved, no observable effect.
	case ins.Op == instr.Pop:
		err = r.Pop(r.Acc)
	case ins.Op == instr.Jmp:
		advance = false
		if ins.Mod == instr.ModCond && !r.Acc.Truthy() {
			r.PC++
		} else {
			r.PC = ins.Target
		}
	case ins.Op == instr.Set:
		err = handleSet(img, r, ins)
	case ins.Op == instr.Reset:
		err = handleReset(img, r, ins)
	case ins.Op == instr.Ld:
		var v = r.Acc
		v, err = load(img, ins.Operand, ins.Addr, ins.Mod == instr.ModNeg)
		if err == nil {
			r.Acc = v
		}
	case ins.Op == instr.St:
		err = store(img, ins.Operand, ins.Addr, r.Acc, ins.Mod == instr.ModNeg)
	case ins.Op.IsStackable():
		err = handleStackable(img, r, ins)
	default:
		err = plcerr.New(plcerr.BadOperator, ins.Op.String())
	}

	if err != nil {
		return err
	}
	if advance {
		r.PC++
	}
	return nil
}

func condSkip(mod instr.Modifier, truthy bool) bool {
	return mod == instr.ModCond && !truthy
}

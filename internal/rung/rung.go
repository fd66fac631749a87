/*
 * librelogic - rung storage: instruction vector, push-stack, label table
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

// Package rung holds one compiled ladder branch: its instructions, the
// source lines they came from (for diagnostics), the per-rung accumulator,
// and the bounded push-stack used by pushed stackable opcodes.
package rung

import (
	"fmt"

	"github.com/kalamara/librelogic-go/internal/instr"
	"github.com/kalamara/librelogic-go/internal/kernel"
	"github.com/kalamara/librelogic-go/internal/plcerr"
)

// MaxStack is the hard bound on push-stack depth (spec.md §3 invariant).
const MaxStack = 255

// MaxInstructions bounds one rung's compiled length.
const MaxInstructions = 4096

type stackEntry struct {
	Op     instr.Opcode
	Width  instr.Width
	Negate bool
	Value  kernel.Value
}

// Rung is one compiled ladder branch.
type Rung struct {
	Instructions []instr.Instruction
	Lines        []string
	Acc          kernel.Value
	PC           uint32
	stack        []stackEntry
}

// New returns an empty rung ready to receive appended instructions.
func New() *Rung {
	return &Rung{
		Instructions: make([]instr.Instruction, 0, 64),
		stack:        make([]stackEntry, 0, MaxStack),
	}
}

// AppendLine records one line of original source text for diagnostics.
func (r *Rung) AppendLine(text string) { r.Lines = append(r.Lines, text) }

// Append adds one instruction, rejecting a duplicate (non-empty) label and
// enforcing the rung length bound.
func (r *Rung) Append(i instr.Instruction) error {
	if len(r.Instructions) >= MaxInstructions {
		return plcerr.New(plcerr.BadProg, "rung exceeds maximum instruction count")
	}
	if i.Label != "" {
		if _, ok := r.Lookup(i.Label); ok {
			return plcerr.New(plcerr.BadProg, fmt.Sprintf("duplicate label %q", i.Label))
		}
	}
	r.Instructions = append(r.Instructions, i)
	return nil
}

// Lookup returns the index of the instruction carrying label, if any.
func (r *Rung) Lookup(label string) (uint32, bool) {
	if label == "" {
		return 0, false
	}
	for i, ins := range r.Instructions {
		if ins.Label == label {
			return uint32(i), true
		}
	}
	return 0, false
}

// Intern resolves every pending JMP label to its target instruction index,
// failing BADPROG if any label is unresolved (spec.md §4.2).
func (r *Rung) Intern() error {
	for i := range r.Instructions {
		ins := &r.Instructions[i]
		if ins.Op != instr.Jmp || ins.JumpName == "" {
			continue
		}
		idx, ok := r.Lookup(ins.JumpName)
		if !ok {
			return plcerr.New(plcerr.BadProg, fmt.Sprintf("unresolved jump target %q", ins.JumpName))
		}
		ins.Target = idx
		ins.JumpName = ""
	}
	return nil
}

// Push suspends (op, width, negate, value) onto the bounded push-stack.
func (r *Rung) Push(op instr.Opcode, w instr.Width, negate bool, v kernel.Value) error {
	if len(r.stack) >= MaxStack {
		return plcerr.New(plcerr.BadIndex, "push-stack depth exceeds bound")
	}
	r.stack = append(r.stack, stackEntry{Op: op, Width: w, Negate: negate, Value: v})
	return nil
}

// Pop combines the top of the push-stack with val (the stacked value is the
// left operand, val the right, per rung.c's pop()) and sets Acc to the
// result. Popping an empty stack is a no-op, matching the original.
func (r *Rung) Pop(val kernel.Value) error {
	if len(r.stack) == 0 {
		return nil
	}
	top := r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
	result, err := kernel.Operate(top.Op, top.Width, top.Negate, top.Value, val)
	if err != nil {
		return err
	}
	r.Acc = result
	return nil
}

// StackDepth reports the current push-stack depth, used to test the
// stack-balance invariant at rung exit.
func (r *Rung) StackDepth() int { return len(r.stack) }

// Reset clears the accumulator, program counter and push-stack before a
// fresh execution of the rung.
func (r *Rung) Reset() {
	r.Acc = kernel.Value{}
	r.PC = 0
	r.stack = r.stack[:0]
}

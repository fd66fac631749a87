/*
 * librelogic - VM stackable opcode dispatch (AND..LE)
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

package vm

import (
	"github.com/kalamara/librelogic-go/internal/image"
	"github.com/kalamara/librelogic-go/internal/instr"
	"github.com/kalamara/librelogic-go/internal/kernel"
	"github.com/kalamara/librelogic-go/internal/rung"
)

// handleStackable dispatches AND/OR/XOR/ADD/SUB/MUL/DIV/GT/GE/EQ/NE/LT/LE,
// per plclib.c's handle_stackable: a pushed modifier suspends (op, type,
// acc) on the rung's stack and loads the new operand without combining;
// otherwise the operand is combined with acc in place.
func handleStackable(img *image.Image, r *rung.Rung, ins instr.Instruction) error {
	operand, err := load(img, ins.Operand, ins.Addr, false)
	if err != nil {
		return err
	}
	width := ins.Addr.Width()
	negate := ins.Mod == instr.ModNeg

	if ins.Mod == instr.ModPush {
		if err := r.Push(ins.Op, width, negate, r.Acc); err != nil {
			return err
		}
		r.Acc = operand
		return nil
	}

	result, err := kernel.Operate(ins.Op, width, negate, r.Acc, operand)
	if err != nil {
		return err
	}
	r.Acc = result
	return nil
}

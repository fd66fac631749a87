/*
 * librelogic - typed accumulator arithmetic
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

// Package kernel implements the single typed operation every stackable
// opcode performs against the accumulator: operate(op, width, acc, operand).
package kernel

import (
	"fmt"
	"math"

	"github.com/kalamara/librelogic-go/internal/instr"
	"github.com/kalamara/librelogic-go/internal/plcerr"
)

// FloatPrecision is the equality tolerance for real comparisons and the
// floor below which real division is treated as a hardware-class error.
const FloatPrecision = 1e-6

// Value is the single typed accumulator slot: a uint64 view or a float64
// view, selected out-of-band by the operand descriptor.
type Value struct {
	U    uint64
	R    float64
	Real bool
}

// Bool returns a Value carrying a boolean in its integer view.
func Bool(b bool) Value {
	if b {
		return Value{U: 1}
	}
	return Value{U: 0}
}

// Truthy reports whether v is non-zero under its own type.
func (v Value) Truthy() bool {
	if v.Real {
		return v.R != 0
	}
	return v.U != 0
}

func mask(w instr.Width) uint64 {
	switch w {
	case instr.Width8:
		return 0xff
	case instr.Width16:
		return 0xffff
	case instr.Width32:
		return 0xffffffff
	case instr.Width64:
		return math.MaxUint64
	default:
		return 1
	}
}

// Operate applies op to (acc, operand) at the given width, per spec.md
// §4.1: AND/OR/XOR are bitwise with the negate modifier flipping only the
// second (operand) value; ADD/SUB/MUL/DIV wrap on overflow; comparisons
// yield a width-1 boolean. Real operands use FloatPrecision tolerance for
// equality and fail division below that magnitude.
func Operate(op instr.Opcode, w instr.Width, negate bool, acc, operand Value) (Value, error) {
	if acc.Real != operand.Real {
		return Value{}, fmt.Errorf("librelogic: operate %s: mixed real/integer operands", op)
	}
	if acc.Real {
		return operateReal(op, negate, acc.R, operand.R)
	}
	return operateInt(op, w, negate, acc.U, operand.U)
}

func operateInt(op instr.Opcode, w instr.Width, negate bool, a, b uint64) (Value, error) {
	m := mask(w)
	a &= m
	b &= m
	if negate && op.IsBitwise() {
		b = (^b) & m
	}
	switch op {
	case instr.And:
		return Value{U: (a & b) & m}, nil
	case instr.Or:
		return Value{U: (a | b) & m}, nil
	case instr.Xor:
		return Value{U: (a ^ b) & m}, nil
	case instr.Add:
		return Value{U: (a + b) & m}, nil
	case instr.Sub:
		return Value{U: (a - b) & m}, nil
	case instr.Mul:
		return Value{U: (a * b) & m}, nil
	case instr.Div:
		if b == 0 {
			return Value{}, fmt.Errorf("librelogic: operate DIV: divide by zero")
		}
		return Value{U: (a / b) & m}, nil
	case instr.Gt:
		return Bool(a > b), nil
	case instr.Ge:
		return Bool(a >= b), nil
	case instr.Eq:
		return Bool(a == b), nil
	case instr.Ne:
		return Bool(a != b), nil
	case instr.Lt:
		return Bool(a < b), nil
	case instr.Le:
		return Bool(a <= b), nil
	default:
		return Value{}, fmt.Errorf("librelogic: operate: %s is not a stackable opcode", op)
	}
}

func operateReal(op instr.Opcode, negate bool, a, b float64) (Value, error) {
	if negate {
		b = -b
	}
	switch op {
	case instr.Add:
		return Value{Real: true, R: a + b}, nil
	case instr.Sub:
		return Value{Real: true, R: a - b}, nil
	case instr.Mul:
		return Value{Real: true, R: a * b}, nil
	case instr.Div:
		if math.Abs(b) < FloatPrecision {
			return Value{}, plcerr.New(plcerr.Hardware, "operate DIV: divisor below float precision")
		}
		return Value{Real: true, R: a / b}, nil
	case instr.Gt:
		return Bool(a > b), nil
	case instr.Ge:
		return Bool(a >= b), nil
	case instr.Eq:
		return Bool(math.Abs(a-b) < FloatPrecision), nil
	case instr.Ne:
		return Bool(math.Abs(a-b) >= FloatPrecision), nil
	case instr.Lt:
		return Bool(a < b), nil
	case instr.Le:
		return Bool(a <= b), nil
	case instr.And, instr.Or, instr.Xor:
		return Value{}, fmt.Errorf("librelogic: operate %s: bitwise ops undefined on real operands", op)
	default:
		return Value{}, fmt.Errorf("librelogic: operate: %s is not a stackable opcode", op)
	}
}

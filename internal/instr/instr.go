/*
 * librelogic - opcode, operand and instruction model
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

// Package instr defines the opcode/operand/modifier triple every front end
// (IL, LD) lowers to and the VM dispatches on.
package instr

// Opcode names one micro-instruction. Order matches the ranking used by the
// front ends to decide which modifiers and operand shapes are legal.
type Opcode uint8

const (
	Nop Opcode = iota
	Pop
	Jmp
	Cal
	Ret
	Set
	Reset
	Ld
	St
	And
	Or
	Xor
	Add
	Sub
	Mul
	Div
	Gt
	Ge
	Eq
	Ne
	Lt
	Le
	numOpcodes
)

// IsStackable reports whether op is one of the bitwise/arithmetic/comparison
// opcodes that combine the accumulator with an operand (or push/pop).
func (op Opcode) IsStackable() bool { return op >= And && op < numOpcodes }

// IsBitwise reports whether op is AND/OR/XOR.
func (op Opcode) IsBitwise() bool { return op >= And && op <= Xor }

// IsArithmetic reports whether op is ADD/SUB/MUL/DIV.
func (op Opcode) IsArithmetic() bool { return op >= Add && op <= Div }

// IsComparison reports whether op is GT/GE/EQ/NE/LT/LE.
func (op Opcode) IsComparison() bool { return op >= Gt && op <= Le }

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) {
		return opcodeNames[op]
	}
	return "???"
}

var opcodeNames = [...]string{
	Nop: "NOP", Pop: "POP", Jmp: "JMP", Cal: "CAL", Ret: "RET",
	Set: "SET", Reset: "RESET", Ld: "LD", St: "ST",
	And: "AND", Or: "OR", Xor: "XOR",
	Add: "ADD", Sub: "SUB", Mul: "MUL", Div: "DIV",
	Gt: "GT", Ge: "GE", Eq: "EQ", Ne: "NE", Lt: "LT", Le: "LE",
}

// Modifier is the single decoration attached to an opcode: negate, push,
// conditional, or normal. Exactly one applies per instruction.
type Modifier uint8

const (
	ModNorm Modifier = iota
	ModNeg
	ModPush
	ModCond
)

func (m Modifier) String() string {
	switch m {
	case ModNeg:
		return "!"
	case ModPush:
		return "("
	case ModCond:
		return "?"
	default:
		return " "
	}
}

// Operand names the kind of process-image register an instruction addresses.
type Operand uint8

const (
	OpInput Operand = iota
	OpRealInput
	OpRising
	OpFalling
	OpMemory
	OpRealMemory
	OpCommand
	OpBlinkout
	OpTimeout
	OpOutput
	OpRealOutput
	// Write-side aliases. The parser rewrites a read-position operand to
	// its alias when it appears as a store/set/reset target.
	OpContact
	OpStart
	OpPulsein
	OpRealContact
	OpRealMemin
	OpWrite
	numOperands
)

// IsCoil reports whether op is a store-target (write-side) operand kind.
func (op Operand) IsCoil() bool { return op >= OpContact && op < numOperands }

// Width is the bit width of a multi-byte access; Width1 addresses a single
// bit instead of a byte span.
type Width uint8

const (
	Width1  Width = 1
	Width8  Width = 8
	Width16 Width = 16
	Width32 Width = 32
	Width64 Width = 64
)

// Addr is a (byte, bit) operand address. Bit < 8 addresses one bit within
// Byte; Bit in {8,16,32,64} declares a big-endian multi-byte access of that
// width starting at Byte.
type Addr struct {
	Byte uint32
	Bit  uint8
}

// Width returns the access width implied by a.Bit.
func (a Addr) Width() Width {
	switch a.Bit {
	case 8, 16, 32, 64:
		return Width(a.Bit)
	default:
		return Width1
	}
}

// Instruction is one compiled micro-instruction: opcode, modifier, operand
// descriptor, and (for JMP) a resolved target index.
type Instruction struct {
	Label    string // optional label this instruction is targeted by
	Op       Opcode
	Mod      Modifier
	Operand  Operand
	Addr     Addr
	Target   uint32 // resolved JMP destination (index into the rung)
	JumpName string // unresolved JMP label text, cleared once interned
}

/*
 * librelogic - instruction list (IL) front end
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

// Package ilparse lexes one Instruction List source line into one
// instruction, per spec.md §4.2's grammar:
//
//	[label:] operator [modifier [ %operand[type] byte[/bit] | jump_label ] ] [; comment]
package ilparse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kalamara/librelogic-go/internal/instr"
	"github.com/kalamara/librelogic-go/internal/plcerr"
	"github.com/kalamara/librelogic-go/internal/rung"
)

var mnemonics = map[string]instr.Opcode{
	"NOP": instr.Nop, "POP": instr.Pop, "JMP": instr.Jmp,
	"CAL": instr.Cal, "RET": instr.Ret,
	"SET": instr.Set, "RST": instr.Reset,
	"LD": instr.Ld, "ST": instr.St,
	"AND": instr.And, "OR": instr.Or, "XOR": instr.Xor,
	"ADD": instr.Add, "SUB": instr.Sub, "MUL": instr.Mul, "DIV": instr.Div,
	"GT": instr.Gt, "GE": instr.Ge, "EQ": instr.Eq, "NE": instr.Ne,
	"LT": instr.Lt, "LE": instr.Le,
}

var operandChars = map[byte]instr.Operand{
	'i': instr.OpInput, 'r': instr.OpRising, 'f': instr.OpFalling,
	'm': instr.OpMemory, 't': instr.OpTimeout, 'c': instr.OpCommand,
	'b': instr.OpBlinkout, 'q': instr.OpOutput,
}

// toLower lowercases one ASCII letter, mirroring read_operand's
// tolower(line[index]) — operand letters are case-insensitive; read vs.
// store is resolved by position (checkOperand), not by case.
func toLower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

// Program parses a full IL source (one instruction per non-blank line)
// into a finalized, label-interned rung.
func Program(lines []string) (*rung.Rung, error) {
	r := rung.New()
	for i, raw := range lines {
		trimmed := strings.TrimSpace(stripComment(raw))
		if trimmed == "" {
			continue
		}
		r.AppendLine(raw)
		ins, err := Line(trimmed)
		if err != nil {
			if pe, ok := err.(*plcerr.Error); ok {
				pe.Line = i + 1
			}
			return nil, err
		}
		if ins.Op == instr.Nop {
			continue
		}
		if err := r.Append(ins); err != nil {
			return nil, err
		}
	}
	if err := r.Intern(); err != nil {
		return nil, err
	}
	return r, nil
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, ';'); i >= 0 {
		return line[:i]
	}
	return line
}

// Line parses a single trimmed, comment-stripped IL line into an
// instruction.
func Line(line string) (instr.Instruction, error) {
	var ins instr.Instruction

	label, body := trunkLabel(line)
	ins.Label = label
	body = strings.TrimSpace(body)
	if body == "" {
		return instr.Instruction{Op: instr.Nop}, nil
	}

	mod, modPos := readModifier(body)
	opName := strings.TrimSpace(body[:modPos])
	rest := strings.TrimSpace(body[modPos:])
	if len(rest) > 0 && strings.ContainsAny(rest[:1], "(!? ") {
		rest = strings.TrimSpace(rest[1:])
	}

	op, ok := mnemonics[strings.ToUpper(opName)]
	if !ok {
		return ins, plcerr.New(plcerr.BadOperator, fmt.Sprintf("unknown operator %q", opName))
	}
	ins.Op = op
	ins.Mod = mod

	if err := checkModifier(op, mod); err != nil {
		return ins, err
	}

	if op == instr.Jmp {
		ins.JumpName = rest
		return ins, nil
	}
	if op == instr.Nop || op == instr.Pop || op == instr.Cal || op == instr.Ret {
		return ins, nil
	}

	operand, addr, err := parseArguments(rest)
	if err != nil {
		return ins, err
	}
	ins.Operand = operand
	ins.Addr = addr

	if err := checkOperand(&ins); err != nil {
		return ins, err
	}
	return ins, nil
}

// trunkLabel splits "label: body" on the rightmost ':' that precedes the
// rest of the line, per parser-il.c's trunk_label.
func trunkLabel(line string) (label, body string) {
	if i := strings.LastIndexByte(line, ':'); i >= 0 {
		return strings.TrimSpace(line[:i]), line[i+1:]
	}
	return "", line
}

// readModifier reports which of '(', '!', '?', ' ' occurs anywhere in body,
// checked in that order — a '(' anywhere marks push even if a space occurs
// earlier in the line — per parser-il.c's read_modifier.
func readModifier(body string) (instr.Modifier, int) {
	if i := strings.IndexByte(body, '('); i >= 0 {
		return instr.ModPush, i
	}
	if i := strings.IndexByte(body, '!'); i >= 0 {
		return instr.ModNeg, i
	}
	if i := strings.IndexByte(body, '?'); i >= 0 {
		return instr.ModCond, i
	}
	if i := strings.IndexByte(body, ' '); i >= 0 {
		return instr.ModNorm, i
	}
	return instr.ModNorm, len(body)
}

func checkModifier(op instr.Opcode, mod instr.Modifier) error {
	switch {
	case op.IsBitwise() || op == instr.Ld || op == instr.St:
		if mod != instr.ModNeg && mod != instr.ModNorm {
			return plcerr.New(plcerr.BadOperator, fmt.Sprintf("%s accepts only ! or normal modifier", op))
		}
	case op.IsArithmetic() || op.IsComparison():
		if mod != instr.ModPush && mod != instr.ModNorm {
			return plcerr.New(plcerr.BadOperator, fmt.Sprintf("%s accepts only ( or normal modifier", op))
		}
	case op == instr.Set || op == instr.Reset || op == instr.Jmp:
		if mod != instr.ModCond && mod != instr.ModNorm {
			return plcerr.New(plcerr.BadOperator, fmt.Sprintf("%s accepts only ? or normal modifier", op))
		}
	}
	return nil
}

// parseArguments parses "%<char>[f]<byte>[/<bit>]".
func parseArguments(s string) (instr.Operand, instr.Addr, error) {
	if len(s) == 0 || s[0] != '%' {
		return 0, instr.Addr{}, plcerr.New(plcerr.BadChar, "expected operand starting with %")
	}
	s = s[1:]
	if len(s) == 0 {
		return 0, instr.Addr{}, plcerr.New(plcerr.BadChar, "missing operand character")
	}
	kind, ok := operandChars[toLower(s[0])]
	if !ok {
		return 0, instr.Addr{}, plcerr.New(plcerr.BadChar, fmt.Sprintf("unknown operand char %q", s[0]))
	}
	s = s[1:]
	if len(s) > 0 && toLower(s[0]) == 'f' {
		s = s[1:]
		switch kind {
		case instr.OpInput:
			kind = instr.OpRealInput
		case instr.OpMemory:
			kind = instr.OpRealMemory
		case instr.OpOutput:
			kind = instr.OpRealOutput
		default:
			return 0, instr.Addr{}, plcerr.New(plcerr.BadOperand, "real type not valid for this operand kind")
		}
	}

	byteStr, bitStr, hasBit := strings.Cut(s, "/")
	byteStr = strings.TrimSpace(byteStr)
	if byteStr == "" {
		return 0, instr.Addr{}, plcerr.New(plcerr.BadIndex, "missing byte index")
	}
	n, err := strconv.ParseUint(byteStr, 10, 32)
	if err != nil {
		return 0, instr.Addr{}, plcerr.New(plcerr.BadIndex, "byte index is not numeric")
	}
	addr := instr.Addr{Byte: uint32(n), Bit: 8}
	if hasBit {
		bitStr = strings.TrimSpace(bitStr)
		b, err := strconv.ParseUint(bitStr, 10, 8)
		if err != nil || b > 7 {
			return 0, instr.Addr{}, plcerr.New(plcerr.BadIndex, "bit index must be 0-7")
		}
		addr.Bit = uint8(b)
	}
	return kind, addr, nil
}

// checkOperand rewrites a read-side operand to its store-target alias when
// the opcode is SET/RESET/ST, per parser-il.c's check_operand.
func checkOperand(ins *instr.Instruction) error {
	switch ins.Op {
	case instr.Set, instr.Reset, instr.St:
		switch ins.Operand {
		case instr.OpOutput:
			ins.Operand = instr.OpContact
		case instr.OpMemory:
			ins.Operand = instr.OpPulsein
		case instr.OpTimeout:
			ins.Operand = instr.OpStart
		case instr.OpRealOutput:
			ins.Operand = instr.OpRealContact
		case instr.OpRealMemory:
			ins.Operand = instr.OpRealMemin
		case instr.OpCommand:
			ins.Operand = instr.OpWrite
		default:
			return plcerr.New(plcerr.BadOperand, fmt.Sprintf("operand not valid as a store target for %s", ins.Op))
		}
		if ins.Op != instr.St {
			switch ins.Operand {
			case instr.OpContact, instr.OpStart, instr.OpPulsein:
			default:
				return plcerr.New(plcerr.BadCoil, fmt.Sprintf("%s target must be Q, T or M", ins.Op))
			}
		}
	default:
		switch ins.Operand {
		case instr.OpContact, instr.OpStart, instr.OpPulsein, instr.OpRealContact, instr.OpRealMemin, instr.OpWrite:
			return plcerr.New(plcerr.BadOperand, "coil-class operand not valid in a read position")
		}
	}
	return nil
}

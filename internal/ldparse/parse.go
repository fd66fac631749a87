/*
 * librelogic - ladder diagram (LD) grid front end
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

// Package ldparse parses a fixed-width grid of Ladder Diagram text into an
// arena-indexed AST, per spec.md §4.3's two-pass (horizontal then
// vertical) algorithm.
package ldparse

import (
	"fmt"
	"strconv"

	"github.com/kalamara/librelogic-go/internal/instr"
	"github.com/kalamara/librelogic-go/internal/plcerr"
)

var readOperandChars = map[byte]instr.Operand{
	'i': instr.OpInput, 'r': instr.OpRising, 'f': instr.OpFalling,
	'm': instr.OpMemory, 't': instr.OpTimeout, 'c': instr.OpCommand,
	'b': instr.OpBlinkout,
}

var coilOperandChars = map[byte]instr.Operand{
	'Q': instr.OpContact, 'T': instr.OpStart, 'M': instr.OpPulsein, 'W': instr.OpWrite,
}

type row struct {
	text     string
	cursor   int
	stmt     int // arena index, NilIndex if empty
	resolved bool
	negate   bool
}

// Grid parses a fixed-width LD program (one string per grid row) into an
// arena and the list of top-level assignment node indices it produced, one
// per resolved row that carried a coil.
func Grid(lines []string) (*Arena, []int, error) {
	arena := NewArena()
	rows := make([]*row, len(lines))
	for i, l := range lines {
		rows[i] = &row{text: l, stmt: NilIndex}
	}

	for !allResolved(rows) {
		for i, r := range rows {
			if r.resolved {
				continue
			}
			if _, err := horizontalParse(arena, r); err != nil {
				return nil, nil, plcerr.At(plcerr.BadChar, i+1, err.Error())
			}
		}
		if allResolved(rows) {
			break
		}
		col := nextColumn(rows)
		if col < 0 {
			return nil, nil, plcerr.New(plcerr.BadProg, "grid has unresolved rows with no pending node")
		}
		if err := verticalParse(arena, rows, col); err != nil {
			return nil, nil, err
		}
	}

	var assignments []int
	for i, r := range rows {
		if !r.resolved {
			return nil, nil, plcerr.At(plcerr.BadProg, i+1, "line never resolved to a coil")
		}
		if r.stmt != NilIndex && arena.Get(r.stmt).Tag == TagAssignment {
			assignments = append(assignments, r.stmt)
		}
	}
	return arena, assignments, nil
}

func allResolved(rows []*row) bool {
	for _, r := range rows {
		if !r.resolved {
			return false
		}
	}
	return true
}

// nextColumn returns the smallest cursor position among unresolved rows
// (the next '+' column to revisit), or -1 if none remain.
func nextColumn(rows []*row) int {
	bestCol := -1
	for _, r := range rows {
		if r.resolved {
			continue
		}
		if bestCol == -1 || r.cursor < bestCol {
			bestCol = r.cursor
		}
	}
	return bestCol
}

// horizontalParse walks one row left to right from its cursor, building an
// AND-chain of identifiers, stopping (paused=true) at a '+' node or
// resolving the row at a coil or end of text, per parser-ld.c's
// parse_ld_line.
func horizontalParse(a *Arena, r *row) (paused bool, err error) {
	s := r.text
	for r.cursor < len(s) {
		c := s[r.cursor]
		switch {
		case c == ' ' || c == '.' || c == '#' || c == '\t' || c == '-' || c == '|':
			r.cursor++
		case c == '!':
			r.negate = true
			r.cursor++
		case c == '+':
			return true, nil
		case c == '(':
			return false, handleCoil(a, r, CoilNormal)
		case c == '[':
			return false, handleCoil(a, r, CoilSet)
		case c == ']':
			return false, handleCoil(a, r, CoilReset)
		case c == ')':
			return false, handleCoil(a, r, CoilDown)
		case c == ';':
			r.resolved = true
			return false, nil
		default:
			if op, ok := readOperandChars[c]; ok {
				if err := handleOperand(a, r, op); err != nil {
					return false, err
				}
				continue
			}
			return false, fmt.Errorf("unexpected character %q", c)
		}
	}
	r.resolved = true
	return false, nil
}

func handleOperand(a *Arena, r *row, op instr.Operand) error {
	r.cursor++ // consume operand char
	s := r.text
	if r.cursor < len(s) && s[r.cursor] == 'f' {
		r.cursor++
		switch op {
		case instr.OpInput:
			op = instr.OpRealInput
		case instr.OpMemory:
			op = instr.OpRealMemory
		default:
			return fmt.Errorf("real type not valid for this operand")
		}
	}
	addr, err := readAddr(r)
	if err != nil {
		return err
	}
	ident := a.Identifier(op, addr, r.negate)
	r.negate = false
	if r.stmt == NilIndex {
		r.stmt = ident
	} else {
		r.stmt = a.Expression(instr.And, instr.ModPush, ident, r.stmt)
	}
	return nil
}

func handleCoil(a *Arena, r *row, coil CoilType) error {
	r.cursor++ // consume bracket char
	s := r.text
	if r.cursor >= len(s) {
		return fmt.Errorf("unterminated coil")
	}
	ch := s[r.cursor]
	op, ok := coilOperandChars[ch]
	if !ok {
		return fmt.Errorf("unknown coil operand %q", ch)
	}
	r.cursor++
	addr, err := readAddr(r)
	if err != nil {
		return err
	}
	// consume the matching close character, if present.
	if r.cursor < len(s) {
		switch s[r.cursor] {
		case ')', ']', '(', '[':
			r.cursor++
		}
	}
	left := a.Identifier(op, addr, false)
	r.stmt = a.Assignment(left, r.stmt, coil)
	r.resolved = true
	return nil
}

func readAddr(r *row) (instr.Addr, error) {
	s := r.text
	start := r.cursor
	for r.cursor < len(s) && s[r.cursor] >= '0' && s[r.cursor] <= '9' {
		r.cursor++
	}
	if r.cursor == start {
		return instr.Addr{}, fmt.Errorf("expected byte index")
	}
	n, err := strconv.ParseUint(s[start:r.cursor], 10, 32)
	if err != nil {
		return instr.Addr{}, err
	}
	addr := instr.Addr{Byte: uint32(n), Bit: 8}
	if r.cursor < len(s) && s[r.cursor] == '/' {
		r.cursor++
		bstart := r.cursor
		for r.cursor < len(s) && s[r.cursor] >= '0' && s[r.cursor] <= '9' {
			r.cursor++
		}
		if r.cursor == bstart {
			return instr.Addr{}, fmt.Errorf("expected bit index")
		}
		b, err := strconv.ParseUint(s[bstart:r.cursor], 10, 8)
		if err != nil || b > 7 {
			return instr.Addr{}, fmt.Errorf("bit index must be 0-7")
		}
		addr.Bit = uint8(b)
	}
	return addr, nil
}

// verticalParse OR-combines every '+' node at column col across the
// longest run of consecutive rows that are still vertically connected
// there (node or vertical-wire char), then advances each participating
// row's cursor past the node, per parser-ld.c's vertical_parse.
func verticalParse(a *Arena, rows []*row, col int) error {
	var or int = NilIndex
	var stripe []int
	flush := func() {
		for _, idx := range stripe {
			rows[idx].stmt = or
			rows[idx].cursor = col + 1
		}
		stripe = stripe[:0]
		or = NilIndex
	}
	for i, r := range rows {
		if col < len(r.text) && r.text[col] == '|' {
			continue // vertical wire: the stripe stays connected
		}
		if r.resolved || r.cursor != col || col >= len(r.text) || r.text[col] != '+' {
			if len(stripe) > 0 {
				flush()
			}
			continue
		}
		_ = i
		if or == NilIndex {
			or = r.stmt
		} else if r.stmt != NilIndex {
			or = a.Expression(instr.Or, instr.ModPush, r.stmt, or)
		}
		stripe = append(stripe, indexOf(rows, r))
	}
	if len(stripe) > 0 {
		flush()
	}
	return nil
}

func indexOf(rows []*row, target *row) int {
	for i, r := range rows {
		if r == target {
			return i
		}
	}
	return -1
}

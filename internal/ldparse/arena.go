/*
 * librelogic - LD abstract syntax tree arena
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

package ldparse

import "github.com/kalamara/librelogic-go/internal/instr"

// Tag discriminates the three node shapes the LD grammar produces. Nodes
// live in a flat Arena rather than a pointer graph: a '+' node shared by
// several rows is rewired by assigning an arena index, never by aliasing
// a C-style pointer, which sidesteps the double-free risk the original LD
// parser's own comments acknowledge on cyclical branches (spec.md §9).
type Tag int

const (
	TagIdentifier Tag = iota
	TagExpression
	TagAssignment
)

// CoilType names which of the four LD coil shapes an assignment targets.
type CoilType int

const (
	CoilNormal CoilType = iota
	CoilDown
	CoilSet
	CoilReset
)

// NilIndex marks an absent child in an Arena.
const NilIndex = -1

// Node is one arena-indexed AST node: identifier, expression, or
// assignment, tagged by Tag.
type Node struct {
	Tag Tag

	// TagIdentifier
	Operand instr.Operand
	Addr    instr.Addr
	Negate  bool

	// TagExpression
	Op    instr.Opcode
	Mod   instr.Modifier
	A, B  int // arena indices of operands; B may be NilIndex

	// TagAssignment
	Left, Right int
	Coil        CoilType
}

// Arena owns every node built while parsing one rung's grid. It is dropped
// wholesale after codegen; individual nodes are never freed.
type Arena struct {
	nodes []Node
}

// NewArena returns an empty arena.
func NewArena() *Arena { return &Arena{} }

// Get returns the node at idx.
func (a *Arena) Get(idx int) *Node { return &a.nodes[idx] }

// Identifier appends an identifier node and returns its index.
func (a *Arena) Identifier(op instr.Operand, addr instr.Addr, negate bool) int {
	a.nodes = append(a.nodes, Node{Tag: TagIdentifier, Operand: op, Addr: addr, Negate: negate})
	return len(a.nodes) - 1
}

// Expression appends an AND/OR expression node combining a and b (b may be
// NilIndex for a bare identifier wrapped for uniformity) and returns its
// index.
func (a *Arena) Expression(op instr.Opcode, mod instr.Modifier, x, y int) int {
	a.nodes = append(a.nodes, Node{Tag: TagExpression, Op: op, Mod: mod, A: x, B: y})
	return len(a.nodes) - 1
}

// Assignment appends a coil assignment node and returns its index.
func (a *Arena) Assignment(left, right int, coil CoilType) int {
	a.nodes = append(a.nodes, Node{Tag: TagAssignment, Left: left, Right: right, Coil: coil})
	return len(a.nodes) - 1
}

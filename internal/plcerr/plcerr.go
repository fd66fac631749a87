/*
 * librelogic - error taxonomy
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

// Package plcerr is the single signed error-code surface used across the
// compiler, VM and scan engine.
package plcerr

import "fmt"

// Kind is one member of the flat error taxonomy.
type Kind int

const (
	Overflow Kind = -(iota + 1)
	Timeout
	Hardware
	BadOperator
	BadCoil
	BadIndex
	BadOperand
	BadFile
	BadChar
	BadProg
)

func (k Kind) String() string {
	switch k {
	case Overflow:
		return "OVFLOW"
	case Timeout:
		return "TIMEOUT"
	case Hardware:
		return "HARDWARE"
	case BadOperator:
		return "BADOPERATOR"
	case BadCoil:
		return "BADCOIL"
	case BadIndex:
		return "BADINDEX"
	case BadOperand:
		return "BADOPERAND"
	case BadFile:
		return "BADFILE"
	case BadChar:
		return "BADCHAR"
	case BadProg:
		return "BADPROG"
	default:
		return "OK"
	}
}

// Error lets a bare Kind stand in as the target of errors.Is(err, Kind),
// matched through Error.Is below.
func (k Kind) Error() string { return k.String() }

// Error carries a Kind plus the context (source line, operand, etc) that
// produced it.
type Error struct {
	Kind Kind
	Line int    // 1-based source line, 0 if not applicable
	Text string // offending source text or message detail
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("librelogic: %s at line %d: %s", e.Kind, e.Line, e.Text)
	}
	return fmt.Sprintf("librelogic: %s: %s", e.Kind, e.Text)
}

// Is makes errors.Is(err, plcerr.Timeout) etc. work against a Kind sentinel.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && e.Kind == k
}

// New constructs an *Error of the given kind.
func New(k Kind, text string) *Error { return &Error{Kind: k, Text: text} }

// At constructs an *Error annotated with the source line it was raised on.
func At(k Kind, line int, text string) *Error { return &Error{Kind: k, Line: line, Text: text} }

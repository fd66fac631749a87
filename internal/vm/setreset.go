/*
 * librelogic - VM SET/RESET coil handling
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
	"github.com/kalamara/librelogic-go/internal/plcerr"
	"github.com/kalamara/librelogic-go/internal/rung"
)

// handleSet drives Q/T/M set-side state, skipping entirely when the
// modifier is conditional and the accumulator is false (plclib.c's
// handle_set).
func handleSet(img *image.Image, r *rung.Rung, ins instr.Instruction) error {
	if condSkip(ins.Mod, r.Acc.Truthy()) {
		return nil
	}
	switch ins.Operand {
	case instr.OpContact:
		idx := int(ins.Addr.Byte)*8 + int(ins.Addr.Bit)
		if idx < 0 || idx >= len(img.DQ) {
			return plcerr.New(plcerr.BadIndex, "digital output index out of range")
		}
		img.DQ[idx].SetPending = true
		img.DQ[idx].ResetPending = false
	case instr.OpStart:
		if int(ins.Addr.Byte) >= len(img.Timers) {
			return plcerr.New(plcerr.BadIndex, "timer index out of range")
		}
		img.Timers[ins.Addr.Byte].Start = true
		img.Timers[ins.Addr.Byte].Reset = false
	case instr.OpPulsein:
		if int(ins.Addr.Byte) >= len(img.Counters) {
			return plcerr.New(plcerr.BadIndex, "memory counter index out of range")
		}
		img.Counters[ins.Addr.Byte].Set = true
		img.Counters[ins.Addr.Byte].Reset = false
	default:
		return plcerr.New(plcerr.BadCoil, "SET target is not a coil operand")
	}
	return nil
}

// handleReset is handleSet's mirror image.
func handleReset(img *image.Image, r *rung.Rung, ins instr.Instruction) error {
	if condSkip(ins.Mod, r.Acc.Truthy()) {
		return nil
	}
	switch ins.Operand {
	case instr.OpContact:
		idx := int(ins.Addr.Byte)*8 + int(ins.Addr.Bit)
		if idx < 0 || idx >= len(img.DQ) {
			return plcerr.New(plcerr.BadIndex, "digital output index out of range")
		}
		img.DQ[idx].ResetPending = true
		img.DQ[idx].SetPending = false
	case instr.OpStart:
		if int(ins.Addr.Byte) >= len(img.Timers) {
			return plcerr.New(plcerr.BadIndex, "timer index out of range")
		}
		img.Timers[ins.Addr.Byte].Reset = true
		img.Timers[ins.Addr.Byte].Start = false
	case instr.OpPulsein:
		if int(ins.Addr.Byte) >= len(img.Counters) {
			return plcerr.New(plcerr.BadIndex, "memory counter index out of range")
		}
		img.Counters[ins.Addr.Byte].Reset = true
		img.Counters[ins.Addr.Byte].Set = false
	default:
		return plcerr.New(plcerr.BadCoil, "RESET target is not a coil operand")
	}
	return nil
}

/*
 * librelogic - VM load/store: operand address resolution
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
	"github.com/kalamara/librelogic-go/internal/plcerr"
)

// load reads the operand named by (op, addr) into a kernel.Value, applying
// the LD modifier's negate rule: boolean reads invert, multi-byte integer
// reads complement modulo 2^w, real reads flip sign (spec.md §4.4 LD).
func load(img *image.Image, op instr.Operand, addr instr.Addr, negate bool) (kernel.Value, error) {
	switch op {
	case instr.OpInput:
		return loadDigital(img.DI, img.RawDI, addr, negate, func(s image.DigitalSlot) bool { return s.Level })
	case instr.OpRising:
		return loadDigital(img.DI, img.RawDI, addr, negate, func(s image.DigitalSlot) bool { return s.Rising })
	case instr.OpFalling:
		return loadDigital(img.DI, img.RawDI, addr, negate, func(s image.DigitalSlot) bool { return s.Falling })
	case instr.OpOutput:
		return loadDigital(img.DQ, img.RawDQ, addr, negate, func(s image.DigitalSlot) bool { return s.Level })
	case instr.OpBlinkout:
		if int(addr.Byte) >= len(img.Blinkers) {
			return kernel.Value{}, plcerr.New(plcerr.BadIndex, "blinker index out of range")
		}
		return kernel.Bool(xorNeg(img.Blinkers[addr.Byte].Q, negate)), nil
	case instr.OpTimeout:
		if int(addr.Byte) >= len(img.Timers) {
			return kernel.Value{}, plcerr.New(plcerr.BadIndex, "timer index out of range")
		}
		return kernel.Bool(xorNeg(img.Timers[addr.Byte].Q, negate)), nil
	case instr.OpMemory:
		return loadCounter(img, addr, negate)
	case instr.OpRealMemory:
		return loadRealMem(img, addr, negate)
	case instr.OpRealInput:
		return loadAnalog(img.AI, addr, negate)
	case instr.OpRealOutput:
		return loadAnalog(img.AQ, addr, negate)
	case instr.OpCommand:
		return kernel.Value{U: img.Command}, nil
	default:
		return kernel.Value{}, plcerr.New(plcerr.BadOperand, "operand kind not valid in load position")
	}
}

func xorNeg(b, negate bool) bool {
	if negate {
		return !b
	}
	return b
}

func loadDigital(slots []image.DigitalSlot, raw []byte, addr instr.Addr, negate bool, pick func(image.DigitalSlot) bool) (kernel.Value, error) {
	if addr.Width() == instr.Width1 {
		idx := int(addr.Byte)*8 + int(addr.Bit)
		if idx < 0 || idx >= len(slots) {
			return kernel.Value{}, plcerr.New(plcerr.BadIndex, "digital bit index out of range")
		}
		return kernel.Bool(xorNeg(pick(slots[idx]), negate)), nil
	}
	u, err := readRawBigEndian(raw, addr)
	if err != nil {
		return kernel.Value{}, err
	}
	if negate {
		u = (^u) & widthMask(addr.Width())
	}
	return kernel.Value{U: u}, nil
}

func readRawBigEndian(raw []byte, addr instr.Addr) (uint64, error) {
	n := int(addr.Width()) / 8
	if int(addr.Byte)+n > len(raw) {
		return 0, plcerr.New(plcerr.BadIndex, "multi-byte access out of range")
	}
	var v uint64
	for i := 0; i < n; i++ {
		v = (v << 8) | uint64(raw[int(addr.Byte)+i])
	}
	return v, nil
}

func writeRawBigEndian(raw []byte, addr instr.Addr, v uint64) error {
	n := int(addr.Width()) / 8
	if int(addr.Byte)+n > len(raw) {
		return plcerr.New(plcerr.BadIndex, "multi-byte access out of range")
	}
	for i := n - 1; i >= 0; i-- {
		raw[int(addr.Byte)+i] = byte(v)
		v >>= 8
	}
	return nil
}

func widthMask(w instr.Width) uint64 {
	switch w {
	case instr.Width8:
		return 0xff
	case instr.Width16:
		return 0xffff
	case instr.Width32:
		return 0xffffffff
	case instr.Width64:
		return ^uint64(0)
	default:
		return 1
	}
}

// loadCounter reads a memory counter register. addr.Byte selects the
// register; addr.Bit selects how many of its low-order bytes participate,
// big-endian within that one register (see DESIGN.md's note on multi-byte
// memory addressing).
func loadCounter(img *image.Image, addr instr.Addr, negate bool) (kernel.Value, error) {
	if int(addr.Byte) >= len(img.Counters) {
		return kernel.Value{}, plcerr.New(plcerr.BadIndex, "memory counter index out of range")
	}
	v := img.Counters[addr.Byte].Value & widthMask(addr.Width())
	if negate {
		v = (^v) & widthMask(addr.Width())
	}
	return kernel.Value{U: v}, nil
}

func loadRealMem(img *image.Image, addr instr.Addr, negate bool) (kernel.Value, error) {
	if int(addr.Byte) >= len(img.RealMem) {
		return kernel.Value{}, plcerr.New(plcerr.BadIndex, "real memory index out of range")
	}
	v := img.RealMem[addr.Byte].Value
	if negate {
		v = -v
	}
	return kernel.Value{Real: true, R: v}, nil
}

func loadAnalog(chans []image.AnalogChannel, addr instr.Addr, negate bool) (kernel.Value, error) {
	if int(addr.Byte) >= len(chans) {
		return kernel.Value{}, plcerr.New(plcerr.BadIndex, "analog channel index out of range")
	}
	v := chans[addr.Byte].Value
	if negate {
		v = -v
	}
	return kernel.Value{Real: true, R: v}, nil
}

// store writes acc to the coil-class operand named by (op, addr), per
// spec.md §4.4 ST: booleans normalised, multi-byte big-endian, W updates
// the command register.
func store(img *image.Image, op instr.Operand, addr instr.Addr, acc kernel.Value, negate bool) error {
	switch op {
	case instr.OpContact:
		return storeDigitalCoil(img.DQ, img.RawDQ, addr, acc, negate)
	case instr.OpPulsein:
		return storeCounter(img, addr, acc, negate)
	case instr.OpStart:
		return storeTimerStart(img, addr, acc)
	case instr.OpRealContact:
		return storeRealAnalog(img.AQ, addr, acc, negate)
	case instr.OpRealMemin:
		return storeRealMem(img, addr, acc, negate)
	case instr.OpWrite:
		img.Command = acc.U
		return nil
	default:
		return plcerr.New(plcerr.BadCoil, "operand kind not valid in store position")
	}
}

func storeDigitalCoil(slots []image.DigitalSlot, raw []byte, addr instr.Addr, acc kernel.Value, negate bool) error {
	if addr.Width() == instr.Width1 {
		idx := int(addr.Byte)*8 + int(addr.Bit)
		if idx < 0 || idx >= len(slots) {
			return plcerr.New(plcerr.BadIndex, "digital coil index out of range")
		}
		level := acc.Truthy()
		if negate {
			level = !level
		}
		slots[idx].Level = level
		return nil
	}
	v := acc.U
	if negate {
		v = -v
	}
	return writeRawBigEndian(raw, addr, v)
}

func storeCounter(img *image.Image, addr instr.Addr, acc kernel.Value, negate bool) error {
	if int(addr.Byte) >= len(img.Counters) {
		return plcerr.New(plcerr.BadIndex, "memory counter index out of range")
	}
	c := &img.Counters[addr.Byte]
	if c.ReadOnly {
		return plcerr.New(plcerr.BadOperand, "memory counter is read-only")
	}
	v := acc.U
	if negate {
		v = -v
	}
	m := widthMask(addr.Width())
	c.Value = (c.Value &^ m) | (v & m)
	return nil
}

func storeRealMem(img *image.Image, addr instr.Addr, acc kernel.Value, negate bool) error {
	if int(addr.Byte) >= len(img.RealMem) {
		return plcerr.New(plcerr.BadIndex, "real memory index out of range")
	}
	r := &img.RealMem[addr.Byte]
	if r.ReadOnly {
		return plcerr.New(plcerr.BadOperand, "real memory register is read-only")
	}
	v := acc.R
	if negate {
		v = -v
	}
	r.Value = v
	return nil
}

func storeRealAnalog(chans []image.AnalogChannel, addr instr.Addr, acc kernel.Value, negate bool) error {
	if int(addr.Byte) >= len(chans) {
		return plcerr.New(plcerr.BadIndex, "analog channel index out of range")
	}
	v := acc.R
	if negate {
		v = -v
	}
	chans[addr.Byte].Value = v
	return nil
}

func storeTimerStart(img *image.Image, addr instr.Addr, acc kernel.Value) error {
	if int(addr.Byte) >= len(img.Timers) {
		return plcerr.New(plcerr.BadIndex, "timer index out of range")
	}
	img.Timers[addr.Byte].Start = acc.Truthy()
	return nil
}

/*
 * librelogic - gpiod driver backend
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

package driver

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/warthog618/go-gpiocdev"
)

// gpiod drives real GPIO chip lines through libgpiod's character device ABI.
// Digital bit n maps to one requested line; analog and Data channels are not
// representable on a GPIO chip: DataRead and DataWrite always return an
// error, and Fetch/Flush leave the analog buffers untouched.
type gpiod struct {
	mu     sync.Mutex
	chip   string
	inputs []*gpiocdev.Line
	outs   []*gpiocdev.Line
}

func newGpiod() *gpiod { return &gpiod{} }

func (g *gpiod) Enable() error  { return nil }
func (g *gpiod) Disable() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, l := range g.inputs {
		if l != nil {
			l.Close()
		}
	}
	for _, l := range g.outs {
		if l != nil {
			l.Close()
		}
	}
	return nil
}

func (g *gpiod) Fetch(digitalIn []byte, analogIn []uint64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range digitalIn {
		digitalIn[i] = 0
	}
	for bit, l := range g.inputs {
		if l == nil {
			continue
		}
		v, err := l.Value()
		if err != nil {
			return fmt.Errorf("driver: gpiod read line %d: %w", bit, err)
		}
		if v != 0 {
			digitalIn[bit/8] |= 1 << uint(bit%8)
		}
	}
	return nil
}

func (g *gpiod) Flush(digitalOut []byte, analogOut []uint64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for bit, l := range g.outs {
		if l == nil {
			continue
		}
		v := 0
		if digitalOut[bit/8]&(1<<uint(bit%8)) != 0 {
			v = 1
		}
		if err := l.SetValue(v); err != nil {
			return fmt.Errorf("driver: gpiod write line %d: %w", bit, err)
		}
	}
	return nil
}

func (g *gpiod) DIORead(bit int) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if bit < 0 || bit >= len(g.inputs) || g.inputs[bit] == nil {
		return false, fmt.Errorf("driver: gpiod line %d not requested as input", bit)
	}
	v, err := g.inputs[bit].Value()
	return v != 0, err
}

func (g *gpiod) DIOWrite(bit int, v bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if bit < 0 || bit >= len(g.outs) || g.outs[bit] == nil {
		return fmt.Errorf("driver: gpiod line %d not requested as output", bit)
	}
	val := 0
	if v {
		val = 1
	}
	return g.outs[bit].SetValue(val)
}

func (g *gpiod) DataRead(channel int) (uint64, error) {
	return 0, fmt.Errorf("driver: gpiod has no analog/data channels")
}

func (g *gpiod) DataWrite(channel int, v uint64) error {
	return fmt.Errorf("driver: gpiod has no analog/data channels")
}

// Configure reads "chip" (e.g. "gpiochip0"), "inputs" and "outputs" as
// comma-separated line offset lists, grounded on hardware-gpiod.c's
// plc_gpiod_configure line-offset table.
func (g *gpiod) Configure(params map[string]string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	chip := params["chip"]
	if chip == "" {
		chip = "gpiochip0"
	}
	g.chip = chip

	inputOffsets, err := parseOffsets(params["inputs"])
	if err != nil {
		return err
	}
	outputOffsets, err := parseOffsets(params["outputs"])
	if err != nil {
		return err
	}

	if len(inputOffsets) > 0 {
		maxBit := maxInt(inputOffsets)
		g.inputs = make([]*gpiocdev.Line, maxBit+1)
		for _, off := range inputOffsets {
			l, err := gpiocdev.RequestLine(g.chip, off, gpiocdev.AsInput)
			if err != nil {
				return fmt.Errorf("driver: gpiod request input line %d: %w", off, err)
			}
			g.inputs[off] = l
		}
	}
	if len(outputOffsets) > 0 {
		maxBit := maxInt(outputOffsets)
		g.outs = make([]*gpiocdev.Line, maxBit+1)
		for _, off := range outputOffsets {
			l, err := gpiocdev.RequestLine(g.chip, off, gpiocdev.AsOutput(0))
			if err != nil {
				return fmt.Errorf("driver: gpiod request output line %d: %w", off, err)
			}
			g.outs[off] = l
		}
	}
	return nil
}

func parseOffsets(csv string) ([]int, error) {
	if csv == "" {
		return nil, nil
	}
	parts := strings.Split(csv, ",")
	offsets := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("driver: invalid line offset %q", p)
		}
		offsets = append(offsets, n)
	}
	return offsets, nil
}

func maxInt(v []int) int {
	m := v[0]
	for _, n := range v[1:] {
		if n > m {
			m = n
		}
	}
	return m
}

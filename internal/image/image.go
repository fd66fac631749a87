/*
 * librelogic - process image: digital/analog I/O, timers, blinkers, memory
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

// Package image is the PLC process image: every register bank the compiler
// targets and the VM mutates, plus the shadow copy used for edge and
// change-mask bookkeeping.
package image

import "github.com/kalamara/librelogic-go/internal/plcerr"

// Change-mask bits, set in Update when the corresponding bank differs from
// its shadow at the end of a cycle (spec.md §4.5 step 11).
const (
	ChangeInputs uint64 = 1 << iota
	ChangeOutputs
	ChangeTimers
	ChangeBlinkers
	ChangeMemory
)

// DigitalSlot is one exploded digital I/O bit.
type DigitalSlot struct {
	Level        bool
	Rising       bool
	Falling      bool
	SetPending   bool // output-side only
	ResetPending bool // output-side only
	ForceTrue    bool
	ForceFalse   bool
}

// AnalogChannel is one analog I/O channel.
type AnalogChannel struct {
	Value     float64
	Min, Max  float64
	Forced    bool
	ForceMask float64
	Nick      string
}

// Timer is one on-delay timer.
type Timer struct {
	Scale   uint32
	Sub     uint32
	Value   uint32
	Preset  uint32
	Q       bool
	Start   bool
	Reset   bool
	OnDelay bool
	Nick    string
}

// Blinker is one free-running square-wave generator.
type Blinker struct {
	Q     bool
	Scale uint32
	Sub   uint32
	Nick  string
}

// Counter is one memory counter (spec.md's memory-pulse edge semantics).
type Counter struct {
	Value    uint64
	ReadOnly bool
	Down     bool
	Pulse    bool
	Edge     bool
	Set      bool
	Reset    bool
	Nick     string
}

// RealReg is one real-valued memory register.
type RealReg struct {
	Value    float64
	ReadOnly bool
	Nick     string
}

// Image is the full process image for one PLC instance.
type Image struct {
	RawDI []byte
	RawDQ []byte

	DI []DigitalSlot
	DQ []DigitalSlot
	AI []AnalogChannel
	AQ []AnalogChannel

	Timers   []Timer
	Blinkers []Blinker
	Counters []Counter
	RealMem  []RealReg

	Command  uint64
	Response uint64
	Update   uint64
	StepMS   uint32

	shadow shadowState
}

type shadowState struct {
	DI       []DigitalSlot
	DQ       []DigitalSlot
	Timers   []Timer
	Blinkers []Blinker
	Counters []Counter
}

// Counts bundles the fixed register counts a PLC is constructed with.
type Counts struct {
	DI, DQ     uint32 // bytes of raw digital I/O
	AI, AQ     uint32 // analog channel counts
	Timers     uint32
	Blinkers   uint32
	Counters   uint32
	RealMem    uint32
}

// New allocates a process image and its shadow once, per spec.md's
// lifecycle note that no reallocation happens during scanning.
func New(c Counts) *Image {
	img := &Image{
		RawDI:    make([]byte, c.DI),
		RawDQ:    make([]byte, c.DQ),
		DI:       make([]DigitalSlot, c.DI*8),
		DQ:       make([]DigitalSlot, c.DQ*8),
		AI:       make([]AnalogChannel, c.AI),
		AQ:       make([]AnalogChannel, c.AQ),
		Timers:   make([]Timer, c.Timers),
		Blinkers: make([]Blinker, c.Blinkers),
		Counters: make([]Counter, c.Counters),
		RealMem:  make([]RealReg, c.RealMem),
		StepMS:   20,
	}
	img.shadow = shadowState{
		DI:       make([]DigitalSlot, len(img.DI)),
		DQ:       make([]DigitalSlot, len(img.DQ)),
		Timers:   make([]Timer, len(img.Timers)),
		Blinkers: make([]Blinker, len(img.Blinkers)),
		Counters: make([]Counter, len(img.Counters)),
	}
	return img
}

// ForceDigitalInput sets or clears the force-true/force-false overrides on
// input bit n. force_false takes precedence over force_true and the raw
// sampled bit (spec.md's force-priority invariant).
func (img *Image) ForceDigitalInput(n int, forceTrue, forceFalse bool) error {
	if n < 0 || n >= len(img.DI) {
		return plcerr.New(plcerr.BadIndex, "digital input index out of range")
	}
	img.DI[n].ForceTrue = forceTrue
	img.DI[n].ForceFalse = forceFalse
	return nil
}

// ForceDigitalOutput is the output-side equivalent of ForceDigitalInput.
func (img *Image) ForceDigitalOutput(n int, forceTrue, forceFalse bool) error {
	if n < 0 || n >= len(img.DQ) {
		return plcerr.New(plcerr.BadIndex, "digital output index out of range")
	}
	img.DQ[n].ForceTrue = forceTrue
	img.DQ[n].ForceFalse = forceFalse
	return nil
}

// ForceAnalogInput attempts to force analog input channel ch to v. Per
// plclib.c's plc_force, the force is accepted only within the channel's
// strict exclusive (min, max) bounds; otherwise it is rejected and the
// channel is left unforced. The returned bool is the resulting is_forced
// state (testable scenario 5).
func (img *Image) ForceAnalogInput(ch int, v float64) (bool, error) {
	if ch < 0 || ch >= len(img.AI) {
		return false, plcerr.New(plcerr.BadIndex, "analog input index out of range")
	}
	a := &img.AI[ch]
	if v > a.Min && v < a.Max {
		a.Forced = true
		a.ForceMask = v
		return true, nil
	}
	a.Forced = false
	return false, nil
}

// UnforceAnalogInput clears a prior ForceAnalogInput.
func (img *Image) UnforceAnalogInput(ch int) error {
	if ch < 0 || ch >= len(img.AI) {
		return plcerr.New(plcerr.BadIndex, "analog input index out of range")
	}
	img.AI[ch].Forced = false
	return nil
}

// DecodeInputs explodes RawDI into DI slots, applies force policy, computes
// edges against the shadow, and maps AI channels from their raw u64 sample
// (spec.md §4.5 step 6). rawAnalog holds one raw sample per AI channel.
func (img *Image) DecodeInputs(rawAnalog []uint64) {
	for i := range img.DI {
		byteIdx, bit := i/8, uint(i%8)
		raw := (img.RawDI[byteIdx]>>bit)&1 != 0
		slot := &img.DI[i]
		level := (raw || slot.ForceTrue) && !slot.ForceFalse
		prev := img.shadow.DI[i].Level
		slot.Rising = level && !prev
		slot.Falling = !level && prev
		slot.Level = level
	}
	for i := range img.AI {
		a := &img.AI[i]
		if i < len(rawAnalog) {
			if a.Forced && a.ForceMask > a.Min && a.ForceMask < a.Max {
				a.Value = a.ForceMask
			} else {
				span := a.Max - a.Min
				frac := float64(rawAnalog[i]) / float64(^uint64(0))
				a.Value = a.Min + span*frac
			}
		}
	}
	for i := range img.RawDQ {
		img.RawDQ[i] = 0
	}
}

// EncodeOutputs recomposes RawDQ from DQ slots and AQ channels back to a
// raw u64 range (spec.md §4.5 step 8). Returns the raw analog samples to
// hand to the driver. SET/RESET is latched memory (SetPending/ResetPending
// persist across cycles, cleared only by an opposing SET/RESET instruction
// in handleSet/handleReset) and is folded into the scratch RawDQ bit here
// without ever overwriting the ST-coil register DQ[i].Level itself, per
// plclib.c's enc_out.
func (img *Image) EncodeOutputs() []uint64 {
	for i := range img.DQ {
		byteIdx, bit := i/8, uint(i%8)
		slot := img.DQ[i]
		level := ((slot.Level || (slot.SetPending && !slot.ResetPending)) || slot.ForceTrue) && !slot.ForceFalse
		if level {
			img.RawDQ[byteIdx] |= 1 << bit
		}
	}
	out := make([]uint64, len(img.AQ))
	for i := range img.AQ {
		a := img.AQ[i]
		v := a.Value
		if a.Forced && a.ForceMask > a.Min && a.ForceMask < a.Max {
			v = a.ForceMask
		}
		span := a.Max - a.Min
		if span == 0 {
			out[i] = 0
			continue
		}
		frac := (v - a.Min) / span
		if frac < 0 {
			frac = 0
		}
		if frac > 1 {
			frac = 1
		}
		out[i] = uint64(frac * float64(^uint64(0)))
	}
	img.Command = 0
	return out
}

// AdvanceTimers increments every running timer's sub-counter and, on
// overflow past Scale, increments Value by one; Q tracks Value>=Preset
// with OnDelay polarity (spec.md §4.5 step 2).
func (img *Image) AdvanceTimers() {
	for i := range img.Timers {
		t := &img.Timers[i]
		if t.Reset {
			t.Value = 0
			t.Sub = 0
		}
		if t.Start && t.Value < t.Preset {
			t.Sub++
			if t.Sub > t.Scale {
				t.Value++
				t.Sub = 0
			}
		}
		done := t.Value >= t.Preset
		if t.OnDelay {
			t.Q = done
		} else {
			t.Q = !done
		}
	}
}

// AdvanceBlinkers toggles every active blinker's Q on sub-counter overflow
// (spec.md §4.5 step 3).
func (img *Image) AdvanceBlinkers() {
	for i := range img.Blinkers {
		b := &img.Blinkers[i]
		if b.Scale == 0 {
			continue
		}
		b.Sub++
		if b.Sub > b.Scale {
			b.Q = !b.Q
			b.Sub = 0
		}
	}
}

// ComputeMemoryPulse sets Pulse = Set && !Reset for every counter with
// Set||Reset asserted (spec.md §4.5 step 4).
func (img *Image) ComputeMemoryPulse() {
	for i := range img.Counters {
		c := &img.Counters[i]
		if c.Set || c.Reset {
			c.Pulse = c.Set && !c.Reset
		}
	}
}

// CheckPulseEdges sets Edge true where Pulse differs from the shadow
// (spec.md §4.5 step 9).
func (img *Image) CheckPulseEdges() {
	for i := range img.Counters {
		img.Counters[i].Edge = img.Counters[i].Pulse != img.shadow.Counters[i].Pulse
	}
}

// IncrementCounters applies the pending edge to non-readonly counters, then
// clears Edge (spec.md §4.5 step 10).
func (img *Image) IncrementCounters() {
	for i := range img.Counters {
		c := &img.Counters[i]
		if !c.ReadOnly && c.Pulse && c.Edge {
			if c.Down {
				c.Value--
			} else {
				c.Value++
			}
		}
		c.Edge = false
	}
}

// PublishChangeMask compares every bank against its shadow, sets the
// corresponding Update bit, and advances the shadow for the banks that
// actually changed (spec.md §4.5 step 11).
func (img *Image) PublishChangeMask() {
	img.Update = 0
	if !digitalEqual(img.DI, img.shadow.DI) {
		img.Update |= ChangeInputs
		copy(img.shadow.DI, img.DI)
	}
	if !digitalEqual(img.DQ, img.shadow.DQ) {
		img.Update |= ChangeOutputs
		copy(img.shadow.DQ, img.DQ)
	}
	if !timersEqual(img.Timers, img.shadow.Timers) {
		img.Update |= ChangeTimers
		copy(img.shadow.Timers, img.Timers)
	}
	if !blinkersEqual(img.Blinkers, img.shadow.Blinkers) {
		img.Update |= ChangeBlinkers
		copy(img.shadow.Blinkers, img.Blinkers)
	}
	if !countersEqual(img.Counters, img.shadow.Counters) {
		img.Update |= ChangeMemory
		copy(img.shadow.Counters, img.Counters)
	}
}

func digitalEqual(a, b []DigitalSlot) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func timersEqual(a, b []Timer) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func blinkersEqual(a, b []Blinker) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func countersEqual(a, b []Counter) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

/*
 * librelogic - simulated driver: in-memory register file
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
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"
)

// Sim backs every register with a plain in-memory buffer a test can poke at
// directly through SetDigitalIn/SetAnalogIn, standing in for real hardware
// during scan-cycle and compiler tests. When configured with "in"/"out"
// file paths it also shadows hardware-sim.c's file-backed mode: each Fetch
// rereads a fresh frame of digital+analog bytes from the input file,
// rewinding at EOF, and each Flush appends the current output frame to the
// output file.
type Sim struct {
	mu sync.Mutex

	digitalIn  []byte
	digitalOut []byte
	analogIn   []uint64
	analogOut  []uint64
	data       map[int]uint64

	inFile  *os.File
	outFile *os.File
}

// NewSim returns an empty Sim driver; Configure (or the setters below)
// size its buffers.
func NewSim() *Sim {
	return &Sim{data: make(map[int]uint64)}
}

func (s *Sim) Enable() error { return nil }

func (s *Sim) Disable() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	if s.inFile != nil {
		err = s.inFile.Close()
		s.inFile = nil
	}
	if s.outFile != nil {
		if cerr := s.outFile.Close(); err == nil {
			err = cerr
		}
		s.outFile = nil
	}
	return err
}

// Fetch copies the simulated input buffers into digitalIn/analogIn. When an
// input file is configured, it first refills those buffers by reading one
// frame (len(digitalIn) bytes plus 8*len(analogIn) big-endian bytes) from
// the file; on EOF it rewinds and reads the first frame in the same call,
// where sim_fetch would keep the previous frame for one more cycle.
func (s *Sim) Fetch(digitalIn []byte, analogIn []uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFile != nil {
		if err := s.refillFromFile(len(digitalIn), len(analogIn)); err != nil {
			return err
		}
	}
	copy(digitalIn, s.digitalIn)
	copy(analogIn, s.analogIn)
	return nil
}

func (s *Sim) refillFromFile(diN, aiN int) error {
	frame, err := s.readFrame(diN, aiN)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		if _, serr := s.inFile.Seek(0, io.SeekStart); serr != nil {
			return fmt.Errorf("driver: sim rewind input: %w", serr)
		}
		// the cycle that lands on EOF re-reads from the top immediately
		// instead of replaying the previous frame for one stale cycle.
		frame, err = s.readFrame(diN, aiN)
	}
	if err != nil {
		return fmt.Errorf("driver: sim read input: %w", err)
	}
	if len(s.digitalIn) != diN {
		s.digitalIn = make([]byte, diN)
	}
	if len(s.analogIn) != aiN {
		s.analogIn = make([]uint64, aiN)
	}
	copy(s.digitalIn, frame[:diN])
	for i := 0; i < aiN; i++ {
		s.analogIn[i] = binary.BigEndian.Uint64(frame[diN+8*i:])
	}
	return nil
}

func (s *Sim) readFrame(diN, aiN int) ([]byte, error) {
	frame := make([]byte, diN+8*aiN)
	_, err := io.ReadFull(s.inFile, frame)
	return frame, err
}

// Flush records digitalOut/analogOut and, when an output file is
// configured, appends the frame to it as sim_flush does.
func (s *Sim) Flush(digitalOut []byte, analogOut []uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.digitalOut) != len(digitalOut) {
		s.digitalOut = make([]byte, len(digitalOut))
	}
	if len(s.analogOut) != len(analogOut) {
		s.analogOut = make([]uint64, len(analogOut))
	}
	copy(s.digitalOut, digitalOut)
	copy(s.analogOut, analogOut)
	if s.outFile != nil {
		frame := make([]byte, len(digitalOut)+8*len(analogOut))
		copy(frame, digitalOut)
		for i, v := range analogOut {
			binary.BigEndian.PutUint64(frame[len(digitalOut)+8*i:], v)
		}
		if _, err := s.outFile.Write(frame); err != nil {
			return fmt.Errorf("driver: sim write output: %w", err)
		}
	}
	return nil
}

func (s *Sim) DIORead(bit int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byteIdx, b := bit/8, uint(bit%8)
	if byteIdx < 0 || byteIdx >= len(s.digitalIn) {
		return false, nil
	}
	return (s.digitalIn[byteIdx]>>b)&1 != 0, nil
}

func (s *Sim) DIOWrite(bit int, v bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byteIdx, b := bit/8, uint(bit%8)
	if byteIdx < 0 || byteIdx >= len(s.digitalIn) {
		return nil
	}
	if v {
		s.digitalIn[byteIdx] |= 1 << b
	} else {
		s.digitalIn[byteIdx] &^= 1 << b
	}
	return nil
}

func (s *Sim) DataRead(channel int) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[channel], nil
}

func (s *Sim) DataWrite(channel int, v uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[channel] = v
	return nil
}

// Configure reads no buffer sizes from params (SetSize sets those); it only
// gives a still-empty digital or analog input buffer a length of one. It
// reads the "in"/"out" file paths mirroring sim_config's ifname/ofname:
// "in" is opened read-only and drives Fetch, "out" is opened
// (created/truncated) write-only and drives Flush.
func (s *Sim) Configure(params map[string]string) error {
	if len(s.digitalIn) == 0 {
		s.digitalIn = make([]byte, 1)
	}
	if len(s.analogIn) == 0 {
		s.analogIn = make([]uint64, 1)
	}
	if in := params["in"]; in != "" {
		f, err := os.Open(in)
		if err != nil {
			return fmt.Errorf("driver: sim open input %s: %w", in, err)
		}
		s.inFile = f
	}
	if out := params["out"]; out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("driver: sim open output %s: %w", out, err)
		}
		s.outFile = f
	}
	return nil
}

// SetSize resizes the simulated register file; intended for test setup.
func (s *Sim) SetSize(diBytes, dqBytes, aiChans, aqChans int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.digitalIn = make([]byte, diBytes)
	s.digitalOut = make([]byte, dqBytes)
	s.analogIn = make([]uint64, aiChans)
	s.analogOut = make([]uint64, aqChans)
}

// SetDigitalIn pokes one raw input byte directly, bypassing DIOWrite's
// per-bit addressing.
func (s *Sim) SetDigitalIn(idx int, v byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx >= 0 && idx < len(s.digitalIn) {
		s.digitalIn[idx] = v
	}
}

// SetAnalogIn pokes one raw analog input sample directly.
func (s *Sim) SetAnalogIn(ch int, v uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch >= 0 && ch < len(s.analogIn) {
		s.analogIn[ch] = v
	}
}

// DigitalOut returns a copy of the last flushed digital output buffer.
func (s *Sim) DigitalOut() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]byte, len(s.digitalOut))
	copy(out, s.digitalOut)
	return out
}

// AnalogOut returns a copy of the last flushed analog output buffer.
func (s *Sim) AnalogOut() []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uint64, len(s.analogOut))
	copy(out, s.analogOut)
	return out
}

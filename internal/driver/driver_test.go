/*
 * librelogic - hardware driver capability interface and registry
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
	"os"
	"path/filepath"
	"testing"
)

func TestNewUnknownKindErrors(t *testing.T) {
	if _, err := New(Kind("bogus"), nil); err == nil {
		t.Fatal("unknown driver kind: want error, got nil")
	}
}

func TestNewDryZeroesBuffers(t *testing.T) {
	d, err := New(KindDry, nil)
	if err != nil {
		t.Fatalf("New(dry): %v", err)
	}
	di := []byte{0xff, 0xff}
	ai := []uint64{42}
	if err := d.Fetch(di, ai); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if di[0] != 0 || di[1] != 0 || ai[0] != 0 {
		t.Errorf("Dry.Fetch left state: di=%v ai=%v, want all zero", di, ai)
	}
}

func TestSimFetchFlushRoundTrip(t *testing.T) {
	s := NewSim()
	s.SetSize(2, 2, 2, 2)
	s.SetDigitalIn(0, 0xaa)
	s.SetAnalogIn(1, 777)

	di := make([]byte, 2)
	ai := make([]uint64, 2)
	if err := s.Fetch(di, ai); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if di[0] != 0xaa || ai[1] != 777 {
		t.Errorf("got di=%v ai=%v, want di[0]=0xaa ai[1]=777", di, ai)
	}

	if err := s.Flush([]byte{0x55, 0x00}, []uint64{1, 2}); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if got := s.DigitalOut(); got[0] != 0x55 {
		t.Errorf("DigitalOut()[0] = %#x, want 0x55", got[0])
	}
	if got := s.AnalogOut(); got[0] != 1 || got[1] != 2 {
		t.Errorf("AnalogOut() = %v, want [1 2]", got)
	}
}

func TestSimDIOReadWriteBit(t *testing.T) {
	s := NewSim()
	s.SetSize(1, 1, 0, 0)
	if err := s.DIOWrite(3, true); err != nil {
		t.Fatalf("DIOWrite: %v", err)
	}
	v, err := s.DIORead(3)
	if err != nil {
		t.Fatalf("DIORead: %v", err)
	}
	if !v {
		t.Error("bit 3 after DIOWrite(true): want true")
	}
	if err := s.DIOWrite(3, false); err != nil {
		t.Fatalf("DIOWrite: %v", err)
	}
	v, _ = s.DIORead(3)
	if v {
		t.Error("bit 3 after DIOWrite(false): want false")
	}
}

func TestSimConfigureFileBackedFetchRewindsAtEOF(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.bin")

	frame := func(di byte, av uint64) []byte {
		var analog [8]byte
		binary.BigEndian.PutUint64(analog[:], av)
		return append([]byte{di}, analog[:]...)
	}
	var stream []byte
	stream = append(stream, frame(0x01, 100)...)
	stream = append(stream, frame(0x02, 200)...)
	if err := os.WriteFile(inPath, stream, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s := NewSim()
	if err := s.Configure(map[string]string{"in": inPath}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	t.Cleanup(func() { s.Disable() })

	di := make([]byte, 1)
	ai := make([]uint64, 1)

	// Three Fetches on a two-frame file must loop back to frame 1
	// immediately on the frame that lands on EOF, not replay frame 2 for
	// one extra, stale cycle.
	want := []struct {
		di byte
		ai uint64
	}{
		{0x01, 100},
		{0x02, 200},
		{0x01, 100},
	}
	for i, w := range want {
		if err := s.Fetch(di, ai); err != nil {
			t.Fatalf("Fetch #%d: %v", i, err)
		}
		if di[0] != w.di || ai[0] != w.ai {
			t.Fatalf("Fetch #%d: di=%#x ai=%d, want di=%#x ai=%d", i, di[0], ai[0], w.di, w.ai)
		}
	}
}

func TestSimConfigureFileBackedFlushAppendsFrame(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "out.bin")

	s := NewSim()
	if err := s.Configure(map[string]string{"out": outPath}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if err := s.Flush([]byte{0x55}, []uint64{42}); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if err := s.Disable(); err != nil {
		t.Fatalf("Disable: %v", err)
	}

	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(got) != 9 || got[0] != 0x55 {
		t.Fatalf("output frame = %v, want 9 bytes starting with 0x55", got)
	}
	if v := binary.BigEndian.Uint64(got[1:]); v != 42 {
		t.Errorf("encoded analog word = %d, want 42", v)
	}
}

func TestSimDataReadWrite(t *testing.T) {
	s := NewSim()
	if err := s.DataWrite(5, 0x123); err != nil {
		t.Fatalf("DataWrite: %v", err)
	}
	v, err := s.DataRead(5)
	if err != nil {
		t.Fatalf("DataRead: %v", err)
	}
	if v != 0x123 {
		t.Errorf("DataRead(5) = %#x, want 0x123", v)
	}
	if v, _ := s.DataRead(99); v != 0 {
		t.Errorf("DataRead of an unwritten channel = %#x, want 0", v)
	}
}

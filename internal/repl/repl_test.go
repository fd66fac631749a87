/*
 * librelogic - debug console
 *
 * Copyright 2024, Richard Cornwell
 * Copyright 2024, Antonis Kalamaras
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

package repl

import (
	"testing"
	"time"

	"github.com/kalamara/librelogic-go/internal/driver"
	"github.com/kalamara/librelogic-go/internal/image"
	"github.com/kalamara/librelogic-go/internal/scan"
)

func newTestEngine(t *testing.T) *scan.Engine {
	t.Helper()
	img := image.New(image.Counts{DI: 2, DQ: 2, AI: 2, AQ: 2, Timers: 2, Blinkers: 2, Counters: 2, RealMem: 2})
	sim := driver.NewSim()
	sim.SetSize(2, 2, 2, 2)
	eng := scan.New(img, sim, nil, scan.Config{Period: 5 * time.Millisecond})
	eng.Start()
	t.Cleanup(eng.Shutdown)
	return eng
}

func TestProcessStartStopContinue(t *testing.T) {
	eng := newTestEngine(t)

	if quit, err := Process("start", eng); quit || err != nil {
		t.Fatalf("Process(start) = (%v, %v), want (false, nil)", quit, err)
	}
	time.Sleep(20 * time.Millisecond)
	if eng.Stats().Cycle == 0 {
		t.Error("start: engine did not run any cycles")
	}

	if quit, err := Process("stop", eng); quit || err != nil {
		t.Fatalf("Process(stop) = (%v, %v), want (false, nil)", quit, err)
	}
	after := eng.Stats().Cycle
	time.Sleep(20 * time.Millisecond)
	if eng.Stats().Cycle != after {
		t.Error("stop: engine kept cycling")
	}

	if quit, err := Process("continue", eng); quit || err != nil {
		t.Fatalf("Process(continue) = (%v, %v), want (false, nil)", quit, err)
	}
	time.Sleep(20 * time.Millisecond)
	if eng.Stats().Cycle <= after {
		t.Error("continue: engine did not resume cycling")
	}
}

func TestProcessQuitReturnsTrue(t *testing.T) {
	eng := newTestEngine(t)
	quit, err := Process("quit", eng)
	if err != nil || !quit {
		t.Fatalf("Process(quit) = (%v, %v), want (true, nil)", quit, err)
	}
}

func TestProcessEmptyLineIsNoop(t *testing.T) {
	eng := newTestEngine(t)
	quit, err := Process("   ", eng)
	if quit || err != nil {
		t.Fatalf("Process(blank) = (%v, %v), want (false, nil)", quit, err)
	}
}

func TestProcessUnknownCommandErrors(t *testing.T) {
	eng := newTestEngine(t)
	if _, err := Process("bogus", eng); err == nil {
		t.Fatal("unknown command: want error, got nil")
	}
}

func TestProcessForceDigitalInput(t *testing.T) {
	eng := newTestEngine(t)
	if _, err := Process("force di 0 1", eng); err != nil {
		t.Fatalf("force di 0 1: %v", err)
	}
	var forced bool
	eng.Do(func(img *image.Image) { forced = img.DI[0].ForceTrue })
	if !forced {
		t.Error("force di 0 1: want DI[0].ForceTrue")
	}
}

func TestProcessForceAnalogInput(t *testing.T) {
	eng := newTestEngine(t)
	eng.Do(func(img *image.Image) { img.AI[0].Min, img.AI[0].Max = 0, 100 })
	if _, err := Process("force ai 0 12.5", eng); err != nil {
		t.Fatalf("force ai 0 12.5: %v", err)
	}
	var value float64
	eng.Do(func(img *image.Image) { value = img.AI[0].Value })
	if value != 12.5 {
		t.Errorf("AI[0].Value = %v, want 12.5", value)
	}
}

func TestProcessForceInvalidIndexErrors(t *testing.T) {
	eng := newTestEngine(t)
	if _, err := Process("force di notanumber 1", eng); err == nil {
		t.Fatal("force with non-numeric index: want error, got nil")
	}
}

func TestProcessForceUnknownBankErrors(t *testing.T) {
	eng := newTestEngine(t)
	if _, err := Process("force bogus 0 1", eng); err == nil {
		t.Fatal("force with unknown bank: want error, got nil")
	}
}

func TestProcessUnforceAnalog(t *testing.T) {
	eng := newTestEngine(t)
	eng.Do(func(img *image.Image) { img.AI[0].Min, img.AI[0].Max = 0, 100 })
	if _, err := Process("force ai 0 5", eng); err != nil {
		t.Fatalf("force ai 0 5: %v", err)
	}
	if _, err := Process("unforce ai 0", eng); err != nil {
		t.Fatalf("unforce ai 0: %v", err)
	}
	var forced bool
	eng.Do(func(img *image.Image) { forced = img.AI[0].Forced })
	if forced {
		t.Error("unforce ai 0: want Forced cleared")
	}
}

func TestProcessUnforceUnknownBankErrors(t *testing.T) {
	eng := newTestEngine(t)
	if _, err := Process("unforce di 0", eng); err == nil {
		t.Fatal("unforce of a non-ai bank: want error, got nil")
	}
}

func TestProcessShowStatsNoError(t *testing.T) {
	eng := newTestEngine(t)
	if _, err := Process("show", eng); err != nil {
		t.Fatalf("show: %v", err)
	}
	if _, err := Process("show di", eng); err != nil {
		t.Fatalf("show di: %v", err)
	}
}

func TestCompleteUnambiguousPrefix(t *testing.T) {
	matches := Complete("fo")
	if len(matches) != 1 || matches[0] != "force" {
		t.Errorf("Complete(fo) = %v, want [force]", matches)
	}
}

func TestCompleteBelowMinLengthReturnsNoMatch(t *testing.T) {
	// "s" is a prefix of start, stop and show, but shorter than any of
	// their min lengths, so none qualify.
	matches := Complete("s")
	if len(matches) != 0 {
		t.Errorf("Complete(s) = %v, want none (all below min length)", matches)
	}
}

func TestCompleteWithTrailingTextReturnsNil(t *testing.T) {
	if matches := Complete("force di"); matches != nil {
		t.Errorf("Complete(force di) = %v, want nil (not at first word)", matches)
	}
}

/*
 * librelogic - scan-cycle engine
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

// Package scan drives the process image and a compiled program through one
// scan cycle per tick: sample, advance timers/blinkers, compute memory
// pulse, sleep out the remaining budget, decode inputs, run every rung,
// encode outputs, commit to the driver, then publish the change mask.
// Every external request (force, snapshot, start/stop) crosses into the
// engine goroutine over a channel, the same single-owner shape
// emu/core.core and emu/timer.Timer use for the CPU and clock loops.
package scan

import (
	"log/slog"
	"sync"
	"time"

	"github.com/kalamara/librelogic-go/internal/driver"
	"github.com/kalamara/librelogic-go/internal/image"
	"github.com/kalamara/librelogic-go/internal/plcerr"
	"github.com/kalamara/librelogic-go/internal/rung"
	"github.com/kalamara/librelogic-go/internal/vm"
)

// Config bundles the fixed parameters a scan Engine is built with.
type Config struct {
	Period        time.Duration // nominal scan period, spec.md's StepMS
	InstrBudget   time.Duration // per-rung VM timeout
	RawAnalogSize int           // AI channel count, used to size the fetch buffer
}

// Stats reports one cycle's timing for diagnostics.
type Stats struct {
	Cycle     uint64
	Busy      time.Duration
	Slept     time.Duration
	Overrun   bool
	LastError error
}

// Engine owns one process image, one driver and the set of compiled rungs
// run against it every cycle.
type Engine struct {
	wg      sync.WaitGroup
	img     *image.Image
	drv     driver.Driver
	rungs   []*rung.Rung
	cfg     Config
	running bool

	enable chan bool
	done   chan struct{}
	cmd    chan func(*image.Image)

	mu    sync.Mutex
	stats Stats
}

// New builds a stopped Engine; call Start to begin scanning.
func New(img *image.Image, drv driver.Driver, rungs []*rung.Rung, cfg Config) *Engine {
	if cfg.Period <= 0 {
		cfg.Period = 20 * time.Millisecond
	}
	if cfg.InstrBudget <= 0 {
		cfg.InstrBudget = cfg.Period
	}
	return &Engine{
		img:    img,
		drv:    drv,
		rungs:  rungs,
		cfg:    cfg,
		enable: make(chan bool, 1),
		done:   make(chan struct{}),
		cmd:    make(chan func(*image.Image), 8),
	}
}

// Start launches the scan goroutine. It begins in the Stopped state; call
// Run to begin scanning.
func (e *Engine) Start() {
	e.wg.Add(1)
	go e.loop()
}

// Run transitions the engine to Running.
func (e *Engine) Run() { e.enable <- true }

// Pause transitions the engine to Stopped without tearing down the
// goroutine; outputs hold their last written state.
func (e *Engine) Pause() { e.enable <- false }

// Shutdown stops the scan goroutine, waiting up to one second for a clean
// exit before giving up, per emu/core.core.Stop's shape.
func (e *Engine) Shutdown() {
	close(e.done)
	finished := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(time.Second):
		slog.Warn("librelogic: scan engine did not stop within one second")
	}
}

// Do runs fn against the process image from inside the scan goroutine,
// blocking the caller until it has run. Used for forces, snapshots and any
// other operation that must not race a running cycle.
func (e *Engine) Do(fn func(*image.Image)) {
	done := make(chan struct{})
	e.cmd <- func(img *image.Image) {
		fn(img)
		close(done)
	}
	<-done
}

// Stats returns the most recently completed cycle's timing snapshot.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

func (e *Engine) loop() {
	defer e.wg.Done()
	ticker := time.NewTicker(e.cfg.Period)
	defer ticker.Stop()

	rawAnalog := make([]uint64, e.cfg.RawAnalogSize)

	for {
		select {
		case <-e.done:
			return
		case e.running = <-e.enable:
		case fn := <-e.cmd:
			fn(e.img)
		case <-ticker.C:
			if e.running {
				e.cycle(rawAnalog)
			}
		}
	}
}

// cycle runs the eleven scan steps against e.img, in the order spec.md §4.5
// names them.
func (e *Engine) cycle(rawAnalog []uint64) {
	start := time.Now()

	if err := e.drv.Fetch(e.img.RawDI, rawAnalog); err != nil {
		e.recordError(err)
		return
	}
	e.img.AdvanceTimers()
	e.img.AdvanceBlinkers()
	e.img.ComputeMemoryPulse()

	busy := time.Since(start)
	sleepFor := e.cfg.Period - busy
	overrun := sleepFor <= 0
	if !overrun {
		time.Sleep(sleepFor)
	}

	e.img.DecodeInputs(rawAnalog)

	var cycleErr error
	for _, r := range e.rungs {
		if err := vm.Execute(e.img, r, e.cfg.InstrBudget); err != nil {
			cycleErr = err
			if pe, ok := err.(*plcerr.Error); !ok || pe.Kind != plcerr.Timeout {
				break
			}
		}
	}

	rawOut := e.img.EncodeOutputs()
	if err := e.drv.Flush(e.img.RawDQ, rawOut); err != nil && cycleErr == nil {
		cycleErr = err
	}

	e.img.CheckPulseEdges()
	e.img.IncrementCounters()
	e.img.PublishChangeMask()

	e.mu.Lock()
	e.stats.Cycle++
	e.stats.Busy = busy
	if !overrun {
		e.stats.Slept = sleepFor
	} else {
		e.stats.Slept = 0
	}
	e.stats.Overrun = overrun
	e.stats.LastError = cycleErr
	e.mu.Unlock()

	if cycleErr != nil {
		slog.Error("librelogic: scan cycle error", "error", cycleErr)
	}
}

func (e *Engine) recordError(err error) {
	e.mu.Lock()
	e.stats.LastError = err
	e.mu.Unlock()
	slog.Error("librelogic: driver fetch failed", "error", err)
}

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

// Package driver is the hardware capability boundary the scan engine talks
// to: one Driver per configured PLC, chosen by Kind and built from a line of
// configuration key/value pairs the same way config/configparser resolves a
// model line.
package driver

import "fmt"

// Kind names one of the supported driver backends.
type Kind string

const (
	KindDry    Kind = "dry"
	KindSim    Kind = "sim"
	KindUspace Kind = "uspace"
	KindGpiod  Kind = "gpiod"
	KindComedi Kind = "comedi"
)

// Driver is the capability surface the scan engine drives every cycle.
// DIOBitfield is optional and lives on the separate BitfieldReader
// interface; no driver in this package implements it, and the scan engine
// samples inputs only through Fetch.
type Driver interface {
	Enable() error
	Disable() error

	// Fetch samples every raw digital input byte and analog input channel
	// for one cycle.
	Fetch(digitalIn []byte, analogIn []uint64) error

	// Flush writes the cycle's raw digital and analog outputs.
	Flush(digitalOut []byte, analogOut []uint64) error

	DIORead(bit int) (bool, error)
	DIOWrite(bit int, v bool) error

	DataRead(channel int) (uint64, error)
	DataWrite(channel int, v uint64) error

	// Configure applies backend-specific parameters (device paths, chip
	// names, line offsets) parsed from a "driver" configuration line.
	Configure(params map[string]string) error
}

// BitfieldReader is an optional capability: drivers backed by a real chip
// line group can read several digital inputs in one transaction instead of
// bit-by-bit.
type BitfieldReader interface {
	DIOBitfield(start, count int) (uint64, error)
}

// Factory builds a Driver of a registered Kind.
type Factory func() Driver

var registry = map[Kind]Factory{
	KindDry:    func() Driver { return NewDry() },
	KindSim:    func() Driver { return NewSim() },
	KindUspace: func() Driver { return newUspace() },
	KindGpiod:  func() Driver { return newGpiod() },
	KindComedi: func() Driver { return newComedi() },
}

// New builds and configures a driver of the named kind.
func New(kind Kind, params map[string]string) (Driver, error) {
	factory, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("driver: unknown kind %q", kind)
	}
	d := factory()
	if err := d.Configure(params); err != nil {
		return nil, err
	}
	return d, nil
}

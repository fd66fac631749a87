/*
 * librelogic - dry-run driver: no hardware, deterministic zeros
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

// Dry never touches real hardware: Fetch leaves its buffers zeroed, Flush
// discards, and every read returns zero. Useful for compiling and scan-rate
// testing a program with no I/O attached.
type Dry struct{}

// NewDry returns a ready Dry driver.
func NewDry() *Dry { return &Dry{} }

func (d *Dry) Enable() error  { return nil }
func (d *Dry) Disable() error { return nil }

func (d *Dry) Fetch(digitalIn []byte, analogIn []uint64) error {
	for i := range digitalIn {
		digitalIn[i] = 0
	}
	for i := range analogIn {
		analogIn[i] = 0
	}
	return nil
}

func (d *Dry) Flush(digitalOut []byte, analogOut []uint64) error { return nil }

func (d *Dry) DIORead(bit int) (bool, error)       { return false, nil }
func (d *Dry) DIOWrite(bit int, v bool) error      { return nil }
func (d *Dry) DataRead(channel int) (uint64, error) { return 0, nil }
func (d *Dry) DataWrite(channel int, v uint64) error { return nil }

func (d *Dry) Configure(params map[string]string) error { return nil }

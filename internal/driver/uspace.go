/*
 * librelogic - uspace driver backend (raw userspace I/O port access)
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
	"sync"

	"golang.org/x/sys/unix"
)

// uspace maps the process image directly onto a memory-mapped I/O device
// file (e.g. /dev/uio0), the way src/hw/hardware-uspace.c pread/pwrites a
// fixed-offset register file instead of going through a kernel GPIO or
// comedi driver.
type uspace struct {
	mu   sync.Mutex
	fd   int
	path string
}

func newUspace() *uspace { return &uspace{fd: -1} }

func (u *uspace) Enable() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.path == "" {
		return fmt.Errorf("driver: uspace requires a \"device\" path")
	}
	fd, err := unix.Open(u.path, unix.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("driver: uspace open %s: %w", u.path, err)
	}
	u.fd = fd
	return nil
}

func (u *uspace) Disable() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.fd >= 0 {
		err := unix.Close(u.fd)
		u.fd = -1
		return err
	}
	return nil
}

func (u *uspace) Fetch(digitalIn []byte, analogIn []uint64) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.fd < 0 {
		return fmt.Errorf("driver: uspace not enabled")
	}
	if len(digitalIn) > 0 {
		if _, err := unix.Pread(u.fd, digitalIn, 0); err != nil {
			return fmt.Errorf("driver: uspace read digital: %w", err)
		}
	}
	buf := make([]byte, 8)
	for i := range analogIn {
		if _, err := unix.Pread(u.fd, buf, int64(len(digitalIn)+i*8)); err != nil {
			return fmt.Errorf("driver: uspace read analog %d: %w", i, err)
		}
		analogIn[i] = beUint64(buf)
	}
	return nil
}

func (u *uspace) Flush(digitalOut []byte, analogOut []uint64) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.fd < 0 {
		return fmt.Errorf("driver: uspace not enabled")
	}
	if len(digitalOut) > 0 {
		if _, err := unix.Pwrite(u.fd, digitalOut, 0); err != nil {
			return fmt.Errorf("driver: uspace write digital: %w", err)
		}
	}
	buf := make([]byte, 8)
	for i, v := range analogOut {
		putBeUint64(buf, v)
		if _, err := unix.Pwrite(u.fd, buf, int64(len(digitalOut)+i*8)); err != nil {
			return fmt.Errorf("driver: uspace write analog %d: %w", i, err)
		}
	}
	return nil
}

func (u *uspace) DIORead(bit int) (bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	buf := make([]byte, 1)
	if _, err := unix.Pread(u.fd, buf, int64(bit/8)); err != nil {
		return false, err
	}
	return buf[0]&(1<<uint(bit%8)) != 0, nil
}

func (u *uspace) DIOWrite(bit int, v bool) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	buf := make([]byte, 1)
	off := int64(bit / 8)
	if _, err := unix.Pread(u.fd, buf, off); err != nil {
		return err
	}
	if v {
		buf[0] |= 1 << uint(bit%8)
	} else {
		buf[0] &^= 1 << uint(bit%8)
	}
	_, err := unix.Pwrite(u.fd, buf, off)
	return err
}

func (u *uspace) DataRead(channel int) (uint64, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	buf := make([]byte, 8)
	if _, err := unix.Pread(u.fd, buf, int64(channel*8)); err != nil {
		return 0, err
	}
	return beUint64(buf), nil
}

func (u *uspace) DataWrite(channel int, v uint64) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	buf := make([]byte, 8)
	putBeUint64(buf, v)
	_, err := unix.Pwrite(u.fd, buf, int64(channel*8))
	return err
}

func (u *uspace) Configure(params map[string]string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.path = params["device"]
	return nil
}

func beUint64(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = (v << 8) | uint64(c)
	}
	return v
}

func putBeUint64(b []byte, v uint64) {
	for i := len(b) - 1; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
}

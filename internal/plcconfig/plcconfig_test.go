/*
 * librelogic - configuration keyword bindings
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

package plcconfig

import (
	"testing"
	"time"

	config "github.com/kalamara/librelogic-go/config/configparser"
	"github.com/kalamara/librelogic-go/internal/driver"
)

func TestRegisterDriverCollectsKindAndParams(t *testing.T) {
	DriverKind = ""
	DriverParams = map[string]string{}

	chip0 := "0"
	opts := []config.Option{
		{Name: "chip", EqualOpt: "gpiochip0"},
		{Name: "inputs", Value: []*string{&chip0}},
	}
	if err := registerDriver(0, "gpiod", opts); err != nil {
		t.Fatalf("registerDriver: %v", err)
	}
	if DriverKind != driver.KindGpiod {
		t.Errorf("DriverKind = %q, want %q", DriverKind, driver.KindGpiod)
	}
	if DriverParams["chip"] != "gpiochip0" {
		t.Errorf("DriverParams[chip] = %q, want gpiochip0", DriverParams["chip"])
	}
	if DriverParams["inputs"] != "0" {
		t.Errorf("DriverParams[inputs] = %q, want 0", DriverParams["inputs"])
	}
}

func TestRegisterProgramAppends(t *testing.T) {
	ProgramPaths = nil
	_ = registerProgram(0, "rung0.il", nil)
	_ = registerProgram(0, "rung1.ld", nil)
	if len(ProgramPaths) != 2 || ProgramPaths[0] != "rung0.il" || ProgramPaths[1] != "rung1.ld" {
		t.Errorf("ProgramPaths = %v, want [rung0.il rung1.ld]", ProgramPaths)
	}
}

func TestRegisterPeriodParsesDurationAndBareMillis(t *testing.T) {
	if err := registerPeriod(0, "20ms", nil); err != nil {
		t.Fatalf("registerPeriod: %v", err)
	}
	if Period != 20*time.Millisecond {
		t.Errorf("Period = %v, want 20ms", Period)
	}
	if err := registerPeriod(0, "50", nil); err != nil {
		t.Fatalf("registerPeriod: %v", err)
	}
	if Period != 50*time.Millisecond {
		t.Errorf("Period (bare number) = %v, want 50ms", Period)
	}
}

func TestRegisterLogLowercases(t *testing.T) {
	_ = registerLog(0, "DEBUG", nil)
	if LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", LogLevel)
	}
}

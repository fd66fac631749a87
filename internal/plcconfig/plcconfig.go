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

// Package plcconfig registers the four top-level keywords librelogic's
// config file understands with config/configparser, the way
// config/debugconfig once registered S/370's debug switches. Importing this
// package for its side effect (an init function) is what makes "driver",
// "plc", "period" and "log" valid lines in a config file; main reads the
// package vars below once configparser.LoadConfigFile returns.
package plcconfig

import (
	"strconv"
	"strings"
	"time"

	config "github.com/kalamara/librelogic-go/config/configparser"
	"github.com/kalamara/librelogic-go/internal/driver"
)

// DriverKind and DriverParams come from the "driver" line, e.g.
//
//	driver gpiod chip=gpiochip0 inputs="0,1,2" outputs="4,5"
var (
	DriverKind   driver.Kind
	DriverParams = map[string]string{}
)

// ProgramPaths comes from one "plc" line per file, e.g.
//
//	plc rung0.il
//	plc rung1.ld
var ProgramPaths []string

// Period comes from the "period" line, e.g. "period 20ms". Zero means the
// caller should fall back to internal/scan.Config's default.
var Period time.Duration

// LogLevel comes from the "log" line, e.g. "log debug".
var LogLevel string

func init() {
	config.RegisterOptions("driver", registerDriver)
	config.RegisterOption("plc", registerProgram)
	config.RegisterOption("period", registerPeriod)
	config.RegisterOption("log", registerLog)
}

func registerDriver(_ uint16, value string, opts []config.Option) error {
	DriverKind = driver.Kind(strings.ToLower(value))
	for _, o := range opts {
		if o.EqualOpt != "" {
			DriverParams[o.Name] = o.EqualOpt
			continue
		}
		if len(o.Value) > 0 {
			DriverParams[o.Name] = *o.Value[0]
		}
	}
	return nil
}

func registerProgram(_ uint16, value string, _ []config.Option) error {
	ProgramPaths = append(ProgramPaths, value)
	return nil
}

func registerPeriod(_ uint16, value string, _ []config.Option) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		if n, aerr := strconv.Atoi(value); aerr == nil {
			d = time.Duration(n) * time.Millisecond
		} else {
			return err
		}
	}
	Period = d
	return nil
}

func registerLog(_ uint16, value string, _ []config.Option) error {
	LogLevel = strings.ToLower(value)
	return nil
}

/*
 * librelogic - main process
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

package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	getopt "github.com/pborman/getopt/v2"

	config "github.com/kalamara/librelogic-go/config/configparser"
	"github.com/kalamara/librelogic-go/internal/driver"
	"github.com/kalamara/librelogic-go/internal/image"
	"github.com/kalamara/librelogic-go/internal/plcconfig"
	"github.com/kalamara/librelogic-go/internal/plcprog"
	"github.com/kalamara/librelogic-go/internal/repl"
	"github.com/kalamara/librelogic-go/internal/scan"
	logger "github.com/kalamara/librelogic-go/util/logger"
)

// defaultCounts sizes the process image; the config file has no keyword for
// register counts, so every run uses these.
var defaultCounts = image.Counts{
	DI: 8, DQ: 8, AI: 4, AQ: 4,
	Timers: 16, Blinkers: 8, Counters: 16, RealMem: 16,
}

func main() {
	optConfig := getopt.StringLong("config", 'c', "librelogic.cfg", "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var file *os.File
	if *optLogFile != "" {
		f, err := os.Create(*optLogFile)
		if err != nil {
			slog.Error("can't create log file", "file", *optLogFile, "error", err)
			os.Exit(1)
		}
		file = f
	}
	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)
	log := slog.New(logger.NewHandler(file, &slog.HandlerOptions{Level: level, AddSource: false}, nil))
	slog.SetDefault(log)

	log.Info("librelogic started")

	if err := config.LoadConfigFile(*optConfig); err != nil {
		log.Error("loading configuration", "file", *optConfig, "error", err)
		os.Exit(1)
	}

	switch plcconfig.LogLevel {
	case "debug":
		level.Set(slog.LevelDebug)
	case "warn":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	}

	if len(plcconfig.ProgramPaths) == 0 {
		log.Error("no \"plc\" program lines in configuration")
		os.Exit(1)
	}
	rungs, err := plcprog.LoadAll(plcconfig.ProgramPaths)
	if err != nil {
		log.Error("compiling program", "error", err)
		os.Exit(1)
	}

	kind := plcconfig.DriverKind
	if kind == "" {
		kind = driver.KindDry
	}
	drv, err := driver.New(kind, plcconfig.DriverParams)
	if err != nil {
		log.Error("building driver", "kind", kind, "error", err)
		os.Exit(1)
	}
	if err := drv.Enable(); err != nil {
		log.Error("enabling driver", "error", err)
		os.Exit(1)
	}

	img := image.New(defaultCounts)

	eng := scan.New(img, drv, rungs, scan.Config{
		Period:        plcconfig.Period,
		RawAnalogSize: int(defaultCounts.AI),
	})
	eng.Start()
	eng.Run()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	replDone := make(chan struct{})
	go func() {
		repl.Run(eng)
		close(replDone)
	}()

	select {
	case <-sigChan:
		log.Info("got quit signal")
	case <-replDone:
	}

	log.Info("shutting down scan engine")
	eng.Shutdown()
	if err := drv.Disable(); err != nil {
		log.Error("disabling driver", "error", err)
	}
	log.Info("librelogic stopped")
}

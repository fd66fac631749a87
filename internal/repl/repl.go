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

// Package repl is a stdin debug console for a running scan engine: start,
// stop, force an input or output bit, show the process image, quit. The
// line tokenizer and liner-driven read loop are grounded on
// command/parser.cmdLine and command/reader.ConsoleReader; the command set
// itself is new, since there are no attachable devices in a process image.
package repl

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/peterh/liner"

	"github.com/kalamara/librelogic-go/internal/image"
	"github.com/kalamara/librelogic-go/internal/scan"
)

type command struct {
	name    string
	min     int
	process func(*cmdLine, *scan.Engine) (bool, error)
}

type cmdLine struct {
	line string
	pos  int
}

var commands = []command{
	{name: "start", min: 3, process: start},
	{name: "stop", min: 3, process: stop},
	{name: "continue", min: 1, process: cont},
	{name: "force", min: 2, process: force},
	{name: "unforce", min: 2, process: unforce},
	{name: "show", min: 2, process: show},
	{name: "quit", min: 1, process: quit},
}

// Run drives a liner prompt loop against eng until the user quits or aborts
// with Ctrl-D, mirroring command/reader.ConsoleReader's shape.
func Run(eng *scan.Engine) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(l string) []string { return Complete(l) })

	for {
		text, err := line.Prompt("plc> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				return
			}
			fmt.Println("error reading line: " + err.Error())
			return
		}
		line.AppendHistory(text)
		quit, perr := Process(text, eng)
		if perr != nil {
			fmt.Println("error: " + perr.Error())
		}
		if quit {
			return
		}
	}
}

// Process executes one command line against eng, returning true when the
// console should exit.
func Process(line string, eng *scan.Engine) (bool, error) {
	cl := cmdLine{line: line}
	word := cl.getWord()
	if word == "" {
		return false, nil
	}
	match := matchCommand(word)
	if len(match) == 0 {
		return false, errors.New("command not found: " + word)
	}
	if len(match) > 1 {
		return false, errors.New("ambiguous command: " + word)
	}
	return match[0].process(&cl, eng)
}

// Complete returns candidate command names for line-editing completion.
func Complete(line string) []string {
	cl := cmdLine{line: line}
	word := cl.getWord()
	if !cl.isEOL() {
		return nil
	}
	matches := []string{}
	for _, c := range matchCommand(word) {
		matches = append(matches, c.name)
	}
	return matches
}

func matchCommand(word string) []command {
	if word == "" {
		return nil
	}
	var out []command
	for _, c := range commands {
		if len(word) <= len(c.name) && word == c.name[:len(word)] && len(word) >= c.min {
			out = append(out, c)
		}
	}
	return out
}

func (l *cmdLine) isEOL() bool { return l.pos >= len(l.line) }

func (l *cmdLine) skipSpace() {
	for !l.isEOL() && unicode.IsSpace(rune(l.line[l.pos])) {
		l.pos++
	}
}

// getWord reads the next run of non-space characters, lowercased.
func (l *cmdLine) getWord() string {
	l.skipSpace()
	start := l.pos
	for !l.isEOL() && !unicode.IsSpace(rune(l.line[l.pos])) {
		l.pos++
	}
	return strings.ToLower(l.line[start:l.pos])
}

func start(_ *cmdLine, eng *scan.Engine) (bool, error) {
	eng.Run()
	return false, nil
}

func stop(_ *cmdLine, eng *scan.Engine) (bool, error) {
	eng.Pause()
	return false, nil
}

func cont(_ *cmdLine, eng *scan.Engine) (bool, error) {
	eng.Run()
	return false, nil
}

func quit(_ *cmdLine, _ *scan.Engine) (bool, error) {
	return true, nil
}

// force <di|do|ai> <index> <value>
func force(l *cmdLine, eng *scan.Engine) (bool, error) {
	bank := l.getWord()
	idxWord := l.getWord()
	idx, err := strconv.Atoi(idxWord)
	if err != nil {
		return false, fmt.Errorf("force: invalid index %q", idxWord)
	}
	valWord := l.getWord()

	var forceErr error
	eng.Do(func(img *image.Image) {
		switch bank {
		case "di":
			forceErr = img.ForceDigitalInput(idx, valWord == "1" || valWord == "true", valWord == "0" || valWord == "false")
		case "do":
			forceErr = img.ForceDigitalOutput(idx, valWord == "1" || valWord == "true", valWord == "0" || valWord == "false")
		case "ai":
			v, perr := strconv.ParseFloat(valWord, 64)
			if perr != nil {
				forceErr = fmt.Errorf("force: invalid analog value %q", valWord)
				return
			}
			_, forceErr = img.ForceAnalogInput(idx, v)
		default:
			forceErr = fmt.Errorf("force: unknown bank %q, want di, do or ai", bank)
		}
	})
	return false, forceErr
}

// unforce <ai> <index>
func unforce(l *cmdLine, eng *scan.Engine) (bool, error) {
	bank := l.getWord()
	idxWord := l.getWord()
	idx, err := strconv.Atoi(idxWord)
	if err != nil {
		return false, fmt.Errorf("unforce: invalid index %q", idxWord)
	}
	var unforceErr error
	eng.Do(func(img *image.Image) {
		if bank != "ai" {
			unforceErr = fmt.Errorf("unforce: unknown bank %q, want ai", bank)
			return
		}
		unforceErr = img.UnforceAnalogInput(idx)
	})
	return false, unforceErr
}

// show [di|do|ai|timers|counters|stats]
func show(l *cmdLine, eng *scan.Engine) (bool, error) {
	what := l.getWord()
	if what == "" || what == "stats" {
		s := eng.Stats()
		fmt.Printf("cycle=%d busy=%s slept=%s overrun=%v lastErr=%v\n",
			s.Cycle, s.Busy, s.Slept, s.Overrun, s.LastError)
		return false, nil
	}

	eng.Do(func(img *image.Image) {
		switch what {
		case "di":
			for i, s := range img.DI {
				fmt.Printf("DI[%d] = %v (forced=%v/%v)\n", i, s.Level, s.ForceTrue, s.ForceFalse)
			}
		case "do":
			for i, s := range img.DQ {
				fmt.Printf("DQ[%d] = %v\n", i, s.Level)
			}
		case "ai":
			for i, c := range img.AI {
				fmt.Printf("AI[%d] = %v (forced=%v)\n", i, c.Value, c.Forced)
			}
		case "timers":
			for i, t := range img.Timers {
				fmt.Printf("T[%d] value=%d preset=%d q=%v\n", i, t.Value, t.Preset, t.Q)
			}
		case "counters":
			for i, c := range img.Counters {
				fmt.Printf("C[%d] value=%d\n", i, c.Value)
			}
		default:
			fmt.Printf("show: unknown bank %q\n", what)
		}
	})
	return false, nil
}

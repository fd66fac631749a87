/*
 * librelogic - program file loader
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

// Package plcprog loads a rung program from a source file, dispatching on
// its extension to the IL or LD front end and handing the result to
// internal/codegen or straight to internal/rung.
package plcprog

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kalamara/librelogic-go/internal/codegen"
	"github.com/kalamara/librelogic-go/internal/ilparse"
	"github.com/kalamara/librelogic-go/internal/ldparse"
	"github.com/kalamara/librelogic-go/internal/rung"
)

// Load reads one program file and compiles it to a Rung. The extension
// picks the front end: ".il" for instruction list, ".ld" for the ladder
// grid.
func Load(path string) (*rung.Rung, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".il":
		return ilparse.Program(lines)
	case ".ld":
		arena, assignments, err := ldparse.Grid(lines)
		if err != nil {
			return nil, err
		}
		return codegen.Program(arena, assignments)
	default:
		return nil, fmt.Errorf("plcprog: %s: unrecognized extension, want .il or .ld", path)
	}
}

// LoadAll compiles every named file into one rung per file, in order.
func LoadAll(paths []string) ([]*rung.Rung, error) {
	rungs := make([]*rung.Rung, 0, len(paths))
	for _, p := range paths {
		r, err := Load(p)
		if err != nil {
			return nil, fmt.Errorf("plcprog: %s: %w", p, err)
		}
		rungs = append(rungs, r)
	}
	return rungs, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

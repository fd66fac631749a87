/*
 * librelogic - streaming sample variance
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

// Package variance tracks running sample variance over an analog channel
// using Welford's online algorithm, grounded on util.c's compute_variance.
package variance

// Tracker accumulates Welford's (count, mean, M2) triple for one analog
// channel across scan cycles.
type Tracker struct {
	count int64
	mean  float64
	m2    float64
}

// Add folds one new sample into the running statistics.
func (t *Tracker) Add(sample float64) {
	t.count++
	delta := sample - t.mean
	t.mean += delta / float64(t.count)
	delta2 := sample - t.mean
	t.m2 += delta * delta2
}

// Count reports how many samples have been folded in.
func (t *Tracker) Count() int64 { return t.count }

// Mean reports the running mean, 0 before the first sample.
func (t *Tracker) Mean() float64 { return t.mean }

// Variance reports the sample variance (M2/(n-1)); it is 0 with fewer than
// two samples, matching get_variance's guard against a division by zero.
func (t *Tracker) Variance() float64 {
	if t.count < 2 {
		return 0
	}
	return t.m2 / float64(t.count-1)
}

// Reset clears the tracker back to its zero state.
func (t *Tracker) Reset() {
	t.count = 0
	t.mean = 0
	t.m2 = 0
}

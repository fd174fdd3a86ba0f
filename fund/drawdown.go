// Copyright 2021-2023
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package fund

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// DrawdownSeries is the running peak-to-trough decline of cumulative
// wealth, one point per return period. Every value is <= 0 and exactly 0
// whenever wealth sits at its running maximum.
type DrawdownSeries struct {
	Name      string
	Dates     []time.Time
	Drawdowns []float64
}

// DrawDown describes one peak-to-trough event. Begin is the last date at
// the peak, End the trough, and Recovery the date wealth regained the peak;
// Recovery is the zero time when the series ends still under water.
type DrawDown struct {
	Begin       time.Time `json:"begin"`
	End         time.Time `json:"end"`
	Recovery    time.Time `json:"recovery"`
	LossPercent float64   `json:"loss_percent"`
}

// Drawdowns computes the drawdown series in a single forward pass:
// dd[t] = (wealth[t] - runningMax[t]) / runningMax[t] with wealth the
// cumulative product of (1+r).
func Drawdowns(rets ReturnSeries) DrawdownSeries {
	dd := DrawdownSeries{
		Name:      rets.Name,
		Dates:     rets.Dates,
		Drawdowns: make([]float64, rets.Len()),
	}

	wealth := 1.0
	runningMax := 1.0
	for ii, r := range rets.Returns {
		wealth *= 1.0 + r
		if wealth > runningMax {
			runningMax = wealth
		}
		dd.Drawdowns[ii] = (wealth - runningMax) / runningMax
	}

	return dd
}

// MaxDrawdown is the most negative point of the drawdown series; 0 for a
// series that never declines from its peak.
func MaxDrawdown(rets ReturnSeries) float64 {
	maxDD := 0.0
	for _, dd := range Drawdowns(rets).Drawdowns {
		if dd < maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// AverageDrawdown is the mean of the strictly negative drawdown points.
// Days at the peak are excluded from the mean; including them would shrink
// the reported magnitude. Undefined when the series never draws down.
func AverageDrawdown(rets ReturnSeries) Scalar {
	negative := make([]float64, 0, rets.Len())
	for _, dd := range Drawdowns(rets).Drawdowns {
		if dd < 0 {
			negative = append(negative, dd)
		}
	}

	if len(negative) == 0 {
		return Undefined()
	}
	return Defined(stat.Mean(negative, nil))
}

// LongestDrawdownDuration is the length in periods of the longest
// contiguous run of strictly negative drawdown. Ties go to the first run.
func LongestDrawdownDuration(rets ReturnSeries) int {
	var longest, current int
	for _, dd := range Drawdowns(rets).Drawdowns {
		if dd < 0 {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 0
		}
	}
	return longest
}

// AllDrawDowns identifies every peak-to-trough event in the series with its
// begin, trough and recovery dates.
func AllDrawDowns(rets ReturnSeries) []*DrawDown {
	all := []*DrawDown{}
	if rets.Len() == 0 {
		return all
	}

	series := Drawdowns(rets)

	var event *DrawDown
	prev := rets.Dates[0]
	for ii, dd := range series.Drawdowns {
		if dd < 0 {
			if event == nil {
				event = &DrawDown{
					Begin:       prev,
					End:         series.Dates[ii],
					LossPercent: dd,
				}
			}
			if dd < event.LossPercent {
				event.End = series.Dates[ii]
				event.LossPercent = dd
			}
		} else if event != nil {
			event.Recovery = series.Dates[ii]
			all = append(all, event)
			event = nil
		}
		prev = series.Dates[ii]
	}

	// series ended while still in a drawdown
	if event != nil {
		all = append(all, event)
	}

	return all
}

// TopDrawDowns returns the n worst drawdown events, deepest first.
func TopDrawDowns(rets ReturnSeries, n int) []*DrawDown {
	all := AllDrawDowns(rets)
	sort.Slice(all, func(i, j int) bool {
		return all[i].LossPercent < all[j].LossPercent
	})

	if n > len(all) {
		n = len(all)
	}
	return all[:n]
}

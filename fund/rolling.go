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
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

// RollingKind selects which metric a rolling computation produces.
type RollingKind string

const (
	RollingReturn      RollingKind = "return"
	RollingVolatility  RollingKind = "volatility"
	RollingSharpe      RollingKind = "sharpe"
	RollingBeta        RollingKind = "beta"
	RollingCorrelation RollingKind = "correlation"
)

// Weighting selects the window weighting scheme.
type Weighting string

const (
	SimpleWeighting      Weighting = "simple"
	ExponentialWeighting Weighting = "exponential"
)

// betaSpanDivisor halves the exponential span for beta and correlation,
// giving a smoother estimate than the other rolling metrics use. This
// asymmetry is deliberate; do not unify the spans.
const betaSpanDivisor = 2

// RollingSeries is a windowed metric evaluated at every period. Values
// before the window is full are NaN, never zero.
type RollingSeries struct {
	Name      string      `json:"name"`
	Kind      RollingKind `json:"kind"`
	Weighting Weighting   `json:"weighting"`
	Window    int         `json:"window"`
	Dates     []time.Time `json:"dates"`
	Values    []float64   `json:"values"`
}

// RollingOptions parameterizes a rolling computation. Window is in trading
// periods; the preset constants (WindowSixMonth et al.) map the common
// labels but any positive window is accepted.
type RollingOptions struct {
	Window    int
	Kind      RollingKind
	Weighting Weighting
	Config    Config
}

// Rolling computes the trailing-window variant of a metric over the whole
// series. Beta and correlation operate on the inner join of fund and
// benchmark dates; the other kinds ignore the benchmark.
func Rolling(rets ReturnSeries, benchmark *ReturnSeries, opts RollingOptions) (*RollingSeries, error) {
	if opts.Window < 1 {
		return nil, ErrInvalidWindow
	}

	switch opts.Kind {
	case RollingBeta, RollingCorrelation:
		if benchmark == nil {
			return nil, ErrNoBenchmark
		}
		dates, rf, rb := align(rets, *benchmark)
		if len(rf) == 0 {
			return nil, ErrNoOverlap
		}
		if opts.Window > len(rf) {
			return nil, ErrInsufficientData
		}
		return rollingPair(rets.Name, dates, rf, rb, opts), nil
	case RollingReturn, RollingVolatility, RollingSharpe:
		if opts.Window > rets.Len() {
			return nil, ErrInsufficientData
		}
		return rollingSingle(rets.Name, rets.Dates, rets.Returns, opts), nil
	default:
		return nil, ErrUnknownKind
	}
}

func newRollingSeries(name string, dates []time.Time, opts RollingOptions) *RollingSeries {
	values := make([]float64, len(dates))
	for ii := range values {
		values[ii] = math.NaN()
	}

	return &RollingSeries{
		Name:      name,
		Kind:      opts.Kind,
		Weighting: opts.Weighting,
		Window:    opts.Window,
		Dates:     dates,
		Values:    values,
	}
}

func rollingSingle(name string, dates []time.Time, rets []float64, opts RollingOptions) *RollingSeries {
	series := newRollingSeries(name, dates, opts)
	periods := float64(opts.Config.TradingDays)

	if opts.Weighting == ExponentialWeighting {
		ewm := newEwm(opts.Window)
		for ii, r := range rets {
			ewm.add(r, r)
			if ii < opts.Window-1 {
				continue
			}
			mean := ewm.mean()
			sigma := math.Sqrt(ewm.varX())
			switch opts.Kind {
			case RollingReturn:
				series.Values[ii] = mean * periods
			case RollingVolatility:
				series.Values[ii] = sigma * math.Sqrt(periods)
			case RollingSharpe:
				series.Values[ii] = sharpeOf(mean, sigma, periods, opts.Config.RiskFreeRate)
			}
		}
		return series
	}

	for ii := opts.Window - 1; ii < len(rets); ii++ {
		window := rets[ii-opts.Window+1 : ii+1]
		switch opts.Kind {
		case RollingReturn:
			compound := 1.0
			for _, r := range window {
				compound *= 1.0 + r
			}
			series.Values[ii] = (compound - 1.0) * (periods / float64(opts.Window))
		case RollingVolatility:
			series.Values[ii] = stat.StdDev(window, nil) * math.Sqrt(periods)
		case RollingSharpe:
			series.Values[ii] = sharpeOf(stat.Mean(window, nil), stat.StdDev(window, nil), periods, opts.Config.RiskFreeRate)
		}
	}

	return series
}

func rollingPair(name string, dates []time.Time, rf, rb []float64, opts RollingOptions) *RollingSeries {
	series := newRollingSeries(name, dates, opts)

	if opts.Weighting == ExponentialWeighting {
		span := opts.Window / betaSpanDivisor
		if span < 1 {
			span = 1
		}
		ewm := newEwm(span)
		for ii := range rf {
			ewm.add(rf[ii], rb[ii])
			if ii < opts.Window-1 {
				continue
			}
			switch opts.Kind {
			case RollingBeta:
				series.Values[ii] = betaOf(ewm.cov(), ewm.varY())
			case RollingCorrelation:
				series.Values[ii] = corrOf(ewm.cov(), ewm.varX(), ewm.varY())
			}
		}
		return series
	}

	for ii := opts.Window - 1; ii < len(rf); ii++ {
		wf := rf[ii-opts.Window+1 : ii+1]
		wb := rb[ii-opts.Window+1 : ii+1]
		switch opts.Kind {
		case RollingBeta:
			series.Values[ii] = betaOf(stat.Covariance(wf, wb, nil), stat.Variance(wb, nil))
		case RollingCorrelation:
			series.Values[ii] = stat.Correlation(wf, wb, nil)
		}
	}

	return series
}

func sharpeOf(mean, sigma, periods, riskFree float64) float64 {
	vol := sigma * math.Sqrt(periods)
	if vol == 0 {
		return 0
	}
	return (mean*periods - riskFree) / vol
}

func betaOf(cov, variance float64) float64 {
	if variance == 0 {
		return 0
	}
	return cov / variance
}

func corrOf(cov, varX, varY float64) float64 {
	denom := math.Sqrt(varX * varY)
	if denom == 0 {
		return math.NaN()
	}
	return cov / denom
}

// ewm accumulates exponentially-weighted first and second moments over two
// aligned inputs. Weights follow the pandas "adjust" convention: the k-th
// most recent observation carries weight (1-alpha)^k with alpha =
// 2/(span+1), and variances use the reliability-weights bias correction.
type ewm struct {
	decay float64
	sw    float64 // sum of weights
	sw2   float64 // sum of squared weights
	sx    float64
	sy    float64
	sxx   float64
	syy   float64
	sxy   float64
}

func newEwm(span int) *ewm {
	alpha := 2.0 / (float64(span) + 1.0)
	return &ewm{decay: 1.0 - alpha}
}

func (e *ewm) add(x, y float64) {
	e.sw = e.sw*e.decay + 1.0
	e.sw2 = e.sw2*e.decay*e.decay + 1.0
	e.sx = e.sx*e.decay + x
	e.sy = e.sy*e.decay + y
	e.sxx = e.sxx*e.decay + x*x
	e.syy = e.syy*e.decay + y*y
	e.sxy = e.sxy*e.decay + x*y
}

func (e *ewm) mean() float64 {
	return e.sx / e.sw
}

func (e *ewm) varX() float64 {
	return e.moment(e.sxx, e.sx, e.sx)
}

func (e *ewm) varY() float64 {
	return e.moment(e.syy, e.sy, e.sy)
}

func (e *ewm) cov() float64 {
	return e.moment(e.sxy, e.sx, e.sy)
}

func (e *ewm) moment(sab, sa, sb float64) float64 {
	denom := e.sw - e.sw2/e.sw
	if denom <= 0 {
		return math.NaN()
	}
	return (sab - sa*sb/e.sw) / denom
}

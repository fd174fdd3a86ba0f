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

// Package fund computes performance analytics for a single fund: return,
// risk, risk-adjusted and statistical metrics over a NAV history, drawdown
// and rolling series, and a recurring-investment (SIP) ledger with an
// internal rate of return. Everything in this package is a pure function
// over in-memory series; data access and caching are composed around it.
package fund

import (
	"time"
)

const (
	// DefaultTradingDays is the number of trading periods assumed per year.
	DefaultTradingDays = 252

	// DefaultVarConfidence is the confidence level for VaR / CVaR.
	DefaultVarConfidence = 0.95

	// DefaultContribution is the monthly SIP contribution amount. The
	// engine is currency agnostic.
	DefaultContribution = 100.0
)

// Window presets, in trading days.
const (
	WindowSixMonth  = 126
	WindowOneYear   = 252
	WindowThreeYear = 756
	WindowFiveYear  = 1260
)

// Config carries the engine parameters shared by all computations.
type Config struct {
	// RiskFreeRate is an annual rate expressed as a decimal, e.g. 0.0249.
	RiskFreeRate float64

	// TradingDays is the number of trading periods per year.
	TradingDays int

	// VarConfidence is the confidence level for VaR / CVaR, in (0, 1).
	VarConfidence float64
}

// DefaultConfig returns the engine defaults used by the CLI and API when no
// overrides are configured.
func DefaultConfig() Config {
	return Config{
		RiskFreeRate:  0.0249,
		TradingDays:   DefaultTradingDays,
		VarConfidence: DefaultVarConfidence,
	}
}

// PriceSeries is the NAV history of a single entity (fund, benchmark or
// comparison fund). Dates are strictly increasing and prices positive; both
// are guaranteed by the data layer.
type PriceSeries struct {
	Name   string
	Dates  []time.Time
	Prices []float64
}

// ReturnSeries holds the simple returns derived from a PriceSeries. It is
// one entry shorter than its source: the first NAV has no defined return.
type ReturnSeries struct {
	Name    string
	Dates   []time.Time
	Returns []float64
}

// Len returns the number of return periods in the series.
func (rs ReturnSeries) Len() int {
	return len(rs.Returns)
}

// Returns converts a price series into a simple return series,
// r[t] = p[t]/p[t-1] - 1. At least two prices are required.
func Returns(prices PriceSeries) (ReturnSeries, error) {
	if len(prices.Prices) < 2 {
		return ReturnSeries{}, ErrInsufficientData
	}

	rets := ReturnSeries{
		Name:    prices.Name,
		Dates:   make([]time.Time, 0, len(prices.Prices)-1),
		Returns: make([]float64, 0, len(prices.Prices)-1),
	}

	for ii := 1; ii < len(prices.Prices); ii++ {
		rets.Dates = append(rets.Dates, prices.Dates[ii])
		rets.Returns = append(rets.Returns, prices.Prices[ii]/prices.Prices[ii-1]-1.0)
	}

	return rets, nil
}

// align performs an inner join of two return series on their dates. Both
// inputs are date ordered so a single merge pass suffices.
func align(a, b ReturnSeries) (dates []time.Time, ra, rb []float64) {
	ii, jj := 0, 0
	for ii < len(a.Dates) && jj < len(b.Dates) {
		switch {
		case a.Dates[ii].Before(b.Dates[jj]):
			ii++
		case b.Dates[jj].Before(a.Dates[ii]):
			jj++
		default:
			dates = append(dates, a.Dates[ii])
			ra = append(ra, a.Returns[ii])
			rb = append(rb, b.Returns[jj])
			ii++
			jj++
		}
	}
	return
}

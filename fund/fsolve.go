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
)

const (
	irrGuess      = 0.01
	irrEpsilon    = 1e-6
	irrIterations = 100
)

// IRR solves for the periodic internal rate of return of a cash-flow
// stream: the rate r with sum(cashflows[i] / (1+r)^i) == 0. Outflows are
// negative, inflows positive, one entry per period with index 0 the first
// period.
//
// The solve is a Newton-Raphson iteration bounded by a hard cap. When the
// iteration fails to converge - a vanishing derivative, an iterate outside
// the (-1, inf) domain, or the cap exceeded - the result is
// ErrDidNotConverge. Callers treat that as "IRR undefined for this entity",
// never as a value.
func IRR(cashflows []float64) (float64, error) {
	if len(cashflows) < 2 {
		return 0, ErrInsufficientData
	}

	rate := irrGuess
	for ii := 0; ii < irrIterations; ii++ {
		npv, derivative := npvAndDerivative(cashflows, rate)
		if math.Abs(npv) < irrEpsilon {
			return rate, nil
		}

		if math.Abs(derivative) < 1e-12 {
			return 0, ErrDidNotConverge
		}

		rate -= npv / derivative
		if rate <= -1.0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
			return 0, ErrDidNotConverge
		}
	}

	return 0, ErrDidNotConverge
}

// AnnualizedIRR converts a monthly IRR to an annual rate.
func AnnualizedIRR(monthlyRate float64) float64 {
	return math.Pow(1.0+monthlyRate, 12.0) - 1.0
}

func npvAndDerivative(cashflows []float64, rate float64) (npv, derivative float64) {
	for ii, cf := range cashflows {
		t := float64(ii)
		discount := math.Pow(1.0+rate, t)
		npv += cf / discount
		if ii > 0 {
			derivative -= t * cf / math.Pow(1.0+rate, t+1.0)
		}
	}
	return
}

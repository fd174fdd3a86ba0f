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
	"gonum.org/v1/gonum/stat"
)

// OutlierClass flags a value relative to its peers.
type OutlierClass string

const (
	OutlierNormal OutlierClass = "normal"
	OutlierHigh   OutlierClass = "high"
	OutlierLow    OutlierClass = "low"
)

// outlierSigma is the number of standard deviations beyond which a value
// is flagged.
const outlierSigma = 2.0

// ClassifyOutliers flags each value against the population mean and
// standard deviation of the supplied values themselves. Values above
// mean + 2 sigma are high, below mean - 2 sigma low, everything else
// normal. A single extreme value inflates sigma enough that it may still
// classify as normal; that is the intended behavior of a population-based
// threshold.
func ClassifyOutliers(values []float64) []OutlierClass {
	classes := make([]OutlierClass, len(values))
	if len(values) == 0 {
		return classes
	}

	mean := stat.Mean(values, nil)
	sigma := stat.PopStdDev(values, nil)
	upper := mean + outlierSigma*sigma
	lower := mean - outlierSigma*sigma

	for ii, v := range values {
		switch {
		case v > upper:
			classes[ii] = OutlierHigh
		case v < lower:
			classes[ii] = OutlierLow
		default:
			classes[ii] = OutlierNormal
		}
	}

	return classes
}

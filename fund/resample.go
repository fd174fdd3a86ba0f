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
	"time"
)

// Period selects a calendar resampling bucket.
type Period int

const (
	Monthly Period = iota
	Annually
)

// Resample aggregates a return series into calendar buckets, compounding
// the returns that fall inside each bucket: prod(1+r) - 1. Buckets are
// stamped at calendar period end (month end, year end). Compounding, not
// summing, is the contract everywhere resampled returns are consumed.
func Resample(rets ReturnSeries, period Period) ReturnSeries {
	out := ReturnSeries{Name: rets.Name}
	if rets.Len() == 0 {
		return out
	}

	bucketOf := func(t time.Time) time.Time {
		switch period {
		case Annually:
			return time.Date(t.Year(), time.December, 31, 0, 0, 0, 0, t.Location())
		default:
			// day 0 of the next month is the last day of this month
			return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location())
		}
	}

	bucket := bucketOf(rets.Dates[0])
	compound := 1.0
	for ii, r := range rets.Returns {
		b := bucketOf(rets.Dates[ii])
		if !b.Equal(bucket) {
			out.Dates = append(out.Dates, bucket)
			out.Returns = append(out.Returns, compound-1.0)
			bucket = b
			compound = 1.0
		}
		compound *= 1.0 + r
	}

	out.Dates = append(out.Dates, bucket)
	out.Returns = append(out.Returns, compound-1.0)

	return out
}

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

	"github.com/goccy/go-json"
)

// Scalar is a metric value that may be undefined for the given inputs.
// The zero value is undefined. An undefined metric is distinct from the
// zero-by-convention results documented on ComputeMetrics: those are
// Defined(0).
type Scalar struct {
	Value   float64
	Defined bool
}

// Defined wraps a float as a defined metric value. NaN and infinities
// collapse to undefined so that a record never carries a non-finite number.
func Defined(v float64) Scalar {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Scalar{}
	}
	return Scalar{Value: v, Defined: true}
}

// Undefined returns the undefined marker.
func Undefined() Scalar {
	return Scalar{}
}

// Float64 returns the value, or NaN when undefined.
func (s Scalar) Float64() float64 {
	if !s.Defined {
		return math.NaN()
	}
	return s.Value
}

// MarshalJSON renders undefined metrics as null.
func (s Scalar) MarshalJSON() ([]byte, error) {
	if !s.Defined {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

// UnmarshalJSON parses null as undefined.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = Scalar{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = Defined(v)
	return nil
}

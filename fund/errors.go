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

import "errors"

var (
	ErrInsufficientData = errors.New("not enough data points")
	ErrNoOverlap        = errors.New("series share no common dates")
	ErrDidNotConverge   = errors.New("did not converge")
	ErrInvalidWindow    = errors.New("window must be a positive number of periods")
	ErrUnknownKind      = errors.New("unknown rolling metric kind")
	ErrNoBenchmark      = errors.New("metric requires a benchmark series")
	ErrBadContribution  = errors.New("contribution must be positive")
)

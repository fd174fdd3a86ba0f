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

package fund_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/stat"

	"github.com/fund-investigator/fi-api/fund"
)

var _ = Describe("Rolling tests", func() {
	opts := func(window int, kind fund.RollingKind, weighting fund.Weighting) fund.RollingOptions {
		return fund.RollingOptions{
			Window:    window,
			Kind:      kind,
			Weighting: weighting,
			Config:    fund.DefaultConfig(),
		}
	}

	Context("with simple weighting", func() {
		It("leaves the warm-up window NaN, never zero", func() {
			rets := seriesOf("TEST", 0.01, 0.02, 0.03, 0.04)
			rolling, err := fund.Rolling(rets, nil, opts(3, fund.RollingVolatility, fund.SimpleWeighting))
			Expect(err).To(BeNil())
			Expect(math.IsNaN(rolling.Values[0])).To(BeTrue())
			Expect(math.IsNaN(rolling.Values[1])).To(BeTrue())
			Expect(math.IsNaN(rolling.Values[2])).To(BeFalse())
		})

		It("annualizes the compounded window return by 252/window", func() {
			rets := seriesOf("TEST", 0.1, 0.2, 0.3)
			rolling, err := fund.Rolling(rets, nil, opts(2, fund.RollingReturn, fund.SimpleWeighting))
			Expect(err).To(BeNil())
			Expect(rolling.Values[1]).Should(BeNumerically("~", (1.1*1.2-1.0)*126.0, 1e-9))
			Expect(rolling.Values[2]).Should(BeNumerically("~", (1.2*1.3-1.0)*126.0, 1e-9))
		})

		It("matches the sample standard deviation of each window", func() {
			rets := seriesOf("TEST", 0.01, -0.02, 0.03, -0.01, 0.02)
			rolling, err := fund.Rolling(rets, nil, opts(3, fund.RollingVolatility, fund.SimpleWeighting))
			Expect(err).To(BeNil())

			window := rets.Returns[2:5]
			expected := stat.StdDev(window, nil) * math.Sqrt(252.0)
			Expect(rolling.Values[4]).Should(BeNumerically("~", expected, 1e-12))
		})

		It("rolling sharpe of a flat window is 0", func() {
			rets := seriesOf("TEST", 0.01, 0.01, 0.01)
			rolling, err := fund.Rolling(rets, nil, opts(2, fund.RollingSharpe, fund.SimpleWeighting))
			Expect(err).To(BeNil())
			Expect(rolling.Values[1]).To(Equal(0.0))
		})

		It("rolling beta of a doubled fund is 2 everywhere", func() {
			bench := seriesOf("BENCH", 0.01, -0.02, 0.03, -0.01, 0.02)
			doubled := seriesOf("FUND", 0.02, -0.04, 0.06, -0.02, 0.04)

			rolling, err := fund.Rolling(doubled, &bench, opts(2, fund.RollingBeta, fund.SimpleWeighting))
			Expect(err).To(BeNil())
			for ii := 1; ii < len(rolling.Values); ii++ {
				Expect(rolling.Values[ii]).Should(BeNumerically("~", 2.0, 1e-9))
			}
		})

		It("rolling correlation of a scaled fund is 1 everywhere", func() {
			bench := seriesOf("BENCH", 0.01, -0.02, 0.03, -0.01, 0.02)
			doubled := seriesOf("FUND", 0.02, -0.04, 0.06, -0.02, 0.04)

			rolling, err := fund.Rolling(doubled, &bench, opts(3, fund.RollingCorrelation, fund.SimpleWeighting))
			Expect(err).To(BeNil())
			for ii := 2; ii < len(rolling.Values); ii++ {
				Expect(rolling.Values[ii]).Should(BeNumerically("~", 1.0, 1e-9))
			}
		})
	})

	Context("with exponential weighting", func() {
		It("weights recent observations more heavily", func() {
			// span 2 gives alpha 2/3: weights 1/3 and 1 over a two point
			// window, so the mean is (r0 + 3*r1) / 4
			rets := seriesOf("TEST", 0.1, 0.2)
			rolling, err := fund.Rolling(rets, nil, opts(2, fund.RollingReturn, fund.ExponentialWeighting))
			Expect(err).To(BeNil())
			Expect(math.IsNaN(rolling.Values[0])).To(BeTrue())
			Expect(rolling.Values[1]).Should(BeNumerically("~", (0.1+3*0.2)/4.0*252.0, 1e-9))
		})

		It("exponential beta of a doubled fund is still 2", func() {
			bench := seriesOf("BENCH", 0.01, -0.02, 0.03, -0.01, 0.02, 0.015, -0.005, 0.01)
			doubled := seriesOf("FUND", 0.02, -0.04, 0.06, -0.02, 0.04, 0.03, -0.01, 0.02)

			rolling, err := fund.Rolling(doubled, &bench, opts(4, fund.RollingBeta, fund.ExponentialWeighting))
			Expect(err).To(BeNil())
			for ii := 3; ii < len(rolling.Values); ii++ {
				Expect(rolling.Values[ii]).Should(BeNumerically("~", 2.0, 1e-9))
			}
		})
	})

	Context("with invalid options", func() {
		It("rejects a non-positive window", func() {
			rets := seriesOf("TEST", 0.01, 0.02)
			_, err := fund.Rolling(rets, nil, opts(0, fund.RollingReturn, fund.SimpleWeighting))
			Expect(err).To(Equal(fund.ErrInvalidWindow))
		})

		It("rejects an unknown kind", func() {
			rets := seriesOf("TEST", 0.01, 0.02)
			_, err := fund.Rolling(rets, nil, opts(2, fund.RollingKind("bogus"), fund.SimpleWeighting))
			Expect(err).To(Equal(fund.ErrUnknownKind))
		})

		It("requires a benchmark for beta and correlation", func() {
			rets := seriesOf("TEST", 0.01, 0.02)
			_, err := fund.Rolling(rets, nil, opts(2, fund.RollingBeta, fund.SimpleWeighting))
			Expect(err).To(Equal(fund.ErrNoBenchmark))
		})

		It("rejects a window longer than the series", func() {
			rets := seriesOf("TEST", 0.01, 0.02)
			_, err := fund.Rolling(rets, nil, opts(10, fund.RollingReturn, fund.SimpleWeighting))
			Expect(err).To(Equal(fund.ErrInsufficientData))
		})
	})
})

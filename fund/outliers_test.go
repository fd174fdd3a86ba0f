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
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fund-investigator/fi-api/fund"
)

var _ = Describe("Outlier tests", func() {
	Context("when classifying values", func() {
		It("flags values beyond two population sigma", func() {
			values := []float64{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1}
			classes := fund.ClassifyOutliers(values)
			for ii := 0; ii < 10; ii++ {
				Expect(classes[ii]).To(Equal(fund.OutlierNormal))
			}
			Expect(classes[10]).To(Equal(fund.OutlierHigh))
		})

		It("flags extreme lows symmetrically", func() {
			values := []float64{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, -1}
			classes := fund.ClassifyOutliers(values)
			Expect(classes[10]).To(Equal(fund.OutlierLow))
		})

		It("leaves a small population with one extreme value all normal", func() {
			// a single extreme observation inflates the population sigma so
			// much that nothing clears the two-sigma threshold
			classes := fund.ClassifyOutliers([]float64{1, 2, 3, 4, 100})
			for _, class := range classes {
				Expect(class).To(Equal(fund.OutlierNormal))
			}
		})

		It("returns an empty classification for empty input", func() {
			Expect(fund.ClassifyOutliers([]float64{})).To(HaveLen(0))
			Expect(fund.ClassifyOutliers(nil)).To(HaveLen(0))
		})

		It("classifies identical values as normal", func() {
			classes := fund.ClassifyOutliers([]float64{0.01, 0.01, 0.01})
			for _, class := range classes {
				Expect(class).To(Equal(fund.OutlierNormal))
			}
		})
	})
})

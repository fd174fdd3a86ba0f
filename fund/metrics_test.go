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

	"github.com/goccy/go-json"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fund-investigator/fi-api/fund"
)

var _ = Describe("Metrics tests", func() {
	var cfg fund.Config

	BeforeEach(func() {
		cfg = fund.DefaultConfig()
	})

	Context("when converting prices to returns", func() {
		It("computes simple returns one period shorter than the prices", func() {
			rets, err := fund.Returns(pricesOf("TEST", 100, 110, 99))
			Expect(err).To(BeNil())
			Expect(rets.Len()).To(Equal(2))
			Expect(rets.Returns[0]).Should(BeNumerically("~", 0.10))
			Expect(rets.Returns[1]).Should(BeNumerically("~", -0.10))
		})

		It("requires at least two prices", func() {
			_, err := fund.Returns(pricesOf("TEST", 100))
			Expect(err).To(Equal(fund.ErrInsufficientData))
		})
	})

	Context("when computing cumulative return and drawdown", func() {
		It("a gain then equal loss compounds to a small net loss", func() {
			rets, err := fund.Returns(pricesOf("TEST", 100, 110, 99))
			Expect(err).To(BeNil())
			Expect(fund.CumulativeReturn(rets)).Should(BeNumerically("~", -0.01))
			Expect(fund.MaxDrawdown(rets)).Should(BeNumerically("~", -0.10))
		})
	})

	Context("when computing CAGR", func() {
		It("recovers the annual rate from one year of constant daily growth", func() {
			daily := math.Pow(1.08, 1.0/252.0) - 1.0
			rets := make([]float64, 252)
			for ii := range rets {
				rets[ii] = daily
			}
			cagr := fund.CAGR(seriesOf("TEST", rets...), cfg)
			Expect(cagr.Defined).To(BeTrue())
			Expect(cagr.Value).Should(BeNumerically("~", 0.08, 1e-9))
		})
	})

	Context("when volatility is zero", func() {
		It("sharpe is 0 by convention", func() {
			rets := seriesOf("TEST", 0.001, 0.001, 0.001, 0.001)
			sharpe := fund.SharpeRatio(rets, cfg)
			Expect(sharpe.Defined).To(BeTrue())
			Expect(sharpe.Value).To(Equal(0.0))
		})
	})

	Context("when there are no negative returns", func() {
		It("sortino is 0 by convention", func() {
			rets := seriesOf("TEST", 0.01, 0.02, 0.005)
			sortino := fund.SortinoRatio(rets, cfg)
			Expect(sortino.Defined).To(BeTrue())
			Expect(sortino.Value).To(Equal(0.0))
		})
	})

	Context("when the series never draws down", func() {
		It("calmar is 0 by convention", func() {
			rets := seriesOf("TEST", 0.01, 0.02, 0.005)
			calmar := fund.CalmarRatio(rets, cfg)
			Expect(calmar.Defined).To(BeTrue())
			Expect(calmar.Value).To(Equal(0.0))
		})
	})

	Context("when no returns fall below the omega threshold", func() {
		It("omega is 0 by convention", func() {
			rets := seriesOf("TEST", 0.05, 0.04, 0.06)
			omega := fund.OmegaRatio(rets, cfg)
			Expect(omega.Defined).To(BeTrue())
			Expect(omega.Value).To(Equal(0.0))
		})
	})

	Context("when computing value at risk", func() {
		It("cvar is at least as severe as var", func() {
			rets := seriesOf("TEST", 0.01, -0.02, 0.03, -0.04, 0.02, -0.01, 0.05, -0.03, 0.01, -0.05,
				0.02, -0.02, 0.03, -0.01, 0.04, -0.06, 0.01, -0.02, 0.02, -0.03)
			valueAtRisk, conditional := fund.ValueAtRisk(rets, cfg.VarConfidence)
			Expect(valueAtRisk.Defined).To(BeTrue())
			Expect(conditional.Defined).To(BeTrue())
			Expect(valueAtRisk.Value).Should(BeNumerically("<", 0))
			Expect(conditional.Value).Should(BeNumerically("<=", valueAtRisk.Value))
		})

		It("is undefined for an out of range confidence", func() {
			rets := seriesOf("TEST", 0.01, -0.02)
			valueAtRisk, conditional := fund.ValueAtRisk(rets, 1.0)
			Expect(valueAtRisk.Defined).To(BeFalse())
			Expect(conditional.Defined).To(BeFalse())
		})
	})

	Context("when computing win statistics", func() {
		It("zero returns count as neither win nor loss", func() {
			rets := seriesOf("TEST", 0.01, -0.01, 0.02, 0.0)
			winRate := fund.WinRate(rets)
			Expect(winRate.Defined).To(BeTrue())
			Expect(winRate.Value).Should(BeNumerically("~", 0.5))
		})

		It("a zero return breaks a streak without starting one", func() {
			rets := seriesOf("TEST", 0.01, 0.01, -0.01, 0.0, 0.01, 0.01, 0.01, -0.01, -0.01)
			wins, losses := fund.ConsecutiveStreaks(rets)
			Expect(wins).To(Equal(3))
			Expect(losses).To(Equal(2))
		})
	})

	Context("when computing gain to pain", func() {
		It("divides summed gains by summed losses", func() {
			rets := seriesOf("TEST", 0.01, 0.02, -0.01)
			gainPain := fund.GainPainRatio(rets)
			Expect(gainPain.Defined).To(BeTrue())
			Expect(gainPain.Value).Should(BeNumerically("~", 3.0))
		})

		It("is 0 by convention without losses", func() {
			rets := seriesOf("TEST", 0.01, 0.02)
			gainPain := fund.GainPainRatio(rets)
			Expect(gainPain.Defined).To(BeTrue())
			Expect(gainPain.Value).To(Equal(0.0))
		})
	})

	Context("when computing tail ratios", func() {
		It("is undefined when the mean return is exactly zero", func() {
			rets := seriesOf("TEST", 0.01, -0.01)
			upper, lower := fund.TailRatios(rets)
			Expect(upper.Defined).To(BeFalse())
			Expect(lower.Defined).To(BeFalse())
		})
	})

	Context("when comparing against a benchmark", func() {
		It("a fund that doubles the benchmark has beta 2 and perfect correlation", func() {
			bench := seriesOf("BENCH", 0.01, -0.02, 0.03, -0.01, 0.02)
			doubled := seriesOf("FUND", 0.02, -0.04, 0.06, -0.02, 0.04)

			metrics, err := fund.ComputeMetrics(doubled, &bench, cfg)
			Expect(err).To(BeNil())
			Expect(metrics.Relative).ToNot(BeNil())
			Expect(metrics.Relative.Beta.Value).Should(BeNumerically("~", 2.0))
			Expect(metrics.Relative.Correlation.Value).Should(BeNumerically("~", 1.0))
			Expect(metrics.Relative.RSquared.Value).Should(BeNumerically("~", 1.0))
		})

		It("aligns on the inner join of dates", func() {
			fundRets := seriesOf("FUND", 0.01, 0.02, 0.03, 0.04)
			bench := seriesOf("BENCH", 0.01, 0.02, 0.03, 0.04)
			// drop the first two benchmark dates so only the tail overlaps
			bench.Dates = bench.Dates[2:]
			bench.Returns = bench.Returns[2:]

			_, err := fund.Beta(fundRets, bench)
			Expect(err).To(BeNil())
		})

		It("reports an alignment error when no dates are shared", func() {
			fundRets := seriesOf("FUND", 0.01, 0.02)
			bench := seriesOf("BENCH", 0.01, 0.02)
			for ii := range bench.Dates {
				bench.Dates[ii] = bench.Dates[ii].AddDate(1, 0, 0)
			}

			_, err := fund.Beta(fundRets, bench)
			Expect(err).To(Equal(fund.ErrNoOverlap))

			metrics, err := fund.ComputeMetrics(fundRets, &bench, cfg)
			Expect(err).To(BeNil())
			Expect(metrics.Relative).To(BeNil())
		})

		It("a flat benchmark yields beta 0 and undefined correlation", func() {
			fundRets := seriesOf("FUND", 0.01, -0.02, 0.03)
			bench := seriesOf("BENCH", 0.005, 0.005, 0.005)

			beta, err := fund.Beta(fundRets, bench)
			Expect(err).To(BeNil())
			Expect(beta).To(Equal(0.0))

			corr, err := fund.Correlation(fundRets, bench)
			Expect(err).To(BeNil())
			Expect(corr.Defined).To(BeFalse())
		})
	})

	Context("when computing the full record", func() {
		It("only an empty series is an error", func() {
			_, err := fund.ComputeMetrics(fund.ReturnSeries{Name: "EMPTY"}, nil, cfg)
			Expect(err).To(Equal(fund.ErrInsufficientData))
		})

		It("identical inputs yield identical records", func() {
			rets := seriesOf("TEST", 0.01, -0.02, 0.03, -0.01)
			first, err := fund.ComputeMetrics(rets, nil, cfg)
			Expect(err).To(BeNil())
			second, err := fund.ComputeMetrics(rets, nil, cfg)
			Expect(err).To(BeNil())
			Expect(first).To(Equal(second))
		})

		It("time in market is always 1", func() {
			rets := seriesOf("TEST", 0.01, -0.02)
			metrics, err := fund.ComputeMetrics(rets, nil, cfg)
			Expect(err).To(BeNil())
			Expect(metrics.TimeInMarket.Value).To(Equal(1.0))
		})
	})

	Context("when projecting expected returns and scaled risk", func() {
		It("scales the mean return to a month and a year of trading days", func() {
			rets := seriesOf("TEST", 0.01, 0.02, 0.03)
			metrics, err := fund.ComputeMetrics(rets, nil, cfg)
			Expect(err).To(BeNil())
			Expect(metrics.ExpectedMonthly.Value).Should(BeNumerically("~", 0.02*21.0, 1e-12))
			Expect(metrics.ExpectedAnnual.Value).Should(BeNumerically("~", 0.02*252.0, 1e-12))
		})

		It("scales daily VaR and CVaR by sqrt(21) and sqrt(252)", func() {
			rets := seriesOf("TEST", 0.01, -0.02, 0.03, -0.04, 0.02, -0.01, 0.015, -0.025, 0.005, -0.03)
			metrics, err := fund.ComputeMetrics(rets, nil, cfg)
			Expect(err).To(BeNil())
			Expect(metrics.ValueAtRisk.Defined).To(BeTrue())
			Expect(metrics.ValueAtRiskMonth.Value).Should(BeNumerically("~", metrics.ValueAtRisk.Value*math.Sqrt(21.0), 1e-12))
			Expect(metrics.ValueAtRiskAnnual.Value).Should(BeNumerically("~", metrics.ValueAtRisk.Value*math.Sqrt(252.0), 1e-12))
			Expect(metrics.ConditionalVaRMonth.Value).Should(BeNumerically("~", metrics.ConditionalVaR.Value*math.Sqrt(21.0), 1e-12))
			Expect(metrics.ConditionalVaRAnnual.Value).Should(BeNumerically("~", metrics.ConditionalVaR.Value*math.Sqrt(252.0), 1e-12))
		})

		It("leaves scaled VaR undefined when the daily figure is undefined", func() {
			Expect(fund.ScaledValueAtRisk(fund.Undefined(), 21).Defined).To(BeFalse())
		})
	})

	Context("when measuring consistency", func() {
		It("counts the fraction of positive calendar months and years", func() {
			monthly, annual := fund.Consistency(monthlyRets("TEST", 0.05, -0.02, 0.03, 0.01))
			Expect(monthly.Defined).To(BeTrue())
			Expect(monthly.Value).Should(BeNumerically("~", 0.75, 1e-12))
			Expect(annual.Defined).To(BeTrue())
			Expect(annual.Value).To(Equal(1.0))
		})

		It("is undefined for an empty series", func() {
			monthly, annual := fund.Consistency(fund.ReturnSeries{Name: "TEST"})
			Expect(monthly.Defined).To(BeFalse())
			Expect(annual.Defined).To(BeFalse())
		})
	})

	Context("when measuring active deviation from a benchmark", func() {
		It("a fund measured against itself has zero active return and risk", func() {
			rets := seriesOf("TEST", 0.01, -0.02, 0.03, -0.01)
			metrics, err := fund.ComputeMetrics(rets, &rets, cfg)
			Expect(err).To(BeNil())
			Expect(metrics.Relative).ToNot(BeNil())
			Expect(metrics.Relative.ActiveReturn.Value).Should(BeNumerically("~", 0.0, 1e-12))
			Expect(metrics.Relative.ActiveRisk.Value).Should(BeNumerically("~", 0.0, 1e-12))
			Expect(metrics.Relative.InformationRatio.Value).To(Equal(0.0))
		})

		It("annualizes the mean and deviation of the return differences", func() {
			bench := seriesOf("BENCH", 0.01, 0.02, 0.03, 0.04)
			outperformer := seriesOf("FUND", 0.02, 0.03, 0.04, 0.05)

			activeReturn, activeRisk, informationRatio, err := fund.ActiveMetrics(outperformer, bench, cfg)
			Expect(err).To(BeNil())
			Expect(activeReturn.Value).Should(BeNumerically("~", 0.01*252.0, 1e-9))
			Expect(activeRisk.Value).Should(BeNumerically("~", 0.0, 1e-12))
			Expect(informationRatio.Value).To(Equal(0.0))
		})

		It("fails when the series share no dates", func() {
			bench := fund.ReturnSeries{Name: "BENCH"}
			rets := seriesOf("FUND", 0.01, 0.02)
			_, _, _, err := fund.ActiveMetrics(rets, bench, cfg)
			Expect(err).To(Equal(fund.ErrNoOverlap))
		})
	})

	Context("when measuring capture ratios", func() {
		It("a fund identical to the benchmark captures 100% both ways", func() {
			rets := seriesOf("TEST", 0.01, -0.02, 0.03, -0.01)
			metrics, err := fund.ComputeMetrics(rets, &rets, cfg)
			Expect(err).To(BeNil())
			Expect(metrics.Relative.UpcaptureRatio.Value).Should(BeNumerically("~", 1.0, 1e-12))
			Expect(metrics.Relative.DowncaptureRatio.Value).Should(BeNumerically("~", 1.0, 1e-12))
		})

		It("a fund falling half as much has downcapture 0.5", func() {
			bench := seriesOf("BENCH", 0.02, -0.02)
			defensive := seriesOf("FUND", 0.02, -0.01)

			up, down, err := fund.CaptureRatios(defensive, bench)
			Expect(err).To(BeNil())
			Expect(up.Value).Should(BeNumerically("~", 1.0, 1e-12))
			Expect(down.Value).Should(BeNumerically("~", 0.5, 1e-12))
		})

		It("a benchmark that never falls yields downcapture 0 by convention", func() {
			bench := seriesOf("BENCH", 0.01, 0.02)
			rets := seriesOf("FUND", 0.02, 0.01)

			_, down, err := fund.CaptureRatios(rets, bench)
			Expect(err).To(BeNil())
			Expect(down.Defined).To(BeTrue())
			Expect(down.Value).To(Equal(0.0))
		})
	})

	Context("when serializing scalars", func() {
		It("undefined metrics render as null and round-trip", func() {
			body, err := json.Marshal(fund.Undefined())
			Expect(err).To(BeNil())
			Expect(string(body)).To(Equal("null"))

			var s fund.Scalar
			Expect(json.Unmarshal([]byte("null"), &s)).To(BeNil())
			Expect(s.Defined).To(BeFalse())

			Expect(json.Unmarshal([]byte("0.5"), &s)).To(BeNil())
			Expect(s.Defined).To(BeTrue())
			Expect(s.Value).To(Equal(0.5))
		})

		It("non-finite values collapse to undefined", func() {
			Expect(fund.Defined(math.NaN()).Defined).To(BeFalse())
			Expect(fund.Defined(math.Inf(1)).Defined).To(BeFalse())
			Expect(math.IsNaN(fund.Undefined().Float64())).To(BeTrue())
		})
	})
})

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
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Metrics is the flat record of scalar metrics computed for one return
// series. Fields that can be ill-defined for a given input are Scalar;
// integer fields (streaks, durations) are always defined, zero when the
// series has no qualifying run. Relative is nil when no benchmark was
// supplied or when the fund and benchmark share no common dates.
type Metrics struct {
	CumulativeReturn     Scalar            `json:"cumulative_return"`
	CAGR                 Scalar            `json:"cagr"`
	Volatility           Scalar            `json:"volatility_ann"`
	SharpeRatio          Scalar            `json:"sharpe_ratio"`
	SortinoRatio         Scalar            `json:"sortino_ratio"`
	CalmarRatio          Scalar            `json:"calmar_ratio"`
	OmegaRatio           Scalar            `json:"omega_ratio"`
	MaxDrawdown          Scalar            `json:"max_drawdown"`
	AvgDrawdown          Scalar            `json:"avg_drawdown"`
	LongestDrawdownDays  int               `json:"longest_dd_days"`
	Skew                 Scalar            `json:"skew"`
	ExcessKurtosis       Scalar            `json:"kurtosis"`
	ValueAtRisk          Scalar            `json:"value_at_risk"`
	ConditionalVaR       Scalar            `json:"conditional_var"`
	ValueAtRiskMonth     Scalar            `json:"value_at_risk_monthly"`
	ConditionalVaRMonth  Scalar            `json:"conditional_var_monthly"`
	ValueAtRiskAnnual    Scalar            `json:"value_at_risk_annual"`
	ConditionalVaRAnnual Scalar            `json:"conditional_var_annual"`
	ExpectedMonthly      Scalar            `json:"expected_monthly_return"`
	ExpectedAnnual       Scalar            `json:"expected_annual_return"`
	MonthlyConsistency   Scalar            `json:"monthly_consistency"`
	AnnualConsistency    Scalar            `json:"annual_consistency"`
	WinRate              Scalar            `json:"win_rate"`
	MaxConsecutiveWins   int               `json:"max_consecutive_wins"`
	MaxConsecutiveLosses int               `json:"max_consecutive_losses"`
	GainPainRatio        Scalar            `json:"gain_pain_ratio"`
	TailRatioUpper       Scalar            `json:"tail_ratio_upper"`
	TailRatioLower       Scalar            `json:"tail_ratio_lower"`
	TimeInMarket         Scalar            `json:"time_in_market"`
	Relative             *RelativeMetrics  `json:"relative,omitempty"`
}

// RelativeMetrics are the benchmark-relative metrics, computed on the inner
// join of the fund and benchmark dates. A fund measured against itself has
// Beta 1, ActiveReturn/ActiveRisk/InformationRatio 0 and capture ratios 1.
type RelativeMetrics struct {
	Alpha            Scalar `json:"alpha"`
	Beta             Scalar `json:"beta"`
	Correlation      Scalar `json:"correlation"`
	RSquared         Scalar `json:"r_squared"`
	ActiveReturn     Scalar `json:"active_return"`
	ActiveRisk       Scalar `json:"active_risk"`
	InformationRatio Scalar `json:"information_ratio"`
	UpcaptureRatio   Scalar `json:"upcapture_ratio"`
	DowncaptureRatio Scalar `json:"downcapture_ratio"`
}

// CumulativeReturn is the total compounded return of the series,
// prod(1+r) - 1.
func CumulativeReturn(rets ReturnSeries) float64 {
	cum := 1.0
	for _, r := range rets.Returns {
		cum *= 1.0 + r
	}
	return cum - 1.0
}

// CAGR computes the compound annual growth rate,
// (1+cumulative)^(1/years) - 1 with years = n / cfg.TradingDays. Undefined
// for an empty series.
func CAGR(rets ReturnSeries, cfg Config) Scalar {
	years := float64(rets.Len()) / float64(cfg.TradingDays)
	if years <= 0 {
		return Undefined()
	}
	return Defined(math.Pow(1.0+CumulativeReturn(rets), 1.0/years) - 1.0)
}

// Volatility is the annualized sample standard deviation of returns.
func Volatility(rets ReturnSeries, cfg Config) float64 {
	return stat.StdDev(rets.Returns, nil) * math.Sqrt(float64(cfg.TradingDays))
}

// SharpeRatio is the annualized excess return per unit of volatility,
// (mean * periods - rf) / volatility. A zero-volatility series yields 0 by
// convention rather than an error.
func SharpeRatio(rets ReturnSeries, cfg Config) Scalar {
	excess := stat.Mean(rets.Returns, nil)*float64(cfg.TradingDays) - cfg.RiskFreeRate
	vol := Volatility(rets, cfg)
	if vol == 0 {
		return Defined(0)
	}
	return Defined(excess / vol)
}

// SortinoRatio is the Sharpe numerator divided by the annualized standard
// deviation of the strictly negative returns. With no negative returns the
// downside deviation is 0 and the ratio is 0 by convention.
func SortinoRatio(rets ReturnSeries, cfg Config) Scalar {
	excess := stat.Mean(rets.Returns, nil)*float64(cfg.TradingDays) - cfg.RiskFreeRate

	downside := make([]float64, 0, rets.Len())
	for _, r := range rets.Returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}

	if len(downside) == 0 {
		return Defined(0)
	}

	downsideVol := stat.StdDev(downside, nil) * math.Sqrt(float64(cfg.TradingDays))
	if downsideVol == 0 {
		return Defined(0)
	}
	return Defined(excess / downsideVol)
}

// CalmarRatio is CAGR over the magnitude of the maximum drawdown. A series
// that never draws down yields 0 by convention.
func CalmarRatio(rets ReturnSeries, cfg Config) Scalar {
	cagr := CAGR(rets, cfg)
	if !cagr.Defined {
		return Undefined()
	}

	maxDD := MaxDrawdown(rets)
	if maxDD == 0 {
		return Defined(0)
	}
	return Defined(cagr.Value / math.Abs(maxDD))
}

// OmegaRatio is the sum of returns above the periodic risk-free threshold
// over the magnitude of the sum of returns below it. With no returns below
// the threshold the ratio is 0 by convention.
func OmegaRatio(rets ReturnSeries, cfg Config) Scalar {
	threshold := math.Pow(1.0+cfg.RiskFreeRate, 1.0/float64(cfg.TradingDays)) - 1.0

	var gains, losses float64
	for _, r := range rets.Returns {
		switch {
		case r > threshold:
			gains += r
		case r < threshold:
			losses += r
		}
	}

	if losses == 0 {
		return Defined(0)
	}
	return Defined(gains / math.Abs(losses))
}

// ValueAtRisk returns the historical VaR and CVaR at the given confidence
// level: VaR is the (1-confidence) quantile of returns and CVaR the mean of
// the returns at or below it.
func ValueAtRisk(rets ReturnSeries, confidence float64) (valueAtRisk, conditional Scalar) {
	if rets.Len() == 0 || confidence <= 0 || confidence >= 1 {
		return Undefined(), Undefined()
	}

	sorted := make([]float64, rets.Len())
	copy(sorted, rets.Returns)
	sort.Float64s(sorted)

	cutoff := stat.Quantile(1.0-confidence, stat.Empirical, sorted, nil)

	tail := make([]float64, 0, rets.Len())
	for _, r := range sorted {
		if r <= cutoff {
			tail = append(tail, r)
		}
	}

	return Defined(cutoff), Defined(stat.Mean(tail, nil))
}

// ExpectedReturns projects the mean periodic return onto a month and a
// year: mean * (tradingDays/12) and mean * tradingDays.
func ExpectedReturns(rets ReturnSeries, cfg Config) (monthly, annual Scalar) {
	if rets.Len() == 0 {
		return Undefined(), Undefined()
	}

	mean := stat.Mean(rets.Returns, nil)
	monthDays := float64(cfg.TradingDays) / 12.0
	return Defined(mean * monthDays), Defined(mean * float64(cfg.TradingDays))
}

// ScaledValueAtRisk scales a per-period VaR or CVaR figure to a longer
// horizon by the square root of the number of periods it contains.
func ScaledValueAtRisk(periodic Scalar, periods float64) Scalar {
	if !periodic.Defined || periods <= 0 {
		return Undefined()
	}
	return Defined(periodic.Value * math.Sqrt(periods))
}

// Consistency is the fraction of calendar months and years with a positive
// compounded return.
func Consistency(rets ReturnSeries) (monthly, annual Scalar) {
	return consistencyOf(Resample(rets, Monthly)), consistencyOf(Resample(rets, Annually))
}

func consistencyOf(rets ReturnSeries) Scalar {
	if rets.Len() == 0 {
		return Undefined()
	}

	positive := 0
	for _, r := range rets.Returns {
		if r > 0 {
			positive++
		}
	}
	return Defined(float64(positive) / float64(rets.Len()))
}

// WinRate is the fraction of periods with a strictly positive return.
func WinRate(rets ReturnSeries) Scalar {
	if rets.Len() == 0 {
		return Undefined()
	}

	wins := 0
	for _, r := range rets.Returns {
		if r > 0 {
			wins++
		}
	}
	return Defined(float64(wins) / float64(rets.Len()))
}

// ConsecutiveStreaks returns the longest run of strictly positive returns
// and the longest run of strictly negative returns. A zero return breaks a
// streak without starting one of either sign.
func ConsecutiveStreaks(rets ReturnSeries) (maxWins, maxLosses int) {
	var curWins, curLosses int
	for _, r := range rets.Returns {
		switch {
		case r > 0:
			curWins++
			curLosses = 0
		case r < 0:
			curLosses++
			curWins = 0
		default:
			curWins = 0
			curLosses = 0
		}

		if curWins > maxWins {
			maxWins = curWins
		}
		if curLosses > maxLosses {
			maxLosses = curLosses
		}
	}
	return
}

// GainPainRatio is the sum of positive returns over the magnitude of the
// sum of negative returns; 0 by convention when there are no losses.
func GainPainRatio(rets ReturnSeries) Scalar {
	var gains, losses float64
	for _, r := range rets.Returns {
		if r > 0 {
			gains += r
		} else {
			losses += r
		}
	}

	if losses == 0 {
		return Defined(0)
	}
	return Defined(gains / math.Abs(losses))
}

// TailRatios measures how fat the distribution tails are relative to the
// mean return: upper = mean(r >= p95) / |mean|, lower = |mean(r <= p5)| /
// |mean|. Both are undefined when the mean return is exactly zero.
func TailRatios(rets ReturnSeries) (upper, lower Scalar) {
	if rets.Len() == 0 {
		return Undefined(), Undefined()
	}

	mean := stat.Mean(rets.Returns, nil)
	if mean == 0 {
		return Undefined(), Undefined()
	}

	sorted := make([]float64, rets.Len())
	copy(sorted, rets.Returns)
	sort.Float64s(sorted)

	p95 := stat.Quantile(0.95, stat.Empirical, sorted, nil)
	p5 := stat.Quantile(0.05, stat.Empirical, sorted, nil)

	var upperTail, lowerTail []float64
	for _, r := range sorted {
		if r >= p95 {
			upperTail = append(upperTail, r)
		}
		if r <= p5 {
			lowerTail = append(lowerTail, r)
		}
	}

	upper = Defined(stat.Mean(upperTail, nil) / math.Abs(mean))
	lower = Defined(math.Abs(stat.Mean(lowerTail, nil)) / math.Abs(mean))
	return
}

// Beta measures the sensitivity of the fund to the benchmark,
// cov(fund, benchmark) / var(benchmark), computed on the inner join of
// their dates. A zero-variance benchmark yields 0 by convention. An empty
// intersection is an alignment error, not a zero.
func Beta(rets, benchmark ReturnSeries) (float64, error) {
	_, rf, rb := align(rets, benchmark)
	if len(rf) == 0 {
		return 0, ErrNoOverlap
	}

	variance := stat.Variance(rb, nil)
	if variance == 0 || math.IsNaN(variance) {
		return 0, nil
	}
	return stat.Covariance(rf, rb, nil) / variance, nil
}

// Correlation is the Pearson correlation of the fund and benchmark on the
// inner join of their dates. Undefined when either side has zero variance.
func Correlation(rets, benchmark ReturnSeries) (Scalar, error) {
	_, rf, rb := align(rets, benchmark)
	if len(rf) == 0 {
		return Undefined(), ErrNoOverlap
	}
	return Defined(stat.Correlation(rf, rb, nil)), nil
}

// ActiveMetrics measures how much and how erratically the fund deviates
// from the benchmark on the inner join of their dates: active return is the
// annualized mean of the per-period differences, active risk (tracking
// error) their annualized standard deviation, and the information ratio the
// quotient of the two. Zero tracking error yields an information ratio of 0
// by convention.
func ActiveMetrics(rets, benchmark ReturnSeries, cfg Config) (activeReturn, activeRisk, informationRatio Scalar, err error) {
	_, rf, rb := align(rets, benchmark)
	if len(rf) == 0 {
		return Undefined(), Undefined(), Undefined(), ErrNoOverlap
	}

	diff := make([]float64, len(rf))
	for ii := range rf {
		diff[ii] = rf[ii] - rb[ii]
	}

	active := stat.Mean(diff, nil) * float64(cfg.TradingDays)
	tracking := stat.StdDev(diff, nil) * math.Sqrt(float64(cfg.TradingDays))

	activeReturn = Defined(active)
	activeRisk = Defined(tracking)
	switch {
	case !activeRisk.Defined:
		informationRatio = Undefined()
	case tracking == 0:
		informationRatio = Defined(0)
	default:
		informationRatio = Defined(active / tracking)
	}
	return activeReturn, activeRisk, informationRatio, nil
}

// CaptureRatios compare the fund's compounded return to the benchmark's
// over the periods the benchmark rose (upcapture) and fell (downcapture),
// on the inner join of their dates. A benchmark with no qualifying periods,
// or one that compounds to exactly zero over them, yields 0 by convention.
func CaptureRatios(rets, benchmark ReturnSeries) (up, down Scalar, err error) {
	_, rf, rb := align(rets, benchmark)
	if len(rf) == 0 {
		return Undefined(), Undefined(), ErrNoOverlap
	}

	upFund, upBench := 1.0, 1.0
	downFund, downBench := 1.0, 1.0
	for ii := range rb {
		switch {
		case rb[ii] > 0:
			upFund *= 1.0 + rf[ii]
			upBench *= 1.0 + rb[ii]
		case rb[ii] < 0:
			downFund *= 1.0 + rf[ii]
			downBench *= 1.0 + rb[ii]
		}
	}

	return captureOf(upFund, upBench), captureOf(downFund, downBench), nil
}

func captureOf(fund, bench float64) Scalar {
	if bench == 1.0 {
		return Defined(0)
	}
	return Defined((fund - 1.0) / (bench - 1.0))
}

// Alpha is the return in excess of what CAPM predicts,
// fundCAGR - (rf + beta*(benchmarkCAGR - rf)).
func Alpha(rets, benchmark ReturnSeries, cfg Config) (Scalar, error) {
	beta, err := Beta(rets, benchmark)
	if err != nil {
		return Undefined(), err
	}

	fundCAGR := CAGR(rets, cfg)
	benchCAGR := CAGR(benchmark, cfg)
	if !fundCAGR.Defined || !benchCAGR.Defined {
		return Undefined(), nil
	}

	rf := cfg.RiskFreeRate
	return Defined(fundCAGR.Value - (rf + beta*(benchCAGR.Value-rf))), nil
}

// ComputeMetrics computes the full metrics record for a return series,
// optionally against a benchmark. Statistical edge cases produce undefined
// fields or the documented zero conventions; only an empty series is an
// error. The computation is pure: identical inputs yield identical records.
func ComputeMetrics(rets ReturnSeries, benchmark *ReturnSeries, cfg Config) (*Metrics, error) {
	if rets.Len() == 0 {
		return nil, ErrInsufficientData
	}

	maxWins, maxLosses := ConsecutiveStreaks(rets)
	valueAtRisk, conditional := ValueAtRisk(rets, cfg.VarConfidence)
	tailUpper, tailLower := TailRatios(rets)
	expectedMonthly, expectedAnnual := ExpectedReturns(rets, cfg)
	monthlyConsistency, annualConsistency := Consistency(rets)

	monthDays := float64(cfg.TradingDays) / 12.0

	m := &Metrics{
		CumulativeReturn:     Defined(CumulativeReturn(rets)),
		CAGR:                 CAGR(rets, cfg),
		Volatility:           Defined(Volatility(rets, cfg)),
		SharpeRatio:          SharpeRatio(rets, cfg),
		SortinoRatio:         SortinoRatio(rets, cfg),
		CalmarRatio:          CalmarRatio(rets, cfg),
		OmegaRatio:           OmegaRatio(rets, cfg),
		MaxDrawdown:          Defined(MaxDrawdown(rets)),
		AvgDrawdown:          AverageDrawdown(rets),
		LongestDrawdownDays:  LongestDrawdownDuration(rets),
		Skew:                 Defined(stat.Skew(rets.Returns, nil)),
		ExcessKurtosis:       Defined(stat.ExKurtosis(rets.Returns, nil)),
		ValueAtRisk:          valueAtRisk,
		ConditionalVaR:       conditional,
		ValueAtRiskMonth:     ScaledValueAtRisk(valueAtRisk, monthDays),
		ConditionalVaRMonth:  ScaledValueAtRisk(conditional, monthDays),
		ValueAtRiskAnnual:    ScaledValueAtRisk(valueAtRisk, float64(cfg.TradingDays)),
		ConditionalVaRAnnual: ScaledValueAtRisk(conditional, float64(cfg.TradingDays)),
		ExpectedMonthly:      expectedMonthly,
		ExpectedAnnual:       expectedAnnual,
		MonthlyConsistency:   monthlyConsistency,
		AnnualConsistency:    annualConsistency,
		WinRate:              WinRate(rets),
		MaxConsecutiveWins:   maxWins,
		MaxConsecutiveLosses: maxLosses,
		GainPainRatio:        GainPainRatio(rets),
		TailRatioUpper:       tailUpper,
		TailRatioLower:       tailLower,
		TimeInMarket:         Defined(1.0),
	}

	if benchmark != nil {
		beta, err := Beta(rets, *benchmark)
		if err == nil {
			corr, _ := Correlation(rets, *benchmark)
			alpha, _ := Alpha(rets, *benchmark, cfg)
			activeReturn, activeRisk, informationRatio, _ := ActiveMetrics(rets, *benchmark, cfg)
			up, down, _ := CaptureRatios(rets, *benchmark)
			rSquared := Undefined()
			if corr.Defined {
				rSquared = Defined(corr.Value * corr.Value)
			}
			m.Relative = &RelativeMetrics{
				Alpha:            alpha,
				Beta:             Defined(beta),
				Correlation:      corr,
				RSquared:         rSquared,
				ActiveReturn:     activeReturn,
				ActiveRisk:       activeRisk,
				InformationRatio: informationRatio,
				UpcaptureRatio:   up,
				DowncaptureRatio: down,
			}
		}
	}

	return m, nil
}

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
	"github.com/rs/zerolog"
)

func (s Scalar) MarshalZerologObject(e *zerolog.Event) {
	if s.Defined {
		e.Float64("Value", s.Value)
	}
	e.Bool("Defined", s.Defined)
}

func (o *DrawDown) MarshalZerologObject(e *zerolog.Event) {
	e.Time("Begin", o.Begin).Time("End", o.End).Time("Recovery", o.Recovery).Float64("LossPercent", o.LossPercent)
}

func (m *Metrics) MarshalZerologObject(e *zerolog.Event) {
	e.Float64("CumulativeReturn", m.CumulativeReturn.Float64())
	e.Float64("CAGR", m.CAGR.Float64())
	e.Float64("Volatility", m.Volatility.Float64())
	e.Float64("SharpeRatio", m.SharpeRatio.Float64())
	e.Float64("SortinoRatio", m.SortinoRatio.Float64())
	e.Float64("CalmarRatio", m.CalmarRatio.Float64())
	e.Float64("OmegaRatio", m.OmegaRatio.Float64())
	e.Float64("MaxDrawdown", m.MaxDrawdown.Float64())
	e.Float64("AvgDrawdown", m.AvgDrawdown.Float64())
	e.Int("LongestDrawdownDays", m.LongestDrawdownDays)
	e.Float64("Skew", m.Skew.Float64())
	e.Float64("ExcessKurtosis", m.ExcessKurtosis.Float64())
	e.Float64("ValueAtRisk", m.ValueAtRisk.Float64())
	e.Float64("ConditionalVaR", m.ConditionalVaR.Float64())
	e.Float64("ValueAtRiskMonth", m.ValueAtRiskMonth.Float64())
	e.Float64("ConditionalVaRMonth", m.ConditionalVaRMonth.Float64())
	e.Float64("ValueAtRiskAnnual", m.ValueAtRiskAnnual.Float64())
	e.Float64("ConditionalVaRAnnual", m.ConditionalVaRAnnual.Float64())
	e.Float64("ExpectedMonthly", m.ExpectedMonthly.Float64())
	e.Float64("ExpectedAnnual", m.ExpectedAnnual.Float64())
	e.Float64("MonthlyConsistency", m.MonthlyConsistency.Float64())
	e.Float64("AnnualConsistency", m.AnnualConsistency.Float64())
	e.Float64("WinRate", m.WinRate.Float64())
	e.Int("MaxConsecutiveWins", m.MaxConsecutiveWins)
	e.Int("MaxConsecutiveLosses", m.MaxConsecutiveLosses)
	e.Float64("GainPainRatio", m.GainPainRatio.Float64())
	e.Float64("TailRatioUpper", m.TailRatioUpper.Float64())
	e.Float64("TailRatioLower", m.TailRatioLower.Float64())
	e.Float64("TimeInMarket", m.TimeInMarket.Float64())
	if m.Relative != nil {
		e.Float64("Alpha", m.Relative.Alpha.Float64())
		e.Float64("Beta", m.Relative.Beta.Float64())
		e.Float64("Correlation", m.Relative.Correlation.Float64())
		e.Float64("RSquared", m.Relative.RSquared.Float64())
		e.Float64("ActiveReturn", m.Relative.ActiveReturn.Float64())
		e.Float64("ActiveRisk", m.Relative.ActiveRisk.Float64())
		e.Float64("InformationRatio", m.Relative.InformationRatio.Float64())
		e.Float64("UpcaptureRatio", m.Relative.UpcaptureRatio.Float64())
		e.Float64("DowncaptureRatio", m.Relative.DowncaptureRatio.Float64())
	}
}

func (l *SIPLedger) MarshalZerologObject(e *zerolog.Event) {
	e.Strs("Entities", l.Entities)
	e.Float64("Contribution", l.Contribution)
	e.Int("NumPeriods", len(l.Rows))
	e.Float64("TotalInvested", l.TotalInvested)
	e.Floats64("FinalValues", l.FinalValues)
	irr := make([]float64, len(l.IRR))
	for ii, rate := range l.IRR {
		irr[ii] = rate.Float64()
	}
	e.Floats64("IRR", irr)
}

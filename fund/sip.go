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

	"github.com/rs/zerolog/log"
)

// SIPRow is one month of a systematic investment plan: the fixed
// contribution, the cumulative amount invested, and the end-of-month
// portfolio value per entity (ordered as SIPLedger.Entities).
type SIPRow struct {
	Period       string    `json:"period"`
	Date         time.Time `json:"date"`
	Contribution float64   `json:"contribution"`
	Invested     float64   `json:"invested"`
	Values       []float64 `json:"values"`
}

// SIPLedger simulates investing a fixed amount at the start of every month
// in each tracked entity. The trailer fields are derived from the rows:
// TotalInvested is periods * contribution, FinalValues the last row's
// values, and IRR the annualized internal rate of return per entity.
type SIPLedger struct {
	Entities      []string  `json:"entities"`
	Contribution  float64   `json:"contribution"`
	Rows          []SIPRow  `json:"rows"`
	TotalInvested float64   `json:"total_invested"`
	FinalValues   []float64 `json:"final_values"`
	IRR           []Scalar  `json:"irr"`
}

// BuildSIPLedger simulates a monthly SIP across the supplied entities over
// the months they share. Each entity's daily returns are compounded into
// monthly returns first; the contribution is added at the start of the
// month and earns that month's return:
//
//	value = (value + contribution) * (1 + monthlyReturn)
//
// Contribute-then-grow is the contract; moving the contribution after
// growth changes every subsequent value and the IRR.
//
// A non-converging IRR marks that entity's rate undefined without failing
// the ledger or the other entities.
func BuildSIPLedger(entities []ReturnSeries, contribution float64) (*SIPLedger, error) {
	if contribution <= 0 {
		return nil, ErrBadContribution
	}
	if len(entities) == 0 {
		return nil, ErrInsufficientData
	}

	monthly := make([]ReturnSeries, len(entities))
	for ii, entity := range entities {
		if entity.Len() == 0 {
			return nil, ErrInsufficientData
		}
		monthly[ii] = Resample(entity, Monthly)
	}

	months := commonDates(monthly)
	if len(months) == 0 {
		return nil, ErrNoOverlap
	}

	ledger := &SIPLedger{
		Entities:     make([]string, len(entities)),
		Contribution: contribution,
		Rows:         make([]SIPRow, len(months)),
		FinalValues:  make([]float64, len(entities)),
		IRR:          make([]Scalar, len(entities)),
	}

	for ii, row := range monthly {
		ledger.Entities[ii] = row.Name
	}

	for ii, month := range months {
		ledger.Rows[ii] = SIPRow{
			Period:       month.Format("2006-01"),
			Date:         month,
			Contribution: contribution,
			Invested:     float64(ii+1) * contribution,
			Values:       make([]float64, len(entities)),
		}
	}

	for entityIdx, rets := range monthly {
		lookup := make(map[time.Time]float64, rets.Len())
		for ii, dt := range rets.Dates {
			lookup[dt] = rets.Returns[ii]
		}

		value := 0.0
		for ii, month := range months {
			value = (value + contribution) * (1.0 + lookup[month])
			ledger.Rows[ii].Values[entityIdx] = value
		}
		ledger.FinalValues[entityIdx] = value
	}

	ledger.TotalInvested = float64(len(months)) * contribution

	// cash-flow vector: one outflow per month, final value as the inflow
	for entityIdx := range monthly {
		cashflows := make([]float64, len(months)+1)
		for ii := range months {
			cashflows[ii] = -contribution
		}
		cashflows[len(months)] = ledger.FinalValues[entityIdx]

		rate, err := IRR(cashflows)
		if err != nil {
			log.Warn().Err(err).Str("Entity", ledger.Entities[entityIdx]).Msg("irr solve failed")
			ledger.IRR[entityIdx] = Undefined()
			continue
		}
		ledger.IRR[entityIdx] = Defined(AnnualizedIRR(rate))
	}

	return ledger, nil
}

// commonDates intersects the date sets of the supplied series, preserving
// chronological order.
func commonDates(series []ReturnSeries) []time.Time {
	counts := make(map[time.Time]int)
	for _, s := range series {
		for _, dt := range s.Dates {
			counts[dt]++
		}
	}

	common := make([]time.Time, 0, len(series[0].Dates))
	for _, dt := range series[0].Dates {
		if counts[dt] == len(series) {
			common = append(common, dt)
		}
	}
	return common
}

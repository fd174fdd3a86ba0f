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
	"time"

	"github.com/fund-investigator/fi-api/dataframe"
)

// FromDataFrame extracts one column of a NAV dataframe as a PriceSeries.
// Rows with a NaN value are skipped; dates must be strictly increasing.
func FromDataFrame(df *dataframe.DataFrame, colName string) (PriceSeries, error) {
	col, err := df.Col(colName)
	if err != nil {
		return PriceSeries{}, err
	}

	prices := PriceSeries{
		Name:   colName,
		Dates:  make([]time.Time, 0, df.Len()),
		Prices: make([]float64, 0, df.Len()),
	}

	for ii, dt := range df.Dates {
		if math.IsNaN(col[ii]) {
			continue
		}
		if len(prices.Dates) > 0 && !prices.Dates[len(prices.Dates)-1].Before(dt) {
			return PriceSeries{}, dataframe.ErrDatesNotOrdered
		}
		prices.Dates = append(prices.Dates, dt)
		prices.Prices = append(prices.Prices, col[ii])
	}

	return prices, nil
}

// DataFrame renders the ledger as a date-indexed frame with one column per
// entity plus the cumulative invested column; useful for table output.
func (l *SIPLedger) DataFrame() *dataframe.DataFrame {
	dates := make([]time.Time, len(l.Rows))
	invested := make([]float64, len(l.Rows))
	for ii, row := range l.Rows {
		dates[ii] = row.Date
		invested[ii] = row.Invested
	}

	df := dataframe.New(dates)
	df.Insert("Invested", invested)

	for entityIdx, entity := range l.Entities {
		col := make([]float64, len(l.Rows))
		for ii, row := range l.Rows {
			col[ii] = row.Values[entityIdx]
		}
		df.Insert(entity, col)
	}

	return df
}

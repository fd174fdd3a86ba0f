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

// MonthlyTable is a year-by-month grid of compounded monthly returns with
// a compounded annual column. Cells for months the series does not cover
// are undefined.
type MonthlyTable struct {
	Name   string       `json:"name"`
	Years  []int        `json:"years"`
	Months [][12]Scalar `json:"months"`
	Annual []Scalar     `json:"annual"`
}

// MonthlyReturnTable builds the monthly-return grid used by the monthly
// breakdown table and its outlier highlighting.
func MonthlyReturnTable(rets ReturnSeries) *MonthlyTable {
	table := &MonthlyTable{Name: rets.Name}

	monthly := Resample(rets, Monthly)
	annual := Resample(rets, Annually)

	yearIdx := make(map[int]int)
	for ii, dt := range monthly.Dates {
		year := dt.Year()
		row, ok := yearIdx[year]
		if !ok {
			row = len(table.Years)
			yearIdx[year] = row
			table.Years = append(table.Years, year)
			table.Months = append(table.Months, [12]Scalar{})
			table.Annual = append(table.Annual, Undefined())
		}
		table.Months[row][dt.Month()-time.January] = Defined(monthly.Returns[ii])
	}

	for ii, dt := range annual.Dates {
		if row, ok := yearIdx[dt.Year()]; ok {
			table.Annual[row] = Defined(annual.Returns[ii])
		}
	}

	return table
}

// ClassifyCells flags every defined monthly cell against the distribution
// of all monthly returns in the table.
func (t *MonthlyTable) ClassifyCells() [][12]OutlierClass {
	values := make([]float64, 0, len(t.Years)*12)
	for _, row := range t.Months {
		for _, cell := range row {
			if cell.Defined {
				values = append(values, cell.Value)
			}
		}
	}

	flags := ClassifyOutliers(values)

	classes := make([][12]OutlierClass, len(t.Months))
	idx := 0
	for rowIdx, row := range t.Months {
		for colIdx, cell := range row {
			if cell.Defined {
				classes[rowIdx][colIdx] = flags[idx]
				idx++
			} else {
				classes[rowIdx][colIdx] = OutlierNormal
			}
		}
	}

	return classes
}

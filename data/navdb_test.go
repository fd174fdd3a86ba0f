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

package data_test

import (
	"context"
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pashagolub/pgxmock"

	"github.com/fund-investigator/fi-api/data"
	"github.com/fund-investigator/fi-api/data/database"
)

var _ = Describe("NavDb tests", func() {
	var (
		dbPool pgxmock.PgxConnIface
		navdb  *data.NavDb
		ctx    context.Context
		begin  time.Time
		end    time.Time
	)

	BeforeEach(func() {
		var err error
		dbPool, err = pgxmock.NewConn()
		Expect(err).To(BeNil())
		database.SetPool(dbPool)
		navdb = data.NewNavDb()
		ctx = context.Background()
		begin = time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)
		end = time.Date(2021, 1, 6, 0, 0, 0, 0, time.UTC)
	})

	Context("when loading a single fund", func() {
		It("builds a one-column frame with dates ascending", func() {
			dbPool.ExpectBegin()
			rows := pgxmock.NewRows([]string{"event_date", "ticker", "nav"}).
				AddRow(time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC), "VFIAX", 100.0).
				AddRow(time.Date(2021, 1, 5, 0, 0, 0, 0, time.UTC), "VFIAX", 101.5).
				AddRow(time.Date(2021, 1, 6, 0, 0, 0, 0, time.UTC), "VFIAX", 99.75)
			dbPool.ExpectQuery("SELECT event_date, ticker, nav FROM nav").
				WithArgs(begin, end, "VFIAX").
				WillReturnRows(rows)
			dbPool.ExpectCommit()

			df, err := navdb.Nav(ctx, []string{"VFIAX"}, begin, end)
			Expect(err).To(BeNil())
			Expect(df.Len()).To(Equal(3))
			Expect(df.ColNames).To(Equal([]string{"VFIAX"}))
			Expect(df.Vals[0]).To(Equal([]float64{100.0, 101.5, 99.75}))
			Expect(df.Dates[0]).To(Equal(time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)))
		})
	})

	Context("when loading multiple funds", func() {
		It("fills missing observations with NaN", func() {
			dbPool.ExpectBegin()
			rows := pgxmock.NewRows([]string{"event_date", "ticker", "nav"}).
				AddRow(time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC), "FCNTX", 17.5).
				AddRow(time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC), "VFIAX", 100.0).
				AddRow(time.Date(2021, 1, 5, 0, 0, 0, 0, time.UTC), "VFIAX", 101.5)
			dbPool.ExpectQuery("SELECT event_date, ticker, nav FROM nav").
				WithArgs(begin, end, "VFIAX", "FCNTX").
				WillReturnRows(rows)
			dbPool.ExpectCommit()

			df, err := navdb.Nav(ctx, []string{"VFIAX", "FCNTX"}, begin, end)
			Expect(err).To(BeNil())
			Expect(df.Len()).To(Equal(2))
			Expect(df.ColNames).To(Equal([]string{"VFIAX", "FCNTX"}))
			Expect(df.Vals[0]).To(Equal([]float64{100.0, 101.5}))
			Expect(df.Vals[1][0]).To(Equal(17.5))
			Expect(math.IsNaN(df.Vals[1][1])).To(BeTrue())
		})
	})

	Context("when the query comes back empty", func() {
		It("returns ErrNoNavData", func() {
			dbPool.ExpectBegin()
			rows := pgxmock.NewRows([]string{"event_date", "ticker", "nav"})
			dbPool.ExpectQuery("SELECT event_date, ticker, nav FROM nav").
				WithArgs(begin, end, "VFIAX").
				WillReturnRows(rows)
			dbPool.ExpectCommit()

			_, err := navdb.Nav(ctx, []string{"VFIAX"}, begin, end)
			Expect(err).To(Equal(data.ErrNoNavData))
		})
	})

	Context("when the requested range is inverted", func() {
		It("returns ErrInvalidTimeRange without querying", func() {
			_, err := navdb.Nav(ctx, []string{"VFIAX"}, end, begin)
			Expect(err).To(Equal(data.ErrInvalidTimeRange))
		})
	})
})

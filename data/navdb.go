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

package data

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/fund-investigator/fi-api/data/database"
	"github.com/fund-investigator/fi-api/dataframe"
	"github.com/fund-investigator/fi-api/observability/opentelemetry"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

// NavDb reads NAV histories from the nav table in postgres
type NavDb struct {
}

// NewNavDb creates a new database NAV provider
func NewNavDb() *NavDb {
	return &NavDb{}
}

// Nav loads daily NAVs for the requested tickers between begin and end.
// Dates where a fund has no published NAV are filled with NaN so columns
// stay aligned.
func (p *NavDb) Nav(ctx context.Context, tickers []string, begin, end time.Time) (*dataframe.DataFrame, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "navdb.Nav")
	defer span.End()

	subLog := log.With().Strs("Tickers", tickers).Time("Begin", begin).Time("End", end).Logger()
	subLog.Debug().Msg("loading nav history from database")

	if end.Before(begin) {
		subLog.Warn().Stack().Msg("end before begin in call to Nav")
		return nil, ErrInvalidTimeRange
	}

	trx, err := database.Trx(ctx)
	if err != nil {
		span.RecordError(err)
		msg := "could not get database transaction"
		span.SetStatus(codes.Error, msg)
		subLog.Error().Stack().Err(err).Msg(msg)
		return nil, err
	}

	args := make([]interface{}, len(tickers)+2)
	args[0] = begin
	args[1] = end

	tickerSet := make([]string, len(tickers))
	for idx, ticker := range tickers {
		tickerSet[idx] = fmt.Sprintf("$%d", idx+3)
		args[idx+2] = ticker
	}
	sql := fmt.Sprintf("SELECT event_date, ticker, nav FROM nav WHERE ticker IN (%s) AND event_date BETWEEN $1 AND $2 ORDER BY event_date, ticker", strings.Join(tickerSet, ", "))

	rows, err := trx.Query(ctx, sql, args...)
	if err != nil {
		span.RecordError(err)
		msg := "nav query failed"
		span.SetStatus(codes.Error, msg)
		subLog.Error().Stack().Err(err).Str("SQL", sql).Msg(msg)
		if err := trx.Rollback(ctx); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
		}
		return nil, err
	}

	colIdx := make(map[string]int, len(tickers))
	for idx, ticker := range tickers {
		colIdx[ticker] = idx
	}

	dates := make([]time.Time, 0, 252)
	vals := make([][]float64, len(tickers))
	for idx := range vals {
		vals[idx] = make([]float64, 0, 252)
	}

	for rows.Next() {
		var eventDate time.Time
		var ticker string
		var nav float64
		if err := rows.Scan(&eventDate, &ticker, &nav); err != nil {
			span.RecordError(err)
			msg := "nav scan failed"
			span.SetStatus(codes.Error, msg)
			subLog.Error().Stack().Err(err).Msg(msg)
			if err := trx.Rollback(ctx); err != nil {
				subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
			}
			return nil, err
		}

		if len(dates) == 0 || !dates[len(dates)-1].Equal(eventDate) {
			dates = append(dates, eventDate)
			for idx := range vals {
				vals[idx] = append(vals[idx], math.NaN())
			}
		}

		idx, ok := colIdx[ticker]
		if !ok {
			subLog.Warn().Str("Ticker", ticker).Msg("query returned un-requested ticker")
			continue
		}
		vals[idx][len(dates)-1] = nav
	}

	if err := trx.Commit(ctx); err != nil {
		subLog.Warn().Stack().Err(err).Msg("could not commit transaction")
	}

	if len(dates) == 0 {
		span.SetStatus(codes.Error, "no nav data found")
		subLog.Error().Stack().Msg("no nav data found for requested period")
		return nil, ErrNoNavData
	}

	df := dataframe.New(dates)
	for idx, ticker := range tickers {
		df.Insert(ticker, vals[idx])
	}

	return df, nil
}

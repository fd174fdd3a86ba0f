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

// Package handler exposes computed fund analytics over HTTP. Handlers fetch
// NAV histories from the configured provider, run the analytics engine and
// memoize serialized results in the shared cache keyed by a content hash of
// the inputs.
package handler

import (
	"encoding/binary"
	"math"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fund-investigator/fi-api/common"
	"github.com/fund-investigator/fi-api/data"
	"github.com/fund-investigator/fi-api/dataframe"
	"github.com/fund-investigator/fi-api/fund"
)

var nav data.Provider
var cache *common.Cache

// Setup installs the NAV provider and result cache used by all handlers
func Setup(provider data.Provider, resultCache *common.Cache) {
	nav = provider
	cache = resultCache
}

type PingResponse struct {
	Status  string `json:"status" example:"success"`
	Message string `json:"message" example:"API is alive"`
	Time    string `json:"time" example:"2021-06-19T08:09:10.115924-05:00"`
}

func Ping(c *fiber.Ctx) error {
	var response PingResponse
	now, err := time.Now().MarshalText()
	if err != nil {
		log.Error().Err(err).Msg("error while getting time in ping")
		response = PingResponse{
			Status:  "error",
			Message: err.Error(),
			Time:    string(now),
		}
	} else {
		response = PingResponse{
			Status:  "success",
			Message: "API is alive",
			Time:    string(now),
		}
	}
	return c.JSON(response)
}

// dateRange parses the startDate / endDate query parameters; endDate
// defaults to today
func dateRange(c *fiber.Ctx) (begin, end time.Time, err error) {
	begin, err = time.Parse("2006-01-02", c.Query("startDate", "1990-01-01"))
	if err != nil {
		log.Warn().Err(err).Str("StartDate", c.Query("startDate")).Msg("cannot parse startDate query parameter")
		return begin, end, fiber.ErrBadRequest
	}

	endDateStr := c.Query("endDate", "now")
	if endDateStr == "now" {
		year, month, day := time.Now().Date()
		end = time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	} else {
		end, err = time.Parse("2006-01-02", endDateStr)
		if err != nil {
			log.Warn().Err(err).Str("EndDate", endDateStr).Msg("cannot parse endDate query parameter")
			return begin, end, fiber.ErrBadRequest
		}
	}

	return begin, end, nil
}

// loadReturns fetches NAVs for the requested tickers and converts each
// column to a daily return series
func loadReturns(c *fiber.Ctx, tickers []string, begin, end time.Time) ([]fund.ReturnSeries, *dataframe.DataFrame, error) {
	df, err := nav.Nav(c.Context(), tickers, begin, end)
	if err != nil {
		switch err {
		case data.ErrNotFound, data.ErrNoNavData:
			return nil, nil, fiber.ErrNotFound
		case data.ErrInvalidTimeRange:
			return nil, nil, fiber.ErrBadRequest
		default:
			return nil, nil, fiber.ErrInternalServerError
		}
	}

	series := make([]fund.ReturnSeries, 0, len(tickers))
	for _, ticker := range tickers {
		prices, err := fund.FromDataFrame(df, ticker)
		if err != nil {
			log.Warn().Err(err).Str("Ticker", ticker).Msg("could not extract price series")
			return nil, nil, fiber.ErrInternalServerError
		}
		rets, err := fund.Returns(prices)
		if err != nil {
			log.Warn().Err(err).Str("Ticker", ticker).Msg("not enough nav data to compute returns")
			return nil, nil, fiber.ErrNotAcceptable
		}
		series = append(series, rets)
	}

	return series, df, nil
}

// resultKey builds a cache key from the NAV content and the request
// parameters so stale NAV data can never satisfy a fresh request
func resultKey(df *dataframe.DataFrame, params ...string) string {
	buf := make([]byte, 0, df.Len()*df.ColCount()*8)
	var scratch [8]byte
	for _, col := range df.Vals {
		for _, v := range col {
			binary.LittleEndian.PutUint64(scratch[:], math.Float64bits(v))
			buf = append(buf, scratch[:]...)
		}
	}
	return common.CacheKey(buf, []byte(strings.Join(params, "|")))
}

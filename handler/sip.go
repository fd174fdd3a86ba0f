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

package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fund-investigator/fi-api/fund"
)

type sipRequest struct {
	Tickers      []string `json:"tickers"`
	Contribution float64  `json:"contribution"`
	StartDate    string   `json:"startDate"`
	EndDate      string   `json:"endDate"`
}

// Sip simulates a fixed monthly investment plan across one or more funds
// and returns the resulting ledger with per-fund annualized IRR.
func Sip(c *fiber.Ctx) error {
	var req sipRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn().Err(err).Msg("cannot parse sip request body")
		return fiber.ErrBadRequest
	}

	if len(req.Tickers) == 0 {
		log.Warn().Msg("sip request must name at least one ticker")
		return fiber.ErrBadRequest
	}

	if req.Contribution == 0 {
		req.Contribution = fund.DefaultContribution
	}

	begin, err := time.Parse("2006-01-02", defaultStr(req.StartDate, "1990-01-01"))
	if err != nil {
		log.Warn().Err(err).Str("StartDate", req.StartDate).Msg("cannot parse sip startDate")
		return fiber.ErrBadRequest
	}

	var end time.Time
	if req.EndDate == "" {
		year, month, day := time.Now().Date()
		end = time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	} else {
		end, err = time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			log.Warn().Err(err).Str("EndDate", req.EndDate).Msg("cannot parse sip endDate")
			return fiber.ErrBadRequest
		}
	}

	tickers := make([]string, len(req.Tickers))
	for idx, ticker := range req.Tickers {
		tickers[idx] = strings.ToUpper(ticker)
	}

	series, df, err := loadReturns(c, tickers, begin, end)
	if err != nil {
		return err
	}

	params := append([]string{"sip", strconv.FormatFloat(req.Contribution, 'g', -1, 64)}, tickers...)
	key := resultKey(df, params...)
	if body, ok := cache.Get(c.Context(), key); ok {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(body)
	}

	ledger, err := fund.BuildSIPLedger(series, req.Contribution)
	if err != nil {
		log.Warn().Err(err).Strs("Tickers", tickers).Msg("could not build sip ledger")
		switch err {
		case fund.ErrBadContribution:
			return fiber.ErrBadRequest
		default:
			return fiber.ErrNotAcceptable
		}
	}

	body, err := json.Marshal(ledger)
	if err != nil {
		log.Error().Err(err).Msg("could not marshal sip ledger")
		return fiber.ErrInternalServerError
	}

	if err := cache.Set(c.Context(), key, body); err != nil {
		log.Warn().Err(err).Msg("could not cache sip result")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}

func defaultStr(val, fallback string) string {
	if val == "" {
		return fallback
	}
	return val
}

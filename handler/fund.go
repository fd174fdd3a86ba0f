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
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fund-investigator/fi-api/fund"
)

// FundMetrics computes the full metrics record for a fund. An optional
// benchmark query parameter adds the benchmark-relative block.
func FundMetrics(c *fiber.Ctx) (resp error) {
	defer func() {
		if err := recover(); err != nil {
			stackSlice := make([]byte, 1024)
			runtime.Stack(stackSlice, false)
			log.Error().Interface("Panic", err).Str("StackTrace", string(stackSlice)).Msg("caught panic in fund metrics handler")
			resp = fiber.ErrInternalServerError
		}
	}()

	ticker := strings.ToUpper(c.Params("ticker"))
	benchmark := strings.ToUpper(c.Query("benchmark"))

	begin, end, err := dateRange(c)
	if err != nil {
		return err
	}

	cfg := fund.DefaultConfig()
	if rfStr := c.Query("riskFree"); rfStr != "" {
		rf, err := strconv.ParseFloat(rfStr, 64)
		if err != nil {
			log.Warn().Err(err).Str("RiskFree", rfStr).Msg("cannot parse riskFree query parameter")
			return fiber.ErrBadRequest
		}
		cfg.RiskFreeRate = rf
	}

	tickers := []string{ticker}
	if benchmark != "" {
		tickers = append(tickers, benchmark)
	}

	series, df, err := loadReturns(c, tickers, begin, end)
	if err != nil {
		return err
	}

	key := resultKey(df, "metrics", ticker, benchmark, strconv.FormatFloat(cfg.RiskFreeRate, 'g', -1, 64))
	if body, ok := cache.Get(c.Context(), key); ok {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(body)
	}

	var bench *fund.ReturnSeries
	if benchmark != "" {
		bench = &series[1]
	}

	metrics, err := fund.ComputeMetrics(series[0], bench, cfg)
	if err != nil {
		log.Warn().Err(err).Str("Ticker", ticker).Msg("could not compute metrics")
		return fiber.ErrNotAcceptable
	}

	body, err := json.Marshal(metrics)
	if err != nil {
		log.Error().Err(err).Msg("could not marshal metrics")
		return fiber.ErrInternalServerError
	}

	if err := cache.Set(c.Context(), key, body); err != nil {
		log.Warn().Err(err).Msg("could not cache metrics result")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}

type drawdownResponse struct {
	Ticker          string           `json:"ticker"`
	MaxDrawdown     float64          `json:"max_drawdown"`
	AverageDrawdown fund.Scalar      `json:"avg_drawdown"`
	LongestDays     int              `json:"longest_dd_days"`
	Events          []*fund.DrawDown `json:"events"`
}

// FundDrawdowns returns drawdown summary statistics plus the N worst
// peak-to-trough events, largest loss first.
func FundDrawdowns(c *fiber.Ctx) error {
	ticker := strings.ToUpper(c.Params("ticker"))

	begin, end, err := dateRange(c)
	if err != nil {
		return err
	}

	maxEvents := c.QueryInt("maxDrawDowns", 10)
	if maxEvents <= 0 {
		log.Warn().Int("MaxDrawDowns", maxEvents).Msg("maxDrawDowns must be positive")
		return fiber.ErrBadRequest
	}

	series, df, err := loadReturns(c, []string{ticker}, begin, end)
	if err != nil {
		return err
	}

	key := resultKey(df, "drawdowns", ticker, strconv.Itoa(maxEvents))
	if body, ok := cache.Get(c.Context(), key); ok {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(body)
	}

	rets := series[0]
	response := drawdownResponse{
		Ticker:          ticker,
		MaxDrawdown:     fund.MaxDrawdown(rets),
		AverageDrawdown: fund.AverageDrawdown(rets),
		LongestDays:     fund.LongestDrawdownDuration(rets),
		Events:          fund.TopDrawDowns(rets, maxEvents),
	}

	body, err := json.Marshal(response)
	if err != nil {
		log.Error().Err(err).Msg("could not marshal drawdown response")
		return fiber.ErrInternalServerError
	}

	if err := cache.Set(c.Context(), key, body); err != nil {
		log.Warn().Err(err).Msg("could not cache drawdown result")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}

type rollingResponse struct {
	Ticker    string           `json:"ticker"`
	Kind      fund.RollingKind `json:"kind"`
	Weighting fund.Weighting   `json:"weighting"`
	Window    int              `json:"window"`
	Dates     []time.Time      `json:"dates"`
	Values    []fund.Scalar    `json:"values"`
}

// FundRolling evaluates a windowed metric over the full history. Values
// inside the warm-up window serialize as null.
func FundRolling(c *fiber.Ctx) error {
	ticker := strings.ToUpper(c.Params("ticker"))
	benchmark := strings.ToUpper(c.Query("benchmark"))

	begin, end, err := dateRange(c)
	if err != nil {
		return err
	}

	opts := fund.RollingOptions{
		Window:    c.QueryInt("window", fund.WindowOneYear),
		Kind:      fund.RollingKind(c.Query("kind", string(fund.RollingReturn))),
		Weighting: fund.Weighting(c.Query("weighting", string(fund.SimpleWeighting))),
		Config:    fund.DefaultConfig(),
	}

	needsBenchmark := opts.Kind == fund.RollingBeta || opts.Kind == fund.RollingCorrelation
	if needsBenchmark && benchmark == "" {
		log.Warn().Str("Kind", string(opts.Kind)).Msg("rolling kind requires a benchmark query parameter")
		return fiber.ErrBadRequest
	}

	tickers := []string{ticker}
	if benchmark != "" {
		tickers = append(tickers, benchmark)
	}

	series, df, err := loadReturns(c, tickers, begin, end)
	if err != nil {
		return err
	}

	key := resultKey(df, "rolling", ticker, benchmark, string(opts.Kind), string(opts.Weighting), strconv.Itoa(opts.Window))
	if body, ok := cache.Get(c.Context(), key); ok {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(body)
	}

	var bench *fund.ReturnSeries
	if benchmark != "" {
		bench = &series[1]
	}

	rolling, err := fund.Rolling(series[0], bench, opts)
	if err != nil {
		log.Warn().Err(err).Str("Ticker", ticker).Str("Kind", string(opts.Kind)).Msg("could not compute rolling metric")
		switch err {
		case fund.ErrInvalidWindow, fund.ErrUnknownKind, fund.ErrNoBenchmark:
			return fiber.ErrBadRequest
		default:
			return fiber.ErrNotAcceptable
		}
	}

	response := rollingResponse{
		Ticker:    ticker,
		Kind:      rolling.Kind,
		Weighting: rolling.Weighting,
		Window:    rolling.Window,
		Dates:     rolling.Dates,
		Values:    make([]fund.Scalar, len(rolling.Values)),
	}
	for idx, v := range rolling.Values {
		response.Values[idx] = fund.Defined(v)
	}

	body, err := json.Marshal(response)
	if err != nil {
		log.Error().Err(err).Msg("could not marshal rolling response")
		return fiber.ErrInternalServerError
	}

	if err := cache.Set(c.Context(), key, body); err != nil {
		log.Warn().Err(err).Msg("could not cache rolling result")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}

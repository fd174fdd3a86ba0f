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
	"io"
	"math"
	"net/http"
	"sort"
	"time"

	"github.com/fund-investigator/fi-api/dataframe"
	"github.com/fund-investigator/fi-api/observability/opentelemetry"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// NavApi reads NAV histories from a JSON HTTP api
type NavApi struct {
	baseURL string
	token   string
}

type navJSONResponse struct {
	Date string  `json:"date"`
	Nav  float64 `json:"nav"`
}

// NewNavApi creates a new HTTP NAV provider
func NewNavApi(baseURL, token string) *NavApi {
	return &NavApi{
		baseURL: baseURL,
		token:   token,
	}
}

// Nav loads daily NAVs for the requested tickers between begin and end.
// Each ticker is fetched separately; columns are aligned over the union of
// dates with NaN where a fund has no observation.
func (p *NavApi) Nav(ctx context.Context, tickers []string, begin, end time.Time) (*dataframe.DataFrame, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "navapi.Nav")
	defer span.End()

	if end.Before(begin) {
		log.Warn().Stack().Time("Begin", begin).Time("End", end).Msg("end before begin in call to Nav")
		return nil, ErrInvalidTimeRange
	}

	series := make(map[string]map[time.Time]float64, len(tickers))
	dateSet := make(map[time.Time]struct{})

	for _, ticker := range tickers {
		obs, err := p.fetch(ctx, ticker, begin, end)
		if err != nil {
			return nil, err
		}
		series[ticker] = obs
		for dt := range obs {
			dateSet[dt] = struct{}{}
		}
	}

	if len(dateSet) == 0 {
		span.SetStatus(codes.Error, "no nav data found")
		log.Error().Stack().Strs("Tickers", tickers).Msg("no nav data found for requested period")
		return nil, ErrNoNavData
	}

	dates := make([]time.Time, 0, len(dateSet))
	for dt := range dateSet {
		dates = append(dates, dt)
	}
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})

	df := dataframe.New(dates)
	for _, ticker := range tickers {
		col := make([]float64, len(dates))
		for idx, dt := range dates {
			if nav, ok := series[ticker][dt]; ok {
				col[idx] = nav
			} else {
				col[idx] = math.NaN()
			}
		}
		df.Insert(ticker, col)
	}

	return df, nil
}

func (p *NavApi) fetch(ctx context.Context, ticker string, begin, end time.Time) (map[time.Time]float64, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "navapi.fetch")
	defer span.End()

	subLog := log.With().Str("Ticker", ticker).Time("Begin", begin).Time("End", end).Logger()

	url := fmt.Sprintf("%s/api/v1/nav/%s?startDate=%s&endDate=%s&token=%s", p.baseURL, ticker, begin.Format("2006-01-02"), end.Format("2006-01-02"), p.token)
	span.SetAttributes(
		attribute.KeyValue{
			Key:   "Url",
			Value: attribute.StringValue(fmt.Sprintf("%s/api/v1/nav/%s", p.baseURL, ticker)),
		},
		attribute.KeyValue{
			Key:   "Ticker",
			Value: attribute.StringValue(ticker),
		},
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		span.RecordError(err)
		msg := "could not build nav api request"
		span.SetStatus(codes.Error, msg)
		subLog.Error().Err(err).Msg(msg)
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		span.RecordError(err)
		msg := "nav api http request failed"
		span.SetStatus(codes.Error, msg)
		subLog.Error().Err(err).Msg(msg)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		span.SetStatus(codes.Error, "fund not found")
		subLog.Error().Msg("nav api does not know requested fund")
		return nil, ErrNotFound
	}

	if resp.StatusCode >= 400 {
		span.SetAttributes(attribute.KeyValue{
			Key:   "StatusCode",
			Value: attribute.IntValue(resp.StatusCode),
		})
		msg := "nav api returned invalid response code"
		span.SetStatus(codes.Error, msg)
		subLog.Error().Int("HTTPResponseStatusCode", resp.StatusCode).Msg(msg)
		return nil, ErrInvalidStatus
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		msg := "could not read nav api body"
		span.SetStatus(codes.Error, msg)
		subLog.Error().Err(err).Msg(msg)
		return nil, err
	}

	jsonResp := []navJSONResponse{}
	if err := json.Unmarshal(body, &jsonResp); err != nil {
		span.RecordError(err)
		msg := "could not unmarshal nav api json"
		span.SetStatus(codes.Error, msg)
		subLog.Error().Err(err).Bytes("Body", body).Msg(msg)
		return nil, err
	}

	obs := make(map[time.Time]float64, len(jsonResp))
	for _, item := range jsonResp {
		dt, err := time.Parse("2006-01-02", item.Date)
		if err != nil {
			subLog.Warn().Err(err).Str("Date", item.Date).Msg("skipping observation with unparseable date")
			continue
		}
		obs[dt] = item.Nav
	}

	return obs, nil
}

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

// Package data retrieves NAV histories from external sources. Two providers
// are available: a PostgreSQL nav table and a JSON HTTP api. Both return a
// dataframe with one column per requested ticker, dates ascending. The
// analytics engine never talks to this package directly; callers fetch a
// frame here and hand series to the engine.
package data

import (
	"context"
	"time"

	"github.com/fund-investigator/fi-api/dataframe"
	"github.com/spf13/viper"
)

// Provider retrieves NAV histories for funds
type Provider interface {
	// Nav returns a dataframe of daily NAVs with one column per ticker,
	// dates ascending, covering [begin, end]
	Nav(ctx context.Context, tickers []string, begin, end time.Time) (*dataframe.DataFrame, error)
}

// NewProvider constructs the provider selected by the nav.provider
// configuration key ("database" or "api"); database is the default
func NewProvider() (Provider, error) {
	switch viper.GetString("nav.provider") {
	case "", "database":
		return NewNavDb(), nil
	case "api":
		return NewNavApi(viper.GetString("nav.api_url"), viper.GetString("nav.api_token")), nil
	default:
		return nil, ErrUnknownProvider
	}
}

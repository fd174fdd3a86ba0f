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

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fund-investigator/fi-api/common"
	"github.com/fund-investigator/fi-api/data"
	"github.com/fund-investigator/fi-api/data/database"
	"github.com/fund-investigator/fi-api/fund"
)

var (
	sipStartDate    string
	sipEndDate      string
	sipContribution float64
)

func init() {
	sipCmd.Flags().StringVar(&sipStartDate, "start-date", "1990-01-01", "start of the simulation period (YYYY-MM-DD)")
	sipCmd.Flags().StringVar(&sipEndDate, "end-date", "", "end of the simulation period (YYYY-MM-DD); defaults to today")
	sipCmd.Flags().Float64Var(&sipContribution, "contribution", fund.DefaultContribution, "amount invested at the start of each month")

	rootCmd.AddCommand(sipCmd)
}

var sipCmd = &cobra.Command{
	Use:   "sip <ticker> [ticker...]",
	Short: "simulate a fixed monthly investment plan across one or more funds",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		common.SetupLogging()

		if viper.GetString("nav.provider") != "api" {
			if err := database.Connect(ctx); err != nil {
				log.Fatal().Err(err).Msg("database connection failed")
			}
		}

		provider, err := data.NewProvider()
		if err != nil {
			log.Fatal().Err(err).Msg("could not create nav provider")
		}

		begin, end, err := cliDateRange(sipStartDate, sipEndDate)
		if err != nil {
			log.Fatal().Err(err).Msg("could not parse date range")
		}

		tickers := make([]string, len(args))
		for idx, arg := range args {
			tickers[idx] = strings.ToUpper(arg)
		}

		df, err := provider.Nav(ctx, tickers, begin, end)
		if err != nil {
			log.Fatal().Err(err).Strs("Tickers", tickers).Msg("could not load nav history")
		}

		series := make([]fund.ReturnSeries, len(tickers))
		for idx, ticker := range tickers {
			prices, err := fund.FromDataFrame(df, ticker)
			if err != nil {
				log.Fatal().Err(err).Str("Ticker", ticker).Msg("could not extract price series")
			}
			series[idx], err = fund.Returns(prices)
			if err != nil {
				log.Fatal().Err(err).Str("Ticker", ticker).Msg("could not compute returns")
			}
		}

		ledger, err := fund.BuildSIPLedger(series, sipContribution)
		if err != nil {
			log.Fatal().Err(err).Msg("could not build sip ledger")
		}

		fmt.Println(ledger.DataFrame().Table())

		log.Info().Object("Ledger", ledger).Send()
		for idx, entity := range ledger.Entities {
			subLog := log.With().Str("Entity", entity).Float64("FinalValue", ledger.FinalValues[idx]).Logger()
			if ledger.IRR[idx].Defined {
				subLog.Info().Float64("AnnualizedIRR", ledger.IRR[idx].Value).Msg("sip result")
			} else {
				subLog.Warn().Msg("sip result; irr did not converge")
			}
		}
	},
}

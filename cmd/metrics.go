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
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fund-investigator/fi-api/common"
	"github.com/fund-investigator/fi-api/data"
	"github.com/fund-investigator/fi-api/data/database"
	"github.com/fund-investigator/fi-api/fund"
)

var (
	metricsStartDate string
	metricsEndDate   string
	metricsRiskFree  float64
	metricsMonthly   bool
	metricsDrawdowns int
)

func init() {
	metricsCmd.Flags().StringVar(&metricsStartDate, "start-date", "1990-01-01", "start of the analysis period (YYYY-MM-DD)")
	metricsCmd.Flags().StringVar(&metricsEndDate, "end-date", "", "end of the analysis period (YYYY-MM-DD); defaults to today")
	metricsCmd.Flags().Float64Var(&metricsRiskFree, "risk-free", fund.DefaultConfig().RiskFreeRate, "annual risk-free rate")
	metricsCmd.Flags().BoolVar(&metricsMonthly, "monthly", false, "print the monthly return table with outlier flags")
	metricsCmd.Flags().IntVar(&metricsDrawdowns, "drawdowns", 0, "print a table of the N worst drawdown events")

	rootCmd.AddCommand(metricsCmd)
}

var metricsCmd = &cobra.Command{
	Use:   "metrics <ticker> [benchmark]",
	Short: "calculate performance metrics for a fund (mostly useful for debugging)",
	Args:  cobra.RangeArgs(1, 2),
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

		begin, end, err := cliDateRange(metricsStartDate, metricsEndDate)
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

		cfg := fund.DefaultConfig()
		cfg.RiskFreeRate = metricsRiskFree

		var bench *fund.ReturnSeries
		if len(series) > 1 {
			bench = &series[1]
		}

		metrics, err := fund.ComputeMetrics(series[0], bench, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("could not compute metrics")
		}

		log.Info().Object("Metrics", metrics).Send()

		if metricsMonthly {
			printMonthlyTable(fund.MonthlyReturnTable(series[0]))
		}

		if metricsDrawdowns > 0 {
			printDrawdownTable(fund.TopDrawDowns(series[0], metricsDrawdowns))
		}
	},
}

func printDrawdownTable(events []*fund.DrawDown) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Begin", "Trough", "Recovery", "Loss"})
	table.SetBorder(false)

	for _, event := range events {
		recovery := "active"
		if !event.Recovery.IsZero() {
			recovery = event.Recovery.Format("2006-01-02")
		}
		table.Append([]string{
			event.Begin.Format("2006-01-02"),
			event.End.Format("2006-01-02"),
			recovery,
			fmt.Sprintf("%.2f%%", event.LossPercent*100),
		})
	}

	table.Render()
}

// printMonthlyTable renders a year-by-month return grid; monthly outliers
// are flagged with '+' (unusually high) and '-' (unusually low)
func printMonthlyTable(monthly *fund.MonthlyTable) {
	classes := monthly.ClassifyCells()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Year", "Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec", "Annual"})
	table.SetBorder(false)

	for rowIdx, year := range monthly.Years {
		row := make([]string, 0, 14)
		row = append(row, fmt.Sprintf("%d", year))
		for colIdx, cell := range monthly.Months[rowIdx] {
			if !cell.Defined {
				row = append(row, "")
				continue
			}
			flag := ""
			switch classes[rowIdx][colIdx] {
			case fund.OutlierHigh:
				flag = " +"
			case fund.OutlierLow:
				flag = " -"
			}
			row = append(row, fmt.Sprintf("%.2f%%%s", cell.Value*100, flag))
		}
		annual := ""
		if monthly.Annual[rowIdx].Defined {
			annual = fmt.Sprintf("%.2f%%", monthly.Annual[rowIdx].Value*100)
		}
		row = append(row, annual)
		table.Append(row)
	}

	table.Render()
}

func cliDateRange(startDate, endDate string) (begin, end time.Time, err error) {
	begin, err = time.Parse("2006-01-02", startDate)
	if err != nil {
		return begin, end, err
	}

	if endDate == "" {
		year, month, day := time.Now().Date()
		end = time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		return begin, end, nil
	}

	end, err = time.Parse("2006-01-02", endDate)
	return begin, end, err
}

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
	"fmt"
	"os"

	"github.com/fund-investigator/fi-api/common"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Profile bool
var Trace bool

func init() {
	// Database
	viper.BindEnv("database.url", "DATABASE_URL")
	rootCmd.PersistentFlags().String("database-url", "", "PostgreSQL connection string")
	viper.BindPFlag("database.url", rootCmd.PersistentFlags().Lookup("database-url"))

	// NAV provider
	viper.BindEnv("nav.provider", "FI_NAV_PROVIDER")
	rootCmd.PersistentFlags().String("nav-provider", "database", "NAV provider, one of: `database` or `api`")
	viper.BindPFlag("nav.provider", rootCmd.PersistentFlags().Lookup("nav-provider"))

	viper.BindEnv("nav.api_url", "FI_NAV_API_URL")
	rootCmd.PersistentFlags().String("nav-api-url", "", "Base URL of the NAV json api")
	viper.BindPFlag("nav.api_url", rootCmd.PersistentFlags().Lookup("nav-api-url"))

	viper.BindEnv("nav.api_token", "FI_NAV_API_TOKEN")
	rootCmd.PersistentFlags().String("nav-api-token", "", "Token for the NAV json api")
	viper.BindPFlag("nav.api_token", rootCmd.PersistentFlags().Lookup("nav-api-token"))

	// Logging configuration
	viper.BindEnv("log.level", "FI_LOG_LEVEL")
	rootCmd.PersistentFlags().String("log-level", "warning", "Logging level")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	viper.BindEnv("log.report_caller", "FI_LOG_REPORT_CALLER")
	rootCmd.PersistentFlags().Bool("log-report-caller", false, "Log function name that called log statement")
	viper.BindPFlag("log.report_caller", rootCmd.PersistentFlags().Lookup("log-report-caller"))

	viper.BindEnv("log.output", "FI_LOG_OUTPUT")
	rootCmd.PersistentFlags().String("log-output", "stdout", "Write logs to specified output one of: file path, `stdout`, or `stderr`")
	viper.BindPFlag("log.output", rootCmd.PersistentFlags().Lookup("log-output"))

	viper.BindEnv("log.pretty", "FI_LOG_PRETTY")
	rootCmd.PersistentFlags().Bool("log-pretty", false, "Print logs in human readable format")
	viper.BindPFlag("log.pretty", rootCmd.PersistentFlags().Lookup("log-pretty"))

	rootCmd.PersistentFlags().BoolVar(&Profile, "cpu-profile", false, "Run pprof and save in profile.out")
	rootCmd.PersistentFlags().BoolVar(&Trace, "trace", false, "Trace program execution and save in trace.out")
}

var rootCmd = &cobra.Command{
	Use:     "fi-api",
	Version: common.CurrentVersion.String(),
	Short:   "Fund Investigator computes investment performance analytics for mutual funds",
	Long:    `Fund Investigator is a performance analytics service for a single fund: risk and return metrics, drawdowns, rolling statistics, and SIP simulations over NAV histories.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

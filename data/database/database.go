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

// Package database manages the postgres connection pool used by the nav
// provider. Transactions are tracked so leaks can be logged at shutdown.
package database

import (
	"context"
	"fmt"
	"runtime"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type PgxIface interface {
	Begin(context.Context) (pgx.Tx, error)
}

var pool PgxIface
var openTransactions map[string]string

// trackedTx removes itself from the open transaction log when it finishes
type trackedTx struct {
	pgx.Tx
	id string
}

func (t *trackedTx) Commit(ctx context.Context) error {
	delete(openTransactions, t.id)
	return t.Tx.Commit(ctx)
}

func (t *trackedTx) Rollback(ctx context.Context) error {
	delete(openTransactions, t.id)
	return t.Tx.Rollback(ctx)
}

// SetPool replaces the active connection pool; tests install mocks here
func SetPool(myPool PgxIface) {
	openTransactions = make(map[string]string)
	pool = myPool
}

// Connect establishes a pgx connection pool from the database.url
// configuration key
func Connect(ctx context.Context) error {
	myPool, err := pgxpool.Connect(ctx, viper.GetString("database.url"))
	if err != nil {
		log.Error().Stack().Err(err).Msg("could not connect to pool")
		return err
	}
	if err = myPool.Ping(ctx); err != nil {
		log.Error().Stack().Err(err).Msg("could not ping database server")
		return err
	}
	SetPool(myPool)
	return nil
}

// Trx begins a new tracked transaction
func Trx(ctx context.Context) (pgx.Tx, error) {
	trx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}

	_, file, lineno, ok := runtime.Caller(1)
	trxID := uuid.New().String()
	openTransactions[trxID] = fmt.Sprintf("[%v] %s:%d", ok, file, lineno)

	return &trackedTx{
		Tx: trx,
		id: trxID,
	}, nil
}

// LogOpenTransactions writes an INFO log for each open transaction
func LogOpenTransactions() {
	for k, v := range openTransactions {
		log.Info().Str("TrxId", k).Str("Caller", v).Msg("open transaction")
	}
}

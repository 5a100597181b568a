// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package logdb persists ledger notifications in sqlite for filtered queries.
package logdb

import (
	"context"
	"database/sql"
	"math/big"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vechain/tierpool/log"
	"github.com/vechain/tierpool/thor"
)

var logger = log.WithContext("pkg", "logdb")

type LogDB struct {
	path          string
	db            *sql.DB
	stmtCache     *stmtCache
	driverVersion string
}

// New create or open log db at given path.
func New(path string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()
	if path == ":memory:" {
		// every connection would open a distinct memory database
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, errors.Wrap(err, "create schema")
	}

	driverVer, _, _ := sqlite3.Version()
	logger.Debug("log db opened", "path", path, "sqlite", driverVer)
	return &LogDB{
		path:          path,
		db:            db,
		stmtCache:     newStmtCache(db),
		driverVersion: driverVer,
	}, nil
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	return New(":memory:")
}

// Close close the log db.
func (db *LogDB) Close() error {
	db.stmtCache.Clear()
	return db.db.Close()
}

func (db *LogDB) Path() string {
	return db.path
}

func (db *LogDB) DriverVersion() string {
	return db.driverVersion
}

func bigBytes(v *big.Int) []byte {
	if v == nil {
		return nil
	}
	return v.Bytes()
}

func nullable(v *uint64) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}

// Write appends events in one transaction and assigns their Seq.
func (db *LogDB) Write(events []*Event) error {
	if len(events) == 0 {
		return nil
	}
	stmt, err := db.stmtCache.Prepare(insertEventQuery)
	if err != nil {
		return err
	}
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	txStmt := tx.Stmt(stmt)
	for _, ev := range events {
		res, err := txStmt.Exec(
			ev.Kind,
			ev.Account.Bytes(),
			nullable(ev.Pool),
			nullable(ev.Target),
			bigBytes(ev.Amount),
			bigBytes(ev.Extra),
			int64(ev.Time),
		)
		if err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "insert %s event", ev.Kind)
		}
		seq, err := res.LastInsertId()
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		ev.Seq = uint64(seq)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	metricsHandleWrite(events)
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// FilterEvents returns events matching filter, all events when filter is nil.
func (db *LogDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	if filter == nil {
		return db.queryEvents(ctx, "SELECT seq, kind, account, pool, target, amount, extra, time FROM event ORDER BY seq ASC")
	}
	metricsHandleEventsFilter(filter)

	var args []any
	stmt := "SELECT seq, kind, account, pool, target, amount, extra, time FROM event WHERE 1"
	if filter.Range != nil {
		args = append(args, int64(filter.Range.From))
		stmt += " AND time >= ?"
		if filter.Range.To >= filter.Range.From {
			args = append(args, int64(filter.Range.To))
			stmt += " AND time <= ?"
		}
	}
	if len(filter.Accounts) > 0 {
		stmt += " AND account IN (" + placeholders(len(filter.Accounts)) + ")"
		for _, acc := range filter.Accounts {
			args = append(args, acc.Bytes())
		}
	}
	if len(filter.Pools) > 0 {
		stmt += " AND (pool IN (" + placeholders(len(filter.Pools)) + ")"
		stmt += " OR target IN (" + placeholders(len(filter.Pools)) + "))"
		for range 2 {
			for _, id := range filter.Pools {
				args = append(args, int64(id))
			}
		}
	}
	if len(filter.Kinds) > 0 {
		stmt += " AND kind IN (" + placeholders(len(filter.Kinds)) + ")"
		for _, k := range filter.Kinds {
			args = append(args, k)
		}
	}

	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC"
	} else {
		stmt += " ORDER BY seq ASC"
	}
	if filter.Options != nil {
		stmt += " LIMIT ?, ?"
		args = append(args, int64(filter.Options.Offset), int64(filter.Options.Limit))
	}
	return db.queryEvents(ctx, stmt, args...)
}

func (db *LogDB) queryEvents(ctx context.Context, stmt string, args ...any) ([]*Event, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq           int64
			kind          string
			account       []byte
			pool, target  sql.NullInt64
			amount, extra []byte
			time          int64
		)
		if err := rows.Scan(&seq, &kind, &account, &pool, &target, &amount, &extra, &time); err != nil {
			return nil, err
		}
		ev := &Event{
			Seq:     uint64(seq),
			Kind:    kind,
			Account: thor.BytesToAddress(account),
			Amount:  new(big.Int).SetBytes(amount),
			Time:    uint64(time),
		}
		if pool.Valid {
			v := uint64(pool.Int64)
			ev.Pool = &v
		}
		if target.Valid {
			v := uint64(target.Int64)
			ev.Target = &v
		}
		if extra != nil {
			ev.Extra = new(big.Int).SetBytes(extra)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// LastSeq returns the sequence of the newest event, zero when empty.
func (db *LogDB) LastSeq(ctx context.Context) (uint64, error) {
	var seq sql.NullInt64
	if err := db.db.QueryRowContext(ctx, "SELECT MAX(seq) FROM event").Scan(&seq); err != nil {
		return 0, err
	}
	if !seq.Valid {
		return 0, nil
	}
	return uint64(seq.Int64), nil
}

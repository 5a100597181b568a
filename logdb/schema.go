// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

const eventTableSchema = `
CREATE TABLE IF NOT EXISTS event (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	kind TEXT NOT NULL,
	account BLOB(20) NOT NULL,
	pool INTEGER,
	target INTEGER,
	amount BLOB,
	extra BLOB,
	time INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS event_i_time ON event(time);
CREATE INDEX IF NOT EXISTS event_i_account ON event(account);
CREATE INDEX IF NOT EXISTS event_i_pool ON event(pool);
CREATE INDEX IF NOT EXISTS event_i_kind ON event(kind);
`

const insertEventQuery = "INSERT INTO event(kind, account, pool, target, amount, extra, time) VALUES(?, ?, ?, ?, ?, ?, ?)"

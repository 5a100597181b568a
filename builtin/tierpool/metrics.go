// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tierpool

import (
	"github.com/vechain/tierpool/metrics"
)

var metricCalls = metrics.LazyLoadCounterVec("ledger_calls_count", []string{"op", "status"})

func observeCall(op string, err error) {
	status := "ok"
	switch {
	case err == nil:
	case isRevert(err):
		status = "revert"
	default:
		status = "error"
	}
	metricCalls().AddWithLabel(1, map[string]string{"op": op, "status": status})
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"math/big"
	"strconv"

	"github.com/vechain/tierpool/logdb"
	"github.com/vechain/tierpool/metrics"
)

var (
	metricEvents        = metrics.LazyLoadCounterVec("node_events_count", []string{"kind"})
	metricEventAmount   = metrics.LazyLoadCounterVec("node_event_amount", []string{"kind"})
	metricPoolActive    = metrics.LazyLoadGaugeVec("node_pool_active_amount", []string{"pid"})
	metricPoolOverTime  = metrics.LazyLoadGaugeVec("node_pool_over_time_amount", []string{"pid"})
	metricPoolUsers     = metrics.LazyLoadGaugeVec("node_pool_users", []string{"pid"})
	metricPoolParked    = metrics.LazyLoadGaugeVec("node_pool_parked_penalty", []string{"pid"})
	metricLedgerTimeGap = metrics.LazyLoadGaugeVec("node_ledger_clock_ahead_seconds", nil)
)

// gauges drop amounts that overflow int64.
func amount(v *big.Int) int64 {
	if v == nil || !v.IsInt64() {
		return 0
	}
	return v.Int64()
}

// observe updates meters from committed events and refreshes the gauges of touched pools.
func (n *Node) observe(events []*logdb.Event) {
	if metrics.NoOp() || len(events) == 0 {
		return
	}

	touched := make(map[uint64]struct{})
	for _, ev := range events {
		labels := map[string]string{"kind": ev.Kind}
		metricEvents().AddWithLabel(1, labels)
		metricEventAmount().AddWithLabel(amount(ev.Amount), labels)
		if ev.Pool != nil {
			touched[*ev.Pool] = struct{}{}
		}
		if ev.Target != nil {
			touched[*ev.Target] = struct{}{}
		}
	}
	// external rewards and claims settle every pool
	for _, ev := range events {
		if ev.Pool == nil {
			count, err := n.engine.PoolCount()
			if err != nil {
				return
			}
			for id := uint64(0); id < count; id++ {
				touched[id] = struct{}{}
			}
			break
		}
	}

	for id := range touched {
		p, err := n.engine.Pool(id)
		if err != nil {
			logger.Debug("failed to read pool for metrics", "pid", id, "err", err)
			continue
		}
		labels := map[string]string{"pid": strconv.FormatUint(id, 10)}
		metricPoolActive().SetWithLabel(amount(p.ActiveAmount), labels)
		metricPoolOverTime().SetWithLabel(amount(p.OverTimeAmount), labels)
		metricPoolUsers().SetWithLabel(int64(p.TotalUsers), labels)
		metricPoolParked().SetWithLabel(amount(p.PendingPenaltyReward), labels)
	}

	if last, err := n.last.Get(); err == nil {
		gap := int64(last) - n.clock().Unix()
		metricLedgerTimeGap().SetWithLabel(max(gap, 0), nil)
	}
}

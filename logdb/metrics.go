// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"strings"

	"github.com/vechain/tierpool/metrics"
)

var (
	metricEventQueryParameters = metrics.LazyLoadCounterVec("logdb_query_parameters", []string{"parameters"})
	metricQueryOrderCounter    = metrics.LazyLoadCounterVec("logdb_query_order", []string{"order"})
	metricLimitBucket          = metrics.LazyLoadHistogramVec("logdb_query_limit_bucket", []string{"type"}, []int64{
		0, 5, 10, 25, 50, 100, 250, 500, 1000,
	})
	metricEventsWritten = metrics.LazyLoadCounterVec("logdb_events_written_count", []string{"kind"})
)

func metricsHandleEventsFilter(filter *EventFilter) {
	if metrics.NoOp() {
		return
	}

	var params []string
	if filter.Range != nil {
		params = append(params, "range")
	}
	if len(filter.Accounts) > 0 {
		params = append(params, "account")
	}
	if len(filter.Pools) > 0 {
		params = append(params, "pool")
	}
	if len(filter.Kinds) > 0 {
		params = append(params, "kind")
	}
	metricEventQueryParameters().AddWithLabel(1, map[string]string{"parameters": strings.Join(params, ",")})

	order := string(ASC)
	if filter.Order == DESC {
		order = string(DESC)
	}
	metricQueryOrderCounter().AddWithLabel(1, map[string]string{"order": order})

	if filter.Options != nil {
		limit := min(filter.Options.Limit, 1001)
		metricLimitBucket().ObserveWithLabels(int64(limit), map[string]string{"type": "event"})
	}
}

func metricsHandleWrite(events []*Event) {
	if metrics.NoOp() {
		return
	}
	for _, ev := range events {
		metricEventsWritten().AddWithLabel(1, map[string]string{"kind": ev.Kind})
	}
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/tierpool/api/accounts"
	"github.com/vechain/tierpool/api/events"
	"github.com/vechain/tierpool/api/pools"
	"github.com/vechain/tierpool/genesis"
	"github.com/vechain/tierpool/logdb"
	"github.com/vechain/tierpool/lvldb"
	"github.com/vechain/tierpool/metrics"
	"github.com/vechain/tierpool/node"
	"github.com/vechain/tierpool/thor"
)

var (
	owner = thor.BytesToAddress([]byte("owner"))
	dev   = thor.BytesToAddress([]byte("dev"))
	alice = thor.BytesToAddress([]byte("alice"))
)

func init() {
	metrics.InitializePrometheusMetrics()
}

func initServer(t *testing.T) *httptest.Server {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	logDB, err := logdb.NewMem()
	require.NoError(t, err)

	cfg := genesis.Default(owner, dev)
	for _, acc := range []thor.Address{alice, owner} {
		cfg.Accounts = append(cfg.Accounts, genesis.Account{Address: acc.String(), Base: "1000000", LP: "1000000"})
	}
	clock := time.Unix(1000, 0)
	n, err := node.New(db, logDB, cfg, node.Options{Clock: func() time.Time { return clock }})
	require.NoError(t, err)

	handler, closeSubs := New(n, Options{AllowedOrigins: "*", LogsLimit: 100, EnableMetrics: true, EnableReqLogger: true})
	ts := httptest.NewServer(handler)
	t.Cleanup(func() {
		closeSubs()
		ts.Close()
		n.Close()
		logDB.Close()
		db.Close()
	})
	return ts
}

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return body, res.StatusCode
}

func httpPost(t *testing.T, url string, obj any) ([]byte, int) {
	data, err := json.Marshal(obj)
	require.NoError(t, err)
	res, err := http.Post(url, "application/json", bytes.NewReader(data)) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return body, res.StatusCode
}

func amount(v int64) *math.HexOrDecimal256 {
	return (*math.HexOrDecimal256)(big.NewInt(v))
}

func TestPools(t *testing.T) {
	ts := initServer(t)

	body, code := httpGet(t, ts.URL+"/pools")
	require.Equal(t, http.StatusOK, code, string(body))
	var list []*pools.Pool
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 10)
	assert.True(t, list[0].Farming)
	assert.Nil(t, list[0].FasterPool)
	assert.Equal(t, uint64(0), *list[1].FasterPool)

	body, code = httpGet(t, ts.URL+"/pools/6")
	require.Equal(t, http.StatusOK, code, string(body))
	var p pools.Pool
	require.NoError(t, json.Unmarshal(body, &p))
	assert.Equal(t, "staking-2", p.Name)
	assert.Equal(t, uint64(600), p.LockDuration)

	_, code = httpGet(t, ts.URL+"/pools/42")
	assert.Equal(t, http.StatusBadRequest, code)
	_, code = httpGet(t, ts.URL+"/pools/abc")
	assert.Equal(t, http.StatusNotFound, code)

	// deposit into the slowest staking tier
	body, code = httpPost(t, ts.URL+"/pools/9/deposits", &pools.Call{Caller: alice, Amount: amount(1000)})
	require.Equal(t, http.StatusOK, code, string(body))

	body, code = httpGet(t, ts.URL+"/pools/9/participants")
	require.Equal(t, http.StatusOK, code)
	var accs []thor.Address
	require.NoError(t, json.Unmarshal(body, &accs))
	assert.Equal(t, []thor.Address{alice}, accs)

	body, code = httpGet(t, ts.URL+"/pools/9/participants/"+alice.String())
	require.Equal(t, http.StatusOK, code)
	var bal pools.Balance
	require.NoError(t, json.Unmarshal(body, &bal))
	assert.Equal(t, int64(1000), (*big.Int)(bal.ActiveAmount).Int64())

	body, code = httpGet(t, ts.URL+"/pools/9/deposits/0")
	require.Equal(t, http.StatusOK, code)
	var d pools.Deposit
	require.NoError(t, json.Unmarshal(body, &d))
	assert.Equal(t, uint64(2500), d.MaturityTime)
	_, code = httpGet(t, ts.URL+"/pools/9/deposits/1")
	assert.Equal(t, http.StatusNotFound, code)

	_, code = httpPost(t, ts.URL+"/pools/9/deposits", &pools.Call{Caller: alice})
	assert.Equal(t, http.StatusBadRequest, code, "amount is required")
	_, code = httpPost(t, ts.URL+"/pools/9/deposits", map[string]any{"caller": alice, "bogus": 1})
	assert.Equal(t, http.StatusBadRequest, code, "unknown fields are rejected")

	body, code = httpPost(t, ts.URL+"/pools/9/withdraw", &pools.Call{Caller: alice})
	require.Equal(t, http.StatusOK, code, string(body))
	_, code = httpPost(t, ts.URL+"/pools/9/withdraw-matured", &pools.Call{Caller: alice})
	assert.Equal(t, http.StatusBadRequest, code)

	_, code = httpPost(t, ts.URL+"/pools/9/update", nil)
	assert.Equal(t, http.StatusOK, code)
	_, code = httpPost(t, ts.URL+"/pools/update", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestAddPool(t *testing.T) {
	ts := initServer(t)

	_, code := httpPost(t, ts.URL+"/pools", &pools.AddPool{Caller: alice, Name: "x", Lock: 3000, PenaltyRate: 1})
	assert.Equal(t, http.StatusBadRequest, code)

	body, code := httpPost(t, ts.URL+"/pools", &pools.AddPool{Caller: owner, Name: "x", Lock: 3000, PenaltyRate: 1})
	require.Equal(t, http.StatusOK, code, string(body))
	var res struct{ ID uint64 }
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, uint64(10), res.ID)
}

func TestAccountsAndRewards(t *testing.T) {
	ts := initServer(t)

	_, code := httpPost(t, ts.URL+"/pools/5/deposits", &pools.Call{Caller: alice, Amount: amount(1000)})
	require.Equal(t, http.StatusOK, code)

	body, code := httpPost(t, ts.URL+"/rewards", map[string]any{"caller": owner, "amount": "1000"})
	require.Equal(t, http.StatusOK, code, string(body))
	_, code = httpPost(t, ts.URL+"/rewards", map[string]any{"caller": owner})
	assert.Equal(t, http.StatusBadRequest, code)

	body, code = httpGet(t, ts.URL+"/accounts/"+alice.String())
	require.Equal(t, http.StatusOK, code)
	var acc accounts.Account
	require.NoError(t, json.Unmarshal(body, &acc))
	require.Len(t, acc.Positions, 1)
	assert.Equal(t, uint64(5), acc.Positions[0].Pool)
	assert.Equal(t, int64(400), (*big.Int)(acc.Positions[0].Balance.PendingReward).Int64())

	body, code = httpPost(t, ts.URL+"/claims", map[string]any{"caller": alice})
	require.Equal(t, http.StatusOK, code, string(body))

	body, _ = httpGet(t, ts.URL+"/accounts/"+alice.String())
	require.NoError(t, json.Unmarshal(body, &acc))
	assert.Equal(t, int64(1_000_000-1000+400), (*big.Int)(acc.Base).Int64())

	_, code = httpGet(t, ts.URL+"/accounts/0x12")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestEventLogs(t *testing.T) {
	ts := initServer(t)
	_, code := httpPost(t, ts.URL+"/pools/5/deposits", &pools.Call{Caller: alice, Amount: amount(1000)})
	require.Equal(t, http.StatusOK, code)

	body, code := httpPost(t, ts.URL+"/logs/events", &events.EventFilter{Accounts: []thor.Address{alice}})
	require.Equal(t, http.StatusOK, code, string(body))
	var evs []*events.Event
	require.NoError(t, json.Unmarshal(body, &evs))
	require.Len(t, evs, 1)
	assert.Equal(t, "Deposit", evs[0].Kind)
	assert.Equal(t, uint64(5), *evs[0].Pool)

	body, code = httpPost(t, ts.URL+"/logs/events", &events.EventFilter{Kinds: []string{"PoolAdded"}, Order: logdb.DESC})
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(body, &evs))
	require.Len(t, evs, 10)
	assert.Equal(t, uint64(9), *evs[0].Pool)

	_, code = httpPost(t, ts.URL+"/logs/events", &events.EventFilter{Options: &events.Options{Limit: 1000}})
	assert.Equal(t, http.StatusBadRequest, code)
	_, code = httpPost(t, ts.URL+"/logs/events", &events.EventFilter{Order: "sideways"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestSubscription(t *testing.T) {
	ts := initServer(t)

	u := url.URL{Scheme: "ws", Host: strings.TrimPrefix(ts.URL, "http://"), Path: "/subscriptions/events", RawQuery: "kind=Deposit"}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	require.NoError(t, err)
	defer conn.Close()

	body, code := httpGet(t, ts.URL+"/metrics")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), "tierpool_api_active_websocket_count")

	_, code = httpPost(t, ts.URL+"/pools/5/deposits", &pools.Call{Caller: alice, Amount: amount(1000)})
	require.Equal(t, http.StatusOK, code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev events.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "Deposit", ev.Kind)
	assert.Equal(t, alice, ev.Account)
	assert.Equal(t, int64(1000), (*big.Int)(ev.Amount).Int64())

	_, code = httpGet(t, ts.URL+"/subscriptions/events?account=0x12")
	assert.Equal(t, http.StatusBadRequest, code)
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package httpserver

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/tierpool/metrics"
)

func TestStartAPIServer(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("pong"))
	})
	url, stop, err := StartAPIServer("localhost:0", handler)
	require.NoError(t, err)
	defer stop()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "pong", string(body))
}

func TestStartMetricsServer(t *testing.T) {
	metrics.InitializePrometheusMetrics()
	metrics.CounterVec("httpserver_test_count", []string{"kind"}).AddWithLabel(1, map[string]string{"kind": "test"})

	url, stop, err := StartMetricsServer("localhost:0")
	require.NoError(t, err)
	defer stop()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "httpserver_test_count"))
}

func TestListenError(t *testing.T) {
	_, _, err := StartAPIServer("256.0.0.1:bad", http.NotFoundHandler())
	assert.Error(t, err)
}

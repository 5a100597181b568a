// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithContextFollowsRoot(t *testing.T) {
	prev := Root()
	defer SetDefault(prev)

	// created before the handler is installed
	logger := WithContext("pkg", "test")

	var buf bytes.Buffer
	Init(&buf, LvlInfo, true, false)

	logger.Info("hello", "pid", 1)
	logger.Debug("filtered")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "test", rec["pkg"])
	assert.Equal(t, float64(1), rec["pid"])
}

func TestTerminalHandler(t *testing.T) {
	prev := Root()
	defer SetDefault(prev)

	var buf bytes.Buffer
	Init(&buf, LvlDebug, false, false)

	Warn("careful", "key", "value")
	assert.Contains(t, buf.String(), "careful")
	assert.Contains(t, buf.String(), "key=value")
}
